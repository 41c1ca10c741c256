package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/haven-dev/haven/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// DefaultRunTimeout bounds one pipeline run so a slow provider or database
// cannot starve the worker pool indefinitely.
const DefaultRunTimeout = 30 * time.Second

// Processor runs the classification pipeline for one accepted event:
// claim the event (processed false->true), apply the telemetry side effect,
// classify, materialize the incident and dispatch notifications. It is
// invoked by the worker pool after the ingestion endpoint has persisted the
// event and acknowledged the hub.
type Processor struct {
	db         *gorm.DB
	classifier *Classifier
	dispatcher *Dispatcher
	log        *logrus.Logger
	runTimeout time.Duration
	onIncident func(incident models.Incident)
}

func NewProcessor(dbh *gorm.DB, classifier *Classifier, dispatcher *Dispatcher, log *logrus.Logger) *Processor {
	return &Processor{
		db:         dbh,
		classifier: classifier,
		dispatcher: dispatcher,
		log:        log,
		runTimeout: DefaultRunTimeout,
	}
}

// SetRunTimeout overrides the per-run wall-clock budget.
func (p *Processor) SetRunTimeout(d time.Duration) {
	if d > 0 {
		p.runTimeout = d
	}
}

// OnIncident registers a hook invoked after an incident is materialized,
// before notifications are dispatched.
func (p *Processor) OnIncident(fn func(incident models.Incident)) {
	p.onIncident = fn
}

// Process executes one pipeline run. Triggers are delivered at least once;
// re-running for an already processed event is a no-op, and the
// materializer's uniqueness guard covers the remaining races.
func (p *Processor) Process(ctx context.Context, eventID uint) error {
	ctx, cancel := context.WithTimeout(ctx, p.runTimeout)
	defer cancel()

	dbh := p.db.WithContext(ctx)

	var event models.Event

	err := dbh.
		Preload("Device").
		Preload("Device.Space").
		Preload("Device.Space.Owner").
		First(&event, eventID).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			p.log.WithField("event_id", eventID).Warn("Event vanished before processing")
			return nil
		}
		return err
	}

	payload, perr := decodePayload(event.Data)

	if perr != nil {
		// The classifier logs the malformed payload; telemetry just skips it.
		payload = nil
	}

	// Claim the event and apply telemetry under one transactional boundary.
	// The conditional update flips processed false->true exactly once;
	// losing the race means another run owns this event.
	var claimed bool

	err = dbh.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Event{}).
			Where("id = ? AND processed = ?", event.ID, false).
			Update("processed", true)

		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			return nil
		}

		claimed = true

		return applyTelemetry(tx, &event.Device, payload)
	})

	if err != nil {
		return err
	}

	if !claimed {
		p.log.WithField("event_id", event.ID).Debug("Event already processed, skipping")
		return nil
	}

	draft := p.classifier.Classify(event, event.Device)

	if draft == nil {
		return nil
	}

	incident, err := Materialize(dbh, event.ID, *draft)

	if err != nil {
		return err
	}

	p.log.WithFields(logrus.Fields{
		"incident_id": incident.ID,
		"event_id":    event.ID,
		"severity":    incident.Severity,
		"title":       incident.Title,
	}).Info("Incident recorded")

	if p.onIncident != nil {
		p.onIncident(incident)
	}

	p.dispatcher.Dispatch(ctx, incident, event.Device, event.Device.Space, event.Device.Space.Owner)

	return nil
}
