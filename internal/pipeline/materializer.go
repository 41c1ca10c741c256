package pipeline

import (
	"errors"

	"github.com/haven-dev/haven/internal/models"
	"gorm.io/gorm"
)

// Materialize durably records a positive classification as an incident.
// It is idempotent under at-least-once pipeline triggers: the unique index
// on incidents.event_id rejects a second insert, in which case the existing
// record is fetched and returned unchanged. Relying on the constraint
// rather than a pre-check keeps concurrent duplicate triggers safe.
func Materialize(dbh *gorm.DB, eventID uint, draft Draft) (models.Incident, error) {
	incident := models.Incident{
		Title:       draft.Title,
		Description: draft.Description,
		Status:      models.IncidentNew,
		Severity:    draft.Severity,
		Data:        draft.Data,
		EventID:     eventID,
	}

	err := dbh.Create(&incident).Error

	if err == nil {
		return incident, nil
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		var existing models.Incident

		if findErr := dbh.Where("event_id = ?", eventID).First(&existing).Error; findErr != nil {
			return models.Incident{}, findErr
		}

		return existing, nil
	}

	return models.Incident{}, err
}
