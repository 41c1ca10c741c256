package pipeline

import (
	"context"
	"fmt"

	"github.com/haven-dev/haven/internal/models"
	"github.com/sirupsen/logrus"
)

// EmailSender delivers a rendered notification over the email channel.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// SMSSender delivers a short notification over the SMS channel.
type SMSSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

// Dispatcher routes incident notifications to the space owner. Channel
// selection depends on severity: high and critical incidents go to both
// email and SMS, everything else to email only. Channels are independent
// and best effort; a transport failure is logged and never propagated, and
// a missing contact silently skips that channel.
type Dispatcher struct {
	email EmailSender
	sms   SMSSender
	log   *logrus.Logger
}

func NewDispatcher(email EmailSender, sms SMSSender, log *logrus.Logger) *Dispatcher {
	return &Dispatcher{email: email, sms: sms, log: log}
}

func (d *Dispatcher) Dispatch(ctx context.Context, incident models.Incident, device models.Device, space models.Space, owner models.User) {
	if owner.Email != "" {
		subject := fmt.Sprintf("[%s] %s in %s", incident.Severity.Label(), incident.Title, space.Name)
		body := renderEmailBody(incident, device)

		if err := d.email.SendEmail(ctx, owner.Email, subject, body); err != nil {
			d.logDeliveryFailure(incident, "email", err)
		}
	}

	if incident.Severity.Rank() >= models.SeverityHigh.Rank() && owner.Phone != "" {
		message := fmt.Sprintf("%s: %s in %s at %s",
			incident.Severity.Label(), incident.Title, space.Name, locationOrUnknown(device))

		if err := d.sms.SendSMS(ctx, owner.Phone, message); err != nil {
			d.logDeliveryFailure(incident, "sms", err)
		}
	}
}

func (d *Dispatcher) logDeliveryFailure(incident models.Incident, channel string, err error) {
	d.log.WithFields(logrus.Fields{
		"incident_id": incident.ID,
		"severity":    incident.Severity,
		"channel":     channel,
	}).WithError(err).Error("Failed to deliver incident notification")
}

func renderEmailBody(incident models.Incident, device models.Device) string {
	return fmt.Sprintf(`Incident details:
-----------------
Description: %s
Severity: %s
Location: %s
Device: %s
Time: %s

Please check your dashboard for more details.
`,
		incident.Description,
		incident.Severity.Label(),
		locationOrUnknown(device),
		device.Name,
		incident.CreatedAt.Format("2006-01-02 15:04:05 UTC"))
}
