package notifiers

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Log senders stand in for real providers when none is configured. They
// record the outbound message and report success.

type LogEmailSender struct {
	Log *logrus.Logger
}

func (s LogEmailSender) SendEmail(ctx context.Context, to, subject, body string) error {
	s.Log.WithFields(logrus.Fields{
		"to":      to,
		"subject": subject,
	}).Info("Sending email")
	s.Log.WithField("body", body).Debug("Email body")
	return nil
}

type LogSMSSender struct {
	Log *logrus.Logger
}

func (s LogSMSSender) SendSMS(ctx context.Context, to, message string) error {
	s.Log.WithFields(logrus.Fields{
		"to":      to,
		"message": message,
	}).Info("Sending SMS")
	return nil
}
