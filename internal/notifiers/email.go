package notifiers

import (
	"context"
	"net/http"
)

type EmailMessage struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// HTTPEmailSender delivers email through a provider's JSON API.
type HTTPEmailSender struct {
	url    string
	token  string
	client *http.Client
}

func NewHTTPEmailSender(url, token string) *HTTPEmailSender {
	return &HTTPEmailSender{
		url:    url,
		token:  token,
		client: &http.Client{Timeout: defaultTimeout},
	}
}

func (s *HTTPEmailSender) SendEmail(ctx context.Context, to, subject, body string) error {
	return postJSON(ctx, s.client, s.url, s.token, EmailMessage{
		To:      to,
		Subject: subject,
		Body:    body,
	})
}
