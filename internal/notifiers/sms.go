package notifiers

import (
	"context"
	"net/http"
)

type SMSMessage struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

// HTTPSMSSender delivers SMS through a provider's JSON API.
type HTTPSMSSender struct {
	url    string
	token  string
	client *http.Client
}

func NewHTTPSMSSender(url, token string) *HTTPSMSSender {
	return &HTTPSMSSender{
		url:    url,
		token:  token,
		client: &http.Client{Timeout: defaultTimeout},
	}
}

func (s *HTTPSMSSender) SendSMS(ctx context.Context, to, message string) error {
	return postJSON(ctx, s.client, s.url, s.token, SMSMessage{
		To:      to,
		Message: message,
	})
}
