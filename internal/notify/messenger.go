// Package notify holds the outbound side effects of a successful booking
// write: a chat message to the operations channel and a spreadsheet mirror row
// for audit. Both are best-effort; failures are logged and never turn a
// committed booking into an error response.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type Messenger interface {
	Send(ctx context.Context, to, text string) error
}

// WebhookMessenger posts the message to an HTTP gateway (the deployment's
// chat bridge) as {"to": ..., "message": ...}.
type WebhookMessenger struct {
	url    string
	client *http.Client
}

func NewWebhookMessenger(url string, timeout time.Duration) *WebhookMessenger {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookMessenger{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (m *WebhookMessenger) Send(ctx context.Context, to, text string) error {
	body, err := json.Marshal(map[string]string{
		"to":      to,
		"message": text,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("message gateway returned %s", resp.Status)
	}
	return nil
}
