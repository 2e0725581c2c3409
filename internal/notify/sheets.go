package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// SheetRow is one mirrored booking in the reporting spreadsheet.
type SheetRow struct {
	Room      string `json:"room"`
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Requester string `json:"requester"`
	Unit      string `json:"unit"`
	Agenda    string `json:"agenda"`
}

// MatchKey identifies a mirrored row for deletion. The spreadsheet has no
// booking ids, so rows are matched on (room, date, startTime, requester).
type MatchKey struct {
	Room      string `json:"room"`
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	Requester string `json:"requester"`
}

type SheetMirror interface {
	Append(ctx context.Context, row SheetRow) error
	DeleteByMatch(ctx context.Context, key MatchKey) error
}

// WebhookMirror talks to the spreadsheet bridge over HTTP: POST /append with a
// row, POST /delete with a match key.
type WebhookMirror struct {
	baseURL string
	client  *http.Client
}

func NewWebhookMirror(baseURL string, timeout time.Duration) *WebhookMirror {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookMirror{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (m *WebhookMirror) Append(ctx context.Context, row SheetRow) error {
	return m.post(ctx, m.baseURL+"/append", row)
}

func (m *WebhookMirror) DeleteByMatch(ctx context.Context, key MatchKey) error {
	return m.post(ctx, m.baseURL+"/delete", key)
}

func (m *WebhookMirror) post(ctx context.Context, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
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
		return fmt.Errorf("sheet bridge returned %s", resp.Status)
	}
	return nil
}
