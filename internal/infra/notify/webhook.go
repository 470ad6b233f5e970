// Package notify delivers "send document by email" messages through an
// HTTP mail webhook. Delivery is fire and forget; the caller sees a failure
// but signing state never depends on it.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

type WebhookMailer struct {
	url        string
	httpClient *http.Client
}

func NewWebhookMailer(url string) (*WebhookMailer, error) {
	if url == "" {
		return nil, errors.New("mail webhook url is required")
	}
	return &WebhookMailer{
		url:        url,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

type mailMessage struct {
	To          string `json:"to"`
	Subject     string `json:"subject"`
	DocumentRef string `json:"document_ref"`
}

func (m *WebhookMailer) SendDocument(ctx context.Context, to, subject, documentRef string) error {
	if to == "" {
		return errors.New("destination address is required")
	}
	body, err := json.Marshal(mailMessage{To: to, Subject: subject, DocumentRef: documentRef})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("mail webhook: status %d", resp.StatusCode)
	}
	return nil
}
