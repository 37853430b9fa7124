package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const publishHTTPTimeout = 30 * time.Second

// Publisher receives each confirmed transaction exactly once. The core
// performs no retry; the downstream endpoint is expected to be idempotent.
type Publisher interface {
	Publish(rec TransactionRecord) error
}

// publishPayload is the outbound wire format of a confirmation publish.
type publishPayload struct {
	ID             string    `json:"id"`
	Category       string    `json:"purchase_type"`
	Amount         string    `json:"amount"`
	Installments   int       `json:"installments"`
	LastFourDigits string    `json:"last_four_digits"`
	OwnerID        string    `json:"user"`
	Payer          string    `json:"payer"`
	SourceText     string    `json:"ocr_text"`
	CreatedAt      time.Time `json:"created_at"`
	Status         string    `json:"status"`
}

// WebhookPublisher POSTs confirmed transactions as JSON to a configured
// endpoint, optionally with a bearer token.
type WebhookPublisher struct {
	URL    string
	Token  string
	Client *http.Client
}

func NewWebhookPublisher(url, token string) *WebhookPublisher {
	return &WebhookPublisher{
		URL:    url,
		Token:  token,
		Client: &http.Client{Timeout: publishHTTPTimeout},
	}
}

func (p *WebhookPublisher) Publish(rec TransactionRecord) error {
	payload := publishPayload{
		ID:             rec.ID,
		Category:       rec.Category,
		Amount:         rec.Amount,
		Installments:   rec.Installments,
		LastFourDigits: rec.LastFourDigits,
		OwnerID:        rec.OwnerID,
		Payer:          rec.Payer,
		SourceText:     rec.SourceText,
		CreatedAt:      rec.CreatedAt,
		Status:         strings.ToUpper(rec.Status),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal publish payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, p.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build publish request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.Token != "" {
		req.Header.Set("Authorization", "Bearer "+p.Token)
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return fmt.Errorf("publish request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("publish endpoint returned %s", resp.Status)
	}
	return nil
}
