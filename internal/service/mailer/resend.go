package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"maximally-judging/pkg/logger"
)

const resendEndpoint = "https://api.resend.com/emails"

// ResendMailer sends transactional email through the Resend HTTP API.
type ResendMailer struct {
	apiKey     string
	from       string
	endpoint   string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewResendMailer creates a mailer using the given API key and sender
// address.
func NewResendMailer(apiKey, from string, logger *logger.Logger) *ResendMailer {
	return &ResendMailer{
		apiKey:   apiKey,
		from:     from,
		endpoint: resendEndpoint,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger,
	}
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

// Send delivers one plain-text message.
func (m *ResendMailer) Send(ctx context.Context, to, subject, body string) error {
	payload, err := json.Marshal(resendRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		Text:    body,
	})
	if err != nil {
		return fmt.Errorf("failed to encode mail request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build mail request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mail request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		m.logger.WithFields(map[string]interface{}{
			"status_code": resp.StatusCode,
			"response":    string(respBody),
		}).Error("Resend rejected the message")
		return fmt.Errorf("mail provider returned status %d", resp.StatusCode)
	}

	return nil
}
