package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notifier delivers user-facing notifications. Delivery is fire-and-forget:
// implementations swallow their own failures.
type Notifier interface {
	Notify(ctx context.Context, title, description string, severity Severity)
}

// Log writes notifications to the service log.
type Log struct {
	Logger zerolog.Logger
}

func (l Log) Notify(_ context.Context, title, description string, severity Severity) {
	ev := l.Logger.Info()
	switch severity {
	case SeverityWarning:
		ev = l.Logger.Warn()
	case SeverityError:
		ev = l.Logger.Error()
	}
	ev.Str("title", title).Str("description", description).Msg("notification")
}

// Webhook POSTs notifications as JSON to a configured endpoint.
type Webhook struct {
	URL    string
	Client *http.Client
	Logger zerolog.Logger
}

type webhookPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
	At          string `json:"at"`
}

func (w Webhook) Notify(ctx context.Context, title, description string, severity Severity) {
	if strings.TrimSpace(w.URL) == "" {
		return
	}
	client := w.Client
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}

	body, err := json.Marshal(webhookPayload{
		Title:       title,
		Description: description,
		Severity:    string(severity),
		At:          time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		w.Logger.Warn().Err(err).Msg("notification payload encode failed")
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		w.Logger.Warn().Err(err).Msg("notification request build failed")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		w.Logger.Warn().Err(err).Str("url", w.URL).Msg("notification delivery failed")
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		w.Logger.Warn().Int("status", resp.StatusCode).Str("url", w.URL).Msg("notification rejected")
	}
}

// Multi fans a notification out to several notifiers.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, title, description string, severity Severity) {
	for _, n := range m {
		n.Notify(ctx, title, description, severity)
	}
}
