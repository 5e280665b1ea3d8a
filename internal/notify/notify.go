// Package notify delivers (title, body) notifications about account
// outcomes. Delivery is best-effort by contract: callers log a failed Send
// and move on, they never abort the batch over it.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
)

// Notifier accepts (title, body) text pairs.
type Notifier interface {
	Send(ctx context.Context, title, body string) error
}

// retryBase is a seam so tests do not sit through real backoff.
var retryBase = 2 * time.Second

// Noop discards notifications; used when no webhook is configured.
type Noop struct{}

func (Noop) Send(context.Context, string, string) error { return nil }

type message struct {
	Title string `json:"title"`
	Body  string `json:"message"`
}

// Webhook posts notifications as JSON to a configured endpoint. Transient
// failures (network errors, 5xx) are retried a few times with backoff.
type Webhook struct {
	url    string
	client *http.Client
}

func NewWebhook(url string) *Webhook {
	return &Webhook{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (w *Webhook) Send(ctx context.Context, title, body string) error {
	payload, err := json.Marshal(message{Title: title, Body: body})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	backoff := retry.WithMaxRetries(2, retry.NewConstant(retryBase))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := w.client.Do(req)
		if err != nil {
			return retry.RetryableError(fmt.Errorf("post notification: %w", err))
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return retry.RetryableError(fmt.Errorf("notification endpoint: %s", resp.Status))
		}
		if resp.StatusCode >= 400 {
			return fmt.Errorf("notification endpoint: %s", resp.Status)
		}

		return nil
	})
}
