package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	domain "github.com/donaldgifford/vaccine-alert/pkg/types"
)

const webhookEvent = "slots_available"

// WebhookChannel POSTs the alert as JSON to a generic endpoint. When a
// secret is set the body is signed with HMAC-SHA256.
type WebhookChannel struct {
	url     string
	secret  string
	headers map[string]string
	client  *http.Client
}

// WebhookOption configures a WebhookChannel.
type WebhookOption func(*WebhookChannel)

// WithWebhookSecret enables request signing.
func WithWebhookSecret(secret string) WebhookOption {
	return func(w *WebhookChannel) {
		w.secret = secret
	}
}

// WithWebhookHeaders adds static headers to every request.
func WithWebhookHeaders(h map[string]string) WebhookOption {
	return func(w *WebhookChannel) {
		w.headers = h
	}
}

// WithWebhookHTTPClient sets a custom HTTP client.
func WithWebhookHTTPClient(c *http.Client) WebhookOption {
	return func(w *WebhookChannel) {
		w.client = c
	}
}

// NewWebhookChannel creates a webhook channel posting to url.
func NewWebhookChannel(url string, opts ...WebhookOption) *WebhookChannel {
	w := &WebhookChannel{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

type webhookPayload struct {
	Event       string          `json:"event"`
	ID          string          `json:"id"`
	Timestamp   string          `json:"timestamp"`
	Location    string          `json:"location"`
	Message     string          `json:"message"`
	OpenCenters []domain.Center `json:"open_centers"`
}

// Name implements Channel.
func (w *WebhookChannel) Name() string { return "webhook" }

// Send implements Channel.
func (w *WebhookChannel) Send(ctx context.Context, event domain.AlertEvent) error {
	body, err := json.Marshal(webhookPayload{
		Event:       webhookEvent,
		ID:          event.ID,
		Timestamp:   event.Timestamp.UTC().Format(time.RFC3339),
		Location:    event.Location.String(),
		Message:     event.Message,
		OpenCenters: event.OpenCenters,
	})
	if err != nil {
		return fmt.Errorf("marshaling webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating webhook request: %w", err)
	}
	for k, v := range w.headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "vaccine-alert/1.0")
	if w.secret != "" {
		req.Header.Set("X-Signature-256", "sha256="+signHMAC(body, []byte(w.secret)))
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func signHMAC(message, key []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write(message)
	return hex.EncodeToString(mac.Sum(nil))
}
