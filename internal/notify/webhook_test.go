package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookChannel_Send(t *testing.T) {
	t.Parallel()

	var received map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "vaccine-alert/1.0", r.Header.Get("User-Agent"))
		assert.Equal(t, "ops", r.Header.Get("X-Team"))
		assert.Empty(t, r.Header.Get("X-Signature-256"))

		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ch := NewWebhookChannel(srv.URL, WithWebhookHeaders(map[string]string{"X-Team": "ops"}))
	require.NoError(t, ch.Send(context.Background(), testEvent()))

	assert.Equal(t, "slots_available", received["event"])
	assert.Equal(t, testEvent().ID, received["id"])
	assert.Equal(t, "pincode 400001", received["location"])
	assert.Equal(t, "2021-05-10T09:30:00Z", received["timestamp"])
	centers, ok := received["open_centers"].([]any)
	require.True(t, ok)
	assert.Len(t, centers, 1)
}

func TestWebhookChannel_Send_WithHMAC(t *testing.T) {
	t.Parallel()

	var signature string
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		signature = r.Header.Get("X-Signature-256")
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	ch := NewWebhookChannel(srv.URL, WithWebhookSecret("test-secret"))
	require.NoError(t, ch.Send(context.Background(), testEvent()))

	assert.Equal(t, "sha256="+signHMAC(body, []byte("test-secret")), signature)
}

func TestWebhookChannel_Send_Errors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewWebhookChannel(srv.URL).Send(context.Background(), testEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")

	err = NewWebhookChannel("http://127.0.0.1:1").Send(context.Background(), testEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sending webhook")
}

func TestSignHMAC(t *testing.T) {
	t.Parallel()

	// Known HMAC-SHA256("key", "The quick brown fox jumps over the lazy dog").
	assert.Equal(t,
		"f7bc83f430538424b13298e6aa6fb143ef4d59a14946175997479dbc2d1a3cd8",
		signHMAC([]byte("The quick brown fox jumps over the lazy dog"), []byte("key")),
	)
}
