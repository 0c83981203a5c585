package api_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/vaccine-alert/internal/api"
	"github.com/donaldgifford/vaccine-alert/internal/cowin"
	domain "github.com/donaldgifford/vaccine-alert/pkg/types"
)

type stubScheduler struct {
	status domain.PollStatus
}

func (s *stubScheduler) Status() domain.PollStatus { return s.status }
func (*stubScheduler) Interval() time.Duration     { return time.Minute }
func (*stubScheduler) NextPoll() time.Time         { return time.Time{} }

func TestNewServer_Routes(t *testing.T) {
	t.Parallel()

	sched := &stubScheduler{status: domain.PollStatus{
		Location:      "pincode 400001",
		LastSuccessAt: time.Now(),
		LastOutcome:   domain.TickUnavailable,
	}}

	e := api.NewServer(api.Deps{
		Scheduler:   sched,
		RateLimiter: cowin.NewRateLimiter(100, 5*time.Minute, 1),
		Channels:    []string{"telegram"},
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{name: "healthz", path: "/healthz", wantStatus: http.StatusOK, wantBody: `"ok"`},
		{name: "readyz", path: "/readyz", wantStatus: http.StatusOK, wantBody: `"ready"`},
		{name: "metrics", path: "/metrics", wantStatus: http.StatusOK, wantBody: "va_"},
		{name: "status", path: "/api/v1/status", wantStatus: http.StatusOK, wantBody: `"pincode 400001"`},
		{name: "quota", path: "/api/v1/quota", wantStatus: http.StatusOK, wantBody: `"window_limit":100`},
		{name: "openapi", path: "/openapi.json", wantStatus: http.StatusOK, wantBody: "get-status"},
		{name: "unknown", path: "/nope", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, tt.path, http.NoBody)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
		})
	}
}
