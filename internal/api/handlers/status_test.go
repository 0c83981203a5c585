package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/vaccine-alert/internal/api/handlers"
	domain "github.com/donaldgifford/vaccine-alert/pkg/types"
)

func TestGetStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		src          *fakeSource
		channels     []string
		wantChannels []string
		wantOutcome  domain.TickOutcome
		wantNextPoll bool
	}{
		{
			name: "available poll with channels",
			src: &fakeSource{
				status: domain.PollStatus{
					Location:      "pincode 400001",
					LastPollAt:    now,
					LastSuccessAt: now,
					LastOutcome:   domain.TickAvailable,
					Available:     true,
					OpenCenters:   2,
					AlertsSent:    1,
				},
				interval: 5 * time.Minute,
				next:     now.Add(5 * time.Minute),
			},
			channels:     []string{"telegram", "desktop"},
			wantChannels: []string{"telegram", "desktop"},
			wantOutcome:  domain.TickAvailable,
			wantNextPoll: true,
		},
		{
			name: "failed poll without channels",
			src: &fakeSource{
				status: domain.PollStatus{
					Location:            "district 395",
					LastPollAt:          now,
					LastOutcome:         domain.TickTransport,
					LastError:           "transport error: executing request: connection refused",
					ConsecutiveFailures: 3,
				},
				interval: time.Minute,
			},
			wantChannels: []string{},
			wantOutcome:  domain.TickTransport,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := handlers.NewStatusHandler(tt.src, tt.channels)

			_, api := humatest.New(t)
			handlers.RegisterStatusRoutes(api, h)

			resp := api.Get("/api/v1/status")
			require.Equal(t, http.StatusOK, resp.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))

			assert.Equal(t, tt.src.status.Location, body["location"])
			assert.Equal(t, string(tt.wantOutcome), body["last_outcome"])
			assert.Equal(t, tt.src.interval.String(), body["interval"])
			assert.EqualValues(t, tt.src.status.ConsecutiveFailures, body["consecutive_failures"])

			channels, ok := body["channels"].([]any)
			require.True(t, ok)
			assert.Len(t, channels, len(tt.wantChannels))

			_, hasNext := body["next_poll"]
			assert.Equal(t, tt.wantNextPoll, hasNext)
		})
	}
}
