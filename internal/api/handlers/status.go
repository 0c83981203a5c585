package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	domain "github.com/donaldgifford/vaccine-alert/pkg/types"
)

// SchedulerSource is a StatusSource that also knows when it next fires.
type SchedulerSource interface {
	StatusSource
	NextPoll() time.Time
}

// StatusHandler reports the latest poll snapshot.
type StatusHandler struct {
	src      SchedulerSource
	channels []string
}

// NewStatusHandler creates a new StatusHandler. channels lists the names of
// the configured notification channels.
func NewStatusHandler(src SchedulerSource, channels []string) *StatusHandler {
	return &StatusHandler{src: src, channels: channels}
}

// StatusOutput is the response body for the status endpoint.
type StatusOutput struct {
	Body struct {
		domain.PollStatus
		Interval string    `json:"interval"            example:"5m0s"                 doc:"Poll interval"`
		NextPoll time.Time `json:"next_poll,omitzero"  example:"2021-05-10T09:35:00Z" doc:"When the next poll is scheduled"`
		Channels []string  `json:"channels"            example:"[\"telegram\"]"       doc:"Configured notification channels"`
	}
}

// GetStatus returns the most recent poll snapshot.
func (h *StatusHandler) GetStatus(_ context.Context, _ *struct{}) (*StatusOutput, error) {
	resp := &StatusOutput{}
	resp.Body.PollStatus = h.src.Status()
	resp.Body.Interval = h.src.Interval().String()
	resp.Body.NextPoll = h.src.NextPoll()
	resp.Body.Channels = h.channels
	if resp.Body.Channels == nil {
		resp.Body.Channels = []string{}
	}
	return resp, nil
}

// RegisterStatusRoutes registers the status endpoint with the Huma API.
func RegisterStatusRoutes(api huma.API, h *StatusHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "get-status",
		Method:      http.MethodGet,
		Path:        "/api/v1/status",
		Summary:     "Get poll status",
		Description: "Returns the outcome of the most recent poll, alert counters and the next scheduled poll.",
		Tags:        []string{"status"},
	}, h.GetStatus)
}
