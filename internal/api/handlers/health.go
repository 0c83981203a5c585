package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	domain "github.com/donaldgifford/vaccine-alert/pkg/types"
)

// readyIntervals is how many poll intervals may pass without a successful
// poll before the process reports not ready.
const readyIntervals = 3

// StatusSource exposes the scheduler's latest poll snapshot.
type StatusSource interface {
	Status() domain.PollStatus
	Interval() time.Duration
}

// HealthHandler provides health and readiness endpoints.
type HealthHandler struct {
	src     StatusSource
	nowFunc func() time.Time
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(src StatusSource) *HealthHandler {
	return &HealthHandler{src: src, nowFunc: time.Now}
}

// WithNowFunc overrides the clock for testing.
func (h *HealthHandler) WithNowFunc(f func() time.Time) *HealthHandler {
	h.nowFunc = f
	return h
}

// Healthz returns 200 if the process is running.
func (*HealthHandler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, StatusResponse{Status: "ok"})
}

// Readyz returns 200 once a poll has succeeded within the last few
// intervals, 503 otherwise.
func (h *HealthHandler) Readyz(c echo.Context) error {
	status := h.src.Status()
	window := readyIntervals * h.src.Interval()

	if status.LastSuccessAt.IsZero() {
		return c.JSON(http.StatusServiceUnavailable, StatusResponse{
			Status: "unavailable",
			Reason: "no successful poll yet",
		})
	}

	if age := h.nowFunc().Sub(status.LastSuccessAt); age > window {
		return c.JSON(http.StatusServiceUnavailable, StatusResponse{
			Status: "unavailable",
			Reason: fmt.Sprintf("no successful poll in the last %s", window),
		})
	}

	return c.JSON(http.StatusOK, StatusResponse{Status: "ready"})
}
