package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/vaccine-alert/internal/cowin"
)

// QuotaHandler reports the upstream call budget.
type QuotaHandler struct {
	rl *cowin.RateLimiter
}

// NewQuotaHandler creates a new QuotaHandler.
func NewQuotaHandler(rl *cowin.RateLimiter) *QuotaHandler {
	return &QuotaHandler{rl: rl}
}

// QuotaOutput is the response body for the quota endpoint.
type QuotaOutput struct {
	Body struct {
		WindowLimit int64     `json:"window_limit" example:"100"                  doc:"Calls allowed per rate-limit window"`
		WindowUsed  int64     `json:"window_used"  example:"12"                   doc:"Calls made in the current window"`
		Remaining   int64     `json:"remaining"    example:"88"                   doc:"Calls left in the current window"`
		ResetAt     time.Time `json:"reset_at"     example:"2021-05-10T09:35:00Z" doc:"When the current window ends"`
	}
}

// GetQuota returns the current upstream call budget.
func (h *QuotaHandler) GetQuota(_ context.Context, _ *struct{}) (*QuotaOutput, error) {
	resp := &QuotaOutput{}
	if h.rl == nil {
		return resp, nil
	}

	resp.Body.WindowUsed = h.rl.Count()
	resp.Body.Remaining = h.rl.Remaining()
	resp.Body.WindowLimit = resp.Body.WindowUsed + resp.Body.Remaining
	resp.Body.ResetAt = h.rl.ResetAt()

	return resp, nil
}

// RegisterQuotaRoutes registers the quota endpoint with the Huma API.
func RegisterQuotaRoutes(api huma.API, h *QuotaHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "get-quota",
		Method:      http.MethodGet,
		Path:        "/api/v1/quota",
		Summary:     "Get upstream API quota",
		Description: "Returns calls used and remaining in the current availability API rate-limit window.",
		Tags:        []string{"cowin"},
	}, h.GetQuota)
}
