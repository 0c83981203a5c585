// Package handlers implements the HTTP handlers for the vaccine-alert
// status server.
package handlers

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Error string `json:"error" example:"something went wrong"`
}

// StatusResponse is a generic status response body.
type StatusResponse struct {
	Status string `json:"status"           example:"ok"`
	Reason string `json:"reason,omitempty" example:"no successful poll in the last 3m0s"`
}
