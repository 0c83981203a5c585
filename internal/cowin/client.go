// Package cowin provides a client for the public CoWIN appointment
// availability API, abstracted behind an interface for testability.
package cowin

import (
	"context"
	"errors"

	domain "github.com/donaldgifford/vaccine-alert/pkg/types"
)

// Failure classes surfaced by Fetch. Callers distinguish them with errors.Is.
var (
	// ErrTransport covers connection, timeout, DNS and non-2xx responses.
	ErrTransport = errors.New("transport error")
	// ErrFormat means the response did not match the expected document shape.
	ErrFormat = errors.New("format error")
	// ErrBudgetExhausted is returned when the client-side call budget is spent.
	ErrBudgetExhausted = errors.New("call budget exhausted")
)

// Mode selects which upstream view is queried.
type Mode string

// Lookup modes.
const (
	ModeCalendar Mode = "calendar" // 7 days starting at the query date
	ModeDay      Mode = "day"      // the query date only
)

// AvailabilityClient fetches one availability document per call. It never
// retries; retrying is the scheduler's job.
type AvailabilityClient interface {
	Fetch(ctx context.Context, q domain.LocationQuery) (*domain.Document, error)
}
