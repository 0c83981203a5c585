// Package notify defines the notification channel interface, its
// implementations, and the dispatcher that fans an alert out to them.
package notify

import (
	"context"
	"errors"
	"time"

	domain "github.com/donaldgifford/vaccine-alert/pkg/types"
)

// ErrUnsupported is returned by a channel that has no delivery mechanism on
// the current platform. It is a capability gap, not a failure.
var ErrUnsupported = errors.New("channel unsupported on this platform")

// Channel delivers a single alert event to one destination. Implementations
// must be safe for concurrent use.
type Channel interface {
	// Name returns the channel identifier used in logs and metrics.
	Name() string

	// Send delivers the event. It returns nil only when the destination
	// acknowledged the message.
	Send(ctx context.Context, event domain.AlertEvent) error
}

// Outcome is the per-channel delivery result.
type Outcome string

// Outcome constants.
const (
	OutcomeDelivered   Outcome = "delivered"
	OutcomeFailed      Outcome = "failed"
	OutcomeUnsupported Outcome = "unsupported"
)

// Result records what happened when one channel was asked to send an event.
type Result struct {
	Channel  string        `json:"channel"`
	Outcome  Outcome       `json:"outcome"`
	Err      error         `json:"-"`
	Duration time.Duration `json:"duration"`
}

// Delivered reports whether at least one result was delivered.
func Delivered(results []Result) bool {
	for _, r := range results {
		if r.Outcome == OutcomeDelivered {
			return true
		}
	}
	return false
}
