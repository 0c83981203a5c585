// Package domain defines the core business types for the vaccine slot alerter.
package domain

import (
	"fmt"
	"time"
)

// LocationKind identifies how a watched location is addressed upstream.
type LocationKind string

// Location kind constants.
const (
	LocationPincode  LocationKind = "pincode"
	LocationDistrict LocationKind = "district"
)

// DateLayout is the DD-MM-YYYY format the availability API expects.
const DateLayout = "02-01-2006"

// LocationQuery is a single availability lookup. Code is fixed at startup;
// Date is recomputed for every poll.
type LocationQuery struct {
	Kind LocationKind `json:"kind"`
	Code string       `json:"code"`
	Date time.Time    `json:"date"`
}

// DateParam returns Date formatted for the upstream query string.
func (q LocationQuery) DateParam() string {
	return q.Date.Format(DateLayout)
}

// String returns a human-readable form such as "pincode 400001".
func (q LocationQuery) String() string {
	return fmt.Sprintf("%s %s", q.Kind, q.Code)
}

// Document is one parsed availability response. It is built fresh per poll
// and never mutated after construction.
type Document struct {
	Centers []Center `json:"centers"`
}

// Center is a vaccination site and its planned sessions.
type Center struct {
	ID       int       `json:"center_id"`
	Name     string    `json:"name"`
	Address  string    `json:"address,omitempty"`
	District string    `json:"district_name,omitempty"`
	Pincode  int       `json:"pincode,omitempty"`
	FeeType  string    `json:"fee_type,omitempty"`
	Sessions []Session `json:"sessions"`
}

// Session is a single planned vaccination session at a center.
type Session struct {
	ID                string   `json:"session_id,omitempty"`
	Date              string   `json:"date"`
	AvailableCapacity int      `json:"available_capacity"`
	Dose1Capacity     int      `json:"available_capacity_dose1"`
	Dose2Capacity     int      `json:"available_capacity_dose2"`
	MinAgeLimit       int      `json:"min_age_limit"`
	Vaccine           string   `json:"vaccine,omitempty"`
	Slots             []string `json:"slots,omitempty"`
}

// CapacityFor returns the capacity counted for dose: 1 or 2 read the
// per-dose figure, anything else the total.
func (s Session) CapacityFor(dose int) int {
	switch dose {
	case 1:
		return s.Dose1Capacity
	case 2:
		return s.Dose2Capacity
	default:
		return s.AvailableCapacity
	}
}

// Result is the outcome of evaluating one Document. Dose records which
// capacity figure the evaluation counted (0 for the total).
type Result struct {
	Available   bool     `json:"available"`
	Dose        int      `json:"dose,omitempty"`
	OpenCenters []Center `json:"open_centers"`
}

// OpenCapacity sums the capacity counted for r.Dose across every open
// session.
func (r Result) OpenCapacity() int {
	var total int
	for i := range r.OpenCenters {
		for _, s := range r.OpenCenters[i].Sessions {
			total += s.CapacityFor(r.Dose)
		}
	}
	return total
}

// AlertState is the only state carried between polls. The zero value means
// nothing has been seen available yet.
type AlertState struct {
	LastAvailable bool `json:"last_available"`
}

// Rising reports whether r is a false->true transition relative to s.
func (s AlertState) Rising(r Result) bool {
	return r.Available && !s.LastAvailable
}

// AlertEvent is built once per rising edge and handed to every channel.
type AlertEvent struct {
	ID          string        `json:"id"`
	Message     string        `json:"message"`
	Location    LocationQuery `json:"location"`
	OpenCenters []Center      `json:"open_centers"`
	Timestamp   time.Time     `json:"timestamp"`
}

// TickOutcome classifies how a single poll ended.
type TickOutcome string

// Tick outcome constants.
const (
	TickAvailable   TickOutcome = "available"
	TickUnavailable TickOutcome = "unavailable"
	TickTransport   TickOutcome = "transport_error"
	TickFormat      TickOutcome = "format_error"
	TickBudget      TickOutcome = "budget_exhausted"
	TickPanic       TickOutcome = "panic"
)

// PollStatus is a read-only snapshot of the most recent poll.
type PollStatus struct {
	Location            string      `json:"location"`
	LastPollAt          time.Time   `json:"last_poll_at"`
	LastSuccessAt       time.Time   `json:"last_success_at,omitzero"`
	LastOutcome         TickOutcome `json:"last_outcome"`
	LastError           string      `json:"last_error,omitempty"`
	Available           bool        `json:"available"`
	OpenCenters         int         `json:"open_centers"`
	ConsecutiveFailures int         `json:"consecutive_failures"`
	AlertsSent          int         `json:"alerts_sent"`
	LastAlertAt         time.Time   `json:"last_alert_at,omitzero"`
}
