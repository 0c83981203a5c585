// Package engine implements the polling loop: fetching availability,
// evaluating it, detecting the unavailable to available edge and
// dispatching alerts on a fixed schedule.
package engine

import (
	"strings"

	domain "github.com/donaldgifford/vaccine-alert/pkg/types"
)

// Filter narrows which sessions count as open. The zero value accepts any
// session with positive capacity.
type Filter struct {
	MinAge      int    // session MinAgeLimit must be <= MinAge when set
	Vaccine     string // case-insensitive match when set
	MinCapacity int    // capacity must reach this; values below 1 mean 1
	Dose        int    // 1 or 2 reads the per-dose capacity; 0 reads the total
}

// Evaluator applies a Filter to availability documents.
type Evaluator struct {
	Filter Filter
}

// Evaluate reports availability with no filtering: a center is open when
// any of its sessions has capacity above zero.
func Evaluate(doc *domain.Document) domain.Result {
	return Evaluator{}.Evaluate(doc)
}

// Evaluate is pure: the same document always yields the same result and the
// document is never modified. Open centers keep document order and carry
// only their open sessions.
func (e Evaluator) Evaluate(doc *domain.Document) domain.Result {
	res := domain.Result{Dose: e.Filter.dose(), OpenCenters: []domain.Center{}}
	if doc == nil {
		return res
	}

	for i := range doc.Centers {
		c := &doc.Centers[i]

		var open []domain.Session
		for j := range c.Sessions {
			if e.Filter.Open(&c.Sessions[j]) {
				open = append(open, c.Sessions[j])
			}
		}
		if len(open) == 0 {
			continue
		}

		center := *c
		center.Sessions = open
		res.OpenCenters = append(res.OpenCenters, center)
	}

	res.Available = len(res.OpenCenters) > 0
	return res
}

// Open reports whether s passes the filter.
func (f Filter) Open(s *domain.Session) bool {
	if f.capacity(s) < max(f.MinCapacity, 1) {
		return false
	}
	if f.MinAge > 0 && s.MinAgeLimit > f.MinAge {
		return false
	}
	if f.Vaccine != "" && !strings.EqualFold(strings.TrimSpace(s.Vaccine), strings.TrimSpace(f.Vaccine)) {
		return false
	}
	return true
}

func (f Filter) capacity(s *domain.Session) int {
	return s.CapacityFor(f.dose())
}

func (f Filter) dose() int {
	if f.Dose == 1 || f.Dose == 2 {
		return f.Dose
	}
	return 0
}
