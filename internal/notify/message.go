package notify

import (
	"fmt"
	"strings"
	"time"

	domain "github.com/donaldgifford/vaccine-alert/pkg/types"
)

// telegramTextLimit is the Bot API's maximum message length in characters.
const telegramTextLimit = 4096

const truncationMarker = "\n…"

// truncateText cuts s to at most limit runes, marking the cut.
func truncateText(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	marker := []rune(truncationMarker)
	if limit <= len(marker) {
		return string(runes[:limit])
	}
	return string(runes[:limit-len(marker)]) + truncationMarker
}

// FormatMessage builds the alert text: a headline with the location, the
// time of the poll, and one line per open center. Capacities are the ones
// the result was evaluated on, so a dose filter shows per-dose figures.
func FormatMessage(q domain.LocationQuery, r domain.Result, at time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "There are vaccine slots available for %s.\n", q)
	if r.Dose > 0 {
		fmt.Fprintf(&b, "%d open center(s), %d dose %d slot(s) in total.\n",
			len(r.OpenCenters), r.OpenCapacity(), r.Dose)
	} else {
		fmt.Fprintf(&b, "%d open center(s), %d dose(s) in total.\n", len(r.OpenCenters), r.OpenCapacity())
	}
	b.WriteString(at.Format(time.ANSIC))
	for i := range r.OpenCenters {
		b.WriteString("\n- ")
		b.WriteString(CenterLine(&r.OpenCenters[i], r.Dose))
	}
	return b.String()
}

// CenterLine renders one open center as a single line of text, counting
// capacity for dose as Session.CapacityFor does.
func CenterLine(c *domain.Center, dose int) string {
	var b strings.Builder
	b.WriteString(c.Name)
	if c.Pincode != 0 {
		fmt.Fprintf(&b, " (%d)", c.Pincode)
	}
	if c.FeeType != "" {
		fmt.Fprintf(&b, " [%s]", c.FeeType)
	}
	b.WriteString(":")
	for i := range c.Sessions {
		s := &c.Sessions[i]
		fmt.Fprintf(&b, " %s", s.Date)
		if s.Vaccine != "" {
			fmt.Fprintf(&b, " %s", s.Vaccine)
		}
		fmt.Fprintf(&b, " %d+ x%d", s.MinAgeLimit, s.CapacityFor(dose))
		if i < len(c.Sessions)-1 {
			b.WriteString(";")
		}
	}
	return b.String()
}
