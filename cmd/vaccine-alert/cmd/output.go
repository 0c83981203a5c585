package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/donaldgifford/vaccine-alert/internal/notify"
	domain "github.com/donaldgifford/vaccine-alert/pkg/types"
)

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

func printCheckTable(w io.Writer, q domain.LocationQuery, res domain.Result) error {
	tw := newTabWriter(w)
	tw.writef("Location:\t%s\n", q)
	tw.writef("Date:\t%s\n", q.DateParam())
	tw.writef("Available:\t%v\n", res.Available)
	if !res.Available {
		return tw.finish()
	}
	tw.writef("Open capacity:\t%d\n\n", res.OpenCapacity())

	tw.writef("CENTER\tPINCODE\tFEE\tDATE\tVACCINE\tAGE\tCAPACITY\n")
	for i := range res.OpenCenters {
		c := &res.OpenCenters[i]
		for _, s := range c.Sessions {
			tw.writef("%s\t%d\t%s\t%s\t%s\t%d+\t%d\n",
				truncate(c.Name, 40),
				c.Pincode,
				orDash(c.FeeType),
				s.Date,
				orDash(s.Vaccine),
				s.MinAgeLimit,
				s.AvailableCapacity,
			)
		}
	}
	return tw.finish()
}

// resultJSON carries the error text that notify.Result omits.
type resultJSON struct {
	notify.Result
	Error string `json:"error,omitempty"`
}

func resultsJSON(results []notify.Result) []resultJSON {
	out := make([]resultJSON, 0, len(results))
	for _, r := range results {
		rj := resultJSON{Result: r}
		if r.Err != nil {
			rj.Error = r.Err.Error()
		}
		out = append(out, rj)
	}
	return out
}

func printResultsTable(w io.Writer, results []notify.Result) error {
	tw := newTabWriter(w)
	tw.writef("CHANNEL\tOUTCOME\tDURATION\tERROR\n")
	for _, r := range results {
		errText := "-"
		if r.Err != nil {
			errText = truncate(r.Err.Error(), 60)
		}
		tw.writef("%s\t%s\t%s\t%s\n", r.Channel, r.Outcome, r.Duration.Round(time.Millisecond), errText)
	}
	return tw.finish()
}

func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
