package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/donaldgifford/vaccine-alert/internal/cowin"
	"github.com/donaldgifford/vaccine-alert/internal/metrics"
	"github.com/donaldgifford/vaccine-alert/internal/notify"
	domain "github.com/donaldgifford/vaccine-alert/pkg/types"
)

const defaultEscalateAfter = 3

// AlertDispatcher delivers one alert event to every configured channel.
type AlertDispatcher interface {
	Dispatch(ctx context.Context, event domain.AlertEvent) []notify.Result
}

// State is everything carried from one poll to the next.
type State struct {
	Alert               domain.AlertState
	ConsecutiveFailures int
}

// TickReport describes what a single poll did.
type TickReport struct {
	Query      domain.LocationQuery
	Outcome    domain.TickOutcome
	Result     domain.Result
	Err        error
	Event      *domain.AlertEvent
	Deliveries []notify.Result
	StartedAt  time.Time
	Duration   time.Duration
}

// Succeeded reports whether the upstream document was fetched and parsed.
func (r *TickReport) Succeeded() bool {
	return r.Outcome == domain.TickAvailable || r.Outcome == domain.TickUnavailable
}

// Poller runs one fetch, evaluate, notify cycle per call.
type Poller struct {
	client        cowin.AvailabilityClient
	dispatcher    AlertDispatcher
	evaluator     Evaluator
	kind          domain.LocationKind
	code          string
	loc           *time.Location
	escalateAfter int
	log           *slog.Logger
	nowFunc       func() time.Time
	newID         func() string
}

// PollerOption configures the Poller.
type PollerOption func(*Poller)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) PollerOption {
	return func(p *Poller) {
		p.log = l
	}
}

// WithFilter narrows which sessions count as open.
func WithFilter(f Filter) PollerOption {
	return func(p *Poller) {
		p.evaluator = Evaluator{Filter: f}
	}
}

// WithTimeLocation sets the zone used to compute the query date.
func WithTimeLocation(loc *time.Location) PollerOption {
	return func(p *Poller) {
		if loc != nil {
			p.loc = loc
		}
	}
}

// WithEscalateAfter sets how many consecutive failed polls are logged at
// warn level before switching to error.
func WithEscalateAfter(n int) PollerOption {
	return func(p *Poller) {
		if n > 0 {
			p.escalateAfter = n
		}
	}
}

// WithNowFunc overrides the clock for testing.
func WithNowFunc(f func() time.Time) PollerOption {
	return func(p *Poller) {
		p.nowFunc = f
	}
}

// NewPoller creates a Poller for the location identified by kind and code.
func NewPoller(
	client cowin.AvailabilityClient,
	dispatcher AlertDispatcher,
	kind domain.LocationKind,
	code string,
	opts ...PollerOption,
) *Poller {
	p := &Poller{
		client:        client,
		dispatcher:    dispatcher,
		kind:          kind,
		code:          code,
		loc:           time.Local,
		escalateAfter: defaultEscalateAfter,
		log:           slog.Default(),
		nowFunc:       time.Now,
		newID:         func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Location returns the watched location as a human-readable string.
func (p *Poller) Location() string {
	return fmt.Sprintf("%s %s", p.kind, p.code)
}

// Query builds the lookup for today in the configured zone.
func (p *Poller) Query() domain.LocationQuery {
	now := p.nowFunc().In(p.loc)
	y, m, d := now.Date()
	return domain.LocationQuery{
		Kind: p.kind,
		Code: p.code,
		Date: time.Date(y, m, d, 0, 0, 0, 0, p.loc),
	}
}

// Check fetches and evaluates once without touching alert state.
func (p *Poller) Check(ctx context.Context) (domain.LocationQuery, domain.Result, error) {
	q := p.Query()
	doc, err := p.client.Fetch(ctx, q)
	if err != nil {
		return q, domain.Result{}, err
	}
	return q, p.evaluator.Evaluate(doc), nil
}

// Poll runs one tick. It never returns an error and never panics: failures
// are reported in the TickReport and leave the alert state unchanged. An
// alert is dispatched only when availability rises from false to true.
func (p *Poller) Poll(ctx context.Context, st State) (next State, rep TickReport) {
	rep.StartedAt = p.nowFunc()
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			next = State{Alert: st.Alert, ConsecutiveFailures: st.ConsecutiveFailures + 1}
			rep.Outcome = domain.TickPanic
			rep.Err = fmt.Errorf("poll panicked: %v", r)
			p.log.Error("poll panicked", "location", p.Location(), "panic", r)
		}
		rep.Duration = time.Since(start)
		p.record(next, &rep)
	}()

	q, result, err := p.Check(ctx)
	rep.Query = q

	if err != nil {
		next = State{Alert: st.Alert, ConsecutiveFailures: st.ConsecutiveFailures + 1}
		rep.Outcome = classify(err)
		rep.Err = err
		p.logFailure(ctx, &rep, next.ConsecutiveFailures)
		return next, rep
	}

	rep.Result = result
	rep.Outcome = domain.TickUnavailable
	if result.Available {
		rep.Outcome = domain.TickAvailable
	}

	if st.ConsecutiveFailures > 0 {
		p.log.Info("availability API recovered",
			"location", p.Location(), "failed_polls", st.ConsecutiveFailures)
	}

	if st.Alert.Rising(result) {
		event := domain.AlertEvent{
			ID:          p.newID(),
			Message:     notify.FormatMessage(q, result, rep.StartedAt),
			Location:    q,
			OpenCenters: result.OpenCenters,
			Timestamp:   rep.StartedAt,
		}
		rep.Event = &event

		p.log.Info("vaccine slots available, sending alert",
			"event_id", event.ID,
			"location", p.Location(),
			"open_centers", len(result.OpenCenters),
			"open_capacity", result.OpenCapacity(),
		)
		metrics.AlertsFiredTotal.Inc()
		rep.Deliveries = p.dispatcher.Dispatch(ctx, event)
		if !notify.Delivered(rep.Deliveries) {
			p.log.Warn("alert was not delivered on any channel", "event_id", event.ID)
		}
	} else {
		p.log.Debug("poll complete",
			"location", p.Location(),
			"available", result.Available,
			"open_centers", len(result.OpenCenters),
		)
	}

	// Advance on every successful poll, whatever the dispatch outcome.
	next = State{Alert: domain.AlertState{LastAvailable: result.Available}}
	return next, rep
}

func classify(err error) domain.TickOutcome {
	switch {
	case errors.Is(err, cowin.ErrBudgetExhausted):
		return domain.TickBudget
	case errors.Is(err, cowin.ErrFormat):
		return domain.TickFormat
	default:
		return domain.TickTransport
	}
}

func (p *Poller) logFailure(ctx context.Context, rep *TickReport, failures int) {
	level := slog.LevelWarn
	if failures >= p.escalateAfter {
		level = slog.LevelError
	}

	msg := "availability fetch failed, will retry next tick"
	if rep.Outcome == domain.TickFormat {
		msg = "availability response had an unexpected shape, skipping tick"
	}

	p.log.Log(ctx, level, msg,
		"location", p.Location(),
		"outcome", string(rep.Outcome),
		"consecutive_failures", failures,
		"error", rep.Err,
	)
}

func (p *Poller) record(next State, rep *TickReport) {
	metrics.PollsTotal.WithLabelValues(string(rep.Outcome)).Inc()
	metrics.PollDuration.Observe(rep.Duration.Seconds())
	metrics.ConsecutiveFailures.Set(float64(next.ConsecutiveFailures))

	if rep.Succeeded() {
		available := 0.0
		if rep.Result.Available {
			available = 1
		}
		metrics.Available.Set(available)
		metrics.OpenCenters.Set(float64(len(rep.Result.OpenCenters)))
	}
}
