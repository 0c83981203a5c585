package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/donaldgifford/vaccine-alert/internal/metrics"
	domain "github.com/donaldgifford/vaccine-alert/pkg/types"
)

const defaultChannelTimeout = 10 * time.Second

// Dispatcher fans one alert event out to every configured channel.
type Dispatcher struct {
	channels []Channel
	timeout  time.Duration
	log      *slog.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithChannelTimeout bounds each channel's Send call.
func WithChannelTimeout(d time.Duration) DispatcherOption {
	return func(disp *Dispatcher) {
		if d > 0 {
			disp.timeout = d
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) DispatcherOption {
	return func(disp *Dispatcher) {
		disp.log = l
	}
}

// NewDispatcher creates a Dispatcher over channels, which are attempted
// concurrently and reported in the given order.
func NewDispatcher(channels []Channel, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		channels: channels,
		timeout:  defaultChannelTimeout,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Channels returns the configured channel names in dispatch order.
func (d *Dispatcher) Channels() []string {
	names := make([]string, 0, len(d.channels))
	for _, ch := range d.channels {
		names = append(names, ch.Name())
	}
	return names
}

// Dispatch sends event to every channel and waits for all of them. One
// channel failing, timing out or panicking never affects another.
func (d *Dispatcher) Dispatch(ctx context.Context, event domain.AlertEvent) []Result {
	results := make([]Result, len(d.channels))

	var wg sync.WaitGroup
	for i, ch := range d.channels {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = d.deliver(ctx, ch, event)
		}()
	}
	wg.Wait()

	return results
}

func (d *Dispatcher) deliver(ctx context.Context, ch Channel, event domain.AlertEvent) Result {
	name := ch.Name()
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("channel panicked: %v", r)
			}
		}()
		done <- ch.Send(ctx, event)
	}()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = fmt.Errorf("channel did not finish: %w", ctx.Err())
	}

	res := Result{Channel: name, Err: err, Duration: time.Since(start)}
	switch {
	case err == nil:
		res.Outcome = OutcomeDelivered
		d.log.Info("notification delivered",
			"channel", name, "event_id", event.ID, "duration", res.Duration)
	case errors.Is(err, ErrUnsupported):
		res.Outcome = OutcomeUnsupported
		d.log.Info("notification channel unsupported",
			"channel", name, "event_id", event.ID, "error", err)
	default:
		res.Outcome = OutcomeFailed
		metrics.NotificationFailuresTotal.Inc()
		d.log.Warn("notification failed",
			"channel", name, "event_id", event.ID, "error", err)
	}

	metrics.NotificationsTotal.WithLabelValues(name, string(res.Outcome)).Inc()
	metrics.NotificationDuration.WithLabelValues(name).Observe(res.Duration.Seconds())

	return res
}
