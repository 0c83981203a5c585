package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/donaldgifford/vaccine-alert/internal/metrics"
	domain "github.com/donaldgifford/vaccine-alert/pkg/types"
)

// Scheduler runs the Poller on a fixed interval. It owns the poll State:
// ticks never overlap, and a tick that fires while the previous one is still
// running is dropped rather than queued.
type Scheduler struct {
	cron     *cron.Cron
	poller   *Poller
	interval time.Duration
	entryID  cron.EntryID
	job      cron.Job
	log      *slog.Logger

	skipInitial bool
	ctx         context.Context
	wg          sync.WaitGroup

	state  State // written only from job
	status atomic.Pointer[domain.PollStatus]
}

// SchedulerOption configures the Scheduler.
type SchedulerOption func(*Scheduler)

// WithSkipInitialPoll disables the poll normally run at Start.
func WithSkipInitialPoll(skip bool) SchedulerOption {
	return func(s *Scheduler) {
		s.skipInitial = skip
	}
}

// NewScheduler creates a Scheduler that calls p every interval.
func NewScheduler(
	p *Poller,
	interval time.Duration,
	log *slog.Logger,
	opts ...SchedulerOption,
) (*Scheduler, error) {
	if interval < time.Second {
		return nil, fmt.Errorf("poll interval %s is below the 1s scheduler resolution", interval)
	}

	cl := cronLogger{log: log}
	c := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl)),
	)

	s := &Scheduler{
		cron:     c,
		poller:   p,
		interval: interval,
		log:      log,
		ctx:      context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.job = cron.NewChain(cron.SkipIfStillRunning(cl)).Then(cron.FuncJob(s.runPoll))
	s.entryID = c.Schedule(cron.Every(interval), s.job)

	s.status.Store(&domain.PollStatus{Location: p.Location()})

	return s, nil
}

// Start begins polling. Unless disabled, one poll runs immediately instead
// of waiting a full interval. Polls use ctx; pass a context that outlives
// shutdown signals to let an in-flight poll finish during Stop.
func (s *Scheduler) Start(ctx context.Context) {
	s.ctx = ctx
	s.log.Info("scheduler started",
		"location", s.poller.Location(),
		"interval", s.interval.String(),
	)
	s.cron.Start()

	if !s.skipInitial {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.job.Run()
		}()
	}
}

// Stop halts scheduling. The returned context is done once any running
// poll has finished.
func (s *Scheduler) Stop() context.Context {
	s.log.Info("scheduler stopping")
	cronDone := s.cron.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-cronDone.Done()
		s.wg.Wait()
		cancel()
	}()
	return ctx
}

// Entries returns the registered cron entries for inspection.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

// Interval returns the poll interval.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Status returns a snapshot of the most recent poll. It is safe to call
// from any goroutine.
func (s *Scheduler) Status() domain.PollStatus {
	return *s.status.Load()
}

// NextPoll returns when the next scheduled poll fires, or the zero time
// before Start.
func (s *Scheduler) NextPoll() time.Time {
	return s.cron.Entry(s.entryID).Next
}

// SyncNextRunTimestamp publishes the next poll time as a metric.
func (s *Scheduler) SyncNextRunTimestamp() {
	if next := s.NextPoll(); !next.IsZero() {
		metrics.SchedulerNextPollTimestamp.Set(float64(next.Unix()))
	}
}

func (s *Scheduler) runPoll() {
	next, rep := s.poller.Poll(s.ctx, s.state)
	s.state = next
	s.publish(next, &rep)
	s.SyncNextRunTimestamp()
}

func (s *Scheduler) publish(st State, rep *TickReport) {
	prev := s.status.Load()
	status := domain.PollStatus{
		Location:            s.poller.Location(),
		LastPollAt:          rep.StartedAt,
		LastSuccessAt:       prev.LastSuccessAt,
		LastOutcome:         rep.Outcome,
		Available:           st.Alert.LastAvailable,
		OpenCenters:         prev.OpenCenters,
		ConsecutiveFailures: st.ConsecutiveFailures,
		AlertsSent:          prev.AlertsSent,
		LastAlertAt:         prev.LastAlertAt,
	}
	if rep.Err != nil {
		status.LastError = rep.Err.Error()
	}
	if rep.Succeeded() {
		status.LastSuccessAt = rep.StartedAt
		status.OpenCenters = len(rep.Result.OpenCenters)
	}
	if rep.Event != nil {
		status.AlertsSent++
		status.LastAlertAt = rep.Event.Timestamp
	}
	s.status.Store(&status)
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	if msg == "skip" {
		metrics.PollsSkippedTotal.Inc()
		l.log.Warn("previous poll still running, dropping tick")
		return
	}
	l.log.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error("cron: "+msg, append([]any{"error", err}, keysAndValues...)...)
}
