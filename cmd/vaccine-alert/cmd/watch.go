package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/vaccine-alert/internal/api"
	"github.com/donaldgifford/vaccine-alert/internal/engine"
	"github.com/donaldgifford/vaccine-alert/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Poll on an interval and alert when slots open",
		RunE:  runWatch,
	}
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	a, err := newApp(cfg, log)
	if err != nil {
		return err
	}

	sched, err := engine.NewScheduler(a.poller, cfg.Schedule.Interval, log,
		engine.WithSkipInitialPoll(cfg.Schedule.SkipInitialPoll),
	)
	if err != nil {
		return fmt.Errorf("creating scheduler: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Polls outlive the signal so a tick in flight can finish dispatching.
	sched.Start(context.WithoutCancel(ctx))

	serverErr := make(chan error, 1)
	var srv *http.Server
	if cfg.Server.Enabled {
		e := api.NewServer(api.Deps{
			Scheduler:   sched,
			RateLimiter: a.limiter,
			Channels:    a.dispatcher.Channels(),
			Version:     Version,
			Logger:      log,
		})
		srv = &http.Server{
			Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
			Handler:      e,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		}

		log.Info("starting status server", "addr", srv.Addr)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- err
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-serverErr:
		runErr = fmt.Errorf("status server: %w", err)
		log.Error("status server failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if srv != nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("shutting down status server", "error", err)
		}
	}

	select {
	case <-sched.Stop().Done():
	case <-shutdownCtx.Done():
		log.Warn("poll still running at shutdown deadline, exiting anyway")
	}

	log.Info("stopped")
	return runErr
}
