package cmd

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/donaldgifford/vaccine-alert/internal/config"
	"github.com/donaldgifford/vaccine-alert/internal/cowin"
	"github.com/donaldgifford/vaccine-alert/internal/engine"
	"github.com/donaldgifford/vaccine-alert/internal/notify"
)

// app holds the components shared by every command.
type app struct {
	cfg        *config.Config
	log        *slog.Logger
	limiter    *cowin.RateLimiter
	dispatcher *notify.Dispatcher
	poller     *engine.Poller
}

func newApp(cfg *config.Config, log *slog.Logger) (*app, error) {
	loc, err := cfg.Location.TimeLocation()
	if err != nil {
		return nil, fmt.Errorf("resolving timezone: %w", err)
	}

	rl := cfg.Cowin.RateLimit
	limiter := cowin.NewRateLimiter(rl.Calls, rl.Window, rl.Burst)

	client := cowin.NewHTTPClient(
		cowin.WithBaseURL(cfg.Cowin.BaseURL),
		cowin.WithUserAgent(cfg.Cowin.UserAgent),
		cowin.WithAcceptLanguage(cfg.Cowin.AcceptLanguage),
		cowin.WithMode(cowin.Mode(cfg.Lookup.Mode)),
		cowin.WithHTTPClient(&http.Client{Timeout: cfg.Cowin.Timeout}),
		cowin.WithRateLimiter(limiter),
	)

	channels, err := notify.Build(&cfg.Notifications, log)
	if err != nil {
		return nil, fmt.Errorf("building notification channels: %w", err)
	}
	dispatcher := notify.NewDispatcher(channels,
		notify.WithChannelTimeout(cfg.Notifications.Timeout),
		notify.WithLogger(log),
	)

	f := cfg.Alerts.Filter
	poller := engine.NewPoller(client, dispatcher, cfg.Location.Kind(), cfg.Location.Code(),
		engine.WithLogger(log),
		engine.WithTimeLocation(loc),
		engine.WithEscalateAfter(cfg.Alerts.EscalateAfter),
		engine.WithFilter(engine.Filter{
			MinAge:      f.MinAge,
			Vaccine:     f.Vaccine,
			MinCapacity: f.MinCapacity,
			Dose:        f.Dose,
		}),
	)

	return &app{
		cfg:        cfg,
		log:        log,
		limiter:    limiter,
		dispatcher: dispatcher,
		poller:     poller,
	}, nil
}
