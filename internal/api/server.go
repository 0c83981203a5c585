// Package api assembles the vaccine-alert status server.
package api

import (
	"log/slog"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/donaldgifford/vaccine-alert/internal/api/handlers"
	mw "github.com/donaldgifford/vaccine-alert/internal/api/middleware"
	"github.com/donaldgifford/vaccine-alert/internal/cowin"
)

// Deps carries what the status server reads from.
type Deps struct {
	Scheduler   handlers.SchedulerSource
	RateLimiter *cowin.RateLimiter
	Channels    []string
	Version     string
	Logger      *slog.Logger
}

// NewServer returns an Echo instance serving probes, Prometheus metrics and
// the JSON status API.
func NewServer(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(mw.RequestLog(d.Logger))
	e.Use(mw.Recovery(d.Logger))
	e.Use(mw.Metrics())

	health := handlers.NewHealthHandler(d.Scheduler)
	e.GET("/healthz", health.Healthz)
	e.GET("/readyz", health.Readyz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	version := d.Version
	if version == "" {
		version = "dev"
	}
	humaAPI := humaecho.New(e, huma.DefaultConfig("vaccine-alert", version))
	handlers.RegisterStatusRoutes(humaAPI, handlers.NewStatusHandler(d.Scheduler, d.Channels))
	handlers.RegisterQuotaRoutes(humaAPI, handlers.NewQuotaHandler(d.RateLimiter))

	return e
}
