// Package middleware provides Echo middleware for the vaccine-alert status
// server.
package middleware

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// probePaths are polled by orchestrators every few seconds. Only their first
// success and every failure are logged.
var probePaths = map[string]struct{}{
	"/healthz": {},
	"/readyz":  {},
	"/metrics": {},
}

// RequestID returns the request ID stored on c by RequestLog.
func RequestID(c echo.Context) string {
	id, _ := c.Get(requestIDKey).(string)
	return id
}

// RequestLog returns Echo middleware that logs one structured line per
// request and tags the request and response with an X-Request-ID.
func RequestLog(log *slog.Logger) echo.MiddlewareFunc {
	var seen sync.Map // probe path -> struct{} once it has succeeded

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			reqID := c.Request().Header.Get(requestIDHeader)
			if reqID == "" {
				reqID = uuid.NewString()
			}
			c.Set(requestIDKey, reqID)
			c.Response().Header().Set(requestIDHeader, reqID)

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			path := c.Request().URL.Path
			status := c.Response().Status

			level := slog.LevelInfo
			switch {
			case status >= 500:
				level = slog.LevelError
			case status >= 400:
				level = slog.LevelWarn
			}

			if _, probe := probePaths[path]; probe {
				if status < 400 {
					if _, loaded := seen.LoadOrStore(path, struct{}{}); loaded {
						return nil
					}
				} else {
					level = slog.LevelWarn
				}
			}

			log.Log(c.Request().Context(), level, "request",
				"method", c.Request().Method,
				"path", path,
				"status", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", reqID,
			)

			return nil
		}
	}
}
