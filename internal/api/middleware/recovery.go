package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime"

	"github.com/labstack/echo/v4"

	"github.com/donaldgifford/vaccine-alert/internal/api/handlers"
)

const stackBufSize = 4096

// Recovery returns Echo middleware that turns a handler panic into a logged
// stack trace and a 500 response. The poll loop is never affected.
func Recovery(log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}

				buf := make([]byte, stackBufSize)
				buf = buf[:runtime.Stack(buf, false)]

				log.Error("handler panic recovered",
					"panic", fmt.Sprint(r),
					"method", c.Request().Method,
					"path", c.Request().URL.Path,
					"request_id", RequestID(c),
					"stack", string(buf),
				)

				err = c.JSON(http.StatusInternalServerError, handlers.ErrorResponse{
					Error: "internal server error",
				})
			}()
			return next(c)
		}
	}
}
