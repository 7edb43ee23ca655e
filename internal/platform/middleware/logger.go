package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinichq/clinic/internal/platform/auth"
)

// Logger emits one structured line per request. Besides the usual
// method/path/status fields it tags the line with the request ID and, once
// the auth middleware has run, the acting staff member, so an approval can
// be traced back to who clicked it.
func Logger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			evt := logger.Info()
			if err != nil {
				evt = logger.Error().Err(err)
			}
			if rid, ok := c.Get("request_id").(string); ok && rid != "" {
				evt = evt.Str("request_id", rid)
			}
			// re-read the request: auth swaps it to attach identity
			req := c.Request()
			if uid := auth.UserIDFromContext(req.Context()); uid != "" {
				evt = evt.Str("staff_id", uid)
			}

			evt.
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", c.Response().Status).
				Int64("bytes_out", c.Response().Size).
				Dur("latency", time.Since(start)).
				Str("remote_ip", c.RealIP()).
				Msg("request")

			return err
		}
	}
}
