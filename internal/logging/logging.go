// Package logging builds the root zerolog logger and the gin access log.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/Domenick1991/tourbooking/config"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// logger fields
const (
	COMPONENT = "component"
	SESSION   = "session"
	EVENT     = "event"
	ROUTE     = "route"
	STATUS    = "status"
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
}

// New returns the root logger. Pretty selects the human readable console
// writer, meant for local runs.
func New(cfg config.LogConfig, out io.Writer) zerolog.Logger {
	if out == nil {
		out = os.Stderr
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str(COMPONENT, name).Logger()
}

// AccessLog writes one structured line per request. Server errors log at
// error level, client errors at warn.
func AccessLog(l zerolog.Logger) gin.HandlerFunc {
	l = Component(l, "http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		var ev *zerolog.Event
		switch {
		case status >= 500:
			ev = l.Error()
		case status >= 400:
			ev = l.Warn()
		default:
			ev = l.Info()
		}
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str(ROUTE, route).
			Int(STATUS, status).
			Dur("elapsed", time.Since(start)).
			Int("size", c.Writer.Size())
		if errs := c.Errors.ByType(gin.ErrorTypeAny); len(errs) > 0 {
			ev.Str("errors", errs.String())
		}
		ev.Msg("request")
	}
}
