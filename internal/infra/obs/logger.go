// Package obs holds the observability plumbing shared by the HTTP surface
// and the application services: logger construction, request middleware, and
// health endpoints.
package obs

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// NewLogger builds the process logger. Dev and local runs get colored,
// human-readable output with debug enabled; everything else logs JSON at
// info, tagged with the service name for aggregation.
func NewLogger(env string) *slog.Logger {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local", "debug":
		return slog.New(tint.NewHandler(os.Stdout, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.TimeOnly,
		}))
	default:
		handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
		return slog.New(handler).With("service", "staybook")
	}
}
