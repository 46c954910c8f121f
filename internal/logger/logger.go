package logger

import (
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// Setup installs the process-wide slog handler. Unknown levels fall
// back to info rather than failing startup.
func Setup(level string) {
	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      parseLevel(level),
		TimeFormat: time.TimeOnly,
	})
	slog.SetDefault(slog.New(handler))
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
