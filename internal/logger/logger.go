// internal/logger/logger.go
package logger

import (
	"log"
	"log/slog"
	"os"
	"time"
)

var globalLogger *slog.Logger

func InitLogger(env string) {
	var handler slog.Handler
	var opts slog.HandlerOptions

	opts.AddSource = true
	opts.ReplaceAttr = func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == slog.MessageKey {
			a.Key = "msg"
		}
		// RFC3339Nano keeps timestamps sortable across instances
		if a.Key == slog.TimeKey {
			a.Value = slog.StringValue(a.Value.Time().Format(time.RFC3339Nano))
		}
		return a
	}

	switch env {
	case "development":
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, &opts)
	case "development-json":
		opts.Level = slog.LevelDebug
		handler = slog.NewJSONHandler(os.Stdout, &opts)
	case "production", "staging":
		opts.Level = slog.LevelInfo
		opts.AddSource = false
		handler = slog.NewJSONHandler(os.Stdout, &opts)
	default:
		log.Printf("WARNING: Unknown APP_ENV '%s'. Defaulting to production logging.\n", env)
		opts.Level = slog.LevelInfo
		handler = slog.NewJSONHandler(os.Stdout, &opts)
	}

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}

// L returns the global slog logger instance. InitLogger should be called
// once at the very start of main() before any use.
func L() *slog.Logger {
	if globalLogger == nil {
		InitLogger("development")
		log.Println("WARNING: Logger accessed before explicit initialization. Using default development logger.")
	}
	return globalLogger
}
