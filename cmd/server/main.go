// cmd/server/main.go
package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"runtime/debug"
	"time"

	"github.com/dballard/chartbox/internal/api"
	"github.com/dballard/chartbox/internal/config"
	"github.com/dballard/chartbox/internal/connections"
	"github.com/dballard/chartbox/internal/logger"
	"github.com/dballard/chartbox/internal/repository"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func slogPanicRecoverMiddleware(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			defer func() {
				if r := recover(); r != nil {
					err, ok := r.(error)
					if !ok {
						err = fmt.Errorf("%v", r)
					}
					reqLogger := logger.With("request_id", c.Get("requestID"))
					reqLogger.ErrorContext(c.Request().Context(), "PANIC recovered",
						slog.Any("error", err),
						slog.String("stack", string(debug.Stack())),
					)
					c.Error(err)
				}
			}()
			return next(c)
		}
	}
}

func main() {
	// 1. Load application configuration FIRST.
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize Sentry when a DSN is configured.
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.AppEnv,
			TracesSampleRate: 1.0,
			Debug:            false,
		}); err != nil {
			fmt.Printf("Sentry initialization failed: %v\n", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	// 3. Initialize the Logger.
	logger.InitLogger(cfg.AppEnv)
	appLogger := logger.L()

	appLogger.Info("Application starting up...", "environment", cfg.AppEnv)

	// 4. Connect to the Database.
	dbClient, err := connections.ConnectDB(cfg.DatabaseURL, appLogger.With("component", "database_connector"))
	if err != nil {
		appLogger.Error("Failed to connect to database at startup", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbClient.Close()

	// 5. Initialize the data-access layer and HTTP handlers. The pool is
	// injected here once; nothing else holds connection state.
	chartQuerier := repository.New(dbClient.Pool)

	apiLogger := appLogger.With("service", "api_handlers")
	chartHandler := api.NewChartHandler(chartQuerier, apiLogger)
	healthHandler := api.NewHealthHandler()

	appLogger.Info("API handlers initialized.")

	// 6. Initialize Echo.
	e := echo.New()

	// Echo's own logger is silenced, slog handles everything.
	e.Logger.SetOutput(io.Discard)
	e.Logger.SetLevel(0)
	e.Logger.SetHeader("")

	// 7. Register Middleware.
	e.Use(slogPanicRecoverMiddleware(appLogger))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.AllowedOrigin},
		AllowMethods: []string{http.MethodGet, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Length", "Content-Type", "Accept"},
	}))

	// Request summary logging with a per-request ID.
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			reqID := uuid.New().String()
			c.Set("requestID", reqID)

			start := time.Now()

			if hub := sentryecho.GetHubFromContext(c); hub != nil {
				hub.Scope().SetTag("request_id", reqID)
			}

			err := next(c)
			stop := time.Now()

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}

			appLogger.InfoContext(c.Request().Context(), "HTTP Request",
				"request_id", reqID,
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", status,
				"latency_ms", stop.Sub(start).Milliseconds(),
				"user_agent", c.Request().UserAgent(),
				"ip", c.RealIP(),
			)
			return err
		}
	})

	if cfg.SentryDSN != "" {
		e.Use(sentryecho.New(sentryecho.Options{
			Repanic: true,
		}))
	}

	// 8. Register Routes.
	e.GET("/health", healthHandler.HandleHealth)
	chartHandler.RegisterRoutes(e)

	// 9. Start the HTTP server.
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	address := fmt.Sprintf("0.0.0.0:%s", port)

	appLogger.Info("HTTP Server starting on port", "port", port)

	if err := e.Start(address); err != nil && err != http.ErrServerClosed {
		appLogger.Error("HTTP Server failed to start", slog.Any("error", err))
		os.Exit(1)
	}
	appLogger.Info("HTTP Server stopped gracefully.")
}
