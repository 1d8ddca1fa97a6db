// Command intake is a local development endpoint for the contact form. It
// answers both the direct {success, message} contract on POST /submit and
// the hosted {data, error} contract on POST /f/:formID. It validates nothing
// and keeps nothing.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/avirbig/cohen-services-hub/internal/config"
	handlers "github.com/avirbig/cohen-services-hub/internal/http/handler"
	"github.com/avirbig/cohen-services-hub/internal/http/middleware"
	"github.com/avirbig/cohen-services-hub/internal/logger"
	"github.com/avirbig/cohen-services-hub/internal/otel"
)

const serviceName = "cohen-intake"

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger.Initialize(logger.Format(cfg.Log.Format), cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		DisableStartupMessage: true,
	})

	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger())
	app.Use(promMiddleware.Handler())
	app.Use(tracing())

	handlers.RegisterRoutes(app, handlers.Options{
		SimulateFailure: cfg.Server.SimulateFailure,
		Gatherer:        reg,
	})

	go func() {
		<-ctx.Done()
		logger.Info(context.Background(), "shutting down")
		if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
			logger.Error(context.Background(), "server shutdown failed", err)
		}
	}()

	addr := ":" + cfg.Server.Port
	logger.Info(ctx, "intake listening", "addr", addr, "simulate_failure", cfg.Server.SimulateFailure)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracing(flushCtx); err != nil {
		logger.Error(flushCtx, "tracing shutdown failed", err)
	}
}

// tracing spans every request except metric scrapes.
func tracing() fiber.Handler {
	if otel.Disabled() {
		return middleware.Noop()
	}
	return otelfiber.Middleware(
		otelfiber.WithServerName(serviceName),
		otelfiber.WithNext(func(c *fiber.Ctx) bool {
			return c.Path() == "/metrics"
		}),
	)
}
