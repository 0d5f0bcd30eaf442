package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/insider-one/push-relay/docs"
	"github.com/insider-one/push-relay/internal/app"
	"github.com/insider-one/push-relay/internal/config"
	"github.com/insider-one/push-relay/internal/domain"
	"github.com/insider-one/push-relay/internal/handler"
	"github.com/insider-one/push-relay/internal/middleware"
)

// @title Push Relay API
// @version 1.0
// @description Relays text messages to the Telegram chat registered behind a chat token

// @contact.name API Support
// @contact.email support@insider.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

func main() {
	cfg := config.Load()

	logger := app.NewLogger(os.Stdout, cfg.App.LogLevel)
	if err := cfg.Validate(); err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger.Info("starting push relay",
		"env", cfg.App.Env,
		"port", cfg.Server.Port,
		"identity_backend", cfg.Identity.Backend,
		"transport", cfg.Transport.Kind,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	relay, err := app.New(ctx, cfg, logger)
	defer relay.Close()
	if err != nil {
		logger.Error("failed to initialize relay", "error", err)
		os.Exit(1)
	}

	// Dispatch event feed
	wsHub := handler.NewWebSocketHub(logger, cfg.Server.CORSAllowedOrigins)
	go wsHub.Run(ctx)

	metrics := handler.NewMetrics()
	relay.Dispatcher.SetObserver(func(event *domain.DispatchEvent) {
		metrics.RecordDispatch(event)
		wsHub.BroadcastDispatch(event)
	})

	messageHandler := handler.NewMessageHandler(relay.Dispatcher, logger)
	healthHandler := handler.NewHealthHandler()
	for name, checker := range relay.Checkers {
		healthHandler.AddChecker(name, checker)
	}
	metricsHandler := handler.NewMetricsHandler(metrics, wsHub)
	wsHandler := handler.NewWebSocketHandler(wsHub)

	docs.SwaggerInfo.Host = "localhost:" + cfg.Server.Port

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Correlation)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics(metrics))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", handler.ChatTokenHeader, middleware.CorrelationIDHeader},
		ExposedHeaders: []string{middleware.CorrelationIDHeader},
		MaxAge:         300,
	}))
	r.Use(chimiddleware.Compress(5))

	r.Get("/health", healthHandler.Health)
	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)

	r.Handle("/metrics", metricsHandler.Handler())
	r.Get("/metrics/realtime", metricsHandler.RealtimeMetrics)

	r.Get("/ws", wsHandler.HandleWebSocket)

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/api/v1", messageHandler.RegisterAPIRoutes)
	messageHandler.RegisterRoutes(r)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	// Stop accepting new requests; in-flight sends finish first
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	// Closes the websocket feed
	cancel()

	logger.Info("server stopped")
}
