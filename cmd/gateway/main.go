package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/electrozone/backend/internal/auth"
	"github.com/electrozone/backend/internal/checkout"
	"github.com/electrozone/backend/internal/config"
	"github.com/electrozone/backend/internal/gateway"
	"github.com/electrozone/backend/internal/transport"
	"github.com/electrozone/backend/pkg/metrics"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Logger = log.With().Str("service", "gateway").Logger()

	log.Info().Msg("Gateway starting...")

	cfg, err := config.Load(".env", "8080")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}

	metrics.Init()

	orders := checkout.NewHTTPOrderClient(cfg.Services.OrderURL)
	orchestrator := checkout.NewOrchestrator(orders)
	tokens := auth.NewManager(cfg.JWT.Secret, cfg.JWT.TTL)
	h := gateway.NewHandler(cfg.Services, orchestrator, tokens)

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      transport.NewGatewayRouter(h),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Info().Msg("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Shutdown failed")
	}
	log.Info().Msg("Server stopped")
}
