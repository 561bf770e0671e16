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

	"github.com/support-qa/backend/internal/auth"
	"github.com/support-qa/backend/internal/config"
	"github.com/support-qa/backend/internal/db"
	httpapi "github.com/support-qa/backend/internal/http"
	"github.com/support-qa/backend/internal/sentiment"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "qa-backend").Logger()

	ctx := context.Background()
	store, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect db")
	}
	defer store.Close()

	var adapter sentiment.Adapter
	if cfg.SentimentURL == "" {
		adapter = sentiment.MockAdapter{}
		logger.Info().Msg("using mock sentiment adapter")
	} else {
		adapter = sentiment.HTTPAdapter{
			URL:    cfg.SentimentURL,
			APIKey: cfg.SentimentAPIKey,
			Client: &http.Client{Timeout: cfg.SentimentTimeout},
		}
	}

	authSvc := auth.New(cfg.JWTSecret, cfg.SessionTTL)

	router := httpapi.Router(cfg, store, adapter, authSvc, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}
