package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"hilotrack/internal/config"
	"hilotrack/internal/database"
	"hilotrack/internal/feed"
	"hilotrack/internal/notify"
	"hilotrack/internal/predictor"
	"hilotrack/internal/scheduler"
	"hilotrack/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	// Setup logger
	lvl, parseErr := zerolog.ParseLevel(cfg.LogLevel)
	if parseErr != nil {
		lvl = zerolog.InfoLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl).With().Timestamp().Logger()

	store, err := database.New(database.ConnectionParams{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer store.Close()

	source := feed.NewClient(feed.ClientOptions{
		BaseURL:        cfg.FeedBaseURL,
		Path:           cfg.FeedPath,
		PageSize:       cfg.FeedPageSize,
		RequestTimeout: time.Duration(cfg.RequestTimeout) * time.Second,
	})

	engine := predictor.NewEngine(store, cfg.LossThreshold)

	var notifier notify.Notifier = notify.Noop{}
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != 0 {
		tg, err := notify.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			log.Error().Err(err).Msg("Telegram notifier disabled")
		} else {
			notifier = tg
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.New(source, engine, notifier, cfg.PollInterval, cfg.ResetHour)
	go sched.Run(ctx)

	srv := server.NewServer(server.NewHandler(source, engine, store), cfg.HTTPPort)
	go func() {
		if err := srv.Start(); err != nil {
			log.Error().Err(err).Msg("HTTP server stopped")
			cancel()
		}
	}()

	log.Info().
		Int("port", cfg.HTTPPort).
		Int("loss_threshold", cfg.LossThreshold).
		Dur("poll_interval", cfg.PollInterval).
		Int("reset_hour", cfg.ResetHour).
		Msg("hilotrack started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigCh:
		log.Info().Msg("shutdown signal received")
	case <-ctx.Done():
	}

	cancel()
	if err := srv.Shutdown(context.Background()); err != nil {
		log.Error().Err(err).Msg("HTTP shutdown error")
	}
}
