package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kinobot/internal/booking"
	"kinobot/internal/bot"
	"kinobot/internal/config"
	"kinobot/internal/history"
	"kinobot/internal/httpserver"
	"kinobot/internal/kinopoisk"
	"kinobot/internal/telegram"
	"kinobot/internal/transport"
	"log/slog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := newLogger(cfg.LogLevel)

	httpClient := transport.NewHTTPClient(cfg.RequestTimeout)
	searchClient := kinopoisk.NewHTTPClient(cfg.Kinopoisk, httpClient, logger)
	hotelsClient := booking.NewHTTPClient(cfg.Booking, httpClient)
	telegramClient := telegram.NewClient(cfg.Telegram, httpClient)

	historyStore, err := history.OpenSQLite(cfg.History.DBPath)
	if err != nil {
		log.Fatalf("failed to open history store: %v", err)
	}
	defer historyStore.Close()

	botService := bot.NewService(bot.Deps{
		Bot:          telegramClient,
		Search:       searchClient,
		Hotels:       hotelsClient,
		History:      historyStore,
		Logger:       logger,
		HistoryLimit: cfg.History.Limit,
	})

	webhookHandler := telegram.NewWebhookHandler(telegram.WebhookDeps{
		Dispatcher:    botService,
		Logger:        logger,
		WebhookSecret: cfg.Telegram.WebhookSecret,
	})

	router := httpserver.NewRouter(httpserver.RouterDeps{
		Logger:          logger,
		TelegramHandler: webhookHandler,
	})

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server starting", slog.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}

func newLogger(level string) *slog.Logger {
	slogLevel := slog.LevelInfo
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "info":
		slogLevel = slog.LevelInfo
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slogLevel}))
}
