package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	HTTPAddr       string
	LogLevel       string
	RequestTimeout time.Duration
	Telegram       TelegramConfig
	Kinopoisk      KinopoiskConfig
	Booking        BookingConfig
	History        HistoryConfig
}

type TelegramConfig struct {
	BotToken      string
	APIBaseURL    string
	WebhookSecret string
}

type KinopoiskConfig struct {
	APIKey  string
	BaseURL string
}

type BookingConfig struct {
	APIKey  string
	BaseURL string
}

type HistoryConfig struct {
	DBPath string
	// Limit ограничивает число записей в ответе /history.
	Limit int
}

func Load() (Config, error) {
	var cfg Config

	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")

	reqTimeout, err := parseDuration(getEnv("HTTP_CLIENT_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse HTTP_CLIENT_TIMEOUT: %w", err)
	}
	cfg.RequestTimeout = reqTimeout

	cfg.Telegram = TelegramConfig{
		BotToken:      getEnv("TELEGRAM_BOT_TOKEN", ""),
		APIBaseURL:    getEnv("TELEGRAM_API_BASE_URL", "https://api.telegram.org"),
		WebhookSecret: getEnv("TELEGRAM_WEBHOOK_SECRET", ""),
	}

	cfg.Kinopoisk = KinopoiskConfig{
		APIKey:  getEnv("KINOPOISK_API_KEY", ""),
		BaseURL: getEnv("KINOPOISK_BASE_URL", "https://api.kinopoisk.dev"),
	}

	cfg.Booking = BookingConfig{
		APIKey:  getEnv("BOOKING_API_KEY", ""),
		BaseURL: getEnv("BOOKING_BASE_URL", "https://booking-com.p.rapidapi.com"),
	}

	cfg.History = HistoryConfig{
		DBPath: getEnv("HISTORY_DB_PATH", "history.db"),
		Limit:  20,
	}

	return cfg, nil
}

func parseDuration(value string) (time.Duration, error) {
	if value == "" {
		return 0, fmt.Errorf("duration is empty")
	}
	return time.ParseDuration(value)
}

func getEnv(key, def string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return def
}
