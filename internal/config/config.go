// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	DatabasePath   string
	LogLevel       string
	SourcePriority []string
	FetchTimeout   time.Duration
	ScrapeInterval time.Duration
	APIInterval    time.Duration

	// Telegram alerting is optional; both fields must be set to enable it.
	TelegramBotToken string
	TelegramChatID   int64
	AlertThreshold   float64
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "./data/spoilershield.db"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	priority := []string{"reddit", "youtube", "rss", "boards"}
	if raw := os.Getenv("SOURCE_PRIORITY"); raw != "" {
		priority = priority[:0]
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				priority = append(priority, s)
			}
		}
	}

	fetchTimeout, err := durationEnv("FETCH_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	scrapeInterval, err := durationEnv("SCRAPE_RATE_INTERVAL", time.Second)
	if err != nil {
		return nil, err
	}
	apiInterval, err := durationEnv("API_RATE_INTERVAL", 100*time.Millisecond)
	if err != nil {
		return nil, err
	}

	var chatID int64
	if raw := os.Getenv("TELEGRAM_CHAT_ID"); raw != "" {
		chatID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID %q: %w", raw, err)
		}
	}

	alertThreshold := 0.90
	if raw := os.Getenv("ALERT_THRESHOLD"); raw != "" {
		alertThreshold, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ALERT_THRESHOLD %q: %w", raw, err)
		}
		if alertThreshold < 0 || alertThreshold > 1 {
			return nil, fmt.Errorf("ALERT_THRESHOLD must be between 0 and 1, got %v", alertThreshold)
		}
	}

	return &Config{
		DatabasePath:     dbPath,
		LogLevel:         logLevel,
		SourcePriority:   priority,
		FetchTimeout:     fetchTimeout,
		ScrapeInterval:   scrapeInterval,
		APIInterval:      apiInterval,
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:   chatID,
		AlertThreshold:   alertThreshold,
	}, nil
}

// TelegramEnabled reports whether alerting is fully configured.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != 0
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %v", key, d)
	}
	return d, nil
}
