// Package config handles application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"usos_monitor/internal/model"
)

// ErrNoCategories is returned when no registration categories are configured.
var ErrNoCategories = errors.New("no registration categories configured, set CATEGORIES")

// Config holds the application configuration.
type Config struct {
	USOSUsername           string
	USOSPassword           string
	TelegramBotToken       string
	TelegramChatID         int64
	Categories             []model.Category
	SchedulePath           string
	DatabasePath           string
	LogLevel               string
	CheckIntervalMinutes   int
	PersistOnNotifyFailure bool
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	username := os.Getenv("USOS_USERNAME")
	if username == "" {
		return nil, fmt.Errorf("USOS_USERNAME is required")
	}
	password := os.Getenv("USOS_PASSWORD")
	if password == "" {
		return nil, fmt.Errorf("USOS_PASSWORD is required")
	}
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	rawChatID := os.Getenv("TELEGRAM_CHAT_ID")
	if rawChatID == "" {
		return nil, fmt.Errorf("TELEGRAM_CHAT_ID is required")
	}
	chatID, err := strconv.ParseInt(rawChatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID %q: %w", rawChatID, err)
	}

	categories, err := ParseCategories(os.Getenv("CATEGORIES"))
	if err != nil {
		return nil, err
	}

	schedulePath := os.Getenv("SCHEDULE_PATH")
	if schedulePath == "" {
		schedulePath = "./plan.ics"
	}

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "./data/monitor.db"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	interval := 15
	if raw := os.Getenv("CHECK_INTERVAL_MINUTES"); raw != "" {
		interval, err = strconv.Atoi(raw)
		if err != nil || interval < 1 {
			return nil, fmt.Errorf("invalid CHECK_INTERVAL_MINUTES %q", raw)
		}
	}

	persist := false
	if raw := os.Getenv("PERSIST_ON_NOTIFY_FAILURE"); raw != "" {
		persist, err = strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid PERSIST_ON_NOTIFY_FAILURE %q", raw)
		}
	}

	return &Config{
		USOSUsername:           username,
		USOSPassword:           password,
		TelegramBotToken:       token,
		TelegramChatID:         chatID,
		Categories:             categories,
		SchedulePath:           schedulePath,
		DatabasePath:           dbPath,
		LogLevel:               logLevel,
		CheckIntervalMinutes:   interval,
		PersistOnNotifyFailure: persist,
	}, nil
}

// ParseCategories parses the CATEGORIES value: semicolon-separated
// "code=display name" pairs, e.g.
// "6420-1000-2026L-A1M1=Jezyki od podstaw (M1);6420-2000-2026L-A2=Jezyki (M2)".
func ParseCategories(raw string) ([]model.Category, error) {
	var categories []model.Category
	for _, pair := range strings.Split(raw, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		code, name, found := strings.Cut(pair, "=")
		code = strings.TrimSpace(code)
		name = strings.TrimSpace(name)
		if !found || code == "" || name == "" {
			return nil, fmt.Errorf("invalid category entry %q, expected code=name", pair)
		}
		categories = append(categories, model.Category{Code: code, DisplayName: name})
	}
	if len(categories) == 0 {
		return nil, ErrNoCategories
	}
	return categories, nil
}
