package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"todo-planner/internal/recurrence"
)

// Config keeps runtime settings for the planner.
type Config struct {
	TelegramToken string
	DatabaseURL   string
	Location      *time.Location
	Calendar      recurrence.Calendar
	AgendaTime    string
	LogDebug      bool
	LogFormat     string
}

// Load reads configuration from environment variables, after merging a
// .env file from the working directory when one exists.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv reads configuration from the process environment with sane defaults.
func FromEnv() (Config, error) {
	cfg := Config{
		TelegramToken: strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
		DatabaseURL:   strings.TrimSpace(os.Getenv("DATABASE_URL")),
		AgendaTime:    "08:00",
		LogDebug:      parseBool(os.Getenv("LOG_DEBUG")),
		LogFormat:     strings.ToLower(strings.TrimSpace(os.Getenv("LOG_FORMAT"))),
		Location:      time.Local,
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "todo_planner.db"
	}

	if raw, ok := os.LookupEnv("AGENDA_TIME"); ok {
		cfg.AgendaTime = strings.TrimSpace(raw)
	}

	switch cfg.LogFormat {
	case "":
		cfg.LogFormat = "json"
	case "json", "console":
	default:
		return cfg, fmt.Errorf("LOG_FORMAT must be json or console, got %q", cfg.LogFormat)
	}

	if tz := strings.TrimSpace(os.Getenv("TIMEZONE")); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return cfg, fmt.Errorf("TIMEZONE: %w", err)
		}
		cfg.Location = loc
	}

	cal, err := recurrence.ParseWeekend(os.Getenv("WEEKEND_DAYS"))
	if err != nil {
		return cfg, fmt.Errorf("WEEKEND_DAYS: %w", err)
	}
	cfg.Calendar = cal

	return cfg, nil
}

// RequireTelegram reports an error when the bot token is missing.
func (c Config) RequireTelegram() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	return nil
}

func parseBool(raw string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	return err == nil && v
}
