// Package config provides application configuration loading from environment.
package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gitlab.com/yelinaung/mess-bot/internal/settlement"
)

// Telemetry exporters.
const (
	ExporterStdout   = "stdout"
	ExporterOTLPGRPC = "otlp-grpc"
	ExporterOTLPHTTP = "otlp-http"
)

// TelemetryConfig controls OpenTelemetry tracing and metrics.
type TelemetryConfig struct {
	Enabled     bool
	Exporter    string
	ServiceName string
}

// Config holds all configuration for the application.
type Config struct {
	TelegramBotToken string
	DatabaseURL      string
	GeminiAPIKey     string
	GeminiModel      string
	LogLevel         string
	LogFormat        string
	LogHashSalt      string

	// ExtraCostPolicy decides whether shared extra expenses are divided
	// between boarders in their individual balances.
	ExtraCostPolicy settlement.Policy

	// RegistrarUserIDs and RegistrarUsernames restrict who may register a
	// new mess. Both empty means anyone may register.
	RegistrarUserIDs   []int64
	RegistrarUsernames []string

	MealReminderEnabled bool
	ReminderHour        int
	ReminderTimezone    string

	Telemetry TelemetryConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiModel:      strings.TrimSpace(os.Getenv("GEMINI_MODEL")),
		LogLevel:         os.Getenv("LOG_LEVEL"),
		LogFormat:        os.Getenv("LOG_FORMAT"),
		LogHashSalt:      os.Getenv("LOG_HASH_SALT"),
	}

	var errs []string

	policy, err := settlement.ParsePolicy(strings.TrimSpace(os.Getenv("EXTRA_COST_POLICY")))
	if err != nil {
		errs = append(errs, err.Error())
	}
	cfg.ExtraCostPolicy = policy

	cfg.MealReminderEnabled = os.Getenv("MEAL_REMINDER_ENABLED") == "true"
	cfg.ReminderHour = 21
	if hourStr := os.Getenv("REMINDER_HOUR"); hourStr != "" {
		if h, err := strconv.Atoi(hourStr); err == nil && h >= 0 && h <= 23 {
			cfg.ReminderHour = h
		}
	}
	cfg.ReminderTimezone = "Asia/Dhaka"
	if tz := os.Getenv("REMINDER_TIMEZONE"); tz != "" {
		if _, err := time.LoadLocation(tz); err == nil {
			cfg.ReminderTimezone = tz
		}
	}

	cfg.Telemetry = TelemetryConfig{
		Enabled:     os.Getenv("OTEL_ENABLED") == "true",
		Exporter:    ExporterStdout,
		ServiceName: "mess-bot",
	}
	if exp := strings.TrimSpace(os.Getenv("OTEL_EXPORTER")); exp != "" {
		cfg.Telemetry.Exporter = exp
	}
	if name := strings.TrimSpace(os.Getenv("OTEL_SERVICE_NAME")); name != "" {
		cfg.Telemetry.ServiceName = name
	}

	if idsStr := os.Getenv("REGISTRAR_USER_IDS"); idsStr != "" {
		for idStr := range strings.SplitSeq(idsStr, ",") {
			idStr = strings.TrimSpace(idStr)
			if idStr == "" {
				continue
			}
			id, err := strconv.ParseInt(idStr, 10, 64)
			if err != nil {
				continue
			}
			cfg.RegistrarUserIDs = append(cfg.RegistrarUserIDs, id)
		}
	}

	if names := os.Getenv("REGISTRAR_USERNAMES"); names != "" {
		for username := range strings.SplitSeq(names, ",") {
			username = strings.TrimSpace(username)
			if username == "" {
				continue
			}
			cfg.RegistrarUsernames = append(cfg.RegistrarUsernames, strings.TrimPrefix(username, "@"))
		}
	}

	// Validate required configuration.
	if err := cfg.validate(errs); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks that all required configuration is present. Problems
// found while parsing are passed in so every issue is reported at once.
func (c *Config) validate(errs []string) error {
	if c.TelegramBotToken == "" {
		errs = append(errs, "TELEGRAM_BOT_TOKEN is required")
	}

	if c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}

	switch c.LogFormat {
	case "", "console", "json":
	default:
		errs = append(errs, fmt.Sprintf("LOG_FORMAT must be console or json, got %q", c.LogFormat))
	}

	switch c.Telemetry.Exporter {
	case ExporterStdout, ExporterOTLPGRPC, ExporterOTLPHTTP:
	default:
		errs = append(errs, fmt.Sprintf("OTEL_EXPORTER must be %s, %s or %s, got %q",
			ExporterStdout, ExporterOTLPGRPC, ExporterOTLPHTTP, c.Telemetry.Exporter))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// CanRegister reports whether a Telegram user may register a new mess.
// Registration is open when no registrars are configured.
func (c *Config) CanRegister(userID int64, username string) bool {
	if len(c.RegistrarUserIDs) == 0 && len(c.RegistrarUsernames) == 0 {
		return true
	}

	if slices.Contains(c.RegistrarUserIDs, userID) {
		return true
	}

	if username != "" {
		username = strings.TrimPrefix(username, "@")
		for _, allowed := range c.RegistrarUsernames {
			if strings.EqualFold(allowed, username) {
				return true
			}
		}
	}

	return false
}
