package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	defaultJWTAccessTTL   = "24h"
	defaultJWTSecret      = "change-me-jwt-secret"
	defaultMeetingTimeout = "10s"
	defaultBankTimeout    = "10s"
	defaultSlotCacheTTL   = "60s"
	defaultSMTPPort       = "587"
)

type Config struct {
	AppEnv       string
	DatabaseURL  string
	JWTSecret    string
	JWTAccessTTL time.Duration

	// optional; slot caching is disabled when empty
	RedisAddr string

	MeetingAPIURL  string
	MeetingAPIKey  string
	MeetingTimeout time.Duration

	BankFeedURL  string
	BankFeedKey  string
	BankTimeout  time.Duration
	SlotCacheTTL time.Duration

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
}

func Load() (*Config, error) {
	cfg := &Config{}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.RedisAddr = strings.TrimSpace(os.Getenv("REDIS_ADDR"))

	cfg.MeetingAPIURL = strings.TrimSpace(os.Getenv("MEETING_API_URL"))
	cfg.MeetingAPIKey = strings.TrimSpace(os.Getenv("MEETING_API_KEY"))
	cfg.BankFeedURL = strings.TrimSpace(os.Getenv("BANK_FEED_URL"))
	cfg.BankFeedKey = strings.TrimSpace(os.Getenv("BANK_FEED_KEY"))

	cfg.SMTPHost = strings.TrimSpace(os.Getenv("SMTP_HOST"))
	cfg.SMTPUser = strings.TrimSpace(os.Getenv("SMTP_USER"))
	cfg.SMTPPass = os.Getenv("SMTP_PASS")

	var err error
	cfg.JWTAccessTTL, err = parseDurationEnv("JWT_ACCESS_TTL", defaultJWTAccessTTL)
	if err != nil {
		return nil, err
	}
	cfg.MeetingTimeout, err = parseDurationEnv("MEETING_TIMEOUT", defaultMeetingTimeout)
	if err != nil {
		return nil, err
	}
	cfg.BankTimeout, err = parseDurationEnv("BANK_FEED_TIMEOUT", defaultBankTimeout)
	if err != nil {
		return nil, err
	}
	cfg.SlotCacheTTL, err = parseDurationEnv("SLOT_CACHE_TTL", defaultSlotCacheTTL)
	if err != nil {
		return nil, err
	}
	cfg.SMTPPort, err = parseIntEnv("SMTP_PORT", defaultSMTPPort)
	if err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must be set")
	}
	if cfg.JWTAccessTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL must be > 0")
	}
	if isProdLike(cfg.AppEnv) {
		if strings.TrimSpace(cfg.JWTSecret) == "" || cfg.JWTSecret == defaultJWTSecret {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if cfg.MeetingAPIURL == "" {
			return fmt.Errorf("in prod/release MEETING_API_URL must be set")
		}
	}
	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseIntEnv(name, fallback string) (int, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	var n int
	if _, err := fmt.Sscanf(value, "%d", &n); err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
