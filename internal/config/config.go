package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const devJWTSecret = "dev-secret-change-in-production"

var (
	ErrProductionSecret = errors.New("JWT_SECRET must be set in production environment")
	ErrProductionSMTP   = errors.New("SMTP_HOST must be set in production environment")
	ErrUnknownDriver    = errors.New("DB_DRIVER must be mysql or sqlite")
	ErrNonPositiveTTL   = errors.New("JWT_EXPIRY and OTP_TTL must be positive")
	ErrOTPAttempts      = errors.New("OTP_MAX_ATTEMPTS must be positive")
)

type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	Env      string `env:"ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	DBDriver    string `env:"DB_DRIVER" envDefault:"mysql"`
	DatabaseDSN string `env:"DATABASE_DSN" envDefault:"root:password@tcp(127.0.0.1:3306)/inotebook?parseTime=true"`

	// JWTSecret falls back to devJWTSecret when unset outside production.
	JWTSecret      string        `env:"JWT_SECRET"`
	JWTExpiry      time.Duration `env:"JWT_EXPIRY" envDefault:"24h"`
	OTPTTL         time.Duration `env:"OTP_TTL" envDefault:"15m"`
	OTPMaxAttempts int           `env:"OTP_MAX_ATTEMPTS" envDefault:"5"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"5"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"10"`
	// TrustProxy takes the client IP from X-Forwarded-For and friends. Enable
	// only behind a proxy that overwrites those headers.
	TrustProxy bool `env:"TRUST_PROXY" envDefault:"false"`

	SMTP SMTPConfig
}

// SMTPConfig holds the mail delivery credentials. An empty Host means codes are
// logged instead of mailed, which is only allowed outside production.
type SMTPConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT" envDefault:"587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"MAIL_FROM" envDefault:"no-reply@inotebook.local"`
}

// Load reads the configuration from the environment and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	if cfg.JWTSecret == "" && !cfg.IsProduction() {
		cfg.JWTSecret = devJWTSecret
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations that are unsafe or unusable.
func (c Config) Validate() error {
	if c.DBDriver != "mysql" && c.DBDriver != "sqlite" {
		return ErrUnknownDriver
	}
	if c.JWTExpiry <= 0 || c.OTPTTL <= 0 {
		return ErrNonPositiveTTL
	}
	if c.OTPMaxAttempts <= 0 {
		return ErrOTPAttempts
	}
	if !c.IsProduction() {
		return nil
	}
	if c.JWTSecret == "" || c.JWTSecret == devJWTSecret {
		return ErrProductionSecret
	}
	if c.SMTP.Host == "" {
		return ErrProductionSMTP
	}
	return nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
