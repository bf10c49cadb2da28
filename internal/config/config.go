// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"

	"github.com/evcraddock/pawstay/internal/notify"
)

// Config holds everything `pawstay serve` reads from the environment.
type Config struct {
	DB             string        `env:"PAWSTAY_DB"`
	Port           int           `env:"PAWSTAY_PORT" envDefault:"8080"`
	DevMode        bool          `env:"PAWSTAY_DEV_MODE"`
	BaseURL        string        `env:"PAWSTAY_BASE_URL" envDefault:"http://localhost:8080"`
	RequestTimeout time.Duration `env:"PAWSTAY_REQUEST_TIMEOUT" envDefault:"15s"`
	AllowedOrigins []string      `env:"PAWSTAY_ALLOWED_ORIGINS" envSeparator:","`

	Submit struct {
		Rate  float64 `env:"PAWSTAY_SUBMIT_RATE" envDefault:"1"`
		Burst int     `env:"PAWSTAY_SUBMIT_BURST" envDefault:"5"`
	}

	Notify struct {
		From     string        `env:"PAWSTAY_NOTIFY_FROM"`
		FromName string        `env:"PAWSTAY_NOTIFY_FROM_NAME" envDefault:"Pawstay"`
		Timeout  time.Duration `env:"PAWSTAY_NOTIFY_TIMEOUT" envDefault:"30s"`
	}

	SMTP struct {
		Host string `env:"PAWSTAY_SMTP_HOST"`
		Port string `env:"PAWSTAY_SMTP_PORT" envDefault:"587"`
		User string `env:"PAWSTAY_SMTP_USER"`
		Pass string `env:"PAWSTAY_SMTP_PASS"`
		From string `env:"PAWSTAY_SMTP_FROM"`
	}

	SendGrid struct {
		APIKey  string `env:"PAWSTAY_SENDGRID_API_KEY"`
		Sandbox bool   `env:"PAWSTAY_SENDGRID_SANDBOX"`
	}

	OTLPEndpoint string `env:"PAWSTAY_OTLP_ENDPOINT"`
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	origins := cfg.AllowedOrigins[:0]
	for _, o := range cfg.AllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	cfg.AllowedOrigins = origins

	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("PAWSTAY_PORT must be 1-65535, got %d", cfg.Port)
	}
	if cfg.Submit.Rate <= 0 || cfg.Submit.Burst < 1 {
		return nil, fmt.Errorf("PAWSTAY_SUBMIT_RATE must be positive and PAWSTAY_SUBMIT_BURST at least 1")
	}
	return cfg, nil
}

// SMTPConfig returns the SMTP relay settings. The relay sender falls back to
// PAWSTAY_NOTIFY_FROM.
func (c *Config) SMTPConfig() notify.SMTPConfig {
	from := c.SMTP.From
	if from == "" {
		from = c.Notify.From
	}
	return notify.SMTPConfig{
		Host: c.SMTP.Host,
		Port: c.SMTP.Port,
		User: c.SMTP.User,
		Pass: c.SMTP.Pass,
		From: from,
	}
}

// SendGridConfig returns the SendGrid API settings.
func (c *Config) SendGridConfig() notify.SendGridConfig {
	return notify.SendGridConfig{
		APIKey:   c.SendGrid.APIKey,
		From:     c.Notify.From,
		FromName: c.Notify.FromName,
		Sandbox:  c.SendGrid.Sandbox,
	}
}

// Notifier picks the delivery channel: SendGrid when an API key and sender
// are set, then SMTP, then the log notifier.
func (c *Config) Notifier() notify.Notifier {
	if c.SendGrid.APIKey != "" && c.Notify.From != "" {
		return notify.NewSendGrid(c.SendGridConfig())
	}
	if smtp := c.SMTPConfig(); smtp.IsConfigured() {
		return notify.NewSMTP(smtp)
	}
	return notify.Log{Logger: slog.Default()}
}
