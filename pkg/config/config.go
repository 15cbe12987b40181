package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTP    HTTP
	Logger  Logger
	SMTP    SMTP
	Contact Contact
	Kafka   Kafka
}

type HTTP struct {
	Port           int      `env:"PORT" envDefault:"4000"`
	AllowedOrigins []string `env:"CLIENT_ORIGIN" envSeparator:","`

	// TLS is enabled only when both files are set.
	ServerCert string `env:"TLS_SERVER_CERT"`
	ServerKey  string `env:"TLS_SERVER_KEY"`
}

type Logger struct {
	Level      string `env:"LOG_LEVEL" envDefault:"info"`
	File       string `env:"LOG_FILE"`
	MaxSizeMB  int    `env:"LOG_FILE_MAX_SIZE_MB" envDefault:"10"`
	MaxBackups int    `env:"LOG_FILE_MAX_BACKUPS" envDefault:"3"`
	MaxAgeDays int    `env:"LOG_FILE_MAX_AGE_DAYS" envDefault:"28"`
}

type SMTP struct {
	Host     string        `env:"SMTP_HOST"`
	Port     int           `env:"SMTP_PORT"`
	Username string        `env:"SMTP_USER"`
	Password string        `env:"SMTP_PASS"`
	Timeout  time.Duration `env:"SMTP_TIMEOUT" envDefault:"8s"`
	FromName string        `env:"MAIL_FROM_NAME" envDefault:"WavyThought Website"`
}

// Configured reports whether every credential needed to reach the mail server is present.
func (s SMTP) Configured() bool {
	return s.Host != "" && s.Port != 0 && s.Username != "" && s.Password != ""
}

type Contact struct {
	Recipient     string `env:"CONTACT_RECIPIENT" envDefault:"info@wavythought.com"`
	ValidateEmail bool   `env:"CONTACT_VALIDATE_EMAIL" envDefault:"false"`
}

type Kafka struct {
	Brokers      []string `env:"KAFKA_BROKERS" envSeparator:","`
	ConsumerID   string   `env:"KAFKA_CONSUMER_ID" envDefault:"contact-relay"`
	ContactTopic string   `env:"KAFKA_CONTACT_TOPIC" envDefault:"contact-submissions"`
}

func (k Kafka) Enabled() bool {
	return len(k.Brokers) > 0
}

func New(envPath string) (Config, error) {
	err := godotenv.Load(envPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}

	c, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, err
	}

	if c.HTTP.ServerCert != "" || c.HTTP.ServerKey != "" {
		requiredFiles := []struct {
			name string
			val  string
		}{
			{"TLS_SERVER_CERT", c.HTTP.ServerCert},
			{"TLS_SERVER_KEY", c.HTTP.ServerKey},
		}

		for _, path := range requiredFiles {
			if _, err := os.Stat(path.val); err != nil {
				return Config{}, fmt.Errorf("missing TLS file for %s: %q", path.name, path.val)
			}
		}
	}

	if c.SMTP.Timeout <= 0 {
		return Config{}, fmt.Errorf("SMTP_TIMEOUT must be positive, got %s", c.SMTP.Timeout)
	}

	return c, nil
}
