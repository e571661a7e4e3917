package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// WebhookEndpoints maps an integration name to its endpoint URL. Parsed from "name:url,name:url".
type WebhookEndpoints map[string]string

func (w *WebhookEndpoints) UnmarshalText(text []byte) error {
	endpoints := make(WebhookEndpoints)
	for pair := range strings.SplitSeq(string(text), ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, rawURL, found := strings.Cut(pair, ":")
		name = strings.TrimSpace(name)
		if !found || name == "" {
			return fmt.Errorf("webhook endpoint %q: expected name:url", pair)
		}
		u, err := url.Parse(strings.TrimSpace(rawURL))
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("webhook endpoint %q: invalid url", name)
		}
		if _, dup := endpoints[name]; dup {
			return fmt.Errorf("webhook endpoint %q: duplicate name", name)
		}
		endpoints[name] = u.String()
	}
	*w = endpoints
	return nil
}

type Config struct {
	RunAddress    string `env:"RUN_ADDRESS"`
	DatabaseDSN   string `env:"DATABASE_URI"`
	MigrationsDir string `env:"MIGRATIONS_DIR"`
	JWTSecret     string `env:"JWT_SECRET"`

	DebitPolicy   string        `env:"DEBIT_POLICY"   envDefault:"strict"`
	LockTimeout   time.Duration `env:"LOCK_TIMEOUT"   envDefault:"5s"`
	NotifyTimeout time.Duration `env:"NOTIFY_TIMEOUT" envDefault:"5s"`

	WebhookSecret    string           `env:"WEBHOOK_SECRET"`
	WebhookEndpoints WebhookEndpoints `env:"WEBHOOK_ENDPOINTS"`

	SMTPHost       string `env:"SMTP_HOST"`
	SMTPPort       int    `env:"SMTP_PORT"        envDefault:"587"`
	SMTPUsername   string `env:"SMTP_USERNAME"`
	SMTPPassword   string `env:"SMTP_PASSWORD"`
	SMTPFrom       string `env:"SMTP_FROM"`
	ChatWebhookURL string `env:"CHAT_WEBHOOK_URL"`

	OutboxWorkers     int     `env:"OUTBOX_WORKERS"      envDefault:"4"`
	OutboxBatchSize   uint    `env:"OUTBOX_BATCH_SIZE"   envDefault:"50"`
	OutboxMaxAttempts int     `env:"OUTBOX_MAX_ATTEMPTS" envDefault:"8"`
	OutboxRateLimit   float64 `env:"OUTBOX_RATE_LIMIT"   envDefault:"20"`
}

// LoadConfig reads an optional .env file, then the environment, then command line flags. Environment values
// win over flags.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %s", err.Error())
	}

	var flagsConfig, envConfig Config

	if envParseErr := env.Parse(&envConfig); envParseErr != nil {
		return nil, fmt.Errorf("parse env config: %s", envParseErr.Error())
	}

	loadFlags(&flagsConfig)

	conf := mergeConfig(&envConfig, &flagsConfig)
	if err := conf.validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

func MustLoadConfig() *Config {
	config, err := LoadConfig()
	if err != nil {
		panic(err)
	}
	return config
}

func loadFlags(flagConfig *Config) {
	flag.StringVar(&flagConfig.RunAddress, "a", "localhost:8080", "Run address in format host:port")
	flag.StringVar(&flagConfig.DatabaseDSN, "d", "", "Database DSN")
	flag.StringVar(&flagConfig.MigrationsDir, "m", "internal/db/migrations", "Database migrations directory")
	flag.StringVar(&flagConfig.JWTSecret, "j", "", "JWT signing secret")

	flag.Parse()
}

// mergeConfig takes string settings from env, falling back to flags. Typed settings only come from env.
func mergeConfig(envConfig, flagsConfig *Config) *Config {
	conf := *envConfig
	conf.RunAddress = defaultIfBlank(envConfig.RunAddress, flagsConfig.RunAddress)
	conf.DatabaseDSN = defaultIfBlank(envConfig.DatabaseDSN, flagsConfig.DatabaseDSN)
	conf.MigrationsDir = defaultIfBlank(envConfig.MigrationsDir, flagsConfig.MigrationsDir)
	conf.JWTSecret = defaultIfBlank(envConfig.JWTSecret, flagsConfig.JWTSecret)
	return &conf
}

func (c *Config) validate() error {
	if c.DatabaseDSN == "" {
		return errors.New("database DSN is not set")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT secret is not set")
	}
	if c.DebitPolicy != "strict" && c.DebitPolicy != "clamped" {
		return fmt.Errorf("unknown debit policy %q", c.DebitPolicy)
	}
	if len(c.WebhookEndpoints) > 0 && c.WebhookSecret == "" {
		return errors.New("webhook endpoints are configured without WEBHOOK_SECRET")
	}
	if c.SMTPHost != "" && c.SMTPFrom == "" {
		return errors.New("SMTP_FROM is required with SMTP_HOST")
	}
	if c.OutboxWorkers <= 0 || c.OutboxBatchSize == 0 || c.OutboxMaxAttempts <= 0 || c.OutboxRateLimit <= 0 {
		return errors.New("outbox settings must be positive")
	}
	return nil
}

// String hides secrets, the config is logged on start.
func (c Config) String() string {
	return fmt.Sprintf(
		"{RunAddress:%s MigrationsDir:%s DebitPolicy:%s LockTimeout:%s NotifyTimeout:%s Webhooks:%d SMTP:%t "+
			"Chat:%t OutboxWorkers:%d OutboxBatchSize:%d OutboxMaxAttempts:%d OutboxRateLimit:%g}",
		c.RunAddress, c.MigrationsDir, c.DebitPolicy, c.LockTimeout, c.NotifyTimeout, len(c.WebhookEndpoints),
		c.SMTPHost != "", c.ChatWebhookURL != "", c.OutboxWorkers, c.OutboxBatchSize, c.OutboxMaxAttempts,
		c.OutboxRateLimit,
	)
}

func defaultIfBlank(value string, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}
