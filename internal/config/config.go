package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigPath = "configs/config.yaml"
	defaultJWTSecret  = "change-me-jwt-secret"
)

type Config struct {
	App         AppConfig         `yaml:"app"`
	Database    DatabaseConfig    `yaml:"database"`
	Redis       RedisConfig       `yaml:"redis"`
	Auth        AuthConfig        `yaml:"auth"`
	Booking     BookingConfig     `yaml:"booking"`
	Queue       QueueConfig       `yaml:"queue"`
	Mail        MailConfig        `yaml:"mail"`
	Logging     LoggingConfig     `yaml:"logging"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
	Monitoring  MonitoringConfig  `yaml:"monitoring"`
	Maintenance MaintenanceConfig `yaml:"maintenance"`
}

type AppConfig struct {
	Name           string   `yaml:"name"`
	Env            string   `yaml:"env"`
	Port           string   `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type DatabaseConfig struct {
	DSN         string `yaml:"dsn"`
	AutoMigrate bool   `yaml:"auto_migrate"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// AuthConfig describes how tokens issued by the identity provider are verified.
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	Issuer    string        `yaml:"issuer"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type BookingConfig struct {
	// AutoConfirm creates bookings directly in the confirmed state.
	AutoConfirm    bool          `yaml:"auto_confirm"`
	EnqueueTimeout time.Duration `yaml:"enqueue_timeout"`
}

type QueueConfig struct {
	// Driver is "asynq" (Redis broker) or "inline" (synchronous, in-process).
	Driver      string         `yaml:"driver"`
	Concurrency int            `yaml:"concurrency"`
	Queues      map[string]int `yaml:"queues"`
	ResultTTL   time.Duration  `yaml:"result_ttl"`
	Schedule    ScheduleConfig `yaml:"schedule"`
}

type ScheduleConfig struct {
	Reminders  string `yaml:"reminders"`
	Cleanup    string `yaml:"cleanup"`
	Completion string `yaml:"completion"`
	Analytics  string `yaml:"analytics"`
}

type MailConfig struct {
	// Backend is "smtp" or "log".
	Backend          string        `yaml:"backend"`
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	Username         string        `yaml:"username"`
	Password         string        `yaml:"password"`
	From             string        `yaml:"from"`
	AdminEmails      []string      `yaml:"admin_emails"`
	SubjectPrefix    string        `yaml:"subject_prefix"`
	InsecureTLS      bool          `yaml:"insecure_tls"`
	BreakerFailures  int           `yaml:"breaker_failures"`
	BreakerOpenDelay time.Duration `yaml:"breaker_open_delay"`
}

type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	Output     string `yaml:"output"`
	FilePath   string `yaml:"file_path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

type RateLimitConfig struct {
	Enabled bool `yaml:"enabled"`
	// Writes uses the limiter's formatted rate, e.g. "30-M".
	Writes string `yaml:"writes"`
	Prefix string `yaml:"prefix"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
}

type MaintenanceConfig struct {
	EmailLogRetentionDays int `yaml:"email_log_retention_days"`
	ReminderLeadDays      int `yaml:"reminder_lead_days"`
}

// Default returns a configuration usable for local development.
func Default() *Config {
	return &Config{
		App: AppConfig{
			Name: "travelapp",
			Env:  "dev",
			Port: "8080",
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost:5173",
			},
		},
		Database: DatabaseConfig{DSN: "travelapp.db", AutoMigrate: true},
		Redis:    RedisConfig{Address: "localhost:6379", PoolSize: 10},
		Auth:     AuthConfig{JWTSecret: defaultJWTSecret, Issuer: "travelapp-idp", TokenTTL: time.Hour},
		Booking:  BookingConfig{EnqueueTimeout: 2 * time.Second},
		Queue: QueueConfig{
			Driver:      "asynq",
			Concurrency: 10,
			Queues:      map[string]int{"emails": 6, "maintenance": 2},
			ResultTTL:   time.Hour,
			Schedule: ScheduleConfig{
				Reminders:  "0 10 * * *",
				Cleanup:    "0 2 * * 0",
				Completion: "15 * * * *",
				Analytics:  "30 3 * * *",
			},
		},
		Mail: MailConfig{
			Backend:          "log",
			Port:             587,
			From:             "no-reply@travelapp.local",
			SubjectPrefix:    "[travelapp] ",
			BreakerFailures:  5,
			BreakerOpenDelay: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			Output:     "stdout",
			FilePath:   "logs/travelapp.log",
			MaxSizeMB:  100,
			MaxBackups: 5,
			MaxAgeDays: 30,
		},
		RateLimit:   RateLimitConfig{Enabled: true, Writes: "30-M", Prefix: "travelapp:limiter"},
		Monitoring:  MonitoringConfig{PrometheusEnabled: true},
		Maintenance: MaintenanceConfig{EmailLogRetentionDays: 30, ReminderLeadDays: 1},
	}
}

// Load reads .env (if present), the YAML file at path and environment
// overrides, in that order. An empty path falls back to CONFIG_PATH.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if path == "" {
		path = getEnv("CONFIG_PATH", defaultConfigPath)
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	cfg.App.Env = strings.ToLower(strings.TrimSpace(getEnv("APP_ENV", cfg.App.Env)))
	if cfg.App.Env == "" {
		cfg.App.Env = "dev"
	}
	cfg.App.Port = getEnv("PORT", cfg.App.Port)
	if extra := os.Getenv("CORS_ALLOWED_ORIGINS"); extra != "" {
		for _, o := range strings.Split(extra, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.App.AllowedOrigins = append(cfg.App.AllowedOrigins, o)
			}
		}
	}

	cfg.Database.DSN = getEnv("DATABASE_URL", cfg.Database.DSN)
	cfg.Redis.Address = getEnv("REDIS_ADDR", cfg.Redis.Address)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Auth.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", cfg.Auth.JWTSecret))
	cfg.Queue.Driver = getEnv("QUEUE_DRIVER", cfg.Queue.Driver)

	cfg.Mail.Backend = getEnv("MAIL_BACKEND", cfg.Mail.Backend)
	cfg.Mail.Host = getEnv("SMTP_HOST", cfg.Mail.Host)
	cfg.Mail.Username = getEnv("SMTP_USERNAME", cfg.Mail.Username)
	cfg.Mail.Password = getEnv("SMTP_PASSWORD", cfg.Mail.Password)
	cfg.Mail.From = getEnv("SMTP_FROM", cfg.Mail.From)
	if v := os.Getenv("SMTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SMTP_PORT: %w", err)
		}
		cfg.Mail.Port = port
	}

	var err error
	cfg.Booking.EnqueueTimeout, err = parseDurationEnv("ENQUEUE_TIMEOUT", cfg.Booking.EnqueueTimeout)
	if err != nil {
		return err
	}
	cfg.Booking.AutoConfirm = parseBoolEnv("BOOKING_AUTO_CONFIRM", cfg.Booking.AutoConfirm)
	cfg.Logging.Level = getEnv("LOG_LEVEL", cfg.Logging.Level)
	return nil
}

func (c *Config) Validate() error {
	if c.App.Port == "" {
		return fmt.Errorf("app.port is required")
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be > 0")
	}
	if c.Booking.EnqueueTimeout <= 0 {
		return fmt.Errorf("booking.enqueue_timeout must be > 0")
	}
	switch c.Queue.Driver {
	case "asynq":
		if c.Redis.Address == "" {
			return fmt.Errorf("redis.address is required for the asynq queue driver")
		}
	case "inline":
	default:
		return fmt.Errorf("queue.driver must be asynq or inline, got %q", c.Queue.Driver)
	}
	if c.Queue.Concurrency <= 0 {
		return fmt.Errorf("queue.concurrency must be > 0")
	}
	if c.Queue.ResultTTL <= 0 {
		return fmt.Errorf("queue.result_ttl must be > 0")
	}
	switch c.Mail.Backend {
	case "smtp":
		if c.Mail.Host == "" || c.Mail.Port <= 0 {
			return fmt.Errorf("mail.host and mail.port are required for the smtp backend")
		}
	case "log":
	default:
		return fmt.Errorf("mail.backend must be smtp or log, got %q", c.Mail.Backend)
	}
	if c.Mail.From == "" {
		return fmt.Errorf("mail.from is required")
	}
	if c.Maintenance.EmailLogRetentionDays <= 0 {
		return fmt.Errorf("maintenance.email_log_retention_days must be > 0")
	}
	if c.Maintenance.ReminderLeadDays <= 0 {
		return fmt.Errorf("maintenance.reminder_lead_days must be > 0")
	}

	if c.IsProdLike() {
		if c.Auth.JWTSecret == defaultJWTSecret {
			return fmt.Errorf("JWT_SECRET must be set in %s", c.App.Env)
		}
		if c.Queue.Driver == "inline" {
			return fmt.Errorf("inline queue driver is not allowed in %s", c.App.Env)
		}
	}
	return nil
}

func (c *Config) IsProdLike() bool {
	switch c.App.Env {
	case "prod", "production", "staging":
		return true
	default:
		return false
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}

func parseDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func parseBoolEnv(key string, fallback bool) bool {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return v
}
