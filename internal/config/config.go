package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Payment providers.
const (
	ProviderStripe = "stripe"
	ProviderMock   = "mock"
)

// Config holds all configuration for the application.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	NewRelic  NewRelicConfig  `yaml:"new_relic"`
	Log       LogConfig       `yaml:"log"`
	Auth      AuthConfig      `yaml:"auth"`
	Payments  PaymentsConfig  `yaml:"payments"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string        `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	// PublicURL is the externally reachable base used in payment redirects.
	PublicURL string `yaml:"public_url"`
}

// StorageConfig selects the repository implementation.
type StorageConfig struct {
	Driver string `yaml:"driver"`
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	DBName          string        `yaml:"dbname"`
	SSLMode         string        `yaml:"ssl_mode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
	AutoMigrate     bool          `yaml:"auto_migrate"`
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string `yaml:"app_name"`
	LicenseKey string `yaml:"license_key"`
	Enabled    bool   `yaml:"enabled"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AuthConfig holds bearer token settings.
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	Issuer    string        `yaml:"issuer"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

// PaymentsConfig holds checkout settings.
type PaymentsConfig struct {
	Provider        string        `yaml:"provider"`
	StripeSecretKey string        `yaml:"stripe_secret_key"`
	StripeAPIURL    string        `yaml:"stripe_api_url"`
	Currency        string        `yaml:"currency"`
	SessionTTL      time.Duration `yaml:"session_ttl"`
	ProviderTimeout time.Duration `yaml:"provider_timeout"`
	LockTTL         time.Duration `yaml:"lock_ttl"`
}

// TelegramConfig holds the operator chat settings. Empty token logs instead.
type TelegramConfig struct {
	BotToken string        `yaml:"bot_token"`
	ChatID   string        `yaml:"chat_id"`
	APIURL   string        `yaml:"api_url"`
	Timeout  time.Duration `yaml:"timeout"`
}

// SchedulerConfig holds cron expressions (with seconds) for scheduled jobs.
type SchedulerConfig struct {
	Enabled        bool   `yaml:"enabled"`
	OverdueRentals string `yaml:"overdue_rentals"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			PublicURL:    "http://localhost:8080",
		},
		Storage: StorageConfig{Driver: StoragePostgres},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            "5432",
			User:            "postgres",
			Password:        "postgres",
			DBName:          "car_sharing",
			SSLMode:         "disable",
			MaxOpenConns:    50,
			MaxIdleConns:    25,
			ConnMaxLifetime: 30 * time.Minute,
			ConnMaxIdleTime: 5 * time.Minute,
			AutoMigrate:     true,
		},
		Redis: RedisConfig{
			Enabled: true,
			Addr:    "localhost:6379",
		},
		NewRelic: NewRelicConfig{
			AppName: "car-sharing-service",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Auth: AuthConfig{
			Issuer:   "carshare",
			TokenTTL: time.Hour,
		},
		Payments: PaymentsConfig{
			Provider:        ProviderStripe,
			Currency:        "usd",
			SessionTTL:      24 * time.Hour,
			ProviderTimeout: 10 * time.Second,
			LockTTL:         30 * time.Second,
		},
		Telegram: TelegramConfig{
			Timeout: 10 * time.Second,
		},
		Scheduler: SchedulerConfig{
			Enabled:        true,
			OverdueRentals: "0 0 9 * * *",
		},
	}
}

// Load builds the configuration from defaults, an optional .env file, an
// optional YAML file named by CONFIG_FILE and finally the environment.
func Load() (*Config, error) {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// overrideWithEnv overrides config values with environment variables.
func (c *Config) overrideWithEnv() {
	c.Server.Port = getEnv("SERVER_PORT", c.Server.Port)
	c.Server.ReadTimeout = getDurationEnv("SERVER_READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.WriteTimeout = getDurationEnv("SERVER_WRITE_TIMEOUT", c.Server.WriteTimeout)
	c.Server.PublicURL = getEnv("PUBLIC_URL", c.Server.PublicURL)

	c.Storage.Driver = strings.ToLower(getEnv("STORAGE_DRIVER", c.Storage.Driver))

	c.Database.Host = getEnv("DB_HOST", c.Database.Host)
	c.Database.Port = getEnv("DB_PORT", c.Database.Port)
	c.Database.User = getEnv("DB_USER", c.Database.User)
	c.Database.Password = getEnv("DB_PASSWORD", c.Database.Password)
	c.Database.DBName = getEnv("DB_NAME", c.Database.DBName)
	c.Database.SSLMode = getEnv("DB_SSLMODE", c.Database.SSLMode)
	c.Database.MaxOpenConns = getIntEnv("DB_MAX_OPEN_CONNS", c.Database.MaxOpenConns)
	c.Database.MaxIdleConns = getIntEnv("DB_MAX_IDLE_CONNS", c.Database.MaxIdleConns)
	c.Database.AutoMigrate = getBoolEnv("DB_AUTO_MIGRATE", c.Database.AutoMigrate)

	c.Redis.Enabled = getBoolEnv("REDIS_ENABLED", c.Redis.Enabled)
	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getIntEnv("REDIS_DB", c.Redis.DB)

	c.NewRelic.AppName = getEnv("NEW_RELIC_APP_NAME", c.NewRelic.AppName)
	c.NewRelic.LicenseKey = getEnv("NEW_RELIC_LICENSE_KEY", c.NewRelic.LicenseKey)
	c.NewRelic.Enabled = getBoolEnv("NEW_RELIC_ENABLED", c.NewRelic.Enabled)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)

	c.Auth.JWTSecret = getEnv("JWT_SECRET", c.Auth.JWTSecret)
	c.Auth.Issuer = getEnv("JWT_ISSUER", c.Auth.Issuer)
	c.Auth.TokenTTL = getDurationEnv("JWT_TOKEN_TTL", c.Auth.TokenTTL)

	c.Payments.Provider = strings.ToLower(getEnv("PAYMENT_PROVIDER", c.Payments.Provider))
	c.Payments.StripeSecretKey = getEnv("STRIPE_SECRET_KEY", c.Payments.StripeSecretKey)
	c.Payments.StripeAPIURL = getEnv("STRIPE_API_URL", c.Payments.StripeAPIURL)
	c.Payments.Currency = getEnv("PAYMENT_CURRENCY", c.Payments.Currency)
	c.Payments.SessionTTL = getDurationEnv("PAYMENT_SESSION_TTL", c.Payments.SessionTTL)
	c.Payments.ProviderTimeout = getDurationEnv("PAYMENT_PROVIDER_TIMEOUT", c.Payments.ProviderTimeout)
	c.Payments.LockTTL = getDurationEnv("PAYMENT_LOCK_TTL", c.Payments.LockTTL)

	c.Telegram.BotToken = getEnv("TELEGRAM_BOT_TOKEN", c.Telegram.BotToken)
	c.Telegram.ChatID = getEnv("TELEGRAM_CHAT_ID", c.Telegram.ChatID)
	c.Telegram.APIURL = getEnv("TELEGRAM_API_URL", c.Telegram.APIURL)
	c.Telegram.Timeout = getDurationEnv("TELEGRAM_TIMEOUT", c.Telegram.Timeout)

	c.Scheduler.Enabled = getBoolEnv("SCHEDULER_ENABLED", c.Scheduler.Enabled)
	c.Scheduler.OverdueRentals = getEnv("SCHEDULER_OVERDUE_RENTALS", c.Scheduler.OverdueRentals)
}

// Validate checks that the configuration can start the service.
func (c *Config) Validate() error {
	if port, err := strconv.Atoi(c.Server.Port); err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("invalid server port: %q", c.Server.Port)
	}

	switch c.Storage.Driver {
	case StoragePostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.DBName == "" {
			return fmt.Errorf("database name is required")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown storage driver: %q", c.Storage.Driver)
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	switch c.Payments.Provider {
	case ProviderStripe:
		if c.Payments.StripeSecretKey == "" {
			return fmt.Errorf("stripe secret key is required")
		}
	case ProviderMock:
	default:
		return fmt.Errorf("unknown payment provider: %q", c.Payments.Provider)
	}
	if c.Payments.ProviderTimeout <= 0 {
		return fmt.Errorf("payment provider timeout must be positive")
	}

	if c.Telegram.BotToken != "" && c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram chat id is required when a bot token is set")
	}

	if c.Scheduler.Enabled && c.Scheduler.OverdueRentals == "" {
		return fmt.Errorf("overdue rentals schedule is required")
	}

	return nil
}

// DSN returns the lib/pq connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
