package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"

	LockingNone  = "none"
	LockingLocal = "local"
	LockingRedis = "redis"
)

var (
	// ErrInvalidConfig возвращается при некорректной конфигурации
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

// Config конфигурация сервиса
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Storage  StorageConfig  `toml:"storage"`
	Redis    RedisConfig    `toml:"redis"`
	Locking  LockingConfig  `toml:"locking"`
	Booking  BookingConfig  `toml:"booking"`
	Payments PaymentsConfig `toml:"payments"`
	Logs     LogsConfig     `toml:"logs"`
	Metrics  MetricsConfig  `toml:"metrics"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`     // секунды
	WriteTimeout    int `toml:"write_timeout"`    // секунды
	IdleTimeout     int `toml:"idle_timeout"`     // секунды
	ShutdownTimeout int `toml:"shutdown_timeout"` // секунды
}

type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
	AutoMigrate     bool   `toml:"auto_migrate"`
}

// DSN строка подключения для lib/pq
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// StorageConfig выбор хранилища: postgres или memory (демо и тесты)
type StorageConfig struct {
	Driver string `toml:"driver"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// LockingConfig блокировки слотов перед транзакцией создания бронирования
type LockingConfig struct {
	Backend      string `toml:"backend"` // none | local | redis
	KeyPrefix    string `toml:"key_prefix"`
	TTLMs        int    `toml:"ttl_ms"`
	RetryDelayMs int    `toml:"retry_delay_ms"`
	MaxWaitMs    int    `toml:"max_wait_ms"`
}

// BookingConfig параметры сравнения слотов
type BookingConfig struct {
	Timezone         string `toml:"timezone"`
	TimeFormat       string `toml:"time_format"` // Go layout, например "15:04"
	DefaultGroupSize int    `toml:"default_group_size"`
	DefaultCurrency  string `toml:"default_currency"`
}

// Location загружает часовой пояс бронирований
func (c BookingConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Timezone)
}

type PaymentsConfig struct {
	WebhookSecret string `toml:"webhook_secret"`
}

type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// Load загружает конфигурацию из TOML файла.
// Секреты и драйвер хранилища можно переопределить через окружение или .env.
func Load(path string) (*Config, error) {
	// .env необязателен
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("config: decode %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default конфигурация по умолчанию
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     15,
			WriteTimeout:    15,
			IdleTimeout:     60,
			ShutdownTimeout: 30,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "postgres",
			DBName:          "lesson_booking",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
			AutoMigrate:     true,
		},
		Storage: StorageConfig{Driver: StorageDriverPostgres},
		Redis:   RedisConfig{Addr: "localhost:6379"},
		Locking: LockingConfig{
			Backend:      LockingLocal,
			KeyPrefix:    "lesson-booking:slot:",
			TTLMs:        10000,
			RetryDelayMs: 50,
			MaxWaitMs:    3000,
		},
		Booking: BookingConfig{
			Timezone:         "UTC",
			TimeFormat:       "15:04",
			DefaultGroupSize: 10,
			DefaultCurrency:  "CAD",
		},
		Logs: LogsConfig{Level: "info"},
		Metrics: MetricsConfig{
			Enabled:     true,
			Path:        "/metrics",
			ServiceName: "lesson-booking-service",
		},
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("WEBHOOK_SECRET"); v != "" {
		cfg.Payments.WebhookSecret = v
	}
	if v := os.Getenv("STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = strings.ToLower(v)
	}
	if v := os.Getenv("LOCKING_BACKEND"); v != "" {
		cfg.Locking.Backend = strings.ToLower(v)
	}
}

// Validate проверяет конфигурацию
func (c *Config) Validate() error {
	var problems []string

	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		problems = append(problems, "server.http_port must be in 1..65535")
	}

	switch c.Storage.Driver {
	case StorageDriverPostgres:
		if c.Database.Host == "" || c.Database.DBName == "" {
			problems = append(problems, "database.host and database.dbname are required for postgres storage")
		}
	case StorageDriverMemory:
	default:
		problems = append(problems, fmt.Sprintf("unknown storage.driver %q", c.Storage.Driver))
	}

	switch c.Locking.Backend {
	case LockingNone, LockingLocal:
	case LockingRedis:
		if c.Redis.Addr == "" {
			problems = append(problems, "redis.addr is required for redis locking")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown locking.backend %q", c.Locking.Backend))
	}

	if _, err := c.Booking.Location(); err != nil {
		problems = append(problems, fmt.Sprintf("booking.timezone: %v", err))
	}
	if c.Booking.TimeFormat == "" {
		problems = append(problems, "booking.time_format is required")
	}
	if c.Booking.DefaultGroupSize < 1 || c.Booking.DefaultGroupSize > 100 {
		problems = append(problems, "booking.default_group_size must be in 1..100")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}
