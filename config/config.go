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

type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Log        LogConfig        `yaml:"log"`
	DataSource DataSourceConfig `yaml:"datasource"`
	Session    SessionConfig    `yaml:"session"`
	Redis      RedisConfig      `yaml:"redis"`
	Cache      CacheConfig      `yaml:"cache"`
	Database   DatabaseConfig   `yaml:"database"`
	Kafka      KafkaConfig      `yaml:"kafka"`
	Format     FormatConfig     `yaml:"format"`
	Worker     WorkerConfig     `yaml:"worker"`
}

type HTTPConfig struct {
	Address         string `yaml:"address"`
	PageSize        int    `yaml:"page_size"`
	ShutdownSeconds int    `yaml:"shutdown_seconds"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// DataSource kinds.
const (
	DataSourceREST = "rest"
	DataSourceMock = "mock"
)

type DataSourceConfig struct {
	Kind           string `yaml:"kind"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	Retries        int    `yaml:"retries"`
	MockDelayMS    int    `yaml:"mock_delay_ms"`
	JWTSecret      string `yaml:"jwt_secret"`
}

func (d DataSourceConfig) Timeout() time.Duration {
	return time.Duration(d.TimeoutSeconds) * time.Second
}

func (d DataSourceConfig) MockDelay() time.Duration {
	return time.Duration(d.MockDelayMS) * time.Millisecond
}

// Session backends.
const (
	SessionRedis  = "redis"
	SessionMemory = "memory"
)

type SessionConfig struct {
	Backend      string `yaml:"backend"`
	TTLHours     int    `yaml:"ttl_hours"`
	CookieName   string `yaml:"cookie_name"`
	CookieSecure bool   `yaml:"cookie_secure"`
}

func (s SessionConfig) TTL() time.Duration {
	return time.Duration(s.TTLHours) * time.Hour
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type CacheConfig struct {
	Enabled        bool `yaml:"enabled"`
	CatalogTTLSecs int  `yaml:"catalog_ttl_seconds"`
}

func (c CacheConfig) CatalogTTL() time.Duration {
	return time.Duration(c.CatalogTTLSecs) * time.Second
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// Enabled reports whether a database was configured at all.
func (d DatabaseConfig) Enabled() bool {
	return d.Host != ""
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	BookingEventsTopic string   `yaml:"booking_events_topic"`
	GroupID            string   `yaml:"group_id"`
}

func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0 && k.BookingEventsTopic != ""
}

type FormatConfig struct {
	Locale   string `yaml:"locale"`
	Currency string `yaml:"currency"`
}

// WorkerConfig drives the notification worker's retention sweep.
type WorkerConfig struct {
	SweepMinutes  int `yaml:"sweep_minutes"`
	RetentionDays int `yaml:"retention_days"`
}

func (w WorkerConfig) SweepInterval() time.Duration {
	return time.Duration(w.SweepMinutes) * time.Minute
}

func (w WorkerConfig) Retention() time.Duration {
	return time.Duration(w.RetentionDays) * 24 * time.Hour
}

// LoadConfig reads the YAML file at path, applies a .env file if one is
// present, then TOUR_* environment overrides and defaults.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnv(os.LookupEnv)
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup("TOUR_HTTP_ADDRESS"); ok {
		c.HTTP.Address = v
	}
	if v, ok := lookup("TOUR_DATASOURCE_KIND"); ok {
		c.DataSource.Kind = v
	}
	if v, ok := lookup("TOUR_API_BASE_URL"); ok {
		c.DataSource.BaseURL = v
	}
	if v, ok := lookup("TOUR_JWT_SECRET"); ok {
		c.DataSource.JWTSecret = v
	}
	if v, ok := lookup("TOUR_REDIS_ADDR"); ok {
		c.Redis.Addr = v
	}
	if v, ok := lookup("TOUR_REDIS_PASSWORD"); ok {
		c.Redis.Password = v
	}
	if v, ok := lookup("TOUR_DB_PASSWORD"); ok {
		c.Database.Password = v
	}
	if v, ok := lookup("TOUR_KAFKA_BROKERS"); ok {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v, ok := lookup("TOUR_LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := lookup("TOUR_MOCK_DELAY_MS"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.DataSource.MockDelayMS = n
		}
	}
}

func (c *Config) applyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8081"
	}
	if c.HTTP.PageSize <= 0 {
		c.HTTP.PageSize = 9
	}
	if c.HTTP.ShutdownSeconds <= 0 {
		c.HTTP.ShutdownSeconds = 5
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.DataSource.Kind == "" {
		c.DataSource.Kind = DataSourceMock
	}
	if c.DataSource.TimeoutSeconds <= 0 {
		c.DataSource.TimeoutSeconds = 10
	}
	if c.DataSource.Retries <= 0 {
		c.DataSource.Retries = 3
	}
	if c.Session.Backend == "" {
		c.Session.Backend = SessionMemory
	}
	if c.Session.TTLHours <= 0 {
		c.Session.TTLHours = 24
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "sid"
	}
	if c.Cache.CatalogTTLSecs <= 0 {
		c.Cache.CatalogTTLSecs = 60
	}
	if c.Worker.SweepMinutes <= 0 {
		c.Worker.SweepMinutes = 60
	}
	if c.Worker.RetentionDays <= 0 {
		c.Worker.RetentionDays = 30
	}
	if c.Format.Locale == "" {
		c.Format.Locale = "vi"
	}
	if c.Format.Currency == "" {
		c.Format.Currency = "VND"
	}
}

func (c *Config) Validate() error {
	switch c.DataSource.Kind {
	case DataSourceREST:
		if c.DataSource.BaseURL == "" {
			return errors.New("datasource.base_url is required for the rest datasource")
		}
	case DataSourceMock:
	default:
		return fmt.Errorf("unknown datasource kind %q", c.DataSource.Kind)
	}

	switch c.Session.Backend {
	case SessionRedis:
		if c.Redis.Addr == "" {
			return errors.New("redis.addr is required for the redis session backend")
		}
	case SessionMemory:
	default:
		return fmt.Errorf("unknown session backend %q", c.Session.Backend)
	}

	if c.Cache.Enabled && c.Redis.Addr == "" {
		return errors.New("redis.addr is required when the cache is enabled")
	}
	return nil
}
