package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Sync      SyncConfig
	Naver     NaverConfig
	Shopify   ShopifyConfig
	Webhook   WebhookConfig
	Telemetry TelemetryConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings for the realtime sink
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	Channel  string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	MaxBodySize       int64
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	TrustedProxies    []string
}

// SyncConfig holds reconciliation engine settings
type SyncConfig struct {
	SchedulerEnabled       bool
	Interval               time.Duration // full pass interval, floor 5m
	Workers                int
	PassTimeout            time.Duration
	ItemTimeout            time.Duration
	StalenessThreshold     time.Duration
	QuantityNoiseThreshold int64
	PriceNoiseThreshold    float64
	BaseCurrency           string
	TargetCurrency         string
	WebhookRetention       time.Duration
}

// NaverConfig holds marketplace client settings
type NaverConfig struct {
	BaseURL       string
	ClientID      string
	ClientSecret  string
	Timeout       time.Duration
	RatePerSecond float64
	RateBurst     int
	RateMaxWait   time.Duration
}

// ShopifyConfig holds storefront client settings
type ShopifyConfig struct {
	ShopDomain    string
	AccessToken   string
	APIVersion    string
	LocationID    string
	Timeout       time.Duration
	RatePerSecond float64
	RateBurst     int
	RateMaxWait   time.Duration
}

// WebhookConfig holds inbound webhook verification settings
type WebhookConfig struct {
	NaverSecret   string
	ShopifySecret string
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool
	ServiceName       string
	CollectorEndpoint string
	ExportInterval    time.Duration
	Insecure          bool
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with CHANNELSYNC_ prefix (e.g., CHANNELSYNC_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	// Set config file settings
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	// Enable environment variable override
	v.SetEnvPrefix("CHANNELSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Build config struct
	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			Channel:  v.GetString("redis.channel"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:       v.GetDuration("http.read_timeout"),
			WriteTimeout:      v.GetDuration("http.write_timeout"),
			IdleTimeout:       v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:    v.GetInt("http.max_header_bytes"),
			MaxBodySize:       v.GetInt64("http.max_body_size"),
			RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests: v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("http.rate_limit_window"),
			TrustedProxies:    v.GetStringSlice("http.trusted_proxies"),
		},
		Sync: SyncConfig{
			SchedulerEnabled:       v.GetBool("sync.scheduler_enabled"),
			Interval:               v.GetDuration("sync.interval"),
			Workers:                v.GetInt("sync.workers"),
			PassTimeout:            v.GetDuration("sync.pass_timeout"),
			ItemTimeout:            v.GetDuration("sync.item_timeout"),
			StalenessThreshold:     v.GetDuration("sync.staleness_threshold"),
			QuantityNoiseThreshold: v.GetInt64("sync.quantity_noise_threshold"),
			PriceNoiseThreshold:    v.GetFloat64("sync.price_noise_threshold"),
			BaseCurrency:           v.GetString("sync.base_currency"),
			TargetCurrency:         v.GetString("sync.target_currency"),
			WebhookRetention:       v.GetDuration("sync.webhook_retention"),
		},
		Naver: NaverConfig{
			BaseURL:       v.GetString("naver.base_url"),
			ClientID:      v.GetString("naver.client_id"),
			ClientSecret:  v.GetString("naver.client_secret"),
			Timeout:       v.GetDuration("naver.timeout"),
			RatePerSecond: v.GetFloat64("naver.rate_per_second"),
			RateBurst:     v.GetInt("naver.rate_burst"),
			RateMaxWait:   v.GetDuration("naver.rate_max_wait"),
		},
		Shopify: ShopifyConfig{
			ShopDomain:    v.GetString("shopify.shop_domain"),
			AccessToken:   v.GetString("shopify.access_token"),
			APIVersion:    v.GetString("shopify.api_version"),
			LocationID:    v.GetString("shopify.location_id"),
			Timeout:       v.GetDuration("shopify.timeout"),
			RatePerSecond: v.GetFloat64("shopify.rate_per_second"),
			RateBurst:     v.GetInt("shopify.rate_burst"),
			RateMaxWait:   v.GetDuration("shopify.rate_max_wait"),
		},
		Webhook: WebhookConfig{
			NaverSecret:   v.GetString("webhook.naver_secret"),
			ShopifySecret: v.GetString("webhook.shopify_secret"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			ServiceName:       v.GetString("telemetry.service_name"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			ExportInterval:    v.GetDuration("telemetry.export_interval"),
			Insecure:          v.GetBool("telemetry.insecure"),
		},
	}

	// Apply defaults for empty values
	applyDefaults(cfg)

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "channelsync-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "channelsync"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Redis.Channel == "" {
		cfg.Redis.Channel = "channelsync:actions"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20 // 1MB
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 100
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	if cfg.Sync.Interval == 0 {
		cfg.Sync.Interval = 15 * time.Minute
	}
	if cfg.Sync.Workers == 0 {
		cfg.Sync.Workers = 4
	}
	if cfg.Sync.PassTimeout == 0 {
		cfg.Sync.PassTimeout = 10 * time.Minute
	}
	if cfg.Sync.ItemTimeout == 0 {
		cfg.Sync.ItemTimeout = 30 * time.Second
	}
	if cfg.Sync.StalenessThreshold == 0 {
		cfg.Sync.StalenessThreshold = 10 * time.Minute
	}
	if cfg.Sync.PriceNoiseThreshold == 0 {
		cfg.Sync.PriceNoiseThreshold = 0.01
	}
	if cfg.Sync.BaseCurrency == "" {
		cfg.Sync.BaseCurrency = "KRW"
	}
	if cfg.Sync.TargetCurrency == "" {
		cfg.Sync.TargetCurrency = "USD"
	}
	if cfg.Sync.WebhookRetention == 0 {
		cfg.Sync.WebhookRetention = 30 * 24 * time.Hour
	}
	if cfg.Naver.BaseURL == "" {
		cfg.Naver.BaseURL = "https://api.commerce.naver.com"
	}
	if cfg.Naver.Timeout == 0 {
		cfg.Naver.Timeout = 10 * time.Second
	}
	if cfg.Naver.RatePerSecond == 0 {
		cfg.Naver.RatePerSecond = 2
	}
	if cfg.Naver.RateBurst == 0 {
		cfg.Naver.RateBurst = 4
	}
	if cfg.Naver.RateMaxWait == 0 {
		cfg.Naver.RateMaxWait = 5 * time.Second
	}
	if cfg.Shopify.APIVersion == "" {
		cfg.Shopify.APIVersion = "2024-10"
	}
	if cfg.Shopify.Timeout == 0 {
		cfg.Shopify.Timeout = 10 * time.Second
	}
	if cfg.Shopify.RatePerSecond == 0 {
		cfg.Shopify.RatePerSecond = 2
	}
	if cfg.Shopify.RateBurst == 0 {
		cfg.Shopify.RateBurst = 4
	}
	if cfg.Shopify.RateMaxWait == 0 {
		cfg.Shopify.RateMaxWait = 5 * time.Second
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "channelsync-backend"
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.ExportInterval == 0 {
		cfg.Telemetry.ExportInterval = 60 * time.Second
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	// Validate connection pool settings
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	// The pass interval floor protects both platforms' API quotas.
	if c.Sync.Interval < 5*time.Minute {
		return fmt.Errorf("sync.interval must be at least 5m, got %s", c.Sync.Interval)
	}
	if c.Sync.Workers < 1 || c.Sync.Workers > 16 {
		return fmt.Errorf("sync.workers must be between 1 and 16, got %d", c.Sync.Workers)
	}
	if c.Sync.QuantityNoiseThreshold < 0 {
		return fmt.Errorf("sync.quantity_noise_threshold cannot be negative")
	}
	if c.Sync.PriceNoiseThreshold < 0 {
		return fmt.Errorf("sync.price_noise_threshold cannot be negative")
	}
	if c.Sync.BaseCurrency == c.Sync.TargetCurrency {
		return fmt.Errorf("sync.base_currency and sync.target_currency must differ")
	}

	// Production-specific validations
	if c.App.Env == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		if c.Naver.ClientID == "" || c.Naver.ClientSecret == "" {
			return fmt.Errorf("naver.client_id and naver.client_secret are required in production")
		}
		if c.Shopify.ShopDomain == "" || c.Shopify.AccessToken == "" {
			return fmt.Errorf("shopify.shop_domain and shopify.access_token are required in production")
		}
		if c.Webhook.NaverSecret == "" || c.Webhook.ShopifySecret == "" {
			return fmt.Errorf("webhook secrets are required in production")
		}
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr returns the Redis host:port address
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
