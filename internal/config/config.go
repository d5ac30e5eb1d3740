package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/netip"
	"strings"

	"github.com/spf13/viper"
)

// Supported store drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all configuration for the application
type Config struct {
	App       AppConfig
	DB        DatabaseConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Auth      AuthConfig
	Metrics   MetricsConfig
	Logger    LoggerConfig
}

// AppConfig holds configuration for the application server
type AppConfig struct {
	Env                    string   `mapstructure:"APP_ENV"`
	HTTPPort               string   `mapstructure:"HTTP_PORT"`
	ShutdownTimeoutSeconds int      `mapstructure:"APP_SHUTDOWN_TIMEOUT_SECONDS"`
	CORSAllowedOrigins     []string `mapstructure:"CORS_ALLOWED_ORIGINS"`
	// TrustedProxies lists the IPs or CIDRs whose X-Forwarded-For is honoured
	// when resolving the client IP. Empty trusts no proxy.
	TrustedProxies []string `mapstructure:"TRUSTED_PROXIES"`
}

// DatabaseConfig holds configuration for the document store
type DatabaseConfig struct {
	Driver                  string `mapstructure:"DB_DRIVER"`
	Host                    string `mapstructure:"DB_HOST"`
	Port                    string `mapstructure:"DB_PORT"`
	User                    string `mapstructure:"DB_USER"`
	Password                string `mapstructure:"DB_PASSWORD"`
	Name                    string `mapstructure:"DB_NAME"`
	SSLMode                 string `mapstructure:"DB_SSLMODE"`
	SQLitePath              string `mapstructure:"DB_SQLITE_PATH"`
	MaxOpenConns            int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	MaxIdleConns            int    `mapstructure:"DB_MAX_IDLE_CONNS"`
	ConnMaxLifetime         int    `mapstructure:"DB_CONN_MAX_LIFETIME"`
	ConnMaxIdleTime         int    `mapstructure:"DB_CONN_MAX_IDLE_TIME"`
	OperationTimeoutSeconds int    `mapstructure:"DB_OPERATION_TIMEOUT_SECONDS"`
	AutoMigrate             bool   `mapstructure:"DB_AUTO_MIGRATE"`
}

// RedisConfig holds configuration for the optional Redis cache
type RedisConfig struct {
	Enabled     bool   `mapstructure:"REDIS_ENABLED"`
	Host        string `mapstructure:"REDIS_HOST"`
	Port        string `mapstructure:"REDIS_PORT"`
	Password    string `mapstructure:"REDIS_PASSWORD"`
	DB          int    `mapstructure:"REDIS_DB"`
	MaxRetries  int    `mapstructure:"REDIS_MAX_RETRIES"`
	PoolSize    int    `mapstructure:"REDIS_POOL_SIZE"`
	MinIdleConn int    `mapstructure:"REDIS_MIN_IDLE_CONN"`
	CacheTTL    int    `mapstructure:"REDIS_CACHE_TTL"`
}

// RateLimitConfig holds configuration for request rate limiting
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"RATE_LIMIT_ENABLED"`
	RequestsPerSecond float64 `mapstructure:"RATE_LIMIT_REQUESTS_PER_SECOND"`
	BurstCapacity     int     `mapstructure:"RATE_LIMIT_BURST_CAPACITY"`
}

// AuthConfig holds configuration for bearer-token verification
type AuthConfig struct {
	// ServiceKey is the base64-encoded service-account JSON
	ServiceKey         string `mapstructure:"FIREBASE_SERVICE_KEY"`
	CertsURL           string `mapstructure:"AUTH_CERTS_URL"`
	ClockSkewSeconds   int    `mapstructure:"AUTH_CLOCK_SKEW_SECONDS"`
	ProtectAllWrites   bool   `mapstructure:"AUTH_PROTECT_ALL_WRITES"`
	CertsTimeoutSecond int    `mapstructure:"AUTH_CERTS_TIMEOUT_SECONDS"`
}

// MetricsConfig holds configuration for the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `mapstructure:"METRICS_ENABLED"`
	Path    string `mapstructure:"METRICS_PATH"`
}

// LoggerConfig holds configuration for the logger
type LoggerConfig struct {
	Level            string  `mapstructure:"LOG_LEVEL"`
	Format           string  `mapstructure:"LOG_FORMAT"`
	OutputPath       string  `mapstructure:"LOG_OUTPUT_PATH"`
	SlowQuerySeconds float64 `mapstructure:"LOG_SLOW_QUERY_SECONDS"`
	EnableSampling   bool    `mapstructure:"LOG_ENABLE_SAMPLING"`
	ServiceName      string  `mapstructure:"SERVICE_NAME"`
	ServiceVersion   string  `mapstructure:"SERVICE_VERSION"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	v.AddConfigPath(path)
	v.SetConfigName("app") // Look for app.env
	v.SetConfigType("env")

	v.AutomaticEnv() // Read from environment variables

	// The store secret historically lived in SECRET_YKE
	if err := v.BindEnv("DB_PASSWORD", "DB_PASSWORD", "SECRET_YKE"); err != nil {
		return nil, fmt.Errorf("failed to bind DB_PASSWORD: %w", err)
	}

	// Try to read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is okay if we have env vars
	}

	setDefaults(v)

	var config Config

	config.App.Env = v.GetString("APP_ENV")
	config.App.HTTPPort = v.GetString("HTTP_PORT")
	config.App.ShutdownTimeoutSeconds = v.GetInt("APP_SHUTDOWN_TIMEOUT_SECONDS")
	config.App.CORSAllowedOrigins = splitList(v.GetString("CORS_ALLOWED_ORIGINS"))
	config.App.TrustedProxies = splitList(v.GetString("TRUSTED_PROXIES"))

	config.DB.Driver = strings.ToLower(v.GetString("DB_DRIVER"))
	config.DB.Host = v.GetString("DB_HOST")
	config.DB.Port = v.GetString("DB_PORT")
	config.DB.User = v.GetString("DB_USER")
	config.DB.Password = v.GetString("DB_PASSWORD")
	config.DB.Name = v.GetString("DB_NAME")
	config.DB.SSLMode = v.GetString("DB_SSLMODE")
	config.DB.SQLitePath = v.GetString("DB_SQLITE_PATH")
	config.DB.MaxOpenConns = v.GetInt("DB_MAX_OPEN_CONNS")
	config.DB.MaxIdleConns = v.GetInt("DB_MAX_IDLE_CONNS")
	config.DB.ConnMaxLifetime = v.GetInt("DB_CONN_MAX_LIFETIME")
	config.DB.ConnMaxIdleTime = v.GetInt("DB_CONN_MAX_IDLE_TIME")
	config.DB.OperationTimeoutSeconds = v.GetInt("DB_OPERATION_TIMEOUT_SECONDS")
	config.DB.AutoMigrate = v.GetBool("DB_AUTO_MIGRATE")

	config.Redis.Enabled = v.GetBool("REDIS_ENABLED")
	config.Redis.Host = v.GetString("REDIS_HOST")
	config.Redis.Port = v.GetString("REDIS_PORT")
	config.Redis.Password = v.GetString("REDIS_PASSWORD")
	config.Redis.DB = v.GetInt("REDIS_DB")
	config.Redis.MaxRetries = v.GetInt("REDIS_MAX_RETRIES")
	config.Redis.PoolSize = v.GetInt("REDIS_POOL_SIZE")
	config.Redis.MinIdleConn = v.GetInt("REDIS_MIN_IDLE_CONN")
	config.Redis.CacheTTL = v.GetInt("REDIS_CACHE_TTL")

	config.RateLimit.Enabled = v.GetBool("RATE_LIMIT_ENABLED")
	config.RateLimit.RequestsPerSecond = v.GetFloat64("RATE_LIMIT_REQUESTS_PER_SECOND")
	config.RateLimit.BurstCapacity = v.GetInt("RATE_LIMIT_BURST_CAPACITY")

	config.Auth.ServiceKey = v.GetString("FIREBASE_SERVICE_KEY")
	config.Auth.CertsURL = v.GetString("AUTH_CERTS_URL")
	config.Auth.ClockSkewSeconds = v.GetInt("AUTH_CLOCK_SKEW_SECONDS")
	config.Auth.ProtectAllWrites = v.GetBool("AUTH_PROTECT_ALL_WRITES")
	config.Auth.CertsTimeoutSecond = v.GetInt("AUTH_CERTS_TIMEOUT_SECONDS")

	config.Metrics.Enabled = v.GetBool("METRICS_ENABLED")
	config.Metrics.Path = v.GetString("METRICS_PATH")

	config.Logger.Level = v.GetString("LOG_LEVEL")
	config.Logger.Format = v.GetString("LOG_FORMAT")
	config.Logger.OutputPath = v.GetString("LOG_OUTPUT_PATH")
	config.Logger.SlowQuerySeconds = v.GetFloat64("LOG_SLOW_QUERY_SECONDS")
	config.Logger.EnableSampling = v.GetBool("LOG_ENABLE_SAMPLING")
	config.Logger.ServiceName = v.GetString("SERVICE_NAME")
	config.Logger.ServiceVersion = v.GetString("SERVICE_VERSION")

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("APP_SHUTDOWN_TIMEOUT_SECONDS", 10)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "smartdbuser")
	v.SetDefault("DB_NAME", "smartdbuser")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_SQLITE_PATH", "marketplace.db")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", 300)
	v.SetDefault("DB_CONN_MAX_IDLE_TIME", 60)
	v.SetDefault("DB_OPERATION_TIMEOUT_SECONDS", 5)
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_MAX_RETRIES", 3)
	v.SetDefault("REDIS_POOL_SIZE", 10)
	v.SetDefault("REDIS_MIN_IDLE_CONN", 2)
	v.SetDefault("REDIS_CACHE_TTL", 300)

	v.SetDefault("RATE_LIMIT_ENABLED", false)
	v.SetDefault("RATE_LIMIT_REQUESTS_PER_SECOND", 10.0)
	v.SetDefault("RATE_LIMIT_BURST_CAPACITY", 20)

	v.SetDefault("AUTH_CERTS_URL", "https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com")
	v.SetDefault("AUTH_CLOCK_SKEW_SECONDS", 60)
	v.SetDefault("AUTH_PROTECT_ALL_WRITES", false)
	v.SetDefault("AUTH_CERTS_TIMEOUT_SECONDS", 10)

	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("METRICS_PATH", "/metrics")

	// Logger defaults
	if v.GetString("APP_ENV") == "production" {
		v.SetDefault("LOG_LEVEL", "info")
		v.SetDefault("LOG_FORMAT", "json")
		v.SetDefault("LOG_ENABLE_SAMPLING", true)
	} else {
		v.SetDefault("LOG_LEVEL", "debug")
		v.SetDefault("LOG_FORMAT", "console")
		v.SetDefault("LOG_ENABLE_SAMPLING", false)
	}
	v.SetDefault("LOG_OUTPUT_PATH", "stdout")
	v.SetDefault("LOG_SLOW_QUERY_SECONDS", 0.2)
	v.SetDefault("SERVICE_NAME", "marketplace-service")
	v.SetDefault("SERVICE_VERSION", "1.0.0")
}

// Validate checks the configuration for values that would only fail later
// at connection or request time.
func (c *Config) Validate() error {
	var errs []error

	if c.App.HTTPPort == "" {
		errs = append(errs, errors.New("HTTP_PORT is required"))
	}
	if c.App.ShutdownTimeoutSeconds <= 0 {
		errs = append(errs, errors.New("APP_SHUTDOWN_TIMEOUT_SECONDS must be positive"))
	}
	for _, proxy := range c.App.TrustedProxies {
		if !validProxy(proxy) {
			errs = append(errs, fmt.Errorf("TRUSTED_PROXIES entry %q is not an IP or CIDR", proxy))
		}
	}

	switch c.DB.Driver {
	case DriverPostgres:
		if c.DB.Host == "" || c.DB.Name == "" {
			errs = append(errs, errors.New("DB_HOST and DB_NAME are required for postgres"))
		}
	case DriverSQLite:
		if c.DB.SQLitePath == "" {
			errs = append(errs, errors.New("DB_SQLITE_PATH is required for sqlite"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver))
	}
	if c.DB.OperationTimeoutSeconds <= 0 {
		errs = append(errs, errors.New("DB_OPERATION_TIMEOUT_SECONDS must be positive"))
	}

	if c.Auth.ServiceKey == "" {
		errs = append(errs, errors.New("FIREBASE_SERVICE_KEY is required"))
	} else if _, err := base64.StdEncoding.DecodeString(c.Auth.ServiceKey); err != nil {
		errs = append(errs, fmt.Errorf("FIREBASE_SERVICE_KEY is not valid base64: %w", err))
	}
	if c.Auth.CertsURL == "" {
		errs = append(errs, errors.New("AUTH_CERTS_URL is required"))
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.RequestsPerSecond <= 0 {
			errs = append(errs, errors.New("RATE_LIMIT_REQUESTS_PER_SECOND must be positive"))
		}
		if c.RateLimit.BurstCapacity <= 0 {
			errs = append(errs, errors.New("RATE_LIMIT_BURST_CAPACITY must be positive"))
		}
	}

	if c.Redis.Enabled && c.Redis.CacheTTL <= 0 {
		errs = append(errs, errors.New("REDIS_CACHE_TTL must be positive"))
	}

	return errors.Join(errs...)
}

// DSN returns the PostgreSQL Data Source Name
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode)
}

func validProxy(s string) bool {
	if strings.Contains(s, "/") {
		_, err := netip.ParsePrefix(s)
		return err == nil
	}
	_, err := netip.ParseAddr(s)
	return err == nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
