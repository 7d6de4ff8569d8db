package config

import (
	"errors"
	"fmt"
	"net"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/spf13/viper"
)

// Supported database drivers.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Connection acquisition modes.
const (
	ConnModePooled     = "pooled"
	ConnModePerRequest = "per_request"
)

// Config holds all configuration for the application
type Config struct {
	DB        DatabaseConfig
	App       AppConfig
	Logger    LoggerConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
}

// DatabaseConfig holds configuration for the database
type DatabaseConfig struct {
	Driver                 string `mapstructure:"DB_DRIVER"`
	Host                   string `mapstructure:"MYSQL_HOST"`
	Port                   string `mapstructure:"MYSQL_PORT"`
	User                   string `mapstructure:"MYSQL_USER"`
	Password               string `mapstructure:"MYSQL_PASSWORD"`
	Name                   string `mapstructure:"MYSQL_DATABASE"`
	SSLMode                string `mapstructure:"DB_SSLMODE"`
	ConnMode               string `mapstructure:"DB_CONN_MODE"`
	MaxOpenConns           int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	MaxIdleConns           int    `mapstructure:"DB_MAX_IDLE_CONNS"`
	ConnMaxLifetimeSeconds int    `mapstructure:"DB_CONN_MAX_LIFETIME_SECONDS"`
	ConnMaxIdleTimeSeconds int    `mapstructure:"DB_CONN_MAX_IDLE_TIME_SECONDS"`
	PingTimeoutSeconds     int    `mapstructure:"DB_PING_TIMEOUT_SECONDS"`
}

// AppConfig holds configuration for the application servers
type AppConfig struct {
	Env                    string `mapstructure:"APP_ENV"`
	HTTPPort               string `mapstructure:"HTTP_PORT"`
	GRPCPort               string `mapstructure:"GRPC_PORT"`
	GRPCHealthEnabled      bool   `mapstructure:"GRPC_HEALTH_ENABLED"`
	ShutdownTimeoutSeconds int    `mapstructure:"SHUTDOWN_TIMEOUT_SECONDS"`
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

// RedisConfig holds configuration for the Redis client backing the rate limiter
type RedisConfig struct {
	Host     string `mapstructure:"REDIS_HOST"`
	Port     string `mapstructure:"REDIS_PORT"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`
	PoolSize int    `mapstructure:"REDIS_POOL_SIZE"`
}

// RateLimitConfig holds configuration for the HTTP rate limiter
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"RATE_LIMIT_ENABLED"`
	RequestsPerSecond float64 `mapstructure:"RATE_LIMIT_REQUESTS_PER_SECOND"`
	WindowSeconds     int     `mapstructure:"RATE_LIMIT_WINDOW_SECONDS"`
}

// LoadConfig reads configuration from path/app.env and the environment.
// Environment variables win over the file; a missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config

	config.DB.Driver = v.GetString("DB_DRIVER")
	config.DB.Host = v.GetString("MYSQL_HOST")
	config.DB.Port = v.GetString("MYSQL_PORT")
	config.DB.User = v.GetString("MYSQL_USER")
	config.DB.Password = v.GetString("MYSQL_PASSWORD")
	config.DB.Name = v.GetString("MYSQL_DATABASE")
	config.DB.SSLMode = v.GetString("DB_SSLMODE")
	config.DB.ConnMode = v.GetString("DB_CONN_MODE")
	config.DB.MaxOpenConns = v.GetInt("DB_MAX_OPEN_CONNS")
	config.DB.MaxIdleConns = v.GetInt("DB_MAX_IDLE_CONNS")
	config.DB.ConnMaxLifetimeSeconds = v.GetInt("DB_CONN_MAX_LIFETIME_SECONDS")
	config.DB.ConnMaxIdleTimeSeconds = v.GetInt("DB_CONN_MAX_IDLE_TIME_SECONDS")
	config.DB.PingTimeoutSeconds = v.GetInt("DB_PING_TIMEOUT_SECONDS")

	config.App.Env = v.GetString("APP_ENV")
	config.App.HTTPPort = v.GetString("HTTP_PORT")
	config.App.GRPCPort = v.GetString("GRPC_PORT")
	config.App.GRPCHealthEnabled = v.GetBool("GRPC_HEALTH_ENABLED")
	config.App.ShutdownTimeoutSeconds = v.GetInt("SHUTDOWN_TIMEOUT_SECONDS")

	config.Logger.Level = v.GetString("LOG_LEVEL")
	config.Logger.Format = v.GetString("LOG_FORMAT")
	config.Logger.OutputPath = v.GetString("LOG_OUTPUT_PATH")
	config.Logger.SlowQuerySeconds = v.GetFloat64("LOG_SLOW_QUERY_SECONDS")
	config.Logger.EnableSampling = v.GetBool("LOG_ENABLE_SAMPLING")
	config.Logger.ServiceName = v.GetString("SERVICE_NAME")
	config.Logger.ServiceVersion = v.GetString("SERVICE_VERSION")

	config.Redis.Host = v.GetString("REDIS_HOST")
	config.Redis.Port = v.GetString("REDIS_PORT")
	config.Redis.Password = v.GetString("REDIS_PASSWORD")
	config.Redis.DB = v.GetInt("REDIS_DB")
	config.Redis.PoolSize = v.GetInt("REDIS_POOL_SIZE")

	config.RateLimit.Enabled = v.GetBool("RATE_LIMIT_ENABLED")
	config.RateLimit.RequestsPerSecond = v.GetFloat64("RATE_LIMIT_REQUESTS_PER_SECOND")
	config.RateLimit.WindowSeconds = v.GetInt("RATE_LIMIT_WINDOW_SECONDS")

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("HTTP_PORT", "3000")
	v.SetDefault("GRPC_PORT", "50051")
	v.SetDefault("GRPC_HEALTH_ENABLED", false)
	v.SetDefault("SHUTDOWN_TIMEOUT_SECONDS", 10)

	v.SetDefault("DB_DRIVER", DriverMySQL)
	v.SetDefault("MYSQL_HOST", "mysql")
	v.SetDefault("MYSQL_PORT", "3306")
	v.SetDefault("MYSQL_USER", "user")
	v.SetDefault("MYSQL_PASSWORD", "userpassword")
	v.SetDefault("MYSQL_DATABASE", "testdb")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_CONN_MODE", ConnModePooled)
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME_SECONDS", 300)
	v.SetDefault("DB_CONN_MAX_IDLE_TIME_SECONDS", 60)
	v.SetDefault("DB_PING_TIMEOUT_SECONDS", 5)

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
	v.SetDefault("SERVICE_NAME", "user-record-service")
	v.SetDefault("SERVICE_VERSION", "1.0.0")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_POOL_SIZE", 10)

	v.SetDefault("RATE_LIMIT_ENABLED", false)
	v.SetDefault("RATE_LIMIT_REQUESTS_PER_SECOND", 10)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)
}

// Validate checks the configuration before any dependency is created.
func (c *Config) Validate() error {
	var errs []error

	switch c.DB.Driver {
	case DriverMySQL, DriverPostgres, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver))
	}

	switch c.DB.ConnMode {
	case ConnModePooled, ConnModePerRequest:
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_CONN_MODE %q", c.DB.ConnMode))
	}

	if c.DB.Name == "" {
		errs = append(errs, errors.New("MYSQL_DATABASE must not be empty"))
	}
	if c.DB.MaxOpenConns <= 0 {
		errs = append(errs, errors.New("DB_MAX_OPEN_CONNS must be positive"))
	}
	if c.DB.PingTimeoutSeconds <= 0 {
		errs = append(errs, errors.New("DB_PING_TIMEOUT_SECONDS must be positive"))
	}
	if c.App.HTTPPort == "" {
		errs = append(errs, errors.New("HTTP_PORT must not be empty"))
	}
	if c.App.ShutdownTimeoutSeconds <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT_SECONDS must be positive"))
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.WindowSeconds <= 0) {
		errs = append(errs, errors.New("rate limit requires positive RATE_LIMIT_REQUESTS_PER_SECOND and RATE_LIMIT_WINDOW_SECONDS"))
	}

	return errors.Join(errs...)
}

// DSN returns the data source name for the configured driver.
// For sqlite the database name is the file path.
func (c *DatabaseConfig) DSN() string {
	switch c.Driver {
	case DriverPostgres:
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode)
	case DriverSQLite:
		return c.Name
	default:
		mc := mysqldriver.NewConfig()
		mc.User = c.User
		mc.Passwd = c.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(c.Host, c.Port)
		mc.DBName = c.Name
		mc.ParseTime = true
		// Report matched rows, not changed rows, so an update that rewrites
		// identical values is not mistaken for a missing record.
		mc.ClientFoundRows = true
		return mc.FormatDSN()
	}
}
