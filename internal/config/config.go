// Package config provides configuration for the application
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Supported database drivers
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Supported session backends
const (
	SessionBackendCookie = "cookie"
	SessionBackendRedis  = "redis"
)

// MinSessionSecretLength is the shortest SESSION_SECRET accepted
const MinSessionSecretLength = 32

// DefaultRoutePolicies protects the home page and private pages the same way the original site does
const DefaultRoutePolicies = "/=authenticated;/private-page=authenticated;/private-page-admin-editors=ADMIN|EDITOR;/private-page-admin=ADMIN"

// Config holds all configuration for the application
type Config struct {
	Database       DatabaseConfig
	Redis          RedisConfig
	Server         ServerConfig
	Logging        LoggingConfig
	CORS           CORSConfig
	Session        SessionConfig
	Auth           AuthConfig
	MigrationsPath string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port int
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string
}

// SessionConfig holds session transport settings
type SessionConfig struct {
	Secret  string
	Name    string
	MaxAge  time.Duration
	Secure  bool
	Backend string
}

// AuthConfig holds authentication settings
type AuthConfig struct {
	// BcryptCost is the work factor used for password hashing
	BcryptCost int
	// UnifiedFailureMessage hides whether the username or the password was wrong
	UnifiedFailureMessage bool
	// RoutePolicies is the raw route policy table, see package policy
	RoutePolicies string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{}

	// Database configuration
	dbDriver := strings.ToLower(os.Getenv("DB_DRIVER"))
	if dbDriver == "" {
		dbDriver = DriverMySQL // default driver
	}
	if dbDriver != DriverMySQL && dbDriver != DriverPostgres {
		return nil, fmt.Errorf("invalid DB_DRIVER: %q", dbDriver)
	}
	cfg.Database.Driver = dbDriver

	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		return nil, fmt.Errorf("DB_HOST is required")
	}
	cfg.Database.Host = dbHost

	dbPortStr := os.Getenv("DB_PORT")
	if dbPortStr == "" {
		return nil, fmt.Errorf("DB_PORT is required")
	}
	dbPort, err := strconv.Atoi(dbPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	cfg.Database.Port = dbPort

	dbUser := os.Getenv("DB_USER")
	if dbUser == "" {
		return nil, fmt.Errorf("DB_USER is required")
	}
	cfg.Database.User = dbUser

	dbPassword := os.Getenv("DB_PASSWORD")
	if dbPassword == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}
	cfg.Database.Password = dbPassword

	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		return nil, fmt.Errorf("DB_NAME is required")
	}
	cfg.Database.DBName = dbName

	// Server configuration
	serverPortStr := os.Getenv("SERVER_PORT")
	if serverPortStr == "" {
		serverPortStr = "8080" // default port
	}
	serverPort, err := strconv.Atoi(serverPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}
	cfg.Server.Port = serverPort

	// Logging configuration
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info" // default level
	}
	cfg.Logging.Level = logLevel

	// CORS configuration
	corsOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
	if corsOrigins == "" {
		// Default to allow all origins if not specified (for development)
		cfg.CORS.AllowedOrigins = []string{"*"}
	} else {
		// Parse comma-separated origins
		origins := strings.Split(corsOrigins, ",")
		cfg.CORS.AllowedOrigins = make([]string, 0, len(origins))
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				cfg.CORS.AllowedOrigins = append(cfg.CORS.AllowedOrigins, origin)
			}
		}
		// If no valid origins found, default to allow all
		if len(cfg.CORS.AllowedOrigins) == 0 {
			cfg.CORS.AllowedOrigins = []string{"*"}
		}
	}

	// Session configuration
	sessionSecret := os.Getenv("SESSION_SECRET")
	if sessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is required")
	}
	if len(sessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("SESSION_SECRET must be at least %d bytes", MinSessionSecretLength)
	}
	cfg.Session.Secret = sessionSecret

	cfg.Session.Name = os.Getenv("SESSION_NAME")
	if cfg.Session.Name == "" {
		cfg.Session.Name = "session_id"
	}

	// Session expiry (default: 24 hours)
	maxAgeStr := os.Getenv("SESSION_MAX_AGE")
	if maxAgeStr == "" {
		maxAgeStr = "24h"
	}
	maxAge, err := time.ParseDuration(maxAgeStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_MAX_AGE: %w", err)
	}
	if maxAge <= 0 {
		return nil, fmt.Errorf("invalid SESSION_MAX_AGE: must be positive")
	}
	cfg.Session.MaxAge = maxAge

	cfg.Session.Secure, err = parseBool("SESSION_SECURE", false)
	if err != nil {
		return nil, err
	}

	sessionBackend := strings.ToLower(os.Getenv("SESSION_BACKEND"))
	if sessionBackend == "" {
		sessionBackend = SessionBackendCookie
	}
	if sessionBackend != SessionBackendCookie && sessionBackend != SessionBackendRedis {
		return nil, fmt.Errorf("invalid SESSION_BACKEND: %q", sessionBackend)
	}
	cfg.Session.Backend = sessionBackend

	// Redis configuration (optional, for the redis session backend)
	redisHost := os.Getenv("REDIS_HOST")
	if redisHost == "" {
		redisHost = "localhost" // default
	}
	cfg.Redis.Host = redisHost

	redisPortStr := os.Getenv("REDIS_PORT")
	if redisPortStr == "" {
		redisPortStr = "6379" // default
	}
	redisPort, err := strconv.Atoi(redisPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_PORT: %w", err)
	}
	cfg.Redis.Port = redisPort

	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD") // optional

	redisDBStr := os.Getenv("REDIS_DB")
	if redisDBStr == "" {
		redisDBStr = "0" // default
	}
	redisDB, err := strconv.Atoi(redisDBStr)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	cfg.Redis.DB = redisDB

	// Auth configuration
	costStr := os.Getenv("BCRYPT_COST")
	if costStr == "" {
		cfg.Auth.BcryptCost = bcrypt.DefaultCost
	} else {
		cost, err := strconv.Atoi(costStr)
		if err != nil {
			return nil, fmt.Errorf("invalid BCRYPT_COST: %w", err)
		}
		if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
			return nil, fmt.Errorf("invalid BCRYPT_COST: must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
		}
		cfg.Auth.BcryptCost = cost
	}

	cfg.Auth.UnifiedFailureMessage, err = parseBool("AUTH_UNIFIED_FAILURE_MESSAGE", true)
	if err != nil {
		return nil, err
	}

	cfg.Auth.RoutePolicies = os.Getenv("ROUTE_POLICIES")
	if cfg.Auth.RoutePolicies == "" {
		cfg.Auth.RoutePolicies = DefaultRoutePolicies
	}

	cfg.MigrationsPath = os.Getenv("MIGRATIONS_PATH")
	if cfg.MigrationsPath == "" {
		cfg.MigrationsPath = "migrations"
	}

	return cfg, nil
}

// parseBool reads a boolean environment variable, falling back to def when unset
func parseBool(key string, def bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

// DSN returns the database connection string for the configured driver
func (c *Config) DSN() string {
	if c.Database.Host == "" {
		return ""
	}
	addr := net.JoinHostPort(c.Database.Host, strconv.Itoa(c.Database.Port))
	if c.Database.Driver == DriverPostgres {
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(c.Database.User, c.Database.Password),
			Host:     addr,
			Path:     "/" + c.Database.DBName,
			RawQuery: "sslmode=disable",
		}
		return u.String()
	}

	mc := mysql.NewConfig()
	mc.User = c.Database.User
	mc.Passwd = c.Database.Password
	mc.Net = "tcp"
	mc.Addr = addr
	mc.DBName = c.Database.DBName
	mc.ParseTime = true
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

// MigrationSource returns the golang-migrate source URL for the configured driver
func (c *Config) MigrationSource() string {
	return fmt.Sprintf("file://%s/%s", c.MigrationsPath, c.Database.Driver)
}

// RedisAddr returns the Redis address in host:port form
func (c *Config) RedisAddr() string {
	return net.JoinHostPort(c.Redis.Host, strconv.Itoa(c.Redis.Port))
}
