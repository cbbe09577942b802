// Package config provides application configuration management following SOLID principles.
//
// Values are resolved by viper in this order: built-in defaults, an optional YAML file,
// then environment variables named after the upper-cased keys (SERVER_PORT, JWT_SECRET, ...).
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Environment names accepted by Validate.
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Store backends.
const (
	StoreBackendPocketBase = "pocketbase"
	StoreBackendMemory     = "memory"
)

const developmentJWTSecret = "simple-easy-issues-development-jwt-secret-key-32chars-minimum-length-required"

// Config defines the application configuration interface.
// Following Interface Segregation Principle.
type Config interface {
	GetServerPort() string
	GetJWTSecret() string
	GetEnvironment() string
	GetLogLevel() string
	IsProduction() bool
}

// ServerConfig interface for server-specific configuration.
type ServerConfig interface {
	GetServerPort() string
	GetReadTimeout() time.Duration
	GetWriteTimeout() time.Duration
	GetIdleTimeout() time.Duration
	GetAllowedOrigins() []string
}

// StoreConfig interface for document store configuration.
type StoreConfig interface {
	GetStoreBackend() string
	GetStoreDataDir() string
	GetStoreOperationTimeout() time.Duration
}

// SecurityConfig interface for security-related configuration.
type SecurityConfig interface {
	GetJWTSecret() string
	GetJWTExpiration() time.Duration
	GetRefreshTokenExpiration() time.Duration
}

// RedisConfig interface for the optional Redis connection.
type RedisConfig interface {
	IsRedisEnabled() bool
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
}

// RateLimitConfig interface for request rate limiting.
type RateLimitConfig interface {
	IsRateLimitEnabled() bool
	GetRequestsPerMinute() int
	GetRateLimitCacheCapacity() int
}

// AppConfig implements all configuration interfaces.
type AppConfig struct {
	serverPort             string
	environment            string
	logLevel               string
	logFormat              string
	readTimeout            time.Duration
	writeTimeout           time.Duration
	idleTimeout            time.Duration
	allowedOrigins         []string
	jwtSecret              string
	jwtSecretDefaulted     bool
	jwtExpiration          time.Duration
	refreshTokenExpiration time.Duration
	storeBackend           string
	storeDataDir           string
	storeOperationTimeout  time.Duration
	redisEnabled           bool
	redisAddr              string
	redisPassword          string
	redisDB                int
	rateLimitEnabled       bool
	requestsPerMinute      int
	rateLimitCacheCapacity int
	configFile             string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server_port", "8080")
	v.SetDefault("environment", EnvDevelopment)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("read_timeout", "15s")
	v.SetDefault("write_timeout", "15s")
	v.SetDefault("idle_timeout", "60s")
	v.SetDefault("cors_allowed_origins", "*")
	v.SetDefault("jwt_expiration", "24h")
	v.SetDefault("refresh_token_expiration", "168h") // 7 days
	v.SetDefault("store_backend", StoreBackendPocketBase)
	v.SetDefault("store_data_dir", "pb_data")
	v.SetDefault("store_operation_timeout", "10s")
	v.SetDefault("redis_enabled", false)
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_db", 0)
	v.SetDefault("rate_limit_enabled", true)
	v.SetDefault("rate_limit_requests_per_minute", 120)
	v.SetDefault("rate_limit_cache_capacity", 10000)
}

// NewConfig creates a new configuration instance with default values
// and overrides from environment variables.
func NewConfig() *AppConfig {
	cfg, err := Load("")
	if err != nil {
		// Only reading a config file can fail, and no file was given.
		panic(err)
	}
	return cfg
}

// Load resolves the configuration from defaults, the YAML file at path (when not empty,
// otherwise CONFIG_FILE) and the environment.
func Load(path string) (*AppConfig, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = v.GetString("config_file")
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	return fromViper(v, path), nil
}

func fromViper(v *viper.Viper, path string) *AppConfig {
	cfg := &AppConfig{
		serverPort:             v.GetString("server_port"),
		environment:            strings.ToLower(v.GetString("environment")),
		logLevel:               strings.ToLower(v.GetString("log_level")),
		logFormat:              strings.ToLower(v.GetString("log_format")),
		readTimeout:            v.GetDuration("read_timeout"),
		writeTimeout:           v.GetDuration("write_timeout"),
		idleTimeout:            v.GetDuration("idle_timeout"),
		allowedOrigins:         splitList(v.GetString("cors_allowed_origins")),
		jwtSecret:              v.GetString("jwt_secret"),
		jwtExpiration:          v.GetDuration("jwt_expiration"),
		refreshTokenExpiration: v.GetDuration("refresh_token_expiration"),
		storeBackend:           strings.ToLower(v.GetString("store_backend")),
		storeDataDir:           v.GetString("store_data_dir"),
		storeOperationTimeout:  v.GetDuration("store_operation_timeout"),
		redisEnabled:           v.GetBool("redis_enabled"),
		redisAddr:              v.GetString("redis_addr"),
		redisPassword:          v.GetString("redis_password"),
		redisDB:                v.GetInt("redis_db"),
		rateLimitEnabled:       v.GetBool("rate_limit_enabled"),
		requestsPerMinute:      v.GetInt("rate_limit_requests_per_minute"),
		rateLimitCacheCapacity: v.GetInt("rate_limit_cache_capacity"),
		configFile:             path,
	}

	if cfg.jwtSecret == "" {
		cfg.jwtSecret = developmentJWTSecret
		cfg.jwtSecretDefaulted = true
	}
	return cfg
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// GetServerPort returns the server port configuration.
func (c *AppConfig) GetServerPort() string {
	return c.serverPort
}

// GetJWTSecret returns the JWT secret configuration.
func (c *AppConfig) GetJWTSecret() string {
	return c.jwtSecret
}

// GetEnvironment returns the application environment configuration.
func (c *AppConfig) GetEnvironment() string {
	return c.environment
}

// GetLogLevel returns the log level configuration.
func (c *AppConfig) GetLogLevel() string {
	return c.logLevel
}

// GetLogFormat returns "json" or "text".
func (c *AppConfig) GetLogFormat() string {
	return c.logFormat
}

// IsProduction returns true if the application is running in production environment.
func (c *AppConfig) IsProduction() bool {
	return c.environment == EnvProduction
}

// GetReadTimeout returns the server read timeout configuration.
func (c *AppConfig) GetReadTimeout() time.Duration {
	return c.readTimeout
}

// GetWriteTimeout returns the server write timeout configuration.
func (c *AppConfig) GetWriteTimeout() time.Duration {
	return c.writeTimeout
}

// GetIdleTimeout returns the server idle timeout configuration.
func (c *AppConfig) GetIdleTimeout() time.Duration {
	return c.idleTimeout
}

// GetAllowedOrigins returns the CORS origins; "*" allows any origin.
func (c *AppConfig) GetAllowedOrigins() []string {
	return c.allowedOrigins
}

// GetJWTExpiration returns the JWT token expiration time configuration.
func (c *AppConfig) GetJWTExpiration() time.Duration {
	return c.jwtExpiration
}

// GetRefreshTokenExpiration returns the refresh token expiration time configuration.
func (c *AppConfig) GetRefreshTokenExpiration() time.Duration {
	return c.refreshTokenExpiration
}

// GetStoreBackend returns the document store backend name.
func (c *AppConfig) GetStoreBackend() string {
	return c.storeBackend
}

// GetStoreDataDir returns the PocketBase data directory.
func (c *AppConfig) GetStoreDataDir() string {
	return c.storeDataDir
}

// GetStoreOperationTimeout returns the deadline applied to every store call.
func (c *AppConfig) GetStoreOperationTimeout() time.Duration {
	return c.storeOperationTimeout
}

// IsRedisEnabled reports whether Redis backs token revocation and rate limiting.
func (c *AppConfig) IsRedisEnabled() bool {
	return c.redisEnabled
}

// GetRedisAddr returns the Redis address.
func (c *AppConfig) GetRedisAddr() string {
	return c.redisAddr
}

// GetRedisPassword returns the Redis password.
func (c *AppConfig) GetRedisPassword() string {
	return c.redisPassword
}

// GetRedisDB returns the Redis database number.
func (c *AppConfig) GetRedisDB() int {
	return c.redisDB
}

// IsRateLimitEnabled reports whether the rate limiting middleware is installed.
func (c *AppConfig) IsRateLimitEnabled() bool {
	return c.rateLimitEnabled
}

// GetRequestsPerMinute returns the per-client request budget.
func (c *AppConfig) GetRequestsPerMinute() int {
	return c.requestsPerMinute
}

// GetRateLimitCacheCapacity returns the number of clients tracked in memory.
func (c *AppConfig) GetRateLimitCacheCapacity() int {
	return c.rateLimitCacheCapacity
}

// GetConfigFile returns the YAML file the configuration was read from, if any.
func (c *AppConfig) GetConfigFile() string {
	return c.configFile
}

// Validate checks if the configuration is valid.
func (c *AppConfig) Validate() error {
	if c.serverPort == "" {
		return fmt.Errorf("server port cannot be empty")
	}

	if c.jwtSecret == "" {
		return fmt.Errorf("JWT secret cannot be empty")
	}

	if len(c.jwtSecret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters long")
	}

	if c.environment != EnvDevelopment && c.environment != EnvStaging && c.environment != EnvProduction {
		return fmt.Errorf("environment must be one of: development, staging, production")
	}

	if c.IsProduction() && (c.jwtSecretDefaulted || isDefaultSecret(c.jwtSecret)) {
		return fmt.Errorf("JWT_SECRET must be set in production; default JWT secrets are rejected")
	}

	switch c.storeBackend {
	case StoreBackendPocketBase:
		if c.storeDataDir == "" {
			return fmt.Errorf("store data directory cannot be empty")
		}
	case StoreBackendMemory:
	default:
		return fmt.Errorf("store backend must be one of: pocketbase, memory")
	}

	if c.storeOperationTimeout <= 0 {
		return fmt.Errorf("store operation timeout must be positive")
	}

	if c.redisEnabled && c.redisAddr == "" {
		return fmt.Errorf("redis address cannot be empty when redis is enabled")
	}

	if c.rateLimitEnabled && c.requestsPerMinute <= 0 {
		return fmt.Errorf("rate limit must allow at least one request per minute")
	}

	return nil
}

// Describe returns the effective configuration with secrets masked.
func (c *AppConfig) Describe() map[string]interface{} {
	return map[string]interface{}{
		"server_port":                    c.serverPort,
		"environment":                    c.environment,
		"log_level":                      c.logLevel,
		"log_format":                     c.logFormat,
		"read_timeout":                   c.readTimeout.String(),
		"write_timeout":                  c.writeTimeout.String(),
		"idle_timeout":                   c.idleTimeout.String(),
		"cors_allowed_origins":           strings.Join(c.allowedOrigins, ","),
		"jwt_secret":                     mask(c.jwtSecret),
		"jwt_expiration":                 c.jwtExpiration.String(),
		"refresh_token_expiration":       c.refreshTokenExpiration.String(),
		"store_backend":                  c.storeBackend,
		"store_data_dir":                 c.storeDataDir,
		"store_operation_timeout":        c.storeOperationTimeout.String(),
		"redis_enabled":                  c.redisEnabled,
		"redis_addr":                     c.redisAddr,
		"redis_password":                 mask(c.redisPassword),
		"redis_db":                       c.redisDB,
		"rate_limit_enabled":             c.rateLimitEnabled,
		"rate_limit_requests_per_minute": c.requestsPerMinute,
		"rate_limit_cache_capacity":      c.rateLimitCacheCapacity,
	}
}

var placeholderSecretFragments = []string{
	"development-jwt-secret",
	"your-super-secret",
	"super-secret",
	"changeme",
	"placeholder",
	"example-",
	"sample-",
}

// isDefaultSecret reports whether secret looks like a shipped or documented placeholder.
func isDefaultSecret(secret string) bool {
	if secret == "" {
		return false
	}
	lower := strings.ToLower(secret)
	if lower == "secret" || lower == "jwt-secret" {
		return true
	}
	for _, fragment := range placeholderSecretFragments {
		if strings.Contains(lower, fragment) {
			return true
		}
	}
	return false
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "********"
}
