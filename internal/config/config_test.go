package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.GetServerPort() != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.GetServerPort())
	}
	if cfg.GetStoreBackend() != StoreBackendPocketBase {
		t.Errorf("Expected pocketbase backend, got %s", cfg.GetStoreBackend())
	}
	if cfg.GetStoreOperationTimeout() != 10*time.Second {
		t.Errorf("Expected 10s store timeout, got %s", cfg.GetStoreOperationTimeout())
	}
	if cfg.GetRefreshTokenExpiration() != 168*time.Hour {
		t.Errorf("Expected 7 day refresh expiration, got %s", cfg.GetRefreshTokenExpiration())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected defaults to validate in development, got %v", err)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("STORE_OPERATION_TIMEOUT", "250ms")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("REDIS_ENABLED", "true")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.GetServerPort() != "9090" {
		t.Errorf("Expected port 9090, got %s", cfg.GetServerPort())
	}
	if cfg.GetStoreBackend() != StoreBackendMemory {
		t.Errorf("Expected memory backend, got %s", cfg.GetStoreBackend())
	}
	if cfg.GetStoreOperationTimeout() != 250*time.Millisecond {
		t.Errorf("Expected 250ms, got %s", cfg.GetStoreOperationTimeout())
	}
	origins := cfg.GetAllowedOrigins()
	if len(origins) != 2 || origins[1] != "https://b.example" {
		t.Errorf("Unexpected origins: %v", origins)
	}
	if !cfg.IsRedisEnabled() {
		t.Error("Expected redis to be enabled")
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "issues.yaml")
	content := "server_port: \"7070\"\nlog_format: json\nrate_limit_requests_per_minute: 30\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.GetServerPort() != "7070" {
		t.Errorf("Expected port 7070, got %s", cfg.GetServerPort())
	}
	if cfg.GetLogFormat() != "json" {
		t.Errorf("Expected json log format, got %s", cfg.GetLogFormat())
	}
	if cfg.GetRequestsPerMinute() != 30 {
		t.Errorf("Expected 30 requests per minute, got %d", cfg.GetRequestsPerMinute())
	}
	if cfg.GetConfigFile() != path {
		t.Errorf("Expected config file %s, got %s", path, cfg.GetConfigFile())
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing config file")
	}
}

func TestIsDefaultSecret(t *testing.T) {
	tests := []struct {
		secret   string
		expected bool
	}{
		{developmentJWTSecret, true},
		{"secret", true},
		{"jwt-secret", true},
		{"your-super-secret-jwt-key-with-at-least-32-characters", true},
		{"changeme123", true},
		{"example-key", true},
		{"random-secure-secret-that-is-not-default", false},
		{"", false},
		{"actual-secure-random-key-with-32-chars-or-more", false},
	}

	for _, test := range tests {
		result := isDefaultSecret(test.secret)
		if result != test.expected {
			t.Errorf("isDefaultSecret(%q) = %v, expected %v", test.secret, result, test.expected)
		}
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *AppConfig {
		return &AppConfig{
			serverPort:            "8080",
			jwtSecret:             "actual-secure-random-key-with-32-chars-or-more",
			environment:           EnvProduction,
			storeBackend:          StoreBackendMemory,
			storeOperationTimeout: time.Second,
			requestsPerMinute:     10,
			rateLimitEnabled:      true,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *AppConfig)
		wantErr string
	}{
		{"valid", func(c *AppConfig) {}, ""},
		{"short secret", func(c *AppConfig) { c.jwtSecret = "short" }, "at least 32"},
		{"default secret in production", func(c *AppConfig) { c.jwtSecret = developmentJWTSecret }, "default JWT secrets"},
		{"unknown environment", func(c *AppConfig) { c.environment = "qa" }, "environment"},
		{"unknown backend", func(c *AppConfig) { c.storeBackend = "mongo" }, "store backend"},
		{"pocketbase without dir", func(c *AppConfig) { c.storeBackend = StoreBackendPocketBase }, "data directory"},
		{"zero timeout", func(c *AppConfig) { c.storeOperationTimeout = 0 }, "timeout"},
		{"redis without addr", func(c *AppConfig) { c.redisEnabled = true }, "redis address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDescribe_MasksSecrets(t *testing.T) {
	cfg := &AppConfig{jwtSecret: "actual-secure-random-key-with-32-chars-or-more", redisPassword: "pw"}

	values := cfg.Describe()
	if values["jwt_secret"] != "********" || values["redis_password"] != "********" {
		t.Errorf("Expected secrets to be masked: %v", values)
	}
}
