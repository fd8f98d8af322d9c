package config

import (
	"testing"
	"time"
)

var configKeys = []string{
	"APP_ENV", "APP_PORT", "LOG_LEVEL", "LOG_FILE", "STORAGE_BACKEND",
	"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "POPULAR_CACHE_TTL_SECONDS",
	"RATE_LIMIT_PER_SECOND", "RATE_LIMIT_BURST", "SHUTDOWN_TIMEOUT_SECONDS",
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.StorageBackend != StorageMemory {
		t.Errorf("StorageBackend = %q, want %q", cfg.StorageBackend, StorageMemory)
	}
	if cfg.AppPort != "8080" {
		t.Errorf("AppPort = %q, want %q", cfg.AppPort, "8080")
	}
	if cfg.RedisAddr != "" {
		t.Errorf("RedisAddr = %q, want empty", cfg.RedisAddr)
	}
	if cfg.GetPopularCacheTTL() != 30*time.Second {
		t.Errorf("GetPopularCacheTTL() = %v, want 30s", cfg.GetPopularCacheTTL())
	}
}

func TestLoadConfig_Postgres(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("STORAGE_BACKEND", "postgres")
	t.Setenv("DB_PASSWORD", "test_password")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.DBPassword != "test_password" {
		t.Errorf("DBPassword = %q, want %q", cfg.DBPassword, "test_password")
	}
	if cfg.RedisDB != 2 {
		t.Errorf("RedisDB = %d, want 2", cfg.RedisDB)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
	}{
		{
			name:    "Postgres without DB_PASSWORD",
			envVars: map[string]string{"STORAGE_BACKEND": "postgres"},
		},
		{
			name:    "Unknown backend",
			envVars: map[string]string{"STORAGE_BACKEND": "mongo"},
		},
		{
			name:    "Bad port",
			envVars: map[string]string{"APP_PORT": "http"},
		},
		{
			name:    "Negative cache TTL",
			envVars: map[string]string{"POPULAR_CACHE_TTL_SECONDS": "-1"},
		},
		{
			name:    "Zero rate limit",
			envVars: map[string]string{"RATE_LIMIT_PER_SECOND": "0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			if _, err := LoadConfig(); err == nil {
				t.Error("LoadConfig() expected error, got nil")
			}
		})
	}
}

func TestValidateProductionSecurity(t *testing.T) {
	tests := []struct {
		name      string
		cfg       *Config
		shouldErr bool
	}{
		{
			name: "Valid production config",
			cfg: &Config{
				AppEnv:         "production",
				StorageBackend: StoragePostgres,
				DBSSLMode:      "require",
			},
			shouldErr: false,
		},
		{
			name: "Development mode - no validation",
			cfg: &Config{
				AppEnv:         "development",
				StorageBackend: StorageMemory,
				DBSSLMode:      "disable",
			},
			shouldErr: false,
		},
		{
			name: "Production on memory backend",
			cfg: &Config{
				AppEnv:         "production",
				StorageBackend: StorageMemory,
				DBSSLMode:      "require",
			},
			shouldErr: true,
		},
		{
			name: "Production without SSL",
			cfg: &Config{
				AppEnv:         "production",
				StorageBackend: StoragePostgres,
				DBSSLMode:      "disable",
			},
			shouldErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.ValidateProductionSecurity()
			if tt.shouldErr && err == nil {
				t.Error("ValidateProductionSecurity() expected error, got nil")
			}
			if !tt.shouldErr && err != nil {
				t.Errorf("ValidateProductionSecurity() unexpected error = %v", err)
			}
		})
	}
}

func TestGetDSN(t *testing.T) {
	cfg := &Config{
		DBHost:     "localhost",
		DBPort:     "5432",
		DBUser:     "testuser",
		DBPassword: "testpass",
		DBName:     "testdb",
		DBSSLMode:  "disable",
	}

	expected := "host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=disable"
	if dsn := cfg.GetDSN(); dsn != expected {
		t.Errorf("GetDSN() = %q, want %q", dsn, expected)
	}
}

func TestGetShutdownTimeout(t *testing.T) {
	cfg := &Config{ShutdownTimeoutSeconds: 5}

	if got := cfg.GetShutdownTimeout(); got != 5*time.Second {
		t.Errorf("GetShutdownTimeout() = %v, want %v", got, 5*time.Second)
	}
}
