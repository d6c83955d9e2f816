package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Port:            "8080",
		DataBackend:     "memory",
		SyncBatchSize:   10,
		SyncInterval:    30 * time.Second,
		AITimeout:       15 * time.Second,
		StaticPassword:  "secret",
		JWTSecretKey:    "jwt-secret",
		TokenTTL:        24 * time.Hour,
		DefaultCurrency: "SGD",
		DefaultUser:     "default_user",
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		wantErr     bool
		errContains string
	}{
		{
			name:   "valid memory backend",
			mutate: func(c *Config) {},
		},
		{
			name:        "invalid port non-numeric",
			mutate:      func(c *Config) { c.Port = "abc" },
			wantErr:     true,
			errContains: "invalid port 'abc'",
		},
		{
			name:        "invalid port out of range",
			mutate:      func(c *Config) { c.Port = "70000" },
			wantErr:     true,
			errContains: "invalid port 70000",
		},
		{
			name:        "invalid backend",
			mutate:      func(c *Config) { c.DataBackend = "redis" },
			wantErr:     true,
			errContains: "invalid data backend 'redis'",
		},
		{
			name: "sheets backend missing spreadsheet id",
			mutate: func(c *Config) {
				c.DataBackend = "sheets"
				c.GoogleSheetName = "expenses"
				c.GoogleServiceAccountJSON = "{}"
			},
			wantErr:     true,
			errContains: "Spreadsheet ID is required",
		},
		{
			name: "sheets backend missing credentials",
			mutate: func(c *Config) {
				c.DataBackend = "sheets"
				c.GoogleSpreadsheetID = "abc123"
				c.GoogleSheetName = "expenses"
			},
			wantErr:     true,
			errContains: "GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON",
		},
		{
			name: "amqp url bad scheme",
			mutate: func(c *Config) {
				c.AMQPURL = "http://localhost:5672/"
				c.AMQPExchange = "x"
				c.AMQPQueue = "q"
			},
			wantErr:     true,
			errContains: "invalid AMQP URL scheme",
		},
		{
			name:        "missing password",
			mutate:      func(c *Config) { c.StaticPassword = "" },
			wantErr:     true,
			errContains: "STATIC_PASSWORD",
		},
		{
			name:        "missing jwt secret",
			mutate:      func(c *Config) { c.JWTSecretKey = "" },
			wantErr:     true,
			errContains: "JWT_SECRET_KEY",
		},
		{
			name:        "token ttl too short",
			mutate:      func(c *Config) { c.TokenTTL = time.Second },
			wantErr:     true,
			errContains: "token TTL",
		},
		{
			name:        "ai timeout too short",
			mutate:      func(c *Config) { c.AITimeout = 100 * time.Millisecond },
			wantErr:     true,
			errContains: "AI timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error containing %q", tt.errContains)
				}
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Fatalf("error %q does not contain %q", err.Error(), tt.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.Port == "" {
		t.Fatalf("expected default port")
	}
	if cfg.DataBackend != "memory" {
		t.Fatalf("expected memory default backend, got %s", cfg.DataBackend)
	}
	if cfg.DefaultCurrency == "" || cfg.DefaultUser == "" {
		t.Fatalf("expected record defaults, got %+v", cfg)
	}
}
