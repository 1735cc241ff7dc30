/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		bind:           "127.0.0.1",
		dbPath:         "bilsene.db",
		port:           8080,
		roundLength:    60,
		sessionTimeout: time.Hour,
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"port zero", func(c *Config) { c.port = 0 }, true},
		{"port too high", func(c *Config) { c.port = 70000 }, true},
		{"cert without key", func(c *Config) { c.tlsCert = "cert.pem" }, true},
		{"key without cert", func(c *Config) { c.tlsKey = "key.pem" }, true},
		{"cert and key", func(c *Config) { c.tlsCert, c.tlsKey = "cert.pem", "key.pem" }, false},
		{"round length 30", func(c *Config) { c.roundLength = 30 }, false},
		{"round length 120", func(c *Config) { c.roundLength = 120 }, false},
		{"round length 45", func(c *Config) { c.roundLength = 45 }, true},
		{"empty db", func(c *Config) { c.dbPath = "" }, true},
		{"negative feed interval", func(c *Config) { c.feedInterval = -time.Second }, true},
		{"session timeout disabled", func(c *Config) { c.sessionTimeout = 0 }, false},
		{"session timeout one nanosecond", func(c *Config) { c.sessionTimeout = time.Nanosecond }, true},
		{"session timeout below a second", func(c *Config) { c.sessionTimeout = 500 * time.Millisecond }, true},
		{"session timeout one second", func(c *Config) { c.sessionTimeout = time.Second }, false},
		{"negative session timeout", func(c *Config) { c.sessionTimeout = -time.Minute }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigScheme(t *testing.T) {
	cfg := validConfig()
	if got := cfg.scheme(); got != "http" {
		t.Fatalf("scheme() = %q, want http", got)
	}

	cfg.tlsCert, cfg.tlsKey = "cert.pem", "key.pem"
	if got := cfg.scheme(); got != "https" {
		t.Fatalf("scheme() = %q, want https", got)
	}
}

func TestConfigDefaultSettings(t *testing.T) {
	cfg := validConfig()
	cfg.roundLength = 90

	settings := cfg.defaultSettings()
	if settings.RoundSeconds != 90 {
		t.Fatalf("RoundSeconds = %d, want 90", settings.RoundSeconds)
	}
	if !settings.Sound || !settings.Haptics {
		t.Fatalf("expected sound and haptics on by default, got %+v", settings)
	}
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	if err := loadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("loadDotEnv() error = %v", err)
	}
}

func TestLoadDotEnvDoesNotOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	data := "BILSENE_TEST_FROM_FILE=file\nBILSENE_TEST_ALREADY_SET=file\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("BILSENE_TEST_ALREADY_SET", "env")
	t.Cleanup(func() { _ = os.Unsetenv("BILSENE_TEST_FROM_FILE") })

	if err := loadDotEnv(path); err != nil {
		t.Fatalf("loadDotEnv() error = %v", err)
	}

	if got := os.Getenv("BILSENE_TEST_FROM_FILE"); got != "file" {
		t.Fatalf("BILSENE_TEST_FROM_FILE = %q, want file", got)
	}
	if got := os.Getenv("BILSENE_TEST_ALREADY_SET"); got != "env" {
		t.Fatalf("BILSENE_TEST_ALREADY_SET = %q, want env", got)
	}
}

func TestNewCmdReadsEnvironment(t *testing.T) {
	t.Setenv("BILSENE_PORT", "9090")
	t.Setenv("BILSENE_ROUND_LENGTH", "30")

	cfg := &Config{}
	_ = newCmd(cfg)

	if cfg.port != 9090 {
		t.Fatalf("port = %d, want 9090", cfg.port)
	}
	if cfg.roundLength != 30 {
		t.Fatalf("roundLength = %d, want 30", cfg.roundLength)
	}
	if cfg.dbPath != "bilsene.db" {
		t.Fatalf("dbPath = %q, want default", cfg.dbPath)
	}
}
