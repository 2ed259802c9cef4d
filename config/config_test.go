package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(`token: secret`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.IP != "127.0.0.1" {
		t.Errorf("IP = %q, want 127.0.0.1", cfg.IP)
	}
	if cfg.Port != 3000 {
		t.Errorf("Port = %d, want 3000", cfg.Port)
	}
	if cfg.Capacity != 8 {
		t.Errorf("Capacity = %d, want 8", cfg.Capacity)
	}
	if cfg.Token != "secret" {
		t.Errorf("Token = %q, want secret", cfg.Token)
	}
	if cfg.Title != "" {
		t.Errorf("Title = %q, want empty (server applies its own default)", cfg.Title)
	}
}

func TestParse_AllFields(t *testing.T) {
	yaml := `
title: ops canary
ip: 0.0.0.0
port: 8080
capacity: 16
token: secret
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Title != "ops canary" {
		t.Errorf("Title = %q, want ops canary", cfg.Title)
	}
	if cfg.IP != "0.0.0.0" {
		t.Errorf("IP = %q, want 0.0.0.0", cfg.IP)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.Capacity != 16 {
		t.Errorf("Capacity = %d, want 16", cfg.Capacity)
	}
}

func TestParse_TokenEnvExpansion(t *testing.T) {
	t.Setenv("OPERATOR_TOKEN", "from-env")

	cfg, err := Parse([]byte(`token: ${OPERATOR_TOKEN}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Token != "from-env" {
		t.Errorf("Token = %q, want from-env", cfg.Token)
	}
}

func TestParse_TokenEnvExpansionDefault(t *testing.T) {
	cfg, err := Parse([]byte(`token: ${CANARY_TEST_UNSET_VAR:-fallback}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Token != "fallback" {
		t.Errorf("Token = %q, want fallback", cfg.Token)
	}
}

func TestParse_TokenEnvMissing(t *testing.T) {
	_, err := Parse([]byte(`token: ${CANARY_TEST_UNSET_VAR}`))
	if err == nil {
		t.Fatal("Parse() should fail when a referenced env var is unset")
	}
	if !strings.Contains(err.Error(), "CANARY_TEST_UNSET_VAR") {
		t.Errorf("error should name the missing variable, got: %v", err)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing token", `port: 3000`},
		{"empty token", `token: ""`},
		{"bad port", "token: secret\nport: 70000"},
		{"negative port", "token: secret\nport: -1"},
		{"bad capacity", "token: secret\ncapacity: -2"},
		{"bad ip", "token: secret\nip: not-an-ip"},
		{"malformed yaml", `token: [`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.yaml)); err == nil {
				t.Errorf("Parse(%q) should fail", tt.yaml)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "canary.yaml")
	if err := os.WriteFile(path, []byte("token: secret\nport: 4000\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != 4000 {
		t.Errorf("Port = %d, want 4000", cfg.Port)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() of a missing file should fail")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("OPERATOR_TOKEN", "secret")
	t.Setenv("IP", "")
	t.Setenv("PORT", "")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}

	if cfg.Token != "secret" {
		t.Errorf("Token = %q, want secret", cfg.Token)
	}
	if cfg.IP != "127.0.0.1" {
		t.Errorf("IP = %q, want 127.0.0.1", cfg.IP)
	}
	if cfg.Port != 3000 {
		t.Errorf("Port = %d, want 3000", cfg.Port)
	}
	if cfg.Capacity != 8 {
		t.Errorf("Capacity = %d, want 8", cfg.Capacity)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("OPERATOR_TOKEN", "secret")
	t.Setenv("IP", "0.0.0.0")
	t.Setenv("PORT", "8080")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}

	if cfg.IP != "0.0.0.0" {
		t.Errorf("IP = %q, want 0.0.0.0", cfg.IP)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
}

func TestFromEnv_MissingToken(t *testing.T) {
	t.Setenv("OPERATOR_TOKEN", "")

	if _, err := FromEnv(); err == nil {
		t.Fatal("FromEnv() without OPERATOR_TOKEN should fail")
	}
}

func TestFromEnv_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unparseable port", "PORT", "not-a-port"},
		{"port out of range", "PORT", "70000"},
		{"bad ip", "IP", "example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("OPERATOR_TOKEN", "secret")
			t.Setenv("IP", "")
			t.Setenv("PORT", "")
			t.Setenv(tt.key, tt.value)

			if _, err := FromEnv(); err == nil {
				t.Errorf("FromEnv() with %s=%q should fail", tt.key, tt.value)
			}
		})
	}
}
