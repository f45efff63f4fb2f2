package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir, "")
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 8080 {
		t.Errorf("unexpected default port %d", cfg.Port)
	}
	if cfg.Retain != 10 {
		t.Errorf("unexpected default retention %d", cfg.Retain)
	}
	if !strings.HasPrefix(cfg.SchemaPath, dir) {
		t.Errorf("schema path must be rooted at base dir: %s", cfg.SchemaPath)
	}
}

func TestLoadMergesYAMLFile(t *testing.T) {
	dir := t.TempDir()
	content := "port: 9090\nlog_retain: 5\nartifact_name: custom.json\n"
	if err := os.WriteFile(filepath.Join(dir, "bridge.yaml"), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir, "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 9090 || cfg.Retain != 5 || cfg.ArtifactName != "custom.json" {
		t.Errorf("YAML values not applied: %+v", cfg)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bridge.yaml"), []byte("port: [oops"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir, ""); err == nil {
		t.Fatal("malformed config file must be an error, not silently ignored")
	}
}

func TestLoadReadsCredentialsFromEnvironment(t *testing.T) {
	t.Setenv(EnvBridgeURL, "https://bridge.example")
	t.Setenv(EnvBridgeToken, "tok-123")
	t.Setenv(EnvHMACSecret, "hmac-secret")

	cfg, err := Load(t.TempDir(), "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.BridgeURL != "https://bridge.example" || cfg.BridgeToken != "tok-123" || cfg.HMACSecret != "hmac-secret" {
		t.Errorf("environment credentials not applied: %+v", cfg)
	}
}

func TestLoadNormalizesRetention(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bridge.yaml"), []byte("log_retain: -3\n"), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(dir, "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Retain != 10 {
		t.Errorf("non-positive retention must fall back to default, got %d", cfg.Retain)
	}
}
