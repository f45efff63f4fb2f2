// Package config resolves bridge configuration from defaults, an
// optional YAML file, and environment variables, in that order.
// Credentials come from the environment only; the file never holds
// secrets.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Environment variables consumed at load time.
const (
	EnvBridgeURL   = "ATHENA_BRIDGE_URL"
	EnvBridgeToken = "ATHENA_BRIDGE_TOKEN"
	EnvHMACSecret  = "ATHENA_HMAC_SECRET"
)

// Config holds all bridge settings. An empty BridgeURL is the legal
// "relay disabled" state; an empty HMACSecret forces every signature
// check to fail.
type Config struct {
	Port int `yaml:"port"`

	SchemaPath   string `yaml:"schema_path"`
	ManifestPath string `yaml:"manifest_path"`
	RecordPath   string `yaml:"record_path"`
	ArchiveDir   string `yaml:"archive_dir"`

	ArtifactName         string `yaml:"artifact_name"`
	CanonicalSchemaURL   string `yaml:"canonical_schema_url"`
	CanonicalManifestURL string `yaml:"canonical_manifest_url"`

	Retain int `yaml:"log_retain"`

	BridgeURL   string `yaml:"-"`
	BridgeToken string `yaml:"-"`
	HMACSecret  string `yaml:"-"`
}

// Default returns the built-in configuration rooted at baseDir.
func Default(baseDir string) *Config {
	return &Config{
		Port:                 8080,
		SchemaPath:           filepath.Join(baseDir, "schemas", "ATHENA_CAP_SCHEMA_v3_5.json"),
		ManifestPath:         filepath.Join(baseDir, "schemas", "FalconForge_Integrity_Manifest_v3_5.json"),
		RecordPath:           filepath.Join(baseDir, "cap_record.json"),
		ArchiveDir:           filepath.Join(baseDir, "archive", "CAP_LOGS"),
		ArtifactName:         "ATHENA_CAP_SCHEMA_v3_5.json",
		CanonicalSchemaURL:   "https://raw.githubusercontent.com/falconforge-codex/canonical/ATHENA_CAP_SCHEMA_v3_5.json",
		CanonicalManifestURL: "https://raw.githubusercontent.com/falconforge-codex/canonical/FalconForge_Integrity_Manifest_v3_5.json",
		Retain:               10,
	}
}

// Load builds the configuration for baseDir, merging bridge.yaml (if
// present) and the environment. A missing file is not an error; a
// malformed one is.
func Load(baseDir, path string) (*Config, error) {
	cfg := Default(baseDir)

	if path == "" {
		path = filepath.Join(baseDir, "bridge.yaml")
	}
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults apply.
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.BridgeURL = os.Getenv(EnvBridgeURL)
	cfg.BridgeToken = os.Getenv(EnvBridgeToken)
	cfg.HMACSecret = os.Getenv(EnvHMACSecret)

	if cfg.Retain <= 0 {
		cfg.Retain = 10
	}
	return cfg, nil
}
