package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sampleConfig struct {
	Name  string `yaml:"name"`
	Token string `yaml:"token"`
}

type validatedConfig struct {
	Name string `yaml:"name"`
}

func (c *validatedConfig) Validate() error {
	if c.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadExpandsEnvironment(t *testing.T) {
	t.Setenv("SAMPLE_TOKEN", "secret-value")
	path := writeConfig(t, "name: demo\ntoken: ${SAMPLE_TOKEN}\n")

	var cfg sampleConfig
	if err := Load(path, &cfg); err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Name != "demo" || cfg.Token != "secret-value" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadRunsValidator(t *testing.T) {
	path := writeConfig(t, "name: \"\"\n")

	var cfg validatedConfig
	err := Load(path, &cfg)
	if err == nil || !strings.Contains(err.Error(), "name is required") {
		t.Fatalf("expected validation failure, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	var cfg sampleConfig
	if err := Load(filepath.Join(t.TempDir(), "absent.yaml"), &cfg); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadOptional(t *testing.T) {
	cfg := sampleConfig{Name: "preset"}
	if err := LoadOptional(filepath.Join(t.TempDir(), "absent.yaml"), &cfg); err != nil {
		t.Fatalf("missing optional file must be a no-op: %v", err)
	}
	if cfg.Name != "preset" {
		t.Fatalf("expected target untouched, got %+v", cfg)
	}

	if err := LoadOptional("", &cfg); err != nil {
		t.Fatalf("empty path must be a no-op: %v", err)
	}

	path := writeConfig(t, "name: loaded\n")
	if err := LoadOptional(path, &cfg); err != nil {
		t.Fatalf("load optional: %v", err)
	}
	if cfg.Name != "loaded" {
		t.Fatalf("expected file applied when present, got %+v", cfg)
	}
}
