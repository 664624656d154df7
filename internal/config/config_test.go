package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFrom_Missing(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("missing config should yield defaults, got error: %v", err)
	}
	if cfg.Calibration.Backend != "file" {
		t.Errorf("default backend = %q, want file", cfg.Calibration.Backend)
	}
}

func TestLoadFrom(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[calibration]
backend = "sqlite"
path = "/tmp/jacques-test/calibration.db"

[skills]
roots = ["/opt/skills"]

[windows]
default = 100000

[windows.overrides]
"house-model" = 64000
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Calibration.Backend != "sqlite" {
		t.Errorf("backend = %q, want sqlite", cfg.Calibration.Backend)
	}
	if cfg.Calibration.Path != "/tmp/jacques-test/calibration.db" {
		t.Errorf("path = %q", cfg.Calibration.Path)
	}
	if len(cfg.Skills.Roots) != 1 || cfg.Skills.Roots[0] != "/opt/skills" {
		t.Errorf("skills roots = %v", cfg.Skills.Roots)
	}
	if cfg.Windows.Default != 100_000 {
		t.Errorf("windows default = %d", cfg.Windows.Default)
	}
	if cfg.Windows.Overrides["house-model"] != 64_000 {
		t.Errorf("override = %d", cfg.Windows.Overrides["house-model"])
	}
}

func TestLoadFrom_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[broken"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err == nil {
		t.Error("malformed config should error")
	}
	// Defaults still come back so the caller can proceed.
	if cfg.Calibration.Backend != "file" {
		t.Errorf("backend = %q, want file default", cfg.Calibration.Backend)
	}
}
