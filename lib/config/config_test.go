package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	content := `
python:
  interpreter: /opt/python3.11/bin/python
paths:
  source_root: /content
  plan: plans/attn.jsonc
publish:
  require_mount: true
`
	path := filepath.Join(t.TempDir(), "wheelsmith.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Python.Interpreter != "/opt/python3.11/bin/python" {
		t.Errorf("Interpreter = %q", cfg.Python.Interpreter)
	}
	if cfg.Paths.SourceRoot != "/content" {
		t.Errorf("SourceRoot = %q", cfg.Paths.SourceRoot)
	}
	if !cfg.Publish.RequireMount {
		t.Error("RequireMount not parsed")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing config file")
	}
}

func TestResolvePrecedence(t *testing.T) {
	flagConfig := filepath.Join(t.TempDir(), "flag.yaml")
	if err := os.WriteFile(flagConfig, []byte("python:\n  interpreter: from-flag\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	envConfig := filepath.Join(t.TempDir(), "env.yaml")
	if err := os.WriteFile(envConfig, []byte("python:\n  interpreter: from-env\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	t.Setenv(EnvVar, envConfig)

	cfg, err := Resolve(flagConfig)
	if err != nil {
		t.Fatalf("Resolve(flag): %v", err)
	}
	if cfg.Python.Interpreter != "from-flag" {
		t.Errorf("flag config did not win: %q", cfg.Python.Interpreter)
	}

	cfg, err = Resolve("")
	if err != nil {
		t.Fatalf("Resolve(env): %v", err)
	}
	if cfg.Python.Interpreter != "from-env" {
		t.Errorf("env config not used: %q", cfg.Python.Interpreter)
	}

	t.Setenv(EnvVar, "")
	cfg, err = Resolve("")
	if err != nil {
		t.Fatalf("Resolve(default): %v", err)
	}
	if cfg.Python.Interpreter != "" {
		t.Errorf("default config expected, got %q", cfg.Python.Interpreter)
	}
}

func TestResolveBadPathIsError(t *testing.T) {
	if _, err := Resolve(filepath.Join(t.TempDir(), "typo.yaml")); err == nil {
		t.Error("a named but missing config must not silently fall back to defaults")
	}
}
