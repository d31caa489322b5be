package build

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wheelsmith/wheelsmith/lib/config"
)

const testPlanJSONC = `{
	// minimal plan for flag-precedence tests
	"name": "test_ext",
	"source": {"dir": "test-ext"},
	"build": {"command": "python setup.py bdist_wheel"},
	"artifact": {"dir": "dist", "pattern": "test_ext-*.whl"},
}`

func writeTestPlan(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plan.jsonc")
	if err := os.WriteFile(path, []byte(testPlanJSONC), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadPlan_DefaultWithoutFlagOrConfig(t *testing.T) {
	plan, err := loadPlan("", config.Default())
	if err != nil {
		t.Fatalf("loadPlan: %v", err)
	}
	if plan.Name != "block_sparse_attn" {
		t.Errorf("plan.Name = %q, want built-in default", plan.Name)
	}
}

func TestLoadPlan_FlagWinsOverConfig(t *testing.T) {
	flagPath := writeTestPlan(t)

	cfg := config.Default()
	cfg.Paths.Plan = filepath.Join(t.TempDir(), "never-read.jsonc")

	plan, err := loadPlan(flagPath, cfg)
	if err != nil {
		t.Fatalf("loadPlan: %v", err)
	}
	if plan.Name != "test_ext" {
		t.Errorf("plan.Name = %q, want test_ext", plan.Name)
	}
}

func TestLoadPlan_ConfigPath(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.Plan = writeTestPlan(t)

	plan, err := loadPlan("", cfg)
	if err != nil {
		t.Fatalf("loadPlan: %v", err)
	}
	if plan.Name != "test_ext" {
		t.Errorf("plan.Name = %q, want test_ext", plan.Name)
	}
}

func TestRun_RequiresExactlyOneDestination(t *testing.T) {
	err := Run(nil, Options{})
	if err == nil {
		t.Fatal("expected error with no destination")
	}
	if !strings.Contains(err.Error(), "exactly one destination") {
		t.Errorf("error = %q", err)
	}

	err = Run([]string{"/a", "/b"}, Options{})
	if err == nil {
		t.Fatal("expected error with two destinations")
	}
}

func TestOpenResultLog_DisabledWithoutPath(t *testing.T) {
	results, err := openResultLog("", nil)
	if err != nil {
		t.Fatalf("openResultLog: %v", err)
	}
	if results != nil {
		t.Error("result log created without a configured path")
	}

	// Nil result logs must accept every method.
	results.writeStart("plan", 5)
	results.writeStep(0, "validate", "ok", 1, "")
	results.writeFailed("build", "boom", 2)
	if err := results.Close(); err != nil {
		t.Errorf("Close on nil result log: %v", err)
	}
}

func TestOpenResultLog_EnvVar(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.jsonl")
	t.Setenv(ResultPathEnvVar, path)

	results, err := openResultLog("", nil)
	if err != nil {
		t.Fatalf("openResultLog: %v", err)
	}
	defer results.Close()

	if results == nil {
		t.Fatal("result log not created from environment variable")
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("result log file not created: %v", err)
	}
}
