package buildplan

import (
	"os"
	"path/filepath"
	"testing"
)

const samplePlan = `{
	// Build plan for the block_sparse_attn extension.
	"name": "block_sparse_attn",
	"source": {
		"dir": "Block-Sparse-Attention",
		"repo": "https://github.com/mit-han-lab/Block-Sparse-Attention",
	},
	"environment": {
		"python": ["3.10", "3.11"],
		"torch": ["2.4"],
		"require_accelerator": true,
	},
	"dependencies": ["setuptools>=68.0.0", "wheel", "ninja", "packaging"],
	"clean": ["build", "dist", "*.egg-info"],
	"build": {
		"command": "python setup.py bdist_wheel",
		"env": {"FLASH_ATTENTION_FORCE_BUILD": "TRUE"},
		"timeout": "90m", /* A100 builds finish well inside this. */
	},
	"artifact": {"dir": "dist", "pattern": "block_sparse_attn-*.whl"},
}`

func TestParseJSONC(t *testing.T) {
	t.Parallel()

	plan, err := Parse([]byte(samplePlan))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if plan.Name != "block_sparse_attn" {
		t.Errorf("Name = %q", plan.Name)
	}
	if plan.Source.Dir != "Block-Sparse-Attention" {
		t.Errorf("Source.Dir = %q", plan.Source.Dir)
	}
	if !plan.Environment.RequireAccelerator {
		t.Error("RequireAccelerator not parsed")
	}
	if len(plan.Dependencies) != 4 {
		t.Errorf("Dependencies = %v", plan.Dependencies)
	}
	if plan.Build.Env["FLASH_ATTENTION_FORCE_BUILD"] != "TRUE" {
		t.Errorf("Build.Env = %v", plan.Build.Env)
	}
	if plan.Artifact.Pattern != "block_sparse_attn-*.whl" {
		t.Errorf("Artifact.Pattern = %q", plan.Artifact.Pattern)
	}
}

func TestParseMalformed(t *testing.T) {
	t.Parallel()

	if _, err := Parse([]byte(`{"name": [}`)); err == nil {
		t.Error("expected an error for malformed input")
	}
}

func TestReadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "block-sparse-attn.jsonc")
	if err := os.WriteFile(path, []byte(samplePlan), 0644); err != nil {
		t.Fatalf("write plan: %v", err)
	}

	plan, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if plan.Name != "block_sparse_attn" {
		t.Errorf("Name = %q", plan.Name)
	}

	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.jsonc")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestNameFromPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want string
	}{
		{"plans/block-sparse-attn.jsonc", "block-sparse-attn"},
		{"plan.json", "plan"},
		{"/abs/path/attn.jsonc", "attn"},
	}
	for _, test := range tests {
		if got := NameFromPath(test.path); got != test.want {
			t.Errorf("NameFromPath(%q) = %q, want %q", test.path, got, test.want)
		}
	}
}

func TestDefaultPlanIsValid(t *testing.T) {
	t.Parallel()

	if issues := Validate(Default()); len(issues) > 0 {
		t.Errorf("Default plan has validation issues: %v", issues)
	}
}
