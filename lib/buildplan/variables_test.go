package buildplan

import (
	"strings"
	"testing"
)

func TestResolveVariables(t *testing.T) {
	t.Parallel()

	declarations := map[string]Variable{
		"MAX_JOBS":             {Default: "4"},
		"TORCH_CUDA_ARCH_LIST": {Default: "8.0"},
		"WHEEL_TAG":            {Required: true},
	}

	environ := func(name string) string {
		switch name {
		case "MAX_JOBS":
			return "16"
		case "WHEEL_TAG":
			return "cu121"
		}
		return ""
	}

	resolved, err := ResolveVariables(declarations, environ)
	if err != nil {
		t.Fatalf("ResolveVariables: %v", err)
	}

	// Environment overrides the declared default.
	if resolved["MAX_JOBS"] != "16" {
		t.Errorf("MAX_JOBS = %q, want 16", resolved["MAX_JOBS"])
	}
	// Default survives when the environment is silent.
	if resolved["TORCH_CUDA_ARCH_LIST"] != "8.0" {
		t.Errorf("TORCH_CUDA_ARCH_LIST = %q, want 8.0", resolved["TORCH_CUDA_ARCH_LIST"])
	}
	if resolved["WHEEL_TAG"] != "cu121" {
		t.Errorf("WHEEL_TAG = %q, want cu121", resolved["WHEEL_TAG"])
	}
}

func TestResolveVariablesMissingRequired(t *testing.T) {
	t.Parallel()

	declarations := map[string]Variable{
		"CUDA_HOME": {Required: true},
		"ARCH":      {Required: true},
	}

	_, err := ResolveVariables(declarations, func(string) string { return "" })
	if err == nil {
		t.Fatal("expected an error for unset required variables")
	}
	// Missing names are sorted for deterministic messages.
	if !strings.Contains(err.Error(), "ARCH, CUDA_HOME") {
		t.Errorf("error %q does not list missing variables in order", err)
	}
}

func TestExpand(t *testing.T) {
	t.Parallel()

	variables := map[string]string{"JOBS": "8", "ARCH": "8.0"}

	tests := []struct {
		input   string
		want    string
		wantErr string
	}{
		{input: "MAX_JOBS=${JOBS} nvcc", want: "MAX_JOBS=8 nvcc"},
		{input: "${JOBS}${ARCH}", want: "88.0"},
		{input: "no references", want: "no references"},
		// Bare $NAME is left for the shell.
		{input: "echo $JOBS", want: "echo $JOBS"},
		{input: "${MISSING}", wantErr: "unresolved plan variables: MISSING"},
	}

	for _, test := range tests {
		got, err := Expand(test.input, variables)
		if test.wantErr != "" {
			if err == nil || !strings.Contains(err.Error(), test.wantErr) {
				t.Errorf("Expand(%q) error = %v, want %q", test.input, err, test.wantErr)
			}
			continue
		}
		if err != nil {
			t.Errorf("Expand(%q): %v", test.input, err)
			continue
		}
		if got != test.want {
			t.Errorf("Expand(%q) = %q, want %q", test.input, got, test.want)
		}
	}
}

func TestExpandBuild(t *testing.T) {
	t.Parallel()

	build := BuildSpec{
		Command: "python setup.py bdist_wheel --jobs ${MAX_JOBS}",
		Env: map[string]string{
			"MAX_JOBS":             "${JOBS}",
			"TORCH_CUDA_ARCH_LIST": "8.0",
		},
		Timeout: "90m",
	}

	expanded, err := ExpandBuild(build, map[string]string{"JOBS": "12"})
	if err != nil {
		t.Fatalf("ExpandBuild: %v", err)
	}

	// Env expands against plan variables, then the command sees the
	// expanded env value.
	if expanded.Env["MAX_JOBS"] != "12" {
		t.Errorf("Env[MAX_JOBS] = %q, want 12", expanded.Env["MAX_JOBS"])
	}
	if expanded.Command != "python setup.py bdist_wheel --jobs 12" {
		t.Errorf("Command = %q", expanded.Command)
	}
	if expanded.Timeout != "90m" {
		t.Errorf("Timeout = %q, want 90m", expanded.Timeout)
	}

	// The input build spec must not be mutated.
	if build.Env["MAX_JOBS"] != "${JOBS}" {
		t.Errorf("input Env mutated: %v", build.Env)
	}
}

func TestExpandBuildUnresolved(t *testing.T) {
	t.Parallel()

	build := BuildSpec{Command: "make ${TARGET}"}
	if _, err := ExpandBuild(build, nil); err == nil {
		t.Error("expected an error for an unresolved command reference")
	}
}
