// Package buildplan provides parsing, validation, and variable
// expansion for wheelsmith build plans. A plan describes how to turn a
// native extension source tree into a wheel: the environment the build
// requires, the pip packages the build toolchain needs, which stale
// output paths to clean, the build command itself, and the artifact
// naming pattern the build is expected to produce.
//
// Plans are authored on disk as JSONC files (JSON extended with
// comments and trailing commas). The typical flow:
//
//  1. ReadFile or Parse: JSONC bytes → Plan
//  2. Validate: structural checks (required fields, scoped clean globs, etc.)
//  3. ResolveVariables: merge declarations + environment → variable map
//  4. ExpandBuild: substitute ${NAME} references before execution
package buildplan

// Plan is a complete build plan for one extension.
type Plan struct {
	// Name is the distribution name of the extension being built
	// ("block_sparse_attn"). Used in diagnostics and as the default
	// stem of the artifact pattern.
	Name string `json:"name"`

	// Description is free-form documentation shown by "plan show".
	Description string `json:"description,omitempty"`

	// Source locates the extension source tree.
	Source SourceSpec `json:"source"`

	// Environment constrains the host the build may run on.
	Environment EnvironmentSpec `json:"environment"`

	// Variables declares ${NAME} substitutions available to the build
	// command and env. Values resolve from declared defaults, then the
	// process environment (highest priority).
	Variables map[string]Variable `json:"variables,omitempty"`

	// Dependencies are pip package specs installed (upgraded) before
	// the build ("setuptools>=68.0.0", "ninja").
	Dependencies []string `json:"dependencies,omitempty"`

	// Clean lists glob patterns, relative to the source tree, removed
	// before the build ("build", "dist", "*.egg-info").
	Clean []string `json:"clean,omitempty"`

	// Build describes the packaging command.
	Build BuildSpec `json:"build"`

	// Artifact describes where the build output lands and what it is
	// named.
	Artifact ArtifactSpec `json:"artifact"`
}

// SourceSpec locates the extension source tree.
type SourceSpec struct {
	// Dir is the source tree directory, relative to the working
	// directory or absolute.
	Dir string `json:"dir"`

	// Repo is the git URL to clone when Dir does not exist. Empty
	// means the tree must already be present.
	Repo string `json:"repo,omitempty"`

	// Ref is the branch or tag to clone. Empty means the remote
	// default branch.
	Ref string `json:"ref,omitempty"`
}

// EnvironmentSpec constrains the host environment. Version entries are
// prefixes: "3.11" accepts a host reporting "3.11.9". An empty list
// accepts any version of that component.
type EnvironmentSpec struct {
	// Python lists supported interpreter versions.
	Python []string `json:"python,omitempty"`

	// Torch lists supported torch release versions. Local version
	// suffixes on the host ("2.4.0+cu121") match on the release part.
	Torch []string `json:"torch,omitempty"`

	// CUDA lists supported CUDA runtime versions as reported by torch.
	CUDA []string `json:"cuda,omitempty"`

	// RequireAccelerator requires torch.cuda.is_available() and a
	// kernel-visible NVIDIA device. Compiling CUDA kernels without a
	// device is possible in principle but never what a notebook build
	// wants, so the default plan sets this.
	RequireAccelerator bool `json:"require_accelerator"`
}

// Variable declares a build variable.
type Variable struct {
	// Description documents the variable for plan show output.
	Description string `json:"description,omitempty"`

	// Default is the value used when the environment does not set one.
	Default string `json:"default,omitempty"`

	// Required fails resolution when no source provides a value.
	Required bool `json:"required,omitempty"`
}

// BuildSpec describes the packaging command.
type BuildSpec struct {
	// Command is the shell command that produces the artifact, run in
	// the source tree ("python setup.py bdist_wheel"). ${NAME}
	// references are expanded before execution.
	Command string `json:"command"`

	// Env is extra environment for the build command, on top of the
	// process environment. Values support ${NAME} expansion.
	Env map[string]string `json:"env,omitempty"`

	// Timeout bounds the build when non-empty (time.ParseDuration
	// format). Empty means no timeout: native extension builds run
	// tens of minutes and the plan decides whether to cap that.
	Timeout string `json:"timeout,omitempty"`
}

// ArtifactSpec describes the expected build output.
type ArtifactSpec struct {
	// Dir is the build output directory, relative to the source tree.
	Dir string `json:"dir"`

	// Pattern is the glob the produced wheel must match, within Dir.
	// Exactly one file may match after a successful build.
	Pattern string `json:"pattern"`
}

// Default returns the built-in plan for the block_sparse_attn
// extension on an A100 notebook host. The constants mirror the
// upstream build procedure: setuptools/wheel/ninja/packaging as the
// toolchain, a forced source build, and a dist/ wheel output.
func Default() *Plan {
	return &Plan{
		Name:        "block_sparse_attn",
		Description: "Block Sparse Attention CUDA extension wheel",
		Source: SourceSpec{
			Dir:  "Block-Sparse-Attention",
			Repo: "https://github.com/mit-han-lab/Block-Sparse-Attention",
		},
		Environment: EnvironmentSpec{
			Python:             []string{"3.10", "3.11", "3.12"},
			RequireAccelerator: true,
		},
		Variables: map[string]Variable{
			"MAX_JOBS": {
				Description: "parallel nvcc compile jobs",
				Default:     "4",
			},
			"TORCH_CUDA_ARCH_LIST": {
				Description: "target CUDA architectures",
				Default:     "8.0",
			},
		},
		Dependencies: []string{
			"setuptools>=68.0.0",
			"wheel",
			"ninja",
			"packaging",
		},
		Clean: []string{"build", "dist", "*.egg-info"},
		Build: BuildSpec{
			Command: "python setup.py bdist_wheel",
			Env: map[string]string{
				"FLASH_ATTENTION_FORCE_BUILD": "TRUE",
				"MAX_JOBS":                    "${MAX_JOBS}",
				"TORCH_CUDA_ARCH_LIST":        "${TORCH_CUDA_ARCH_LIST}",
			},
		},
		Artifact: ArtifactSpec{
			Dir:     "dist",
			Pattern: "block_sparse_attn-*.whl",
		},
	}
}
