// Package config provides host configuration loading for wheelsmith.
//
// Configuration is loaded from a single file specified by:
//   - the WHEELSMITH_CONFIG environment variable, or
//   - the --config flag passed to the command
//
// There are no fallbacks or automatic discovery. When neither names a
// file, built-in defaults apply. This keeps configuration deterministic
// and auditable with no hidden overrides.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EnvVar is the environment variable naming the config file.
const EnvVar = "WHEELSMITH_CONFIG"

// Config is the host configuration for wheelsmith.
type Config struct {
	// Python configures the interpreter used for probing, dependency
	// installation, and the build itself.
	Python PythonConfig `yaml:"python"`

	// Paths configures filesystem locations.
	Paths PathsConfig `yaml:"paths"`

	// Publish configures destination handling.
	Publish PublishConfig `yaml:"publish"`
}

// PythonConfig selects the Python interpreter.
type PythonConfig struct {
	// Interpreter is the executable name or absolute path. Empty
	// means "python3" resolved via PATH.
	Interpreter string `yaml:"interpreter"`
}

// PathsConfig configures filesystem locations.
type PathsConfig struct {
	// SourceRoot is the directory under which relative plan source
	// dirs are resolved. Empty means the current working directory.
	SourceRoot string `yaml:"source_root"`

	// Plan is the default plan file used when --plan is not given.
	// Empty means the built-in block_sparse_attn plan.
	Plan string `yaml:"plan"`
}

// PublishConfig configures destination handling.
type PublishConfig struct {
	// RequireMount rejects destinations that live on the same device
	// as the root filesystem. On notebook hosts the persistent store
	// is a separate mount; a destination on the root device means the
	// mount step was skipped and the artifact would vanish with the
	// session.
	RequireMount bool `yaml:"require_mount"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{}
}

// Load reads and parses the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return &cfg, nil
}

// Resolve returns the configuration for a command invocation. The
// flag value (from --config) takes precedence over WHEELSMITH_CONFIG;
// when neither is set, defaults apply. A named file that is missing
// or malformed is an error — a typo in a config path must not
// silently fall back to defaults.
func Resolve(flagValue string) (*Config, error) {
	path := flagValue
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}
