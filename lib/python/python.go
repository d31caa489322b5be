// Package python provides typed access to a Python interpreter and its
// pip module. Wheelsmith drives the host interpreter for three things:
// probing the build environment (version one-liners with captured
// output), installing build dependencies, and running the native
// extension build itself (both with inherited stdio so compiler output
// reaches the operator unmodified).
//
// The interpreter executable is resolved via PATH unless the host
// config names an absolute path. Notebook hosts routinely alias
// python → python3, so there is no hardcoded default beyond "python3".
package python

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// DefaultExecutable is the interpreter used when the host config does
// not name one.
const DefaultExecutable = "python3"

// Interpreter represents a specific Python interpreter executable.
type Interpreter struct {
	executable string
}

// New returns an Interpreter for the given executable. An empty
// executable falls back to DefaultExecutable.
func New(executable string) *Interpreter {
	if executable == "" {
		executable = DefaultExecutable
	}
	return &Interpreter{executable: executable}
}

// Executable returns the interpreter executable name or path.
func (p *Interpreter) Executable() string {
	return p.executable
}

// Eval runs a Python one-liner ("-c" code) and returns its stdout.
// Stderr is captured separately and included in error messages on
// failure. Use this for environment probes where the output is parsed.
func (p *Interpreter) Eval(ctx context.Context, code string) (string, error) {
	var stdout, stderr bytes.Buffer
	command := exec.CommandContext(ctx, p.executable, "-c", code)
	command.Stdout = &stdout
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		return "", fmt.Errorf("%s -c: %w (stderr: %s)",
			p.executable, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// PipInstall installs one package spec with "pip install --upgrade",
// stdio inherited. Dependency resolution output and any compiler
// errors from source installs are passed through verbatim — the
// caller's contract is pip's own output, not a summary of it.
func (p *Interpreter) PipInstall(ctx context.Context, spec string) error {
	command := exec.CommandContext(ctx, p.executable, "-m", "pip", "install", "--upgrade", spec)
	command.Stdout = os.Stdout
	command.Stderr = os.Stderr

	if err := command.Run(); err != nil {
		return fmt.Errorf("pip install %s: %w", spec, err)
	}
	return nil
}

// Command returns an *exec.Cmd for an interpreter invocation without
// running it. The caller gets full control over Dir, Env, Stdin,
// Stdout, Stderr, and SysProcAttr before starting the process.
func (p *Interpreter) Command(ctx context.Context, args ...string) *exec.Cmd {
	return exec.CommandContext(ctx, p.executable, args...)
}
