// Package git provides typed access to the git CLI for source tree
// operations. Wheelsmith uses git to materialize the extension source
// tree before a build (clone) and to record build provenance (the HEAD
// commit that produced a wheel). All commands target a specific
// repository directory via the -C flag, which is automatically injected
// by all Repository methods.
package git

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Repository represents a git repository at a specific directory. All
// operations target this directory via "git -C <dir>". There is no
// default directory — callers must always specify which source tree
// they mean.
type Repository struct {
	dir string
}

// NewRepository returns a Repository targeting the given directory.
func NewRepository(dir string) *Repository {
	return &Repository{dir: dir}
}

// Dir returns the repository directory.
func (r *Repository) Dir() string {
	return r.dir
}

// Run executes a git command targeting this repository and returns
// stdout. Stderr is captured separately and included in error messages
// on failure.
func (r *Repository) Run(ctx context.Context, args ...string) (string, error) {
	fullArgs := append([]string{"-C", r.dir}, args...)
	var stdout, stderr bytes.Buffer
	command := exec.CommandContext(ctx, "git", fullArgs...)
	command.Stdout = &stdout
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		return "", fmt.Errorf("git %s in %s: %w (stderr: %s)",
			strings.Join(args, " "), r.dir, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// Head returns the full SHA of the repository's HEAD commit.
func (r *Repository) Head(ctx context.Context) (string, error) {
	output, err := r.Run(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(output), nil
}

// Exists reports whether the repository directory contains a git
// checkout (a .git directory or file, as in worktrees and submodules).
func (r *Repository) Exists() bool {
	_, err := os.Stat(r.dir + "/.git")
	return err == nil
}

// Clone clones url into dir, checking out ref when non-empty. Clone
// output (progress on stderr) is passed through to the caller's
// stderr — clones of large extension trees take a while and silence
// looks like a hang. Submodules are initialized recursively: CUDA
// extension repositories routinely vendor kernel dependencies (cutlass
// and friends) as submodules, and a build against an empty submodule
// directory fails tens of minutes in.
func Clone(ctx context.Context, url, dir, ref string) (*Repository, error) {
	args := []string{"clone", "--recurse-submodules"}
	if ref != "" {
		args = append(args, "--branch", ref)
	}
	args = append(args, url, dir)

	command := exec.CommandContext(ctx, "git", args...)
	command.Stdout = os.Stdout
	command.Stderr = os.Stderr

	if err := command.Run(); err != nil {
		return nil, fmt.Errorf("git clone %s into %s: %w", url, dir, err)
	}
	return NewRepository(dir), nil
}
