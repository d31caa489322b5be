package build

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/wheelsmith/wheelsmith/lib/buildlog"
	"github.com/wheelsmith/wheelsmith/lib/buildplan"
	"github.com/wheelsmith/wheelsmith/lib/config"
	"github.com/wheelsmith/wheelsmith/lib/envprobe"
	"github.com/wheelsmith/wheelsmith/lib/git"
	"github.com/wheelsmith/wheelsmith/lib/hwinfo/nvidia"
	"github.com/wheelsmith/wheelsmith/lib/python"
	"github.com/wheelsmith/wheelsmith/lib/wheel"
)

// pipeline holds the state threaded through the five build steps.
// Steps run strictly in order; later steps read fields that earlier
// steps populated.
type pipeline struct {
	plan        *buildplan.Plan
	config      *config.Config
	destination string
	interpreter *python.Interpreter
	logger      *slog.Logger
	results     *resultLog

	// Populated by validate.
	variables map[string]string

	// Populated by clean.
	sourceDir    string
	sourceCommit string

	// Populated by build.
	buildLog  *buildlog.Writer
	wheelPath string

	// Populated by publish.
	published *wheel.Published
}

// step is one named stage of the pipeline.
type step struct {
	name string
	run  func(ctx context.Context) error
}

// Execute runs the pipeline to completion or first failure.
func (p *pipeline) Execute(ctx context.Context) error {
	steps := []step{
		{"validate", p.validate},
		{"install-deps", p.installDeps},
		{"clean", p.clean},
		{"build", p.build},
		{"publish", p.publish},
	}
	if err := p.runSteps(ctx, steps); err != nil {
		return err
	}

	fmt.Printf("[build] published %s (%s, blake3 %s)\n",
		filepath.Base(p.published.Path), p.published.HumanSize(), p.published.Digest)
	fmt.Printf("[build] install with: pip install %s\n", p.published.Path)
	return nil
}

// runSteps drives the fail-fast step sequence: each step's outcome is
// printed and recorded in the result log, and the first failure stops
// the run.
func (p *pipeline) runSteps(ctx context.Context, steps []step) error {
	p.results.writeStart(p.plan.Name, len(steps))
	startTime := time.Now()

	for i, s := range steps {
		stepStart := time.Now()
		err := s.run(ctx)
		duration := time.Since(stepStart)

		if err != nil {
			fmt.Printf("[build] step %d/%d: %s... failed (%s)\n", i+1, len(steps), s.name, formatDuration(duration))
			p.results.writeStep(i, s.name, "failed", duration.Milliseconds(), err.Error())
			p.results.writeFailed(s.name, err.Error(), time.Since(startTime).Milliseconds())
			return fmt.Errorf("%s: %w", s.name, err)
		}

		fmt.Printf("[build] step %d/%d: %s... ok (%s)\n", i+1, len(steps), s.name, formatDuration(duration))
		p.results.writeStep(i, s.name, "ok", duration.Milliseconds(), "")
	}

	p.results.writeComplete(time.Since(startTime).Milliseconds(), p.published, p.sourceCommit)
	return nil
}

// validate checks the plan structure, resolves build variables, probes
// the host environment against the plan's constraints, and confirms
// the destination is reachable. Everything that can fail the run
// without side effects fails here, before any package install or
// source mutation.
func (p *pipeline) validate(ctx context.Context) error {
	if issues := buildplan.Validate(p.plan); len(issues) > 0 {
		return fmt.Errorf("plan %q is invalid:\n  %s", p.plan.Name, strings.Join(issues, "\n  "))
	}

	variables, err := buildplan.ResolveVariables(p.plan.Variables, os.Getenv)
	if err != nil {
		return err
	}
	p.variables = variables

	descriptor, err := envprobe.Probe(ctx, p.interpreter)
	if err != nil {
		return err
	}
	p.logger.Info("environment probed",
		"python", descriptor.PythonVersion,
		"torch", descriptor.TorchVersion,
		"cuda", descriptor.CUDAVersion,
		"cuda_available", descriptor.CUDAAvailable,
		"device", descriptor.DeviceName,
	)

	if descriptor.CUDAHome == "" {
		p.logger.Warn("CUDA_HOME is not set; the build relies on torch locating the toolkit")
	}

	gpus := nvidia.NewProber().Enumerate()
	if problems := envprobe.Check(descriptor, p.plan.Environment, gpus); len(problems) > 0 {
		return fmt.Errorf("environment does not satisfy the plan:\n  %s", strings.Join(problems, "\n  "))
	}

	// Confirm the destination now: a missing store mount should stop
	// the run before a half-hour compile, not after.
	if err := wheel.EnsureDestination(p.destination, p.config.Publish.RequireMount); err != nil {
		return err
	}
	return nil
}

// installDeps installs (upgrading if present) each pip dependency the
// build toolchain needs.
func (p *pipeline) installDeps(ctx context.Context) error {
	for _, dependency := range p.plan.Dependencies {
		if err := p.interpreter.PipInstall(ctx, dependency); err != nil {
			return err
		}
	}
	return nil
}

// clean prepares a pristine source tree: clones the repository when
// the tree is absent and a repo URL is configured, then removes the
// stale build outputs named by the plan's clean globs.
func (p *pipeline) clean(ctx context.Context) error {
	sourceDir := p.plan.Source.Dir
	if !filepath.IsAbs(sourceDir) && p.config.Paths.SourceRoot != "" {
		sourceDir = filepath.Join(p.config.Paths.SourceRoot, sourceDir)
	}
	p.sourceDir = sourceDir

	if _, err := os.Stat(sourceDir); os.IsNotExist(err) {
		if p.plan.Source.Repo == "" {
			return fmt.Errorf("source tree %s not found and the plan names no repository to clone", sourceDir)
		}
		if _, err := git.Clone(ctx, p.plan.Source.Repo, sourceDir, p.plan.Source.Ref); err != nil {
			return err
		}
		p.logger.Info("source cloned", "repo", p.plan.Source.Repo)
	} else if err != nil {
		return fmt.Errorf("stat source tree %s: %w", sourceDir, err)
	}

	// Record the exact source revision being built, when the tree is a
	// git checkout. A plain directory builds fine without one.
	if repository := git.NewRepository(sourceDir); repository.Exists() {
		head, err := repository.Head(ctx)
		if err != nil {
			return err
		}
		p.sourceCommit = head
	}

	removed := 0
	for _, pattern := range p.plan.Clean {
		matches, err := filepath.Glob(filepath.Join(sourceDir, pattern))
		if err != nil {
			return fmt.Errorf("clean pattern %q: %w", pattern, err)
		}
		for _, match := range matches {
			if err := os.RemoveAll(match); err != nil {
				return fmt.Errorf("removing %s: %w", match, err)
			}
			removed++
		}
	}
	if removed > 0 {
		p.logger.Info("stale outputs removed", "count", removed)
	}
	return nil
}

// build expands the plan's build command and env with the resolved
// variables, runs it in the source tree with output teed into the
// compressed build log, and resolves the single produced wheel.
func (p *pipeline) build(ctx context.Context) error {
	expanded, err := buildplan.ExpandBuild(p.plan.Build, p.variables)
	if err != nil {
		return err
	}

	if expanded.Timeout != "" {
		timeout, err := time.ParseDuration(expanded.Timeout)
		if err != nil {
			// Validate should have caught this, but fail loud if not.
			return fmt.Errorf("invalid timeout %q: %w", expanded.Timeout, err)
		}
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	logWriter, err := buildlog.Create(filepath.Join(os.TempDir(), p.plan.Name+".build.log.zst"))
	if err != nil {
		return err
	}
	p.buildLog = logWriter

	exitCode, err := runShellCommand(ctx, expanded.Command, p.sourceDir, sortedEnv(expanded.Env),
		io.MultiWriter(os.Stdout, logWriter))
	if closeErr := logWriter.Close(); closeErr != nil && err == nil {
		p.logger.Warn("closing build log", "error", closeErr)
	}
	if err != nil {
		return fmt.Errorf("build command: %w", err)
	}
	if exitCode != 0 {
		return fmt.Errorf("build command: exit code %d (full log: %s)", exitCode, logWriter.Path())
	}

	wheelPath, err := wheel.Resolve(filepath.Join(p.sourceDir, p.plan.Artifact.Dir), p.plan.Artifact.Pattern)
	if err != nil {
		return err
	}
	p.wheelPath = wheelPath

	tags, err := wheel.ParseFilename(filepath.Base(wheelPath))
	if err != nil {
		return fmt.Errorf("build produced %s: %w", filepath.Base(wheelPath), err)
	}
	p.logger.Info("wheel built",
		"wheel", filepath.Base(wheelPath),
		"version", tags.Version,
		"python", tags.PythonTag,
		"platform", tags.PlatformTag,
	)
	return nil
}

// publish copies the wheel to the destination with checksum
// verification, and lands the compressed build log next to it.
func (p *pipeline) publish(ctx context.Context) error {
	// Re-check: the mount can drop between validate and the end of a
	// long compile.
	if err := wheel.EnsureDestination(p.destination, p.config.Publish.RequireMount); err != nil {
		return err
	}

	info, err := os.Stat(p.wheelPath)
	if err != nil {
		return fmt.Errorf("stat wheel %s: %w", p.wheelPath, err)
	}
	if err := wheel.CheckSpace(p.destination, info.Size()); err != nil {
		return err
	}

	published, err := wheel.Publish(p.wheelPath, p.destination)
	if err != nil {
		return err
	}
	p.published = published

	logDest := filepath.Join(p.destination, filepath.Base(p.wheelPath)+".build.log.zst")
	if err := p.buildLog.CopyTo(logDest); err != nil {
		// The wheel is safely published; a failed log copy is not
		// worth failing the run over.
		p.logger.Warn("publishing build log", "error", err)
	}
	return nil
}

// sortedEnv flattens an env map into deterministic KEY=value form.
func sortedEnv(env map[string]string) []string {
	entries := make([]string, 0, len(env))
	for name, value := range env {
		entries = append(entries, name+"="+value)
	}
	sort.Strings(entries)
	return entries
}

// formatDuration formats a duration for human-readable status output.
// Uses seconds with one decimal place.
func formatDuration(duration time.Duration) string {
	return fmt.Sprintf("%.1fs", duration.Seconds())
}
