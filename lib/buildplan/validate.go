package buildplan

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Validate checks a Plan for structural issues. Returns a list of
// human-readable issue descriptions. An empty list means the plan is
// valid.
//
// Structural checks include:
//   - Name and source.dir are required
//   - Clean patterns must stay inside the source tree (relative, no "..")
//   - build.command is required
//   - build.timeout (when present) must be parseable by time.ParseDuration
//   - artifact.dir and artifact.pattern are required
//   - artifact.pattern must be a valid glob
//   - source.ref without source.repo is meaningless
func Validate(plan *Plan) []string {
	var issues []string

	if plan.Name == "" {
		issues = append(issues, "name is required")
	}

	if plan.Source.Dir == "" {
		issues = append(issues, "source.dir is required")
	}
	if plan.Source.Ref != "" && plan.Source.Repo == "" {
		issues = append(issues, "source.ref is set but source.repo is not (nothing to clone)")
	}

	// Clean is destructive — every pattern must resolve inside the
	// source tree. Absolute paths and parent traversal would let a
	// typo delete unrelated directories.
	for index, pattern := range plan.Clean {
		prefix := fmt.Sprintf("clean[%d] %q", index, pattern)
		switch {
		case pattern == "":
			issues = append(issues, fmt.Sprintf("clean[%d]: pattern is empty", index))
		case filepath.IsAbs(pattern):
			issues = append(issues, prefix+": absolute paths are not allowed")
		case pattern == ".." || strings.HasPrefix(pattern, "../") || strings.Contains(pattern, "/../"):
			issues = append(issues, prefix+": must not escape the source tree")
		default:
			if _, err := filepath.Match(pattern, ""); err != nil {
				issues = append(issues, fmt.Sprintf("%s: invalid glob: %v", prefix, err))
			}
		}
	}

	if plan.Build.Command == "" {
		issues = append(issues, "build.command is required")
	}
	if plan.Build.Timeout != "" {
		if _, err := time.ParseDuration(plan.Build.Timeout); err != nil {
			issues = append(issues, fmt.Sprintf("invalid build.timeout %q: %v", plan.Build.Timeout, err))
		}
	}

	if plan.Artifact.Dir == "" {
		issues = append(issues, "artifact.dir is required")
	}
	if plan.Artifact.Pattern == "" {
		issues = append(issues, "artifact.pattern is required")
	} else if _, err := filepath.Match(plan.Artifact.Pattern, ""); err != nil {
		issues = append(issues, fmt.Sprintf("invalid artifact.pattern %q: %v", plan.Artifact.Pattern, err))
	}

	for index, spec := range plan.Dependencies {
		if strings.TrimSpace(spec) == "" {
			issues = append(issues, fmt.Sprintf("dependencies[%d]: spec is empty", index))
		}
	}

	return issues
}
