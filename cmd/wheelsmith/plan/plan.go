// Package plan implements the "wheelsmith plan" command group for
// inspecting build plans without running them.
package plan

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/wheelsmith/wheelsmith/cmd/wheelsmith/cli"
	"github.com/wheelsmith/wheelsmith/lib/buildplan"
)

// New returns the plan command group.
func New() *cli.Command {
	return &cli.Command{
		Name:    "plan",
		Summary: "inspect build plans",
		Subcommands: []*cli.Command{
			checkCommand(),
			showCommand(),
		},
	}
}

// checkCommand returns the "check" subcommand for validating plan files.
func checkCommand() *cli.Command {
	return &cli.Command{
		Name:    "check",
		Summary: "validate a plan file",
		Description: `Validate a build plan file. Checks that the JSONC is well-formed and
structurally sound: required fields are present, clean globs stay
inside the source tree, the timeout parses, and so on.

Purely local — no interpreter probe, no network. Use "wheelsmith
doctor" to additionally check the host environment against the plan.

Plan files use JSONC: JSON extended with // line comments,
/* block comments */, and trailing commas. Comments are stripped
before validation.`,
		Usage: "wheelsmith plan check <file>",
		Examples: []cli.Example{
			{Description: "validate a plan before a long build", Command: "wheelsmith plan check custom.jsonc"},
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: wheelsmith plan check <file>")
			}

			path := args[0]
			plan, err := buildplan.ReadFile(path)
			if err != nil {
				return err
			}

			issues := buildplan.Validate(plan)
			if len(issues) > 0 {
				for _, issue := range issues {
					fmt.Fprintf(os.Stderr, "  - %s\n", issue)
				}
				return fmt.Errorf("%s: %d validation issue(s) found", path, len(issues))
			}

			fmt.Fprintf(os.Stdout, "%s: valid\n", path)
			return nil
		},
	}
}

// showCommand returns the "show" subcommand for displaying a plan.
func showCommand() *cli.Command {
	return &cli.Command{
		Name:    "show",
		Summary: "show a plan's resolved contents",
		Description: `Display a plan's definition: source location, environment
constraints, variables with their defaults, dependencies, and the
build command. With no file argument, shows the built-in plan.`,
		Usage: "wheelsmith plan show [file]",
		Examples: []cli.Example{
			{Description: "show the built-in plan", Command: "wheelsmith plan show"},
		},
		Run: func(args []string) error {
			var plan *buildplan.Plan
			switch len(args) {
			case 0:
				plan = buildplan.Default()
			case 1:
				var err error
				plan, err = buildplan.ReadFile(args[0])
				if err != nil {
					return err
				}
			default:
				return fmt.Errorf("usage: wheelsmith plan show [file]")
			}
			Print(os.Stdout, plan)
			return nil
		},
	}
}

// Print writes a human-readable rendering of the plan.
func Print(w io.Writer, plan *buildplan.Plan) {
	fmt.Fprintf(w, "%s\n", plan.Name)
	if plan.Description != "" {
		fmt.Fprintf(w, "  %s\n", plan.Description)
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "  source\t%s\n", plan.Source.Dir)
	if plan.Source.Repo != "" {
		repo := plan.Source.Repo
		if plan.Source.Ref != "" {
			repo += " @ " + plan.Source.Ref
		}
		fmt.Fprintf(tw, "  repo\t%s\n", repo)
	}
	if len(plan.Environment.Python) > 0 {
		fmt.Fprintf(tw, "  python\t%s\n", strings.Join(plan.Environment.Python, ", "))
	}
	if len(plan.Environment.Torch) > 0 {
		fmt.Fprintf(tw, "  torch\t%s\n", strings.Join(plan.Environment.Torch, ", "))
	}
	if len(plan.Environment.CUDA) > 0 {
		fmt.Fprintf(tw, "  cuda\t%s\n", strings.Join(plan.Environment.CUDA, ", "))
	}
	fmt.Fprintf(tw, "  accelerator\t%v\n", plan.Environment.RequireAccelerator)
	fmt.Fprintf(tw, "  dependencies\t%s\n", strings.Join(plan.Dependencies, ", "))
	fmt.Fprintf(tw, "  clean\t%s\n", strings.Join(plan.Clean, ", "))
	fmt.Fprintf(tw, "  build\t%s\n", plan.Build.Command)
	if plan.Build.Timeout != "" {
		fmt.Fprintf(tw, "  timeout\t%s\n", plan.Build.Timeout)
	}
	fmt.Fprintf(tw, "  artifact\t%s\n", plan.Artifact.Dir+"/"+plan.Artifact.Pattern)
	tw.Flush()

	if len(plan.Variables) > 0 {
		fmt.Fprintf(w, "\nVariables:\n")
		names := make([]string, 0, len(plan.Variables))
		for name := range plan.Variables {
			names = append(names, name)
		}
		sort.Strings(names)

		vw := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
		for _, name := range names {
			variable := plan.Variables[name]
			value := variable.Default
			if variable.Required {
				value = "(required)"
			}
			fmt.Fprintf(vw, "  %s\t%s\t%s\n", name, value, variable.Description)
		}
		vw.Flush()
	}
}
