package build

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/wheelsmith/wheelsmith/cmd/wheelsmith/cli"
	"github.com/wheelsmith/wheelsmith/lib/buildplan"
	"github.com/wheelsmith/wheelsmith/lib/config"
)

// NewClean returns the standalone clean command: just the pipeline's
// clean step, for resetting a source tree without rebuilding.
func NewClean() *cli.Command {
	var planPath, configPath string
	return &cli.Command{
		Name:    "clean",
		Summary: "remove stale build outputs from the source tree",
		Description: "Remove the plan's stale build outputs (build/, dist/, *.egg-info)\n" +
			"from the source tree without running a build. Clones the source\n" +
			"first when it is absent and the plan names a repository.",
		Usage: "wheelsmith clean [flags]",
		Examples: []cli.Example{
			{Description: "reset the source tree for the built-in plan", Command: "wheelsmith clean"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("clean", pflag.ContinueOnError)
			flagSet.StringVar(&planPath, "plan", "", "build plan file (JSONC); defaults to the built-in plan")
			flagSet.StringVar(&configPath, "config", "", "host config file (YAML)")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 0 {
				return fmt.Errorf("clean takes no positional arguments")
			}

			cfg, err := config.Resolve(configPath)
			if err != nil {
				return err
			}
			plan, err := loadPlan(planPath, cfg)
			if err != nil {
				return err
			}
			if issues := buildplan.Validate(plan); len(issues) > 0 {
				return fmt.Errorf("plan %q is invalid: %s", plan.Name, issues[0])
			}

			pipe := &pipeline{
				plan:   plan,
				config: cfg,
				logger: cli.NewCommandLogger().With("command", "clean", "plan", plan.Name),
			}
			if err := pipe.clean(context.Background()); err != nil {
				return err
			}
			fmt.Printf("[clean] %s is pristine\n", pipe.sourceDir)
			return nil
		},
	}
}
