package build

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/wheelsmith/wheelsmith/cmd/wheelsmith/cli"
	"github.com/wheelsmith/wheelsmith/lib/buildplan"
	"github.com/wheelsmith/wheelsmith/lib/config"
	"github.com/wheelsmith/wheelsmith/lib/python"
)

// New returns the build command. The same Run function also backs the
// root command's bare-destination invocation ("wheelsmith /mnt/store").
func New() *cli.Command {
	var options Options
	return &cli.Command{
		Name:    "build",
		Summary: "run the build pipeline and publish the wheel",
		Description: "Build the extension wheel and publish it to the destination directory.\n\n" +
			"The pipeline runs five steps in order and stops at the first failure:\n" +
			"validate, install-deps, clean, build, publish.",
		Usage: "wheelsmith build [flags] <destination>",
		Examples: []cli.Example{
			{Description: "build with the built-in plan", Command: "wheelsmith build /mnt/store/wheels"},
			{Description: "build a custom plan with a result log", Command: "wheelsmith build --plan custom.jsonc --result-log /tmp/result.jsonl /mnt/store/wheels"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("build", pflag.ContinueOnError)
			flagSet.StringVar(&options.PlanPath, "plan", "", "build plan file (JSONC); defaults to the built-in plan")
			flagSet.StringVar(&options.ConfigPath, "config", "", "host config file (YAML)")
			flagSet.StringVar(&options.ResultPath, "result-log", "", "JSONL result log path")
			return flagSet
		},
		Run: func(args []string) error {
			return Run(args, options)
		},
	}
}

// Options carries the build command's flag values. The root command
// constructs an empty Options when dispatching a bare destination path.
type Options struct {
	PlanPath   string
	ConfigPath string
	ResultPath string
}

// Run executes the build pipeline against the destination named by the
// single positional argument.
func Run(args []string, options Options) error {
	if len(args) != 1 {
		return fmt.Errorf("expected exactly one destination directory, got %d arguments", len(args))
	}
	destination := args[0]

	cfg, err := config.Resolve(options.ConfigPath)
	if err != nil {
		return err
	}

	plan, err := loadPlan(options.PlanPath, cfg)
	if err != nil {
		return err
	}

	logger := cli.NewCommandLogger().With("command", "build", "plan", plan.Name)

	results, err := openResultLog(options.ResultPath, logger)
	if err != nil {
		return err
	}
	defer results.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	interpreter := cfg.Python.Interpreter
	if interpreter == "" {
		interpreter = python.DefaultExecutable
	}

	pipe := &pipeline{
		plan:        plan,
		config:      cfg,
		destination: destination,
		interpreter: python.New(interpreter),
		logger:      logger,
		results:     results,
	}
	return pipe.Execute(ctx)
}

// loadPlan resolves the build plan: the --plan flag wins, then the
// config's paths.plan, then the built-in default.
func loadPlan(flagValue string, cfg *config.Config) (*buildplan.Plan, error) {
	path := flagValue
	if path == "" {
		path = cfg.Paths.Plan
	}
	if path == "" {
		return buildplan.Default(), nil
	}
	return buildplan.ReadFile(path)
}

// openResultLog creates the JSONL result log when a path is configured
// via flag or WHEELSMITH_RESULT_PATH. A nil *resultLog is valid: all
// its methods are no-ops.
func openResultLog(flagValue string, logger *slog.Logger) (*resultLog, error) {
	path := flagValue
	if path == "" {
		path = os.Getenv(ResultPathEnvVar)
	}
	if path == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating result log directory: %w", err)
	}
	return newResultLog(path, logger)
}
