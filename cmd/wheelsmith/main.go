// Command wheelsmith builds native extension wheels on GPU notebook
// hosts and publishes them to a persistent store.
//
// The common invocation passes only the destination directory:
//
//	wheelsmith /mnt/store/wheels
//
// which runs the full build pipeline with the built-in plan. The
// subcommands expose the pipeline's pieces individually: doctor for
// host readiness, clean for source tree resets, plan for inspecting
// plan files.
package main

import (
	"fmt"
	"os"

	"github.com/wheelsmith/wheelsmith/cmd/wheelsmith/build"
	"github.com/wheelsmith/wheelsmith/cmd/wheelsmith/cli"
	"github.com/wheelsmith/wheelsmith/cmd/wheelsmith/doctor"
	"github.com/wheelsmith/wheelsmith/cmd/wheelsmith/plan"
	"github.com/wheelsmith/wheelsmith/lib/process"
	"github.com/wheelsmith/wheelsmith/lib/version"
)

func main() {
	if err := run(); err != nil {
		// Commands that print their own output (like doctor) return an
		// ExitError with the desired exit code. Don't print a redundant
		// "error:" line for those.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		process.Fatal(err)
	}
}

func run() error {
	return root().Execute(os.Args[1:])
}

// root builds the command tree. The root command carries its own Run
// so that a bare destination path dispatches to the build pipeline.
func root() *cli.Command {
	return &cli.Command{
		Name:    "wheelsmith",
		Summary: "build and publish CUDA extension wheels",
		Description: "wheelsmith compiles a native extension into a wheel and publishes\n" +
			"it to a destination directory with checksum verification.",
		Usage: "wheelsmith <destination> | wheelsmith <command> [flags]",
		Examples: []cli.Example{
			{Description: "build with the built-in plan and publish", Command: "wheelsmith /mnt/store/wheels"},
			{Description: "check host readiness first", Command: "wheelsmith doctor"},
		},
		Subcommands: []*cli.Command{
			build.New(),
			build.NewClean(),
			doctor.New(),
			plan.New(),
			versionCommand(),
		},
		Run: func(args []string) error {
			return build.Run(args, build.Options{})
		},
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:    "version",
		Summary: "print version information",
		Run: func(args []string) error {
			fmt.Println(version.Info())
			return nil
		},
	}
}
