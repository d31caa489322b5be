package doctor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/pflag"

	"github.com/wheelsmith/wheelsmith/cmd/wheelsmith/cli"
	checklist "github.com/wheelsmith/wheelsmith/cmd/wheelsmith/cli/doctor"
	"github.com/wheelsmith/wheelsmith/lib/buildplan"
	"github.com/wheelsmith/wheelsmith/lib/config"
	"github.com/wheelsmith/wheelsmith/lib/envprobe"
	"github.com/wheelsmith/wheelsmith/lib/hwinfo"
	"github.com/wheelsmith/wheelsmith/lib/hwinfo/nvidia"
	"github.com/wheelsmith/wheelsmith/lib/python"
)

// New returns the doctor command: the same environment probes the
// build's validate step runs, presented as a checklist without
// starting a build.
func New() *cli.Command {
	var planPath, configPath string
	var jsonOutput bool
	return &cli.Command{
		Name:    "doctor",
		Summary: "check host readiness for a build",
		Description: "Probe the host environment and report each readiness check.\n\n" +
			"Runs the same probes as the build's validate step: interpreter\n" +
			"version, torch and its CUDA runtime, accelerator visibility, and\n" +
			"the git toolchain for source cloning.",
		Usage: "wheelsmith doctor [flags]",
		Examples: []cli.Example{
			{Description: "check readiness for the built-in plan", Command: "wheelsmith doctor"},
			{Description: "machine-readable output", Command: "wheelsmith doctor --json"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("doctor", pflag.ContinueOnError)
			flagSet.StringVar(&planPath, "plan", "", "build plan file (JSONC); defaults to the built-in plan")
			flagSet.StringVar(&configPath, "config", "", "host config file (YAML)")
			flagSet.BoolVar(&jsonOutput, "json", false, "emit results as JSON")
			return flagSet
		},
		Run: func(args []string) error {
			return run(planPath, configPath, jsonOutput)
		},
	}
}

func run(planPath, configPath string, jsonOutput bool) error {
	cfg, err := config.Resolve(configPath)
	if err != nil {
		return err
	}

	plan := buildplan.Default()
	if path := firstNonEmpty(planPath, cfg.Paths.Plan); path != "" {
		plan, err = buildplan.ReadFile(path)
		if err != nil {
			return err
		}
	}

	executable := cfg.Python.Interpreter
	if executable == "" {
		executable = python.DefaultExecutable
	}

	ctx := context.Background()
	interpreter := python.New(executable)

	// Probe in two stages rather than envprobe.Probe: a missing torch
	// is its own checklist line, not an interpreter failure.
	descriptor := &envprobe.Descriptor{CUDAHome: os.Getenv("CUDA_HOME")}
	pythonVersion, probeErr := envprobe.PythonVersion(ctx, interpreter)
	if probeErr == nil {
		descriptor.PythonVersion = pythonVersion
		torchVersion, cudaVersion, cudaAvailable, deviceName, err := envprobe.TorchFacts(ctx, interpreter)
		if err == nil {
			descriptor.TorchVersion = torchVersion
			descriptor.CUDAVersion = cudaVersion
			descriptor.CUDAAvailable = cudaAvailable
			descriptor.DeviceName = deviceName
		}
	}

	gpus := nvidia.NewProber().Enumerate()
	_, gitErr := exec.LookPath("git")

	results := gatherResults(plan, descriptor, probeErr, gpus, gitErr)

	if jsonOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(checklist.BuildJSON(results)); err != nil {
			return err
		}
		for _, result := range results {
			if result.Status == checklist.StatusFail {
				return &cli.ExitError{Code: 1}
			}
		}
		return nil
	}
	return checklist.PrintChecklist(os.Stdout, results)
}

// gatherResults turns the raw probe outcomes into checklist results.
// Pure so tests can exercise every combination without a live
// interpreter or GPU.
func gatherResults(plan *buildplan.Plan, descriptor *envprobe.Descriptor, probeErr error, gpus []hwinfo.GPUInfo, gitErr error) []checklist.Result {
	var results []checklist.Result

	if probeErr != nil {
		results = append(results,
			checklist.FailWithHint("python", probeErr.Error(), "install python3, or point python.interpreter at the right executable"),
			checklist.Skip("torch", "interpreter probe failed"),
		)
	} else {
		results = append(results, versionResult("python", descriptor.PythonVersion, plan.Environment.Python))

		if descriptor.TorchVersion == "" {
			results = append(results, checklist.FailWithHint("torch", "torch is not importable", "pip install torch"))
		} else {
			results = append(results, versionResult("torch", descriptor.TorchVersion, plan.Environment.Torch))

			if descriptor.CUDAVersion == "" {
				results = append(results, checklist.Fail("cuda runtime", "torch build has no CUDA support"))
			} else {
				results = append(results, versionResult("cuda runtime", descriptor.CUDAVersion, plan.Environment.CUDA))
			}
		}
	}

	if probeErr == nil {
		if descriptor.CUDAHome == "" {
			results = append(results, checklist.Warn("cuda home", "CUDA_HOME is not set"))
		} else {
			results = append(results, checklist.Pass("cuda home", descriptor.CUDAHome))
		}
	}

	results = append(results, acceleratorResults(plan, descriptor, probeErr, gpus)...)

	if gitErr != nil {
		if plan.Source.Repo != "" {
			results = append(results, checklist.FailWithHint("git", "git not found in PATH", "install git to clone the source repository"))
		} else {
			results = append(results, checklist.Warn("git", "git not found in PATH"))
		}
	} else {
		results = append(results, checklist.Pass("git", "found in PATH"))
	}

	return results
}

// acceleratorResults covers the two distinct accelerator facts: the
// kernel sees an NVIDIA device, and torch can use it. Keeping them
// separate distinguishes "no GPU in the machine" from "driver or torch
// misconfigured".
func acceleratorResults(plan *buildplan.Plan, descriptor *envprobe.Descriptor, probeErr error, gpus []hwinfo.GPUInfo) []checklist.Result {
	var results []checklist.Result

	if len(gpus) == 0 {
		if plan.Environment.RequireAccelerator {
			results = append(results, checklist.FailWithHint("gpu device", "no NVIDIA device visible to the kernel",
				"switch the host to a GPU runtime"))
		} else {
			results = append(results, checklist.Warn("gpu device", "no NVIDIA device visible to the kernel"))
		}
	} else {
		names := make([]string, 0, len(gpus))
		for _, gpu := range gpus {
			name := gpu.ModelName
			if name == "" {
				name = gpu.PCIDeviceID
			}
			names = append(names, name)
		}
		results = append(results, checklist.Pass("gpu device", strings.Join(names, ", ")))
	}

	switch {
	case probeErr != nil:
		results = append(results, checklist.Skip("torch cuda", "interpreter probe failed"))
	case descriptor.TorchVersion == "":
		results = append(results, checklist.Skip("torch cuda", "torch not importable"))
	case descriptor.CUDAAvailable:
		results = append(results, checklist.Pass("torch cuda", descriptor.DeviceName))
	case plan.Environment.RequireAccelerator:
		results = append(results, checklist.FailWithHint("torch cuda", "torch.cuda.is_available() is false",
			"check the NVIDIA driver and that torch was installed with CUDA support"))
	default:
		results = append(results, checklist.Warn("torch cuda", "torch.cuda.is_available() is false"))
	}

	return results
}

// versionResult checks an actual version against the plan's supported
// prefixes. An empty supported list accepts anything.
func versionResult(name, actual string, supported []string) checklist.Result {
	if envprobe.VersionSupported(actual, supported) {
		return checklist.Pass(name, actual)
	}
	return checklist.Fail(name, fmt.Sprintf("%s is not among supported versions %v", actual, supported))
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
