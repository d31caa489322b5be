// Package envprobe gathers the build environment descriptor: the facts
// about the host (interpreter version, torch version, CUDA runtime,
// accelerator visibility) that decide whether a native extension build
// may start. The descriptor is computed once at the top of a build,
// checked against the plan's environment constraints, and discarded.
//
// Interpreter facts come from one-liner probes run through lib/python;
// hardware facts come from lib/hwinfo. Keeping the two sources separate
// means "no GPU in the machine" and "torch cannot see the GPU" produce
// different diagnostics.
package envprobe

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/wheelsmith/wheelsmith/lib/python"
)

// Descriptor holds the read-only environment facts gathered at the
// start of a build.
type Descriptor struct {
	// PythonVersion is the interpreter version ("3.11.9").
	PythonVersion string

	// TorchVersion is the installed torch version ("2.4.0+cu121").
	// Empty when torch is not importable.
	TorchVersion string

	// CUDAVersion is the CUDA runtime version torch was built against
	// ("12.1"). Empty for CPU-only torch builds.
	CUDAVersion string

	// CUDAAvailable reports torch.cuda.is_available().
	CUDAAvailable bool

	// DeviceName is the name of CUDA device 0 when available.
	DeviceName string

	// CUDAHome is the CUDA_HOME environment variable, when set.
	CUDAHome string
}

// pythonVersionProbe prints the interpreter version as one line.
const pythonVersionProbe = `import sys; print("%d.%d.%d" % sys.version_info[:3])`

// torchProbe prints torch facts as key=value lines. A missing torch
// install fails the import and surfaces through the interpreter's
// stderr, which is the diagnostic the operator needs verbatim.
const torchProbe = `import torch
print("version=" + torch.__version__)
print("cuda_version=" + (torch.version.cuda or ""))
print("cuda_available=" + ("true" if torch.cuda.is_available() else "false"))
if torch.cuda.is_available():
    print("device_name=" + torch.cuda.get_device_name(0))
`

// PythonVersion probes the interpreter version.
func PythonVersion(ctx context.Context, interp *python.Interpreter) (string, error) {
	output, err := interp.Eval(ctx, pythonVersionProbe)
	if err != nil {
		return "", fmt.Errorf("probing python version: %w", err)
	}
	version := strings.TrimSpace(output)
	if version == "" {
		return "", fmt.Errorf("probing python version: interpreter printed nothing")
	}
	return version, nil
}

// TorchFacts probes the installed torch build. Returns an error when
// torch is not importable; the interpreter's stderr (the import
// traceback tail) is included.
func TorchFacts(ctx context.Context, interp *python.Interpreter) (version, cudaVersion string, cudaAvailable bool, deviceName string, err error) {
	output, err := interp.Eval(ctx, torchProbe)
	if err != nil {
		return "", "", false, "", fmt.Errorf("probing torch: %w", err)
	}

	facts := parseKeyValueLines(output)
	version = facts["version"]
	if version == "" {
		return "", "", false, "", fmt.Errorf("probing torch: no version in probe output %q", strings.TrimSpace(output))
	}
	cudaVersion = facts["cuda_version"]
	cudaAvailable = facts["cuda_available"] == "true"
	deviceName = facts["device_name"]
	return version, cudaVersion, cudaAvailable, deviceName, nil
}

// Probe gathers the full environment descriptor.
func Probe(ctx context.Context, interp *python.Interpreter) (*Descriptor, error) {
	descriptor := &Descriptor{
		CUDAHome: os.Getenv("CUDA_HOME"),
	}

	pythonVersion, err := PythonVersion(ctx, interp)
	if err != nil {
		return nil, err
	}
	descriptor.PythonVersion = pythonVersion

	torchVersion, cudaVersion, cudaAvailable, deviceName, err := TorchFacts(ctx, interp)
	if err != nil {
		return nil, err
	}
	descriptor.TorchVersion = torchVersion
	descriptor.CUDAVersion = cudaVersion
	descriptor.CUDAAvailable = cudaAvailable
	descriptor.DeviceName = deviceName

	return descriptor, nil
}

// parseKeyValueLines parses "key=value" lines into a map. Lines
// without "=" are ignored. Values keep embedded "=" characters.
func parseKeyValueLines(output string) map[string]string {
	facts := make(map[string]string)
	for _, line := range strings.Split(output, "\n") {
		parts := strings.SplitN(strings.TrimSpace(line), "=", 2)
		if len(parts) != 2 || parts[0] == "" {
			continue
		}
		facts[parts[0]] = parts[1]
	}
	return facts
}
