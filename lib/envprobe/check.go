package envprobe

import (
	"fmt"
	"strings"

	"github.com/wheelsmith/wheelsmith/lib/buildplan"
	"github.com/wheelsmith/wheelsmith/lib/hwinfo"
)

// Check compares a gathered descriptor (and the kernel's view of the
// accelerator) against a plan's environment constraints. Returns a
// list of human-readable mismatch descriptions with expected and
// actual values. An empty list means the environment is supported.
func Check(descriptor *Descriptor, env buildplan.EnvironmentSpec, gpus []hwinfo.GPUInfo) []string {
	var issues []string

	if !VersionSupported(descriptor.PythonVersion, env.Python) {
		issues = append(issues, fmt.Sprintf(
			"python version %s is not supported (expected one of: %s)",
			descriptor.PythonVersion, strings.Join(env.Python, ", ")))
	}

	if !VersionSupported(descriptor.TorchVersion, env.Torch) {
		issues = append(issues, fmt.Sprintf(
			"torch version %s is not supported (expected one of: %s)",
			descriptor.TorchVersion, strings.Join(env.Torch, ", ")))
	}

	if len(env.CUDA) > 0 {
		if descriptor.CUDAVersion == "" {
			issues = append(issues, fmt.Sprintf(
				"torch build has no CUDA runtime (expected one of: %s)",
				strings.Join(env.CUDA, ", ")))
		} else if !VersionSupported(descriptor.CUDAVersion, env.CUDA) {
			issues = append(issues, fmt.Sprintf(
				"CUDA runtime %s is not supported (expected one of: %s)",
				descriptor.CUDAVersion, strings.Join(env.CUDA, ", ")))
		}
	}

	if env.RequireAccelerator {
		if len(gpus) == 0 {
			issues = append(issues, "no NVIDIA GPU is visible to the kernel (accelerator required)")
		}
		if !descriptor.CUDAAvailable {
			issues = append(issues, "torch.cuda.is_available() is false (accelerator required)")
		}
	}

	return issues
}

// VersionSupported reports whether actual matches one of the supported
// version prefixes. Matching is on version segment boundaries: "3.11"
// accepts "3.11.9" but not "3.1" accepting "3.11". A local version
// suffix on actual ("2.4.0+cu121") is stripped before matching. An
// empty supported list accepts anything.
func VersionSupported(actual string, supported []string) bool {
	if len(supported) == 0 {
		return true
	}
	release, _, _ := strings.Cut(actual, "+")
	for _, prefix := range supported {
		if release == prefix || strings.HasPrefix(release, prefix+".") {
			return true
		}
	}
	return false
}
