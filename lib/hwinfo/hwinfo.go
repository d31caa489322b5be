// Package hwinfo probes accelerator hardware through sysfs. Wheelsmith
// validates that a CUDA-capable GPU is actually present before starting
// a native extension build — a torch import reporting CUDA support says
// nothing when the notebook session was provisioned without a GPU, and
// discovering that tens of minutes into a compile is expensive. GPU
// enumeration is delegated to per-vendor subpackages (hwinfo/nvidia)
// that implement the GPUProber interface.
package hwinfo

// GPUInfo holds static information about one GPU, read from sysfs and
// (for the proprietary nvidia driver) /proc/driver/nvidia.
type GPUInfo struct {
	// Vendor is the human-readable PCI vendor name ("NVIDIA").
	Vendor string

	// ModelName is the marketing name ("NVIDIA A100-SXM4-40GB").
	// Empty when only the open-source driver is loaded.
	ModelName string

	// Driver is the bound kernel driver ("nvidia", "nouveau").
	Driver string

	// PCIDeviceID is the PCI device ID ("0x20b0").
	PCIDeviceID string

	// PCISlot is the PCI slot name ("0000:00:04.0").
	PCISlot string

	// PCIeLinkWidth is the current PCIe link width in lanes.
	PCIeLinkWidth int

	// UniqueID is the driver-assigned GPU UUID, when available.
	UniqueID string

	// VBIOSVersion is the video BIOS version, when available.
	VBIOSVersion string
}

// GPUProber enumerates GPU hardware for a specific vendor. Each vendor
// subpackage implements this interface.
type GPUProber interface {
	// Enumerate returns static GPU information for all GPUs managed
	// by this vendor's driver. Returns nil (not an error) if no GPUs
	// are detected for this vendor.
	Enumerate() []GPUInfo
}
