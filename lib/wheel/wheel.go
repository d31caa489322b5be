// Package wheel handles the built artifact: resolving the one wheel a
// build is expected to produce, parsing the tags embedded in its
// filename, and publishing it to the caller's destination with
// byte-level verification.
package wheel

import (
	"fmt"
	"strings"
)

// Tags are the components of a wheel filename per the binary
// distribution format:
//
//	{distribution}-{version}[-{build}]-{python tag}-{abi tag}-{platform tag}.whl
//
// For example block_sparse_attn-0.0.1-cp311-cp311-linux_x86_64.whl.
type Tags struct {
	Distribution string
	Version      string
	Build        string
	PythonTag    string
	ABITag       string
	PlatformTag  string
}

// ParseFilename parses a wheel filename into its tags. The build tag
// is optional; everything else is required.
func ParseFilename(name string) (Tags, error) {
	stem, found := strings.CutSuffix(name, ".whl")
	if !found {
		return Tags{}, fmt.Errorf("%q is not a wheel filename (missing .whl suffix)", name)
	}

	parts := strings.Split(stem, "-")
	switch len(parts) {
	case 5:
		return Tags{
			Distribution: parts[0],
			Version:      parts[1],
			PythonTag:    parts[2],
			ABITag:       parts[3],
			PlatformTag:  parts[4],
		}, nil
	case 6:
		return Tags{
			Distribution: parts[0],
			Version:      parts[1],
			Build:        parts[2],
			PythonTag:    parts[3],
			ABITag:       parts[4],
			PlatformTag:  parts[5],
		}, nil
	default:
		return Tags{}, fmt.Errorf("%q has %d dash-separated fields, want 5 or 6", name, len(parts))
	}
}

// String renders the tags back into the canonical filename.
func (t Tags) String() string {
	fields := []string{t.Distribution, t.Version}
	if t.Build != "" {
		fields = append(fields, t.Build)
	}
	fields = append(fields, t.PythonTag, t.ABITag, t.PlatformTag)
	return strings.Join(fields, "-") + ".whl"
}
