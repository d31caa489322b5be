package version

import (
	"strings"
	"testing"
)

func TestInfo(t *testing.T) {
	info := Info()
	if !strings.Contains(info, Version) {
		t.Errorf("Info() = %q, expected it to contain version %q", info, Version)
	}
	if !strings.Contains(info, GitCommit) {
		t.Errorf("Info() = %q, expected it to contain commit %q", info, GitCommit)
	}
}

func TestFullIncludesPlatform(t *testing.T) {
	full := Full()
	if !strings.Contains(full, "Go: ") {
		t.Errorf("Full() = %q, expected a Go version line", full)
	}
	if !strings.Contains(full, "Platform: ") {
		t.Errorf("Full() = %q, expected a platform line", full)
	}
}
