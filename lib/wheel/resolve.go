package wheel

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Resolve finds the single wheel matching pattern in dir. The build is
// expected to produce exactly one artifact; zero matches means the
// build silently produced nothing usable, and multiple matches means a
// stale artifact survived the clean step or the pattern is too wide.
// Both are errors that need the caller's eyes on the build output
// directory — guessing here would publish the wrong wheel.
func Resolve(dir, pattern string) (string, error) {
	if _, err := os.Stat(dir); err != nil {
		return "", fmt.Errorf("build output directory %s: %w", dir, err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return "", fmt.Errorf("matching %q in %s: %w", pattern, dir, err)
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no artifact matching %q in %s", pattern, dir)
	case 1:
		return matches[0], nil
	default:
		names := make([]string, len(matches))
		for index, match := range matches {
			names[index] = filepath.Base(match)
		}
		return "", fmt.Errorf(
			"%d artifacts match %q in %s (%s); remove the stale ones and rerun",
			len(matches), pattern, dir, strings.Join(names, ", "))
	}
}
