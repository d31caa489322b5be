package doctor

import (
	"fmt"
	"io"
	"strings"

	"github.com/wheelsmith/wheelsmith/cmd/wheelsmith/cli"
)

// PrintChecklist prints check results as a human-readable checklist.
// Failures with a FixHint get an indented hint line below the check.
// Returns a *cli.ExitError with code 1 when any check failed, so the
// process exits non-zero without printing a redundant error line.
func PrintChecklist(w io.Writer, results []Result) error {
	anyFailed := false

	for _, result := range results {
		prefix := strings.ToUpper(string(result.Status))
		fmt.Fprintf(w, "[%-4s]  %-28s  %s\n", prefix, result.Name, result.Message)

		if result.Status == StatusFail {
			anyFailed = true
			if result.FixHint != "" {
				fmt.Fprintf(w, "        %-28s  hint: %s\n", "", result.FixHint)
			}
		}
	}

	fmt.Fprintln(w)

	if anyFailed {
		fmt.Fprintln(w, "Some checks failed. The build would stop at the validate step.")
		return &cli.ExitError{Code: 1}
	}

	fmt.Fprintln(w, "All checks passed.")
	return nil
}
