// Package build implements the wheelsmith build command: the linear
// fail-fast pipeline that validates the host environment, installs the
// build toolchain, cleans stale outputs, compiles the extension wheel,
// and publishes it to the destination directory.
//
// The five steps run strictly in order and the first failure stops the
// run. Step progress is printed to stdout; the underlying build
// command's own output streams through unmodified and is additionally
// captured into a zstd-compressed log that is published next to the
// wheel. When a result log path is configured (--result-log or
// WHEELSMITH_RESULT_PATH), each step outcome is appended as a JSONL
// line so a supervising process can follow progress and survive a
// crash with partial results intact.
package build
