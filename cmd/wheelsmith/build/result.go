package build

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/wheelsmith/wheelsmith/lib/wheel"
)

// ResultPathEnvVar names the JSONL result log path when the
// --result-log flag is not given. When neither is set, the result log
// is disabled (all methods are nil-safe no-ops).
const ResultPathEnvVar = "WHEELSMITH_RESULT_PATH"

// resultLog writes structured JSONL to a file during pipeline
// execution. Each line is an independent JSON object, making the log:
//
//   - Crash-safe: a SIGKILL mid-build preserves all completed step
//     results. A single JSON file would be truncated and unparseable.
//   - Streamable: a supervising process can tail the file for
//     step-by-step progress instead of waiting for completion.
type resultLog struct {
	logger  *slog.Logger
	file    *os.File
	encoder *json.Encoder
}

// newResultLog creates a JSONL result log at the given path. The file
// is created (truncating any existing content) immediately.
func newResultLog(path string, logger *slog.Logger) (*resultLog, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating result log %s: %w", path, err)
	}
	return &resultLog{
		logger:  logger,
		file:    file,
		encoder: json.NewEncoder(file),
	}, nil
}

// Close flushes and closes the result log file.
func (r *resultLog) Close() error {
	if r == nil {
		return nil
	}
	return r.file.Close()
}

// writeStart records pipeline start.
func (r *resultLog) writeStart(plan string, stepCount int) {
	if r == nil {
		return
	}
	r.write(resultStartEntry{
		Type:      "start",
		Plan:      plan,
		StepCount: stepCount,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// writeStep records the outcome of a single step.
func (r *resultLog) writeStep(index int, name, status string, durationMS int64, stepError string) {
	if r == nil {
		return
	}
	r.write(resultStepEntry{
		Type:       "step",
		Index:      index,
		Name:       name,
		Status:     status,
		DurationMS: durationMS,
		Error:      stepError,
	})
}

// writeComplete records successful completion with the published wheel
// and the source revision it was built from.
func (r *resultLog) writeComplete(durationMS int64, published *wheel.Published, commit string) {
	if r == nil {
		return
	}
	r.write(resultCompleteEntry{
		Type:       "complete",
		Status:     "ok",
		DurationMS: durationMS,
		Wheel:      published.Path,
		SizeBytes:  published.Size,
		Digest:     published.Digest.String(),
		Commit:     commit,
	})
}

// writeFailed records pipeline failure.
func (r *resultLog) writeFailed(failedStep, errorMessage string, durationMS int64) {
	if r == nil {
		return
	}
	r.write(resultFailedEntry{
		Type:       "failed",
		Status:     "failed",
		Error:      errorMessage,
		FailedStep: failedStep,
		DurationMS: durationMS,
	})
}

func (r *resultLog) write(entry any) {
	if err := r.encoder.Encode(entry); err != nil {
		r.logger.Warn("failed to write result log entry", "error", err)
		return
	}
	// Sync after each line so that partial results survive a crash and
	// are visible to readers tailing for progress immediately.
	if err := r.file.Sync(); err != nil {
		r.logger.Warn("failed to sync result log", "error", err)
	}
}

// JSONL entry types. Each struct documents exactly which fields appear
// in that line type. Separate structs (rather than one with omitempty
// everywhere) make the wire format explicit and self-documenting.

// resultStartEntry is the first line, written at pipeline start.
type resultStartEntry struct {
	Type      string `json:"type"`
	Plan      string `json:"plan"`
	StepCount int    `json:"step_count"`
	Timestamp string `json:"timestamp"`
}

// resultStepEntry is written after each step completes.
type resultStepEntry struct {
	Type       string `json:"type"`
	Index      int    `json:"index"`
	Name       string `json:"name"`
	Status     string `json:"status"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// resultCompleteEntry is the last line on successful completion.
type resultCompleteEntry struct {
	Type       string `json:"type"`
	Status     string `json:"status"`
	DurationMS int64  `json:"duration_ms"`
	Wheel      string `json:"wheel"`
	SizeBytes  int64  `json:"size_bytes"`
	Digest     string `json:"digest"`
	Commit     string `json:"commit,omitempty"`
}

// resultFailedEntry is the last line when the pipeline fails.
type resultFailedEntry struct {
	Type       string `json:"type"`
	Status     string `json:"status"`
	Error      string `json:"error"`
	FailedStep string `json:"failed_step"`
	DurationMS int64  `json:"duration_ms"`
}
