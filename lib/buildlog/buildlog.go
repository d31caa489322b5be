// Package buildlog captures build output to a zstd-compressed log
// file. Native extension builds emit megabytes of compiler output;
// the compressed log is cheap enough to publish next to the wheel, so
// a later session can answer "what produced this artifact" without
// rebuilding.
package buildlog

import (
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

// Writer is an io.Writer that compresses everything written to it into
// a zstd file. Wire it into an io.MultiWriter alongside os.Stdout so
// the operator still sees the build stream live.
type Writer struct {
	path    string
	file    *os.File
	encoder *zstd.Encoder
}

// Create opens a compressed log file at path, truncating any previous
// content.
func Create(path string) (*Writer, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating build log %s: %w", path, err)
	}

	encoder, err := zstd.NewWriter(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("initializing zstd writer for %s: %w", path, err)
	}

	return &Writer{path: path, file: file, encoder: encoder}, nil
}

// Path returns the log file location.
func (w *Writer) Path() string {
	return w.path
}

// Write implements io.Writer.
func (w *Writer) Write(data []byte) (int, error) {
	return w.encoder.Write(data)
}

// Close flushes the compressed stream and closes the file. The log is
// not readable until Close returns.
func (w *Writer) Close() error {
	if err := w.encoder.Close(); err != nil {
		w.file.Close()
		return fmt.Errorf("finalizing build log %s: %w", w.path, err)
	}
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("closing build log %s: %w", w.path, err)
	}
	return nil
}

// CopyTo copies the finished log file to destPath. Call after Close.
func (w *Writer) CopyTo(destPath string) error {
	source, err := os.Open(w.path)
	if err != nil {
		return fmt.Errorf("opening build log %s: %w", w.path, err)
	}
	defer source.Close()

	dest, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", destPath, err)
	}
	if _, err := io.Copy(dest, source); err != nil {
		dest.Close()
		return fmt.Errorf("copying build log to %s: %w", destPath, err)
	}
	return dest.Close()
}
