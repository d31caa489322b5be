package wheel

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeWheel(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("wheel contents: "+name), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestResolveExactlyOne(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	expected := writeWheel(t, dir, "block_sparse_attn-0.0.1-cp311-cp311-linux_x86_64.whl")
	writeWheel(t, dir, "unrelated-1.0-py3-none-any.whl")

	got, err := Resolve(dir, "block_sparse_attn-*.whl")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != expected {
		t.Errorf("Resolve = %q, want %q", got, expected)
	}
}

func TestResolveZeroMatches(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := Resolve(dir, "block_sparse_attn-*.whl")
	if err == nil {
		t.Fatal("expected an error for zero matches")
	}
	if !strings.Contains(err.Error(), "no artifact matching") {
		t.Errorf("error %q lacks the zero-match diagnostic", err)
	}
}

func TestResolveMultipleMatches(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeWheel(t, dir, "block_sparse_attn-0.0.1-cp311-cp311-linux_x86_64.whl")
	writeWheel(t, dir, "block_sparse_attn-0.0.2-cp311-cp311-linux_x86_64.whl")

	_, err := Resolve(dir, "block_sparse_attn-*.whl")
	if err == nil {
		t.Fatal("expected an error for multiple matches")
	}
	// The error must name every candidate so the caller can
	// disambiguate without re-listing the directory.
	if !strings.Contains(err.Error(), "0.0.1") || !strings.Contains(err.Error(), "0.0.2") {
		t.Errorf("error %q does not list all matches", err)
	}
}

func TestResolveMissingDir(t *testing.T) {
	t.Parallel()

	_, err := Resolve(filepath.Join(t.TempDir(), "dist"), "*.whl")
	if err == nil {
		t.Fatal("expected an error for a missing build output directory")
	}
}
