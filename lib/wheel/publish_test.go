package wheel

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPublishCopiesByteForByte(t *testing.T) {
	t.Parallel()

	sourceDir := t.TempDir()
	destDir := t.TempDir()
	contents := bytes.Repeat([]byte("not actually a zip "), 4096)
	wheelPath := filepath.Join(sourceDir, "block_sparse_attn-0.0.1-cp311-cp311-linux_x86_64.whl")
	if err := os.WriteFile(wheelPath, contents, 0644); err != nil {
		t.Fatalf("write wheel: %v", err)
	}

	published, err := Publish(wheelPath, destDir)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}

	// Filename preserved.
	if filepath.Base(published.Path) != filepath.Base(wheelPath) {
		t.Errorf("published as %q, want the original filename", filepath.Base(published.Path))
	}

	// Byte-for-byte copy.
	copied, err := os.ReadFile(published.Path)
	if err != nil {
		t.Fatalf("read copy: %v", err)
	}
	if !bytes.Equal(copied, contents) {
		t.Error("copy differs from source")
	}

	if published.Size != int64(len(contents)) {
		t.Errorf("Size = %d, want %d", published.Size, len(contents))
	}

	// Checksum file names the wheel and carries the digest.
	checksum, err := os.ReadFile(published.ChecksumPath)
	if err != nil {
		t.Fatalf("read checksum: %v", err)
	}
	if !strings.Contains(string(checksum), published.Digest.String()) {
		t.Errorf("checksum file %q lacks the digest", checksum)
	}
	if !strings.Contains(string(checksum), filepath.Base(wheelPath)) {
		t.Errorf("checksum file %q lacks the filename", checksum)
	}

	// The digest matches an independent hash of the source.
	independent, err := HashFile(wheelPath)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	if independent != published.Digest {
		t.Errorf("Digest = %s, independent hash = %s", published.Digest, independent)
	}
}

func TestPublishDestinationUnavailable(t *testing.T) {
	t.Parallel()

	sourceDir := t.TempDir()
	wheelPath := filepath.Join(sourceDir, "block_sparse_attn-0.0.1-cp311-cp311-linux_x86_64.whl")
	if err := os.WriteFile(wheelPath, []byte("w"), 0644); err != nil {
		t.Fatalf("write wheel: %v", err)
	}

	// A file where the destination directory should be: MkdirAll and
	// Create both fail, and the diagnostic must say so plainly.
	blocked := filepath.Join(t.TempDir(), "wheels")
	if err := os.WriteFile(blocked, []byte("in the way"), 0644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}

	err := EnsureDestination(blocked, false)
	if err == nil {
		t.Fatal("expected an error for a blocked destination")
	}
	if !strings.Contains(err.Error(), "destination unavailable") {
		t.Errorf("error %q lacks the destination-unavailable diagnostic", err)
	}
	if !strings.Contains(err.Error(), blocked) {
		t.Errorf("error %q does not name the attempted path", err)
	}

	// Publishing into the blocked path fails the same way instead of
	// surfacing an unrelated exception.
	if _, err := Publish(wheelPath, blocked); err == nil {
		t.Error("Publish into a blocked destination succeeded")
	}
}

func TestEnsureDestinationCreates(t *testing.T) {
	t.Parallel()

	dest := filepath.Join(t.TempDir(), "wheels", "cu121")
	if err := EnsureDestination(dest, false); err != nil {
		t.Fatalf("EnsureDestination: %v", err)
	}
	info, err := os.Stat(dest)
	if err != nil || !info.IsDir() {
		t.Errorf("destination not created: %v", err)
	}
}

func TestCheckSpace(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := CheckSpace(dir, 1); err != nil {
		t.Errorf("CheckSpace(1 byte): %v", err)
	}
	// No filesystem has this much free.
	if err := CheckSpace(dir, 1<<62); err == nil {
		t.Error("CheckSpace(4 EiB) succeeded")
	}
}
