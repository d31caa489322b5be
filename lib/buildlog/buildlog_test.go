package buildlog

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
)

func TestWriteAndReadBack(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "build.log.zst")
	writer, err := Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	var expected bytes.Buffer
	for line := 0; line < 1000; line++ {
		chunk := fmt.Sprintf("[%4d/1000] nvcc -c kernels/block_sparse_%d.cu\n", line, line)
		expected.WriteString(chunk)
		if _, err := writer.Write([]byte(chunk)); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer file.Close()
	decoder, err := zstd.NewReader(file)
	if err != nil {
		t.Fatalf("zstd reader: %v", err)
	}
	defer decoder.Close()

	decompressed, err := io.ReadAll(decoder)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if !bytes.Equal(decompressed, expected.Bytes()) {
		t.Errorf("decompressed log differs: %d bytes, want %d", len(decompressed), expected.Len())
	}

	// Compiler output is repetitive; the compressed file must actually
	// be smaller.
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() >= int64(expected.Len()) {
		t.Errorf("compressed size %d is not smaller than input %d", info.Size(), expected.Len())
	}
}

func TestCopyTo(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "build.log.zst")
	writer, err := Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := writer.Write([]byte("hello build\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	destPath := filepath.Join(t.TempDir(), "published.log.zst")
	if err := writer.CopyTo(destPath); err != nil {
		t.Fatalf("CopyTo: %v", err)
	}

	original, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read original: %v", err)
	}
	copied, err := os.ReadFile(destPath)
	if err != nil {
		t.Fatalf("read copy: %v", err)
	}
	if !bytes.Equal(original, copied) {
		t.Error("copied log differs from original")
	}
}
