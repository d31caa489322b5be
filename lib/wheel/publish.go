package wheel

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/zeebo/blake3"
	"golang.org/x/sys/unix"
)

// Published describes a wheel copied to its destination.
type Published struct {
	// Path is the wheel's location at the destination.
	Path string

	// Size is the wheel size in bytes.
	Size int64

	// Digest is the BLAKE3 digest of the wheel contents, verified to
	// be identical on both sides of the copy.
	Digest Digest

	// ChecksumPath is the "<wheel>.b3" file written next to the wheel.
	ChecksumPath string
}

// HumanSize returns the wheel size in humanized form ("132 MiB").
func (p *Published) HumanSize() string {
	return humanize.IBytes(uint64(p.Size))
}

// EnsureDestination makes sure the destination directory exists,
// creating it (and parents) as needed. Any failure — a read-only
// parent, a missing mount — is reported as the destination being
// unavailable at the attempted path.
//
// When requireMount is set, a destination on the same device as the
// root filesystem is rejected: on notebook hosts the persistent store
// is a separate mount, and a root-device destination means the mount
// step was skipped and the artifact would vanish with the session.
func EnsureDestination(dir string, requireMount bool) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("destination unavailable: %s: %w", dir, err)
	}

	if requireMount {
		var dirStat, rootStat unix.Stat_t
		if err := unix.Stat(dir, &dirStat); err != nil {
			return fmt.Errorf("destination unavailable: %s: %w", dir, err)
		}
		if err := unix.Stat("/", &rootStat); err != nil {
			return fmt.Errorf("stat /: %w", err)
		}
		if dirStat.Dev == rootStat.Dev {
			return fmt.Errorf(
				"destination %s is on the root filesystem; the persistent store does not appear to be mounted",
				dir)
		}
	}

	return nil
}

// CheckSpace verifies the destination has room for an artifact of the
// given size. Running out of space mid-copy would leave a truncated
// wheel at the destination that pip would happily fail to install much
// later.
func CheckSpace(dir string, need int64) error {
	var stat unix.Statfs_t
	if err := unix.Statfs(dir, &stat); err != nil {
		return fmt.Errorf("statfs %s: %w", dir, err)
	}
	free := int64(stat.Bavail) * int64(stat.Bsize)
	if free < need {
		return fmt.Errorf("destination %s has %s free, need %s",
			dir, humanize.IBytes(uint64(free)), humanize.IBytes(uint64(need)))
	}
	return nil
}

// Publish copies the wheel into destDir, preserving its filename, and
// verifies the copy byte-for-byte: the source is hashed while it
// streams out, the landed file is re-read and hashed, and the two
// digests must agree. A "<wheel>.b3" checksum file is written next to
// the copy so later sessions can verify the cached artifact before
// installing it.
//
// The destination directory must already exist (see EnsureDestination).
func Publish(wheelPath, destDir string) (*Published, error) {
	source, err := os.Open(wheelPath)
	if err != nil {
		return nil, fmt.Errorf("opening artifact %s: %w", wheelPath, err)
	}
	defer source.Close()

	info, err := source.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat artifact %s: %w", wheelPath, err)
	}

	if err := CheckSpace(destDir, info.Size()); err != nil {
		return nil, err
	}

	destPath := filepath.Join(destDir, filepath.Base(wheelPath))
	dest, err := os.Create(destPath)
	if err != nil {
		return nil, fmt.Errorf("destination unavailable: %s: %w", destPath, err)
	}

	hasher := blake3.New()
	if _, err := io.Copy(dest, io.TeeReader(source, hasher)); err != nil {
		dest.Close()
		os.Remove(destPath)
		return nil, fmt.Errorf("copying to %s: %w", destPath, err)
	}
	if err := dest.Close(); err != nil {
		os.Remove(destPath)
		return nil, fmt.Errorf("closing %s: %w", destPath, err)
	}

	var sourceDigest Digest
	copy(sourceDigest[:], hasher.Sum(nil))

	// Re-read what actually landed on disk. A full write that the
	// filesystem quietly corrupted (network mounts are creative) must
	// not pass as published.
	copyDigest, err := HashFile(destPath)
	if err != nil {
		return nil, err
	}
	if copyDigest != sourceDigest {
		os.Remove(destPath)
		return nil, fmt.Errorf("copy verification failed for %s: source %s, copy %s",
			destPath, sourceDigest, copyDigest)
	}

	checksumPath := destPath + ".b3"
	checksumLine := fmt.Sprintf("%s  %s\n", sourceDigest, filepath.Base(destPath))
	if err := os.WriteFile(checksumPath, []byte(checksumLine), 0644); err != nil {
		return nil, fmt.Errorf("writing checksum %s: %w", checksumPath, err)
	}

	return &Published{
		Path:         destPath,
		Size:         info.Size(),
		Digest:       sourceDigest,
		ChecksumPath: checksumPath,
	}, nil
}
