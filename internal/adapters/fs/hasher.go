package fs

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/assembly/internal/core/domain"
	"go.trai.ch/assembly/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Hasher = (*Hasher)(nil)

// Hasher fingerprints project description files.
type Hasher struct{}

// NewHasher creates a new Hasher.
func NewHasher() *Hasher {
	return &Hasher{}
}

// HashFile returns the hex encoded XXHash of the file's content.
func (h *Hasher) HashFile(path string) (string, error) {
	sum, err := h.sum(path)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%016x", sum), nil
}

// HashFiles combines the content hashes of paths, in order, into one fingerprint.
func (h *Hasher) HashFiles(paths []string) (string, error) {
	hasher := xxhash.New()
	for _, path := range paths {
		sum, err := h.HashFile(path)
		if err != nil {
			return "", err
		}
		_, _ = hasher.WriteString(path)
		_, _ = hasher.Write([]byte{0})
		_, _ = hasher.WriteString(sum)
		_, _ = hasher.Write([]byte{0})
	}
	return fmt.Sprintf("%016x", hasher.Sum64()), nil
}

func (h *Hasher) sum(path string) (uint64, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return 0, errors.Join(domain.ErrFingerprintFailed, zerr.With(zerr.Wrap(err, "failed to open file"), "path", path))
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	hasher := xxhash.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return 0, errors.Join(domain.ErrFingerprintFailed, zerr.With(zerr.Wrap(err, "failed to hash file content"), "path", path))
	}

	return hasher.Sum64(), nil
}
