// Package checksum provides the content hashers used to bind fragments to
// their source.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/helixml/splitmerge/domain/fragment"
)

var _ fragment.Hasher = SHA256

// SHA256 returns the lowercase hex SHA-256 digest of everything r yields.
func SHA256(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// File hashes the file at path with hasher. Open and read failures are
// returned as TransferErrors.
func File(path string, hasher fragment.Hasher) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fragment.NewTransferError("open", path, err)
	}
	defer func() { _ = f.Close() }()

	sum, err := hasher(f)
	if err != nil {
		return "", fragment.NewTransferError("checksum", path, err)
	}
	return sum, nil
}

// Section hashes the first size bytes readable from r.
func Section(r io.ReaderAt, size int64, hasher fragment.Hasher) (string, error) {
	sum, err := hasher(io.NewSectionReader(r, 0, size))
	if err != nil {
		return "", fmt.Errorf("checksum: %w", err)
	}
	return sum, nil
}
