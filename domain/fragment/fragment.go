// Package fragment provides the domain types for splitting a file into
// ordered byte-range fragments and merging them back.
package fragment

import (
	"io"
	"path/filepath"
)

// Hasher computes the content checksum of everything r yields, as a
// lowercase hex string.
type Hasher func(r io.Reader) (string, error)

// Fragment is one contiguous byte range of a source file persisted as its
// own file. Immutable value object.
type Fragment struct {
	path     string
	ordinal  int
	total    int
	size     int64
	checksum string
}

// NewFragment creates a Fragment.
func NewFragment(path string, ordinal, total int, size int64, checksum string) Fragment {
	return Fragment{
		path:     path,
		ordinal:  ordinal,
		total:    total,
		size:     size,
		checksum: checksum,
	}
}

// Path returns the fragment file path.
func (f Fragment) Path() string { return f.path }

// FileName returns the base name of the fragment file.
func (f Fragment) FileName() string { return filepath.Base(f.path) }

// Ordinal returns the 1-based position of the fragment.
func (f Fragment) Ordinal() int { return f.ordinal }

// Total returns the number of fragments in the split.
func (f Fragment) Total() int { return f.total }

// Size returns the fragment length in bytes.
func (f Fragment) Size() int64 { return f.size }

// Checksum returns the checksum of the source the fragment was cut from.
func (f Fragment) Checksum() string { return f.checksum }
