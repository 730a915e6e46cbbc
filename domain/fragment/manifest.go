package fragment

import (
	"errors"
	"fmt"
	"strings"
)

// ManifestFileName is the sidecar file written next to the fragments of a split.
const ManifestFileName = "splitmerge.manifest.yaml"

// ErrNoManifest indicates that a fragment directory has no manifest.
var ErrNoManifest = errors.New("no manifest")

// ManifestStore reads and writes the sidecar manifest of a fragment directory.
type ManifestStore interface {
	Write(dir string, m Manifest) error
	Read(dir string) (Manifest, error)
}

// ManifestEntry describes one fragment listed in a manifest.
type ManifestEntry struct {
	Ordinal int
	Name    string
	Size    int64
}

// Manifest records everything needed to reassemble a split without relying
// on file name ordering. Immutable value object.
type Manifest struct {
	sourceName string
	sourceSize int64
	chunkSize  int64
	checksum   string
	entries    []ManifestEntry
}

// NewManifest builds the manifest of a completed split.
func NewManifest(sourceName string, sourceSize, chunkSize int64, checksum string, fragments []Fragment) Manifest {
	entries := make([]ManifestEntry, len(fragments))
	for i, f := range fragments {
		entries[i] = ManifestEntry{Ordinal: f.Ordinal(), Name: f.FileName(), Size: f.Size()}
	}
	return Manifest{
		sourceName: sourceName,
		sourceSize: sourceSize,
		chunkSize:  chunkSize,
		checksum:   checksum,
		entries:    entries,
	}
}

// ReconstructManifest recreates a Manifest from its stored form.
func ReconstructManifest(sourceName string, sourceSize, chunkSize int64, checksum string, entries []ManifestEntry) Manifest {
	e := make([]ManifestEntry, len(entries))
	copy(e, entries)
	return Manifest{
		sourceName: sourceName,
		sourceSize: sourceSize,
		chunkSize:  chunkSize,
		checksum:   checksum,
		entries:    e,
	}
}

// SourceName returns the original file name.
func (m Manifest) SourceName() string { return m.sourceName }

// SourceSize returns the original file size in bytes.
func (m Manifest) SourceSize() int64 { return m.sourceSize }

// ChunkSize returns the chunk size the split used.
func (m Manifest) ChunkSize() int64 { return m.chunkSize }

// Checksum returns the source checksum.
func (m Manifest) Checksum() string { return m.checksum }

// Total returns the number of fragments.
func (m Manifest) Total() int { return len(m.entries) }

// Entries returns the fragment entries in the order they were stored.
func (m Manifest) Entries() []ManifestEntry {
	out := make([]ManifestEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Validate checks that entries cover ordinals 1..N in order, that every name
// is a bare file name inside the fragment directory and that their sizes add
// up to the source size.
func (m Manifest) Validate() error {
	if m.checksum == "" {
		return NewValidationError("manifest", "missing checksum", nil)
	}
	var sum int64
	for i, e := range m.entries {
		if e.Ordinal != i+1 {
			return NewValidationError("manifest", fmt.Sprintf("entry %d has ordinal %d", i+1, e.Ordinal), nil)
		}
		if e.Name == "" {
			return NewValidationError("manifest", fmt.Sprintf("entry %d has no name", e.Ordinal), nil)
		}
		if !bareFileName(e.Name) {
			return NewValidationError("manifest", fmt.Sprintf("entry %d name %q leaves the fragment directory", e.Ordinal, e.Name), nil)
		}
		if e.Size <= 0 {
			return NewValidationError("manifest", fmt.Sprintf("entry %d has size %d", e.Ordinal, e.Size), nil)
		}
		sum += e.Size
	}
	if sum != m.sourceSize {
		return NewValidationError("manifest", fmt.Sprintf("fragment sizes add up to %d, source has %d", sum, m.sourceSize), nil)
	}
	return nil
}

// bareFileName rejects names that carry a path separator of either platform
// or refer to the directory itself or its parent.
func bareFileName(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}
