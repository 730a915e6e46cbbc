// Package catalog records completed splits so their fragment sets can be
// found and merged later.
package catalog

import (
	"path/filepath"
	"time"

	"github.com/helixml/splitmerge/domain/fragment"
)

// Entry is the persisted record of one completed split.
type Entry struct {
	id          int64
	sourcePath  string
	sourceName  string
	sourceSize  int64
	chunkSize   int64
	checksum    string
	total       int
	fragmentDir string
	createdAt   time.Time
	mergedAt    time.Time
	mergedTo    string
}

// NewEntry creates an unsaved Entry for a split of sourcePath into fragmentDir.
func NewEntry(sourcePath string, sourceSize, chunkSize int64, fragmentDir string, result fragment.SplitResult) Entry {
	name := sourcePath
	if frags := result.Fragments(); len(frags) > 0 {
		if parsed, err := fragment.ParseName(frags[0].FileName()); err == nil {
			name = parsed.Original()
		}
	}
	return Entry{
		sourcePath:  sourcePath,
		sourceName:  filepath.Base(name),
		sourceSize:  sourceSize,
		chunkSize:   chunkSize,
		checksum:    result.Checksum(),
		total:       len(result.Fragments()),
		fragmentDir: fragmentDir,
		createdAt:   time.Now().UTC(),
	}
}

// ReconstructEntry recreates an Entry from persistence.
func ReconstructEntry(
	id int64,
	sourcePath, sourceName string,
	sourceSize, chunkSize int64,
	checksum string,
	total int,
	fragmentDir string,
	createdAt, mergedAt time.Time,
	mergedTo string,
) Entry {
	return Entry{
		id:          id,
		sourcePath:  sourcePath,
		sourceName:  sourceName,
		sourceSize:  sourceSize,
		chunkSize:   chunkSize,
		checksum:    checksum,
		total:       total,
		fragmentDir: fragmentDir,
		createdAt:   createdAt,
		mergedAt:    mergedAt,
		mergedTo:    mergedTo,
	}
}

// ID returns the entry ID. Zero until saved.
func (e Entry) ID() int64 { return e.id }

// SourcePath returns the path the source was read from.
func (e Entry) SourcePath() string { return e.sourcePath }

// SourceName returns the base name of the source.
func (e Entry) SourceName() string { return e.sourceName }

// SourceSize returns the source length in bytes.
func (e Entry) SourceSize() int64 { return e.sourceSize }

// ChunkSize returns the chunk size of the split.
func (e Entry) ChunkSize() int64 { return e.chunkSize }

// Checksum returns the source checksum.
func (e Entry) Checksum() string { return e.checksum }

// Total returns the number of fragments written.
func (e Entry) Total() int { return e.total }

// FragmentDir returns the directory holding the fragments.
func (e Entry) FragmentDir() string { return e.fragmentDir }

// CreatedAt returns when the split was recorded.
func (e Entry) CreatedAt() time.Time { return e.createdAt }

// MergedAt returns when the fragments were last merged. Zero if never.
func (e Entry) MergedAt() time.Time { return e.mergedAt }

// MergedTo returns the destination of the last merge.
func (e Entry) MergedTo() string { return e.mergedTo }

// Merged reports whether the fragments have been merged.
func (e Entry) Merged() bool { return !e.mergedAt.IsZero() }

// WithID returns a copy with the given ID.
func (e Entry) WithID(id int64) Entry {
	e.id = id
	return e
}

// WithMerge returns a copy marked as merged into destination at the given time.
func (e Entry) WithMerge(destination string, at time.Time) Entry {
	e.mergedTo = destination
	e.mergedAt = at
	return e
}
