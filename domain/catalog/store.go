package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/helixml/splitmerge/domain/repository"
)

// ErrNotFound indicates no catalog entry matched.
var ErrNotFound = errors.New("split not found")

// Store persists catalog entries.
type Store interface {
	repository.Store[Entry]

	// Save inserts a new entry or updates an existing one and returns it with its ID.
	Save(ctx context.Context, entry Entry) (Entry, error)

	// MarkMerged records a merge of every entry whose fragments live in dir.
	MarkMerged(ctx context.Context, dir, destination string, at time.Time) error
}
