package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/helixml/splitmerge/domain/catalog"
	"github.com/helixml/splitmerge/domain/repository"
)

// Catalog provides lookup and bookkeeping for completed splits.
// Embeds Collection for Find/Get; Record and MarkMerged feed it from the
// Splitter and Merger.
type Catalog struct {
	repository.Collection[catalog.Entry]
	store  catalog.Store
	logger *slog.Logger
}

var (
	_ SplitRecorder = (*Catalog)(nil)
	_ MergeRecorder = (*Catalog)(nil)
)

// NewCatalog creates a Catalog backed by store.
func NewCatalog(store catalog.Store, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{
		Collection: repository.NewCollection[catalog.Entry](store),
		store:      store,
		logger:     logger,
	}
}

// Record saves a completed split.
func (c *Catalog) Record(ctx context.Context, entry catalog.Entry) (catalog.Entry, error) {
	saved, err := c.store.Save(ctx, entry)
	if err != nil {
		return catalog.Entry{}, fmt.Errorf("record split: %w", err)
	}
	return saved, nil
}

// MarkMerged records that the fragments in dir were merged into destination.
func (c *Catalog) MarkMerged(ctx context.Context, dir, destination string, at time.Time) error {
	if err := c.store.MarkMerged(ctx, dir, destination, at); err != nil {
		return fmt.Errorf("mark merged: %w", err)
	}
	return nil
}

// ByID returns the entry with the given ID.
func (c *Catalog) ByID(ctx context.Context, id int64) (catalog.Entry, error) {
	return c.Get(ctx, repository.WithID(id))
}

// Delete removes the entry with the given ID. Fragments on disk are untouched.
func (c *Catalog) Delete(ctx context.Context, id int64) error {
	if _, err := c.ByID(ctx, id); err != nil {
		return err
	}
	if err := c.store.DeleteBy(ctx, repository.WithID(id)); err != nil {
		return fmt.Errorf("delete split %d: %w", id, err)
	}
	c.logger.Info("split removed from catalog", slog.Int64("split_id", id))
	return nil
}

// Count returns the number of entries matching options.
func (c *Catalog) Count(ctx context.Context, options ...repository.Option) (int64, error) {
	return c.store.Count(ctx, options...)
}
