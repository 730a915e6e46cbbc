package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/helixml/splitmerge/domain/catalog"
	"github.com/helixml/splitmerge/domain/repository"
	"github.com/helixml/splitmerge/internal/database"
)

// SplitStore implements catalog.Store using GORM.
type SplitStore struct {
	database.Repository[catalog.Entry, SplitModel]
}

var _ catalog.Store = SplitStore{}

// NewSplitStore creates a new SplitStore.
func NewSplitStore(db database.Database) SplitStore {
	return SplitStore{
		Repository: database.NewRepository[catalog.Entry, SplitModel](db, SplitMapper{}, "split"),
	}
}

// FindOne retrieves a single entry, mapping a miss to catalog.ErrNotFound.
func (s SplitStore) FindOne(ctx context.Context, options ...repository.Option) (catalog.Entry, error) {
	entry, err := s.Repository.FindOne(ctx, options...)
	if errors.Is(err, database.ErrNotFound) {
		return catalog.Entry{}, fmt.Errorf("%w: %w", catalog.ErrNotFound, err)
	}
	return entry, err
}

// Save inserts a new entry or updates an existing one. A new entry for a
// fragment directory already in the catalog replaces the older record, since
// re-splitting into the same directory overwrites its fragments.
func (s SplitStore) Save(ctx context.Context, entry catalog.Entry) (catalog.Entry, error) {
	model := s.Mapper().ToModel(entry)

	var result *gorm.DB
	if entry.ID() == 0 {
		result = s.DB(ctx).Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "fragment_dir"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"source_path", "source_name", "source_size", "chunk_size",
				"checksum", "total", "merged_at", "merged_to", "created_at", "updated_at",
			}),
		}).Create(&model)
	} else {
		result = s.DB(ctx).Save(&model)
	}
	if result.Error != nil {
		return catalog.Entry{}, fmt.Errorf("save split: %w", result.Error)
	}

	if model.ID == 0 {
		// Some dialects do not report the ID of an upserted row.
		return s.FindOne(ctx, catalog.WithFragmentDir(model.FragmentDir))
	}
	return s.Mapper().ToDomain(model), nil
}

// MarkMerged records a merge on every entry whose fragments live in dir.
func (s SplitStore) MarkMerged(ctx context.Context, dir, destination string, at time.Time) error {
	return database.WithTransaction(ctx, s.Database(), func(tx *gorm.DB) error {
		var models []SplitModel
		if err := tx.Where("fragment_dir = ?", dir).Find(&models).Error; err != nil {
			return fmt.Errorf("find splits in %s: %w", dir, err)
		}
		for _, m := range models {
			entry := s.Mapper().ToDomain(m).WithMerge(destination, at.UTC())
			updated := s.Mapper().ToModel(entry)
			if err := tx.Save(&updated).Error; err != nil {
				return fmt.Errorf("mark split %d merged: %w", m.ID, err)
			}
		}
		return nil
	})
}
