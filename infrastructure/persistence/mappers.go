package persistence

import (
	"time"

	"github.com/helixml/splitmerge/domain/catalog"
)

// SplitMapper maps between catalog.Entry and SplitModel.
type SplitMapper struct{}

// ToDomain converts a SplitModel to a catalog.Entry.
func (m SplitMapper) ToDomain(e SplitModel) catalog.Entry {
	var mergedAt time.Time
	if e.MergedAt != nil {
		mergedAt = e.MergedAt.UTC()
	}
	return catalog.ReconstructEntry(
		e.ID,
		e.SourcePath,
		e.SourceName,
		e.SourceSize,
		e.ChunkSize,
		e.Checksum,
		e.Total,
		e.FragmentDir,
		e.CreatedAt.UTC(),
		mergedAt,
		e.MergedTo,
	)
}

// ToModel converts a catalog.Entry to a SplitModel.
func (m SplitMapper) ToModel(e catalog.Entry) SplitModel {
	var mergedAt *time.Time
	if e.Merged() {
		t := e.MergedAt()
		mergedAt = &t
	}
	return SplitModel{
		ID:          e.ID(),
		SourcePath:  e.SourcePath(),
		SourceName:  e.SourceName(),
		SourceSize:  e.SourceSize(),
		ChunkSize:   e.ChunkSize(),
		Checksum:    e.Checksum(),
		Total:       e.Total(),
		FragmentDir: e.FragmentDir(),
		MergedAt:    mergedAt,
		MergedTo:    e.MergedTo(),
		CreatedAt:   e.CreatedAt(),
	}
}
