package persistence

import "time"

// SplitModel is a completed split in the catalog.
type SplitModel struct {
	ID          int64      `gorm:"primaryKey;autoIncrement"`
	SourcePath  string     `gorm:"column:source_path;size:4096"`
	SourceName  string     `gorm:"column:source_name;index;size:1024"`
	SourceSize  int64      `gorm:"column:source_size"`
	ChunkSize   int64      `gorm:"column:chunk_size"`
	Checksum    string     `gorm:"column:checksum;index;size:128"`
	Total       int        `gorm:"column:total"`
	FragmentDir string     `gorm:"column:fragment_dir;uniqueIndex;size:4096"`
	MergedAt    *time.Time `gorm:"column:merged_at"`
	MergedTo    string     `gorm:"column:merged_to;size:4096"`
	CreatedAt   time.Time  `gorm:"column:created_at;index"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
}

// TableName returns the table name.
func (SplitModel) TableName() string {
	return "splits"
}
