package catalog

import "github.com/helixml/splitmerge/domain/repository"

// WithChecksum filters by the "checksum" column.
func WithChecksum(checksum string) repository.Option {
	return repository.WithCondition("checksum", checksum)
}

// WithFragmentDir filters by the "fragment_dir" column.
func WithFragmentDir(dir string) repository.Option {
	return repository.WithCondition("fragment_dir", dir)
}

// WithSourceName filters by the "source_name" column.
func WithSourceName(name string) repository.Option {
	return repository.WithCondition("source_name", name)
}

// Newest orders entries by creation time, most recent first.
func Newest() repository.Option {
	return repository.WithOrderDesc("created_at")
}
