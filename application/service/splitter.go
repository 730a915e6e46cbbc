package service

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/helixml/splitmerge/domain/catalog"
	"github.com/helixml/splitmerge/domain/fragment"
	"github.com/helixml/splitmerge/infrastructure/checksum"
	"github.com/helixml/splitmerge/infrastructure/filesystem"
	"github.com/helixml/splitmerge/internal/log"
)

// SplitParams configures one split.
type SplitParams struct {
	Source    string
	ChunkSize int64
	TargetDir string
}

// SplitRecorder persists completed splits.
type SplitRecorder interface {
	Record(ctx context.Context, entry catalog.Entry) (catalog.Entry, error)
}

// SplitterOption configures a Splitter.
type SplitterOption func(*Splitter)

// WithManifestStore writes a manifest next to the fragments of every split.
func WithManifestStore(store fragment.ManifestStore) SplitterOption {
	return func(s *Splitter) { s.manifests = store }
}

// WithTargetDirCreation creates a missing target directory before it is validated.
func WithTargetDirCreation(enabled bool) SplitterOption {
	return func(s *Splitter) { s.createTargetDir = enabled }
}

// WithRecorder records every successful split. Recording failures are logged
// and do not fail the split.
func WithRecorder(r SplitRecorder) SplitterOption {
	return func(s *Splitter) { s.recorder = r }
}

// Splitter cuts a source file into ordered fragments.
type Splitter struct {
	hasher          fragment.Hasher
	logger          *slog.Logger
	remover         filesystem.Remover
	manifests       fragment.ManifestStore
	recorder        SplitRecorder
	createTargetDir bool
}

// NewSplitter creates a Splitter. A nil hasher uses SHA-256 and a nil logger
// uses slog.Default.
func NewSplitter(hasher fragment.Hasher, logger *slog.Logger, opts ...SplitterOption) *Splitter {
	if hasher == nil {
		hasher = checksum.SHA256
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Splitter{
		hasher:  hasher,
		logger:  logger,
		remover: filesystem.NewRemover(logger),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Split writes the fragments of params.Source into params.TargetDir.
//
// Inputs are validated before anything is written. On a transfer failure the
// fragments written so far are removed and the result carries the error.
// The returned error is the first error of the result.
func (s *Splitter) Split(ctx context.Context, params SplitParams) (fragment.SplitResult, error) {
	logger := log.FromContext(ctx, s.logger).With(
		slog.String("source", params.Source),
		slog.String("target", params.TargetDir),
	)

	src, info, err := s.open(params)
	if err != nil {
		logger.Warn("split rejected", slog.Any("error", err))
		return fragment.FailedSplit(err), err
	}
	defer func() { _ = src.Close() }()

	size := info.Size()
	sum, err := checksum.Section(src, size, s.hasher)
	if err != nil {
		err = fragment.NewTransferError("checksum", params.Source, err)
		logger.Error("split failed", slog.Any("error", err))
		return fragment.FailedSplit(err), err
	}

	layout, err := fragment.NewLayout(size, params.ChunkSize)
	if err != nil {
		return fragment.FailedSplit(err), err
	}

	frags, err := s.write(src, layout, filepath.Base(params.Source), sum, params.TargetDir)
	if err == nil && s.manifests != nil {
		m := fragment.NewManifest(filepath.Base(params.Source), size, params.ChunkSize, sum, frags)
		err = s.manifests.Write(params.TargetDir, m)
	}
	if err != nil {
		removed := s.remover.Remove(fragmentPaths(frags)...)
		logger.Error("split failed",
			slog.Any("error", err),
			slog.Int("written", len(frags)),
			slog.Int("removed", removed),
		)
		return fragment.FailedSplit(err), err
	}

	result := fragment.NewSplitResult(frags, sum)
	logger.Info("split complete",
		slog.Int("fragments", len(frags)),
		slog.Int64("bytes", size),
		slog.String("checksum", sum),
	)
	s.record(ctx, logger, params, size, result)
	return result, nil
}

func (s *Splitter) open(params SplitParams) (*os.File, os.FileInfo, error) {
	if params.ChunkSize <= 0 {
		return nil, nil, fragment.NewValidationError("chunk size", "must be greater than zero", nil)
	}
	if _, err := filesystem.RequireRegularFile("source", params.Source); err != nil {
		return nil, nil, err
	}
	if s.createTargetDir {
		if err := filesystem.EnsureDir("target directory", params.TargetDir); err != nil {
			return nil, nil, err
		}
	}
	if err := filesystem.RequireDir("target directory", params.TargetDir); err != nil {
		return nil, nil, err
	}

	f, err := os.Open(params.Source)
	if err != nil {
		return nil, nil, fragment.NewValidationError("source", params.Source+" is not readable", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, fragment.NewTransferError("stat", params.Source, err)
	}
	return f, info, nil
}

// write returns the fragments written so far together with any error, so
// the caller can clean them up.
func (s *Splitter) write(src *os.File, layout fragment.Layout, original, sum, dir string) ([]fragment.Fragment, error) {
	frags := make([]fragment.Fragment, 0, layout.Total())
	for _, r := range layout.Ranges() {
		name, err := fragment.NewName(original, sum, r.Ordinal, layout.Total())
		if err != nil {
			return frags, fragment.NewTransferError("name", original, err)
		}
		path := filepath.Join(dir, name.String())
		created, err := filesystem.WriteRange(src, r.Offset, r.Length, path)
		if err != nil {
			if created {
				// A partially written file exists at path.
				frags = append(frags, fragment.NewFragment(path, r.Ordinal, layout.Total(), 0, sum))
			}
			return frags, err
		}
		frags = append(frags, fragment.NewFragment(path, r.Ordinal, layout.Total(), r.Length, sum))
	}
	return frags, nil
}

func (s *Splitter) record(ctx context.Context, logger *slog.Logger, params SplitParams, size int64, result fragment.SplitResult) {
	if s.recorder == nil {
		return
	}
	source, err := filepath.Abs(params.Source)
	if err != nil {
		source = params.Source
	}
	dir, err := filepath.Abs(params.TargetDir)
	if err != nil {
		dir = params.TargetDir
	}
	entry, err := s.recorder.Record(ctx, catalog.NewEntry(source, size, params.ChunkSize, dir, result))
	if err != nil {
		logger.Warn("failed to record split in catalog", slog.Any("error", err))
		return
	}
	logger.Debug("split recorded", slog.Int64("split_id", entry.ID()))
}

func fragmentPaths(frags []fragment.Fragment) []string {
	paths := make([]string, len(frags))
	for i, f := range frags {
		paths[i] = f.Path()
	}
	return paths
}
