package service

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/helixml/splitmerge/domain/fragment"
	"github.com/helixml/splitmerge/infrastructure/checksum"
	"github.com/helixml/splitmerge/infrastructure/filesystem"
	"github.com/helixml/splitmerge/internal/log"
)

// MergeParams configures one merge.
type MergeParams struct {
	FragmentDir      string
	ExpectedChecksum string
	Destination      string
	DeleteFragments  bool
	// UseManifest orders fragments by the manifest in FragmentDir when one
	// exists, and takes the expected checksum from it when none is given.
	UseManifest bool
	// Paths lists the fragments to concatenate in the given order. It
	// replaces FragmentDir, which must then be empty.
	Paths []string
}

// MergeRecorder is told about every verified merge.
type MergeRecorder interface {
	MarkMerged(ctx context.Context, dir, destination string, at time.Time) error
}

// MergerOption configures a Merger.
type MergerOption func(*Merger)

// WithMergeManifestStore sets where manifests are read from.
func WithMergeManifestStore(store fragment.ManifestStore) MergerOption {
	return func(m *Merger) { m.manifests = store }
}

// WithMergeRecorder records every verified merge. Recording failures are
// logged and do not fail the merge.
func WithMergeRecorder(r MergeRecorder) MergerOption {
	return func(m *Merger) { m.recorder = r }
}

// Merger reassembles fragments into a destination file and verifies it.
type Merger struct {
	hasher    fragment.Hasher
	logger    *slog.Logger
	remover   filesystem.Remover
	manifests fragment.ManifestStore
	recorder  MergeRecorder
	now       func() time.Time
}

// NewMerger creates a Merger. A nil hasher uses SHA-256 and a nil logger
// uses slog.Default.
func NewMerger(hasher fragment.Hasher, logger *slog.Logger, opts ...MergerOption) *Merger {
	if hasher == nil {
		hasher = checksum.SHA256
	}
	if logger == nil {
		logger = slog.Default()
	}
	m := &Merger{
		hasher:  hasher,
		logger:  logger,
		remover: filesystem.NewRemover(logger),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Merge concatenates the fragments found in params.FragmentDir, or the ones
// listed in params.Paths, into params.Destination and compares the
// destination checksum with the expected one.
//
// A fragment list is merged in the order given. Without a list or a
// manifest, every regular file under the directory is a fragment and the
// order is the lexicographic order of absolute paths. A destination
// that fails verification is left on disk. Fragments are only deleted once
// the destination has been verified.
func (m *Merger) Merge(ctx context.Context, params MergeParams) (fragment.MergeResult, error) {
	logger := log.FromContext(ctx, m.logger).With(
		slog.String("fragment_dir", params.FragmentDir),
		slog.String("destination", params.Destination),
	)

	plan, err := m.plan(params)
	if err != nil {
		logger.Warn("merge rejected", slog.Any("error", err))
		return fragment.FailedMerge(err), err
	}

	written, err := m.concatenate(params.Destination, plan.paths)
	if err != nil {
		logger.Error("merge failed", slog.Any("error", err), slog.Int64("bytes", written))
		return fragment.FailedMerge(err), err
	}

	actual, err := checksum.File(params.Destination, m.hasher)
	if err != nil {
		logger.Error("merge failed", slog.Any("error", err))
		return fragment.FailedMerge(err), err
	}
	if actual != plan.expected {
		err := fragment.NewChecksumMismatch(params.Destination, plan.expected, actual)
		logger.Error("merge failed verification", slog.Any("error", err))
		return fragment.FailedMerge(err), err
	}

	logger.Info("merge complete",
		slog.Int("fragments", len(plan.paths)),
		slog.Int64("bytes", written),
		slog.String("checksum", actual),
	)

	if params.DeleteFragments {
		removed := m.remover.Remove(plan.paths...)
		if plan.manifest != "" {
			m.remover.Remove(plan.manifest)
		}
		logger.Debug("fragments deleted", slog.Int("removed", removed), slog.Int("total", len(plan.paths)))
	}
	m.record(ctx, logger, params)

	return fragment.NewMergeResult(params.Destination), nil
}

type mergePlan struct {
	paths    []string
	expected string
	manifest string
}

// plan validates params and resolves the fragment order and expected
// checksum. Nothing is written.
func (m *Merger) plan(params MergeParams) (mergePlan, error) {
	if len(params.Paths) > 0 {
		return m.planList(params)
	}
	if err := filesystem.RequireDir("fragment directory", params.FragmentDir); err != nil {
		return mergePlan{}, err
	}
	if params.Destination == "" {
		return mergePlan{}, fragment.NewValidationError("destination", "path is empty", nil)
	}
	inside, err := filesystem.Within(params.FragmentDir, params.Destination)
	if err != nil {
		return mergePlan{}, fragment.NewValidationError("destination", "cannot resolve path", err)
	}
	if inside {
		return mergePlan{}, fragment.NewValidationError("destination", "must not be inside the fragment directory", nil)
	}

	plan := mergePlan{expected: params.ExpectedChecksum}
	if params.UseManifest && m.manifests != nil {
		paths, manifest, err := m.fromManifest(params.FragmentDir)
		switch {
		case err == nil:
			plan.paths = paths
			plan.manifest = filepath.Join(params.FragmentDir, fragment.ManifestFileName)
			if plan.expected == "" {
				plan.expected = manifest.Checksum()
			}
		case !errors.Is(err, fragment.ErrNoManifest):
			return mergePlan{}, err
		}
	}
	if plan.manifest == "" {
		paths, err := filesystem.RegularFiles(params.FragmentDir, fragment.ManifestFileName)
		if err != nil {
			return mergePlan{}, err
		}
		plan.paths = paths
	}
	return plan, m.finishPlan(plan, params.Destination)
}

// planList accepts a caller-supplied fragment list. Each entry must be a
// regular file and none may be the destination.
func (m *Merger) planList(params MergeParams) (mergePlan, error) {
	if params.FragmentDir != "" {
		return mergePlan{}, fragment.NewValidationError("fragments", "cannot be combined with a fragment directory", nil)
	}
	if params.Destination == "" {
		return mergePlan{}, fragment.NewValidationError("destination", "path is empty", nil)
	}
	dest, err := filepath.Abs(params.Destination)
	if err != nil {
		return mergePlan{}, fragment.NewValidationError("destination", "cannot resolve path", err)
	}
	paths := make([]string, len(params.Paths))
	for i, p := range params.Paths {
		if _, err := filesystem.RequireRegularFile(fmt.Sprintf("fragment %d", i+1), p); err != nil {
			return mergePlan{}, err
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return mergePlan{}, fragment.NewValidationError("fragments", "cannot resolve "+p, err)
		}
		if abs == dest {
			return mergePlan{}, fragment.NewValidationError("destination", "must not be one of the fragments", nil)
		}
		paths[i] = p
	}
	plan := mergePlan{paths: paths, expected: params.ExpectedChecksum}
	return plan, m.finishPlan(plan, params.Destination)
}

// finishPlan checks the expected checksum and prepares the destination
// directory.
func (m *Merger) finishPlan(plan mergePlan, destination string) error {
	if plan.expected == "" {
		return fragment.NewValidationError("expected checksum", "is empty", nil)
	}
	parent := filepath.Dir(destination)
	if err := filesystem.EnsureDir("destination directory", parent); err != nil {
		return err
	}
	return filesystem.RequireDir("destination directory", parent)
}

// fromManifest lists the fragment paths in manifest order after checking
// that each listed fragment exists with the recorded size.
func (m *Merger) fromManifest(dir string) ([]string, fragment.Manifest, error) {
	manifest, err := m.manifests.Read(dir)
	if err != nil {
		return nil, fragment.Manifest{}, err
	}
	entries := manifest.Entries()
	paths := make([]string, len(entries))
	for i, e := range entries {
		path := filepath.Join(dir, e.Name)
		info, err := os.Stat(path)
		if err != nil {
			return nil, fragment.Manifest{}, &fragment.IntegrityError{
				Path:   path,
				Reason: fmt.Sprintf("fragment %d listed in manifest is missing", e.Ordinal),
			}
		}
		if info.Size() != e.Size {
			return nil, fragment.Manifest{}, &fragment.IntegrityError{
				Path:   path,
				Reason: fmt.Sprintf("fragment %d has %d bytes, manifest lists %d", e.Ordinal, info.Size(), e.Size),
			}
		}
		paths[i] = path
	}
	return paths, manifest, nil
}

// concatenate writes every fragment to dest in order. The destination is
// closed before returning so flush errors are reported here.
func (m *Merger) concatenate(dest string, paths []string) (written int64, err error) {
	f, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, fragment.NewTransferError("create", dest, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fragment.NewTransferError("close", dest, cerr)
		}
	}()

	w := bufio.NewWriterSize(f, 64*1024)
	for _, p := range paths {
		n, err := filesystem.AppendFile(w, p)
		written += n
		if err != nil {
			return written, err
		}
	}
	if err := w.Flush(); err != nil {
		return written, fragment.NewTransferError("flush", dest, err)
	}
	return written, nil
}

func (m *Merger) record(ctx context.Context, logger *slog.Logger, params MergeParams) {
	if m.recorder == nil || params.FragmentDir == "" {
		return
	}
	dir, err := filepath.Abs(params.FragmentDir)
	if err != nil {
		dir = params.FragmentDir
	}
	dest, err := filepath.Abs(params.Destination)
	if err != nil {
		dest = params.Destination
	}
	if err := m.recorder.MarkMerged(ctx, dir, dest, m.now()); err != nil {
		logger.Warn("failed to record merge in catalog", slog.Any("error", err))
	}
}
