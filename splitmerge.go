// Package splitmerge splits files into ordered, self-describing fragments
// and merges them back with checksum verification.
//
// Basic usage:
//
//	client, err := splitmerge.New(
//	    splitmerge.WithSQLite(".splitmerge/splitmerge.db"),
//	    splitmerge.WithManifest(true),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	split, err := client.Split(ctx, service.SplitParams{
//	    Source:    "backup.tar",
//	    ChunkSize: 64 << 20,
//	    TargetDir: "fragments",
//	})
//
//	_, err = client.Merge(ctx, service.MergeParams{
//	    FragmentDir:      "fragments",
//	    ExpectedChecksum: split.Checksum(),
//	    Destination:      "restored.tar",
//	})
package splitmerge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/helixml/splitmerge/application/service"
	"github.com/helixml/splitmerge/domain/fragment"
	"github.com/helixml/splitmerge/infrastructure/filesystem"
	"github.com/helixml/splitmerge/infrastructure/manifest"
	"github.com/helixml/splitmerge/infrastructure/persistence"
	"github.com/helixml/splitmerge/internal/config"
	"github.com/helixml/splitmerge/internal/database"
	"github.com/helixml/splitmerge/internal/log"
)

// Errors returned by the Client.
var (
	ErrClientClosed    = service.ErrClientClosed
	ErrCatalogDisabled = service.ErrCatalogDisabled
)

// Client is the main entry point for the splitmerge library.
//
// Access services via struct fields:
//
//	client.Splitter.Split(ctx, params)
//	client.Catalog.Find(ctx, catalog.Newest())
//
// Catalog is nil unless a database option was given.
type Client struct {
	Splitter *service.Splitter
	Merger   *service.Merger
	Catalog  *service.Catalog

	db          *database.Database
	logger      *slog.Logger
	workerCount int
	chunkSize   int64
	apiKeys     []string
	closed      atomic.Bool
	mu          sync.Mutex
}

// New creates a new Client with the given options.
func New(opts ...Option) (*Client, error) {
	cfg := newClientConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	logger := cfg.logger
	if logger == nil {
		logger = log.NewLogger(config.NewAppConfig()).Slog()
	}

	client := &Client{
		logger:      logger,
		workerCount: cfg.workerCount,
		chunkSize:   cfg.chunkSize,
		apiKeys:     cfg.apiKeys,
	}

	var splitOpts []service.SplitterOption
	var mergeOpts []service.MergerOption
	splitOpts = append(splitOpts, service.WithTargetDirCreation(cfg.createTargetDir))
	if cfg.writeManifest {
		store := manifest.NewYAMLStore()
		splitOpts = append(splitOpts, service.WithManifestStore(store))
		mergeOpts = append(mergeOpts, service.WithMergeManifestStore(store))
	} else {
		// Manifests written by other runs are still honoured on request.
		mergeOpts = append(mergeOpts, service.WithMergeManifestStore(manifest.NewYAMLStore()))
	}

	if dbURL := buildDatabaseURL(cfg); dbURL != "" {
		ctx := context.Background()
		db, err := database.NewDatabase(ctx, dbURL)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		if err := persistence.AutoMigrate(db); err != nil {
			errClose := db.Close()
			return nil, errors.Join(fmt.Errorf("auto migrate: %w", err), errClose)
		}
		client.db = &db
		client.Catalog = service.NewCatalog(persistence.NewSplitStore(db), logger)
		splitOpts = append(splitOpts, service.WithRecorder(client.Catalog))
		mergeOpts = append(mergeOpts, service.WithMergeRecorder(client.Catalog))
	}

	client.Splitter = service.NewSplitter(cfg.hasher, logger, splitOpts...)
	client.Merger = service.NewMerger(cfg.hasher, logger, mergeOpts...)
	return client, nil
}

// Split cuts params.Source into fragments in params.TargetDir.
func (c *Client) Split(ctx context.Context, params service.SplitParams) (fragment.SplitResult, error) {
	if c.closed.Load() {
		return fragment.FailedSplit(ErrClientClosed), ErrClientClosed
	}
	return c.Splitter.Split(ctx, params)
}

// SplitAll splits every source into its own directory <outDir>/<base name>,
// running up to the configured worker count at once. Results are returned in
// the order of sources and the error is the first failure in that order.
// One failing source does not stop the others.
func (c *Client) SplitAll(ctx context.Context, sources []string, chunkSize int64, outDir string) ([]fragment.SplitResult, error) {
	if c.closed.Load() {
		return nil, ErrClientClosed
	}
	if err := filesystem.RequireDir("target directory", outDir); err != nil {
		return nil, err
	}
	seen := make(map[string]string, len(sources))
	for _, src := range sources {
		base := filepath.Base(src)
		if prev, ok := seen[base]; ok {
			return nil, fragment.NewValidationError("source", fmt.Sprintf("%s and %s share the name %s", prev, src, base), nil)
		}
		seen[base] = src
	}

	results := make([]fragment.SplitResult, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workerCount)
	for i, src := range sources {
		g.Go(func() error {
			target := filepath.Join(outDir, filepath.Base(src))
			if err := filesystem.EnsureDir("target directory", target); err != nil {
				results[i] = fragment.FailedSplit(err)
				return nil
			}
			results[i], _ = c.Splitter.Split(gctx, service.SplitParams{
				Source:    src,
				ChunkSize: chunkSize,
				TargetDir: target,
			})
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range results {
		if err := r.Err(); err != nil {
			return results, err
		}
	}
	return results, nil
}

// Merge reassembles the fragments in params.FragmentDir, or the ones listed in
// params.Paths, and verifies the result.
func (c *Client) Merge(ctx context.Context, params service.MergeParams) (fragment.MergeResult, error) {
	if c.closed.Load() {
		return fragment.FailedMerge(ErrClientClosed), ErrClientClosed
	}
	return c.Merger.Merge(ctx, params)
}

// MergeSplit merges the catalogued split with the given ID into destination,
// taking the fragment directory and checksum from the catalog.
func (c *Client) MergeSplit(ctx context.Context, id int64, destination string, deleteFragments bool) (fragment.MergeResult, error) {
	if c.closed.Load() {
		return fragment.FailedMerge(ErrClientClosed), ErrClientClosed
	}
	if c.Catalog == nil {
		return fragment.FailedMerge(ErrCatalogDisabled), ErrCatalogDisabled
	}
	entry, err := c.Catalog.ByID(ctx, id)
	if err != nil {
		return fragment.FailedMerge(err), err
	}
	return c.Merger.Merge(ctx, service.MergeParams{
		FragmentDir:      entry.FragmentDir(),
		ExpectedChecksum: entry.Checksum(),
		Destination:      destination,
		DeleteFragments:  deleteFragments,
		UseManifest:      true,
	})
}

// Close releases the catalog database. Closing twice returns ErrClientClosed.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClientClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			return fmt.Errorf("close database: %w", err)
		}
	}
	c.logger.Debug("splitmerge client closed")
	return nil
}

// Closed reports whether Close has been called.
func (c *Client) Closed() bool {
	return c.closed.Load()
}

// ChunkSize returns the default chunk size for requests that do not name one.
func (c *Client) ChunkSize() int64 {
	return c.chunkSize
}

// APIKeys returns the keys that guard mutating HTTP routes.
func (c *Client) APIKeys() []string {
	out := make([]string, len(c.apiKeys))
	copy(out, c.apiKeys)
	return out
}

// Logger returns the client's logger.
func (c *Client) Logger() *slog.Logger {
	return c.logger
}
