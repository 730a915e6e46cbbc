package main

import (
	"log/slog"

	"github.com/helixml/splitmerge"
	"github.com/helixml/splitmerge/internal/config"
	"github.com/helixml/splitmerge/internal/log"
)

// clientOptions returns the splitmerge.Option slice derived from AppConfig.
// Callers append command-specific overrides before passing the slice to
// splitmerge.New.
func clientOptions(cfg config.AppConfig, logger *slog.Logger) []splitmerge.Option {
	opts := []splitmerge.Option{
		splitmerge.WithLogger(logger),
		splitmerge.WithChunkSize(cfg.ChunkSize()),
		splitmerge.WithWorkerCount(cfg.WorkerCount()),
		splitmerge.WithManifest(cfg.WriteManifest()),
		splitmerge.WithCreateTargetDir(cfg.CreateTargetDir()),
	}
	if cfg.CatalogEnabled() {
		opts = append(opts, splitmerge.WithDatabaseURL(cfg.DBURL()))
	}
	if keys := cfg.APIKeys(); len(keys) > 0 {
		opts = append(opts, splitmerge.WithAPIKeys(keys...))
	}
	return opts
}

// openClient loads the data directory, logger and Client shared by every
// command that touches files or the catalog.
func openClient(cfg config.AppConfig, extra ...splitmerge.Option) (*splitmerge.Client, *slog.Logger, error) {
	if cfg.CatalogEnabled() {
		if err := cfg.EnsureDataDir(); err != nil {
			return nil, nil, err
		}
	}
	logger := log.Configure(cfg).Slog()
	client, err := splitmerge.New(append(clientOptions(cfg, logger), extra...)...)
	if err != nil {
		return nil, nil, err
	}
	return client, logger, nil
}

// closeClient closes client and logs any failure.
func closeClient(client *splitmerge.Client, logger *slog.Logger) {
	if err := client.Close(); err != nil {
		logger.Error("failed to close splitmerge client", slog.Any("error", err))
	}
}
