package splitmerge

import (
	"log/slog"

	"github.com/helixml/splitmerge/domain/fragment"
	"github.com/helixml/splitmerge/internal/config"
)

// databaseType identifies the catalog database.
type databaseType int

const (
	databaseUnset databaseType = iota
	databaseSQLite
	databasePostgres
	databaseURL
)

// clientConfig holds configuration for Client construction.
// Use newClientConfig() to create with defaults from internal/config.
type clientConfig struct {
	database        databaseType
	dbPath          string
	dbDSN           string
	logger          *slog.Logger
	hasher          fragment.Hasher
	writeManifest   bool
	createTargetDir bool
	workerCount     int
	chunkSize       int64
	apiKeys         []string
}

func newClientConfig() *clientConfig {
	return &clientConfig{
		createTargetDir: true,
		workerCount:     config.DefaultWorkerCount,
		chunkSize:       config.DefaultChunkSize,
	}
}

// Option configures the Client.
type Option func(*clientConfig)

// WithSQLite records completed splits in a SQLite database at path.
// Missing parent directories are created.
func WithSQLite(path string) Option {
	return func(c *clientConfig) {
		c.database = databaseSQLite
		c.dbPath = path
	}
}

// WithPostgres records completed splits in PostgreSQL.
func WithPostgres(dsn string) Option {
	return func(c *clientConfig) {
		c.database = databasePostgres
		c.dbDSN = dsn
	}
}

// WithDatabaseURL records completed splits in the database named by url
// (sqlite:///path or postgresql://...). An empty url leaves the catalog off.
func WithDatabaseURL(url string) Option {
	return func(c *clientConfig) {
		if url == "" {
			c.database = databaseUnset
			return
		}
		c.database = databaseURL
		c.dbDSN = url
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}

// WithHasher replaces the SHA-256 content hasher for both split and merge.
func WithHasher(h fragment.Hasher) Option {
	return func(c *clientConfig) {
		c.hasher = h
	}
}

// WithManifest writes a manifest next to every split and lets merges
// read it when asked to.
func WithManifest(enabled bool) Option {
	return func(c *clientConfig) {
		c.writeManifest = enabled
	}
}

// WithCreateTargetDir controls whether a missing split target directory is
// created or rejected. Enabled by default.
func WithCreateTargetDir(enabled bool) Option {
	return func(c *clientConfig) {
		c.createTargetDir = enabled
	}
}

// WithWorkerCount sets how many sources SplitAll processes at once.
// Defaults to 1. Values <= 0 are ignored.
func WithWorkerCount(n int) Option {
	return func(c *clientConfig) {
		if n > 0 {
			c.workerCount = n
		}
	}
}

// WithChunkSize sets the chunk size used by the HTTP API and MCP tools when
// a request does not name one. Values <= 0 are ignored.
func WithChunkSize(n int64) Option {
	return func(c *clientConfig) {
		if n > 0 {
			c.chunkSize = n
		}
	}
}

// WithAPIKeys sets the API keys for HTTP API authentication.
func WithAPIKeys(keys ...string) Option {
	return func(c *clientConfig) {
		c.apiKeys = keys
	}
}

func buildDatabaseURL(cfg *clientConfig) string {
	switch cfg.database {
	case databaseSQLite:
		return "sqlite:///" + cfg.dbPath
	case databasePostgres, databaseURL:
		return cfg.dbDSN
	default:
		return ""
	}
}
