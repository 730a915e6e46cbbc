// Package config provides application configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Default configuration values.
const (
	DefaultHost        = "0.0.0.0"
	DefaultPort        = 8080
	DefaultLogLevel    = "INFO"
	DefaultWorkerCount = 1
	DefaultChunkSize   = 1 << 20
	DefaultDBFile      = "splitmerge.db"
)

// LogFormat represents the log output format.
type LogFormat string

// LogFormat values.
const (
	LogFormatPretty LogFormat = "pretty"
	LogFormatJSON   LogFormat = "json"
)

// AppConfig holds the main application configuration.
type AppConfig struct {
	host            string
	port            int
	dataDir         string
	dbURL           string
	disableCatalog  bool
	logLevel        string
	logFormat       LogFormat
	chunkSize       int64
	writeManifest   bool
	createTargetDir bool
	workerCount     int
	apiKeys         []string
}

// DefaultDataDir returns the default data directory.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".splitmerge"
	}
	return filepath.Join(home, ".splitmerge")
}

// NewAppConfig creates a new AppConfig with defaults.
func NewAppConfig() AppConfig {
	dataDir := DefaultDataDir()
	return AppConfig{
		host:            DefaultHost,
		port:            DefaultPort,
		dataDir:         dataDir,
		dbURL:           defaultDBURL(dataDir),
		logLevel:        DefaultLogLevel,
		logFormat:       LogFormatPretty,
		chunkSize:       DefaultChunkSize,
		createTargetDir: true,
		workerCount:     DefaultWorkerCount,
		apiKeys:         []string{},
	}
}

func defaultDBURL(dataDir string) string {
	return "sqlite:///" + filepath.Join(dataDir, DefaultDBFile)
}

// Host returns the server host to bind to.
func (c AppConfig) Host() string { return c.host }

// Port returns the server port to listen on.
func (c AppConfig) Port() int { return c.port }

// Addr returns the combined host:port address.
func (c AppConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.host, c.port)
}

// DataDir returns the data directory.
func (c AppConfig) DataDir() string { return c.dataDir }

// DBURL returns the catalog database URL.
func (c AppConfig) DBURL() string { return c.dbURL }

// CatalogEnabled reports whether completed splits are recorded.
func (c AppConfig) CatalogEnabled() bool { return !c.disableCatalog }

// LogLevel returns the log level.
func (c AppConfig) LogLevel() string { return c.logLevel }

// LogFormat returns the log format.
func (c AppConfig) LogFormat() LogFormat { return c.logFormat }

// ChunkSize returns the default chunk size in bytes.
func (c AppConfig) ChunkSize() int64 { return c.chunkSize }

// WriteManifest reports whether splits write a manifest sidecar.
func (c AppConfig) WriteManifest() bool { return c.writeManifest }

// CreateTargetDir reports whether a missing split target directory is created.
func (c AppConfig) CreateTargetDir() bool { return c.createTargetDir }

// WorkerCount returns how many sources a multi-source split processes at once.
func (c AppConfig) WorkerCount() int { return c.workerCount }

// APIKeys returns a copy of the API keys guarding mutating routes.
func (c AppConfig) APIKeys() []string {
	keys := make([]string, len(c.apiKeys))
	copy(keys, c.apiKeys)
	return keys
}

// EnsureDataDir creates the data directory if it does not exist.
func (c AppConfig) EnsureDataDir() error {
	if err := os.MkdirAll(c.dataDir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	return nil
}

// AppConfigOption is a functional option for AppConfig.
type AppConfigOption func(*AppConfig)

// WithHost sets the server host.
func WithHost(host string) AppConfigOption {
	return func(c *AppConfig) { c.host = host }
}

// WithPort sets the server port.
func WithPort(port int) AppConfigOption {
	return func(c *AppConfig) { c.port = port }
}

// WithDataDir sets the data directory. A database URL still pointing at the
// default file moves along with it.
func WithDataDir(dir string) AppConfigOption {
	return func(c *AppConfig) {
		if c.dbURL == "" || c.dbURL == defaultDBURL(c.dataDir) {
			c.dbURL = defaultDBURL(dir)
		}
		c.dataDir = dir
	}
}

// WithDBURL sets the database URL.
func WithDBURL(url string) AppConfigOption {
	return func(c *AppConfig) { c.dbURL = url }
}

// WithDisableCatalog turns catalog recording off.
func WithDisableCatalog(disabled bool) AppConfigOption {
	return func(c *AppConfig) { c.disableCatalog = disabled }
}

// WithLogLevel sets the log level.
func WithLogLevel(level string) AppConfigOption {
	return func(c *AppConfig) { c.logLevel = level }
}

// WithLogFormat sets the log format.
func WithLogFormat(format LogFormat) AppConfigOption {
	return func(c *AppConfig) { c.logFormat = format }
}

// WithChunkSize sets the default chunk size. Non-positive values are ignored.
func WithChunkSize(n int64) AppConfigOption {
	return func(c *AppConfig) {
		if n > 0 {
			c.chunkSize = n
		}
	}
}

// WithWriteManifest sets whether splits write a manifest sidecar.
func WithWriteManifest(enabled bool) AppConfigOption {
	return func(c *AppConfig) { c.writeManifest = enabled }
}

// WithCreateTargetDir sets whether missing split target directories are created.
func WithCreateTargetDir(enabled bool) AppConfigOption {
	return func(c *AppConfig) { c.createTargetDir = enabled }
}

// WithWorkerCount sets the multi-source split concurrency.
func WithWorkerCount(n int) AppConfigOption {
	return func(c *AppConfig) {
		if n > 0 {
			c.workerCount = n
		}
	}
}

// WithAPIKeys sets the API keys.
func WithAPIKeys(keys []string) AppConfigOption {
	return func(c *AppConfig) {
		c.apiKeys = make([]string, len(keys))
		copy(c.apiKeys, keys)
	}
}

// NewAppConfigWithOptions creates an AppConfig with functional options.
func NewAppConfigWithOptions(opts ...AppConfigOption) AppConfig {
	return NewAppConfig().Apply(opts...)
}

// Apply returns a new AppConfig with the given options applied.
func (c AppConfig) Apply(opts ...AppConfigOption) AppConfig {
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// LogAttrs returns slog attributes describing the configuration. API keys
// are reported as a count.
func (c AppConfig) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("data_dir", c.dataDir),
		slog.String("db_url", c.maskedDBURL()),
		slog.Bool("catalog", c.CatalogEnabled()),
		slog.String("log_level", c.logLevel),
		slog.Int64("chunk_size", c.chunkSize),
		slog.Bool("write_manifest", c.writeManifest),
		slog.Int("worker_count", c.workerCount),
		slog.Int("api_keys_count", len(c.apiKeys)),
	}
}

func (c AppConfig) maskedDBURL() string {
	if c.dbURL == "" {
		return "(default)"
	}
	if strings.HasPrefix(c.dbURL, "sqlite:") {
		return c.dbURL
	}
	return "postgres://***@***"
}

// ParseAPIKeys parses a comma-separated string of API keys.
func ParseAPIKeys(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	keys := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			keys = append(keys, trimmed)
		}
	}
	return keys
}
