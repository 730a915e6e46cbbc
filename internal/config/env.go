package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// EnvConfig holds all environment-based configuration.
type EnvConfig struct {
	// Host is the API bind host.
	// Env: HOST (default: 0.0.0.0)
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// Port is the API port.
	// Env: PORT (default: 8080)
	Port int `envconfig:"PORT" default:"8080"`

	// DataDir holds the catalog database.
	// Env: DATA_DIR
	// Default: ~/.splitmerge
	DataDir string `envconfig:"DATA_DIR"`

	// DBURL is the catalog database connection URL.
	// Env: DB_URL
	// Default: sqlite:///{data_dir}/splitmerge.db
	DBURL string `envconfig:"DB_URL"`

	// DisableCatalog skips recording completed splits.
	// Env: DISABLE_CATALOG (default: false)
	DisableCatalog bool `envconfig:"DISABLE_CATALOG" default:"false"`

	// LogLevel is the log verbosity level.
	// Env: LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (pretty or json).
	// Env: LOG_FORMAT (default: pretty)
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// ChunkSize is the default fragment size in bytes.
	// Env: CHUNK_SIZE (default: 1048576)
	ChunkSize int64 `envconfig:"CHUNK_SIZE" default:"1048576"`

	// WriteManifest writes a YAML sidecar next to the fragments.
	// Env: WRITE_MANIFEST (default: false)
	WriteManifest bool `envconfig:"WRITE_MANIFEST" default:"false"`

	// CreateTargetDir creates a missing split target directory.
	// Env: CREATE_TARGET_DIR (default: true)
	CreateTargetDir bool `envconfig:"CREATE_TARGET_DIR" default:"true"`

	// WorkerCount is how many sources a multi-source split handles at once.
	// Env: WORKER_COUNT (default: 1)
	WorkerCount int `envconfig:"WORKER_COUNT" default:"1"`

	// APIKeys is a comma-separated list of valid API keys.
	// Env: API_KEYS
	APIKeys string `envconfig:"API_KEYS"`
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (EnvConfig, error) {
	return LoadFromEnvWithPrefix("")
}

// LoadFromEnvWithPrefix loads configuration with a custom prefix.
// For example, prefix "SPLITMERGE" would require SPLITMERGE_DATA_DIR instead of DATA_DIR.
func LoadFromEnvWithPrefix(prefix string) (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// ToAppConfig converts EnvConfig to AppConfig.
func (e EnvConfig) ToAppConfig() AppConfig {
	opts := []AppConfigOption{
		WithDisableCatalog(e.DisableCatalog),
		WithWriteManifest(e.WriteManifest),
		WithCreateTargetDir(e.CreateTargetDir),
		WithChunkSize(e.ChunkSize),
		WithWorkerCount(e.WorkerCount),
	}
	if e.Host != "" {
		opts = append(opts, WithHost(e.Host))
	}
	if e.Port != 0 {
		opts = append(opts, WithPort(e.Port))
	}
	if e.DataDir != "" {
		opts = append(opts, WithDataDir(expandHome(e.DataDir)))
	}
	if e.DBURL != "" {
		opts = append(opts, WithDBURL(e.DBURL))
	}
	if e.LogLevel != "" {
		opts = append(opts, WithLogLevel(strings.ToUpper(e.LogLevel)))
	}
	if e.LogFormat != "" {
		opts = append(opts, WithLogFormat(ParseLogFormat(e.LogFormat)))
	}
	if e.APIKeys != "" {
		opts = append(opts, WithAPIKeys(ParseAPIKeys(e.APIKeys)))
	}
	return NewAppConfigWithOptions(opts...)
}

// ParseLogFormat parses a log format string. Anything but "json" is pretty.
func ParseLogFormat(s string) LogFormat {
	if strings.EqualFold(strings.TrimSpace(s), "json") {
		return LogFormatJSON
	}
	return LogFormatPretty
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
