package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnvVars(t)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "", cfg.DataDir)
	assert.Equal(t, "", cfg.DBURL)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, "pretty", cfg.LogFormat)
	assert.Equal(t, int64(1048576), cfg.ChunkSize)
	assert.False(t, cfg.WriteManifest)
	assert.True(t, cfg.CreateTargetDir)
	assert.False(t, cfg.DisableCatalog)
	assert.Equal(t, 1, cfg.WorkerCount)
}

func TestEnvDefaults_MatchConfigDefaults(t *testing.T) {
	clearEnvVars(t)

	env, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, DefaultHost, env.Host)
	assert.Equal(t, DefaultPort, env.Port)
	assert.Equal(t, DefaultLogLevel, env.LogLevel)
	assert.Equal(t, DefaultWorkerCount, env.WorkerCount)
	assert.Equal(t, int64(DefaultChunkSize), env.ChunkSize)

	cfg := env.ToAppConfig()
	def := NewAppConfig()
	assert.Equal(t, def.DBURL(), cfg.DBURL())
	assert.Equal(t, def.CreateTargetDir(), cfg.CreateTargetDir())
	assert.Equal(t, def.CatalogEnabled(), cfg.CatalogEnabled())
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	clearEnvVars(t)
	dir := t.TempDir()
	t.Setenv("PORT", "9090")
	t.Setenv("DATA_DIR", dir)
	t.Setenv("LOG_FORMAT", "JSON")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CHUNK_SIZE", "4096")
	t.Setenv("WRITE_MANIFEST", "true")
	t.Setenv("CREATE_TARGET_DIR", "false")
	t.Setenv("DISABLE_CATALOG", "true")
	t.Setenv("WORKER_COUNT", "4")
	t.Setenv("API_KEYS", "k1,k2")

	env, err := LoadFromEnv()
	require.NoError(t, err)
	cfg := env.ToAppConfig()

	assert.Equal(t, 9090, cfg.Port())
	assert.Equal(t, dir, cfg.DataDir())
	assert.Equal(t, "sqlite:///"+filepath.Join(dir, "splitmerge.db"), cfg.DBURL())
	assert.Equal(t, LogFormatJSON, cfg.LogFormat())
	assert.Equal(t, "DEBUG", cfg.LogLevel())
	assert.Equal(t, int64(4096), cfg.ChunkSize())
	assert.True(t, cfg.WriteManifest())
	assert.False(t, cfg.CreateTargetDir())
	assert.False(t, cfg.CatalogEnabled())
	assert.Equal(t, 4, cfg.WorkerCount())
	assert.Equal(t, []string{"k1", "k2"}, cfg.APIKeys())
}

func TestLoadFromEnv_InvalidNumber(t *testing.T) {
	clearEnvVars(t)
	t.Setenv("CHUNK_SIZE", "lots")

	_, err := LoadFromEnv()
	assert.Error(t, err)
}

func TestLoadFromEnvWithPrefix(t *testing.T) {
	clearEnvVars(t)
	t.Setenv("SPLITMERGE_PORT", "7000")

	cfg, err := LoadFromEnvWithPrefix("SPLITMERGE")
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Port)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	clearEnvVars(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("CHUNK_SIZE=512\nWRITE_MANIFEST=true\n"), 0o644))
	t.Cleanup(func() {
		_ = os.Unsetenv("CHUNK_SIZE")
		_ = os.Unsetenv("WRITE_MANIFEST")
	})

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, int64(512), cfg.ChunkSize())
	assert.True(t, cfg.WriteManifest())
}

func TestLoadDotEnv_MissingFileIsNotAnError(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}

func TestParseLogFormat(t *testing.T) {
	assert.Equal(t, LogFormatJSON, ParseLogFormat("json"))
	assert.Equal(t, LogFormatJSON, ParseLogFormat(" JSON "))
	assert.Equal(t, LogFormatPretty, ParseLogFormat("pretty"))
	assert.Equal(t, LogFormatPretty, ParseLogFormat("anything"))
}

func clearEnvVars(t *testing.T) {
	t.Helper()

	vars := []string{
		"HOST",
		"PORT",
		"DATA_DIR",
		"DB_URL",
		"DISABLE_CATALOG",
		"LOG_LEVEL",
		"LOG_FORMAT",
		"CHUNK_SIZE",
		"WRITE_MANIFEST",
		"CREATE_TARGET_DIR",
		"WORKER_COUNT",
		"API_KEYS",
		"SPLITMERGE_PORT",
	}

	for _, v := range vars {
		t.Setenv(v, "")
		_ = os.Unsetenv(v)
	}
}
