package main

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

const testConfigYAML = `
is_production: true
log_level: debug
log_file: ./var/libcat.log
storage:
  backend: bolt
csv:
  filepath: ./var/books.csv
boltdb:
  filepath: ./var/books.db
  timeout: 3s
  bucket_name: catalog
redis:
  host: localhost
  port: "6379"
  dial_timeout: 2s
  pool_size: 4
`

func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadAndInitConfigs(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent")

	t.Run("from yaml file", func(t *testing.T) {
		cfgFile := writeTestFile(t, "config.yml", testConfigYAML)
		config, err := LoadAndInitConfigs(cfgFile, missing, "abc123", "v1.0.0", "2023-07-02")
		require.NoError(t, err)

		assert.True(t, config.IsProduction)
		assert.Equal(t, zapcore.DebugLevel, config.LogLevel)
		assert.Equal(t, "./var/libcat.log", config.LogFile)
		assert.Equal(t, BackendBolt, config.Storage.Backend)
		assert.Equal(t, "./var/books.csv", config.CSV.FilePath)
		assert.Equal(t, BoltDBConfig{FilePath: "./var/books.db", Timeout: 3 * time.Second, BucketName: "catalog"}, config.BoltDB)
		assert.Equal(t, "6379", config.Redis.Port)
		assert.Equal(t, 2*time.Second, config.Redis.DialTimeout)
		assert.Equal(t, 4, config.Redis.PoolSize)
		assert.Equal(t, HBooks, config.Redis.Key)
		assert.Equal(t, "abc123", config.GitCommit)
		assert.Equal(t, "v1.0.0", config.GitTag)
		assert.Equal(t, "2023-07-02", config.BuildTime)
	})

	t.Run("defaults without any file", func(t *testing.T) {
		wd, err := os.Getwd()
		require.NoError(t, err)
		require.NoError(t, os.Chdir(t.TempDir()))
		t.Cleanup(func() { _ = os.Chdir(wd) })
		config, err := LoadAndInitConfigs(DefaultConfigFile, DefaultEnvFile, "", "", "")
		require.NoError(t, err)

		assert.False(t, config.IsProduction)
		assert.Equal(t, zapcore.InfoLevel, config.LogLevel)
		assert.Equal(t, "./logs/library_management.log", config.LogFile)
		assert.Equal(t, BackendCSV, config.Storage.Backend)
		assert.Equal(t, "./database/book_data.csv", config.CSV.FilePath)
		assert.Equal(t, "./database/book_data.db", config.BoltDB.FilePath)
		assert.Equal(t, "books", config.BoltDB.BucketName)
		assert.Equal(t, 5*time.Second, config.BoltDB.Timeout)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		t.Setenv("LIBCAT_STORAGE_BACKEND", "csv")
		t.Setenv("LIBCAT_CSV_FILE_PATH", "/tmp/catalog.csv")
		cfgFile := writeTestFile(t, "config.yml", testConfigYAML)

		config, err := LoadAndInitConfigs(cfgFile, missing, "", "", "")
		require.NoError(t, err)
		assert.Equal(t, BackendCSV, config.Storage.Backend)
		assert.Equal(t, "/tmp/catalog.csv", config.CSV.FilePath)
	})

	t.Run("environment file", func(t *testing.T) {
		// registered first so that the value set by the env file is restored.
		t.Setenv("LIBCAT_BOLTDB_BUCKET_NAME", "")
		os.Unsetenv("LIBCAT_BOLTDB_BUCKET_NAME")
		envFile := writeTestFile(t, "config.env", "LIBCAT_BOLTDB_BUCKET_NAME=shelf\n")

		cfgFile := writeTestFile(t, "config.yml", "")

		config, err := LoadAndInitConfigs(cfgFile, envFile, "", "", "")
		require.NoError(t, err)
		assert.Equal(t, "shelf", config.BoltDB.BucketName)
	})

	t.Run("missing explicit file", func(t *testing.T) {
		_, err := LoadAndInitConfigs(missing, missing, "", "", "")
		require.Error(t, err)
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("empty file", func(t *testing.T) {
		cfgFile := writeTestFile(t, "config.yml", "")
		config, err := LoadAndInitConfigs(cfgFile, missing, "", "", "")
		require.NoError(t, err)
		assert.Equal(t, BackendCSV, config.Storage.Backend)
	})

	t.Run("redis backend needs an address", func(t *testing.T) {
		cfgFile := writeTestFile(t, "config.yml", "storage:\n  backend: redis\n")
		_, err := LoadAndInitConfigs(cfgFile, missing, "", "", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "redis address")
	})

	t.Run("unknown backend", func(t *testing.T) {
		cfgFile := writeTestFile(t, "config.yml", "storage:\n  backend: mysql\n")
		_, err := LoadAndInitConfigs(cfgFile, missing, "", "", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown storage backend "mysql"`)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		cfgFile := writeTestFile(t, "config.yml", "storage: [\n")
		_, err := LoadAndInitConfigs(cfgFile, missing, "", "", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load configurations from file")
	})
}
