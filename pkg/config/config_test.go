package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Default(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 16, cfg.Table.InitialCapacity)
	assert.Equal(t, 64, cfg.Table.Partitions)
}

func Test_Load(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "densehash.toml")
	contents := `
[table]
initial_capacity = 1024
max_load_factor = 0.8
partitions = 64

[logging]
level = "debug"
file_path = "/var/log/densehash.log"
max_size_mb = 50
also_stderr = false
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1024, cfg.Table.InitialCapacity)
	assert.Equal(t, 0.8, cfg.Table.MaxLoadFactor)
	assert.Equal(t, 64, cfg.Table.Partitions)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 50, cfg.Logging.MaxSizeMB)
	assert.False(t, cfg.Logging.AlsoStderr)
}

func Test_Load_PartialOverridesKeepDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "partial.toml")
	require.NoError(t, os.WriteFile(path, []byte("[table]\npartitions = 4\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Table.Partitions)
	assert.Equal(t, 16, cfg.Table.InitialCapacity)
	assert.Equal(t, 0.75, cfg.Table.MaxLoadFactor)
}

func Test_Validate_RejectsBadLoadFactor(t *testing.T) {
	cfg := Default()
	cfg.Table.MaxLoadFactor = 1.5
	assert.Error(t, cfg.Validate())
}

func Test_Load_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/densehash.toml")
	assert.Error(t, err)
}
