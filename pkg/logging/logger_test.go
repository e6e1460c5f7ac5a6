package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Logger_WritesToFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "map.log")
	l := New(Options{FilePath: path, Level: -1})
	l.Info("hello")
	l.Infof("count=%d", 3)
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
	assert.Contains(t, string(data), "count=3")
}

func Test_Logger_With(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "map.log")
	base := New(Options{FilePath: path, Level: -1})
	child := base.With("partition", 3)
	child.Info("resized")
	require.NoError(t, child.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "resized")
	assert.Contains(t, string(data), "partition")
}
