package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"etl_manager/internal/config"
)

func TestNewWritesToDir(t *testing.T) {
	dir := t.TempDir()

	log, err := New(config.LogConfig{Level: "debug", Dir: dir})
	require.NoError(t, err)
	log.Infow("hello", "k", "v")
	_ = log.Sync()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(config.LogConfig{Level: "loud"})
	assert.Error(t, err)
}
