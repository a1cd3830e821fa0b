package adapters

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobharvest/internal/logging/types"
)

func entry(message string) *types.LogEntry {
	return &types.LogEntry{
		Level:     types.InfoLevel,
		Message:   message,
		Timestamp: time.Now().UTC(),
		Fields:    map[string]interface{}{"source": "indeed"},
	}
}

func TestFileAdapterWritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "harvest.log")
	adapter, err := NewFileAdapter("file", FileConfig{FilePath: path})
	require.NoError(t, err)
	defer adapter.Close()

	require.NoError(t, adapter.Write(entry("Harvest run complete")))
	require.NoError(t, adapter.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &line))
	assert.Equal(t, "Harvest run complete", line["message"])
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "indeed", line["source"])
}

func TestFileAdapterRotatesAtMaxSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "harvest.log")
	adapter, err := NewFileAdapter("file", FileConfig{FilePath: path, MaxSize: 1})
	require.NoError(t, err)
	defer adapter.Close()

	require.NoError(t, adapter.Write(entry("first")))
	require.NoError(t, adapter.Write(entry("second")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	backups := 0
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "harvest.log.") {
			backups++
		}
	}
	assert.Equal(t, 1, backups)
}

func TestFileAdapterHealthAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "harvest.log")
	adapter, err := NewFileAdapter("file", FileConfig{FilePath: path})
	require.NoError(t, err)

	assert.NoError(t, adapter.Health())
	require.NoError(t, adapter.Close())
	assert.Error(t, adapter.Health())
}
