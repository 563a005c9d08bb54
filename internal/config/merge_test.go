package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/kwvolume/internal/config"
)

// writeOverlay is a test helper that writes YAML content to a temp file
// and returns its path.
func writeOverlay(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "overlay.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestMergeYAML_PartialSectionKeepsOtherFields(t *testing.T) {
	target := config.Default()
	overlay := writeOverlay(t, `
api:
  timeout: 30s
  country: gb
`)

	require.NoError(t, config.MergeYAML(target, overlay))

	assert.Equal(t, 30*time.Second, target.API.Timeout)
	assert.Equal(t, "gb", target.API.Country)
	// Fields the overlay omits keep their defaults.
	assert.Equal(t, config.DefaultEndpoint, target.API.Endpoint)
	assert.Equal(t, config.DefaultCurrency, target.API.Currency)
	assert.Equal(t, config.DefaultBatchSize, target.Batch.Size)
}

func TestMergeYAML_AllSections(t *testing.T) {
	target := config.Default()
	overlay := writeOverlay(t, `
api:
  endpoint: http://localhost:9999/kw
  data_source: cli
batch:
  size: 25
logging:
  level: debug
  format: json
  file: /tmp/kwvolume.log
`)

	require.NoError(t, config.MergeYAML(target, overlay))

	assert.Equal(t, "http://localhost:9999/kw", target.API.Endpoint)
	assert.Equal(t, "cli", target.API.DataSource)
	assert.Equal(t, 25, target.Batch.Size)
	assert.Equal(t, "debug", target.Logging.Level)
	assert.Equal(t, "json", target.Logging.Format)
	assert.Equal(t, "/tmp/kwvolume.log", target.Logging.File)
}

func TestMergeYAML_UnknownKeysIgnored(t *testing.T) {
	target := config.Default()
	overlay := writeOverlay(t, `
plugins:
  foo: bar
batch:
  size: 10
`)

	require.NoError(t, config.MergeYAML(target, overlay))
	assert.Equal(t, 10, target.Batch.Size)
}

func TestMergeYAML_EmptyFile(t *testing.T) {
	target := config.Default()
	overlay := writeOverlay(t, "# nothing here\n")

	require.NoError(t, config.MergeYAML(target, overlay))
	assert.Equal(t, config.Default().API, target.API)
}

func TestMergeYAML_Errors(t *testing.T) {
	t.Run("nil target", func(t *testing.T) {
		err := config.MergeYAML(nil, "unused")
		require.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		err := config.MergeYAML(config.Default(), filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading config file")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		overlay := writeOverlay(t, "api: [unclosed\n")
		err := config.MergeYAML(config.Default(), overlay)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parsing config YAML")
	})

	t.Run("wrong type leaves section untouched", func(t *testing.T) {
		target := config.Default()
		overlay := writeOverlay(t, "batch:\n  size: lots\n")
		err := config.MergeYAML(target, overlay)
		require.Error(t, err)
		assert.Equal(t, config.DefaultBatchSize, target.Batch.Size)
	})
}
