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

// envMap returns a lookupEnv func backed by m.
func envMap(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestLoad_Defaults(t *testing.T) {
	home := t.TempDir()

	cfg, err := config.Load("", envMap(map[string]string{config.EnvHome: home}))
	require.NoError(t, err)

	assert.Equal(t, config.DefaultEndpoint, cfg.API.Endpoint)
	assert.Equal(t, "us", cfg.API.Country)
	assert.Equal(t, "USD", cfg.API.Currency)
	assert.Equal(t, "gkp", cfg.API.DataSource)
	assert.Equal(t, 100, cfg.Batch.Size)
	assert.Equal(t, time.Duration(0), cfg.API.Timeout)
	assert.Equal(t, filepath.Join(home, "config.yaml"), cfg.ConfigPath())
	require.NoError(t, cfg.Validate())
}

func TestLoad_Precedence(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte(`
api:
  endpoint: http://global.example/kw
batch:
  size: 50
logging:
  level: warn
`), 0o600))

	overlay := writeOverlay(t, "batch:\n  size: 40\n")

	t.Run("global then overlay", func(t *testing.T) {
		cfg, err := config.Load(overlay, envMap(map[string]string{config.EnvHome: home}))
		require.NoError(t, err)
		assert.Equal(t, "http://global.example/kw", cfg.API.Endpoint)
		assert.Equal(t, 40, cfg.Batch.Size)
		assert.Equal(t, "warn", cfg.Logging.Level)
	})

	t.Run("env wins over files", func(t *testing.T) {
		cfg, err := config.Load(overlay, envMap(map[string]string{
			config.EnvHome:      home,
			config.EnvEndpoint:  "http://env.example/kw",
			config.EnvBatchSize: "7",
			config.EnvLogLevel:  "debug",
		}))
		require.NoError(t, err)
		assert.Equal(t, "http://env.example/kw", cfg.API.Endpoint)
		assert.Equal(t, 7, cfg.Batch.Size)
		assert.Equal(t, "debug", cfg.Logging.Level)
	})

	t.Run("bad batch size env", func(t *testing.T) {
		_, err := config.Load("", envMap(map[string]string{
			config.EnvHome:      home,
			config.EnvBatchSize: "ten",
		}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), config.EnvBatchSize)
	})

	t.Run("missing overlay is an error", func(t *testing.T) {
		_, err := config.Load(filepath.Join(home, "absent.yaml"), envMap(map[string]string{config.EnvHome: home}))
		require.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{name: "defaults valid", mutate: func(*config.Config) {}},
		{name: "max batch size", mutate: func(c *config.Config) { c.Batch.Size = 100 }},
		{name: "empty endpoint", mutate: func(c *config.Config) { c.API.Endpoint = "" }, wantErr: "api.endpoint"},
		{name: "zero batch size", mutate: func(c *config.Config) { c.Batch.Size = 0 }, wantErr: "batch.size"},
		{name: "oversized batch", mutate: func(c *config.Config) { c.Batch.Size = 101 }, wantErr: "batch.size"},
		{name: "negative timeout", mutate: func(c *config.Config) { c.API.Timeout = -time.Second }, wantErr: "api.timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	home := t.TempDir()
	cfg := config.Default()
	cfg.SetConfigPath(filepath.Join(home, "nested", "config.yaml"))
	cfg.API.Timeout = 15 * time.Second
	cfg.Batch.Size = 20

	require.NoError(t, cfg.Save())

	loaded, err := config.Load("", envMap(map[string]string{config.EnvHome: filepath.Join(home, "nested")}))
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, loaded.API.Timeout)
	assert.Equal(t, 20, loaded.Batch.Size)
	assert.Equal(t, cfg.API.Endpoint, loaded.API.Endpoint)

	_, statErr := os.Stat(cfg.ConfigPath() + ".tmp")
	assert.True(t, os.IsNotExist(statErr))
}

func TestSave_NoPath(t *testing.T) {
	cfg := config.Default()
	require.Error(t, cfg.Save())
}

func TestLoggingConfig_ToLoggingConfig(t *testing.T) {
	lc := config.LoggingConfig{Level: "debug", Format: "json"}
	out := lc.ToLoggingConfig()
	assert.Equal(t, "stderr", out.Output)
	assert.Equal(t, "debug", out.Level)

	lc.File = filepath.Join(t.TempDir(), "logs", "kw.log")
	out = lc.ToLoggingConfig()
	assert.Equal(t, "file", out.Output)
	assert.Equal(t, lc.File, out.File)

	require.NoError(t, lc.EnsureLogDir())
	info, err := os.Stat(filepath.Dir(lc.File))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestFilePath(t *testing.T) {
	home := t.TempDir()
	path, err := config.FilePath(envMap(map[string]string{config.EnvHome: home}))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "config.yaml"), path)
}
