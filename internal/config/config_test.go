package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mabhi256/medi/utils"
)

func isolate(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	t.Setenv(EnvEndpoint, "")
	t.Setenv(EnvMaxUpload, "")
	t.Setenv(EnvDebug, "")
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "http://localhost:8000", cfg.Endpoint)
	assert.Equal(t, 10*utils.MB, cfg.MaxUploadBytes)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, "endpoint: https://api.example.com\nmax_upload: 2M\ndebug: true\nlog_file: /tmp/medi.log\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Config{
		Endpoint:       "https://api.example.com",
		MaxUploadBytes: 2 * utils.MB,
		Debug:          true,
		LogFile:        "/tmp/medi.log",
	}, cfg)
}

func TestLoadDefaultPathWhenPresent(t *testing.T) {
	isolate(t)
	path := DefaultPath()
	require.NotEmpty(t, path)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("max_upload: 512K\n"), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 512*utils.KB, cfg.MaxUploadBytes)
	assert.Equal(t, DefaultEndpoint, cfg.Endpoint)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, "endpoint: https://file.example.com\nmax_upload: 2M\n")
	t.Setenv(EnvEndpoint, "http://env.example.com:9000")
	t.Setenv(EnvMaxUpload, "1MB")
	t.Setenv(EnvDebug, "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://env.example.com:9000", cfg.Endpoint)
	assert.Equal(t, utils.MB, cfg.MaxUploadBytes)
	assert.True(t, cfg.Debug)
}

func TestLoadErrors(t *testing.T) {
	isolate(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist, "explicit path must exist")

	_, err = Load(writeConfig(t, "endpoint: [unclosed"))
	assert.Error(t, err)

	t.Setenv(EnvMaxUpload, "lots")
	_, err = Load("")
	assert.ErrorContains(t, err, EnvMaxUpload)

	t.Setenv(EnvMaxUpload, "")
	t.Setenv(EnvDebug, "maybe")
	_, err = Load("")
	assert.ErrorContains(t, err, EnvDebug)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default", func(*Config) {}, false},
		{"https with prefix", func(c *Config) { c.Endpoint = "https://host/api/v1" }, false},
		{"no scheme", func(c *Config) { c.Endpoint = "localhost:8000" }, true},
		{"ftp", func(c *Config) { c.Endpoint = "ftp://host" }, true},
		{"missing host", func(c *Config) { c.Endpoint = "http://" }, true},
		{"query", func(c *Config) { c.Endpoint = "http://host?x=1" }, true},
		{"zero upload", func(c *Config) { c.MaxUploadBytes = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if tt.wantErr {
				assert.Error(t, cfg.Validate())
			} else {
				assert.NoError(t, cfg.Validate())
			}
		})
	}
}
