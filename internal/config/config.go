// Package config resolves client settings from defaults, an optional YAML
// file and MEDI_* environment variables. Command-line flags are applied on
// top by the cmd package.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/mabhi256/medi/internal/upload"
	"github.com/mabhi256/medi/utils"
)

const (
	DefaultEndpoint = "http://localhost:8000"

	EnvEndpoint  = "MEDI_ENDPOINT"
	EnvMaxUpload = "MEDI_MAX_UPLOAD"
	EnvDebug     = "MEDI_DEBUG"
)

type Config struct {
	Endpoint       string           `yaml:"endpoint"`
	MaxUploadBytes utils.MemorySize `yaml:"max_upload"`
	Debug          bool             `yaml:"debug"`
	LogFile        string           `yaml:"log_file"`
}

func Default() Config {
	return Config{
		Endpoint:       DefaultEndpoint,
		MaxUploadBytes: upload.DefaultMaxSize,
	}
}

// DefaultPath is $XDG_CONFIG_HOME/medi/config.yaml, or the platform
// equivalent from os.UserConfigDir.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "medi", "config.yaml")
}

// Load builds the configuration. An explicit path must exist; when path is
// empty the default location is read only if present.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return cfg, err
			}
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvEndpoint); ok && v != "" {
		c.Endpoint = v
	}
	if v, ok := lookup(EnvMaxUpload); ok && v != "" {
		size, err := utils.ParseMemorySize(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxUpload, err)
		}
		c.MaxUploadBytes = size
	}
	if v, ok := lookup(EnvDebug); ok && v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvDebug, err)
		}
		c.Debug = debug
	}
	return nil
}

func (c Config) Validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint %q: %w", c.Endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid endpoint %q: scheme must be http or https", c.Endpoint)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid endpoint %q: missing host", c.Endpoint)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return fmt.Errorf("invalid endpoint %q: query and fragment are not allowed", c.Endpoint)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload must be positive, got %s", c.MaxUploadBytes)
	}
	return nil
}
