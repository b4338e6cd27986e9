package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cruciblehq/cruxlaunch/internal/launch"
	"github.com/cruciblehq/cruxlaunch/internal/paths"
)

const (
	defaultEngine  = "docker"
	defaultBackend = "local"
)

// User configuration, read from the configuration file. Command line flags
// take precedence over every field.
type Config struct {
	BaseURL    string            `yaml:"base_url"`    // Service endpoint.
	APIKey     string            `yaml:"api_key"`     // Service credential.
	EnvFile    string            `yaml:"env_file"`    // Dotenv file with connection settings.
	Engine     string            `yaml:"engine"`      // Container engine client binary.
	Timeout    time.Duration     `yaml:"timeout"`     // Build deadline.
	EngineArgs map[string]string `yaml:"engine_args"` // Extra engine run arguments.
	Registry   *launch.Registry  `yaml:"registry"`    // Default registry coordinates.
}

// Reads the configuration file at path. A missing file yields an empty
// configuration.
func loadConfig(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	if cfg.EnvFile == "" {
		cfg.EnvFile = paths.EnvFile()
	}

	return cfg, nil
}

// Returns the first non-empty value.
func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
