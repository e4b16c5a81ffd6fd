package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/paulokuong/airflow-run/models"
)

const (
	// EnvConfigPath overrides the configuration file location when no
	// explicit path is given.
	EnvConfigPath = "AIRFLOWRUN_CONFIG_PATH"

	// DefaultFileName is tried in the working directory when neither an
	// explicit path nor EnvConfigPath is set.
	DefaultFileName = "config.yaml"
)

// ResolvePath picks the configuration location: the explicit path, then
// AIRFLOWRUN_CONFIG_PATH, then ./config.yaml. The first non-empty
// candidate wins; it is not required to exist yet.
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	return DefaultFileName
}

// Load reads and decodes the cluster configuration from the path resolved
// per ResolvePath.
func Load(explicit string) (*models.ClusterConfig, error) {
	path := ResolvePath(explicit)

	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}

	var cfg models.ClusterConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *models.ClusterConfig) {
	// The broker URL template always renders a virtual host segment.
	if cfg.RabbitMQ.VirtualHost == "" {
		cfg.RabbitMQ.VirtualHost = "/"
	}
}
