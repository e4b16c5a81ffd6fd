package config

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/paulokuong/airflow-run/models"
)

// NewFernetKey returns a fresh 32-byte key in the URL-safe base64 form
// Airflow expects for AIRFLOW__CORE__FERNET_KEY.
func NewFernetKey() (string, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("generate fernet key: %w", err)
	}
	return base64.URLEncoding.EncodeToString(key), nil
}

// Default returns a complete starter configuration for a single-host
// deployment. Host fields default to the local hostname so published
// ports are reachable both from this machine and from inside containers;
// operators running the backing services elsewhere edit them afterwards.
func Default() (*models.ClusterConfig, error) {
	key, err := NewFernetKey()
	if err != nil {
		return nil, err
	}

	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "localhost"
	}

	localDir, err := os.Getwd()
	if err != nil {
		localDir = "."
	}

	return &models.ClusterConfig{
		PrivateRegistry: false,
		RegistryURL:     "registry.hub.docker.com",
		Username:        "",
		Password:        "",
		Repository:      "pkuong/airflow-run",
		Image:           "airflow-run",
		Tag:             "latest",
		LocalDir:        localDir,
		WebserverPort:   8000,
		FlowerPort:      5555,
		Env: map[string]string{
			"AIRFLOW__CORE__EXECUTOR":      "CeleryExecutor",
			"AIRFLOW__CORE__LOAD_EXAMPLES": "False",
			"AIRFLOW__CORE__FERNET_KEY":    key,
			EnvDagsFolder:                  "/usr/local/airflow/airflow/dags",
			EnvBaseLogFolder:               "/usr/local/airflow/airflow/logs",
		},
		RabbitMQ: models.ServiceSpec{
			Name:        "rabbitmq",
			Username:    "airflow",
			Password:    "airflow",
			Host:        host,
			Port:        5672,
			VirtualHost: "/",
			Image:       "rabbitmq",
			Tag:         "3-management",
			Home:        "/var/lib/rabbitmq",
			UIPort:      15672,
			Env: map[string]string{
				"RABBITMQ_DEFAULT_USER": "airflow",
				"RABBITMQ_DEFAULT_PASS": "airflow",
			},
		},
		PostgreSQL: models.ServiceSpec{
			Name:     "postgresql",
			Username: "airflow",
			Password: "airflow",
			Host:     host,
			Port:     5432,
			Image:    "postgres",
			Tag:      "latest",
			Data:     "/var/lib/postgresql/data",
			Env: map[string]string{
				"POSTGRES_USER":     "airflow",
				"POSTGRES_PASSWORD": "airflow",
			},
		},
	}, nil
}

// Generate writes a starter configuration file. It refuses to overwrite
// an existing file.
func Generate(path string) (string, error) {
	if path == "" {
		path = DefaultFileName
	}
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("config file %q already exists", path)
	}

	cfg, err := Default()
	if err != nil {
		return "", err
	}

	b, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", fmt.Errorf("write config file %q: %w", path, err)
	}
	return path, nil
}
