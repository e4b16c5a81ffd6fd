package models

import "fmt"

// ClusterConfig is the on-disk YAML configuration for one Airflow
// deployment. It is loaded once per invocation and never mutated.
type ClusterConfig struct {
	PrivateRegistry bool   `yaml:"private_registry"`
	RegistryURL     string `yaml:"registry_url"`
	Username        string `yaml:"username"`
	Password        string `yaml:"password"`
	Repository      string `yaml:"repository"`
	Image           string `yaml:"image"`
	Tag             string `yaml:"tag"`

	// LocalDir is the absolute host path holding the dags/ and logs/
	// directories mounted into every engine container.
	LocalDir string `yaml:"local_dir"`

	WebserverPort int `yaml:"webserver_port"`
	FlowerPort    int `yaml:"flower_port"`

	CustomMountVolumes []MountVolume     `yaml:"custom_mount_volumes,omitempty"`
	Env                map[string]string `yaml:"env"`

	RabbitMQ   ServiceSpec `yaml:"rabbitmq"`
	PostgreSQL ServiceSpec `yaml:"postgresql"`
}

// EngineImageRef is the fully qualified Airflow image reference
// (registry/repository:tag) every engine role runs.
func (c *ClusterConfig) EngineImageRef() string {
	return fmt.Sprintf("%s/%s:%s", c.RegistryURL, c.Repository, c.Tag)
}

// LocalImageRef is the unqualified name:tag the engine image is built
// under before it is retagged for the registry.
func (c *ClusterConfig) LocalImageRef() string {
	return fmt.Sprintf("%s:%s", c.Image, c.Tag)
}
