package models

type MountVolume struct {
	// Path on the machine running the CLI
	HostPath string `yaml:"host_path"`

	// Path inside the container where the directory is mounted
	ContainerPath string `yaml:"container_path"`
}
