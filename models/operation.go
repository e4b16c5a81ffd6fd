package models

// ResolvedEnvironment is the flattened environment for one service after
// layering and connection-string synthesis.
type ResolvedEnvironment map[string]string

// PortBinding exposes a container port. A zero HostPort exposes the port
// without publishing it on the host.
type PortBinding struct {
	HostPort      int
	ContainerPort int
}

// VolumeBinding bind-mounts a host path into the container.
type VolumeBinding struct {
	HostPath      string
	ContainerPath string
}

// ContainerOperation is a fully resolved container launch: everything the
// runtime needs, with no remaining references to configuration.
type ContainerOperation struct {
	Service Service
	Name    string
	Image   string
	Command []string

	// Env is the resolved environment as KEY=VALUE pairs, sorted by key.
	Env []string

	Ports   []PortBinding
	Volumes []VolumeBinding

	Network string
	Labels  map[string]string

	// WaitForExit runs the container to completion, streams its logs and
	// removes it afterwards (one-shot semantics).
	WaitForExit bool
}

// BuildOperation describes an image build and optional registry push.
type BuildOperation struct {
	ContextDir string
	Dockerfile string

	// BuildArgs carries the synthesized connection strings into the build.
	BuildArgs map[string]string

	// LocalRef is the name:tag the image is built under; ImageRef is the
	// registry-qualified reference it is retagged with for running and
	// pushing.
	LocalRef string
	ImageRef string

	RegistryURL string
	Username    string
	Password    string
	Push        bool
}
