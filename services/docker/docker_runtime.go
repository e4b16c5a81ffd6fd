package docker

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/moby/moby/client"
)

// DockerRuntime implements interfaces.Runtime against the Docker Engine
// API, plus the auxiliary image and listing operations the CLI offers.
type DockerRuntime struct {
	client *client.Client
	logger *zap.Logger
}

// NewDockerRuntime initializes the runtime using environment variables
// (e.g. DOCKER_HOST) and API version negotiation.
func NewDockerRuntime(logger *zap.Logger) (*DockerRuntime, error) {
	c, err := client.New(
		client.FromEnv,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return &DockerRuntime{
		client: c,
		logger: logger,
	}, nil
}
