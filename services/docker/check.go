package docker

import (
	"context"
	"fmt"

	"github.com/containerd/errdefs"

	"github.com/moby/moby/client"

	"github.com/paulokuong/airflow-run/models"
)

// ContainerState inspects one container by name. Absence is a clean
// result, not an error; any other inspect failure means the daemon is
// unreachable.
func (r *DockerRuntime) ContainerState(ctx context.Context, name string) (models.ContainerState, error) {
	resp, err := r.client.ContainerInspect(ctx, name, client.ContainerInspectOptions{})
	if err != nil {
		if errdefs.IsNotFound(err) {
			return models.ContainerState{}, nil
		}
		return models.ContainerState{}, fmt.Errorf("%w: inspect container %q: %v", ErrUnavailable, name, err)
	}

	state := models.ContainerState{Exists: true, ID: resp.Container.ID}
	if resp.Container.State != nil {
		state.Running = resp.Container.State.Running
	}

	return state, nil
}

// StartExisting starts a stopped container in place, preserving its
// identity and container-local state.
func (r *DockerRuntime) StartExisting(ctx context.Context, name string) error {
	if _, err := r.client.ContainerStart(ctx, name, client.ContainerStartOptions{}); err != nil {
		return &OperationError{Op: "start container", Name: name, Err: err}
	}
	return nil
}
