package docker

import (
	"context"
	"fmt"
	"strings"

	"github.com/containerd/errdefs"

	"github.com/moby/moby/client"

	"github.com/paulokuong/airflow-run/models"
	"github.com/paulokuong/airflow-run/services"
)

// ListManaged returns every container this tool created, running or
// stopped.
func (r *DockerRuntime) ListManaged(ctx context.Context) ([]models.ManagedContainer, error) {
	f := make(client.Filters).
		Add("label", services.LabelManaged+"=true")

	containers, err := r.client.ContainerList(ctx, client.ContainerListOptions{
		All:     true,
		Filters: f,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: list containers: %v", ErrUnavailable, err)
	}

	out := make([]models.ManagedContainer, 0, len(containers.Items))
	for _, c := range containers.Items {
		inspect, err := r.client.ContainerInspect(ctx, c.ID, client.ContainerInspectOptions{})
		if err != nil {
			// If it vanished between list and inspect, ignore.
			if errdefs.IsNotFound(err) {
				continue
			}
			return nil, fmt.Errorf("inspect container %q: %w", c.ID, err)
		}

		mc := models.ManagedContainer{
			ID:   c.ID,
			Name: strings.TrimPrefix(inspect.Container.Name, "/"),
		}
		if inspect.Container.Config != nil && inspect.Container.Config.Labels != nil {
			mc.Service = inspect.Container.Config.Labels[services.LabelService]
		}
		if inspect.Container.State != nil {
			mc.Running = inspect.Container.State.Running
		}

		out = append(out, mc)
	}

	return out, nil
}

// StopManaged stops one managed container by name. Containers this tool
// did not create are refused rather than stopped.
func (r *DockerRuntime) StopManaged(ctx context.Context, name string) error {
	inspect, err := r.client.ContainerInspect(ctx, name, client.ContainerInspectOptions{})
	if err != nil {
		if errdefs.IsNotFound(err) {
			return &OperationError{Op: "stop container", Name: name, Err: fmt.Errorf("no such container")}
		}
		return fmt.Errorf("%w: inspect container %q: %v", ErrUnavailable, name, err)
	}

	managed := false
	if inspect.Container.Config != nil {
		managed = services.IsManaged(inspect.Container.Config.Labels)
	}
	if !managed {
		return &OperationError{Op: "stop container", Name: name, Err: fmt.Errorf("not managed by airflow-run")}
	}

	if _, err := r.client.ContainerStop(ctx, name, client.ContainerStopOptions{}); err != nil {
		return &OperationError{Op: "stop container", Name: name, Err: err}
	}

	return nil
}
