package docker

import (
	"context"
	"fmt"
	"net/netip"
	"os"
	"strconv"

	"github.com/containerd/errdefs"
	"github.com/docker/docker/pkg/stdcopy"

	"github.com/moby/moby/api/types/container"
	"github.com/moby/moby/api/types/mount"
	"github.com/moby/moby/api/types/network"
	"github.com/moby/moby/api/types/strslice"
	"github.com/moby/moby/client"

	"github.com/paulokuong/airflow-run/models"
	"github.com/paulokuong/airflow-run/services"
)

var anyHostIP = netip.MustParseAddr("0.0.0.0")

// CreateAndStart creates and starts the container described by op. For
// one-shot operations it follows the logs, waits for the exit status and
// removes the container afterwards.
func (r *DockerRuntime) CreateAndStart(ctx context.Context, op models.ContainerOperation) (string, error) {
	// 1) Make sure the shared network exists.
	if err := r.ensureNetwork(ctx, op.Network); err != nil {
		return "", err
	}

	// 2) Volume mounts (host paths only).
	mounts := make([]mount.Mount, 0, len(op.Volumes))
	for _, v := range op.Volumes {
		mounts = append(mounts, mount.Mount{
			Type:   mount.TypeBind,
			Source: v.HostPath,
			Target: v.ContainerPath,
		})
	}

	// 3) Port bindings (TCP only; host publish optional).
	exposed := network.PortSet{}
	portMap := network.PortMap{}

	for _, b := range op.Ports {
		if b.ContainerPort == 0 {
			continue
		}

		port, _ := network.PortFrom(uint16(b.ContainerPort), "tcp")
		exposed[port] = struct{}{}

		if b.HostPort > 0 {
			portMap[port] = append(portMap[port], network.PortBinding{
				HostIP:   anyHostIP,
				HostPort: strconv.Itoa(b.HostPort),
			})
		}
	}

	// 4) Container configs.
	cCfg := &container.Config{
		Image:        op.Image,
		Cmd:          strslice.StrSlice(op.Command),
		Env:          op.Env,
		Labels:       op.Labels,
		ExposedPorts: exposed,
	}

	hCfg := &container.HostConfig{
		Mounts:       mounts,
		PortBindings: portMap,
	}

	nCfg := &network.NetworkingConfig{
		EndpointsConfig: map[string]*network.EndpointSettings{
			op.Network: {},
		},
	}

	create := func() (string, error) {
		created, err := r.client.ContainerCreate(ctx, client.ContainerCreateOptions{
			Config:           cCfg,
			HostConfig:       hCfg,
			NetworkingConfig: nCfg,
			Name:             op.Name,
			Image:            op.Image,
		})
		if err != nil {
			return "", err
		}
		return created.ID, nil
	}

	// 5) Create container.
	containerID, err := create()
	if err != nil {
		switch {
		case errdefs.IsNotFound(err):
			// Image missing locally: pull it, then create again.
			if perr := r.PullImage(ctx, op.Image); perr != nil {
				return "", perr
			}
			containerID, err = create()
			if err != nil {
				return "", &OperationError{Op: "create container", Name: op.Name, Err: err}
			}

		default:
			// Race-safe: if something else created it, inspect and proceed.
			inspected, ie := r.client.ContainerInspect(ctx, op.Name, client.ContainerInspectOptions{})
			if ie != nil {
				return "", &OperationError{Op: "create container", Name: op.Name, Err: err}
			}
			containerID = inspected.Container.ID
		}
	}

	// 6) Start the container.
	if _, err := r.client.ContainerStart(ctx, containerID, client.ContainerStartOptions{}); err != nil {
		return "", &OperationError{Op: "start container", Name: op.Name, Err: err}
	}

	if op.WaitForExit {
		return containerID, r.waitForExit(ctx, containerID, op.Name)
	}

	return containerID, nil
}

// waitForExit streams logs while the container runs, waits for its exit
// status and removes it. A non-zero exit surfaces as an error after the
// logs are printed.
func (r *DockerRuntime) waitForExit(ctx context.Context, containerID, name string) error {
	rc, err := r.client.ContainerLogs(ctx, containerID, client.ContainerLogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     true,
		Timestamps: false,
		Since:      "0",
	})
	if err != nil {
		return &OperationError{Op: "logs container", Name: name, Err: err}
	}
	defer rc.Close()

	logDone := make(chan error, 1)
	go func() {
		_, err := stdcopy.StdCopy(os.Stdout, os.Stderr, rc)
		logDone <- err
	}()

	waitBodyC := r.client.ContainerWait(ctx, containerID, client.ContainerWaitOptions{})
	var statusCode int64

	select {
	case err := <-waitBodyC.Error:
		if err != nil {
			return &OperationError{Op: "wait container", Name: name, Err: err}
		}
	case res := <-waitBodyC.Result:
		statusCode = res.StatusCode
	}

	// The log stream ends when the container exits.
	if err := <-logDone; err != nil {
		return &OperationError{Op: "stream logs", Name: name, Err: err}
	}

	if _, err := r.client.ContainerRemove(ctx, containerID, client.ContainerRemoveOptions{
		Force:         true,
		RemoveVolumes: false,
	}); err != nil {
		return &OperationError{Op: "remove container", Name: name, Err: err}
	}

	return exitStatusError(name, statusCode)
}

// exitStatusError maps a one-shot container's exit status to the
// operation outcome.
func exitStatusError(name string, status int64) error {
	if status == 0 {
		return nil
	}
	return &OperationError{Op: "run container", Name: name, Err: fmt.Errorf("exited with status %d", status)}
}

// ensureNetwork creates the shared network if it does not exist yet.
func (r *DockerRuntime) ensureNetwork(ctx context.Context, name string) error {
	if _, err := r.client.NetworkInspect(ctx, name, client.NetworkInspectOptions{}); err == nil {
		return nil
	}

	_, err := r.client.NetworkCreate(ctx, name, client.NetworkCreateOptions{
		Labels: map[string]string{
			services.LabelManaged: "true",
		},
	})
	if err != nil {
		// Race-safe: re-inspect.
		if _, ie := r.client.NetworkInspect(ctx, name, client.NetworkInspectOptions{}); ie != nil {
			return fmt.Errorf("create network %q: %w", name, err)
		}
	}

	return nil
}
