package docker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/paulokuong/airflow-run/models"
)

// BuildImage builds the engine image under its local name, retags it
// with the registry-qualified reference and, when the operation asks for
// a push, authenticates and pushes, so the caller can distinguish "built
// locally but not published" from "build itself failed".
func (r *DockerRuntime) BuildImage(ctx context.Context, op models.BuildOperation) error {
	if err := r.runDocker(ctx, nil, buildArgs(op)...); err != nil {
		return &OperationError{Op: "build image", Name: op.LocalRef, Err: err}
	}

	if err := r.runDocker(ctx, nil, tagArgs(op)...); err != nil {
		return &OperationError{Op: "tag image", Name: op.ImageRef, Err: err}
	}

	if !op.Push {
		return nil
	}

	if err := r.runDocker(ctx, strings.NewReader(op.Password), loginArgs(op)...); err != nil {
		return fmt.Errorf("%w: %v", ErrAuthenticationFailed, err)
	}

	if err := r.runDocker(ctx, nil, "push", op.ImageRef); err != nil {
		return fmt.Errorf("%w: %v", ErrPushFailed, err)
	}

	return nil
}

// PullImage pulls an image through the docker CLI, streaming its
// progress to the operator.
func (r *DockerRuntime) PullImage(ctx context.Context, ref string) error {
	if err := r.runDocker(ctx, nil, "pull", ref); err != nil {
		return &OperationError{Op: "pull image", Name: ref, Err: err}
	}
	return nil
}

// buildArgs assembles the docker build argv. Build arguments are sorted
// so repeated builds issue identical commands.
func buildArgs(op models.BuildOperation) []string {
	args := []string{"build", "-t", op.LocalRef, "-f", op.Dockerfile}

	keys := make([]string, 0, len(op.BuildArgs))
	for k := range op.BuildArgs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "--build-arg", fmt.Sprintf("%s=%s", k, op.BuildArgs[k]))
	}

	return append(args, op.ContextDir)
}

// tagArgs retags the locally built image with its registry-qualified
// name.
func tagArgs(op models.BuildOperation) []string {
	return []string{"tag", op.LocalRef, op.ImageRef}
}

// loginArgs authenticates with the password on stdin so it never appears
// in the process list.
func loginArgs(op models.BuildOperation) []string {
	return []string{"login", op.RegistryURL, "--username", op.Username, "--password-stdin"}
}

func (r *DockerRuntime) runDocker(ctx context.Context, stdin io.Reader, args ...string) error {
	r.logger.Debug("running docker command", zap.Strings("args", args))

	cmd := exec.CommandContext(ctx, "docker", args...)
	cmd.Stdin = stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("docker %s exited with status %d", args[0], exitErr.ExitCode())
		}
		return fmt.Errorf("docker %s: %w", args[0], err)
	}

	return nil
}
