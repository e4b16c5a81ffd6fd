package docker

import (
	"errors"
	"fmt"
)

// ErrUnavailable reports that the Docker daemon cannot be reached.
var ErrUnavailable = errors.New("container runtime unavailable")

// ErrAuthenticationFailed reports a rejected registry login. The image
// was built locally but not published.
var ErrAuthenticationFailed = errors.New("registry authentication failed")

// ErrPushFailed reports a failed push after a successful build and login.
var ErrPushFailed = errors.New("image push failed")

// OperationError wraps a container or image operation the runtime
// rejected, keeping the runtime's own diagnostic text.
type OperationError struct {
	Op   string
	Name string
	Err  error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Name, e.Err)
}

func (e *OperationError) Unwrap() error { return e.Err }
