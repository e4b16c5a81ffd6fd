package interfaces

import (
	"context"

	"github.com/paulokuong/airflow-run/models"
)

// Runtime is the container-runtime boundary. The orchestrator talks to a
// runtime through these four capabilities and nothing else.
type Runtime interface {
	// ContainerState inspects the named container. A missing container is
	// reported through the result, not as an error.
	ContainerState(ctx context.Context, name string) (models.ContainerState, error)

	// CreateAndStart creates and starts the container described by op and
	// returns its ID. For one-shot operations it blocks until the
	// container exits.
	CreateAndStart(ctx context.Context, op models.ContainerOperation) (string, error)

	// StartExisting starts a stopped container by name.
	StartExisting(ctx context.Context, name string) error

	// BuildImage builds an image and, when the operation asks for it,
	// authenticates against the registry and pushes.
	BuildImage(ctx context.Context, op models.BuildOperation) error
}
