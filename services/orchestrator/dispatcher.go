package orchestrator

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/paulokuong/airflow-run/interfaces"
	"github.com/paulokuong/airflow-run/models"
	"github.com/paulokuong/airflow-run/services/config"
)

// HealthChecker verifies that backing services accept connections before
// a dispatch proceeds.
type HealthChecker interface {
	CheckMetastore(ctx context.Context, spec models.ServiceSpec) error
	CheckBroker(ctx context.Context, spec models.ServiceSpec) error
}

// Dispatcher drives container operations through their state machine. It
// holds no state between invocations; the runtime's own object namespace
// is the single source of truth.
type Dispatcher struct {
	runtime interfaces.Runtime
	checker HealthChecker
	logger  *zap.Logger
	runID   string
}

// NewDispatcher builds a dispatcher. A nil checker skips connection
// checks.
func NewDispatcher(runtime interfaces.Runtime, checker HealthChecker, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		runtime: runtime,
		checker: checker,
		logger:  logger,
		runID:   uuid.NewString(),
	}
}

// Launch runs the full pipeline for one request: validate the config for
// the requested service, resolve its environment, synthesize the
// operation, check dependency connections, dispatch. Configuration and
// resolution errors fail before any runtime call is issued.
func (d *Dispatcher) Launch(ctx context.Context, cfg *models.ClusterConfig, req models.LaunchRequest) (models.DispatchResult, error) {
	pending := models.DispatchResult{State: models.DispatchPending}

	if err := config.ValidateFor(cfg, req.Service); err != nil {
		return pending, err
	}
	if req.Service == models.ServiceWorker && strings.TrimSpace(req.Queue) == "" {
		return pending, &config.ValidationError{Field: "queue", Message: "required when running a worker"}
	}

	env, err := Resolve(cfg, req.Service, nil)
	if err != nil {
		return pending, err
	}

	op, err := Synthesize(cfg, req, env, d.runID)
	if err != nil {
		return pending, err
	}

	if err := d.checkDependencies(ctx, cfg, req.Service); err != nil {
		return pending, err
	}

	return d.Dispatch(ctx, op)
}

// Build validates the registry fields and hands the synthesized build
// operation to the runtime.
func (d *Dispatcher) Build(ctx context.Context, cfg *models.ClusterConfig, dockerfile string) error {
	if err := config.ValidateBuild(cfg); err != nil {
		return err
	}

	op, err := SynthesizeBuild(cfg, dockerfile)
	if err != nil {
		return err
	}

	d.logger.Info("building image",
		zap.String("image", op.ImageRef),
		zap.String("context", op.ContextDir),
		zap.Bool("push", op.Push))

	return d.runtime.BuildImage(ctx, op)
}

// Dispatch runs one operation through PENDING -> ISSUED and on to a
// terminal state. A running container with the deterministic name ends
// the dispatch as ALREADY_RUNNING; a stopped one is started in place so
// container-local state survives; otherwise the runtime creates a fresh
// container. Runtime failures surface verbatim and are never retried.
func (d *Dispatcher) Dispatch(ctx context.Context, op models.ContainerOperation) (models.DispatchResult, error) {
	res := models.DispatchResult{State: models.DispatchPending}

	d.logger.Debug("issuing operation",
		zap.String("container", op.Name),
		zap.String("service", string(op.Service)),
		zap.String("image", op.Image))
	res.State = models.DispatchIssued

	state, err := d.runtime.ContainerState(ctx, op.Name)
	if err != nil {
		res.State = models.DispatchFailed
		return res, err
	}

	if state.Running {
		d.logger.Info("container already running",
			zap.String("container", op.Name),
			zap.String("id", state.ID))
		res.State = models.DispatchAlreadyRunning
		res.ContainerID = state.ID
		return res, nil
	}

	if state.Exists {
		if err := d.runtime.StartExisting(ctx, op.Name); err != nil {
			res.State = models.DispatchFailed
			return res, err
		}
		d.logger.Info("started existing container",
			zap.String("container", op.Name),
			zap.String("id", state.ID))
		res.State = models.DispatchSucceeded
		res.ContainerID = state.ID
		return res, nil
	}

	id, err := d.runtime.CreateAndStart(ctx, op)
	if err != nil {
		res.State = models.DispatchFailed
		return res, err
	}

	d.logger.Info("started container",
		zap.String("container", op.Name),
		zap.String("id", id))
	res.State = models.DispatchSucceeded
	res.ContainerID = id
	return res, nil
}

func (d *Dispatcher) checkDependencies(ctx context.Context, cfg *models.ClusterConfig, service models.Service) error {
	if d.checker == nil {
		return nil
	}
	for _, dep := range dependenciesOf(service) {
		switch dep {
		case depMetastore:
			if err := d.checker.CheckMetastore(ctx, cfg.PostgreSQL); err != nil {
				return err
			}
		case depBroker:
			if err := d.checker.CheckBroker(ctx, cfg.RabbitMQ); err != nil {
				return err
			}
		}
	}
	return nil
}
