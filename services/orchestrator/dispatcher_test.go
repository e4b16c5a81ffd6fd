package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/paulokuong/airflow-run/models"
	"github.com/paulokuong/airflow-run/services/config"
)

type fakeRuntime struct {
	states     map[string]models.ContainerState
	stateErr   error
	stateCalls int

	created   []models.ContainerOperation
	createErr error
	nextID    string

	started  []string
	startErr error

	builds   []models.BuildOperation
	buildErr error
}

func (f *fakeRuntime) ContainerState(ctx context.Context, name string) (models.ContainerState, error) {
	f.stateCalls++
	if f.stateErr != nil {
		return models.ContainerState{}, f.stateErr
	}
	return f.states[name], nil
}

func (f *fakeRuntime) CreateAndStart(ctx context.Context, op models.ContainerOperation) (string, error) {
	f.created = append(f.created, op)
	if f.createErr != nil {
		return "", f.createErr
	}
	return f.nextID, nil
}

func (f *fakeRuntime) StartExisting(ctx context.Context, name string) error {
	f.started = append(f.started, name)
	return f.startErr
}

func (f *fakeRuntime) BuildImage(ctx context.Context, op models.BuildOperation) error {
	f.builds = append(f.builds, op)
	return f.buildErr
}

type fakeChecker struct {
	metastoreCalls int
	brokerCalls    int
	metastoreErr   error
	brokerErr      error
}

func (f *fakeChecker) CheckMetastore(ctx context.Context, spec models.ServiceSpec) error {
	f.metastoreCalls++
	return f.metastoreErr
}

func (f *fakeChecker) CheckBroker(ctx context.Context, spec models.ServiceSpec) error {
	f.brokerCalls++
	return f.brokerErr
}

func TestDispatch_CreatesWhenAbsent(t *testing.T) {
	rt := &fakeRuntime{nextID: "c0ffee"}
	d := NewDispatcher(rt, nil, zap.NewNop())

	res, err := d.Dispatch(context.Background(), models.ContainerOperation{Name: "airflow_webserver"})
	require.NoError(t, err)

	assert.Equal(t, models.DispatchSucceeded, res.State)
	assert.Equal(t, "c0ffee", res.ContainerID)
	require.Len(t, rt.created, 1)
	assert.Empty(t, rt.started)
}

func TestDispatch_AlreadyRunning(t *testing.T) {
	rt := &fakeRuntime{states: map[string]models.ContainerState{
		"airflow_webserver": {Exists: true, Running: true, ID: "abc123"},
	}}
	d := NewDispatcher(rt, nil, zap.NewNop())

	res, err := d.Dispatch(context.Background(), models.ContainerOperation{Name: "airflow_webserver"})
	require.NoError(t, err)

	assert.Equal(t, models.DispatchAlreadyRunning, res.State)
	assert.Equal(t, "abc123", res.ContainerID)
	assert.Empty(t, rt.created)
	assert.Empty(t, rt.started)
}

func TestDispatch_StartsExistingStopped(t *testing.T) {
	rt := &fakeRuntime{states: map[string]models.ContainerState{
		"postgresql": {Exists: true, Running: false, ID: "olddata"},
	}}
	d := NewDispatcher(rt, nil, zap.NewNop())

	res, err := d.Dispatch(context.Background(), models.ContainerOperation{Name: "postgresql"})
	require.NoError(t, err)

	// The stopped container is started in place; no new container is
	// created, so its local state survives.
	assert.Equal(t, models.DispatchSucceeded, res.State)
	assert.Equal(t, "olddata", res.ContainerID)
	assert.Equal(t, []string{"postgresql"}, rt.started)
	assert.Empty(t, rt.created)
}

func TestDispatch_RuntimeFailureIsVerbatimAndNotRetried(t *testing.T) {
	cause := errors.New(`create container "airflow_webserver": port is already allocated`)
	rt := &fakeRuntime{createErr: cause}
	d := NewDispatcher(rt, nil, zap.NewNop())

	res, err := d.Dispatch(context.Background(), models.ContainerOperation{Name: "airflow_webserver"})
	require.Error(t, err)

	assert.Equal(t, models.DispatchFailed, res.State)
	assert.Equal(t, cause, err)
	assert.Len(t, rt.created, 1)
}

func TestDispatch_StateQueryFailure(t *testing.T) {
	cause := errors.New("runtime unavailable")
	rt := &fakeRuntime{stateErr: cause}
	d := NewDispatcher(rt, nil, zap.NewNop())

	res, err := d.Dispatch(context.Background(), models.ContainerOperation{Name: "airflow_webserver"})
	require.Error(t, err)

	assert.Equal(t, models.DispatchFailed, res.State)
	assert.Equal(t, cause, err)
	assert.Empty(t, rt.created)
	assert.Empty(t, rt.started)
}

func TestDispatch_StartExistingFailure(t *testing.T) {
	cause := errors.New("start failed")
	rt := &fakeRuntime{
		states:   map[string]models.ContainerState{"rabbitmq": {Exists: true, ID: "x"}},
		startErr: cause,
	}
	d := NewDispatcher(rt, nil, zap.NewNop())

	res, err := d.Dispatch(context.Background(), models.ContainerOperation{Name: "rabbitmq"})
	require.Error(t, err)
	assert.Equal(t, models.DispatchFailed, res.State)
	assert.Equal(t, cause, err)
}

func TestLaunch_IdempotentRerun(t *testing.T) {
	cfg := testConfig()
	rt := &fakeRuntime{nextID: "deadbeef"}
	d := NewDispatcher(rt, &fakeChecker{}, zap.NewNop())

	res, err := d.Launch(context.Background(), cfg, models.LaunchRequest{Service: models.ServiceWebserver})
	require.NoError(t, err)
	assert.Equal(t, models.DispatchSucceeded, res.State)
	require.Len(t, rt.created, 1)

	// Second run sees the container running and creates nothing new.
	rt.states = map[string]models.ContainerState{
		rt.created[0].Name: {Exists: true, Running: true, ID: "deadbeef"},
	}

	res, err = d.Launch(context.Background(), cfg, models.LaunchRequest{Service: models.ServiceWebserver})
	require.NoError(t, err)
	assert.Equal(t, models.DispatchAlreadyRunning, res.State)
	assert.Equal(t, "deadbeef", res.ContainerID)
	assert.Len(t, rt.created, 1)
}

func TestLaunch_ValidationStopsBeforeRuntime(t *testing.T) {
	cfg := testConfig()
	cfg.Tag = ""
	rt := &fakeRuntime{}
	checker := &fakeChecker{}
	d := NewDispatcher(rt, checker, zap.NewNop())

	_, err := d.Launch(context.Background(), cfg, models.LaunchRequest{Service: models.ServiceWebserver})
	require.Error(t, err)

	var vErr *config.ValidationError
	assert.ErrorAs(t, err, &vErr)
	assert.Zero(t, rt.stateCalls)
	assert.Empty(t, rt.created)
	assert.Zero(t, checker.metastoreCalls)
	assert.Zero(t, checker.brokerCalls)
}

func TestLaunch_WorkerRequiresQueue(t *testing.T) {
	cfg := testConfig()
	rt := &fakeRuntime{}
	d := NewDispatcher(rt, &fakeChecker{}, zap.NewNop())

	_, err := d.Launch(context.Background(), cfg, models.LaunchRequest{Service: models.ServiceWorker})
	require.Error(t, err)

	var vErr *config.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "queue", vErr.Field)
	assert.Zero(t, rt.stateCalls)
}

func TestLaunch_MissingDependencyFieldStopsBeforeRuntime(t *testing.T) {
	cfg := testConfig()
	cfg.RabbitMQ.Host = ""
	rt := &fakeRuntime{}
	checker := &fakeChecker{}
	d := NewDispatcher(rt, checker, zap.NewNop())

	_, err := d.Launch(context.Background(), cfg, models.LaunchRequest{Service: models.ServiceScheduler})
	require.Error(t, err)

	var missing *MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "rabbitmq", missing.Dependency)
	assert.Zero(t, rt.stateCalls)
	assert.Empty(t, rt.created)
	assert.Zero(t, checker.brokerCalls)
}

func TestLaunch_ProbeFailureBlocksDispatch(t *testing.T) {
	cfg := testConfig()
	cause := errors.New("rabbitmq is unreachable: dial tcp: connection refused")
	rt := &fakeRuntime{}
	d := NewDispatcher(rt, &fakeChecker{brokerErr: cause}, zap.NewNop())

	_, err := d.Launch(context.Background(), cfg, models.LaunchRequest{Service: models.ServiceFlower})
	require.Error(t, err)
	assert.Equal(t, cause, err)
	assert.Zero(t, rt.stateCalls)
	assert.Empty(t, rt.created)
}

func TestLaunch_ChecksDependenciesPerService(t *testing.T) {
	for _, tc := range []struct {
		service   models.Service
		queue     string
		metastore int
		broker    int
	}{
		{models.ServiceWebserver, "", 1, 1},
		{models.ServiceScheduler, "", 1, 1},
		{models.ServiceWorker, "etl", 1, 1},
		{models.ServiceFlower, "", 0, 1},
		{models.ServiceInitDB, "", 1, 0},
		{models.ServicePostgreSQL, "", 0, 0},
		{models.ServiceRabbitMQ, "", 0, 0},
	} {
		rt := &fakeRuntime{nextID: "id"}
		checker := &fakeChecker{}
		d := NewDispatcher(rt, checker, zap.NewNop())

		_, err := d.Launch(context.Background(), testConfig(), models.LaunchRequest{Service: tc.service, Queue: tc.queue})
		require.NoError(t, err, "service %s", tc.service)
		assert.Equal(t, tc.metastore, checker.metastoreCalls, "service %s metastore", tc.service)
		assert.Equal(t, tc.broker, checker.brokerCalls, "service %s broker", tc.service)
	}
}

func TestLaunch_NilCheckerSkipsProbes(t *testing.T) {
	rt := &fakeRuntime{nextID: "id"}
	d := NewDispatcher(rt, nil, zap.NewNop())

	res, err := d.Launch(context.Background(), testConfig(), models.LaunchRequest{Service: models.ServiceWebserver})
	require.NoError(t, err)
	assert.Equal(t, models.DispatchSucceeded, res.State)
}

func TestBuild_ValidatesBeforeRuntime(t *testing.T) {
	cfg := testConfig()
	cfg.PrivateRegistry = true
	rt := &fakeRuntime{}
	d := NewDispatcher(rt, nil, zap.NewNop())

	err := d.Build(context.Background(), cfg, "./Dockerfile")
	require.Error(t, err)

	var vErr *config.ValidationError
	assert.ErrorAs(t, err, &vErr)
	assert.Empty(t, rt.builds)
}

func TestBuild_HandsOperationToRuntime(t *testing.T) {
	cfg := testConfig()
	rt := &fakeRuntime{}
	d := NewDispatcher(rt, nil, zap.NewNop())

	require.NoError(t, d.Build(context.Background(), cfg, "./Dockerfile"))
	require.Len(t, rt.builds, 1)
	assert.Equal(t, "registry.hub.docker.com/team/airflow-run:v1", rt.builds[0].ImageRef)
	assert.Len(t, rt.builds[0].BuildArgs, 3)
}
