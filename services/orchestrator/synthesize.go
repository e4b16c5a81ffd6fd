package orchestrator

import (
	"fmt"
	"maps"
	"path/filepath"
	"strconv"

	"github.com/paulokuong/airflow-run/models"
	"github.com/paulokuong/airflow-run/services"
	"github.com/paulokuong/airflow-run/services/config"
)

// Container-side ports fixed by the images themselves.
const (
	portWebserver  = 8080
	portFlower     = 5555
	portPostgres   = 5432
	portRabbitMQ   = 5672
	portRabbitMQUI = 15672
	portWorkerLog  = 8793
)

// Synthesize turns a request plus its resolved environment into a
// runtime-ready container operation. Host ports come from config, the
// container side is the fixed per-service default.
func Synthesize(cfg *models.ClusterConfig, req models.LaunchRequest, env models.ResolvedEnvironment, runID string) (models.ContainerOperation, error) {
	op := models.ContainerOperation{
		Service: req.Service,
		Name:    services.ContainerName(cfg, req.Service, req.Queue),
		Network: services.NetworkName,
		Env:     services.FormatEnv(env),
		Labels: map[string]string{
			services.LabelManaged: "true",
			services.LabelService: string(req.Service),
			services.LabelRun:     runID,
		},
	}

	// Engine roles share the image and the dags/logs binds.
	if req.Service.IsEngineRole() {
		op.Image = cfg.EngineImageRef()
		vols, err := engineVolumes(cfg, env)
		if err != nil {
			return models.ContainerOperation{}, err
		}
		op.Volumes = vols
	}

	switch req.Service {
	case models.ServicePostgreSQL:
		op.Image = cfg.PostgreSQL.ImageRef()
		op.Ports = []models.PortBinding{
			{HostPort: cfg.PostgreSQL.Port, ContainerPort: portPostgres},
		}
		op.Volumes = []models.VolumeBinding{
			{HostPath: filepath.Join(cfg.LocalDir, "postgresql"), ContainerPath: cfg.PostgreSQL.Data},
		}

	case models.ServiceRabbitMQ:
		op.Image = cfg.RabbitMQ.ImageRef()
		op.Ports = []models.PortBinding{
			{HostPort: cfg.RabbitMQ.Port, ContainerPort: portRabbitMQ},
			{HostPort: cfg.RabbitMQ.UIPort, ContainerPort: portRabbitMQUI},
		}
		op.Volumes = []models.VolumeBinding{
			{HostPath: filepath.Join(cfg.LocalDir, "rabbitmq"), ContainerPath: cfg.RabbitMQ.Home},
		}

	case models.ServiceWebserver:
		op.Command = []string{"webserver", "-p", strconv.Itoa(portWebserver)}
		op.Ports = []models.PortBinding{
			{HostPort: cfg.WebserverPort, ContainerPort: portWebserver},
		}

	case models.ServiceScheduler:
		op.Command = []string{"scheduler"}

	case models.ServiceWorker:
		op.Command = []string{"worker", "-q", req.Queue}
		op.Ports = []models.PortBinding{
			{HostPort: req.WorkerLogPort, ContainerPort: portWorkerLog},
		}
		op.Labels[services.LabelQueue] = req.Queue

	case models.ServiceFlower:
		op.Command = []string{"flower", "-p", strconv.Itoa(portFlower)}
		op.Ports = []models.PortBinding{
			{HostPort: cfg.FlowerPort, ContainerPort: portFlower},
		}

	case models.ServiceInitDB:
		op.Command = []string{"initdb"}
		op.WaitForExit = true
	}

	return op, nil
}

// SynthesizeBuild describes the engine image build. The three connection
// strings are synthesized even though no dependent containers need to be
// running yet; they become build arguments so the image can embed default
// connection behavior.
func SynthesizeBuild(cfg *models.ClusterConfig, dockerfile string) (models.BuildOperation, error) {
	abs, err := filepath.Abs(dockerfile)
	if err != nil {
		return models.BuildOperation{}, fmt.Errorf("resolve dockerfile path %q: %w", dockerfile, err)
	}

	env := models.ResolvedEnvironment{}
	maps.Copy(env, cfg.Env)
	if err := synthesizeConnections(cfg, []dependency{depMetastore, depBroker}, env); err != nil {
		return models.BuildOperation{}, err
	}

	return models.BuildOperation{
		ContextDir: filepath.Dir(abs),
		Dockerfile: abs,
		BuildArgs: map[string]string{
			EnvSQLAlchemyConn: env[EnvSQLAlchemyConn],
			EnvResultBackend:  env[EnvResultBackend],
			EnvBrokerURL:      env[EnvBrokerURL],
		},
		LocalRef:    cfg.LocalImageRef(),
		ImageRef:    cfg.EngineImageRef(),
		RegistryURL: cfg.RegistryURL,
		Username:    cfg.Username,
		Password:    cfg.Password,
		Push:        cfg.PrivateRegistry,
	}, nil
}

// engineVolumes builds the dags/logs binds for engine roles, with
// custom_mount_volumes replacing a default that targets the same
// container path and appended otherwise.
func engineVolumes(cfg *models.ClusterConfig, env models.ResolvedEnvironment) ([]models.VolumeBinding, error) {
	dags := env[config.EnvDagsFolder]
	logs := env[config.EnvBaseLogFolder]
	if dags == "" {
		return nil, &config.ValidationError{Field: "env." + config.EnvDagsFolder, Message: "required"}
	}
	if logs == "" {
		return nil, &config.ValidationError{Field: "env." + config.EnvBaseLogFolder, Message: "required"}
	}

	vols := []models.VolumeBinding{
		{HostPath: filepath.Join(cfg.LocalDir, "dags"), ContainerPath: dags},
		{HostPath: filepath.Join(cfg.LocalDir, "logs"), ContainerPath: logs},
	}

	for _, custom := range cfg.CustomMountVolumes {
		kept := vols[:0]
		for _, v := range vols {
			if v.ContainerPath != custom.ContainerPath {
				kept = append(kept, v)
			}
		}
		vols = append(kept, models.VolumeBinding{
			HostPath:      custom.HostPath,
			ContainerPath: custom.ContainerPath,
		})
	}

	return vols, nil
}
