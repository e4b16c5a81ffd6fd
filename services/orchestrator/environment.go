package orchestrator

import (
	"maps"

	"github.com/paulokuong/airflow-run/models"
)

// dependency identifies a backing service a role needs at launch.
type dependency string

const (
	depMetastore dependency = "postgresql"
	depBroker    dependency = "rabbitmq"
)

// dependenciesOf returns the backing services a service needs, in the
// order their connection strings are synthesized.
func dependenciesOf(service models.Service) []dependency {
	switch service {
	case models.ServiceWebserver, models.ServiceScheduler, models.ServiceWorker:
		return []dependency{depMetastore, depBroker}
	case models.ServiceFlower:
		return []dependency{depBroker}
	case models.ServiceInitDB:
		return []dependency{depMetastore}
	}
	return nil
}

// Resolve builds the environment for one service. Layers, later wins:
// the service's own env block; the global env block (engine roles only,
// backing services keep their block self-contained); synthesized
// connection and credential values; explicit overrides.
func Resolve(cfg *models.ClusterConfig, service models.Service, overrides map[string]string) (models.ResolvedEnvironment, error) {
	env := models.ResolvedEnvironment{}

	switch {
	case service == models.ServiceRabbitMQ:
		maps.Copy(env, cfg.RabbitMQ.Env)
		if cfg.RabbitMQ.Username != "" {
			env[EnvRabbitUser] = cfg.RabbitMQ.Username
		}
		if cfg.RabbitMQ.Password != "" {
			env[EnvRabbitPass] = cfg.RabbitMQ.Password
		}

	case service == models.ServicePostgreSQL:
		maps.Copy(env, cfg.PostgreSQL.Env)
		if cfg.PostgreSQL.Username != "" {
			env[EnvPostgresUser] = cfg.PostgreSQL.Username
		}
		if cfg.PostgreSQL.Password != "" {
			env[EnvPostgresPassword] = cfg.PostgreSQL.Password
		}

	case service.IsEngineRole():
		maps.Copy(env, cfg.Env)
		if err := synthesizeConnections(cfg, dependenciesOf(service), env); err != nil {
			return nil, err
		}
	}

	maps.Copy(env, overrides)
	return env, nil
}

// synthesizeConnections writes the connection strings for deps into env,
// using the fixed templates. Every referenced dependency must have host,
// port, username and password configured.
func synthesizeConnections(cfg *models.ClusterConfig, deps []dependency, env models.ResolvedEnvironment) error {
	for _, dep := range deps {
		switch dep {
		case depMetastore:
			if err := requireConnectionFields(dep, cfg.PostgreSQL); err != nil {
				return err
			}
			env[EnvSQLAlchemyConn] = MetastoreDSN(cfg.PostgreSQL)
			env[EnvResultBackend] = ResultBackendURL(cfg.PostgreSQL)

		case depBroker:
			if err := requireConnectionFields(dep, cfg.RabbitMQ); err != nil {
				return err
			}
			env[EnvBrokerURL] = BrokerURL(cfg.RabbitMQ)
		}
	}
	return nil
}

func requireConnectionFields(dep dependency, spec models.ServiceSpec) error {
	missing := ""
	switch {
	case spec.Host == "":
		missing = "host"
	case spec.Port == 0:
		missing = "port"
	case spec.Username == "":
		missing = "username"
	case spec.Password == "":
		missing = "password"
	}
	if missing != "" {
		return &MissingFieldError{Dependency: string(dep), Field: missing}
	}
	return nil
}
