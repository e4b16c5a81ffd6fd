package models

import "fmt"

// Service identifies one launchable member of an Airflow deployment.
type Service string

const (
	ServicePostgreSQL Service = "postgresql"
	ServiceRabbitMQ   Service = "rabbitmq"
	ServiceWebserver  Service = "webserver"
	ServiceScheduler  Service = "scheduler"
	ServiceWorker     Service = "worker"
	ServiceFlower     Service = "flower"
	ServiceInitDB     Service = "initdb"
)

// Services lists every launchable service in a stable order.
func Services() []Service {
	return []Service{
		ServicePostgreSQL,
		ServiceRabbitMQ,
		ServiceWebserver,
		ServiceScheduler,
		ServiceWorker,
		ServiceFlower,
		ServiceInitDB,
	}
}

// ParseService maps a CLI argument to a Service. "postgres" is accepted as
// an alias for "postgresql".
func ParseService(s string) (Service, error) {
	switch s {
	case "postgres", "postgresql":
		return ServicePostgreSQL, nil
	case "rabbitmq":
		return ServiceRabbitMQ, nil
	case "webserver":
		return ServiceWebserver, nil
	case "scheduler":
		return ServiceScheduler, nil
	case "worker":
		return ServiceWorker, nil
	case "flower":
		return ServiceFlower, nil
	case "initdb":
		return ServiceInitDB, nil
	default:
		return "", fmt.Errorf("%q is not a valid service", s)
	}
}

// IsEngineRole reports whether the service runs the Airflow engine image
// rather than a backing store.
func (s Service) IsEngineRole() bool {
	switch s {
	case ServiceWebserver, ServiceScheduler, ServiceWorker, ServiceFlower, ServiceInitDB:
		return true
	}
	return false
}
