package orchestrator

import (
	"fmt"

	"github.com/paulokuong/airflow-run/models"
)

// Environment keys consumed by the Airflow engine image.
const (
	EnvSQLAlchemyConn = "AIRFLOW__CORE__SQL_ALCHEMY_CONN"
	EnvResultBackend  = "AIRFLOW__CELERY__RESULT_BACKEND"
	EnvBrokerURL      = "AIRFLOW__CELERY__BROKER_URL"
)

// Credential keys injected into the backing-service containers.
const (
	EnvRabbitUser       = "RABBITMQ_DEFAULT_USER"
	EnvRabbitPass       = "RABBITMQ_DEFAULT_PASS"
	EnvPostgresUser     = "POSTGRES_USER"
	EnvPostgresPassword = "POSTGRES_PASSWORD"
)

// MetastoreDSN renders the SQLAlchemy connection string for the metastore.
func MetastoreDSN(spec models.ServiceSpec) string {
	return fmt.Sprintf("postgresql+psycopg2://%s:%s@%s:%d/postgres",
		spec.Username, spec.Password, spec.Host, spec.Port)
}

// ResultBackendURL renders the Celery result backend, which lives in the
// metastore.
func ResultBackendURL(spec models.ServiceSpec) string {
	return fmt.Sprintf("db+postgresql://%s:%s@%s:%d/postgres",
		spec.Username, spec.Password, spec.Host, spec.Port)
}

// BrokerURL renders the Celery broker URL, including the broker's virtual
// host.
func BrokerURL(spec models.ServiceSpec) string {
	return fmt.Sprintf("pyamqp://%s:%s@%s:%d/%s",
		spec.Username, spec.Password, spec.Host, spec.Port, spec.VirtualHost)
}
