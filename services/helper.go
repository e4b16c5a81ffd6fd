package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/paulokuong/airflow-run/models"
)

// NetworkName is the shared user-defined network every managed container
// joins, so services can address each other by container name.
const NetworkName = "airflow-run"

// Labels stamped on every managed container and network.
const (
	LabelManaged = "airflow-run.managed"
	LabelService = "airflow-run.service"
	LabelRun     = "airflow-run.run"
	LabelQueue   = "airflow-run.queue"
)

// ContainerName returns the deterministic container name for a service.
// Backing services keep the name declared in their config block; engine
// roles get one fixed name each, except workers, which are keyed by queue.
func ContainerName(cfg *models.ClusterConfig, service models.Service, queue string) string {
	switch service {
	case models.ServiceRabbitMQ:
		return cfg.RabbitMQ.Name
	case models.ServicePostgreSQL:
		return cfg.PostgreSQL.Name
	case models.ServiceWorker:
		return "airflow_worker_" + SafeName(queue)
	default:
		return "airflow_" + string(service)
	}
}

// SafeName keeps names docker-friendly and deterministic. Case is
// preserved: queues differing only by case name distinct containers.
func SafeName(s string) string {
	s = strings.TrimSpace(s)
	return strings.ReplaceAll(s, " ", "-")
}

// IsManaged reports whether a label set marks a container as created by
// this tool. Listing and kill eligibility share this predicate.
func IsManaged(labels map[string]string) bool {
	return labels[LabelManaged] == "true"
}

// FormatEnv renders an environment map as the KEY=VALUE slice the runtime
// expects. Keys are sorted so repeated runs produce identical container
// definitions.
func FormatEnv(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, fmt.Sprintf("%s=%s", k, env[k]))
	}
	return out
}
