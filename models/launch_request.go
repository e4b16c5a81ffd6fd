package models

// LaunchRequest captures one CLI invocation that should end with a
// running container.
type LaunchRequest struct {
	Service Service

	// Queue names the Celery queue a worker consumes from. Required for
	// workers, ignored for every other service.
	Queue string

	// WorkerLogPort is the host port publishing the worker's log server.
	WorkerLogPort int
}
