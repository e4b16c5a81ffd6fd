package models

// DispatchState tracks one container operation through the dispatcher.
type DispatchState string

const (
	DispatchPending        DispatchState = "PENDING"
	DispatchIssued         DispatchState = "ISSUED"
	DispatchSucceeded      DispatchState = "SUCCEEDED"
	DispatchAlreadyRunning DispatchState = "ALREADY_RUNNING"
	DispatchFailed         DispatchState = "FAILED"
)

// DispatchResult is the terminal outcome of a dispatched operation.
type DispatchResult struct {
	State       DispatchState
	ContainerID string
}

// ContainerState is the runtime's view of a named container. A container
// that does not exist is the zero value.
type ContainerState struct {
	Exists  bool
	Running bool
	ID      string
}

// ManagedContainer is one deployment-managed container, as listed by the
// runtime.
type ManagedContainer struct {
	ID      string
	Name    string
	Service string
	Running bool
}
