package orchestrator

import "fmt"

// MissingFieldError reports a dependency field that environment resolution
// needs but the configuration leaves absent or empty. It is raised before
// any container-lifecycle call is issued.
type MissingFieldError struct {
	Dependency string
	Field      string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("dependency %q: field %q is missing or empty", e.Dependency, e.Field)
}
