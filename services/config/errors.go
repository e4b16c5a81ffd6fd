package config

import (
	"errors"
	"fmt"
)

// ErrNotFound reports that no configuration file exists at the resolved
// location.
var ErrNotFound = errors.New("config file not found")

// ParseError wraps a YAML decoding failure with the offending path.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse config %q: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError reports a configuration value the requested service
// needs but the file leaves missing or invalid.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config field %q: %s", e.Field, e.Message)
}
