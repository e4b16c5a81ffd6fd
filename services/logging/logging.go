package logging

import "go.uber.org/zap"

// New builds the process logger. Debug switches to the development
// encoder with debug-level output.
func New(debug bool) *zap.Logger {
	if debug {
		return zap.Must(zap.NewDevelopment())
	}
	return zap.Must(zap.NewProduction())
}
