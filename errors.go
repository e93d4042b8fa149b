package routegate

import "errors"

var (
	// ErrEngineNotReady is returned when an Engine method is called on
	// a nil or unbuilt engine.
	ErrEngineNotReady = errors.New("engine not ready")
	// ErrBuilderUsed is returned when Build is called twice on the
	// same builder.
	ErrBuilderUsed = errors.New("builder already used")
	// ErrInvalidConfig wraps configuration validation failures.
	ErrInvalidConfig = errors.New("invalid configuration")
)
