package recognition

import "errors"

var (
	// ErrInvalidInput marks a registration with a blank name or an
	// embedding of the wrong dimensionality.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDimensionMismatch marks a query embedding whose length does not
	// match the registry dimension. Callers recover by treating the
	// detection as Unknown; the pipeline keeps running.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrNotReady marks a lookup against recognition state that has not
	// been built yet, such as the identity index before any registration.
	ErrNotReady = errors.New("recognition not ready")
)
