package research

import "errors"

// Sentinel errors for orchestrator construction and request validation.
// Failures inside a run are absorbed by design and never surface as errors.
var (
	// ErrNilCapability is returned by New when a required capability is nil.
	ErrNilCapability = errors.New("nil capability")

	// ErrInvalidLimits is returned when configured limits are not positive.
	ErrInvalidLimits = errors.New("invalid limits")

	// ErrEmptyQuestion is returned by Run when the request question is
	// empty or whitespace.
	ErrEmptyQuestion = errors.New("empty question")
)
