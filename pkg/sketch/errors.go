package sketch

import "errors"

var (
	// InvalidParameterError is returned when epsilon or gamma fall outside (0, 1].
	InvalidParameterError = errors.New("invalid sketch parameter")
	// ResourceExhaustedError is returned when the counter grid exceeds the allocation limit.
	ResourceExhaustedError = errors.New("sketch counters cannot be allocated")
)
