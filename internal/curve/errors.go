package curve

import "errors"

// Domain errors for the curve package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, curve.ErrInvalidParameter) {
//	    // handle bad generator input
//	}
var (
	// ErrInvalidParameter is returned when a generator precondition fails
	// (sample count below 2, non-positive cycle count, non-positive
	// Lissajous frequency). Indicates an authoring bug, not runtime data.
	ErrInvalidParameter = errors.New("curve: invalid parameter")

	// ErrUnknownKind is returned when a Kind is not in the generator table.
	ErrUnknownKind = errors.New("curve: unknown kind")
)
