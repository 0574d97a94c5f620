package compiler

import "errors"

// Sentinel errors returned by the compiler. Wrapped errors carry detail;
// match with errors.Is.
var (
	// ErrNilTemplate indicates Compile was called without a template.
	ErrNilTemplate = errors.New("compiler: nil template")

	// ErrNilRig indicates the compiler was constructed without a rig.
	ErrNilRig = errors.New("compiler: nil rig")

	// ErrInvalidPlan indicates the plan window cannot be resolved to a
	// usable millisecond range. The compiler falls back to a stub window
	// rather than surfacing this from Compile.
	ErrInvalidPlan = errors.New("compiler: invalid plan window")

	// ErrInvalidStep indicates a step's own timing or curves are
	// unusable. The step is skipped and reported in the result.
	ErrInvalidStep = errors.New("compiler: invalid step")
)
