// Package curve generates normalised sample sequences for the waveform and
// easing families used by the template compiler and transition blender.
//
// Every generator is a pure function: given a kind, a sample count, and a
// parameter set it returns the same ordered sequence of (t, v) points every
// time. Sample times sit on a uniform grid over [0, 1] inclusive of both
// endpoints. Bounded families keep v within [0, 1]; the back, elastic,
// anticipate and overshoot families deliberately excurse outside that range
// and are clamped later, at DMX application time.
//
// # Movement Curves
//
// Pan and tilt choreography applies curves as offsets around a base pose
// rather than absolute values. The Movement wrapper post-processes any base
// curve for that use: it centres the values around zero (subtracting the
// mean) and then enforces loop readiness so a repeated playback has no seam.
//
// # Errors
//
// Generators validate their numeric preconditions (sample count, cycle
// count, Lissajous frequency) and fail with ErrInvalidParameter. A failed
// precondition indicates an authoring or programming bug, never a runtime
// data condition, so callers are expected to treat it as fatal.
//
// # Thread Safety
//
// The package holds no state. All functions are safe for concurrent use.
package curve
