// Package transition plans and renders the blends between compiled
// show sections.
//
// The planner walks consecutive sections and places one transition per
// boundary, centred on it, sized from the target section's authored
// hint. Each transition carries a per-channel blend strategy:
//
//	pan/tilt      SMOOTH_INTERPOLATION  eased positional travel
//	dimmer        CROSSFADE             equal-power intensity mix
//	shutter       SEQUENCE              close, change, open
//	colour/gobo   FADE_VIA_BLACK        dip to black over the switch
//
// A hint mode overrides the defaults for every channel of its
// transition. Infeasible plans - blend windows spilling past their
// sections, harsh jumps over short windows - produce warnings on the
// transition, never errors: the operator decides whether the look is
// acceptable.
//
// The blender is the numeric half: given a strategy, a source value and
// a target value, it produces the blended value at a normalised
// progress t. Segment-level blending samples both sides over the
// transition window and emits a fresh segment.
package transition
