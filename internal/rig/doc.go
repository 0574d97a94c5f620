// Package rig models the fixed fixture topology of a show and enforces
// the hardware safety boundaries of each fixture.
//
// A Rig is built once at startup, from a YAML profile or directly from
// fixture data, and is read-only thereafter. It holds the ordered fixture
// sequence, named groups (semantic groups such as ALL/LEFT/RIGHT plus user
// groups), alternate orderings used for phase spreads, and per-fixture
// calibration.
//
// # Boundary Enforcement
//
// The Enforcer is the single source of truth for which DMX values are
// physically safe for a fixture. It derives effective pan limits (tightened
// by the avoid-backward rule for moving heads that must not rotate through
// their rear zone), clamps channel values, converts degrees to DMX, and
// clamps value-curve parameters so oscillations shrink rather than clip.
//
// Enforcement never fails: every operation degrades to the nearest safe
// value and records what it changed at debug level. A show with a slightly
// wrong pose is recoverable; a fixture driven past its end stop is not.
//
// # Thread Safety
//
// Rig and Enforcer are immutable after construction and safe for
// concurrent use from multiple goroutines.
package rig
