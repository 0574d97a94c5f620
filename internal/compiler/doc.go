// Package compiler renders choreography templates into per-fixture,
// per-channel DMX segments for a plan window.
//
// A compile walks a fixed pipeline:
//
//	┌──────────┐   ┌──────────────┐   ┌─────────────────┐   ┌──────────┐
//	│ resolve  │──▶│ loop          │──▶│ step             │──▶│ window   │
//	│ window   │   │ expansion     │   │ compilation      │   │ clipping │
//	└──────────┘   └──────────────┘   └─────────────────┘   └──────────┘
//
// Window resolution maps the plan's bar window to milliseconds using its
// tempo; a missing tempo degrades to a fixed 1000 ms per bar, and a
// malformed window degrades to a 1000 ms stub so a compile always yields
// a renderable result. Loop expansion tiles a repeatable template's loop
// steps across the window, cycle by cycle, reversing movement curves on
// odd cycles in ping-pong mode. Step compilation converts each step into
// PAN/TILT/DIMMER segments per fixture - base pose from calibration,
// movement amplitude scaled and clamped through the rig's boundary
// enforcer, phase offsets spread along the group order. Clipping then
// restricts every segment to the plan window.
//
// Compilation is deterministic: the same rig, plan, and template always
// produce the same segments. Per-step configuration errors (an unknown
// group, an unknown curve) skip that step and are reported in the
// result; they never fail the compile.
//
// The compiler holds no mutable state and is safe for concurrent use.
package compiler
