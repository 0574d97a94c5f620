package show

import (
	"github.com/lumenweave/lumenweave-core/internal/curve"
	"github.com/lumenweave/lumenweave-core/internal/rig"
)

// Channel identifies which fixture channel a segment drives.
type Channel string

const (
	ChannelPan    Channel = "pan"
	ChannelTilt   Channel = "tilt"
	ChannelDimmer Channel = "dimmer"
)

// ChannelSegment is the compiler's output unit: one channel of one
// fixture over a half-open window [T0, T1) in milliseconds.
//
// A segment is dynamic when Curve is non-nil - the normalised curve is
// applied as BaseDMX + AmplitudeDMX·v - and static otherwise, holding
// StaticDMX. Rendered values are always clamped to [ClampMin, ClampMax].
//
// Segments are immutable after creation. Clip and Reversed return
// modified copies.
type ChannelSegment struct {
	FixtureID rig.FixtureID `json:"fixture_id"`
	Channel   Channel       `json:"channel"`

	T0 int64 `json:"t0_ms"`
	T1 int64 `json:"t1_ms"`

	// Curve is the normalised value curve; nil for static segments.
	Curve []curve.Point `json:"curve,omitempty"`

	BaseDMX      float64 `json:"base_dmx,omitempty"`
	AmplitudeDMX float64 `json:"amplitude_dmx,omitempty"`

	StaticDMX float64 `json:"static_dmx,omitempty"`

	ClampMin float64 `json:"clamp_min"`
	ClampMax float64 `json:"clamp_max"`

	// BlendMode is an optional compositing tag carried through to the
	// exporter.
	BlendMode string `json:"blend_mode,omitempty"`
}

// IsDynamic reports whether the segment renders from a curve.
func (s ChannelSegment) IsDynamic() bool {
	return s.Curve != nil
}

// DurationMS returns the window length in milliseconds.
func (s ChannelSegment) DurationMS() int64 {
	return s.T1 - s.T0
}

// ValueAt renders the segment's DMX value at fraction t in [0,1] of its
// window, clamped to the segment's bounds. Dynamic segments interpolate
// linearly between curve samples.
func (s ChannelSegment) ValueAt(t float64) float64 {
	var v float64
	if s.IsDynamic() {
		v = s.BaseDMX + s.AmplitudeDMX*curve.Interpolate(s.Curve, t)
	} else {
		v = s.StaticDMX
	}

	if v < s.ClampMin {
		v = s.ClampMin
	}
	if v > s.ClampMax {
		v = s.ClampMax
	}
	return v
}

// Clip returns a copy of the segment restricted to [startMS, endMS).
// The second return is false when nothing of the segment survives.
//
// A clipped dynamic segment's curve is re-sampled over the surviving
// sub-interval, so the visible motion is identical to playing the
// original segment and masking the clipped part.
func (s ChannelSegment) Clip(startMS, endMS int64) (ChannelSegment, bool) {
	t0 := max64(s.T0, startMS)
	t1 := min64(s.T1, endMS)
	if t1 <= t0 {
		return ChannelSegment{}, false
	}

	if t0 == s.T0 && t1 == s.T1 {
		return s, true
	}

	out := s
	out.T0, out.T1 = t0, t1

	if s.IsDynamic() {
		total := float64(s.T1 - s.T0)
		fracStart := float64(t0-s.T0) / total
		fracEnd := float64(t1-s.T0) / total
		out.Curve = rewindow(s.Curve, fracStart, fracEnd)
	}

	return out, true
}

// Reversed returns a copy with the curve reversed in time (t ↦ 1−t).
// Static segments are returned unchanged.
func (s ChannelSegment) Reversed() ChannelSegment {
	if !s.IsDynamic() {
		return s
	}

	out := s
	n := len(s.Curve)
	out.Curve = make([]curve.Point, n)
	for i, pt := range s.Curve {
		out.Curve[n-1-i] = curve.Point{T: 1 - pt.T, V: pt.V}
	}
	return out
}

// rewindow re-samples a curve over the sub-interval [from, to] of its
// domain, producing a fresh curve spanning [0,1] with the original
// sample count.
func rewindow(points []curve.Point, from, to float64) []curve.Point {
	n := len(points)
	out := make([]curve.Point, n)
	for i := range out {
		t := float64(i) / float64(n-1)
		src := from + t*(to-from)
		out[i] = curve.Point{T: t, V: curve.Interpolate(points, src)}
	}
	return out
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
