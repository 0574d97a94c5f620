package rig

import (
	"math"
)

// Logger is the minimal structured logging surface the rig package
// needs for clamp-decision logging. *slog.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
}

// backwardSafetyDeg is the half-width, in degrees, of the pan window kept
// around the front reference when avoid-backward is active. 90° each way
// covers the full usable front arc while keeping the head out of its rear
// zone.
const backwardSafetyDeg = 90.0

// Channel name constants understood by ClampChannel.
const (
	ChannelPan     = "pan"
	ChannelTilt    = "tilt"
	ChannelDimmer  = "dimmer"
	ChannelShutter = "shutter"
)

// Range is an inclusive value interval, used for geometry constraints.
type Range struct {
	Min float64
	Max float64
}

// Enforcer derives and applies the physically safe DMX boundaries for a
// single fixture. It never fails: out-of-range requests are corrected to
// the nearest safe value and the correction is logged at debug level.
//
// An Enforcer is immutable after construction apart from SetLogger, which
// must be called before concurrent use begins.
type Enforcer struct {
	id  FixtureID
	cal Calibration
	log Logger
}

// NewEnforcer creates an enforcer for the given fixture.
func NewEnforcer(f Fixture) *Enforcer {
	return &Enforcer{id: f.ID, cal: f.Calibration}
}

// SetLogger enables clamp-decision logging. A nil logger disables it.
func (e *Enforcer) SetLogger(log Logger) {
	e.log = log
}

// Calibration returns the fixture calibration the enforcer works from.
func (e *Enforcer) Calibration() Calibration {
	return e.cal
}

// EffectivePanLimits returns the pan bounds the fixture may actually be
// driven to. Starting from the hardware end stops, an avoid-backward
// fixture is further restricted to a ±90° window around its front
// reference so the head never travels through its rear zone.
//
// The result always satisfies min <= max.
func (e *Enforcer) EffectivePanLimits() (float64, float64) {
	lo, hi := e.cal.PanMin, e.cal.PanMax

	if e.cal.AvoidBackward && e.cal.PanRangeDeg > 0 {
		delta := math.Round(backwardSafetyDeg * DMXMax / e.cal.PanRangeDeg)
		lo = math.Max(lo, e.cal.PanFront-delta)
		hi = math.Min(hi, e.cal.PanFront+delta)
	}

	// A front reference outside the hardware range can invert the
	// window; collapse onto the nearest valid value rather than return
	// an unusable interval.
	if lo > hi {
		pivot := clampFloat(e.cal.PanFront, e.cal.PanMin, e.cal.PanMax)
		lo, hi = pivot, pivot
	}

	return lo, hi
}

// ClampPan clamps a pan DMX value to the fixture's effective limits,
// optionally intersected with a geometry constraint. Geometry only ever
// narrows the window: hardware safety is never relaxed.
func (e *Enforcer) ClampPan(value float64, geometry *Range) float64 {
	lo, hi := e.EffectivePanLimits()
	return e.clampWithin(ChannelPan, value, lo, hi, geometry)
}

// ClampTilt clamps a tilt DMX value to the hardware tilt limits,
// optionally intersected with a geometry constraint.
func (e *Enforcer) ClampTilt(value float64, geometry *Range) float64 {
	return e.clampWithin(ChannelTilt, value, e.cal.TiltMin, e.cal.TiltMax, geometry)
}

// ClampChannel clamps a value for a named channel. Pan and tilt use
// their effective limits; dimmer uses the calibrated floor/ceiling; all
// other channels use the full DMX range.
func (e *Enforcer) ClampChannel(channel string, value float64) float64 {
	switch channel {
	case ChannelPan:
		return e.ClampPan(value, nil)
	case ChannelTilt:
		return e.ClampTilt(value, nil)
	case ChannelDimmer:
		return e.clampWithin(ChannelDimmer, value, e.cal.DimmerFloor, e.cal.DimmerCeiling, nil)
	default:
		return e.clampWithin(channel, value, DMXMin, DMXMax, nil)
	}
}

// DegreesToPanDMX converts an absolute pan angle (degrees from front,
// positive toward the fixture's positive travel) to a DMX value. When
// clamp is true the result is re-clamped to the effective pan limits.
func (e *Enforcer) DegreesToPanDMX(deg float64, clamp bool) float64 {
	dmx := e.cal.PanFront + e.PanDegreesToDMXDelta(deg)
	if clamp {
		return e.ClampPan(dmx, nil)
	}
	return dmx
}

// DegreesToTiltDMX converts an absolute tilt angle (degrees from the
// home position) to a DMX value, optionally re-clamped.
func (e *Enforcer) DegreesToTiltDMX(deg float64, clamp bool) float64 {
	dmx := e.cal.TiltCentre + e.TiltDegreesToDMXDelta(deg)
	if clamp {
		return e.ClampTilt(dmx, nil)
	}
	return dmx
}

// PanDegreesToDMXDelta converts a relative pan angle to an unclamped DMX
// delta. Used for movement amplitudes, which are applied around a base
// value and clamped later as a whole.
func (e *Enforcer) PanDegreesToDMXDelta(deg float64) float64 {
	if e.cal.PanRangeDeg <= 0 {
		return 0
	}
	return deg * DMXMax / e.cal.PanRangeDeg
}

// TiltDegreesToDMXDelta converts a relative tilt angle to an unclamped
// DMX delta.
func (e *Enforcer) TiltDegreesToDMXDelta(deg float64) float64 {
	if e.cal.TiltRangeDeg <= 0 {
		return 0
	}
	return deg * DMXMax / e.cal.TiltRangeDeg
}

// clampWithin intersects the safe window with an optional geometry range,
// clamps the value, and logs any correction.
func (e *Enforcer) clampWithin(channel string, value, lo, hi float64, geometry *Range) float64 {
	if geometry != nil {
		lo = math.Max(lo, geometry.Min)
		hi = math.Min(hi, geometry.Max)
		if lo > hi {
			// Geometry disjoint from the safe window: hardware wins.
			hi = lo
		}
	}

	// Whatever the calibration says, DMX itself is 0-255.
	lo = math.Max(lo, DMXMin)
	hi = math.Min(hi, DMXMax)

	clamped := clampFloat(value, lo, hi)
	if clamped != value && e.log != nil {
		e.log.Debug("clamped channel value",
			"fixture", string(e.id),
			"channel", channel,
			"requested", value,
			"clamped", clamped,
			"min", lo,
			"max", hi,
		)
	}
	return clamped
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
