package rig

import (
	"math"
	"testing"
)

func enforcerWith(cal Calibration) *Enforcer {
	return NewEnforcer(Fixture{ID: "mh-1", Calibration: cal})
}

func TestEffectivePanLimitsHardwareOnly(t *testing.T) {
	cal := DefaultCalibration()
	cal.PanMin, cal.PanMax = 10, 245

	lo, hi := enforcerWith(cal).EffectivePanLimits()
	if lo != 10 || hi != 245 {
		t.Errorf("limits = [%g, %g], want [10, 245]", lo, hi)
	}
}

func TestEffectivePanLimitsAvoidBackward(t *testing.T) {
	cal := DefaultCalibration()
	cal.AvoidBackward = true
	cal.PanFront = 127.5
	cal.PanRangeDeg = 540

	lo, hi := enforcerWith(cal).EffectivePanLimits()

	// delta = round(90 * 255 / 540) = round(42.5) = 43
	if lo != 127.5-43 || hi != 127.5+43 {
		t.Errorf("limits = [%g, %g], want [84.5, 170.5]", lo, hi)
	}

	if lo > cal.PanFront || hi < cal.PanFront {
		t.Errorf("front reference %g outside window [%g, %g]", cal.PanFront, lo, hi)
	}
	if hi-lo > cal.PanMax-cal.PanMin {
		t.Errorf("window wider than hardware range")
	}
}

func TestEffectivePanLimitsIntersectsHardware(t *testing.T) {
	cal := DefaultCalibration()
	cal.AvoidBackward = true
	cal.PanFront = 20 // close to the low end stop
	cal.PanRangeDeg = 540

	lo, hi := enforcerWith(cal).EffectivePanLimits()
	if lo < cal.PanMin {
		t.Errorf("min %g below hardware min %g", lo, cal.PanMin)
	}
	if lo > hi {
		t.Errorf("inverted limits [%g, %g]", lo, hi)
	}
}

func TestClampPanIdempotent(t *testing.T) {
	cal := DefaultCalibration()
	cal.AvoidBackward = true
	e := enforcerWith(cal)

	for _, v := range []float64{-50, 0, 84.5, 127.5, 200, 300} {
		once := e.ClampPan(v, nil)
		twice := e.ClampPan(once, nil)
		if once != twice {
			t.Errorf("ClampPan not idempotent for %g: %g then %g", v, once, twice)
		}

		lo, hi := e.EffectivePanLimits()
		if once < lo || once > hi {
			t.Errorf("ClampPan(%g) = %g outside [%g, %g]", v, once, lo, hi)
		}
	}
}

func TestClampPanGeometryNeverRelaxes(t *testing.T) {
	cal := DefaultCalibration()
	cal.AvoidBackward = true // effective window [84.5, 170.5]
	e := enforcerWith(cal)

	// Geometry wider than the safe window must not widen it.
	got := e.ClampPan(250, &Range{Min: 0, Max: 255})
	if got != 170.5 {
		t.Errorf("ClampPan with wide geometry = %g, want 170.5", got)
	}

	// Geometry narrower than the safe window narrows it.
	got = e.ClampPan(160, &Range{Min: 100, Max: 140})
	if got != 140 {
		t.Errorf("ClampPan with narrow geometry = %g, want 140", got)
	}

	// Geometry disjoint from the safe window collapses to the hardware side.
	got = e.ClampPan(5, &Range{Min: 0, Max: 10})
	lo, _ := e.EffectivePanLimits()
	if got != lo {
		t.Errorf("ClampPan with disjoint geometry = %g, want %g", got, lo)
	}
}

func TestClampTilt(t *testing.T) {
	cal := DefaultCalibration()
	cal.TiltMin, cal.TiltMax = 30, 220
	e := enforcerWith(cal)

	tests := []struct {
		value float64
		want  float64
	}{
		{0, 30},
		{30, 30},
		{125, 125},
		{255, 220},
	}
	for _, tt := range tests {
		if got := e.ClampTilt(tt.value, nil); got != tt.want {
			t.Errorf("ClampTilt(%g) = %g, want %g", tt.value, got, tt.want)
		}
	}
}

func TestClampChannel(t *testing.T) {
	cal := DefaultCalibration()
	cal.DimmerFloor, cal.DimmerCeiling = 20, 230
	e := enforcerWith(cal)

	if got := e.ClampChannel(ChannelDimmer, 5); got != 20 {
		t.Errorf("ClampChannel(dimmer, 5) = %g, want 20", got)
	}
	if got := e.ClampChannel(ChannelDimmer, 255); got != 230 {
		t.Errorf("ClampChannel(dimmer, 255) = %g, want 230", got)
	}
	if got := e.ClampChannel(ChannelShutter, 300); got != 255 {
		t.Errorf("ClampChannel(shutter, 300) = %g, want 255", got)
	}
	if got := e.ClampChannel("gobo", -10); got != 0 {
		t.Errorf("ClampChannel(gobo, -10) = %g, want 0", got)
	}
}

func TestDegreeConversions(t *testing.T) {
	cal := DefaultCalibration() // 540° pan over 255 DMX, front at 127.5
	e := enforcerWith(cal)

	// 90° = 90 * 255/540 = 42.5 DMX
	if got := e.PanDegreesToDMXDelta(90); math.Abs(got-42.5) > 1e-9 {
		t.Errorf("PanDegreesToDMXDelta(90) = %g, want 42.5", got)
	}
	if got := e.PanDegreesToDMXDelta(-90); math.Abs(got+42.5) > 1e-9 {
		t.Errorf("PanDegreesToDMXDelta(-90) = %g, want -42.5", got)
	}

	// 90° tilt = 90 * 255/270 = 85 DMX
	if got := e.TiltDegreesToDMXDelta(90); math.Abs(got-85) > 1e-9 {
		t.Errorf("TiltDegreesToDMXDelta(90) = %g, want 85", got)
	}

	if got := e.DegreesToPanDMX(90, false); math.Abs(got-170) > 1e-9 {
		t.Errorf("DegreesToPanDMX(90) = %g, want 170", got)
	}

	// Clamped conversion respects avoid-backward.
	cal.AvoidBackward = true
	e = enforcerWith(cal)
	got := e.DegreesToPanDMX(200, true)
	_, hi := e.EffectivePanLimits()
	if got != hi {
		t.Errorf("DegreesToPanDMX(200, clamp) = %g, want %g", got, hi)
	}
}
