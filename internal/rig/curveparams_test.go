package rig

import (
	"math"
	"testing"
)

func TestClampValueCurveParamsSine(t *testing.T) {
	tests := []struct {
		name       string
		params     []float64 // phase, amplitude, cycles, centre
		minLimit   float64
		maxLimit   float64
		wantAmp    float64
		wantCentre float64
	}{
		{
			name:       "window fits, untouched",
			params:     []float64{0, 100, 1, 127.5},
			minLimit:   0,
			maxLimit:   255,
			wantAmp:    100,
			wantCentre: 127.5,
		},
		{
			name:       "amplitude shrunk then recentred",
			params:     []float64{0, 100, 1, 127.5},
			minLimit:   50,
			maxLimit:   200,
			wantAmp:    75,
			wantCentre: 125,
		},
		{
			name:       "centre shifted when amplitude already fits",
			params:     []float64{0, 20, 2, 10},
			minLimit:   0,
			maxLimit:   255,
			wantAmp:    20,
			wantCentre: 20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClampValueCurveParams(CurveSine, tt.params, tt.minLimit, tt.maxLimit, nil)

			if math.Abs(got[1]-tt.wantAmp) > 1e-9 {
				t.Errorf("amplitude = %g, want %g", got[1], tt.wantAmp)
			}
			if math.Abs(got[3]-tt.wantCentre) > 1e-9 {
				t.Errorf("centre = %g, want %g", got[3], tt.wantCentre)
			}

			// Oscillation window must fit the limits.
			if got[3]-got[1] < tt.minLimit-1e-9 || got[3]+got[1] > tt.maxLimit+1e-9 {
				t.Errorf("window [%g, %g] outside [%g, %g]",
					got[3]-got[1], got[3]+got[1], tt.minLimit, tt.maxLimit)
			}

			// Phase and cycles are never touched.
			if got[0] != tt.params[0] || got[2] != tt.params[2] {
				t.Error("phase or cycles modified")
			}
		})
	}
}

func TestClampValueCurveParamsRamp(t *testing.T) {
	got := ClampValueCurveParams(CurveRamp, []float64{-20, 300}, 0, 255, nil)
	if got[0] != 0 || got[1] != 255 {
		t.Errorf("ramp = %v, want [0 255]", got)
	}

	got = ClampValueCurveParams(CurveRampUpDown, []float64{-5, 400, 100}, 10, 250, nil)
	if got[0] != 10 || got[1] != 250 || got[2] != 100 {
		t.Errorf("ramp_up_down = %v, want [10 250 100]", got)
	}
}

func TestClampValueCurveParamsSawtooth(t *testing.T) {
	got := ClampValueCurveParams(CurveSawtooth, []float64{-1, 999, 4}, 0, 255, nil)
	if got[0] != 0 || got[1] != 255 {
		t.Errorf("sawtooth start/end = %v, want [0 255 ...]", got[:2])
	}
	if got[2] != 4 {
		t.Errorf("sawtooth cycles = %g, want 4 (untouched)", got[2])
	}
}

func TestClampValueCurveParamsParabolic(t *testing.T) {
	// base 200, slope 50% of range 255 implies peak 327.5 > 255:
	// slope reduced to (255-200)*100/255.
	got := ClampValueCurveParams(CurveParabolic, []float64{50, 200}, 0, 255, nil)

	if got[1] != 200 {
		t.Errorf("base = %g, want 200", got[1])
	}
	wantSlope := (255.0 - 200.0) * 100.0 / 255.0
	if math.Abs(got[0]-wantSlope) > 1e-9 {
		t.Errorf("slope = %g, want %g", got[0], wantSlope)
	}

	peak := got[1] + got[0]/100*255
	if peak > 255+1e-9 {
		t.Errorf("implied peak %g exceeds max", peak)
	}
}

func TestClampValueCurveParamsUnknownShape(t *testing.T) {
	got := ClampValueCurveParams("comet", []float64{-3, 280, 7}, 0, 255, nil)
	if got[0] != 0 || got[1] != 255 {
		t.Errorf("unknown shape start/end = %v, want [0 255]", got[:2])
	}
	if got[2] != 7 {
		t.Errorf("unknown shape third parameter = %g, want 7 (untouched)", got[2])
	}
}

func TestClampValueCurveParamsDoesNotMutateInput(t *testing.T) {
	in := []float64{0, 100, 1, 127.5}
	_ = ClampValueCurveParams(CurveSine, in, 50, 200, nil)
	if in[1] != 100 || in[3] != 127.5 {
		t.Error("input slice was mutated")
	}
}
