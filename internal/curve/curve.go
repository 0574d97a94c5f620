package curve

import (
	"fmt"
	"math"
)

// Generator numeric constants.
const (
	// minSamples is the smallest sample count a generator accepts.
	// One point cannot describe a curve; two describe a line.
	minSamples = 2

	// defaultBackOvershoot is the conventional back-easing overshoot
	// constant (produces a 10% excursion).
	defaultBackOvershoot = 1.70158

	// anticipateSplit divides the anticipate curve into pull-back and
	// release phases.
	anticipateSplit = 0.3

	// anticipateDepth is how far the anticipate curve pulls below zero
	// before releasing.
	anticipateDepth = 0.2

	// overshootBumpStart/End bound the damped bump added on top of the
	// smoothstep base in the overshoot family.
	overshootBumpStart = 0.6
	overshootBumpEnd   = 0.9

	// overshootBumpAmp is the peak height of the overshoot bump.
	overshootBumpAmp = 0.12

	// bounceN1 and bounceD1 are the standard bounce-easing coefficients.
	bounceN1 = 7.5625
	bounceD1 = 2.75
)

// Kind identifies a curve family.
type Kind string

// Waveform families.
const (
	Linear   Kind = "linear"
	Hold     Kind = "hold"
	Sine     Kind = "sine"
	Triangle Kind = "triangle"
	Pulse    Kind = "pulse"
)

// Easing families. The in/out/in-out variants follow the standard
// published formulas.
const (
	EaseInSine     Kind = "ease_in_sine"
	EaseOutSine    Kind = "ease_out_sine"
	EaseInOutSine  Kind = "ease_in_out_sine"
	EaseInQuad     Kind = "ease_in_quad"
	EaseOutQuad    Kind = "ease_out_quad"
	EaseInOutQuad  Kind = "ease_in_out_quad"
	EaseInCubic    Kind = "ease_in_cubic"
	EaseOutCubic   Kind = "ease_out_cubic"
	EaseInOutCubic Kind = "ease_in_out_cubic"
	EaseInExpo     Kind = "ease_in_expo"
	EaseOutExpo    Kind = "ease_out_expo"
	EaseInOutExpo  Kind = "ease_in_out_expo"
	EaseInBack     Kind = "ease_in_back"
	EaseOutBack    Kind = "ease_out_back"
	EaseOutBounce  Kind = "ease_out_bounce"
	EaseOutElastic Kind = "ease_out_elastic"
)

// Organic and composite families.
const (
	// Noise and Drift are pseudo-random looking but fully deterministic:
	// summed multi-octave sine components, min-max normalised to [0,1].
	Noise Kind = "noise"
	Drift Kind = "drift"

	// Bezier is a cubic Bezier with fixed endpoints 0 and 1 and scalar
	// control values P1/P2.
	Bezier Kind = "bezier"

	// Lissajous evaluates sin(2π·B·t + Delta), normalised to [0,1].
	Lissajous Kind = "lissajous"

	// Anticipate pulls below zero before releasing with an
	// ease-out-quad rise.
	Anticipate Kind = "anticipate"

	// Overshoot is smoothstep plus a damped sine bump in [0.6, 0.9].
	Overshoot Kind = "overshoot"
)

// Point is a single curve sample: time t in [0,1] and value v.
type Point struct {
	T float64 `json:"t"`
	V float64 `json:"v"`
}

// Params carries the per-family generator parameters. Unused fields are
// ignored by families that do not take them.
type Params struct {
	// Value is the constant level for Hold.
	Value float64 `json:"value,omitempty"`

	// Cycles is the number of full periods for Sine, Triangle and Pulse.
	// Must be positive for those families.
	Cycles float64 `json:"cycles,omitempty"`

	// Phase shifts Sine in radians.
	Phase float64 `json:"phase,omitempty"`

	// DutyCycle is the high fraction of each Pulse period (0..1).
	DutyCycle float64 `json:"duty_cycle,omitempty"`

	// High and Low are the Pulse output levels.
	High float64 `json:"high,omitempty"`
	Low  float64 `json:"low,omitempty"`

	// Overshoot is the back-easing pull strength. Zero selects the
	// conventional 1.70158.
	Overshoot float64 `json:"overshoot,omitempty"`

	// P1 and P2 are the Bezier control values.
	P1 float64 `json:"p1,omitempty"`
	P2 float64 `json:"p2,omitempty"`

	// B is the Lissajous frequency ratio. Must be positive.
	B float64 `json:"b,omitempty"`

	// Delta is the Lissajous phase offset in radians.
	Delta float64 `json:"delta,omitempty"`
}

// DefaultParams returns a parameter set that is valid for every family:
// one cycle, half duty, full high/low swing, centred Bezier handles.
func DefaultParams() Params {
	return Params{
		Value:     1,
		Cycles:    1,
		DutyCycle: 0.5,
		High:      1,
		Low:       0,
		P1:        0.25,
		P2:        0.75,
		B:         2,
	}
}

// noiseOctave is one sine component of the Noise/Drift families.
type noiseOctave struct {
	freq  float64
	phase float64
	amp   float64
}

// Fixed octave tables. Changing these changes the rendered look of every
// show that uses the noise families, so treat them as frozen.
var (
	noiseOctaves = []noiseOctave{
		{freq: 1.0, phase: 0.0, amp: 1.0},
		{freq: 2.7, phase: 1.3, amp: 0.5},
		{freq: 5.3, phase: 4.1, amp: 0.25},
		{freq: 11.1, phase: 2.2, amp: 0.125},
	}
	driftOctaves = []noiseOctave{
		{freq: 0.5, phase: 0.7, amp: 1.0},
		{freq: 1.3, phase: 2.9, amp: 0.6},
	}
)

// Generate produces n uniformly spaced samples of the given curve family
// over t in [0,1], inclusive of both endpoints.
//
// Returns ErrInvalidParameter when n < 2 or a family precondition fails,
// and ErrUnknownKind for a Kind outside the catalogue.
func Generate(kind Kind, n int, p Params) ([]Point, error) {
	if n < minSamples {
		return nil, fmt.Errorf("%w: sample count %d below minimum %d", ErrInvalidParameter, n, minSamples)
	}

	eval, err := evaluator(kind, p)
	if err != nil {
		return nil, err
	}

	points := make([]Point, n)
	for i := range points {
		t := float64(i) / float64(n-1)
		points[i] = Point{T: t, V: eval(t)}
	}

	// The noise families have no closed-form bounds; normalise what was
	// actually sampled.
	if kind == Noise || kind == Drift {
		normalise(points)
	}

	return points, nil
}

// evaluator resolves a Kind to its point evaluator, validating the
// family's parameter preconditions first.
func evaluator(kind Kind, p Params) (func(float64) float64, error) {
	switch kind {
	case Linear:
		return func(t float64) float64 { return t }, nil

	case Hold:
		v := p.Value
		return func(float64) float64 { return v }, nil

	case Sine:
		if p.Cycles <= 0 {
			return nil, fmt.Errorf("%w: sine cycles must be positive, got %g", ErrInvalidParameter, p.Cycles)
		}
		return func(t float64) float64 {
			return (math.Sin(2*math.Pi*p.Cycles*t+p.Phase) + 1) / 2
		}, nil

	case Triangle:
		if p.Cycles <= 0 {
			return nil, fmt.Errorf("%w: triangle cycles must be positive, got %g", ErrInvalidParameter, p.Cycles)
		}
		return func(t float64) float64 {
			frac := periodFraction(t, p.Cycles, false)
			return 1 - math.Abs(2*frac-1)
		}, nil

	case Pulse:
		if p.Cycles <= 0 {
			return nil, fmt.Errorf("%w: pulse cycles must be positive, got %g", ErrInvalidParameter, p.Cycles)
		}
		return func(t float64) float64 {
			frac := periodFraction(t, p.Cycles, true)
			if frac < p.DutyCycle {
				return p.High
			}
			return p.Low
		}, nil

	case Bezier:
		return func(t float64) float64 {
			inv := 1 - t
			return 3*inv*inv*t*p.P1 + 3*inv*t*t*p.P2 + t*t*t
		}, nil

	case Lissajous:
		if p.B <= 0 {
			return nil, fmt.Errorf("%w: lissajous b must be positive, got %g", ErrInvalidParameter, p.B)
		}
		return func(t float64) float64 {
			return (math.Sin(2*math.Pi*p.B*t+p.Delta) + 1) / 2
		}, nil

	case Noise:
		return octaveSum(noiseOctaves), nil

	case Drift:
		return octaveSum(driftOctaves), nil

	case Anticipate:
		return anticipateEval, nil

	case Overshoot:
		return overshootEval, nil

	default:
		if eval, ok := easingEval(kind, p); ok {
			return eval, nil
		}
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// easingEval returns the evaluator for an easing Kind, or ok=false when
// the kind is not an easing family.
func easingEval(kind Kind, p Params) (func(float64) float64, bool) {
	switch kind {
	case EaseInSine:
		return func(t float64) float64 { return 1 - math.Cos(t*math.Pi/2) }, true
	case EaseOutSine:
		return func(t float64) float64 { return math.Sin(t * math.Pi / 2) }, true
	case EaseInOutSine:
		return func(t float64) float64 { return -(math.Cos(math.Pi*t) - 1) / 2 }, true

	case EaseInQuad:
		return func(t float64) float64 { return t * t }, true
	case EaseOutQuad:
		return func(t float64) float64 { return 1 - (1-t)*(1-t) }, true
	case EaseInOutQuad:
		return func(t float64) float64 {
			if t < 0.5 {
				return 2 * t * t
			}
			u := -2*t + 2
			return 1 - u*u/2
		}, true

	case EaseInCubic:
		return func(t float64) float64 { return t * t * t }, true
	case EaseOutCubic:
		return func(t float64) float64 { u := 1 - t; return 1 - u*u*u }, true
	case EaseInOutCubic:
		return func(t float64) float64 {
			if t < 0.5 {
				return 4 * t * t * t
			}
			u := -2*t + 2
			return 1 - u*u*u/2
		}, true

	case EaseInExpo:
		return func(t float64) float64 {
			if t == 0 {
				return 0
			}
			return math.Pow(2, 10*t-10)
		}, true
	case EaseOutExpo:
		return func(t float64) float64 {
			if t == 1 {
				return 1
			}
			return 1 - math.Pow(2, -10*t)
		}, true
	case EaseInOutExpo:
		return func(t float64) float64 {
			switch {
			case t == 0:
				return 0
			case t == 1:
				return 1
			case t < 0.5:
				return math.Pow(2, 20*t-10) / 2
			default:
				return (2 - math.Pow(2, -20*t+10)) / 2
			}
		}, true

	case EaseInBack:
		c1 := backOvershoot(p)
		c3 := c1 + 1
		return func(t float64) float64 { return c3*t*t*t - c1*t*t }, true
	case EaseOutBack:
		c1 := backOvershoot(p)
		c3 := c1 + 1
		return func(t float64) float64 {
			u := t - 1
			return 1 + c3*u*u*u + c1*u*u
		}, true

	case EaseOutBounce:
		return bounceOut, true

	case EaseOutElastic:
		return func(t float64) float64 {
			switch {
			case t == 0:
				return 0
			case t == 1:
				return 1
			default:
				c4 := 2 * math.Pi / 3
				return math.Pow(2, -10*t)*math.Sin((10*t-0.75)*c4) + 1
			}
		}, true
	}

	return nil, false
}

// backOvershoot resolves the back-easing pull strength, defaulting to the
// conventional constant when unset.
func backOvershoot(p Params) float64 {
	if p.Overshoot > 0 {
		return p.Overshoot
	}
	return defaultBackOvershoot
}

// bounceOut is the standard ease-out-bounce piecewise polynomial.
func bounceOut(t float64) float64 {
	switch {
	case t < 1/bounceD1:
		return bounceN1 * t * t
	case t < 2/bounceD1:
		t -= 1.5 / bounceD1
		return bounceN1*t*t + 0.75
	case t < 2.5/bounceD1:
		t -= 2.25 / bounceD1
		return bounceN1*t*t + 0.9375
	default:
		t -= 2.625 / bounceD1
		return bounceN1*t*t + 0.984375
	}
}

// anticipateEval pulls below zero during the first phase, then releases
// with an ease-out-quad rise to 1.
func anticipateEval(t float64) float64 {
	if t < anticipateSplit {
		return -anticipateDepth * math.Sin(math.Pi*t/anticipateSplit)
	}
	u := (t - anticipateSplit) / (1 - anticipateSplit)
	return 1 - (1-u)*(1-u)
}

// overshootEval is smoothstep with a damped sine bump riding on the
// settled region.
func overshootEval(t float64) float64 {
	v := t * t * (3 - 2*t)
	if t >= overshootBumpStart && t <= overshootBumpEnd {
		u := (t - overshootBumpStart) / (overshootBumpEnd - overshootBumpStart)
		v += overshootBumpAmp * math.Sin(math.Pi*u) * (1 - u)
	}
	return v
}

// octaveSum builds an evaluator summing the given sine octaves. The raw
// output is unbounded; Generate normalises it after sampling.
func octaveSum(octaves []noiseOctave) func(float64) float64 {
	return func(t float64) float64 {
		var v float64
		for _, o := range octaves {
			v += o.amp * math.Sin(2*math.Pi*o.freq*t+o.phase)
		}
		return v
	}
}

// periodFraction maps t to its position within the current cycle period.
// When endAsFull is true an exact period boundary at t > 0 reports as 1
// rather than wrapping to 0, so pulse trains end in their low state.
func periodFraction(t, cycles float64, endAsFull bool) float64 {
	pos := t * cycles
	frac := pos - math.Floor(pos)
	if endAsFull && frac == 0 && pos > 0 {
		return 1
	}
	return frac
}

// normalise rescales sampled values to [0,1] in place using the observed
// min and max. A flat signal becomes a constant 0.5.
func normalise(points []Point) {
	lo, hi := points[0].V, points[0].V
	for _, pt := range points[1:] {
		lo = math.Min(lo, pt.V)
		hi = math.Max(hi, pt.V)
	}

	if hi-lo < 1e-12 {
		for i := range points {
			points[i].V = 0.5
		}
		return
	}

	for i := range points {
		points[i].V = (points[i].V - lo) / (hi - lo)
	}
}
