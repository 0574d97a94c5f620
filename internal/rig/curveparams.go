package rig

import (
	"math"
)

// Value-curve type tags understood by ClampValueCurveParams. These match
// the curve tags used in template documents for dimmer/value channels.
const (
	CurveSine       = "sine"
	CurveAbsSine    = "abs_sine"
	CurveRamp       = "ramp"
	CurveRampUpDown = "ramp_up_down"
	CurveSawtooth   = "sawtooth"
	CurveParabolic  = "parabolic"
)

// parabolicSlopePercent converts a parabolic slope parameter (expressed
// as a percentage of the limit range) to its value contribution.
const parabolicSlopePercent = 100.0

// ClampValueCurveParams clamps the parameters of a value curve so the
// rendered output stays within [minLimit, maxLimit].
//
// Dispatch is by curve tag:
//
//   - sine/abs_sine (phase, amplitude, cycles, centre): the amplitude is
//     shrunk before the centre is moved, preserving the oscillation's
//     shape instead of flattening its peaks.
//   - ramp (start, end) and ramp_up_down (start, peak, end): each value
//     clamped independently.
//   - sawtooth (start, end, cycles): start and end clamped, cycles kept.
//   - parabolic (slope, base): base clamped, then the slope reduced to
//     the largest value keeping the implied peak within bounds.
//   - anything else: the first two parameters are treated as start/end
//     values and clamped.
//
// The input slice is never modified; a fresh slice is returned. Clamping
// never fails - unknown shapes degrade to the default rule.
func ClampValueCurveParams(curveType string, params []float64, minLimit, maxLimit float64, log Logger) []float64 {
	out := make([]float64, len(params))
	copy(out, params)

	if minLimit > maxLimit {
		minLimit, maxLimit = maxLimit, minLimit
	}

	switch curveType {
	case CurveSine, CurveAbsSine:
		clampSineParams(curveType, out, minLimit, maxLimit, log)

	case CurveRamp:
		clampEach(curveType, out, 0, 2, minLimit, maxLimit, log)

	case CurveRampUpDown:
		clampEach(curveType, out, 0, 3, minLimit, maxLimit, log)

	case CurveSawtooth:
		clampEach(curveType, out, 0, 2, minLimit, maxLimit, log)

	case CurveParabolic:
		clampParabolicParams(out, minLimit, maxLimit, log)

	default:
		clampEach(curveType, out, 0, 2, minLimit, maxLimit, log)
	}

	return out
}

// clampSineParams handles (phase, amplitude, cycles, centre). When the
// window centre±amplitude exceeds the limits the amplitude is reduced to
// half the available range first, then the centre is re-positioned so
// the whole window fits.
func clampSineParams(curveType string, p []float64, minLimit, maxLimit float64, log Logger) {
	if len(p) < 4 {
		return
	}

	amplitude, centre := p[1], p[3]

	if centre-amplitude >= minLimit && centre+amplitude <= maxLimit {
		return
	}

	halfRange := (maxLimit - minLimit) / 2
	newAmp := math.Min(amplitude, halfRange)
	newCentre := clampFloat(centre, minLimit+newAmp, maxLimit-newAmp)

	if log != nil {
		log.Debug("clamped sine curve parameters",
			"curve", curveType,
			"amplitude", amplitude,
			"new_amplitude", newAmp,
			"centre", centre,
			"new_centre", newCentre,
		)
	}

	p[1] = newAmp
	p[3] = newCentre
}

// clampParabolicParams handles (slope, base). The base is clamped, then
// the slope reduced so the implied peak base + slope/100·range stays
// within the maximum.
func clampParabolicParams(p []float64, minLimit, maxLimit float64, log Logger) {
	if len(p) < 2 {
		return
	}

	valueRange := maxLimit - minLimit

	base := clampFloat(p[1], minLimit, maxLimit)
	slope := p[0]

	peak := base + slope/parabolicSlopePercent*valueRange
	if peak > maxLimit && valueRange > 0 {
		slope = (maxLimit - base) * parabolicSlopePercent / valueRange
	}

	if (base != p[1] || slope != p[0]) && log != nil {
		log.Debug("clamped parabolic curve parameters",
			"base", p[1],
			"new_base", base,
			"slope", p[0],
			"new_slope", slope,
		)
	}

	p[0] = slope
	p[1] = base
}

// clampEach clamps params[from:to] independently to the limits.
func clampEach(curveType string, p []float64, from, to int, minLimit, maxLimit float64, log Logger) {
	if to > len(p) {
		to = len(p)
	}
	for i := from; i < to; i++ {
		clamped := clampFloat(p[i], minLimit, maxLimit)
		if clamped != p[i] {
			if log != nil {
				log.Debug("clamped curve parameter",
					"curve", curveType,
					"index", i,
					"value", p[i],
					"clamped", clamped,
				)
			}
			p[i] = clamped
		}
	}
}
