package transition

import (
	"math"

	"github.com/lumenweave/lumenweave-core/internal/show"
)

// Strategy names a blend algorithm applied across a section boundary.
type Strategy string

const (
	// StrategySnap switches from source to target at the window
	// midpoint with no blending.
	StrategySnap Strategy = "snap"

	// StrategySmooth eases positional values from source to target
	// along a smoothstep, keeping head travel continuous.
	StrategySmooth Strategy = "smooth_interpolation"

	// StrategyCrossfade mixes intensities with an equal-power law.
	// Matching source and target levels read slightly above unity at
	// the midpoint (cos+sin peaks at √2/2 each); the overshoot is kept
	// because dipping instead is far more visible on stage.
	StrategyCrossfade Strategy = "crossfade"

	// StrategyFadeViaBlack takes the channel to exactly zero at the
	// midpoint, hiding the change inside the dip.
	StrategyFadeViaBlack Strategy = "fade_via_black"

	// StrategySequence closes, holds dark through the middle third for
	// the mechanical change, then reopens. Meant for shutters and other
	// stepped channels.
	StrategySequence Strategy = "sequence"
)

// valid reports whether s names a known strategy.
func (s Strategy) valid() bool {
	switch s {
	case StrategySnap, StrategySmooth, StrategyCrossfade,
		StrategyFadeViaBlack, StrategySequence:
		return true
	}
	return false
}

// DefaultStrategy returns the blend strategy used for a channel when no
// hint overrides it. Unknown channels crossfade; it degrades gracefully
// on anything value-like.
func DefaultStrategy(ch show.Channel) Strategy {
	switch ch {
	case show.ChannelPan, show.ChannelTilt:
		return StrategySmooth
	case show.ChannelDimmer:
		return StrategyCrossfade
	case "shutter", "strobe":
		return StrategySequence
	case "colour", "color", "gobo":
		return StrategyFadeViaBlack
	default:
		return StrategyCrossfade
	}
}

// BlendValue blends a source and target value at progress t in [0,1]
// under the given strategy. t outside [0,1] is clamped. Unknown
// strategies crossfade.
func BlendValue(strategy Strategy, source, target, t float64) float64 {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}

	switch strategy {
	case StrategySnap:
		if t < 0.5 {
			return source
		}
		return target

	case StrategySmooth:
		s := t * t * (3 - 2*t)
		return source + (target-source)*s

	case StrategyFadeViaBlack:
		if t < 0.5 {
			return source * (1 - 2*t)
		}
		return target * (2*t - 1)

	case StrategySequence:
		switch {
		case t < 1.0/3:
			return source * (1 - 3*t)
		case t < 2.0/3:
			return 0
		default:
			return target * (3*t - 2)
		}

	default: // StrategyCrossfade
		return source*math.Cos(t*math.Pi/2) + target*math.Sin(t*math.Pi/2)
	}
}
