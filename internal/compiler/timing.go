package compiler

import (
	"fmt"
	"math"

	"github.com/lumenweave/lumenweave-core/internal/show"
)

const (
	msPerMinute = 60_000.0

	// fallbackMSPerBar is the degraded-mode tempo used when the plan
	// carries no usable BPM: one second per bar keeps the output
	// renderable and visibly wrong enough to notice.
	fallbackMSPerBar = 1000.0

	// stubWindowMS is the window compiled when the plan window itself is
	// malformed.
	stubWindowMS = 1000

	// cycleEpsilon absorbs float drift when deciding whether a partial
	// trailing loop cycle exists.
	cycleEpsilon = 1e-6
)

// window is a resolved half-open millisecond range [startMS, endMS).
type window struct {
	startMS int64
	endMS   int64
}

// tempoValid reports whether the plan carries a usable tempo.
func tempoValid(p show.Plan) bool {
	return p.BPM > 0 && p.BeatsPerBar > 0 &&
		!math.IsInf(p.BPM, 0) && !math.IsInf(p.BeatsPerBar, 0)
}

// barsToMS converts a bar count to milliseconds under the plan's tempo,
// degrading to a fixed 1000 ms per bar when no tempo is available.
func barsToMS(p show.Plan, bars float64) float64 {
	if !tempoValid(p) {
		return bars * fallbackMSPerBar
	}
	return bars * p.BeatsPerBar * msPerMinute / p.BPM
}

// roundMS rounds a millisecond float to the integer grid segments use.
func roundMS(v float64) int64 {
	return int64(math.Round(v))
}

// resolveWindow maps the plan's bar window to milliseconds. A malformed
// window (non-finite bars, non-positive duration) is an ErrInvalidPlan;
// the caller substitutes the stub window.
func resolveWindow(p show.Plan) (window, error) {
	if math.IsNaN(p.StartBar) || math.IsInf(p.StartBar, 0) ||
		math.IsNaN(p.DurationBars) || math.IsInf(p.DurationBars, 0) {
		return window{}, fmt.Errorf("%w: non-finite bar values", ErrInvalidPlan)
	}
	if p.DurationBars <= 0 {
		return window{}, fmt.Errorf("%w: duration %g bars", ErrInvalidPlan, p.DurationBars)
	}

	start := roundMS(barsToMS(p, p.StartBar))
	end := roundMS(barsToMS(p, p.StartBar+p.DurationBars))
	if end <= start {
		return window{}, fmt.Errorf("%w: window collapses to %dms", ErrInvalidPlan, end-start)
	}

	return window{startMS: start, endMS: end}, nil
}

// totalCycles returns how many loop cycles tile the window, counting a
// partial trailing cycle (clipping trims the overhang). Float remainders
// below cycleEpsilon do not spawn an extra cycle.
func totalCycles(durationBars, cycleBars float64) int {
	ratio := durationBars / cycleBars
	total := int(ratio)
	if ratio-float64(total) > cycleEpsilon {
		total++
	}
	if total < 1 {
		total = 1
	}
	return total
}
