package curve

// LoopMode selects how a movement curve is made loop-ready.
type LoopMode string

const (
	// LoopAppend duplicates the first sample as a new final sample, so a
	// repeated playback lands exactly where it started. The grid is
	// re-spaced over the extra point.
	LoopAppend LoopMode = "append"

	// LoopWrap keeps the sample count and instead blends the tail of the
	// curve into the first sample's value.
	LoopWrap LoopMode = "wrap"
)

// wrapBlendFraction is the trailing portion of the curve blended toward
// the first sample under LoopWrap.
const wrapBlendFraction = 0.25

// Movement converts a base curve into an offset movement curve: values
// are centred around zero (for amplitude application about a base pose)
// and the loop seam is closed according to mode.
//
// The input is not modified; a fresh slice is returned. An unrecognised
// mode applies centring only.
func Movement(base []Point, mode LoopMode) []Point {
	centred := Centre(base)

	switch mode {
	case LoopAppend:
		return appendLoop(centred)
	case LoopWrap:
		return wrapLoop(centred)
	default:
		return centred
	}
}

// Centre returns a copy of the curve with the mean subtracted from every
// value, making it symmetric around zero.
func Centre(points []Point) []Point {
	out := make([]Point, len(points))
	if len(points) == 0 {
		return out
	}

	var sum float64
	for _, pt := range points {
		sum += pt.V
	}
	mean := sum / float64(len(points))

	for i, pt := range points {
		out[i] = Point{T: pt.T, V: pt.V - mean}
	}
	return out
}

// appendLoop adds the first sample as a new final sample and re-spaces
// the time grid over the grown point count.
func appendLoop(points []Point) []Point {
	n := len(points)
	if n == 0 {
		return points
	}

	out := make([]Point, n+1)
	copy(out, points)
	out[n] = Point{V: points[0].V}

	for i := range out {
		out[i].T = float64(i) / float64(n)
	}
	return out
}

// wrapLoop blends the final quarter of the curve toward the first value
// with linearly increasing weight, ending exactly on it.
func wrapLoop(points []Point) []Point {
	n := len(points)
	if n < minSamples {
		return points
	}

	out := make([]Point, n)
	copy(out, points)

	span := int(float64(n) * wrapBlendFraction)
	if span < 1 {
		span = 1
	}
	start := n - span

	first := points[0].V
	for i := start; i < n; i++ {
		w := float64(i-start+1) / float64(span)
		out[i].V = points[i].V*(1-w) + first*w
	}
	return out
}
