package curve

import "math"

// Interpolate evaluates a curve at t by linear interpolation between
// neighbouring samples. Values outside the sampled domain clamp to the
// end samples.
func Interpolate(points []Point, t float64) float64 {
	n := len(points)
	if n == 0 {
		return 0
	}
	if t <= points[0].T {
		return points[0].V
	}
	if t >= points[n-1].T {
		return points[n-1].V
	}

	for i := 1; i < n; i++ {
		if t <= points[i].T {
			span := points[i].T - points[i-1].T
			if span <= 0 {
				return points[i].V
			}
			w := (t - points[i-1].T) / span
			return points[i-1].V*(1-w) + points[i].V*w
		}
	}
	return points[n-1].V
}

// Rotate shifts a curve in phase by frac of its period, sampling the
// original at (t + frac) mod 1 on the same grid. Used for wrapped phase
// offsets, which rotate a fixture's motion within its step window
// instead of shifting the window itself.
func Rotate(points []Point, frac float64) []Point {
	n := len(points)
	out := make([]Point, n)
	if n == 0 {
		return out
	}

	frac = frac - math.Floor(frac)

	for i := range out {
		t := points[i].T
		src := t + frac
		if src > 1 {
			src -= 1
		}
		out[i] = Point{T: t, V: Interpolate(points, src)}
	}
	return out
}

// Reverse returns the curve reversed in time (t ↦ 1−t) on the same
// ascending grid.
func Reverse(points []Point) []Point {
	n := len(points)
	out := make([]Point, n)
	for i, pt := range points {
		out[n-1-i] = Point{T: 1 - pt.T, V: pt.V}
	}
	return out
}
