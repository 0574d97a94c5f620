package show

import (
	"math"
	"testing"

	"github.com/lumenweave/lumenweave-core/internal/curve"
)

func linearCurve(t *testing.T, n int) []curve.Point {
	t.Helper()
	points, err := curve.Generate(curve.Linear, n, curve.DefaultParams())
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	return points
}

func TestValueAtStatic(t *testing.T) {
	seg := ChannelSegment{
		FixtureID: "mh-1",
		Channel:   ChannelDimmer,
		T0:        0, T1: 1000,
		StaticDMX: 200,
		ClampMin:  0, ClampMax: 180,
	}

	for _, frac := range []float64{0, 0.5, 1} {
		if got := seg.ValueAt(frac); got != 180 {
			t.Errorf("ValueAt(%g) = %g, want 180 (clamped)", frac, got)
		}
	}
}

func TestValueAtDynamic(t *testing.T) {
	seg := ChannelSegment{
		FixtureID: "mh-1",
		Channel:   ChannelPan,
		T0:        0, T1: 2000,
		Curve:        linearCurve(t, 9),
		BaseDMX:      100,
		AmplitudeDMX: 50,
		ClampMin:     0, ClampMax: 255,
	}

	tests := []struct {
		frac float64
		want float64
	}{
		{0, 100},
		{0.5, 125},
		{1, 150},
	}
	for _, tt := range tests {
		if got := seg.ValueAt(tt.frac); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("ValueAt(%g) = %g, want %g", tt.frac, got, tt.want)
		}
	}
}

func TestClipBounds(t *testing.T) {
	seg := ChannelSegment{
		FixtureID: "mh-1",
		Channel:   ChannelDimmer,
		T0:        1000, T1: 3000,
		StaticDMX: 255,
		ClampMax:  255,
	}

	tests := []struct {
		name         string
		start, end   int64
		wantOK       bool
		wantT0, wantT1 int64
	}{
		{"fully inside window", 0, 10000, true, 1000, 3000},
		{"clip head", 1500, 10000, true, 1500, 3000},
		{"clip tail", 0, 2500, true, 1000, 2500},
		{"clip both", 1200, 1800, true, 1200, 1800},
		{"entirely before", 0, 1000, false, 0, 0},
		{"entirely after", 3000, 4000, false, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := seg.Clip(tt.start, tt.end)
			if ok != tt.wantOK {
				t.Fatalf("Clip ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got.T0 != tt.wantT0 || got.T1 != tt.wantT1 {
				t.Errorf("Clip window = [%d, %d), want [%d, %d)", got.T0, got.T1, tt.wantT0, tt.wantT1)
			}
			if got.T1 <= got.T0 {
				t.Error("clipped segment violates t1 > t0")
			}
		})
	}
}

func TestClipDoesNotMutateOriginal(t *testing.T) {
	seg := ChannelSegment{
		T0: 0, T1: 1000,
		Curve:        linearCurve(t, 5),
		AmplitudeDMX: 255,
		ClampMax:     255,
	}

	clipped, ok := seg.Clip(500, 1000)
	if !ok {
		t.Fatal("Clip returned not ok")
	}
	clipped.Curve[0].V = 99

	if seg.Curve[0].V == 99 {
		t.Error("Clip shares curve storage with the original")
	}
	if seg.T0 != 0 || seg.T1 != 1000 {
		t.Error("original bounds modified")
	}
}

func TestClipResamplesCurve(t *testing.T) {
	seg := ChannelSegment{
		T0: 0, T1: 1000,
		Curve:        linearCurve(t, 11),
		BaseDMX:      0,
		AmplitudeDMX: 100,
		ClampMax:     255,
	}

	// Keep the second half: values should now run 50..100.
	clipped, ok := seg.Clip(500, 1000)
	if !ok {
		t.Fatal("Clip returned not ok")
	}

	if got := clipped.ValueAt(0); math.Abs(got-50) > 1e-9 {
		t.Errorf("clipped start value = %g, want 50", got)
	}
	if got := clipped.ValueAt(1); math.Abs(got-100) > 1e-9 {
		t.Errorf("clipped end value = %g, want 100", got)
	}
}

func TestReversed(t *testing.T) {
	seg := ChannelSegment{
		T0: 0, T1: 1000,
		Curve:        linearCurve(t, 5),
		AmplitudeDMX: 100,
		ClampMax:     255,
	}

	rev := seg.Reversed()

	if got := rev.ValueAt(0); math.Abs(got-100) > 1e-9 {
		t.Errorf("reversed start value = %g, want 100", got)
	}
	if got := rev.ValueAt(1); math.Abs(got) > 1e-9 {
		t.Errorf("reversed end value = %g, want 0", got)
	}

	// Grid stays normalised and ascending.
	for i, pt := range rev.Curve {
		want := float64(i) / float64(len(rev.Curve)-1)
		if math.Abs(pt.T-want) > 1e-9 {
			t.Errorf("reversed grid t[%d] = %g, want %g", i, pt.T, want)
		}
	}

	// Static segments are returned unchanged.
	static := ChannelSegment{T0: 0, T1: 100, StaticDMX: 42, ClampMax: 255}
	if got := static.Reversed(); got.StaticDMX != 42 {
		t.Errorf("static Reversed changed value: %+v", got)
	}
}
