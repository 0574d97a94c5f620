package compiler

import (
	"errors"
	"math"
	"sort"
	"testing"

	"github.com/lumenweave/lumenweave-core/internal/curve"
	"github.com/lumenweave/lumenweave-core/internal/rig"
	"github.com/lumenweave/lumenweave-core/internal/show"
	"github.com/lumenweave/lumenweave-core/internal/template"
)

// testRig builds n generic moving heads named mh-1..mh-n.
func testRig(t *testing.T, n int) *rig.Rig {
	t.Helper()

	fixtures := make([]rig.Fixture, n)
	for i := range fixtures {
		id := rig.FixtureID("mh-" + string(rune('1'+i)))
		fixtures[i] = rig.Fixture{ID: id, Calibration: rig.DefaultCalibration()}
	}

	r, err := rig.New(fixtures, nil, nil)
	if err != nil {
		t.Fatalf("building test rig: %v", err)
	}
	return r
}

func testCompiler(t *testing.T, n int) *Compiler {
	t.Helper()
	c, err := New(testRig(t, n))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return c
}

// testPlan is four bars of 4/4 at 120 BPM: an 8000 ms window.
func testPlan() show.Plan {
	return show.Plan{StartBar: 0, DurationBars: 4, BPM: 120, BeatsPerBar: 4}
}

func sweepStep() template.Step {
	return template.Step{
		ID:    "sweep",
		Group: rig.GroupAll,
		Geometry: template.Geometry{
			PanDeg: 0, TiltDeg: 20,
		},
		Movement: &template.Movement{
			Curve:           curve.Sine,
			Params:          curve.Params{Cycles: 1},
			PanAmplitudeDeg: 45,
		},
		Timing: template.Timing{
			StartOffsetBars: 0,
			DurationBars:    4,
		},
	}
}

func sweepTemplate() *template.Template {
	return &template.Template{
		ID:    "tpl-sweep",
		Name:  "Sweep",
		Slug:  "sweep",
		Steps: []template.Step{sweepStep()},
	}
}

func channelSegments(res *Result, ch show.Channel) []show.ChannelSegment {
	var out []show.ChannelSegment
	for _, seg := range res.Segments {
		if seg.Channel == ch {
			out = append(out, seg)
		}
	}
	return out
}

func TestCompileWindowMapping(t *testing.T) {
	c := testCompiler(t, 2)

	res, err := c.Compile(testPlan(), sweepTemplate())
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}

	if res.StartMS != 0 || res.EndMS != 8000 {
		t.Errorf("window = [%d, %d), want [0, 8000)", res.StartMS, res.EndMS)
	}
	if res.Degraded {
		t.Error("compile flagged degraded with a valid plan")
	}
	if len(res.Skipped) != 0 {
		t.Errorf("skipped steps: %v", res.Skipped)
	}

	// Two fixtures, three channels each.
	if len(res.Segments) != 6 {
		t.Fatalf("segments = %d, want 6", len(res.Segments))
	}
	for _, seg := range res.Segments {
		if seg.T0 != 0 || seg.T1 != 8000 {
			t.Errorf("%s/%s window = [%d, %d), want [0, 8000)",
				seg.FixtureID, seg.Channel, seg.T0, seg.T1)
		}
	}

	pans := channelSegments(res, show.ChannelPan)
	if len(pans) != 2 || !pans[0].IsDynamic() {
		t.Fatalf("pan segments wrong: %+v", pans)
	}
	// 45° on a 540° head is 21.25 DMX of amplitude.
	if math.Abs(pans[0].AmplitudeDMX-21.25) > 1e-9 {
		t.Errorf("pan amplitude = %g, want 21.25", pans[0].AmplitudeDMX)
	}
}

func TestCompileDegradedTempo(t *testing.T) {
	c := testCompiler(t, 1)
	plan := show.Plan{StartBar: 0, DurationBars: 4}

	res, err := c.Compile(plan, sweepTemplate())
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}

	if !res.Degraded {
		t.Error("tempo-less compile not flagged degraded")
	}
	if res.EndMS != 4000 {
		t.Errorf("fallback window end = %d, want 4000 (1000 ms/bar)", res.EndMS)
	}
}

func TestCompileStubWindow(t *testing.T) {
	c := testCompiler(t, 1)
	plan := show.Plan{StartBar: 0, DurationBars: 0, BPM: 120, BeatsPerBar: 4}

	res, err := c.Compile(plan, sweepTemplate())
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}

	if !res.Degraded {
		t.Error("malformed window not flagged degraded")
	}
	if res.StartMS != 0 || res.EndMS != 1000 {
		t.Errorf("stub window = [%d, %d), want [0, 1000)", res.StartMS, res.EndMS)
	}
	for _, seg := range res.Segments {
		if seg.T1 > 1000 {
			t.Errorf("segment escapes stub window: [%d, %d)", seg.T0, seg.T1)
		}
	}
}

func TestCompileUnknownGroupSkipsStep(t *testing.T) {
	c := testCompiler(t, 2)

	tpl := sweepTemplate()
	bad := sweepStep()
	bad.ID = "broken"
	bad.Group = "BALCONY"
	tpl.Steps = append(tpl.Steps, bad)

	res, err := c.Compile(testPlan(), tpl)
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}

	if len(res.Skipped) != 1 || res.Skipped[0].StepID != "broken" {
		t.Fatalf("skipped = %+v, want [broken]", res.Skipped)
	}
	if !errors.Is(res.Skipped[0], ErrInvalidStep) {
		t.Errorf("skip cause = %v, want ErrInvalidStep", res.Skipped[0].Err)
	}
	// The healthy step still compiled.
	if len(res.Segments) != 6 {
		t.Errorf("segments = %d, want 6 from the surviving step", len(res.Segments))
	}
}

func TestCompilePhaseSpreadShiftsWindows(t *testing.T) {
	c := testCompiler(t, 4)

	tpl := sweepTemplate()
	tpl.Steps[0].Timing.Phase = template.Phase{
		Mode:       template.PhaseGroupOrder,
		SpreadBars: 1, // 2000 ms at this tempo
	}

	res, err := c.Compile(testPlan(), tpl)
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}

	starts := map[rig.FixtureID]int64{}
	for _, seg := range channelSegments(res, show.ChannelPan) {
		starts[seg.FixtureID] = seg.T0
	}

	want := map[rig.FixtureID]int64{
		"mh-1": 0,
		"mh-2": 667,
		"mh-3": 1333,
		"mh-4": 2000,
	}
	for id, wantT0 := range want {
		if starts[id] != wantT0 {
			t.Errorf("%s pan starts at %d, want %d", id, starts[id], wantT0)
		}
	}
}

func TestCompilePhaseWrapKeepsWindows(t *testing.T) {
	c := testCompiler(t, 4)

	tpl := sweepTemplate()
	tpl.Steps[0].Timing.Phase = template.Phase{
		Mode:       template.PhaseGroupOrder,
		SpreadBars: 1,
		Wrap:       true,
	}

	res, err := c.Compile(testPlan(), tpl)
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}

	for _, seg := range res.Segments {
		if seg.T0 != 0 || seg.T1 != 8000 {
			t.Errorf("%s/%s window = [%d, %d), want [0, 8000) under wrap",
				seg.FixtureID, seg.Channel, seg.T0, seg.T1)
		}
	}

	// Wrapped fixtures rotate phase instead: their curves must differ.
	pans := channelSegments(res, show.ChannelPan)
	if len(pans) != 4 {
		t.Fatalf("pan segments = %d, want 4", len(pans))
	}
	if pans[0].ValueAt(0) == pans[1].ValueAt(0) {
		t.Error("wrapped phase produced identical curves across fixtures")
	}
}

// TestCompilePhaseWrapMatchesChaseDirection drives a 3-fixture chase
// with an ascending movement curve and checks that wrapped and
// unwrapped phase stagger the fixtures the same way: higher group
// order lags, so at any instant mh-1 reads furthest along the curve
// and mh-3 the least.
func TestCompilePhaseWrapMatchesChaseDirection(t *testing.T) {
	c := testCompiler(t, 3)

	build := func(wrap bool) *template.Template {
		tpl := sweepTemplate()
		tpl.Steps[0].Movement = &template.Movement{
			Curve:           curve.Linear,
			PanAmplitudeDeg: 45,
		}
		tpl.Steps[0].Timing.Phase = template.Phase{
			Mode:       template.PhaseGroupOrder,
			SpreadBars: 1, // 2000 ms at this tempo
			Wrap:       wrap,
		}
		return tpl
	}

	// Pan value per fixture at the absolute mid-window instant 4000 ms.
	midValues := func(res *Result) map[rig.FixtureID]float64 {
		out := map[rig.FixtureID]float64{}
		for _, seg := range channelSegments(res, show.ChannelPan) {
			frac := float64(4000-seg.T0) / float64(seg.T1-seg.T0)
			out[seg.FixtureID] = seg.ValueAt(frac)
		}
		return out
	}

	for _, wrap := range []bool{false, true} {
		res, err := c.Compile(testPlan(), build(wrap))
		if err != nil {
			t.Fatalf("Compile(wrap=%v) returned error: %v", wrap, err)
		}
		v := midValues(res)
		if !(v["mh-1"] > v["mh-2"] && v["mh-2"] > v["mh-3"]) {
			t.Errorf("wrap=%v chase order broken: mh-1=%g mh-2=%g mh-3=%g, want descending",
				wrap, v["mh-1"], v["mh-2"], v["mh-3"])
		}
	}
}

// TestCompileLoopCyclesTileAtFractionalTempo checks the round-trip
// property at a tempo whose bar length is not a whole number of
// milliseconds: consecutive loop cycles must still share their
// boundary instant with no gap or overlap.
func TestCompileLoopCyclesTileAtFractionalTempo(t *testing.T) {
	c := testCompiler(t, 1)

	tpl := sweepTemplate()
	tpl.Steps[0].Timing.DurationBars = 1
	tpl.Repeat = template.Repeat{
		Repeatable:  true,
		CycleBars:   1,
		LoopStepIDs: []string{"sweep"},
		Mode:        template.RepeatNormal,
	}

	// One bar of 4/4 at 130 BPM is 1846.15 ms.
	plan := show.Plan{StartBar: 0, DurationBars: 8, BPM: 130, BeatsPerBar: 4}

	res, err := c.Compile(plan, tpl)
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}

	pans := channelSegments(res, show.ChannelPan)
	if len(pans) != 8 {
		t.Fatalf("pan segments = %d, want 8 cycles", len(pans))
	}
	sort.Slice(pans, func(i, j int) bool { return pans[i].T0 < pans[j].T0 })

	for i := 1; i < len(pans); i++ {
		if pans[i].T0 != pans[i-1].T1 {
			t.Errorf("cycle boundary %d: previous t1=%d next t0=%d, want contiguous",
				i, pans[i-1].T1, pans[i].T0)
		}
	}
	if pans[0].T0 != 0 || pans[len(pans)-1].T1 != res.EndMS {
		t.Errorf("tiled cycles span [%d, %d), want [0, %d)",
			pans[0].T0, pans[len(pans)-1].T1, res.EndMS)
	}
}

func TestCompileLoopExpansion(t *testing.T) {
	c := testCompiler(t, 1)

	tpl := sweepTemplate()
	tpl.Steps[0].Timing.DurationBars = 1
	tpl.Repeat = template.Repeat{
		Repeatable:  true,
		CycleBars:   1,
		LoopStepIDs: []string{"sweep"},
		Mode:        template.RepeatNormal,
	}

	res, err := c.Compile(testPlan(), tpl)
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}

	pans := channelSegments(res, show.ChannelPan)
	if len(pans) != 4 {
		t.Fatalf("pan segments = %d, want 4 loop cycles", len(pans))
	}
	for i, seg := range pans {
		wantT0 := int64(i) * 2000
		if seg.T0 != wantT0 || seg.T1 != wantT0+2000 {
			t.Errorf("cycle %d window = [%d, %d), want [%d, %d)",
				i, seg.T0, seg.T1, wantT0, wantT0+2000)
		}
	}
}

func TestCompilePartialTrailingCycleIsClipped(t *testing.T) {
	c := testCompiler(t, 1)

	tpl := sweepTemplate()
	tpl.Steps[0].Timing.DurationBars = 1
	tpl.Repeat = template.Repeat{Repeatable: true, CycleBars: 1}

	plan := testPlan()
	plan.DurationBars = 4.5 // 9000 ms: five cycles, last one half-length

	res, err := c.Compile(plan, tpl)
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}

	pans := channelSegments(res, show.ChannelPan)
	if len(pans) != 5 {
		t.Fatalf("pan segments = %d, want 5", len(pans))
	}
	last := pans[len(pans)-1]
	if last.T0 != 8000 || last.T1 != 9000 {
		t.Errorf("trailing cycle = [%d, %d), want clipped [8000, 9000)", last.T0, last.T1)
	}
}

func TestCompilePingPongReversesOddCycles(t *testing.T) {
	c := testCompiler(t, 1)

	tpl := sweepTemplate()
	tpl.Steps[0].Timing.DurationBars = 2
	tpl.Steps[0].Movement.Curve = curve.Linear // asymmetric, so reversal shows
	tpl.Repeat = template.Repeat{
		Repeatable:  true,
		CycleBars:   2,
		LoopStepIDs: []string{"sweep"},
		Mode:        template.RepeatPingPong,
	}

	res, err := c.Compile(testPlan(), tpl)
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}

	pans := channelSegments(res, show.ChannelPan)
	if len(pans) != 2 {
		t.Fatalf("pan segments = %d, want 2 cycles", len(pans))
	}

	forward, back := pans[0], pans[1]
	rev := forward.Reversed()
	for i, pt := range rev.Curve {
		if math.Abs(pt.V-back.Curve[i].V) > 1e-9 || math.Abs(pt.T-back.Curve[i].T) > 1e-9 {
			t.Fatalf("odd cycle sample %d = %+v, want reversed %+v", i, back.Curve[i], pt)
		}
	}
}

func TestCompileLoopCutoffStopsBeforeOneShot(t *testing.T) {
	c := testCompiler(t, 1)

	closing := sweepStep()
	closing.ID = "close"
	closing.Movement = nil
	closing.Timing = template.Timing{StartOffsetBars: 3, DurationBars: 1}

	tpl := sweepTemplate()
	tpl.Steps[0].Timing.DurationBars = 1
	tpl.Steps = append(tpl.Steps, closing)
	tpl.Repeat = template.Repeat{
		Repeatable:  true,
		CycleBars:   1,
		LoopStepIDs: []string{"sweep"},
	}

	res, err := c.Compile(testPlan(), tpl)
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}

	// The loop step yields to the closing one-shot at bar 3: cycles
	// 0..2 only, plus the static closing step.
	pans := channelSegments(res, show.ChannelPan)
	if len(pans) != 4 {
		t.Fatalf("pan segments = %d, want 3 loop cycles + 1 closing", len(pans))
	}

	var dynamic, static int
	for _, seg := range pans {
		if seg.IsDynamic() {
			dynamic++
		} else {
			static++
		}
	}
	if dynamic != 3 || static != 1 {
		t.Errorf("dynamic/static = %d/%d, want 3/1", dynamic, static)
	}
}

func TestCompileDimmerBounds(t *testing.T) {
	cal := rig.DefaultCalibration()
	cal.DimmerFloor = 10
	cal.DimmerCeiling = 250

	tplFloor, stepFloor, stepCeil := 20.0, 30.0, 200.0
	tpl := sweepTemplate()
	tpl.DimmerFloor = &tplFloor
	tpl.Steps[0].DimmerFloor = &stepFloor
	tpl.Steps[0].DimmerCeiling = &stepCeil

	floor, ceiling := resolveDimmerBounds(cal, tpl, tpl.Steps[0])
	if floor != 30 || ceiling != 200 {
		t.Errorf("bounds = (%g, %g), want (30, 200)", floor, ceiling)
	}

	// Inverted overrides collapse onto the floor.
	inverted := 220.0
	tpl.Steps[0].DimmerFloor = &inverted
	floor, ceiling = resolveDimmerBounds(cal, tpl, tpl.Steps[0])
	if floor != 220 || ceiling != 220 {
		t.Errorf("inverted bounds = (%g, %g), want (220, 220)", floor, ceiling)
	}
}

func TestCompileEntryExitTransitions(t *testing.T) {
	c := testCompiler(t, 1)

	tpl := sweepTemplate()
	step := &tpl.Steps[0]
	step.Movement = nil
	step.Timing = template.Timing{StartOffsetBars: 1, DurationBars: 2}
	step.Entry = &template.StepTransition{Mode: template.TransitionRamp, DurationBars: 0.5}
	step.Exit = &template.StepTransition{Mode: template.TransitionRamp, DurationBars: 0.5}

	res, err := c.Compile(testPlan(), tpl)
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}

	dims := channelSegments(res, show.ChannelDimmer)
	if len(dims) != 3 {
		t.Fatalf("dimmer segments = %d, want entry + hold + exit", len(dims))
	}

	var entry, hold, exit *show.ChannelSegment
	for i := range dims {
		switch dims[i].T0 {
		case 1000:
			entry = &dims[i]
		case 2000:
			hold = &dims[i]
		case 6000:
			exit = &dims[i]
		}
	}
	if entry == nil || hold == nil || exit == nil {
		t.Fatalf("missing transition windows: %+v", dims)
	}

	if entry.T1 != 2000 || exit.T1 != 7000 {
		t.Errorf("transition windows = [%d,%d) [%d,%d)", entry.T0, entry.T1, exit.T0, exit.T1)
	}
	if got := entry.ValueAt(0); got != 0 {
		t.Errorf("entry starts at %g, want 0", got)
	}
	if got := entry.ValueAt(1); got != 255 {
		t.Errorf("entry ends at %g, want ceiling 255", got)
	}
	if got := exit.ValueAt(0); got != 255 {
		t.Errorf("exit starts at %g, want 255", got)
	}
	if got := exit.ValueAt(1); got != 0 {
		t.Errorf("exit ends at %g, want 0", got)
	}
	if hold.IsDynamic() || hold.StaticDMX != 255 {
		t.Errorf("hold level = %g, want 255", hold.StaticDMX)
	}
}

func TestCompileIterationPolicy(t *testing.T) {
	dim := func(iteration int, step template.Step) template.Step {
		ceil := 255.0 - float64(iteration)*50
		step.DimmerCeiling = &ceil
		return step
	}

	c, err := New(testRig(t, 1), WithIterationPolicy(IterationPolicyFunc(dim)))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	tpl := sweepTemplate()
	tpl.Steps[0].Timing.DurationBars = 1
	tpl.Repeat = template.Repeat{Repeatable: true, CycleBars: 1}

	res, err := c.Compile(testPlan(), tpl)
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}

	dims := channelSegments(res, show.ChannelDimmer)
	if len(dims) != 4 {
		t.Fatalf("dimmer segments = %d, want 4", len(dims))
	}
	for i, seg := range dims {
		want := 255.0 - float64(i)*50
		if seg.StaticDMX != want {
			t.Errorf("cycle %d dimmer = %g, want %g", i, seg.StaticDMX, want)
		}
	}
}

func TestCompileDeterminism(t *testing.T) {
	c := testCompiler(t, 4)

	tpl := sweepTemplate()
	tpl.Steps[0].Timing.Phase = template.Phase{
		Mode:       template.PhaseGroupOrder,
		SpreadBars: 1,
		Wrap:       true,
	}
	tpl.Repeat = template.Repeat{Repeatable: true, CycleBars: 2, Mode: template.RepeatPingPong}

	a, err := c.Compile(testPlan(), tpl)
	if err != nil {
		t.Fatalf("first Compile returned error: %v", err)
	}
	b, err := c.Compile(testPlan(), tpl)
	if err != nil {
		t.Fatalf("second Compile returned error: %v", err)
	}

	if len(a.Segments) != len(b.Segments) {
		t.Fatalf("segment counts differ: %d vs %d", len(a.Segments), len(b.Segments))
	}
	for i := range a.Segments {
		sa, sb := a.Segments[i], b.Segments[i]
		if sa.FixtureID != sb.FixtureID || sa.Channel != sb.Channel ||
			sa.T0 != sb.T0 || sa.T1 != sb.T1 {
			t.Fatalf("segment %d differs: %+v vs %+v", i, sa, sb)
		}
		for j := range sa.Curve {
			if sa.Curve[j] != sb.Curve[j] {
				t.Fatalf("segment %d sample %d differs", i, j)
			}
		}
	}
}

func TestCompileNilInputs(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, ErrNilRig) {
		t.Errorf("New(nil) error = %v, want ErrNilRig", err)
	}

	c := testCompiler(t, 1)
	if _, err := c.Compile(testPlan(), nil); !errors.Is(err, ErrNilTemplate) {
		t.Errorf("Compile(nil) error = %v, want ErrNilTemplate", err)
	}
}
