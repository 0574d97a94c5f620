package compiler

import (
	"fmt"

	"github.com/lumenweave/lumenweave-core/internal/curve"
	"github.com/lumenweave/lumenweave-core/internal/rig"
	"github.com/lumenweave/lumenweave-core/internal/show"
	"github.com/lumenweave/lumenweave-core/internal/template"
)

// Default curve resolutions. Movement curves get more samples because
// pan/tilt interpolation artefacts are visible as stutter; dimmer
// curves tolerate coarser grids.
const (
	defaultMovementSamples = 32
	defaultDimmerSamples   = 16

	rampSamples = 16
)

// Logger is the minimal structured logging surface the compiler needs.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// IterationPolicy lets a caller vary a loop step per cycle - energy
// ramps, alternating groups - without the compiler knowing why. Apply
// receives a copy and returns the step to compile for that iteration.
type IterationPolicy interface {
	Apply(iteration int, step template.Step) template.Step
}

// IterationPolicyFunc adapts a function to the IterationPolicy
// interface.
type IterationPolicyFunc func(iteration int, step template.Step) template.Step

// Apply implements IterationPolicy.
func (f IterationPolicyFunc) Apply(iteration int, step template.Step) template.Step {
	return f(iteration, step)
}

// StepError records a step the compiler skipped and why.
type StepError struct {
	StepID string `json:"step_id"`
	Err    error  `json:"-"`
}

func (e StepError) Error() string {
	return fmt.Sprintf("step %q: %v", e.StepID, e.Err)
}

// Unwrap supports errors.Is matching on the underlying cause.
func (e StepError) Unwrap() error {
	return e.Err
}

// Result is a finished compile: the clipped segments, the resolved
// window, and everything that went wrong without failing the compile.
type Result struct {
	Segments []show.ChannelSegment `json:"segments"`

	StartMS int64 `json:"start_ms"`
	EndMS   int64 `json:"end_ms"`

	// Skipped lists steps dropped for configuration errors.
	Skipped []StepError `json:"skipped,omitempty"`

	// Degraded is set when the compile ran without a usable tempo or
	// window and fell back to its documented defaults.
	Degraded bool `json:"degraded,omitempty"`
}

// Compiler renders templates against a rig. Construct once per rig and
// share; a Compiler is stateless between calls.
type Compiler struct {
	rig    *rig.Rig
	log    Logger
	policy IterationPolicy

	// Default sample counts for steps that do not set their own.
	movementSamples int
	dimmerSamples   int
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithLogger enables structured logging of degraded modes, skipped
// steps, and clamp decisions.
func WithLogger(log Logger) Option {
	return func(c *Compiler) { c.log = log }
}

// WithIterationPolicy installs a per-cycle step transform for loop
// expansion.
func WithIterationPolicy(p IterationPolicy) Option {
	return func(c *Compiler) { c.policy = p }
}

// WithSampleCounts overrides the default movement and dimmer curve
// resolutions. Zero keeps a default; per-step Samples still wins.
func WithSampleCounts(movement, dimmer int) Option {
	return func(c *Compiler) {
		c.movementSamples = movement
		c.dimmerSamples = dimmer
	}
}

// New creates a compiler for the given rig.
func New(r *rig.Rig, opts ...Option) (*Compiler, error) {
	if r == nil {
		return nil, ErrNilRig
	}
	c := &Compiler{rig: r}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Compile renders a template over the plan window.
//
// The compile never fails for authoring mistakes: a malformed plan
// window degrades to a 1000 ms stub, a missing tempo to 1000 ms per
// bar, and steps with configuration errors are skipped and reported in
// the result. Only a nil template is an error.
func (c *Compiler) Compile(plan show.Plan, tpl *template.Template) (*Result, error) {
	if tpl == nil {
		return nil, ErrNilTemplate
	}

	res := &Result{}

	win, err := resolveWindow(plan)
	if err != nil {
		c.warn("plan window unusable, compiling stub window",
			"template", tpl.Slug, "error", err)
		win = window{startMS: 0, endMS: stubWindowMS}
		plan = show.Plan{StartBar: 0, DurationBars: 1}
		res.Degraded = true
	}
	if !tempoValid(plan) {
		c.warn("plan carries no tempo, using fallback 1000 ms/bar",
			"template", tpl.Slug, "bpm", plan.BPM)
		res.Degraded = true
	}
	res.StartMS, res.EndMS = win.startMS, win.endMS

	if tpl.Repeat.Repeatable && tpl.Repeat.CycleBars > 0 {
		c.compileLooped(plan, tpl, res)
	} else {
		for _, step := range tpl.Steps {
			c.emitStep(plan, tpl, step, 0, false, res)
		}
	}

	clipped := make([]show.ChannelSegment, 0, len(res.Segments))
	for _, seg := range res.Segments {
		if s, ok := seg.Clip(win.startMS, win.endMS); ok {
			clipped = append(clipped, s)
		}
	}
	res.Segments = clipped

	return res, nil
}

// compileLooped tiles the template's loop steps across the window,
// cycle by cycle. One-shot steps (those outside loop_step_ids) compile
// once at the window start, and loop iterations that would begin at or
// after the earliest future one-shot step are suppressed so a closing
// step is not overdriven.
func (c *Compiler) compileLooped(plan show.Plan, tpl *template.Template, res *Result) {
	cycles := totalCycles(plan.DurationBars, tpl.Repeat.CycleBars)

	// With no explicit loop list, every step loops.
	loops := func(id string) bool {
		return len(tpl.Repeat.LoopStepIDs) == 0 || tpl.IsLoopStep(id)
	}

	var cutoffBars *float64
	for _, step := range tpl.Steps {
		if loops(step.ID) || step.Timing.StartOffsetBars <= 0 {
			continue
		}
		off := step.Timing.StartOffsetBars
		if cutoffBars == nil || off < *cutoffBars {
			cutoffBars = &off
		}
	}

	for i := 0; i < cycles; i++ {
		cycleOffset := float64(i) * tpl.Repeat.CycleBars
		reverse := tpl.Repeat.Mode == template.RepeatPingPong && i%2 == 1

		for _, step := range tpl.Steps {
			if !loops(step.ID) {
				if i == 0 {
					c.emitStep(plan, tpl, step, 0, false, res)
				}
				continue
			}

			if cutoffBars != nil && cycleOffset+step.Timing.StartOffsetBars >= *cutoffBars {
				continue
			}

			iter := step
			if c.policy != nil {
				iter = c.policy.Apply(i, step)
			}
			c.emitStep(plan, tpl, iter, cycleOffset, reverse, res)
		}
	}
}

// emitStep compiles one step occurrence and appends its segments,
// recording a skip on configuration errors. A step failing across many
// loop iterations is reported once.
func (c *Compiler) emitStep(plan show.Plan, tpl *template.Template, step template.Step, cycleOffsetBars float64, reverse bool, res *Result) {
	segs, err := c.compileStep(plan, tpl, step, cycleOffsetBars, reverse)
	if err != nil {
		for _, skipped := range res.Skipped {
			if skipped.StepID == step.ID {
				return
			}
		}
		c.warn("skipping step", "step", step.ID, "error", err)
		res.Skipped = append(res.Skipped, StepError{StepID: step.ID, Err: err})
		return
	}
	res.Segments = append(res.Segments, segs...)
}

// compileStep renders one occurrence of a step into PAN/TILT/DIMMER
// segments for every fixture in its group.
func (c *Compiler) compileStep(plan show.Plan, tpl *template.Template, step template.Step, cycleOffsetBars float64, reverse bool) ([]show.ChannelSegment, error) {
	if step.Timing.DurationBars <= 0 {
		return nil, fmt.Errorf("%w: duration %g bars", ErrInvalidStep, step.Timing.DurationBars)
	}

	// Round both edges on the absolute bar grid so consecutive cycles
	// tile without millisecond gaps at fractional tempos.
	startBars := plan.StartBar + cycleOffsetBars + step.Timing.StartOffsetBars
	t0 := roundMS(barsToMS(plan, startBars))
	t1 := roundMS(barsToMS(plan, startBars+step.Timing.DurationBars))
	if t1 <= t0 {
		return nil, fmt.Errorf("%w: duration rounds to %dms", ErrInvalidStep, t1-t0)
	}

	members, err := c.rig.Group(step.Group)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStep, err)
	}

	moveCurve, err := movementCurve(step.Movement, reverse, c.movementSamples)
	if err != nil {
		return nil, fmt.Errorf("%w: movement: %v", ErrInvalidStep, err)
	}

	dimCurve, err := dimmerCurve(step.Dimmer, c.dimmerSamples)
	if err != nil {
		return nil, fmt.Errorf("%w: dimmer: %v", ErrInvalidStep, err)
	}

	offsets := c.phaseOffsets(plan, step, members, t1-t0)

	segs := make([]show.ChannelSegment, 0, len(members)*3)
	for _, id := range members {
		f, err := c.rig.Fixture(id)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidStep, err)
		}
		segs = append(segs, c.fixtureSegments(plan, tpl, step, f, t0, t1, offsets[id], moveCurve, dimCurve)...)
	}
	return segs, nil
}

// fixtureSegments emits the channel segments for one fixture of a step.
func (c *Compiler) fixtureSegments(plan show.Plan, tpl *template.Template, step template.Step, f rig.Fixture, t0, t1, offsetMS int64, moveCurve, dimCurve []curve.Point) []show.ChannelSegment {
	enf := rig.NewEnforcer(f)
	if c.log != nil {
		enf.SetLogger(c.log)
	}
	cal := f.Calibration

	// Wrapped offsets rotate the curves inside the unmoved window;
	// unwrapped offsets shift the window itself.
	w0, w1 := t0, t1
	fixMove, fixDim := moveCurve, dimCurve
	if offsetMS != 0 {
		if step.Timing.Phase.Wrap {
			// A lagging fixture replays the motion offsetMS later, so the
			// curve rotates backwards: sample at (t - offset/dur) mod 1.
			frac := -float64(offsetMS) / float64(t1-t0)
			if fixMove != nil {
				fixMove = curve.Rotate(fixMove, frac)
			}
			if fixDim != nil {
				fixDim = curve.Rotate(fixDim, frac)
			}
		} else {
			w0 += offsetMS
			w1 += offsetMS
		}
	}

	basePan := enf.DegreesToPanDMX(step.Geometry.PanDeg, true)
	baseTilt := enf.DegreesToTiltDMX(step.Geometry.TiltDeg, true)
	panLo, panHi := enf.EffectivePanLimits()

	floor, ceiling := resolveDimmerBounds(cal, tpl, step)

	var segs []show.ChannelSegment

	pan := show.ChannelSegment{
		FixtureID: f.ID, Channel: show.ChannelPan,
		T0: w0, T1: w1,
		ClampMin: panLo, ClampMax: panHi,
		BlendMode: step.BlendMode,
	}
	tilt := show.ChannelSegment{
		FixtureID: f.ID, Channel: show.ChannelTilt,
		T0: w0, T1: w1,
		ClampMin: cal.TiltMin, ClampMax: cal.TiltMax,
		BlendMode: step.BlendMode,
	}

	if step.Movement != nil && fixMove != nil {
		pan.Curve = fixMove
		pan.BaseDMX = basePan
		pan.AmplitudeDMX = enf.PanDegreesToDMXDelta(step.Movement.PanAmplitudeDeg) * cal.PanScale

		tilt.Curve = fixMove
		tilt.BaseDMX = baseTilt
		tilt.AmplitudeDMX = enf.TiltDegreesToDMXDelta(step.Movement.TiltAmplitudeDeg) * cal.TiltScale
	} else {
		pan.StaticDMX = basePan
		tilt.StaticDMX = baseTilt
	}
	segs = append(segs, pan, tilt)

	dim := show.ChannelSegment{
		FixtureID: f.ID, Channel: show.ChannelDimmer,
		T0: w0, T1: w1,
		ClampMin: floor, ClampMax: ceiling,
		BlendMode: step.BlendMode,
	}
	if step.Dimmer != nil && fixDim != nil {
		dim.Curve = fixDim
		dim.BaseDMX = floor
		dim.AmplitudeDMX = ceiling - floor
	} else {
		// No dimmer curve holds at the resolved ceiling.
		dim.StaticDMX = ceiling
	}
	segs = append(segs, dim)

	if entry := transitionSegment(plan, step.Entry, dim, floor, ceiling, true); entry != nil {
		segs = append(segs, *entry)
	}
	if exit := transitionSegment(plan, step.Exit, dim, floor, ceiling, false); exit != nil {
		segs = append(segs, *exit)
	}

	return segs
}

// resolveDimmerBounds combines rig calibration with template and step
// overrides: floors only ever rise, ceilings only ever drop, and an
// inverted pair collapses to the floor.
func resolveDimmerBounds(cal rig.Calibration, tpl *template.Template, step template.Step) (floor, ceiling float64) {
	floor = cal.DimmerFloor
	if tpl.DimmerFloor != nil && *tpl.DimmerFloor > floor {
		floor = *tpl.DimmerFloor
	}
	if step.DimmerFloor != nil && *step.DimmerFloor > floor {
		floor = *step.DimmerFloor
	}

	ceiling = cal.DimmerCeiling
	if ceiling > rig.DMXMax {
		ceiling = rig.DMXMax
	}
	if tpl.DimmerCeiling != nil && *tpl.DimmerCeiling < ceiling {
		ceiling = *tpl.DimmerCeiling
	}
	if step.DimmerCeiling != nil && *step.DimmerCeiling < ceiling {
		ceiling = *step.DimmerCeiling
	}

	if ceiling < floor {
		ceiling = floor
	}
	return floor, ceiling
}

// movementCurve generates a step's loop-closed, zero-centred movement
// curve, reversed for ping-pong odd cycles. Nil movement yields nil.
func movementCurve(m *template.Movement, reverse bool, defaultSamples int) ([]curve.Point, error) {
	if m == nil {
		return nil, nil
	}

	samples := m.Samples
	if samples <= 0 {
		samples = defaultSamples
	}
	if samples <= 0 {
		samples = defaultMovementSamples
	}

	base, err := curve.Generate(m.Curve, samples, m.Params)
	if err != nil {
		return nil, err
	}

	loop := m.Loop
	if loop == "" {
		loop = curve.LoopAppend
	}
	out := curve.Movement(base, loop)

	if reverse {
		out = curve.Reverse(out)
	}
	return out, nil
}

// dimmerCurve generates a step's normalised intensity curve. Nil dimmer
// yields nil (hold at ceiling).
func dimmerCurve(d *template.Dimmer, defaultSamples int) ([]curve.Point, error) {
	if d == nil {
		return nil, nil
	}

	samples := d.Samples
	if samples <= 0 {
		samples = defaultSamples
	}
	if samples <= 0 {
		samples = defaultDimmerSamples
	}
	return curve.Generate(d.Curve, samples, d.Params)
}

// transitionSegment builds the dimmer segment immediately before
// (entry) or after (exit) a step window, fading between the floor and
// the step's edge level. Returns nil when the step has no transition or
// it rounds to nothing.
func transitionSegment(plan show.Plan, t *template.StepTransition, dim show.ChannelSegment, floor, ceiling float64, entry bool) *show.ChannelSegment {
	if t == nil || t.DurationBars <= 0 {
		return nil
	}
	durMS := roundMS(barsToMS(plan, t.DurationBars))
	if durMS <= 0 {
		return nil
	}

	// The fade target is the dimmer level at the step edge the
	// transition touches.
	edge := 0.0
	if entry {
		edge = dim.ValueAt(0)
	} else {
		edge = dim.ValueAt(1)
	}

	seg := show.ChannelSegment{
		FixtureID: dim.FixtureID,
		Channel:   show.ChannelDimmer,
		BaseDMX:   floor,
		ClampMin:  floor,
		ClampMax:  ceiling,
		BlendMode: dim.BlendMode,
	}
	if entry {
		seg.T0, seg.T1 = dim.T0-durMS, dim.T0
		seg.AmplitudeDMX = edge - floor
		seg.Curve = shapeCurve(t.Mode, true)
	} else {
		seg.T0, seg.T1 = dim.T1, dim.T1+durMS
		seg.AmplitudeDMX = edge - floor
		seg.Curve = shapeCurve(t.Mode, false)
	}
	return &seg
}

// shapeCurve returns the normalised transition shape: a 2-sample step
// for snap (renderers hold sample values, so the jump lands at the
// window edge) or a 16-sample linear ramp otherwise.
func shapeCurve(mode template.TransitionMode, rising bool) []curve.Point {
	if mode == template.TransitionSnap {
		if rising {
			return []curve.Point{{T: 0, V: 0}, {T: 1, V: 1}}
		}
		return []curve.Point{{T: 0, V: 1}, {T: 1, V: 0}}
	}

	ramp, err := curve.Generate(curve.Linear, rampSamples, curve.DefaultParams())
	if err != nil {
		// Linear with defaults cannot fail; keep the compiler total.
		ramp = []curve.Point{{T: 0, V: 0}, {T: 1, V: 1}}
	}
	if !rising {
		ramp = curve.Reverse(ramp)
	}
	return ramp
}

func (c *Compiler) warn(msg string, args ...any) {
	if c.log != nil {
		c.log.Warn(msg, args...)
	}
}
