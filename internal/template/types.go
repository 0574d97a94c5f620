package template

import (
	"time"

	"github.com/lumenweave/lumenweave-core/internal/curve"
)

// RepeatMode controls how loop iterations traverse the pattern.
type RepeatMode string

const (
	// RepeatNormal replays each cycle identically.
	RepeatNormal RepeatMode = "normal"

	// RepeatPingPong reverses pan/tilt curves on odd iterations,
	// producing a back-and-forth traversal.
	RepeatPingPong RepeatMode = "ping_pong"
)

// PhaseMode selects how per-fixture phase offsets are distributed.
type PhaseMode string

const (
	// PhaseNone applies no offset; all fixtures move together.
	PhaseNone PhaseMode = "none"

	// PhaseGroupOrder spreads offsets evenly across an ordered fixture
	// list, producing a chase along the line.
	PhaseGroupOrder PhaseMode = "group_order"
)

// TransitionMode selects the shape of a step's entry/exit dimmer ramp.
type TransitionMode string

const (
	// TransitionSnap is an instant switch (2-sample step function).
	TransitionSnap TransitionMode = "snap"

	// TransitionRamp is a 16-sample linear fade.
	TransitionRamp TransitionMode = "ramp"
)

// Template is a reusable choreography pattern, compiled against a plan
// window. Catalogue entries are read-only after load.
type Template struct {
	// Identity
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Slug string `json:"slug" yaml:"slug"`

	// Description (optional)
	Description *string `json:"description,omitempty" yaml:"description,omitempty"`

	// Steps to compile (ordered)
	Steps []Step `json:"steps" yaml:"steps"`

	// Repeat describes loop expansion over longer windows.
	Repeat Repeat `json:"repeat" yaml:"repeat"`

	// Template-level dimmer bounds, tightened further per step and rig.
	DimmerFloor   *float64 `json:"dimmer_floor,omitempty" yaml:"dimmer_floor,omitempty"`
	DimmerCeiling *float64 `json:"dimmer_ceiling,omitempty" yaml:"dimmer_ceiling,omitempty"`

	// Sort order for UI display
	SortOrder int `json:"sort_order" yaml:"sort_order"`

	// Timestamps
	CreatedAt time.Time `json:"created_at" yaml:"-"`
	UpdatedAt time.Time `json:"updated_at" yaml:"-"`
}

// Repeat is a template's loop specification.
type Repeat struct {
	// Repeatable marks the template as loop-expandable.
	Repeatable bool `json:"repeatable" yaml:"repeatable"`

	// CycleBars is the musical length of one loop cycle.
	CycleBars float64 `json:"cycle_bars" yaml:"cycle_bars"`

	// LoopStepIDs names the steps re-executed each cycle. Steps not
	// listed compile once, at the start of the window.
	LoopStepIDs []string `json:"loop_step_ids,omitempty" yaml:"loop_step_ids,omitempty"`

	// Mode selects normal or ping-pong traversal.
	Mode RepeatMode `json:"mode" yaml:"mode"`
}

// Step is one timed unit of a template: who moves (group), where from
// (geometry), how (movement + dimmer curves), and when (timing + phase).
type Step struct {
	ID string `json:"id" yaml:"id"`

	// Group names the rig group this step drives.
	Group string `json:"group" yaml:"group"`

	// Geometry is the base pose the movement oscillates around.
	Geometry Geometry `json:"geometry" yaml:"geometry"`

	// Movement is the pan/tilt choreography; nil holds the base pose.
	Movement *Movement `json:"movement,omitempty" yaml:"movement,omitempty"`

	// Dimmer is the intensity curve; nil holds at full.
	Dimmer *Dimmer `json:"dimmer,omitempty" yaml:"dimmer,omitempty"`

	// Timing places the step within the template window.
	Timing Timing `json:"timing" yaml:"timing"`

	// Entry and Exit shape the dimmer immediately before/after the step.
	Entry *StepTransition `json:"entry,omitempty" yaml:"entry,omitempty"`
	Exit  *StepTransition `json:"exit,omitempty" yaml:"exit,omitempty"`

	// Per-step dimmer bound overrides.
	DimmerFloor   *float64 `json:"dimmer_floor,omitempty" yaml:"dimmer_floor,omitempty"`
	DimmerCeiling *float64 `json:"dimmer_ceiling,omitempty" yaml:"dimmer_ceiling,omitempty"`

	// BlendMode is an optional compositing tag carried onto segments.
	BlendMode string `json:"blend_mode,omitempty" yaml:"blend_mode,omitempty"`
}

// Geometry is a base pose in degrees relative to the fixture's front/home
// references. The compiler converts it per fixture using calibration.
type Geometry struct {
	PanDeg  float64 `json:"pan_deg" yaml:"pan_deg"`
	TiltDeg float64 `json:"tilt_deg" yaml:"tilt_deg"`
}

// Movement selects a normalised curve and the amplitude it drives, in
// degrees, applied symmetrically around the base pose.
type Movement struct {
	Curve  curve.Kind     `json:"curve" yaml:"curve"`
	Params curve.Params   `json:"params" yaml:"params"`
	Loop   curve.LoopMode `json:"loop,omitempty" yaml:"loop,omitempty"`

	PanAmplitudeDeg  float64 `json:"pan_amplitude_deg" yaml:"pan_amplitude_deg"`
	TiltAmplitudeDeg float64 `json:"tilt_amplitude_deg" yaml:"tilt_amplitude_deg"`

	// Samples overrides the default curve resolution (0 = default).
	Samples int `json:"samples,omitempty" yaml:"samples,omitempty"`
}

// Dimmer selects a normalised intensity curve.
type Dimmer struct {
	Curve  curve.Kind   `json:"curve" yaml:"curve"`
	Params curve.Params `json:"params" yaml:"params"`

	// Samples overrides the default curve resolution (0 = default).
	Samples int `json:"samples,omitempty" yaml:"samples,omitempty"`
}

// Timing is a step's base window in bars plus its phase spread.
type Timing struct {
	StartOffsetBars float64 `json:"start_offset_bars" yaml:"start_offset_bars"`
	DurationBars    float64 `json:"duration_bars" yaml:"duration_bars"`

	Phase Phase `json:"phase" yaml:"phase"`
}

// Phase distributes per-fixture time offsets across an ordered group.
type Phase struct {
	Mode PhaseMode `json:"mode" yaml:"mode"`

	// Group restricts the spread to members of this rig group; empty
	// means the step's own group.
	Group string `json:"group,omitempty" yaml:"group,omitempty"`

	// SpreadBars is the total offset span across the ordered list.
	SpreadBars float64 `json:"spread_bars" yaml:"spread_bars"`

	// Order names a rig order to walk; empty falls back to group order.
	Order string `json:"order,omitempty" yaml:"order,omitempty"`

	// Wrap folds offsets modulo the step duration so every fixture's
	// window stays inside the step.
	Wrap bool `json:"wrap" yaml:"wrap"`
}

// StepTransition shapes the dimmer entering or leaving a step.
type StepTransition struct {
	Mode         TransitionMode `json:"mode" yaml:"mode"`
	DurationBars float64        `json:"duration_bars" yaml:"duration_bars"`
}

// DeepCopy creates a complete independent copy of the Template. Slice
// and pointer fields are cloned so modifications to the copy do not
// affect the original. Essential for cache isolation.
func (t *Template) DeepCopy() *Template {
	if t == nil {
		return nil
	}

	cpy := *t

	cpy.Description = copyStringPtr(t.Description)
	cpy.DimmerFloor = copyFloatPtr(t.DimmerFloor)
	cpy.DimmerCeiling = copyFloatPtr(t.DimmerCeiling)

	if t.Repeat.LoopStepIDs != nil {
		cpy.Repeat.LoopStepIDs = make([]string, len(t.Repeat.LoopStepIDs))
		copy(cpy.Repeat.LoopStepIDs, t.Repeat.LoopStepIDs)
	}

	if t.Steps != nil {
		cpy.Steps = make([]Step, len(t.Steps))
		for i := range t.Steps {
			cpy.Steps[i] = t.Steps[i].deepCopy()
		}
	}

	return &cpy
}

// deepCopy clones a step including its pointer fields.
func (s Step) deepCopy() Step {
	cpy := s

	if s.Movement != nil {
		m := *s.Movement
		cpy.Movement = &m
	}
	if s.Dimmer != nil {
		d := *s.Dimmer
		cpy.Dimmer = &d
	}
	if s.Entry != nil {
		e := *s.Entry
		cpy.Entry = &e
	}
	if s.Exit != nil {
		e := *s.Exit
		cpy.Exit = &e
	}
	cpy.DimmerFloor = copyFloatPtr(s.DimmerFloor)
	cpy.DimmerCeiling = copyFloatPtr(s.DimmerCeiling)

	return cpy
}

// IsLoopStep reports whether the step is re-executed each repeat cycle.
func (t *Template) IsLoopStep(stepID string) bool {
	for _, id := range t.Repeat.LoopStepIDs {
		if id == stepID {
			return true
		}
	}
	return false
}

func copyStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyFloatPtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
