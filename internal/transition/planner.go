package transition

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/lumenweave/lumenweave-core/internal/show"
)

const (
	// defaultDurationBars sizes the blend window when the target section
	// carries no hint.
	defaultDurationBars = 1.0

	// fallbackMSPerBar converts hint bars when a section's own bar/ms
	// mapping is unusable.
	fallbackMSPerBar = 1000.0

	// Feasibility heuristics: a positional jump this large inside a
	// window this short is flagged as likely visible.
	harshJumpDMX  = 64.0
	harshWindowMS = 500
)

// Logger is the minimal structured logging surface the planner needs.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Transition is one planned blend across a section boundary.
type Transition struct {
	ID string `json:"id"`

	FromSectionID string `json:"from_section_id"`
	ToSectionID   string `json:"to_section_id"`

	// BoundaryMS is the instant the target section takes over.
	BoundaryMS int64 `json:"boundary_ms"`

	// StartMS/EndMS bound the blend window, centred on the boundary and
	// clamped into the adjoining sections.
	StartMS int64 `json:"start_ms"`
	EndMS   int64 `json:"end_ms"`

	// Strategies maps each channel to its blend algorithm.
	Strategies map[show.Channel]Strategy `json:"strategies"`

	// Warnings lists feasibility concerns. Advisory only.
	Warnings []string `json:"warnings,omitempty"`
}

// StrategyFor returns the planned strategy for a channel, falling back
// to the channel default.
func (t Transition) StrategyFor(ch show.Channel) Strategy {
	if s, ok := t.Strategies[ch]; ok {
		return s
	}
	return DefaultStrategy(ch)
}

// Planner derives transitions from an ordered section list.
type Planner struct {
	log Logger
}

// PlannerOption configures a Planner.
type PlannerOption func(*Planner)

// WithPlannerLogger enables structured logging of planning decisions.
func WithPlannerLogger(log Logger) PlannerOption {
	return func(p *Planner) { p.log = log }
}

// NewPlanner creates a transition planner.
func NewPlanner(opts ...PlannerOption) *Planner {
	p := &Planner{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Plan derives one transition per boundary between consecutive
// sections. Fewer than two sections plan nothing. Planning never fails:
// questionable boundaries carry warnings instead.
func (p *Planner) Plan(sections []show.Section) []Transition {
	if len(sections) < 2 {
		return nil
	}

	out := make([]Transition, 0, len(sections)-1)
	for i := 1; i < len(sections); i++ {
		out = append(out, p.planBoundary(sections[i-1], sections[i]))
	}
	return out
}

// planBoundary builds the transition crossing from section a into b.
// The window is sized by b's hint (the transition "into" a section is
// authored on that section), centred on the boundary.
func (p *Planner) planBoundary(a, b show.Section) Transition {
	tr := Transition{
		ID:            uuid.NewString(),
		FromSectionID: a.ID,
		ToSectionID:   b.ID,
		BoundaryMS:    b.StartMS,
		Strategies:    make(map[show.Channel]Strategy),
	}

	if a.EndMS != b.StartMS {
		tr.warn("sections are not contiguous: gap of %dms at the boundary", b.StartMS-a.EndMS)
	}

	bars := b.Hint.DurationBars
	if bars <= 0 {
		bars = defaultDurationBars
	}
	durMS := int64(bars * msPerBar(b))

	half := durMS / 2
	tr.StartMS = tr.BoundaryMS - half
	tr.EndMS = tr.StartMS + durMS

	// The blend can only sample where both sections have content.
	if tr.StartMS < a.StartMS {
		tr.warn("blend window spills %dms before the source section", a.StartMS-tr.StartMS)
		tr.StartMS = a.StartMS
	}
	if tr.EndMS > b.EndMS {
		tr.warn("blend window spills %dms past the target section", tr.EndMS-b.EndMS)
		tr.EndMS = b.EndMS
	}

	p.assignStrategies(&tr, a, b)
	p.checkFeasibility(&tr, a, b)

	if p.log != nil {
		p.log.Debug("planned transition",
			"from", a.ID, "to", b.ID,
			"window_ms", tr.EndMS-tr.StartMS,
			"warnings", len(tr.Warnings),
		)
	}
	return tr
}

// assignStrategies fills the per-channel strategy map: defaults per
// channel, overridden wholesale by a valid hint mode.
func (p *Planner) assignStrategies(tr *Transition, a, b show.Section) {
	channels := map[show.Channel]bool{}
	for _, seg := range a.Segments {
		channels[seg.Channel] = true
	}
	for _, seg := range b.Segments {
		channels[seg.Channel] = true
	}

	override := Strategy(b.Hint.Mode)
	if b.Hint.Mode != "" && !override.valid() {
		tr.warn("unknown transition mode %q, using channel defaults", b.Hint.Mode)
		override = ""
	}

	for ch := range channels {
		if override != "" {
			tr.Strategies[ch] = override
		} else {
			tr.Strategies[ch] = DefaultStrategy(ch)
		}
	}
}

// checkFeasibility flags harsh positional jumps: a large pan/tilt
// discontinuity blended over a short window reads as a snap no matter
// the strategy.
func (p *Planner) checkFeasibility(tr *Transition, a, b show.Section) {
	window := tr.EndMS - tr.StartMS
	if window >= harshWindowMS {
		return
	}

	for _, ch := range []show.Channel{show.ChannelPan, show.ChannelTilt} {
		jump := boundaryJump(a, b, ch, tr.BoundaryMS)
		if jump > harshJumpDMX {
			tr.warn("%s jump of %.0f DMX inside a %dms window may be visible", ch, jump, window)
		}
	}
}

// boundaryJump returns the largest per-fixture value discontinuity on a
// channel across the boundary.
func boundaryJump(a, b show.Section, ch show.Channel, boundaryMS int64) float64 {
	ends := map[string]float64{}
	for _, seg := range a.Segments {
		if seg.Channel == ch && seg.T1 >= boundaryMS {
			ends[string(seg.FixtureID)] = seg.ValueAt(1)
		}
	}

	var worst float64
	for _, seg := range b.Segments {
		if seg.Channel != ch || seg.T0 > boundaryMS {
			continue
		}
		if end, ok := ends[string(seg.FixtureID)]; ok {
			jump := seg.ValueAt(0) - end
			if jump < 0 {
				jump = -jump
			}
			if jump > worst {
				worst = jump
			}
		}
	}
	return worst
}

// msPerBar derives a section's bar-to-millisecond rate from its own
// bounds, falling back to 1000 ms per bar on degenerate sections.
func msPerBar(s show.Section) float64 {
	bars := s.EndBar - s.StartBar
	if bars <= 0 || s.EndMS <= s.StartMS {
		return fallbackMSPerBar
	}
	return float64(s.EndMS-s.StartMS) / bars
}

func (t *Transition) warn(format string, args ...any) {
	t.Warnings = append(t.Warnings, fmt.Sprintf(format, args...))
}
