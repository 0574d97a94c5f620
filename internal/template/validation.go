package template

import (
	"fmt"
	"regexp"

	"github.com/lumenweave/lumenweave-core/internal/curve"
)

// Validation limits.
const (
	// maxNameLength bounds template and step names.
	maxNameLength = 100

	// maxSteps bounds the steps per template; a pattern bigger than
	// this is a show, not a template.
	maxSteps = 64

	// validationSamples is the sample count used to probe a step's
	// curve parameters during validation.
	validationSamples = 8
)

// slugPattern matches lowercase alphanumeric slugs with hyphens,
// starting and ending alphanumeric.
var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Validate checks a template for structural errors. It returns the first
// problem found, wrapped so callers can errors.Is against the sentinel.
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidTemplate)
	}
	if t.Name == "" || len(t.Name) > maxNameLength {
		return fmt.Errorf("%w: name must be 1-%d characters", ErrInvalidTemplate, maxNameLength)
	}
	if !slugPattern.MatchString(t.Slug) {
		return fmt.Errorf("%w: %q", ErrInvalidSlug, t.Slug)
	}

	if len(t.Steps) == 0 {
		return ErrNoSteps
	}
	if len(t.Steps) > maxSteps {
		return fmt.Errorf("%w: %d steps exceeds maximum %d", ErrInvalidTemplate, len(t.Steps), maxSteps)
	}

	if err := t.validateRepeat(); err != nil {
		return err
	}

	seen := make(map[string]bool, len(t.Steps))
	for i := range t.Steps {
		step := &t.Steps[i]
		if err := step.validate(); err != nil {
			return fmt.Errorf("step %q: %w", step.ID, err)
		}
		if seen[step.ID] {
			return fmt.Errorf("%w: duplicate step id %q", ErrInvalidStep, step.ID)
		}
		seen[step.ID] = true
	}

	// Loop step IDs must reference real steps.
	for _, id := range t.Repeat.LoopStepIDs {
		if !seen[id] {
			return fmt.Errorf("%w: loop step id %q not found", ErrInvalidTemplate, id)
		}
	}

	return nil
}

// validateRepeat checks the loop specification.
func (t *Template) validateRepeat() error {
	r := t.Repeat

	if r.Repeatable && r.CycleBars <= 0 {
		return fmt.Errorf("%w: repeatable template needs positive cycle_bars", ErrInvalidTemplate)
	}

	switch r.Mode {
	case "", RepeatNormal, RepeatPingPong:
		return nil
	default:
		return fmt.Errorf("%w: unknown repeat mode %q", ErrInvalidTemplate, r.Mode)
	}
}

// validate checks a single step.
func (s *Step) validate() error {
	if s.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidStep)
	}
	if s.Group == "" {
		return fmt.Errorf("%w: missing group", ErrInvalidStep)
	}
	if s.Timing.DurationBars <= 0 {
		return fmt.Errorf("%w: duration_bars must be positive", ErrInvalidStep)
	}
	if s.Timing.StartOffsetBars < 0 {
		return fmt.Errorf("%w: start_offset_bars must not be negative", ErrInvalidStep)
	}

	phase := s.Timing.Phase
	switch phase.Mode {
	case "", PhaseNone:
		// no further constraints
	case PhaseGroupOrder:
		if phase.SpreadBars < 0 {
			return fmt.Errorf("%w: phase spread_bars must not be negative", ErrInvalidStep)
		}
	default:
		return fmt.Errorf("%w: unknown phase mode %q", ErrInvalidStep, phase.Mode)
	}

	// Probe curve parameters now so authoring errors surface at load
	// time, not mid-compile.
	if s.Movement != nil {
		if _, err := curve.Generate(s.Movement.Curve, validationSamples, s.Movement.Params); err != nil {
			return fmt.Errorf("%w: movement curve: %v", ErrInvalidStep, err)
		}
	}
	if s.Dimmer != nil {
		if _, err := curve.Generate(s.Dimmer.Curve, validationSamples, s.Dimmer.Params); err != nil {
			return fmt.Errorf("%w: dimmer curve: %v", ErrInvalidStep, err)
		}
	}

	for _, tr := range []*StepTransition{s.Entry, s.Exit} {
		if tr == nil {
			continue
		}
		switch tr.Mode {
		case TransitionSnap, TransitionRamp:
		default:
			return fmt.Errorf("%w: unknown transition mode %q", ErrInvalidStep, tr.Mode)
		}
		if tr.DurationBars < 0 {
			return fmt.Errorf("%w: transition duration_bars must not be negative", ErrInvalidStep)
		}
	}

	return nil
}
