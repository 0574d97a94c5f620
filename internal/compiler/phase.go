package compiler

import (
	"math"

	"github.com/lumenweave/lumenweave-core/internal/rig"
	"github.com/lumenweave/lumenweave-core/internal/show"
	"github.com/lumenweave/lumenweave-core/internal/template"
)

// phaseOffsets computes the per-fixture time offset, in milliseconds,
// for a step's phase spread. Fixtures absent from the returned map get
// no offset.
//
// The spread walks an ordered fixture list: the named order when one is
// given, otherwise the phase group's own order. The list is filtered to
// fixtures the step actually drives, then offsets are distributed
// evenly - fixture i of n gets round(i/(n−1) · spread). With wrap
// enabled, offsets fold modulo the step duration so every fixture's
// motion stays inside the step window.
//
// Phase configuration problems degrade rather than fail: an unknown
// order falls back to the group's order, an unknown phase group to the
// step's own members.
func (c *Compiler) phaseOffsets(plan show.Plan, step template.Step, members []rig.FixtureID, durMS int64) map[rig.FixtureID]int64 {
	offsets := make(map[rig.FixtureID]int64)

	phase := step.Timing.Phase
	if phase.Mode != template.PhaseGroupOrder || phase.SpreadBars <= 0 {
		return offsets
	}

	inStep := make(map[rig.FixtureID]bool, len(members))
	for _, id := range members {
		inStep[id] = true
	}

	pool := members
	if phase.Group != "" && phase.Group != step.Group {
		group, err := c.rig.Group(phase.Group)
		if err != nil {
			c.warn("unknown phase group, falling back to step group",
				"step", step.ID, "phase_group", phase.Group)
		} else {
			pool = group
		}
	}

	if phase.Order != "" {
		order, err := c.rig.Order(phase.Order)
		if err != nil {
			c.warn("unknown phase order, falling back to group order",
				"step", step.ID, "order", phase.Order)
		} else {
			pool = order
		}
	}

	ordered := make([]rig.FixtureID, 0, len(pool))
	for _, id := range pool {
		if inStep[id] {
			ordered = append(ordered, id)
		}
	}

	n := len(ordered)
	if n <= 1 {
		return offsets
	}

	spreadMS := barsToMS(plan, phase.SpreadBars)
	for i, id := range ordered {
		off := int64(math.Round(float64(i) / float64(n-1) * spreadMS))
		if phase.Wrap && durMS > 0 {
			off %= durMS
		}
		offsets[id] = off
	}
	return offsets
}
