package transition

import (
	"github.com/lumenweave/lumenweave-core/internal/curve"
	"github.com/lumenweave/lumenweave-core/internal/rig"
	"github.com/lumenweave/lumenweave-core/internal/show"
)

// defaultBlendSamples is the resolution of a rendered blend segment.
const defaultBlendSamples = 32

// Blender renders planned transitions into blended segments.
type Blender struct {
	log     Logger
	samples int
}

// BlenderOption configures a Blender.
type BlenderOption func(*Blender)

// WithBlenderLogger enables structured logging of blend rendering.
func WithBlenderLogger(log Logger) BlenderOption {
	return func(b *Blender) { b.log = log }
}

// WithBlendSamples overrides the blend segment resolution.
func WithBlendSamples(n int) BlenderOption {
	return func(b *Blender) {
		if n >= 2 {
			b.samples = n
		}
	}
}

// NewBlender creates a blender.
func NewBlender(opts ...BlenderOption) *Blender {
	b := &Blender{samples: defaultBlendSamples}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BlendCurve blends two equal-length curves sample by sample, using
// each sample's grid position as the blend progress.
func BlendCurve(strategy Strategy, source, target []curve.Point) ([]curve.Point, error) {
	if len(source) != len(target) {
		return nil, ErrLengthMismatch
	}

	out := make([]curve.Point, len(source))
	for i := range source {
		out[i] = curve.Point{
			T: source[i].T,
			V: BlendValue(strategy, source[i].V, target[i].V, source[i].T),
		}
	}
	return out, nil
}

// Blend renders the blended segment for one fixture channel of a
// transition. Source and target must drive the same fixture channel;
// each side is sampled at its own window position for every instant of
// the blend window, then mixed under the transition's strategy.
//
// The result is a dynamic segment over [tr.StartMS, tr.EndMS) whose
// clamp bounds span both inputs, so equal-power overshoot survives but
// hardware safety does not relax.
func (b *Blender) Blend(tr Transition, source, target show.ChannelSegment) (show.ChannelSegment, error) {
	if source.FixtureID != target.FixtureID || source.Channel != target.Channel {
		return show.ChannelSegment{}, ErrSegmentMismatch
	}
	if tr.EndMS <= tr.StartMS {
		return show.ChannelSegment{}, ErrEmptyWindow
	}

	strategy := tr.StrategyFor(source.Channel)

	points := make([]curve.Point, b.samples)
	for i := range points {
		t := float64(i) / float64(b.samples-1)
		at := float64(tr.StartMS) + t*float64(tr.EndMS-tr.StartMS)

		sv := source.ValueAt(windowFraction(source, at))
		tv := target.ValueAt(windowFraction(target, at))
		points[i] = curve.Point{T: t, V: BlendValue(strategy, sv, tv, t)}
	}

	out := show.ChannelSegment{
		FixtureID:    source.FixtureID,
		Channel:      source.Channel,
		T0:           tr.StartMS,
		T1:           tr.EndMS,
		Curve:        points,
		BaseDMX:      0,
		AmplitudeDMX: 1,
		ClampMin:     minFloat(source.ClampMin, target.ClampMin),
		ClampMax:     maxFloat(source.ClampMax, target.ClampMax),
	}

	if b.log != nil {
		b.log.Debug("rendered blend segment",
			"fixture", string(source.FixtureID),
			"channel", string(source.Channel),
			"strategy", string(strategy),
			"window_ms", tr.EndMS-tr.StartMS,
		)
	}
	return out, nil
}

// segKey identifies one fixture channel when pairing segments across a
// boundary.
type segKey struct {
	fixture rig.FixtureID
	channel show.Channel
}

// GenerateSegments renders every planned transition against its two
// sections and returns the aggregated blended segments. For each
// transition the boundary-adjacent source and target segments are
// paired per fixture channel; a fixture channel present on only one
// side has nothing to blend and is skipped.
func (b *Blender) GenerateSegments(plans []Transition, sections []show.Section) []show.ChannelSegment {
	byID := make(map[string]show.Section, len(sections))
	for _, s := range sections {
		byID[s.ID] = s
	}

	var out []show.ChannelSegment
	for _, tr := range plans {
		src, okSrc := byID[tr.FromSectionID]
		dst, okDst := byID[tr.ToSectionID]
		if !okSrc || !okDst {
			if b.log != nil {
				b.log.Warn("transition references unknown section",
					"transition", tr.ID,
					"from", tr.FromSectionID,
					"to", tr.ToSectionID,
				)
			}
			continue
		}

		sources := boundarySegments(src.Segments, tr.BoundaryMS, true)
		targets := boundarySegments(dst.Segments, tr.BoundaryMS, false)

		for key, source := range sources {
			target, ok := targets[key]
			if !ok {
				continue
			}
			seg, err := b.Blend(tr, source, target)
			if err != nil {
				if b.log != nil {
					b.log.Warn("skipping unblendable pair",
						"transition", tr.ID,
						"fixture", string(key.fixture),
						"channel", string(key.channel),
						"error", err,
					)
				}
				continue
			}
			out = append(out, seg)
		}
	}
	return out
}

// boundarySegments picks, per fixture channel, the segment adjacent to
// the boundary: a segment covering the boundary wins; otherwise the
// source side takes the segment ending nearest before it and the
// target side the segment starting soonest at or after it.
func boundarySegments(segs []show.ChannelSegment, boundaryMS int64, source bool) map[segKey]show.ChannelSegment {
	out := make(map[segKey]show.ChannelSegment)
	for _, seg := range segs {
		key := segKey{fixture: seg.FixtureID, channel: seg.Channel}
		cur, ok := out[key]
		if !ok || closerToBoundary(seg, cur, boundaryMS, source) {
			out[key] = seg
		}
	}
	return out
}

// closerToBoundary reports whether candidate is a better boundary
// representative than current.
func closerToBoundary(candidate, current show.ChannelSegment, boundaryMS int64, source bool) bool {
	covers := func(s show.ChannelSegment) bool {
		return s.T0 <= boundaryMS && boundaryMS < s.T1
	}

	switch {
	case covers(candidate) && !covers(current):
		return true
	case !covers(candidate) && covers(current):
		return false
	case covers(candidate):
		// Both cover: the later-starting segment is the one playing into
		// the boundary.
		return candidate.T0 > current.T0
	case source:
		return candidate.T1 > current.T1
	default:
		return candidate.T0 < current.T0
	}
}

// windowFraction maps an absolute instant to a segment's own [0,1]
// window position, clamped so blends can sample a segment slightly past
// its edge (the edge value holds).
func windowFraction(s show.ChannelSegment, atMS float64) float64 {
	dur := float64(s.T1 - s.T0)
	if dur <= 0 {
		return 0
	}
	f := (atMS - float64(s.T0)) / dur
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
