package rig

import (
	"fmt"
	"sort"
)

// DMX value range shared by every channel.
const (
	DMXMin = 0.0
	DMXMax = 255.0
)

// Semantic group names derived automatically from the fixture sequence.
// User groups may not shadow these.
const (
	GroupAll    = "ALL"
	GroupLeft   = "LEFT"
	GroupRight  = "RIGHT"
	GroupOdd    = "ODD"
	GroupEven   = "EVEN"
	GroupCenter = "CENTER"
	GroupInner  = "INNER"
	GroupOuter  = "OUTER"
)

// FixtureID uniquely identifies a fixture within a rig.
type FixtureID string

// Calibration holds the per-fixture hardware limits and reference values.
// All DMX values are 0-255 floats; degree ranges describe the full
// mechanical travel the DMX range maps onto.
type Calibration struct {
	// PanFront is the DMX pan value at which the fixture faces front.
	PanFront float64 `yaml:"pan_front" json:"pan_front"`

	// TiltCentre is the DMX tilt value of the fixture's home position.
	TiltCentre float64 `yaml:"tilt_centre" json:"tilt_centre"`

	// PanScale and TiltScale scale movement amplitudes, letting one
	// template drive fixtures with different throw without re-authoring.
	PanScale  float64 `yaml:"pan_scale" json:"pan_scale"`
	TiltScale float64 `yaml:"tilt_scale" json:"tilt_scale"`

	// DimmerFloor and DimmerCeiling bound the dimmer channel.
	DimmerFloor   float64 `yaml:"dimmer_floor" json:"dimmer_floor"`
	DimmerCeiling float64 `yaml:"dimmer_ceiling" json:"dimmer_ceiling"`

	// Hardware end stops in DMX.
	PanMin  float64 `yaml:"pan_min" json:"pan_min"`
	PanMax  float64 `yaml:"pan_max" json:"pan_max"`
	TiltMin float64 `yaml:"tilt_min" json:"tilt_min"`
	TiltMax float64 `yaml:"tilt_max" json:"tilt_max"`

	// Mechanical travel covered by the full DMX range, in degrees.
	PanRangeDeg  float64 `yaml:"pan_range_deg" json:"pan_range_deg"`
	TiltRangeDeg float64 `yaml:"tilt_range_deg" json:"tilt_range_deg"`

	// AvoidBackward restricts pan to a window around PanFront so the
	// head never rotates through its rear zone (cable wrap protection).
	AvoidBackward bool `yaml:"avoid_backward" json:"avoid_backward"`
}

// DefaultCalibration returns a calibration for a generic 540°/270°
// moving head with full DMX travel and unit amplitude scales.
func DefaultCalibration() Calibration {
	return Calibration{
		PanFront:      127.5,
		TiltCentre:    127.5,
		PanScale:      1,
		TiltScale:     1,
		DimmerFloor:   DMXMin,
		DimmerCeiling: DMXMax,
		PanMin:        DMXMin,
		PanMax:        DMXMax,
		TiltMin:       DMXMin,
		TiltMax:       DMXMax,
		PanRangeDeg:   540,
		TiltRangeDeg:  270,
	}
}

// Fixture is one motorised head in the rig.
type Fixture struct {
	ID          FixtureID   `yaml:"id" json:"id"`
	Name        string      `yaml:"name" json:"name"`
	Calibration Calibration `yaml:"calibration" json:"calibration"`
}

// Rig is the fixed topology for a show: fixtures in physical order,
// named groups, and alternate orderings for phase spreads.
//
// A Rig is immutable once built; compiles may share one freely.
type Rig struct {
	fixtures map[FixtureID]Fixture
	sequence []FixtureID
	groups   map[string][]FixtureID
	orders   map[string][]FixtureID
}

// New builds a rig from fixtures in physical (left-to-right) order plus
// optional user groups and named orders. Semantic groups are derived from
// the sequence. Every fixture referenced by a group or order must exist.
func New(fixtures []Fixture, userGroups, orders map[string][]FixtureID) (*Rig, error) {
	if len(fixtures) == 0 {
		return nil, ErrEmptyRig
	}

	r := &Rig{
		fixtures: make(map[FixtureID]Fixture, len(fixtures)),
		sequence: make([]FixtureID, 0, len(fixtures)),
		groups:   make(map[string][]FixtureID),
		orders:   make(map[string][]FixtureID),
	}

	for _, f := range fixtures {
		if _, exists := r.fixtures[f.ID]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateFixture, f.ID)
		}
		r.fixtures[f.ID] = f
		r.sequence = append(r.sequence, f.ID)
	}

	r.deriveSemanticGroups()

	for name, members := range userGroups {
		if _, reserved := r.groups[name]; reserved {
			return nil, fmt.Errorf("%w: group %q shadows a semantic group", ErrDuplicateFixture, name)
		}
		checked, err := r.checkMembers(members)
		if err != nil {
			return nil, fmt.Errorf("group %q: %w", name, err)
		}
		r.groups[name] = checked
	}

	for name, members := range orders {
		checked, err := r.checkMembers(members)
		if err != nil {
			return nil, fmt.Errorf("order %q: %w", name, err)
		}
		r.orders[name] = checked
	}

	return r, nil
}

// Fixture returns the fixture with the given ID.
func (r *Rig) Fixture(id FixtureID) (Fixture, error) {
	f, ok := r.fixtures[id]
	if !ok {
		return Fixture{}, fmt.Errorf("%w: %q", ErrUnknownFixture, id)
	}
	return f, nil
}

// Group returns the ordered member list of a named group. The returned
// slice is a copy; callers may reorder it freely.
func (r *Rig) Group(name string) ([]FixtureID, error) {
	members, ok := r.groups[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGroup, name)
	}
	out := make([]FixtureID, len(members))
	copy(out, members)
	return out, nil
}

// Order returns the fixture sequence of a named order, as a copy.
func (r *Rig) Order(name string) ([]FixtureID, error) {
	members, ok := r.orders[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOrder, name)
	}
	out := make([]FixtureID, len(members))
	copy(out, members)
	return out, nil
}

// Fixtures returns all fixture IDs in physical order, as a copy.
func (r *Rig) Fixtures() []FixtureID {
	out := make([]FixtureID, len(r.sequence))
	copy(out, r.sequence)
	return out
}

// Size returns the number of fixtures in the rig.
func (r *Rig) Size() int {
	return len(r.sequence)
}

// GroupNames returns all group names, semantic and user, sorted.
func (r *Rig) GroupNames() []string {
	names := make([]string, 0, len(r.groups))
	for name := range r.groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// checkMembers validates that every referenced fixture exists and returns
// a defensive copy of the member list.
func (r *Rig) checkMembers(members []FixtureID) ([]FixtureID, error) {
	out := make([]FixtureID, len(members))
	for i, id := range members {
		if _, ok := r.fixtures[id]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownFixture, id)
		}
		out[i] = id
	}
	return out, nil
}

// deriveSemanticGroups populates the hard-coded positional groups from
// the fixture sequence.
//
// For a sequence of n fixtures (1-based position p):
//   - LEFT is the first half, RIGHT the second (middle fixture of an odd
//     rig belongs to neither).
//   - ODD/EVEN follow the 1-based position.
//   - CENTER is the middle fixture, or middle pair for even n.
//   - INNER is the middle half; OUTER is everything else.
func (r *Rig) deriveSemanticGroups() {
	n := len(r.sequence)

	all := make([]FixtureID, n)
	copy(all, r.sequence)
	r.groups[GroupAll] = all

	var left, right, odd, even, center, inner, outer []FixtureID

	half := n / 2
	quarter := n / 4

	for i, id := range r.sequence {
		pos := i + 1

		if i < half {
			left = append(left, id)
		}
		if i >= n-half {
			right = append(right, id)
		}

		if pos%2 == 1 {
			odd = append(odd, id)
		} else {
			even = append(even, id)
		}

		if i >= quarter && i < n-quarter {
			inner = append(inner, id)
		} else {
			outer = append(outer, id)
		}
	}

	if n%2 == 1 {
		center = []FixtureID{r.sequence[n/2]}
	} else {
		center = []FixtureID{r.sequence[n/2-1], r.sequence[n/2]}
	}

	r.groups[GroupLeft] = left
	r.groups[GroupRight] = right
	r.groups[GroupOdd] = odd
	r.groups[GroupEven] = even
	r.groups[GroupCenter] = center
	r.groups[GroupInner] = inner
	r.groups[GroupOuter] = outer
}
