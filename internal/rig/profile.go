package rig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ProfileConfig is the YAML shape of a rig profile. Fixtures are listed
// in physical left-to-right order; groups and orders reference them by ID.
//
// Example:
//
//	fixtures:
//	  - id: mh-1
//	    name: "Stage Left Head"
//	    calibration:
//	      pan_front: 127.5
//	      avoid_backward: true
//	groups:
//	  drums: [mh-2, mh-3]
//	orders:
//	  left_to_right: [mh-1, mh-2, mh-3, mh-4]
type ProfileConfig struct {
	Fixtures []FixtureConfig     `yaml:"fixtures"`
	Groups   map[string][]string `yaml:"groups"`
	Orders   map[string][]string `yaml:"orders"`
}

// FixtureConfig is one fixture entry in a rig profile. Calibration fields
// left at zero are replaced with the generic moving-head defaults, so a
// minimal profile only needs IDs.
type FixtureConfig struct {
	ID          string       `yaml:"id"`
	Name        string       `yaml:"name"`
	Calibration *Calibration `yaml:"calibration"`
}

// LoadProfile reads a YAML rig profile from disk and builds the rig.
func LoadProfile(path string) (*Rig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rig profile: %w", err)
	}

	var cfg ProfileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing rig profile: %w", err)
	}

	return ProfileFromConfig(cfg)
}

// ProfileFromConfig builds a rig from a parsed fixture-group profile.
func ProfileFromConfig(cfg ProfileConfig) (*Rig, error) {
	fixtures := make([]Fixture, 0, len(cfg.Fixtures))
	for _, fc := range cfg.Fixtures {
		if fc.ID == "" {
			return nil, fmt.Errorf("%w: fixture with empty id", ErrUnknownFixture)
		}

		cal := DefaultCalibration()
		if fc.Calibration != nil {
			cal = mergeCalibration(cal, *fc.Calibration)
		}

		name := fc.Name
		if name == "" {
			name = fc.ID
		}

		fixtures = append(fixtures, Fixture{
			ID:          FixtureID(fc.ID),
			Name:        name,
			Calibration: cal,
		})
	}

	groups := make(map[string][]FixtureID, len(cfg.Groups))
	for name, members := range cfg.Groups {
		groups[name] = toFixtureIDs(members)
	}

	orders := make(map[string][]FixtureID, len(cfg.Orders))
	for name, members := range cfg.Orders {
		orders[name] = toFixtureIDs(members)
	}

	return New(fixtures, groups, orders)
}

// mergeCalibration overlays explicitly set profile values onto the
// defaults. A zero PanMax/TiltMax/range means "not specified" (a real
// axis maximum of 0 would make the fixture unusable anyway).
func mergeCalibration(base, over Calibration) Calibration {
	out := base

	out.PanFront = over.PanFront
	out.TiltCentre = over.TiltCentre
	out.AvoidBackward = over.AvoidBackward

	if over.PanScale > 0 {
		out.PanScale = over.PanScale
	}
	if over.TiltScale > 0 {
		out.TiltScale = over.TiltScale
	}
	if over.DimmerFloor > 0 {
		out.DimmerFloor = over.DimmerFloor
	}
	if over.DimmerCeiling > 0 {
		out.DimmerCeiling = over.DimmerCeiling
	}
	if over.PanMin > 0 {
		out.PanMin = over.PanMin
	}
	if over.PanMax > 0 {
		out.PanMax = over.PanMax
	}
	if over.TiltMin > 0 {
		out.TiltMin = over.TiltMin
	}
	if over.TiltMax > 0 {
		out.TiltMax = over.TiltMax
	}
	if over.PanRangeDeg > 0 {
		out.PanRangeDeg = over.PanRangeDeg
	}
	if over.TiltRangeDeg > 0 {
		out.TiltRangeDeg = over.TiltRangeDeg
	}

	if out.PanFront == 0 {
		out.PanFront = (out.PanMin + out.PanMax) / 2
	}
	if out.TiltCentre == 0 {
		out.TiltCentre = (out.TiltMin + out.TiltMax) / 2
	}

	return out
}

func toFixtureIDs(members []string) []FixtureID {
	out := make([]FixtureID, len(members))
	for i, m := range members {
		out[i] = FixtureID(m)
	}
	return out
}
