package rig

import "errors"

// Domain errors for the rig package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, rig.ErrUnknownGroup) {
//	    // skip the step that referenced the group
//	}
var (
	// ErrUnknownFixture is returned when a fixture ID is not in the rig.
	ErrUnknownFixture = errors.New("rig: unknown fixture")

	// ErrUnknownGroup is returned when a group name is not in the rig.
	ErrUnknownGroup = errors.New("rig: unknown group")

	// ErrUnknownOrder is returned when a named order is not in the rig.
	ErrUnknownOrder = errors.New("rig: unknown order")

	// ErrEmptyRig is returned when constructing a rig with no fixtures.
	ErrEmptyRig = errors.New("rig: no fixtures")

	// ErrDuplicateFixture is returned when two fixtures share an ID.
	ErrDuplicateFixture = errors.New("rig: duplicate fixture id")
)
