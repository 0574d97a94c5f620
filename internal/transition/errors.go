package transition

import "errors"

// Sentinel errors for transition planning and blending.
var (
	// ErrLengthMismatch indicates two curves offered for blending have
	// different sample counts.
	ErrLengthMismatch = errors.New("transition: curve length mismatch")

	// ErrSegmentMismatch indicates two segments offered for blending
	// belong to different fixtures or channels.
	ErrSegmentMismatch = errors.New("transition: segment fixture/channel mismatch")

	// ErrEmptyWindow indicates a transition window of zero or negative
	// length.
	ErrEmptyWindow = errors.New("transition: empty blend window")
)
