package show

// Plan is a compile request: the bar window a template is rendered
// against and the tempo that maps bars to wall-clock time.
//
// A Plan is ephemeral - built per compile call and discarded.
type Plan struct {
	// StartBar is the absolute bar the window opens at.
	StartBar float64 `json:"start_bar"`

	// DurationBars is the window length in bars.
	DurationBars float64 `json:"duration_bars"`

	// BPM is the tempo. Zero means tempo unavailable; the compiler then
	// renders in its documented degraded mode (1000 ms per bar).
	BPM float64 `json:"bpm"`

	// BeatsPerBar is the metre numerator (4 for 4/4).
	BeatsPerBar float64 `json:"beats_per_bar"`
}

// TransitionHint is authored on the target side of a section boundary
// and sizes the blend window crossing into that section.
type TransitionHint struct {
	Mode         string  `json:"mode,omitempty"`
	DurationBars float64 `json:"duration_bars,omitempty"`
}

// Section is one compiled window of a show: its time bounds, the hint
// for the transition leading into it, and the segments it produced.
type Section struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	StartMS int64 `json:"start_ms"`
	EndMS   int64 `json:"end_ms"`

	StartBar float64 `json:"start_bar"`
	EndBar   float64 `json:"end_bar"`

	Hint TransitionHint `json:"hint"`

	Segments []ChannelSegment `json:"segments"`
}

// DurationMS returns the section length in milliseconds.
func (s Section) DurationMS() int64 {
	return s.EndMS - s.StartMS
}
