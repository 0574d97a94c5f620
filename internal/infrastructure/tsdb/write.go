package tsdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteCompileMetrics records the outcome of a single section compile.
//
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - showID: The show being compiled
//   - sectionID: The section that was compiled
//   - duration: Wall-clock compile time
//   - segments: Number of channel segments produced
//   - skipped: Number of steps skipped due to per-step config errors
//   - degraded: Whether fallback bar timing was used
func (c *Client) WriteCompileMetrics(showID, sectionID string, duration time.Duration, segments, skipped int, degraded bool) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"compile",
		map[string]string{
			"show_id":    showID,
			"section_id": sectionID,
		},
		map[string]interface{}{
			"duration_ms": float64(duration.Microseconds()) / millisecondsPerSecond,
			"segments":    segments,
			"skipped":     skipped,
			"degraded":    degraded,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteTransitionMetrics records the outcome of a transition planning run.
//
// Parameters:
//   - showID: The show the sections belong to
//   - transitions: Number of boundaries planned
//   - warnings: Total advisory warnings across all transitions
//   - duration: Wall-clock planning time
func (c *Client) WriteTransitionMetrics(showID string, transitions, warnings int, duration time.Duration) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"transition_plan",
		map[string]string{
			"show_id": showID,
		},
		map[string]interface{}{
			"duration_ms": float64(duration.Microseconds()) / millisecondsPerSecond,
			"transitions": transitions,
			"warnings":    warnings,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteClampEvent records a fixture limit truncating a choreographed move.
//
// High clamp counts against one fixture usually mean a template asks for
// more travel than the rig position allows.
//
// Parameters:
//   - fixtureID: The clamped fixture
//   - channel: The clamped channel (pan, tilt, dimmer)
//   - clampedDMX: How far outside the limit the requested value was
func (c *Client) WriteClampEvent(fixtureID, channel string, clampedDMX float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"clamp",
		map[string]string{
			"fixture_id": fixtureID,
			"channel":    channel,
		},
		map[string]interface{}{
			"clamped_dmx": clampedDMX,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}

// WritePointWithTime writes a custom point with a specific timestamp.
//
// Use this when the timestamp is not "now" (e.g., replayed data).
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
