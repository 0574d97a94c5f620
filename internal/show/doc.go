// Package show holds the intermediate representation shared by the
// template compiler, the transition planner/blender, and the exporter.
//
// The central type is ChannelSegment: one fixture, one channel, one
// half-open time range, one value source (a normalised curve applied
// around a base value, or a static value). Segments are never mutated
// after creation - clipping and reversal return modified copies - so a
// compiled section can be shared between the blender and the exporter
// without coordination.
//
// Plan describes a compile request (bar window plus tempo) and Section a
// compiled window with its boundary transition hint.
package show
