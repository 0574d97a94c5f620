package mqtt

import "fmt"

// Topic prefixes for the Lumenweave MQTT hierarchy.
//
// Show topics carry compiled output toward renderers:
// lumenweave/show/{show}/section/{section}/compiled. Core topics carry
// catalogue events; system topics carry service lifecycle.
const (
	// TopicPrefixShow is the base for compiled show output.
	TopicPrefixShow = "lumenweave/show"

	// TopicPrefixCore is the base for catalogue and compile events.
	TopicPrefixCore = "lumenweave/core"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "lumenweave/system"
)

// Topics provides builders for Lumenweave MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	t := topics.SectionCompiled("summer-tour", "chorus-1")
//	// Returns: "lumenweave/show/summer-tour/section/chorus-1/compiled"
type Topics struct{}

// SectionCompiled returns the topic compiled section segments are
// published on for renderers.
//
// Example: lumenweave/show/summer-tour/section/chorus-1/compiled
func (Topics) SectionCompiled(showID, sectionID string) string {
	return fmt.Sprintf("%s/%s/section/%s/compiled", TopicPrefixShow, showID, sectionID)
}

// TransitionPlanned returns the topic planned transitions are published
// on.
//
// Example: lumenweave/show/summer-tour/transition/tr-abc123/planned
func (Topics) TransitionPlanned(showID, transitionID string) string {
	return fmt.Sprintf("%s/%s/transition/%s/planned", TopicPrefixShow, showID, transitionID)
}

// TemplateUpdated returns the topic for catalogue change events.
//
// Example: lumenweave/core/template/slow-sweep/updated
func (Topics) TemplateUpdated(slug string) string {
	return fmt.Sprintf("%s/template/%s/updated", TopicPrefixCore, slug)
}

// TemplateDeleted returns the topic for catalogue removal events.
//
// Example: lumenweave/core/template/slow-sweep/deleted
func (Topics) TemplateDeleted(slug string) string {
	return fmt.Sprintf("%s/template/%s/deleted", TopicPrefixCore, slug)
}

// CompileDegraded returns the topic for degraded-mode compile alerts,
// so an operator notices a show rendering on fallback timing.
//
// Example: lumenweave/core/compile/degraded
func (Topics) CompileDegraded() string {
	return fmt.Sprintf("%s/compile/degraded", TopicPrefixCore)
}

// SystemStatus returns the system status topic, also used for the
// connection's last-will message.
//
// Example: lumenweave/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// SystemShutdown returns the shutdown signal topic.
//
// Example: lumenweave/system/shutdown
func (Topics) SystemShutdown() string {
	return fmt.Sprintf("%s/shutdown", TopicPrefixSystem)
}

// AllSectionsCompiled returns a pattern matching every compiled section
// of a show. An empty showID matches all shows.
//
// Pattern: lumenweave/show/{show}/section/+/compiled
func (Topics) AllSectionsCompiled(showID string) string {
	if showID == "" {
		showID = "+"
	}
	return fmt.Sprintf("%s/%s/section/+/compiled", TopicPrefixShow, showID)
}

// AllTransitionsPlanned returns a pattern matching every planned
// transition of a show. An empty showID matches all shows.
//
// Pattern: lumenweave/show/{show}/transition/+/planned
func (Topics) AllTransitionsPlanned(showID string) string {
	if showID == "" {
		showID = "+"
	}
	return fmt.Sprintf("%s/%s/transition/+/planned", TopicPrefixShow, showID)
}

// AllTemplateEvents returns a pattern matching all catalogue events.
//
// Pattern: lumenweave/core/template/+/+
func (Topics) AllTemplateEvents() string {
	return fmt.Sprintf("%s/template/+/+", TopicPrefixCore)
}

// AllTopics returns a pattern matching all Lumenweave topics.
// Use with caution - this receives ALL traffic.
//
// Pattern: lumenweave/#
func (Topics) AllTopics() string {
	return "lumenweave/#"
}
