// Package template provides the choreography template catalogue for
// lumenweave-core.
//
// A Template is a reusable, parameterised movement pattern: an ordered
// list of steps (geometry, movement curve, dimmer curve, timing, phase
// spread) plus a repeat specification describing how the pattern loops
// over a longer window. Templates are authored in YAML or created via the
// API, persisted in SQLite, and served to the compiler through a cached
// Registry.
//
// Architecture:
//
//	┌─────────────────────────────────────────────────────┐
//	│                Registry (registry.go)                │
//	│  Thread-safe read-through cache over the repository  │
//	│  ┌──────────────┐     ┌─────────────────────────┐    │
//	│  │  Repository  │────▶│  SQLite (repository.go)  │   │
//	│  └──────────────┘     └─────────────────────────┘    │
//	│         ▲                                            │
//	│         │ import                                     │
//	│  ┌──────────────┐                                    │
//	│  │ YAML loader  │  templates/*.yaml (loader.go)      │
//	│  └──────────────┘                                    │
//	└─────────────────────────────────────────────────────┘
//
// # Lifecycle
//
// The catalogue is loaded and frozen at startup, before any compile
// begins. Compiles read templates through the registry, which hands out
// deep copies, so the catalogue is never mutated concurrently with reads.
//
// # Thread Safety
//
// Registry is safe for concurrent use. Template values returned from it
// are private copies.
package template
