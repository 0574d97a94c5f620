// Package api provides the HTTP REST API and WebSocket server for
// Lumenweave Core.
//
// It exposes the template catalogue, compile and transition-planning
// operations, and user management to operator consoles, and relays
// compile/catalogue events to WebSocket subscribers in real time.
//
// The server follows the same lifecycle pattern as the other
// infrastructure components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Authentication is JWT bearer tokens issued by POST /api/v1/auth/login.
// WebSocket connections authenticate with a single-use ticket from
// POST /api/v1/auth/ws-ticket, so the JWT never appears in a URL.
//
// Thread Safety: All methods are safe for concurrent use from multiple
// goroutines.
package api
