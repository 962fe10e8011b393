// Package api exposes the simulator over HTTP.
//
// # Routes
//
//   - GET /api/stages/{id}: one stage from the catalog
//   - GET /api/cards/{id}: one skill card from the catalog
//   - GET /api/strategies: registered strategy names
//   - POST /api/simulate: resolve a loadout and run a batch, returning the report
//   - GET /api/simulate/stream: websocket; the client sends one simulate
//     request and receives a "run" message per finished run, then a "report"
//
// # Errors
//
// Failures are JSON {"error": {"code", "message", "metadata"}}. The status
// comes from the error code and the message is localized from the request's
// Accept-Language header. Errors without a domain code are reported as
// UNKNOWN with a generic message.
//
// # Deduplication
//
// Seeded requests are deterministic, so identical concurrent ones share a
// single batch; shared responses carry the X-Simulation-Shared header.
package api
