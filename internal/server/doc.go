// Package server provides the HTTP surface of the canary service.
//
// This package is internal to canary and handles all HTTP concerns:
//
//   - Status page: Server-rendered HTML history of recent pings at "/"
//     (any GET path)
//   - Ingestion: Bearer-authenticated POST endpoint that records a ping
//   - REST API: JSON endpoint at "/api/pings" for the current history
//   - Server-Sent Events: Real-time ping stream at "/api/sse"
//   - Health: Liveness endpoint at "/healthz"
//   - Metrics: Prometheus exposition at "/metrics"
//
// The server supports graceful shutdown via context cancellation, with a
// 5-second timeout for in-flight requests.
//
// Users of the canary library should not need to interact with this
// package directly. The server is started by [canary.Canary.Start].
package server
