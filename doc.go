// Package canary provides an embeddable presence canary: a small HTTP
// service that remembers recent liveness pings pushed by a trusted
// operator process and renders a status page showing how long ago each
// ping arrived.
//
// The canary is the receiving half of a dead man's switch. An external
// process proves it is alive by POSTing a free-text reason with a shared
// bearer token; a human (or monitor) confirms liveness by reading the
// status page. The canary holds a short rolling history in memory, so
// the reporting process needs no storage of its own. History dies with
// the process.
//
// # Quick Start
//
// Create a canary and start it with graceful shutdown:
//
//	c, err := canary.New(canary.WithToken(os.Getenv("OPERATOR_TOKEN")))
//	if err != nil {
//	    slog.Error("failed to create canary", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	c.Start(ctx) // blocks until context is cancelled
//
// # Configuration
//
// The canary uses the functional options pattern:
//
//	c, err := canary.New(
//	    canary.WithToken("secret"),
//	    canary.WithAddr("0.0.0.0"),
//	    canary.WithPort(3000),
//	    canary.WithCapacity(16),
//	    canary.WithTitle("build farm canary"),
//	)
//
// Pings can be observed programmatically via [WithPingCallback], for
// example to bridge them into an existing monitoring pipeline.
//
// # HTTP surface
//
//   - GET  (any path): HTML status page, most recent ping first
//   - POST (any path): record a ping; requires "Authorization: Bearer <token>"
//   - GET  /api/pings: current history as JSON
//   - GET  /api/sse:   Server-Sent Events stream of new pings
//   - GET  /healthz:   liveness probe
//   - GET  /metrics:   Prometheus metrics
//
// # Architecture
//
// The library consists of several internal packages (under internal/):
//
//   - internal/store: bounded most-recent-first history with pub/sub
//   - internal/server: HTTP server, status rendering, and ingestion
//   - internal/metrics: Prometheus instrumentation
//
// The internal packages are not part of the public API and may change
// without notice. The status page template is embedded with Go's embed
// directive for single-binary deployment.
package canary
