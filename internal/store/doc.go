// Package store provides the in-memory ping history for the canary.
//
// This package is internal to canary and manages the bounded,
// most-recent-first history of liveness reports. It implements a
// publish-subscribe pattern so that consumers (the SSE handler, ping
// callbacks) can observe new pings as they are recorded.
//
// The main components are:
//
//   - [Store]: Interface defining history and subscription operations
//   - [MemoryStore]: In-memory implementation of Store with pub/sub
//   - [Ping]: A single liveness report
//
// The store is designed for concurrent access with proper synchronization.
// Subscribers receive pings via channels with non-blocking sends (slow
// subscribers will miss pings rather than block the system).
//
// Users of the canary library should not need to interact with this
// package directly. The history is managed internally by Canary.
package store
