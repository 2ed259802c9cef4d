package store

import "time"

// Ping represents a single liveness report in storage.
//
// Ping is the storage representation of a liveness report, optimized
// for JSON serialization (used by the REST API and SSE). Pings carry no
// identifier; they are addressed only by their position in the history.
type Ping struct {
	// Reason is the free-text reason supplied by the operator.
	// May be empty.
	Reason string `json:"reason"`

	// ReceivedAt is the timestamp at which the ping was recorded.
	ReceivedAt time.Time `json:"received_at"`
}

// Store defines the interface for the bounded ping history.
//
// Store implementations must be safe for concurrent access. The pub/sub
// mechanism allows new pings to be pushed to connected clients
// (e.g., via Server-Sent Events) and to registered callbacks.
type Store interface {
	// Record inserts a new ping with the given reason at the front of the
	// history, evicting the oldest entries beyond capacity. It returns the
	// recorded ping and notifies all subscribers. Record never fails.
	Record(reason string) Ping

	// Snapshot returns the history, most recent first.
	// The returned slice is a copy; modifications do not affect the store.
	Snapshot() []Ping

	// Len returns the current number of pings in the history.
	Len() int

	// Capacity returns the fixed maximum number of pings retained.
	Capacity() int

	// Subscribe returns a channel that receives newly recorded pings.
	// The returned channel has a buffer; slow consumers may miss pings.
	// Caller must call Unsubscribe when done to prevent resource leaks.
	Subscribe() <-chan Ping

	// Unsubscribe removes a subscription and closes the channel.
	// Safe to call with a channel that was already unsubscribed.
	Unsubscribe(ch <-chan Ping)
}
