package store

import (
	"sync"
	"time"
)

// DefaultCapacity is the number of pings retained when no explicit
// capacity is configured.
const DefaultCapacity = 8

// MemoryStore is an in-memory implementation of [Store].
//
// MemoryStore provides a thread-safe, bounded, most-recent-first history
// with a publish-subscribe mechanism for new pings. Recording a ping
// pushes it to the front of the history; once the history exceeds its
// capacity the oldest entries are dropped. Eviction is permanent, there
// is no way to recover a dropped ping.
//
// Subscribers receive pings via buffered channels (buffer size 100).
// Sends are non-blocking; if a subscriber's buffer is full, the ping is
// dropped for that subscriber to prevent blocking the ingestion path.
type MemoryStore struct {
	mu          sync.RWMutex
	pings       []Ping
	capacity    int
	subscribers map[chan Ping]struct{}
	subMu       sync.RWMutex

	// now is the clock used for ping timestamps. Overridable in tests.
	now func() time.Time
}

// NewMemoryStore creates a new in-memory [Store] with the given capacity.
//
// A capacity below 1 falls back to [DefaultCapacity]. The store is
// immediately ready for use. No cleanup is required when done.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &MemoryStore{
		pings:       make([]Ping, 0, capacity),
		capacity:    capacity,
		subscribers: make(map[chan Ping]struct{}),
		now:         time.Now,
	}
}

// Record inserts a new [Ping] at the front of the history and notifies
// all subscribers.
//
// The ping's timestamp is taken at the moment of recording. After
// insertion the history is truncated from the back to the configured
// capacity, so the length invariant holds before the store lock is
// released; no reader ever observes an over-full history.
func (m *MemoryStore) Record(reason string) Ping {
	p := Ping{Reason: reason, ReceivedAt: m.now()}

	m.mu.Lock()
	m.pings = append(m.pings, Ping{})
	copy(m.pings[1:], m.pings)
	m.pings[0] = p
	if len(m.pings) > m.capacity {
		m.pings = m.pings[:m.capacity]
	}
	m.mu.Unlock()

	m.notifySubscribers(p)
	return p
}

// Snapshot returns a copy of the current history, most recent first.
//
// The returned slice is a copy; modifications do not affect the store.
// May be empty, never nil.
func (m *MemoryStore) Snapshot() []Ping {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Ping, len(m.pings))
	copy(out, m.pings)
	return out
}

// Len returns the current number of pings in the history.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.pings)
}

// Capacity returns the maximum number of pings retained.
func (m *MemoryStore) Capacity() int {
	return m.capacity
}

// Subscribe creates a new subscription and returns a channel for receiving
// newly recorded pings.
//
// The returned channel has a buffer of 100 messages. If the buffer fills
// (slow consumer), new pings are dropped for this subscriber.
//
// Caller must call [MemoryStore.Unsubscribe] when done to prevent resource leaks.
func (m *MemoryStore) Subscribe() <-chan Ping {
	ch := make(chan Ping, 100)

	m.subMu.Lock()
	m.subscribers[ch] = struct{}{}
	m.subMu.Unlock()

	return ch
}

// Unsubscribe removes a subscription and closes its channel.
//
// After calling Unsubscribe, the channel will be closed and no further
// pings will be sent. Safe to call multiple times or with an unknown channel.
func (m *MemoryStore) Unsubscribe(ch <-chan Ping) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	// find and delete the channel (need to convert to the right type)
	for subCh := range m.subscribers {
		if subCh == ch {
			delete(m.subscribers, subCh)
			close(subCh)
			break
		}
	}
}

// notifySubscribers sends the ping to all active subscribers.
//
// This is non-blocking: if a subscriber's channel buffer is full, the ping
// is dropped for that subscriber rather than blocking the ingestion path.
func (m *MemoryStore) notifySubscribers(p Ping) {
	m.subMu.RLock()
	defer m.subMu.RUnlock()

	for ch := range m.subscribers {
		select {
		case ch <- p:
		default:
			// subscriber is slow, drop the ping
		}
	}
}
