package canary

import (
	"log/slog"
	"time"

	"github.com/finchly/canary/internal/store"
)

// Ping holds a single accepted liveness report.
//
// Ping is immutable after creation. It is the public counterpart of the
// internal storage type, decoupled so the storage layer can evolve
// independently of the SDK surface.
type Ping struct {
	// Reason is the free-text reason supplied by the operator.
	// May be empty.
	Reason string

	// ReceivedAt is the timestamp at which the canary recorded the ping.
	ReceivedAt time.Time
}

// storePingToPublic converts the internal storage type to the public API type.
func storePingToPublic(p store.Ping) Ping {
	return Ping{
		Reason:     p.Reason,
		ReceivedAt: p.ReceivedAt,
	}
}

// invokeCallbackSafe calls a ping callback with panic recovery.
// Panics are logged but do not propagate.
func invokeCallbackSafe(cb func(Ping), ping Ping, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("ping callback panicked",
				"panic", r,
				"reason", ping.Reason,
			)
		}
	}()
	cb(ping)
}
