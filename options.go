package canary

import (
	"errors"
	"log/slog"
)

// cfg holds mutable state during Canary construction.
type cfg struct {
	token         string
	addr          string
	port          int
	capacity      int
	title         string
	logger        *slog.Logger
	pingCallbacks []func(Ping)
}

// Option is a function that configures a [Canary] instance during construction.
//
// Option implements the functional options pattern, allowing optional
// configuration to be passed to [New] in a type-safe, extensible way.
// Options return an error if validation fails.
//
// Built-in options: [WithToken], [WithAddr], [WithPort], [WithCapacity],
// [WithTitle], [WithLogger], [WithPingCallback].
type Option func(*cfg) error

// WithToken sets the shared operator secret.
//
// Ingestion requests must carry an Authorization header equal to exactly
// "Bearer " + token. A token is required for [New] to succeed; there is
// exactly one credential, with no rotation or multi-tenant concept.
//
// Returns an error if the token is empty.
func WithToken(token string) Option {
	return func(c *cfg) error {
		if token == "" {
			return errors.New("token cannot be empty")
		}
		c.token = token
		return nil
	}
}

// WithAddr sets the IP address the HTTP server binds to.
//
// Defaults to 127.0.0.1 if not specified, so the canary is not exposed
// beyond the host unless explicitly asked to be.
//
// Returns an error if the address is empty.
func WithAddr(addr string) Option {
	return func(c *cfg) error {
		if addr == "" {
			return errors.New("addr cannot be empty")
		}
		c.addr = addr
		return nil
	}
}

// WithPort sets the HTTP port for the canary server.
//
// Defaults to 3000 if not specified.
//
// Returns an error if the port is outside the valid range (1-65535).
func WithPort(port int) Option {
	return func(c *cfg) error {
		if port < 1 || port > 65535 {
			return errors.New("port must be between 1 and 65535")
		}
		c.port = port
		return nil
	}
}

// WithCapacity sets how many recent pings are retained.
//
// Once the history is full, recording a new ping permanently evicts the
// oldest one. Defaults to 8 if not specified.
//
// Returns an error if the capacity is zero or negative.
func WithCapacity(n int) Option {
	return func(c *cfg) error {
		if n <= 0 {
			return errors.New("capacity must be positive")
		}
		c.capacity = n
		return nil
	}
}

// WithTitle sets the status page title displayed in the browser tab and
// heading.
//
// If not specified, defaults to "presence canary".
func WithTitle(title string) Option {
	return func(c *cfg) error {
		c.title = title
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the Canary instance.
//
// This allows SDK consumers to control where logs are written and in what
// format. If not specified, [slog.Default] is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(c *cfg) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		c.logger = logger
		return nil
	}
}

// WithPingCallback registers a function to be called on every accepted ping.
//
// The callback receives a [Ping] with the recorded reason and timestamp.
// Multiple callbacks may be registered by calling WithPingCallback multiple
// times; they execute in registration order.
//
// IMPORTANT: Callbacks must be non-blocking. Long-running operations should
// dispatch work to a separate goroutine. Blocking callbacks delay delivery
// of subsequent pings to other callbacks.
//
// Callbacks are invoked from a single goroutine. Panics within callbacks
// are recovered and logged; they do not crash the canary.
//
// Example:
//
//	c, err := canary.New(
//	    canary.WithToken("secret"),
//	    canary.WithPingCallback(func(p canary.Ping) {
//	        log.Printf("ping: %s", p.Reason)
//	    }),
//	)
//
// Nil callbacks are silently ignored.
func WithPingCallback(cb func(Ping)) Option {
	return func(c *cfg) error {
		if cb == nil {
			return nil // no-op for nil callback (safe to call)
		}
		c.pingCallbacks = append(c.pingCallbacks, cb)
		return nil
	}
}
