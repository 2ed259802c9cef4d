package canary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/finchly/canary/internal/metrics"
	"github.com/finchly/canary/internal/server"
	"github.com/finchly/canary/internal/store"
)

const (
	defaultAddr     = "127.0.0.1"
	defaultPort     = 3000
	defaultCapacity = 8
)

// Canary is the main orchestrator for ping ingestion and status serving.
//
// Canary wires the in-memory ping history to the HTTP server and to any
// registered ping callbacks. It is created using [New] with functional
// options and started with [Canary.Start].
//
// The typical lifecycle is:
//
//	c, err := canary.New(canary.WithToken("secret"))
//	if err != nil {
//	    slog.Error("failed to create canary", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//
//	c.Start(ctx) // blocks until context cancelled
//
// The caller controls the lifecycle via the context. Cancel the context to
// trigger graceful shutdown.
type Canary struct {
	token         string
	addr          string
	port          int
	capacity      int
	title         string
	logger        *slog.Logger
	pingCallbacks []func(Ping)
}

// New creates a new [Canary] instance with the given options.
//
// A token must be configured via [WithToken]. Other options have
// sensible defaults:
//   - Listen address: 127.0.0.1
//   - Port: 3000
//   - Capacity: 8 pings
//
// Returns an error if no token is configured or if any option is invalid.
//
// Example:
//
//	c, err := canary.New(
//	    canary.WithToken("secret"),
//	    canary.WithPort(3000),
//	    canary.WithCapacity(16),
//	)
func New(opts ...Option) (*Canary, error) {
	c := &cfg{
		addr:     defaultAddr,
		port:     defaultPort,
		capacity: defaultCapacity,
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if c.token == "" {
		return nil, errors.New("a token is required")
	}

	// default to slog.Default() if no logger provided
	logger := c.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Canary{
		token:         c.token,
		addr:          c.addr,
		port:          c.port,
		capacity:      c.capacity,
		title:         c.title,
		logger:        logger,
		pingCallbacks: c.pingCallbacks,
	}, nil
}

// Start begins serving the status page and accepting pings.
//
// Start is a blocking call that runs until the provided context is
// cancelled. During execution:
//
//   - The HTTP server listens on the configured address and port
//   - Accepted pings are logged and delivered to registered callbacks
//   - The status page is available at the server root
//
// The caller controls the lifecycle via context cancellation. For signal
// handling, use [signal.NotifyContext]:
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//	c.Start(ctx)
//
// Returns nil on graceful shutdown. Returns an error if the HTTP server
// fails to start.
func (c *Canary) Start(ctx context.Context) error {
	c.logger.Info("canary starting", "capacity", c.capacity)

	// check if context already cancelled
	if ctx.Err() != nil {
		return nil
	}

	// create the history and metric registry
	history := store.NewMemoryStore(c.capacity)
	reg := metrics.NewRegistry()

	// consume accepted pings for logging and callbacks; track the consumer
	// goroutine to ensure clean shutdown
	pings := history.Subscribe()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.consumePings(pings)
	}()

	// cleanup closes the subscription channel and drains the consumer
	cleanup := func() {
		history.Unsubscribe(pings)
		wg.Wait()
	}

	// start the HTTP server
	httpServer := server.NewServer(history, server.Options{
		Addr:  c.addr,
		Port:  c.port,
		Token: c.token,
		Title: c.title,
	}, reg, c.logger)
	if err := httpServer.Start(ctx); err != nil {
		cleanup()
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	<-ctx.Done()
	cleanup()
	c.logger.Info("canary stopped")
	return nil
}

// consumePings delivers each recorded ping to the registered callbacks.
//
// Callbacks run in registration order from this single goroutine; panics
// are recovered per callback. Returns when the channel is closed.
func (c *Canary) consumePings(pings <-chan store.Ping) {
	for p := range pings {
		if len(c.pingCallbacks) == 0 {
			continue
		}
		public := storePingToPublic(p)
		for _, cb := range c.pingCallbacks {
			invokeCallbackSafe(cb, public, c.logger)
		}
	}
}

// Addr returns the configured listen address.
func (c *Canary) Addr() string {
	return c.addr
}

// Port returns the configured HTTP port.
func (c *Canary) Port() int {
	return c.port
}

// Capacity returns the configured number of retained pings.
func (c *Canary) Capacity() int {
	return c.capacity
}

// URL returns the base URL the canary serves on.
func (c *Canary) URL() string {
	return fmt.Sprintf("http://%s:%d", c.addr, c.port)
}
