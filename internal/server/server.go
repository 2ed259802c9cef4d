package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	_ "embed"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/finchly/canary/internal/metrics"
	"github.com/finchly/canary/internal/store"
)

const (
	// sseWriteTimeout is the maximum time allowed for a single SSE write
	// operation. This prevents goroutine leaks when clients are slow or
	// disconnected. Must be <= shutdown timeout to ensure clean shutdown.
	sseWriteTimeout = 5 * time.Second

	// defaultTitle is used when no custom title is configured.
	defaultTitle = "presence canary"

	// maxReasonBytes caps the size of an ingestion request body.
	maxReasonBytes = 64 << 10
)

//go:embed status.html.tpl
var statusTpl string

// Options configures a [Server].
type Options struct {
	// Addr is the IP address to bind. Empty binds all interfaces.
	Addr string

	// Port is the TCP port to listen on.
	Port int

	// Token is the shared operator secret. Ingestion requests must carry
	// an Authorization header equal to exactly "Bearer " + Token.
	Token string

	// Title is the status page title (defaults to "presence canary").
	Title string
}

// Server handles HTTP requests for the canary status page and API.
//
// The server is designed for graceful shutdown via context cancellation.
type Server struct {
	store      store.Store
	addr       string
	port       int
	bearer     string
	title      string
	startedAt  time.Time
	httpServer *http.Server
	tpl        *template.Template
	metrics    *metrics.Registry
	logger     *slog.Logger
}

// statusPageData is the template payload for the status page.
type statusPageData struct {
	Title    string
	Capacity int
	Pings    []store.Ping
}

// NewServer creates a new HTTP [Server].
//
// The server is not started until [Server.Start] is called.
func NewServer(st store.Store, opts Options, reg *metrics.Registry, logger *slog.Logger) *Server {
	title := opts.Title
	if title == "" {
		title = defaultTitle
	}

	funcMap := template.FuncMap{
		"ago": humanize.Time,
		"rfc3339": func(t time.Time) string {
			return t.UTC().Format(time.RFC3339)
		},
	}
	tpl := template.Must(template.New("status").Funcs(funcMap).Parse(statusTpl))

	return &Server{
		store:     st,
		addr:      opts.Addr,
		port:      opts.Port,
		bearer:    "Bearer " + opts.Token,
		title:     title,
		startedAt: time.Now(),
		tpl:       tpl,
		metrics:   reg,
		logger:    logger,
	}
}

// routes builds the request router.
//
// Static routes take precedence over the root wildcards, so the API,
// health, and metrics endpoints are reachable while every other GET path
// serves the status page and every other POST path ingests a ping.
func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(s.withRequestID)
	r.Use(s.collectMetrics)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Get("/api/pings", s.handlePings)
	r.Get("/api/sse", s.handleSSE)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.metrics.Gatherer(), promhttp.HandlerOpts{}))

	r.Get("/*", s.handleStatusPage)
	r.Post("/*", s.handleIngest)

	return r
}

// Start begins serving HTTP requests in a background goroutine.
//
// Start is non-blocking and returns immediately after confirming the server
// is listening. The server will continue running until the context is
// cancelled, at which point it initiates a graceful shutdown with a 5-second
// timeout.
//
// Returns an error if the server fails to bind to the configured address.
func (s *Server) Start(ctx context.Context) error {
	// create listener first to verify address availability synchronously
	addr := net.JoinHostPort(s.addr, strconv.Itoa(s.port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind to %s: %w", addr, err)
	}

	s.httpServer = &http.Server{
		Handler: s.routes(),
		// BaseContext derives all request contexts from the server context.
		// When ctx is cancelled, all request contexts are also cancelled,
		// enabling graceful shutdown of long-running handlers like SSE.
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	s.logger.Info("listening", "url", fmt.Sprintf("http://%s", ln.Addr()))

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("http server error", "error", err)
		}
	}()

	// shutdown on context cancellation
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("http server shutdown error", "error", err)
		}
	}()

	return nil
}

// handleStatusPage renders the ping history as an HTML page.
//
// The page always renders successfully; an empty history renders as an
// empty list. Reasons are operator-supplied but treated as untrusted;
// html/template escapes them on output.
func (s *Server) handleStatusPage(w http.ResponseWriter, r *http.Request) {
	data := statusPageData{
		Title:    s.title,
		Capacity: s.store.Capacity(),
		Pings:    s.store.Snapshot(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tpl.Execute(w, data); err != nil {
		s.logger.Error("failed to render status page", "error", err)
	}
}

// handleIngest accepts an authenticated liveness report and records it.
//
// The Authorization header must equal exactly "Bearer " + token; any
// deviation is rejected with 401 and an opaque body, without touching the
// store. The comparison is constant-time so response timing does not leak
// how much of the credential matched.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	auth := r.Header.Get("Authorization")
	if subtle.ConstantTimeCompare([]byte(auth), []byte(s.bearer)) != 1 {
		s.metrics.PingsRejectedTotal.WithLabelValues("unauthorized").Inc()
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, "Unauthorized")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxReasonBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.metrics.PingsRejectedTotal.WithLabelValues("too_large").Inc()
			http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		s.metrics.PingsRejectedTotal.WithLabelValues("read_error").Inc()
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	if !utf8.Valid(body) {
		s.metrics.PingsRejectedTotal.WithLabelValues("invalid_utf8").Inc()
		http.Error(w, "Body must be valid UTF-8", http.StatusBadRequest)
		return
	}

	ping := s.store.Record(string(body))
	s.metrics.PingsAcceptedTotal.Inc()
	s.metrics.HistorySize.Set(float64(s.store.Len()))

	s.logger.Info("ping recorded",
		"reason", ping.Reason,
		"received_at", ping.ReceivedAt.UTC().Format(time.RFC3339),
		"request_id", requestIDFrom(r.Context()),
	)

	_, _ = io.WriteString(w, "Ok")
}

// handlePings returns the current history as JSON, most recent first.
func (s *Server) handlePings(w http.ResponseWriter, r *http.Request) {
	pings := s.store.Snapshot()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")

	if err := json.NewEncoder(w).Encode(pings); err != nil {
		s.logger.Error("failed to encode pings response", "error", err)
	}
}

// healthResponse is the JSON payload of the health endpoint.
type healthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
	Pings  int    `json:"pings"`
}

// handleHealth reports process liveness and basic service state.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status: "ok",
		Uptime: time.Since(s.startedAt).Round(time.Second).String(),
		Pings:  s.store.Len(),
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// handleSSE streams newly recorded pings via Server-Sent Events.
//
// The handler uses write deadlines to prevent goroutine leaks when clients
// are slow or disconnected. Without deadlines, a blocked Fprintf call would
// prevent the handler from detecting context cancellation or channel closure.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	// check if flushing is supported
	if _, ok := w.(http.Flusher); !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	// ResponseController provides deadline-aware write and flush operations.
	rc := http.NewResponseController(w)

	// track if write deadlines are supported (may not be for some ResponseWriter impls)
	deadlinesSupported := true

	// writeAndFlush writes SSE data with a deadline to prevent blocking forever.
	// If the client is slow or disconnected, the write will timeout rather than
	// blocking indefinitely, allowing the handler to detect shutdown signals.
	writeAndFlush := func(data []byte) error {
		if deadlinesSupported {
			if err := rc.SetWriteDeadline(time.Now().Add(sseWriteTimeout)); err != nil {
				// deadline not supported by underlying connection, continue without
				s.logger.Warn("sse write deadlines not supported", "error", err)
				deadlinesSupported = false
			}
		}

		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return err
		}

		// ResponseController.Flush respects the write deadline
		return rc.Flush()
	}

	// set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	// subscribe to newly recorded pings
	ch := s.store.Subscribe()
	defer s.store.Unsubscribe(ch)

	// replay the current history, most recent first (also deadline-protected)
	for _, ping := range s.store.Snapshot() {
		data, err := json.Marshal(ping)
		if err != nil {
			continue
		}
		if err := writeAndFlush(data); err != nil {
			return
		}
	}

	// stream new pings
	for {
		select {
		case ping, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(ping)
			if err != nil {
				continue
			}
			if err := writeAndFlush(data); err != nil {
				return
			}

		case <-r.Context().Done():
			// request context is derived from server context via BaseContext,
			// so this fires on both client disconnect AND server shutdown
			return
		}
	}
}
