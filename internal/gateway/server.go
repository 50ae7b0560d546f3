package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/99designs/gqlgen/graphql/playground"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/cardlore/cardlore/internal/types"
)

// maxRequestBytes caps the size of a POST body.
const maxRequestBytes = 1 << 20

// HealthChecker reports the health of the graph store.
type HealthChecker interface {
	Health(ctx context.Context) types.HealthStatus
}

// RequestObserver records one observation per HTTP request.
type RequestObserver interface {
	ObserveRequest(path string, status int, duration time.Duration)
}

// Server manages the HTTP server for the GraphQL endpoint.
type Server struct {
	config   Config
	executor *Executor
	logger   *slog.Logger
	health   HealthChecker
	observer RequestObserver
	metrics  http.Handler

	httpServer *http.Server
	handler    http.Handler
	mux        *http.ServeMux
	limiter    *clientLimiter

	// Lifecycle
	running  bool
	addr     net.Addr
	mu       sync.RWMutex
	stopChan chan struct{}
	stopOnce sync.Once
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithServerLogger sets the server logger.
func WithServerLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithHealthChecker backs /health with checker.
func WithHealthChecker(checker HealthChecker) ServerOption {
	return func(s *Server) {
		s.health = checker
	}
}

// WithMetrics records request metrics on observer and serves handler at the
// configured metrics path.
func WithMetrics(observer RequestObserver, handler http.Handler) ServerOption {
	return func(s *Server) {
		s.observer = observer
		s.metrics = handler
	}
}

// NewServer creates a new GraphQL HTTP server.
func NewServer(config Config, executor *Executor, opts ...ServerOption) (*Server, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if executor == nil {
		return nil, types.NewError(ErrCodeInvalidConfig, "executor is required")
	}

	s := &Server{
		config:   config,
		executor: executor,
		logger:   slog.Default(),
		mux:      http.NewServeMux(),
		stopChan: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if config.RateLimit > 0 {
		s.limiter = newClientLimiter(config.RateLimit, config.RateBurst)
	}
	return s, nil
}

// Setup configures routes and middleware.
func (s *Server) Setup() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mux.HandleFunc(s.config.Path, s.handleGraphQL)
	s.mux.HandleFunc("/health", s.handleHealth)

	if s.metrics != nil && s.config.MetricsPath != "" {
		s.mux.Handle(s.config.MetricsPath, s.metrics)
	}
	if s.config.Playground {
		s.mux.Handle("GET /{$}", playground.Handler("cardlore", s.config.Path))
		s.logger.Info("GraphQL playground enabled", "address", s.config.Address)
	}

	var handler http.Handler = s.mux
	if s.limiter != nil {
		handler = s.rateLimitMiddleware(handler)
	}
	handler = s.corsMiddleware(handler)
	handler = securityHeadersMiddleware(handler)
	handler = s.requestMiddleware(handler)
	s.handler = handler

	s.httpServer = &http.Server{
		Addr:         s.config.Address,
		Handler:      handler,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("server configured",
		"address", s.config.Address,
		"path", s.config.Path,
		"rate_limit", s.config.RateLimit)
	return nil
}

// Handler returns the fully wrapped handler. Setup must have been called.
func (s *Server) Handler() http.Handler {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.handler
}

// Start listens and serves until ctx is cancelled or Stop is called. ready
// is closed once the listener is bound.
func (s *Server) Start(ctx context.Context, ready chan<- struct{}) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return types.NewError(ErrCodeAlreadyStarted, "server already running")
	}
	if s.httpServer == nil {
		s.mu.Unlock()
		return types.NewError(ErrCodeServerFailed, "Setup must be called before Start")
	}
	listener, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		s.mu.Unlock()
		return types.WrapError(ErrCodeServerFailed, "listen on "+s.config.Address, err)
	}
	s.running = true
	s.addr = listener.Addr()
	server := s.httpServer
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		defer close(errChan)
		s.logger.Info("server starting", "address", listener.Addr().String())
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", "error", err)
			errChan <- err
		}
	}()

	if ready != nil {
		close(ready)
	}

	select {
	case <-ctx.Done():
		s.logger.Info("server context cancelled, shutting down")
		return s.Stop(s.shutdownTimeout())

	case <-s.stopChan:
		return nil

	case err, ok := <-errChan:
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		if !ok {
			return nil
		}
		return types.WrapError(ErrCodeServerFailed, "HTTP server failed", err)
	}
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(timeout time.Duration) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	server := s.httpServer
	s.mu.Unlock()

	s.logger.Info("server stopping")
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		s.logger.Error("failed to shut down server gracefully", "error", err)
		return types.WrapError(ErrCodeShutdownFailed, "graceful shutdown failed", err)
	}

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	s.logger.Info("server stopped")
	return nil
}

// Addr returns the bound listen address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addr
}

// IsRunning returns whether the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

func (s *Server) shutdownTimeout() time.Duration {
	if s.config.ShutdownTimeout > 0 {
		return s.config.ShutdownTimeout
	}
	return 30 * time.Second
}

// handleGraphQL serves GET (query string) and POST (JSON body) requests.
func (s *Server) handleGraphQL(w http.ResponseWriter, r *http.Request) {
	var req Request

	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		req.Query = q.Get("query")
		req.OperationName = q.Get("operationName")
		if vars := q.Get("variables"); vars != "" {
			if err := json.Unmarshal([]byte(vars), &req.Variables); err != nil {
				writeErrors(w, http.StatusBadRequest, CodeBadUserInput, "variables must be a JSON object")
				return
			}
		}

	case http.MethodPost:
		body := http.MaxBytesReader(w, r.Body, maxRequestBytes)
		mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if mediaType == "application/graphql" {
			buf, err := io.ReadAll(body)
			if err != nil {
				writeErrors(w, http.StatusBadRequest, CodeBadUserInput, "could not read request body")
				return
			}
			req.Query = string(buf)
			break
		}
		if err := json.NewDecoder(body).Decode(&req); err != nil {
			writeErrors(w, http.StatusBadRequest, CodeBadUserInput, "request body must be a JSON GraphQL request")
			return
		}

	default:
		w.Header().Set("Allow", "GET, POST")
		writeErrors(w, http.StatusMethodNotAllowed, CodeBadUserInput, "method not allowed")
		return
	}

	resp := s.executor.Execute(r.Context(), req)
	status := http.StatusOK
	if !resp.Executed() {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, resp)
}

type healthResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	LatencyMs int64  `json:"latency_ms"`
}

// handleHealth reports the graph store health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		writeJSON(w, http.StatusOK, healthResponse{Status: types.HealthStateHealthy.String()})
		return
	}

	status := s.health.Health(r.Context())
	code := http.StatusOK
	if !status.IsHealthy() {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, healthResponse{
		Status:    status.State.String(),
		Message:   status.Message,
		LatencyMs: status.Latency.Milliseconds(),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeErrors(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, Response{Errors: gqlerror.List{requestError(code, msg)}})
}
