// Package api exposes the HTTP surface of the daemon: send endpoints,
// journal queries, scheduler management, and the delivery stream.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/clawinfra/herald/internal/dispatch"
	"github.com/clawinfra/herald/internal/scheduler"
	"github.com/clawinfra/herald/internal/store"
	"github.com/clawinfra/herald/internal/types"
)

// Server is the HTTP API server
type Server struct {
	port       int
	dispatcher *dispatch.Dispatcher
	facade     *dispatch.Facade
	store      *store.Store
	scheduler  *scheduler.Scheduler
	stream     *Stream
	logger     *slog.Logger
	httpServer *http.Server
	startedAt  time.Time
	version    string
}

// NewServer creates a new API server. Scheduler and store may be nil when
// those subsystems are disabled.
func NewServer(
	port int,
	dispatcher *dispatch.Dispatcher,
	facade *dispatch.Facade,
	st *store.Store,
	sched *scheduler.Scheduler,
	version string,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		port:       port,
		dispatcher: dispatcher,
		facade:     facade,
		store:      st,
		scheduler:  sched,
		stream:     NewStream(logger),
		logger:     logger.With("component", "api"),
		startedAt:  time.Now(),
		version:    version,
	}
}

// Stream returns the delivery stream so the dispatcher can be hooked to it.
func (s *Server) Stream() *Stream {
	return s.stream
}

// Handler builds the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/send", s.handleSend)
	mux.HandleFunc("/api/send/routed", s.handleSendRouted)
	mux.HandleFunc("/api/broadcast", s.handleBroadcast)
	mux.HandleFunc("/api/channels", s.handleChannels)
	mux.HandleFunc("/api/journal", s.handleJournal)
	mux.HandleFunc("/api/status", s.handleStatus)

	mux.HandleFunc("/api/scheduler/status", s.handleSchedulerStatus)
	mux.HandleFunc("/api/scheduler/jobs", s.handleSchedulerJobs)
	mux.HandleFunc("/api/scheduler/jobs/", s.handleSchedulerJobRoutes)

	mux.HandleFunc("/ws/deliveries", s.stream.HandleWS)

	return s.corsMiddleware(s.loggingMiddleware(mux))
}

// Start starts the HTTP server and blocks until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("API server starting", "port", s.port)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}

// corsMiddleware adds CORS headers
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// handleChannels lists registered channel kinds
func (s *Server) handleChannels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	kinds := s.dispatcher.Kinds()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"channels": kinds,
		"count":    len(kinds),
	})
}

// handleJournal returns recorded deliveries, newest first
func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "journal not enabled")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	var (
		deliveries []types.Delivery
		err        error
	)
	if kind := r.URL.Query().Get("kind"); kind != "" {
		deliveries, err = s.store.ByKind(r.Context(), types.Kind(kind), limit)
	} else {
		deliveries, err = s.store.Recent(r.Context(), limit)
	}
	if err != nil {
		s.logger.Error("journal query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "journal query failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"deliveries": deliveries,
		"count":      len(deliveries),
	})
}

// handleStatus returns daemon status
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status := map[string]interface{}{
		"version":  s.version,
		"uptime":   time.Since(s.startedAt).Seconds(),
		"channels": len(s.dispatcher.Kinds()),
	}

	if s.store != nil {
		if count, err := s.store.Count(r.Context()); err == nil {
			status["deliveries"] = count
		}
	}
	if s.scheduler != nil {
		status["scheduler"] = s.scheduler.GetStats()
	}

	writeJSON(w, http.StatusOK, status)
}
