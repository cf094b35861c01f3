// Package api exposes the process's operational HTTP surface: liveness,
// readiness against the dedup ledger, Prometheus metrics, and a JSON view
// of the crawl counters.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/campussearch/crawler/internal/crawler"
	"github.com/campussearch/crawler/internal/metrics"
	"github.com/campussearch/crawler/internal/worker"
)

// StatsSource provides the current crawl counters.
type StatsSource interface {
	Snapshot() worker.Snapshot
}

// Server serves the operational endpoints for one crawl process.
type Server struct {
	ledger crawler.Ledger
	stats  StatsSource
	logger *zap.Logger
	http   *http.Server
}

// New wires the router and returns a Server listening on the given port
// once Run is called.
func New(port int, ledger crawler.Ledger, stats StatsSource, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{ledger: ledger, stats: stats, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)
	r.Get("/status", s.handleStatus)
	r.Handle("/metrics", metrics.Handler())

	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Run serves until the context ends, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return <-errCh
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReadyz reports ready only while the ledger answers pings. A crawl
// process without its ledger cannot make dedup decisions.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.ledger.Ping(ctx); err != nil {
		s.logger.Warn("readiness ping failed", zap.Error(err))
		http.Error(w, "ledger unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.stats.Snapshot()

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	ledgerSize, err := s.ledger.Size(ctx)
	if err != nil {
		ledgerSize = -1
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(struct {
		worker.Snapshot
		LedgerSize int64 `json:"ledger_size"`
	}{Snapshot: snap, LedgerSize: ledgerSize}); err != nil {
		s.logger.Warn("status encode failed", zap.Error(err))
	}
}
