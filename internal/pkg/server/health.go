package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// HealthHandler serves /healthz and /metrics for s.
func (s *Server) HealthHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		snap := s.metrics.Snapshot()
		phases := s.store.Phases()
		live := 0
		for _, n := range phases {
			live += n
		}
		snap["sessions"] = live
		snap["phases"] = phases
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(snap); err != nil {
			s.logger.WithError(err).Warn("encode metrics failed")
		}
	})
	return mux
}

// ServeHealth serves the health endpoints on l until ctx is cancelled.
func (s *Server) ServeHealth(ctx context.Context, l net.Listener) error {
	srv := &http.Server{
		Handler:           s.HealthHandler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.WithError(err).Warn("shutdown health server failed")
		}
	}()
	s.logger.WithField("addr", l.Addr().String()).Info("health endpoint listening")
	if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "serve health failed")
	}
	return nil
}
