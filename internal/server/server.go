// Package server exposes the hybrid predictor over HTTP: a JSON
// prediction endpoint, a health probe, Prometheus metrics, and a small
// demo page.
package server

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"osis/internal/hybrid"
	"osis/internal/logging"
)

//go:embed static
var staticFS embed.FS

// DefaultAddr matches the port the reference deployment listens on.
const DefaultAddr = ":8000"

// Server routes prediction traffic to a loaded model.
type Server struct {
	pred    *hybrid.Predictor
	log     *slog.Logger
	mux     *http.ServeMux
	reg     *prometheus.Registry
	metrics *metrics
}

// New wires the handler tree around the given predictor. The metrics
// registry is private to the server so tests can run side by side.
func New(pred *hybrid.Predictor) *Server {
	s := &Server{
		pred: pred,
		log:  logging.New("server"),
		reg:  prometheus.NewRegistry(),
	}
	s.metrics = newMetrics(s.reg)
	s.mux = http.NewServeMux()
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /predict_snr", s.handlePredict)
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	s.mux.Handle("GET /metrics", promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{}))
	s.mux.Handle("GET /static/", http.FileServerFS(staticFS))
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
}

// Handler returns the route tree, mainly for tests.
func (s *Server) Handler() http.Handler { return s.mux }

// Run serves until the context is cancelled, then drains in-flight
// requests for up to five seconds.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.Info("listening", "addr", addr)

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	<-errCh
	return nil
}
