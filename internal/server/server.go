// Package server exposes playlist inspection over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/agleyzer/playlistkit/internal/catalog"
	"github.com/agleyzer/playlistkit/internal/ingest"
	"github.com/agleyzer/playlistkit/internal/loader"
	"github.com/agleyzer/playlistkit/internal/metrics"
	"github.com/agleyzer/playlistkit/internal/playlist"
	"github.com/agleyzer/playlistkit/internal/resolve"
	"github.com/agleyzer/playlistkit/internal/source"
	"github.com/go-chi/chi/v5"
)

// maxBodyBytes caps documents posted to /parse and /detect.
const maxBodyBytes = 8 << 20

// Cluster reports replication status for /health. *catalog.Manager implements it.
type Cluster interface {
	NodeID() string
	State() string
	LeaderAddr() string
	Peers() []string
}

// Server serves the inspection API.
type Server struct {
	ingest     *ingest.Service
	catalog    catalog.Store
	cluster    Cluster
	metrics    *metrics.Metrics
	port       int
	logger     *slog.Logger
	httpServer *http.Server
}

// New creates a new HTTP server. cluster may be nil on a single node.
func New(svc *ingest.Service, store catalog.Store, cluster Cluster, m *metrics.Metrics, port int, logger *slog.Logger) *Server {
	return &Server{
		ingest:  svc,
		catalog: store,
		cluster: cluster,
		metrics: m,
		port:    port,
		logger:  logger,
	}
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.loggingMiddleware)
	if s.metrics != nil {
		r.Use(metrics.RequestMiddleware(s.metrics))
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler(func() {
			s.metrics.SetCatalogSize(len(s.catalog.Entries()))
		}))
	}

	r.Get("/health", s.handleHealth)
	r.Get("/inspect", s.handleInspect)
	r.Post("/parse", s.handleParse)
	r.Post("/detect", s.handleDetect)
	r.Get("/detect", s.handleDetect)
	r.Get("/catalog", s.handleCatalog)
	r.Delete("/catalog", s.handleCatalogRemove)

	return r
}

// Start starts the HTTP server and blocks until ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "port", s.port)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error", "error", err)
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	s.logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(shutdownCtx)
}

// ResultView is the JSON form of a parse result, including the derived flags.
type ResultView struct {
	URL              string          `json:"url,omitempty"`
	Type             playlist.Type   `json:"type"`
	Title            string          `json:"title,omitempty"`
	Items            []source.Source `json:"items"`
	Metadata         map[string]any  `json:"metadata"`
	IsAdaptiveStream bool            `json:"isAdaptiveStream"`
	IsMultiVideo     bool            `json:"isMultiVideo"`
}

// NewResultView builds the JSON view of res.
func NewResultView(url string, res *playlist.Result) ResultView {
	return ResultView{
		URL:              url,
		Type:             res.Type,
		Title:            res.Title,
		Items:            res.Items,
		Metadata:         res.Metadata,
		IsAdaptiveStream: res.IsAdaptiveStream(),
		IsMultiVideo:     res.IsMultiVideo(),
	}
}

// handleInspect fetches, parses and catalogs ?url=.
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("url")
	if target == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("missing url parameter"))
		return
	}

	res, err := s.ingest.Ingest(r.Context(), target)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	s.writeJSON(w, http.StatusOK, NewResultView(target, res))
}

// handleParse parses the request body against ?base=.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("read body: %w", err))
		return
	}

	base := r.URL.Query().Get("base")
	res, err := s.ingest.Parse(string(body), base)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	s.writeJSON(w, http.StatusOK, NewResultView(base, res))
}

// handleDetect sniffs the optional body and ?url= without parsing.
func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	var content string
	if r.Body != nil {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("read body: %w", err))
			return
		}
		content = string(body)
	}

	target := r.URL.Query().Get("url")
	if content == "" && target == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("need a body or a url parameter"))
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"format": playlist.Detect(content, target),
		"type":   playlist.DetectType(content, target),
	})
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"entries": s.catalog.Entries(),
	})
}

func (s *Server) handleCatalogRemove(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("url")
	if target == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("missing url parameter"))
		return
	}

	if err := s.catalog.Remove(target); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleHealth serves health check information
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]any{
		"status":  "ok",
		"catalog": len(s.catalog.Entries()),
	}

	if s.cluster != nil {
		health["cluster"] = map[string]any{
			"node_id": s.cluster.NodeID(),
			"state":   s.cluster.State(),
			"leader":  s.cluster.LeaderAddr(),
			"peers":   s.cluster.Peers(),
		}
	}

	s.writeJSON(w, http.StatusOK, health)
}

// statusFor maps ingest errors onto HTTP status codes.
func statusFor(err error) int {
	var fetchErr *ingest.FetchError
	switch {
	case errors.Is(err, resolve.ErrInvalidBaseURL), errors.Is(err, loader.ErrUnsupportedScheme):
		return http.StatusBadRequest
	case errors.Is(err, catalog.ErrNotLeader):
		return http.StatusServiceUnavailable
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to write response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap the response writer to capture status code
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		s.logger.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
			"status", wrapped.statusCode,
			"duration", time.Since(start),
		)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
