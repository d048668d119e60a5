// Package ingest fetches playlist documents, parses them and hands the
// outcome to a media engine.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/agleyzer/playlistkit/internal/catalog"
	"github.com/agleyzer/playlistkit/internal/loader"
	"github.com/agleyzer/playlistkit/internal/metrics"
	"github.com/agleyzer/playlistkit/internal/playlist"
	"github.com/agleyzer/playlistkit/internal/source"
)

// ErrNothingPlayable is returned by Play for non-adaptive results without items.
var ErrNothingPlayable = errors.New("playlist has nothing playable")

// FetchError wraps a loader failure so callers can tell it apart from a
// parse failure.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Engine is the native player. It either opens one adaptive or single
// source, or a discrete list of sources.
type Engine interface {
	Open(ctx context.Context, src source.Source) error
	OpenPlaylist(ctx context.Context, items []source.Source) error
}

// Service ties a loader to the parser. Catalog and metrics are optional.
type Service struct {
	loader  loader.Loader
	catalog catalog.Store
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithCatalog records every successful ingest in store.
func WithCatalog(store catalog.Store) Option {
	return func(s *Service) { s.catalog = store }
}

// WithMetrics reports fetches and parses to m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New creates a Service.
func New(l loader.Loader, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		loader: l,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ingest fetches rawURL and parses it. Local paths are accepted and turned
// into file:// base URLs. Fetch errors are returned as *FetchError without
// retrying.
func (s *Service) Ingest(ctx context.Context, rawURL string) (*playlist.Result, error) {
	base, err := loader.BaseURL(rawURL)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("fetching playlist", "url", base)
	content, err := s.loader.Fetch(ctx, base)
	if err != nil {
		if s.metrics != nil {
			s.metrics.IncFetchErrors()
		}
		return nil, &FetchError{URL: base, Err: err}
	}

	res, err := s.Parse(content, base)
	if err != nil {
		return nil, err
	}

	if s.catalog != nil {
		if err := s.catalog.Register(catalog.NewEntry(base, res, s.now())); err != nil {
			// the parse itself succeeded, so only log
			s.logger.Warn("failed to record playlist in catalog", "url", base, "error", err)
		}
	}

	return res, nil
}

// Parse parses an already fetched document.
func (s *Service) Parse(content, baseURL string) (*playlist.Result, error) {
	res, err := playlist.Parse(content, baseURL)
	if err != nil {
		if s.metrics != nil {
			s.metrics.IncParseErrors()
		}
		return nil, fmt.Errorf("failed to parse playlist: %w", err)
	}

	if s.metrics != nil {
		s.metrics.ObserveParse(string(res.Type), len(res.Items))
	}

	s.logger.Info("parsed playlist",
		"url", baseURL,
		"type", res.Type,
		"items", len(res.Items),
		"adaptive", res.IsAdaptiveStream(),
		"multiVideo", res.IsMultiVideo(),
	)

	return res, nil
}

// Play ingests rawURL and opens the outcome on engine.
func (s *Service) Play(ctx context.Context, rawURL string, engine Engine) (*playlist.Result, error) {
	res, err := s.Ingest(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return res, Dispatch(ctx, res, engine)
}

// Dispatch opens a parse result on engine. Adaptive manifests are opened by
// their original URL, never by their items.
func Dispatch(ctx context.Context, res *playlist.Result, engine Engine) error {
	switch {
	case res.IsAdaptiveStream():
		return engine.Open(ctx, source.Network(res.OriginalURL()))
	case res.IsMultiVideo():
		return engine.OpenPlaylist(ctx, res.Items)
	case len(res.Items) == 1:
		return engine.Open(ctx, res.Items[0])
	default:
		return ErrNothingPlayable
	}
}
