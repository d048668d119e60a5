// Package loader fetches raw playlist documents over HTTP or from disk.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultMaxBytes caps the size of a fetched document.
const DefaultMaxBytes = 8 << 20

// ErrUnsupportedScheme is returned for URLs no loader handles.
var ErrUnsupportedScheme = errors.New("unsupported URL scheme")

// ErrTooLarge is returned when a document exceeds the size limit.
var ErrTooLarge = errors.New("playlist document too large")

// Loader fetches the text of a playlist document.
// Errors are returned as-is; callers decide whether to retry.
type Loader interface {
	Fetch(ctx context.Context, rawURL string) (string, error)
}

// HTTP fetches http:// and https:// documents.
type HTTP struct {
	Client    *http.Client
	MaxBytes  int64
	UserAgent string
}

// NewHTTP returns an HTTP loader with the given request timeout.
func NewHTTP(timeout time.Duration) *HTTP {
	return &HTTP{
		Client:   &http.Client{Timeout: timeout},
		MaxBytes: DefaultMaxBytes,
	}
}

// Fetch implements Loader.
func (h *HTTP) Fetch(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	if h.UserAgent != "" {
		req.Header.Set("User-Agent", h.UserAgent)
	}

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch playlist: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch playlist: HTTP %d", resp.StatusCode)
	}

	return readLimited(resp.Body, h.MaxBytes)
}

// File reads file:// URLs and plain filesystem paths.
type File struct {
	MaxBytes int64
}

// Fetch implements Loader.
func (f *File) Fetch(ctx context.Context, rawURL string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := rawURL
	if strings.HasPrefix(rawURL, "file:") {
		u, err := url.Parse(rawURL)
		if err != nil {
			return "", fmt.Errorf("invalid file URL: %w", err)
		}
		path = u.Path
	}

	fh, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open playlist: %w", err)
	}
	defer fh.Close()

	return readLimited(fh, f.MaxBytes)
}

// Mux dispatches to a loader by URL scheme. Anything without a scheme is
// treated as a local path.
type Mux struct {
	HTTP Loader
	File Loader
}

// New returns a Mux serving http, https and local files.
func New(timeout time.Duration, maxBytes int64) *Mux {
	h := NewHTTP(timeout)
	h.MaxBytes = maxBytes
	return &Mux{
		HTTP: h,
		File: &File{MaxBytes: maxBytes},
	}
}

// Fetch implements Loader.
func (m *Mux) Fetch(ctx context.Context, rawURL string) (string, error) {
	scheme := ""
	if u, err := url.Parse(rawURL); err == nil {
		scheme = strings.ToLower(u.Scheme)
	}

	switch {
	case scheme == "http" || scheme == "https":
		if m.HTTP != nil {
			return m.HTTP.Fetch(ctx, rawURL)
		}
	case scheme == "file" || scheme == "" || isDrive(scheme):
		if m.File != nil {
			return m.File.Fetch(ctx, rawURL)
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, rawURL)
}

// BaseURL turns a local path into an absolute file:// URL so that relative
// references inside the document can be resolved. URLs are returned unchanged.
func BaseURL(rawURL string) (string, error) {
	if u, err := url.Parse(rawURL); err == nil && u.Scheme != "" && !isDrive(u.Scheme) {
		return rawURL, nil
	}

	abs, err := filepath.Abs(rawURL)
	if err != nil {
		return "", fmt.Errorf("resolve path %q: %w", rawURL, err)
	}

	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return (&url.URL{Scheme: "file", Path: p}).String(), nil
}

// isDrive reports whether a parsed scheme is really a Windows drive letter.
func isDrive(scheme string) bool {
	return len(scheme) == 1
}

func readLimited(r io.Reader, maxBytes int64) (string, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	body, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read playlist: %w", err)
	}
	if int64(len(body)) > maxBytes {
		return "", fmt.Errorf("%w: more than %d bytes", ErrTooLarge, maxBytes)
	}

	return string(body), nil
}
