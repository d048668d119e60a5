// Package resolve turns playlist media references into absolute URLs.
package resolve

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ErrInvalidBaseURL is returned when a relative reference has to be resolved
// against a base URL that has no usable scheme and authority.
var ErrInvalidBaseURL = errors.New("invalid base URL")

// absolutePattern matches references that carry their own scheme.
var absolutePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.\-]*://`)

// IsAbsolute reports whether ref already names a scheme (http://, file://, rtsp://, ...).
func IsAbsolute(ref string) bool {
	return absolutePattern.MatchString(ref)
}

// Reference resolves a possibly relative media reference against the URL of
// the document it appeared in.
//
// Absolute references are returned unchanged and never look at baseURL.
// References starting with "/" are origin-relative, "//" scheme-relative,
// anything else is appended to the directory of the base path. Dot segments
// are left as-is.
//
// The result is percent-encoded throughout: the base path is taken in its
// escaped form and characters that cannot appear in a URL (spaces, controls,
// non-ASCII) are escaped in ref. Existing %XX sequences in ref are kept.
func Reference(ref, baseURL string) (string, error) {
	if IsAbsolute(ref) {
		return ref, nil
	}

	base, err := parseBase(baseURL)
	if err != nil {
		return "", err
	}

	ref = escapeRef(ref)

	if strings.HasPrefix(ref, "//") {
		return base.Scheme + ":" + ref, nil
	}

	origin := base.Scheme + "://" + authority(base)
	if strings.HasPrefix(ref, "/") {
		return origin + ref, nil
	}

	return origin + directory(base.EscapedPath()) + ref, nil
}

// parseBase validates that baseURL can provide a scheme and an authority.
// file:// URLs are allowed an empty authority.
func parseBase(baseURL string) (*url.URL, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidBaseURL)
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}

	if base.Scheme == "" {
		return nil, fmt.Errorf("%w: %q has no scheme", ErrInvalidBaseURL, baseURL)
	}

	if base.Host == "" && !strings.EqualFold(base.Scheme, "file") {
		return nil, fmt.Errorf("%w: %q has no host", ErrInvalidBaseURL, baseURL)
	}

	return base, nil
}

func authority(u *url.URL) string {
	if u.User != nil {
		return u.User.String() + "@" + u.Host
	}
	return u.Host
}

// directory returns p up to and including its last slash.
func directory(p string) string {
	i := strings.LastIndex(p, "/")
	if i < 0 {
		return "/"
	}
	return p[:i+1]
}

// escapeRef percent-encodes the bytes of ref that are not allowed in a URL,
// leaving reserved characters and existing escapes alone.
func escapeRef(ref string) string {
	var b strings.Builder
	for i := 0; i < len(ref); i++ {
		c := ref[i]
		if c <= ' ' || c >= 0x7f || strings.IndexByte(`"<>\^`+"`"+`{|}`, c) >= 0 {
			fmt.Fprintf(&b, "%%%02X", c)
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
