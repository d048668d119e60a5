package playlist

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/agleyzer/playlistkit/internal/resolve"
	"github.com/agleyzer/playlistkit/internal/source"
)

// Parse detects the format of content and parses it. baseURL is the URL the
// document was fetched from; it is used both as an extension hint and to
// resolve relative references.
//
// Malformed input never fails: unrecognized constructs are skipped and the
// result may have no items. The returned error is non-nil only when a
// relative reference cannot be resolved against baseURL, in which case it
// wraps resolve.ErrInvalidBaseURL.
func Parse(content, baseURL string) (*Result, error) {
	return ParseAs(Detect(content, baseURL), content, baseURL)
}

// ParseAs parses content with the parser for f, skipping detection.
func ParseAs(f Format, content, baseURL string) (*Result, error) {
	content = strings.TrimPrefix(content, "\ufeff")

	switch f {
	case FormatM3U:
		return parseM3U(content, baseURL)
	case FormatPLS:
		return parsePLS(content, baseURL)
	case FormatXSPF:
		return parseXSPF(content, baseURL)
	case FormatJSPF:
		return parseJSPF(content, baseURL)
	case FormatASX:
		return parseASX(content, baseURL)
	case FormatWPL:
		return parseWPL(content, baseURL)
	case FormatCUE:
		return parseCUE(content, baseURL)
	case FormatDASH:
		return parseDASH(content, baseURL), nil
	default:
		return nil, fmt.Errorf("unknown playlist format %q", f)
	}
}

// items appends resolved references to a result.
type items struct {
	res  *Result
	base string
}

// add resolves ref and appends it, returning the new item's index.
func (b *items) add(ref string) (int, error) {
	u, err := resolve.Reference(ref, b.base)
	if err != nil {
		return 0, fmt.Errorf("resolve %q: %w", ref, err)
	}
	b.res.Items = append(b.res.Items, source.Network(u))
	return len(b.res.Items) - 1, nil
}

// splitLines splits content into trimmed lines, accepting any newline convention.
func splitLines(content string) []string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	lines := strings.Split(content, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return lines
}

var entities = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
	"&amp;", "&",
)

// decodeEntities replaces the five predefined XML entities in a single pass.
func decodeEntities(s string) string {
	return entities.Replace(s)
}

// firstText returns the trimmed, entity-decoded first submatch of re in s.
func firstText(re *regexp.Regexp, s string) (string, bool) {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	v := strings.TrimSpace(decodeEntities(m[1]))
	return v, v != ""
}
