package playlist

import (
	"net/url"
	"path"
	"strings"
)

// extensions maps lower-case file extensions to formats.
var extensions = map[string]Format{
	".mpd":  FormatDASH,
	".m3u":  FormatM3U,
	".m3u8": FormatM3U,
	".pls":  FormatPLS,
	".xspf": FormatXSPF,
	".jspf": FormatJSPF,
	".asx":  FormatASX,
	".wpl":  FormatWPL,
	".cue":  FormatCUE,
}

// Detect picks the parser for a document. Either argument may be empty.
// Content cues win over the URL extension; when neither is conclusive the
// permissive M3U parser is selected.
func Detect(content, rawURL string) Format {
	if f, ok := detectContent(content); ok {
		return f
	}
	if f, ok := detectExtension(rawURL); ok {
		return f
	}
	return FormatM3U
}

// DetectType is like Detect but resolves the M3U family into its concrete type.
func DetectType(content, rawURL string) Type {
	f := Detect(content, rawURL)
	if f == FormatM3U {
		return m3uType(content)
	}
	return f.Type()
}

// Type returns the playlist type a format always produces.
// FormatM3U reports M3USimple since its HLS types depend on content.
func (f Format) Type() Type {
	switch f {
	case FormatPLS:
		return PLS
	case FormatXSPF:
		return XSPF
	case FormatJSPF:
		return JSPF
	case FormatASX:
		return ASX
	case FormatWPL:
		return WPL
	case FormatCUE:
		return CUE
	case FormatDASH:
		return DASH
	default:
		return M3USimple
	}
}

// detectContent applies the content rules in precedence order; cues overlap
// so the order matters.
func detectContent(content string) (Format, bool) {
	if content == "" {
		return "", false
	}

	lower := strings.ToLower(content)

	switch {
	case strings.Contains(content, "<MPD") || strings.Contains(content, "<mpd"):
		return FormatDASH, true
	case strings.Contains(content, "#EXTM3U") || strings.Contains(content, "#EXTINF"):
		return FormatM3U, true
	case strings.Contains(lower, "[playlist]"):
		return FormatPLS, true
	case strings.Contains(content, "<playlist") && strings.Contains(content, "xspf.org"):
		return FormatXSPF, true
	case strings.HasPrefix(strings.TrimLeft(content, " \t\r\n\ufeff"), "{") && strings.Contains(content, `"playlist"`):
		return FormatJSPF, true
	case strings.Contains(lower, "<asx"):
		return FormatASX, true
	case strings.Contains(content, "<?wpl"):
		return FormatWPL, true
	case strings.Contains(content, "FILE ") && strings.Contains(content, "TRACK "):
		return FormatCUE, true
	}

	return "", false
}

// detectExtension looks at the path extension of rawURL, ignoring any query
// string or fragment.
func detectExtension(rawURL string) (Format, bool) {
	if rawURL == "" {
		return "", false
	}

	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	} else {
		p, _, _ = strings.Cut(p, "?")
		p, _, _ = strings.Cut(p, "#")
	}

	f, ok := extensions[strings.ToLower(path.Ext(p))]
	return f, ok
}

// m3uType decides the concrete type of an M3U family document.
func m3uType(content string) Type {
	switch {
	case strings.Contains(content, "#EXT-X-STREAM-INF"):
		return HLSMaster
	case strings.Contains(content, "#EXT-X-TARGETDURATION"):
		return HLSMedia
	default:
		return M3USimple
	}
}
