// Package playlist detects and parses streaming playlist and manifest documents.
//
// Supported formats are simple M3U, HLS (master and media), PLS, XSPF, JSPF,
// ASX, WPL, CUE sheets and DASH MPD manifests. Parsing is a pure function of
// the document text and its base URL: malformed fragments are skipped and the
// only error a parse can return is a reference that cannot be resolved.
package playlist

import "github.com/agleyzer/playlistkit/internal/source"

// Type is the kind of playlist a document was parsed as.
type Type string

const (
	M3USimple Type = "m3uSimple"
	HLSMaster Type = "hlsMaster"
	HLSMedia  Type = "hlsMedia"
	PLS       Type = "pls"
	XSPF      Type = "xspf"
	JSPF      Type = "jspf"
	ASX       Type = "asx"
	WPL       Type = "wpl"
	CUE       Type = "cue"
	DASH      Type = "dash"
)

// IsAdaptive reports whether t describes a single adaptive resource that is
// handed whole to a native player.
func (t Type) IsAdaptive() bool {
	switch t {
	case HLSMaster, HLSMedia, DASH:
		return true
	default:
		return false
	}
}

// Format selects the parser used for a document. The M3U format covers
// simple M3U and both HLS playlist types; the exact Type is decided while parsing.
type Format string

const (
	FormatM3U  Format = "m3u"
	FormatPLS  Format = "pls"
	FormatXSPF Format = "xspf"
	FormatJSPF Format = "jspf"
	FormatASX  Format = "asx"
	FormatWPL  Format = "wpl"
	FormatCUE  Format = "cue"
	FormatDASH Format = "dash"
)

// Metadata keys shared by several parsers.
const (
	// MetaOriginalURL holds the document URL of adaptive playlists.
	MetaOriginalURL = "originalUrl"
	// MetaTitles maps an index to a per-item title (map[int]string).
	MetaTitles = "titles"
	// MetaDurations maps an item index to its duration in seconds (map[int]float64).
	MetaDurations = "durations"
	// MetaLengths maps a PLS entry number to its length in seconds (map[int]int).
	MetaLengths = "lengths"
	// MetaTracks maps a CUE track number to its Track.
	MetaTracks = "tracks"
	// MetaPerformer is the album-level CUE performer.
	MetaPerformer = "performer"
	// MetaCreator is the JSPF playlist creator.
	MetaCreator = "creator"
	// MetaVariants lists HLS master variants ([]Variant).
	MetaVariants = "variants"
	// MetaTargetDuration is the HLS media target duration in seconds.
	MetaTargetDuration = "targetDuration"
	// MetaSegmentCount is the number of HLS media segments.
	MetaSegmentCount = "segmentCount"
	// MetaTotalDuration is the sum of HLS media segment durations in seconds.
	MetaTotalDuration = "totalDuration"
	// MetaLive is true for HLS media playlists without an end tag and dynamic DASH manifests.
	MetaLive = "live"
	// MetaPresentationType is the DASH MPD type attribute.
	MetaPresentationType = "presentationType"
	// MetaDuration is the raw DASH mediaPresentationDuration.
	MetaDuration = "duration"
)

// Result is the normalized outcome of parsing one playlist document.
// A Result is built once per parse call and must not be modified afterwards.
type Result struct {
	// Type is the playlist type determined at parse time
	Type Type `json:"type"`

	// Items lists the media entries in document order.
	// Always empty for adaptive types.
	Items []source.Source `json:"items"`

	// Title is the playlist-level title, empty if the document has none
	Title string `json:"title,omitempty"`

	// Metadata holds format specific extras, see the Meta* keys
	Metadata map[string]any `json:"metadata"`
}

// IsAdaptiveStream reports whether the result is an HLS or DASH manifest.
func (r *Result) IsAdaptiveStream() bool {
	return r.Type.IsAdaptive()
}

// IsMultiVideo reports whether the result should be played as a discrete
// list of more than one item.
func (r *Result) IsMultiVideo() bool {
	return len(r.Items) > 1 && !r.IsAdaptiveStream()
}

// OriginalURL returns the document URL recorded for adaptive results.
func (r *Result) OriginalURL() string {
	s, _ := r.Metadata[MetaOriginalURL].(string)
	return s
}

// Variant is one entry of an HLS master playlist.
type Variant struct {
	Bandwidth  uint32 `json:"bandwidth"`
	Resolution string `json:"resolution,omitempty"`
	Codecs     string `json:"codecs,omitempty"`
	URL        string `json:"url"`
}

// Track is one CUE sheet track.
type Track struct {
	// File is the name of the file the track lives in, as written in the sheet
	File      string `json:"file"`
	Title     string `json:"title,omitempty"`
	Performer string `json:"performer,omitempty"`

	// StartMs is the INDEX 01 offset into File, nil when the sheet has none
	StartMs *int64 `json:"startMs,omitempty"`
}

func newResult(t Type) *Result {
	return &Result{
		Type:     t,
		Items:    []source.Source{},
		Metadata: map[string]any{},
	}
}

// newAdaptive returns the empty-items result used for HLS and DASH documents.
func newAdaptive(t Type, baseURL string) *Result {
	r := newResult(t)
	r.Metadata[MetaOriginalURL] = baseURL
	return r
}
