package playlist

import "regexp"

var (
	dashTitle    = regexp.MustCompile(`(?is)<Title>(.*?)</Title>`)
	dashMPD      = regexp.MustCompile(`(?is)<MPD\b([^>]*)>`)
	dashType     = regexp.MustCompile(`(?i)(?:^|\s)type\s*=\s*"([^"]*)"`)
	dashDuration = regexp.MustCompile(`(?i)(?:^|\s)mediaPresentationDuration\s*=\s*"([^"]*)"`)
)

// parseDASH records the manifest URL and whatever descriptive fields are
// present. A DASH manifest is one adaptive resource, so it has no items.
func parseDASH(content, baseURL string) *Result {
	res := newAdaptive(DASH, baseURL)
	res.Title, _ = firstText(dashTitle, content)

	m := dashMPD.FindStringSubmatch(content)
	if m == nil {
		return res
	}
	attrs := m[1]

	if t, ok := firstText(dashType, attrs); ok {
		res.Metadata[MetaPresentationType] = t
		res.Metadata[MetaLive] = t == "dynamic"
	}
	if d, ok := firstText(dashDuration, attrs); ok {
		res.Metadata[MetaDuration] = d
	}

	return res
}
