package playlist

import (
	"encoding/json"
	"strings"
)

// parseJSPF reads the JSON form of XSPF. Invalid JSON or a missing
// "playlist" object yields an empty result.
func parseJSPF(content, baseURL string) (*Result, error) {
	res := newResult(JSPF)

	var doc map[string]any
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return res, nil
	}
	pl, ok := doc["playlist"].(map[string]any)
	if !ok {
		return res, nil
	}

	if title, ok := pl["title"].(string); ok {
		res.Title = strings.TrimSpace(title)
	}
	if creator, ok := pl["creator"].(string); ok && creator != "" {
		res.Metadata[MetaCreator] = creator
	}

	tracks, _ := pl["track"].([]any)
	b := &items{res: res, base: baseURL}
	titles := map[int]string{}

	// titles are keyed by position in the track array
	for i, t := range tracks {
		track, ok := t.(map[string]any)
		if !ok {
			continue
		}

		location, ok := jspfLocation(track["location"])
		if !ok {
			continue
		}
		if _, err := b.add(location); err != nil {
			return nil, err
		}

		if title, ok := track["title"].(string); ok {
			titles[i] = title
		}
	}

	if len(titles) > 0 {
		res.Metadata[MetaTitles] = titles
	}

	return res, nil
}

// jspfLocation accepts a plain string or the JSPF array-of-strings form.
func jspfLocation(v any) (string, bool) {
	switch loc := v.(type) {
	case string:
		loc = strings.TrimSpace(loc)
		return loc, loc != ""
	case []any:
		for _, e := range loc {
			if s, ok := e.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s), true
			}
		}
	}
	return "", false
}
