package playlist

import (
	"strconv"
	"strings"
)

func parseM3U(content, baseURL string) (*Result, error) {
	if t := m3uType(content); t.IsAdaptive() {
		return parseHLS(t, content, baseURL), nil
	}

	res := newResult(M3USimple)
	b := &items{res: res, base: baseURL}

	titles := map[int]string{}
	durations := map[int]float64{}

	// #EXTINF describes the next URL line
	var pending *extinf

	for _, line := range splitLines(content) {
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "#EXTM3U"):
			continue
		case strings.HasPrefix(line, "#PLAYLIST:"):
			res.Title = strings.TrimSpace(strings.TrimPrefix(line, "#PLAYLIST:"))
		case strings.HasPrefix(line, "#EXTINF:"):
			pending = parseExtinf(strings.TrimPrefix(line, "#EXTINF:"))
		case strings.HasPrefix(line, "#"):
			continue
		default:
			i, err := b.add(line)
			if err != nil {
				return nil, err
			}
			if pending != nil {
				if pending.hasDuration {
					durations[i] = pending.duration
				}
				if pending.title != "" {
					titles[i] = pending.title
				}
				pending = nil
			}
		}
	}

	if len(titles) > 0 {
		res.Metadata[MetaTitles] = titles
	}
	if len(durations) > 0 {
		res.Metadata[MetaDurations] = durations
	}

	return res, nil
}

type extinf struct {
	duration    float64
	hasDuration bool
	title       string
}

// parseExtinf splits "<duration>[ attrs],<title>". The separating comma is the
// first one outside double quotes, since IPTV attributes often contain commas.
func parseExtinf(payload string) *extinf {
	head, title := payload, ""
	inQuote := false
	for i, r := range payload {
		if r == '"' {
			inQuote = !inQuote
		} else if r == ',' && !inQuote {
			head, title = payload[:i], payload[i+1:]
			break
		}
	}

	e := &extinf{title: strings.TrimSpace(title)}
	if fields := strings.Fields(head); len(fields) > 0 {
		if d, err := strconv.ParseFloat(fields[0], 64); err == nil {
			e.duration = d
			e.hasDuration = true
		}
	}
	return e
}
