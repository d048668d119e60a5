package playlist

import "regexp"

var (
	xspfTitle    = regexp.MustCompile(`(?s)<title>(.*?)</title>`)
	xspfTrack    = regexp.MustCompile(`(?s)<track\b[^>]*>(.*?)</track>`)
	xspfLocation = regexp.MustCompile(`(?s)<location>(.*?)</location>`)
)

// parseXSPF extracts the playlist title and each track's first location.
// Tracks without a location are skipped.
func parseXSPF(content, baseURL string) (*Result, error) {
	res := newResult(XSPF)
	res.Title, _ = firstText(xspfTitle, content)

	b := &items{res: res, base: baseURL}
	titles := map[int]string{}

	for _, m := range xspfTrack.FindAllStringSubmatch(content, -1) {
		track := m[1]

		location, ok := firstText(xspfLocation, track)
		if !ok {
			continue
		}

		i, err := b.add(location)
		if err != nil {
			return nil, err
		}

		if title, ok := firstText(xspfTitle, track); ok {
			titles[i] = title
		}
	}

	if len(titles) > 0 {
		res.Metadata[MetaTitles] = titles
	}

	return res, nil
}
