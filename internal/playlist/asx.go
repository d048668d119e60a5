package playlist

import "regexp"

var (
	asxTitle = regexp.MustCompile(`(?is)<title>(.*?)</title>`)
	asxEntry = regexp.MustCompile(`(?is)<entry\b[^>]*>(.*?)</entry>`)
	asxRef   = regexp.MustCompile(`(?is)<ref\s[^>]*?href\s*=\s*"([^"]*)"`)
)

// parseASX reads Windows Media ASX metafiles. Each <entry> contributes its
// first <ref href>; entries without one are skipped.
func parseASX(content, baseURL string) (*Result, error) {
	res := newResult(ASX)
	res.Title, _ = firstText(asxTitle, content)

	b := &items{res: res, base: baseURL}
	titles := map[int]string{}

	for _, m := range asxEntry.FindAllStringSubmatch(content, -1) {
		entry := m[1]

		href, ok := firstText(asxRef, entry)
		if !ok {
			continue
		}

		i, err := b.add(href)
		if err != nil {
			return nil, err
		}

		if title, ok := firstText(asxTitle, entry); ok {
			titles[i] = title
		}
	}

	if len(titles) > 0 {
		res.Metadata[MetaTitles] = titles
	}

	return res, nil
}
