package playlist

import (
	"regexp"
	"strings"
)

var (
	wplTitle = regexp.MustCompile(`(?is)<title>(.*?)</title>`)
	wplMedia = regexp.MustCompile(`(?is)<media\s[^>]*?src\s*=\s*"([^"]*)"`)
)

// parseWPL reads Windows Media Player playlists: every <media src> in
// document order.
func parseWPL(content, baseURL string) (*Result, error) {
	res := newResult(WPL)
	res.Title, _ = firstText(wplTitle, content)

	b := &items{res: res, base: baseURL}
	for _, m := range wplMedia.FindAllStringSubmatch(content, -1) {
		src := strings.TrimSpace(decodeEntities(m[1]))
		if src == "" {
			continue
		}
		if _, err := b.add(src); err != nil {
			return nil, err
		}
	}

	return res, nil
}
