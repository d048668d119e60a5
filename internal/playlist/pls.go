package playlist

import (
	"sort"
	"strconv"
	"strings"
)

// parsePLS reads an INI-style PLS file. Entries are emitted in ascending
// FileN order regardless of where they appear; a repeated FileN replaces the
// earlier value. A top-level Title only counts before the first accepted FileN.
func parsePLS(content, baseURL string) (*Result, error) {
	res := newResult(PLS)

	files := map[int]string{}
	titles := map[int]string{}
	lengths := map[int]int{}
	seenFile := false

	for _, line := range splitLines(content) {
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch {
		case key == "title":
			if !seenFile && res.Title == "" {
				res.Title = value
			}
		case strings.HasPrefix(key, "file"):
			if n, ok := plsIndex(key, "file"); ok && value != "" {
				files[n] = value
				seenFile = true
			}
		case strings.HasPrefix(key, "title"):
			if n, ok := plsIndex(key, "title"); ok && value != "" {
				titles[n] = value
			}
		case strings.HasPrefix(key, "length"):
			if n, ok := plsIndex(key, "length"); ok {
				if l, err := strconv.Atoi(value); err == nil {
					lengths[n] = l
				}
			}
		}
	}

	indices := make([]int, 0, len(files))
	for n := range files {
		indices = append(indices, n)
	}
	sort.Ints(indices)

	b := &items{res: res, base: baseURL}
	for _, n := range indices {
		if _, err := b.add(files[n]); err != nil {
			return nil, err
		}
	}

	if len(titles) > 0 {
		res.Metadata[MetaTitles] = titles
	}
	if len(lengths) > 0 {
		res.Metadata[MetaLengths] = lengths
	}

	return res, nil
}

// plsIndex parses the positive entry number following prefix in key.
func plsIndex(key, prefix string) (int, bool) {
	n, err := strconv.Atoi(key[len(prefix):])
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
