package playlist

import (
	"regexp"
	"strconv"
	"strings"
)

// framesPerSecond is the CD-DA frame rate used by INDEX timestamps.
const framesPerSecond = 75

var cueQuoted = regexp.MustCompile(`"([^"]*)"`)

// parseCUE scans a cue sheet. Items are the distinct FILE entries in
// first-seen order; track offsets within them go to metadata["tracks"].
func parseCUE(content, baseURL string) (*Result, error) {
	res := newResult(CUE)

	var (
		files       []string
		seen        = map[string]bool{}
		currentFile string
		tracks      = map[int]*Track{}
		current     *Track
		performer   string
	)

	for _, line := range splitLines(content) {
		directive, rest := line, ""
		if i := strings.IndexAny(line, " \t"); i >= 0 {
			directive, rest = line[:i], strings.TrimSpace(line[i+1:])
		}

		switch strings.ToUpper(directive) {
		case "PERFORMER":
			v, ok := cueString(rest)
			if !ok {
				continue
			}
			if current == nil {
				performer = v
			} else {
				current.Performer = v
			}

		case "TITLE":
			v, ok := cueString(rest)
			if !ok {
				continue
			}
			if current == nil {
				res.Title = v
			} else {
				current.Title = v
			}

		case "FILE":
			name, ok := cueString(rest)
			if !ok || name == "" {
				continue
			}
			currentFile = name
			if !seen[name] {
				seen[name] = true
				files = append(files, name)
			}

		case "TRACK":
			if currentFile == "" {
				continue
			}
			fields := strings.Fields(rest)
			if len(fields) == 0 {
				continue
			}
			n, err := strconv.Atoi(fields[0])
			if err != nil {
				continue
			}
			current = &Track{File: currentFile}
			tracks[n] = current

		case "INDEX":
			if current == nil {
				continue
			}
			fields := strings.Fields(rest)
			if len(fields) < 2 {
				continue
			}
			if n, err := strconv.Atoi(fields[0]); err != nil || n != 1 {
				continue
			}
			if ms, ok := cueTimestamp(fields[1]); ok {
				current.StartMs = &ms
			}
		}
	}

	b := &items{res: res, base: baseURL}
	for _, f := range files {
		if _, err := b.add(f); err != nil {
			return nil, err
		}
	}

	if len(tracks) > 0 {
		out := make(map[int]Track, len(tracks))
		for n, t := range tracks {
			out[n] = *t
		}
		res.Metadata[MetaTracks] = out
	}
	if performer != "" {
		res.Metadata[MetaPerformer] = performer
	}

	return res, nil
}

// cueString returns the first double-quoted string in s.
func cueString(s string) (string, bool) {
	m := cueQuoted.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// cueTimestamp converts MM:SS:FF to milliseconds, rounding frames down.
func cueTimestamp(s string) (int64, bool) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, false
	}

	var v [3]int64
	for i, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil || n < 0 {
			return 0, false
		}
		v[i] = n
	}

	minutes, seconds, frames := v[0], v[1], v[2]
	if seconds >= 60 || frames >= framesPerSecond {
		return 0, false
	}

	return minutes*60000 + seconds*1000 + frames*1000/framesPerSecond, true
}
