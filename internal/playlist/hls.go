package playlist

import (
	"strings"

	"github.com/agleyzer/playlistkit/internal/resolve"
	"github.com/grafov/m3u8"
)

// parseHLS builds the result for an HLS master or media playlist. Items stay
// empty; whatever m3u8 can decode is added to the metadata.
func parseHLS(t Type, content, baseURL string) *Result {
	res := newAdaptive(t, baseURL)

	playlist, listType, err := m3u8.DecodeFrom(strings.NewReader(content), false)
	if err != nil {
		return res
	}

	switch {
	case t == HLSMaster && listType == m3u8.MASTER:
		if master, ok := playlist.(*m3u8.MasterPlaylist); ok {
			describeMaster(res, master, baseURL)
		}
	case t == HLSMedia && listType == m3u8.MEDIA:
		if media, ok := playlist.(*m3u8.MediaPlaylist); ok {
			describeMedia(res, media)
		}
	}

	return res
}

func describeMaster(res *Result, master *m3u8.MasterPlaylist, baseURL string) {
	variants := make([]Variant, 0, len(master.Variants))
	for _, v := range master.Variants {
		// a STREAM-INF without its URI line decodes with an empty URI
		if v == nil || strings.TrimSpace(v.URI) == "" {
			continue
		}

		variantURL, err := resolve.Reference(v.URI, baseURL)
		if err != nil {
			continue
		}

		variants = append(variants, Variant{
			Bandwidth:  v.Bandwidth,
			Resolution: v.Resolution,
			Codecs:     v.Codecs,
			URL:        variantURL,
		})
	}

	if len(variants) > 0 {
		res.Metadata[MetaVariants] = variants
	}
}

func describeMedia(res *Result, media *m3u8.MediaPlaylist) {
	count := 0
	total := 0.0
	for _, seg := range media.Segments {
		if seg == nil {
			break
		}
		count++
		total += seg.Duration
	}

	res.Metadata[MetaTargetDuration] = media.TargetDuration
	res.Metadata[MetaSegmentCount] = count
	res.Metadata[MetaTotalDuration] = total
	res.Metadata[MetaLive] = !media.Closed
}
