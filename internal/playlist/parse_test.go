package playlist

import (
	"errors"
	"math"
	"testing"

	"github.com/agleyzer/playlistkit/internal/resolve"
	"github.com/agleyzer/playlistkit/internal/source"
)

// mustParse parses content and fails the test on error.
func mustParse(t *testing.T, content, baseURL string) *Result {
	t.Helper()
	res, err := Parse(content, baseURL)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return res
}

func assertItems(t *testing.T, res *Result, want ...string) {
	t.Helper()
	if len(res.Items) != len(want) {
		t.Fatalf("Expected %d items, got %d: %v", len(want), len(res.Items), res.Items)
	}
	for i, w := range want {
		if res.Items[i] != source.Network(w) {
			t.Errorf("Item %d: expected %s, got %s", i, source.Network(w), res.Items[i])
		}
	}
}

func TestParse_SimpleM3U(t *testing.T) {
	res := mustParse(t, "#EXTM3U\n#PLAYLIST:My List\na.mp4\nb.mp4\n", "https://x.com/dir/p.m3u")

	if res.Type != M3USimple {
		t.Errorf("Expected type %s, got %s", M3USimple, res.Type)
	}
	if res.Title != "My List" {
		t.Errorf("Expected title 'My List', got %q", res.Title)
	}
	assertItems(t, res, "https://x.com/dir/a.mp4", "https://x.com/dir/b.mp4")

	if !res.IsMultiVideo() {
		t.Error("Expected multi-video result")
	}
	if res.IsAdaptiveStream() {
		t.Error("Expected non-adaptive result")
	}
}

func TestParse_M3UCommentsAndBlankLines(t *testing.T) {
	content := "#EXTM3U\r\n\r\n# a comment\r\n#EXTVLCOPT:network-caching=1000\r\n/abs/a.mp4\r\nhttps://cdn.com/b.mp4\r\n"
	res := mustParse(t, content, "https://x.com/dir/p.m3u")

	assertItems(t, res, "https://x.com/abs/a.mp4", "https://cdn.com/b.mp4")
	if _, ok := res.Metadata[MetaTitles]; ok {
		t.Error("Expected no titles without #EXTINF")
	}
}

func TestParse_M3UExtinf(t *testing.T) {
	content := `#EXTM3U
#EXTINF:123.5,Artist - Song
song.mp3
#EXTINF:-1 tvg-id="news" group-title="News, World",News Channel
http://iptv.example.com/news
plain.mp3
`
	res := mustParse(t, content, "https://x.com/m/p.m3u")
	assertItems(t, res, "https://x.com/m/song.mp3", "http://iptv.example.com/news", "https://x.com/m/plain.mp3")

	titles, ok := res.Metadata[MetaTitles].(map[int]string)
	if !ok {
		t.Fatal("Expected titles metadata")
	}
	if titles[0] != "Artist - Song" {
		t.Errorf("Expected title 0 'Artist - Song', got %q", titles[0])
	}
	if titles[1] != "News Channel" {
		t.Errorf("Expected title 1 'News Channel', got %q", titles[1])
	}
	if _, ok := titles[2]; ok {
		t.Error("Item 2 has no #EXTINF and should have no title")
	}

	durations := res.Metadata[MetaDurations].(map[int]float64)
	if durations[0] != 123.5 || durations[1] != -1 {
		t.Errorf("Unexpected durations %v", durations)
	}
}

func TestParse_M3UInvalidBase(t *testing.T) {
	_, err := Parse("#EXTM3U\nrelative.mp4\n", "not a url")
	if !errors.Is(err, resolve.ErrInvalidBaseURL) {
		t.Fatalf("Expected ErrInvalidBaseURL, got %v", err)
	}

	// absolute entries never need the base
	res, err := Parse("#EXTM3U\nhttps://a.com/x.mp4\n", "not a url")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	assertItems(t, res, "https://a.com/x.mp4")
}

func TestParse_HLSMaster(t *testing.T) {
	content := `#EXTM3U
#EXT-X-STREAM-INF:BANDWIDTH=1280000,RESOLUTION=640x360
low/index.m3u8
#EXT-X-STREAM-INF:BANDWIDTH=2560000
https://cdn.example.com/high.m3u8
`
	base := "https://a.com/video/master.m3u8"
	res := mustParse(t, content, base)

	if res.Type != HLSMaster {
		t.Fatalf("Expected type %s, got %s", HLSMaster, res.Type)
	}
	if len(res.Items) != 0 {
		t.Errorf("Expected no items, got %d", len(res.Items))
	}
	if res.OriginalURL() != base {
		t.Errorf("Expected originalUrl %s, got %s", base, res.OriginalURL())
	}
	if !res.IsAdaptiveStream() || res.IsMultiVideo() {
		t.Error("Expected adaptive, non multi-video result")
	}

	variants, ok := res.Metadata[MetaVariants].([]Variant)
	if !ok {
		t.Fatal("Expected variants metadata")
	}
	if len(variants) != 2 {
		t.Fatalf("Expected 2 variants, got %d", len(variants))
	}
	if variants[0].URL != "https://a.com/video/low/index.m3u8" {
		t.Errorf("Unexpected variant URL %s", variants[0].URL)
	}
	if variants[0].Bandwidth != 1280000 {
		t.Errorf("Expected bandwidth 1280000, got %d", variants[0].Bandwidth)
	}
	if variants[1].URL != "https://cdn.example.com/high.m3u8" {
		t.Errorf("Unexpected variant URL %s", variants[1].URL)
	}
}

func TestParse_HLSMasterSkipsVariantsWithoutURI(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "trailing stream inf",
			content: "#EXTM3U\n#EXT-X-STREAM-INF:BANDWIDTH=1\n",
		},
		{
			name:    "garbage attributes and blank uri",
			content: "#EXTM3U\n#EXT-X-STREAM-INF:BANDWIDTH=zz,RESOLUTION=\n\n#EXT-X-STREAM-INF\n",
		},
		{
			name:    "valid variant kept",
			content: "#EXTM3U\n#EXT-X-STREAM-INF:BANDWIDTH=1000\nlow.m3u8\n#EXT-X-STREAM-INF:BANDWIDTH=2000\n",
			want:    []string{"https://a.com/low.m3u8"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := mustParse(t, tt.content, "https://a.com/x.m3u8")
			if res.Type != HLSMaster {
				t.Fatalf("Expected type %s, got %s", HLSMaster, res.Type)
			}

			variants, _ := res.Metadata[MetaVariants].([]Variant)
			if len(variants) != len(tt.want) {
				t.Fatalf("Expected %d variants, got %v", len(tt.want), variants)
			}
			for i, v := range variants {
				if v.URL != tt.want[i] {
					t.Errorf("Variant %d: expected %s, got %s", i, tt.want[i], v.URL)
				}
			}
		})
	}
}

func TestParse_HLSMedia(t *testing.T) {
	content := `#EXTM3U
#EXT-X-VERSION:3
#EXT-X-TARGETDURATION:10
#EXTINF:9.9,
segment001.ts
#EXTINF:10.0,
segment002.ts
#EXTINF:10.1,
segment003.ts
#EXT-X-ENDLIST
`
	res := mustParse(t, content, "https://a.com/v/index.m3u8")

	if res.Type != HLSMedia {
		t.Fatalf("Expected type %s, got %s", HLSMedia, res.Type)
	}
	if len(res.Items) != 0 {
		t.Errorf("Expected no items, got %d", len(res.Items))
	}
	if res.Metadata[MetaSegmentCount] != 3 {
		t.Errorf("Expected 3 segments, got %v", res.Metadata[MetaSegmentCount])
	}
	if res.Metadata[MetaLive] != false {
		t.Errorf("Expected VOD playlist, got live=%v", res.Metadata[MetaLive])
	}
	total := res.Metadata[MetaTotalDuration].(float64)
	if math.Abs(total-30.0) > 1e-9 {
		t.Errorf("Expected total duration 30, got %f", total)
	}
}

func TestParse_HLSWithBrokenBody(t *testing.T) {
	// m3u8 cannot decode this, but it is still an adaptive result
	res := mustParse(t, "#EXT-X-TARGETDURATION:abc\n", "not a url")
	if res.Type != HLSMedia {
		t.Fatalf("Expected type %s, got %s", HLSMedia, res.Type)
	}
	if res.OriginalURL() != "not a url" {
		t.Errorf("Expected originalUrl to be kept, got %q", res.OriginalURL())
	}
}

func TestParse_PLS(t *testing.T) {
	content := `[playlist]
Title=Radio Mix
File2=y.mp4
File1=x.mp4
Title1=First
Length1=-1
NumberOfEntries=2
Version=2
`
	res := mustParse(t, content, "https://a.com/r/list.pls")

	if res.Type != PLS {
		t.Fatalf("Expected type %s, got %s", PLS, res.Type)
	}
	if res.Title != "Radio Mix" {
		t.Errorf("Expected title 'Radio Mix', got %q", res.Title)
	}
	assertItems(t, res, "https://a.com/r/x.mp4", "https://a.com/r/y.mp4")

	titles := res.Metadata[MetaTitles].(map[int]string)
	if titles[1] != "First" {
		t.Errorf("Expected Title1 'First', got %q", titles[1])
	}
	lengths := res.Metadata[MetaLengths].(map[int]int)
	if lengths[1] != -1 {
		t.Errorf("Expected Length1 -1, got %d", lengths[1])
	}
}

func TestParse_PLSMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing value", "[playlist]\nFile1=\n"},
		{"non numeric index", "[playlist]\nFileX=a.mp3\n"},
		{"zero index", "[playlist]\nFile0=a.mp3\n"},
		{"no equals", "[playlist]\nFile1 a.mp3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := mustParse(t, tt.content, "https://a.com/list.pls")
			if res.Type != PLS {
				t.Errorf("Expected type %s, got %s", PLS, res.Type)
			}
			if len(res.Items) != 0 {
				t.Errorf("Expected no items, got %v", res.Items)
			}
		})
	}
}

func TestParse_PLSTitleAfterRejectedFileKey(t *testing.T) {
	res := mustParse(t, "[playlist]\nFileX=bad.mp3\nTitle=Station\nFile1=a.mp3\n", "https://a.com/list.pls")
	if res.Title != "Station" {
		t.Errorf("Expected title 'Station', got %q", res.Title)
	}
	assertItems(t, res, "https://a.com/a.mp3")
}

func TestParse_PLSCaseInsensitiveAndCorrections(t *testing.T) {
	content := "[playlist]\nfile1=old.mp3\nFILE3=c.mp3\nFile1=new.mp3\ntitle=Late Title\n"
	res := mustParse(t, content, "https://a.com/list.pls")
	assertItems(t, res, "https://a.com/new.mp3", "https://a.com/c.mp3")
	if res.Title != "" {
		t.Errorf("Title after entries should be ignored, got %q", res.Title)
	}
}

func TestParse_XSPF(t *testing.T) {
	content := `<?xml version="1.0" encoding="UTF-8"?>
<playlist version="1" xmlns="http://xspf.org/ns/0/">
  <title>Rock &amp; Roll</title>
  <trackList>
    <track>
      <location>songs/one.mp3</location>
      <title>One</title>
    </track>
    <track>
      <title>No location</title>
    </track>
    <track>
      <location>
        http://example.com/two.mp3?a=1&amp;b=2
      </location>
    </track>
  </trackList>
</playlist>`
	res := mustParse(t, content, "https://a.com/lists/x.xspf")

	if res.Type != XSPF {
		t.Fatalf("Expected type %s, got %s", XSPF, res.Type)
	}
	if res.Title != "Rock & Roll" {
		t.Errorf("Expected decoded title, got %q", res.Title)
	}
	assertItems(t, res, "https://a.com/lists/songs/one.mp3", "http://example.com/two.mp3?a=1&b=2")

	titles := res.Metadata[MetaTitles].(map[int]string)
	if titles[0] != "One" {
		t.Errorf("Expected track title 'One', got %q", titles[0])
	}
}

func TestParse_JSPF(t *testing.T) {
	content := `{
  "playlist": {
    "title": "JSON List",
    "creator": "someone",
    "track": [
      {"location": "a.mp4", "title": "A"},
      {"title": "no location"},
      "not an object",
      {"location": ["https://cdn.com/d.mp4", "mirror.mp4"], "title": "D"},
      {"location": "e.mp4"}
    ]
  }
}`
	res := mustParse(t, content, "https://a.com/j/list.jspf")

	if res.Type != JSPF {
		t.Fatalf("Expected type %s, got %s", JSPF, res.Type)
	}
	if res.Title != "JSON List" {
		t.Errorf("Expected title 'JSON List', got %q", res.Title)
	}
	assertItems(t, res, "https://a.com/j/a.mp4", "https://cdn.com/d.mp4", "https://a.com/j/e.mp4")

	titles := res.Metadata[MetaTitles].(map[int]string)
	if len(titles) != 2 || titles[0] != "A" || titles[3] != "D" {
		t.Errorf("Expected titles keyed by track position, got %v", titles)
	}
	if res.Metadata[MetaCreator] != "someone" {
		t.Errorf("Expected creator metadata, got %v", res.Metadata[MetaCreator])
	}
}

func TestParse_JSPFMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid json", `{"playlist": {"track": [`},
		{"playlist not an object", `{"playlist": "nope"}`},
		{"track not an array", `{"playlist": {"track": {"location": "a.mp4"}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ParseAs(FormatJSPF, tt.content, "https://a.com/list.jspf")
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if res.Type != JSPF || len(res.Items) != 0 {
				t.Errorf("Expected empty JSPF result, got %+v", res)
			}
			if _, ok := res.Metadata[MetaTitles]; ok {
				t.Error("Expected no titles metadata")
			}
		})
	}
}

func TestParse_ASX(t *testing.T) {
	content := `<ASX VERSION="3.0">
  <TITLE>Station &quot;One&quot;</TITLE>
  <Entry>
    <Title>Morning</Title>
    <Ref HREF="mms://media.example.com/morning" />
  </Entry>
  <ENTRY>
    <ref href="clips/evening.wmv"/>
  </ENTRY>
  <entry><title>empty</title></entry>
</ASX>`
	res := mustParse(t, content, "http://a.com/tv/list.asx")

	if res.Type != ASX {
		t.Fatalf("Expected type %s, got %s", ASX, res.Type)
	}
	if res.Title != `Station "One"` {
		t.Errorf("Expected decoded title, got %q", res.Title)
	}
	assertItems(t, res, "mms://media.example.com/morning", "http://a.com/tv/clips/evening.wmv")
}

func TestParse_WPL(t *testing.T) {
	content := `<?wpl version="1.0"?>
<smil>
  <head><title>Evening &lt;Mix&gt;</title></head>
  <body>
    <seq>
      <media src="..\Music\one.wma"/>
      <MEDIA SRC="https://a.com/two.wma" tid="{1}"/>
      <media src="three &amp; four.wma"/>
    </seq>
  </body>
</smil>`
	res := mustParse(t, content, "file:///C:/Playlists/evening.wpl")

	if res.Type != WPL {
		t.Fatalf("Expected type %s, got %s", WPL, res.Type)
	}
	if res.Title != "Evening <Mix>" {
		t.Errorf("Expected decoded title, got %q", res.Title)
	}
	assertItems(t, res,
		`file:///C:/Playlists/..\Music\one.wma`,
		"https://a.com/two.wma",
		"file:///C:/Playlists/three & four.wma",
	)
}

func TestParse_DASH(t *testing.T) {
	content := `<?xml version="1.0"?>
<MPD xmlns="urn:mpeg:dash:schema:mpd:2011" type="static" mediaPresentationDuration="PT634.566S">
  <ProgramInformation><Title>Big &amp; Buck</Title></ProgramInformation>
  <Period><AdaptationSet><Representation id="1"><BaseURL>video.mp4</BaseURL></Representation></AdaptationSet></Period>
</MPD>`
	base := "https://a.com/dash/manifest.mpd"
	res := mustParse(t, content, base)

	if res.Type != DASH {
		t.Fatalf("Expected type %s, got %s", DASH, res.Type)
	}
	if len(res.Items) != 0 {
		t.Errorf("Expected no items, got %d", len(res.Items))
	}
	if res.OriginalURL() != base {
		t.Errorf("Expected originalUrl %s, got %s", base, res.OriginalURL())
	}
	if res.Title != "Big & Buck" {
		t.Errorf("Expected title 'Big & Buck', got %q", res.Title)
	}
	if res.Metadata[MetaPresentationType] != "static" || res.Metadata[MetaLive] != false {
		t.Errorf("Unexpected presentation metadata %v", res.Metadata)
	}
	if res.Metadata[MetaDuration] != "PT634.566S" {
		t.Errorf("Unexpected duration %v", res.Metadata[MetaDuration])
	}
}

func TestParse_DASHWithoutTitle(t *testing.T) {
	res := mustParse(t, `<MPD type="dynamic"></MPD>`, "https://a.com/live.mpd")
	if res.Title != "" {
		t.Errorf("Expected no title, got %q", res.Title)
	}
	if res.Metadata[MetaLive] != true {
		t.Error("Expected dynamic manifest to be live")
	}
}

func TestParse_Classification(t *testing.T) {
	docs := []struct {
		content string
		base    string
	}{
		{"#EXTM3U\n#EXT-X-STREAM-INF:BANDWIDTH=1\nlow.m3u8\n", "https://a.com/m.m3u8"},
		{"#EXTM3U\n#EXT-X-TARGETDURATION:4\n#EXTINF:4,\ns.ts\n", "https://a.com/i.m3u8"},
		{"<MPD></MPD>", "https://a.com/x.mpd"},
		{"#EXTM3U\na.mp4\nb.mp4\n", "https://a.com/p.m3u"},
		{"#EXTM3U\na.mp4\n", "https://a.com/p.m3u"},
		{"[playlist]\nFile1=a\nFile2=b\n", "https://a.com/p.pls"},
		{"FILE \"a.wav\" WAVE\nTRACK 01 AUDIO\nFILE \"b.wav\" WAVE\nTRACK 02 AUDIO\n", "https://a.com/c.cue"},
		{"", "https://a.com/empty"},
	}

	for _, d := range docs {
		res := mustParse(t, d.content, d.base)
		if res.IsAdaptiveStream() {
			if len(res.Items) != 0 || res.IsMultiVideo() {
				t.Errorf("%s: adaptive result with items or multi-video flag", res.Type)
			}
			continue
		}
		if len(res.Items) > 1 && !res.IsMultiVideo() {
			t.Errorf("%s: %d items but not multi-video", res.Type, len(res.Items))
		}
		if len(res.Items) <= 1 && res.IsMultiVideo() {
			t.Errorf("%s: %d items but multi-video", res.Type, len(res.Items))
		}
	}
}

func TestParseAs_UnknownFormat(t *testing.T) {
	if _, err := ParseAs(Format("bogus"), "", ""); err == nil {
		t.Fatal("Expected error for unknown format")
	}
}
