// Package source defines the media source reference handed to a player.
package source

import "fmt"

// Kind identifies where a Source lives.
type Kind int

const (
	// KindNetwork is a URL fetched over the network (or a file:// URL).
	KindNetwork Kind = iota
	// KindFile is a path on the local filesystem.
	KindFile
	// KindAsset is a path inside the application bundle.
	KindAsset
)

// String returns the lower-case kind name.
func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindFile:
		return "file"
	case KindAsset:
		return "asset"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalText encodes the kind as its name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Source is a single playable media reference.
// Playlist parsers only ever produce network sources: every resolved
// reference is treated as a URL, even when it started out as a relative path.
type Source struct {
	// Kind selects how Location is interpreted
	Kind Kind `json:"kind"`

	// Location is the URL for network sources, the path otherwise
	Location string `json:"location"`
}

// Network returns a network source for url.
func Network(url string) Source {
	return Source{Kind: KindNetwork, Location: url}
}

// File returns a local file source for path.
func File(path string) Source {
	return Source{Kind: KindFile, Location: path}
}

// Asset returns a bundled asset source for path.
func Asset(path string) Source {
	return Source{Kind: KindAsset, Location: path}
}

// String implements fmt.Stringer.
func (s Source) String() string {
	return s.Kind.String() + "(" + s.Location + ")"
}
