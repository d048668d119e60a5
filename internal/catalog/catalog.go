// Package catalog records which playlists have been ingested, either in
// memory on a single node or replicated across nodes with Raft.
package catalog

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/agleyzer/playlistkit/internal/playlist"
)

// ErrNotLeader is returned when a write reaches a Raft follower.
var ErrNotLeader = errors.New("not the cluster leader")

// Entry summarizes one ingested playlist.
type Entry struct {
	URL        string        `json:"url"`
	Type       playlist.Type `json:"type"`
	Title      string        `json:"title,omitempty"`
	Items      int           `json:"items"`
	Adaptive   bool          `json:"adaptive"`
	IngestedAt time.Time     `json:"ingestedAt"`
}

// NewEntry summarizes a parse result fetched from url.
func NewEntry(url string, res *playlist.Result, at time.Time) Entry {
	return Entry{
		URL:        url,
		Type:       res.Type,
		Title:      res.Title,
		Items:      len(res.Items),
		Adaptive:   res.IsAdaptiveStream(),
		IngestedAt: at.UTC(),
	}
}

// Store keeps catalog entries keyed by URL.
type Store interface {
	// Register adds or replaces the entry for e.URL.
	Register(e Entry) error
	// Remove deletes the entry for url. Removing an unknown URL is not an error.
	Remove(url string) error
	// Lookup returns the entry for url.
	Lookup(url string) (Entry, bool)
	// Entries returns all entries sorted by URL.
	Entries() []Entry
}

// Memory is a single-node Store.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemory returns an empty in-memory catalog.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]Entry)}
}

// Register implements Store.
func (m *Memory) Register(e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[e.URL] = e
	return nil
}

// Remove implements Store.
func (m *Memory) Remove(url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, url)
	return nil
}

// Lookup implements Store.
func (m *Memory) Lookup(url string) (Entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[url]
	return e, ok
}

// Entries implements Store.
func (m *Memory) Entries() []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedEntries(m.entries)
}

func sortedEntries(entries map[string]Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].URL < out[j].URL })
	return out
}
