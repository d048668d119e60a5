package catalog

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/hashicorp/raft"
)

func init() {
	// Register types for gob encoding/decoding
	gob.Register(RegisterCommand{})
	gob.Register(RemoveCommand{})
}

// CommandType identifies the type of Raft command.
type CommandType uint8

const (
	// CommandRegister adds or replaces a catalog entry.
	CommandRegister CommandType = 1
	// CommandRemove deletes a catalog entry.
	CommandRemove CommandType = 2
)

// Command represents a Raft log command.
type Command struct {
	Type CommandType
	Data any
}

// RegisterCommand adds or replaces the entry for Entry.URL.
type RegisterCommand struct {
	Entry Entry
}

// RemoveCommand deletes the entry for URL.
type RemoveCommand struct {
	URL string
}

// FSM implements the raft.FSM interface for the catalog.
type FSM struct {
	mu      sync.RWMutex
	entries map[string]Entry
	logger  *slog.Logger
}

// NewFSM creates an empty catalog FSM.
func NewFSM(logger *slog.Logger) *FSM {
	return &FSM{
		entries: make(map[string]Entry),
		logger:  logger,
	}
}

// Apply applies a Raft log entry to the FSM.
func (f *FSM) Apply(log *raft.Log) any {
	var cmd Command
	if err := gob.NewDecoder(bytes.NewReader(log.Data)).Decode(&cmd); err != nil {
		f.logger.Error("failed to decode command", "error", err)
		return fmt.Errorf("decode command: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	switch cmd.Type {
	case CommandRegister:
		reg, ok := cmd.Data.(RegisterCommand)
		if !ok {
			return fmt.Errorf("invalid register command data")
		}
		f.entries[reg.Entry.URL] = reg.Entry
		f.logger.Debug("registered playlist", "url", reg.Entry.URL, "type", reg.Entry.Type)
		return nil
	case CommandRemove:
		rm, ok := cmd.Data.(RemoveCommand)
		if !ok {
			return fmt.Errorf("invalid remove command data")
		}
		delete(f.entries, rm.URL)
		f.logger.Debug("removed playlist", "url", rm.URL)
		return nil
	default:
		f.logger.Error("unknown command type", "type", cmd.Type)
		return fmt.Errorf("unknown command type: %d", cmd.Type)
	}
}

// Snapshot returns an FSMSnapshot for creating a point-in-time snapshot.
func (f *FSM) Snapshot() (raft.FSMSnapshot, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return &fsmSnapshot{entries: copyEntries(f.entries)}, nil
}

// Restore restores the FSM state from a snapshot.
func (f *FSM) Restore(snapshot io.ReadCloser) error {
	defer snapshot.Close()

	entries := make(map[string]Entry)
	if err := gob.NewDecoder(snapshot).Decode(&entries); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}

	f.mu.Lock()
	f.entries = entries
	f.mu.Unlock()

	f.logger.Info("restored catalog from snapshot", "entries", len(entries))
	return nil
}

// Lookup returns the entry for url.
func (f *FSM) Lookup(url string) (Entry, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	e, ok := f.entries[url]
	return e, ok
}

// Entries returns all entries sorted by URL.
func (f *FSM) Entries() []Entry {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return sortedEntries(f.entries)
}

func copyEntries(src map[string]Entry) map[string]Entry {
	dst := make(map[string]Entry, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// fsmSnapshot implements raft.FSMSnapshot.
type fsmSnapshot struct {
	entries map[string]Entry
}

// Persist writes the snapshot to the given sink.
func (s *fsmSnapshot) Persist(sink raft.SnapshotSink) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s.entries); err != nil {
		sink.Cancel()
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if _, err := sink.Write(buf.Bytes()); err != nil {
		sink.Cancel()
		return fmt.Errorf("write snapshot: %w", err)
	}

	return sink.Close()
}

// Release releases any resources held by the snapshot.
func (s *fsmSnapshot) Release() {}

// EncodeCommand encodes a command for Raft submission.
func EncodeCommand(cmd Command) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(cmd); err != nil {
		return nil, fmt.Errorf("encode command: %w", err)
	}
	return buf.Bytes(), nil
}
