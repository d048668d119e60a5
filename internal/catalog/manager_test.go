package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/agleyzer/playlistkit/internal/playlist"
)

func TestManager_NewManager(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name: "valid config",
			config: Config{
				RaftID:   "node1",
				BindAddr: "127.0.0.1:9000",
				Peers:    []string{"127.0.0.1:9000"},
			},
			wantErr: false,
		},
		{
			name: "missing raft-id",
			config: Config{
				BindAddr: "127.0.0.1:9000",
				Peers:    []string{"127.0.0.1:9000"},
			},
			wantErr: true,
		},
		{
			name: "missing bind-addr",
			config: Config{
				RaftID: "node1",
				Peers:  []string{"127.0.0.1:9000"},
			},
			wantErr: true,
		},
		{
			name: "missing peers",
			config: Config{
				RaftID:   "node1",
				BindAddr: "127.0.0.1:9000",
			},
			wantErr: true,
		},
		{
			name: "invalid bind-addr",
			config: Config{
				RaftID:   "node1",
				BindAddr: "invalid",
				Peers:    []string{"127.0.0.1:9000"},
			},
			wantErr: true,
		},
		{
			name: "invalid peer",
			config: Config{
				RaftID:   "node1",
				BindAddr: "127.0.0.1:9000",
				Peers:    []string{"127.0.0.1:9000", "nope"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewManager(tt.config, logger)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewManager() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Defaults(t *testing.T) {
	c := Config{RaftID: "n", BindAddr: "127.0.0.1:9000", Peers: []string{"127.0.0.1:9000"}}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if c.ApplyTimeout != 5*time.Second || c.RaftLogLevel != "off" || c.SnapshotThreshold != 8192 {
		t.Errorf("Unexpected defaults %+v", c)
	}
}

func TestManager_NotStarted(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	manager, err := NewManager(Config{
		RaftID:   "node1",
		BindAddr: "127.0.0.1:9000",
		Peers:    []string{"127.0.0.1:9000"},
	}, logger)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	if manager.State() != "NotStarted" {
		t.Errorf("State() = %s, want NotStarted", manager.State())
	}
	if manager.IsLeader() {
		t.Error("Unstarted manager should not be leader")
	}
	if err := manager.Register(Entry{URL: "x"}); err == nil {
		t.Error("Expected error registering on unstarted manager")
	}
}

func TestManager_RegisterAndRemove(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	manager := createTestCluster(t, logger, 1, 21000)[0]
	defer manager.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := manager.WaitForLeader(ctx); err != nil {
		t.Fatalf("WaitForLeader() error = %v", err)
	}

	// leadership may take a moment after the leader address is known
	deadline := time.Now().Add(5 * time.Second)
	for !manager.IsLeader() && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}

	entry := Entry{URL: "https://a.com/list.pls", Type: playlist.PLS, Items: 2}
	if err := manager.Register(entry); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	got, ok := manager.Lookup(entry.URL)
	if !ok || got.Items != 2 {
		t.Fatalf("Lookup() = %+v, %v", got, ok)
	}

	if err := manager.Remove(entry.URL); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if len(manager.Entries()) != 0 {
		t.Errorf("Expected empty catalog, got %v", manager.Entries())
	}
}

func TestManager_FollowerRejectsWrites(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	managers := createTestCluster(t, logger, 3, 21100)
	defer func() {
		for _, m := range managers {
			m.Shutdown()
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var leader *Manager
	for leader == nil {
		if ctx.Err() != nil {
			t.Fatal("no leader elected")
		}
		for _, m := range managers {
			if m.IsLeader() {
				leader = m
			}
		}
		time.Sleep(100 * time.Millisecond)
	}

	entry := Entry{URL: "https://a.com/master.m3u8", Type: playlist.HLSMaster, Adaptive: true}
	if err := leader.Register(entry); err != nil {
		t.Fatalf("Register() on leader error = %v", err)
	}

	for _, m := range managers {
		if m == leader {
			continue
		}

		if err := m.Register(Entry{URL: "https://a.com/other.pls"}); !errors.Is(err, ErrNotLeader) {
			t.Errorf("Register() on follower error = %v, want ErrNotLeader", err)
		}

		// followers converge on the leader's writes
		deadline := time.Now().Add(5 * time.Second)
		for time.Now().Before(deadline) {
			if _, ok := m.Lookup(entry.URL); ok {
				break
			}
			time.Sleep(50 * time.Millisecond)
		}
		if _, ok := m.Lookup(entry.URL); !ok {
			t.Errorf("follower %s did not replicate entry", m.NodeID())
		}
	}
}

// createTestCluster creates a test cluster with the specified number of nodes.
func createTestCluster(t *testing.T, logger *slog.Logger, nodeCount, basePort int) []*Manager {
	t.Helper()

	peers := make([]string, nodeCount)
	for i := 0; i < nodeCount; i++ {
		peers[i] = fmt.Sprintf("127.0.0.1:%d", basePort+i)
	}

	managers := make([]*Manager, nodeCount)
	for i := 0; i < nodeCount; i++ {
		config := Config{
			RaftID:            peers[i],
			BindAddr:          peers[i],
			Peers:             peers,
			HeartbeatTimeout:  100 * time.Millisecond,
			ElectionTimeout:   100 * time.Millisecond,
			SnapshotInterval:  1 * time.Hour,
			SnapshotThreshold: 10000,
		}

		manager, err := NewManager(config, logger)
		if err != nil {
			t.Fatalf("NewManager() error = %v", err)
		}

		if err := manager.Start(context.Background()); err != nil {
			t.Fatalf("Start() error = %v", err)
		}

		managers[i] = manager
	}

	return managers
}
