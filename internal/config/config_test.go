package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("PLAYLISTKIT_TEST_STR", "value")
	t.Setenv("PLAYLISTKIT_TEST_INT", "42")
	t.Setenv("PLAYLISTKIT_TEST_BAD_INT", "forty")
	t.Setenv("PLAYLISTKIT_TEST_BOOL", "true")
	t.Setenv("PLAYLISTKIT_TEST_DUR", "15s")
	t.Setenv("PLAYLISTKIT_TEST_LIST", "a:1, b:2,,c:3 ")

	if got := GetEnv("PLAYLISTKIT_TEST_STR", "x"); got != "value" {
		t.Errorf("GetEnv() = %q", got)
	}
	if got := GetEnv("PLAYLISTKIT_TEST_UNSET", "x"); got != "x" {
		t.Errorf("GetEnv() fallback = %q", got)
	}
	if got := GetEnvInt("PLAYLISTKIT_TEST_INT", 1); got != 42 {
		t.Errorf("GetEnvInt() = %d", got)
	}
	if got := GetEnvInt("PLAYLISTKIT_TEST_BAD_INT", 1); got != 1 {
		t.Errorf("GetEnvInt() fallback = %d", got)
	}
	if got := GetEnvBool("PLAYLISTKIT_TEST_BOOL", false); !got {
		t.Error("GetEnvBool() = false")
	}
	if got := GetEnvDuration("PLAYLISTKIT_TEST_DUR", time.Second); got != 15*time.Second {
		t.Errorf("GetEnvDuration() = %s", got)
	}

	list := GetEnvList("PLAYLISTKIT_TEST_LIST")
	if len(list) != 3 || list[0] != "a:1" || list[1] != "b:2" || list[2] != "c:3" {
		t.Errorf("GetEnvList() = %v", list)
	}
	if got := GetEnvList("PLAYLISTKIT_TEST_UNSET"); len(got) != 0 {
		t.Errorf("GetEnvList() on unset = %v", got)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("PLAYLISTKIT_TEST_FROM_FILE=loaded\n"), 0644); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	t.Setenv("PLAYLISTKIT_TEST_FROM_FILE", "")
	os.Unsetenv("PLAYLISTKIT_TEST_FROM_FILE")

	if err := Load(path); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := os.Getenv("PLAYLISTKIT_TEST_FROM_FILE"); got != "loaded" {
		t.Errorf("Expected variable from file, got %q", got)
	}

	if err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Error("Expected error for missing file")
	}
}
