package cache_test

import (
	"path/filepath"
	"testing"

	"github.com/cinderforge/forge/internal/cache"
)

func TestInitThenLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, cache.Dir, cache.File)

	if cache.Exists(path) {
		t.Fatal("cache should not exist before Init")
	}
	if err := cache.Init(path, "build", "test"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if !cache.Exists(path) {
		t.Fatal("cache should exist after Init")
	}

	loaded, err := cache.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	digest, ok := loaded.Get("build")
	if !ok {
		t.Fatal("expected a placeholder entry for 'build'")
	}
	if digest != "" {
		t.Fatalf("placeholder digest should be empty, got %q", digest)
	}
}

func TestPutWriteLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache")
	c := cache.New()
	c.Put("build", "abc123")
	c.Put("test", "def456")
	if err := c.Write(path); err != nil {
		t.Fatalf("Write: %v", err)
	}

	loaded, err := cache.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	digest, ok := loaded.Get("build")
	if !ok || digest != "abc123" {
		t.Fatalf("Get(build) = %q, %v, want abc123, true", digest, ok)
	}
}

func TestGetMissingTask(t *testing.T) {
	c := cache.New()
	if _, ok := c.Get("nonexistent"); ok {
		t.Fatal("Get should report false for a task never Put")
	}
}
