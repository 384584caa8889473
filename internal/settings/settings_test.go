package settings_test

import (
	"path/filepath"
	"testing"

	"github.com/cinderforge/forge/internal/settings"
)

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.toml")
	got, err := settings.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != settings.Default() {
		t.Fatalf("Load of a missing file = %+v, want %+v", got, settings.Default())
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	want := settings.Settings{
		Workers:          4,
		Verbose:          true,
		CacheDir:         "/tmp/forge-cache",
		DefaultRangeMode: "SameRealLevel",
	}
	if err := settings.Save(path, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := settings.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != want {
		t.Fatalf("round trip = %+v, want %+v", got, want)
	}
}
