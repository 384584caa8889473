// Package settings reads forge's persistent CLI defaults from a TOML
// file (conventionally .forge.toml in the project root or
// $HOME/.config/forge/settings.toml), the same role the teacher's
// spokfile discovery plays for task definitions but for CLI-wide knobs
// instead of tasks.
package settings

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Settings is forge's persistent configuration, decoded straight from
// TOML via struct tags.
type Settings struct {
	// Workers is the executor pool size forge run uses. Zero means
	// runtime.NumCPU(), matching the teacher's hash.Concurrent
	// worker-count heuristic.
	Workers int `toml:"workers"`
	// Verbose enables debug-level logging.
	Verbose bool `toml:"verbose"`
	// CacheDir is decoded from cache_dir but not consulted: internal/cache
	// always stores its task-hash records under the forgefile's
	// directory (cache.Path).
	CacheDir string `toml:"cache_dir"`
	// DefaultRangeMode is one of "SameDefaultLevel", "SameRealLevel",
	// or "IndividualRealLevel" (internal/version.Mode). It is decoded
	// but not consulted: `forge range` always renders with
	// IndividualRealLevel and has no --mode flag.
	DefaultRangeMode string `toml:"default_range_mode"`
}

// Default returns the zero-configuration Settings forge falls back to
// when no settings file exists.
func Default() Settings {
	return Settings{
		Workers:          0,
		Verbose:          false,
		CacheDir:         "",
		DefaultRangeMode: "IndividualRealLevel",
	}
}

// Load reads and decodes the TOML settings file at path. A missing file
// is not an error — Load returns Default() so a fresh checkout works
// with zero configuration, matching the teacher's treat-missing-spokfile-
// config-as-empty convention.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Settings{}, fmt.Errorf("settings: reading %s: %w", path, err)
	}

	s := Default()
	if err := toml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("settings: parsing %s: %w", path, err)
	}
	return s, nil
}

// Save encodes s as TOML and writes it to path, creating or truncating
// the file.
func Save(path string, s Settings) error {
	data, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("settings: encoding: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("settings: writing %s: %w", path, err)
	}
	return nil
}
