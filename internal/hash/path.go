package hash

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// FileSet is a Hasher (in the teacher's sense: something capable of
// folding a list of filepaths into one digest) backed by
// StrongFileHash. It is what internal/task and internal/runner use to
// turn a task's file dependencies into the cache-comparison digest,
// replacing the teacher's plain SHA-1 path concatenation
// (task.HashFiles) with the framed, collision-resistant composition
// from spec.md §4.1.
type FileSet struct {
	// Blake2b selects the blake2b+sha3 alternative instead of
	// StrongFileHash (the default, false).
	Blake2b bool
}

// Hash opens each file in turn, in sorted filepath order (so the digest
// does not depend on the order of files), and folds each file's digest
// followed by its path into one summary digest, so a rename of any
// dependency counts as a change.
func (f FileSet) Hash(files []string) (string, error) {
	sorted := append([]string(nil), files...)
	sort.Strings(sorted)

	var sb strings.Builder
	for _, path := range sorted {
		digest, err := f.hashOne(path)
		if err != nil {
			return "", fmt.Errorf("hash: could not hash %s: %w", path, err)
		}
		sb.WriteString(digest)
		sb.WriteString(path)
	}
	return Digest(SHA3_256, []byte(sb.String())), nil
}

func (f FileSet) hashOne(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return Digest(SHA3_256, []byte(path)), nil
	}

	if f.Blake2b {
		return StrongFileHashBlake2b(file, info.Size(), DefaultBlockSize)
	}
	return StrongFileHash(file, info.Size(), DefaultBlockSize)
}

// Always is a Hasher that always returns a constant "DIFFERENT" digest,
// for forcing a task to re-run regardless of dependency state (spok's
// `--force`), preserved verbatim in spirit from the teacher's
// hash.AlwaysRun.
type Always struct{}

// ALWAYS is the cache-comparison sentinel value that Always never
// equals, guaranteeing a perpetual cache miss.
const ALWAYS = "ALWAYS"

func (Always) Hash(_ []string) (string, error) {
	return "DIFFERENT", nil
}
