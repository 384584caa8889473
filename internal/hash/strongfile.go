package hash

import (
	"fmt"
	"io"
	"runtime"
	"strconv"
	"strings"
	"sync"
)

// DefaultBlockSize is the fixed block size StrongFileHash reads a file
// in, chosen to be large enough to amortize per-block goroutine
// overhead while still giving the concurrent block hasher plenty of
// blocks to parallelize over for any file of a few hundred KB or more.
const DefaultBlockSize = 64 * 1024

// blake2bSha3Prefix tags the output of the alternative blake2b+sha3
// variant so callers can reject/accept a digest by its prefix without
// recomputing anything (spec.md §4.1).
const blake2bSha3Prefix = "3_2$"

// ByteSource is the minimal collaborator interface StrongFileHash reads
// blocks through (spec.md §6, "a byte-source reader for the strong-hash
// composer"). *os.File satisfies it directly.
type ByteSource interface {
	io.ReaderAt
}

// blockResult is one worker's outcome for a single block, carrying its
// index so results can be reassembled in file order regardless of which
// worker finished first — unlike the teacher's hash.Concurrent, whose
// final digest is order-independent by design (it sorts by content),
// StrongFileHash's framing is positional and must preserve block order.
type blockResult struct {
	index int
	frame string
	err   error
}

// variant selects which pair of per-block digest algorithms
// StrongFileHash frames together, and which of the two folds the final
// digest (always the second, "fold", algorithm of the pair).
type variant struct {
	first  Algorithm
	fold   Algorithm
	prefix string
}

var (
	strongVariant = variant{first: SHA256, fold: SHA3_256}
	blake2Variant = variant{first: SHA3_256, fold: BLAKE2b_512, prefix: blake2bSha3Prefix}
)

// StrongFileHash computes forge's strong file hash over src, which has
// the given total size in bytes. Blocks are read and digested
// concurrently (grounded on the teacher's hash.Concurrent worker pool),
// then reassembled in block order before framing. Each block is hashed
// together with its own decimal byte length (binding block boundaries
// so a truncated or re-chunked read can never collide with a
// differently-shaped one), the per-block digest pairs are concatenated
// in block order, the total byte size is appended once more, and the
// result is folded with SHA-3-256:
//
//	frame_i  = SHA256(block_i || len(block_i)) || SHA3-256(block_i || len(block_i))
//	digest   = SHA3-256(frame_0 || frame_1 || ... || len(file))
//
// An empty file (size == 0) is a single phantom zero-length block, which
// collapses to SHA3-256(SHA256("0") || SHA3-256("0") || "0") — still a
// deterministic, non-empty digest.
func StrongFileHash(src ByteSource, size int64, blockSize int) (string, error) {
	return hashWithVariant(src, size, blockSize, strongVariant)
}

// StrongFileHashBlake2b is the "blake2b+sha3" alternative variant: each
// block is framed as SHA-3-256 || BLAKE2b-512 instead of SHA-256 ||
// SHA-3-256, the result is folded with BLAKE2b-512 instead of
// SHA-3-256, and the final digest is prefixed with "3_2$".
func StrongFileHashBlake2b(src ByteSource, size int64, blockSize int) (string, error) {
	return hashWithVariant(src, size, blockSize, blake2Variant)
}

func hashWithVariant(src ByteSource, size int64, blockSize int, v variant) (string, error) {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}

	// An empty file still frames exactly one (zero-length) block, so
	// size==0 && blockSize>0 yields nBlocks==1 rather than 0, matching
	// the documented empty-input behavior.
	nBlocks := 1
	if size > 0 {
		nBlocks = int(size / int64(blockSize))
		if size%int64(blockSize) != 0 {
			nBlocks++
		}
	}

	frames, err := hashBlocksConcurrently(src, size, blockSize, nBlocks, v)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, f := range frames {
		sb.WriteString(f)
	}
	sb.WriteString(strconv.FormatInt(size, 10))

	digest := Digest(v.fold, []byte(sb.String()))
	return v.prefix + digest, nil
}

// hashBlocksConcurrently reads and digests nBlocks blocks of src in
// parallel, using a bounded goroutine pool exactly like the teacher's
// hash.Concurrent.Hash: nWorkers is min(NumCPU, nBlocks) so a small file
// never spins up more workers than it has blocks.
func hashBlocksConcurrently(src ByteSource, size int64, blockSize, nBlocks int, v variant) ([]string, error) {
	jobs := make(chan int)
	results := make(chan blockResult)

	nWorkers := runtime.NumCPU()
	if nBlocks < nWorkers {
		nWorkers = nBlocks
	}
	if nWorkers < 1 {
		nWorkers = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < nWorkers; i++ {
		wg.Add(1)
		go blockWorker(src, blockSize, size, v, jobs, results, &wg)
	}

	go func() {
		for i := 0; i < nBlocks; i++ {
			jobs <- i
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	frames := make([]string, nBlocks)
	var firstErr error
	for r := range results {
		if r.err != nil && firstErr == nil {
			firstErr = fmt.Errorf("strong file hash: block %d: %w", r.index, r.err)
			continue
		}
		frames[r.index] = r.frame
	}
	if firstErr != nil {
		return nil, firstErr
	}

	return frames, nil
}

func blockWorker(src ByteSource, blockSize int, size int64, v variant, jobs <-chan int, results chan<- blockResult, wg *sync.WaitGroup) {
	defer wg.Done()
	buf := make([]byte, blockSize)
	for idx := range jobs {
		offset := int64(idx) * int64(blockSize)
		n := blockSize
		if remaining := size - offset; remaining < int64(blockSize) {
			n = int(remaining)
		}
		if n < 0 {
			n = 0
		}

		block := buf[:n]
		if n > 0 {
			if _, err := src.ReadAt(block, offset); err != nil && err != io.EOF {
				results <- blockResult{index: idx, err: err}
				continue
			}
		}

		withLen := append(append([]byte(nil), block...), []byte(strconv.Itoa(len(block)))...)
		first := Digest(v.first, withLen)
		fold := Digest(v.fold, withLen)
		results <- blockResult{index: idx, frame: first + fold}
	}
}

// StripVariantPrefix reports whether digest carries the blake2b+sha3
// variant tag and, if so, returns the digest with the tag removed.
func StripVariantPrefix(digest string) (stripped string, isBlake2bSha3 bool) {
	if strings.HasPrefix(digest, blake2bSha3Prefix) {
		return strings.TrimPrefix(digest, blake2bSha3Prefix), true
	}
	return digest, false
}
