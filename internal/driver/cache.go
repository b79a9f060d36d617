package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// cacheSchemaVersion gates payload compatibility; bump when BuildPayload
// changes shape.
const cacheSchemaVersion uint16 = 1

// Digest is a sha256 content hash.
type Digest [32]byte

// BuildPayload records what the last successful build of one output was
// made from, so an unchanged rebuild can be skipped entirely.
type BuildPayload struct {
	Schema uint16

	Triple string
	Debug  bool

	// Declarations in program order: canonical-form hashes keyed by name.
	DeclNames  []string
	DeclHashes []Digest

	// Hash of the emitted object file.
	ObjectHash Digest
}

// BuildCache stores build payloads on disk keyed by output path.
type BuildCache struct {
	mu  sync.Mutex
	dir string
}

// OpenBuildCache initializes the cache at the standard user location.
func OpenBuildCache(app string) (*BuildCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &BuildCache{dir: dir}, nil
}

// OpenBuildCacheAt initializes the cache rooted at an explicit directory.
func OpenBuildCacheAt(dir string) (*BuildCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &BuildCache{dir: dir}, nil
}

func (c *BuildCache) pathFor(outputPath string) string {
	key := sha256.Sum256([]byte(outputPath))
	return filepath.Join(c.dir, "builds", hex.EncodeToString(key[:])+".mp")
}

// Put serializes and atomically replaces the payload for one output.
func (c *BuildCache) Put(outputPath string, payload *BuildPayload) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(outputPath)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name()) //nolint:errcheck // gone after the rename on success

	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		f.Close() //nolint:errcheck,gosec // encode error wins
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads the payload for one output. A missing entry or a schema
// mismatch reports found=false, not an error.
func (c *BuildCache) Get(outputPath string) (*BuildPayload, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := os.Open(c.pathFor(outputPath))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close() //nolint:errcheck // read-only

	var payload BuildPayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return nil, false, fmt.Errorf("corrupt build cache entry: %w", err)
	}
	if payload.Schema != cacheSchemaVersion {
		return nil, false, nil
	}
	return &payload, true, nil
}

// Matches reports whether the payload describes exactly this build:
// same triple and profile, same declarations with same bodies, and an
// object file on disk whose content still hashes to the recorded value.
func (p *BuildPayload) Matches(triple string, debug bool, names []string, hashes []Digest, outputPath string) bool {
	if p == nil || p.Triple != triple || p.Debug != debug {
		return false
	}
	if len(p.DeclNames) != len(names) || len(p.DeclHashes) != len(hashes) {
		return false
	}
	for i := range names {
		if p.DeclNames[i] != names[i] || p.DeclHashes[i] != hashes[i] {
			return false
		}
	}
	obj, err := os.ReadFile(outputPath) // #nosec G304 -- configured output path
	if err != nil {
		return false
	}
	return sha256.Sum256(obj) == p.ObjectHash
}
