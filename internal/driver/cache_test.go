package driver

import (
	"crypto/sha256"
	"os"
	"path/filepath"
	"testing"
)

func testPayload(objectHash Digest) *BuildPayload {
	return &BuildPayload{
		Schema:     cacheSchemaVersion,
		Triple:     "x86_64-unknown-linux-gnu",
		Debug:      true,
		DeclNames:  []string{"exit", "main"},
		DeclHashes: []Digest{sha256.Sum256([]byte("exit")), sha256.Sum256([]byte("main"))},
		ObjectHash: objectHash,
	}
}

func TestBuildCacheRoundTrip(t *testing.T) {
	cache, err := OpenBuildCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("OpenBuildCacheAt failed: %v", err)
	}

	want := testPayload(sha256.Sum256([]byte("object")))
	if err := cache.Put("/tmp/out.o", want); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, found, err := cache.Get("/tmp/out.o")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !found {
		t.Fatal("entry not found after Put")
	}
	if got.Triple != want.Triple || got.Debug != want.Debug {
		t.Errorf("payload mismatch: got %+v", got)
	}
	if len(got.DeclNames) != 2 || got.DeclNames[1] != "main" {
		t.Errorf("decl names not preserved: %v", got.DeclNames)
	}
	if got.DeclHashes[0] != want.DeclHashes[0] || got.ObjectHash != want.ObjectHash {
		t.Error("hashes not preserved")
	}
}

func TestBuildCacheMissingEntry(t *testing.T) {
	cache, err := OpenBuildCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("OpenBuildCacheAt failed: %v", err)
	}
	_, found, err := cache.Get("/never/built.o")
	if err != nil {
		t.Fatalf("Get on miss must not error: %v", err)
	}
	if found {
		t.Error("found an entry that was never stored")
	}
}

func TestBuildCacheSchemaMismatch(t *testing.T) {
	cache, err := OpenBuildCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("OpenBuildCacheAt failed: %v", err)
	}

	stale := testPayload(Digest{})
	stale.Schema = cacheSchemaVersion + 1
	if err := cache.Put("/tmp/out.o", stale); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	_, found, err := cache.Get("/tmp/out.o")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if found {
		t.Error("payload with a foreign schema must be treated as a miss")
	}
}

func TestBuildCacheKeysAreIndependent(t *testing.T) {
	cache, err := OpenBuildCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("OpenBuildCacheAt failed: %v", err)
	}
	a := testPayload(sha256.Sum256([]byte("a")))
	b := testPayload(sha256.Sum256([]byte("b")))
	if err := cache.Put("/tmp/a.o", a); err != nil {
		t.Fatalf("Put a failed: %v", err)
	}
	if err := cache.Put("/tmp/b.o", b); err != nil {
		t.Fatalf("Put b failed: %v", err)
	}
	got, found, err := cache.Get("/tmp/a.o")
	if err != nil || !found {
		t.Fatalf("Get a: found=%v err=%v", found, err)
	}
	if got.ObjectHash != a.ObjectHash {
		t.Error("entry for a was overwritten by b")
	}
}

func TestPayloadMatches(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.o")
	object := []byte("relocatable bytes")
	if err := os.WriteFile(out, object, 0o644); err != nil {
		t.Fatal(err)
	}

	names := []string{"exit", "main"}
	hashes := []Digest{sha256.Sum256([]byte("exit")), sha256.Sum256([]byte("main"))}
	p := testPayload(sha256.Sum256(object))

	if !p.Matches("x86_64-unknown-linux-gnu", true, names, hashes, out) {
		t.Error("identical build does not match")
	}
	if p.Matches("aarch64-unknown-linux-gnu", true, names, hashes, out) {
		t.Error("different triple must not match")
	}
	if p.Matches("x86_64-unknown-linux-gnu", false, names, hashes, out) {
		t.Error("different profile must not match")
	}
	if p.Matches("x86_64-unknown-linux-gnu", true, names[:1], hashes[:1], out) {
		t.Error("dropped declaration must not match")
	}

	changed := []Digest{hashes[0], sha256.Sum256([]byte("main v2"))}
	if p.Matches("x86_64-unknown-linux-gnu", true, names, changed, out) {
		t.Error("changed declaration body must not match")
	}

	if err := os.WriteFile(out, []byte("tampered"), 0o644); err != nil {
		t.Fatal(err)
	}
	if p.Matches("x86_64-unknown-linux-gnu", true, names, hashes, out) {
		t.Error("rewritten object file must not match")
	}

	if err := os.Remove(out); err != nil {
		t.Fatal(err)
	}
	if p.Matches("x86_64-unknown-linux-gnu", true, names, hashes, out) {
		t.Error("missing object file must not match")
	}

	var nilPayload *BuildPayload
	if nilPayload.Matches("x86_64-unknown-linux-gnu", true, names, hashes, out) {
		t.Error("nil payload must not match")
	}
}
