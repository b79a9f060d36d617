package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFull(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[package]
name = "demo"

[build]
target = "aarch64-linux-musl"
profile = "release"
output = "demo.o"
`)

	m, ok, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !ok {
		t.Fatal("manifest not found")
	}
	if m.Root != dir {
		t.Errorf("root = %q, want %q", m.Root, dir)
	}
	if m.Config.Package.Name != "demo" {
		t.Errorf("package name = %q", m.Config.Package.Name)
	}
	if m.Config.Build.Target != "aarch64-linux-musl" ||
		m.Config.Build.Profile != "release" ||
		m.Config.Build.Output != "demo.o" {
		t.Errorf("build section = %+v", m.Config.Build)
	}
}

func TestLoadDefaultsProfile(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "[package]\nname = \"demo\"\n")

	m, ok, err := Load(dir)
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if m.Config.Build.Profile != "debug" {
		t.Errorf("default profile = %q, want debug", m.Config.Build.Profile)
	}
}

func TestLoadMissingPackageName(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "[build]\nprofile = \"debug\"\n")

	_, _, err := Load(dir)
	if !errors.Is(err, ErrPackageSectionMissing) {
		t.Fatalf("want ErrPackageSectionMissing, got %v", err)
	}
}

func TestFindWalksUpward(t *testing.T) {
	root := t.TempDir()
	want := writeManifest(t, root, "[package]\nname = \"demo\"\n")
	nested := filepath.Join(root, "src", "deep")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	got, ok, err := Find(nested)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if !ok {
		t.Fatal("manifest above the start directory not found")
	}
	if got != want {
		t.Errorf("found %q, want %q", got, want)
	}
}

func TestFindNotFound(t *testing.T) {
	_, ok, err := Find(t.TempDir())
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if ok {
		t.Error("found a manifest in an empty tree")
	}
}

func TestLoadNotFoundIsNotAnError(t *testing.T) {
	m, ok, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("absent manifest must not error: %v", err)
	}
	if ok || m != nil {
		t.Error("absent manifest reported as found")
	}
}
