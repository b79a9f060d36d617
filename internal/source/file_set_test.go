package source_test

import (
	"os"
	"path/filepath"
	"testing"

	"lumen/internal/source"
)

func TestResolveLineCol(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.Add("test.lir", []byte("first\nsecond\nthird"))

	tests := []struct {
		name  string
		off   uint32
		wantL uint32
		wantC uint32
	}{
		{"start_of_file", 0, 1, 1},
		{"middle_of_first", 3, 1, 4},
		{"start_of_second", 6, 2, 1},
		{"middle_of_second", 9, 2, 4},
		{"start_of_third", 13, 3, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, _ := fs.Resolve(source.Span{File: id, Start: tt.off, End: tt.off})
			if start.Line != tt.wantL || start.Col != tt.wantC {
				t.Errorf("offset %d resolved to %d:%d, want %d:%d",
					tt.off, start.Line, start.Col, tt.wantL, tt.wantC)
			}
		})
	}
}

func TestFileLine(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.Add("test.lir", []byte("first\nsecond\nthird"))
	f := fs.Get(id)

	tests := []struct {
		num  uint32
		want string
	}{
		{0, ""},
		{1, "first"},
		{2, "second"},
		{3, "third"},
		{4, ""},
	}
	for _, tt := range tests {
		if got := f.Line(tt.num); got != tt.want {
			t.Errorf("Line(%d) = %q, want %q", tt.num, got, tt.want)
		}
	}
}

func TestLoadNormalizesCRLF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.lir")
	if err := os.WriteFile(path, []byte("a\r\nb\r\nc"), 0o600); err != nil {
		t.Fatal(err)
	}

	fs := source.NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	f := fs.Get(id)
	if string(f.Content) != "a\nb\nc" {
		t.Errorf("content not normalized: %q", f.Content)
	}
	if f.Line(2) != "b" {
		t.Errorf("Line(2) = %q, want %q", f.Line(2), "b")
	}
}

func TestLookup(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.Add("dir/../test.lir", []byte("x"))

	got, ok := fs.Lookup("test.lir")
	if !ok || got != id {
		t.Fatalf("Lookup after path normalization: got (%v,%t), want (%v,true)", got, ok, id)
	}
	if _, ok := fs.Lookup("missing.lir"); ok {
		t.Error("Lookup of unknown path must report false")
	}
}
