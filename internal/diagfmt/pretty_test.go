package diagfmt

import (
	"strings"
	"testing"

	"lumen/internal/diag"
	"lumen/internal/source"
)

func fixture(t *testing.T) (*source.FileSet, source.Span) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.Add("main.lir", []byte("fn @main() bool {\n  ret %nope\n}\n"))
	// Span of "%nope" on line 2.
	return fs, source.Span{File: id, Start: 24, End: 29}
}

func TestPrettyHeaderLine(t *testing.T) {
	fs, span := fixture(t)
	bag := diag.NewBag(8)
	bag.Add(diag.NewError(diag.IRUnknownValue, span, "use of undefined value %nope"))

	var b strings.Builder
	Pretty(&b, bag, fs, PrettyOpts{})

	got := b.String()
	want := "main.lir:2:7: ERROR LM1004: use of undefined value %nope\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPrettyContextUnderline(t *testing.T) {
	fs, span := fixture(t)
	bag := diag.NewBag(8)
	bag.Add(diag.NewError(diag.IRUnknownValue, span, "use of undefined value %nope"))

	var b strings.Builder
	Pretty(&b, bag, fs, PrettyOpts{Context: true})

	lines := strings.Split(b.String(), "\n")
	if len(lines) < 3 {
		t.Fatalf("expected header, source and underline lines, got %q", b.String())
	}
	if lines[1] != "    ret %nope" {
		t.Errorf("source line = %q", lines[1])
	}
	if lines[2] != "        ^~~~~" {
		t.Errorf("underline = %q", lines[2])
	}
}

func TestPrettyNotes(t *testing.T) {
	fs, span := fixture(t)
	bag := diag.NewBag(8)
	d := diag.NewError(diag.IRUnknownValue, span, "use of undefined value %nope")
	d = d.WithNote(source.Span{File: span.File, Start: 0, End: 2}, "inside this function")
	bag.Add(d)

	var b strings.Builder
	Pretty(&b, bag, fs, PrettyOpts{})

	if !strings.Contains(b.String(), "note: main.lir:1:1: inside this function") {
		t.Errorf("note missing from output:\n%s", b.String())
	}
}

func TestPrettySeverities(t *testing.T) {
	fs, span := fixture(t)
	bag := diag.NewBag(8)
	bag.Add(diag.New(diag.SevWarning, diag.GenInfo, span, "shadowed"))
	bag.Add(diag.NewInternal(diag.GenVerificationError, span, "module failed verification"))

	var b strings.Builder
	Pretty(&b, bag, fs, PrettyOpts{})

	out := b.String()
	if !strings.Contains(out, "WARNING LM7000") {
		t.Errorf("warning severity missing:\n%s", out)
	}
	if !strings.Contains(out, "INTERNAL LM7101") {
		t.Errorf("internal severity missing:\n%s", out)
	}
}

func TestPrettyWithoutFileSet(t *testing.T) {
	_, span := fixture(t)
	bag := diag.NewBag(8)
	bag.Add(diag.NewError(diag.IRBadType, span, "unknown type"))

	var b strings.Builder
	Pretty(&b, bag, nil, PrettyOpts{Context: true})

	out := b.String()
	if !strings.Contains(out, "ERROR LM1002: unknown type") {
		t.Errorf("diagnostic not rendered without a file set:\n%s", out)
	}
}

func TestUnderlineClampsToLine(t *testing.T) {
	cases := []struct {
		name string
		line string
		col  uint32
		len  uint32
		want string
	}{
		{"start", "ret %v", 1, 3, "^~~"},
		{"middle", "ret %v", 5, 2, "    ^~"},
		{"zero length", "ret %v", 5, 0, "    ^"},
		{"past end", "ret", 10, 4, "   ^"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := underline(tc.line, tc.col, tc.len); got != tc.want {
				t.Errorf("underline(%q, %d, %d) = %q, want %q", tc.line, tc.col, tc.len, got, tc.want)
			}
		})
	}
}
