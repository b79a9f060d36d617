// Package diagfmt renders diagnostic bags for humans.
package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"lumen/internal/diag"
	"lumen/internal/source"
)

// PrettyOpts configures rendering.
type PrettyOpts struct {
	Color bool
	// Context prints the offending source line with an underline.
	Context bool
}

var (
	errColor      = color.New(color.FgRed, color.Bold)
	warnColor     = color.New(color.FgYellow, color.Bold)
	infoColor     = color.New(color.FgCyan)
	internalColor = color.New(color.FgMagenta, color.Bold)
	posColor      = color.New(color.Bold)
)

// Pretty writes each diagnostic as
//
//	<path>:<line>:<col>: <SEV> <CODE>: <message>
//
// followed, when Context is set, by the source line and a ^~~~ underline
// covering the span. Call bag.Sort() first for deterministic order.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	if w == nil || bag == nil {
		return
	}
	for _, d := range bag.Items() {
		writeOne(w, d, fs, opts)
	}
}

func writeOne(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	sev := severityText(d.Severity, opts.Color)
	pos, line, lc := locate(fs, d.Primary)

	fmt.Fprintf(w, "%s: %s %s: %s\n", maybeColor(posColor, pos, opts.Color), sev, d.Code, d.Message)
	if opts.Context && line != "" {
		fmt.Fprintf(w, "  %s\n", line)
		fmt.Fprintf(w, "  %s\n", underline(line, lc.Col, d.Primary.Len()))
	}
	for _, n := range d.Notes {
		npos, _, _ := locate(fs, n.Span)
		fmt.Fprintf(w, "  note: %s: %s\n", npos, n.Msg)
	}
}

func locate(fs *source.FileSet, span source.Span) (pos, line string, lc source.LineCol) {
	if fs == nil || fs.Len() == 0 {
		return span.String(), "", source.LineCol{Line: 1, Col: 1}
	}
	f := fs.Get(span.File)
	start, _ := fs.Resolve(span)
	return fmt.Sprintf("%s:%d:%d", f.Path, start.Line, start.Col), f.Line(start.Line), start
}

func underline(line string, col, length uint32) string {
	if col < 1 {
		col = 1
	}
	pad := int(col) - 1
	if pad > len(line) {
		pad = len(line)
	}
	n := int(length)
	if n < 1 {
		n = 1
	}
	if pad+n > len(line)+1 {
		n = len(line) + 1 - pad
		if n < 1 {
			n = 1
		}
	}
	return strings.Repeat(" ", pad) + "^" + strings.Repeat("~", n-1)
}

func severityText(sev diag.Severity, colored bool) string {
	var c *color.Color
	switch sev {
	case diag.SevError:
		c = errColor
	case diag.SevWarning:
		c = warnColor
	case diag.SevInternal:
		c = internalColor
	default:
		c = infoColor
	}
	return maybeColor(c, sev.String(), colored)
}

func maybeColor(c *color.Color, s string, colored bool) string {
	if !colored {
		return s
	}
	return c.Sprint(s)
}
