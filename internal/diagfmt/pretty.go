package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"weave/internal/diag"
	"weave/internal/source"
)

type palette struct {
	sev   map[diag.Severity]*color.Color
	path  *color.Color
	caret map[diag.Severity]*color.Color
	note  *color.Color
	help  *color.Color
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		sev: map[diag.Severity]*color.Color{
			diag.SevError:   mk(color.FgRed, color.Bold),
			diag.SevWarning: mk(color.FgYellow, color.Bold),
			diag.SevInfo:    mk(color.FgCyan, color.Bold),
		},
		caret: map[diag.Severity]*color.Color{
			diag.SevError:   mk(color.FgRed),
			diag.SevWarning: mk(color.FgYellow),
			diag.SevInfo:    mk(color.FgCyan),
		},
		path: mk(color.Bold),
		note: mk(color.FgBlue),
		help: mk(color.FgGreen),
	}
}

// Pretty writes every diagnostic of bag in a human-readable form:
//
//	path:line:col: ERROR TPL1003: message
//	 3 | {% block title %}
//	   |    ^^^^^^^^^^^^^^
//	  = note: ...
//	  = help: ...
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	pal := newPalette(opts.Color)
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		io.WriteString(w, prettyOne(d, fs, opts, pal))
	}
}

func prettyOne(d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, pal palette) string {
	var sb strings.Builder
	sevColor := pal.sev[d.Severity]
	if sevColor == nil {
		sevColor = pal.sev[diag.SevInfo]
	}
	caret := pal.caret[d.Severity]
	if caret == nil {
		caret = pal.caret[diag.SevInfo]
	}

	var f *source.File
	if fs != nil {
		f = fs.Get(d.Primary.File)
	}
	header := sevColor.Sprintf("%s %s", d.Severity, d.Code.ID()) + ": " + d.Message
	if f == nil {
		sb.WriteString(header)
		sb.WriteByte('\n')
	} else {
		span := d.Primary
		if span.Empty() {
			span = span.WithLen(1)
		}
		start, _ := fs.Resolve(span)
		loc := fmt.Sprintf("%s:%d:%d", displayPath(fs, f, opts.PathMode), start.Line, start.Col)
		sb.WriteString(pal.path.Sprint(loc))
		sb.WriteString(": ")
		sb.WriteString(header)
		sb.WriteByte('\n')
		writeSnippet(&sb, f, span, opts.Context, opts.Width, func(s string) string { return caret.Sprint(s) })
	}

	if opts.ShowNotes {
		for _, n := range d.Notes {
			nf := f
			if fs != nil {
				nf = fs.Get(n.Span.File)
			}
			if nf == nil || n.Span == source.NoSpan {
				fmt.Fprintf(&sb, "  = %s %s\n", pal.note.Sprint("note:"), n.Msg)
				continue
			}
			start, _ := fs.Resolve(n.Span)
			fmt.Fprintf(&sb, "  = %s %s:%d:%d: %s\n", pal.note.Sprint("note:"), displayPath(fs, nf, opts.PathMode), start.Line, start.Col, n.Msg)
			span := n.Span
			if span.Empty() {
				span = span.WithLen(1)
			}
			writeSnippet(&sb, nf, span, 0, opts.Width, func(s string) string { return pal.note.Sprint(s) })
		}
	}
	if opts.ShowAdvice && d.Advice != "" {
		fmt.Fprintf(&sb, "  = %s %s\n", pal.help.Sprint("help:"), d.Advice)
	}
	return sb.String()
}
