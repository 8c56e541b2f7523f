package diagfmt

import (
	"fmt"
	"strings"

	"fortio.org/safecast"
	"github.com/mattn/go-runewidth"

	"weave/internal/diag"
	"weave/internal/source"
)

// Excerpt renders d as plain text: a location header, the offending source
// line and a caret underline. It never emits color and is what compile errors
// carry in their Error() string.
func Excerpt(fs *source.FileSet, d diag.Diagnostic) string {
	var sb strings.Builder
	var f *source.File
	if fs != nil {
		f = fs.Get(d.Primary.File)
	}
	if f == nil {
		fmt.Fprintf(&sb, "%s %s: %s", d.Severity, d.Code.ID(), d.Message)
		if d.Advice != "" {
			fmt.Fprintf(&sb, "\n  = help: %s", d.Advice)
		}
		return sb.String()
	}

	span := d.Primary
	if span.Empty() {
		span = span.WithLen(1)
	}
	start, _ := fs.Resolve(span)
	fmt.Fprintf(&sb, "%s:%d:%d: %s %s: %s\n", f.Path, start.Line, start.Col, d.Severity, d.Code.ID(), d.Message)
	writeSnippet(&sb, f, span, 0, 0, nil)
	if d.Advice != "" {
		fmt.Fprintf(&sb, "  = help: %s\n", d.Advice)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// writeSnippet prints the lines covered by span (plus context lines around it)
// with a gutter and a caret line under each covered line.
func writeSnippet(sb *strings.Builder, f *source.File, span source.Span, context int8, width uint8, paint func(string) string) {
	startLC := lineColOf(f, span.Start)
	endLC := lineColOf(f, span.End)
	if endLC.Line < startLC.Line {
		endLC = startLC
	}
	lineCount := totalLines(f)
	ctx := uint32(max(context, 0))

	first := startLC.Line
	if first > ctx {
		first -= ctx
	} else {
		first = 1
	}
	last := min(endLC.Line+ctx, lineCount)

	gutter := len(fmt.Sprint(last))
	for ln := first; ln <= last; ln++ {
		text := expandTabs(f.Line(ln))
		if width > 0 {
			text = runewidth.Truncate(text, int(width), "…")
		}
		fmt.Fprintf(sb, "%*d | %s\n", gutter, ln, text)
		if ln < startLC.Line || ln > endLC.Line {
			continue
		}

		raw := f.Line(ln)
		from := 0
		if ln == startLC.Line {
			from = int(startLC.Col) - 1
		}
		to := len(raw)
		if ln == endLC.Line {
			to = int(endLC.Col) - 1
		}
		from = min(max(from, 0), len(raw))
		to = min(max(to, from), len(raw))

		pad := displayWidth(raw[:from])
		marks := displayWidth(raw[from:to])
		if marks == 0 {
			marks = 1
		}
		carets := strings.Repeat("^", marks)
		if paint != nil {
			carets = paint(carets)
		}
		fmt.Fprintf(sb, "%s | %s%s\n", strings.Repeat(" ", gutter), strings.Repeat(" ", pad), carets)
	}
}

func lineColOf(f *source.File, off uint32) source.LineCol {
	start := source.LineCol{Line: 1, Col: 1}
	size := contentLen(f)
	if off > size {
		off = size
	}
	// тот же бинарный поиск, что и в FileSet.Resolve, но без FileSet
	line := uint32(1)
	for _, nl := range f.LineIdx {
		if nl >= off {
			break
		}
		line++
	}
	start.Line = line
	start.Col = off - lineStartOffset(f, line) + 1
	return start
}

func lineStartOffset(f *source.File, line uint32) uint32 {
	if line <= 1 {
		return 0
	}
	idx := line - 2
	if int(idx) < len(f.LineIdx) {
		return f.LineIdx[idx] + 1
	}
	return contentLen(f)
}

func totalLines(f *source.File) uint32 {
	n, err := safecast.Conv[uint32](len(f.LineIdx) + 1)
	if err != nil {
		panic(fmt.Errorf("line index overflow: %w", err))
	}
	return n
}

func contentLen(f *source.File) uint32 {
	n, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("len file content overflow: %w", err))
	}
	return n
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}

func displayWidth(s string) int {
	return runewidth.StringWidth(expandTabs(s))
}
