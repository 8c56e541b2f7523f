package diagfmt

import (
	"encoding/json"
	"io"

	"weave/internal/diag"
	"weave/internal/source"
)

// Position is 1-based.
type Position struct {
	Line uint32 `json:"line"`
	Col  uint32 `json:"col"`
}

type Location struct {
	File  string    `json:"file,omitempty"`
	Bytes [2]uint32 `json:"bytes"` // [start, end)
	Start *Position `json:"start,omitempty"`
	End   *Position `json:"end,omitempty"`
}

type Note struct {
	Message  string   `json:"message"`
	Location Location `json:"location"`
}

type Entry struct {
	Severity string   `json:"severity"`
	Code     string   `json:"code"`
	Title    string   `json:"title"`
	Message  string   `json:"message"`
	Location Location `json:"location"`
	Advice   string   `json:"advice,omitempty"`
	Notes    []Note   `json:"notes,omitempty"`
}

// Report is the document written by JSON. Omitted counts entries cut by
// JSONOpts.Max.
type Report struct {
	Diagnostics []Entry `json:"diagnostics"`
	Count       int     `json:"count"`
	Errors      int     `json:"errors"`
	Omitted     int     `json:"omitted,omitempty"`
}

func locate(span source.Span, fs *source.FileSet, opts JSONOpts) Location {
	loc := Location{Bytes: [2]uint32{span.Start, span.End}}
	f := fs.Get(span.File)
	if f == nil {
		return loc
	}
	loc.File = displayPath(fs, f, opts.PathMode)
	if opts.IncludePositions {
		start, end := fs.Resolve(span)
		loc.Start = &Position{Line: start.Line, Col: start.Col}
		loc.End = &Position{Line: end.Line, Col: end.Col}
	}
	return loc
}

// BuildReport collects the bag without serializing it.
func BuildReport(bag *diag.Bag, fs *source.FileSet, opts JSONOpts) Report {
	if fs == nil {
		fs = source.NewFileSet()
	}
	items := bag.Items()
	shown := items
	if opts.Max > 0 && opts.Max < len(items) {
		shown = items[:opts.Max]
	}

	r := Report{
		Diagnostics: make([]Entry, 0, len(shown)),
		Omitted:     len(items) - len(shown),
	}
	for _, d := range items {
		if d.Severity == diag.SevError {
			r.Errors++
		}
	}
	for _, d := range shown {
		e := Entry{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Title:    d.Code.Title(),
			Message:  d.Message,
			Location: locate(d.Primary, fs, opts),
			Advice:   d.Advice,
		}
		if opts.IncludeNotes {
			for _, n := range d.Notes {
				e.Notes = append(e.Notes, Note{Message: n.Msg, Location: locate(n.Span, fs, opts)})
			}
		}
		r.Diagnostics = append(r.Diagnostics, e)
	}
	r.Count = len(r.Diagnostics)
	return r
}

// JSON writes the indented report.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildReport(bag, fs, opts))
}
