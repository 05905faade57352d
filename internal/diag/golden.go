package diag

import (
	"fmt"
	"sort"
	"strings"

	"tower/internal/source"
)

type shortDiagnostic struct {
	Severity string
	Code     string
	Path     string
	Line     uint32
	Column   uint32
	Message  string
}

// FormatShortDiagnostics renders diagnostics one per line
// ("path:line:col: SEV CODE message"), sorted deterministically. Used for
// golden files and the CLI short format.
func FormatShortDiagnostics(diags []Diagnostic, fs *source.FileSet, includeNotes bool) string {
	if len(diags) == 0 {
		return ""
	}
	rendered := make([]shortDiagnostic, 0, len(diags))
	for i := range diags {
		d := &diags[i]
		rendered = append(rendered, renderShort(fs, d.Severity.String(), d.Code.ID(), d.Primary, d.Message))
		if !includeNotes {
			continue
		}
		for _, note := range d.Notes {
			rendered = append(rendered, renderShort(fs, "NOTE", d.Code.ID(), note.Span, note.Msg))
		}
	}
	sort.SliceStable(rendered, func(i, j int) bool {
		di, dj := rendered[i], rendered[j]
		if di.Path != dj.Path {
			return di.Path < dj.Path
		}
		if di.Line != dj.Line {
			return di.Line < dj.Line
		}
		if di.Column != dj.Column {
			return di.Column < dj.Column
		}
		return di.Code < dj.Code
	})

	var sb strings.Builder
	for _, d := range rendered {
		fmt.Fprintf(&sb, "%s:%d:%d: %s %s %s\n", d.Path, d.Line, d.Column, d.Severity, d.Code, d.Message)
	}
	return sb.String()
}

func renderShort(fs *source.FileSet, sev, code string, span source.Span, msg string) shortDiagnostic {
	out := shortDiagnostic{Severity: sev, Code: code, Message: msg, Path: "<unknown>"}
	if fs == nil {
		return out
	}
	if f := fs.Get(span.File); f != nil {
		out.Path = f.Path
		start, _ := fs.Resolve(span)
		out.Line, out.Column = start.Line, start.Col
	}
	return out
}
