package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"tower/internal/diag"
	"tower/internal/source"
)

type palette struct {
	err, warn, info, code, path, gutter, marker, note *color.Color
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
		err:    mk(color.FgRed, color.Bold),
		warn:   mk(color.FgYellow, color.Bold),
		info:   mk(color.FgCyan, color.Bold),
		code:   mk(color.Faint),
		path:   mk(color.Bold),
		gutter: mk(color.FgBlue),
		marker: mk(color.FgRed, color.Bold),
		note:   mk(color.FgCyan),
	}
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем строку с подчёркиванием ^~~~ по Span, затем Notes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for _, d := range bag.Items() {
		fmt.Fprintf(w, "%s: %s %s: %s\n",
			p.path.Sprint(location(fs, d.Primary, opts.PathMode)),
			p.severity(d.Severity).Sprint(d.Severity),
			p.code.Sprint(d.Code.ID()),
			clip(d.Message, opts.Width))
		if opts.ShowPreview {
			writePreview(w, p, buildPreview(fs, d.Primary, int(max(opts.Context, 0))))
		}
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			if n.Span.File == 0 || n.Span == d.Primary {
				fmt.Fprintf(w, "  %s %s\n", p.note.Sprint("note:"), clip(n.Msg, opts.Width))
				continue
			}
			fmt.Fprintf(w, "  %s %s: %s\n", p.note.Sprint("note:"),
				location(fs, n.Span, opts.PathMode), clip(n.Msg, opts.Width))
		}
	}
}

func writePreview(w io.Writer, p palette, lines []previewLine) {
	if len(lines) == 0 {
		return
	}
	width := len(fmt.Sprint(lines[len(lines)-1].number))
	for _, l := range lines {
		fmt.Fprintf(w, " %s %s\n", p.gutter.Sprintf("%*d |", width, l.number), l.text)
		if l.to == 0 {
			continue
		}
		marker := "^" + strings.Repeat("~", l.to-l.from-1)
		fmt.Fprintf(w, " %s %s%s\n", p.gutter.Sprintf("%*s |", width, ""), strings.Repeat(" ", l.from), p.marker.Sprint(marker))
	}
}

// location renders path:line:col for a span.
func location(fs *source.FileSet, span source.Span, mode PathMode) string {
	f := fs.Get(span.File)
	if f == nil {
		return "<unknown>"
	}
	start, _ := fs.Resolve(span)
	return fmt.Sprintf("%s:%d:%d", formatPath(fs, f, mode), start.Line, start.Col)
}

func formatPath(fs *source.FileSet, f *source.File, mode PathMode) string {
	switch mode {
	case PathModeAbsolute:
		return f.FormatPath("absolute", "")
	case PathModeRelative:
		return f.FormatPath("relative", fs.BaseDir())
	case PathModeBasename:
		return f.FormatPath("basename", "")
	default:
		return f.Path
	}
}

func clip(s string, width uint8) string {
	if width == 0 || runewidth.StringWidth(s) <= int(width) {
		return s
	}
	return runewidth.Truncate(s, int(width), "...")
}
