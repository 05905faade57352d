package diagfmt

import (
	"fmt"
	"strings"

	"fortio.org/safecast"
	"github.com/mattn/go-runewidth"

	"tower/internal/source"
)

// previewLine is one source line of a snippet with the marked columns.
type previewLine struct {
	number uint32
	text   string
	// from and to are display columns of the marker; to == 0 means no marker.
	from, to int
}

// buildPreview returns the lines shown under a diagnostic: up to context
// lines before the span and the first line of the span with its marker.
func buildPreview(fs *source.FileSet, span source.Span, context int) []previewLine {
	file := fs.Get(span.File)
	if file == nil {
		return nil
	}
	start, end := fs.Resolve(span)
	if start.Line == 0 {
		return nil
	}

	var out []previewLine
	first := max(int(start.Line)-context, 1)
	for n := first; n < int(start.Line); n++ {
		num, err := safecast.Conv[uint32](n)
		if err != nil {
			panic(fmt.Errorf("line number overflow: %w", err))
		}
		out = append(out, previewLine{number: num, text: expandTabs(file.GetLine(num))})
	}

	raw := file.GetLine(start.Line)
	lineStart := lineStartOffset(file, start.Line)
	prefix := raw[:min(int(span.Start-lineStart), len(raw))]
	marked := raw[len(prefix):]
	if end.Line == start.Line {
		marked = marked[:min(int(span.End-span.Start), len(marked))]
	}
	from := runewidth.StringWidth(expandTabs(prefix))
	to := from + max(runewidth.StringWidth(expandTabs(marked)), 1)
	out = append(out, previewLine{number: start.Line, text: expandTabs(raw), from: from, to: to})
	return out
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}

func lineStartOffset(f *source.File, line uint32) uint32 {
	if line <= 1 {
		return 0
	}
	idx := line - 2
	if int(idx) < len(f.LineIdx) {
		return f.LineIdx[idx] + 1
	}
	lenFileContent, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("len file content overflow: %w", err))
	}
	return lenFileContent
}
