package world

import (
	"bytes"

	"fortio.org/safecast"

	"tower/internal/source"
)

// locator maps the n-th [[table]] of a kind back to its header span.
type locator struct {
	file    source.FileID
	headers map[string][]source.Span
}

func newLocator(file source.FileID, content []byte) *locator {
	l := &locator{file: file, headers: make(map[string][]source.Span)}
	offset := 0
	for line := range bytes.Lines(content) {
		trimmed := bytes.TrimSpace(line)
		if bytes.HasPrefix(trimmed, []byte("[[")) && bytes.HasSuffix(trimmed, []byte("]]")) {
			name := string(bytes.TrimSpace(trimmed[2 : len(trimmed)-2]))
			start := offset + bytes.Index(line, trimmed)
			l.headers[name] = append(l.headers[name], l.span(start, start+len(trimmed)))
		}
		offset += len(line)
	}
	return l
}

func (l *locator) span(start, end int) source.Span {
	s, err := safecast.Conv[uint32](start)
	if err != nil {
		s = 0
	}
	e, err := safecast.Conv[uint32](end)
	if err != nil {
		e = s
	}
	return source.Span{File: l.file, Start: s, End: e}
}

// table returns the header span of the i-th [[name]] table, or an empty
// span at the start of the file.
func (l *locator) table(name string, i int) source.Span {
	if spans := l.headers[name]; i < len(spans) {
		return spans[i]
	}
	return source.Span{File: l.file}
}
