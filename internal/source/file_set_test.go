package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveLineCol(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("world.toml", []byte("[[call]]\nname = \"f\"\n\n[[call]]\n"))

	start, _ := fs.Resolve(Span{File: id, Start: 21, End: 29})
	if start.Line != 4 || start.Col != 1 {
		t.Fatalf("expected 4:1, got %d:%d", start.Line, start.Col)
	}
	start, _ = fs.Resolve(Span{File: id, Start: 8, End: 8})
	if start.Line != 1 || start.Col != 9 {
		t.Fatalf("newline byte belongs to its line, got %d:%d", start.Line, start.Col)
	}
	if line := fs.Get(id).GetLine(2); line != "name = \"f\"" {
		t.Fatalf("unexpected line 2: %q", line)
	}
	if line := fs.Get(id).GetLine(42); line != "" {
		t.Fatalf("expected empty line past EOF, got %q", line)
	}
}

func TestZeroSpanHasNoFile(t *testing.T) {
	fs := NewFileSet()
	if fs.Get(0) != nil {
		t.Fatalf("file 0 is reserved")
	}
	start, end := fs.Resolve(Span{})
	if start != (LineCol{}) || end != (LineCol{}) {
		t.Fatalf("expected zero positions, got %v %v", start, end)
	}
}

func TestLoadNormalizesBOMAndCRLF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "w.toml")
	content := append([]byte{0xEF, 0xBB, 0xBF}, []byte("a = 1\r\nb = 2\r\n")...)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}
	fs := NewFileSetWithBase(dir)
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	f := fs.Get(id)
	if string(f.Content) != "a = 1\nb = 2\n" {
		t.Fatalf("unexpected content %q", f.Content)
	}
	if f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 {
		t.Fatalf("expected BOM and CRLF flags, got %b", f.Flags)
	}
	if got := f.FormatPath("relative", dir); got != "w.toml" {
		t.Fatalf("expected relative path, got %q", got)
	}
}
