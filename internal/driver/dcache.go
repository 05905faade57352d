package driver

import (
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"tower/internal/diag"
	"tower/internal/project"
	"tower/internal/source"
)

// Current schema version - increment when DiskPayload format changes
const diskCacheSchemaVersion uint16 = 1

// DiskCache stores resolution results of world files on disk, keyed by the
// file content and the resolution options.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload is the cached result of one world file.
type DiskPayload struct {
	// Schema version for safe invalidation when format changes
	Schema uint16

	Path        string
	ContentHash project.Digest
	Calls       []CallResult
	Diagnostics []cachedDiagnostic
}

// cachedDiagnostic is a diagnostic with spans reduced to offsets; the file
// id is reassigned on load.
type cachedDiagnostic struct {
	Severity uint8
	Code     uint16
	Message  string
	InFile   bool
	Start    uint32
	End      uint32
	Notes    []cachedNote
}

type cachedNote struct {
	InFile bool
	Start  uint32
	End    uint32
	Msg    string
}

// OpenDiskCache initializes and returns a disk cache at the standard location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenDiskCacheAt(filepath.Join(base, app))
}

// OpenDiskCacheAt opens a disk cache rooted at dir.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *DiskCache) Dir() string { return c.dir }

func (c *DiskCache) pathFor(key project.Digest) string {
	hexKey := hex.EncodeToString(key[:])
	// подкаталог по первым двум символам, чтобы не раздувать один каталог
	return filepath.Join(c.dir, "worlds", hexKey[:2], hexKey+".mp")
}

// Put serializes and writes a payload to the disk cache.
func (c *DiskCache) Put(key project.Digest, payload *DiskPayload) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = rmErr
		}
	}()

	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(payload); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), p)
}

// Get reads and deserializes a payload from the disk cache. Payloads with
// another schema version count as a miss.
func (c *DiskCache) Get(key project.Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	dec := msgpack.NewDecoder(f)
	if err := dec.Decode(out); err != nil {
		return false, err
	}
	return out.Schema == diskCacheSchemaVersion, nil
}

// DropAll invalidates the cache, useful after format changes.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.MkdirAll(c.dir, 0o750); err != nil {
		return err
	}
	return os.RemoveAll(old)
}

// cacheKey digests the world content together with every option that
// changes resolution results.
func cacheKey(content project.Digest, hidesMembers []string) project.Digest {
	return project.Combine(content, project.HashStrings(
		"schema", strconv.Itoa(int(diskCacheSchemaVersion)),
		"hides_members", strings.Join(hidesMembers, ","),
	))
}

func toCachedDiagnostics(items []diag.Diagnostic) []cachedDiagnostic {
	out := make([]cachedDiagnostic, 0, len(items))
	for _, d := range items {
		if d.Code == diag.ProjectCacheError || d.Code == diag.ObsTimings {
			continue
		}
		cd := cachedDiagnostic{
			Severity: uint8(d.Severity),
			Code:     uint16(d.Code),
			Message:  d.Message,
			InFile:   d.Primary.File != 0,
			Start:    d.Primary.Start,
			End:      d.Primary.End,
		}
		for _, n := range d.Notes {
			cd.Notes = append(cd.Notes, cachedNote{InFile: n.Span.File != 0, Start: n.Span.Start, End: n.Span.End, Msg: n.Msg})
		}
		out = append(out, cd)
	}
	return out
}

func restoreDiagnostics(r diag.Reporter, file source.FileID, items []cachedDiagnostic) {
	span := func(in bool, start, end uint32) source.Span {
		if !in {
			return source.Span{}
		}
		return source.Span{File: file, Start: start, End: end}
	}
	for _, cd := range items {
		notes := make([]diag.Note, 0, len(cd.Notes))
		for _, n := range cd.Notes {
			notes = append(notes, diag.Note{Span: span(n.InFile, n.Start, n.End), Msg: n.Msg})
		}
		r.Report(diag.Code(cd.Code), diag.Severity(cd.Severity), span(cd.InFile, cd.Start, cd.End), cd.Message, notes)
	}
}
