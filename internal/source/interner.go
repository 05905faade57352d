package source

import (
	"fmt"
	"slices"
	"sync"

	"fortio.org/safecast"
	"golang.org/x/text/unicode/norm"
)

// StringID is a handle to an interned identifier.
type StringID uint32

const NoStringID StringID = 0

// IsValid reports whether id refers to a non-empty interned string.
func (id StringID) IsValid() bool { return id != NoStringID }

// Interner maps identifiers to compact IDs. Identifiers are stored in NFC so
// that visually identical names written with different code point sequences
// resolve to the same declaration.
// Safe for concurrent use: worlds are loaded once and then read by many
// resolver workers.
type Interner struct {
	mu    sync.RWMutex
	byID  []string            // индекс -> строка (byID[0] = "" для NoStringID)
	index map[string]StringID // строка -> ID
}

func NewInterner() *Interner {
	return &Interner{
		byID:  []string{""},
		index: map[string]StringID{"": NoStringID},
	}
}

// Intern normalizes s and returns its ID, allocating one if needed.
func (i *Interner) Intern(s string) StringID {
	key := norm.NFC.String(s)

	i.mu.RLock()
	id, ok := i.index[key]
	i.mu.RUnlock()
	if ok {
		return id
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	if id, ok := i.index[key]; ok {
		return id
	}
	value, err := safecast.Conv[uint32](len(i.byID))
	if err != nil {
		panic(fmt.Errorf("interner overflow: %w", err))
	}
	// собственная копия, чтобы не держать чужой буфер
	cpy := string([]byte(key))
	id = StringID(value)
	i.byID = append(i.byID, cpy)
	i.index[cpy] = id
	return id
}

// Find returns the ID of s without interning it.
func (i *Interner) Find(s string) (StringID, bool) {
	key := norm.NFC.String(s)
	i.mu.RLock()
	defer i.mu.RUnlock()
	id, ok := i.index[key]
	return id, ok
}

// Lookup returns the identifier for id. The empty string and false are
// returned for unknown IDs.
func (i *Interner) Lookup(id StringID) (string, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if int(id) >= len(i.byID) {
		return "", false
	}
	return i.byID[id], true
}

// MustLookup is Lookup that panics on unknown IDs.
func (i *Interner) MustLookup(id StringID) string {
	s, ok := i.Lookup(id)
	if !ok {
		panic(fmt.Sprintf("invalid string ID %d", id))
	}
	return s
}

// Len counts interned strings including the reserved empty one.
func (i *Interner) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.byID)
}

// Snapshot returns a copy of all interned strings indexed by ID.
func (i *Interner) Snapshot() []string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return slices.Clone(i.byID)
}
