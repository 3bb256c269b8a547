package cache

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/filament-lang/filc/internal/ctx"
	"github.com/filament-lang/filc/internal/ir"
)

// ContextSnapshot is the wire form of an entire monomorphized Context:
// every component it holds, in Context.Comps order (so CompIdx numbers —
// and therefore every Foreign reference between them — round-trip
// unchanged), plus which one is the entrypoint.
type ContextSnapshot struct {
	EntryIdx uint32
	Comps    []Snapshot
}

// SnapshotContext flattens c into its wire form. entry must be c's live
// entrypoint component.
func SnapshotContext(c *ctx.Context, entry ir.CompIdx) ContextSnapshot {
	cs := ContextSnapshot{EntryIdx: uint32(entry)}
	c.Comps.Each(func(_ ir.CompIdx, comp *ir.Component) {
		cs.Comps = append(cs.Comps, ToSnapshot(comp))
	})
	return cs
}

// RebuildContext replays a ContextSnapshot's components in order, so the
// fresh Context's CompIdx numbering exactly matches the one that was
// cached.
func RebuildContext(cs ContextSnapshot) (*ctx.Context, ir.CompIdx) {
	out := ctx.New()
	for _, s := range cs.Comps {
		out.Add(FromSnapshot(s))
	}
	entry := ir.CompIdx(cs.EntryIdx)
	out.SetEntry(entry, nil)
	return out, entry
}

// Key identifies one cached monomorphization result: the entrypoint
// component's name together with its concrete signature bindings, in
// their original positional order — bindings are matched positionally to
// signature parameters, so [5,3] and [3,5] are different monomorphizations
// and must produce different keys.
func Key(entryName string, bindings []uint64) string {
	parts := make([]string, len(bindings))
	for i, b := range bindings {
		parts[i] = strconv.FormatUint(b, 10)
	}
	return entryName + "(" + strings.Join(parts, ",") + ")"
}

// Cache is an on-disk, msgpack-encoded store of ContextSnapshots, keyed by
// Key. It is safe for concurrent use.
type Cache struct {
	path string

	mu      sync.Mutex
	entries map[string]ContextSnapshot
	dirty   bool
}

// Open loads path if it exists; a missing file starts an empty cache
// rather than erroring, since a cache miss on first run is expected.
func Open(path string) (*Cache, error) {
	c := &Cache{path: path, entries: map[string]ContextSnapshot{}}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache: %s: %w", path, err)
	}
	if err := msgpack.Unmarshal(data, &c.entries); err != nil {
		return nil, fmt.Errorf("cache: %s: corrupt cache file: %w", path, err)
	}
	return c, nil
}

// Get returns the cached Context snapshot for key, if any.
func (c *Cache) Get(key string) (ContextSnapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cs, ok := c.entries[key]
	return cs, ok
}

// Put records a monomorphization result under key, to be persisted on the
// next Flush.
func (c *Cache) Put(key string, cs ContextSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cs
	c.dirty = true
}

// Flush writes every entry back to path if anything changed since Open
// (or the last Flush). Entries are sorted by key before encoding so the
// on-disk file is byte-stable across runs that cache the same set of
// results.
func (c *Cache) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.dirty {
		return nil
	}
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(c.entries); err != nil {
		return fmt.Errorf("cache: encode: %w", err)
	}
	if err := os.WriteFile(c.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("cache: %s: %w", c.path, err)
	}
	c.dirty = false
	return nil
}
