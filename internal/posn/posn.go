// Package posn implements the compiler's single global position table.
//
// Every span the parser produces is interned here once, during parsing, and
// the table is frozen thereafter; every later pass threads an opaque Pos
// handle instead of a (file, offset) pair. This keeps cross-component IR
// values small and gives diagnostics rendering one place to resolve a span
// back to source text.
package posn

import "fmt"

// Pos is an opaque handle into the position table. The zero value denotes
// "no position" and is never returned by Table.Add.
type Pos uint32

// NoPos is the sentinel for synthesized nodes with no source location.
const NoPos Pos = 0

// Span is the resolved (file, start, end) triple a Pos denotes.
type Span struct {
	File  string
	Start int
	End   int
}

// Table is the process-wide position store. It is populated only while
// parsing (single writer) and is read-only thereafter; Freeze enforces
// that discipline so a later pass cannot accidentally mint new spans that
// the diagnostics layer never sees rendered from source.
type Table struct {
	spans  []Span
	frozen bool
}

// New creates an empty, writable position table. Index 0 is reserved for
// NoPos so a zero Pos is never a valid lookup.
func New() *Table {
	return &Table{spans: []Span{{File: "", Start: 0, End: 0}}}
}

// Add interns a span and returns its handle. Panics if the table has been
// frozen; a frozen table models the "populated only during parsing"
// invariant in the spec's shared-resource model.
func (t *Table) Add(file string, start, end int) Pos {
	if t.frozen {
		panic("posn: Add called on a frozen table")
	}
	t.spans = append(t.spans, Span{File: file, Start: start, End: end})
	return Pos(len(t.spans) - 1)
}

// Freeze makes the table read-only. Idempotent.
func (t *Table) Freeze() { t.frozen = true }

// Get resolves a Pos to its Span. Returns the zero Span for NoPos or any
// handle this table never issued.
func (t *Table) Get(p Pos) Span {
	if int(p) >= len(t.spans) {
		return Span{}
	}
	return t.spans[p]
}

// Less provides the deterministic ordering the spec's Open Questions ask
// for: ties are broken on (file, start) directly rather than a hash of the
// opaque handle, since the table already has the real coordinates.
func (t *Table) Less(a, b Pos) bool {
	sa, sb := t.Get(a), t.Get(b)
	if sa.File != sb.File {
		return sa.File < sb.File
	}
	if sa.Start != sb.Start {
		return sa.Start < sb.Start
	}
	return sa.End < sb.End
}

func (s Span) String() string {
	return fmt.Sprintf("%s:%d-%d", s.File, s.Start, s.End)
}
