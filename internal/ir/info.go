package ir

import "github.com/filament-lang/filc/internal/posn"

// Info is diagnostic span metadata, stored in its own indexed arena so
// every other entity can carry a lightweight InfoIdx instead of embedding a
// Pos directly (spec.md §3).
type Info struct {
	Span posn.Pos
}

// AddInfo allocates a fresh info record.
func (c *Component) AddInfo(span posn.Pos) InfoIdx {
	return c.Infos.Add(Info{Span: span})
}

// Span resolves an InfoIdx back to its position handle.
func (c *Component) Span(i InfoIdx) posn.Pos {
	info, ok := c.Infos.Get(i)
	if !ok {
		return posn.NoPos
	}
	return info.Span
}
