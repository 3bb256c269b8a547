package ir

import "github.com/filament-lang/filc/internal/ast"

// Range is a temporal availability window [Start, End) over Time handles.
type Range struct {
	Start, End TimeIdx
}

// Liveness describes a (possibly multi-dimensional) bundle (spec.md §3):
// Idxs range independently over 0..Lens[i], available during Range.
type Liveness struct {
	Idxs  []ParamIdx
	Lens  []ExprIdx
	Range Range
}

// PortOwnerKind discriminates Port's owner variants.
type PortOwnerKind int

const (
	PortOwnerSig PortOwnerKind = iota
	PortOwnerInv
	PortOwnerLocal
)

// PortOwner tags where a port belongs.
type PortOwner struct {
	Kind PortOwnerKind

	Dir ast.Direction // PortOwnerSig, PortOwnerInv

	Inv  InvIdx           // PortOwnerInv
	Base Foreign[PortTag] // PortOwnerInv: the signature port on the callee this materializes
}

// Port is a (possibly bundled) signal (spec.md §3).
type Port struct {
	Owner PortOwner
	Width ExprIdx
	Live  Liveness
	Name  string
	Info  InfoIdx
}

// AddPort allocates a fresh port.
func (c *Component) AddPort(owner PortOwner, width ExprIdx, live Liveness, name string, info InfoIdx) PortIdx {
	return c.Ports.Add(Port{Owner: owner, Width: width, Live: live, Name: name, Info: info})
}
