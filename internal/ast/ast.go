// Package ast defines the surface syntax tree the PEG parser hands to
// internal/build. The parser itself, and the grammar it implements, are out
// of scope for this module (spec.md Non-goals); this package only fixes the
// shape of its output so the AST→IR lowering pass has something concrete to
// consume. Names are resolved to handles only in internal/build — every
// identifier here is still a bare string.
package ast

import "github.com/filament-lang/filc/internal/posn"

// ComponentKind mirrors the Source | External | Generated classification
// from the IR (spec.md §3); External and Generated components carry no
// Body.
type ComponentKind int

const (
	Source ComponentKind = iota
	External
	Generated
)

func (k ComponentKind) String() string {
	switch k {
	case Source:
		return "source"
	case External:
		return "external"
	case Generated:
		return "generated"
	default:
		return "unknown"
	}
}

// Direction is a port's signal direction from the declaring component's
// point of view.
type Direction int

const (
	In Direction = iota
	Out
)

// Program is a single parsed file: zero or more component definitions.
type Program struct {
	File       string
	Components []*Component
}

// Component is a parametric (or external/generated) module definition.
type Component struct {
	Pos     posn.Pos
	Name    string
	Kind    ComponentKind
	Params  []ParamDecl
	Events  []EventDecl
	Inputs  []PortDecl
	Outputs []PortDecl
	Body    []Command // nil for External/Generated
	Attrs   map[string]string
}

// ParamDecl declares a signature-owned scalar parameter.
type ParamDecl struct {
	Pos  posn.Pos
	Name string
}

// EventDecl declares a signature-owned temporal event and its delay, a
// time-delta expressed relative to another (already-declared) event.
type EventDecl struct {
	Pos   posn.Pos
	Name  string
	Delay TimeSub
}

// Liveness describes a (possibly multi-dimensional) bundle: Idxs range over
// 0..Lens[i], and the bundle is available during [Start, End).
type Liveness struct {
	Idxs  []string
	Lens  []Expr
	Start Time
	End   Time
}

// PortDecl declares a signature-owned port, scalar unless Bundle is set.
type PortDecl struct {
	Pos    posn.Pos
	Name   string
	Dir    Direction
	Width  Expr
	Bundle *Liveness
}

// Command is the surface sum type for statements inside a component body.
type Command interface {
	commandNode()
	Position() posn.Pos
}

type node struct{ Pos posn.Pos }

func (n node) Position() posn.Pos { return n.Pos }

// InstanceDecl is `bind = instance Comp[args];`.
type InstanceDecl struct {
	node
	Bind string
	Comp string
	Args []Expr
}

func (*InstanceDecl) commandNode() {}

// EventBindSurface binds a callee event to a caller time plus an extra
// delay, e.g. `@[G+1, L]` in `invoke i<G+1:L>`.
type EventBindSurface struct {
	Pos   posn.Pos
	Event string
	Arg   Time
	Delay TimeSub
}

// InvokeDecl is `bind, ports... = invoke inst<events...>(args...)`.
type InvokeDecl struct {
	node
	Bind   string
	Inst   string
	Events []EventBindSurface
	Args   []PortAccess
}

func (*InvokeDecl) commandNode() {}

// BundleDefDecl declares a component-local bundle port.
type BundleDefDecl struct {
	node
	Name    string
	Width   Expr
	Bundle  *Liveness
}

func (*BundleDefDecl) commandNode() {}

// PortAccess names a port, optionally qualified by an owning instance (for
// `inst.port`), with an optional bundle-index range [Start, End).
type PortAccess struct {
	Pos      posn.Pos
	Owner    string // "" for a locally-owned port
	Port     string
	Start    Expr // nil for a non-bundle access
	End      Expr
}

// ConnectDecl is `dst = src;`.
type ConnectDecl struct {
	node
	Dst PortAccess
	Src PortAccess
}

func (*ConnectDecl) commandNode() {}

// ForLoopDecl is `for Idx in Start..End { Body }`.
type ForLoopDecl struct {
	node
	Idx   string
	Start Expr
	End   Expr
	Body  []Command
}

func (*ForLoopDecl) commandNode() {}

// IfDecl is `if Cond { Then } else { Else }`.
type IfDecl struct {
	node
	Cond Prop
	Then []Command
	Else []Command
}

func (*IfDecl) commandNode() {}

// FactDecl is `assume Prop;` or `assert Prop;`.
type FactDecl struct {
	node
	Assume bool
	Prop   Prop
}

func (*FactDecl) commandNode() {}

// LetDecl is `let Name[: Expr] = Expr;`. Unelaborated marks a scheduling
// binding the source left for the discharge pass to resolve rather than an
// ordinary constant-folded let.
type LetDecl struct {
	node
	Name         string
	Bind         Expr
	Unelaborated bool
}

func (*LetDecl) commandNode() {}

// ExistsDecl is `some Name where Expr;` introducing an existential
// parameter bound, at use sites, to a concrete value.
type ExistsDecl struct {
	node
	Name   string
	Bind   Expr
	Opaque bool
}

func (*ExistsDecl) commandNode() {}

// Expr is the surface algebraic expression sum type.
type Expr interface {
	exprNode()
	Position() posn.Pos
}

type BinOp int

const (
	Add BinOp = iota
	Sub
	Mul
	Div
	Mod
)

type FnOp int

const (
	Pow2 FnOp = iota
	Log2
	SinBits
	CosBits
	BitRev
)

type ParamRef struct {
	node
	Name string
}

func (*ParamRef) exprNode() {}

type IntLit struct {
	node
	Value uint64
}

func (*IntLit) exprNode() {}

type BinExpr struct {
	node
	Op   BinOp
	L, R Expr
}

func (*BinExpr) exprNode() {}

type FnExpr struct {
	node
	Op   FnOp
	Args []Expr
}

func (*FnExpr) exprNode() {}

type IfExpr struct {
	node
	Cond Prop
	Then Expr
	Alt  Expr
}

func (*IfExpr) exprNode() {}

// Prop is the surface proposition sum type.
type Prop interface {
	propNode()
	Position() posn.Pos
}

type CmpOp int

const (
	Gt CmpOp = iota
	Ge
	Eq
)

type BoolLit struct {
	node
	Value bool
}

func (*BoolLit) propNode() {}

type CmpProp struct {
	node
	Op   CmpOp
	L, R Expr
}

func (*CmpProp) propNode() {}

type TimeCmpProp struct {
	node
	Op   CmpOp
	L, R Time
}

func (*TimeCmpProp) propNode() {}

type TimeSubCmpProp struct {
	node
	Op   CmpOp
	L, R TimeSub
}

func (*TimeSubCmpProp) propNode() {}

type NotProp struct {
	node
	P Prop
}

func (*NotProp) propNode() {}

type AndProp struct {
	node
	L, R Prop
}

func (*AndProp) propNode() {}

type OrProp struct {
	node
	L, R Prop
}

func (*OrProp) propNode() {}

type ImpliesProp struct {
	node
	Ante, Cons Prop
}

func (*ImpliesProp) propNode() {}

// Time is `Event + Offset`.
type Time struct {
	Pos    posn.Pos
	Event  string
	Offset Expr
}

// TimeSub is a time-delta: a literal Unit offset or a symbolic |L - R|.
type TimeSub interface {
	timeSubNode()
	Position() posn.Pos
}

type UnitSub struct {
	node
	Offset Expr
}

func (*UnitSub) timeSubNode() {}

type SymSub struct {
	node
	L, R Time
}

func (*SymSub) timeSubNode() {}
