package ir

import (
	"fmt"

	"github.com/filament-lang/filc/internal/ast"
)

// InterfaceSrc preserves the source names of a component's signature
// events/ports/params, for diagnostics and round-tripping to the surface
// syntax in --dump-after output.
type InterfaceSrc struct {
	ParamNames map[ParamIdx]string
	EventNames map[EventIdx]string
	PortNames  map[PortIdx]string
}

// Component bundles the six indexed arenas, the three interned stores, the
// command list, and the signature/assumption partitions (spec.md §4.2).
type Component struct {
	Name string
	Kind ast.ComponentKind

	Exprs *Interned[ExprTag, Expr]
	Times *Interned[TimeTag, Time]
	Props *Interned[PropTag, Prop]

	Params    *Indexed[ParamTag, Param]
	Events    *Indexed[EventTag, Event]
	Ports     *Indexed[PortTag, Port]
	Instances *Indexed[InstTag, Instance]
	Invokes   *Indexed[InvTag, Invoke]
	Infos     *Indexed[InfoTag, Info]

	Body  []Command
	Attrs map[string]string

	// Signature partition (spec.md §4.2).
	ParamArgs []ParamIdx
	EventArgs []EventIdx

	// Assumption sets (spec.md §4.2).
	ExistAssumes []PropIdx
	ParamAsserts []PropIdx
	EventAsserts []PropIdx

	InterfaceSrc *InterfaceSrc
}

// NewComponent creates an empty component, pre-reserving Expr handles 0/1
// for Concrete(0)/Concrete(1) and Prop handles 0/1 for False/True (spec.md
// §3's global invariants) before any other insertion can happen.
func NewComponent(name string, kind ast.ComponentKind) *Component {
	c := &Component{
		Name:      name,
		Kind:      kind,
		Exprs:     NewInterned[ExprTag, Expr](),
		Times:     NewInterned[TimeTag, Time](),
		Props:     NewInterned[PropTag, Prop](),
		Params:    NewIndexed[ParamTag, Param](),
		Events:    NewIndexed[EventTag, Event](),
		Ports:     NewIndexed[PortTag, Port](),
		Instances: NewIndexed[InstTag, Instance](),
		Invokes:   NewIndexed[InvTag, Invoke](),
		Infos:     NewIndexed[InfoTag, Info](),
		Attrs:     map[string]string{},
	}
	zero := c.Exprs.Intern(exprKey(Expr{Kind: EConcrete, Concrete: 0}), Expr{Kind: EConcrete, Concrete: 0})
	one := c.Exprs.Intern(exprKey(Expr{Kind: EConcrete, Concrete: 1}), Expr{Kind: EConcrete, Concrete: 1})
	if zero != ExprZero || one != ExprOne {
		panic("ir: reserved Expr handles 0/1 not allocated first")
	}
	f := c.Props.Intern(propKey(Prop{Kind: PFalse}), Prop{Kind: PFalse})
	t := c.Props.Intern(propKey(Prop{Kind: PTrue}), Prop{Kind: PTrue})
	if f != PropFalse || t != PropTrue {
		panic("ir: reserved Prop handles 0/1 not allocated first")
	}
	return c
}

// Num returns the handle for the concrete constant v, interning it if this
// is the first time v has appeared (other than 0 and 1, already reserved).
func (c *Component) Num(v uint64) ExprIdx {
	return c.internExpr(Expr{Kind: EConcrete, Concrete: v})
}

// AsConcrete reports the constant value of e if it is a Concrete leaf.
func (c *Component) AsConcrete(e ExprIdx) (uint64, bool) {
	ex := c.Exprs.Get(e)
	if ex.Kind == EConcrete {
		return ex.Concrete, true
	}
	return 0, false
}

func (c *Component) internExpr(e Expr) ExprIdx {
	return c.Exprs.Intern(exprKey(e), e)
}

// AddExpr performs the on-insert algebraic simplification spec.md §3
// mandates, then interns the (possibly rewritten) result, so any two
// callers building structurally-equal-after-simplification trees converge
// on the same handle (Testable Property 1).
func (c *Component) AddExpr(e Expr) ExprIdx {
	return c.internExpr(c.simplifyExpr(e))
}

func (c *Component) simplifyExpr(e Expr) Expr {
	switch e.Kind {
	case EBin:
		lv, lok := c.AsConcrete(e.L)
		rv, rok := c.AsConcrete(e.R)
		if lok && rok {
			if v, ok := foldBin(e.Op, lv, rv); ok {
				return Expr{Kind: EConcrete, Concrete: v}
			}
		}
		switch e.Op {
		case Add:
			if lok && lv == 0 {
				return c.Exprs.Get(e.R)
			}
			if rok && rv == 0 {
				return c.Exprs.Get(e.L)
			}
		case Mul:
			if (lok && lv == 0) || (rok && rv == 0) {
				return Expr{Kind: EConcrete, Concrete: 0}
			}
			if lok && lv == 1 {
				return c.Exprs.Get(e.R)
			}
			if rok && rv == 1 {
				return c.Exprs.Get(e.L)
			}
		case Div:
			if rok && rv == 1 {
				return c.Exprs.Get(e.L)
			}
		}
		return e
	case EFn:
		allConcrete := true
		args := make([]uint64, len(e.Args))
		for i, a := range e.Args {
			v, ok := c.AsConcrete(a)
			if !ok {
				allConcrete = false
				break
			}
			args[i] = v
		}
		if allConcrete {
			if v, ok := foldFn(e.FnOp, args); ok {
				return Expr{Kind: EConcrete, Concrete: v}
			}
		}
		return e
	case EIf:
		if IsTrue(e.Cond) {
			return c.Exprs.Get(e.Then)
		}
		if IsFalse(e.Cond) {
			return c.Exprs.Get(e.Alt)
		}
		return e
	default:
		return e
	}
}

func foldBin(op BinOp, l, r uint64) (uint64, bool) {
	switch op {
	case Add:
		return l + r, true
	case Sub:
		if l < r {
			return 0, false // underflow is left symbolic; discharge's overflow guard catches it in bv mode
		}
		return l - r, true
	case Mul:
		return l * r, true
	case Div:
		if r == 0 {
			return 0, false
		}
		return l / r, true
	case Mod:
		if r == 0 {
			return 0, false
		}
		return l % r, true
	default:
		return 0, false
	}
}

// AddTime interns a Time value.
func (c *Component) AddTime(t Time) TimeIdx {
	return c.Times.Intern(timeKey(t), t)
}

func (c *Component) internProp(p Prop) PropIdx {
	return c.Props.Intern(propKey(p), p)
}

// AddProp performs proposition simplification (spec.md §3) before
// interning: double-negation elimination, ∧/∨ identity and absorption,
// Implies short-circuiting, constant-comparison reduction, and TimeCmp of
// same-event times folding to an ordinary Cmp of offsets.
func (c *Component) AddProp(p Prop) PropIdx {
	return c.internProp(c.simplifyProp(p))
}

func (c *Component) simplifyProp(p Prop) Prop {
	switch p.Kind {
	case PCmp:
		lv, lok := c.AsConcrete(p.EL)
		rv, rok := c.AsConcrete(p.ER)
		if lok && rok {
			return boolProp(p.Cmp.eval(lv, rv))
		}
		return p
	case PTimeCmp:
		lt, rt := c.Times.Get(p.TL), c.Times.Get(p.TR)
		if lt.Event == rt.Event {
			return c.simplifyProp(Prop{Kind: PCmp, Cmp: p.Cmp, EL: lt.Offset, ER: rt.Offset})
		}
		return p
	case PTimeSubCmp:
		sl, sr := c.ReduceTimeSub(p.SL), c.ReduceTimeSub(p.SR)
		if sl.Kind == TSUnit && sr.Kind == TSUnit {
			return c.simplifyProp(Prop{Kind: PCmp, Cmp: p.Cmp, EL: sl.Offset, ER: sr.Offset})
		}
		return Prop{Kind: PTimeSubCmp, Cmp: p.Cmp, SL: sl, SR: sr}
	case PNot:
		inner := c.Props.Get(p.P)
		if inner.Kind == PNot {
			return c.Props.Get(inner.P)
		}
		if IsTrue(p.P) {
			return Prop{Kind: PFalse}
		}
		if IsFalse(p.P) {
			return Prop{Kind: PTrue}
		}
		return p
	case PAnd:
		if IsFalse(p.PL) || IsFalse(p.PR) {
			return Prop{Kind: PFalse}
		}
		if IsTrue(p.PL) {
			return c.Props.Get(p.PR)
		}
		if IsTrue(p.PR) {
			return c.Props.Get(p.PL)
		}
		return p
	case POr:
		if IsTrue(p.PL) || IsTrue(p.PR) {
			return Prop{Kind: PTrue}
		}
		if IsFalse(p.PL) {
			return c.Props.Get(p.PR)
		}
		if IsFalse(p.PR) {
			return c.Props.Get(p.PL)
		}
		return p
	case PImplies:
		if IsFalse(p.PL) || IsTrue(p.PR) {
			return Prop{Kind: PTrue}
		}
		if IsTrue(p.PL) {
			return c.Props.Get(p.PR)
		}
		return p
	default:
		return p
	}
}

func boolProp(b bool) Prop {
	if b {
		return Prop{Kind: PTrue}
	}
	return Prop{Kind: PFalse}
}

// ResolveProp fully concretizes a proposition once every expression leaf it
// reaches is a known constant (spec.md §4.2). Panics if a comparison cannot
// be reduced — i.e. it is still symbolic — since callers of ResolveProp
// (monomorphization's `if` and `exists` translation) only ever call it once
// every parameter has a binding.
func (c *Component) ResolveProp(p PropIdx) bool {
	if IsTrue(p) {
		return true
	}
	if IsFalse(p) {
		return false
	}
	prop := c.Props.Get(p)
	switch prop.Kind {
	case PNot:
		return !c.ResolveProp(prop.P)
	case PAnd:
		return c.ResolveProp(prop.PL) && c.ResolveProp(prop.PR)
	case POr:
		return c.ResolveProp(prop.PL) || c.ResolveProp(prop.PR)
	case PImplies:
		return !c.ResolveProp(prop.PL) || c.ResolveProp(prop.PR)
	default:
		simplified := c.simplifyProp(prop)
		if simplified.Kind == PTrue {
			return true
		}
		if simplified.Kind == PFalse {
			return false
		}
		panic(fmt.Sprintf("ir: ResolveProp: still symbolic: %s", c.propString(p)))
	}
}

// Func evaluates a concrete Fn application. Panics if any argument is not
// fully concrete — callers only use Func after monomorphization has
// substituted every Param (spec.md §4.2).
func (c *Component) Func(e ExprIdx) uint64 {
	ex := c.Exprs.Get(e)
	if ex.Kind != EFn {
		panic("ir: Func called on a non-Fn expression")
	}
	args := make([]uint64, len(ex.Args))
	for i, a := range ex.Args {
		v, ok := c.AsConcrete(a)
		if !ok {
			panic("ir: Func: argument is not concrete; Param remains")
		}
		args[i] = v
	}
	v, ok := foldFn(ex.FnOp, args)
	if !ok {
		panic("ir: Func: builtin could not be evaluated concretely")
	}
	return v
}

// Bin evaluates a concrete Bin expression. Panics if either operand is not
// fully concrete.
func (c *Component) Bin(e ExprIdx) uint64 {
	ex := c.Exprs.Get(e)
	if ex.Kind != EBin {
		panic("ir: Bin called on a non-Bin expression")
	}
	l, lok := c.AsConcrete(ex.L)
	r, rok := c.AsConcrete(ex.R)
	if !lok || !rok {
		panic("ir: Bin: operand is not concrete; Param remains")
	}
	v, ok := foldBin(ex.Op, l, r)
	if !ok {
		panic("ir: Bin: operator could not be evaluated concretely")
	}
	return v
}

// IfExpr evaluates a concrete If expression's chosen branch to a constant.
func (c *Component) IfExpr(e ExprIdx) uint64 {
	ex := c.Exprs.Get(e)
	if ex.Kind != EIf {
		panic("ir: IfExpr called on a non-If expression")
	}
	if c.ResolveProp(ex.Cond) {
		v, ok := c.AsConcrete(ex.Then)
		if !ok {
			panic("ir: IfExpr: then-branch is not concrete")
		}
		return v
	}
	v, ok := c.AsConcrete(ex.Alt)
	if !ok {
		panic("ir: IfExpr: else-branch is not concrete")
	}
	return v
}

// ExprParams collects every Param handle reachable from an expression, used
// by the discharge pass's model reporter to know which parameters to ask
// the solver for.
func (c *Component) ExprParams(e ExprIdx) []ParamIdx {
	seen := map[ParamIdx]bool{}
	var out []ParamIdx
	var walk func(ExprIdx)
	walk = func(e ExprIdx) {
		ex := c.Exprs.Get(e)
		switch ex.Kind {
		case EParam:
			if !seen[ex.Param] {
				seen[ex.Param] = true
				out = append(out, ex.Param)
			}
		case EBin:
			walk(ex.L)
			walk(ex.R)
		case EFn:
			for _, a := range ex.Args {
				walk(a)
			}
		case EIf:
			for _, p := range c.PropParams(ex.Cond) {
				if !seen[p] {
					seen[p] = true
					out = append(out, p)
				}
			}
			walk(ex.Then)
			walk(ex.Alt)
		}
	}
	walk(e)
	return out
}

// PropParams collects every Param handle reachable from a proposition.
func (c *Component) PropParams(p PropIdx) []ParamIdx {
	seen := map[ParamIdx]bool{}
	var out []ParamIdx
	add := func(ps []ParamIdx) {
		for _, x := range ps {
			if !seen[x] {
				seen[x] = true
				out = append(out, x)
			}
		}
	}
	var walk func(PropIdx)
	walk = func(p PropIdx) {
		prop := c.Props.Get(p)
		switch prop.Kind {
		case PCmp:
			add(c.ExprParams(prop.EL))
			add(c.ExprParams(prop.ER))
		case PNot:
			walk(prop.P)
		case PAnd, POr, PImplies:
			walk(prop.PL)
			walk(prop.PR)
		}
	}
	walk(p)
	return out
}

// Assume adds an assumption, eliding it entirely if it is already
// trivially true and panicking if it is provably false (spec.md §4.2) —
// an assumption a component's own body contradicts is an internal-compiler
// error, not a user diagnostic.
func (c *Component) Assume(p PropIdx) {
	if IsTrue(p) {
		return
	}
	if IsFalse(p) {
		panic("ir: Assume: proposition is provably false")
	}
	c.ExistAssumes = append(c.ExistAssumes, p)
}

// Assert adds an assertion obligation, eliding it if trivially true.
func (c *Component) Assert(p PropIdx) {
	if IsTrue(p) {
		return
	}
	c.ParamAsserts = append(c.ParamAsserts, p)
}
