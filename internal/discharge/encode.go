package discharge

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"github.com/filament-lang/filc/internal/ir"
)

// Sort is the numeric domain a discharge session encodes obligations over
// (spec.md §4.7 step 1). The zero value is unbounded Int, the default.
type Sort struct {
	BitVec bool
	Width  uint // the declared bit-width N; storage uses 2N bits so a Bin op can't wrap before the overflow guard below catches it.
}

func (s Sort) smt() string {
	if !s.BitVec {
		return "Int"
	}
	w, err := safecast.Conv[uint](2 * uint64(s.Width))
	if err != nil {
		w = 2 * s.Width // width is caller-validated against uint32 already; this only guards the multiply
	}
	return fmt.Sprintf("(_ BitVec %d)", w)
}

func (s Sort) lit(v uint64) string {
	if !s.BitVec {
		return fmt.Sprintf("%d", v)
	}
	return fmt.Sprintf("(_ bv%d %d)", v, 2*s.Width)
}

// op names the binary/comparison operator family for s's sort.
func (s Sort) op(intName, bvName string) string {
	if s.BitVec {
		return bvName
	}
	return intName
}

// Encoder renders one component's interned arenas as SMT-LIB 2.6
// `define-fun` terms named $eN/$tN/$pN (spec.md §4.7 steps 1-3), tracking
// which builtin functions need a `declare-fun` prelude entry.
type Encoder struct {
	Sort    Sort
	Backend Backend

	builtinsUsed map[ir.FnOp]bool
}

// NewEncoder builds an Encoder for the given sort/backend.
func NewEncoder(sort Sort, backend Backend) *Encoder {
	return &Encoder{Sort: sort, Backend: backend, builtinsUsed: map[ir.FnOp]bool{}}
}

func eRef(i ir.ExprIdx) string { return fmt.Sprintf("$e%d", i) }
func tRef(i ir.TimeIdx) string { return fmt.Sprintf("$t%d", i) }
func pRef(i ir.PropIdx) string { return fmt.Sprintf("$p%d", i) }

// Prelude returns the min/max/abs helper definitions spec.md §6 requires
// every session to define first.
func (e *Encoder) Prelude() []string {
	s := e.Sort.smt()
	le := e.Sort.op("<=", "bvule")
	lt := e.Sort.op("<", "bvult")
	sub := e.Sort.op("-", "bvsub")
	neg := e.Sort.op("-", "bvneg")
	return []string{
		fmt.Sprintf("(define-fun min ((a %s) (b %s)) %s (ite (%s a b) a b))", s, s, s, le),
		fmt.Sprintf("(define-fun max ((a %s) (b %s)) %s (ite (%s a b) b a))", s, s, s, le),
		fmt.Sprintf("(define-fun abs ((a %s)) %s (ite (%s a %s) (%s a) a))", s, s, lt, e.Sort.lit(0), neg),
		fmt.Sprintf("; sub is plain (%s), not saturating; the IR leaves an underflowing constant subtraction unfolded", sub),
	}
}

// Declarations emits `declare-const` for every Param and Event the
// component's signature and body reference (spec.md §4.7 step 2).
func (e *Encoder) Declarations(comp *ir.Component) []string {
	var out []string
	sort := e.Sort.smt()
	comp.Params.Each(func(i ir.ParamIdx, p ir.Param) {
		out = append(out, fmt.Sprintf("(declare-const %s %s) ; %s", e.paramSym(comp, i), sort, paramLabel(p)))
	})
	comp.Events.Each(func(i ir.EventIdx, ev ir.Event) {
		out = append(out, fmt.Sprintf("(declare-const %s %s) ; event %s", e.eventSym(i), sort, ev.Name))
	})
	return out
}

func paramLabel(p ir.Param) string {
	if p.Name != "" {
		return p.Name
	}
	return "param"
}

func (e *Encoder) paramSym(comp *ir.Component, i ir.ParamIdx) string {
	name := fmt.Sprintf("p%d", i)
	if p, ok := comp.Params.Get(i); ok && p.Name != "" {
		name = p.Name
	}
	return e.Backend.Symbol("param_", fmt.Sprintf("%s_%d", name, i))
}

func (e *Encoder) eventSym(i ir.EventIdx) string {
	return e.Backend.Symbol("evt_", fmt.Sprintf("%d", i))
}

// ExistFn names the uninterpreted function standing in for one of callee's
// non-opaque existential parameters, identified by its home ParamIdx in
// callee's own store (spec.md §4.7 steps 2,4). Its value is unconstrained
// here, since it belongs to the callee component's own discharge, but the
// caller asserts its local proxy equals this function applied to the
// instance's concrete args.
func (e *Encoder) ExistFn(callee ir.CompIdx, param ir.ParamIdx) string {
	return e.Backend.Symbol("existfn_", fmt.Sprintf("%d_%d", callee, param))
}

// DeclareExistFn emits the declare-fun for an existential function over
// arity-many Sort arguments.
func (e *Encoder) DeclareExistFn(name string, arity int) string {
	sort := e.Sort.smt()
	args := make([]string, arity)
	for i := range args {
		args[i] = sort
	}
	return fmt.Sprintf("(declare-fun %s (%s) %s)", name, strings.Join(args, " "), sort)
}

// Definitions walks comp's interned Expr/Time/Prop stores in arena order
// and returns one `define-fun` per handle (spec.md §4.7 step 3). Handles
// already hold their simplified canonical form thanks to on-insert
// simplification, so this never re-derives anything the IR hasn't already
// folded.
func (e *Encoder) Definitions(comp *ir.Component) []string {
	var out []string
	comp.Exprs.Each(func(i ir.ExprIdx, ex ir.Expr) {
		out = append(out, fmt.Sprintf("(define-fun %s () %s %s)", eRef(i), e.Sort.smt(), e.expr(comp, ex)))
	})
	comp.Times.Each(func(i ir.TimeIdx, t ir.Time) {
		out = append(out, fmt.Sprintf("(define-fun %s () %s (%s %s %s))", tRef(i), e.Sort.smt(), e.Sort.op("+", "bvadd"), e.eventSym(t.Event), eRef(t.Offset)))
	})
	comp.Props.Each(func(i ir.PropIdx, p ir.Prop) {
		out = append(out, fmt.Sprintf("(define-fun %s () Bool %s)", pRef(i), e.prop(comp, p)))
	})
	return out
}

// Builtins returns the declare-fun lines for every Fn builtin referenced
// by a symbolic (not constant-folded) expression, discovered while
// Definitions ran. Builtins are modeled as uninterpreted total functions:
// the IR already constant-folds every concrete application on insert
// (internal/ir/builtins.go), so a symbolic Fn node reaching discharge
// means at least one Param-dependent argument, and the solver reasons
// about it only via whatever Cmp/Implies facts mention it directly.
func (e *Encoder) Builtins() []string {
	var out []string
	for _, op := range []ir.FnOp{ir.Pow2, ir.Log2, ir.SinBits, ir.CosBits, ir.BitRev} {
		if !e.builtinsUsed[op] {
			continue
		}
		arity := 1
		if op == ir.SinBits || op == ir.CosBits || op == ir.BitRev {
			arity = 2
		}
		args := make([]string, arity)
		for i := range args {
			args[i] = e.Sort.smt()
		}
		out = append(out, fmt.Sprintf("(declare-fun %s (%s) %s)", e.fnSym(op), strings.Join(args, " "), e.Sort.smt()))
	}
	return out
}

func (e *Encoder) fnSym(op ir.FnOp) string {
	return e.Backend.Symbol("fn_", op.String())
}

func (e *Encoder) expr(comp *ir.Component, ex ir.Expr) string {
	switch ex.Kind {
	case ir.EParam:
		return e.paramSym(comp, ex.Param)
	case ir.EConcrete:
		return e.Sort.lit(ex.Concrete)
	case ir.EBin:
		return fmt.Sprintf("(%s %s %s)", e.binOp(ex.Op), eRef(ex.L), eRef(ex.R))
	case ir.EFn:
		e.builtinsUsed[ex.FnOp] = true
		args := make([]string, len(ex.Args))
		for i, a := range ex.Args {
			args[i] = eRef(a)
		}
		return fmt.Sprintf("(%s %s)", e.fnSym(ex.FnOp), strings.Join(args, " "))
	case ir.EIf:
		return fmt.Sprintf("(ite %s %s %s)", pRef(ex.Cond), eRef(ex.Then), eRef(ex.Alt))
	default:
		return e.Sort.lit(0)
	}
}

func (e *Encoder) binOp(op ir.BinOp) string {
	switch op {
	case ir.Add:
		return e.Sort.op("+", "bvadd")
	case ir.Sub:
		return e.Sort.op("-", "bvsub")
	case ir.Mul:
		return e.Sort.op("*", "bvmul")
	case ir.Div:
		return e.Sort.op("div", "bvudiv")
	case ir.Mod:
		return e.Sort.op("mod", "bvurem")
	default:
		panic("discharge: unknown BinOp")
	}
}

func (e *Encoder) cmpOp(op ir.CmpOp) string {
	switch op {
	case ir.Gt:
		return e.Sort.op(">", "bvugt")
	case ir.Ge:
		return e.Sort.op(">=", "bvuge")
	case ir.Eq:
		return "="
	default:
		panic("discharge: unknown CmpOp")
	}
}

func (e *Encoder) prop(comp *ir.Component, p ir.Prop) string {
	switch p.Kind {
	case ir.PFalse:
		return "false"
	case ir.PTrue:
		return "true"
	case ir.PCmp:
		return fmt.Sprintf("(%s %s %s)", e.cmpOp(p.Cmp), eRef(p.EL), eRef(p.ER))
	case ir.PTimeCmp:
		return fmt.Sprintf("(%s %s %s)", e.cmpOp(p.Cmp), tRef(p.TL), tRef(p.TR))
	case ir.PTimeSubCmp:
		return fmt.Sprintf("(%s %s %s)", e.cmpOp(p.Cmp), e.timeSub(comp, p.SL), e.timeSub(comp, p.SR))
	case ir.PNot:
		return fmt.Sprintf("(not %s)", pRef(p.P))
	case ir.PAnd:
		return fmt.Sprintf("(and %s %s)", pRef(p.PL), pRef(p.PR))
	case ir.POr:
		return fmt.Sprintf("(or %s %s)", pRef(p.PL), pRef(p.PR))
	case ir.PImplies:
		return fmt.Sprintf("(=> %s %s)", pRef(p.PL), pRef(p.PR))
	default:
		return "true"
	}
}

func (e *Encoder) timeSub(comp *ir.Component, ts ir.TimeSub) string {
	switch ts.Kind {
	case ir.TSUnit:
		return eRef(ts.Offset)
	case ir.TSSym:
		return fmt.Sprintf("(abs (%s %s %s))", e.Sort.op("-", "bvsub"), tRef(ts.L), tRef(ts.R))
	default:
		return e.Sort.lit(0)
	}
}

// OverflowGuards returns, in bit-vector mode, one assertion per declared
// expression trapping it inside [0, 2^width) (spec.md §4.7 step 1: "every
// declared expression additionally asserts 0 ≤ e < 2^width to trap
// overflow"). No-op in Int mode.
func (e *Encoder) OverflowGuards(comp *ir.Component) []string {
	if !e.Sort.BitVec {
		return nil
	}
	bound := e.Sort.lit(uint64(1) << e.Sort.Width)
	var out []string
	comp.Exprs.Each(func(i ir.ExprIdx, _ ir.Expr) {
		ref := eRef(i)
		out = append(out, fmt.Sprintf("(assert (and (bvuge %s %s) (bvult %s %s)))", ref, e.Sort.lit(0), ref, bound))
	})
	return out
}
