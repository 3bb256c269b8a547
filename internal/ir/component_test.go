package ir_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/filament-lang/filc/internal/ast"
	"github.com/filament-lang/filc/internal/ir"
)

func newComp(t *testing.T) *ir.Component {
	t.Helper()
	return ir.NewComponent("C", ast.Source)
}

func TestReservedHandles(t *testing.T) {
	c := newComp(t)
	require.Equal(t, ir.ExprIdx(0), c.Num(0))
	require.Equal(t, ir.ExprIdx(1), c.Num(1))
	require.Equal(t, ir.PropIdx(0), ir.PropFalse)
	require.Equal(t, ir.PropIdx(1), ir.PropTrue)
}

func TestExprInterningDedupes(t *testing.T) {
	c := newComp(t)
	p := c.AddParam(ir.ParamOwner{Kind: ir.OwnerSig}, "W", 0)
	e1 := c.AddExpr(ir.Expr{Kind: ir.EBin, Op: ir.Add, L: c.AddExpr(ir.Expr{Kind: ir.EParam, Param: p}), R: c.Num(3)})
	e2 := c.AddExpr(ir.Expr{Kind: ir.EBin, Op: ir.Add, L: c.AddExpr(ir.Expr{Kind: ir.EParam, Param: p}), R: c.Num(3)})
	require.Equal(t, e1, e2)
}

func TestAddIdentitySimplifications(t *testing.T) {
	c := newComp(t)
	pidx := c.AddParam(ir.ParamOwner{Kind: ir.OwnerSig}, "x", 0)
	x := c.AddExpr(ir.Expr{Kind: ir.EParam, Param: pidx})

	// 0 + e -> e
	sum := c.AddExpr(ir.Expr{Kind: ir.EBin, Op: ir.Add, L: c.Num(0), R: x})
	require.Equal(t, x, sum)

	// e * 0 -> 0
	prod := c.AddExpr(ir.Expr{Kind: ir.EBin, Op: ir.Mul, L: x, R: c.Num(0)})
	require.Equal(t, c.Num(0), prod)

	// e * 1 -> e
	prod1 := c.AddExpr(ir.Expr{Kind: ir.EBin, Op: ir.Mul, L: x, R: c.Num(1)})
	require.Equal(t, x, prod1)

	// e / 1 -> e
	div1 := c.AddExpr(ir.Expr{Kind: ir.EBin, Op: ir.Div, L: x, R: c.Num(1)})
	require.Equal(t, x, div1)

	// constant folding
	folded := c.AddExpr(ir.Expr{Kind: ir.EBin, Op: ir.Add, L: c.Num(2), R: c.Num(3)})
	require.Equal(t, c.Num(5), folded)
}

func TestPropSimplifications(t *testing.T) {
	c := newComp(t)
	pidx := c.AddParam(ir.ParamOwner{Kind: ir.OwnerSig}, "p", 0)
	x := c.AddExpr(ir.Expr{Kind: ir.EParam, Param: pidx})
	p := c.AddProp(ir.Prop{Kind: ir.PCmp, Cmp: ir.Gt, EL: x, ER: c.Num(0)})

	// Not(Not(p)) -> p
	notnot := c.AddProp(ir.Prop{Kind: ir.PNot, P: c.AddProp(ir.Prop{Kind: ir.PNot, P: p})})
	require.Equal(t, p, notnot)

	// And(p, True) -> p
	and := c.AddProp(ir.Prop{Kind: ir.PAnd, PL: p, PR: ir.PropTrue})
	require.Equal(t, p, and)

	// Implies(False, _) -> True
	impl := c.AddProp(ir.Prop{Kind: ir.PImplies, PL: ir.PropFalse, PR: p})
	require.Equal(t, ir.PropTrue, impl)

	// constant comparison reduces
	cmp := c.AddProp(ir.Prop{Kind: ir.PCmp, Cmp: ir.Gt, EL: c.Num(4), ER: c.Num(1)})
	require.Equal(t, ir.PropTrue, cmp)
}

func TestTimeCmpSameEventReducesToCmp(t *testing.T) {
	c := newComp(t)
	ev := c.AddEvent(ir.TimeSub{Kind: ir.TSUnit, Offset: c.Num(1)}, "G", true, 0)
	t1 := c.AddTime(ir.Time{Event: ev, Offset: c.Num(3)})
	t2 := c.AddTime(ir.Time{Event: ev, Offset: c.Num(1)})
	prop := c.AddProp(ir.Prop{Kind: ir.PTimeCmp, Cmp: ir.Gt, TL: t1, TR: t2})
	require.Equal(t, ir.PropTrue, prop)
}

func TestConcreteExpressionsFoldOnInsert(t *testing.T) {
	c := newComp(t)
	sum := c.AddExpr(ir.Expr{Kind: ir.EBin, Op: ir.Add, L: c.Num(2), R: c.Num(3)})
	require.Equal(t, uint64(5), mustConcrete(t, c, sum))

	pw := c.AddExpr(ir.Expr{Kind: ir.EFn, FnOp: ir.Pow2, Args: []ir.ExprIdx{c.Num(4)}})
	require.Equal(t, uint64(16), mustConcrete(t, c, pw))

	ifx := c.AddExpr(ir.Expr{
		Kind: ir.EIf,
		Cond: c.AddProp(ir.Prop{Kind: ir.PCmp, Cmp: ir.Gt, EL: c.Num(2), ER: c.Num(1)}),
		Then: c.Num(10), Alt: c.Num(20),
	})
	require.Equal(t, c.Num(10), ifx) // collapsed on insert, since the condition is already concrete
}

func mustConcrete(t *testing.T, c *ir.Component, e ir.ExprIdx) uint64 {
	t.Helper()
	v, ok := c.AsConcrete(e)
	require.True(t, ok)
	return v
}

func TestExprParamsCollectsReachableParams(t *testing.T) {
	c := newComp(t)
	p1 := c.AddParam(ir.ParamOwner{Kind: ir.OwnerSig}, "a", 0)
	p2 := c.AddParam(ir.ParamOwner{Kind: ir.OwnerSig}, "b", 0)
	e := c.AddExpr(ir.Expr{
		Kind: ir.EBin, Op: ir.Add,
		L: c.AddExpr(ir.Expr{Kind: ir.EParam, Param: p1}),
		R: c.AddExpr(ir.Expr{Kind: ir.EParam, Param: p2}),
	})
	params := c.ExprParams(e)
	require.ElementsMatch(t, []ir.ParamIdx{p1, p2}, params)
}

func TestAssumePanicsOnProvablyFalse(t *testing.T) {
	c := newComp(t)
	require.Panics(t, func() {
		c.Assume(ir.PropFalse)
	})
}
