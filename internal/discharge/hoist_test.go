package discharge_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/filament-lang/filc/internal/ast"
	"github.com/filament-lang/filc/internal/discharge"
	"github.com/filament-lang/filc/internal/ir"
)

// TestHoistThreadsPathCondition checks Testable Property 8: a Fact nested
// inside an If is rewritten to "guard => prop" and pulled to the top level,
// and the If itself survives (Hoist alone never prunes branches — that is
// monomorphization's job).
func TestHoistThreadsPathCondition(t *testing.T) {
	comp := ir.NewComponent("Top", ast.Source)

	flag := comp.AddParam(ir.ParamOwner{Kind: ir.OwnerSig}, "flag", 0)
	guard := comp.AddProp(ir.Prop{
		Kind: ir.PCmp, Cmp: ir.Eq,
		EL: comp.AddExpr(ir.Expr{Kind: ir.EParam, Param: flag}),
		ER: comp.Num(1),
	})
	inner := comp.AddProp(ir.Prop{
		Kind: ir.PCmp, Cmp: ir.Ge,
		EL: comp.AddExpr(ir.Expr{Kind: ir.EParam, Param: flag}),
		ER: comp.Num(0),
	})

	comp.Body = []ir.Command{
		ir.IfCmd{
			Cond: guard,
			Then: []ir.Command{ir.FactCmd{Assume: false, Prop: inner}},
			Else: nil,
		},
	}

	facts := discharge.Hoist(comp)
	require.Len(t, facts, 1)
	require.False(t, facts[0].Assume)

	hoisted, ok := comp.Props.Get(facts[0].Prop)
	require.True(t, ok)
	require.Equal(t, ir.PImplies, hoisted.Kind)
	require.Equal(t, guard, hoisted.PL)
	require.Equal(t, inner, hoisted.PR)

	require.Len(t, comp.Body, 1)
	ifCmd, ok := comp.Body[0].(ir.IfCmd)
	require.True(t, ok)
	require.Empty(t, ifCmd.Then)
}

// TestHoistTopLevelFact checks a Fact with no enclosing If: its path
// condition is the reserved PropTrue, and Implies(true, p) simplifies away
// to p on insert, so the hoisted fact's proposition is exactly the
// original one — threading a trivially-true antecedent is a no-op, not a
// wrapper node.
func TestHoistTopLevelFact(t *testing.T) {
	comp := ir.NewComponent("Top", ast.Source)
	n := comp.AddParam(ir.ParamOwner{Kind: ir.OwnerSig}, "n", 0)
	prop := comp.AddProp(ir.Prop{
		Kind: ir.PCmp, Cmp: ir.Ge,
		EL: comp.AddExpr(ir.Expr{Kind: ir.EParam, Param: n}),
		ER: comp.Num(0),
	})
	comp.Body = []ir.Command{ir.FactCmd{Assume: true, Prop: prop}}

	facts := discharge.Hoist(comp)
	require.Len(t, facts, 1)
	require.True(t, facts[0].Assume)
	require.Empty(t, comp.Body)
	require.Equal(t, prop, facts[0].Prop)
}
