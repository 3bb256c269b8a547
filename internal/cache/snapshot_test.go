package cache_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/filament-lang/filc/internal/ast"
	"github.com/filament-lang/filc/internal/cache"
	"github.com/filament-lang/filc/internal/ctx"
	"github.com/filament-lang/filc/internal/ir"
)

// buildSample constructs a small but structurally rich Component: a let, a
// nested if/for, an instance, and a bundle def, so the round trip exercises
// every cmdSnap variant at least once.
func buildSample() *ir.Component {
	comp := ir.NewComponent("Top", ast.Source)
	n := comp.AddParam(ir.ParamOwner{Kind: ir.OwnerSig}, "n", 0)
	comp.ParamArgs = []ir.ParamIdx{n}

	idx := comp.AddParam(ir.ParamOwner{Kind: ir.OwnerLoop}, "i", 0)
	tap := comp.AddParam(ir.ParamOwner{Kind: ir.OwnerLet}, "tap", 0)
	cond := comp.AddProp(ir.Prop{
		Kind: ir.PCmp, Cmp: ir.Ge,
		EL: comp.AddExpr(ir.Expr{Kind: ir.EParam, Param: n}),
		ER: comp.Num(1),
	})

	port := comp.AddPort(ir.PortOwner{Kind: ir.PortOwnerSig, Dir: ast.Out}, comp.Num(8), ir.Liveness{}, "out", 0)

	comp.Body = []ir.Command{
		ir.LetCmd{Param: tap, Bind: comp.Num(42), Unelaborated: true},
		ir.IfCmd{
			Cond: cond,
			Then: []ir.Command{
				ir.ForLoopCmd{
					Idx:   idx,
					Start: comp.Num(0),
					End:   comp.AddExpr(ir.Expr{Kind: ir.EParam, Param: n}),
					Body: []ir.Command{
						ir.FactCmd{Assume: true, Prop: cond},
					},
				},
			},
			Else: []ir.Command{ir.BundleDefCmd{Port: port}},
		},
	}
	return comp
}

func TestSnapshotRoundTrip(t *testing.T) {
	comp := buildSample()
	snap := cache.ToSnapshot(comp)
	rebuilt := cache.FromSnapshot(snap)

	require.Equal(t, comp.Name, rebuilt.Name)
	require.Equal(t, comp.Kind, rebuilt.Kind)
	if diff := cmp.Diff(comp.Body, rebuilt.Body); diff != "" {
		t.Fatalf("Body mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, comp.ParamArgs, rebuilt.ParamArgs)

	var wantExprs, gotExprs []ir.Expr
	comp.Exprs.Each(func(_ ir.ExprIdx, e ir.Expr) { wantExprs = append(wantExprs, e) })
	rebuilt.Exprs.Each(func(_ ir.ExprIdx, e ir.Expr) { gotExprs = append(gotExprs, e) })
	require.Equal(t, wantExprs, gotExprs)

	var wantProps, gotProps []ir.Prop
	comp.Props.Each(func(_ ir.PropIdx, p ir.Prop) { wantProps = append(wantProps, p) })
	rebuilt.Props.Each(func(_ ir.PropIdx, p ir.Prop) { gotProps = append(gotProps, p) })
	require.Equal(t, wantProps, gotProps)
}

func TestContextSnapshotPreservesCompIdxNumbering(t *testing.T) {
	c := ctx.New()
	a := ir.NewComponent("A", ast.External)
	aID := c.Add(a)
	b := ir.NewComponent("B", ast.Source)
	inst := b.AddInstance(aID, nil, "a", 0)
	b.Body = []ir.Command{ir.InstanceCmd{Inst: inst}}
	bID := c.Add(b)

	snap := cache.SnapshotContext(c, bID)
	require.Equal(t, uint32(bID), snap.EntryIdx)
	require.Len(t, snap.Comps, 2)

	out, entry := cache.RebuildContext(snap)
	require.Equal(t, bID, entry)

	rebuiltB := out.MustGet(entry)
	instCmd := rebuiltB.Body[0].(ir.InstanceCmd)
	rebuiltInst, ok := rebuiltB.Instances.Get(instCmd.Inst)
	require.True(t, ok)
	require.Equal(t, aID, rebuiltInst.Comp)

	rebuiltA := out.MustGet(rebuiltInst.Comp)
	require.Equal(t, "A", rebuiltA.Name)
}
