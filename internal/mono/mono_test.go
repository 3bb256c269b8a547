package mono_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/filament-lang/filc/internal/ast"
	"github.com/filament-lang/filc/internal/ctx"
	"github.com/filament-lang/filc/internal/ir"
	"github.com/filament-lang/filc/internal/mono"
)

// TestMonomorphizeUnrollsForLoop checks Testable Property 5: a ForLoop
// disappears entirely, replaced by N copies of its body with the index
// substituted.
func TestMonomorphizeUnrollsForLoop(t *testing.T) {
	c := ctx.New()

	top := ir.NewComponent("Top", ast.Source)
	n := top.AddParam(ir.ParamOwner{Kind: ir.OwnerSig}, "N", 0)
	top.ParamArgs = []ir.ParamIdx{n}

	idx := top.AddParam(ir.ParamOwner{Kind: ir.OwnerLoop}, "i", 0)
	out := top.AddParam(ir.ParamOwner{Kind: ir.OwnerLet}, "tap", 0)
	top.Body = []ir.Command{
		ir.ForLoopCmd{
			Idx:   idx,
			Start: top.Num(0),
			End:   top.AddExpr(ir.Expr{Kind: ir.EParam, Param: n}),
			Body: []ir.Command{
				ir.LetCmd{Param: out, Bind: top.AddExpr(ir.Expr{Kind: ir.EParam, Param: idx}), Unelaborated: true},
			},
		},
	}
	topID := c.Add(top)
	c.SetEntry(topID, []uint64{3})

	monoOut, fresh, err := mono.Run(c)
	require.NoError(t, err)
	freshTop := monoOut.MustGet(fresh)

	require.Len(t, freshTop.Body, 3)
	for i, cmd := range freshTop.Body {
		lc, ok := cmd.(ir.LetCmd)
		require.True(t, ok)
		v, ok := freshTop.AsConcrete(lc.Bind)
		require.True(t, ok)
		require.Equal(t, uint64(i), v)
	}
}

// TestMonomorphizeIfPrunesBranch checks Testable Property 6: only the
// chosen branch's body survives, and the If command itself never appears.
func TestMonomorphizeIfPrunesBranch(t *testing.T) {
	run := func(flag uint64) *ir.Component {
		c := ctx.New()
		top := ir.NewComponent("Top", ast.Source)
		flagP := top.AddParam(ir.ParamOwner{Kind: ir.OwnerSig}, "Flag", 0)
		top.ParamArgs = []ir.ParamIdx{flagP}

		thenP := top.AddParam(ir.ParamOwner{Kind: ir.OwnerLet}, "then_tap", 0)
		elseP := top.AddParam(ir.ParamOwner{Kind: ir.OwnerLet}, "else_tap", 0)
		cond := top.AddProp(ir.Prop{
			Kind: ir.PCmp, Cmp: ir.Eq,
			EL: top.AddExpr(ir.Expr{Kind: ir.EParam, Param: flagP}),
			ER: top.Num(1),
		})
		top.Body = []ir.Command{
			ir.IfCmd{
				Cond: cond,
				Then: []ir.Command{ir.LetCmd{Param: thenP, Bind: top.Num(10), Unelaborated: true}},
				Else: []ir.Command{ir.LetCmd{Param: elseP, Bind: top.Num(20), Unelaborated: true}},
			},
		}
		topID := c.Add(top)
		c.SetEntry(topID, []uint64{flag})

		out, fresh, err := mono.Run(c)
		require.NoError(t, err)
		return out.MustGet(fresh)
	}

	then := run(1)
	require.Len(t, then.Body, 1)
	lc, ok := then.Body[0].(ir.LetCmd)
	require.True(t, ok)
	v, ok := then.AsConcrete(lc.Bind)
	require.True(t, ok)
	require.Equal(t, uint64(10), v)

	alt := run(0)
	require.Len(t, alt.Body, 1)
	lc, ok = alt.Body[0].(ir.LetCmd)
	require.True(t, ok)
	v, ok = alt.AsConcrete(lc.Bind)
	require.True(t, ok)
	require.Equal(t, uint64(20), v)
}

// TestMonomorphizeOpaqueExistentialNotSubstituted checks that a proxy Param
// carrying ExistsOpaque never substitutes its readback value into the
// caller's own expressions: the value is known (readback populates
// sig.bind the same as a transparent existential) but translateExpr must
// still refuse it, so a Let that merely forwards the proxy's value fails to
// concretize and is dropped rather than folding to a constant.
func TestMonomorphizeOpaqueExistentialNotSubstituted(t *testing.T) {
	c := ctx.New()

	reg := ir.NewComponent("Reg", ast.Source)
	v := reg.AddParam(ir.ParamOwner{Kind: ir.OwnerExists, ExistsOpaque: true}, "v", 0)
	reg.Body = []ir.Command{
		ir.ExistsCmd{Param: v, Bind: reg.Num(5)},
	}
	regID := c.Add(reg)

	top := ir.NewComponent("Top", ast.Source)
	proxy := top.AddParam(ir.ParamOwner{Kind: ir.OwnerInstance, ExistsOpaque: true}, "v_proxy", 0)
	readback := top.AddParam(ir.ParamOwner{Kind: ir.OwnerLet}, "readback", 0)
	instIdx := top.AddInstance(regID, nil, "r", 0)
	inst, ok := top.Instances.Get(instIdx)
	require.True(t, ok)
	inst.Params = []ir.ParamIdx{proxy}
	top.Instances.Set(instIdx, inst)

	top.Body = []ir.Command{
		ir.InstanceCmd{Inst: instIdx},
		ir.LetCmd{Param: readback, Bind: top.AddExpr(ir.Expr{Kind: ir.EParam, Param: proxy}), Unelaborated: true},
	}
	topID := c.Add(top)
	c.SetEntry(topID, nil)

	out, fresh, err := mono.Run(c)
	require.NoError(t, err)
	freshTop := out.MustGet(fresh)

	// The opaque readback never resolves to a constant, so the Let that
	// tried to forward it is dropped; only the InstanceCmd survives.
	require.Len(t, freshTop.Body, 1)
	_, ok = freshTop.Body[0].(ir.InstanceCmd)
	require.True(t, ok)
}

// TestMonomorphizeExistentialReadback checks that a callee's `some param
// where ...` binding is published and read back by the caller's Instance,
// even though Instance.Params is only ever positionally zipped against the
// callee's own existentials (body.go's existentialOrder).
func TestMonomorphizeExistentialReadback(t *testing.T) {
	c := ctx.New()

	reg := ir.NewComponent("Reg", ast.Source)
	v := reg.AddParam(ir.ParamOwner{Kind: ir.OwnerExists}, "v", 0)
	reg.ExistAssumes = []ir.PropIdx{
		reg.AddProp(ir.Prop{Kind: ir.PCmp, Cmp: ir.Eq, EL: reg.AddExpr(ir.Expr{Kind: ir.EParam, Param: v}), ER: reg.Num(5)}),
	}
	reg.Body = []ir.Command{
		ir.ExistsCmd{Param: v, Bind: reg.Num(5)},
	}
	regID := c.Add(reg)

	top := ir.NewComponent("Top", ast.Source)
	proxy := top.AddParam(ir.ParamOwner{Kind: ir.OwnerInstance}, "v_proxy", 0)
	readback := top.AddParam(ir.ParamOwner{Kind: ir.OwnerLet}, "readback", 0)
	instIdx := top.AddInstance(regID, nil, "r", 0)
	inst, ok := top.Instances.Get(instIdx)
	require.True(t, ok)
	inst.Params = []ir.ParamIdx{proxy}
	top.Instances.Set(instIdx, inst)

	top.Body = []ir.Command{
		ir.InstanceCmd{Inst: instIdx},
		ir.LetCmd{Param: readback, Bind: top.AddExpr(ir.Expr{Kind: ir.EParam, Param: proxy}), Unelaborated: true},
	}
	topID := c.Add(top)
	c.SetEntry(topID, nil)

	out, fresh, err := mono.Run(c)
	require.NoError(t, err)
	freshTop := out.MustGet(fresh)

	require.Len(t, freshTop.Body, 2)
	_, ok = freshTop.Body[0].(ir.InstanceCmd)
	require.True(t, ok)
	lc, ok := freshTop.Body[1].(ir.LetCmd)
	require.True(t, ok)
	val, ok := freshTop.AsConcrete(lc.Bind)
	require.True(t, ok)
	require.Equal(t, uint64(5), val)
}

// TestMonomorphizePassesThroughExternal checks that an External component
// is copied once, unspecialized, with its signature ports and events
// preserved in the output Context.
func TestMonomorphizePassesThroughExternal(t *testing.T) {
	c := ctx.New()

	ext := ir.NewComponent("Reg", ast.External)
	ext.AddPort(ir.PortOwner{Kind: ir.PortOwnerSig, Dir: ast.Out}, ext.Num(8), ir.Liveness{}, "out", 0)
	extID := c.Add(ext)

	top := ir.NewComponent("Top", ast.Source)
	instIdx := top.AddInstance(extID, nil, "r", 0)
	top.Body = []ir.Command{ir.InstanceCmd{Inst: instIdx}}
	topID := c.Add(top)
	c.SetEntry(topID, nil)

	outCtx, fresh, err := mono.Run(c)
	require.NoError(t, err)
	freshTop := outCtx.MustGet(fresh)

	instCmd, ok := freshTop.Body[0].(ir.InstanceCmd)
	require.True(t, ok)
	freshInst, ok := freshTop.Instances.Get(instCmd.Inst)
	require.True(t, ok)

	freshReg := outCtx.MustGet(freshInst.Comp)
	require.Equal(t, ast.External, freshReg.Kind)
	var found bool
	freshReg.Ports.Each(func(_ ir.PortIdx, p ir.Port) {
		if p.Name == "out" {
			found = true
			v, ok := freshReg.AsConcrete(p.Width)
			require.True(t, ok)
			require.Equal(t, uint64(8), v)
		}
	})
	require.True(t, found)
}

// TestMonomorphizeUnresolvedArgumentPanics checks that an instance argument
// mentioning an out-of-scope parameter is spec.md §7's internal-compiler
// error class, reported by panicking with a component dump rather than
// returned as an ordinary error through mono.Run.
func TestMonomorphizeUnresolvedArgumentPanics(t *testing.T) {
	c := ctx.New()

	ext := ir.NewComponent("Leaf", ast.External)
	extID := c.Add(ext)

	top := ir.NewComponent("Top", ast.Source)
	stray := top.AddParam(ir.ParamOwner{Kind: ir.OwnerLet}, "stray", 0)
	instIdx := top.AddInstance(extID, []ir.ExprIdx{top.AddExpr(ir.Expr{Kind: ir.EParam, Param: stray})}, "r", 0)
	top.Body = []ir.Command{ir.InstanceCmd{Inst: instIdx}}
	topID := c.Add(top)
	c.SetEntry(topID, nil)

	require.Panics(t, func() {
		_, _, _ = mono.Run(c)
	})
}
