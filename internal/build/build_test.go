package build_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/filament-lang/filc/internal/ast"
	"github.com/filament-lang/filc/internal/build"
	"github.com/filament-lang/filc/internal/ctx"
	"github.com/filament-lang/filc/internal/ir"
	"github.com/filament-lang/filc/internal/posn"
)

func pos(t *posn.Table, file string, s, e int) posn.Pos {
	return t.Add(file, s, e)
}

// program builds a two-component AST: an External "Reg" with one signature
// event and one output port whose width is its sole parameter, and a
// Source "Top" that instances and invokes it, connecting the invocation's
// output to a component-local bundle-free output port.
func program(t *posn.Table) *ast.Program {
	regPos := pos(t, "t.fil", 0, 1)
	reg := &ast.Component{
		Pos:  regPos,
		Name: "Reg",
		Kind: ast.External,
		Params: []ast.ParamDecl{
			{Pos: regPos, Name: "W"},
		},
		Events: []ast.EventDecl{
			{Pos: regPos, Name: "G", Delay: &ast.UnitSub{Offset: &ast.IntLit{Value: 1}}},
		},
		Outputs: []ast.PortDecl{
			{Pos: regPos, Name: "out", Dir: ast.Out, Width: &ast.ParamRef{Name: "W"}},
		},
	}

	topPos := pos(t, "t.fil", 2, 3)
	top := &ast.Component{
		Pos:  topPos,
		Name: "Top",
		Kind: ast.Source,
		Events: []ast.EventDecl{
			{Pos: topPos, Name: "L", Delay: &ast.UnitSub{Offset: &ast.IntLit{Value: 1}}},
		},
		Outputs: []ast.PortDecl{
			{Pos: topPos, Name: "result", Dir: ast.Out, Width: &ast.IntLit{Value: 8}},
		},
		Body: []ast.Command{
			&ast.InstanceDecl{
				Bind: "r", Comp: "Reg",
				Args: []ast.Expr{&ast.IntLit{Value: 8}},
			},
			&ast.InvokeDecl{
				Bind: "i", Inst: "r",
				Events: []ast.EventBindSurface{
					{Event: "G", Arg: ast.Time{Event: "L", Offset: &ast.IntLit{Value: 0}}},
				},
			},
			&ast.ConnectDecl{
				Dst: ast.PortAccess{Port: "result"},
				Src: ast.PortAccess{Owner: "i", Port: "out"},
			},
		},
	}

	return &ast.Program{File: "t.fil", Components: []*ast.Component{reg, top}}
}

func TestLowerProducesExpectedStructure(t *testing.T) {
	table := posn.New()
	prog := program(table)

	c := ctx.New()
	diags := build.Lower(c, table, prog)
	require.True(t, diags.Empty(), "unexpected diagnostics: %v", diags.Reports())

	regID, ok := c.ByName("Reg")
	require.True(t, ok)
	reg := c.MustGet(regID)
	require.Len(t, reg.ParamArgs, 1)
	require.Len(t, reg.EventArgs, 1)
	require.Nil(t, reg.Body)

	topID, ok := c.ByName("Top")
	require.True(t, ok)
	top := c.MustGet(topID)
	require.Len(t, top.Body, 3)

	instCmd, ok := top.Body[0].(ir.InstanceCmd)
	require.True(t, ok)
	inst, ok := top.Instances.Get(instCmd.Inst)
	require.True(t, ok)
	require.Equal(t, regID, inst.Comp)

	invCmd, ok := top.Body[1].(ir.InvokeCmd)
	require.True(t, ok)
	require.Len(t, invCmd.Conns, 0) // Reg has no input ports to auto-connect

	inv, ok := top.Invokes.Get(invCmd.Invoke)
	require.True(t, ok)
	require.Len(t, inv.Ports, 1) // Reg's one output port materialized
	require.Len(t, inv.Events, 1)

	connCmd, ok := top.Body[2].(ir.ConnectCmd)
	require.True(t, ok)
	require.Equal(t, inv.Ports[0], connCmd.Src.Port)
}

// TestLowerDeclaresExistentialProxies checks that instancing a callee with
// an existential parameter allocates a matching OwnerInstance proxy Param
// on the Instance, rather than leaving Instance.Params empty.
func TestLowerDeclaresExistentialProxies(t *testing.T) {
	table := posn.New()
	regPos := pos(table, "t.fil", 0, 1)
	reg := &ast.Component{
		Pos:  regPos,
		Name: "Reg",
		Kind: ast.Source,
		Body: []ast.Command{
			&ast.ExistsDecl{Name: "v", Bind: &ast.IntLit{Value: 5}, Opaque: true},
		},
	}

	topPos := pos(table, "t.fil", 2, 3)
	top := &ast.Component{
		Pos:  topPos,
		Name: "Top",
		Kind: ast.Source,
		Body: []ast.Command{
			&ast.InstanceDecl{Bind: "r", Comp: "Reg"},
		},
	}

	c := ctx.New()
	diags := build.Lower(c, table, &ast.Program{File: "t.fil", Components: []*ast.Component{reg, top}})
	require.True(t, diags.Empty(), "unexpected diagnostics: %v", diags.Reports())

	regID, ok := c.ByName("Reg")
	require.True(t, ok)
	regComp := c.MustGet(regID)
	var existParam ir.ParamIdx
	regComp.Params.Each(func(idx ir.ParamIdx, p ir.Param) {
		if p.Owner.Kind == ir.OwnerExists {
			existParam = idx
		}
	})

	topID, ok := c.ByName("Top")
	require.True(t, ok)
	topComp := c.MustGet(topID)
	instCmd, ok := topComp.Body[0].(ir.InstanceCmd)
	require.True(t, ok)
	inst, ok := topComp.Instances.Get(instCmd.Inst)
	require.True(t, ok)
	require.Len(t, inst.Params, 1)

	proxy, ok := topComp.Params.Get(inst.Params[0])
	require.True(t, ok)
	require.Equal(t, ir.OwnerInstance, proxy.Owner.Kind)
	require.Equal(t, instCmd.Inst, proxy.Owner.InstanceInst)
	require.Equal(t, existParam, proxy.Owner.InstanceBase.Key)
	require.Equal(t, regID, proxy.Owner.InstanceBase.Owner)
	require.True(t, proxy.Owner.ExistsOpaque)
}

func TestLowerReportsUndefinedComponent(t *testing.T) {
	table := posn.New()
	p := pos(table, "t.fil", 0, 1)
	top := &ast.Component{
		Pos: p, Name: "Top", Kind: ast.Source,
		Body: []ast.Command{
			&ast.InstanceDecl{Bind: "x", Comp: "Missing"},
		},
	}
	c := ctx.New()
	diags := build.Lower(c, table, &ast.Program{File: "t.fil", Components: []*ast.Component{top}})
	require.False(t, diags.Empty())
	require.Equal(t, 1, diags.Len())
}
