package ctx_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/filament-lang/filc/internal/ast"
	"github.com/filament-lang/filc/internal/ctx"
	"github.com/filament-lang/filc/internal/ir"
)

func TestForeignPortResolution(t *testing.T) {
	c := ctx.New()

	callee := ir.NewComponent("B", ast.Source)
	port := callee.AddPort(ir.PortOwner{Kind: ir.PortOwnerSig, Dir: ast.Out}, callee.Num(4), ir.Liveness{}, "out", 0)
	calleeID := c.Add(callee)

	caller := ir.NewComponent("A", ast.Source)
	callerID := c.Add(caller)
	_ = callerID

	foreign := ir.Foreign[ir.PortTag]{Key: port, Owner: calleeID}
	resolved, ok := ctx.ResolvePort(c, foreign)
	require.True(t, ok)
	require.Equal(t, uint64(4), mustNum(t, callee, resolved.Width))
}

func mustNum(t *testing.T, c *ir.Component, e ir.ExprIdx) uint64 {
	t.Helper()
	v, ok := c.AsConcrete(e)
	require.True(t, ok)
	return v
}

func TestForeignToDeadComponentFails(t *testing.T) {
	c := ctx.New()
	foreign := ir.Foreign[ir.PortTag]{Key: 0, Owner: 99}
	_, ok := ctx.ResolvePort(c, foreign)
	require.False(t, ok)
}
