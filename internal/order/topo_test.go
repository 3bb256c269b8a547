package order_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/filament-lang/filc/internal/ast"
	"github.com/filament-lang/filc/internal/ctx"
	"github.com/filament-lang/filc/internal/ir"
	"github.com/filament-lang/filc/internal/order"
)

func instComp(c *ctx.Context, name string, callees ...ir.CompIdx) ir.CompIdx {
	comp := ir.NewComponent(name, ast.Source)
	for _, callee := range callees {
		inst := comp.AddInstance(callee, nil, "u", 0)
		comp.Body = append(comp.Body, ir.InstanceCmd{Inst: inst})
	}
	return c.Add(comp)
}

func TestSortLeavesFirst(t *testing.T) {
	c := ctx.New()
	leaf := instComp(c, "Leaf")
	mid := instComp(c, "Mid", leaf)
	root := instComp(c, "Root", mid, leaf)

	sorted, err := order.Sort(c, root)
	require.NoError(t, err)
	require.Equal(t, []ir.CompIdx{leaf, mid, root}, sorted)
}

func TestSortDetectsCycle(t *testing.T) {
	c := ctx.New()

	// Allocate A and B up front so each can reference the other.
	a := ir.NewComponent("A", ast.Source)
	aID := c.Add(a)
	b := ir.NewComponent("B", ast.Source)
	bInst := b.AddInstance(aID, nil, "u", 0)
	b.Body = append(b.Body, ir.InstanceCmd{Inst: bInst})
	bID := c.Add(b)

	aInst := a.AddInstance(bID, nil, "u", 0)
	a.Body = append(a.Body, ir.InstanceCmd{Inst: aInst})

	_, err := order.Sort(c, aID)
	require.Error(t, err)
	var cycleErr *order.CycleError
	require.ErrorAs(t, err, &cycleErr)
}
