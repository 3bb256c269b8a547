package visit_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/filament-lang/filc/internal/ast"
	"github.com/filament-lang/filc/internal/ir"
	"github.com/filament-lang/filc/internal/visit"
)

// dropFacts deletes every FactCmd it sees, leaving everything else alone —
// a minimal pass exercising Change with an empty replacement.
type dropFacts struct {
	visit.DefaultVisitor
	dropped int
}

func (d *dropFacts) Fact(c *ir.Component, cmd ir.FactCmd) visit.Action {
	d.dropped++
	return visit.Action{Kind: visit.Change, Cmds: nil}
}

func TestVisitCmdsChangeRemovesCommand(t *testing.T) {
	c := ir.NewComponent("C", ast.Source)
	body := []ir.Command{
		ir.FactCmd{Assume: true, Prop: ir.PropTrue},
		ir.InstanceCmd{Inst: 0},
		ir.FactCmd{Assume: false, Prop: ir.PropTrue},
	}
	v := &dropFacts{}
	out := visit.VisitCmds(v, c, body)
	require.Len(t, out, 1)
	require.Equal(t, ir.InstanceCmd{Inst: 0}, out[0])
	require.Equal(t, 2, v.dropped)
}

// injectBefore prepends a FactCmd ahead of every Instance it sees.
type injectBefore struct{ visit.DefaultVisitor }

func (injectBefore) Instance(c *ir.Component, cmd ir.InstanceCmd) visit.Action {
	return visit.Action{
		Kind: visit.AddBefore,
		Cmds: []ir.Command{ir.FactCmd{Assume: true, Prop: ir.PropTrue}},
	}
}

func TestVisitCmdsAddBeforeKeepsOriginal(t *testing.T) {
	c := ir.NewComponent("C", ast.Source)
	body := []ir.Command{ir.InstanceCmd{Inst: 3}}
	out := visit.VisitCmds(injectBefore{}, c, body)
	require.Len(t, out, 2)
	require.Equal(t, ir.FactCmd{Assume: true, Prop: ir.PropTrue}, out[0])
	require.Equal(t, ir.InstanceCmd{Inst: 3}, out[1])
}

// stopAtSecond aborts traversal once it has seen one command.
type stopAtSecond struct {
	visit.DefaultVisitor
	seen int
}

func (s *stopAtSecond) Instance(c *ir.Component, cmd ir.InstanceCmd) visit.Action {
	s.seen++
	if s.seen > 1 {
		return visit.Action{Kind: visit.Stop}
	}
	return visit.ContinueAction
}

func TestVisitCmdsStopTruncatesRemainder(t *testing.T) {
	c := ir.NewComponent("C", ast.Source)
	body := []ir.Command{
		ir.InstanceCmd{Inst: 0},
		ir.InstanceCmd{Inst: 1},
		ir.InstanceCmd{Inst: 2},
	}
	out := visit.VisitCmds(&stopAtSecond{}, c, body)
	require.Len(t, out, 1)
}

func TestVisitCmdsRecursesIntoIfBranches(t *testing.T) {
	c := ir.NewComponent("C", ast.Source)
	body := []ir.Command{
		ir.IfCmd{
			Cond: ir.PropTrue,
			Then: []ir.Command{ir.FactCmd{Assume: true, Prop: ir.PropTrue}},
			Else: nil,
		},
	}
	v := &dropFacts{}
	out := visit.VisitCmds(v, c, body)
	require.Len(t, out, 1)
	ifc := out[0].(ir.IfCmd)
	require.Empty(t, ifc.Then)
	require.Equal(t, 1, v.dropped)
}
