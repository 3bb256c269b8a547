// Package discharge implements the SMT discharge pass (spec.md §4.7): it
// hoists scoped facts to the top level, encodes a monomorphized
// component's obligations as SMT-LIB, drives an external solver session,
// and turns unprovable obligations into diagnostics with counterexamples.
package discharge

import "github.com/filament-lang/filc/internal/ir"

// HoistedFact is one obligation pulled out of a component's body, with its
// enclosing path condition already folded into the proposition (spec.md
// §4.7 step 1: "if(g) assert(p) becomes assert(g => p)").
type HoistedFact struct {
	Assume bool
	Prop   ir.PropIdx
}

// Hoist rewrites comp's body in place, removing every Fact command at any
// nesting depth and returning the flattened obligations, each threaded
// through its enclosing If conditions as an implication antecedent. Kept
// as its own re-runnable pass (SPEC_FULL.md, grounded in the original
// compiler's standalone hoisting traversal) rather than folded directly
// into Run, so Testable Property 8 can exercise it without a solver.
//
// A monomorphized component has already pruned every If, so in the
// discharge pass's normal use this only replays the top-level Facts
// mono's body-translation stage already flattened; Hoist earns its keep
// on the parametric IR, between the builder and monomorphization, where
// scoped facts still exist.
func Hoist(comp *ir.Component) []HoistedFact {
	var facts []HoistedFact
	comp.Body = hoistCmds(comp, comp.Body, ir.PropTrue, &facts)
	return facts
}

func hoistCmds(c *ir.Component, cmds []ir.Command, path ir.PropIdx, facts *[]HoistedFact) []ir.Command {
	out := make([]ir.Command, 0, len(cmds))
	for _, cmd := range cmds {
		switch cc := cmd.(type) {
		case ir.FactCmd:
			prop := c.AddProp(ir.Prop{Kind: ir.PImplies, PL: path, PR: cc.Prop})
			*facts = append(*facts, HoistedFact{Assume: cc.Assume, Prop: prop})
		case ir.IfCmd:
			thenPath := c.AddProp(ir.Prop{Kind: ir.PAnd, PL: path, PR: cc.Cond})
			notCond := c.AddProp(ir.Prop{Kind: ir.PNot, P: cc.Cond})
			elsePath := c.AddProp(ir.Prop{Kind: ir.PAnd, PL: path, PR: notCond})
			cc.Then = hoistCmds(c, cc.Then, thenPath, facts)
			cc.Else = hoistCmds(c, cc.Else, elsePath, facts)
			out = append(out, cc)
		case ir.ForLoopCmd:
			cc.Body = hoistCmds(c, cc.Body, path, facts)
			out = append(out, cc)
		default:
			out = append(out, cmd)
		}
	}
	return out
}
