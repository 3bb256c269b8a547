package build

import "github.com/filament-lang/filc/internal/ir"

// substExpr copies a callee-owned expression into the caller's arena,
// replacing every Param leaf bound in bindings with the caller expression
// it maps to and re-interning every node through the caller's simplifier
// (spec.md §4.4: Phase 1 "partially resolves [the instance's signature] by
// substituting the parameter arguments immediately"). A Param with no
// entry in bindings (only ever a bundle index, never part of a signature
// width/liveness expression) is left as Concrete(0): it has no meaning
// outside the callee's own body.
func substExpr(caller *ir.Component, callee *ir.Component, bindings map[ir.ParamIdx]ir.ExprIdx, e ir.ExprIdx) ir.ExprIdx {
	ex := callee.Exprs.Get(e)
	switch ex.Kind {
	case ir.EParam:
		if bound, ok := bindings[ex.Param]; ok {
			return bound
		}
		return caller.Num(0)
	case ir.EConcrete:
		return caller.Num(ex.Concrete)
	case ir.EBin:
		return caller.AddExpr(ir.Expr{
			Kind: ir.EBin, Op: ex.Op,
			L: substExpr(caller, callee, bindings, ex.L),
			R: substExpr(caller, callee, bindings, ex.R),
		})
	case ir.EFn:
		args := make([]ir.ExprIdx, len(ex.Args))
		for i, a := range ex.Args {
			args[i] = substExpr(caller, callee, bindings, a)
		}
		return caller.AddExpr(ir.Expr{Kind: ir.EFn, FnOp: ex.FnOp, Args: args})
	case ir.EIf:
		return caller.AddExpr(ir.Expr{
			Kind: ir.EIf,
			Cond: substProp(caller, callee, bindings, ex.Cond),
			Then: substExpr(caller, callee, bindings, ex.Then),
			Alt:  substExpr(caller, callee, bindings, ex.Alt),
		})
	default:
		return caller.Num(0)
	}
}

func substProp(caller *ir.Component, callee *ir.Component, bindings map[ir.ParamIdx]ir.ExprIdx, p ir.PropIdx) ir.PropIdx {
	if ir.IsTrue(p) {
		return ir.PropTrue
	}
	if ir.IsFalse(p) {
		return ir.PropFalse
	}
	pr := callee.Props.Get(p)
	switch pr.Kind {
	case ir.PCmp:
		return caller.AddProp(ir.Prop{
			Kind: ir.PCmp, Cmp: pr.Cmp,
			EL: substExpr(caller, callee, bindings, pr.EL),
			ER: substExpr(caller, callee, bindings, pr.ER),
		})
	case ir.PNot:
		return caller.AddProp(ir.Prop{Kind: ir.PNot, P: substProp(caller, callee, bindings, pr.P)})
	case ir.PAnd:
		return caller.AddProp(ir.Prop{Kind: ir.PAnd, PL: substProp(caller, callee, bindings, pr.PL), PR: substProp(caller, callee, bindings, pr.PR)})
	case ir.POr:
		return caller.AddProp(ir.Prop{Kind: ir.POr, PL: substProp(caller, callee, bindings, pr.PL), PR: substProp(caller, callee, bindings, pr.PR)})
	case ir.PImplies:
		return caller.AddProp(ir.Prop{Kind: ir.PImplies, PL: substProp(caller, callee, bindings, pr.PL), PR: substProp(caller, callee, bindings, pr.PR)})
	default:
		// PTimeCmp/PTimeSubCmp never appear in a signature width or
		// liveness expression (those only ever involve scalar params), so
		// they don't need a substitution path here.
		return ir.PropTrue
	}
}
