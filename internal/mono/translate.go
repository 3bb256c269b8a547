package mono

import "github.com/filament-lang/filc/internal/ir"

// translateExpr is the "recursive expression translation" spec.md §4.5
// describes: a Param leaf with a binding substitutes to its constant;
// everything else recurses and re-interns through dst's simplifier. The
// bool result is false when a Param leaf has no binding — an
// out-of-scope parameter, which callers (Fact translation, Let/Exists
// binding) treat as "cannot apply here" rather than a hard error.
func (sig *monoSig) translateExpr(e ir.ExprIdx) (ir.ExprIdx, bool) {
	ex := sig.src.Exprs.Get(e)
	switch ex.Kind {
	case ir.EParam:
		// An opaque existential's value is known (via ExistsCmd at its
		// defining component, or readback onto an OwnerInstance proxy at a
		// call site) but must never be substituted into a caller's
		// expressions (SPEC_FULL.md Supplemented Feature 1) — only used to
		// satisfy assertions at the component that owns it. Skip the bind
		// lookup for it and fall through to the ordinary remap-or-fail path.
		if param, ok := sig.src.Params.Get(ex.Param); !ok || !param.Owner.ExistsOpaque {
			if v, ok := sig.bind[ex.Param]; ok {
				return sig.dst.Num(v), true
			}
		}
		if p, ok := sig.paramMap.Get(ex.Param); ok {
			return sig.dst.AddExpr(ir.Expr{Kind: ir.EParam, Param: p}), true
		}
		return 0, false
	case ir.EConcrete:
		return sig.dst.Num(ex.Concrete), true
	case ir.EBin:
		l, lok := sig.translateExpr(ex.L)
		r, rok := sig.translateExpr(ex.R)
		if !lok || !rok {
			return 0, false
		}
		return sig.dst.AddExpr(ir.Expr{Kind: ir.EBin, Op: ex.Op, L: l, R: r}), true
	case ir.EFn:
		args := make([]ir.ExprIdx, len(ex.Args))
		for i, a := range ex.Args {
			v, ok := sig.translateExpr(a)
			if !ok {
				return 0, false
			}
			args[i] = v
		}
		return sig.dst.AddExpr(ir.Expr{Kind: ir.EFn, FnOp: ex.FnOp, Args: args}), true
	case ir.EIf:
		cond, ok := sig.translateProp(ex.Cond)
		if !ok {
			return 0, false
		}
		// Short-circuit on the concretized branch: the unchosen branch
		// may not even be well-defined once concretized (spec.md §4.5:
		// "preventing spurious overflow when evaluating the
		// consequent"), so it is never translated.
		if sig.dst.ResolveProp(cond) {
			return sig.translateExpr(ex.Then)
		}
		return sig.translateExpr(ex.Alt)
	default:
		return 0, false
	}
}

func (sig *monoSig) translateProp(p ir.PropIdx) (ir.PropIdx, bool) {
	if ir.IsTrue(p) {
		return ir.PropTrue, true
	}
	if ir.IsFalse(p) {
		return ir.PropFalse, true
	}
	pr := sig.src.Props.Get(p)
	switch pr.Kind {
	case ir.PCmp:
		l, lok := sig.translateExpr(pr.EL)
		r, rok := sig.translateExpr(pr.ER)
		if !lok || !rok {
			return 0, false
		}
		return sig.dst.AddProp(ir.Prop{Kind: ir.PCmp, Cmp: pr.Cmp, EL: l, ER: r}), true
	case ir.PTimeCmp:
		l, lok := sig.translateTime(pr.TL)
		r, rok := sig.translateTime(pr.TR)
		if !lok || !rok {
			return 0, false
		}
		return sig.dst.AddProp(ir.Prop{Kind: ir.PTimeCmp, Cmp: pr.Cmp, TL: l, TR: r}), true
	case ir.PTimeSubCmp:
		l, lok := sig.translateTimeSub(pr.SL)
		r, rok := sig.translateTimeSub(pr.SR)
		if !lok || !rok {
			return 0, false
		}
		return sig.dst.AddProp(ir.Prop{Kind: ir.PTimeSubCmp, Cmp: pr.Cmp, SL: l, SR: r}), true
	case ir.PNot:
		inner, ok := sig.translateProp(pr.P)
		if !ok {
			return 0, false
		}
		return sig.dst.AddProp(ir.Prop{Kind: ir.PNot, P: inner}), true
	case ir.PAnd:
		l, lok := sig.translateProp(pr.PL)
		r, rok := sig.translateProp(pr.PR)
		if !lok || !rok {
			return 0, false
		}
		return sig.dst.AddProp(ir.Prop{Kind: ir.PAnd, PL: l, PR: r}), true
	case ir.POr:
		l, lok := sig.translateProp(pr.PL)
		r, rok := sig.translateProp(pr.PR)
		if !lok || !rok {
			return 0, false
		}
		return sig.dst.AddProp(ir.Prop{Kind: ir.POr, PL: l, PR: r}), true
	case ir.PImplies:
		ante, aok := sig.translateProp(pr.PL)
		if !aok {
			return 0, false
		}
		if ir.IsFalse(ante) {
			return ir.PropTrue, true
		}
		cons, cok := sig.translateProp(pr.PR)
		if !cok {
			return 0, false
		}
		return sig.dst.AddProp(ir.Prop{Kind: ir.PImplies, PL: ante, PR: cons}), true
	default:
		return 0, false
	}
}

func (sig *monoSig) translateTime(t ir.TimeIdx) (ir.TimeIdx, bool) {
	tm := sig.src.Times.Get(t)
	newEvt, ok := sig.eventMap.Get(tm.Event)
	if !ok {
		return 0, false
	}
	off, ok := sig.translateExpr(tm.Offset)
	if !ok {
		return 0, false
	}
	return sig.dst.AddTime(ir.Time{Event: newEvt, Offset: off}), true
}

func (sig *monoSig) translateTimeSub(ts ir.TimeSub) (ir.TimeSub, bool) {
	switch ts.Kind {
	case ir.TSUnit:
		off, ok := sig.translateExpr(ts.Offset)
		if !ok {
			return ir.TimeSub{}, false
		}
		return ir.TimeSub{Kind: ir.TSUnit, Offset: off}, true
	case ir.TSSym:
		l, lok := sig.translateTime(ts.L)
		r, rok := sig.translateTime(ts.R)
		if !lok || !rok {
			return ir.TimeSub{}, false
		}
		return sig.dst.ReduceTimeSub(ir.TimeSub{Kind: ir.TSSym, L: l, R: r}), true
	default:
		return ir.TimeSub{}, false
	}
}

// translateLiveness concretizes a port's bundle liveness for the freshly
// allocated dst port. Idxs are re-declared as fresh OwnerBundle params
// rather than substituted: they describe the bundle's own shape (a later
// dimension's Lens may reference an earlier Idxs param) and stay symbolic
// in the monomorphized output, registered in paramMap so any later
// reference to the source Idxs param remaps rather than fails.
func (sig *monoSig) translateLiveness(dstPort ir.PortIdx, live ir.Liveness) (ir.Liveness, bool) {
	idxs := make([]ir.ParamIdx, len(live.Idxs))
	for i, srcIdx := range live.Idxs {
		info, _ := sig.src.Params.Get(srcIdx)
		fresh := sig.dst.AddParam(ir.ParamOwner{Kind: ir.OwnerBundle, BundlePort: dstPort}, info.Name, info.Info)
		sig.paramMap.Insert(srcIdx, fresh)
		idxs[i] = fresh
	}
	lens := make([]ir.ExprIdx, len(live.Lens))
	for i, l := range live.Lens {
		v, ok := sig.translateExpr(l)
		if !ok {
			return ir.Liveness{}, false
		}
		lens[i] = v
	}
	start, ok := sig.translateTime(live.Range.Start)
	if !ok {
		return ir.Liveness{}, false
	}
	end, ok := sig.translateTime(live.Range.End)
	if !ok {
		return ir.Liveness{}, false
	}
	return ir.Liveness{Idxs: idxs, Lens: lens, Range: ir.Range{Start: start, End: end}}, true
}
