package mono

import (
	"github.com/filament-lang/filc/internal/ast"
	"github.com/filament-lang/filc/internal/ir"
)

// stage2 is "Body" (spec.md §4.5): walk commands in order, translating
// each into its concrete form. ForLoop unrolls and If prunes, so the
// output command count rarely matches the input's.
func (d *Driver) stage2(sig *monoSig, cmds []ir.Command) []ir.Command {
	out := make([]ir.Command, 0, len(cmds))
	for _, cmd := range cmds {
		switch cc := cmd.(type) {
		case ir.InstanceCmd:
			if nc, ok := d.translateInstance(sig, cc); ok {
				out = append(out, nc)
			}
		case ir.InvokeCmd:
			if nc, ok := d.translateInvoke(sig, cc); ok {
				out = append(out, nc)
			}
		case ir.BundleDefCmd:
			if nc, ok := translateBundleDef(sig, cc); ok {
				out = append(out, nc)
			}
		case ir.ConnectCmd:
			if nc, ok := translateConnect(sig, cc); ok {
				out = append(out, nc)
			}
		case ir.ForLoopCmd:
			out = append(out, d.translateForLoop(sig, cc)...)
		case ir.IfCmd:
			out = append(out, d.translateIf(sig, cc)...)
		case ir.FactCmd:
			if nc, ok := translateFact(sig, cc); ok {
				out = append(out, nc)
			}
		case ir.LetCmd:
			if nc, ok := translateLet(sig, cc); ok {
				out = append(out, nc)
			}
		case ir.ExistsCmd:
			translateExists(sig, cc)
		}
	}
	return out
}

// translateInstance resolves an Instance's arguments to concretes,
// monomorphizes (or reuses) the callee under that key, and — if the
// callee carries existentials — reads their published concrete values
// back into this component's binding (spec.md §4.5).
func (d *Driver) translateInstance(sig *monoSig, cc ir.InstanceCmd) (ir.Command, bool) {
	inst, ok := sig.src.Instances.Get(cc.Inst)
	if !ok {
		return nil, false
	}
	callee, ok := d.src.Get(inst.Comp)
	if !ok {
		ice(sig, "%s: instance %q references a dead component", sig.src.Name, inst.Name)
	}

	translated := make([]ir.ExprIdx, len(inst.Args))
	args := make([]uint64, len(inst.Args))
	for i, a := range inst.Args {
		ta, ok := sig.translateExpr(a)
		if !ok {
			ice(sig, "%s: instance %q argument %d could not be concretized", sig.src.Name, inst.Name, i)
		}
		v, ok := sig.dst.AsConcrete(ta)
		if !ok {
			ice(sig, "%s: instance %q argument %d is not constant", sig.src.Name, inst.Name, i)
		}
		translated[i] = ta
		args[i] = v
	}

	var calleeKey Key
	if callee.Kind == ast.Source {
		calleeKey = Key{Comp: inst.Comp, Args: args}
	} else {
		calleeKey = Key{Comp: inst.Comp}
	}

	calleeFresh, err := d.monomorphize(calleeKey)
	if err != nil {
		ice(sig, "%s: instance %q: %v", sig.src.Name, inst.Name, err)
	}
	calleePub := d.processed[calleeKey.string()]

	info := sig.dst.AddInfo(sig.src.Span(inst.Info))
	var outArgs []ir.ExprIdx
	if callee.Kind != ast.Source {
		outArgs = translated
	}
	fresh := sig.dst.AddInstance(calleeFresh, outArgs, inst.Name, info)
	sig.instMap.Insert(cc.Inst, monoInstance{calleePub: calleePub, fresh: fresh})

	if len(calleePub.existVal) > 0 && len(inst.Params) > 0 {
		order := existentialOrder(callee)
		for i, callerProxy := range inst.Params {
			if i >= len(order) {
				break
			}
			if v, ok := calleePub.existVal[order[i]]; ok {
				sig.bind[callerProxy] = v
			}
		}
	}

	return ir.InstanceCmd{Inst: fresh}, true
}

// existentialOrder lists a component's existential parameters in
// declaration order, the positional correspondence an instance site's
// proxy params line up against.
func existentialOrder(c *ir.Component) []ir.ParamIdx {
	var out []ir.ParamIdx
	c.Params.Each(func(idx ir.ParamIdx, p ir.Param) {
		if p.Owner.Kind == ir.OwnerExists {
			out = append(out, idx)
		}
	})
	return out
}

// translateInvoke remaps the instance and materializes concrete
// input/output ports, translating each EventBind's Foreign<Event> through
// the callee's published event remap (spec.md §4.5).
func (d *Driver) translateInvoke(sig *monoSig, cc ir.InvokeCmd) (ir.Command, bool) {
	inv, ok := sig.src.Invokes.Get(cc.Invoke)
	if !ok {
		return nil, false
	}
	mi, ok := sig.instMap.Get(inv.Inst)
	if !ok {
		return nil, false
	}

	info := sig.dst.AddInfo(sig.src.Span(inv.Info))
	fresh := sig.dst.AddInvoke(mi.fresh, inv.Name, info)

	ports := make([]ir.PortIdx, 0, len(inv.Ports))
	for _, sp := range inv.Ports {
		port, ok := sig.src.Ports.Get(sp)
		if !ok {
			continue
		}
		width, ok := sig.translateExpr(port.Width)
		if !ok {
			ice(sig, "%s: invoke %q port %q width could not be concretized", sig.src.Name, inv.Name, port.Name)
		}
		calleeBasePort, ok := mi.calleePub.portMap[port.Owner.Base.Key]
		if !ok {
			ice(sig, "%s: invoke %q port %q has no callee remap", sig.src.Name, inv.Name, port.Name)
		}
		portInfo := sig.dst.AddInfo(sig.src.Span(port.Info))
		np := sig.dst.AddPort(ir.PortOwner{
			Kind: ir.PortOwnerInv, Dir: port.Owner.Dir, Inv: fresh,
			Base: ir.Foreign[ir.PortTag]{Key: calleeBasePort, Owner: mi.calleePub.fresh},
		}, width, ir.Liveness{}, port.Name, portInfo)
		if len(port.Live.Idxs) > 0 || len(port.Live.Lens) > 0 {
			live, ok := sig.translateLiveness(np, port.Live)
			if !ok {
				ice(sig, "%s: invoke %q port %q liveness could not be concretized", sig.src.Name, inv.Name, port.Name)
			}
			npv, _ := sig.dst.Ports.Get(np)
			npv.Live = live
			sig.dst.Ports.Set(np, npv)
		}
		sig.portMap[sp] = np
		ports = append(ports, np)
	}

	events := make([]ir.EventBind, 0, len(inv.Events))
	for _, eb := range inv.Events {
		arg, ok := sig.translateTime(eb.Arg)
		if !ok {
			ice(sig, "%s: invoke %q event binding time could not be concretized", sig.src.Name, inv.Name)
		}
		delay, ok := sig.translateTimeSub(eb.Delay)
		if !ok {
			ice(sig, "%s: invoke %q event binding delay could not be concretized", sig.src.Name, inv.Name)
		}
		calleeEvt, ok := mi.calleePub.eventMap.Get(eb.Base.Key)
		if !ok {
			ice(sig, "%s: invoke %q event binding has no callee remap", sig.src.Name, inv.Name)
		}
		events = append(events, ir.EventBind{
			Arg: arg, Delay: delay,
			Base: ir.Foreign[ir.EventTag]{Key: calleeEvt, Owner: mi.calleePub.fresh},
		})
	}

	invoke, _ := sig.dst.Invokes.Get(fresh)
	invoke.Ports = ports
	invoke.Events = events
	sig.dst.Invokes.Set(fresh, invoke)
	sig.invMap.Insert(cc.Invoke, fresh)

	var conns []ir.ConnectCmd
	for _, conn := range cc.Conns {
		nc, ok := translateConnect(sig, conn)
		if !ok {
			continue
		}
		conns = append(conns, nc.(ir.ConnectCmd))
	}

	return ir.InvokeCmd{Invoke: fresh, Conns: conns}, true
}

func translateBundleDef(sig *monoSig, cc ir.BundleDefCmd) (ir.Command, bool) {
	port, ok := sig.src.Ports.Get(cc.Port)
	if !ok {
		return nil, false
	}
	width, ok := sig.translateExpr(port.Width)
	if !ok {
		return nil, false
	}
	info := sig.dst.AddInfo(sig.src.Span(port.Info))
	np := sig.dst.AddPort(ir.PortOwner{Kind: ir.PortOwnerLocal}, width, ir.Liveness{}, port.Name, info)
	if len(port.Live.Idxs) > 0 || len(port.Live.Lens) > 0 {
		live, ok := sig.translateLiveness(np, port.Live)
		if !ok {
			return nil, false
		}
		npv, _ := sig.dst.Ports.Get(np)
		npv.Live = live
		sig.dst.Ports.Set(np, npv)
	}
	sig.portMap[cc.Port] = np
	return ir.BundleDefCmd{Port: np}, true
}

func translateConnect(sig *monoSig, cc ir.ConnectCmd) (ir.Command, bool) {
	dst, ok := translateAccess(sig, cc.Dst)
	if !ok {
		return nil, false
	}
	src, ok := translateAccess(sig, cc.Src)
	if !ok {
		return nil, false
	}
	return ir.ConnectCmd{Dst: dst, Src: src}, true
}

func translateAccess(sig *monoSig, a ir.Access) (ir.Access, bool) {
	np, ok := sig.portMap[a.Port]
	if !ok {
		return ir.Access{}, false
	}
	start, ok := sig.translateExpr(a.Start)
	if !ok {
		return ir.Access{}, false
	}
	end, ok := sig.translateExpr(a.End)
	if !ok {
		return ir.Access{}, false
	}
	return ir.Access{Port: np, Start: start, End: end}, true
}

// translateForLoop evaluates the bounds to constants, then unrolls: each
// index value gets its own binding and a fresh recursive translation of
// the body, concatenated in order (spec.md Testable Property 5). The loop
// command itself never appears in the output.
func (d *Driver) translateForLoop(sig *monoSig, cc ir.ForLoopCmd) []ir.Command {
	start, ok := sig.translateExpr(cc.Start)
	if !ok {
		ice(sig, "%s: for-loop start could not be concretized", sig.src.Name)
	}
	end, ok := sig.translateExpr(cc.End)
	if !ok {
		ice(sig, "%s: for-loop end could not be concretized", sig.src.Name)
	}
	lo, ok := sig.dst.AsConcrete(start)
	if !ok {
		ice(sig, "%s: for-loop start is not constant", sig.src.Name)
	}
	hi, ok := sig.dst.AsConcrete(end)
	if !ok {
		ice(sig, "%s: for-loop end is not constant", sig.src.Name)
	}

	var out []ir.Command
	for v := lo; v < hi; v++ {
		prior, had := sig.bind[cc.Idx]
		sig.bind[cc.Idx] = v
		out = append(out, d.stage2(sig, cc.Body)...)
		if had {
			sig.bind[cc.Idx] = prior
		} else {
			delete(sig.bind, cc.Idx)
		}
	}
	return out
}

// translateIf evaluates the condition and emits only the chosen branch's
// translated body (spec.md Testable Property 6).
func (d *Driver) translateIf(sig *monoSig, cc ir.IfCmd) []ir.Command {
	cond, ok := sig.translateProp(cc.Cond)
	if !ok {
		ice(sig, "%s: if-condition could not be concretized", sig.src.Name)
	}
	if sig.dst.ResolveProp(cond) {
		return d.stage2(sig, cc.Then)
	}
	return d.stage2(sig, cc.Else)
}

// translateFact translates the proposition; an out-of-scope parameter
// means it cannot apply here, so it is dropped rather than failing the
// whole pass (spec.md §4.5). Surviving facts re-assert regardless of
// their original assume/assert flavor, since by this point every
// parameter is bound and there is nothing left to assume.
func translateFact(sig *monoSig, cc ir.FactCmd) (ir.Command, bool) {
	p, ok := sig.translateProp(cc.Prop)
	if !ok {
		return nil, false
	}
	sig.dst.Assert(p)
	return ir.FactCmd{Assume: false, Prop: p}, true
}

// translateLet folds the binding into sig.bind and drops the command,
// unless it is an unelaborated scheduling binding the backend still needs
// to see.
func translateLet(sig *monoSig, cc ir.LetCmd) (ir.Command, bool) {
	v, ok := sig.translateExpr(cc.Bind)
	if !ok {
		return nil, false
	}
	if val, isConst := sig.dst.AsConcrete(v); isConst {
		sig.bind[cc.Param] = val
	}
	if !cc.Unelaborated {
		return nil, false
	}
	return ir.LetCmd{Param: cc.Param, Bind: v, Unelaborated: true}, true
}

// translateExists evaluates the bound expression to a constant and
// records it both in the live binding (so later expressions in this body
// resolve it) and in existVal (so Stage 3 can publish it to inst_info).
func translateExists(sig *monoSig, cc ir.ExistsCmd) {
	v, ok := sig.translateExpr(cc.Bind)
	if !ok {
		return
	}
	val, ok := sig.dst.AsConcrete(v)
	if !ok {
		return
	}
	sig.bind[cc.Param] = val
	sig.existVal[cc.Param] = val
}
