package build

import (
	"github.com/filament-lang/filc/internal/ast"
	"github.com/filament-lang/filc/internal/errors"
	"github.com/filament-lang/filc/internal/ir"
	"github.com/filament-lang/filc/internal/posn"
)

// skeleton is what Phase 1 records about a command at a given position so
// Phase 2, walking the same slice again, knows which handle it already
// allocated instead of creating a second one.
type skeleton struct {
	kind     string
	instIdx  ir.InstIdx
	invIdx   ir.InvIdx
	portIdx  ir.PortIdx
	paramIdx ir.ParamIdx
}

// lowerBody runs the two-phase declare/define walk spec.md §4.4 describes
// over one scope's command list. The caller is responsible for pushing and
// popping a fresh scope frame around nested bodies (If/ForLoop); the
// top-level component body shares the signature's frame.
func (b *builder) lowerBody(cmds []ast.Command) []ir.Command {
	skeletons := make([]skeleton, len(cmds))

	// Phase 1: declare. Pre-allocate a handle for every binder so forward
	// references within the same scope (an invoke naming an instance
	// declared earlier in this same walk) resolve, and so instance
	// signatures are available to resolve port references in Phase 2.
	for i, cmd := range cmds {
		switch dc := cmd.(type) {
		case *ast.InstanceDecl:
			calleeID, ok := b.c.ByName(dc.Comp)
			if !ok {
				b.undefined(errors.NameComp, dc.Comp, dc.Pos)
				continue
			}
			args := make([]ir.ExprIdx, len(dc.Args))
			for j, a := range dc.Args {
				args[j] = b.lowerExpr(a)
			}
			info := b.comp.AddInfo(dc.Pos)
			instIdx := b.comp.AddInstance(calleeID, args, dc.Bind, info)
			b.declareExistentialProxies(instIdx, calleeID, dc.Pos)
			ib := b.buildInstanceBinder(instIdx, calleeID, dc.Comp, args)
			if _, dup := b.scope.declare(dc.Bind, binder{kind: bindInstance, instance: ib, pos: info}); dup {
				b.errorf(errors.AST002, dc.Pos, "duplicate binder %q", dc.Bind)
			}
			skeletons[i] = skeleton{kind: "instance", instIdx: instIdx}

		case *ast.InvokeDecl:
			instBd, ok := b.scope.lookup(dc.Inst)
			if !ok || instBd.kind != bindInstance {
				b.undefined(errors.NameInstance, dc.Inst, dc.Pos)
				continue
			}
			info := b.comp.AddInfo(dc.Pos)
			invIdx := b.comp.AddInvoke(instBd.instance.idx, dc.Bind, info)
			if _, dup := b.scope.declare(dc.Bind, binder{kind: bindInvoke, invoke: invokeBinder{idx: invIdx, inst: instBd.instance}, pos: info}); dup {
				b.errorf(errors.AST002, dc.Pos, "duplicate binder %q", dc.Bind)
			}
			skeletons[i] = skeleton{kind: "invoke", invIdx: invIdx}

		case *ast.BundleDefDecl:
			info := b.comp.AddInfo(dc.Pos)
			pidx := b.comp.AddPort(ir.PortOwner{Kind: ir.PortOwnerLocal}, b.comp.Num(0), ir.Liveness{}, dc.Name, info)
			if _, dup := b.scope.declare(dc.Name, binder{kind: bindPort, port: pidx, pos: info}); dup {
				b.errorf(errors.AST002, dc.Pos, "duplicate binder %q", dc.Name)
			}
			skeletons[i] = skeleton{kind: "bundledef", portIdx: pidx}

		case *ast.ForLoopDecl:
			info := b.comp.AddInfo(dc.Pos)
			pidx := b.comp.AddParam(ir.ParamOwner{Kind: ir.OwnerLoop}, dc.Idx, info)
			skeletons[i] = skeleton{kind: "for", paramIdx: pidx}

		case *ast.LetDecl:
			info := b.comp.AddInfo(dc.Pos)
			pidx := b.comp.AddParam(ir.ParamOwner{Kind: ir.OwnerLet}, dc.Name, info)
			if _, dup := b.scope.declare(dc.Name, binder{kind: bindParam, param: pidx, pos: info}); dup {
				b.errorf(errors.AST002, dc.Pos, "duplicate binder %q", dc.Name)
			}
			skeletons[i] = skeleton{kind: "let", paramIdx: pidx}

		case *ast.ExistsDecl:
			info := b.comp.AddInfo(dc.Pos)
			pidx := b.comp.AddParam(ir.ParamOwner{Kind: ir.OwnerExists, ExistsOpaque: dc.Opaque}, dc.Name, info)
			if _, dup := b.scope.declare(dc.Name, binder{kind: bindParam, param: pidx, pos: info}); dup {
				b.errorf(errors.AST002, dc.Pos, "duplicate binder %q", dc.Name)
			}
			skeletons[i] = skeleton{kind: "exists", paramIdx: pidx}
		}
	}

	// Phase 2: define.
	out := make([]ir.Command, 0, len(cmds))
	for i, cmd := range cmds {
		sk := skeletons[i]
		switch dc := cmd.(type) {
		case *ast.InstanceDecl:
			if sk.kind != "instance" {
				continue
			}
			out = append(out, ir.InstanceCmd{Inst: sk.instIdx})

		case *ast.InvokeDecl:
			if sk.kind != "invoke" {
				continue
			}
			out = append(out, b.lowerInvoke(dc, sk.invIdx))

		case *ast.BundleDefDecl:
			if sk.kind != "bundledef" {
				continue
			}
			out = append(out, b.lowerBundleDef(dc, sk.portIdx))

		case *ast.ConnectDecl:
			out = append(out, ir.ConnectCmd{Dst: b.lowerAccess(dc.Dst), Src: b.lowerAccess(dc.Src)})

		case *ast.ForLoopDecl:
			if sk.kind != "for" {
				continue
			}
			out = append(out, b.lowerForLoop(dc, sk.paramIdx))

		case *ast.IfDecl:
			out = append(out, b.lowerIf(dc))

		case *ast.FactDecl:
			p := b.lowerProp(dc.Prop)
			if dc.Assume {
				b.comp.Assume(p)
			} else {
				b.comp.Assert(p)
			}
			out = append(out, ir.FactCmd{Assume: dc.Assume, Prop: p})

		case *ast.LetDecl:
			if sk.kind != "let" {
				continue
			}
			out = append(out, ir.LetCmd{Param: sk.paramIdx, Bind: b.lowerExpr(dc.Bind), Unelaborated: dc.Unelaborated})

		case *ast.ExistsDecl:
			if sk.kind != "exists" {
				continue
			}
			out = append(out, ir.ExistsCmd{Param: sk.paramIdx, Bind: b.lowerExpr(dc.Bind)})
		}
	}
	return out
}

// declareExistentialProxies allocates one OwnerInstance proxy Param per
// existential the callee's signature carries (spec.md §4.5 step 2: "If the
// callee has existential parameters, read their concrete values back from
// the callee's published inst_info and extend the current binding"), and
// installs them on the Instance so that readback has somewhere to land.
// Proxies are appended in the callee's own existential declaration order —
// the positional pairing internal/mono's readback relies on — and each
// carries InstanceBase pointing at the callee's own existential Param, the
// field internal/discharge's assertExistentials pairs a proxy to its callee
// obligation by (SUPPLEMENTED FEATURE 1, DESIGN.md).
func (b *builder) declareExistentialProxies(instIdx ir.InstIdx, calleeID ir.CompIdx, pos posn.Pos) {
	callee := b.c.MustGet(calleeID)
	var proxies []ir.ParamIdx
	callee.Params.Each(func(pidx ir.ParamIdx, p ir.Param) {
		if p.Owner.Kind != ir.OwnerExists {
			return
		}
		info := b.comp.AddInfo(pos)
		proxy := b.comp.AddParam(ir.ParamOwner{
			Kind:         ir.OwnerInstance,
			InstanceInst: instIdx,
			InstanceBase: ir.Foreign[ir.ParamTag]{Key: pidx, Owner: calleeID},
			ExistsOpaque: p.Owner.ExistsOpaque,
		}, p.Name, info)
		proxies = append(proxies, proxy)
	})
	if len(proxies) == 0 {
		return
	}
	inst, _ := b.comp.Instances.Get(instIdx)
	inst.Params = proxies
	b.comp.Instances.Set(instIdx, inst)
}

// buildInstanceBinder computes the partially-resolved callee signature
// spec.md §4.4 Phase 1 needs: every signature port's width, re-expressed
// in the caller's arena with the instance's concrete argument expressions
// substituted for the callee's signature params.
func (b *builder) buildInstanceBinder(instIdx ir.InstIdx, calleeID ir.CompIdx, compName string, args []ir.ExprIdx) instanceBinder {
	callee := b.c.MustGet(calleeID)
	bindings := make(map[ir.ParamIdx]ir.ExprIdx, len(callee.ParamArgs))
	for i, p := range callee.ParamArgs {
		if i < len(args) {
			bindings[p] = args[i]
		}
	}

	portWidth := map[string]ir.ExprIdx{}
	portDir := map[string]ast.Direction{}
	portBundle := map[string]bool{}
	calleePort := map[string]ir.PortIdx{}
	callee.Ports.Each(func(pidx ir.PortIdx, port ir.Port) {
		if port.Owner.Kind != ir.PortOwnerSig {
			return
		}
		name := callee.InterfaceSrc.PortNames[pidx]
		portWidth[name] = substExpr(b.comp, callee, bindings, port.Width)
		portDir[name] = port.Owner.Dir
		portBundle[name] = len(port.Live.Idxs) > 0
		calleePort[name] = pidx
	})

	return instanceBinder{
		idx: instIdx, compName: compName, compID: calleeID,
		portWidth: portWidth, portDir: portDir, portBundle: portBundle, calleePort: calleePort,
	}
}

// lowerInvoke materializes one fresh port per callee signature port on the
// invocation, wires each input to its argument via a generated Connect
// (spec.md §4.4: "For every invoke argument we generate a Connect... to
// the newly-materialized input port of the invocation"), and resolves the
// invoke's event bindings against the callee's signature events.
func (b *builder) lowerInvoke(dc *ast.InvokeDecl, invIdx ir.InvIdx) ir.Command {
	bd, ok := b.scope.lookup(dc.Bind)
	if !ok || bd.kind != bindInvoke {
		return ir.InvokeCmd{Invoke: invIdx}
	}
	ib := bd.invoke.inst
	callee := b.c.MustGet(ib.compID)

	var ports []ir.PortIdx
	portByName := map[string]ir.PortIdx{}
	var inputNames []string
	callee.Ports.Each(func(calleePidx ir.PortIdx, port ir.Port) {
		if port.Owner.Kind != ir.PortOwnerSig {
			return
		}
		name := callee.InterfaceSrc.PortNames[calleePidx]
		info := b.comp.AddInfo(dc.Pos)
		fresh := b.comp.AddPort(ir.PortOwner{
			Kind: ir.PortOwnerInv, Dir: port.Owner.Dir, Inv: invIdx,
			Base: ir.Foreign[ir.PortTag]{Key: calleePidx, Owner: ib.compID},
		}, ib.portWidth[name], ir.Liveness{}, name, info)
		ports = append(ports, fresh)
		portByName[name] = fresh
		if port.Owner.Dir == ast.In {
			inputNames = append(inputNames, name)
		}
	})

	events := make([]ir.EventBind, 0, len(dc.Events))
	for _, eb := range dc.Events {
		calleeEvt, ok := findCalleeEvent(callee, eb.Event)
		if !ok {
			b.undefined(errors.NameEvent, eb.Event, eb.Pos)
			continue
		}
		events = append(events, ir.EventBind{
			Arg:   b.lowerTime(eb.Arg),
			Delay: b.lowerTimeSub(eb.Delay),
			Base:  ir.Foreign[ir.EventTag]{Key: calleeEvt, Owner: ib.compID},
		})
	}

	invoke, _ := b.comp.Invokes.Get(invIdx)
	invoke.Ports = ports
	invoke.Events = events
	b.comp.Invokes.Set(invIdx, invoke)

	bd.invoke.portByName = portByName
	b.scope.update(dc.Bind, bd)

	var conns []ir.ConnectCmd
	for i, name := range inputNames {
		if i >= len(dc.Args) {
			break
		}
		dst := ir.Access{Port: portByName[name], Start: b.comp.Num(0), End: b.comp.Num(1)}
		conns = append(conns, ir.ConnectCmd{Dst: dst, Src: b.lowerAccess(dc.Args[i])})
	}

	return ir.InvokeCmd{Invoke: invIdx, Conns: conns}
}

func findCalleeEvent(callee *ir.Component, name string) (ir.EventIdx, bool) {
	for idx, n := range callee.InterfaceSrc.EventNames {
		if n == name {
			return idx, true
		}
	}
	return 0, false
}

func (b *builder) lowerBundleDef(dc *ast.BundleDefDecl, pidx ir.PortIdx) ir.Command {
	width := b.lowerExpr(dc.Width)
	var live ir.Liveness
	if dc.Bundle != nil {
		live = b.lowerLiveness(pidx, dc.Bundle)
	}
	port, _ := b.comp.Ports.Get(pidx)
	port.Width = width
	port.Live = live
	b.comp.Ports.Set(pidx, port)
	return ir.BundleDefCmd{Port: pidx}
}

func (b *builder) lowerAccess(pa ast.PortAccess) ir.Access {
	start, end := b.comp.Num(0), b.comp.Num(1)
	if pa.Start != nil {
		start = b.lowerExpr(pa.Start)
		end = b.lowerExpr(pa.End)
	}
	if pa.Owner == "" {
		bd, ok := b.scope.lookup(pa.Port)
		if !ok || bd.kind != bindPort {
			b.undefined(errors.NamePort, pa.Port, pa.Pos)
			return ir.Access{Start: start, End: end}
		}
		return ir.Access{Port: bd.port, Start: start, End: end}
	}
	ownerBd, ok := b.scope.lookup(pa.Owner)
	if !ok || ownerBd.kind != bindInvoke {
		b.undefined(errors.NameInvoke, pa.Owner, pa.Pos)
		return ir.Access{Start: start, End: end}
	}
	pidx, ok := ownerBd.invoke.portByName[pa.Port]
	if !ok {
		b.undefined(errors.NamePort, pa.Port, pa.Pos)
		return ir.Access{Start: start, End: end}
	}
	return ir.Access{Port: pidx, Start: start, End: end}
}

func (b *builder) lowerForLoop(dc *ast.ForLoopDecl, pidx ir.ParamIdx) ir.Command {
	start := b.lowerExpr(dc.Start)
	end := b.lowerExpr(dc.End)
	b.scope.push()
	b.scope.declare(dc.Idx, binder{kind: bindParam, param: pidx})
	body := b.lowerBody(dc.Body)
	b.scope.pop()
	return ir.ForLoopCmd{Idx: pidx, Start: start, End: end, Body: body}
}

func (b *builder) lowerIf(dc *ast.IfDecl) ir.Command {
	cond := b.lowerProp(dc.Cond)
	b.scope.push()
	then := b.lowerBody(dc.Then)
	b.scope.pop()
	b.scope.push()
	els := b.lowerBody(dc.Else)
	b.scope.pop()
	return ir.IfCmd{Cond: cond, Then: then, Else: els}
}
