package build

import (
	"github.com/filament-lang/filc/internal/ast"
	"github.com/filament-lang/filc/internal/errors"
	"github.com/filament-lang/filc/internal/ir"
)

// lowerSignature binds every signature-owned param, event, and port into
// the component and its top-level scope, in source order — params first
// (nothing in a signature can reference an event or port), then events
// (a later event's delay may reference an earlier one), then ports (widths
// and liveness may reference any param or event already in scope).
func (b *builder) lowerSignature(ac *ast.Component) {
	b.comp.InterfaceSrc = &ir.InterfaceSrc{
		ParamNames: map[ir.ParamIdx]string{},
		EventNames: map[ir.EventIdx]string{},
		PortNames:  map[ir.PortIdx]string{},
	}

	for _, pd := range ac.Params {
		info := b.comp.AddInfo(pd.Pos)
		pidx := b.comp.AddParam(ir.ParamOwner{Kind: ir.OwnerSig}, pd.Name, info)
		b.comp.ParamArgs = append(b.comp.ParamArgs, pidx)
		b.comp.InterfaceSrc.ParamNames[pidx] = pd.Name
		if _, dup := b.scope.declare(pd.Name, binder{kind: bindParam, param: pidx, pos: info}); dup {
			b.errorf(errors.AST002, pd.Pos, "duplicate binder %q in signature", pd.Name)
		}
	}

	for _, ed := range ac.Events {
		info := b.comp.AddInfo(ed.Pos)
		delay := b.lowerTimeSub(ed.Delay)
		eidx := b.comp.AddEvent(delay, ed.Name, true, info)
		b.comp.EventArgs = append(b.comp.EventArgs, eidx)
		b.comp.InterfaceSrc.EventNames[eidx] = ed.Name
		if _, dup := b.scope.declare(ed.Name, binder{kind: bindEvent, event: eidx, pos: info}); dup {
			b.errorf(errors.AST002, ed.Pos, "duplicate binder %q in signature", ed.Name)
		}
	}

	lowerPort := func(pd ast.PortDecl) {
		info := b.comp.AddInfo(pd.Pos)
		width := b.lowerExpr(pd.Width)
		// A bundle's index params are owned by the port, but the port
		// handle doesn't exist until AddPort runs: allocate the port with
		// an empty liveness first, then backfill it once the bundle's
		// params (which reference it) exist.
		pidx := b.comp.AddPort(ir.PortOwner{Kind: ir.PortOwnerSig, Dir: pd.Dir}, width, ir.Liveness{}, pd.Name, info)
		if pd.Bundle != nil {
			live := b.lowerLiveness(pidx, pd.Bundle)
			if port, ok := b.comp.Ports.Get(pidx); ok {
				port.Live = live
				b.comp.Ports.Set(pidx, port)
			}
		}
		b.comp.InterfaceSrc.PortNames[pidx] = pd.Name
		if _, dup := b.scope.declare(pd.Name, binder{kind: bindPort, port: pidx, pos: info}); dup {
			b.errorf(errors.AST002, pd.Pos, "duplicate binder %q in signature", pd.Name)
		}
	}
	for _, pd := range ac.Inputs {
		lowerPort(pd)
	}
	for _, pd := range ac.Outputs {
		lowerPort(pd)
	}

	if ac.Kind != ast.Source && len(ac.Body) != 0 {
		b.errorf(errors.AST003, ac.Pos, "%s component %q must not have a body", ac.Kind, ac.Name)
	}
}

// lowerLiveness translates a surface bundle liveness belonging to port,
// adding each bundle index as an OwnerBundle parameter in scope under its
// source name so the body can index the bundle by it.
func (b *builder) lowerLiveness(port ir.PortIdx, bd *ast.Liveness) ir.Liveness {
	idxs := make([]ir.ParamIdx, len(bd.Idxs))
	for i, name := range bd.Idxs {
		info := b.comp.AddInfo(bd.Start.Pos)
		pidx := b.comp.AddParam(ir.ParamOwner{Kind: ir.OwnerBundle, BundlePort: port}, name, info)
		idxs[i] = pidx
		b.scope.declare(name, binder{kind: bindParam, param: pidx, pos: info})
	}
	lens := make([]ir.ExprIdx, len(bd.Lens))
	for i, e := range bd.Lens {
		lens[i] = b.lowerExpr(e)
	}
	return ir.Liveness{
		Idxs:  idxs,
		Lens:  lens,
		Range: ir.Range{Start: b.lowerTime(bd.Start), End: b.lowerTime(bd.End)},
	}
}
