package mono

import "github.com/filament-lang/filc/internal/ir"

// copyPassthrough ordinal-copies an External or Generated component: since
// it carries no Body to specialize, every value it ever produces is fixed
// regardless of any caller's argument values, so it is copied into the
// output Context once and the same fresh handle is reused by every caller
// (spec.md §4.5).
//
// Exprs/Times/Props are replayed through their simplifying Add* in original
// order: since src is already fully simplified and dst starts from the
// identical reserved-handle state NewComponent gives every component, this
// reproduces identical handle numbering with no remap table needed. Params,
// Events, Ports, and Info are plain Indexed stores with no such guarantee,
// so those get explicit remap tables built as they're copied.
func (d *Driver) copyPassthrough(src *ir.Component) *published {
	dst := ir.NewComponent(src.Name, src.Kind)
	dst.InterfaceSrc = &ir.InterfaceSrc{
		ParamNames: map[ir.ParamIdx]string{},
		EventNames: map[ir.EventIdx]string{},
		PortNames:  map[ir.PortIdx]string{},
	}

	src.Exprs.Each(func(_ ir.ExprIdx, e ir.Expr) { dst.AddExpr(e) })
	src.Times.Each(func(_ ir.TimeIdx, t ir.Time) { dst.AddTime(t) })
	src.Props.Each(func(_ ir.PropIdx, p ir.Prop) { dst.AddProp(p) })

	infoMap := map[ir.InfoIdx]ir.InfoIdx{}
	src.Infos.Each(func(i ir.InfoIdx, _ ir.Info) {
		infoMap[i] = dst.AddInfo(src.Span(i))
	})
	remapInfo := func(i ir.InfoIdx) ir.InfoIdx {
		if ni, ok := infoMap[i]; ok {
			return ni
		}
		return dst.AddInfo(src.Span(i))
	}

	paramMap := map[ir.ParamIdx]ir.ParamIdx{}
	src.Params.Each(func(i ir.ParamIdx, p ir.Param) {
		paramMap[i] = dst.AddParam(p.Owner, p.Name, remapInfo(p.Info))
	})

	eventMap := ir.NewDenseIndexInfo[ir.EventTag, ir.EventIdx]()
	for _, se := range src.EventArgs {
		ev, ok := src.Events.Get(se)
		if !ok {
			continue
		}
		ne := dst.AddEvent(ev.Delay, ev.Name, ev.HasInterface, remapInfo(ev.Info))
		dst.EventArgs = append(dst.EventArgs, ne)
		dst.InterfaceSrc.EventNames[ne] = ev.Name
		eventMap.Insert(se, ne)
	}

	portMap := map[ir.PortIdx]ir.PortIdx{}
	src.Ports.Each(func(sp ir.PortIdx, port ir.Port) {
		np := dst.AddPort(port.Owner, port.Width, port.Live, port.Name, remapInfo(port.Info))
		if port.Owner.Kind == ir.PortOwnerSig {
			dst.InterfaceSrc.PortNames[np] = port.Name
		}
		portMap[sp] = np
	})

	for _, sp := range src.ParamArgs {
		if np, ok := paramMap[sp]; ok {
			dst.ParamArgs = append(dst.ParamArgs, np)
		}
	}

	dst.Attrs = make(map[string]string, len(src.Attrs))
	for k, v := range src.Attrs {
		dst.Attrs[k] = v
	}

	fresh := d.out.Add(dst)
	return &published{
		fresh:    fresh,
		eventMap: eventMap,
		portMap:  portMap,
		existVal: map[ir.ParamIdx]uint64{},
	}
}
