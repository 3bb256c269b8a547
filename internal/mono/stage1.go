package mono

import "github.com/filament-lang/filc/internal/ir"

// stage1 is "Signature, partial" (spec.md §4.5): allocate the fresh
// events (delays filled in later, since a delay may mention an
// existential not yet bound) and every signature port's shell — no
// width, no liveness — then package what's known so far into the
// published remap other components can already resolve Foreign
// references against.
func stage1(sig *monoSig) *published {
	src, dst := sig.src, sig.dst
	dst.InterfaceSrc = &ir.InterfaceSrc{
		ParamNames: map[ir.ParamIdx]string{},
		EventNames: map[ir.EventIdx]string{},
		PortNames:  map[ir.PortIdx]string{},
	}

	for _, se := range src.EventArgs {
		ev, ok := src.Events.Get(se)
		if !ok {
			continue
		}
		info := dst.AddInfo(src.Span(ev.Info))
		ne := dst.AddEvent(ir.TimeSub{}, ev.Name, ev.HasInterface, info)
		dst.EventArgs = append(dst.EventArgs, ne)
		dst.InterfaceSrc.EventNames[ne] = ev.Name
		sig.eventMap.Insert(se, ne)
	}

	src.Ports.Each(func(sp ir.PortIdx, port ir.Port) {
		if port.Owner.Kind != ir.PortOwnerSig {
			return
		}
		info := dst.AddInfo(src.Span(port.Info))
		np := dst.AddPort(ir.PortOwner{Kind: ir.PortOwnerSig, Dir: port.Owner.Dir}, 0, ir.Liveness{}, port.Name, info)
		dst.InterfaceSrc.PortNames[np] = port.Name
		sig.portMap[sp] = np
	})

	return &published{
		fresh:    0, // filled in by the driver once the component is added
		eventMap: sig.eventMap,
		portMap:  sig.portMap,
		existVal: map[ir.ParamIdx]uint64{},
	}
}
