package mono

import (
	"fmt"

	"github.com/filament-lang/filc/internal/ir"
)

// stage3 is "Signature, complete" (spec.md §4.5): now that the body walk
// has supplied every binding it is going to, concretize the signature
// ports' width/liveness and each event's delay, check every existential
// assertion, and leave sig.dst fully concrete. Every failure here panics
// rather than returning an ordinary error: structural failures (spec.md
// §7) go through ice, and a violated existential assumption panics
// directly. By this point in the pass there is nothing left to recover
// from short of aborting the component.
func stage3(sig *monoSig) {
	src, dst := sig.src, sig.dst

	var sigPorts []ir.PortIdx
	src.Ports.Each(func(sp ir.PortIdx, port ir.Port) {
		if port.Owner.Kind == ir.PortOwnerSig {
			sigPorts = append(sigPorts, sp)
		}
	})
	for _, sp := range sigPorts {
		port, _ := src.Ports.Get(sp)
		dp, ok := sig.portMap[sp]
		if !ok {
			continue
		}
		width, ok := sig.translateExpr(port.Width)
		if !ok {
			ice(sig, "%s: signature port %q width could not be concretized", src.Name, port.Name)
		}
		np, _ := dst.Ports.Get(dp)
		np.Width = width
		if len(port.Live.Idxs) > 0 || len(port.Live.Lens) > 0 {
			live, ok := sig.translateLiveness(dp, port.Live)
			if !ok {
				ice(sig, "%s: signature port %q liveness could not be concretized", src.Name, port.Name)
			}
			np.Live = live
		}
		dst.Ports.Set(dp, np)
	}

	for i, se := range src.EventArgs {
		ev, ok := src.Events.Get(se)
		if !ok {
			continue
		}
		delay, ok := sig.translateTimeSub(ev.Delay)
		if !ok {
			ice(sig, "%s: event %q delay could not be concretized", src.Name, ev.Name)
		}
		if i >= len(dst.EventArgs) {
			continue
		}
		ne := dst.EventArgs[i]
		nev, _ := dst.Events.Get(ne)
		nev.Delay = delay
		dst.Events.Set(ne, nev)
	}

	for _, p := range src.ExistAssumes {
		translated, ok := sig.translateProp(p)
		if !ok {
			continue // mentions a parameter out of scope here; cannot apply
		}
		if !sig.dst.ResolveProp(translated) {
			panic(fmt.Sprintf("mono: %s: existential assumption violated after monomorphization", src.Name))
		}
	}
}
