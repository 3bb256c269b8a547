package mono

import "github.com/filament-lang/filc/internal/ir"

// published is the "global inst_info" spec.md §4.5 describes: what a
// processed key has made visible to every other component's Foreign
// translation and Instance existential readback. Keyed by the SOURCE
// component's own PortIdx — every port (signature, local, or
// invocation-materialized) already has a globally unique handle within one
// component's Ports arena, so no separate per-invocation namespacing is
// needed the way spec.md's `(Option<InvIdx>, PortIdx)` key suggests.
type published struct {
	fresh ir.CompIdx

	// eventMap/portMap translate the SOURCE component's handles to the
	// freshly monomorphized component's handles — populated at the end of
	// Stage 1, before the body walk, so Foreign translation inside a
	// sibling caller can resolve against a callee that hasn't finished
	// Stage 2/3 yet.
	eventMap *ir.DenseIndexInfo[ir.EventTag, ir.EventIdx]
	portMap  map[ir.PortIdx]ir.PortIdx

	// existVal holds each existential's concrete binding, keyed by its
	// ParamIdx in the SOURCE component, published at the end of Stage 3
	// ("Publish each existential's concrete value to inst_info").
	existVal map[ir.ParamIdx]uint64
}
