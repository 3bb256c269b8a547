package mono

import "github.com/filament-lang/filc/internal/ir"

// monoInstance is what stage2's Instance handling resolves an Instance
// command to: the callee's published remap (so a later Invoke on this
// instance can translate ports/events through it) plus the fresh Instance
// handle allocated in the component under construction.
type monoInstance struct {
	calleePub *published
	fresh     ir.InstIdx
}

// monoSig is the per-component in-progress state spec.md §4.5 calls
// "MonoSig": the base component under construction, the parameter
// binding, and the remap tables that grow as the body walk runs.
type monoSig struct {
	key Key
	src *ir.Component
	dst *ir.Component

	// bind holds every concrete value currently known for a SOURCE
	// ParamIdx: the signature bindings the key carries, plus whatever
	// Let/Exists/ForLoop-index bindings stage2 accumulates as it walks
	// the body. All recursive expression translation consults this.
	bind map[ir.ParamIdx]uint64

	// eventMap, instMap, and invMap are dense: nearly every source handle
	// gets a fresh one (a dropped Instance/Invoke inside a pruned If branch
	// just never gets an entry, which DenseIndexInfo.Insert tolerates).
	eventMap *ir.DenseIndexInfo[ir.EventTag, ir.EventIdx]
	instMap  *ir.DenseIndexInfo[ir.InstTag, monoInstance]
	invMap   *ir.DenseIndexInfo[ir.InvTag, ir.InvIdx]

	// portMap translates a SOURCE PortIdx (signature, local, or
	// invocation-materialized — all share one per-component handle space)
	// to its freshly allocated dst port.
	portMap map[ir.PortIdx]ir.PortIdx

	// paramMap holds the sparse remaps spec.md §4.5 calls out as the
	// exception to substitution: a bundle port's Idxs params describe the
	// port's own shape and stay symbolic in the monomorphized output
	// rather than folding to a constant, so they get a fresh dst Param
	// instead of a bind entry.
	paramMap *ir.SparseInfoMap[ir.ParamTag, ir.ParamIdx]

	// existVal accumulates existential concrete bindings discovered
	// during stage2 from ExistsCmd, keyed by the SOURCE ParamIdx of the
	// existential itself. Values read back from a callee at an
	// InstanceCmd go only into bind. Stage 3 publishes this.
	existVal map[ir.ParamIdx]uint64
}

func newMonoSig(key Key, src, dst *ir.Component) *monoSig {
	bind := make(map[ir.ParamIdx]uint64, len(key.Args))
	for i, p := range src.ParamArgs {
		if i < len(key.Args) {
			bind[p] = key.Args[i]
		}
	}
	return &monoSig{
		key: key, src: src, dst: dst,
		bind:     bind,
		eventMap: ir.NewDenseIndexInfo[ir.EventTag, ir.EventIdx](),
		instMap:  ir.NewDenseIndexInfo[ir.InstTag, monoInstance](),
		invMap:   ir.NewDenseIndexInfo[ir.InvTag, ir.InvIdx](),
		portMap:  map[ir.PortIdx]ir.PortIdx{},
		paramMap: ir.NewSparseInfoMap[ir.ParamTag, ir.ParamIdx](),
		existVal: map[ir.ParamIdx]uint64{},
	}
}
