package build

import (
	"github.com/filament-lang/filc/internal/ast"
	"github.com/filament-lang/filc/internal/ir"
)

type binderKind int

const (
	bindParam binderKind = iota
	bindEvent
	bindPort
	bindInstance
	bindInvoke
)

// instanceBinder is the Phase-1 "(param_binding, component_name) record"
// spec.md §4.4 calls for: enough to resolve port references against the
// callee's signature before the instance's own Args have finished lowering.
type instanceBinder struct {
	idx      ir.InstIdx
	compName string
	compID   ir.CompIdx
	// portWidth/portDir/portBundle mirror the callee's signature ports,
	// keyed by name, with widths already substituted against this
	// instance's argument expressions and re-interned in the caller's
	// arena — Phase 1's "partially resolved" signature.
	portWidth  map[string]ir.ExprIdx
	portDir    map[string]ast.Direction
	portBundle map[string]bool
	calleePort map[string]ir.PortIdx // the callee's own PortIdx, for Foreign construction
}

// invokeBinder is the Phase-1 skeleton for an invocation: the underlying
// instance plus the invoke's own freshly materialized (but still empty)
// port set, filled in during Phase 2.
type invokeBinder struct {
	idx  ir.InvIdx
	inst instanceBinder
	// portByName is filled in once the invoke's own ports are materialized
	// (Phase 2), mapping a callee port name to the fresh PortIdx a
	// qualified access `bind.port` should resolve to.
	portByName map[string]ir.PortIdx
}

// binder is what a bare source name currently resolves to within the scope
// stack a component body walk maintains (spec.md §4.4: "a stack of scope
// maps ... so inner scopes shadow outer ones").
type binder struct {
	kind binderKind
	pos  ir.InfoIdx

	param ir.ParamIdx
	event ir.EventIdx
	port  ir.PortIdx

	instance instanceBinder
	invoke   invokeBinder
}

// scopeStack is the name-resolution stack: index 0 is the component's
// top-level (signature + body-root) scope, and each loop/if body pushes a
// fresh frame that shadows everything below it.
type scopeStack struct {
	frames []map[string]binder
}

func newScopeStack() *scopeStack {
	return &scopeStack{frames: []map[string]binder{{}}}
}

func (s *scopeStack) push() { s.frames = append(s.frames, map[string]binder{}) }

func (s *scopeStack) pop() { s.frames = s.frames[:len(s.frames)-1] }

// declare binds name in the current (innermost) frame, reporting whether
// that frame already held a binder of that name (the "duplicate binder in
// one scope" diagnostic). A binder of the same name in an outer frame is
// shadowed without being reported.
func (s *scopeStack) declare(name string, b binder) (shadowed binder, didShadow bool) {
	frame := s.frames[len(s.frames)-1]
	if existing, ok := frame[name]; ok {
		shadowed, didShadow = existing, true
	}
	frame[name] = b
	return
}

// lookup searches from the innermost frame outward.
func (s *scopeStack) lookup(name string) (binder, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if b, ok := s.frames[i][name]; ok {
			return b, true
		}
	}
	return binder{}, false
}

// update overwrites an already-declared binder in whichever frame holds
// it, without the duplicate-shadow bookkeeping declare does — used to
// patch an invoke's binder once its ports are materialized in Phase 2,
// after Phase 1 already declared it with an empty port map.
func (s *scopeStack) update(name string, b binder) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if _, ok := s.frames[i][name]; ok {
			s.frames[i][name] = b
			return
		}
	}
}
