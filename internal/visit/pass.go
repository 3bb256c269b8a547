package visit

import (
	"github.com/filament-lang/filc/internal/ast"
	"github.com/filament-lang/filc/internal/ctx"
	"github.com/filament-lang/filc/internal/ir"
)

// sentinel stands in for a component while it is moved out of the Context
// during its own visitor invocation (spec.md §5's ownership discipline:
// "avoids aliasing when the pass also needs immutable access to other
// components for foreign-key resolution"). Any attempt to resolve a
// Foreign into the component currently under visitation fails closed
// rather than reading a half-rewritten body.
var sentinel = ir.NewComponent("<visiting>", ast.Source)

// DoPass runs v over every live component in c, in handle order, moving
// each out for the duration of its own traversal, calling v.ClearData
// between components, and returning the number of components whose body
// traversal panicked-and-recovered into a diagnostic-worthy error. Callers
// that want panics to propagate (e.g. tests exercising a single component)
// should call VisitCmds directly instead.
func DoPass(c *ctx.Context, v Visitor) int {
	errs := 0
	var ids []ir.CompIdx
	c.Comps.Each(func(i ir.CompIdx, _ *ir.Component) { ids = append(ids, i) })

	for _, id := range ids {
		comp, ok := c.Get(id)
		if !ok {
			continue
		}
		c.Comps.Set(id, sentinel)
		if !runComponent(v, comp) {
			errs++
		}
		v.ClearData()
		c.Comps.Set(id, comp)
	}
	return errs
}

// runComponent applies v to a single component's body, reporting false if
// the traversal panicked (recovered here so one bad component doesn't
// abort the whole pass).
func runComponent(v Visitor, comp *ir.Component) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()
	comp.Body = VisitCmds(v, comp, comp.Body)
	return true
}
