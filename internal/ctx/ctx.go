// Package ctx implements the Context spec.md §4.3 describes: the
// collection of all components in a compilation, the entrypoint binding,
// the file→component map for externals, and the only layer at which a
// Foreign cross-component reference actually gets dereferenced.
package ctx

import "github.com/filament-lang/filc/internal/ir"

// EntryPoint names the top-level component together with the concrete
// parameter values bound to its signature (spec.md §4.3, §6).
type EntryPoint struct {
	Comp     ir.CompIdx
	Bindings []uint64
}

// Context holds every component live in a compilation.
type Context struct {
	Comps *ir.Indexed[ir.CompTag, *ir.Component]
	// Externs maps a source file to the external component it declares,
	// the seam the (out-of-scope) file resolver populates.
	Externs map[string]ir.CompIdx
	Entry   *EntryPoint
}

// New creates an empty Context.
func New() *Context {
	return &Context{
		Comps:   ir.NewIndexed[ir.CompTag, *ir.Component](),
		Externs: map[string]ir.CompIdx{},
	}
}

// Add installs a component and returns its fresh handle.
func (c *Context) Add(comp *ir.Component) ir.CompIdx {
	return c.Comps.Add(comp)
}

// Get dereferences a component handle.
func (c *Context) Get(i ir.CompIdx) (*ir.Component, bool) {
	return c.Comps.Get(i)
}

// MustGet dereferences a component handle, panicking if it is not live —
// for call sites that already established liveness (e.g. right after Add).
func (c *Context) MustGet(i ir.CompIdx) *ir.Component {
	comp, ok := c.Get(i)
	if !ok {
		panic("ctx: component handle is not live")
	}
	return comp
}

// SetEntry records the top-level component and its signature's concrete
// argument bindings.
func (c *Context) SetEntry(comp ir.CompIdx, bindings []uint64) {
	c.Entry = &EntryPoint{Comp: comp, Bindings: bindings}
}

// ByName finds a live component by name. Linear in the number of live
// components; used only from the CLI driver and tests, never from a pass's
// hot path.
func (c *Context) ByName(name string) (ir.CompIdx, bool) {
	var found ir.CompIdx
	var ok bool
	c.Comps.Each(func(i ir.CompIdx, comp *ir.Component) {
		if !ok && comp.Name == name {
			found, ok = i, true
		}
	})
	return found, ok
}

// Resolve dereferences a Foreign[T] against this Context using a
// caller-supplied per-entity getter, implementing the single place (spec.md
// §4.3, §9) a foreign key ever crosses a component boundary. Go's method
// type parameters can't extend a receiver's, so this is a free function
// rather than a Context method.
func Resolve[T any, V any](c *Context, f ir.Foreign[T], get func(*ir.Component, ir.Idx[T]) (V, bool)) (V, bool) {
	comp, ok := c.Get(f.Owner)
	if !ok {
		var zero V
		return zero, false
	}
	return get(comp, f.Key)
}

// ResolvePort dereferences a Foreign[ir.PortTag].
func ResolvePort(c *Context, f ir.Foreign[ir.PortTag]) (ir.Port, bool) {
	return Resolve(c, f, func(comp *ir.Component, i ir.PortIdx) (ir.Port, bool) { return comp.Ports.Get(i) })
}

// ResolveEvent dereferences a Foreign[ir.EventTag].
func ResolveEvent(c *Context, f ir.Foreign[ir.EventTag]) (ir.Event, bool) {
	return Resolve(c, f, func(comp *ir.Component, i ir.EventIdx) (ir.Event, bool) { return comp.Events.Get(i) })
}

// ResolveParam dereferences a Foreign[ir.ParamTag].
func ResolveParam(c *Context, f ir.Foreign[ir.ParamTag]) (ir.Param, bool) {
	return Resolve(c, f, func(comp *ir.Component, i ir.ParamIdx) (ir.Param, bool) { return comp.Params.Get(i) })
}

// Dump renders the named component's persisted IR form (spec.md §6's
// --dump-after NAME), the printable syntax ir.Component.String implements.
// Called once after build.Lower and once after mono.Run, so a name that
// only exists in one of the two contexts simply dumps nothing there.
func (c *Context) Dump(name string) string {
	id, ok := c.ByName(name)
	if !ok {
		return ""
	}
	comp, ok := c.Get(id)
	if !ok {
		return ""
	}
	return comp.String()
}

// InstanceEdges returns, for every Instance command in comp's body
// (including inside nested If/ForLoop blocks), the callee component it
// depends on. internal/order uses this to build the leaves-first
// topological order spec.md §5 requires for backend ordering.
func (c *Context) InstanceEdges(comp *ir.Component) []ir.CompIdx {
	var out []ir.CompIdx
	var walk func([]ir.Command)
	walk = func(cmds []ir.Command) {
		for _, cmd := range cmds {
			switch cc := cmd.(type) {
			case ir.InstanceCmd:
				if inst, ok := comp.Instances.Get(cc.Inst); ok {
					out = append(out, inst.Comp)
				}
			case ir.IfCmd:
				walk(cc.Then)
				walk(cc.Else)
			case ir.ForLoopCmd:
				walk(cc.Body)
			}
		}
	}
	walk(comp.Body)
	return out
}
