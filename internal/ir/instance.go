package ir

// Instance is a use of a component with concrete argument expressions
// (spec.md §3). Params holds the existential parameters defined *at* this
// instance (i.e. concretized here, not at the callee's own definition
// site); Lives records the instance's liveness ranges for scheduling.
type Instance struct {
	Comp   CompIdx
	Args   []ExprIdx
	Params []ParamIdx
	Lives  []Range
	Name   string
	Info   InfoIdx
}

// AddInstance allocates a fresh instance.
func (c *Component) AddInstance(comp CompIdx, args []ExprIdx, name string, info InfoIdx) InstIdx {
	return c.Instances.Add(Instance{Comp: comp, Args: args, Name: name, Info: info})
}
