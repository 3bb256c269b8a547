package ir

// EventBind binds a callee event to a caller time plus an extra delay
// (spec.md §3).
type EventBind struct {
	Arg   TimeIdx
	Delay TimeSub
	Base  Foreign[EventTag]
}

// Invoke is a use of an instance at a particular event binding (spec.md
// §3); it defines its own input and output port handles.
type Invoke struct {
	Inst   InstIdx
	Ports  []PortIdx
	Events []EventBind
	Name   string
	Info   InfoIdx
}

// AddInvoke allocates a fresh invocation.
func (c *Component) AddInvoke(inst InstIdx, name string, info InfoIdx) InvIdx {
	return c.Invokes.Add(Invoke{Inst: inst, Name: name, Info: info})
}
