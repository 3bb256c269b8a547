package ir

// Access is a port reference together with a bundle-index range
// [Start, End) (spec.md §3's "access expressions"). For a scalar port,
// Start and End are the reserved Concrete(0)/Concrete(1) handles.
type Access struct {
	Port  PortIdx
	Start ExprIdx
	End   ExprIdx
}

// Command is the ordered-sequence sum type a component body is made of
// (spec.md §3). Like ast.Command, it's a small interface rather than a
// flat struct, since the visitor framework (internal/visit) needs to swap
// whole commands out by dynamic type.
type Command interface {
	commandNode()
}

// InstanceCmd materializes an Instance.
type InstanceCmd struct{ Inst InstIdx }

func (InstanceCmd) commandNode() {}

// InvokeCmd materializes an Invoke, plus the Connects wiring its argument
// ports to the invocation's freshly materialized input ports (spec.md
// §4.4: "For every invoke argument we generate a Connect...").
type InvokeCmd struct {
	Invoke InvIdx
	Conns  []ConnectCmd
}

func (InvokeCmd) commandNode() {}

// BundleDefCmd declares a component-local bundle port.
type BundleDefCmd struct{ Port PortIdx }

func (BundleDefCmd) commandNode() {}

// ConnectCmd is `dst = src`.
type ConnectCmd struct{ Dst, Src Access }

func (ConnectCmd) commandNode() {}

// ForLoopCmd is `for idx in start..end { body }`. Only ever appears in a
// parametric component; monomorphization unrolls and removes it entirely
// (spec.md Testable Property 5).
type ForLoopCmd struct {
	Idx        ParamIdx
	Start, End ExprIdx
	Body       []Command
}

func (ForLoopCmd) commandNode() {}

// IfCmd is `if cond { then } else { alt }`. Monomorphization prunes it to
// whichever branch the condition concretizes to (Testable Property 6).
type IfCmd struct {
	Cond PropIdx
	Then []Command
	Else []Command
}

func (IfCmd) commandNode() {}

// FactCmd is `assume p` or `assert p`.
type FactCmd struct {
	Assume bool
	Prop   PropIdx
}

func (FactCmd) commandNode() {}

// LetCmd is `let param = bind`. Unelaborated marks a scheduling binding
// monomorphization must preserve rather than drop (spec.md §4.5).
type LetCmd struct {
	Param        ParamIdx
	Bind         ExprIdx
	Unelaborated bool
}

func (LetCmd) commandNode() {}

// ExistsCmd is `some param where bind`, binding an existential parameter to
// a concrete value supplied at the instance site.
type ExistsCmd struct {
	Param ParamIdx
	Bind  ExprIdx
}

func (ExistsCmd) commandNode() {}
