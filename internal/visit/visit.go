// Package visit implements the Command traversal scaffold spec.md §4.6
// describes: a per-kind hook interface returning an Action that the driver
// uses to keep, replace, or splice commands, plus the do_pass driver that
// runs a Visitor over every component in a Context.
package visit

import "github.com/filament-lang/filc/internal/ir"

// ActionKind discriminates the four things a hook can ask the traversal to
// do with the command it was given.
type ActionKind int

const (
	// Continue keeps the command as-is and recurses into its children.
	Continue ActionKind = iota
	// Stop aborts further traversal of the command list this hook belongs
	// to; commands before this one stay, and this command and the rest of
	// the list are dropped.
	Stop
	// Change replaces the current command with a (possibly empty, possibly
	// multi-command) sequence.
	Change
	// AddBefore splices commands in ahead of the current one, which is
	// kept and still recursed into.
	AddBefore
)

// Action is the per-command hook return value.
type Action struct {
	Kind ActionKind
	Cmds []ir.Command // Change, AddBefore
}

// ContinueAction is the zero-work default every hook that doesn't care
// about a particular command kind returns.
var ContinueAction = Action{Kind: Continue}

// Visitor is the per-kind hook set a pass implements. Every per-command
// hook, StartLoop and StartIf included, has the same shape: given the
// command and the owning component, return an Action. EndLoop, EndIf,
// StartCmds, EndCmds and ClearData return nothing. Embedding
// DefaultVisitor gives every hook a Continue default so a pass only
// overrides the kinds it cares about.
type Visitor interface {
	Invoke(c *ir.Component, cmd ir.InvokeCmd) Action
	Instance(c *ir.Component, cmd ir.InstanceCmd) Action
	Connect(c *ir.Component, cmd ir.ConnectCmd) Action
	BundleDef(c *ir.Component, cmd ir.BundleDefCmd) Action
	Fact(c *ir.Component, cmd ir.FactCmd) Action
	Let(c *ir.Component, cmd ir.LetCmd) Action
	Exists(c *ir.Component, cmd ir.ExistsCmd) Action

	StartLoop(c *ir.Component, cmd ir.ForLoopCmd) Action
	EndLoop(c *ir.Component, cmd ir.ForLoopCmd)
	StartIf(c *ir.Component, cmd ir.IfCmd) Action
	EndIf(c *ir.Component, cmd ir.IfCmd)

	StartCmds(c *ir.Component)
	EndCmds(c *ir.Component)

	// ClearData resets any per-component accumulator a pass keeps, called
	// by do_pass between components (spec.md §4.6).
	ClearData()
}

// DefaultVisitor gives every hook the Continue behavior; passes embed it
// and override only the hooks relevant to them.
type DefaultVisitor struct{}

func (DefaultVisitor) Invoke(*ir.Component, ir.InvokeCmd) Action       { return ContinueAction }
func (DefaultVisitor) Instance(*ir.Component, ir.InstanceCmd) Action   { return ContinueAction }
func (DefaultVisitor) Connect(*ir.Component, ir.ConnectCmd) Action     { return ContinueAction }
func (DefaultVisitor) BundleDef(*ir.Component, ir.BundleDefCmd) Action { return ContinueAction }
func (DefaultVisitor) Fact(*ir.Component, ir.FactCmd) Action           { return ContinueAction }
func (DefaultVisitor) Let(*ir.Component, ir.LetCmd) Action             { return ContinueAction }
func (DefaultVisitor) Exists(*ir.Component, ir.ExistsCmd) Action       { return ContinueAction }
func (DefaultVisitor) StartLoop(*ir.Component, ir.ForLoopCmd) Action   { return ContinueAction }
func (DefaultVisitor) EndLoop(*ir.Component, ir.ForLoopCmd)            {}
func (DefaultVisitor) StartIf(*ir.Component, ir.IfCmd) Action          { return ContinueAction }
func (DefaultVisitor) EndIf(*ir.Component, ir.IfCmd)                   {}
func (DefaultVisitor) StartCmds(*ir.Component)                         {}
func (DefaultVisitor) EndCmds(*ir.Component)                           {}
func (DefaultVisitor) ClearData()                                      {}

// VisitCmds drains cmds, applies v's hooks to each in turn, recursing into
// If/ForLoop bodies, and reinstalls the (possibly rewritten) sequence —
// spec.md §4.6's "drains the owning vector to decouple mutation of
// children from the parent borrow". A Stop action truncates the remaining
// list without visiting it.
func VisitCmds(v Visitor, c *ir.Component, cmds []ir.Command) []ir.Command {
	v.StartCmds(c)
	defer v.EndCmds(c)

	drained := cmds
	out := make([]ir.Command, 0, len(drained))
	for _, cmd := range drained {
		action := dispatch(v, c, cmd)
		switch action.Kind {
		case Continue:
			out = append(out, recurse(v, c, cmd))
		case Stop:
			return out
		case Change:
			out = append(out, action.Cmds...)
		case AddBefore:
			out = append(out, action.Cmds...)
			out = append(out, recurse(v, c, cmd))
		}
	}
	return out
}

func dispatch(v Visitor, c *ir.Component, cmd ir.Command) Action {
	switch cc := cmd.(type) {
	case ir.InvokeCmd:
		return v.Invoke(c, cc)
	case ir.InstanceCmd:
		return v.Instance(c, cc)
	case ir.ConnectCmd:
		return v.Connect(c, cc)
	case ir.BundleDefCmd:
		return v.BundleDef(c, cc)
	case ir.FactCmd:
		return v.Fact(c, cc)
	case ir.LetCmd:
		return v.Let(c, cc)
	case ir.ExistsCmd:
		return v.Exists(c, cc)
	case ir.ForLoopCmd:
		return v.StartLoop(c, cc)
	case ir.IfCmd:
		return v.StartIf(c, cc)
	default:
		return ContinueAction
	}
}

// recurse walks into a command's nested bodies (ForLoop/If) after its
// start hook ran and returned Continue; leaf commands pass through
// unchanged.
func recurse(v Visitor, c *ir.Component, cmd ir.Command) ir.Command {
	switch cc := cmd.(type) {
	case ir.ForLoopCmd:
		cc.Body = VisitCmds(v, c, cc.Body)
		v.EndLoop(c, cc)
		return cc
	case ir.IfCmd:
		cc.Then = VisitCmds(v, c, cc.Then)
		cc.Else = VisitCmds(v, c, cc.Else)
		v.EndIf(c, cc)
		return cc
	default:
		return cmd
	}
}
