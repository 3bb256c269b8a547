package ir

import (
	"fmt"
	"strings"
)

// String renders a component in the textual form spec.md §6 fixes for
// --dump-after: `comp name[params]<events>(inputs) -> (outputs) { ... }`.
func (c *Component) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "comp %s[%s]<%s>(%s) -> (%s) {\n",
		c.Name, c.joinParams(c.ParamArgs), c.joinEvents(c.EventArgs),
		c.joinPorts(c.sigPortsDir(0)), c.joinPorts(c.sigPortsDir(1)))
	for _, cmd := range c.Body {
		b.WriteString(indent(c.commandString(cmd), "  "))
		b.WriteByte('\n')
	}
	for _, p := range c.ParamAsserts {
		fmt.Fprintf(&b, "  assert %s\n", c.propString(p))
	}
	for _, p := range c.ExistAssumes {
		fmt.Fprintf(&b, "  assume %s\n", c.propString(p))
	}
	b.WriteString("}")
	return b.String()
}

func (c *Component) sigPortsDir(dirWanted int) []PortIdx {
	var out []PortIdx
	c.Ports.Each(func(i PortIdx, p Port) {
		if p.Owner.Kind != PortOwnerSig {
			return
		}
		if int(p.Owner.Dir) == dirWanted {
			out = append(out, i)
		}
	})
	return out
}

func (c *Component) joinParams(ps []ParamIdx) string {
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = c.paramName(p)
	}
	return strings.Join(names, ", ")
}

func (c *Component) joinEvents(es []EventIdx) string {
	names := make([]string, len(es))
	for i, e := range es {
		names[i] = c.eventName(e)
	}
	return strings.Join(names, ", ")
}

func (c *Component) joinPorts(ps []PortIdx) string {
	names := make([]string, len(ps))
	for i, p := range ps {
		port, _ := c.Ports.Get(p)
		names[i] = fmt.Sprintf("%s: %s", port.Name, c.exprString(port.Width))
	}
	return strings.Join(names, ", ")
}

func (c *Component) commandString(cmd Command) string {
	switch cc := cmd.(type) {
	case InstanceCmd:
		inst, _ := c.Instances.Get(cc.Inst)
		args := make([]string, len(inst.Args))
		for i, a := range inst.Args {
			args[i] = c.exprString(a)
		}
		return fmt.Sprintf("%s = instance comp%d[%s]", inst.Name, inst.Comp, strings.Join(args, ", "))
	case InvokeCmd:
		inv, _ := c.Invokes.Get(cc.Invoke)
		events := make([]string, len(inv.Events))
		for i, eb := range inv.Events {
			events[i] = c.timeString(eb.Arg)
		}
		ports := make([]string, len(inv.Ports))
		for i, p := range inv.Ports {
			port, _ := c.Ports.Get(p)
			ports[i] = port.Name
		}
		var b strings.Builder
		fmt.Fprintf(&b, "%s, %s = invoke inst%d<%s>", inv.Name, strings.Join(ports, ", "), inv.Inst, strings.Join(events, ", "))
		for _, conn := range cc.Conns {
			b.WriteByte('\n')
			b.WriteString(c.commandString(conn))
		}
		return b.String()
	case BundleDefCmd:
		port, _ := c.Ports.Get(cc.Port)
		return fmt.Sprintf("bundle %s: %s", port.Name, c.exprString(port.Width))
	case ConnectCmd:
		return fmt.Sprintf("%s = %s", c.accessString(cc.Dst), c.accessString(cc.Src))
	case ForLoopCmd:
		var b strings.Builder
		fmt.Fprintf(&b, "for %s in %s..%s {\n", c.paramName(cc.Idx), c.exprString(cc.Start), c.exprString(cc.End))
		for _, sub := range cc.Body {
			b.WriteString(indent(c.commandString(sub), "  "))
			b.WriteByte('\n')
		}
		b.WriteString("}")
		return b.String()
	case IfCmd:
		var b strings.Builder
		fmt.Fprintf(&b, "if %s {\n", c.propString(cc.Cond))
		for _, sub := range cc.Then {
			b.WriteString(indent(c.commandString(sub), "  "))
			b.WriteByte('\n')
		}
		b.WriteString("} else {\n")
		for _, sub := range cc.Else {
			b.WriteString(indent(c.commandString(sub), "  "))
			b.WriteByte('\n')
		}
		b.WriteString("}")
		return b.String()
	case FactCmd:
		if cc.Assume {
			return fmt.Sprintf("assume %s", c.propString(cc.Prop))
		}
		return fmt.Sprintf("assert %s", c.propString(cc.Prop))
	case LetCmd:
		return fmt.Sprintf("let %s = %s", c.paramName(cc.Param), c.exprString(cc.Bind))
	case ExistsCmd:
		return fmt.Sprintf("some %s where %s", c.paramName(cc.Param), c.exprString(cc.Bind))
	default:
		return "<unknown-command>"
	}
}

func (c *Component) accessString(a Access) string {
	port, _ := c.Ports.Get(a.Port)
	if a.Start == ExprZero && a.End == ExprOne {
		return port.Name
	}
	return fmt.Sprintf("%s{%s..%s}", port.Name, c.exprString(a.Start), c.exprString(a.End))
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = prefix + lines[i]
	}
	return strings.Join(lines, "\n")
}
