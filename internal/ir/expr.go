package ir

import (
	"fmt"
	"strings"
)

// BinOp is an Expr.Bin operator.
type BinOp int

const (
	Add BinOp = iota
	Sub
	Mul
	Div
	Mod
)

func (op BinOp) String() string {
	return [...]string{"+", "-", "*", "/", "%"}[op]
}

// FnOp is an Expr.Fn builtin, the fixed set spec.md §3 names.
type FnOp int

const (
	Pow2 FnOp = iota
	Log2
	SinBits
	CosBits
	BitRev
)

func (op FnOp) String() string {
	return [...]string{"pow2", "log2", "sin_bits", "cos_bits", "bit_rev"}[op]
}

// ExprKind discriminates Expr's variants.
type ExprKind int

const (
	EParam ExprKind = iota
	EConcrete
	EBin
	EFn
	EIf
)

// Expr is the algebraic expression tree node (spec.md §3). Only one group
// of fields is meaningful per Kind; this flat-struct encoding (rather than
// a Go interface per variant) is what lets Expr be interned as an ordinary
// value and stored in a plain slice.
type Expr struct {
	Kind ExprKind

	Param ParamIdx // EParam

	Concrete uint64 // EConcrete

	Op   BinOp // EBin
	L, R ExprIdx

	FnOp FnOp // EFn
	Args []ExprIdx

	Cond       PropIdx // EIf
	Then, Alt  ExprIdx
}

func exprKey(e Expr) string {
	var b strings.Builder
	switch e.Kind {
	case EParam:
		fmt.Fprintf(&b, "P%d", e.Param)
	case EConcrete:
		fmt.Fprintf(&b, "C%d", e.Concrete)
	case EBin:
		fmt.Fprintf(&b, "B%d(%d,%d)", e.Op, e.L, e.R)
	case EFn:
		fmt.Fprintf(&b, "F%d(", e.FnOp)
		for i, a := range e.Args {
			if i > 0 {
				b.WriteByte(',')
			}
			fmt.Fprintf(&b, "%d", a)
		}
		b.WriteByte(')')
	case EIf:
		fmt.Fprintf(&b, "I(%d,%d,%d)", e.Cond, e.Then, e.Alt)
	}
	return b.String()
}

// String renders an expression using Get to resolve children, matching the
// --dump-after textual form.
func (c *Component) exprString(i ExprIdx) string {
	e := c.Exprs.Get(i)
	switch e.Kind {
	case EParam:
		return c.paramName(e.Param)
	case EConcrete:
		return fmt.Sprintf("%d", e.Concrete)
	case EBin:
		return fmt.Sprintf("(%s %s %s)", c.exprString(e.L), e.Op, c.exprString(e.R))
	case EFn:
		parts := make([]string, len(e.Args))
		for i, a := range e.Args {
			parts[i] = c.exprString(a)
		}
		return fmt.Sprintf("%s(%s)", e.FnOp, strings.Join(parts, ", "))
	case EIf:
		return fmt.Sprintf("if %s then %s else %s", c.propString(e.Cond), c.exprString(e.Then), c.exprString(e.Alt))
	default:
		return "<bad-expr>"
	}
}

func (c *Component) paramName(p ParamIdx) string {
	if info, ok := c.Params.Get(p); ok {
		if info.Name != "" {
			return info.Name
		}
	}
	return fmt.Sprintf("%%p%d", p)
}
