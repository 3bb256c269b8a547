package build

import (
	"github.com/filament-lang/filc/internal/ast"
	"github.com/filament-lang/filc/internal/errors"
	"github.com/filament-lang/filc/internal/ir"
)

// lowerExpr translates a surface expression into the component's arena,
// resolving ParamRef names against the scope stack. An unresolved name
// reports a diagnostic and returns the reserved Concrete(0) handle so the
// caller can keep walking instead of aborting (spec.md §4.4: "a single
// error does not abort the walk").
func (b *builder) lowerExpr(e ast.Expr) ir.ExprIdx {
	switch ex := e.(type) {
	case *ast.ParamRef:
		bd, ok := b.scope.lookup(ex.Name)
		if !ok || bd.kind != bindParam {
			b.undefined(errors.NameParam, ex.Name, ex.Pos)
			return b.comp.Num(0)
		}
		return b.comp.AddExpr(ir.Expr{Kind: ir.EParam, Param: bd.param})
	case *ast.IntLit:
		return b.comp.Num(ex.Value)
	case *ast.BinExpr:
		return b.comp.AddExpr(ir.Expr{Kind: ir.EBin, Op: ir.BinOp(ex.Op), L: b.lowerExpr(ex.L), R: b.lowerExpr(ex.R)})
	case *ast.FnExpr:
		args := make([]ir.ExprIdx, len(ex.Args))
		for i, a := range ex.Args {
			args[i] = b.lowerExpr(a)
		}
		return b.comp.AddExpr(ir.Expr{Kind: ir.EFn, FnOp: ir.FnOp(ex.Op), Args: args})
	case *ast.IfExpr:
		return b.comp.AddExpr(ir.Expr{
			Kind: ir.EIf,
			Cond: b.lowerProp(ex.Cond),
			Then: b.lowerExpr(ex.Then),
			Alt:  b.lowerExpr(ex.Alt),
		})
	default:
		return b.comp.Num(0)
	}
}

func (b *builder) lowerProp(p ast.Prop) ir.PropIdx {
	switch pr := p.(type) {
	case *ast.BoolLit:
		if pr.Value {
			return ir.PropTrue
		}
		return ir.PropFalse
	case *ast.CmpProp:
		return b.comp.AddProp(ir.Prop{Kind: ir.PCmp, Cmp: ir.CmpOp(pr.Op), EL: b.lowerExpr(pr.L), ER: b.lowerExpr(pr.R)})
	case *ast.TimeCmpProp:
		return b.comp.AddProp(ir.Prop{Kind: ir.PTimeCmp, Cmp: ir.CmpOp(pr.Op), TL: b.lowerTime(pr.L), TR: b.lowerTime(pr.R)})
	case *ast.TimeSubCmpProp:
		return b.comp.AddProp(ir.Prop{Kind: ir.PTimeSubCmp, Cmp: ir.CmpOp(pr.Op), SL: b.lowerTimeSub(pr.L), SR: b.lowerTimeSub(pr.R)})
	case *ast.NotProp:
		return b.comp.AddProp(ir.Prop{Kind: ir.PNot, P: b.lowerProp(pr.P)})
	case *ast.AndProp:
		return b.comp.AddProp(ir.Prop{Kind: ir.PAnd, PL: b.lowerProp(pr.L), PR: b.lowerProp(pr.R)})
	case *ast.OrProp:
		return b.comp.AddProp(ir.Prop{Kind: ir.POr, PL: b.lowerProp(pr.L), PR: b.lowerProp(pr.R)})
	case *ast.ImpliesProp:
		return b.comp.AddProp(ir.Prop{Kind: ir.PImplies, PL: b.lowerProp(pr.Ante), PR: b.lowerProp(pr.Cons)})
	default:
		return ir.PropTrue
	}
}

func (b *builder) lowerTime(t ast.Time) ir.TimeIdx {
	bd, ok := b.scope.lookup(t.Event)
	if !ok || bd.kind != bindEvent {
		b.undefined(errors.NameEvent, t.Event, t.Pos)
		return b.comp.AddTime(ir.Time{Event: 0, Offset: b.comp.Num(0)})
	}
	return b.comp.AddTime(ir.Time{Event: bd.event, Offset: b.lowerExpr(t.Offset)})
}

func (b *builder) lowerTimeSub(ts ast.TimeSub) ir.TimeSub {
	switch s := ts.(type) {
	case *ast.UnitSub:
		return ir.TimeSub{Kind: ir.TSUnit, Offset: b.lowerExpr(s.Offset)}
	case *ast.SymSub:
		return ir.TimeSub{Kind: ir.TSSym, L: b.lowerTime(s.L), R: b.lowerTime(s.R)}
	default:
		return ir.TimeSub{Kind: ir.TSUnit, Offset: b.comp.Num(0)}
	}
}
