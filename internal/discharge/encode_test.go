package discharge_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/filament-lang/filc/internal/ast"
	"github.com/filament-lang/filc/internal/discharge"
	"github.com/filament-lang/filc/internal/ir"
)

func TestEncoderIntSortDeclaresPlainInt(t *testing.T) {
	comp := ir.NewComponent("Top", ast.Source)
	n := comp.AddParam(ir.ParamOwner{Kind: ir.OwnerSig}, "n", 0)
	comp.ParamArgs = []ir.ParamIdx{n}

	enc := discharge.NewEncoder(discharge.Sort{}, discharge.Z3)
	decls := enc.Declarations(comp)
	require.Len(t, decls, 1)
	require.Contains(t, decls[0], "Int")
	require.Contains(t, decls[0], "declare-const")
}

func TestEncoderBitVecSortDeclaresWidenedBitVec(t *testing.T) {
	comp := ir.NewComponent("Top", ast.Source)
	n := comp.AddParam(ir.ParamOwner{Kind: ir.OwnerSig}, "n", 0)
	comp.ParamArgs = []ir.ParamIdx{n}

	enc := discharge.NewEncoder(discharge.Sort{BitVec: true, Width: 8}, discharge.Z3)
	decls := enc.Declarations(comp)
	require.Len(t, decls, 1)
	require.Contains(t, decls[0], "(_ BitVec 16)")
}

func TestEncoderDefinitionsReflectCanonicalExpr(t *testing.T) {
	comp := ir.NewComponent("Top", ast.Source)
	n := comp.AddParam(ir.ParamOwner{Kind: ir.OwnerSig}, "n", 0)
	comp.AddExpr(ir.Expr{
		Kind: ir.EBin, Op: ir.Add,
		L: comp.AddExpr(ir.Expr{Kind: ir.EParam, Param: n}),
		R: comp.Num(1),
	})

	enc := discharge.NewEncoder(discharge.Sort{}, discharge.Z3)
	defs := enc.Definitions(comp)

	var found bool
	for _, d := range defs {
		if strings.Contains(d, "(+ ") {
			found = true
			break
		}
	}
	require.True(t, found, "expected a define-fun rendering the Add node, got: %v", defs)
}

func TestEncoderOverflowGuardsOnlyInBitVecMode(t *testing.T) {
	comp := ir.NewComponent("Top", ast.Source)
	comp.Num(5)

	intEnc := discharge.NewEncoder(discharge.Sort{}, discharge.Z3)
	require.Empty(t, intEnc.OverflowGuards(comp))

	bvEnc := discharge.NewEncoder(discharge.Sort{BitVec: true, Width: 4}, discharge.Z3)
	guards := bvEnc.OverflowGuards(comp)
	require.NotEmpty(t, guards)
	for _, g := range guards {
		require.Contains(t, g, "bvuge")
		require.Contains(t, g, "bvult")
	}
}
