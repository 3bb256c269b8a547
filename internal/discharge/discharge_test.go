package discharge_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/filament-lang/filc/internal/ast"
	"github.com/filament-lang/filc/internal/ctx"
	"github.com/filament-lang/filc/internal/discharge"
	"github.com/filament-lang/filc/internal/ir"
)

// stubProver is a Prover that never shells out: every fact's negation is
// unsat iff its SMT-LIB text is listed in unsatNegations, letting a test
// drive Run's batched/per-fact control flow without a real solver.
type stubProver struct {
	unsatNegations map[string]bool
	asserted       []string
	actCount       int
	closed         bool
}

func newStub(unsat ...string) *stubProver {
	m := make(map[string]bool, len(unsat))
	for _, s := range unsat {
		m[s] = true
	}
	return &stubProver{unsatNegations: m}
}

func (s *stubProver) Raw(string) error   { return nil }
func (s *stubProver) Assert(expr string) error {
	s.asserted = append(s.asserted, expr)
	return nil
}
func (s *stubProver) Push() error { return nil }
func (s *stubProver) Pop() error  { return nil }

func (s *stubProver) CheckSat() (discharge.Verdict, error) {
	last := s.asserted[len(s.asserted)-1]
	if s.unsatNegations[last] {
		return discharge.Unsat, nil
	}
	return discharge.Sat, nil
}

// CheckSatAssuming treats the query as unsat precisely when one of the
// assertions Assert recorded so far (the activation-literal equalities
// perFactFallback builds) matches an entry in unsatNegations.
func (s *stubProver) CheckSatAssuming(lits []string) (discharge.Verdict, error) {
	for _, a := range s.asserted {
		if s.unsatNegations[a] {
			return discharge.Unsat, nil
		}
	}
	return discharge.Sat, nil
}

func (s *stubProver) GetValue(name string) (string, error) { return "0", nil }
func (s *stubProver) NewActivationLiteral() string {
	s.actCount++
	return fmt.Sprintf("act%d", s.actCount)
}
func (s *stubProver) Close() error { s.closed = true; return nil }

// TestRunBatchProvesAllFacts checks Testable Property 7 (a component whose
// facts all hold produces no reports) via the batched check-sat path.
func TestRunBatchProvesAllFacts(t *testing.T) {
	c := ctx.New()
	comp := ir.NewComponent("Top", ast.Source)
	n := comp.AddParam(ir.ParamOwner{Kind: ir.OwnerSig}, "n", 0)
	comp.ParamArgs = []ir.ParamIdx{n}
	prop := comp.AddProp(ir.Prop{
		Kind: ir.PCmp, Cmp: ir.Ge,
		EL: comp.AddExpr(ir.Expr{Kind: ir.EParam, Param: n}),
		ER: comp.Num(0),
	})
	comp.Body = []ir.Command{ir.FactCmd{Assume: false, Prop: prop}}
	c.Add(comp)

	stub := newStub(fmt.Sprintf("(not $p%d)", prop))
	reports, err := discharge.Run(c, comp, func() (discharge.Prover, error) { return stub, nil }, discharge.Options{Backend: discharge.Z3})
	require.NoError(t, err)
	require.Empty(t, reports)
	require.True(t, stub.closed)
}

// TestRunPerFactFallbackReportsUnprovenFact checks that when the batched
// conjunction is satisfiable (i.e. not provably true), Run falls back to
// checking each fact individually and reports exactly the ones that fail.
func TestRunPerFactFallbackReportsUnprovenFact(t *testing.T) {
	c := ctx.New()
	comp := ir.NewComponent("Top", ast.Source)
	n := comp.AddParam(ir.ParamOwner{Kind: ir.OwnerSig}, "n", 0)
	comp.ParamArgs = []ir.ParamIdx{n}
	prop := comp.AddProp(ir.Prop{
		Kind: ir.PCmp, Cmp: ir.Ge,
		EL: comp.AddExpr(ir.Expr{Kind: ir.EParam, Param: n}),
		ER: comp.Num(0),
	})
	comp.Body = []ir.Command{ir.FactCmd{Assume: false, Prop: prop}}
	c.Add(comp)

	// No assertion text is ever unsat, so both the batch check and the
	// per-fact check report Sat: the fact is genuinely unproven.
	stub := newStub()
	reports, err := discharge.Run(c, comp, func() (discharge.Prover, error) { return stub, nil }, discharge.Options{Backend: discharge.Z3})
	require.NoError(t, err)
	require.Len(t, reports, 1)
	require.Equal(t, "DIS001", reports[0].Code)
}

// TestRunForceSeparateSkipsBatch checks --discharge-separate goes straight
// to perFactFallback even when the batched conjunction would have been
// provable.
func TestRunForceSeparateSkipsBatch(t *testing.T) {
	c := ctx.New()
	comp := ir.NewComponent("Top", ast.Source)
	n := comp.AddParam(ir.ParamOwner{Kind: ir.OwnerSig}, "n", 0)
	comp.ParamArgs = []ir.ParamIdx{n}
	prop := comp.AddProp(ir.Prop{
		Kind: ir.PCmp, Cmp: ir.Ge,
		EL: comp.AddExpr(ir.Expr{Kind: ir.EParam, Param: n}),
		ER: comp.Num(0),
	})
	comp.Body = []ir.Command{ir.FactCmd{Assume: false, Prop: prop}}
	c.Add(comp)

	stub := newStub(fmt.Sprintf("(= act1 (not $p%d))", prop))
	reports, err := discharge.Run(c, comp, func() (discharge.Prover, error) { return stub, nil },
		discharge.Options{Backend: discharge.Z3, ForceSeparate: true})
	require.NoError(t, err)
	require.Empty(t, reports)
	require.Equal(t, 1, stub.actCount)
}

// TestRunNoFactsSkipsSolver checks a component with no obligations never
// even asks the NewProver seam for a session.
func TestRunNoFactsSkipsSolver(t *testing.T) {
	c := ctx.New()
	comp := ir.NewComponent("Top", ast.Source)
	c.Add(comp)

	called := false
	reports, err := discharge.Run(c, comp, func() (discharge.Prover, error) {
		called = true
		return nil, nil
	}, discharge.Options{Backend: discharge.Z3})
	require.NoError(t, err)
	require.Nil(t, reports)
	require.False(t, called)
}
