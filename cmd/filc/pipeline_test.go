package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/filament-lang/filc/internal/ast"
	"github.com/filament-lang/filc/internal/config"
	"github.com/filament-lang/filc/internal/ctx"
	"github.com/filament-lang/filc/internal/ir"
)

func TestApplyProjectDefaultsFillsZeroValues(t *testing.T) {
	opts := &cliOptions{solver: "z3"}
	proj := &config.Project{
		LibraryRoots: []string{"./lib"},
		Solver:       "cvc5",
		SolverBV:     16,
		Backend:      "verilog",
	}

	applyProjectDefaults(opts, proj)

	require.Equal(t, []string{"./lib"}, opts.libraryRoots)
	require.Equal(t, "cvc5", opts.solver)
	require.Equal(t, uint(16), opts.solverBV)
	require.Equal(t, "verilog", opts.backend)
}

func TestApplyProjectDefaultsNeverOverridesExplicitFlags(t *testing.T) {
	opts := &cliOptions{
		libraryRoots: []string{"./explicit"},
		solver:       "boolector",
		solverBV:     8,
		backend:      "calyx",
	}
	proj := &config.Project{
		LibraryRoots: []string{"./lib"},
		Solver:       "cvc5",
		SolverBV:     16,
		Backend:      "verilog",
	}

	applyProjectDefaults(opts, proj)

	require.Equal(t, []string{"./explicit"}, opts.libraryRoots)
	require.Equal(t, "boolector", opts.solver)
	require.Equal(t, uint(8), opts.solverBV)
	require.Equal(t, "calyx", opts.backend)
}

func TestResolveEntryRequiresToplevelWhenAmbiguous(t *testing.T) {
	c := ctx.New()
	c.Add(ir.NewComponent("A", ast.Source))
	c.Add(ir.NewComponent("B", ast.Source))

	_, err := resolveEntry(c, &cliOptions{})
	require.Error(t, err)
}

func TestResolveEntryPicksSoleSourceComponent(t *testing.T) {
	c := ctx.New()
	ext := ir.NewComponent("Lib", ast.External)
	c.Add(ext)
	src := ir.NewComponent("Top", ast.Source)
	id := c.Add(src)

	got, err := resolveEntry(c, &cliOptions{})
	require.NoError(t, err)
	require.Equal(t, id, got)
}

func TestResolveEntryHonorsExplicitToplevel(t *testing.T) {
	c := ctx.New()
	a := ir.NewComponent("A", ast.Source)
	aID := c.Add(a)
	b := ir.NewComponent("B", ast.Source)
	c.Add(b)

	got, err := resolveEntry(c, &cliOptions{toplevel: "A"})
	require.NoError(t, err)
	require.Equal(t, aID, got)
}

func TestResolveEntryUnknownToplevelErrors(t *testing.T) {
	c := ctx.New()
	c.Add(ir.NewComponent("A", ast.Source))

	_, err := resolveEntry(c, &cliOptions{toplevel: "Missing"})
	require.Error(t, err)
}
