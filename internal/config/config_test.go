package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/filament-lang/filc/internal/config"
)

func TestLoadProject(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "filament.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
library_roots = ["./lib", "./vendor"]
solver = "cvc5"
solver_bv = 32
backend = "verilog"
`), 0o644))

	proj, err := config.LoadProject(path)
	require.NoError(t, err)
	require.Equal(t, []string{"./lib", "./vendor"}, proj.LibraryRoots)
	require.Equal(t, "cvc5", proj.Solver)
	require.Equal(t, uint(32), proj.SolverBV)
	require.Equal(t, "verilog", proj.Backend)
}

func TestLoadProjectMissingFile(t *testing.T) {
	_, err := config.LoadProject(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
}

func TestLoadBindings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bindings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- 3\n- 8\n- 0\n"), 0o644))

	bindings, err := config.LoadBindings(path)
	require.NoError(t, err)
	require.Equal(t, config.Bindings{3, 8, 0}, bindings)
}

func TestLoadBindingsMissingFile(t *testing.T) {
	_, err := config.LoadBindings(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
