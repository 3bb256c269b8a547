// Package config loads cmd/filc's two on-disk configuration shapes
// (spec.md §6): an optional project file naming library search roots and
// solver defaults, and the entrypoint-bindings file supplying concrete
// values for the top-level component's signature parameters. Loading
// follows ailang's internal/eval_harness style: read the whole file, then
// unmarshal, wrapping every error with what was being loaded.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Project is the optional filament.toml project file: default library
// search roots and solver selection, overridable by the matching CLI
// flags (--library, --solver, --solver-bv, --backend).
type Project struct {
	LibraryRoots []string `toml:"library_roots"`
	Solver       string   `toml:"solver"`
	SolverBV     uint     `toml:"solver_bv"`
	Backend      string   `toml:"backend"`
}

// LoadProject reads and parses a filament.toml file. A missing file is an
// error at this layer; cmd/filc checks for the file first and treats a
// missing one as an empty Project.
func LoadProject(path string) (*Project, error) {
	var p Project
	if _, err := toml.DecodeFile(path, &p); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return &p, nil
}

// Bindings is the entrypoint-bindings file (spec.md §6): one unsigned
// 64-bit integer per entry, matched positionally to the top-level
// component's param_args.
type Bindings []uint64

// LoadBindings reads a YAML sequence of entrypoint bindings.
func LoadBindings(path string) (Bindings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read bindings %s: %w", path, err)
	}
	var b Bindings
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("config: failed to parse bindings YAML %s: %w", path, err)
	}
	return b, nil
}
