package main

import (
	"fmt"

	"github.com/filament-lang/filc/internal/ast"
	"github.com/filament-lang/filc/internal/posn"
)

// SourceParser turns one source file's text into an ast.Program, interning
// every span it mints into table. The grammar and its PEG parser are an
// out-of-scope external collaborator (internal/ast's own package doc); this
// seam is where a real build links one in.
type SourceParser func(table *posn.Table, file, text string) (*ast.Program, error)

// unimplementedParser is the default SourceParser: it exists so the driver
// has something to call without depending on a concrete grammar, and fails
// loudly rather than silently accepting garbage.
func unimplementedParser(_ *posn.Table, file, _ string) (*ast.Program, error) {
	return nil, fmt.Errorf("filc: no parser configured (%s): the surface grammar is supplied by an external frontend", file)
}
