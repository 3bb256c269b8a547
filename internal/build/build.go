// Package build lowers the surface ast.Program the (out-of-scope) parser
// produces into handle-based ir.Component values installed in a
// ctx.Context, resolving every name to a handle along the way (spec.md
// §4.4). It is the first of the three passes this module implements.
package build

import (
	"fmt"

	"github.com/filament-lang/filc/internal/ast"
	"github.com/filament-lang/filc/internal/ctx"
	"github.com/filament-lang/filc/internal/errors"
	"github.com/filament-lang/filc/internal/ir"
	"github.com/filament-lang/filc/internal/posn"
)

// builder carries the state of a single component's lowering: the
// component under construction, the scope stack tracking name resolution,
// and shared references to the Context (for instance/invoke target lookup)
// and the diagnostics buffer every failure is batched into.
type builder struct {
	c      *ctx.Context
	comp   *ir.Component
	compID ir.CompIdx
	table  *posn.Table
	diags  *errors.Diagnostics
	scope  *scopeStack
}

// Lower compiles every component in prog into c, in declaration order.
// External and Generated components get their signature lowered but no
// body. Errors are batched into the returned Diagnostics; a non-empty
// result does not mean nothing was installed — partial lowering still
// populates c so downstream tooling (e.g. --dump-after on an earlier
// component) has something to show.
func Lower(c *ctx.Context, table *posn.Table, prog *ast.Program) *errors.Diagnostics {
	diags := errors.NewDiagnostics(table)

	// Pass 1: allocate every component and its signature up front, so
	// instances can reference components declared later in the file.
	ids := make(map[string]ir.CompIdx, len(prog.Components))
	for _, ac := range prog.Components {
		if _, dup := ids[ac.Name]; dup {
			diags.Add(errors.New(errors.Malformed, errors.AST003, "build",
				fmt.Sprintf("duplicate component %q", ac.Name), ac.Pos))
			continue
		}
		comp := ir.NewComponent(ac.Name, ac.Kind)
		id := c.Add(comp)
		ids[ac.Name] = id
	}

	builders := make([]*builder, len(prog.Components))
	for i, ac := range prog.Components {
		id, ok := ids[ac.Name]
		if !ok {
			continue
		}
		b := &builder{c: c, comp: c.MustGet(id), compID: id, table: table, diags: diags, scope: newScopeStack()}
		b.lowerSignature(ac)
		builders[i] = b
	}

	// Pass 2: lower bodies, now that every signature is in place.
	for i, ac := range prog.Components {
		b := builders[i]
		if b == nil {
			continue
		}
		if ac.Kind == ast.Source {
			b.comp.Body = b.lowerBody(ac.Body)
		}
		for k, v := range ac.Attrs {
			b.comp.Attrs[k] = v
		}
	}

	return diags
}

func (b *builder) errorf(code string, span posn.Pos, format string, args ...any) {
	b.diags.Add(errors.New(errors.Malformed, code, "build", fmt.Sprintf(format, args...), span))
}

func (b *builder) undefined(kind errors.UndefinedNameKind, name string, span posn.Pos) {
	b.diags.Add(errors.New(errors.UndefinedName, errors.AST001, "build",
		fmt.Sprintf("undefined %s %q", kind, name), span).WithData("kind", kind).WithData("name", name))
}
