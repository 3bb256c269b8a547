// Package order computes the deterministic, leaves-first topological
// ordering of components a Context's instance graph induces (spec.md §5:
// "the topological sort of components ... is deterministic (leaves
// first)"). The traversal is the same root-seeded, cycle-detecting DFS
// ailang's internal/link.TopoSortFromRoot uses for module dependency
// ordering, adapted from module imports to instance edges.
package order

import (
	"fmt"
	"strings"

	"github.com/filament-lang/filc/internal/ctx"
	"github.com/filament-lang/filc/internal/ir"
)

// CycleError reports a dependency cycle in the instance graph — components
// instancing each other, directly or transitively, which Filament has no
// semantics for.
type CycleError struct {
	Cycle []ir.CompIdx
	Names []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("instance cycle: %s", strings.Join(e.Names, " -> "))
}

// Sort returns every component reachable from root in dependency order:
// callees before callers. Determinism comes from walking a component's
// instance edges in command order, never from map iteration.
func Sort(c *ctx.Context, root ir.CompIdx) ([]ir.CompIdx, error) {
	visited := map[ir.CompIdx]bool{}
	inPath := map[ir.CompIdx]bool{}
	var path []ir.CompIdx
	var sorted []ir.CompIdx

	var dfs func(ir.CompIdx) error
	dfs = func(id ir.CompIdx) error {
		if visited[id] {
			return nil
		}
		if inPath[id] {
			cycle := append(append([]ir.CompIdx{}, path...), id)
			return &CycleError{Cycle: cycle, Names: names(c, cycle)}
		}
		inPath[id] = true
		path = append(path, id)

		comp, ok := c.Get(id)
		if !ok {
			return fmt.Errorf("order: component %d is not live", id)
		}
		for _, dep := range c.InstanceEdges(comp) {
			if err := dfs(dep); err != nil {
				return err
			}
		}

		inPath[id] = false
		path = path[:len(path)-1]
		visited[id] = true
		sorted = append(sorted, id)
		return nil
	}

	if err := dfs(root); err != nil {
		return nil, err
	}
	return sorted, nil
}

func names(c *ctx.Context, ids []ir.CompIdx) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		if comp, ok := c.Get(id); ok {
			out[i] = comp.Name
		} else {
			out[i] = fmt.Sprintf("comp%d", id)
		}
	}
	return out
}
