package discharge

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/filament-lang/filc/internal/ctx"
	"github.com/filament-lang/filc/internal/errors"
	"github.com/filament-lang/filc/internal/ir"
	"github.com/filament-lang/filc/internal/order"
	"github.com/filament-lang/filc/internal/posn"
)

// Options configures one discharge run (spec.md §6's --solver,
// --solver-bv, --show-models, --discharge-separate flags).
type Options struct {
	Backend       Backend
	BitVecWidth   uint // 0 selects unbounded Int mode
	ShowModels    bool
	ForceSeparate bool // --discharge-separate: skip the batched proof, go straight to per-fact
	DumpSolverLog io.Writer
}

func (o Options) sort() Sort {
	if o.BitVecWidth == 0 {
		return Sort{}
	}
	return Sort{BitVec: true, Width: o.BitVecWidth}
}

// NewProver is the seam Run calls through to obtain a fresh solver
// session; production callers wrap NewSession, tests wrap a stub.
type NewProver func() (Prover, error)

// Run discharges one component's obligations (spec.md §4.7): its hoisted
// top-level Facts, plus the equalities its let-bound parameters and
// instances' non-opaque existentials impose. It returns one Report per
// obligation the solver could not prove; a nil slice and nil error means
// every obligation holds. comp's body is expected to already be
// monomorphized (no surviving If/ForLoop), but Hoist is still run first
// since Testable Property 8 exercises it standalone and a caller that
// skips monomorphization may still have scoped Facts.
func Run(c *ctx.Context, comp *ir.Component, newProver NewProver, opts Options) ([]*errors.Report, error) {
	facts := Hoist(comp)
	if len(facts) == 0 {
		return nil, nil
	}

	prover, err := newProver()
	if err != nil {
		return nil, fmt.Errorf("discharge: %s: %w", comp.Name, err)
	}
	defer prover.Close()

	enc := NewEncoder(opts.sort(), opts.Backend)
	// Definitions must run before Builtins so the encoder has already
	// discovered which Fn builtins a symbolic expression referenced.
	defs := enc.Definitions(comp)

	script := enc.Prelude()
	script = append(script, enc.Declarations(comp)...)
	script = append(script, enc.Builtins()...)
	script = append(script, defs...)
	script = append(script, enc.OverflowGuards(comp)...)
	for _, line := range script {
		if err := prover.Raw(line); err != nil {
			return nil, err
		}
	}

	if err := assertLets(comp, enc, prover); err != nil {
		return nil, err
	}
	if err := assertExistentials(c, comp, enc, prover); err != nil {
		return nil, err
	}

	factRefs := make([]string, len(facts))
	for i, f := range facts {
		factRefs[i] = pRef(f.Prop)
	}
	conj := fmt.Sprintf("(and %s)", strings.Join(factRefs, " "))
	if len(factRefs) == 1 {
		conj = factRefs[0]
	}

	if !opts.ForceSeparate {
		batchUnsat, err := checkBatch(prover, conj)
		if err != nil {
			return nil, err
		}
		if batchUnsat {
			return nil, nil
		}
	}

	return perFactFallback(comp, enc, prover, facts, opts)
}

// checkBatch asserts ¬(∧ facts) under push/pop and reports whether it was
// UNSAT — i.e. every fact holds (spec.md §4.7 step 5).
func checkBatch(prover Prover, conj string) (bool, error) {
	if err := prover.Push(); err != nil {
		return false, err
	}
	defer prover.Pop()
	if err := prover.Assert(fmt.Sprintf("(not %s)", conj)); err != nil {
		return false, err
	}
	verdict, err := prover.CheckSat()
	if err != nil {
		return false, err
	}
	return verdict == Unsat, nil
}

// perFactFallback checks each fact's negation independently, bracketed by
// an activation literal so a single session can ask about every fact
// without re-declaring state (spec.md §4.7 step 5).
func perFactFallback(comp *ir.Component, enc *Encoder, prover Prover, facts []HoistedFact, opts Options) ([]*errors.Report, error) {
	lits := make([]string, len(facts))
	for i, f := range facts {
		lit := prover.NewActivationLiteral()
		if err := prover.Assert(fmt.Sprintf("(= %s (not %s))", lit, pRef(f.Prop))); err != nil {
			return nil, err
		}
		lits[i] = lit
	}

	var reports []*errors.Report
	for i, f := range facts {
		verdict, err := prover.CheckSatAssuming([]string{lits[i]})
		if err != nil {
			return nil, err
		}
		if verdict == Unsat {
			continue
		}
		rep := errors.New(errors.Misc, errors.DIS001, "discharge",
			fmt.Sprintf("unprovable constraint in component %q", comp.Name), posn.NoPos)
		if opts.ShowModels {
			model, err := ExtractModel(comp, enc, prover, f.Prop)
			if err != nil {
				return nil, err
			}
			rep = rep.WithData("model", modelToNames(comp, model))
		}
		reports = append(reports, rep)
	}
	return reports, nil
}

func modelToNames(comp *ir.Component, m Model) map[string]uint64 {
	out := make(map[string]uint64, len(m))
	for p, v := range m {
		out[paramDisplayName(comp, p)] = v
	}
	return out
}

// assertLets encodes `let p = b` obligations still surviving in the body
// (spec.md §4.7 step 4). Monomorphization substitutes almost every
// let-bound parameter away; only the unelaborated scheduling lets
// (spec.md §4.5) carry one this far.
func assertLets(comp *ir.Component, enc *Encoder, prover Prover) error {
	var err error
	walkLets(comp.Body, func(cmd ir.LetCmd) {
		if err != nil {
			return
		}
		eq := fmt.Sprintf("(= %s %s)", enc.paramSym(comp, cmd.Param), eRef(cmd.Bind))
		err = prover.Assert(eq)
	})
	return err
}

func walkLets(cmds []ir.Command, f func(ir.LetCmd)) {
	for _, cmd := range cmds {
		switch cc := cmd.(type) {
		case ir.LetCmd:
			f(cc)
		case ir.IfCmd:
			walkLets(cc.Then, f)
			walkLets(cc.Else, f)
		case ir.ForLoopCmd:
			walkLets(cc.Body, f)
		}
	}
}

// assertExistentials encodes, for each instance proxy param, `proxy =
// f(args)` where f is the callee's uninterpreted function for the
// existential's home param (spec.md §4.7 step 4), identified via the
// proxy's own Owner.InstanceBase rather than positional order — an
// instance's existential proxies need not enumerate the callee's
// existentials in the callee's own declaration order. An opaque
// existential (SPEC_FULL.md supplemented feature 1) is skipped: its value
// is never substituted into a caller, so the caller has no obligation
// mentioning it.
func assertExistentials(c *ctx.Context, comp *ir.Component, enc *Encoder, prover Prover) error {
	var err error
	comp.Params.Each(func(proxy ir.ParamIdx, p ir.Param) {
		if err != nil || p.Owner.Kind != ir.OwnerInstance {
			return
		}
		inst, ok := comp.Instances.Get(p.Owner.InstanceInst)
		if !ok {
			return
		}
		base := p.Owner.InstanceBase
		callee, ok := c.Get(base.Owner)
		if !ok {
			return
		}
		calleeParam, ok := callee.Params.Get(base.Key)
		if !ok || calleeParam.Owner.ExistsOpaque {
			return
		}
		args := make([]string, len(inst.Args))
		for i, a := range inst.Args {
			args[i] = eRef(a)
		}
		fn := enc.ExistFn(base.Owner, base.Key)
		if err = prover.Raw(enc.DeclareExistFn(fn, len(args))); err != nil {
			return
		}
		eq := fmt.Sprintf("(= %s (%s %s))", enc.paramSym(comp, proxy), fn, strings.Join(args, " "))
		err = prover.Assert(eq)
	})
	return err
}

// RunAll discharges every component reachable from root, leaves-first
// order, concurrently (spec.md §5: components may discharge in parallel;
// each session still issues one check-sat at a time). Reports are merged
// into one Diagnostics buffer and only sorted once every component has
// finished, preserving the deterministic ordering spec.md §5 requires
// before anything is reported.
func RunAll(c *ctx.Context, root ir.CompIdx, table *posn.Table, newProver NewProver, opts Options) (*errors.Diagnostics, error) {
	ids, err := order.Sort(c, root)
	if err != nil {
		return nil, err
	}

	diags := errors.NewDiagnostics(table)
	var mu sync.Mutex
	g := new(errgroup.Group)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			comp, ok := c.Get(id)
			if !ok {
				return nil
			}
			reports, err := Run(c, comp, newProver, opts)
			if err != nil {
				return err
			}
			mu.Lock()
			for _, r := range reports {
				diags.Add(r)
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return diags, nil
}
