package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/filament-lang/filc/internal/ast"
	"github.com/filament-lang/filc/internal/build"
	"github.com/filament-lang/filc/internal/cache"
	"github.com/filament-lang/filc/internal/config"
	"github.com/filament-lang/filc/internal/ctx"
	"github.com/filament-lang/filc/internal/discharge"
	"github.com/filament-lang/filc/internal/errors"
	"github.com/filament-lang/filc/internal/ir"
	"github.com/filament-lang/filc/internal/logging"
	"github.com/filament-lang/filc/internal/mono"
	"github.com/filament-lang/filc/internal/posn"
	"github.com/filament-lang/filc/internal/resolve"
)

// run drives the three passes end to end: build.Lower, mono.Run, and
// discharge.RunAll, rendering whatever diagnostics accumulate and mapping
// them to the process exit code spec.md §6 describes. stdout is where
// --dump-after prints; stderr is where diagnostics and logs go.
func run(stdout, stderr io.Writer, logger *slog.Logger, opts *cliOptions) error {
	_ = resolve.Roots(opts.libraryRoots) // wired into a real parser frontend, not this seam

	proj, err := loadProjectConfig(opts.project)
	if err != nil {
		return err
	}
	applyProjectDefaults(opts, proj)

	table := posn.New()
	text, err := os.ReadFile(opts.source)
	if err != nil {
		rep := errors.New(errors.InvalidFile, errors.IO001, "build", err.Error(), posn.NoPos)
		renderAndExit(stderr, table, nil, opts, []*errors.Report{rep})
		return &exitError{code: 1}
	}

	prog, err := unimplementedParser(table, opts.source, string(text))
	if err != nil {
		return err
	}
	table.Freeze()

	c := ctx.New()
	buildDiags := buildProgram(c, table, prog)
	if opts.dumpAfter != "" {
		dumpComponent(stdout, c, opts.dumpAfter)
	}
	if err := exitOnDiagnostics(stderr, table, buildDiags, opts); err != nil {
		return err
	}
	if opts.checkOnly {
		return nil
	}

	entry, err := resolveEntry(c, opts)
	if err != nil {
		return err
	}

	outCtx, freshEntry, monoDiags, err := monomorphizeEntry(c, entry, opts, logger)
	if err != nil {
		return err
	}
	if opts.dumpAfter != "" {
		dumpComponent(stdout, outCtx, opts.dumpAfter)
	}
	if err := exitOnDiagnostics(stderr, table, monoDiags, opts); err != nil {
		return err
	}

	if opts.unsafeSkipDischarge {
		return nil
	}

	dischargeDiags, err := runDischarge(outCtx, freshEntry, table, opts)
	if err != nil {
		return fmt.Errorf("filc: discharge: %w", err)
	}
	return exitOnDiagnostics(stderr, table, dischargeDiags, opts)
}

func loadProjectConfig(path string) (*config.Project, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &config.Project{}, nil
	}
	return config.LoadProject(path)
}

// applyProjectDefaults fills in anything the CLI left at its zero/default
// value from the project file; a flag set to a non-default value always
// wins over filament.toml, while a flag set explicitly to its default is
// indistinguishable from an unset one and is overridden.
func applyProjectDefaults(opts *cliOptions, proj *config.Project) {
	if len(opts.libraryRoots) == 0 {
		opts.libraryRoots = proj.LibraryRoots
	}
	if proj.Solver != "" && opts.solver == "z3" {
		opts.solver = proj.Solver
	}
	if opts.solverBV == 0 && proj.SolverBV != 0 {
		opts.solverBV = proj.SolverBV
	}
	if opts.backend == "" {
		opts.backend = proj.Backend
	}
}

func resolveEntry(c *ctx.Context, opts *cliOptions) (ir.CompIdx, error) {
	if opts.toplevel != "" {
		id, ok := c.ByName(opts.toplevel)
		if !ok {
			return 0, fmt.Errorf("filc: no component named %q", opts.toplevel)
		}
		return id, bindEntry(c, id, opts)
	}

	var found ir.CompIdx
	count := 0
	c.Comps.Each(func(i ir.CompIdx, comp *ir.Component) {
		if comp.Kind == ast.Source {
			found, count = i, count+1
		}
	})
	if count != 1 {
		return 0, fmt.Errorf("filc: --toplevel is required unless the file declares exactly one Source component")
	}
	return found, bindEntry(c, found, opts)
}

func bindEntry(c *ctx.Context, id ir.CompIdx, opts *cliOptions) error {
	var bindings []uint64
	if opts.entryBindings != "" {
		b, err := config.LoadBindings(opts.entryBindings)
		if err != nil {
			return err
		}
		bindings = b
	}
	c.SetEntry(id, bindings)
	return nil
}

func buildProgram(c *ctx.Context, table *posn.Table, prog *ast.Program) *errors.Diagnostics {
	return build.Lower(c, table, prog)
}

func monoRun(c *ctx.Context) (*ctx.Context, ir.CompIdx, error) {
	return mono.Run(c)
}

func monomorphizeEntry(c *ctx.Context, entry ir.CompIdx, opts *cliOptions, logger *slog.Logger) (*ctx.Context, ir.CompIdx, *errors.Diagnostics, error) {
	monoLog := logging.Phase(logger, "mono")

	entryComp, ok := c.Get(entry)
	if !ok {
		return nil, 0, nil, fmt.Errorf("filc: entrypoint handle is not live")
	}
	key := cache.Key(entryComp.Name, c.Entry.Bindings)

	var cc *cache.Cache
	if !opts.noCache {
		var err error
		cc, err = cache.Open(opts.cachePath)
		if err != nil {
			return nil, 0, nil, err
		}
		if cs, hit := cc.Get(key); hit {
			monoLog.Debug("cache hit", "key", key)
			out, fresh := cache.RebuildContext(cs)
			return out, fresh, errors.NewDiagnostics(nil), nil
		}
	}

	out, fresh, err := monoRun(c)
	if err != nil {
		return nil, 0, nil, err
	}

	if cc != nil {
		cc.Put(key, cache.SnapshotContext(out, fresh))
		if err := cc.Flush(); err != nil {
			return nil, 0, nil, err
		}
	}
	return out, fresh, errors.NewDiagnostics(nil), nil
}

func runDischarge(c *ctx.Context, entry ir.CompIdx, table *posn.Table, opts *cliOptions) (*errors.Diagnostics, error) {
	dischargeOpts := discharge.Options{
		Backend:       discharge.Backend(opts.solver),
		BitVecWidth:   opts.solverBV,
		ShowModels:    opts.showModels,
		ForceSeparate: opts.dischargeSeparate,
	}
	if opts.dumpSolverLog != "" {
		f, err := os.Create(opts.dumpSolverLog)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		dischargeOpts.DumpSolverLog = f
	}

	newProver := func() (discharge.Prover, error) {
		return discharge.NewSession(dischargeOpts.Backend, dischargeOpts.DumpSolverLog)
	}
	return discharge.RunAll(c, entry, table, newProver, dischargeOpts)
}

func dumpComponent(out io.Writer, c *ctx.Context, name string) {
	if s := c.Dump(name); s != "" {
		fmt.Fprintln(out, s)
	}
}

// exitOnDiagnostics renders and converts a non-empty Diagnostics buffer
// into the process-ending error spec.md §6 asks for; a nil or empty buffer
// is a no-op.
func exitOnDiagnostics(stderr io.Writer, table *posn.Table, diags *errors.Diagnostics, opts *cliOptions) error {
	if diags == nil || diags.Empty() {
		return nil
	}
	renderer := errors.NewRenderer(table, readSourceFile, stderr, opts.showModels)
	for _, rep := range diags.Sorted() {
		renderer.Render(rep)
	}
	n, _ := errors.Count(diags.Err())
	return &exitError{code: n}
}

func renderAndExit(stderr io.Writer, table *posn.Table, _ *errors.Diagnostics, opts *cliOptions, reports []*errors.Report) {
	renderer := errors.NewRenderer(table, readSourceFile, stderr, opts.showModels)
	for _, r := range reports {
		renderer.Render(r)
	}
}

func readSourceFile(file string) (string, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
