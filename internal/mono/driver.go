// Package mono implements whole-program monomorphization (spec.md §4.5):
// every live Instance is specialized against its concrete argument values,
// producing a Context in which every Source component is specialized: no
// ForLoop or If survives into the discharge pass, and the only Params and
// Lets left are bundle index parameters and unelaborated scheduling Lets.
package mono

import (
	"fmt"

	"github.com/filament-lang/filc/internal/ast"
	"github.com/filament-lang/filc/internal/ctx"
	"github.com/filament-lang/filc/internal/ir"
)

// Driver holds the whole-run state: the source Context being specialized,
// the output Context being built, and the memoization/cycle tables keyed
// by mono Key.
type Driver struct {
	src *ctx.Context
	out *ctx.Context

	processed  map[string]*published
	inProgress map[string]bool
}

// NewDriver prepares a monomorphization run over src.
func NewDriver(src *ctx.Context) *Driver {
	return &Driver{
		src:        src,
		out:        ctx.New(),
		processed:  map[string]*published{},
		inProgress: map[string]bool{},
	}
}

// ice reports one of the structural failures spec.md §7 classifies as an
// internal-compiler error — an unresolved use-site parameter, a missing
// foreign/callee remap, or a non-constant loop bound — by panicking with a
// dump of the component under construction, rather than returning an
// ordinary error that would surface as a user diagnostic. The one
// recoverable case monomorphization has, a Fact whose proposition mentions
// an out-of-scope parameter, never reaches this: translateFact drops it
// silently instead (spec.md §7: "Proposition-translation failure inside a
// Fact is recoverable — the fact is dropped").
func ice(sig *monoSig, format string, args ...any) {
	panic(fmt.Sprintf("mono: internal error: %s\n\n--- %s (source) ---\n%s\n--- %s (partial output) ---\n%s",
		fmt.Sprintf(format, args...), sig.src.Name, sig.src.String(), sig.src.Name, sig.dst.String()))
}

// Run monomorphizes the entry component against its bound signature
// arguments and returns the fully concrete output Context plus the fresh
// entry handle.
func Run(src *ctx.Context) (*ctx.Context, ir.CompIdx, error) {
	if src.Entry == nil {
		return nil, 0, fmt.Errorf("mono: no entrypoint bound")
	}
	d := NewDriver(src)
	key := Key{Comp: src.Entry.Comp, Args: append([]uint64(nil), src.Entry.Bindings...)}
	fresh, err := d.monomorphize(key)
	if err != nil {
		return nil, 0, err
	}
	d.out.SetEntry(fresh, nil)
	return d.out, fresh, nil
}

// monomorphize specializes the component named by key, memoizing on the
// key's string encoding. A component already being processed higher up the
// call stack (a true instantiation cycle) is reported as an error rather
// than recursing forever.
func (d *Driver) monomorphize(key Key) (ir.CompIdx, error) {
	k := key.string()
	if d.inProgress[k] {
		return 0, fmt.Errorf("mono: instantiation cycle detected at component %d", key.Comp)
	}
	if pub, ok := d.processed[k]; ok {
		return pub.fresh, nil
	}

	src, ok := d.src.Get(key.Comp)
	if !ok {
		return 0, fmt.Errorf("mono: component handle %d is not live", key.Comp)
	}

	if src.Kind != ast.Source {
		pub := d.copyPassthrough(src)
		d.processed[k] = pub
		return pub.fresh, nil
	}

	d.inProgress[k] = true
	defer delete(d.inProgress, k)

	dst := ir.NewComponent(src.Name, ast.Source)
	fresh := d.out.Add(dst)

	sig := newMonoSig(key, src, dst)
	pub := stage1(sig)
	pub.fresh = fresh
	d.processed[k] = pub

	dst.Body = d.stage2(sig, src.Body)

	stage3(sig)
	pub.existVal = sig.existVal

	return fresh, nil
}
