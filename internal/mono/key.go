// Package mono implements whole-program monomorphization (spec.md §4.5):
// specializing a parametric Context into one that contains only concrete
// components, with loops unrolled, conditionals pruned, and existential
// parameters bound to constants.
package mono

import (
	"fmt"
	"strings"

	"github.com/filament-lang/filc/internal/ir"
)

// Key identifies one monomorphized instantiation: the source component
// together with the concrete values bound to its signature parameters
// (spec.md §4.5). External components are always keyed with an empty
// Args vector — they retain their parameters rather than being
// specialized.
type Key struct {
	Comp ir.CompIdx
	Args []uint64
}

func (k Key) string() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d(", k.Comp)
	for i, a := range k.Args {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d", a)
	}
	b.WriteByte(')')
	return b.String()
}
