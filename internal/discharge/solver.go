package discharge

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Backend names one of the SMT solvers spec.md §6's --solver flag selects
// among. The discharge pass is solver-agnostic at the encoding layer;
// Backend only changes how the child process is launched and how symbols
// are sanitized.
type Backend string

const (
	Z3        Backend = "z3"
	CVC5      Backend = "cvc5"
	Boolector Backend = "boolector"
	Bitwuzla  Backend = "bitwuzla"
)

// Args returns the command-line invocation for launching backend as an
// interactive SMT-LIB 2.6 session over stdio (spec.md §6).
func (b Backend) Args() (path string, args []string) {
	switch b {
	case Z3:
		return "z3", []string{"-in", "-smt2"}
	case CVC5:
		return "cvc5", []string{"--lang", "smt2", "--incremental"}
	case Boolector:
		return "boolector", []string{"--smt2", "-i"}
	case Bitwuzla:
		return "bitwuzla", []string{"--lang=smt2", "-i"}
	default:
		return string(b), nil
	}
}

// SupportsQuotedSymbols reports whether backend accepts |quoted symbol|
// syntax directly, the way Z3 does; other solvers need names sanitized to
// plain SMT-LIB simple symbols instead (spec.md §6: "Z3 supports quoted
// symbols; others need sanitized names").
func (b Backend) SupportsQuotedSymbols() bool { return b == Z3 }

// Symbol renders a solver-safe identifier for name, scoped to backend.
// Z3 gets the original name quoted; every other backend gets a normalized,
// ASCII-safe mangling so a Filament identifier with, say, a combining mark
// or a character outside SMT-LIB's simple-symbol alphabet never reaches
// the solver unescaped.
func (b Backend) Symbol(prefix, name string) string {
	if b.SupportsQuotedSymbols() {
		return "|" + prefix + name + "|"
	}
	return prefix + sanitize(name)
}

// sanitize folds name to NFC, then keeps only the characters SMT-LIB's
// simple-symbol grammar allows (ASCII letters, digits, and a small set of
// punctuation), replacing everything else with '_'.
func sanitize(name string) string {
	folded := norm.NFC.String(name)
	var b strings.Builder
	for _, r := range folded {
		switch {
		case r <= unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
		case strings.ContainsRune("~!@$%^&*_+=<>.?/-", r):
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := b.String()
	if out == "" {
		return "_"
	}
	if unicode.IsDigit(rune(out[0])) {
		out = "_" + out
	}
	return out
}
