// Package errors implements Filament's structured diagnostics: a single
// Report type shared by every pass, a batching Diagnostics buffer so one
// bad name does not abort a whole AST→IR walk, and a color-when-TTY
// renderer for the CLI. The taxonomy mirrors the phase/code split ailang's
// internal/errors uses (PAR/TC/ELB/LNK/RT prefixes) but the outer Kind is
// the small, closed set spec.md §7 names "not source-type names".
package errors

// Kind is the closed set of error kinds from spec.md §7. Phase and Code
// narrow a Kind down to where and exactly what went wrong; Kind is what a
// caller should switch on.
type Kind string

const (
	InvalidFile    Kind = "InvalidFile"
	ParseMalformed Kind = "ParseMalformed"
	UndefinedName  Kind = "UndefinedName"
	Malformed      Kind = "Malformed"
	Misc           Kind = "Misc"
)

// Phase-specific codes. AST### comes from internal/build, MONO### from the
// recoverable corner of internal/mono (a Fact whose proposition mentions an
// out-of-scope parameter), DIS### from internal/discharge.
const (
	AST001 = "AST001" // undefined name
	AST002 = "AST002" // duplicate binder in one scope
	AST003 = "AST003" // malformed component (bad arity, external with body, ...)
	AST004 = "AST004" // port reference escapes its invocation's scope

	MONO001 = "MONO001" // Fact dropped: proposition mentions an out-of-scope parameter

	DIS001 = "DIS001" // unprovable constraint
	DIS002 = "DIS002" // solver returned unknown
	DIS003 = "DIS003" // bit-vector overflow guard violated

	IO001 = "IO001" // input file could not be read
)

// UndefinedNameKind further classifies an UndefinedName report (spec.md
// §4.4: "kind" in UndefinedName{kind, name}).
type UndefinedNameKind string

const (
	NameParam    UndefinedNameKind = "param"
	NameEvent    UndefinedNameKind = "event"
	NamePort     UndefinedNameKind = "port"
	NameInstance UndefinedNameKind = "instance"
	NameInvoke   UndefinedNameKind = "invoke"
	NameComp     UndefinedNameKind = "component"
)
