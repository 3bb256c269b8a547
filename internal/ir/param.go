package ir

// ParamOwnerKind discriminates Param's owner variants (spec.md §3).
type ParamOwnerKind int

const (
	OwnerSig ParamOwnerKind = iota
	OwnerLoop
	OwnerLet
	OwnerBundle
	OwnerInstance
	OwnerExists
)

// ParamOwner tags where a parameter was introduced. Only the fields
// relevant to Kind are meaningful.
type ParamOwner struct {
	Kind ParamOwnerKind

	LetBind    ExprIdx // OwnerLet; ExprZero used as "no binding" sentinel via HasLetBind
	HasLetBind bool

	BundlePort PortIdx // OwnerBundle

	InstanceInst InstIdx            // OwnerInstance
	InstanceBase Foreign[ParamTag]  // OwnerInstance: the existential's home param in the callee

	// ExistsOpaque marks a parameter whose concrete value must never be
	// substituted into a caller's expressions (see SPEC_FULL.md Supplemented
	// Feature 1). Set directly on OwnerExists params from the source
	// `some ... opaque` declaration, and copied onto the OwnerInstance proxy
	// Param a call site allocates for that existential so the flag survives
	// across the Foreign<Param> boundary without a cross-component lookup.
	ExistsOpaque bool
}

// Param is a scalar parameter with an owner tag (spec.md §3). Name is
// carried for diagnostics and --dump-after output; it has no semantic
// weight (two Params are never deduplicated by name — Param lives in an
// Indexed store, not an Interned one).
type Param struct {
	Owner ParamOwner
	Name  string
	Info  InfoIdx
}

// AddParam allocates a fresh parameter with the given owner.
func (c *Component) AddParam(owner ParamOwner, name string, info InfoIdx) ParamIdx {
	return c.Params.Add(Param{Owner: owner, Name: name, Info: info})
}
