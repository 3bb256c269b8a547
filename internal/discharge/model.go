package discharge

import (
	"sort"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/filament-lang/filc/internal/ir"
)

// Model is the counterexample extracted for one failing proposition
// (spec.md §4.7 step 6): a binding for every parameter reachable from the
// proposition. A parameter absent from the map is understood to be 0.
type Model map[ir.ParamIdx]uint64

// Get returns p's bound value, or 0 if the solver's model left it
// unmentioned.
func (m Model) Get(p ir.ParamIdx) uint64 { return m[p] }

// ExtractModel asks prover for the value of every parameter reachable from
// prop, after a Sat verdict on its negation (spec.md §4.7 step 6: "extract
// assignments for the parameters that appear in the failing proposition").
func ExtractModel(comp *ir.Component, enc *Encoder, prover Prover, prop ir.PropIdx) (Model, error) {
	params := comp.PropParams(prop)
	model := make(Model, len(params))
	for _, p := range params {
		raw, err := prover.GetValue(enc.paramSym(comp, p))
		if err != nil {
			return nil, err
		}
		v, ok := parseValue(raw)
		if !ok {
			continue // leave unmentioned, which Get already treats as 0
		}
		model[p] = v
	}
	return model, nil
}

// parseValue decodes a solver get-value term: a plain decimal (Int sort),
// a `#xNN`/`#bNNN` bit-vector literal, or a `(_ bvN W)` indexed literal.
func parseValue(raw string) (uint64, bool) {
	raw = strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(raw, "#x"):
		v, err := strconv.ParseUint(raw[2:], 16, 64)
		return v, err == nil
	case strings.HasPrefix(raw, "#b"):
		v, err := strconv.ParseUint(raw[2:], 2, 64)
		return v, err == nil
	case strings.HasPrefix(raw, "(_ bv"):
		fields := strings.Fields(strings.Trim(raw, "()"))
		if len(fields) < 2 {
			return 0, false
		}
		v, err := strconv.ParseUint(strings.TrimPrefix(fields[1], "bv"), 10, 64)
		return v, err == nil
	default:
		v, err := strconv.ParseUint(raw, 10, 64)
		return v, err == nil
	}
}

// RenderModels formats a sequence of (label, Model) pairs as a table for
// --show-models output (spec.md §7), one row per parameter, one table per
// counterexample.
func RenderModels(comp *ir.Component, models map[string]Model) string {
	var b strings.Builder
	for _, label := range sortedKeys(models) {
		t := table.NewWriter()
		t.AppendHeader(table.Row{"parameter", "value"})
		m := models[label]
		for _, p := range sortedParams(m) {
			t.AppendRow(table.Row{paramDisplayName(comp, p), m[p]})
		}
		b.WriteString(label)
		b.WriteByte('\n')
		b.WriteString(t.Render())
		b.WriteByte('\n')
	}
	return b.String()
}

func paramDisplayName(comp *ir.Component, p ir.ParamIdx) string {
	if param, ok := comp.Params.Get(p); ok && param.Name != "" {
		return param.Name
	}
	return "<unnamed>"
}

func sortedKeys(m map[string]Model) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedParams(m Model) []ir.ParamIdx {
	out := make([]ir.ParamIdx, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
