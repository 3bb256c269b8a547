package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/filament-lang/filc/internal/posn"
)

// Note is a secondary span+message attached to a Report, e.g. the
// "secondary span pointing at any same-name-wrong-owner binding found
// elsewhere" spec.md §4.4 asks for on a failed name resolution.
type Note struct {
	Span    posn.Pos
	Message string
}

// Fix is an optional suggested remediation, carried for parity with the
// structured, AI-facing error report shape this taxonomy descends from.
type Fix struct {
	Suggestion string
	Confidence float64
}

// Report is the canonical structured diagnostic. Every pass produces these
// instead of a bare error string.
type Report struct {
	Schema  string
	Kind    Kind
	Code    string
	Phase   string
	Message string
	Primary posn.Pos
	Notes   []Note
	Data    map[string]any
	Fix     *Fix
}

const schemaV1 = "filament.diagnostic/v1"

// New builds a Report with the schema stamped in.
func New(kind Kind, code, phase, message string, primary posn.Pos) *Report {
	return &Report{Schema: schemaV1, Kind: kind, Code: code, Phase: phase, Message: message, Primary: primary}
}

// WithNote appends a secondary span+message and returns the Report for
// chaining.
func (r *Report) WithNote(span posn.Pos, message string) *Report {
	r.Notes = append(r.Notes, Note{Span: span, Message: message})
	return r
}

// WithData attaches structured context (e.g. counterexample bindings).
func (r *Report) WithData(key string, value any) *Report {
	if r.Data == nil {
		r.Data = map[string]any{}
	}
	r.Data[key] = value
	return r
}

// ReportError wraps a Report so it survives errors.As/errors.Is unwrapping
// through ordinary Go error plumbing.
type ReportError struct{ Rep *Report }

func (e *ReportError) Error() string {
	if e.Rep == nil {
		return "unknown error"
	}
	return fmt.Sprintf("%s: %s", e.Rep.Code, e.Rep.Message)
}

// AsReport extracts a Report from an error chain.
func AsReport(err error) (*Report, bool) {
	var re *ReportError
	if errors.As(err, &re) {
		return re.Rep, true
	}
	return nil, false
}

// WrapReport lifts a Report into the error interface.
func WrapReport(r *Report) error {
	if r == nil {
		return nil
	}
	return &ReportError{Rep: r}
}

// ToJSON renders a Report as JSON for tooling consumption.
func (r *Report) ToJSON(compact bool) (string, error) {
	var data []byte
	var err error
	if compact {
		data, err = json.Marshal(r)
	} else {
		data, err = json.MarshalIndent(r, "", "  ")
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Diagnostics is the mutable, batching buffer spec.md §4.4/§7 describes:
// passes append to it without aborting, and a driver converts a non-empty
// buffer into Err(count) at the pass boundary.
type Diagnostics struct {
	table   *posn.Table
	reports []*Report
}

// NewDiagnostics creates an empty buffer resolving spans against table.
func NewDiagnostics(table *posn.Table) *Diagnostics {
	return &Diagnostics{table: table}
}

// Add appends a report. Never aborts the caller's walk.
func (d *Diagnostics) Add(r *Report) { d.reports = append(d.reports, r) }

// Empty reports whether no diagnostic has been recorded.
func (d *Diagnostics) Empty() bool { return len(d.reports) == 0 }

// Len is the number of accumulated diagnostics.
func (d *Diagnostics) Len() int { return len(d.reports) }

// Reports returns the raw, insertion-ordered accumulated diagnostics.
func (d *Diagnostics) Reports() []*Report { return d.reports }

// Sorted returns the diagnostics in the deterministic order spec.md §5
// requires before anything is reported: (kind, message, then position
// directly via the table rather than a hash of the opaque handle).
func (d *Diagnostics) Sorted() []*Report {
	out := make([]*Report, len(d.reports))
	copy(out, d.reports)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.Message != b.Message {
			return a.Message < b.Message
		}
		if d.table == nil {
			return false
		}
		return d.table.Less(a.Primary, b.Primary)
	})
	return out
}

// diagnosticsError is what Err returns: a count-carrying error so a driver
// can map it directly to a process exit code (spec.md §6: "Exit codes: ...
// N > 0 where N is the number of accumulated diagnostics").
type diagnosticsError struct{ n int }

func (e *diagnosticsError) Error() string {
	return fmt.Sprintf("%d diagnostic(s)", e.n)
}

// Count extracts the diagnostic count from an error produced by Err, for
// callers that only have the error and need the exit code.
func Count(err error) (int, bool) {
	var de *diagnosticsError
	if errors.As(err, &de) {
		return de.n, true
	}
	return 0, false
}

// Err converts a non-empty buffer into a non-nil error carrying the count;
// returns nil when the buffer is empty.
func (d *Diagnostics) Err() error {
	if d.Empty() {
		return nil
	}
	return &diagnosticsError{n: d.Len()}
}
