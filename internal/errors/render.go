package errors

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	runewidth "github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/filament-lang/filc/internal/posn"
)

// SourceLoader returns the full text of a source file; the renderer uses it
// only to excerpt the primary/secondary lines. The parser and its file
// resolution are out of scope, so this is the seam a real driver plugs a
// file reader into.
type SourceLoader func(file string) (string, error)

// Renderer prints Reports the way spec.md §7 describes: color-when-TTY, a
// primary label excerpt, every note, and (when requested and the kind is a
// discharge failure) a free-form counterexample line.
type Renderer struct {
	Table       *posn.Table
	Load        SourceLoader
	ShowModels  bool
	Out         io.Writer
	forceColor  *bool // nil = autodetect
}

// NewRenderer builds a renderer that autodetects color support from Out.
func NewRenderer(table *posn.Table, load SourceLoader, out io.Writer, showModels bool) *Renderer {
	return &Renderer{Table: table, Load: load, ShowModels: showModels, Out: out}
}

func (r *Renderer) useColor() bool {
	if r.forceColor != nil {
		return *r.forceColor
	}
	f, ok := r.Out.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// SetColor overrides autodetection; the tests use it to force plain output.
func (r *Renderer) SetColor(enabled bool) { r.forceColor = &enabled }

// Render writes one formatted diagnostic.
func (r *Renderer) Render(rep *Report) {
	bold := r.paint(color.Bold)
	red := r.paint(color.FgRed, color.Bold)
	cyan := r.paint(color.FgCyan)

	fmt.Fprintf(r.Out, "%s %s\n", red(string(rep.Kind)+"["+rep.Code+"]"), bold(rep.Message))
	r.renderSpan(rep.Primary, "")

	for _, n := range rep.Notes {
		fmt.Fprintf(r.Out, "%s %s\n", cyan("note:"), n.Message)
		r.renderSpan(n.Span, "  ")
	}

	if r.ShowModels && isDischargeFailure(rep) {
		fmt.Fprintf(r.Out, "%s %s\n", bold("Counterexample:"), formatModel(rep.Data))
	}
}

func isDischargeFailure(rep *Report) bool {
	return rep.Phase == "discharge"
}

// formatModel renders the "param -> value" assignments extracted for a
// failing proposition; unmentioned parameters are 0 per spec.md §4.7 step 6.
func formatModel(data map[string]any) string {
	model, ok := data["model"].(map[string]uint64)
	if !ok || len(model) == 0 {
		return "{}"
	}
	var b strings.Builder
	first := true
	for k, v := range model {
		if !first {
			b.WriteString(", ")
		}
		first = false
		fmt.Fprintf(&b, "%s = %d", k, v)
	}
	return b.String()
}

func (r *Renderer) renderSpan(p posn.Pos, indent string) {
	if r.Table == nil || p == posn.NoPos {
		return
	}
	span := r.Table.Get(p)
	fmt.Fprintf(r.Out, "%s  --> %s\n", indent, span)
	if r.Load == nil {
		return
	}
	text, err := r.Load(span.File)
	if err != nil {
		return
	}
	line, col := lineAt(text, span.Start)
	fmt.Fprintf(r.Out, "%s%s\n", indent, line)
	width := runewidth.StringWidth(line[:min(col, len(line))])
	fmt.Fprintf(r.Out, "%s%s^\n", indent, strings.Repeat(" ", width))
}

func lineAt(text string, offset int) (string, int) {
	if offset > len(text) {
		offset = len(text)
	}
	start := strings.LastIndexByte(text[:offset], '\n') + 1
	end := strings.IndexByte(text[offset:], '\n')
	if end < 0 {
		end = len(text)
	} else {
		end += offset
	}
	return text[start:end], offset - start
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func (r *Renderer) paint(attrs ...color.Attribute) func(string) string {
	if !r.useColor() {
		return func(s string) string { return s }
	}
	sprint := color.New(attrs...).SprintFunc()
	return func(s string) string { return sprint(s) }
}
