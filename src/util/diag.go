// diag.go provides the DiagnosticEngine: the single shared error sink that
// every pipeline stage appends to. Grounded on perror.go's goroutine and
// channel backed error buffer, but simplified to a plain mutex-guarded
// slice: the pipeline is specified as strictly single-threaded (no
// suspension points), so the channel/goroutine indirection perror.go used
// to let parallel worker threads report errors has no job to do here.

package util

import (
	"fmt"
	"sort"
	"sync"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Severity differentiates a fatal problem from an advisory one.
type Severity int

// Kind classifies a Diagnostic by the taxonomy of spec.md §7.
type Kind int

// Diagnostic is a single reported problem, anchored at a Span.
type Diagnostic struct {
	Kind     Kind
	Severity Severity
	Span     Span
	Message  string
}

// Engine is the shared, append-only diagnostic sink passed by reference to
// every stage. Stages never read it back to make decisions; they only
// append, and the pipeline driver checks HadErrors between stages.
type Engine struct {
	mu    sync.Mutex
	diags []Diagnostic
}

// ---------------------
// ----- Constants -----
// ---------------------

const (
	SeverityWarning Severity = iota
	SeverityError
)

const (
	LexError Kind = iota
	ParseError
	NameError
	TypeError
	FlowError
	InternalError
)

var kindNames = [...]string{
	"LexError",
	"ParseError",
	"NameError",
	"TypeError",
	"FlowError",
	"InternalError",
}

// ---------------------
// ----- functions -----
// ---------------------

// NewEngine returns a fresh, empty DiagnosticEngine.
func NewEngine() *Engine {
	return &Engine{diags: make([]Diagnostic, 0, 8)}
}

// Report appends a Diagnostic to the engine. Safe to call from any stage;
// stages never synchronize on this call beyond the engine's own mutex.
func (e *Engine) Report(kind Kind, sev Severity, span Span, format string, args ...interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.diags = append(e.diags, Diagnostic{
		Kind:     kind,
		Severity: sev,
		Span:     span,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Error is a convenience wrapper for Report with SeverityError.
func (e *Engine) Error(kind Kind, span Span, format string, args ...interface{}) {
	e.Report(kind, SeverityError, span, format, args...)
}

// Warning is a convenience wrapper for Report with SeverityWarning.
func (e *Engine) Warning(kind Kind, span Span, format string, args ...interface{}) {
	e.Report(kind, SeverityWarning, span, format, args...)
}

// HadErrors reports whether any SeverityError diagnostic has been reported
// so far. The pipeline driver checks this between stages.
func (e *Engine) HadErrors() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, d := range e.diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Diagnostics returns a stable-ordered copy of every diagnostic reported so
// far, sorted by span offset (ties broken by report order), so a caller
// that printed in the traversal order still gets sensible ordering when
// several diagnostics share one synchronization window.
func (e *Engine) Diagnostics() []Diagnostic {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Diagnostic, len(e.diags))
	copy(out, e.diags)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Span.Offset < out[j].Span.Offset
	})
	return out
}

// Len returns the number of diagnostics reported so far.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.diags)
}

// String returns a print-friendly name for Kind.
func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(kindNames) {
		return "UnknownError"
	}
	return kindNames[k]
}

// String returns a print-friendly representation of the Diagnostic,
// suitable for CLI output. Pretty-printing format itself is out of scope
// per spec.md §1; this is a reasonable default, not a contract.
func (d Diagnostic) String() string {
	sevStr := "error"
	if d.Severity == SeverityWarning {
		sevStr = "warning"
	}
	return fmt.Sprintf("%s: %s: %s (at %s)", sevStr, d.Kind, d.Message, d.Span)
}
