// Package diag defines the diagnostic records shared by all compiler phases.
package diag

import (
	"fmt"
	"strings"
)

// Severity classifies a diagnostic.
type Severity uint8

const (
	Info Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	}
	return "unknown"
}

// Phase names the pipeline stage a diagnostic originated from.
type Phase string

const (
	PhaseLexer      Phase = "lexer"
	PhaseParser     Phase = "parser"
	PhaseAnalysis   Phase = "analysis"
	PhaseDetector   Phase = "detector"
	PhaseClassifier Phase = "classifier"
	PhaseIR         Phase = "ir"
	PhaseEmitter    Phase = "emitter"
)

// Diagnostic is a single compiler message. Line and Column are 1-based;
// zero means the diagnostic has no source location.
type Diagnostic struct {
	Severity Severity
	Phase    Phase
	Message  string
	Line     int
	Column   int
}

func (d Diagnostic) String() string {
	var b strings.Builder
	b.WriteString(string(d.Phase))
	if d.Line > 0 {
		fmt.Fprintf(&b, " %d:%d", d.Line, d.Column)
	}
	b.WriteString(": ")
	b.WriteString(d.Severity.String())
	b.WriteString(": ")
	b.WriteString(d.Message)
	return b.String()
}

// Errorf builds an error diagnostic.
func Errorf(phase Phase, line, col int, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: Error, Phase: phase, Line: line, Column: col, Message: fmt.Sprintf(format, args...)}
}

// Warnf builds a warning diagnostic.
func Warnf(phase Phase, line, col int, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: Warning, Phase: phase, Line: line, Column: col, Message: fmt.Sprintf(format, args...)}
}

// Infof builds an info diagnostic.
func Infof(phase Phase, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: Info, Phase: phase, Message: fmt.Sprintf(format, args...)}
}

// List is a collection of diagnostics with severity helpers.
type List []Diagnostic

// HasErrors reports whether any diagnostic is error-level.
func (l List) HasErrors() bool {
	for _, d := range l {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Errors returns only the error-level entries.
func (l List) Errors() List {
	var out List
	for _, d := range l {
		if d.Severity == Error {
			out = append(out, d)
		}
	}
	return out
}

// FirstError returns the first error-level diagnostic, or nil.
func (l List) FirstError() *Diagnostic {
	for i := range l {
		if l[i].Severity == Error {
			return &l[i]
		}
	}
	return nil
}
