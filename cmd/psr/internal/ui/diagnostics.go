// Package ui renders compiler output for the terminal and hosts the
// interactive project wizard.
package ui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/psr-lang/psr/pkg/psr/diag"
)

var (
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	infoStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	fileStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	posStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// PrintDiagnostics writes one line per diagnostic to stderr.
func PrintDiagnostics(file string, diags diag.List) {
	for _, d := range diags {
		fmt.Fprintln(os.Stderr, renderDiagnostic(file, d))
	}
}

func renderDiagnostic(file string, d diag.Diagnostic) string {
	var label string
	switch d.Severity {
	case diag.Error:
		label = errStyle.Render("error")
	case diag.Warning:
		label = warnStyle.Render("warning")
	default:
		label = infoStyle.Render("info")
	}
	loc := fileStyle.Render(file)
	if d.Line > 0 {
		loc += posStyle.Render(fmt.Sprintf(":%d:%d", d.Line, d.Column))
	}
	return fmt.Sprintf("%s %s [%s] %s", loc, label, d.Phase, d.Message)
}
