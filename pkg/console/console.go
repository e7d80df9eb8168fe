// Package console renders validation output for humans. Styling degrades
// to plain text when stdout is not a terminal or NO_COLOR is set.
package console

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/hassops/ha-guard/pkg/report"
)

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	pathStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

func colorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

func styled(s lipgloss.Style, text string) string {
	if !colorEnabled() {
		return text
	}
	return s.Render(text)
}

// FormatErrorMessage renders an error line with the standard prefix.
func FormatErrorMessage(msg string) string {
	return styled(errorStyle, "✗ "+msg)
}

// FormatWarningMessage renders a warning line with the standard prefix.
func FormatWarningMessage(msg string) string {
	return styled(warningStyle, "⚠ "+msg)
}

// FormatSuccessMessage renders a success line with the standard prefix.
func FormatSuccessMessage(msg string) string {
	return styled(successStyle, "✓ "+msg)
}

// FormatInfoMessage renders an informational line.
func FormatInfoMessage(msg string) string {
	return styled(infoStyle, msg)
}

func formatFinding(f report.ValidationError) string {
	var b strings.Builder
	b.WriteString("  ")
	if f.Severity == report.SeverityWarning {
		b.WriteString(styled(warningStyle, "warning"))
	} else {
		b.WriteString(styled(errorStyle, "error"))
	}
	if f.Path != "" {
		b.WriteString(" ")
		b.WriteString(styled(pathStyle, f.Path))
	}
	b.WriteString(": ")
	b.WriteString(f.Message)
	if f.SchemaPath != "" {
		b.WriteString(" ")
		b.WriteString(styled(dimStyle, "("+f.SchemaPath+")"))
	}
	return b.String()
}

// RenderResult renders one validation result under the given heading
// (usually the file name).
func RenderResult(heading string, r *report.Result) string {
	var b strings.Builder
	switch {
	case r.Valid && len(r.Warnings) == 0:
		b.WriteString(FormatSuccessMessage(fmt.Sprintf("%s: valid (%s)", heading, r.SchemaName)))
	case r.Valid:
		b.WriteString(FormatWarningMessage(fmt.Sprintf("%s: valid with %d warning(s) (%s)", heading, len(r.Warnings), r.SchemaName)))
	default:
		b.WriteString(FormatErrorMessage(fmt.Sprintf("%s: invalid, %d error(s), %d warning(s) (%s)",
			heading, len(r.Errors), len(r.Warnings), r.SchemaName)))
	}
	for _, f := range r.Findings() {
		b.WriteString("\n")
		b.WriteString(formatFinding(f))
	}
	return b.String()
}
