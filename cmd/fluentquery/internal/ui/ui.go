// Package ui renders CLI output: status lines, result tables and the
// compiled query report.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/pterm/pterm"
)

var (
	// Colors
	PrimaryColor   = lipgloss.Color("#00D9FF")
	SecondaryColor = lipgloss.Color("#6C757D")

	// Styles
	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)

	SecondaryStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor)

	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
)

// PrintSuccess prints a success message
func PrintSuccess(w io.Writer, format string, args ...any) {
	successColor.Fprintln(w, "✓ "+fmt.Sprintf(format, args...))
}

// PrintError prints an error message
func PrintError(w io.Writer, format string, args ...any) {
	errorColor.Fprintln(w, "✗ "+fmt.Sprintf(format, args...))
}

// PrintWarning prints a warning message
func PrintWarning(w io.Writer, format string, args ...any) {
	warningColor.Fprintln(w, "⚠ "+fmt.Sprintf(format, args...))
}

// PrintInfo prints an info message
func PrintInfo(w io.Writer, format string, args ...any) {
	infoColor.Fprintln(w, "ℹ "+fmt.Sprintf(format, args...))
}

// TerminalWidth returns the terminal width, or 80 when unknown.
func TerminalWidth() int {
	if w := pterm.GetTerminalWidth(); w > 0 {
		return w
	}
	return 80
}

// PrintTable prints a table using pterm
func PrintTable(w io.Writer, headers []string, rows [][]string) error {
	tableData := pterm.TableData{headers}
	tableData = append(tableData, rows...)

	out, err := pterm.DefaultTable.WithHasHeader().WithData(tableData).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, out)
	return err
}

// PrintSection prints a section header
func PrintSection(w io.Writer, title string) {
	section := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(SecondaryColor).
		Render(TitleStyle.Render(title))

	fmt.Fprintln(w, section)
}

// PrintMarkdown renders markdown content
func PrintMarkdown(w io.Writer, content string) error {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("notty"),
		glamour.WithWordWrap(TerminalWidth()),
	)
	if err != nil {
		return err
	}

	out, err := r.Render(content)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, out)
	return err
}

// CodeBlock wraps sql in a fenced markdown block.
func CodeBlock(sql string) string {
	return "```sql\n" + strings.TrimSpace(sql) + "\n```\n"
}
