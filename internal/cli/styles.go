package cli

import (
	"io"
	"os"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/exp/charmtone"
	"golang.org/x/term"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(charmtone.Charple)
	pathStyle    = lipgloss.NewStyle().Foreground(charmtone.Malibu)
	destStyle    = lipgloss.NewStyle().Foreground(charmtone.Guac)
	dimStyle     = lipgloss.NewStyle().Foreground(charmtone.Squid)
	errStyle     = lipgloss.NewStyle().Foreground(charmtone.Cherry)
	matchStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	labelStyle   = lipgloss.NewStyle().Width(12)
	indentStyle  = lipgloss.NewStyle().MarginLeft(2)
	counterStyle = lipgloss.NewStyle().Bold(true)
)

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return term.IsTerminal(int(f.Fd())) //nolint:gosec // G115: fd fits in int.
}

// printLine writes styled output to w, downsampling colors for w.
func printLine(w io.Writer, v ...any) {
	mustN(lipgloss.Fprintln(w, v...))
}
