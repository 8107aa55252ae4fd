// Package ux provides terminal output styling for the lsp2gxl CLI: a
// small palette of lipgloss styles, and Title/Success/Warning/Error print
// helpers that degrade to plain text when stdout is not a terminal.
package ux

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	ColorPrimary = lipgloss.Color("#5FAFFF")
	ColorSuccess = lipgloss.Color("#5FD787")
	ColorWarning = lipgloss.Color("#FFD75F")
	ColorError   = lipgloss.Color("#FF5F5F")
	ColorMuted   = lipgloss.Color("#6C6C6C")
)

var Styles = struct {
	Title   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
}{
	Title:   lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary),
	Success: lipgloss.NewStyle().Foreground(ColorSuccess),
	Warning: lipgloss.NewStyle().Foreground(ColorWarning),
	Error:   lipgloss.NewStyle().Foreground(ColorError),
	Muted:   lipgloss.NewStyle().Foreground(ColorMuted),
}

// IsTerminal reports whether fd is an interactive terminal (real tty or
// Windows Cygwin pty). Output that pipes into a file or another process
// should not be decorated with color or spinners.
func IsTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// plain disables styling for the lifetime of the process once set; the
// CLI sets this at startup when stdout is not a terminal or --no-color
// was passed.
var plain = !IsTerminal(os.Stdout.Fd())

// SetPlain forces (or releases) plain, unstyled output.
func SetPlain(p bool) { plain = p }

func Title(text string) {
	if plain {
		fmt.Println(text)
		return
	}
	fmt.Println(Styles.Title.Render(text))
}

func Success(text string) {
	if plain {
		fmt.Fprintf(os.Stdout, "OK: %s\n", text)
		return
	}
	fmt.Printf("%s %s\n", Styles.Success.Render("✓"), text)
}

func Warning(text string) {
	if plain {
		fmt.Fprintf(os.Stderr, "WARN: %s\n", text)
		return
	}
	fmt.Fprintf(os.Stderr, "%s %s\n", Styles.Warning.Render("⚠"), text)
}

func Error(text string) {
	if plain {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", text)
		return
	}
	fmt.Fprintf(os.Stderr, "%s %s\n", Styles.Error.Render("✗"), text)
}
