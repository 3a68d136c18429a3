package ui

import (
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// IsAgentMode reports whether output is being consumed by automation
// (ZEALOT_AGENT=1). Agent mode disables styling and markdown rendering so
// the output stays trivially parseable.
func IsAgentMode() bool {
	return os.Getenv("ZEALOT_AGENT") == "1"
}

// ShouldUseColor reports whether styled output is appropriate: an
// interactive terminal, colors not disabled via NO_COLOR, and a color
// profile better than plain ASCII.
func ShouldUseColor() bool {
	if IsAgentMode() {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return false
	}
	return termenv.EnvColorProfile() != termenv.Ascii
}

// TerminalWidth returns the current terminal width, or fallback when the
// size cannot be detected.
func TerminalWidth(fallback int) int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return fallback
}
