// Package term resolves whether ANSI colors should be used and paints
// short strings for the banner and history table. Log lines are colored by
// the zerolog console writer, which reads [Enabled].
package term

import (
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/backmassage/muxwatch/internal/config"
)

// ANSI color codes used outside the logger.
const (
	Red     = "\033[1;91m"
	Green   = "\033[1;92m"
	Yellow  = "\033[1;93m"
	Cyan    = "\033[1;96m"
	Magenta = "\033[1;95m"
	reset   = "\033[0m"
)

var enabled bool

// Configure resolves mode once during startup and returns the result.
func Configure(mode config.ColorMode) bool {
	enabled = resolve(mode)
	return enabled
}

// Enabled reports whether ANSI colors are currently active.
func Enabled() bool { return enabled }

// Paint wraps s in color when colors are enabled.
func Paint(color, s string) string {
	if !enabled || s == "" {
		return s
	}
	return color + s + reset
}

// resolve determines whether colors should be enabled based on the configured
// mode, TTY detection, and the NO_COLOR env var (https://no-color.org).
func resolve(mode config.ColorMode) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default: // ColorAuto
		return IsTerminal(os.Stdout) &&
			os.Getenv("NO_COLOR") == "" &&
			strings.ToLower(os.Getenv("TERM")) != "dumb"
	}
}

// IsTerminal reports whether f is attached to a TTY.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
