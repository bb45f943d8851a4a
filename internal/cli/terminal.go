// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// terminal.go - Terminal detection for toolverse commands.
//
// Colors are off when stdout is not a terminal, when NO_COLOR is set or
// when general.no_color is true. FORCE_COLOR turns them back on. Text tools
// read stdin only when it is not a terminal.

package cli

import (
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// isTerminal reports whether r is an *os.File attached to a terminal.
// Buffers and pipes are never terminals.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// IsStdoutTTY returns true if stdout is a terminal.
func IsStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

const (
	// defaultWidth is used when stdout has no size, e.g. when piped
	defaultWidth = 80
	// minWidth keeps rendered markdown tables readable
	minWidth = 40
)

// terminalWidth returns the width available for rendered output.
func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	switch {
	case err != nil || width <= 0:
		return defaultWidth
	case width < minWidth:
		return minWidth
	}
	return width
}

// =============================================================================
// COLOR OUTPUT CONTROL
// =============================================================================

var (
	colorMu       sync.Mutex
	colorDecided  bool
	colorsEnabled bool
)

// ColorsEnabled returns true if styled output should be used.
// See https://no-color.org/ for NO_COLOR.
func ColorsEnabled() bool {
	colorMu.Lock()
	defer colorMu.Unlock()
	if !colorDecided {
		colorsEnabled = detectColors()
		colorDecided = true
	}
	return colorsEnabled
}

func detectColors() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}
	return IsStdoutTTY()
}

// ForceColorsEnabled overrides detection and updates the lipgloss profile
// so every style in the package follows.
func ForceColorsEnabled(enabled bool) {
	colorMu.Lock()
	colorsEnabled, colorDecided = enabled, true
	colorMu.Unlock()
	lipgloss.SetColorProfile(colorProfile())
}

// colorProfile returns the termenv profile matching ColorsEnabled.
func colorProfile() termenv.Profile {
	if !ColorsEnabled() {
		return termenv.Ascii
	}
	return termenv.ColorProfile()
}

// TTYRequiredError is returned when an operation needs a terminal.
type TTYRequiredError struct {
	Operation string
}

func (e *TTYRequiredError) Error() string {
	return "stdin and stdout must be a terminal to " + e.Operation + "; use 'toolverse run' instead"
}
