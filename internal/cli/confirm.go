// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// confirm.go - Confirmation for destructive commands.
//
// One rule for every destructive action:
//   1. With --confirm (or --yes, -y), proceed without prompting
//   2. In json/yaml mode, require --confirm
//   3. When stdin is not a terminal, require --confirm
//   4. Otherwise ask, defaulting to no
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
)

// ErrCancelled is returned when the user declines a confirmation prompt.
var ErrCancelled = errors.New("cancelled")

// ConfirmationOptions describes one confirmation request.
type ConfirmationOptions struct {
	// ConfirmFlag is set when --confirm, --yes or -y was passed
	ConfirmFlag bool
	// Details are shown as label: value lines before the prompt
	Details map[string]string
}

// confirmFlag reports whether p carries any of the confirmation flags.
func confirmFlag(p *ArgParser) bool {
	return p.BoolFlag("confirm") || p.BoolFlag("yes") || p.BoolFlag("y")
}

// requireConfirmation returns nil when action may proceed, ErrCancelled
// when the user declined and a ValidationError when no prompt is possible.
func (a *App) requireConfirmation(action, command string, opts ConfirmationOptions) error {
	if opts.ConfirmFlag {
		return nil
	}
	if a.Format != FormatText || !isTerminal(a.In) {
		return &ValidationError{
			Field:   "confirm",
			Reason:  action + " needs confirmation; pass --confirm",
			Example: command + " --confirm",
		}
	}

	fmt.Fprintln(a.Err)
	fmt.Fprintf(a.Err, "%s This will %s.\n", warnMark(), action)
	for label, value := range opts.Details {
		fmt.Fprintf(a.Err, "  %s %s\n", RenderLabel(label+":"), value)
	}
	if !a.promptYesNo("Continue?") {
		fmt.Fprintln(a.Err, DimStyle.Render("Cancelled."))
		return ErrCancelled
	}
	return nil
}

// promptYesNo asks question on a.Err and reads the answer from a.In.
// Anything but y or yes is no.
func (a *App) promptYesNo(question string) bool {
	fmt.Fprintf(a.Err, "%s [y/N]: ", question)
	input, err := bufio.NewReader(a.In).ReadString('\n')
	if err != nil && input == "" {
		return false
	}
	response := strings.ToLower(strings.TrimSpace(input))
	return response == "y" || response == "yes"
}
