// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// pick.go - Choose a tool full-screen, then fill in its form.
//
// Command: pick (default when no command is given)
// Aliases: tui
package cli

import (
	"context"
	"errors"

	"github.com/jeranaias/toolverse/internal/history"
	"github.com/jeranaias/toolverse/internal/ui/picker"
)

// recentLimit caps the recently used tools shown first in the picker.
const recentLimit = 8

// HandlePick handles "pick" and a bare "toolverse".
func (a *App) HandlePick(ctx context.Context, args Args) error {
	if !isTerminal(a.In) || !IsStdoutTTY() {
		return &TTYRequiredError{Operation: "pick a tool"}
	}

	tool, err := picker.Run(ctx, a.Registry.All(), a.recentTools(ctx))
	if errors.Is(err, picker.ErrCancelled) {
		return nil
	}
	if err != nil {
		return err
	}

	pr := a.prompter()
	defer pr.Close()
	return a.RunForm(ctx, tool, pr, args.Parser.Flag("output"))
}

// recentTools returns distinct tool names from history, most recent
// first. Without history it returns nil.
func (a *App) recentTools(ctx context.Context) []string {
	if a.History == nil {
		return nil
	}
	entries, err := a.History.List(ctx, history.Filter{Limit: 100})
	if err != nil {
		a.Logger.Debug().Err(err).Msg("recent tools unavailable")
		return nil
	}
	seen := make(map[string]bool)
	var names []string
	for _, e := range entries {
		if seen[e.Tool] {
			continue
		}
		seen[e.Tool] = true
		names = append(names, e.Tool)
		if len(names) == recentLimit {
			break
		}
	}
	return names
}
