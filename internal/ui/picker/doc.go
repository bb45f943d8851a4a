// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package picker is the full-screen tool chooser shown by "toolverse" with no
arguments.

It lists the registry's tools with a fuzzy search box and category tabs.
Recently used tools, taken from run history, are listed first and win ties
in searches.

# Keys

	type       filter by name, alias or description
	Up/Down    move the selection (also Ctrl+P / Ctrl+N)
	Tab        next category (Shift+Tab for previous)
	Enter      choose the highlighted tool
	Esc        quit without choosing

# Usage

	tool, err := picker.Run(ctx, registry.All(), recent)
	if errors.Is(err, picker.ErrCancelled) {
		return nil
	}
*/
package picker
