// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles holds the color palette shared by the interactive tool
picker and command output.

All colors are Lip Gloss AdaptiveColor values, so light and dark terminals
each get a readable variant.

# Colors

  - Purple - selection highlight
  - Cyan - tool names and the filter prompt
  - Emerald - success and recently used tools
  - Amber - warnings
  - Rose - errors

Each tool category has its own color, used for the category badge:

	badge := styles.CategoryBadge(tools.CategoryFinance, 8)

# Status

StatusIndicators are the ASCII markers printed beside colored states, so
output piped to a file or read with NO_COLOR keeps its meaning.
*/
package styles
