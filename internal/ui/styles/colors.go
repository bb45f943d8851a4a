// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/toolverse/internal/tools"
)

// =============================================================================
// ACCENT COLORS
// =============================================================================

// Purple - Primary accent, selection highlight
var Purple = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}

// Cyan - Tool names, the filter prompt
var Cyan = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}

// Emerald - Success, recently used marker
var Emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}

// Rose - Errors
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// Amber - Warnings, validation failures
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// Blue - Secondary accent
var Blue = lipgloss.AdaptiveColor{Light: "#2563EB", Dark: "#60A5FA"}

// Pink - Secondary accent
var Pink = lipgloss.AdaptiveColor{Light: "#DB2777", Dark: "#F472B6"}

// =============================================================================
// SURFACE AND TEXT
// =============================================================================

// Surface - Main background
var Surface = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1E2E"}

// Overlay - Borders, separators
var Overlay = lipgloss.AdaptiveColor{Light: "#E5E5E5", Dark: "#313244"}

// TextPrimary - Main body text
var TextPrimary = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#CDD6F4"}

// TextSecondary - Labels, descriptions
var TextSecondary = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#A6ADC8"}

// TextMuted - Hints, counters
var TextMuted = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6C7086"}

// TextInverse - Text on colored backgrounds
var TextInverse = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1E2E"}

// =============================================================================
// CATEGORY COLORS
// =============================================================================

var categoryColors = map[tools.Category]lipgloss.AdaptiveColor{
	tools.CategoryFinance: Emerald,
	tools.CategoryText:    Cyan,
	tools.CategoryImage:   Pink,
	tools.CategoryAudio:   Amber,
	tools.CategoryPDF:     Rose,
}

// CategoryColor returns the badge color of a tool category. Unknown
// categories use TextSecondary.
func CategoryColor(c tools.Category) lipgloss.AdaptiveColor {
	if color, ok := categoryColors[c]; ok {
		return color
	}
	return TextSecondary
}

// CategoryBadge renders a category name in its color, padded to width.
func CategoryBadge(c tools.Category, width int) string {
	return lipgloss.NewStyle().
		Foreground(CategoryColor(c)).
		Width(width).
		Render(c.Title())
}

// =============================================================================
// STATUS RENDERING
// =============================================================================

// StatusIndicators are ASCII markers shown beside colored output so
// states stay readable without color.
var StatusIndicators = struct {
	Success string
	Error   string
	Warning string
}{
	Success: "[OK]",
	Error:   "[X]",
	Warning: "[!]",
}
