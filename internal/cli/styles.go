// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// styles.go - Command output styles built on the shared palette.

package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/toolverse/internal/tools"
	"github.com/jeranaias/toolverse/internal/ui/styles"
)

func init() {
	lipgloss.SetColorProfile(colorProfile())
}

var (
	TitleStyle     = lipgloss.NewStyle().Bold(true).Foreground(styles.Cyan)
	SectionStyle   = lipgloss.NewStyle().Bold(true).Foreground(styles.TextPrimary)
	LabelStyle     = lipgloss.NewStyle().Foreground(styles.TextSecondary).Width(20)
	ValueStyle     = lipgloss.NewStyle().Foreground(styles.TextPrimary)
	SuccessStyle   = lipgloss.NewStyle().Bold(true).Foreground(styles.Emerald)
	ErrorStyle     = lipgloss.NewStyle().Bold(true).Foreground(styles.Rose)
	WarningStyle   = lipgloss.NewStyle().Foreground(styles.Amber)
	DimStyle       = lipgloss.NewStyle().Foreground(styles.TextMuted)
	SeparatorStyle = lipgloss.NewStyle().Foreground(styles.Overlay)

	addedStyle   = lipgloss.NewStyle().Foreground(styles.Emerald)
	removedStyle = lipgloss.NewStyle().Foreground(styles.Rose)
	hunkStyle    = lipgloss.NewStyle().Foreground(styles.Blue)
)

// okMark and warnMark prefix one-line confirmations and warnings.
func okMark() string   { return SuccessStyle.Render(styles.StatusIndicators.Success) }
func warnMark() string { return WarningStyle.Render(styles.StatusIndicators.Warning) }

// RenderSeparator renders a horizontal rule, 70 columns unless given.
func RenderSeparator(width ...int) string {
	w := 70
	if len(width) > 0 && width[0] > 0 {
		w = width[0]
	}
	return SeparatorStyle.Render(strings.Repeat("=", w))
}

// RenderStatus renders a history status marker.
func RenderStatus(status string) string {
	switch status {
	case tools.StatusOK:
		return okMark()
	case tools.StatusValidation:
		return WarningStyle.Render("[INVALID]")
	case tools.StatusProcessing:
		return ErrorStyle.Render("[FAIL]")
	}
	return DimStyle.Render("[" + strings.ToUpper(status) + "]")
}

// RenderLabel renders a label padded to width, 20 columns unless given.
func RenderLabel(label string, width ...int) string {
	if len(width) > 0 && width[0] > 0 {
		return LabelStyle.Width(width[0]).Render(label)
	}
	return LabelStyle.Render(label)
}

// colorizeDiff colors unified diff output line by line.
func colorizeDiff(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			lines[i] = SectionStyle.Render(line)
		case strings.HasPrefix(line, "@@"):
			lines[i] = hunkStyle.Render(line)
		case strings.HasPrefix(line, "+"):
			lines[i] = addedStyle.Render(line)
		case strings.HasPrefix(line, "-"):
			lines[i] = removedStyle.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}
