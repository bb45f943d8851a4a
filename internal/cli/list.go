// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// list.go - The tool catalog.
//
// Command: list [category|tool]
// Aliases: ls, tools
//
// Examples:
//   toolverse list                 Every tool, grouped by category
//   toolverse list image           Image tools only
//   toolverse list mortgage        Parameters of one tool
//   toolverse list --json          Machine-readable catalog
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/toolverse/internal/tools"
)

// ToolSummary is one catalog row in json/yaml output.
type ToolSummary struct {
	Name        string   `json:"name" yaml:"name"`
	Aliases     []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Category    string   `json:"category" yaml:"category"`
	Description string   `json:"description" yaml:"description"`
}

// ParamSummary describes one parameter in json/yaml output.
type ParamSummary struct {
	Name        string      `json:"name" yaml:"name"`
	Type        string      `json:"type" yaml:"type"`
	Required    bool        `json:"required" yaml:"required"`
	Description string      `json:"description" yaml:"description"`
	Default     interface{} `json:"default,omitempty" yaml:"default,omitempty"`
	Enum        []string    `json:"enum,omitempty" yaml:"enum,omitempty"`
	Min         *float64    `json:"min,omitempty" yaml:"min,omitempty"`
	Max         *float64    `json:"max,omitempty" yaml:"max,omitempty"`
	Multiple    bool        `json:"multiple,omitempty" yaml:"multiple,omitempty"`
}

// ToolDetail is the json/yaml output of "list <tool>".
type ToolDetail struct {
	ToolSummary `yaml:",inline"`
	Usage       string         `json:"usage,omitempty" yaml:"usage,omitempty"`
	Parameters  []ParamSummary `json:"parameters" yaml:"parameters"`
}

func summarize(t *tools.Tool) ToolSummary {
	return ToolSummary{Name: t.Name, Aliases: t.Aliases, Category: string(t.Category), Description: t.Description}
}

func detail(t *tools.Tool) ToolDetail {
	d := ToolDetail{ToolSummary: summarize(t), Usage: t.Usage}
	for _, p := range t.Schema.Parameters {
		d.Parameters = append(d.Parameters, ParamSummary{
			Name:        p.Name,
			Type:        p.Type,
			Required:    p.Required,
			Description: p.Description,
			Default:     p.Default,
			Enum:        p.Enum,
			Min:         p.Min,
			Max:         p.Max,
			Multiple:    p.Multiple,
		})
	}
	return d
}

// parseCategory matches a category name, case-insensitively.
func parseCategory(s string) (tools.Category, bool) {
	for _, c := range tools.Categories {
		if strings.EqualFold(s, string(c)) {
			return c, true
		}
	}
	return "", false
}

// HandleList handles the "list" command.
func (a *App) HandleList(args Args) error {
	arg := args.Subcommand
	if arg == "" {
		return a.listTools(a.Registry.All())
	}
	if c, ok := parseCategory(arg); ok {
		return a.listTools(a.Registry.ByCategory(c))
	}
	tool, err := a.lookupTool(arg)
	if err != nil {
		return err
	}
	d := detail(tool)
	return writeData(a.Out, a.Format, "list", d, func(w io.Writer) error {
		return renderMarkdown(w, toolMarkdown(tool))
	})
}

func (a *App) listTools(list []*tools.Tool) error {
	rows := make([]ToolSummary, len(list))
	for i, t := range list {
		rows[i] = summarize(t)
	}
	return writeData(a.Out, a.Format, "list", rows, func(w io.Writer) error {
		return renderMarkdown(w, catalogMarkdown(list))
	})
}

// =============================================================================
// MARKDOWN
// =============================================================================

// catalogMarkdown renders tools as one table per category.
func catalogMarkdown(list []*tools.Tool) string {
	var b strings.Builder
	var current tools.Category = "-"
	for _, t := range list {
		if t.Category != current {
			current = t.Category
			fmt.Fprintf(&b, "\n## %s\n\n| Tool | Description |\n| --- | --- |\n", current.Title())
		}
		name := "`" + t.Name + "`"
		if len(t.Aliases) > 0 {
			name += " (" + strings.Join(t.Aliases, ", ") + ")"
		}
		fmt.Fprintf(&b, "| %s | %s |\n", name, escapeCell(t.Description))
	}
	b.WriteString("\nRun `toolverse list <tool>` for parameters.\n")
	return b.String()
}

// toolMarkdown renders one tool's usage and parameter table.
func toolMarkdown(t *tools.Tool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n%s\n\n", t.Name, t.Description)
	if t.Usage != "" {
		fmt.Fprintf(&b, "%s\n\n", t.Usage)
	}
	if len(t.Aliases) > 0 {
		fmt.Fprintf(&b, "Aliases: %s\n\n", strings.Join(t.Aliases, ", "))
	}
	if len(t.Schema.Parameters) == 0 {
		return b.String()
	}

	b.WriteString("| Flag | Type | Required | Description |\n| --- | --- | --- | --- |\n")
	for _, p := range t.Schema.Parameters {
		desc := p.Description
		if len(p.Enum) > 0 {
			desc += " One of: " + strings.Join(p.Enum, ", ") + "."
		}
		if p.Default != nil {
			desc += fmt.Sprintf(" Default: %v.", p.Default)
		}
		typ := p.Type
		if p.Multiple {
			typ += " (repeatable)"
		}
		req := ""
		if p.Required {
			req = "yes"
		}
		fmt.Fprintf(&b, "| `--%s` | %s | %s | %s |\n", p.Name, typ, req, escapeCell(desc))
	}
	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "|", "\\|"), "\n", " ")
}

// renderMarkdown writes md through glamour, or as-is when colors are off
// or rendering fails.
func renderMarkdown(w io.Writer, md string) error {
	if !ColorsEnabled() {
		_, err := io.WriteString(w, md)
		return err
	}
	width := terminalWidth()
	if width <= 0 || width > 100 {
		width = 100
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			_, err = io.WriteString(w, out)
			return err
		}
	}
	_, err = io.WriteString(w, md)
	return err
}
