// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jeranaias/toolverse/internal/util"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports history to Markdown.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

type frontMatter struct {
	Title     string `yaml:"title"`
	Generated string `yaml:"generated"`
	Runs      int    `yaml:"runs"`
	Failures  int    `yaml:"failures"`
	Generator string `yaml:"generator"`
}

// Export converts the report to Markdown.
func (e *MarkdownExporter) Export(r *Report) ([]byte, error) {
	if r == nil {
		return nil, ErrNilReport
	}

	var sb strings.Builder

	if e.options.IncludeMetadata {
		fm, err := yaml.Marshal(frontMatter{
			Title:     r.title(),
			Generated: r.generated().Format(time.RFC3339),
			Runs:      r.Stats.Total,
			Failures:  r.Stats.Failures,
			Generator: "toolverse",
		})
		if err != nil {
			return nil, fmt.Errorf("front matter: %w", err)
		}
		sb.WriteString("---\n")
		sb.Write(fm)
		sb.WriteString("---\n\n")
	}

	fmt.Fprintf(&sb, "# %s\n\n", escapeMarkdown(r.title()))

	if e.options.IncludeStats && len(r.Stats.ByTool) > 0 {
		sb.WriteString("## Summary\n\n")
		sb.WriteString("| Tool | Runs | Failures | Average |\n")
		sb.WriteString("| --- | ---: | ---: | ---: |\n")
		for _, ts := range r.Stats.ByTool {
			fmt.Fprintf(&sb, "| %s | %d | %d | %s |\n", escapeCell(ts.Tool), ts.Runs, ts.Failures, util.FormatDuration(ts.AvgDuration))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Runs\n\n")
	if len(r.Entries) == 0 {
		sb.WriteString("_No runs recorded._\n")
		return []byte(sb.String()), nil
	}
	sb.WriteString("| When | Tool | Status | Duration | Result |\n")
	sb.WriteString("| --- | --- | --- | ---: | --- |\n")
	for _, entry := range r.Entries {
		fmt.Fprintf(&sb, "| %s | `%s` | %s | %s | %s |\n",
			formatTimestamp(entry.CreatedAt),
			entry.Tool,
			entry.Status,
			util.FormatDuration(entry.Duration),
			escapeCell(resultText(entry)))
	}

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}

// escapeMarkdown escapes characters that would break a heading.
func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "#", "\\#")
	s = strings.ReplaceAll(s, "*", "\\*")
	s = strings.ReplaceAll(s, "_", "\\_")
	s = strings.ReplaceAll(s, "[", "\\[")
	s = strings.ReplaceAll(s, "]", "\\]")
	return s
}

// escapeCell keeps a value inside one table cell.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\r", "")
	return strings.ReplaceAll(s, "\n", " ")
}
