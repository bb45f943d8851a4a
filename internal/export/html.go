// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/jeranaias/toolverse/internal/history"
	"github.com/jeranaias/toolverse/internal/util"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter exports history to a standalone HTML page with embedded CSS.
type HTMLExporter struct {
	options *Options
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTMLExporter{options: opts}
}

// Export converts the report to HTML.
func (e *HTMLExporter) Export(r *Report) ([]byte, error) {
	if r == nil {
		return nil, ErrNilReport
	}
	theme := e.options.Theme
	if theme != "light" {
		theme = "dark"
	}

	var sb strings.Builder
	title := html.EscapeString(r.title())

	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString("<html lang=\"en\">\n")
	sb.WriteString("<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	sb.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	fmt.Fprintf(&sb, "    <title>%s</title>\n", title)
	sb.WriteString("    <meta name=\"generator\" content=\"toolverse\">\n")
	fmt.Fprintf(&sb, "    <meta name=\"date\" content=\"%s\">\n", r.generated().Format(time.RFC3339))
	sb.WriteString(css)
	sb.WriteString("</head>\n")
	fmt.Fprintf(&sb, "<body class=\"%s-theme\">\n", theme)
	sb.WriteString("    <div class=\"container\">\n")

	if e.options.IncludeMetadata {
		sb.WriteString("        <header class=\"header\">\n")
		fmt.Fprintf(&sb, "            <h1>%s</h1>\n", title)
		sb.WriteString("            <div class=\"metadata\">\n")
		fmt.Fprintf(&sb, "                <span class=\"meta-item\"><strong>Runs:</strong> %d</span>\n", r.Stats.Total)
		fmt.Fprintf(&sb, "                <span class=\"meta-item\"><strong>Failures:</strong> %d</span>\n", r.Stats.Failures)
		fmt.Fprintf(&sb, "                <span class=\"meta-item\"><strong>Generated:</strong> %s</span>\n", formatTimestamp(r.generated()))
		sb.WriteString("            </div>\n")
		sb.WriteString("        </header>\n")
	}

	sb.WriteString("        <main>\n")
	if e.options.IncludeStats && len(r.Stats.ByTool) > 0 {
		sb.WriteString(e.renderStats(r.Stats))
	}
	sb.WriteString(e.renderRuns(r.Entries))
	sb.WriteString("        </main>\n")

	sb.WriteString("        <footer class=\"footer\">\n")
	fmt.Fprintf(&sb, "            <p>Exported from <strong>toolverse</strong> on %s</p>\n",
		r.generated().Local().Format("January 2, 2006 at 3:04 PM"))
	sb.WriteString("        </footer>\n")
	sb.WriteString("    </div>\n")
	sb.WriteString("</body>\n")
	sb.WriteString("</html>\n")

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

// =============================================================================
// RENDERING FUNCTIONS
// =============================================================================

func (e *HTMLExporter) renderStats(stats history.Stats) string {
	var sb strings.Builder
	sb.WriteString("            <h2>Summary</h2>\n")
	sb.WriteString("            <table>\n")
	sb.WriteString("                <tr><th>Tool</th><th class=\"num\">Runs</th><th class=\"num\">Failures</th><th class=\"num\">Average</th></tr>\n")
	for _, ts := range stats.ByTool {
		fmt.Fprintf(&sb, "                <tr><td><code>%s</code></td><td class=\"num\">%d</td><td class=\"num\">%d</td><td class=\"num\">%s</td></tr>\n",
			html.EscapeString(ts.Tool), ts.Runs, ts.Failures, util.FormatDuration(ts.AvgDuration))
	}
	sb.WriteString("            </table>\n")
	return sb.String()
}

func (e *HTMLExporter) renderRuns(entries []history.Entry) string {
	var sb strings.Builder
	sb.WriteString("            <h2>Runs</h2>\n")
	if len(entries) == 0 {
		sb.WriteString("            <p class=\"empty\">No runs recorded.</p>\n")
		return sb.String()
	}
	sb.WriteString("            <table>\n")
	sb.WriteString("                <tr><th>When</th><th>Tool</th><th>Status</th><th class=\"num\">Duration</th><th>Result</th></tr>\n")
	for _, entry := range entries {
		fmt.Fprintf(&sb, "                <tr class=\"status-%s\"><td>%s</td><td><code>%s</code></td><td>%s</td><td class=\"num\">%s</td><td>%s</td></tr>\n",
			html.EscapeString(entry.Status),
			formatTimestamp(entry.CreatedAt),
			html.EscapeString(entry.Tool),
			html.EscapeString(entry.Status),
			util.FormatDuration(entry.Duration),
			html.EscapeString(resultText(entry)))
	}
	sb.WriteString("            </table>\n")
	return sb.String()
}

// css is embedded in every page so the export works offline.
const css = `    <style>
        * {
            margin: 0;
            padding: 0;
            box-sizing: border-box;
        }

        :root {
            --font-sans: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, sans-serif;
            --font-mono: "SF Mono", "Monaco", "Inconsolata", "Fira Code", "Source Code Pro", monospace;
        }

        .dark-theme {
            --bg-primary: #1a1b26;
            --bg-secondary: #24283b;
            --bg-tertiary: #414868;
            --text-primary: #c0caf5;
            --text-muted: #565f89;
            --border-color: #414868;
            --accent-green: #9ece6a;
            --accent-red: #f7768e;
        }

        .light-theme {
            --bg-primary: #ffffff;
            --bg-secondary: #f7f8fa;
            --bg-tertiary: #e1e4e8;
            --text-primary: #24292e;
            --text-muted: #6a737d;
            --border-color: #e1e4e8;
            --accent-green: #22863a;
            --accent-red: #d73a49;
        }

        body {
            font-family: var(--font-sans);
            font-size: 15px;
            line-height: 1.5;
            color: var(--text-primary);
            background: var(--bg-primary);
            padding: 20px;
        }

        .container {
            max-width: 1000px;
            margin: 0 auto;
            background: var(--bg-secondary);
            border-radius: 12px;
            overflow: hidden;
        }

        .header {
            padding: 28px 32px;
            background: var(--bg-tertiary);
            border-bottom: 2px solid var(--border-color);
        }

        .header h1 {
            font-size: 26px;
            margin-bottom: 12px;
        }

        .meta-item {
            margin-right: 20px;
            color: var(--text-muted);
        }

        main {
            padding: 24px 32px;
        }

        h2 {
            font-size: 18px;
            margin: 16px 0 8px;
        }

        table {
            width: 100%;
            border-collapse: collapse;
            margin-bottom: 16px;
        }

        th, td {
            text-align: left;
            padding: 6px 8px;
            border-bottom: 1px solid var(--border-color);
            vertical-align: top;
        }

        .num {
            text-align: right;
        }

        code {
            font-family: var(--font-mono);
        }

        .status-ok td:nth-child(3) {
            color: var(--accent-green);
        }

        .status-validation td:nth-child(3),
        .status-processing td:nth-child(3) {
            color: var(--accent-red);
        }

        .empty, .footer {
            color: var(--text-muted);
        }

        .footer {
            padding: 16px 32px;
            font-size: 13px;
        }
    </style>
`
