// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export renders run history as a shareable report.
//
// # Key Types
//
//   - Report: the runs and statistics to render
//   - Exporter: one output format
//   - Options: shared rendering options
//
// # Supported Formats
//
//   - Markdown: YAML front matter plus a table of runs
//   - HTML: a standalone page with embedded CSS
//   - JSON: the report as-is
//   - CSV: one row per run
//
// # Usage
//
//	exp, err := export.ForFormat("html", nil)
//	data, err := exp.Export(&export.Report{Entries: entries, Stats: stats})
//	path, err := export.WriteFile(report, exp, "runs.html")
package export
