// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/toolverse/internal/history"
	"github.com/jeranaias/toolverse/internal/util"
)

// =============================================================================
// REPORT
// =============================================================================

// Report is what gets exported: a list of runs, newest first, and the
// statistics over the whole history.
type Report struct {
	Title       string          `json:"title"`
	GeneratedAt time.Time       `json:"generated_at"`
	Entries     []history.Entry `json:"entries"`
	Stats       history.Stats   `json:"stats"`
}

// ErrNilReport is returned when Export is called without a report.
var ErrNilReport = errors.New("report is nil")

func (r *Report) title() string {
	if r.Title != "" {
		return r.Title
	}
	return "toolverse run history"
}

func (r *Report) generated() time.Time {
	if r.GeneratedAt.IsZero() {
		return time.Now()
	}
	return r.GeneratedAt
}

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter renders a report in one format.
type Exporter interface {
	// Export converts the report to the target format.
	Export(r *Report) ([]byte, error)

	// FileExtension returns the file extension, e.g. ".md".
	FileExtension() string

	// MimeType returns the MIME type of the output.
	MimeType() string
}

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// IncludeMetadata adds the front matter or header block.
	IncludeMetadata bool

	// IncludeStats adds the per-tool statistics table.
	IncludeStats bool

	// Theme for HTML export ("light" or "dark").
	// Default: "dark"
	Theme string
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		IncludeMetadata: true,
		IncludeStats:    true,
		Theme:           "dark",
	}
}

// Formats lists the accepted format names.
var Formats = []string{"markdown", "html", "json", "csv"}

// ForFormat returns the exporter for a format name or file extension.
func ForFormat(format string, opts *Options) (Exporter, error) {
	switch strings.TrimPrefix(strings.ToLower(format), ".") {
	case "markdown", "md":
		return NewMarkdownExporter(opts), nil
	case "html", "htm":
		return NewHTMLExporter(opts), nil
	case "json":
		return NewJSONExporter(opts), nil
	case "csv":
		return NewCSVExporter(opts), nil
	}
	return nil, fmt.Errorf("unsupported export format %q (supported: %s)", format, strings.Join(Formats, ", "))
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// DefaultFilename names an export made at t.
func DefaultFilename(e Exporter, t time.Time) string {
	return "toolverse_history_" + t.Format("20060102_150405") + e.FileExtension()
}

// WriteFile exports r and writes it atomically to path. The returned path
// is the one written.
func WriteFile(r *Report, e Exporter, path string) (string, error) {
	content, err := e.Export(r)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}
	if filepath.Ext(path) == "" {
		path += e.FileExtension()
	}
	if err := util.AtomicWriteFileWithDir(path, content, 0644, 0755); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return path, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// resultText is the summary of a successful run or the message of a
// failed one.
func resultText(e history.Entry) string {
	if e.Succeeded() {
		return e.Summary
	}
	return e.Message
}

// formatTimestamp formats a timestamp for display.
func formatTimestamp(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04:05")
}
