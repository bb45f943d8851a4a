// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/toolverse/internal/history"
)

func sampleReport() *Report {
	at := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	return &Report{
		GeneratedAt: at,
		Entries: []history.Entry{
			{ID: "b2", Tool: "pdf-merge", Category: "pdf", Status: "processing", Message: "pdf-merge failed: not a <PDF>", Duration: 40 * time.Millisecond, CreatedAt: at},
			{ID: "a1", Tool: "tip", Category: "finance", Status: "ok", Summary: "Tip | 15.00", Duration: 2 * time.Millisecond, CreatedAt: at.Add(-time.Minute)},
		},
		Stats: history.Stats{
			Total:    2,
			Failures: 1,
			ByTool: []history.ToolStats{
				{Tool: "pdf-merge", Runs: 1, Failures: 1, AvgDuration: 40 * time.Millisecond},
				{Tool: "tip", Runs: 1, AvgDuration: 2 * time.Millisecond},
			},
		},
	}
}

func TestForFormat(t *testing.T) {
	tests := map[string]string{
		"markdown": ".md",
		"md":       ".md",
		".html":    ".html",
		"HTM":      ".html",
		"json":     ".json",
		"csv":      ".csv",
	}
	for format, ext := range tests {
		e, err := ForFormat(format, nil)
		if err != nil {
			t.Errorf("ForFormat(%q) error = %v", format, err)
			continue
		}
		if e.FileExtension() != ext {
			t.Errorf("ForFormat(%q) extension = %q, want %q", format, e.FileExtension(), ext)
		}
	}
	if _, err := ForFormat("pdf", nil); err == nil {
		t.Error("ForFormat(pdf) should fail")
	}
}

func TestExport_NilReport(t *testing.T) {
	for _, format := range Formats {
		e, _ := ForFormat(format, nil)
		if _, err := e.Export(nil); !errors.Is(err, ErrNilReport) {
			t.Errorf("%s Export(nil) error = %v", format, err)
		}
	}
}

func TestMarkdownExport(t *testing.T) {
	out, err := NewMarkdownExporter(nil).Export(sampleReport())
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	s := string(out)
	for _, want := range []string{
		"---\ntitle: toolverse run history\n",
		"runs: 2\n",
		"# toolverse run history",
		"| pdf-merge | 1 | 1 | ",
		"`tip`",
		`Tip \| 15.00`,
		"pdf-merge failed: not a <PDF>",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("markdown missing %q:\n%s", want, s)
		}
	}
}

func TestMarkdownExport_Options(t *testing.T) {
	out, err := NewMarkdownExporter(&Options{}).Export(&Report{Title: "Q1 #runs"})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	s := string(out)
	if strings.HasPrefix(s, "---") {
		t.Error("front matter written without IncludeMetadata")
	}
	if !strings.Contains(s, `# Q1 \#runs`) || !strings.Contains(s, "_No runs recorded._") {
		t.Errorf("markdown:\n%s", s)
	}
}

func TestHTMLExport(t *testing.T) {
	out, err := NewHTMLExporter(&Options{IncludeMetadata: true, IncludeStats: true, Theme: "light"}).Export(sampleReport())
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	s := string(out)
	if !strings.Contains(s, `<body class="light-theme">`) {
		t.Error("theme not applied")
	}
	if strings.Contains(s, "<PDF>") || !strings.Contains(s, "not a &lt;PDF&gt;") {
		t.Error("result text not escaped")
	}
	if !strings.Contains(s, `<tr class="status-processing">`) {
		t.Error("status class missing")
	}

	out, _ = NewHTMLExporter(&Options{Theme: "neon"}).Export(&Report{})
	if !strings.Contains(string(out), `<body class="dark-theme">`) || !strings.Contains(string(out), "No runs recorded.") {
		t.Errorf("fallback theme or empty state missing:\n%s", out)
	}
}

func TestJSONExport(t *testing.T) {
	out, err := NewJSONExporter(nil).Export(sampleReport())
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	var got Report
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.Title != "toolverse run history" || len(got.Entries) != 2 || got.Stats.Failures != 1 {
		t.Errorf("decoded report = %+v", got)
	}
}

func TestCSVExport(t *testing.T) {
	out, err := NewCSVExporter(nil).Export(sampleReport())
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	rows, err := csv.NewReader(strings.NewReader(string(out))).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header plus 2", len(rows))
	}
	if strings.Join(rows[0], ",") != strings.Join(csvHeader, ",") {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][2] != "pdf-merge" || rows[1][5] != "40" || rows[2][6] != "Tip | 15.00" {
		t.Errorf("rows = %v", rows[1:])
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	e := NewCSVExporter(nil)

	path, err := WriteFile(sampleReport(), e, filepath.Join(dir, "nested", "runs"))
	if err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if filepath.Ext(path) != ".csv" {
		t.Errorf("path = %q, want .csv extension added", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("file not written: %v", err)
	}
}

func TestDefaultFilename(t *testing.T) {
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	if got := DefaultFilename(NewHTMLExporter(nil), at); got != "toolverse_history_20250102_030405.html" {
		t.Errorf("DefaultFilename() = %q", got)
	}
}
