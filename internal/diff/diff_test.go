// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package diff

import (
	"strings"
	"testing"
)

func TestCompute_NewText(t *testing.T) {
	d := Compute("test.txt", "", "line1\nline2\nline3")

	if d.Stats.Mode != "new" {
		t.Errorf("Expected mode 'new', got '%s'", d.Stats.Mode)
	}
	if d.Stats.Additions != 3 {
		t.Errorf("Expected 3 additions, got %d", d.Stats.Additions)
	}
	if len(d.Hunks) != 1 {
		t.Fatalf("Expected 1 hunk, got %d", len(d.Hunks))
	}
	if got := d.Hunks[0].Header(); got != "@@ -0,0 +1,3 @@" {
		t.Errorf("Unexpected header %q", got)
	}
}

func TestCompute_AllRemoved(t *testing.T) {
	d := Compute("test.txt", "line1\nline2\nline3", "")

	if d.Stats.Mode != "deleted" {
		t.Errorf("Expected mode 'deleted', got '%s'", d.Stats.Mode)
	}
	if d.Stats.Deletions != 3 || d.Stats.Additions != 0 {
		t.Errorf("Expected -3 +0, got -%d +%d", d.Stats.Deletions, d.Stats.Additions)
	}
	if got := d.Hunks[0].Header(); got != "@@ -1,3 +0,0 @@" {
		t.Errorf("Unexpected header %q", got)
	}
}

func TestCompute_Modified(t *testing.T) {
	d := Compute("test.txt", "line1\nline2\nline3", "line1\nmodified\nline3\nline4")

	if d.Stats.Mode != "modified" {
		t.Errorf("Expected mode 'modified', got '%s'", d.Stats.Mode)
	}
	if d.Stats.Additions != 2 {
		t.Errorf("Expected 2 additions, got %d", d.Stats.Additions)
	}
	if d.Stats.Deletions != 1 {
		t.Errorf("Expected 1 deletion, got %d", d.Stats.Deletions)
	}
	if d.Stats.Unchanged != 2 {
		t.Errorf("Expected 2 unchanged, got %d", d.Stats.Unchanged)
	}
}

func TestCompute_Identical(t *testing.T) {
	content := "line1\nline2\nline3"
	d := Compute("test.txt", content, content)

	if !d.Equal() {
		t.Error("Expected identical texts to be equal")
	}
	if len(d.Hunks) != 0 {
		t.Errorf("Expected no hunks, got %d", len(d.Hunks))
	}
	if d.Format() != "" {
		t.Errorf("Expected empty unified output, got %q", d.Format())
	}
	if d.Similarity() != 1 {
		t.Errorf("Expected similarity 1, got %f", d.Similarity())
	}
	if d.Summary() != "No differences" {
		t.Errorf("Unexpected summary %q", d.Summary())
	}
}

func TestCompute_BothEmpty(t *testing.T) {
	d := Compute("x", "", "")
	if !d.Equal() || d.Similarity() != 1 {
		t.Error("Expected empty inputs to be equal and fully similar")
	}
}

func TestCompute_LineEndings(t *testing.T) {
	d := Compute("crlf.txt", "a\r\nb\r\nc\r\n", "a\nb\nc")
	if !d.Equal() {
		t.Errorf("Expected CRLF and LF inputs to compare equal, got %s", d.Summary())
	}
}

func TestCompute_IgnoreWhitespace(t *testing.T) {
	before := "func main() {\n\treturn\n}"
	after := "func main()  {\n    return   \n}"

	if Compute("ws.go", before, after).Equal() {
		t.Error("Expected exact comparison to find differences")
	}
	d := ComputeWithOptions("ws.go", before, after, Options{IgnoreWhitespace: true, Context: 3})
	if !d.Equal() {
		t.Errorf("Expected whitespace-insensitive comparison to match, got %s", d.Summary())
	}
}

func TestCompute_IgnoreCase(t *testing.T) {
	d := ComputeWithOptions("c.txt", "Hello\nWORLD", "hello\nworld", Options{IgnoreCase: true})
	if !d.Equal() {
		t.Error("Expected case-insensitive comparison to match")
	}
}

func TestCompute_LineNumbers(t *testing.T) {
	d := Compute("n.txt", "a\nb\nc", "a\nc\nd")

	var got []string
	for _, l := range d.Lines {
		got = append(got, l.Type.Prefix()+l.Content)
	}
	want := []string{" a", "-b", " c", "+d"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Expected %v, got %v", want, got)
	}

	if d.Lines[1].OldLine != 2 || d.Lines[1].NewLine != 0 {
		t.Errorf("Removed line numbers wrong: %+v", d.Lines[1])
	}
	if d.Lines[3].OldLine != 0 || d.Lines[3].NewLine != 3 {
		t.Errorf("Added line numbers wrong: %+v", d.Lines[3])
	}
}

func TestGroupHunks_Separated(t *testing.T) {
	var before, after []string
	for i := 1; i <= 20; i++ {
		line := "line" + string(rune('A'+i-1))
		before = append(before, line)
		switch i {
		case 2:
			after = append(after, "changed-2")
		case 18:
			after = append(after, "changed-18")
		default:
			after = append(after, line)
		}
	}

	d := Compute("long.txt", strings.Join(before, "\n"), strings.Join(after, "\n"))
	if len(d.Hunks) != 2 {
		t.Fatalf("Expected 2 hunks, got %d", len(d.Hunks))
	}
	if h := d.Hunks[0].Header(); h != "@@ -1,5 +1,5 @@" {
		t.Errorf("Unexpected first header %q", h)
	}
	if h := d.Hunks[1].Header(); h != "@@ -15,6 +15,6 @@" {
		t.Errorf("Unexpected second header %q", h)
	}
}

func TestGroupHunks_Merged(t *testing.T) {
	before := "1\n2\n3\n4\n5\n6\n7\n8\n9\n10"
	after := "1\nX\n3\n4\n5\n6\n7\nY\n9\n10"

	d := Compute("m.txt", before, after)
	if len(d.Hunks) != 1 {
		t.Fatalf("Expected changes 6 lines apart to share a hunk, got %d hunks", len(d.Hunks))
	}
	if h := d.Hunks[0].Header(); h != "@@ -1,10 +1,10 @@" {
		t.Errorf("Unexpected header %q", h)
	}
}

func TestGroupHunks_ZeroContext(t *testing.T) {
	d := ComputeWithOptions("z.txt", "a\nb\nc", "a\nB\nc", Options{Context: 0})
	if len(d.Hunks) != 1 {
		t.Fatalf("Expected 1 hunk, got %d", len(d.Hunks))
	}
	if h := d.Hunks[0].Header(); h != "@@ -2,1 +2,1 @@" {
		t.Errorf("Unexpected header %q", h)
	}
}

func TestSimilarity(t *testing.T) {
	d := Compute("s.txt", "a\nb\nc\nd", "a\nb\nx\ny")
	if got := d.Similarity(); got != 0.5 {
		t.Errorf("Expected similarity 0.5, got %f", got)
	}
	if got := Compute("s.txt", "a", "b").Similarity(); got != 0 {
		t.Errorf("Expected similarity 0, got %f", got)
	}
}

func TestFormat_CountsMatchLines(t *testing.T) {
	d := Compute("f.txt", "one\ntwo\nthree\nfour", "zero\none\nthree\nfour\nfive")
	for _, h := range d.Hunks {
		oldN, newN := 0, 0
		for _, l := range h.Lines {
			if l.Type != LineAdded {
				oldN++
			}
			if l.Type != LineRemoved {
				newN++
			}
		}
		if oldN != h.OldCount || newN != h.NewCount {
			t.Errorf("Hunk %s has %d old and %d new lines", h.Header(), oldN, newN)
		}
	}

	out := d.Format()
	if !strings.HasPrefix(out, "--- a/f.txt\n+++ b/f.txt\n@@ ") {
		t.Errorf("Unexpected unified header:\n%s", out)
	}
}

func TestLineType_String(t *testing.T) {
	tests := []struct {
		lt   LineType
		want string
	}{
		{LineContext, "context"},
		{LineAdded, "added"},
		{LineRemoved, "removed"},
		{LineType(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.lt.String(); got != tt.want {
			t.Errorf("LineType(%d).String() = %q, want %q", tt.lt, got, tt.want)
		}
	}
}
