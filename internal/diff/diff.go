// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package diff

import (
	"fmt"
	"strings"
)

// =============================================================================
// LINE TYPES
// =============================================================================

// LineType represents the type of a diff line.
type LineType int

const (
	// LineContext is a line present on both sides.
	LineContext LineType = iota
	// LineAdded is a line only in the new text.
	LineAdded
	// LineRemoved is a line only in the old text.
	LineRemoved
)

// String returns the string representation of a line type.
func (t LineType) String() string {
	switch t {
	case LineContext:
		return "context"
	case LineAdded:
		return "added"
	case LineRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// MarshalText lets line types appear by name in JSON and YAML output.
func (t LineType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Prefix returns the unified diff prefix character for this line type.
func (t LineType) Prefix() string {
	switch t {
	case LineAdded:
		return "+"
	case LineRemoved:
		return "-"
	default:
		return " "
	}
}

// =============================================================================
// DIFF TYPES
// =============================================================================

// Line is a single line in a diff.
type Line struct {
	Type    LineType `json:"type" yaml:"type"`
	Content string   `json:"content" yaml:"content"`
	OldLine int      `json:"old_line,omitempty" yaml:"old_line,omitempty"` // 0 if added
	NewLine int      `json:"new_line,omitempty" yaml:"new_line,omitempty"` // 0 if removed
}

// Hunk is a contiguous run of changes with surrounding context.
type Hunk struct {
	OldStart int    `json:"old_start" yaml:"old_start"`
	OldCount int    `json:"old_count" yaml:"old_count"`
	NewStart int    `json:"new_start" yaml:"new_start"`
	NewCount int    `json:"new_count" yaml:"new_count"`
	Lines    []Line `json:"lines" yaml:"lines"`
}

// Header returns the "@@ -a,b +c,d @@" line for the hunk.
func (h Hunk) Header() string {
	return fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.OldStart, h.OldCount, h.NewStart, h.NewCount)
}

// Stats holds line counts for a diff.
type Stats struct {
	Additions int    `json:"additions" yaml:"additions"`
	Deletions int    `json:"deletions" yaml:"deletions"`
	Unchanged int    `json:"unchanged" yaml:"unchanged"`
	Mode      string `json:"mode" yaml:"mode"` // "new", "deleted", "modified", "identical"
}

// Diff is the result of comparing two texts.
type Diff struct {
	Name     string  `json:"name" yaml:"name"`
	Hunks    []Hunk  `json:"hunks" yaml:"hunks"`
	Stats    Stats   `json:"stats" yaml:"stats"`
	Lines    []Line  `json:"-" yaml:"-"`
	oldTotal int
	newTotal int
}

// Options tunes line comparison.
type Options struct {
	// IgnoreWhitespace compares lines with leading and trailing whitespace
	// removed and inner runs collapsed to one space.
	IgnoreWhitespace bool `json:"ignore_whitespace" yaml:"ignore_whitespace"`
	// IgnoreCase compares lines case-insensitively.
	IgnoreCase bool `json:"ignore_case" yaml:"ignore_case"`
	// Context is the number of unchanged lines kept around each change.
	// Negative means DefaultContext.
	Context int `json:"context" yaml:"context"`
}

// DefaultContext is the unified diff context width.
const DefaultContext = 3

// maxCells caps the LCS table size. Inputs whose differing middle exceeds it
// are reported as a full replacement of that middle.
const maxCells = 16 << 20

// DefaultOptions returns exact comparison with three lines of context.
func DefaultOptions() Options {
	return Options{Context: DefaultContext}
}

// =============================================================================
// COMPUTATION
// =============================================================================

// Compute diffs old against new with DefaultOptions.
func Compute(name, oldText, newText string) *Diff {
	return ComputeWithOptions(name, oldText, newText, DefaultOptions())
}

// ComputeWithOptions diffs old against new line by line. Line endings are
// normalized first, so CRLF and LF inputs compare equal.
func ComputeWithOptions(name, oldText, newText string, opts Options) *Diff {
	if opts.Context < 0 {
		opts.Context = DefaultContext
	}
	oldLines := splitLines(oldText)
	newLines := splitLines(newText)

	d := &Diff{Name: name, oldTotal: len(oldLines), newTotal: len(newLines)}
	d.Lines = lineDiff(oldLines, newLines, keyFunc(opts))
	for _, l := range d.Lines {
		switch l.Type {
		case LineAdded:
			d.Stats.Additions++
		case LineRemoved:
			d.Stats.Deletions++
		default:
			d.Stats.Unchanged++
		}
	}

	switch {
	case d.Stats.Additions == 0 && d.Stats.Deletions == 0:
		d.Stats.Mode = "identical"
	case len(oldLines) == 0:
		d.Stats.Mode = "new"
	case len(newLines) == 0:
		d.Stats.Mode = "deleted"
	default:
		d.Stats.Mode = "modified"
	}

	d.Hunks = groupHunks(d.Lines, opts.Context)
	return d
}

func splitLines(s string) []string {
	if s == "" {
		return []string{}
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	lines := strings.Split(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func keyFunc(opts Options) func(string) string {
	return func(s string) string {
		if opts.IgnoreWhitespace {
			s = strings.Join(strings.Fields(s), " ")
		}
		if opts.IgnoreCase {
			s = strings.ToLower(s)
		}
		return s
	}
}

// lineDiff walks an LCS table over the keyed lines. The common prefix and
// suffix are peeled off first so typical edits only pay for the changed
// middle.
func lineDiff(a, b []string, key func(string) string) []Line {
	ka := make([]string, len(a))
	for i, s := range a {
		ka[i] = key(s)
	}
	kb := make([]string, len(b))
	for i, s := range b {
		kb[i] = key(s)
	}

	var out []Line
	pre := 0
	for pre < len(a) && pre < len(b) && ka[pre] == kb[pre] {
		out = append(out, Line{Type: LineContext, Content: a[pre], OldLine: pre + 1, NewLine: pre + 1})
		pre++
	}
	suf := 0
	for suf < len(a)-pre && suf < len(b)-pre && ka[len(a)-1-suf] == kb[len(b)-1-suf] {
		suf++
	}

	am, bm := ka[pre:len(a)-suf], kb[pre:len(b)-suf]
	m, n := len(am), len(bm)

	emitRemoved := func(i int) {
		out = append(out, Line{Type: LineRemoved, Content: a[pre+i], OldLine: pre + i + 1})
	}
	emitAdded := func(j int) {
		out = append(out, Line{Type: LineAdded, Content: b[pre+j], NewLine: pre + j + 1})
	}

	if m*n > maxCells {
		for i := 0; i < m; i++ {
			emitRemoved(i)
		}
		for j := 0; j < n; j++ {
			emitAdded(j)
		}
	} else {
		// dp[i][j] is the LCS length of am[i:] and bm[j:].
		dp := make([][]int32, m+1)
		for i := range dp {
			dp[i] = make([]int32, n+1)
		}
		for i := m - 1; i >= 0; i-- {
			for j := n - 1; j >= 0; j-- {
				if am[i] == bm[j] {
					dp[i][j] = dp[i+1][j+1] + 1
				} else if dp[i+1][j] >= dp[i][j+1] {
					dp[i][j] = dp[i+1][j]
				} else {
					dp[i][j] = dp[i][j+1]
				}
			}
		}

		i, j := 0, 0
		for i < m || j < n {
			switch {
			case i < m && j < n && am[i] == bm[j]:
				out = append(out, Line{Type: LineContext, Content: a[pre+i], OldLine: pre + i + 1, NewLine: pre + j + 1})
				i++
				j++
			case j >= n || (i < m && dp[i+1][j] >= dp[i][j+1]):
				emitRemoved(i)
				i++
			default:
				emitAdded(j)
				j++
			}
		}
	}

	for k := suf; k > 0; k-- {
		oi, ni := len(a)-k, len(b)-k
		out = append(out, Line{Type: LineContext, Content: a[oi], OldLine: oi + 1, NewLine: ni + 1})
	}
	return out
}

// groupHunks splits the line list into hunks, each holding its changes plus
// up to ctx context lines on either side. Changes separated by at most
// 2*ctx unchanged lines share a hunk.
func groupHunks(lines []Line, ctx int) []Hunk {
	var changes []int
	for i, l := range lines {
		if l.Type != LineContext {
			changes = append(changes, i)
		}
	}
	if len(changes) == 0 {
		return nil
	}

	// Old and new line positions consumed before index i.
	oldPos := make([]int, len(lines)+1)
	newPos := make([]int, len(lines)+1)
	for i, l := range lines {
		oldPos[i+1], newPos[i+1] = oldPos[i], newPos[i]
		if l.Type != LineAdded {
			oldPos[i+1]++
		}
		if l.Type != LineRemoved {
			newPos[i+1]++
		}
	}

	var hunks []Hunk
	start := max(0, changes[0]-ctx)
	end := changes[0]
	flush := func() {
		stop := min(len(lines), end+ctx+1)
		h := Hunk{Lines: append([]Line(nil), lines[start:stop]...)}
		h.OldCount = oldPos[stop] - oldPos[start]
		h.NewCount = newPos[stop] - newPos[start]
		h.OldStart = oldPos[start]
		if h.OldCount > 0 {
			h.OldStart++
		}
		h.NewStart = newPos[start]
		if h.NewCount > 0 {
			h.NewStart++
		}
		hunks = append(hunks, h)
	}
	for _, c := range changes[1:] {
		if c-end > 2*ctx+1 {
			flush()
			start = c - ctx
		}
		end = c
	}
	flush()
	return hunks
}

// =============================================================================
// OUTPUT
// =============================================================================

// Format returns the diff in unified format. Identical inputs produce an
// empty string.
func (d *Diff) Format() string {
	if len(d.Hunks) == 0 {
		return ""
	}
	name := d.Name
	if name == "" {
		name = "text"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- a/%s\n", name)
	fmt.Fprintf(&sb, "+++ b/%s\n", name)
	for _, h := range d.Hunks {
		sb.WriteString(h.Header())
		sb.WriteByte('\n')
		for _, l := range h.Lines {
			sb.WriteString(l.Type.Prefix())
			sb.WriteString(l.Content)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// Similarity is 2*unchanged / (old lines + new lines), in [0, 1]. Two empty
// inputs are fully similar.
func (d *Diff) Similarity() float64 {
	total := d.oldTotal + d.newTotal
	if total == 0 {
		return 1
	}
	return float64(2*d.Stats.Unchanged) / float64(total)
}

// Equal reports whether the inputs matched under the chosen options.
func (d *Diff) Equal() bool {
	return d.Stats.Additions == 0 && d.Stats.Deletions == 0
}

// Summary returns a one-line human-readable description.
func (d *Diff) Summary() string {
	var parts []string
	switch d.Stats.Mode {
	case "new":
		parts = append(parts, "New text")
	case "deleted":
		parts = append(parts, "All lines removed")
	case "identical":
		return "No differences"
	default:
		parts = append(parts, "Modified")
	}
	if d.Stats.Additions > 0 {
		parts = append(parts, fmt.Sprintf("+%d", d.Stats.Additions))
	}
	if d.Stats.Deletions > 0 {
		parts = append(parts, fmt.Sprintf("-%d", d.Stats.Deletions))
	}
	parts = append(parts, fmt.Sprintf("(%.0f%% similar)", d.Similarity()*100))
	return strings.Join(parts, " ")
}
