// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package text

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidInput is wrapped by every input error in this package.
var ErrInvalidInput = errors.New("invalid input")

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// DedupOptions controls how duplicate lines are detected.
type DedupOptions struct {
	CaseSensitive bool `json:"case_sensitive" yaml:"case_sensitive"`
	KeepOrder     bool `json:"keep_order" yaml:"keep_order"`
	TrimLines     bool `json:"trim_lines" yaml:"trim_lines"`
	RemoveEmpty   bool `json:"remove_empty" yaml:"remove_empty"`
}

// DefaultDedupOptions matches the tool's initial form state.
func DefaultDedupOptions() DedupOptions {
	return DedupOptions{CaseSensitive: true, KeepOrder: true, TrimLines: true}
}

// DedupResult is the output of Dedup.
type DedupResult struct {
	Text              string   `json:"text" yaml:"text"`
	Lines             []string `json:"-" yaml:"-"`
	OriginalCount     int      `json:"original_count" yaml:"original_count"`
	UniqueCount       int      `json:"unique_count" yaml:"unique_count"`
	DuplicatesRemoved int      `json:"duplicates_removed" yaml:"duplicates_removed"`
	EmptyRemoved      int      `json:"empty_removed" yaml:"empty_removed"`
}

// Dedup removes repeated lines in a single pass. The first occurrence of
// each key is kept; later matches are counted as duplicates. Without
// KeepOrder the unique lines are sorted lexicographically.
func Dedup(input string, opts DedupOptions) DedupResult {
	lines := SplitLines(input)
	res := DedupResult{OriginalCount: len(lines)}

	seen := make(map[string]struct{}, len(lines))
	unique := make([]string, 0, len(lines))
	for _, line := range lines {
		if opts.TrimLines {
			line = strings.TrimSpace(line)
		}
		if opts.RemoveEmpty && strings.TrimSpace(line) == "" {
			res.EmptyRemoved++
			continue
		}
		key := line
		if !opts.CaseSensitive {
			key = strings.ToLower(line)
		}
		if _, dup := seen[key]; dup {
			res.DuplicatesRemoved++
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, line)
	}

	if !opts.KeepOrder {
		sort.Strings(unique)
	}

	res.Lines = unique
	res.UniqueCount = len(unique)
	res.Text = strings.Join(unique, "\n")
	return res
}

// SplitLines splits text on \n, \r\n or \r. Empty input has no lines and a
// single trailing newline does not produce an extra empty line.
func SplitLines(s string) []string {
	if s == "" {
		return []string{}
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	lines := strings.Split(s, "\n")
	if len(lines) > 1 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
