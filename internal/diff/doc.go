// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package diff compares two texts line by line.
//
// Lines are matched with a longest-common-subsequence table, grouped into
// hunks with surrounding context, and rendered in unified diff format.
// Comparison can ignore whitespace and case.
//
// # Key Types
//
//   - LineType: context, added or removed
//   - Line: one line of output with its old and new line numbers
//   - Hunk: a group of changes with context and "@@" coordinates
//   - Diff: the full result with hunks, stats and similarity
//
// # Usage
//
//	d := diff.Compute("notes.txt", before, after)
//	fmt.Print(d.Format())
//	fmt.Println(d.Summary())
//
// Ignore whitespace-only edits:
//
//	d := diff.ComputeWithOptions("notes.txt", before, after, diff.Options{IgnoreWhitespace: true, Context: 3})
package diff
