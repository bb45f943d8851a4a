// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package picker

import (
	"strings"
	"unicode"
)

// =============================================================================
// FUZZY MATCHING
// =============================================================================

// Match reports whether every rune of query appears in target in order,
// case-insensitively, and scores the match (higher is better).
//
// Scoring:
//   - 1 per matched rune
//   - +5 when it directly follows the previous match
//   - +10 at the start of target
//   - +7 at a word boundary (after space, dash, underscore or slash)
//   - -1 per 4 runes of target, so shorter names win ties
//
// "mtg" matches "mortgage"; "pdfm" ranks "pdf-merge" above "pdf-form-fill".
func Match(query, target string) (int, bool) {
	if query == "" {
		return 0, true
	}
	q := []rune(strings.ToLower(query))
	t := []rune(strings.ToLower(target))
	if len(q) > len(t) {
		return 0, false
	}

	score, qi, last := 0, 0, -1
	for ti := 0; ti < len(t) && qi < len(q); ti++ {
		if t[ti] != q[qi] {
			continue
		}
		s := 1
		if last == ti-1 {
			s += 5
		}
		if ti == 0 {
			s += 10
		}
		if wordStart(t, ti) {
			s += 7
		}
		score += s
		last = ti
		qi++
	}
	if qi < len(q) {
		return 0, false
	}
	return score - len(t)/4, true
}

func wordStart(runes []rune, i int) bool {
	if i == 0 {
		return true
	}
	switch prev := runes[i-1]; {
	case prev == ' ', prev == '-', prev == '_', prev == '/':
		return true
	case unicode.IsDigit(prev) != unicode.IsDigit(runes[i]):
		return true
	}
	return false
}

// Highlight returns the rune positions in target that Match would use.
func Highlight(query, target string) []int {
	if query == "" {
		return nil
	}
	q := []rune(strings.ToLower(query))
	t := []rune(strings.ToLower(target))

	var positions []int
	qi := 0
	for ti := 0; ti < len(t) && qi < len(q); ti++ {
		if t[ti] == q[qi] {
			positions = append(positions, ti)
			qi++
		}
	}
	if qi < len(q) {
		return nil
	}
	return positions
}
