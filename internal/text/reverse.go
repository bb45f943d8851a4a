// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package text

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// ReverseMode selects what Reverse reverses.
type ReverseMode string

const (
	ReverseChars ReverseMode = "chars"
	ReverseWords ReverseMode = "words"
	ReverseLines ReverseMode = "lines"
)

// ParseReverseMode accepts the mode names and a few common aliases.
func ParseReverseMode(s string) (ReverseMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "chars", "char", "characters":
		return ReverseChars, nil
	case "words", "word":
		return ReverseWords, nil
	case "lines", "line":
		return ReverseLines, nil
	}
	return "", invalid("unknown reverse mode %q (use chars, words or lines)", s)
}

// Reverse reverses s by characters, by word order within each line, or by
// line order.
func Reverse(s string, mode ReverseMode) (string, error) {
	switch mode {
	case ReverseChars:
		return reverseChars(s), nil
	case ReverseWords:
		lines := strings.Split(s, "\n")
		for i, line := range lines {
			lines[i] = reverseWords(line)
		}
		return strings.Join(lines, "\n"), nil
	case ReverseLines:
		lines := strings.Split(s, "\n")
		for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
			lines[i], lines[j] = lines[j], lines[i]
		}
		return strings.Join(lines, "\n"), nil
	}
	return "", invalid("unknown reverse mode %q", mode)
}

// reverseChars reverses by combining sequence so accents stay attached to
// their base letter.
func reverseChars(s string) string {
	s = norm.NFC.String(s)
	var clusters []string
	var it norm.Iter
	it.InitString(norm.NFC, s)
	for !it.Done() {
		clusters = append(clusters, string(it.Next()))
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := len(clusters) - 1; i >= 0; i-- {
		b.WriteString(clusters[i])
	}
	return b.String()
}

// reverseWords reverses the order of words, keeping leading and trailing
// whitespace. Inner whitespace runs become a single space.
func reverseWords(line string) string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return line
	}
	lead := line[:strings.Index(line, trimmed)]
	trail := line[len(lead)+len(trimmed):]

	words := strings.FieldsFunc(trimmed, unicode.IsSpace)
	for i, j := 0, len(words)-1; i < j; i, j = i+1, j-1 {
		words[i], words[j] = words[j], words[i]
	}
	return lead + strings.Join(words, " ") + trail
}
