// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package text

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CaseStyles lists the styles accepted by ConvertCase.
var CaseStyles = []string{"upper", "lower", "title", "sentence", "camel", "pascal", "snake", "kebab", "constant"}

// ConvertCase rewrites s in the named style. The identifier styles (camel,
// pascal, snake, kebab, constant) split on whitespace, punctuation and
// lower-to-upper transitions.
func ConvertCase(s, style string) (string, error) {
	switch strings.ToLower(style) {
	case "upper":
		return cases.Upper(language.Und).String(s), nil
	case "lower":
		return cases.Lower(language.Und).String(s), nil
	case "title":
		return cases.Title(language.Und).String(s), nil
	case "sentence":
		return sentenceCase(s), nil
	case "camel":
		return joinWords(splitWords(s), true, ""), nil
	case "pascal":
		return joinWords(splitWords(s), false, ""), nil
	case "snake":
		return strings.ToLower(strings.Join(splitWords(s), "_")), nil
	case "kebab":
		return strings.ToLower(strings.Join(splitWords(s), "-")), nil
	case "constant":
		return strings.ToUpper(strings.Join(splitWords(s), "_")), nil
	}
	return "", invalid("unknown case style %q (use one of %s)", style, strings.Join(CaseStyles, ", "))
}

// sentenceCase lower-cases everything and capitalises the first letter of
// each sentence.
func sentenceCase(s string) string {
	lower := []rune(cases.Lower(language.Und).String(s))
	capNext := true
	for i, r := range lower {
		switch {
		case capNext && unicode.IsLetter(r):
			lower[i] = unicode.ToUpper(r)
			capNext = false
		case r == '.' || r == '!' || r == '?' || r == '\n':
			capNext = true
		}
	}
	return string(lower)
}

func splitWords(s string) []string {
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}
	runes := []rune(s)
	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if unicode.IsUpper(r) && len(cur) > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return words
}

func joinWords(words []string, lowerFirst bool, sep string) string {
	title := cases.Title(language.Und)
	out := make([]string, len(words))
	for i, w := range words {
		if i == 0 && lowerFirst {
			out[i] = strings.ToLower(w)
			continue
		}
		out[i] = title.String(strings.ToLower(w))
	}
	return strings.Join(out, sep)
}
