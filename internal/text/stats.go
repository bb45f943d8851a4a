// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package text

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// WordsPerMinute is the reading speed used for ReadingMinutes.
const WordsPerMinute = 200

// TextStats holds counts for a block of text.
type TextStats struct {
	Characters        int     `json:"characters" yaml:"characters"`
	CharactersNoSpace int     `json:"characters_no_spaces" yaml:"characters_no_spaces"`
	Bytes             int     `json:"bytes" yaml:"bytes"`
	Words             int     `json:"words" yaml:"words"`
	Lines             int     `json:"lines" yaml:"lines"`
	Sentences         int     `json:"sentences" yaml:"sentences"`
	Paragraphs        int     `json:"paragraphs" yaml:"paragraphs"`
	MaxLineWidth      int     `json:"max_line_width" yaml:"max_line_width"`
	ReadingMinutes    float64 `json:"reading_minutes" yaml:"reading_minutes"`
}

// Stats counts characters, words, lines and so on. MaxLineWidth is measured
// in terminal columns, so wide CJK characters count as two.
func Stats(s string) TextStats {
	st := TextStats{
		Characters: utf8.RuneCountInString(s),
		Bytes:      len(s),
		Words:      len(strings.Fields(s)),
	}
	for _, r := range s {
		if !unicode.IsSpace(r) {
			st.CharactersNoSpace++
		}
	}

	lines := SplitLines(s)
	st.Lines = len(lines)
	inParagraph := false
	for _, line := range lines {
		if w := runewidth.StringWidth(line); w > st.MaxLineWidth {
			st.MaxLineWidth = w
		}
		if strings.TrimSpace(line) == "" {
			inParagraph = false
			continue
		}
		if !inParagraph {
			st.Paragraphs++
			inParagraph = true
		}
	}

	prevTerminal := false
	for _, r := range s {
		terminal := r == '.' || r == '!' || r == '?'
		if terminal && !prevTerminal {
			st.Sentences++
		}
		prevTerminal = terminal
	}
	if st.Sentences == 0 && st.Words > 0 {
		st.Sentences = 1
	}

	st.ReadingMinutes = math.Ceil(float64(st.Words)/WordsPerMinute*10) / 10
	return st
}
