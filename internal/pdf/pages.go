// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package pdf

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// PageRange is an inclusive, 1-based run of pages.
type PageRange struct {
	From int `json:"from" yaml:"from"`
	To   int `json:"to" yaml:"to"`
}

// String renders the range in the syntax ParsePageRanges accepts.
func (r PageRange) String() string {
	if r.From == r.To {
		return strconv.Itoa(r.From)
	}
	return fmt.Sprintf("%d-%d", r.From, r.To)
}

// Len returns the number of pages in the range.
func (r PageRange) Len() int {
	return r.To - r.From + 1
}

// ParsePageRanges parses a page selection against a document of total
// pages. Ranges are returned in the order given; overlaps are allowed.
func ParsePageRanges(expr string, total int) ([]PageRange, error) {
	if total < 1 {
		return nil, invalid("document has no pages")
	}
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, invalid("page range is empty")
	}

	var ranges []PageRange
	for _, tok := range strings.Split(expr, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			return nil, invalid("empty entry in page range %q", expr)
		}
		r, err := parseToken(tok, total)
		if err != nil {
			return nil, err
		}
		ranges = append(ranges, r)
	}
	return ranges, nil
}

func parseToken(tok string, total int) (PageRange, error) {
	if strings.EqualFold(tok, "all") {
		return PageRange{From: 1, To: total}, nil
	}

	lo, hi, isRange := strings.Cut(tok, "-")
	if !isRange {
		n, err := parsePage(tok, total)
		if err != nil {
			return PageRange{}, err
		}
		return PageRange{From: n, To: n}, nil
	}

	lo, hi = strings.TrimSpace(lo), strings.TrimSpace(hi)
	if lo == "" && hi == "" {
		return PageRange{}, invalid("malformed page range %q", tok)
	}
	r := PageRange{From: 1, To: total}
	var err error
	if lo != "" {
		if r.From, err = parsePage(lo, total); err != nil {
			return PageRange{}, err
		}
	}
	if hi != "" {
		if r.To, err = parsePage(hi, total); err != nil {
			return PageRange{}, err
		}
	}
	if r.From > r.To {
		return PageRange{}, invalid("page range %q is reversed", tok)
	}
	return r, nil
}

func parsePage(s string, total int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, invalid("%q is not a page number", s)
	}
	if n < 1 {
		return 0, invalid("page numbers start at 1, got %d", n)
	}
	if n > total {
		return 0, invalid("page %d is out of range (document has %d pages)", n, total)
	}
	return n, nil
}

// Pages flattens ranges into ascending, de-duplicated page numbers.
func Pages(ranges []PageRange) []int {
	seen := make(map[int]bool)
	var pages []int
	for _, r := range ranges {
		for p := r.From; p <= r.To; p++ {
			if !seen[p] {
				seen[p] = true
				pages = append(pages, p)
			}
		}
	}
	sort.Ints(pages)
	return pages
}

// selection converts page numbers to pdfcpu's page selection syntax,
// coalescing consecutive pages.
func selection(pages []int) []string {
	var out []string
	for i := 0; i < len(pages); {
		j := i
		for j+1 < len(pages) && pages[j+1] == pages[j]+1 {
			j++
		}
		out = append(out, PageRange{From: pages[i], To: pages[j]}.String())
		i = j + 1
	}
	return out
}
