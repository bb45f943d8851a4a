// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package pdf

import (
	"bytes"
	"fmt"
	"strings"

	lpdf "github.com/ledongthuc/pdf"
)

func open(data []byte) (*lpdf.Reader, error) {
	if err := requireData(data); err != nil {
		return nil, err
	}
	r, err := lpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	return r, nil
}

// PageText is the plain text of one page.
type PageText struct {
	Page int    `json:"page" yaml:"page"`
	Text string `json:"text" yaml:"text"`
}

// ExtractText returns the plain text of the selected pages. Pages whose
// content cannot be decoded (scanned images, unusual encodings) come back
// empty instead of failing the whole document.
func ExtractText(data []byte, expr string) ([]PageText, error) {
	r, err := open(data)
	if err != nil {
		return nil, err
	}
	ranges, err := ParsePageRanges(expr, r.NumPage())
	if err != nil {
		return nil, err
	}

	fonts := make(map[string]*lpdf.Font)
	var out []PageText
	for _, n := range Pages(ranges) {
		p := r.Page(n)
		if p.V.IsNull() {
			out = append(out, PageText{Page: n})
			continue
		}
		for _, name := range p.Fonts() {
			if _, ok := fonts[name]; !ok {
				f := p.Font(name)
				fonts[name] = &f
			}
		}
		text, err := p.GetPlainText(fonts)
		if err != nil {
			text = ""
		}
		out = append(out, PageText{Page: n, Text: strings.TrimSpace(text)})
	}
	return out, nil
}

// JoinText concatenates page texts with a form feed between pages.
func JoinText(pages []PageText) string {
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = p.Text
	}
	return strings.Join(parts, "\n\f\n")
}

// =============================================================================
// INFO
// =============================================================================

// Info describes a document.
type Info struct {
	Pages      int      `json:"pages" yaml:"pages"`
	Title      string   `json:"title,omitempty" yaml:"title,omitempty"`
	Author     string   `json:"author,omitempty" yaml:"author,omitempty"`
	Producer   string   `json:"producer,omitempty" yaml:"producer,omitempty"`
	FormFields []string `json:"form_fields" yaml:"form_fields"`
	Bytes      int      `json:"bytes" yaml:"bytes"`
}

// Describe reads the page count, document metadata and form field names.
func Describe(data []byte) (*Info, error) {
	r, err := open(data)
	if err != nil {
		return nil, err
	}
	info := &Info{Pages: r.NumPage(), Bytes: len(data), FormFields: []string{}}

	meta := r.Trailer().Key("Info")
	info.Title = meta.Key("Title").Text()
	info.Author = meta.Key("Author").Text()
	info.Producer = meta.Key("Producer").Text()

	for _, f := range fieldsOf(r) {
		info.FormFields = append(info.FormFields, f.Name)
	}
	return info, nil
}
