// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package text

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// JSONValidation reports whether a document parses and where it failed.
type JSONValidation struct {
	Valid   bool   `json:"valid" yaml:"valid"`
	Line    int    `json:"line,omitempty" yaml:"line,omitempty"`
	Column  int    `json:"column,omitempty" yaml:"column,omitempty"`
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

// ValidateJSON checks s and locates the first syntax error by line and
// column (both 1-based).
func ValidateJSON(s string) JSONValidation {
	if strings.TrimSpace(s) == "" {
		return JSONValidation{Message: "empty document"}
	}
	var v interface{}
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	err := dec.Decode(&v)
	if err == nil {
		// Decode stops after the first value; anything but whitespace after
		// it is trailing garbage.
		if dec.More() || hasTrailing(dec, s) {
			off := int(dec.InputOffset())
			line, col := position(s, off)
			return JSONValidation{Line: line, Column: col, Message: "unexpected data after top-level value"}
		}
		return JSONValidation{Valid: true}
	}

	res := JSONValidation{Message: err.Error()}
	var syn *json.SyntaxError
	switch {
	case errors.As(err, &syn):
		res.Line, res.Column = position(s, int(syn.Offset))
	default:
		res.Line, res.Column = position(s, int(dec.InputOffset()))
	}
	return res
}

func hasTrailing(dec *json.Decoder, s string) bool {
	off := int(dec.InputOffset())
	if off > len(s) {
		return false
	}
	return strings.TrimSpace(s[off:]) != ""
}

// position converts a byte offset into a 1-based line and column.
func position(s string, offset int) (int, int) {
	if offset > len(s) {
		offset = len(s)
	}
	if offset < 0 {
		offset = 0
	}
	prefix := s[:offset]
	line := strings.Count(prefix, "\n") + 1
	col := offset - strings.LastIndex(prefix, "\n")
	return line, col
}

// FormatJSON pretty-prints s with the given indent (two spaces when empty).
// With sortKeys, object keys are emitted in lexical order.
func FormatJSON(s, indent string, sortKeys bool) (string, error) {
	if indent == "" {
		indent = "  "
	}
	if err := requireValid(s); err != nil {
		return "", err
	}
	if sortKeys {
		return reencode(s, indent)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(strings.TrimSpace(s)), "", indent); err != nil {
		return "", invalid("%v", err)
	}
	return buf.String(), nil
}

// MinifyJSON removes insignificant whitespace from s.
func MinifyJSON(s string) (string, error) {
	if err := requireValid(s); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(s)); err != nil {
		return "", invalid("%v", err)
	}
	return buf.String(), nil
}

func requireValid(s string) error {
	v := ValidateJSON(s)
	if v.Valid {
		return nil
	}
	if v.Line > 0 {
		return invalid("invalid JSON at line %d, column %d: %s", v.Line, v.Column, v.Message)
	}
	return invalid("invalid JSON: %s", v.Message)
}

// reencode decodes into generic values, which encoding/json writes back
// with map keys sorted. Numbers are kept verbatim via json.Number.
func reencode(s, indent string) (string, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return "", invalid("%v", err)
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
