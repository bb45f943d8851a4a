// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package text

import (
	"encoding/base64"
	"fmt"
	"html"
	"net/url"
	"strconv"
	"strings"
)

// =============================================================================
// HTML
// =============================================================================

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// HTMLEncode escapes the five HTML-significant characters. With
// encodeNonASCII every rune above U+007E is written as a numeric reference.
func HTMLEncode(s string, encodeNonASCII bool) string {
	s = htmlEscaper.Replace(s)
	if !encodeNonASCII {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r > 0x7E {
			fmt.Fprintf(&b, "&#%d;", r)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// HTMLDecode resolves named and numeric character references.
func HTMLDecode(s string) string {
	return html.UnescapeString(s)
}

// =============================================================================
// URL
// =============================================================================

// URLEncode percent-encodes s. In component mode it matches JavaScript's
// encodeURIComponent; otherwise it matches encodeURI and leaves reserved
// URI delimiters alone.
func URLEncode(s string, component bool) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) || (!component && isReserved(c)) {
			b.WriteByte(c)
			continue
		}
		fmt.Fprintf(&b, "%%%02X", c)
	}
	return b.String()
}

// URLDecode reverses URLEncode. Component mode matches decodeURIComponent;
// otherwise it matches decodeURI and keeps escapes of reserved delimiters.
// A '+' is never turned into a space.
func URLDecode(s string, component bool) (string, error) {
	out, err := url.PathUnescape(s)
	if err != nil {
		return "", invalid("malformed percent-encoding: %v", err)
	}
	if component {
		return out, nil
	}

	// PathUnescape accepted s, so every '%' starts a valid escape.
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '%' {
			b.WriteByte(s[i])
			continue
		}
		v, _ := strconv.ParseUint(s[i+1:i+3], 16, 8)
		if isReserved(byte(v)) {
			b.WriteString(s[i : i+3])
		} else {
			b.WriteByte(byte(v))
		}
		i += 2
	}
	return b.String(), nil
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}

func isReserved(c byte) bool {
	return strings.IndexByte(";,/?:@&=+$#", c) >= 0
}

// =============================================================================
// BASE64
// =============================================================================

// Base64Encode encodes s with padding, using the URL-safe alphabet when
// urlSafe is set.
func Base64Encode(s string, urlSafe bool) string {
	if urlSafe {
		return base64.URLEncoding.EncodeToString([]byte(s))
	}
	return base64.StdEncoding.EncodeToString([]byte(s))
}

// Base64Decode accepts either alphabet, with or without padding, and
// ignores embedded whitespace.
func Base64Decode(s string) (string, error) {
	s = strings.Join(strings.Fields(s), "")
	if s == "" {
		return "", nil
	}
	enc := base64.StdEncoding
	if strings.ContainsAny(s, "-_") {
		enc = base64.URLEncoding
	}
	s = strings.TrimRight(s, "=")
	out, err := enc.WithPadding(base64.NoPadding).DecodeString(s)
	if err != nil {
		return "", invalid("malformed base64: %v", err)
	}
	return string(out), nil
}
