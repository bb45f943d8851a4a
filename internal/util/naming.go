// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// DerivedName builds an output file name from an input name: the input's
// base name without extension, an optional "_suffix", and ext.
//
//	DerivedName("photos/cat.jpg", "resized", "png") == "cat_resized.png"
//
// An empty or unusable input base falls back to fallback.
func DerivedName(input, suffix, ext, fallback string) string {
	base := filepath.Base(strings.ReplaceAll(input, "\\", "/"))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = SanitizeName(base)
	if base == "" || base == "." {
		base = fallback
	}
	if suffix != "" {
		base += "_" + suffix
	}
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		return base
	}
	return base + "." + ext
}

// SanitizeName replaces characters that are awkward in file names with
// underscores and trims leading dots and spaces.
func SanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == '/' || r == '\\' || r == ':' || r == '*' || r == '?' || r == '"' || r == '<' || r == '>' || r == '|':
			b.WriteRune('_')
		case unicode.IsControl(r):
			continue
		default:
			b.WriteRune(r)
		}
	}
	return strings.TrimLeft(strings.TrimSpace(b.String()), ".")
}

// UniquePath returns path unchanged when nothing exists there, otherwise
// the first "name (N).ext" variant that is free.
func UniquePath(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s (%d)%s", stem, i, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}
