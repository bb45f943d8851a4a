// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across toolverse.
//
// # Key Functions
//
// Files:
//   - AtomicWriteFile, AtomicWriteStream: crash-safe writes with fsync
//   - DerivedName: output file names derived from an input name
//   - UniquePath: avoid clobbering an existing output
//
// Strings:
//   - TruncateRunes, TruncateWidth: UTF-8 safe truncation
//   - PadRight, StringWidth: column-aware layout via go-runewidth
//
// Formatting:
//   - FormatMoney, FormatBytes, FormatDuration
//
// # Usage
//
//	name := util.DerivedName("cat.jpg", "resized", "png", "image") // cat_resized.png
//	err := util.AtomicWriteFile(filepath.Join(dir, name), data, 0644)
package util
