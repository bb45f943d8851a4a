// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package text provides the string transforms behind the text tools.
//
// All functions are pure and operate on in-memory strings. Input that cannot
// be processed (malformed JSON, invalid base64, unknown modes) is reported
// through errors wrapping ErrInvalidInput.
//
// # Tools
//
//   - Reverse: reverse characters, word order, or line order
//   - Dedup: remove duplicate lines with case/order/trim/empty options
//   - HTML/URL/Base64 encode and decode
//   - FormatJSON, MinifyJSON, ValidateJSON
//   - GeneratePassword and Strength
//   - ConvertCase, Hash, Stats, Highlight
package text
