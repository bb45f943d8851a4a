// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package pdf implements the PDF page and form tools.
//
// Page operations (split, extract, merge, rotate, remove) and form
// export/fill are delegated to pdfcpu. Text extraction, metadata and the
// form field listing read the document with ledongthuc/pdf.
//
// # Page ranges
//
// Page selections are comma-separated tokens:
//
//	5        a single page
//	2-4      an inclusive range
//	7-       page 7 to the end
//	-3       pages 1 to 3
//	all      every page
//
// # Usage
//
//	ranges, err := pdf.ParsePageRanges("1-3, 8-", total)
//	parts, err := pdf.Split(data, "report.pdf", "1-3,4-")
//	text, err := pdf.ExtractText(data, "all")
package pdf
