// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/jeranaias/toolverse/internal/util"
)

// ErrInvalidInput is wrapped by every input error in this package.
// Failures inside the PDF libraries are returned unwrapped.
var ErrInvalidInput = errors.New("invalid input")

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// ContentType is the MIME type of every document this package writes.
const ContentType = "application/pdf"

var (
	disableConfigDir sync.Once
	strict           atomic.Bool
)

// SetStrictValidation switches pdfcpu between strict and relaxed
// validation. Relaxed is the default; many real-world files only pass
// relaxed checks.
func SetStrictValidation(on bool) {
	strict.Store(on)
}

func newConfig() *model.Configuration {
	// pdfcpu would otherwise create a config directory under the user's
	// home on first use.
	disableConfigDir.Do(api.DisableConfigDir)
	conf := model.NewDefaultConfiguration()
	if strict.Load() {
		conf.ValidationMode = model.ValidationStrict
	} else {
		conf.ValidationMode = model.ValidationRelaxed
	}
	return conf
}

// Document is a named PDF produced by an operation.
type Document struct {
	Name  string `json:"name" yaml:"name"`
	Pages int    `json:"pages" yaml:"pages"`
	Data  []byte `json:"-" yaml:"-"`
}

func requireData(data []byte) error {
	if len(data) == 0 {
		return invalid("empty PDF data")
	}
	if !bytes.HasPrefix(bytes.TrimLeft(data[:min(len(data), 1024)], "\x00\t\r\n "), []byte("%PDF-")) {
		return invalid("data is not a PDF document")
	}
	return nil
}

// =============================================================================
// PAGE COUNT
// =============================================================================

// PageCount returns the number of pages in data.
func PageCount(data []byte) (int, error) {
	if err := requireData(data); err != nil {
		return 0, err
	}
	n, err := api.PageCount(bytes.NewReader(data), newConfig())
	if err != nil {
		return 0, fmt.Errorf("reading PDF: %w", err)
	}
	return n, nil
}

// resolvePages parses expr against data's page count.
func resolvePages(data []byte, expr string) ([]PageRange, int, error) {
	total, err := PageCount(data)
	if err != nil {
		return nil, 0, err
	}
	ranges, err := ParsePageRanges(expr, total)
	if err != nil {
		return nil, 0, err
	}
	return ranges, total, nil
}

func run(op string, fn func(w io.Writer) error) ([]byte, error) {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return buf.Bytes(), nil
}

// =============================================================================
// SPLIT / EXTRACT
// =============================================================================

// Split writes one document per range in expr. Part i (1-based) is named
// "<input>_part<i>.pdf".
func Split(data []byte, name, expr string) ([]Document, error) {
	ranges, _, err := resolvePages(data, expr)
	if err != nil {
		return nil, err
	}

	docs := make([]Document, 0, len(ranges))
	for i, r := range ranges {
		out, err := run("split", func(w io.Writer) error {
			return api.Trim(bytes.NewReader(data), w, []string{r.String()}, newConfig())
		})
		if err != nil {
			return nil, err
		}
		docs = append(docs, Document{Name: PartName(name, i+1), Pages: r.Len(), Data: out})
	}
	return docs, nil
}

// SplitEvery splits data into consecutive chunks of n pages.
func SplitEvery(data []byte, name string, n int) ([]Document, error) {
	if n < 1 {
		return nil, invalid("pages per part must be at least 1")
	}
	total, err := PageCount(data)
	if err != nil {
		return nil, err
	}
	var expr bytes.Buffer
	for from := 1; from <= total; from += n {
		if expr.Len() > 0 {
			expr.WriteByte(',')
		}
		expr.WriteString(PageRange{From: from, To: min(from+n-1, total)}.String())
	}
	return Split(data, name, expr.String())
}

// Extract writes a single document holding the selected pages in
// ascending order.
func Extract(data []byte, name, expr string) (*Document, error) {
	ranges, _, err := resolvePages(data, expr)
	if err != nil {
		return nil, err
	}
	pages := Pages(ranges)
	out, err := run("extract", func(w io.Writer) error {
		return api.Trim(bytes.NewReader(data), w, selection(pages), newConfig())
	})
	if err != nil {
		return nil, err
	}
	return &Document{Name: util.DerivedName(name, "extracted", "pdf", "document"), Pages: len(pages), Data: out}, nil
}

// =============================================================================
// MERGE
// =============================================================================

// Merge concatenates docs in order.
func Merge(docs [][]byte) (*Document, error) {
	if len(docs) < 2 {
		return nil, invalid("merge needs at least two documents, got %d", len(docs))
	}
	readers := make([]io.ReadSeeker, len(docs))
	for i, d := range docs {
		if err := requireData(d); err != nil {
			return nil, fmt.Errorf("document %d: %w", i+1, err)
		}
		readers[i] = bytes.NewReader(d)
	}

	out, err := run("merge", func(w io.Writer) error {
		return api.MergeRaw(readers, w, false, newConfig())
	})
	if err != nil {
		return nil, err
	}
	pages, err := PageCount(out)
	if err != nil {
		return nil, err
	}
	return &Document{Name: "merged.pdf", Pages: pages, Data: out}, nil
}

// =============================================================================
// ROTATE / REMOVE
// =============================================================================

// NormalizeRotation maps any multiple of 90 onto 90, 180 or 270.
func NormalizeRotation(degrees int) (int, error) {
	if degrees%90 != 0 {
		return 0, invalid("rotation must be a multiple of 90 degrees, got %d", degrees)
	}
	d := ((degrees % 360) + 360) % 360
	if d == 0 {
		return 0, invalid("rotation of %d degrees leaves the pages unchanged", degrees)
	}
	return d, nil
}

// Rotate turns the selected pages clockwise by degrees.
func Rotate(data []byte, name string, degrees int, expr string) (*Document, error) {
	deg, err := NormalizeRotation(degrees)
	if err != nil {
		return nil, err
	}
	ranges, total, err := resolvePages(data, expr)
	if err != nil {
		return nil, err
	}
	out, err := run("rotate", func(w io.Writer) error {
		return api.Rotate(bytes.NewReader(data), w, deg, selection(Pages(ranges)), newConfig())
	})
	if err != nil {
		return nil, err
	}
	return &Document{Name: util.DerivedName(name, "rotated", "pdf", "document"), Pages: total, Data: out}, nil
}

// Remove deletes the selected pages. At least one page must remain.
func Remove(data []byte, name, expr string) (*Document, error) {
	ranges, total, err := resolvePages(data, expr)
	if err != nil {
		return nil, err
	}
	pages := Pages(ranges)
	if len(pages) >= total {
		return nil, invalid("cannot remove all %d pages", total)
	}
	out, err := run("remove", func(w io.Writer) error {
		return api.RemovePages(bytes.NewReader(data), w, selection(pages), newConfig())
	})
	if err != nil {
		return nil, err
	}
	return &Document{Name: util.DerivedName(name, "trimmed", "pdf", "document"), Pages: total - len(pages), Data: out}, nil
}

// =============================================================================
// NAMING
// =============================================================================

// PartName names split output i: PartName("report.pdf", 2) == "report_part2.pdf".
func PartName(input string, i int) string {
	return util.DerivedName(input, "part"+strconv.Itoa(i), "pdf", "document")
}
