// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/jeranaias/toolverse/internal/pdf"
	"github.com/jeranaias/toolverse/internal/util"
)

// =============================================================================
// PDF TOOLS
// =============================================================================

const contentTypeJSON = "application/json"

const pageRangeHelp = "Page ranges such as 1-3,5,8- or all"

func pdfParam(desc string) Parameter {
	return Parameter{Name: "pdf", Type: TypeFile, Required: true, Description: desc}
}

func pdfTools() []*Tool {
	return []*Tool{
		{
			Name:        "pdf-info",
			Category:    CategoryPDF,
			Description: "Show page count, metadata and form fields of a PDF",
			Schema:      Schema{Parameters: []Parameter{pdfParam("Input PDF")}},
			Executor:    ExecutorFunc(runPDFInfo),
		},
		{
			Name:        "pdf-split",
			Aliases:     []string{"split"},
			Category:    CategoryPDF,
			Description: "Split a PDF into one document per page range, or every N pages",
			Usage:       "toolverse run pdf-split --pdf report.pdf --pages 1-2,3-",
			Schema: Schema{Parameters: []Parameter{
				pdfParam("Input PDF"),
				{Name: "pages", Type: TypeString, Description: pageRangeHelp},
				{Name: "every", Type: TypeInteger, Description: "Split into chunks of this many pages", Default: 0, Min: bound(0)},
			}},
			Executor: ExecutorFunc(runPDFSplit),
		},
		{
			Name:        "pdf-extract",
			Aliases:     []string{"extract-pages"},
			Category:    CategoryPDF,
			Description: "Copy the selected pages into a new PDF",
			Usage:       "toolverse run pdf-extract --pdf report.pdf --pages 2,4-6",
			Schema: Schema{Parameters: []Parameter{
				pdfParam("Input PDF"),
				{Name: "pages", Type: TypeString, Required: true, Description: pageRangeHelp},
			}},
			Executor: ExecutorFunc(runPDFExtract),
		},
		{
			Name:        "pdf-merge",
			Aliases:     []string{"merge"},
			Category:    CategoryPDF,
			Description: "Concatenate PDFs in the order given",
			Usage:       "toolverse run pdf-merge --files a.pdf --files b.pdf",
			Schema: Schema{Parameters: []Parameter{
				{Name: "files", Type: TypeFile, Required: true, Multiple: true, Description: "Input PDFs, at least two"},
			}},
			Executor: ExecutorFunc(runPDFMerge),
		},
		{
			Name:        "pdf-rotate",
			Category:    CategoryPDF,
			Description: "Rotate pages clockwise by a multiple of 90 degrees",
			Schema: Schema{Parameters: []Parameter{
				pdfParam("Input PDF"),
				{Name: "degrees", Type: TypeInteger, Description: "Rotation in degrees (90, 180, 270, or negative)", Default: 90},
				{Name: "pages", Type: TypeString, Description: pageRangeHelp, Default: "all"},
			}},
			Executor: ExecutorFunc(runPDFRotate),
		},
		{
			Name:        "pdf-remove",
			Aliases:     []string{"delete-pages"},
			Category:    CategoryPDF,
			Description: "Delete the selected pages",
			Schema: Schema{Parameters: []Parameter{
				pdfParam("Input PDF"),
				{Name: "pages", Type: TypeString, Required: true, Description: pageRangeHelp},
			}},
			Executor: ExecutorFunc(runPDFRemove),
		},
		{
			Name:        "pdf-text",
			Aliases:     []string{"pdf-to-text"},
			Category:    CategoryPDF,
			Description: "Extract plain text from a PDF",
			Schema: Schema{Parameters: []Parameter{
				pdfParam("Input PDF"),
				{Name: "pages", Type: TypeString, Description: pageRangeHelp, Default: "all"},
			}},
			Executor: ExecutorFunc(runPDFText),
		},
		{
			Name:        "pdf-form-fields",
			Aliases:     []string{"form-fields"},
			Category:    CategoryPDF,
			Description: "List the fillable form fields of a PDF",
			Schema:      Schema{Parameters: []Parameter{pdfParam("Input PDF")}},
			Executor:    ExecutorFunc(runPDFFormFields),
		},
		{
			Name:        "pdf-form-fill",
			Aliases:     []string{"form-fill"},
			Category:    CategoryPDF,
			Description: "Fill form fields by name",
			Usage:       "toolverse run pdf-form-fill --pdf form.pdf --values name=Ada --values agree=yes",
			Schema: Schema{Parameters: []Parameter{
				pdfParam("PDF with an AcroForm"),
				{Name: "values", Type: TypeArray, Description: "Field values as name=value"},
				{Name: "json", Type: TypeString, Description: `Field values as a JSON object, e.g. {"name":"Ada"}`},
			}},
			Executor: ExecutorFunc(runPDFFormFill),
		},
		{
			Name:        "pdf-form-export",
			Aliases:     []string{"form-export"},
			Category:    CategoryPDF,
			Description: "Export form fields as JSON suitable for pdf-form-fill",
			Schema:      Schema{Parameters: []Parameter{pdfParam("PDF with an AcroForm")}},
			Executor:    ExecutorFunc(runPDFFormExport),
		},
	}
}

// =============================================================================
// EXECUTORS
// =============================================================================

func pdfArtifact(doc pdf.Document) Artifact {
	return Artifact{Name: doc.Name, ContentType: pdf.ContentType, Data: doc.Data}
}

func docLine(doc pdf.Document) string {
	return fmt.Sprintf("%s: %d page(s), %s", doc.Name, doc.Pages, util.FormatBytes(int64(len(doc.Data))))
}

func runPDFInfo(ctx context.Context, call Call) (Result, error) {
	f, _ := call.GetFile("pdf")
	info, err := pdf.Describe(f.Data)
	if err != nil {
		return Result{}, err
	}

	out := table{{"Pages", fmt.Sprint(info.Pages)}}
	if info.Title != "" {
		out = append(out, [2]string{"Title", info.Title})
	}
	if info.Author != "" {
		out = append(out, [2]string{"Author", info.Author})
	}
	if info.Producer != "" {
		out = append(out, [2]string{"Producer", info.Producer})
	}
	out = append(out, [2]string{"Size", util.FormatBytes(int64(info.Bytes))})
	if len(info.FormFields) > 0 {
		out = append(out, [2]string{"Form fields", strings.Join(info.FormFields, ", ")})
	}
	return textResult(out.String(), info), nil
}

func runPDFSplit(ctx context.Context, call Call) (Result, error) {
	f, _ := call.GetFile("pdf")
	expr := strings.TrimSpace(call.GetString("pages", ""))
	every := call.GetInt("every", 0)

	var docs []pdf.Document
	var err error
	switch {
	case expr != "" && every > 0:
		return Result{}, &ValidationError{Param: "pages", Message: "give either pages or every, not both"}
	case every > 0:
		docs, err = pdf.SplitEvery(f.Data, f.Name, every)
	case expr != "":
		docs, err = pdf.Split(f.Data, f.Name, expr)
	default:
		return Result{}, &ValidationError{Param: "pages", Message: "pages or every is required"}
	}
	if err != nil {
		return Result{}, err
	}

	lines := make([]string, 0, len(docs))
	result := Result{Data: docs}
	for _, d := range docs {
		lines = append(lines, docLine(d))
		result.Artifacts = append(result.Artifacts, pdfArtifact(d))
	}
	result.Output = fmt.Sprintf("Split into %d document(s)\n%s", len(docs), strings.Join(lines, "\n"))
	return result, nil
}

// single wraps operations that produce one document.
func single(op func(call Call, f File) (*pdf.Document, error)) ExecutorFunc {
	return func(ctx context.Context, call Call) (Result, error) {
		f, _ := call.GetFile("pdf")
		doc, err := op(call, f)
		if err != nil {
			return Result{}, err
		}
		return Result{Output: docLine(*doc), Data: doc, Artifacts: []Artifact{pdfArtifact(*doc)}}, nil
	}
}

var (
	runPDFExtract = single(func(call Call, f File) (*pdf.Document, error) {
		return pdf.Extract(f.Data, f.Name, call.GetString("pages", ""))
	})
	runPDFRotate = single(func(call Call, f File) (*pdf.Document, error) {
		return pdf.Rotate(f.Data, f.Name, call.GetInt("degrees", 90), call.GetString("pages", "all"))
	})
	runPDFRemove = single(func(call Call, f File) (*pdf.Document, error) {
		return pdf.Remove(f.Data, f.Name, call.GetString("pages", ""))
	})
)

func runPDFFormFill(ctx context.Context, call Call) (Result, error) {
	f, _ := call.GetFile("pdf")
	values, err := formValues(call)
	if err != nil {
		return Result{}, err
	}
	doc, err := pdf.FillForm(f.Data, f.Name, values)
	if err != nil {
		return Result{}, err
	}
	out := fmt.Sprintf("Filled %s\n%s", strings.Join(fieldNames(values), ", "), docLine(*doc))
	return Result{Output: out, Data: doc, Artifacts: []Artifact{pdfArtifact(*doc)}}, nil
}

func runPDFMerge(ctx context.Context, call Call) (Result, error) {
	files := call.GetFiles("files")
	if len(files) < 2 {
		return Result{}, &ValidationError{Param: "files", Message: "at least two PDFs are required"}
	}
	inputs := make([][]byte, len(files))
	for i, f := range files {
		inputs[i] = f.Data
	}
	doc, err := pdf.Merge(inputs)
	if err != nil {
		return Result{}, err
	}
	out := fmt.Sprintf("Merged %d files\n%s", len(files), docLine(*doc))
	return Result{Output: out, Data: doc, Artifacts: []Artifact{pdfArtifact(*doc)}}, nil
}

func runPDFText(ctx context.Context, call Call) (Result, error) {
	f, _ := call.GetFile("pdf")
	pages, err := pdf.ExtractText(f.Data, call.GetString("pages", "all"))
	if err != nil {
		return Result{}, err
	}
	return textResult(pdf.JoinText(pages), pages), nil
}

func runPDFFormFields(ctx context.Context, call Call) (Result, error) {
	f, _ := call.GetFile("pdf")
	fields, err := pdf.FormFields(f.Data)
	if err != nil {
		return Result{}, err
	}
	if len(fields) == 0 {
		return textResult("No form fields", fields), nil
	}
	out := make(table, len(fields))
	for i, field := range fields {
		value := field.Value
		if value == "" {
			value = "(empty)"
		}
		out[i] = [2]string{field.Name, fmt.Sprintf("%s  [%s]", value, field.Type)}
	}
	return textResult(out.String(), fields), nil
}

func runPDFFormExport(ctx context.Context, call Call) (Result, error) {
	f, _ := call.GetFile("pdf")
	data, err := pdf.ExportForm(f.Data, f.Name)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Output: string(data),
		Artifacts: []Artifact{{
			Name:        util.DerivedName(f.Name, "form", "json", "document"),
			ContentType: contentTypeJSON,
			Data:        data,
		}},
	}, nil
}

// formValues merges the json object with name=value pairs; pairs win.
func formValues(call Call) (map[string]string, error) {
	values := make(map[string]string)
	if raw := strings.TrimSpace(call.GetString("json", "")); raw != "" {
		var obj map[string]interface{}
		if err := json.Unmarshal([]byte(raw), &obj); err != nil {
			return nil, &ValidationError{Param: "json", Message: "must be a JSON object: " + err.Error()}
		}
		for k, v := range obj {
			switch v := v.(type) {
			case string:
				values[k] = v
			case bool:
				values[k] = fmt.Sprint(v)
			case float64:
				values[k] = fmt.Sprint(v)
			default:
				return nil, &ValidationError{Param: "json", Message: fmt.Sprintf("field %q must be a string, number or boolean", k)}
			}
		}
	}
	for _, item := range call.GetStrings("values") {
		name, value, ok := strings.Cut(item, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, &ValidationError{Param: "values", Message: fmt.Sprintf("%q must look like name=value", item)}
		}
		values[name] = value
	}
	if len(values) == 0 {
		return nil, &ValidationError{Param: "values", Message: "give field values with values or json"}
	}
	return values, nil
}

// fieldNames returns the sorted keys of a form value map.
func fieldNames(values map[string]string) []string {
	names := make([]string, 0, len(values))
	for k := range values {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
