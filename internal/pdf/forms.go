// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package pdf

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	lpdf "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/jeranaias/toolverse/internal/util"
)

// Field is one AcroForm field.
type Field struct {
	Name  string `json:"name" yaml:"name"`
	Type  string `json:"type" yaml:"type"` // text, checkbox, choice, signature, button
	Value string `json:"value" yaml:"value"`
}

// FormFields lists the terminal fields of the document's AcroForm with
// their fully qualified names. Documents without a form return an empty
// list.
func FormFields(data []byte) ([]Field, error) {
	r, err := open(data)
	if err != nil {
		return nil, err
	}
	return fieldsOf(r), nil
}

func fieldsOf(r *lpdf.Reader) []Field {
	fields := []Field{}
	root := r.Trailer().Key("Root").Key("AcroForm").Key("Fields")
	for i := 0; i < root.Len(); i++ {
		walkField(root.Index(i), "", "", &fields)
	}
	return fields
}

// walkField descends /Kids, inheriting the partial name and /FT.
func walkField(v lpdf.Value, prefix, ft string, out *[]Field) {
	name := v.Key("T").Text()
	if prefix != "" && name != "" {
		name = prefix + "." + name
	} else if name == "" {
		name = prefix
	}
	if t := v.Key("FT").Name(); t != "" {
		ft = t
	}

	kids := v.Key("Kids")
	named := 0
	for i := 0; i < kids.Len(); i++ {
		if !kids.Index(i).Key("T").IsNull() {
			named++
		}
	}
	if named > 0 {
		for i := 0; i < kids.Len(); i++ {
			walkField(kids.Index(i), name, ft, out)
		}
		return
	}
	if name == "" {
		return
	}
	*out = append(*out, Field{Name: name, Type: fieldType(ft), Value: fieldValue(v.Key("V"))})
}

func fieldType(ft string) string {
	switch ft {
	case "Tx":
		return "text"
	case "Btn":
		return "button"
	case "Ch":
		return "choice"
	case "Sig":
		return "signature"
	}
	return "unknown"
}

func fieldValue(v lpdf.Value) string {
	switch v.Kind() {
	case lpdf.String:
		return v.Text()
	case lpdf.Name:
		return v.Name()
	case lpdf.Array:
		parts := make([]string, 0, v.Len())
		for i := 0; i < v.Len(); i++ {
			parts = append(parts, fieldValue(v.Index(i)))
		}
		return strings.Join(parts, ", ")
	case lpdf.Integer, lpdf.Real, lpdf.Bool:
		return v.String()
	}
	return ""
}

// =============================================================================
// EXPORT / FILL
// =============================================================================

// ExportForm returns pdfcpu's JSON description of the form, which FillForm
// and the pdfcpu CLI both accept.
func ExportForm(data []byte, name string) ([]byte, error) {
	if err := requireForm(data); err != nil {
		return nil, err
	}
	return run("export form", func(w io.Writer) error {
		return api.ExportFormJSON(bytes.NewReader(data), w, name, newConfig())
	})
}

// FillForm sets field values by name (or pdfcpu field id) and returns the
// filled document. Checkbox values accept true/false, yes/no, on/off and 1/0.
// Unknown field names are rejected before anything is written.
func FillForm(data []byte, name string, values map[string]string) (*Document, error) {
	if len(values) == 0 {
		return nil, invalid("no field values given")
	}
	exported, err := ExportForm(data, name)
	if err != nil {
		return nil, err
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(exported, &doc); err != nil {
		return nil, fmt.Errorf("reading exported form: %w", err)
	}
	applied := applyValues(doc, values)

	var unknown []string
	for k := range values {
		if !applied[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, invalid("unknown form field(s): %s", strings.Join(unknown, ", "))
	}

	filled, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	out, err := run("fill form", func(w io.Writer) error {
		return api.FillForm(bytes.NewReader(data), bytes.NewReader(filled), w, newConfig())
	})
	if err != nil {
		return nil, err
	}
	pages, err := PageCount(out)
	if err != nil {
		return nil, err
	}
	return &Document{Name: FilledName(name), Pages: pages, Data: out}, nil
}

// FilledName names the output of FillForm.
func FilledName(input string) string {
	return util.DerivedName(input, "filled", "pdf", "document")
}

func requireForm(data []byte) error {
	fields, err := FormFields(data)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return invalid("document has no form fields")
	}
	return nil
}

// applyValues walks pdfcpu's export structure ({"forms": [{"textfield":
// [...], "checkbox": [...], ...}]}) and sets "value" on matching entries.
// It returns which requested keys matched at least one field.
func applyValues(doc map[string]interface{}, values map[string]string) map[string]bool {
	applied := make(map[string]bool)
	forms, _ := doc["forms"].([]interface{})
	for _, f := range forms {
		group, _ := f.(map[string]interface{})
		for kind, list := range group {
			entries, _ := list.([]interface{})
			for _, e := range entries {
				field, _ := e.(map[string]interface{})
				if field == nil {
					continue
				}
				for _, key := range []string{stringOf(field["name"]), stringOf(field["id"])} {
					v, ok := values[key]
					if key == "" || !ok {
						continue
					}
					setValue(field, kind, v)
					applied[key] = true
					break
				}
			}
		}
	}
	return applied
}

func setValue(field map[string]interface{}, kind, v string) {
	switch kind {
	case "checkbox":
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "yes", "on", "1", "x":
			field["value"] = true
		default:
			field["value"] = false
		}
	case "listbox":
		var vals []interface{}
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				vals = append(vals, s)
			}
		}
		field["values"] = vals
	default:
		field["value"] = v
	}
}

func stringOf(v interface{}) string {
	s, _ := v.(string)
	return s
}
