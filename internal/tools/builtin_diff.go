// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"context"

	"github.com/jeranaias/toolverse/internal/diff"
	"github.com/jeranaias/toolverse/internal/util"
)

// =============================================================================
// DIFF TOOL
// =============================================================================

const contentTypePatch = "text/x-diff"

func diffTool() *Tool {
	return &Tool{
		Name:        "diff",
		Aliases:     []string{"compare"},
		Category:    CategoryText,
		Description: "Line-by-line comparison of two texts in unified format",
		Usage:       "toolverse run diff --old_file before.txt --new_file after.txt",
		Schema: Schema{Parameters: []Parameter{
			{Name: "old", Type: TypeString, Description: "Original text"},
			{Name: "new", Type: TypeString, Description: "Changed text"},
			{Name: "old_file", Type: TypeFile, Description: "Original file"},
			{Name: "new_file", Type: TypeFile, Description: "Changed file"},
			{Name: "ignore_whitespace", Type: TypeBoolean, Description: "Ignore changes in spacing", Default: false},
			{Name: "ignore_case", Type: TypeBoolean, Description: "Ignore letter case", Default: false},
			{Name: "context", Type: TypeInteger, Description: "Unchanged lines around each change", Default: diff.DefaultContext, Min: bound(0), Max: bound(100)},
			{Name: "patch", Type: TypeBoolean, Description: "Attach the unified diff as a .patch file", Default: false},
		}},
		Executor: ExecutorFunc(runDiff),
	}
}

// diffSide reads one side of the comparison from its text or file parameter.
func diffSide(call Call, param string) (content, name string, err error) {
	f, hasFile := call.GetFile(param + "_file")
	s, hasText := call.Params[param].(string)
	switch {
	case hasFile && hasText:
		return "", "", &ValidationError{Param: param, Message: "give either " + param + " or " + param + "_file, not both"}
	case hasFile:
		return string(f.Data), f.Name, nil
	case hasText:
		return s, "", nil
	}
	return "", "", &ValidationError{Param: param, Message: "required parameter is missing"}
}

func runDiff(ctx context.Context, call Call) (Result, error) {
	oldText, oldName, err := diffSide(call, "old")
	if err != nil {
		return Result{}, err
	}
	newText, newName, err := diffSide(call, "new")
	if err != nil {
		return Result{}, err
	}

	name := newName
	if name == "" {
		name = oldName
	}
	d := diff.ComputeWithOptions(name, oldText, newText, diff.Options{
		IgnoreWhitespace: call.GetBool("ignore_whitespace", false),
		IgnoreCase:       call.GetBool("ignore_case", false),
		Context:          call.GetInt("context", diff.DefaultContext),
	})

	out := d.Summary()
	if !d.Equal() {
		out = d.Summary() + "\n" + d.Format()
	}

	result := Result{Output: out, Data: d}
	if call.GetBool("patch", false) && !d.Equal() {
		result.Artifacts = append(result.Artifacts, Artifact{
			Name:        util.DerivedName(name, "", "patch", "changes"),
			ContentType: contentTypePatch,
			Data:        []byte(d.Format()),
		})
	}
	return result, nil
}
