// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jeranaias/toolverse/internal/text"
)

// =============================================================================
// TEXT INPUT
// =============================================================================

// textParams are shared by every tool that transforms a block of text:
// the text comes from the text parameter or from an input file.
var textParams = []Parameter{
	{Name: "text", Type: TypeString, Description: "Input text"},
	{Name: "input", Type: TypeFile, Description: "Read the input text from a file instead"},
}

func withText(params ...Parameter) []Parameter {
	out := make([]Parameter, 0, len(textParams)+len(params))
	out = append(out, textParams...)
	return append(out, params...)
}

// inputText returns the text parameter, or the input file decoded as UTF-8.
func inputText(call Call) (string, string, error) {
	if f, ok := call.GetFile("input"); ok {
		if _, set := call.Params["text"]; set {
			return "", "", &ValidationError{Param: "text", Message: "give either text or an input file, not both"}
		}
		return string(f.Data), f.Name, nil
	}
	if s, ok := call.Params["text"].(string); ok {
		return s, "", nil
	}
	return "", "", &ValidationError{Param: "text", Message: "required parameter is missing"}
}

// transform wraps a string-to-string function as a text tool executor.
func transform(fn func(s string, call Call) (string, error)) ToolExecutor {
	return ExecutorFunc(func(ctx context.Context, call Call) (Result, error) {
		s, _, err := inputText(call)
		if err != nil {
			return Result{}, err
		}
		out, err := fn(s, call)
		if err != nil {
			return Result{}, err
		}
		return Result{Output: out}, nil
	})
}

// =============================================================================
// TEXT TOOLS
// =============================================================================

func textTools() []*Tool {
	return []*Tool{
		{
			Name:        "reverse",
			Category:    CategoryText,
			Description: "Reverse characters, word order or line order",
			Usage:       `toolverse run reverse --text "hello world" --mode words`,
			Schema: Schema{Parameters: withText(
				Parameter{Name: "mode", Type: TypeString, Description: "What to reverse", Default: string(text.ReverseChars), Enum: []string{"chars", "words", "lines"}},
			)},
			Executor: transform(func(s string, call Call) (string, error) {
				mode, err := text.ParseReverseMode(call.GetString("mode", "chars"))
				if err != nil {
					return "", err
				}
				return text.Reverse(s, mode)
			}),
		},
		{
			Name:        "dedup",
			Aliases:     []string{"remove-duplicates", "uniq"},
			Category:    CategoryText,
			Description: "Remove duplicate lines",
			Usage:       "toolverse run dedup --input names.txt --case_sensitive=false",
			Schema: Schema{Parameters: withText(
				Parameter{Name: "case_sensitive", Type: TypeBoolean, Description: "Treat differently cased lines as distinct", Default: true},
				Parameter{Name: "keep_order", Type: TypeBoolean, Description: "Keep first-seen order instead of sorting", Default: true},
				Parameter{Name: "trim", Type: TypeBoolean, Description: "Trim surrounding whitespace before comparing", Default: true},
				Parameter{Name: "remove_empty", Type: TypeBoolean, Description: "Drop blank lines", Default: false},
			)},
			Executor: ExecutorFunc(runDedup),
		},
		{
			Name:        "html-encode",
			Category:    CategoryText,
			Description: "Escape HTML special characters as entities",
			Schema: Schema{Parameters: withText(
				Parameter{Name: "non_ascii", Type: TypeBoolean, Description: "Also encode non-ASCII characters as numeric entities", Default: false},
			)},
			Executor: transform(func(s string, call Call) (string, error) {
				return text.HTMLEncode(s, call.GetBool("non_ascii", false)), nil
			}),
		},
		{
			Name:        "html-decode",
			Category:    CategoryText,
			Description: "Decode HTML entities",
			Schema:      Schema{Parameters: withText()},
			Executor: transform(func(s string, call Call) (string, error) {
				return text.HTMLDecode(s), nil
			}),
		},
		{
			Name:        "url-encode",
			Category:    CategoryText,
			Description: "Percent-encode text for URLs",
			Schema: Schema{Parameters: withText(
				Parameter{Name: "component", Type: TypeBoolean, Description: "Encode as a URI component (spaces become %20)", Default: true},
			)},
			Executor: transform(func(s string, call Call) (string, error) {
				return text.URLEncode(s, call.GetBool("component", true)), nil
			}),
		},
		{
			Name:        "url-decode",
			Category:    CategoryText,
			Description: "Decode percent-encoded text",
			Schema: Schema{Parameters: withText(
				Parameter{Name: "component", Type: TypeBoolean, Description: "Decode as a URI component (plus signs stay literal)", Default: true},
			)},
			Executor: transform(func(s string, call Call) (string, error) {
				return text.URLDecode(s, call.GetBool("component", true))
			}),
		},
		{
			Name:        "base64-encode",
			Category:    CategoryText,
			Description: "Encode text as base64",
			Schema: Schema{Parameters: withText(
				Parameter{Name: "url_safe", Type: TypeBoolean, Description: "Use the URL-safe alphabet", Default: false},
			)},
			Executor: transform(func(s string, call Call) (string, error) {
				return text.Base64Encode(s, call.GetBool("url_safe", false)), nil
			}),
		},
		{
			Name:        "base64-decode",
			Category:    CategoryText,
			Description: "Decode base64 text",
			Schema:      Schema{Parameters: withText()},
			Executor: transform(func(s string, call Call) (string, error) {
				return text.Base64Decode(s)
			}),
		},
		{
			Name:        "json-format",
			Aliases:     []string{"json"},
			Category:    CategoryText,
			Description: "Pretty-print JSON",
			Schema: Schema{Parameters: withText(
				Parameter{Name: "indent", Type: TypeInteger, Description: "Spaces per level (0 for tabs)", Default: 2, Min: bound(0), Max: bound(8)},
				Parameter{Name: "sort_keys", Type: TypeBoolean, Description: "Sort object keys", Default: false},
			)},
			Executor: transform(func(s string, call Call) (string, error) {
				indent := "\t"
				if n := call.GetInt("indent", 2); n > 0 {
					indent = strings.Repeat(" ", n)
				}
				return text.FormatJSON(s, indent, call.GetBool("sort_keys", false))
			}),
		},
		{
			Name:        "json-minify",
			Category:    CategoryText,
			Description: "Remove whitespace from JSON",
			Schema:      Schema{Parameters: withText()},
			Executor: transform(func(s string, call Call) (string, error) {
				return text.MinifyJSON(s)
			}),
		},
		{
			Name:        "json-validate",
			Category:    CategoryText,
			Description: "Check JSON syntax and locate the first error",
			Schema:      Schema{Parameters: withText()},
			Executor:    ExecutorFunc(runValidateJSON),
		},
		{
			Name:        "password",
			Aliases:     []string{"password-generator"},
			Category:    CategoryText,
			Description: "Generate a random password",
			Usage:       "toolverse run password --length 24 --symbols=false",
			Schema: Schema{Parameters: []Parameter{
				{Name: "length", Type: TypeInteger, Description: "Password length", Default: 16, Min: bound(text.MinPasswordLength), Max: bound(text.MaxPasswordLength)},
				{Name: "upper", Type: TypeBoolean, Description: "Include upper-case letters", Default: true},
				{Name: "lower", Type: TypeBoolean, Description: "Include lower-case letters", Default: true},
				{Name: "digits", Type: TypeBoolean, Description: "Include digits", Default: true},
				{Name: "symbols", Type: TypeBoolean, Description: "Include symbols", Default: true},
				{Name: "exclude_ambiguous", Type: TypeBoolean, Description: "Skip look-alike characters such as l, 1, O and 0", Default: false},
				{Name: "count", Type: TypeInteger, Description: "How many passwords to generate", Default: 1, Min: bound(1), Max: bound(100)},
			}},
			Executor: ExecutorFunc(runPassword),
		},
		{
			Name:        "case",
			Aliases:     []string{"case-convert"},
			Category:    CategoryText,
			Description: "Convert text between letter cases",
			Schema: Schema{Parameters: withText(
				Parameter{Name: "style", Type: TypeString, Required: true, Description: "Target case", Enum: text.CaseStyles},
			)},
			Executor: transform(func(s string, call Call) (string, error) {
				return text.ConvertCase(s, call.GetString("style", ""))
			}),
		},
		{
			Name:        "hash",
			Category:    CategoryText,
			Description: "Hex digest of text",
			Schema: Schema{Parameters: withText(
				Parameter{Name: "algorithm", Type: TypeString, Description: "Digest algorithm", Default: "sha256", Enum: text.HashAlgorithms()},
			)},
			Executor: transform(func(s string, call Call) (string, error) {
				return text.Hash(s, call.GetString("algorithm", "sha256"))
			}),
		},
		{
			Name:        "bcrypt",
			Category:    CategoryText,
			Description: "Hash a password with bcrypt or check one against a hash",
			Schema: Schema{Parameters: []Parameter{
				{Name: "password", Type: TypeString, Required: true, Description: "Password to hash or check"},
				{Name: "hash", Type: TypeString, Description: "Existing hash to compare against"},
				{Name: "cost", Type: TypeInteger, Description: "Work factor", Default: 10, Min: bound(4), Max: bound(text.MaxBcryptCost)},
			}},
			Executor: ExecutorFunc(runBcrypt),
		},
		{
			Name:        "text-stats",
			Aliases:     []string{"word-count", "wc"},
			Category:    CategoryText,
			Description: "Count characters, words, lines and reading time",
			Schema:      Schema{Parameters: withText()},
			Executor:    ExecutorFunc(runTextStats),
		},
		{
			Name:        "highlight",
			Category:    CategoryText,
			Description: "Syntax-highlight code for the terminal",
			Schema: Schema{Parameters: withText(
				Parameter{Name: "language", Type: TypeString, Description: "Lexer name; guessed from the file name when empty"},
				Parameter{Name: "style", Type: TypeString, Description: "Colour style", Default: "monokai"},
			)},
			Executor: ExecutorFunc(runHighlight),
		},
		diffTool(),
	}
}

// =============================================================================
// EXECUTORS
// =============================================================================

func runDedup(ctx context.Context, call Call) (Result, error) {
	s, _, err := inputText(call)
	if err != nil {
		return Result{}, err
	}
	res := text.Dedup(s, text.DedupOptions{
		CaseSensitive: call.GetBool("case_sensitive", true),
		KeepOrder:     call.GetBool("keep_order", true),
		TrimLines:     call.GetBool("trim", true),
		RemoveEmpty:   call.GetBool("remove_empty", false),
	})
	return Result{Output: res.Text, Data: res}, nil
}

func runValidateJSON(ctx context.Context, call Call) (Result, error) {
	s, _, err := inputText(call)
	if err != nil {
		return Result{}, err
	}
	v := text.ValidateJSON(s)
	if v.Valid {
		return Result{Output: "Valid JSON", Data: v}, nil
	}
	out := "Invalid JSON: " + v.Message
	if v.Line > 0 {
		out = fmt.Sprintf("Invalid JSON at line %d, column %d: %s", v.Line, v.Column, v.Message)
	}
	return Result{Output: out, Data: v}, nil
}

func runPassword(ctx context.Context, call Call) (Result, error) {
	opts := text.PasswordOptions{
		Length:           call.GetInt("length", 16),
		Upper:            call.GetBool("upper", true),
		Lower:            call.GetBool("lower", true),
		Digits:           call.GetBool("digits", true),
		Symbols:          call.GetBool("symbols", true),
		ExcludeAmbiguous: call.GetBool("exclude_ambiguous", false),
	}
	count := call.GetInt("count", 1)

	passwords := make([]string, 0, count)
	for i := 0; i < count; i++ {
		pw, err := text.GeneratePassword(opts)
		if err != nil {
			return Result{}, err
		}
		passwords = append(passwords, pw)
	}

	strength := text.Strength(passwords[0])
	data := struct {
		Passwords []string              `json:"passwords" yaml:"passwords"`
		Strength  text.PasswordStrength `json:"strength" yaml:"strength"`
	}{passwords, strength}
	return Result{Output: strings.Join(passwords, "\n"), Data: data}, nil
}

func runBcrypt(ctx context.Context, call Call) (Result, error) {
	password := call.GetString("password", "")
	if hashed := call.GetString("hash", ""); hashed != "" {
		ok, err := text.BcryptCompare(hashed, password)
		if err != nil {
			return Result{}, err
		}
		out := "Password does not match"
		if ok {
			out = "Password matches"
		}
		return Result{Output: out, Data: map[string]bool{"match": ok}}, nil
	}
	hashed, err := text.BcryptHash(password, call.GetInt("cost", 10))
	if err != nil {
		return Result{}, err
	}
	return Result{Output: hashed}, nil
}

func runTextStats(ctx context.Context, call Call) (Result, error) {
	s, _, err := inputText(call)
	if err != nil {
		return Result{}, err
	}
	st := text.Stats(s)
	rows := table{
		{"Characters", strconv.Itoa(st.Characters)},
		{"Without spaces", strconv.Itoa(st.CharactersNoSpace)},
		{"Bytes", strconv.Itoa(st.Bytes)},
		{"Words", strconv.Itoa(st.Words)},
		{"Lines", strconv.Itoa(st.Lines)},
		{"Sentences", strconv.Itoa(st.Sentences)},
		{"Paragraphs", strconv.Itoa(st.Paragraphs)},
		{"Reading time", fmt.Sprintf("%.1f min", st.ReadingMinutes)},
	}
	return Result{Output: rows.String(), Data: st}, nil
}

func runHighlight(ctx context.Context, call Call) (Result, error) {
	s, name, err := inputText(call)
	if err != nil {
		return Result{}, err
	}
	lang := call.GetString("language", "")
	if lang == "" && name != "" {
		lang = name
	}
	return Result{Output: text.Highlight(s, lang, call.GetString("style", "monokai"))}, nil
}
