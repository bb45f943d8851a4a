// output.go - Machine-readable output for toolverse commands.
//
// Every command that supports --format json|yaml writes one Response. Human
// messages go to stderr in those modes so stdout stays parseable.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// OutputFormat selects how results are written.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatYAML OutputFormat = "yaml"
)

// OutputFormats lists the accepted --format values.
var OutputFormats = []string{string(FormatText), string(FormatJSON), string(FormatYAML)}

// ParseOutputFormat validates a --format value. Empty means text.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", ErrUnsupportedFormat(s, OutputFormats)
	}
}

// Response is the envelope written in json and yaml modes.
type Response struct {
	// Success indicates whether the command completed successfully
	Success bool `json:"success" yaml:"success"`

	// Command is the command or tool that ran
	Command string `json:"command,omitempty" yaml:"command,omitempty"`

	// Data contains the command-specific payload
	Data interface{} `json:"data,omitempty" yaml:"data,omitempty"`

	// Error is set when Success is false
	Error *ErrorInfo `json:"error,omitempty" yaml:"error,omitempty"`

	Timestamp string `json:"timestamp" yaml:"timestamp"`
}

// ErrorInfo describes a failure in a Response.
type ErrorInfo struct {
	Kind    string `json:"kind" yaml:"kind"`
	Message string `json:"message" yaml:"message"`
}

// NewResponse creates a successful response.
func NewResponse(command string, data interface{}) *Response {
	return &Response{
		Success:   true,
		Command:   command,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// NewErrorResponse creates a failed response.
func NewErrorResponse(command string, err error) *Response {
	return &Response{
		Success:   false,
		Command:   command,
		Error:     &ErrorInfo{Kind: errorKind(err), Message: err.Error()},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// Write encodes the response in format. Text falls back to JSON.
func (r *Response) Write(w io.Writer, format OutputFormat) error {
	return encode(w, format, r)
}

func encode(w io.Writer, format OutputFormat, v interface{}) error {
	if format == FormatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeData writes a command's payload: text via render, otherwise a
// Response envelope.
func writeData(w io.Writer, format OutputFormat, command string, data interface{}, render func(io.Writer) error) error {
	if format == FormatText {
		return render(w)
	}
	return NewResponse(command, data).Write(w, format)
}
