// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jeranaias/toolverse/internal/audio"
	"github.com/jeranaias/toolverse/internal/finance"
	"github.com/jeranaias/toolverse/internal/imaging"
	"github.com/jeranaias/toolverse/internal/pdf"
	"github.com/jeranaias/toolverse/internal/text"
)

// ErrUnknownTool is returned when a call names no registered tool.
var ErrUnknownTool = errors.New("unknown tool")

// ValidationError is an input problem. Nothing was processed.
type ValidationError struct {
	Param   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Param == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Param, e.Message)
}

// ProcessingError is a failure inside a tool after its inputs were accepted.
type ProcessingError struct {
	Tool string
	Err  error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Tool, e.Err)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsProcessing reports whether err is a processing error.
func IsProcessing(err error) bool {
	var p *ProcessingError
	return errors.As(err, &p)
}

// IsUnknownTool reports whether err came from looking up a missing tool.
func IsUnknownTool(err error) bool {
	return errors.Is(err, ErrUnknownTool)
}

// Status values recorded for each run.
const (
	StatusOK         = "ok"
	StatusValidation = "validation"
	StatusProcessing = "processing"
)

// StatusOf maps an Execute error to its status.
func StatusOf(err error) string {
	switch {
	case err == nil:
		return StatusOK
	case IsValidation(err):
		return StatusValidation
	default:
		return StatusProcessing
	}
}

// invalidInputs are the sentinels domain packages wrap for bad input.
var invalidInputs = []error{
	finance.ErrInvalidInput,
	text.ErrInvalidInput,
	imaging.ErrInvalidInput,
	audio.ErrInvalidInput,
	pdf.ErrInvalidInput,
}

// classify turns a tool's error into exactly one of the two categories.
func classify(tool string, err error) error {
	if err == nil {
		return nil
	}
	var v *ValidationError
	if errors.As(err, &v) {
		return v
	}
	var p *ProcessingError
	if errors.As(err, &p) {
		return p
	}
	for _, sentinel := range invalidInputs {
		if errors.Is(err, sentinel) {
			return &ValidationError{Message: strings.TrimPrefix(err.Error(), sentinel.Error()+": ")}
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &ProcessingError{Tool: tool, Err: fmt.Errorf("timed out: %w", err)}
	}
	return &ProcessingError{Tool: tool, Err: err}
}
