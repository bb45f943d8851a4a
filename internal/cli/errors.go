// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Error types and exit codes for toolverse commands.
//
// Handlers always return errors and never print and swallow them. main
// renders the error once and exits with GetExitCode.

package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/jeranaias/toolverse/internal/config"
	"github.com/jeranaias/toolverse/internal/history"
	"github.com/jeranaias/toolverse/internal/tools"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError covers processing failures and anything unclassified
	ExitGeneralError = 1
	// ExitUsageError indicates invalid usage or invalid tool input
	ExitUsageError = 2
	// ExitConfigError indicates a configuration file or settings error
	ExitConfigError = 3
	// ExitNotFoundError indicates an unknown tool, history entry or file
	ExitNotFoundError = 7
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// CommandError represents a CLI command error with context.
type CommandError struct {
	Command string // Command that failed (e.g., "history", "serve")
	Action  string // Action being performed (e.g., "clear", "listen")
	Reason  string // Human-readable reason
	Err     error  // Underlying error (if any)
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %s: %v", e.Command, e.Action, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Command, e.Action, e.Reason)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ValidationError represents invalid command-line usage.
type ValidationError struct {
	Field   string // Field that failed validation
	Value   string // Value that was provided
	Reason  string // Why validation failed
	Example string // Example of valid value (optional)
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	if e.Value != "" {
		msg += fmt.Sprintf(" (got: %s)", e.Value)
	}
	if e.Example != "" {
		msg += fmt.Sprintf("\nExample: %s", e.Example)
	}
	return msg
}

// NotFoundError represents a resource not found error.
type NotFoundError struct {
	Resource   string // Type of resource (e.g., "tool", "file")
	ID         string // Identifier that was not found
	Suggestion string // Closest known identifier, if any
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", e.Suggestion)
	}
	return msg
}

// ConfigError wraps a failure to load, validate or save configuration.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	return "config: " + e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// =============================================================================
// ERROR CONSTRUCTION HELPERS
// =============================================================================

// NewCommandError creates a new command error.
func NewCommandError(command, action, reason string, err error) error {
	return &CommandError{Command: command, Action: action, Reason: reason, Err: err}
}

// NewValidationError creates a new validation error.
func NewValidationError(field, value, reason string) error {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}

// ErrMissingArgument creates an error for missing required arguments.
func ErrMissingArgument(argName, usage string) error {
	return &ValidationError{Field: argName, Reason: "required argument missing", Example: usage}
}

// ErrUnsupportedFormat creates an error for unsupported output formats.
func ErrUnsupportedFormat(format string, supported []string) error {
	return &ValidationError{
		Field:   "format",
		Value:   format,
		Reason:  "unsupported format",
		Example: fmt.Sprintf("supported formats: %v", supported),
	}
}

// ErrNotFound creates a not found error.
func ErrNotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// =============================================================================
// CLASSIFICATION
// =============================================================================

// GetExitCode maps an error to the process exit code:
//   - ExitUsageError (2): bad usage or tool input validation
//   - ExitConfigError (3): configuration errors
//   - ExitNotFoundError (7): unknown tools, history entries, files
//   - ExitGeneralError (1): processing failures and everything else
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var usage *ValidationError
	var notFound *NotFoundError
	var cfgErr *ConfigError
	var cfgInvalid config.ValidateErrors
	var tty *TTYRequiredError
	switch {
	case errors.As(err, &usage), errors.As(err, &tty), tools.IsValidation(err):
		return ExitUsageError
	case errors.As(err, &cfgErr), errors.As(err, &cfgInvalid):
		return ExitConfigError
	case errors.As(err, &notFound), tools.IsUnknownTool(err), errors.Is(err, history.ErrNotFound):
		return ExitNotFoundError
	}
	return ExitGeneralError
}

// errorKind names an error class for JSON output.
func errorKind(err error) string {
	switch GetExitCode(err) {
	case ExitUsageError:
		if tools.IsValidation(err) {
			return tools.StatusValidation
		}
		return "usage"
	case ExitConfigError:
		return "config"
	case ExitNotFoundError:
		return "not_found"
	}
	if tools.IsProcessing(err) {
		return tools.StatusProcessing
	}
	return "error"
}

// DisplayError writes err to w in the given output format.
func DisplayError(w io.Writer, err error, format OutputFormat) {
	if err == nil {
		return
	}
	if format != FormatText {
		resp := NewErrorResponse("", err)
		resp.Write(w, format)
		return
	}
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("Error:"), err.Error())

	var usage *ValidationError
	if errors.As(err, &usage) {
		return
	}
	var v *tools.ValidationError
	if errors.As(err, &v) && v.Param != "" {
		fmt.Fprintln(w, DimStyle.Render("  parameter: "+v.Param))
	}
}
