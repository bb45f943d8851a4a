// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jeranaias/toolverse/internal/util"
)

// =============================================================================
// EXECUTION RECORD
// =============================================================================

// ExecutionRecord tracks one tool execution.
type ExecutionRecord struct {
	ToolName string
	Category Category

	// Status is ok, validation or processing
	Status string

	// Message is the error text for failed runs
	Message string

	// Summary is the first line of the output, truncated
	Summary string

	Timestamp time.Time
	Duration  time.Duration
}

// Recorder persists execution records, e.g. to the history store.
type Recorder interface {
	Record(ctx context.Context, rec ExecutionRecord) error
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(ctx context.Context, rec ExecutionRecord) error

// Record calls f.
func (f RecorderFunc) Record(ctx context.Context, rec ExecutionRecord) error {
	return f(ctx, rec)
}

// =============================================================================
// EXECUTOR
// =============================================================================

const (
	// DefaultToolTimeout is applied when the context has no deadline.
	DefaultToolTimeout = 2 * time.Minute

	// MaxStringLength caps string parameters.
	MaxStringLength = 10 * 1024 * 1024

	// MaxFileSize caps each input file.
	MaxFileSize = 256 * 1024 * 1024

	maxHistorySize = 1000
	summaryLength  = 120
)

// Executor validates calls, runs tools and records the outcome.
type Executor struct {
	registry *Registry
	recorder Recorder
	logger   zerolog.Logger
	timeout  time.Duration

	history []ExecutionRecord
	mu      sync.Mutex
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithRecorder persists every run through r.
func WithRecorder(r Recorder) ExecutorOption {
	return func(e *Executor) { e.recorder = r }
}

// WithLogger sets the logger used for per-run log lines.
func WithLogger(l zerolog.Logger) ExecutorOption {
	return func(e *Executor) { e.logger = l }
}

// WithTimeout overrides DefaultToolTimeout.
func WithTimeout(d time.Duration) ExecutorOption {
	return func(e *Executor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// NewExecutor creates a new tool executor with the given registry.
func NewExecutor(registry *Registry, opts ...ExecutorOption) *Executor {
	e := &Executor{
		registry: registry,
		logger:   zerolog.Nop(),
		timeout:  DefaultToolTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry returns the tool registry.
func (e *Executor) Registry() *Registry {
	return e.registry
}

// History returns a copy of the in-memory execution history.
func (e *Executor) History() []ExecutionRecord {
	e.mu.Lock()
	defer e.mu.Unlock()

	result := make([]ExecutionRecord, len(e.history))
	copy(result, e.history)
	return result
}

// ClearHistory clears the in-memory execution history.
func (e *Executor) ClearHistory() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.history = nil
}

// =============================================================================
// EXECUTION
// =============================================================================

// Execute runs a tool call. The returned error is nil, a *ValidationError,
// a *ProcessingError, or wraps ErrUnknownTool.
func (e *Executor) Execute(ctx context.Context, call Call) (Result, error) {
	start := time.Now()

	tool := e.registry.Get(call.Name)
	if tool == nil {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownTool, call.Name)
	}
	if call.Params == nil {
		call.Params = make(map[string]interface{})
	}

	var result Result
	err := ValidateCall(tool, &call)
	if err == nil {
		result, err = e.run(ctx, tool, call)
		err = classify(tool.Name, err)
	}
	result.Duration = time.Since(start)

	e.finish(ctx, tool, start, result, err)
	return result, err
}

func (e *Executor) run(ctx context.Context, tool *Tool, call Call) (Result, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	type outcome struct {
		result Result
		err    error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		res, err := tool.Executor.Execute(ctx, call)
		done <- outcome{res, err}
	}()

	select {
	case o := <-done:
		return o.result, o.err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

func (e *Executor) finish(ctx context.Context, tool *Tool, start time.Time, result Result, err error) {
	rec := ExecutionRecord{
		ToolName:  tool.Name,
		Category:  tool.Category,
		Status:    StatusOf(err),
		Timestamp: start,
		Duration:  result.Duration,
	}
	if err != nil {
		rec.Message = err.Error()
	} else {
		rec.Summary = util.TruncateRunes(util.FirstLine(result.Output), summaryLength)
	}

	e.mu.Lock()
	if len(e.history) >= maxHistorySize {
		e.history = e.history[len(e.history)-maxHistorySize+1:]
	}
	e.history = append(e.history, rec)
	recorder := e.recorder
	e.mu.Unlock()

	event := e.logger.Info()
	if err != nil {
		event = e.logger.Warn().Str("error", rec.Message)
	}
	event.Str("tool", tool.Name).
		Str("category", string(tool.Category)).
		Int64("duration_ms", rec.Duration.Milliseconds()).
		Str("status", rec.Status).
		Int("artifacts", len(result.Artifacts)).
		Msg("tool run")

	if recorder != nil {
		// Record even when the caller's context is already cancelled.
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if rerr := recorder.Record(rctx, rec); rerr != nil {
			e.logger.Error().Err(rerr).Str("tool", tool.Name).Msg("failed to record run")
		}
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidateCall checks call against the tool's schema and fills defaults
// for absent optional parameters. It performs required checks, type
// checks, enum membership, numeric bounds and size limits.
func ValidateCall(tool *Tool, call *Call) error {
	if call.Params == nil {
		call.Params = make(map[string]interface{})
	}
	for name := range call.Params {
		if _, ok := tool.Schema.Param(name); !ok {
			return &ValidationError{Param: name, Message: "unknown parameter for " + tool.Name}
		}
	}
	for name := range call.Files {
		if _, ok := tool.Schema.Param(baseFileName(name)); !ok {
			return &ValidationError{Param: name, Message: "unexpected file for " + tool.Name}
		}
	}

	for _, param := range tool.Schema.Parameters {
		if param.Type == TypeFile {
			if err := validateFiles(param, call); err != nil {
				return err
			}
			continue
		}

		val, exists := call.Params[param.Name]
		if !exists || val == nil {
			if param.Required {
				return &ValidationError{Param: param.Name, Message: "required parameter is missing"}
			}
			if param.Default != nil {
				call.Params[param.Name] = param.Default
			}
			continue
		}

		norm, err := validateArg(param, val)
		if err != nil {
			return err
		}
		call.Params[param.Name] = norm
	}
	return nil
}

func baseFileName(key string) string {
	for i := 0; i < len(key); i++ {
		if key[i] == '[' {
			return key[:i]
		}
	}
	return key
}

func validateFiles(param Parameter, call *Call) error {
	files := call.GetFiles(param.Name)
	if len(files) == 0 {
		if param.Required {
			return &ValidationError{Param: param.Name, Message: "required file is missing"}
		}
		return nil
	}
	if len(files) > 1 && !param.Multiple {
		return &ValidationError{Param: param.Name, Message: "accepts a single file"}
	}
	for _, f := range files {
		if len(f.Data) == 0 {
			return &ValidationError{Param: param.Name, Message: fmt.Sprintf("file %q is empty", f.Name)}
		}
		if len(f.Data) > MaxFileSize {
			return &ValidationError{Param: param.Name, Message: fmt.Sprintf("file %q exceeds %s", f.Name, util.FormatBytes(MaxFileSize))}
		}
	}
	return nil
}

// validateArg checks one value and returns it in canonical form: numbers
// become float64, integers int, arrays []interface{}.
func validateArg(param Parameter, val interface{}) (interface{}, error) {
	switch param.Type {
	case TypeString:
		s, ok := val.(string)
		if !ok {
			return nil, &ValidationError{Param: param.Name, Message: "expected string"}
		}
		if len(s) > MaxStringLength {
			return nil, &ValidationError{Param: param.Name, Message: "string value exceeds maximum length"}
		}
		if len(param.Enum) > 0 && !inEnum(param.Enum, s) {
			return nil, &ValidationError{Param: param.Name, Message: fmt.Sprintf("must be one of %v", param.Enum)}
		}
		return s, nil

	case TypeNumber, TypeInteger:
		f, ok := toFloat(val)
		if !ok {
			return nil, &ValidationError{Param: param.Name, Message: "expected " + param.Type}
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, &ValidationError{Param: param.Name, Message: "must be a finite number"}
		}
		if param.Type == TypeInteger && f != math.Trunc(f) {
			return nil, &ValidationError{Param: param.Name, Message: "expected a whole number"}
		}
		if param.Min != nil && f < *param.Min {
			return nil, &ValidationError{Param: param.Name, Message: fmt.Sprintf("must be at least %g", *param.Min)}
		}
		if param.Max != nil && f > *param.Max {
			return nil, &ValidationError{Param: param.Name, Message: fmt.Sprintf("must be at most %g", *param.Max)}
		}
		if param.Type == TypeInteger {
			return int(f), nil
		}
		return f, nil

	case TypeBoolean:
		if _, ok := val.(bool); !ok {
			return nil, &ValidationError{Param: param.Name, Message: "expected boolean"}
		}
		return val, nil

	case TypeArray:
		switch v := val.(type) {
		case []interface{}:
			return v, nil
		case []string:
			out := make([]interface{}, len(v))
			for i, s := range v {
				out[i] = s
			}
			return out, nil
		}
		return nil, &ValidationError{Param: param.Name, Message: "expected array"}
	}
	return val, nil
}

func inEnum(enum []string, s string) bool {
	for _, e := range enum {
		if e == s {
			return true
		}
	}
	return false
}

// =============================================================================
// STATISTICS
// =============================================================================

// ExecutionStats summarizes in-memory history.
type ExecutionStats struct {
	TotalExecutions int
	Succeeded       int
	Validation      int
	Processing      int
	ByTool          []ToolStats
}

// ToolStats is the per-tool part of ExecutionStats.
type ToolStats struct {
	Name        string
	Runs        int
	Failures    int
	AvgDuration time.Duration
}

// Stats returns execution statistics from the in-memory history.
func (e *Executor) Stats() ExecutionStats {
	e.mu.Lock()
	defer e.mu.Unlock()

	var stats ExecutionStats
	perTool := make(map[string]*ToolStats)
	totals := make(map[string]time.Duration)
	for _, rec := range e.history {
		stats.TotalExecutions++
		switch rec.Status {
		case StatusOK:
			stats.Succeeded++
		case StatusValidation:
			stats.Validation++
		default:
			stats.Processing++
		}

		ts, ok := perTool[rec.ToolName]
		if !ok {
			ts = &ToolStats{Name: rec.ToolName}
			perTool[rec.ToolName] = ts
		}
		ts.Runs++
		if rec.Status != StatusOK {
			ts.Failures++
		}
		totals[rec.ToolName] += rec.Duration
	}

	for name, ts := range perTool {
		ts.AvgDuration = totals[name] / time.Duration(ts.Runs)
		stats.ByTool = append(stats.ByTool, *ts)
	}
	sort.Slice(stats.ByTool, func(i, j int) bool {
		return stats.ByTool[i].Name < stats.ByTool[j].Name
	})
	return stats
}
