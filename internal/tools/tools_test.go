// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/toolverse/internal/finance"
)

func run(t *testing.T, exec *Executor, call Call) (Result, error) {
	t.Helper()
	return exec.Execute(context.Background(), call)
}

// =============================================================================
// REGISTRY
// =============================================================================

func TestRegistry_Lookup(t *testing.T) {
	reg := NewRegistry()

	for _, name := range []string{"mortgage", "MORTGAGE", "home-loan", "home_loan", " tip "} {
		assert.NotNil(t, reg.Get(name), name)
	}
	assert.Equal(t, "dedup", reg.Get("uniq").Name)
	assert.Equal(t, "pdf-split", reg.Get("split").Name)
	assert.Nil(t, reg.Get("nonexistent"))
}

func TestRegistry_EveryCategoryPopulated(t *testing.T) {
	reg := NewRegistry()
	for _, c := range Categories {
		assert.NotEmpty(t, reg.ByCategory(c), c)
	}

	all := reg.All()
	require.Len(t, all, reg.Len())
	assert.Equal(t, CategoryFinance, all[0].Category)
	assert.Equal(t, CategoryPDF, all[len(all)-1].Category)

	for _, tool := range all {
		assert.NotEmpty(t, tool.Description, tool.Name)
		assert.NotNil(t, tool.Executor, tool.Name)
		for _, p := range tool.Schema.Parameters {
			if p.Required {
				assert.Nil(t, p.Default, "%s.%s is required and has a default", tool.Name, p.Name)
			}
		}
	}
}

func TestRegistry_NamesUnique(t *testing.T) {
	reg := NewRegistry()
	seen := make(map[string]bool)
	for _, tool := range reg.All() {
		for _, n := range append([]string{tool.Name}, tool.Aliases...) {
			assert.False(t, seen[n], "name %q registered twice", n)
			seen[n] = true
		}
	}
}

func TestCategoryTitle(t *testing.T) {
	assert.Equal(t, "Finance", CategoryFinance.Title())
	assert.Equal(t, "PDF", CategoryPDF.Title())
}

// =============================================================================
// ARGUMENT PARSING AND VALIDATION
// =============================================================================

func TestParseArgs(t *testing.T) {
	tool := NewRegistry().Get("tip")

	params, err := tool.ParseArgs(map[string]string{"bill": "84.5", "people": "3", "round_up": ""})
	require.NoError(t, err)
	assert.Equal(t, 84.5, params["bill"])
	assert.Equal(t, 3, params["people"])
	assert.Equal(t, true, params["round_up"])

	_, err = tool.ParseArgs(map[string]string{"bill": "lots"})
	assert.True(t, IsValidation(err))

	_, err = tool.ParseArgs(map[string]string{"people": "2.5"})
	assert.True(t, IsValidation(err))

	_, err = tool.ParseArgs(map[string]string{"tax": "5"})
	assert.True(t, IsValidation(err))
}

func TestParseArgs_ArraysAndFiles(t *testing.T) {
	reg := NewRegistry()

	params, err := reg.Get("budget").ParseArgs(map[string]string{"expenses": "rent=1500, food=600,"})
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"rent=1500", "food=600"}, params["expenses"])

	_, err = reg.Get("image-info").ParseArgs(map[string]string{"image": "photo.png"})
	assert.True(t, IsValidation(err))
}

func TestValidateCall(t *testing.T) {
	tool := NewRegistry().Get("tip")

	tests := []struct {
		name   string
		params map[string]interface{}
		param  string
	}{
		{"missing required", map[string]interface{}{}, "bill"},
		{"wrong type", map[string]interface{}{"bill": "ten"}, "bill"},
		{"below minimum", map[string]interface{}{"bill": -1.0}, "bill"},
		{"above maximum", map[string]interface{}{"bill": 10.0, "percent": 150.0}, "percent"},
		{"fractional integer", map[string]interface{}{"bill": 10.0, "people": 1.5}, "people"},
		{"unknown", map[string]interface{}{"bill": 10.0, "extra": 1}, "extra"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			call := Call{Name: "tip", Params: tt.params}
			err := ValidateCall(tool, &call)
			var v *ValidationError
			require.ErrorAs(t, err, &v)
			assert.Equal(t, tt.param, v.Param)
		})
	}
}

func TestValidateCall_FillsDefaultsAndNormalizes(t *testing.T) {
	tool := NewRegistry().Get("tip")
	call := Call{Params: map[string]interface{}{"bill": 50, "people": 2.0}}

	require.NoError(t, ValidateCall(tool, &call))
	assert.Equal(t, 50.0, call.Params["bill"])
	assert.Equal(t, 2, call.Params["people"])
	assert.Equal(t, 15.0, call.Params["percent"])
	assert.Equal(t, false, call.Params["round_up"])
}

func TestValidateCall_Enum(t *testing.T) {
	tool := NewRegistry().Get("reverse")
	call := Call{Params: map[string]interface{}{"text": "abc", "mode": "sideways"}}
	assert.True(t, IsValidation(ValidateCall(tool, &call)))
}

func TestValidateCall_Files(t *testing.T) {
	reg := NewRegistry()

	call := Call{Files: map[string]File{}}
	assert.True(t, IsValidation(ValidateCall(reg.Get("image-info"), &call)), "missing file")

	call = Call{Files: map[string]File{"image": {Name: "a.png"}}}
	assert.True(t, IsValidation(ValidateCall(reg.Get("image-info"), &call)), "empty file")

	call = Call{Files: map[string]File{
		"image":    {Name: "a.png", Data: []byte("x")},
		"image[1]": {Name: "b.png", Data: []byte("y")},
	}}
	assert.True(t, IsValidation(ValidateCall(reg.Get("image-info"), &call)), "single file param")

	call = Call{Files: map[string]File{
		"files":    {Name: "a.pdf", Data: []byte("x")},
		"files[1]": {Name: "b.pdf", Data: []byte("y")},
	}}
	require.NoError(t, ValidateCall(reg.Get("pdf-merge"), &call))
	assert.Len(t, call.GetFiles("files"), 2)

	call = Call{Files: map[string]File{"attachment": {Name: "a", Data: []byte("x")}}}
	assert.True(t, IsValidation(ValidateCall(reg.Get("tip"), &call)), "unexpected file")
}

func TestCallGetters(t *testing.T) {
	call := Call{Params: map[string]interface{}{
		"s": "x", "f": 2.5, "i": 3, "b": true,
		"list": []interface{}{"a", 1}, "csv": "p, q",
	}}
	assert.Equal(t, "x", call.GetString("s", ""))
	assert.Equal(t, "d", call.GetString("missing", "d"))
	assert.Equal(t, 2.5, call.GetFloat("f", 0))
	assert.Equal(t, 3.0, call.GetFloat("i", 0))
	assert.Equal(t, 3, call.GetInt("i", 0))
	assert.True(t, call.GetBool("b", false))
	assert.Equal(t, []string{"a", "1"}, call.GetStrings("list"))
	assert.Equal(t, []string{"p", "q"}, call.GetStrings("csv"))
	assert.Nil(t, call.GetStrings("missing"))
	assert.Equal(t, "files[2]", FileKey("files", 2))
}

// =============================================================================
// ERROR CLASSIFICATION
// =============================================================================

func TestClassify(t *testing.T) {
	assert.NoError(t, classify("x", nil))

	err := classify("mortgage", fmt.Errorf("%w: rate too high", finance.ErrInvalidInput))
	var v *ValidationError
	require.ErrorAs(t, err, &v)
	assert.Equal(t, "rate too high", v.Message)

	err = classify("x", errors.New("disk full"))
	var p *ProcessingError
	require.ErrorAs(t, err, &p)
	assert.Equal(t, "x", p.Tool)
	assert.Equal(t, "x failed: disk full", err.Error())

	err = classify("x", context.DeadlineExceeded)
	assert.True(t, IsProcessing(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	assert.Equal(t, StatusOK, StatusOf(nil))
	assert.Equal(t, StatusValidation, StatusOf(&ValidationError{}))
	assert.Equal(t, StatusProcessing, StatusOf(errors.New("boom")))
}

// =============================================================================
// EXECUTOR
// =============================================================================

func newTestRegistry(tools ...*Tool) *Registry {
	reg := NewEmptyRegistry()
	for _, t := range tools {
		reg.Register(t)
	}
	return reg
}

func TestExecute_UnknownTool(t *testing.T) {
	_, err := run(t, NewExecutor(NewRegistry()), Call{Name: "teleport"})
	assert.True(t, IsUnknownTool(err))
	assert.False(t, IsValidation(err))
}

func TestExecute_ProcessingErrorAndPanic(t *testing.T) {
	reg := newTestRegistry(
		&Tool{Name: "fail", Category: CategoryText, Executor: ExecutorFunc(func(ctx context.Context, call Call) (Result, error) {
			return Result{}, errors.New("backend unavailable")
		})},
		&Tool{Name: "explode", Category: CategoryText, Executor: ExecutorFunc(func(ctx context.Context, call Call) (Result, error) {
			panic("kaboom")
		})},
	)
	exec := NewExecutor(reg)

	_, err := run(t, exec, Call{Name: "fail"})
	assert.True(t, IsProcessing(err))
	assert.Contains(t, err.Error(), "backend unavailable")

	_, err = run(t, exec, Call{Name: "explode"})
	assert.True(t, IsProcessing(err))
	assert.Contains(t, err.Error(), "kaboom")
}

func TestExecute_Timeout(t *testing.T) {
	reg := newTestRegistry(&Tool{Name: "slow", Category: CategoryText, Executor: ExecutorFunc(func(ctx context.Context, call Call) (Result, error) {
		<-ctx.Done()
		time.Sleep(10 * time.Millisecond)
		return Result{}, ctx.Err()
	})})
	exec := NewExecutor(reg, WithTimeout(20*time.Millisecond))

	start := time.Now()
	_, err := run(t, exec, Call{Name: "slow"})
	assert.True(t, IsProcessing(err))
	assert.Contains(t, err.Error(), "timed out")
	assert.Less(t, time.Since(start), time.Second)
}

func TestExecute_RecordsHistory(t *testing.T) {
	var mu sync.Mutex
	var recorded []ExecutionRecord
	recorder := RecorderFunc(func(ctx context.Context, rec ExecutionRecord) error {
		mu.Lock()
		defer mu.Unlock()
		recorded = append(recorded, rec)
		return nil
	})
	exec := NewExecutor(NewRegistry(), WithRecorder(recorder))

	_, err := run(t, exec, Call{Name: "tip", Params: map[string]interface{}{"bill": 100.0}})
	require.NoError(t, err)
	_, err = run(t, exec, Call{Name: "tip", Params: map[string]interface{}{}})
	require.Error(t, err)
	_, err = run(t, exec, Call{Name: "reverse", Params: map[string]interface{}{"text": "abc"}})
	require.NoError(t, err)

	mu.Lock()
	require.Len(t, recorded, 3)
	assert.Equal(t, "tip", recorded[0].ToolName)
	assert.Equal(t, CategoryFinance, recorded[0].Category)
	assert.Equal(t, StatusOK, recorded[0].Status)
	assert.Equal(t, "Tip:    15.00", recorded[0].Summary)
	assert.Equal(t, StatusValidation, recorded[1].Status)
	assert.Contains(t, recorded[1].Message, "bill")
	mu.Unlock()

	assert.Len(t, exec.History(), 3)
	stats := exec.Stats()
	assert.Equal(t, 3, stats.TotalExecutions)
	assert.Equal(t, 2, stats.Succeeded)
	assert.Equal(t, 1, stats.Validation)
	require.Len(t, stats.ByTool, 2)
	assert.Equal(t, "reverse", stats.ByTool[0].Name)
	assert.Equal(t, ToolStats{Name: "tip", Runs: 2, Failures: 1, AvgDuration: stats.ByTool[1].AvgDuration}, stats.ByTool[1])

	exec.ClearHistory()
	assert.Empty(t, exec.History())
}

func TestExecute_RecorderFailureDoesNotFailRun(t *testing.T) {
	recorder := RecorderFunc(func(ctx context.Context, rec ExecutionRecord) error {
		return errors.New("database locked")
	})
	exec := NewExecutor(NewRegistry(), WithRecorder(recorder))
	_, err := run(t, exec, Call{Name: "reverse", Params: map[string]interface{}{"text": "abc"}})
	assert.NoError(t, err)
}

// =============================================================================
// BUILT-IN TOOLS
// =============================================================================

func TestBuiltin_Mortgage(t *testing.T) {
	exec := NewExecutor(NewRegistry())
	res, err := run(t, exec, Call{Name: "mortgage", Params: map[string]interface{}{
		"home_price": 300000.0, "down_payment": 60000.0, "rate": 6.5, "years": 30,
		"schedule": "csv",
	}})
	require.NoError(t, err)

	assert.Contains(t, res.Output, "1,516.96")
	assert.Contains(t, res.Output, "240,000.00")
	m, ok := res.Data.(*finance.MortgageResult)
	require.True(t, ok)
	assert.InDelta(t, 1516.96, m.MonthlyPI, 0.01)

	require.Len(t, res.Artifacts, 1)
	assert.Equal(t, "mortgage_schedule.csv", res.Artifacts[0].Name)
	assert.Equal(t, contentTypeCSV, res.Artifacts[0].ContentType)
	assert.NotZero(t, res.Artifacts[0].Size())
}

func TestBuiltin_MortgageDomainValidation(t *testing.T) {
	exec := NewExecutor(NewRegistry())
	_, err := run(t, exec, Call{Name: "mortgage", Params: map[string]interface{}{
		"home_price": 100000.0, "down_payment": 150000.0, "rate": 5.0,
	}})
	var v *ValidationError
	require.ErrorAs(t, err, &v)
	assert.Contains(t, v.Message, "less than home price")
}

func TestBuiltin_Budget(t *testing.T) {
	exec := NewExecutor(NewRegistry())
	res, err := run(t, exec, Call{Name: "budget", Params: map[string]interface{}{
		"income": 5000.0, "expenses": []string{"rent=1500", "food:600"},
	}})
	require.NoError(t, err)
	assert.Contains(t, res.Output, "rent")

	_, err = run(t, exec, Call{Name: "budget", Params: map[string]interface{}{
		"income": 5000.0, "expenses": []string{"rent"},
	}})
	assert.True(t, IsValidation(err))
}

func TestBuiltin_Text(t *testing.T) {
	exec := NewExecutor(NewRegistry())

	res, err := run(t, exec, Call{Name: "dedup", Params: map[string]interface{}{"text": "a\nb\na\nc"}})
	require.NoError(t, err)
	assert.Equal(t, "a\nb\nc", res.Output)

	res, err = run(t, exec, Call{Name: "reverse", Files: map[string]File{"input": {Name: "in.txt", Data: []byte("stressed")}}})
	require.NoError(t, err)
	assert.Equal(t, "desserts", res.Output)

	_, err = run(t, exec, Call{Name: "reverse"})
	assert.True(t, IsValidation(err), "no input")

	_, err = run(t, exec, Call{
		Name:   "reverse",
		Params: map[string]interface{}{"text": "x"},
		Files:  map[string]File{"input": {Name: "in.txt", Data: []byte("y")}},
	})
	assert.True(t, IsValidation(err), "both inputs")

	res, err = run(t, exec, Call{Name: "base64-encode", Params: map[string]interface{}{"text": "hello"}})
	require.NoError(t, err)
	assert.Equal(t, "aGVsbG8=", res.Output)
}

func TestBuiltin_Diff(t *testing.T) {
	exec := NewExecutor(NewRegistry())
	res, err := run(t, exec, Call{Name: "diff", Params: map[string]interface{}{
		"old": "a\nb\nc", "new": "a\nB\nc", "patch": true,
	}})
	require.NoError(t, err)
	assert.Contains(t, res.Output, "-b")
	assert.Contains(t, res.Output, "+B")
	require.Len(t, res.Artifacts, 1)
	assert.Equal(t, "text/x-diff", res.Artifacts[0].ContentType)
}

func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), A: 255})
		}
	}
	return img
}
