// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/toolverse/internal/tools"
)

func openTemp(t *testing.T, limit int) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"), limit)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func mustRecord(t *testing.T, s *Store, e Entry) Entry {
	t.Helper()
	got, err := s.Record(context.Background(), e)
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	return got
}

// =============================================================================
// STORE TESTS
// =============================================================================

func TestOpen_CreatesDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")
	store, err := Open(path, 0)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(path); err != nil {
		t.Errorf("Database file not created: %v", err)
	}
	if store.limit != DefaultLimit {
		t.Errorf("limit = %d, want %d", store.limit, DefaultLimit)
	}
	if store.Path() != path {
		t.Errorf("Path = %q", store.Path())
	}
}

func TestOpen_EmptyPath(t *testing.T) {
	if _, err := Open("", 10); err == nil {
		t.Error("Expected error for empty path")
	}
}

func TestRecordAndGet(t *testing.T) {
	store := openTemp(t, 10)
	ctx := context.Background()

	e := mustRecord(t, store, Entry{
		Tool:     "mortgage",
		Category: "finance",
		Summary:  "Loan amount: 240,000.00",
		Duration: 42 * time.Millisecond,
	})
	if e.ID == "" {
		t.Fatal("Expected generated ID")
	}
	if e.Status != tools.StatusOK {
		t.Errorf("Status = %q, want ok", e.Status)
	}

	got, err := store.Get(ctx, e.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Tool != "mortgage" || got.Category != "finance" || got.Summary != e.Summary {
		t.Errorf("Get returned %+v", got)
	}
	if got.Duration != 42*time.Millisecond {
		t.Errorf("Duration = %v", got.Duration)
	}
	if !got.CreatedAt.Equal(e.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, e.CreatedAt)
	}
	if !got.Succeeded() {
		t.Error("Expected Succeeded")
	}
}

func TestGet_Prefix(t *testing.T) {
	store := openTemp(t, 10)
	ctx := context.Background()

	e := mustRecord(t, store, Entry{ID: "abcd1234-0000", Tool: "tip"})
	mustRecord(t, store, Entry{ID: "abce9999-0000", Tool: "tip"})

	got, err := store.Get(ctx, "abcd12")
	if err != nil {
		t.Fatalf("Get by prefix failed: %v", err)
	}
	if got.ID != e.ID {
		t.Errorf("Got %q, want %q", got.ID, e.ID)
	}

	if _, err := store.Get(ctx, "abc"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Short prefix: expected ErrNotFound, got %v", err)
	}
	if _, err := store.Get(ctx, "abc_"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Underscore is literal: expected ErrNotFound, got %v", err)
	}
	if _, err := store.Get(ctx, "ab%%"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Percent is literal: expected ErrNotFound, got %v", err)
	}
	mustRecord(t, store, Entry{ID: "abcd5678-0000", Tool: "tip"})
	if _, err := store.Get(ctx, "abcd"); !errors.Is(err, ErrAmbiguous) {
		t.Errorf("Expected ErrAmbiguous, got %v", err)
	}
	if _, err := store.Get(ctx, "ffffffff"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestRecord_TruncatesSummary(t *testing.T) {
	store := openTemp(t, 10)
	e := mustRecord(t, store, Entry{Tool: "reverse", Summary: strings.Repeat("x", 500)})

	got, err := store.Get(context.Background(), e.ID)
	if err != nil {
		t.Fatal(err)
	}
	if n := len([]rune(got.Summary)); n != SummaryLength {
		t.Errorf("Summary length = %d, want %d", n, SummaryLength)
	}
}

func TestRecord_RequiresTool(t *testing.T) {
	store := openTemp(t, 10)
	if _, err := store.Record(context.Background(), Entry{}); err == nil {
		t.Error("Expected error for entry without tool")
	}
}

func TestList_NewestFirstAndFilters(t *testing.T) {
	store := openTemp(t, 10)
	ctx := context.Background()

	mustRecord(t, store, Entry{Tool: "tip", Status: tools.StatusOK})
	mustRecord(t, store, Entry{Tool: "loan", Status: tools.StatusValidation, Message: "rate: required parameter is missing"})
	mustRecord(t, store, Entry{Tool: "tip", Status: tools.StatusProcessing})

	all, err := store.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(all))
	}
	if all[0].Status != tools.StatusProcessing || all[2].Status != tools.StatusOK {
		t.Errorf("Expected newest first, got %s, %s", all[0].Status, all[2].Status)
	}

	tips, _ := store.List(ctx, Filter{Tool: "tip"})
	if len(tips) != 2 {
		t.Errorf("Expected 2 tip entries, got %d", len(tips))
	}

	failed, _ := store.List(ctx, Filter{Status: tools.StatusValidation})
	if len(failed) != 1 || failed[0].Tool != "loan" {
		t.Errorf("Unexpected validation entries %+v", failed)
	}

	limited, _ := store.List(ctx, Filter{Limit: 1})
	if len(limited) != 1 {
		t.Errorf("Expected 1 entry, got %d", len(limited))
	}

	none, _ := store.List(ctx, Filter{Tool: "pdf-merge"})
	if none == nil || len(none) != 0 {
		t.Errorf("Expected empty non-nil list, got %#v", none)
	}
}

func TestRecord_PrunesToLimit(t *testing.T) {
	store := openTemp(t, 3)
	ctx := context.Background()

	var last Entry
	for i := 0; i < 5; i++ {
		last = mustRecord(t, store, Entry{Tool: "hash"})
	}

	n, err := store.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("Count = %d, want 3", n)
	}
	entries, _ := store.List(ctx, Filter{})
	if entries[0].ID != last.ID {
		t.Error("Most recent entry was pruned")
	}
}

func TestStats(t *testing.T) {
	store := openTemp(t, 10)
	ctx := context.Background()

	mustRecord(t, store, Entry{Tool: "tip", Duration: 10 * time.Millisecond})
	mustRecord(t, store, Entry{Tool: "tip", Status: tools.StatusValidation, Duration: 30 * time.Millisecond})
	mustRecord(t, store, Entry{Tool: "hash", Duration: 5 * time.Millisecond})

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Total != 3 || stats.Failures != 1 {
		t.Errorf("Total/Failures = %d/%d", stats.Total, stats.Failures)
	}
	if len(stats.ByTool) != 2 {
		t.Fatalf("Expected 2 tools, got %d", len(stats.ByTool))
	}
	tip := stats.ByTool[1]
	if tip.Tool != "tip" || tip.Runs != 2 || tip.Failures != 1 {
		t.Errorf("Unexpected tip stats %+v", tip)
	}
	if tip.AvgDuration != 20*time.Millisecond {
		t.Errorf("AvgDuration = %v, want 20ms", tip.AvgDuration)
	}
}

func TestClear(t *testing.T) {
	store := openTemp(t, 10)
	ctx := context.Background()
	mustRecord(t, store, Entry{Tool: "tip"})
	mustRecord(t, store, Entry{Tool: "tip"})

	n, err := store.Clear(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("Cleared %d, want 2", n)
	}
	stats, _ := store.Stats(ctx)
	if stats.Total != 0 {
		t.Errorf("Expected empty history, got %d", stats.Total)
	}
}

func TestClosedStore(t *testing.T) {
	store, err := Open(MemoryPath, 10)
	if err != nil {
		t.Fatal(err)
	}
	store.Close()
	if err := store.Close(); err != nil {
		t.Errorf("Second Close returned %v", err)
	}
	if _, err := store.List(context.Background(), Filter{}); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
}

func TestPersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(path, 10)
	if err != nil {
		t.Fatal(err)
	}
	e := mustRecord(t, store, Entry{Tool: "dedup"})
	store.Close()

	store, err = Open(path, 10)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	if _, err := store.Get(context.Background(), e.ID); err != nil {
		t.Errorf("Entry lost after reopen: %v", err)
	}
}

// =============================================================================
// EXECUTOR INTEGRATION
// =============================================================================

func TestRecorder_WithExecutor(t *testing.T) {
	store := openTemp(t, 10)
	exec := tools.NewExecutor(tools.NewRegistry(), tools.WithRecorder(store.Recorder()))
	ctx := context.Background()

	if _, err := exec.Execute(ctx, tools.Call{Name: "reverse", Params: map[string]interface{}{"text": "abc"}}); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if _, err := exec.Execute(ctx, tools.Call{Name: "tip"}); err == nil {
		t.Fatal("Expected validation error")
	}

	entries, err := store.List(ctx, Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].Tool != "tip" || entries[0].Status != tools.StatusValidation || entries[0].Message == "" {
		t.Errorf("Unexpected failed entry %+v", entries[0])
	}
	if entries[1].Tool != "reverse" || entries[1].Summary != "cba" || entries[1].Category != "text" {
		t.Errorf("Unexpected success entry %+v", entries[1])
	}
}
