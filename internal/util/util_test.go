// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// =============================================================================
// ATOMIC WRITE TESTS
// =============================================================================

func TestAtomicWriteFile_Basic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.txt")
	data := []byte("hello, world!")

	if err := AtomicWriteFile(path, data, 0644); err != nil {
		t.Fatalf("AtomicWriteFile failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if string(content) != string(data) {
		t.Errorf("Content mismatch: got %q, want %q", string(content), string(data))
	}
}

func TestAtomicWriteFile_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subdir", "deep", "test.txt")

	if err := AtomicWriteFile(path, []byte("test data"), 0644); err != nil {
		t.Fatalf("AtomicWriteFile failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("File not created: %v", err)
	}
}

func TestAtomicWriteFile_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.txt")

	if err := AtomicWriteFile(path, []byte("initial"), 0644); err != nil {
		t.Fatalf("First write failed: %v", err)
	}
	if err := AtomicWriteFile(path, []byte("updated"), 0644); err != nil {
		t.Fatalf("Second write failed: %v", err)
	}

	content, _ := os.ReadFile(path)
	if string(content) != "updated" {
		t.Errorf("Expected 'updated', got %q", string(content))
	}
}

func TestAtomicWriteFile_NoTempLeftovers(t *testing.T) {
	dir := t.TempDir()
	if err := AtomicWriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tmp-") {
			t.Errorf("Temp file left behind: %s", e.Name())
		}
	}
}

func TestAtomicWriteStream_FailureKeepsOriginal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.bin")
	if err := AtomicWriteFile(path, []byte("original"), 0644); err != nil {
		t.Fatal(err)
	}

	err := AtomicWriteStream(path, 0644, func(w io.Writer) error {
		w.Write([]byte("partial"))
		return errors.New("encoder failed")
	})
	if err == nil {
		t.Fatal("Expected error from failing writer")
	}

	content, _ := os.ReadFile(path)
	if string(content) != "original" {
		t.Errorf("Original file changed to %q", string(content))
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("Expected only the original file, found %d entries", len(entries))
	}
}

func TestAtomicWriteFileWithDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "private", "state.db")

	if err := AtomicWriteFileWithDir(path, []byte("x"), 0600, 0700); err != nil {
		t.Fatalf("AtomicWriteFileWithDir failed: %v", err)
	}

	info, err := os.Stat(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if !info.IsDir() {
		t.Error("Expected parent directory")
	}
}

// =============================================================================
// STRING TESTS
// =============================================================================

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		input string
		max   int
		want  string
	}{
		{"hello", 10, "hello"},
		{"hello world", 8, "hello..."},
		{"hello", 3, "hel"},
		{"hello", 0, ""},
		{"héllo wörld", 8, "héllo..."},
		{"日本語テキスト", 5, "日本..."},
	}
	for _, tt := range tests {
		if got := TruncateRunes(tt.input, tt.max); got != tt.want {
			t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tt.input, tt.max, got, tt.want)
		}
	}
}

func TestTruncateWidth(t *testing.T) {
	tests := []struct {
		input string
		max   int
		want  string
	}{
		{"hello", 10, "hello"},
		{"hello world", 8, "hello..."},
		{"日本語テキスト", 8, "日本..."},
		{"日本語", 6, "日本語"},
		{"abc", 0, ""},
	}
	for _, tt := range tests {
		if got := TruncateWidth(tt.input, tt.max); got != tt.want {
			t.Errorf("TruncateWidth(%q, %d) = %q, want %q", tt.input, tt.max, got, tt.want)
		}
	}
}

func TestPadRightAndWidth(t *testing.T) {
	if got := PadRight("ab", 5); got != "ab   " {
		t.Errorf("PadRight = %q", got)
	}
	if got := PadRight("日本", 6); StringWidth(got) != 6 {
		t.Errorf("PadRight wide = %q (width %d)", got, StringWidth(got))
	}
	if got := StringWidth("日本語"); got != 6 {
		t.Errorf("StringWidth = %d, want 6", got)
	}
}

func TestFirstLine(t *testing.T) {
	if got := FirstLine("\n  \n  first \nsecond"); got != "first" {
		t.Errorf("FirstLine = %q", got)
	}
	if got := FirstLine(""); got != "" {
		t.Errorf("FirstLine empty = %q", got)
	}
}

// =============================================================================
// NAMING TESTS
// =============================================================================

func TestDerivedName(t *testing.T) {
	tests := []struct {
		input, suffix, ext, want string
	}{
		{"photo.jpg", "resized", "png", "photo_resized.png"},
		{"dir/sub/report.pdf", "part2", "pdf", "report_part2.pdf"},
		{`C:\Users\me\song.mp3`, "", "wav", "song.wav"},
		{"archive.tar.gz", "copy", ".gz", "archive.tar_copy.gz"},
		{"", "cropped", "png", "image_cropped.png"},
		{".hidden", "", "txt", "image.txt"},
		{"a:b?.png", "x", "png", "a_b__x.png"},
	}
	for _, tt := range tests {
		if got := DerivedName(tt.input, tt.suffix, tt.ext, "image"); got != tt.want {
			t.Errorf("DerivedName(%q, %q, %q) = %q, want %q", tt.input, tt.suffix, tt.ext, got, tt.want)
		}
	}
}

func TestUniquePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.png")
	if got := UniquePath(path); got != path {
		t.Errorf("UniquePath on free path = %q", got)
	}

	os.WriteFile(path, []byte("x"), 0644)
	want := filepath.Join(dir, "out (1).png")
	if got := UniquePath(path); got != want {
		t.Errorf("UniquePath = %q, want %q", got, want)
	}
}

// =============================================================================
// FORMAT TESTS
// =============================================================================

func TestFormatMoney(t *testing.T) {
	tests := map[float64]string{
		0:          "0.00",
		12.5:       "12.50",
		999.999:    "1,000.00",
		1516.9632:  "1,516.96",
		1234567.89: "1,234,567.89",
		-2500:      "-2,500.00",
		-0.001:     "0.00",
	}
	for in, want := range tests {
		if got := FormatMoney(in); got != want {
			t.Errorf("FormatMoney(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	if got := FormatBytes(512); got != "512 B" {
		t.Errorf("FormatBytes(512) = %q", got)
	}
	if got := FormatBytes(1536); got != "1.5 KiB" {
		t.Errorf("FormatBytes(1536) = %q", got)
	}
	if got := FormatBytes(5 << 20); got != "5.0 MiB" {
		t.Errorf("FormatBytes(5MiB) = %q", got)
	}
}

func TestFormatDuration(t *testing.T) {
	if got := FormatDuration(42 * time.Millisecond); got != "42ms" {
		t.Errorf("FormatDuration = %q", got)
	}
	if got := FormatDuration(1500 * time.Millisecond); got != "1.50s" {
		t.Errorf("FormatDuration = %q", got)
	}
}
