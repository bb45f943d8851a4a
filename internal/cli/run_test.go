// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/jeranaias/toolverse/internal/tools"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

// =============================================================================
// RUN TESTS
// =============================================================================

func TestRun_Tip(t *testing.T) {
	app := newTestApp(t, "")
	if err := app.run(t, "run", "tip", "--bill", "100", "--percent", "20"); err != nil {
		t.Fatalf("run error = %v", err)
	}
	for _, want := range []string{"20.00", "120.00"} {
		if !strings.Contains(app.out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, app.out.String())
		}
	}
}

func TestRun_Shorthand(t *testing.T) {
	app := newTestApp(t, "")
	if err := app.run(t, "tip", "--bill", "10", "--people", "3", "--round_up"); err != nil {
		t.Fatalf("run error = %v", err)
	}
	if !strings.Contains(app.out.String(), "Per person") {
		t.Errorf("split rows missing:\n%s", app.out.String())
	}
}

func TestRun_JSON(t *testing.T) {
	app := newTestApp(t, "")
	if err := app.run(t, "--json", "tip", "--bill", "50"); err != nil {
		t.Fatalf("run error = %v", err)
	}
	resp := decodeResponse(t, app.out.Bytes())
	if !resp.Success || resp.Command != "tip" {
		t.Fatalf("response = %+v", resp)
	}
	data, _ := resp.Data.(map[string]interface{})
	if data["tool"] != "tip" || data["category"] != "finance" {
		t.Errorf("data = %v", data)
	}
	if out, _ := data["output"].(string); !strings.Contains(out, "7.50") {
		t.Errorf("output = %q, want 15%% tip of 7.50", out)
	}
}

func TestRun_TextSources(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		argv  func(t *testing.T) []string
		want  string
	}{
		{
			name: "flag",
			argv: func(*testing.T) []string { return []string{"reverse", "--text", "abc"} },
			want: "cba",
		},
		{
			name: "positional",
			argv: func(*testing.T) []string { return []string{"reverse", "hello", "world", "--mode", "words"} },
			want: "world hello",
		},
		{
			name:  "stdin",
			stdin: "stressed",
			argv:  func(*testing.T) []string { return []string{"run", "reverse"} },
			want:  "desserts",
		},
		{
			name: "input file",
			argv: func(t *testing.T) []string {
				return []string{"reverse", "--input", writeTemp(t, "in.txt", "drawer")}
			},
			want: "reward",
		},
		{
			name:  "input from stdin dash",
			stdin: "live",
			argv:  func(*testing.T) []string { return []string{"reverse", "--input", "-"} },
			want:  "evil",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t, tt.stdin)
			if err := app.run(t, tt.argv(t)...); err != nil {
				t.Fatalf("run error = %v", err)
			}
			if got := strings.TrimSpace(app.out.String()); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRun_DedupStdin(t *testing.T) {
	app := newTestApp(t, "b\na\nb\n")
	if err := app.run(t, "uniq"); err != nil {
		t.Fatalf("run error = %v", err)
	}
	out := app.out.String()
	if strings.Count(out, "b") != 1 || !strings.Contains(out, "a") {
		t.Errorf("dedup output = %q", out)
	}
}

func TestRun_DiffInputs(t *testing.T) {
	app := newTestApp(t, "")
	oldPath := writeTemp(t, "old.txt", "one\ntwo\n")
	newPath := writeTemp(t, "new.txt", "one\nthree\n")
	if err := app.run(t, "diff", "--input", oldPath, "--input", newPath); err != nil {
		t.Fatalf("run error = %v", err)
	}
	for _, want := range []string{"-two", "+three"} {
		if !strings.Contains(app.out.String(), want) {
			t.Errorf("diff missing %q:\n%s", want, app.out.String())
		}
	}
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		argv []string
		want int
	}{
		{"unknown tool", []string{"run", "nope"}, ExitNotFoundError},
		{"missing tool", []string{"run"}, ExitUsageError},
		{"missing required", []string{"tip"}, ExitUsageError},
		{"below minimum", []string{"tip", "--bill", "-5"}, ExitUsageError},
		{"not a number", []string{"tip", "--bill", "lots"}, ExitUsageError},
		{"unknown parameter", []string{"tip", "--bill", "5", "--nope", "1"}, ExitUsageError},
		{"bare non-boolean", []string{"tip", "--bill", "5", "--percent"}, ExitUsageError},
		{"bad --param", []string{"tip", "--param", "bill"}, ExitUsageError},
		{"missing input file", []string{"reverse", "--input", "/no/such/file.txt"}, ExitNotFoundError},
		{"input on tool without files", []string{"tip", "--bill", "5", "--input", "x.txt"}, ExitUsageError},
		{"schedule extension", []string{"loan", "--principal", "1000", "--rate", "5", "--years", "1", "--schedule", "plan.txt"}, ExitUsageError},
		{"schedule unsupported", []string{"tip", "--bill", "5", "--schedule", "plan.csv"}, ExitUsageError},
		{"positional on non-text tool", []string{"tip", "--bill", "5", "extra"}, ExitUsageError},
		{"stdout without artifact", []string{"tip", "--bill", "5", "--output", "-"}, ExitUsageError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t, "")
			err := app.run(t, tt.argv...)
			if err == nil {
				t.Fatalf("%v should fail", tt.argv)
			}
			if got := GetExitCode(err); got != tt.want {
				t.Errorf("exit code = %d, want %d (%v)", got, tt.want, err)
			}
		})
	}
}

// =============================================================================
// ARTIFACT TESTS
// =============================================================================

func TestRun_ScheduleFile(t *testing.T) {
	app := newTestApp(t, "")
	path := filepath.Join(t.TempDir(), "plans", "loan.csv")
	err := app.run(t, "loan", "--principal", "12000", "--rate", "6", "--years", "1", "--schedule", path)
	if err != nil {
		t.Fatalf("run error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("schedule not written: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if !strings.HasPrefix(lines[0], "Month,Payment") {
		t.Errorf("header = %q", lines[0])
	}
	if len(lines) != 13 {
		t.Errorf("schedule rows = %d, want 12 plus header", len(lines)-1)
	}
	if !strings.Contains(app.out.String(), "Wrote "+path) {
		t.Errorf("output does not report the file:\n%s", app.out.String())
	}
}

func TestRun_ArtifactsGetFreshNames(t *testing.T) {
	app := newTestApp(t, "")
	argv := []string{"loan", "--principal", "1000", "--rate", "5", "--years", "1", "--param", "schedule=csv"}
	for i := 0; i < 2; i++ {
		if err := app.run(t, argv...); err != nil {
			t.Fatalf("run %d error = %v", i, err)
		}
	}
	for _, name := range []string{"loan_schedule.csv", "loan_schedule (1).csv"} {
		if _, err := os.Stat(filepath.Join(app.Dir, name)); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}
}

func TestRun_OutputDestinations(t *testing.T) {
	argv := []string{"loan", "--principal", "1000", "--rate", "5", "--years", "1", "--param", "schedule=csv"}

	t.Run("file", func(t *testing.T) {
		app := newTestApp(t, "")
		path := filepath.Join(t.TempDir(), "custom.csv")
		if err := app.run(t, append(argv, "--output", path)...); err != nil {
			t.Fatalf("run error = %v", err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("artifact not at %s: %v", path, err)
		}
	})

	t.Run("directory", func(t *testing.T) {
		app := newTestApp(t, "")
		dir := t.TempDir()
		if err := app.run(t, append(argv, "--output", dir)...); err != nil {
			t.Fatalf("run error = %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, "loan_schedule.csv")); err != nil {
			t.Errorf("artifact not in %s: %v", dir, err)
		}
	})

	t.Run("stdout", func(t *testing.T) {
		app := newTestApp(t, "")
		if err := app.run(t, append(argv, "--output", "-")...); err != nil {
			t.Fatalf("run error = %v", err)
		}
		if !strings.HasPrefix(app.out.String(), "Month,Payment") {
			t.Errorf("stdout = %q", app.out.String())
		}
	})
}

func TestRun_RecordsHistory(t *testing.T) {
	app := newTestApp(t, "")
	if err := app.run(t, "tip", "--bill", "40"); err != nil {
		t.Fatalf("run error = %v", err)
	}
	_ = app.run(t, "tip", "--bill", "-1")

	n, err := app.History.Count(context.Background())
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 2 {
		t.Errorf("recorded runs = %d, want 2", n)
	}
}

// =============================================================================
// CALL CONSTRUCTION TESTS
// =============================================================================

func TestBuildCall_FlagSpellings(t *testing.T) {
	app := newTestApp(t, "")
	tool := app.Registry.Get("mortgage")
	p := NewArgParser([]string{"mortgage", "--home-price", "300000", "--DOWN_PAYMENT", "60000", "--param", "rate=6.5"}, globalBoolFlags...)

	call, err := app.BuildCall(tool, p)
	if err != nil {
		t.Fatalf("BuildCall() error = %v", err)
	}
	want := map[string]float64{"home_price": 300000, "down_payment": 60000, "rate": 6.5}
	for name, v := range want {
		if got, _ := call.Params[name].(float64); got != v {
			t.Errorf("%s = %v, want %v", name, call.Params[name], v)
		}
	}
}

func TestBuildCall_GlobalBoolsIgnored(t *testing.T) {
	app := newTestApp(t, "")
	tool := app.Registry.Get("tip")
	p := NewArgParser([]string{"tip", "--bill", "5", "--json", "-q", "--round_up"}, globalBoolFlags...)

	call, err := app.BuildCall(tool, p)
	if err != nil {
		t.Fatalf("BuildCall() error = %v", err)
	}
	if call.Params["round_up"] != true {
		t.Errorf("round_up = %v, want true", call.Params["round_up"])
	}
}

func TestAssignInputs(t *testing.T) {
	reg := tools.NewRegistry()
	tests := []struct {
		name     string
		tool     string
		inputs   []string
		explicit map[string][]string
		want     map[string][]string
		wantErr  bool
	}{
		{
			name:   "schema order",
			tool:   "diff",
			inputs: []string{"a.txt", "b.txt"},
			want:   map[string][]string{"old_file": {"a.txt"}, "new_file": {"b.txt"}},
		},
		{
			name:     "explicit flag keeps its slot",
			tool:     "diff",
			inputs:   []string{"b.txt"},
			explicit: map[string][]string{"old_file": {"a.txt"}},
			want:     map[string][]string{"old_file": {"a.txt"}, "new_file": {"b.txt"}},
		},
		{
			name:   "multiple takes the rest",
			tool:   "pdf-merge",
			inputs: []string{"1.pdf", "2.pdf", "3.pdf"},
			want:   map[string][]string{"files": {"1.pdf", "2.pdf", "3.pdf"}},
		},
		{
			name:    "too many",
			tool:    "reverse",
			inputs:  []string{"a.txt", "b.txt"},
			wantErr: true,
		},
		{
			name:    "no file parameters",
			tool:    "tip",
			inputs:  []string{"a.txt"},
			wantErr: true,
		},
		{
			name: "nothing given",
			tool: "reverse",
			want: map[string][]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := make(map[string][]string)
			for k, v := range tt.explicit {
				got[k] = v
			}
			err := assignInputs(reg.Get(tt.tool), tt.inputs, got)
			if (err != nil) != tt.wantErr {
				t.Fatalf("assignInputs() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("assignInputs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScheduleKind(t *testing.T) {
	tests := map[string]string{"a.csv": "csv", "out/B.XLSX": "xlsx", "plan.txt": "", "plan": ""}
	for path, want := range tests {
		got, err := scheduleKind(path)
		if want == "" {
			if err == nil {
				t.Errorf("scheduleKind(%q) should fail", path)
			}
			continue
		}
		if err != nil || got != want {
			t.Errorf("scheduleKind(%q) = %q, %v; want %q", path, got, err, want)
		}
	}
}

func TestParamName(t *testing.T) {
	tests := map[string]string{"home-price": "home_price", "Rate": "rate", "old_file": "old_file"}
	for in, want := range tests {
		if got := paramName(in); got != want {
			t.Errorf("paramName(%q) = %q, want %q", in, got, want)
		}
	}
}
