// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/jeranaias/toolverse/internal/config"
	"github.com/jeranaias/toolverse/internal/history"
	"github.com/jeranaias/toolverse/internal/tools"
)

func TestMain(m *testing.M) {
	ForceColorsEnabled(false)
	os.Exit(m.Run())
}

// =============================================================================
// TEST HELPERS
// =============================================================================

type testApp struct {
	*App
	out    *bytes.Buffer
	errOut *bytes.Buffer
}

// newTestApp builds an App with in-memory history, buffered IO and
// temporary output and config locations.
func newTestApp(t *testing.T, stdin string) *testApp {
	t.Helper()
	store, err := history.Open(history.MemoryPath, 0)
	if err != nil {
		t.Fatalf("history.Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cfg := config.Default()
	cfg.History.Enabled = false

	var out, errOut bytes.Buffer
	app, err := NewApp(cfg, zerolog.Nop(),
		WithIO(strings.NewReader(stdin), &out, &errOut),
		WithHistoryStore(store),
		WithOutputDir(t.TempDir()),
		WithConfigPath(filepath.Join(t.TempDir(), "config.toml")),
	)
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	return &testApp{App: app, out: &out, errOut: &errOut}
}

// run parses argv and dispatches it.
func (ta *testApp) run(t *testing.T, argv ...string) error {
	t.Helper()
	cmd, args := Parse(argv)
	return ta.Dispatch(context.Background(), cmd, args)
}

func decodeResponse(t *testing.T, data []byte) Response {
	t.Helper()
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, data)
	}
	return resp
}

// =============================================================================
// PARSE TESTS
// =============================================================================

func TestParse_Commands(t *testing.T) {
	tests := []struct {
		argv       []string
		wantCmd    Command
		wantSubcmd string
	}{
		{nil, CmdPick, ""},
		{[]string{"pick"}, CmdPick, ""},
		{[]string{"tui"}, CmdPick, ""},
		{[]string{"list"}, CmdList, ""},
		{[]string{"ls", "image"}, CmdList, "image"},
		{[]string{"run", "mortgage", "--rate", "6.5"}, CmdRun, "mortgage"},
		{[]string{"r", "tip"}, CmdRun, "tip"},
		{[]string{"form", "loan"}, CmdForm, "loan"},
		{[]string{"watch", "text-stats", "--input", "a.txt"}, CmdWatch, "text-stats"},
		{[]string{"history", "stats"}, CmdHistory, "stats"},
		{[]string{"serve", "--addr", ":9000"}, CmdServe, ""},
		{[]string{"config", "set", "image.filter", "box"}, CmdConfig, "set"},
		{[]string{"version"}, CmdVersion, ""},
		{[]string{"help"}, CmdHelp, ""},
		{[]string{"--help"}, CmdHelp, ""},
		{[]string{"--version"}, CmdVersion, ""},
		// shorthand: the tool name itself
		{[]string{"mortgage", "--rate", "6"}, CmdRun, "mortgage"},
		{[]string{"uniq"}, CmdRun, "uniq"},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.argv, " "), func(t *testing.T) {
			cmd, args := Parse(tt.argv)
			if cmd != tt.wantCmd {
				t.Errorf("Parse(%v) cmd = %v, want %v", tt.argv, cmd, tt.wantCmd)
			}
			if args.Subcommand != tt.wantSubcmd {
				t.Errorf("Parse(%v) subcommand = %q, want %q", tt.argv, args.Subcommand, tt.wantSubcmd)
			}
		})
	}
}

func TestParse_GlobalFlags(t *testing.T) {
	_, args := Parse([]string{"--json", "tip", "--bill", "20", "-q", "--no-color", "--config", "x.toml"})
	if args.Format != "json" {
		t.Errorf("Format = %q, want json", args.Format)
	}
	if !args.Quiet || args.Verbose || !args.NoColor {
		t.Errorf("Quiet/Verbose/NoColor = %v/%v/%v", args.Quiet, args.Verbose, args.NoColor)
	}
	if args.ConfigPath != "x.toml" {
		t.Errorf("ConfigPath = %q", args.ConfigPath)
	}
	if args.Subcommand != "tip" || args.Parser.Flag("bill") != "20" {
		t.Errorf("tool flags not kept: subcommand %q, bill %q", args.Subcommand, args.Parser.Flag("bill"))
	}

	_, args = Parse([]string{"list", "--yaml"})
	if args.Format != "yaml" {
		t.Errorf("--yaml Format = %q", args.Format)
	}
}

func TestCommandString(t *testing.T) {
	for _, c := range []Command{CmdPick, CmdList, CmdRun, CmdForm, CmdWatch, CmdHistory, CmdServe, CmdConfig, CmdVersion} {
		cmd, _ := Parse([]string{c.String()})
		if cmd != c {
			t.Errorf("Parse(%q) = %v, want %v", c.String(), cmd, c)
		}
	}
}

// =============================================================================
// EXIT CODE TESTS
// =============================================================================

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"plain", errors.New("boom"), ExitGeneralError},
		{"usage", NewValidationError("limit", "x", "must be a number"), ExitUsageError},
		{"tool validation", &tools.ValidationError{Param: "bill", Message: "required parameter is missing"}, ExitUsageError},
		{"tty", &TTYRequiredError{Operation: "pick a tool"}, ExitUsageError},
		{"config", &ConfigError{Err: errors.New("bad")}, ExitConfigError},
		{"config invalid", config.ValidateErrors{{Field: "image.filter", Message: "bad"}}, ExitConfigError},
		{"not found", ErrNotFound("tool", "nope"), ExitNotFoundError},
		{"history not found", history.ErrNotFound, ExitNotFoundError},
		{"processing", &tools.ProcessingError{Tool: "pdf-merge", Err: errors.New("corrupt")}, ExitGeneralError},
		{"wrapped usage", NewCommandError("history", "list", "bad flag", NewValidationError("status", "x", "unknown")), ExitUsageError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetExitCode(tt.err); got != tt.want {
				t.Errorf("GetExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDisplayError(t *testing.T) {
	var buf bytes.Buffer
	DisplayError(&buf, &tools.ValidationError{Param: "rate", Message: "must be at most 100"}, FormatText)
	if !strings.Contains(buf.String(), "Error:") || !strings.Contains(buf.String(), "parameter: rate") {
		t.Errorf("text error = %q", buf.String())
	}

	buf.Reset()
	DisplayError(&buf, ErrNotFound("tool", "nope"), FormatJSON)
	resp := decodeResponse(t, buf.Bytes())
	if resp.Success || resp.Error == nil || resp.Error.Kind != "not_found" {
		t.Errorf("json error = %+v", resp)
	}

	buf.Reset()
	DisplayError(&buf, nil, FormatText)
	if buf.Len() != 0 {
		t.Errorf("nil error wrote %q", buf.String())
	}
}

func TestParseOutputFormat(t *testing.T) {
	for _, s := range []string{"text", "json", "yaml", "JSON"} {
		if _, err := ParseOutputFormat(s); err != nil {
			t.Errorf("ParseOutputFormat(%q) error = %v", s, err)
		}
	}
	if _, err := ParseOutputFormat("xml"); err == nil {
		t.Error("ParseOutputFormat(xml) should fail")
	}
}

// =============================================================================
// VERSION AND HELP
// =============================================================================

func TestVersion(t *testing.T) {
	app := newTestApp(t, "")
	if err := app.run(t, "version", "--json"); err != nil {
		t.Fatalf("version error = %v", err)
	}
	resp := decodeResponse(t, app.out.Bytes())
	data, _ := resp.Data.(map[string]interface{})
	if !resp.Success || data["version"] != Version {
		t.Errorf("version response = %+v", resp)
	}
}

func TestHelp(t *testing.T) {
	app := newTestApp(t, "")
	if err := app.run(t, "help"); err != nil {
		t.Fatalf("help error = %v", err)
	}
	for _, want := range []string{"toolverse list", "Exit codes"} {
		if !strings.Contains(app.out.String(), want) {
			t.Errorf("usage missing %q", want)
		}
	}
}

func TestDispatch_FormatIsPerCommand(t *testing.T) {
	app := newTestApp(t, "")
	if err := app.run(t, "version", "--json"); err != nil {
		t.Fatalf("version --json error = %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(app.out.String()), "{") {
		t.Errorf("--json output = %q", app.out.String())
	}
	if app.Format != FormatText {
		t.Errorf("App.Format = %q after --json, want it unchanged", app.Format)
	}

	app.out.Reset()
	if err := app.run(t, "version"); err != nil {
		t.Fatalf("version error = %v", err)
	}
	if strings.HasPrefix(strings.TrimSpace(app.out.String()), "{") {
		t.Errorf("format leaked into next command: %q", app.out.String())
	}
}

func TestDispatch_BadFormat(t *testing.T) {
	app := newTestApp(t, "")
	err := app.run(t, "list", "--format", "xml")
	if GetExitCode(err) != ExitUsageError {
		t.Errorf("bad format exit = %d (%v)", GetExitCode(err), err)
	}
}
