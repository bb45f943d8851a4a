// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// watch.go - Re-run a tool whenever its input files change.
//
// Command: watch <tool> [run flags]
// Aliases: w
//
// Takes the same flags as run. Every file given with --input or a file
// parameter flag is watched; the tool runs once at start and again after
// each change.
//
// Flags:
//   --debounce MS        Quiet period before re-running (default 300)
//
// Examples:
//   toolverse watch text-stats --input notes.md
//   toolverse watch diff --old_file v1.txt --new_file v2.txt
//   toolverse watch image-resize --input photo.png --width 640 --output thumbs/
package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jeranaias/toolverse/internal/tools"
	"github.com/jeranaias/toolverse/internal/watch"
)

// HandleWatch handles "watch <tool>".
func (a *App) HandleWatch(ctx context.Context, args Args) error {
	tool, err := a.lookupTool(args.Subcommand)
	if err != nil {
		return err
	}
	p := args.Parser

	paths, err := watchPaths(tool, p)
	if err != nil {
		return err
	}
	debounce := watch.DefaultDebounce
	if v := p.Flag("debounce"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil || ms < 0 {
			return NewValidationError("debounce", v, "must be a whole number of milliseconds")
		}
		debounce = time.Duration(ms) * time.Millisecond
	}

	w, err := watch.New(paths, debounce, a.Logger)
	if err != nil {
		return err
	}
	defer w.Close()

	a.watchRun(ctx, tool, p, nil)
	fmt.Fprintf(a.Err, "%s %d file(s); press Ctrl+C to stop\n", DimStyle.Render("Watching"), len(paths))
	return w.Run(ctx, func(ctx context.Context, changed []string) {
		a.watchRun(ctx, tool, p, changed)
	})
}

// watchRun rebuilds the call from disk and runs it. Failures are reported
// and watching continues.
func (a *App) watchRun(ctx context.Context, tool *tools.Tool, p *ArgParser, changed []string) {
	if len(changed) > 0 {
		fmt.Fprintf(a.Err, "\n%s %s changed at %s\n", TitleStyle.Render("==>"), strings.Join(changed, ", "), time.Now().Format("15:04:05"))
	}
	// --debounce belongs to watch, not the tool
	call, err := a.BuildCall(tool, withoutFlags(p, "debounce"))
	if err == nil {
		err = a.execute(ctx, tool, call, p.Flag("output"), p.Flag("schedule"))
	}
	if err != nil {
		DisplayError(a.Err, err, FormatText)
	}
}

// watchPaths returns every input file named on the command line.
func watchPaths(tool *tools.Tool, p *ArgParser) ([]string, error) {
	if !tool.Schema.HasFiles() {
		return nil, NewValidationError("tool", tool.Name, "takes no input files, so there is nothing to watch")
	}
	// --input feeds the first file parameter, which may also be named
	// "input", so the same path can arrive twice.
	var paths []string
	seen := make(map[string]bool)
	add := func(values []string) {
		for _, v := range values {
			if !seen[v] {
				seen[v] = true
				paths = append(paths, v)
			}
		}
	}
	add(p.FlagValues("input"))
	for _, flag := range p.FlagNames() {
		if param, ok := tool.Schema.Param(paramName(flag)); ok && param.Type == tools.TypeFile {
			add(p.FlagValues(flag))
		}
	}
	if len(paths) == 0 {
		return nil, ErrMissingArgument("input", "toolverse watch "+tool.Name+" --input FILE")
	}
	for _, path := range paths {
		if path == "-" {
			return nil, NewValidationError("input", path, "stdin cannot be watched")
		}
	}
	return paths, nil
}

// withoutFlags returns a copy of p without the named value flags.
func withoutFlags(p *ArgParser, names ...string) *ArgParser {
	cp := *p
	cp.flags = make(map[string][]string, len(p.flags))
	for k, v := range p.flags {
		cp.flags[k] = v
	}
	for _, n := range names {
		delete(cp.flags, n)
	}
	return &cp
}
