// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// history_cmd.go - Inspect and clear the record of past tool runs.
//
// Command: history [subcommand]
// Aliases: hist
//
// Subcommands:
//   list (default)       Show recent runs
//   show <id>            Show one run (an unambiguous id prefix is enough)
//   stats                Runs and failures per tool
//   export               Write a report (markdown, html, json or csv)
//   clear --confirm      Delete every recorded run
//
// Flags:
//   --tool NAME          Only runs of this tool
//   --status STATUS      Only runs with this status (ok, validation, processing)
//   --limit N            Number of runs to list (default 20, export 1000)
//   --type FORMAT        Export format; taken from --output's extension if absent
//   --output PATH        Export destination ("-" for stdout)
//   --theme light|dark   HTML export theme
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/toolverse/internal/export"
	"github.com/jeranaias/toolverse/internal/history"
	"github.com/jeranaias/toolverse/internal/tools"
	"github.com/jeranaias/toolverse/internal/util"
)

// HandleHistory handles the "history" command.
func (a *App) HandleHistory(ctx context.Context, args Args) error {
	store, err := a.requireHistory()
	if err != nil {
		return err
	}
	p := args.Parser

	switch args.Subcommand {
	case "", "list", "ls":
		return a.historyList(ctx, store, p)
	case "show", "get":
		id := p.Positional(1)
		if id == "" {
			return ErrMissingArgument("id", "toolverse history show 3f2a")
		}
		return a.historyShow(ctx, store, id)
	case "stats":
		return a.historyStats(ctx, store)
	case "export":
		return a.historyExport(ctx, store, p)
	case "clear":
		opts := ConfirmationOptions{ConfirmFlag: confirmFlag(p)}
		if path, err := a.Config.HistoryPath(); err == nil {
			opts.Details = map[string]string{"Database": path}
		}
		if err := a.requireConfirmation("delete every recorded run", "toolverse history clear", opts); err != nil {
			return err
		}
		return a.historyClear(ctx, store)
	default:
		return &ValidationError{
			Field:   "subcommand",
			Value:   args.Subcommand,
			Reason:  "unknown history subcommand",
			Example: "toolverse history [list|show|stats|export|clear]",
		}
	}
}

// historyFilter reads --tool, --status and --limit.
func (a *App) historyFilter(p *ArgParser, defaultLimit int) (history.Filter, error) {
	limit, err := p.FlagInt("limit")
	if err != nil && p.Flag("limit") != "" {
		return history.Filter{}, NewValidationError("limit", p.Flag("limit"), "must be a whole number")
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	filter := history.Filter{Status: strings.ToLower(p.Flag("status")), Limit: limit}
	if name := p.Flag("tool"); name != "" {
		tool, err := a.lookupTool(name)
		if err != nil {
			return filter, err
		}
		filter.Tool = tool.Name
	}
	switch filter.Status {
	case "", tools.StatusOK, tools.StatusValidation, tools.StatusProcessing:
	default:
		return filter, &ValidationError{Field: "status", Value: filter.Status, Reason: "unknown status", Example: "--status processing"}
	}
	return filter, nil
}

func (a *App) historyList(ctx context.Context, store *history.Store, p *ArgParser) error {
	filter, err := a.historyFilter(p, 20)
	if err != nil {
		return err
	}

	entries, err := store.List(ctx, filter)
	if err != nil {
		return err
	}

	return writeData(a.Out, a.Format, "history list", entries, func(w io.Writer) error {
		if len(entries) == 0 {
			_, err := fmt.Fprintln(w, DimStyle.Render("No runs recorded yet."))
			return err
		}
		for _, e := range entries {
			summary := e.Summary
			if !e.Succeeded() {
				summary = e.Message
			}
			fmt.Fprintf(w, "%s  %s  %s %s  %s\n",
				DimStyle.Render(e.ID[:8]),
				DimStyle.Render(e.CreatedAt.Local().Format("2006-01-02 15:04")),
				RenderStatus(e.Status),
				util.PadRight(e.Tool, 14),
				util.TruncateWidth(util.FirstLine(summary), 60))
		}
		return nil
	})
}

func (a *App) historyShow(ctx context.Context, store *history.Store, id string) error {
	e, err := store.Get(ctx, id)
	if err != nil {
		return err
	}
	return writeData(a.Out, a.Format, "history show", e, func(w io.Writer) error {
		fmt.Fprintln(w, TitleStyle.Render("Run "+e.ID))
		fmt.Fprintln(w, RenderSeparator(41))
		fmt.Fprintf(w, "%s%s\n", RenderLabel("Tool:"), ValueStyle.Render(e.Tool))
		fmt.Fprintf(w, "%s%s\n", RenderLabel("Category:"), ValueStyle.Render(e.Category))
		fmt.Fprintf(w, "%s%s\n", RenderLabel("Status:"), RenderStatus(e.Status))
		fmt.Fprintf(w, "%s%s\n", RenderLabel("When:"), ValueStyle.Render(e.CreatedAt.Local().Format(time.RFC1123)))
		fmt.Fprintf(w, "%s%s\n", RenderLabel("Duration:"), ValueStyle.Render(util.FormatDuration(e.Duration)))
		if e.Message != "" {
			fmt.Fprintf(w, "%s%s\n", RenderLabel("Error:"), ErrorStyle.Render(e.Message))
		}
		if e.Summary != "" {
			fmt.Fprintf(w, "%s%s\n", RenderLabel("Output:"), ValueStyle.Render(e.Summary))
		}
		return nil
	})
}

func (a *App) historyStats(ctx context.Context, store *history.Store) error {
	stats, err := store.Stats(ctx)
	if err != nil {
		return err
	}
	return writeData(a.Out, a.Format, "history stats", stats, func(w io.Writer) error {
		fmt.Fprintf(w, "%s%d\n", RenderLabel("Total runs:"), stats.Total)
		fmt.Fprintf(w, "%s%d\n", RenderLabel("Failures:"), stats.Failures)
		if len(stats.ByTool) == 0 {
			return nil
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s %s %s %s\n",
			SectionStyle.Render(util.PadRight("TOOL", 16)),
			SectionStyle.Render(util.PadRight("RUNS", 6)),
			SectionStyle.Render(util.PadRight("FAILED", 8)),
			SectionStyle.Render("AVG"))
		for _, ts := range stats.ByTool {
			fmt.Fprintf(w, "%s %s %s %s\n",
				util.PadRight(ts.Tool, 16),
				util.PadRight(fmt.Sprint(ts.Runs), 6),
				util.PadRight(fmt.Sprint(ts.Failures), 8),
				util.FormatDuration(ts.AvgDuration))
		}
		return nil
	})
}

func (a *App) historyClear(ctx context.Context, store *history.Store) error {
	n, err := store.Clear(ctx)
	if err != nil {
		return err
	}
	return writeData(a.Out, a.Format, "history clear", map[string]int64{"deleted": n}, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "%s Deleted %d run(s)\n", okMark(), n)
		return err
	})
}

// historyExport writes the filtered runs and overall statistics as a
// report file.
func (a *App) historyExport(ctx context.Context, store *history.Store, p *ArgParser) error {
	filter, err := a.historyFilter(p, 1000)
	if err != nil {
		return err
	}
	output := p.Flag("output")
	format := p.Flag("type")
	if format == "" {
		format = "markdown"
		if ext := filepath.Ext(output); ext != "" {
			format = ext
		}
	}
	opts := export.DefaultOptions()
	if theme := p.Flag("theme"); theme != "" {
		opts.Theme = strings.ToLower(theme)
	}
	exp, err := export.ForFormat(format, opts)
	if err != nil {
		return &ValidationError{Field: "type", Value: format, Reason: err.Error(), Example: "--type html"}
	}

	entries, err := store.List(ctx, filter)
	if err != nil {
		return err
	}
	stats, err := store.Stats(ctx)
	if err != nil {
		return err
	}
	report := &export.Report{GeneratedAt: time.Now(), Entries: entries, Stats: stats}

	if output == "-" {
		data, err := exp.Export(report)
		if err != nil {
			return err
		}
		_, err = a.Out.Write(data)
		return err
	}

	path := output
	if path == "" || strings.HasSuffix(path, "/") {
		dir := path
		if dir == "" {
			dir = a.Dir
		}
		path = util.UniquePath(filepath.Join(dir, export.DefaultFilename(exp, report.GeneratedAt)))
	}
	written, err := export.WriteFile(report, exp, path)
	if err != nil {
		return err
	}
	data := ArtifactOutput{Name: filepath.Base(written), ContentType: exp.MimeType(), Path: written}
	if info, err := os.Stat(written); err == nil {
		data.Size = int(info.Size())
	}
	return writeData(a.Out, a.Format, "history export", data, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "%s %s %s\n", SuccessStyle.Render("Wrote"), written,
			DimStyle.Render(fmt.Sprintf("(%d runs)", len(entries))))
		return err
	})
}
