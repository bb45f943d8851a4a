// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the toolverse command line.
//
// Every command goes through one App, which owns the configuration, the
// tool registry and executor, and the optional run history.
//
// # Key Types
//
//   - Command: the command named on the command line
//   - Args: global flags plus an ArgParser holding the command's own flags
//   - App: shared state; Dispatch runs one command
//   - Response: the envelope written for --format json and yaml
//
// # Usage
//
//	cmd, args := cli.Parse(os.Args[1:])
//	app, err := cli.NewApp(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	defer app.Close()
//	if err := app.Dispatch(ctx, cmd, args); err != nil {
//	    cli.DisplayError(os.Stderr, err, app.Format)
//	    os.Exit(cli.GetExitCode(err))
//	}
//
// # Commands Overview
//
//   - pick: full-screen tool picker, then a form (default)
//   - list: the tool catalog, one category, or one tool's parameters
//   - run: run a tool from flags; "toolverse <tool>" is shorthand
//   - form: prompt for each parameter, then run
//   - watch: re-run a tool when its input files change
//   - history: list, show, stats, export and clear past runs
//   - serve: the HTTP API
//   - config: show, get, set, init, reset and path
//
// Commands that print results accept --format text|json|yaml.
package cli
