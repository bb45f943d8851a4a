// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tools is the toolverse tool registry and executor.
//
// Every utility (finance calculators, text transforms, image, audio and PDF
// operations) is registered here as a Tool with a parameter Schema. The CLI,
// the interactive form and the HTTP server all go through the same
// Executor, so validation, timeouts and history recording behave the same
// regardless of the front end.
//
// # Key Types
//
//   - Tool: name, aliases, category, schema and executor
//   - Registry: case-insensitive lookup by name or alias
//   - Call: parameters plus uploaded files for one invocation
//   - Result: text output, structured data and file artifacts
//   - Executor: validates a Call, runs it with a timeout and records it
//
// # Errors
//
// Execute returns a *ValidationError when the request itself is wrong
// (missing parameter, out-of-range value, unreadable input) and a
// *ProcessingError when a valid request fails while running. StatusOf maps
// an error to the status string stored in history.
//
// # Usage
//
//	reg := tools.NewRegistry()
//	exec := tools.NewExecutor(reg)
//	res, err := exec.Execute(ctx, tools.Call{
//	    Name:   "tip",
//	    Params: map[string]interface{}{"bill": 84.5, "percent": 18, "people": 3},
//	})
package tools
