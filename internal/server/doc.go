// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server exposes the tool registry as a small JSON HTTP API.
//
// # Endpoints
//
//   - GET  /health             - Health check (never requires a token)
//   - GET  /api/tools          - List tools, optionally ?category=pdf
//   - GET  /api/tools/{name}   - Describe one tool and its parameters
//   - POST /api/tools/{name}   - Run a tool (JSON or multipart body)
//   - GET  /api/stats          - Execution statistics since start
//   - GET  /api/history        - Persisted run history, when enabled
//
// Runs answer 422 for invalid input and 500 when processing fails. Every
// error uses the same envelope:
//
//	{"error": {"message": "...", "type": "validation", "param": "rate", "code": 422}}
//
// # Middleware
//
// Requests pass through panic recovery, security headers, request logging,
// a per-IP token bucket, an optional bearer token on /api/ and a body size
// cap, in that order.
//
// # Usage
//
//	exec := tools.NewExecutor(tools.NewRegistry())
//	srv := server.New(exec, server.Options{Addr: "127.0.0.1:8787", Logger: logger})
//	if err := srv.Run(ctx, 10*time.Second); err != nil {
//		return err
//	}
package server
