// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// serve.go - Serve the tool catalog over HTTP.
//
// Command: serve [flags]
// Aliases: server
//
// Flags:
//   --addr HOST:PORT     Listen address (default from server.addr)
//   --token TOKEN        Require "Authorization: Bearer TOKEN"
//   --rate N             Requests per second per client (0 = unlimited)
//   --burst N            Burst size for --rate
package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jeranaias/toolverse/internal/server"
)

// shutdownGrace bounds how long in-flight runs may finish after a signal.
const shutdownGrace = 15 * time.Second

// ServerOptions builds server options from config and serve flags.
func (a *App) ServerOptions(p *ArgParser) (server.Options, error) {
	opts := server.OptionsFromConfig(a.Config.Server)
	opts.Logger = a.Logger
	opts.Version = Version

	if addr := p.Flag("addr"); addr != "" {
		opts.Addr = addr
	}
	if token := p.Flag("token"); token != "" {
		opts.Token = token
	}
	if v := p.Flag("rate"); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil || rate < 0 {
			return opts, NewValidationError("rate", v, "must be a non-negative number")
		}
		opts.RatePerSecond = rate
	}
	if v := p.Flag("burst"); v != "" {
		burst, err := strconv.Atoi(v)
		if err != nil || burst < 1 {
			return opts, NewValidationError("burst", v, "must be a positive whole number")
		}
		opts.Burst = burst
	}
	if opts.Addr == "" {
		opts.Addr = server.DefaultAddr
	}
	return opts, nil
}

// HandleServe handles the "serve" command. It blocks until ctx is
// cancelled.
func (a *App) HandleServe(ctx context.Context, args Args) error {
	opts, err := a.ServerOptions(args.Parser)
	if err != nil {
		return err
	}

	srv := server.New(a.Executor, opts)
	if a.History != nil {
		srv.WithHistory(a.History)
	}

	fmt.Fprintf(a.Err, "%s toolverse API on http://%s (%d tools)\n",
		SuccessStyle.Render("Serving"), opts.Addr, a.Registry.Len())
	if opts.Token == "" {
		fmt.Fprintln(a.Err, DimStyle.Render("No token configured; any client that can reach the address can run tools."))
	}

	if err := srv.Run(ctx, shutdownGrace); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}
