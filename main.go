// toolverse - Single-purpose finance, text, image, audio and PDF tools.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jeranaias/toolverse/internal/cli"
	"github.com/jeranaias/toolverse/internal/config"
	"github.com/jeranaias/toolverse/internal/logging"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes one command and returns the process exit code.
func run(argv []string) int {
	cli.Version, cli.GitCommit, cli.BuildDate = Version, GitCommit, BuildDate

	cmd, args := cli.Parse(argv)
	format := cli.FormatText
	if f, err := cli.ParseOutputFormat(args.Format); err == nil && args.Format != "" {
		format = f
	}

	cfg, err := loadConfig(args.ConfigPath)
	if err != nil {
		// Help and version still work with a broken config file.
		if cmd != cli.CmdHelp && cmd != cli.CmdVersion {
			cli.DisplayError(os.Stderr, err, format)
			return cli.GetExitCode(err)
		}
		cfg = config.Default()
	}
	if args.NoColor || cfg.General.NoColor {
		cli.ForceColorsEnabled(false)
	}

	closer, err := setupLogging(cfg, args)
	if err != nil {
		cli.DisplayError(os.Stderr, &cli.ConfigError{Err: err}, format)
		return cli.ExitConfigError
	}
	defer closer.Close()
	logger := logging.Logger()

	app, err := cli.NewApp(cfg, logger, cli.WithConfigPath(args.ConfigPath))
	if err != nil {
		cli.DisplayError(os.Stderr, err, format)
		return cli.GetExitCode(err)
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Dispatch(ctx, cmd, args); err != nil {
		if ctx.Err() != nil {
			logger.Debug().Err(err).Msg("interrupted")
			return cli.ExitGeneralError
		}
		if f, ferr := app.FormatFor(args); ferr == nil {
			format = f
		}
		cli.DisplayError(os.Stderr, err, format)
		return cli.GetExitCode(err)
	}
	return cli.ExitSuccess
}

// loadConfig reads --config when given, otherwise the default location.
func loadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFromPath(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, &cli.ConfigError{Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return nil, &cli.ConfigError{Err: err}
	}
	return cfg, nil
}

// setupLogging applies the configured level; --verbose and --quiet win.
func setupLogging(cfg *config.Config, args cli.Args) (io.Closer, error) {
	level := cfg.General.LogLevel
	switch {
	case args.Verbose:
		level = "debug"
	case args.Quiet:
		level = "error"
	}
	return logging.Setup(logging.Options{Level: level, File: cfg.General.LogFile})
}
