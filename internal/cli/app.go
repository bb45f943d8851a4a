// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// app.go - Wiring between configuration, the tool executor and history.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/jeranaias/toolverse/internal/audio"
	"github.com/jeranaias/toolverse/internal/config"
	"github.com/jeranaias/toolverse/internal/history"
	"github.com/jeranaias/toolverse/internal/imaging"
	"github.com/jeranaias/toolverse/internal/pdf"
	"github.com/jeranaias/toolverse/internal/tools"
)

// =============================================================================
// APP
// =============================================================================

// App carries everything a command handler needs.
type App struct {
	Config   *config.Config
	Registry *tools.Registry
	Executor *tools.Executor

	// History is nil when history is disabled or could not be opened
	History *history.Store

	Logger zerolog.Logger
	Format OutputFormat

	In  io.Reader
	Out io.Writer
	Err io.Writer

	// Dir is where artifacts go when --output is not given
	Dir string

	// ConfigPath is the file config set/init write to; empty means the
	// default TOML path
	ConfigPath string
}

// AppOption customizes NewApp.
type AppOption func(*App)

// WithIO replaces stdin, stdout and stderr.
func WithIO(in io.Reader, out, errOut io.Writer) AppOption {
	return func(a *App) {
		a.In, a.Out, a.Err = in, out, errOut
	}
}

// WithHistoryStore uses store instead of opening the configured database.
func WithHistoryStore(store *history.Store) AppOption {
	return func(a *App) {
		a.History = store
	}
}

// WithOutputDir sets the default artifact directory.
func WithOutputDir(dir string) AppOption {
	return func(a *App) {
		a.Dir = dir
	}
}

// WithConfigPath records the config file given with --config.
func WithConfigPath(path string) AppOption {
	return func(a *App) {
		a.ConfigPath = path
	}
}

// NewApp builds the registry and executor from cfg. History is opened
// when enabled; failing to open it is logged and the app runs without it.
func NewApp(cfg *config.Config, logger zerolog.Logger, opts ...AppOption) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	settings, err := SettingsFromConfig(cfg)
	if err != nil {
		return nil, &ConfigError{Err: err}
	}
	format, err := ParseOutputFormat(cfg.General.OutputFormat)
	if err != nil {
		return nil, &ConfigError{Err: err}
	}
	pdf.SetStrictValidation(cfg.PDF.StrictValidation)

	a := &App{
		Config: cfg,
		Logger: logger,
		Format: format,
		In:     os.Stdin,
		Out:    os.Stdout,
		Err:    os.Stderr,
		Dir:    ".",
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.History == nil && cfg.History.Enabled {
		if store, err := openHistory(cfg); err != nil {
			logger.Warn().Err(err).Msg("history disabled")
		} else {
			a.History = store
		}
	}

	a.Registry = tools.NewRegistryWithSettings(settings)
	execOpts := []tools.ExecutorOption{
		tools.WithLogger(logger),
		tools.WithTimeout(time.Duration(cfg.General.TimeoutSecs) * time.Second),
	}
	if a.History != nil {
		execOpts = append(execOpts, tools.WithRecorder(a.History.Recorder()))
	}
	a.Executor = tools.NewExecutor(a.Registry, execOpts...)
	return a, nil
}

func openHistory(cfg *config.Config) (*history.Store, error) {
	path, err := cfg.HistoryPath()
	if err != nil {
		return nil, err
	}
	return history.Open(path, cfg.History.Limit)
}

// Close releases the history store.
func (a *App) Close() error {
	if a.History != nil {
		return a.History.Close()
	}
	return nil
}

// SettingsFromConfig maps configuration onto tool defaults.
func SettingsFromConfig(cfg *config.Config) (tools.Settings, error) {
	s := tools.DefaultSettings()

	if cfg.Finance.DefaultCurrency != "" {
		s.DefaultCurrency = cfg.Finance.DefaultCurrency
	}
	s.Rates = cfg.Finance.Rates

	if cfg.Image.DefaultFormat != "" {
		f, err := imaging.ParseFormat(cfg.Image.DefaultFormat)
		if err != nil {
			return s, fmt.Errorf("image.default_format: %w", err)
		}
		s.ImageFormat = f
	}
	if cfg.Image.JPEGQuality > 0 {
		s.JPEGQuality = cfg.Image.JPEGQuality
	}
	if cfg.Image.Filter != "" {
		f, err := imaging.ParseFilter(cfg.Image.Filter)
		if err != nil {
			return s, fmt.Errorf("image.filter: %w", err)
		}
		s.Filter = f
	}

	s.Audio = audio.ConvertOptions{
		SampleRate: cfg.Audio.SampleRate,
		Channels:   cfg.Audio.Channels,
		BitDepth:   cfg.Audio.BitDepth,
	}
	if err := s.Audio.Validate(); err != nil {
		return s, fmt.Errorf("audio: %w", err)
	}
	return s, nil
}

// =============================================================================
// DISPATCH
// =============================================================================

// FormatFor returns the output format of one command: --format, --json or
// --yaml when given, otherwise the configured default.
func (a *App) FormatFor(args Args) (OutputFormat, error) {
	if args.Format == "" {
		return a.Format, nil
	}
	return ParseOutputFormat(args.Format)
}

// Dispatch runs one parsed command. Format flags apply to that command
// only; a.Format keeps the configured default.
func (a *App) Dispatch(ctx context.Context, cmd Command, args Args) error {
	format, err := a.FormatFor(args)
	if err != nil {
		return err
	}
	run := *a
	run.Format = format
	return run.dispatch(ctx, cmd, args)
}

func (a *App) dispatch(ctx context.Context, cmd Command, args Args) error {
	switch cmd {
	case CmdPick:
		return a.HandlePick(ctx, args)
	case CmdList:
		return a.HandleList(args)
	case CmdRun:
		return a.HandleRun(ctx, args)
	case CmdForm:
		return a.HandleForm(ctx, args)
	case CmdWatch:
		return a.HandleWatch(ctx, args)
	case CmdHistory:
		return a.HandleHistory(ctx, args)
	case CmdServe:
		return a.HandleServe(ctx, args)
	case CmdConfig:
		return a.HandleConfig(args)
	case CmdVersion:
		return HandleVersion(a.Out, a.Format)
	case CmdHelp:
		PrintUsage(a.Out)
		return nil
	}
	return fmt.Errorf("unhandled command %v", cmd)
}

// lookupTool resolves a tool name or alias.
func (a *App) lookupTool(name string) (*tools.Tool, error) {
	if name == "" {
		return nil, ErrMissingArgument("tool", "toolverse run mortgage --home_price 300000 --down_payment 60000 --rate 6.5")
	}
	tool := a.Registry.Get(name)
	if tool == nil {
		return nil, &NotFoundError{Resource: "tool", ID: name, Suggestion: Suggest(name, a.toolNames())}
	}
	return tool, nil
}

// requireHistory returns the store or a usage error explaining why not.
func (a *App) requireHistory() (*history.Store, error) {
	if a.History == nil {
		return nil, errors.New("history is disabled; enable it with: toolverse config set history.enabled true")
	}
	return a.History, nil
}
