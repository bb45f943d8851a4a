// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Command parsing, usage text and version output for toolverse.
package cli

import (
	"fmt"
	"io"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdPick Command = iota
	CmdList
	CmdRun
	CmdForm
	CmdWatch
	CmdHistory
	CmdServe
	CmdConfig
	CmdVersion
	CmdHelp
)

// String returns the command name as typed on the command line.
func (c Command) String() string {
	switch c {
	case CmdPick:
		return "pick"
	case CmdList:
		return "list"
	case CmdRun:
		return "run"
	case CmdForm:
		return "form"
	case CmdWatch:
		return "watch"
	case CmdHistory:
		return "history"
	case CmdServe:
		return "serve"
	case CmdConfig:
		return "config"
	case CmdVersion:
		return "version"
	default:
		return "help"
	}
}

// globalBoolFlags never take a value.
var globalBoolFlags = []string{"quiet", "q", "verbose", "v", "json", "yaml", "no-color", "help", "h", "confirm", "yes", "y", "version"}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet   bool
	Verbose bool
	NoColor bool

	// Format is the --format value; --json and --yaml are shorthands
	Format string

	// ConfigPath overrides the config file location
	ConfigPath string

	// Subcommand is the first positional argument after the command
	Subcommand string

	// Parser holds the command's own flags and positionals
	Parser *ArgParser
}

// Parse parses the command line (without the program name).
func Parse(argv []string) (Command, Args) {
	p := NewArgParser(argv, globalBoolFlags...)
	args := Args{
		Quiet:      p.BoolFlag("quiet") || p.BoolFlag("q"),
		Verbose:    p.BoolFlag("verbose") || p.BoolFlag("v"),
		NoColor:    p.BoolFlag("no-color"),
		Format:     p.Flag("format"),
		ConfigPath: p.Flag("config"),
	}
	switch {
	case p.BoolFlag("json"):
		args.Format = string(FormatJSON)
	case p.BoolFlag("yaml"):
		args.Format = string(FormatYAML)
	}

	// Handlers see their own positionals without the command name.
	args.Parser = p.Shift()
	args.Subcommand = args.Parser.Subcommand()

	if p.BoolFlag("help") || p.BoolFlag("h") {
		return CmdHelp, args
	}
	if p.BoolFlag("version") {
		return CmdVersion, args
	}

	switch strings.ToLower(p.Subcommand()) {
	case "":
		return CmdPick, args
	case "pick", "tui":
		return CmdPick, args
	case "list", "ls", "tools":
		return CmdList, args
	case "run", "r":
		return CmdRun, args
	case "form", "f":
		return CmdForm, args
	case "watch", "w":
		return CmdWatch, args
	case "history", "hist":
		return CmdHistory, args
	case "serve", "server":
		return CmdServe, args
	case "config", "cfg":
		return CmdConfig, args
	case "version":
		return CmdVersion, args
	case "help":
		return CmdHelp, args
	default:
		// "toolverse mortgage --rate 6" is shorthand for "toolverse run mortgage ..."
		args.Parser = p
		args.Subcommand = p.Subcommand()
		return CmdRun, args
	}
}

// =============================================================================
// USAGE
// =============================================================================

const usageText = `toolverse - single-purpose finance, text, image, audio and PDF tools

Usage:
  toolverse                          Pick a tool interactively
  toolverse list [category|tool]     Show the tool catalog
  toolverse run <tool> [flags]       Run a tool (also: toolverse <tool> ...)
  toolverse form <tool>              Prompt for each parameter, then run
  toolverse watch <tool> --input F   Re-run a tool whenever F changes
  toolverse history [list|show|stats|clear]
                                     Inspect past runs
  toolverse serve [--addr HOST:PORT] Serve the HTTP API
  toolverse config [show|get|set|path|init]
                                     View or change configuration
  toolverse version                  Show version information

Run flags:
  --<param> VALUE       Set a tool parameter (e.g. --rate 6.5)
  --param NAME=VALUE    Same, repeatable
  --input FILE          Input file for the tool's file parameter ("-" for stdin)
  --text TEXT           Input text for text tools (stdin is used when piped)
  --output PATH         File or directory for produced files ("-" for stdout)
  --schedule FILE       Write a loan schedule to FILE (.csv or .xlsx)

Global flags:
  --format text|json|yaml   Output format (--json and --yaml are shorthands)
  --config FILE             Use FILE instead of ~/.toolverse/config.toml
  --no-color                Disable colors
  -v, --verbose             Debug logging
  -q, --quiet               Only log errors

Examples:
  toolverse run mortgage --home_price 300000 --down_payment 60000 --rate 6.5
  toolverse loan --principal 20000 --rate 7 --years 5 --schedule loan.xlsx
  cat names.txt | toolverse dedup --case_sensitive false
  toolverse diff --old_file old.txt --new_file new.txt
  toolverse resize --input photo.jpg --width 800 --output out/
  toolverse pdf-split --input report.pdf --pages "1-3, 4-"
  toolverse wav --input song.mp3 --sample_rate 22050 --channels 1

Exit codes:
  0 success, 1 processing failure, 2 invalid usage or input,
  3 configuration error, 7 not found
`

// PrintUsage writes the usage text.
func PrintUsage(w io.Writer) {
	fmt.Fprint(w, usageText)
}

// =============================================================================
// VERSION
// =============================================================================

// VersionData is the machine-readable version payload.
type VersionData struct {
	Version   string `json:"version" yaml:"version"`
	GitCommit string `json:"git_commit" yaml:"git_commit"`
	BuildDate string `json:"build_date" yaml:"build_date"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
}

// CurrentVersion returns the build's version information.
func CurrentVersion() VersionData {
	return VersionData{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// HandleVersion writes version information in format.
func HandleVersion(w io.Writer, format OutputFormat) error {
	v := CurrentVersion()
	return writeData(w, format, "version", v, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "toolverse %s (commit %s, built %s, %s %s)\n",
			v.Version, v.GitCommit, v.BuildDate, v.GoVersion, v.Platform)
		return err
	})
}
