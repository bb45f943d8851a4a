// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - Config command implementation for toolverse.
//
// Command: config [subcommand]
// Short:   View and modify configuration
// Aliases: cfg
//
// Subcommands:
//   show (default)      Display current configuration
//   get <key>           Print one value
//   set <key> <value>   Set a configuration value
//   init                Write a default config file if none exists
//   reset --confirm     Overwrite the config file with defaults
//   path                Show configuration file path
//
// Examples:
//   toolverse config                              Show current config
//   toolverse config show --json                  Config in JSON format
//   toolverse config get image.jpeg_quality
//   toolverse config set finance.default_currency EUR
//   toolverse config set finance.rates "USD:1,EUR:0.92,GBP:0.79"
//   toolverse config set history.enabled false
//   toolverse config set server.token s3cret
//   toolverse config path
package cli

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jeranaias/toolverse/internal/config"
)

// =============================================================================
// HANDLE CONFIG
// =============================================================================

// ConfigPathData is the payload of "config path".
type ConfigPathData struct {
	Path   string `json:"path" yaml:"path"`
	Exists bool   `json:"exists" yaml:"exists"`
}

// ConfigValueData is the payload of "config get" and "config set".
type ConfigValueData struct {
	Key   string      `json:"key" yaml:"key"`
	Value interface{} `json:"value" yaml:"value"`
}

// HandleConfig handles the "config" command.
func (a *App) HandleConfig(args Args) error {
	p := args.Parser
	switch args.Subcommand {
	case "", "show":
		return a.configShow()
	case "get":
		return a.configGet(p.Positional(1))
	case "set":
		return a.configSet(p.Positional(1), strings.Join(p.PositionalFrom(2), " "))
	case "init":
		return a.configInit(false)
	case "reset":
		path, err := a.configFile()
		if err != nil {
			return &ConfigError{Err: err}
		}
		if err := a.requireConfirmation("overwrite the config file with defaults", "toolverse config reset", ConfirmationOptions{
			ConfirmFlag: confirmFlag(p),
			Details:     map[string]string{"File": path},
		}); err != nil {
			return err
		}
		return a.configInit(true)
	case "path":
		return a.configPath()
	default:
		return &ValidationError{
			Field:   "subcommand",
			Value:   args.Subcommand,
			Reason:  "unknown config subcommand",
			Example: "toolverse config [show|get|set|init|reset|path]",
		}
	}
}

// configFile returns where config changes are written.
func (a *App) configFile() (string, error) {
	if a.ConfigPath != "" {
		return a.ConfigPath, nil
	}
	return config.ConfigPathTOML()
}

func saveConfig(cfg *config.Config, path string) error {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return config.SaveJSON(cfg, path)
	}
	return config.SaveTOML(cfg, path)
}

// configShow displays the current configuration grouped by section.
func (a *App) configShow() error {
	path, _ := a.configFile()
	values := make(map[string]interface{})
	for _, key := range config.GetAllKeys() {
		v, err := a.Config.Get(key)
		if err != nil {
			continue
		}
		if isSecretKey(key) {
			v = maskSecret(fmt.Sprint(v))
		}
		values[key] = v
	}

	if a.Format != FormatText {
		return writeData(a.Out, a.Format, "config show", map[string]interface{}{
			"path":   path,
			"values": values,
		}, nil)
	}

	w := a.Out
	fmt.Fprintln(w)
	fmt.Fprintln(w, TitleStyle.Render("toolverse Configuration"))
	fmt.Fprintln(w, RenderSeparator(41))

	section := ""
	for _, key := range config.GetAllKeys() {
		v, ok := values[key]
		if !ok {
			continue
		}
		sec, name, _ := strings.Cut(key, ".")
		if sec != section {
			section = sec
			fmt.Fprintln(w)
			fmt.Fprintln(w, SectionStyle.Render("["+sec+"]"))
		}
		fmt.Fprintf(w, "  %s%s\n", RenderLabel(name+":", 22), ValueStyle.Render(formatConfigValue(v)))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, SeparatorStyle.Render(strings.Repeat("-", 41)))
	fmt.Fprintf(w, "Config file: %s\n", DimStyle.Render(path))
	return nil
}

func (a *App) configGet(key string) error {
	if key == "" {
		return ErrMissingArgument("key", "toolverse config get image.jpeg_quality")
	}
	v, err := a.Config.Get(key)
	if err != nil {
		return unknownKeyError(key, err)
	}
	if isSecretKey(key) {
		v = maskSecret(fmt.Sprint(v))
	}
	return writeData(a.Out, a.Format, "config get", ConfigValueData{Key: key, Value: v}, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, formatConfigValue(v))
		return err
	})
}

// configSet validates the change before anything is written.
func (a *App) configSet(key, value string) error {
	if key == "" {
		return ErrMissingArgument("key", "toolverse config set <key> <value>")
	}
	if value == "" {
		return ErrMissingArgument("value", "toolverse config set "+key+" <value>")
	}
	key = strings.ToLower(key)

	cfg := a.Config.Clone()
	if err := cfg.Set(key, value); err != nil {
		return unknownKeyError(key, err)
	}
	if err := cfg.Validate(); err != nil {
		return &ConfigError{Err: err}
	}

	path, err := a.configFile()
	if err != nil {
		return err
	}
	if err := saveConfig(cfg, path); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	*a.Config = *cfg
	a.Logger.Debug().Str("key", key).Str("path", path).Msg("config updated")

	shown := value
	if isSecretKey(key) {
		shown = maskSecret(value)
	}
	return writeData(a.Out, a.Format, "config set", ConfigValueData{Key: key, Value: shown}, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "%s %s = %s\n", okMark(), key, shown)
		return err
	})
}

// configInit writes the defaults. Without overwrite an existing file is
// left alone.
func (a *App) configInit(overwrite bool) error {
	path, err := a.configFile()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil && !overwrite {
		return writeData(a.Out, a.Format, "config init", ConfigPathData{Path: path, Exists: true}, func(w io.Writer) error {
			_, err := fmt.Fprintf(w, "%s already exists; use 'toolverse config reset --confirm' to overwrite\n", path)
			return err
		})
	}

	cfg := config.Default()
	if err := saveConfig(cfg, path); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	*a.Config = *cfg
	return writeData(a.Out, a.Format, "config init", ConfigPathData{Path: path, Exists: true}, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "%s Wrote default configuration to %s\n", okMark(), path)
		return err
	})
}

// configPath shows the config file path.
func (a *App) configPath() error {
	path, err := a.configFile()
	if err != nil {
		return err
	}
	_, statErr := os.Stat(path)
	data := ConfigPathData{Path: path, Exists: statErr == nil}
	return writeData(a.Out, a.Format, "config path", data, func(w io.Writer) error {
		fmt.Fprintln(w, path)
		if !data.Exists {
			fmt.Fprintf(a.Err, "%s (file does not exist - run 'toolverse config init')\n", DimStyle.Render("Note"))
		}
		return nil
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func unknownKeyError(key string, err error) error {
	return &ValidationError{
		Field:   "key",
		Value:   key,
		Reason:  err.Error(),
		Example: "valid keys: " + strings.Join(config.GetAllKeys(), ", "),
	}
}

func formatConfigValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		if val == "" {
			return "(not set)"
		}
		return val
	case map[string]float64:
		if len(val) == 0 {
			return "(none)"
		}
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s:%g", k, val[k])
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(v)
	}
}

// maskSecret shows a SHA-256 fingerprint instead of the secret.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(s))
	return fmt.Sprintf("sha256:%x...", hash[:4])
}

func isSecretKey(key string) bool {
	key = strings.ToLower(key)
	for _, s := range []string{"token", "secret", "password"} {
		if strings.Contains(key, s) {
			return true
		}
	}
	return false
}
