// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/jeranaias/toolverse/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete toolverse configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	General GeneralConfig `toml:"general" json:"general"`
	Finance FinanceConfig `toml:"finance" json:"finance"`
	Image   ImageConfig   `toml:"image" json:"image"`
	Audio   AudioConfig   `toml:"audio" json:"audio"`
	PDF     PDFConfig     `toml:"pdf" json:"pdf"`
	History HistoryConfig `toml:"history" json:"history"`
	Server  ServerConfig  `toml:"server" json:"server"`
}

// GeneralConfig holds process-wide settings.
type GeneralConfig struct {
	// LogLevel is trace, debug, info, warn, error or off.
	LogLevel string `toml:"log_level" json:"log_level"`
	// LogFile, if set, receives JSON log events.
	LogFile string `toml:"log_file" json:"log_file"`
	// OutputFormat is the default CLI output: text, json or yaml.
	OutputFormat string `toml:"output_format" json:"output_format"`
	// TimeoutSecs bounds a single tool run.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// NoColor disables styled terminal output.
	NoColor bool `toml:"no_color" json:"no_color"`
}

// FinanceConfig holds calculator defaults.
type FinanceConfig struct {
	DefaultCurrency string `toml:"default_currency" json:"default_currency"`
	// Rates are units per USD. Entries override the built-in table.
	Rates map[string]float64 `toml:"rates" json:"rates"`
}

// ImageConfig holds raster tool defaults.
type ImageConfig struct {
	DefaultFormat string `toml:"default_format" json:"default_format"`
	JPEGQuality   int    `toml:"jpeg_quality" json:"jpeg_quality"`
	Filter        string `toml:"filter" json:"filter"`
}

// AudioConfig holds WAV conversion defaults.
type AudioConfig struct {
	SampleRate int `toml:"sample_rate" json:"sample_rate"`
	Channels   int `toml:"channels" json:"channels"`
	BitDepth   int `toml:"bit_depth" json:"bit_depth"`
}

// PDFConfig holds PDF processing settings.
type PDFConfig struct {
	// StrictValidation rejects files that only relaxed parsing accepts.
	StrictValidation bool `toml:"strict_validation" json:"strict_validation"`
}

// HistoryConfig controls the run history store.
type HistoryConfig struct {
	Enabled bool `toml:"enabled" json:"enabled"`
	// Path is the SQLite database file. Empty means ~/.toolverse/history.db.
	Path string `toml:"path" json:"path"`
	// Limit caps stored entries; older ones are pruned.
	Limit int `toml:"limit" json:"limit"`
}

// ServerConfig controls `toolverse serve`.
type ServerConfig struct {
	Addr          string  `toml:"addr" json:"addr"`
	RatePerSecond float64 `toml:"rate_per_second" json:"rate_per_second"`
	Burst         int     `toml:"burst" json:"burst"`
	MaxBodyMB     int     `toml:"max_body_mb" json:"max_body_mb"`
	// Token, if set, is required as a Bearer token on /api requests.
	Token string `toml:"token" json:"token"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// CurrentVersion is written into saved config files.
const CurrentVersion = "1"

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Version: CurrentVersion,
		General: GeneralConfig{
			LogLevel:     "warn",
			OutputFormat: "text",
			TimeoutSecs:  120,
		},
		Finance: FinanceConfig{
			DefaultCurrency: "USD",
		},
		Image: ImageConfig{
			DefaultFormat: "png",
			JPEGQuality:   90,
			Filter:        "catmullrom",
		},
		Audio: AudioConfig{
			SampleRate: 44100,
			Channels:   2,
			BitDepth:   16,
		},
		History: HistoryConfig{
			Enabled: true,
			Limit:   1000,
		},
		Server: ServerConfig{
			Addr:          "127.0.0.1:8787",
			RatePerSecond: 5,
			Burst:         10,
			MaxBodyMB:     64,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the toolverse configuration directory path.
// TOOLVERSE_HOME relocates it.
func ConfigDir() (string, error) {
	if dir := os.Getenv("TOOLVERSE_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".toolverse"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// HistoryPath returns the configured history database path.
func (c *Config) HistoryPath() (string, error) {
	if c.History.Path != "" {
		return c.History.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config directory. TOML is tried first,
// then JSON, then built-in defaults. A .env file in the working directory
// or config directory is read before environment overrides are applied.
func Load() (*Config, error) {
	loadDotEnv()

	cfg := Default()
	tomlPath, err := ConfigPathTOML()
	if err != nil {
		return nil, err
	}
	jsonPath, err := ConfigPathJSON()
	if err != nil {
		return nil, err
	}

	switch {
	case fileExists(tomlPath):
		if err := LoadTOML(cfg, tomlPath); err != nil {
			return nil, fmt.Errorf("failed to load TOML config: %w", err)
		}
	case fileExists(jsonPath):
		if err := LoadJSON(cfg, jsonPath); err != nil {
			return nil, fmt.Errorf("failed to load JSON config: %w", err)
		}
	}

	return finish(cfg)
}

// LoadFromPath loads configuration from a specific file. Files ending in
// .json are read as JSON; anything else as TOML.
func LoadFromPath(path string) (*Config, error) {
	loadDotEnv()

	cfg := Default()
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else if err := LoadTOML(cfg, path); err != nil {
		return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
	}
	return finish(cfg)
}

// LoadTOML decodes a TOML file over cfg. Keys absent from the file keep
// their current values.
func LoadTOML(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// LoadJSON decodes a JSON file over cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

func finish(cfg *Config) (*Config, error) {
	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// loadDotEnv reads .env files without overriding variables already set.
func loadDotEnv() {
	var files []string
	if fileExists(".env") {
		files = append(files, ".env")
	}
	if dir, err := ConfigDir(); err == nil {
		if p := filepath.Join(dir, ".env"); fileExists(p) {
			files = append(files, p)
		}
	}
	if len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not read .env: %v\n", err)
		}
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes cfg as TOML with owner-only permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# toolverse configuration file\n")
	buf.WriteString("# Generated by toolverse - edit with care\n\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFileWithDir(path, buf.Bytes(), 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON writes cfg as indented JSON with owner-only permissions.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFileWithDir(path, data, 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

var (
	validLogLevels     = []string{"trace", "debug", "info", "warn", "warning", "error", "off"}
	validOutputFormats = []string{"text", "json", "yaml"}
	validImageFormats  = []string{"png", "jpeg", "jpg", "gif", "bmp", "tiff"}
	validFilters       = []string{"nearest", "bilinear", "catmullrom"}
)

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return true
		}
	}
	return false
}

// Validate checks every section and returns all problems at once.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, format string, args ...interface{}) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if !oneOf(c.General.LogLevel, validLogLevels) {
		add("general.log_level", "must be one of %s", strings.Join(validLogLevels, ", "))
	}
	if !oneOf(c.General.OutputFormat, validOutputFormats) {
		add("general.output_format", "must be one of %s", strings.Join(validOutputFormats, ", "))
	}
	if c.General.TimeoutSecs < 1 || c.General.TimeoutSecs > 3600 {
		add("general.timeout_secs", "must be between 1 and 3600")
	}

	if len(c.Finance.DefaultCurrency) != 3 {
		add("finance.default_currency", "must be a 3-letter currency code")
	}
	for code, rate := range c.Finance.Rates {
		if len(code) != 3 {
			add("finance.rates", "%q is not a 3-letter currency code", code)
		}
		if rate <= 0 {
			add("finance.rates", "rate for %s must be positive", code)
		}
	}

	if !oneOf(c.Image.DefaultFormat, validImageFormats) {
		add("image.default_format", "must be one of %s", strings.Join(validImageFormats, ", "))
	}
	if c.Image.JPEGQuality < 1 || c.Image.JPEGQuality > 100 {
		add("image.jpeg_quality", "must be between 1 and 100")
	}
	if !oneOf(c.Image.Filter, validFilters) {
		add("image.filter", "must be one of %s", strings.Join(validFilters, ", "))
	}

	if c.Audio.SampleRate < 8000 || c.Audio.SampleRate > 192000 {
		add("audio.sample_rate", "must be between 8000 and 192000")
	}
	if c.Audio.Channels != 1 && c.Audio.Channels != 2 {
		add("audio.channels", "must be 1 or 2")
	}
	if c.Audio.BitDepth != 8 && c.Audio.BitDepth != 16 {
		add("audio.bit_depth", "must be 8 or 16")
	}

	if c.History.Limit < 0 {
		add("history.limit", "cannot be negative")
	}

	if c.Server.Addr == "" {
		add("server.addr", "cannot be empty")
	}
	if c.Server.RatePerSecond <= 0 {
		add("server.rate_per_second", "must be positive")
	}
	if c.Server.Burst < 1 {
		add("server.burst", "must be at least 1")
	}
	if c.Server.MaxBodyMB < 1 || c.Server.MaxBodyMB > 1024 {
		add("server.max_body_mb", "must be between 1 and 1024")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults normalizes case and fills zero values that have no meaning.
func (c *Config) SetDefaults() {
	d := Default()
	if c.Version == "" {
		c.Version = d.Version
	}
	c.General.LogLevel = strings.ToLower(c.General.LogLevel)
	if c.General.LogLevel == "" {
		c.General.LogLevel = d.General.LogLevel
	}
	c.General.OutputFormat = strings.ToLower(c.General.OutputFormat)
	if c.General.OutputFormat == "" {
		c.General.OutputFormat = d.General.OutputFormat
	}
	c.Finance.DefaultCurrency = strings.ToUpper(c.Finance.DefaultCurrency)
	if c.Finance.DefaultCurrency == "" {
		c.Finance.DefaultCurrency = d.Finance.DefaultCurrency
	}
	c.Image.DefaultFormat = strings.ToLower(c.Image.DefaultFormat)
	if c.Image.DefaultFormat == "" {
		c.Image.DefaultFormat = d.Image.DefaultFormat
	}
	c.Image.Filter = strings.ToLower(c.Image.Filter)
	if c.Image.Filter == "" {
		c.Image.Filter = d.Image.Filter
	}
	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// EnvPrefix starts every environment override.
const EnvPrefix = "TOOLVERSE_"

// ApplyEnvOverrides applies TOOLVERSE_* environment variables. Each
// variable maps to a dotted key by replacing the first underscore after
// the section with a dot, e.g. TOOLVERSE_SERVER_ADDR sets server.addr and
// TOOLVERSE_LOG_LEVEL sets general.log_level.
func (c *Config) ApplyEnvOverrides() error {
	var errs ValidateErrors
	for _, key := range GetAllKeys() {
		name := EnvName(key)
		val, ok := os.LookupEnv(name)
		if !ok || val == "" {
			continue
		}
		if err := c.Set(key, val); err != nil {
			errs = append(errs, ValidationError{Field: name, Message: err.Error()})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// EnvName returns the environment variable that overrides key. Keys in
// the general section drop the section name.
func EnvName(key string) string {
	key = strings.TrimPrefix(key, "general.")
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "image.filter").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation. String values are
// converted to the field's type.
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if strings.TrimSpace(key) == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		result.WriteString(strings.ToUpper(part[:1]))
		result.WriteString(strings.ToLower(part[1:]))
	}
	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		strVal = strings.TrimSpace(strVal)
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			boolVal, err := strconv.ParseBool(strings.ToLower(strVal))
			if err != nil {
				boolVal = strings.EqualFold(strVal, "yes") || strings.EqualFold(strVal, "on")
				if !boolVal && !strings.EqualFold(strVal, "no") && !strings.EqualFold(strVal, "off") {
					return fmt.Errorf("invalid boolean value: %q", strVal)
				}
			}
			field.SetBool(boolVal)
			return nil
		case reflect.Map:
			return setRates(field, strVal)
		}
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return fmt.Errorf("cannot assign nil to %s", field.Type())
	}
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// setRates parses "EUR:0.92,GBP:0.79" (or CODE=RATE pairs) into a rate
// table. It accepts what formatting the table for display prints.
func setRates(field reflect.Value, s string) error {
	if field.Type() != reflect.TypeOf(map[string]float64{}) {
		return fmt.Errorf("cannot assign string to %s", field.Type())
	}
	rates := make(map[string]float64)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		code, rate, ok := strings.Cut(pair, ":")
		if !ok {
			code, rate, ok = strings.Cut(pair, "=")
		}
		if !ok || strings.TrimSpace(code) == "" {
			return fmt.Errorf("invalid rate %q, want CODE:RATE", pair)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(rate), 64)
		if err != nil {
			return fmt.Errorf("invalid rate for %s: %v", code, err)
		}
		rates[strings.ToUpper(strings.TrimSpace(code))] = f
	}
	field.Set(reflect.ValueOf(rates))
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// GetAllKeys returns all configuration keys in dot notation, sorted.
func GetAllKeys() []string {
	var keys []string
	collectKeys(reflect.TypeOf(Config{}), "", &keys)
	sort.Strings(keys)
	return keys
}

func collectKeys(t reflect.Type, prefix string, keys *[]string) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
		if name == "" || name == "-" {
			continue
		}
		if f.Type.Kind() == reflect.Struct {
			collectKeys(f.Type, prefix+name+".", keys)
			continue
		}
		*keys = append(*keys, prefix+name)
	}
}

// Clone returns a deep copy of the config.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Finance.Rates != nil {
		clone.Finance.Rates = make(map[string]float64, len(c.Finance.Rates))
		for k, v := range c.Finance.Rates {
			clone.Finance.Rates[k] = v
		}
	}
	return &clone
}

// String returns the config as indented JSON.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance, loading it on first
// access. Load failures fall back to defaults.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
		}
		globalConfigMu.Lock()
		if globalConfig == nil {
			globalConfig = cfg
		}
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal reloads the global configuration from disk.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	SetGlobal(cfg)
	return nil
}

// SetGlobal sets the global configuration instance.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
