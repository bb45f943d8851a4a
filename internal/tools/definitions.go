// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// CATEGORIES
// =============================================================================

// Category groups related tools.
type Category string

const (
	CategoryFinance Category = "finance"
	CategoryText    Category = "text"
	CategoryImage   Category = "image"
	CategoryAudio   Category = "audio"
	CategoryPDF     Category = "pdf"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryFinance, CategoryText, CategoryImage, CategoryAudio, CategoryPDF}

// Title returns the display name of a category.
func (c Category) Title() string {
	switch c {
	case CategoryPDF:
		return "PDF"
	case "":
		return ""
	default:
		return strings.ToUpper(string(c[:1])) + string(c[1:])
	}
}

func (c Category) order() int {
	for i, cat := range Categories {
		if cat == c {
			return i
		}
	}
	return len(Categories)
}

// =============================================================================
// TOOL DEFINITION
// =============================================================================

// Tool represents an executable tool.
type Tool struct {
	// Name is the tool identifier (e.g., "mortgage", "pdf-split")
	Name string

	// Aliases are alternative names accepted by Registry.Get
	Aliases []string

	Category Category

	// Description is a one-line summary shown in listings
	Description string

	// Usage is a longer explanation with an example invocation
	Usage string

	// Schema defines the tool's parameters
	Schema Schema

	// Executor handles the actual execution
	Executor ToolExecutor
}

// Parameter types.
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeInteger = "integer"
	TypeBoolean = "boolean"
	TypeFile    = "file"
	TypeArray   = "array"
)

// Schema defines a tool's parameters.
type Schema struct {
	Parameters []Parameter
}

// Parameter defines a single tool parameter.
type Parameter struct {
	// Name of the parameter
	Name string

	// Type is one of string, number, integer, boolean, file, array
	Type string

	// Required indicates if the parameter must be provided
	Required bool

	// Description explains the parameter
	Description string

	// Default is the default value if not provided
	Default interface{}

	// Enum contains allowed values for string parameters
	Enum []string

	// Min and Max bound numeric values when non-nil
	Min *float64
	Max *float64

	// Multiple allows a file parameter to receive several files
	Multiple bool
}

// Param looks up a parameter by name.
func (s Schema) Param(name string) (Parameter, bool) {
	for _, p := range s.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// HasFiles reports whether any parameter takes file input.
func (s Schema) HasFiles() bool {
	for _, p := range s.Parameters {
		if p.Type == TypeFile {
			return true
		}
	}
	return false
}

func bound(v float64) *float64 { return &v }

// =============================================================================
// TOOL EXECUTOR INTERFACE
// =============================================================================

// ToolExecutor is the interface for individual tool execution.
type ToolExecutor interface {
	Execute(ctx context.Context, call Call) (Result, error)
}

// ExecutorFunc adapts a function to ToolExecutor.
type ExecutorFunc func(ctx context.Context, call Call) (Result, error)

// Execute calls f.
func (f ExecutorFunc) Execute(ctx context.Context, call Call) (Result, error) {
	return f(ctx, call)
}

// Result holds the outcome of a tool execution.
type Result struct {
	// Output is the human-readable result
	Output string `json:"output"`

	// Data is the structured result for JSON and YAML output
	Data interface{} `json:"data,omitempty"`

	// Artifacts are downloadable files produced by the tool
	Artifacts []Artifact `json:"artifacts,omitempty"`

	// Duration is how long execution took
	Duration time.Duration `json:"duration"`
}

// Artifact is a produced file.
type Artifact struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"-"`
}

// Size returns the artifact length in bytes.
func (a Artifact) Size() int { return len(a.Data) }

// =============================================================================
// TOOL CALL
// =============================================================================

// File is an uploaded or read input file.
type File struct {
	Name string
	Data []byte
}

// Call represents a tool invocation. Files holds file parameters by name;
// a Multiple parameter stores its files as name, name[1], name[2], ...
type Call struct {
	Name   string
	Params map[string]interface{}
	Files  map[string]File
}

// FileKey returns the Files key for the i-th file of a parameter.
func FileKey(name string, i int) string {
	if i == 0 {
		return name
	}
	return fmt.Sprintf("%s[%d]", name, i)
}

// GetString gets a string parameter with a default value.
func (c Call) GetString(name string, defaultVal string) string {
	if val, ok := c.Params[name]; ok {
		switch v := val.(type) {
		case string:
			return v
		case fmt.Stringer:
			return v.String()
		}
	}
	return defaultVal
}

// GetFloat gets a numeric parameter with a default value.
func (c Call) GetFloat(name string, defaultVal float64) float64 {
	if val, ok := c.Params[name]; ok {
		if f, ok := toFloat(val); ok {
			return f
		}
	}
	return defaultVal
}

// GetInt gets an integer parameter with a default value.
func (c Call) GetInt(name string, defaultVal int) int {
	if val, ok := c.Params[name]; ok {
		if f, ok := toFloat(val); ok {
			return int(f)
		}
	}
	return defaultVal
}

// GetBool gets a boolean parameter with a default value.
func (c Call) GetBool(name string, defaultVal bool) bool {
	if val, ok := c.Params[name]; ok {
		if b, ok := val.(bool); ok {
			return b
		}
	}
	return defaultVal
}

// GetStrings gets an array parameter as strings.
func (c Call) GetStrings(name string) []string {
	val, ok := c.Params[name]
	if !ok {
		return nil
	}
	switch v := val.(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out
	case string:
		return splitList(v)
	}
	return nil
}

// GetFile returns the first file for a parameter.
func (c Call) GetFile(name string) (File, bool) {
	f, ok := c.Files[name]
	return f, ok
}

// GetFiles returns every file for a Multiple parameter in order.
func (c Call) GetFiles(name string) []File {
	var files []File
	for i := 0; ; i++ {
		f, ok := c.Files[FileKey(name, i)]
		if !ok {
			return files
		}
		files = append(files, f)
	}
}

func toFloat(val interface{}) (float64, bool) {
	switch v := val.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// =============================================================================
// ARGUMENT PARSING
// =============================================================================

// ParseArgs converts raw string arguments from the command line or a form
// into typed parameters following the tool's schema. Unknown names are
// rejected.
func (t *Tool) ParseArgs(raw map[string]string) (map[string]interface{}, error) {
	params := make(map[string]interface{}, len(raw))
	for name, value := range raw {
		p, ok := t.Schema.Param(name)
		if !ok {
			return nil, &ValidationError{Param: name, Message: "unknown parameter for " + t.Name}
		}
		v, err := parseArg(p, value)
		if err != nil {
			return nil, err
		}
		params[name] = v
	}
	return params, nil
}

func parseArg(p Parameter, value string) (interface{}, error) {
	value = strings.TrimSpace(value)
	switch p.Type {
	case TypeNumber:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, &ValidationError{Param: p.Name, Message: fmt.Sprintf("%q is not a number", value)}
		}
		return f, nil
	case TypeInteger:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, &ValidationError{Param: p.Name, Message: fmt.Sprintf("%q is not a whole number", value)}
		}
		return n, nil
	case TypeBoolean:
		if value == "" {
			return true, nil
		}
		b, err := strconv.ParseBool(strings.ToLower(value))
		if err != nil {
			return nil, &ValidationError{Param: p.Name, Message: fmt.Sprintf("%q is not true or false", value)}
		}
		return b, nil
	case TypeArray:
		items := splitList(value)
		out := make([]interface{}, len(items))
		for i, item := range items {
			out[i] = item
		}
		return out, nil
	case TypeFile:
		return nil, &ValidationError{Param: p.Name, Message: "file parameters take a file, not a value"}
	}
	return value, nil
}

// =============================================================================
// TOOL REGISTRY
// =============================================================================

// Registry holds all available tools.
type Registry struct {
	tools   map[string]*Tool
	aliases map[string]string
}

// NewRegistry creates a registry with every built-in tool using default
// settings.
func NewRegistry() *Registry {
	return NewRegistryWithSettings(DefaultSettings())
}

// NewRegistryWithSettings creates a registry whose built-in tools use s.
func NewRegistryWithSettings(s Settings) *Registry {
	r := NewEmptyRegistry()
	r.RegisterBuiltins(s)
	return r
}

// NewEmptyRegistry creates a registry with no tools.
func NewEmptyRegistry() *Registry {
	return &Registry{
		tools:   make(map[string]*Tool),
		aliases: make(map[string]string),
	}
}

// RegisterBuiltins registers all built-in tools.
func (r *Registry) RegisterBuiltins(s Settings) {
	for _, t := range financeTools(s) {
		r.Register(t)
	}
	for _, t := range textTools() {
		r.Register(t)
	}
	for _, t := range imageTools(s) {
		r.Register(t)
	}
	for _, t := range audioTools(s) {
		r.Register(t)
	}
	for _, t := range pdfTools() {
		r.Register(t)
	}
}

// Register adds a tool to the registry, replacing any tool of the same name.
func (r *Registry) Register(tool *Tool) {
	name := strings.ToLower(tool.Name)
	r.tools[name] = tool
	for _, alias := range tool.Aliases {
		r.aliases[strings.ToLower(alias)] = name
	}
}

// Get retrieves a tool by name or alias, ignoring case and treating
// underscores as dashes.
func (r *Registry) Get(name string) *Tool {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
	if t, ok := r.tools[key]; ok {
		return t
	}
	if target, ok := r.aliases[key]; ok {
		return r.tools[target]
	}
	return nil
}

// All returns all registered tools sorted by category then name.
func (r *Registry) All() []*Tool {
	result := make([]*Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		result = append(result, tool)
	}
	sort.Slice(result, func(i, j int) bool {
		ci, cj := result[i].Category.order(), result[j].Category.order()
		if ci != cj {
			return ci < cj
		}
		return result[i].Name < result[j].Name
	})
	return result
}

// ByCategory returns the tools in one category, sorted by name.
func (r *Registry) ByCategory(c Category) []*Tool {
	var result []*Tool
	for _, t := range r.All() {
		if t.Category == c {
			result = append(result, t)
		}
	}
	return result
}

// Names returns every tool name, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for _, t := range r.tools {
		names = append(names, t.Name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.tools)
}
