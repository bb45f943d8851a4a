// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// run.go - The run command: build a tool call from flags, execute it and
// write its output and files.
//
// Command: run <tool> [flags]
// Aliases: r, or just the tool name
//
// Examples:
//   toolverse run mortgage --home_price 300000 --down_payment 60000 --rate 6.5
//   toolverse run reverse --text "hello" --mode words
//   echo "b\na\nb" | toolverse dedup
//   toolverse run pdf-merge --input a.pdf --input b.pdf --output merged.pdf
//   toolverse loan --principal 20000 --rate 7 --years 5 --schedule loan.xlsx

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jeranaias/toolverse/internal/tools"
	"github.com/jeranaias/toolverse/internal/util"
)

// runFlags are consumed by the run command itself and never become tool
// parameters.
var runFlags = map[string]bool{
	"param": true, "input": true, "output": true, "schedule": true,
	"format": true, "config": true,
}

// =============================================================================
// CALL CONSTRUCTION
// =============================================================================

// BuildCall turns command-line flags into a tool call. Parameters come from
// --<name> VALUE and --param NAME=VALUE; files from --<file param> PATH or
// --input PATH; text from --text, trailing positionals or piped stdin.
func (a *App) BuildCall(tool *tools.Tool, p *ArgParser) (tools.Call, error) {
	call := tools.Call{Name: tool.Name, Params: map[string]interface{}{}, Files: map[string]tools.File{}}
	raw := make(map[string]string)
	filePaths := make(map[string][]string)

	for _, kv := range p.FlagValues("param") {
		name, value, err := ParseKeyValue(kv)
		if err != nil {
			return call, NewValidationError("param", kv, err.Error())
		}
		raw[paramName(name)] = value
	}

	flagNames := p.FlagNames()
	sort.Strings(flagNames)
	for _, flag := range flagNames {
		if runFlags[flag] {
			continue
		}
		name := paramName(flag)
		param, ok := tool.Schema.Param(name)
		if !ok {
			return call, &tools.ValidationError{Param: name, Message: "unknown parameter for " + tool.Name}
		}
		values := p.FlagValues(flag)
		switch param.Type {
		case tools.TypeFile:
			filePaths[name] = append(filePaths[name], values...)
		case tools.TypeArray:
			raw[name] = strings.Join(values, ",")
		default:
			raw[name] = values[len(values)-1]
		}
	}

	for _, flag := range p.BoolFlagNames() {
		if isGlobalBool(flag) {
			continue
		}
		name := paramName(flag)
		param, ok := tool.Schema.Param(name)
		if !ok || param.Type != tools.TypeBoolean {
			return call, &tools.ValidationError{Param: name, Message: "unknown flag for " + tool.Name}
		}
		raw[name] = "true"
	}

	if err := assignInputs(tool, p.FlagValues("input"), filePaths); err != nil {
		return call, err
	}

	if schedule := p.Flag("schedule"); schedule != "" {
		kind, err := scheduleKind(schedule)
		if err != nil {
			return call, err
		}
		if _, ok := tool.Schema.Param("schedule"); !ok {
			return call, NewValidationError("schedule", schedule, tool.Name+" does not produce a schedule")
		}
		raw["schedule"] = kind
	}

	params, err := tool.ParseArgs(raw)
	if err != nil {
		return call, err
	}
	call.Params = params

	for name, paths := range filePaths {
		for i, path := range paths {
			f, err := a.readFile(path)
			if err != nil {
				return call, err
			}
			call.Files[tools.FileKey(name, i)] = f
		}
	}

	if err := a.fillText(tool, p, &call); err != nil {
		return call, err
	}
	return call, nil
}

// paramName maps a flag spelling to a schema name: --home-price and
// --home_price both mean home_price.
func paramName(flag string) string {
	return strings.ReplaceAll(strings.ToLower(flag), "-", "_")
}

func isGlobalBool(name string) bool {
	for _, g := range globalBoolFlags {
		if g == name {
			return true
		}
	}
	return false
}

// assignInputs hands --input paths to the tool's file parameters in schema
// order. A multi-file parameter takes every remaining path.
func assignInputs(tool *tools.Tool, inputs []string, filePaths map[string][]string) error {
	if len(inputs) == 0 {
		return nil
	}
	var fileParams []tools.Parameter
	for _, param := range tool.Schema.Parameters {
		if param.Type == tools.TypeFile {
			fileParams = append(fileParams, param)
		}
	}
	if len(fileParams) == 0 {
		return NewValidationError("input", inputs[0], tool.Name+" does not take files")
	}

	for _, param := range fileParams {
		if len(inputs) == 0 {
			break
		}
		if len(filePaths[param.Name]) > 0 {
			continue
		}
		if param.Multiple {
			filePaths[param.Name] = append(filePaths[param.Name], inputs...)
			inputs = nil
			break
		}
		filePaths[param.Name] = []string{inputs[0]}
		inputs = inputs[1:]
	}
	if len(inputs) > 0 {
		return NewValidationError("input", strings.Join(inputs, ", "), "too many input files for "+tool.Name)
	}
	return nil
}

func scheduleKind(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return "csv", nil
	case ".xlsx":
		return "xlsx", nil
	}
	return "", &ValidationError{Field: "schedule", Value: path, Reason: "must end in .csv or .xlsx", Example: "--schedule loan.xlsx"}
}

// readFile loads an input file; "-" reads stdin.
func (a *App) readFile(path string) (tools.File, error) {
	if path == "-" {
		data, err := io.ReadAll(a.In)
		if err != nil {
			return tools.File{}, fmt.Errorf("reading stdin: %w", err)
		}
		return tools.File{Name: "stdin", Data: data}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return tools.File{}, ErrNotFound("file", path)
		}
		return tools.File{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return tools.File{Name: filepath.Base(path), Data: data}, nil
}

// fillText supplies the text parameter from trailing positionals or piped
// stdin when neither --text nor a file was given.
func (a *App) fillText(tool *tools.Tool, p *ArgParser, call *tools.Call) error {
	if _, ok := tool.Schema.Param("text"); !ok {
		if p.PositionalCount() > 1 {
			return NewValidationError("arguments", strings.Join(p.PositionalFrom(1), " "), tool.Name+" takes no positional arguments")
		}
		return nil
	}
	if _, set := call.Params["text"]; set {
		return nil
	}
	if _, set := call.Files["input"]; set {
		return nil
	}
	if p.PositionalCount() > 1 {
		call.Params["text"] = strings.Join(p.PositionalFrom(1), " ")
		return nil
	}
	if a.In == nil || isTerminal(a.In) {
		return nil
	}
	data, err := io.ReadAll(a.In)
	if err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}
	if len(data) > 0 {
		call.Params["text"] = string(data)
	}
	return nil
}

// =============================================================================
// RUN COMMAND
// =============================================================================

// ArtifactOutput describes a file written by a run.
type ArtifactOutput struct {
	Name        string `json:"name" yaml:"name"`
	ContentType string `json:"content_type" yaml:"content_type"`
	Size        int    `json:"size" yaml:"size"`
	Path        string `json:"path,omitempty" yaml:"path,omitempty"`
}

// RunOutput is the json/yaml payload of a run.
type RunOutput struct {
	Tool       string           `json:"tool" yaml:"tool"`
	Category   string           `json:"category" yaml:"category"`
	Output     string           `json:"output" yaml:"output"`
	Data       interface{}      `json:"data,omitempty" yaml:"data,omitempty"`
	Artifacts  []ArtifactOutput `json:"artifacts,omitempty" yaml:"artifacts,omitempty"`
	DurationMs int64            `json:"duration_ms" yaml:"duration_ms"`
}

// HandleRun handles "run <tool>".
func (a *App) HandleRun(ctx context.Context, args Args) error {
	tool, err := a.lookupTool(args.Subcommand)
	if err != nil {
		return err
	}
	call, err := a.BuildCall(tool, args.Parser)
	if err != nil {
		return err
	}
	return a.execute(ctx, tool, call, args.Parser.Flag("output"), args.Parser.Flag("schedule"))
}

// execute runs call and writes the result. output and schedule are the
// --output and --schedule destinations, either may be empty.
func (a *App) execute(ctx context.Context, tool *tools.Tool, call tools.Call, output, schedule string) error {
	result, err := a.Executor.Execute(ctx, call)
	if err != nil {
		return err
	}

	var written []ArtifactOutput
	if output == "-" {
		if len(result.Artifacts) != 1 {
			return NewValidationError("output", output, fmt.Sprintf("stdout takes exactly one file, %s produced %d", tool.Name, len(result.Artifacts)))
		}
		_, err := a.Out.Write(result.Artifacts[0].Data)
		return err
	}
	written, err = a.writeArtifacts(result.Artifacts, output, schedule)
	if err != nil {
		return err
	}

	out := RunOutput{
		Tool:       tool.Name,
		Category:   string(tool.Category),
		Output:     result.Output,
		Data:       result.Data,
		Artifacts:  written,
		DurationMs: result.Duration.Milliseconds(),
	}
	return writeData(a.Out, a.Format, tool.Name, out, func(w io.Writer) error {
		return a.renderRun(w, tool, out)
	})
}

func (a *App) renderRun(w io.Writer, tool *tools.Tool, out RunOutput) error {
	text := strings.TrimRight(out.Output, "\n")
	if tool.Name == "diff" && ColorsEnabled() {
		text = colorizeDiff(text)
	}
	if text != "" {
		if _, err := fmt.Fprintln(w, text); err != nil {
			return err
		}
	}
	for _, art := range out.Artifacts {
		fmt.Fprintf(w, "%s %s %s\n", SuccessStyle.Render("Wrote"), art.Path,
			DimStyle.Render("("+util.FormatBytes(int64(art.Size))+")"))
	}
	return nil
}

// writeArtifacts saves produced files. With no destination they go into
// a.Dir under fresh names. A destination that is an existing directory,
// ends in a separator or receives several files is treated as a
// directory; otherwise it is the file name for the single artifact.
func (a *App) writeArtifacts(artifacts []tools.Artifact, output, schedule string) ([]ArtifactOutput, error) {
	if len(artifacts) == 0 {
		return nil, nil
	}

	dir, file := a.Dir, ""
	if output != "" {
		if info, err := os.Stat(output); (err == nil && info.IsDir()) ||
			strings.HasSuffix(output, string(os.PathSeparator)) || strings.HasSuffix(output, "/") ||
			len(artifacts) > 1 {
			dir = output
		} else {
			file = output
		}
	}

	written := make([]ArtifactOutput, 0, len(artifacts))
	for _, art := range artifacts {
		var path string
		switch {
		case schedule != "" && isSchedule(art):
			path = schedule
		case file != "":
			path = file
		default:
			path = util.UniquePath(filepath.Join(dir, art.Name))
		}
		if err := util.AtomicWriteFileWithDir(path, art.Data, 0644, 0755); err != nil {
			return written, fmt.Errorf("writing %s: %w", path, err)
		}
		a.Logger.Debug().Str("path", path).Int("bytes", art.Size()).Msg("artifact written")
		written = append(written, ArtifactOutput{
			Name:        art.Name,
			ContentType: art.ContentType,
			Size:        art.Size(),
			Path:        path,
		})
	}
	return written, nil
}

func isSchedule(art tools.Artifact) bool {
	base := strings.TrimSuffix(art.Name, filepath.Ext(art.Name))
	return strings.HasSuffix(base, "_schedule")
}
