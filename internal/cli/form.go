// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// form.go - Prompt for each parameter of a tool, then run it.
//
// Command: form <tool>
// Aliases: f
//
// Each parameter is asked for in schema order. An empty answer keeps the
// default or skips an optional parameter; invalid answers are asked again.
// Input history is kept in ~/.toolverse/form_history.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/jeranaias/toolverse/internal/config"
	"github.com/jeranaias/toolverse/internal/tools"
)

// ErrFormCancelled is returned when the user aborts a form.
var ErrFormCancelled = errors.New("form cancelled")

// maxAttempts bounds re-prompts for one parameter.
const maxAttempts = 5

// =============================================================================
// PROMPTER
// =============================================================================

// Prompter reads one line of input after showing a prompt.
type Prompter interface {
	Prompt(prompt string) (string, error)
	Close() error
}

// linePrompter provides line editing and history on a terminal.
type linePrompter struct {
	line        *liner.State
	historyFile string
}

func newLinePrompter() *linePrompter {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	dir, err := config.ConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	p := &linePrompter{line: line, historyFile: filepath.Join(dir, "form_history")}
	if f, err := os.Open(p.historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	return p
}

func (p *linePrompter) Prompt(prompt string) (string, error) {
	input, err := p.line.Prompt(prompt)
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			return "", ErrFormCancelled
		}
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		p.line.AppendHistory(input)
	}
	return input, nil
}

// Close saves history with owner-only permissions and restores the terminal.
func (p *linePrompter) Close() error {
	if err := os.MkdirAll(filepath.Dir(p.historyFile), 0700); err == nil {
		if f, err := os.OpenFile(p.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
			p.line.WriteHistory(f)
			f.Close()
		}
	}
	return p.line.Close()
}

// readerPrompter answers prompts from a non-terminal reader, one line each.
type readerPrompter struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// NewReaderPrompter reads answers from r and writes prompts to out.
func NewReaderPrompter(r io.Reader, out io.Writer) Prompter {
	return &readerPrompter{scanner: bufio.NewScanner(r), out: out}
}

func (p *readerPrompter) Prompt(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", err
		}
		return "", ErrFormCancelled
	}
	fmt.Fprintln(p.out)
	return p.scanner.Text(), nil
}

func (p *readerPrompter) Close() error { return nil }

// prompter picks line editing on a terminal and plain reads otherwise.
func (a *App) prompter() Prompter {
	if isTerminal(a.In) {
		return newLinePrompter()
	}
	return NewReaderPrompter(a.In, a.Err)
}

// =============================================================================
// FORM COMMAND
// =============================================================================

// HandleForm handles "form <tool>".
func (a *App) HandleForm(ctx context.Context, args Args) error {
	tool, err := a.lookupTool(args.Subcommand)
	if err != nil {
		return err
	}
	pr := a.prompter()
	defer pr.Close()
	return a.RunForm(ctx, tool, pr, args.Parser.Flag("output"))
}

// RunForm asks for every parameter of tool through pr and runs it.
func (a *App) RunForm(ctx context.Context, tool *tools.Tool, pr Prompter, output string) error {
	fmt.Fprintf(a.Err, "%s %s\n", TitleStyle.Render(tool.Name), DimStyle.Render(tool.Description))
	fmt.Fprintln(a.Err, DimStyle.Render("Press Enter to keep a default or skip an optional field; Ctrl+C cancels."))

	call, err := a.FillForm(ctx, tool, pr)
	if err != nil {
		return err
	}
	return a.execute(ctx, tool, call, output, "")
}

// FillForm collects a call for tool without running it.
func (a *App) FillForm(ctx context.Context, tool *tools.Tool, pr Prompter) (tools.Call, error) {
	call := tools.Call{Name: tool.Name, Params: map[string]interface{}{}, Files: map[string]tools.File{}}
	for _, param := range tool.Schema.Parameters {
		if err := ctx.Err(); err != nil {
			return call, err
		}
		fmt.Fprintln(a.Err, DimStyle.Render("  "+param.Description))

		var err error
		if param.Type == tools.TypeFile {
			err = a.askFiles(tool, param, pr, &call)
		} else {
			err = a.askParam(tool, param, pr, &call)
		}
		if err != nil {
			return call, err
		}
	}
	return call, nil
}

func fieldPrompt(param tools.Parameter) string {
	var b strings.Builder
	b.WriteString(param.Name)
	switch {
	case len(param.Enum) > 0:
		fmt.Fprintf(&b, " (%s)", strings.Join(param.Enum, "/"))
	case param.Type != tools.TypeString:
		fmt.Fprintf(&b, " (%s)", param.Type)
	}
	if param.Default != nil {
		fmt.Fprintf(&b, " [%v]", param.Default)
	} else if param.Required {
		b.WriteString(" *")
	}
	b.WriteString(": ")
	return b.String()
}

func (a *App) askParam(tool *tools.Tool, param tools.Parameter, pr Prompter, call *tools.Call) error {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		answer, err := pr.Prompt(fieldPrompt(param))
		if err != nil {
			return err
		}
		answer = strings.TrimSpace(answer)
		if answer == "" {
			if param.Required && param.Default == nil {
				fmt.Fprintln(a.Err, WarningStyle.Render("  "+param.Name+" is required"))
				continue
			}
			return nil
		}
		parsed, err := tool.ParseArgs(map[string]string{param.Name: answer})
		if err != nil {
			fmt.Fprintln(a.Err, WarningStyle.Render("  "+err.Error()))
			continue
		}
		call.Params[param.Name] = parsed[param.Name]
		return nil
	}
	return &tools.ValidationError{Param: param.Name, Message: "no valid value given"}
}

// askFiles asks for one path, or for paths until an empty answer when the
// parameter takes several files.
func (a *App) askFiles(tool *tools.Tool, param tools.Parameter, pr Prompter, call *tools.Call) error {
	n, failures := 0, 0
	for failures < maxAttempts {
		label := param.Name
		if param.Multiple {
			label = fmt.Sprintf("%s #%d", param.Name, n+1)
		}
		prompt := label + " (path): "
		if param.Required && n == 0 {
			prompt = label + " (path) *: "
		}
		answer, err := pr.Prompt(prompt)
		if err != nil {
			return err
		}
		path := strings.Trim(strings.TrimSpace(answer), `"'`)
		if path == "" {
			if param.Required && n == 0 {
				fmt.Fprintln(a.Err, WarningStyle.Render("  "+param.Name+" is required"))
				failures++
				continue
			}
			return nil
		}
		f, err := a.readFile(path)
		if err != nil {
			fmt.Fprintln(a.Err, WarningStyle.Render("  "+err.Error()))
			failures++
			continue
		}
		call.Files[tools.FileKey(param.Name, n)] = f
		n++
		if !param.Multiple {
			return nil
		}
	}
	return &tools.ValidationError{Param: param.Name, Message: "no readable file given"}
}
