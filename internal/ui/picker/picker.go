// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package picker

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/toolverse/internal/tools"
	"github.com/jeranaias/toolverse/internal/ui/styles"
	"github.com/jeranaias/toolverse/internal/util"
)

// ErrCancelled is returned by Run when the picker is closed without a
// selection.
var ErrCancelled = errors.New("no tool selected")

// recentBoost lifts recently used tools above equally good matches.
const recentBoost = 100

// =============================================================================
// MODEL
// =============================================================================

// Model is a filterable list of tools. Typing narrows the list, Tab cycles
// the category filter and Enter picks the highlighted tool.
type Model struct {
	input textinput.Model

	tools  []*tools.Tool
	recent []string

	// category is the active filter; "" shows every category
	category tools.Category

	filtered []scoredTool
	selected int

	width    int
	height   int
	maxItems int

	chosen    *tools.Tool
	cancelled bool
}

type scoredTool struct {
	tool   *tools.Tool
	score  int
	recent bool
}

// New creates a picker over list. recent holds tool names, most recent
// first; they are listed first and boosted in searches.
func New(list []*tools.Tool, recent []string) *Model {
	ti := textinput.New()
	ti.Placeholder = "Type to search tools..."
	ti.Prompt = "> "
	ti.CharLimit = 64
	ti.Width = 50
	ti.PromptStyle = lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.TextPrimary)
	ti.PlaceholderStyle = lipgloss.NewStyle().Foreground(styles.TextMuted).Italic(true)
	ti.Focus()

	m := &Model{
		input:    ti,
		tools:    list,
		recent:   recent,
		maxItems: 12,
	}
	m.refilter()
	return m
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init starts the cursor blinking.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles key presses and window resizes.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if msg.Height > 10 {
			m.maxItems = msg.Height - 10
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.cancelled = true
			return m, tea.Quit

		case "enter":
			if m.selected < len(m.filtered) {
				m.chosen = m.filtered[m.selected].tool
				return m, tea.Quit
			}
			return m, nil

		case "up", "ctrl+p":
			if n := len(m.filtered); n > 0 {
				m.selected = (m.selected - 1 + n) % n
			}
			return m, nil

		case "down", "ctrl+n":
			if n := len(m.filtered); n > 0 {
				m.selected = (m.selected + 1) % n
			}
			return m, nil

		case "tab":
			m.cycleCategory(1)
			return m, nil

		case "shift+tab":
			m.cycleCategory(-1)
			return m, nil
		}
	}

	previous := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != previous {
		m.refilter()
	}
	return m, cmd
}

// View renders the search box, category tabs and the matching tools.
func (m *Model) View() string {
	if m.chosen != nil || m.cancelled {
		return ""
	}

	boxWidth := 76
	if m.width > 0 && m.width < boxWidth+4 {
		boxWidth = m.width - 4
	}
	if boxWidth < 40 {
		boxWidth = 40
	}
	inner := boxWidth - 6

	header := lipgloss.NewStyle().Foreground(styles.Purple).Bold(true).Render("toolverse")
	separator := lipgloss.NewStyle().Foreground(styles.Overlay).Render(strings.Repeat("-", inner))

	m.input.Width = inner - 4
	var rows []string
	for i, st := range m.filtered {
		if i >= m.maxItems {
			more := lipgloss.NewStyle().Foreground(styles.TextMuted).Italic(true)
			rows = append(rows, more.Render(fmt.Sprintf("  ... %d more", len(m.filtered)-m.maxItems)))
			break
		}
		rows = append(rows, m.renderRow(st, i == m.selected, inner))
	}
	list := strings.Join(rows, "\n")
	if len(m.filtered) == 0 {
		list = lipgloss.NewStyle().Foreground(styles.TextMuted).Italic(true).Padding(1, 0).
			Render("No matching tools")
	}

	help := lipgloss.NewStyle().Foreground(styles.TextMuted).Padding(1, 0, 0, 0).
		Render("Up/Down navigate | Tab category | Enter select | Esc quit")

	content := lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.renderTabs(),
		separator,
		m.input.View(),
		separator,
		list,
		help,
	)
	box := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.Purple).
		Padding(1, 2).
		Width(boxWidth).
		Render(content)

	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}
	return box
}

// =============================================================================
// RENDERING
// =============================================================================

func (m *Model) renderTabs() string {
	tabs := make([]string, 0, len(tools.Categories)+1)
	render := func(label string, active bool, color lipgloss.TerminalColor) string {
		if active {
			return lipgloss.NewStyle().Background(color).Foreground(styles.TextInverse).Padding(0, 1).Render(label)
		}
		return lipgloss.NewStyle().Foreground(styles.TextSecondary).Padding(0, 1).Render(label)
	}
	tabs = append(tabs, render("All", m.category == "", styles.Purple))
	for _, c := range tools.Categories {
		tabs = append(tabs, render(c.Title(), m.category == c, styles.CategoryColor(c)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *Model) renderRow(st scoredTool, selected bool, width int) string {
	indicator := "  "
	if selected {
		indicator = "> "
	}
	name := lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true).Render(util.PadRight(st.tool.Name, 16))
	badge := styles.CategoryBadge(st.tool.Category, 8)
	mark := " "
	if st.recent {
		mark = lipgloss.NewStyle().Foreground(styles.Emerald).Render("*")
	}

	used := lipgloss.Width(indicator) + lipgloss.Width(name) + lipgloss.Width(badge) + 3
	descWidth := width - used
	if descWidth < 10 {
		descWidth = 10
	}
	desc := lipgloss.NewStyle().Foreground(styles.TextMuted).
		Render(util.TruncateWidth(st.tool.Description, descWidth))

	row := indicator + name + mark + " " + badge + " " + desc
	if selected {
		return lipgloss.NewStyle().
			Background(styles.Purple).
			Foreground(styles.TextInverse).
			Width(width).
			Render(row)
	}
	return row
}

// =============================================================================
// FILTERING
// =============================================================================

func (m *Model) recentIndex(name string) int {
	for i, r := range m.recent {
		if r == name {
			return i
		}
	}
	return -1
}

func (m *Model) cycleCategory(step int) {
	options := append([]tools.Category{""}, tools.Categories...)
	idx := 0
	for i, c := range options {
		if c == m.category {
			idx = i
			break
		}
	}
	m.category = options[(idx+step+len(options))%len(options)]
	m.refilter()
}

// score matches the query against a tool's name, aliases and description.
// Description hits count half.
func score(query string, t *tools.Tool) (int, bool) {
	best, ok := Match(query, t.Name)
	for _, alias := range t.Aliases {
		if s, matched := Match(query, alias); matched && (!ok || s > best) {
			best, ok = s, true
		}
	}
	if s, matched := Match(query, t.Description); matched && (!ok || s/2 > best) {
		best, ok = s/2, true
	}
	return best, ok
}

// refilter rebuilds the visible list: with an empty query, recent tools
// first and the rest in catalog order; otherwise by match score.
func (m *Model) refilter() {
	query := strings.TrimSpace(m.input.Value())
	var out []scoredTool
	for _, t := range m.tools {
		if m.category != "" && t.Category != m.category {
			continue
		}
		ri := m.recentIndex(t.Name)
		st := scoredTool{tool: t, recent: ri >= 0}
		if query == "" {
			if st.recent {
				st.score = 1000 - ri
			}
		} else {
			s, ok := score(query, t)
			if !ok {
				continue
			}
			st.score = s
			if st.recent {
				st.score += recentBoost
			}
		}
		out = append(out, st)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].score > out[j].score })
	m.filtered = out
	if m.selected >= len(out) {
		m.selected = 0
	}
	if query != "" {
		m.selected = 0
	}
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Selected returns the chosen tool, or nil.
func (m *Model) Selected() *tools.Tool { return m.chosen }

// Cancelled reports whether the picker was closed without a choice.
func (m *Model) Cancelled() bool { return m.cancelled }

// Visible returns the names of the tools currently listed, best first.
func (m *Model) Visible() []string {
	names := make([]string, len(m.filtered))
	for i, st := range m.filtered {
		names[i] = st.tool.Name
	}
	return names
}

// Category returns the active category filter.
func (m *Model) Category() tools.Category { return m.category }

// =============================================================================
// RUN
// =============================================================================

// Run shows the picker full-screen until a tool is chosen, the user quits
// or ctx is cancelled.
func Run(ctx context.Context, list []*tools.Tool, recent []string, opts ...tea.ProgramOption) (*tools.Tool, error) {
	m := New(list, recent)
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	final, err := tea.NewProgram(m, opts...).Run()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	if chosen := final.(*Model).Selected(); chosen != nil {
		return chosen, nil
	}
	return nil, ErrCancelled
}
