// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package tui is the interactive front end of the organizer. It only maps
// key presses onto organizer operations and draws the staged grid.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/apex/log"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/staranto/galleryctl/internal/gallery"
	"github.com/staranto/galleryctl/internal/nft"
	"github.com/staranto/galleryctl/internal/organizer"
)

const cellWidth = 16

var (
	cellStyle = lipgloss.NewStyle().
			Width(cellWidth).
			Height(2).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240"))
	cursorStyle  = cellStyle.BorderForeground(lipgloss.Color("212"))
	grabbedStyle = cellStyle.BorderForeground(lipgloss.Color("214")).Bold(true)
	blankStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

type commitMsg struct{ err error }

// Model is the bubbletea model around an organizer.
type Model struct {
	ctx   context.Context
	org   *organizer.Organizer
	title string

	keys keyMap
	help help.Model

	cursor     int
	grabbed    bool
	committing bool
	done       bool
	status     string
	err        error
}

func NewModel(ctx context.Context, org *organizer.Organizer, title string) Model {
	return Model{
		ctx:   ctx,
		org:   org,
		title: title,
		keys:  defaultKeyMap(),
		help:  help.New(),
	}
}

// Run drives the organizer until the user commits or quits and returns the
// final state.
func Run(ctx context.Context, org *organizer.Organizer, title string, opts ...tea.ProgramOption) (organizer.State, error) {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	final, err := tea.NewProgram(NewModel(ctx, org, title), opts...).Run()
	if err != nil {
		return org.State(), fmt.Errorf("organizer ui failed: %w", err)
	}
	if m, ok := final.(Model); ok && m.err != nil && org.State() == organizer.Staging {
		return org.State(), m.err
	}
	return org.State(), nil
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case commitMsg:
		m.committing = false
		if msg.err != nil {
			m.err = msg.err
			m.status = "save failed"
			return m, nil
		}
		m.done = true
		return m, tea.Quit

	case tea.KeyMsg:
		if m.committing || m.done {
			return m, nil
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil
	m.status = ""
	n := len(m.org.Items())
	cols := m.org.Columns()

	switch {
	case key.Matches(msg, m.keys.Quit):
		if err := m.org.Discard(); err != nil {
			log.WithError(err).Debug("discard")
		}
		m.done = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Left):
		m.moveCursor(m.cursor - 1)
	case key.Matches(msg, m.keys.Right):
		m.moveCursor(m.cursor + 1)
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(m.cursor - cols)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(m.cursor + cols)

	case key.Matches(msg, m.keys.Grab):
		m.grabbed = !m.grabbed && n > 0

	case key.Matches(msg, m.keys.Whitespace):
		if _, err := m.org.StageWhitespace(m.cursor); err != nil {
			m.err = err
		}

	case key.Matches(msg, m.keys.Remove):
		if n == 0 {
			break
		}
		if err := m.org.Unstage(m.org.Items()[m.cursor].ItemID()); err != nil {
			m.err = err
		}
		m.grabbed = false
		m.cursor = clamp(m.cursor, len(m.org.Items()))

	case key.Matches(msg, m.keys.More):
		if !m.org.IncrementColumns() {
			m.status = "already at the most columns"
		}
	case key.Matches(msg, m.keys.Fewer):
		if !m.org.DecrementColumns() {
			m.status = "already at the fewest columns"
		}

	case key.Matches(msg, m.keys.Commit):
		m.committing = true
		m.grabbed = false
		m.status = "saving..."
		org, ctx := m.org, m.ctx
		return m, func() tea.Msg { return commitMsg{err: org.Commit(ctx)} }
	}
	return m, nil
}

// moveCursor moves the cursor, dragging the grabbed item with it.
func (m *Model) moveCursor(to int) {
	items := m.org.Items()
	if len(items) == 0 {
		return
	}
	to = clamp(to, len(items))
	if m.grabbed {
		if err := m.org.Reorder(items[m.cursor].ItemID(), to); err != nil {
			m.err = err
			return
		}
	}
	m.cursor = to
}

func clamp(i, n int) int {
	return min(max(i, 0), max(n-1, 0))
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.title))
	fmt.Fprintf(&b, "  %d columns\n\n", m.org.Columns())
	b.WriteString(m.grid())
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render(errorText(m.err)))
	case m.status != "":
		b.WriteString(m.status)
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) grid() string {
	items := m.org.Items()
	if len(items) == 0 {
		return blankStyle.Render("(nothing staged)") + "\n"
	}

	cols := max(m.org.Columns(), 1)
	var rows []string
	for start := 0; start < len(items); start += cols {
		cells := make([]string, 0, cols)
		for i := start; i < start+cols && i < len(items); i++ {
			cells = append(cells, m.cell(i, items[i]))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...) + "\n"
}

func (m Model) cell(i int, it gallery.Item) string {
	style := cellStyle
	if i == m.cursor {
		style = cursorStyle
		if m.grabbed {
			style = grabbedStyle
		}
	}

	n, ok := it.(gallery.Nft)
	if !ok {
		return style.Render(blankStyle.Render("·"))
	}
	label := n.Name
	if label == "" {
		label = n.ID
	}
	if len(label) > cellWidth-2 {
		label = label[:cellWidth-4] + ".."
	}
	return style.Render(label + "\n" + string(nft.MediaTypeOf(n)))
}

func errorText(err error) string {
	switch {
	case errors.Is(err, organizer.ErrNotEditable):
		return "collection can no longer be edited"
	default:
		return err.Error()
	}
}
