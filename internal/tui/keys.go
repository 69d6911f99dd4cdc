// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	Left       key.Binding
	Right      key.Binding
	Grab       key.Binding
	Whitespace key.Binding
	Remove     key.Binding
	More       key.Binding
	Fewer      key.Binding
	Commit     key.Binding
	Quit       key.Binding
	Help       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:       key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		Right:      key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
		Grab:       key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "grab/drop")),
		Whitespace: key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "add blank")),
		Remove:     key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "remove")),
		More:       key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "more columns")),
		Fewer:      key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "fewer columns")),
		Commit:     key.NewBinding(key.WithKeys("enter", "s"), key.WithHelp("enter", "save")),
		Quit:       key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "discard")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Grab, k.Whitespace, k.Remove, k.Commit, k.Quit, k.Help}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Grab, k.Whitespace, k.Remove},
		{k.More, k.Fewer},
		{k.Commit, k.Quit, k.Help},
	}
}
