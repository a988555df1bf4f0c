// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package queueui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the board's key bindings.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding

	// Reload discards the board and fetches everything again.
	Reload key.Binding

	Quit key.Binding
}

// DefaultKeyMap uses vim-style j/k alongside arrows and page keys.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("ctrl+u", "pgup"),
		key.WithHelp("C-u", "page up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("ctrl+d", "pgdown"),
		key.WithHelp("C-d", "page down"),
	),
	Home: key.NewBinding(
		key.WithKeys("g", "home"),
		key.WithHelp("g", "top"),
	),
	End: key.NewBinding(
		key.WithKeys("G", "end"),
		key.WithHelp("G", "bottom"),
	),
	Reload: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// helpLine renders the bindings shown in the status bar.
func (keys KeyMap) helpLine() string {
	bindings := []key.Binding{keys.Down, keys.Up, keys.PageDown, keys.Reload, keys.Quit}
	text := ""
	for index, binding := range bindings {
		if index > 0 {
			text += "  "
		}
		help := binding.Help()
		text += help.Key + " " + help.Desc
	}
	return text
}
