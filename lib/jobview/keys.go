// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package jobview

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the viewer's key bindings. Scrolling keys are handled
// by the viewport's own key map.
type KeyMap struct {
	Quit   key.Binding
	Top    key.Binding
	Bottom key.Binding // Also re-enables following new output.
}

// DefaultKeyMap is the built-in key binding set.
var DefaultKeyMap = KeyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c", "esc"),
		key.WithHelp("q", "quit"),
	),
	Top: key.NewBinding(
		key.WithKeys("g", "home"),
		key.WithHelp("g", "top"),
	),
	Bottom: key.NewBinding(
		key.WithKeys("G", "end"),
		key.WithHelp("G", "follow"),
	),
}
