// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package viewer

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the viewer's own key bindings. Scrolling keys belong
// to the viewport.
type KeyMap struct {
	Quit       key.Binding
	LoadImages key.Binding // Load every image waiting for a tap.
}

// DefaultKeyMap is the built-in key binding set.
var DefaultKeyMap = KeyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	LoadImages: key.NewBinding(
		key.WithKeys("i"),
		key.WithHelp("i", "load images"),
	),
}
