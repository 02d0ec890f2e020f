// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package termrender

import "github.com/charmbracelet/lipgloss"

// Theme defines the color palette for terminal output. All colors use
// lipgloss ANSI 256-color codes for broad terminal compatibility.
type Theme struct {
	// Text colors.
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Headings of level 1 and 2. Deeper headings use NormalText.
	HeaderForeground lipgloss.Color

	// Inline code spans.
	CodeForeground lipgloss.Color

	// Interactive links.
	LinkForeground lipgloss.Color

	// Image placeholders, by state.
	ImageForeground       lipgloss.Color
	ImageFailedForeground lipgloss.Color

	// Table rules.
	BorderColor lipgloss.Color
}

// DefaultTheme is the built-in dark-terminal color scheme.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	HeaderForeground: lipgloss.Color("255"),
	CodeForeground:   lipgloss.Color("180"), // muted amber

	LinkForeground: lipgloss.Color("75"), // blue

	ImageForeground:       lipgloss.Color("141"), // light purple
	ImageFailedForeground: lipgloss.Color("196"), // red

	BorderColor: lipgloss.Color("240"),
}
