// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package termrender draws render items as ANSI-styled terminal text.
//
// It is the terminal host for the markdown pipeline: text groups and
// inline text are compiled to styled runs by lib/styledtext and
// word-wrapped to the configured width; code blocks are highlighted
// with chroma; tables are laid out through lib/tablewidth, measuring
// every compiled cell and shrinking columns proportionally when the
// table is wider than the terminal. Images never render as pixels:
// each image shows a placeholder line describing its state.
//
// Interactive links carry OSC 8 hyperlinks when enabled. Links that
// need confirmation before navigating get no hyperlink; their URL is
// shown after the label instead so the user can inspect it.
//
// Output is always styled for a 256-color terminal, regardless of
// what the process is attached to.
package termrender
