// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package viewer is an interactive terminal viewer for rendered
// markdown, built on bubbletea with a bubbles viewport for scrolling.
//
// The whole tree is recomputed from the source text whenever anything
// changes: the window is resized (which also starts a new table width
// generation), a stream tick reveals more of the source, or an image
// changes state. Each recomputation hands the new tree's images to the
// image manager so fetches for images that disappeared are cancelled
// and shared images keep their state.
//
// Streaming mode reveals the source one line per tick, which exercises
// the pipeline on partial input exactly as a chat client receiving a
// response would.
//
// Log records cannot go to stderr while the alternate screen is
// active. [LogHandler] routes them into the status bar instead.
package viewer
