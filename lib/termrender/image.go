// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package termrender

import (
	"fmt"

	"github.com/bureau-foundation/chatmark/lib/imagefetch"
	"github.com/bureau-foundation/chatmark/lib/markdown"
	"github.com/bureau-foundation/chatmark/lib/urlpolicy"
)

// imagePlaceholder describes an image on one line. Live state from
// Options.States wins; without it the image policy's decision is
// shown.
func (renderer *Renderer) imagePlaceholder(image markdown.Image) string {
	theme := renderer.options.Theme
	label := image.Alt
	if label == "" {
		label = "image"
	}
	normal := renderer.newStyle().Foreground(theme.ImageForeground)
	faint := renderer.newStyle().Foreground(theme.FaintText)

	if renderer.options.States != nil {
		if state, ok := renderer.options.States.Lookup(image.URL); ok {
			switch state.State {
			case imagefetch.StateLoaded:
				return normal.Render("[image: "+label+"]") + " " +
					faint.Render(fmt.Sprintf("%s, %s", state.ContentType, formatBytes(len(state.Data))))
			case imagefetch.StateLoading:
				return faint.Render("[loading image: " + label + "]")
			case imagefetch.StateAwaitingTap:
				return normal.Render("[image: "+label+"]") + " " + faint.Render("(press i to load)")
			case imagefetch.StateFailed:
				failed := renderer.newStyle().Foreground(theme.ImageFailedForeground)
				return failed.Render("[image failed: " + label + "]")
			default:
				return faint.Render("[" + label + "]")
			}
		}
	}

	switch renderer.options.Images.Decide(image.URL) {
	case urlpolicy.ImageFetch:
		return normal.Render("[image: " + label + "]")
	case urlpolicy.ImageAwaitTap:
		return normal.Render("[image: "+label+"]") + " " + faint.Render("(press i to load)")
	default:
		return faint.Render("[" + label + "]")
	}
}

func formatBytes(count int) string {
	switch {
	case count >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(count)/(1<<20))
	case count >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(count)/(1<<10))
	default:
		return fmt.Sprintf("%d B", count)
	}
}
