// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package styledtext

import (
	"github.com/bureau-foundation/chatmark/lib/markdown"
	"github.com/bureau-foundation/chatmark/lib/urlpolicy"
)

// Style is the set of visual attributes a run carries. Hosts decide
// what each attribute looks like.
type Style struct {
	// Heading is 1..6 for heading text and 0 for body text.
	Heading int
	Bold    bool
	// Code selects the monospace treatment.
	Code bool
	// Link is set only on runs that are interactive links.
	Link bool
}

// Emphasized returns the style with Bold set.
func (style Style) Emphasized() Style {
	style.Bold = true
	return style
}

// Monospace returns the style with Code set.
func (style Style) Monospace() Style {
	style.Code = true
	return style
}

// ForHint returns the base style for a block with the given hint.
func ForHint(hint markdown.StyleHint) Style {
	return Style{Heading: hint.Level()}
}

// LinkTarget is attached to interactive runs.
type LinkTarget struct {
	URL string
	// RequiresConfirmation is true when the host must ask the user
	// before navigating.
	RequiresConfirmation bool
}

// Run is a span of text with uniform style. Link is non-nil exactly
// when the run is interactive.
type Run struct {
	Text  string
	Style Style
	Link  *LinkTarget
}

// Spacing is the blank space a host puts around a paragraph, in host
// units (terminal lines, ems). Between two paragraphs the host uses
// max(previous.After, next.Before). The first paragraph of a group
// has Before 0 and the last has After 0.
type Spacing struct {
	Before int
	After  int
}

// Paragraph is one compiled text block.
type Paragraph struct {
	Runs    []Run
	Hint    markdown.StyleHint
	Spacing Spacing
}

// SpacingRules configures the spacing attached to compiled blocks.
type SpacingRules struct {
	// Paragraph is the space around body paragraphs.
	Paragraph int
	// Heading is the space before a heading. The space after a
	// heading is Paragraph.
	Heading int
}

// DefaultSpacing puts one unit between paragraphs and after headings
// and one unit before headings.
func DefaultSpacing() SpacingRules {
	return SpacingRules{Paragraph: 1, Heading: 1}
}

// Compiler turns inline tokens into runs under the configured
// policies. The zero value treats every link as non-interactive.
type Compiler struct {
	Links   urlpolicy.LinkPolicy
	Safety  urlpolicy.LinkSafetyPolicy
	Spacing SpacingRules
}

// Compile converts tokens to runs using base for plain text.
func (compiler Compiler) Compile(tokens []markdown.InlineToken, base Style) []Run {
	return compiler.appendRuns(nil, tokens, base)
}

func (compiler Compiler) appendRuns(runs []Run, tokens []markdown.InlineToken, base Style) []Run {
	for _, token := range tokens {
		switch token := token.(type) {
		case markdown.Text:
			runs = appendRun(runs, Run{Text: token.Value, Style: base})

		case markdown.InlineCode:
			runs = appendRun(runs, Run{Text: token.Code, Style: base.Monospace()})

		case markdown.Strong:
			runs = compiler.appendRuns(runs, token.Children, base.Emphasized())

		case markdown.Link:
			runs = appendRun(runs, compiler.link(token, base))

		case markdown.Image:
			// Rendered out of band.
		}
	}
	return runs
}

// appendRun appends run, merging it into the previous run when both
// are non-interactive and share a style.
func appendRun(runs []Run, run Run) []Run {
	if run.Text == "" {
		return runs
	}
	if last := len(runs) - 1; last >= 0 && runs[last].Link == nil && run.Link == nil && runs[last].Style == run.Style {
		runs[last].Text += run.Text
		return runs
	}
	return append(runs, run)
}

func (compiler Compiler) link(link markdown.Link, base Style) Run {
	display := link.Label
	if display == "" {
		display = link.URL
	}
	if !compiler.Links.Allows(link.URL) {
		return Run{Text: display, Style: base}
	}
	linkStyle := base
	linkStyle.Link = true
	return Run{
		Text:  display,
		Style: linkStyle,
		Link: &LinkTarget{
			URL:                  link.URL,
			RequiresConfirmation: compiler.Safety.RequiresConfirmation(link.URL),
		},
	}
}

// CompileGroup compiles every block of a text group, attaching
// spacing by position within the group.
func (compiler Compiler) CompileGroup(group markdown.TextGroup) []Paragraph {
	paragraphs := make([]Paragraph, len(group.Blocks))
	for index, block := range group.Blocks {
		paragraphs[index] = Paragraph{
			Runs:    compiler.Compile(block.Tokens, ForHint(block.Hint)),
			Hint:    block.Hint,
			Spacing: compiler.spacing(block.Hint, index, len(group.Blocks)),
		}
	}
	return paragraphs
}

// CompileInline compiles a standalone image-bearing block. It has no
// neighbours, so its spacing is zero.
func (compiler Compiler) CompileInline(item markdown.InlineText) Paragraph {
	return Paragraph{
		Runs: compiler.Compile(item.Tokens, ForHint(item.Hint)),
		Hint: item.Hint,
	}
}

func (compiler Compiler) spacing(hint markdown.StyleHint, index, count int) Spacing {
	var spacing Spacing
	if index > 0 {
		spacing.Before = compiler.Spacing.Paragraph
		if hint.IsHeading() {
			spacing.Before = compiler.Spacing.Heading
		}
	}
	if index < count-1 {
		spacing.After = compiler.Spacing.Paragraph
	}
	return spacing
}

// Gap returns the space a host puts between two consecutive
// paragraphs.
func Gap(previous, next Spacing) int {
	if previous.After > next.Before {
		return previous.After
	}
	return next.Before
}

// PlainText concatenates the text of runs.
func PlainText(runs []Run) string {
	total := 0
	for _, run := range runs {
		total += len(run.Text)
	}
	buffer := make([]byte, 0, total)
	for _, run := range runs {
		buffer = append(buffer, run.Text...)
	}
	return string(buffer)
}
