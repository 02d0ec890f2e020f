// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package termrender

import (
	"os"
	"slices"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"github.com/bureau-foundation/chatmark/lib/imagefetch"
	"github.com/bureau-foundation/chatmark/lib/markdown"
	"github.com/bureau-foundation/chatmark/lib/styledtext"
	"github.com/bureau-foundation/chatmark/lib/tablewidth"
	"github.com/bureau-foundation/chatmark/lib/urlpolicy"
)

const (
	// DefaultWidth is used when Options.Width is not positive.
	DefaultWidth = 80

	// DefaultCodeTheme is the chroma style used when none is set.
	DefaultCodeTheme = "monokai"

	// minimumWidth keeps wrapping sane on absurdly narrow terminals.
	minimumWidth = 10

	// wrapBreakpoints are the characters ansi.Wrap may break after
	// in addition to whitespace.
	wrapBreakpoints = " ,.;-+|"
)

// ImageStates reports the host's current state for an image URL.
// [imagefetch.Manager] implements it.
type ImageStates interface {
	Lookup(url string) (imagefetch.Image, bool)
}

// Options configures a Renderer.
type Options struct {
	// Width is the terminal width in columns.
	Width int

	// Theme defaults to DefaultTheme.
	Theme Theme

	// Compiler turns inline tokens into styled runs. Its policies
	// decide which links are interactive and which need confirmation.
	Compiler styledtext.Compiler

	// Images classifies images when States has no entry for them.
	Images urlpolicy.ImagePolicy

	// States supplies live image states. May be nil.
	States ImageStates

	// CodeTheme is the chroma style for code blocks.
	CodeTheme string

	// TableEpsilon is passed to each table's width resolver.
	TableEpsilon float64

	// Hyperlinks enables OSC 8 hyperlinks on interactive links that
	// need no confirmation.
	Hyperlinks bool
}

// Renderer draws render items. It keeps one column width resolver per
// table position. A resolver keeps its widths while the table at its
// position is unchanged and starts a new generation when the content
// or the width changes. A Renderer is not safe for concurrent use.
type Renderer struct {
	options     Options
	lipRenderer *lipgloss.Renderer
	tables      []*tablewidth.Resolver
	// tableContents holds the table last rendered at each position,
	// nil until one has been.
	tableContents []*markdown.Table
}

// New creates a renderer.
func New(options Options) *Renderer {
	if options.Width <= 0 {
		options.Width = DefaultWidth
	}
	if options.Theme == (Theme{}) {
		options.Theme = DefaultTheme
	}
	if options.CodeTheme == "" {
		options.CodeTheme = DefaultCodeTheme
	}

	// Force ANSI256: output is for terminal display even when the
	// process is piped or under test. SetColorProfile is required
	// because Renderer.ColorProfile() otherwise re-detects from the
	// environment.
	lipRenderer := lipgloss.NewRenderer(os.Stderr, termenv.WithProfile(termenv.ANSI256))
	lipRenderer.SetColorProfile(termenv.ANSI256)

	return &Renderer{options: options, lipRenderer: lipRenderer}
}

// Width returns the current render width.
func (renderer *Renderer) Width() int {
	return renderer.options.Width
}

// SetWidth changes the render width. A different width starts a new
// generation in every table resolver.
func (renderer *Renderer) SetWidth(width int) {
	if width <= 0 {
		width = DefaultWidth
	}
	if width == renderer.options.Width {
		return
	}
	renderer.options.Width = width
	for _, resolver := range renderer.tables {
		resolver.Reset()
	}
}

// SetStates replaces the image state source.
func (renderer *Renderer) SetStates(states ImageStates) {
	renderer.options.States = states
}

// Render draws items in order, separated by the compiler's paragraph
// spacing.
func (renderer *Renderer) Render(items []markdown.RenderItem) string {
	var blocks []string
	tableIndex := 0
	for _, item := range items {
		var rendered string
		switch item := item.(type) {
		case markdown.TextGroup:
			rendered = renderer.renderTextGroup(item)
		case markdown.InlineText:
			rendered = renderer.renderInlineText(item)
		case markdown.CodeBlock:
			rendered = renderer.renderCodeBlock(item)
		case markdown.Table:
			rendered = renderer.renderTable(renderer.tableResolver(tableIndex, item), item)
			tableIndex++
		}
		if rendered != "" {
			blocks = append(blocks, rendered)
		}
	}
	separator := strings.Repeat("\n", renderer.options.Compiler.Spacing.Paragraph+1)
	return strings.Join(blocks, separator)
}

func (renderer *Renderer) newStyle() lipgloss.Style {
	return renderer.lipRenderer.NewStyle()
}

// currentWidth is the width available to content, clamped to a
// minimum.
func (renderer *Renderer) currentWidth() int {
	if renderer.options.Width < minimumWidth {
		return minimumWidth
	}
	return renderer.options.Width
}

func (renderer *Renderer) renderTextGroup(group markdown.TextGroup) string {
	var output strings.Builder
	var previous *styledtext.Paragraph
	for _, paragraph := range renderer.options.Compiler.CompileGroup(group) {
		rendered := renderer.renderParagraph(paragraph)
		if rendered == "" {
			continue
		}
		if previous != nil {
			output.WriteString(strings.Repeat("\n", styledtext.Gap(previous.Spacing, paragraph.Spacing)+1))
		}
		output.WriteString(rendered)
		previous = &paragraph
	}
	return output.String()
}

func (renderer *Renderer) renderInlineText(item markdown.InlineText) string {
	var lines []string
	if rendered := renderer.renderParagraph(renderer.options.Compiler.CompileInline(item)); rendered != "" {
		lines = append(lines, rendered)
	}
	for _, image := range markdown.Images(item.Tokens) {
		placeholder := renderer.imagePlaceholder(image)
		lines = append(lines, ansi.Wrap(placeholder, renderer.currentWidth(), wrapBreakpoints))
	}
	return strings.Join(lines, "\n")
}

// renderParagraph styles and word-wraps one compiled paragraph.
// Newlines inside the source paragraph are kept as line breaks.
func (renderer *Renderer) renderParagraph(paragraph styledtext.Paragraph) string {
	content := renderer.renderRuns(paragraph.Runs)
	if content == "" {
		return ""
	}
	return ansi.Wrap(content, renderer.currentWidth(), wrapBreakpoints)
}

func (renderer *Renderer) renderRuns(runs []styledtext.Run) string {
	var content strings.Builder
	for _, run := range runs {
		content.WriteString(renderer.renderRun(run))
	}
	return content.String()
}

func (renderer *Renderer) renderRun(run styledtext.Run) string {
	theme := renderer.options.Theme
	style := renderer.newStyle().Foreground(theme.NormalText)
	if run.Style.Heading > 0 {
		style = style.Bold(true)
		if run.Style.Heading <= 2 {
			style = style.Foreground(theme.HeaderForeground)
		}
	}
	if run.Style.Bold {
		style = style.Bold(true)
	}
	if run.Style.Code {
		style = style.Foreground(theme.CodeForeground)
	}
	if run.Link != nil {
		style = style.Foreground(theme.LinkForeground).Underline(true)
	}

	text := renderLines(style, run.Text)
	if run.Link == nil {
		return text
	}

	if run.Link.RequiresConfirmation || !renderer.options.Hyperlinks {
		if run.Text == run.Link.URL {
			return text
		}
		urlStyle := renderer.newStyle().Foreground(theme.FaintText)
		return text + " " + urlStyle.Render("("+run.Link.URL+")")
	}
	return ansi.SetHyperlink(run.Link.URL) + text + ansi.ResetHyperlink()
}

// renderLines styles each line separately. lipgloss pads multi-line
// input to a common width, which would put trailing spaces on every
// short line of a paragraph.
func renderLines(style lipgloss.Style, text string) string {
	if !strings.Contains(text, "\n") {
		return style.Render(text)
	}
	lines := strings.Split(text, "\n")
	for index, line := range lines {
		if line != "" {
			lines[index] = style.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}

// renderCodeBlock highlights code with chroma. Unknown languages fall
// back to chroma's plain lexer; an empty language or a chroma error
// renders the code in the faint color.
func (renderer *Renderer) renderCodeBlock(block markdown.CodeBlock) string {
	if block.Code == "" {
		return ""
	}
	faint := renderer.newStyle().Foreground(renderer.options.Theme.FaintText)
	if block.Language == "" {
		return renderLines(faint, block.Code)
	}
	var buffer strings.Builder
	if err := quick.Highlight(&buffer, block.Code, block.Language, "terminal256", renderer.options.CodeTheme); err != nil {
		return renderLines(faint, block.Code)
	}
	return strings.TrimRight(buffer.String(), "\n")
}

// tableResolver returns the resolver for the table at index, resetting
// it when a different table was last rendered there.
func (renderer *Renderer) tableResolver(index int, table markdown.Table) *tablewidth.Resolver {
	for len(renderer.tables) <= index {
		renderer.tables = append(renderer.tables, tablewidth.NewResolver(renderer.options.TableEpsilon))
		renderer.tableContents = append(renderer.tableContents, nil)
	}
	resolver := renderer.tables[index]
	previous := renderer.tableContents[index]
	if previous != nil && sameTable(*previous, table) {
		return resolver
	}
	if previous != nil {
		resolver.Reset()
	}
	renderer.tableContents[index] = &table
	return resolver
}

func sameTable(a, b markdown.Table) bool {
	return slices.Equal(a.Headers, b.Headers) &&
		slices.EqualFunc(a.Rows, b.Rows, func(x, y []string) bool { return slices.Equal(x, y) })
}
