// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package markdown

// Block is a top-level structural unit of parsed text: one of
// [Paragraph], [Heading], [CodeBlock], or [Table]. The set is closed.
type Block interface {
	isBlock()
}

// Paragraph is a run of consecutive non-blank lines, joined with
// newlines and trimmed.
type Paragraph struct {
	Text string
}

// Heading is a line introduced by one or more '#' characters. Level
// is the number of leading '#' characters, capped at 6.
type Heading struct {
	Level int
	Text  string
}

// CodeBlock is a fenced code block. Language is the text following
// the opening fence, or empty when the fence carried none. Code is
// the verbatim body without the fences.
type CodeBlock struct {
	Language string
	Code     string
}

// Table is a pipe table. Rows may be shorter or longer than Headers;
// [Table.ColumnCount] is the widest of all of them and missing cells
// read as empty.
type Table struct {
	Headers []string
	Rows    [][]string
}

func (Paragraph) isBlock() {}
func (Heading) isBlock()   {}
func (CodeBlock) isBlock() {}
func (Table) isBlock()     {}

// ColumnCount returns max(len(Headers), longest row).
func (table Table) ColumnCount() int {
	count := len(table.Headers)
	for _, row := range table.Rows {
		if len(row) > count {
			count = len(row)
		}
	}
	return count
}

// Header returns the header cell for column, or "" past the end.
func (table Table) Header(column int) string {
	if column < 0 || column >= len(table.Headers) {
		return ""
	}
	return table.Headers[column]
}

// Cell returns the body cell at (row, column), or "" when the row is
// short or either index is out of range.
func (table Table) Cell(row, column int) string {
	if row < 0 || row >= len(table.Rows) {
		return ""
	}
	cells := table.Rows[row]
	if column < 0 || column >= len(cells) {
		return ""
	}
	return cells[column]
}

// InlineToken is a span-level unit within a block's text: one of
// [Text], [InlineCode], [Link], [Image], or [Strong].
type InlineToken interface {
	isInlineToken()
}

// Text is literal text.
type Text struct {
	Value string
}

// InlineCode is the content between a pair of backticks.
type InlineCode struct {
	Code string
}

// Link is [Label](URL). URL is not validated.
type Link struct {
	Label string
	URL   string
}

// Image is ![Alt](URL). URL is not validated.
type Image struct {
	Alt string
	URL string
}

// Strong is emphasized content between doubled '*' or '_' markers.
// Children is never empty.
type Strong struct {
	Children []InlineToken
}

func (Text) isInlineToken()       {}
func (InlineCode) isInlineToken() {}
func (Link) isInlineToken()       {}
func (Image) isInlineToken()      {}
func (Strong) isInlineToken()     {}

// StyleHint tells the host which typographic role a text block plays.
type StyleHint int

const (
	// Body is ordinary paragraph text.
	Body StyleHint = iota
	Heading1
	Heading2
	Heading3
	Heading4
	Heading5
	Heading6
)

// HeadingHint returns the hint for a heading of the given level,
// clamping the level into 1..6.
func HeadingHint(level int) StyleHint {
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	return Heading1 + StyleHint(level-1)
}

// IsHeading reports whether the hint is one of the heading levels.
func (hint StyleHint) IsHeading() bool {
	return hint >= Heading1 && hint <= Heading6
}

// Level returns 1..6 for heading hints and 0 for Body.
func (hint StyleHint) Level() int {
	if !hint.IsHeading() {
		return 0
	}
	return int(hint-Heading1) + 1
}

func (hint StyleHint) String() string {
	switch {
	case hint == Body:
		return "body"
	case hint.IsHeading():
		return "h" + string(rune('0'+hint.Level()))
	default:
		return "unknown"
	}
}

// RenderItem is a unit handed to the display layer: one of
// [TextGroup], [InlineText], [CodeBlock], or [Table]. Code blocks and
// tables pass through from the block stage unchanged.
type RenderItem interface {
	isRenderItem()
}

// TextBlock is the tokenized content of one paragraph or heading.
type TextBlock struct {
	Tokens []InlineToken
	Hint   StyleHint
}

// TextGroup is a run of consecutive image-free text blocks laid out
// together as one flowing unit.
type TextGroup struct {
	Blocks []TextBlock
}

// InlineText is a single paragraph or heading that contains at least
// one [Image] token and therefore needs its own layout.
type InlineText struct {
	Tokens []InlineToken
	Hint   StyleHint
}

func (TextGroup) isRenderItem()  {}
func (InlineText) isRenderItem() {}
func (CodeBlock) isRenderItem()  {}
func (Table) isRenderItem()      {}
