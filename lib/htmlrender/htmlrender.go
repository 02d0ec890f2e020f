// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package htmlrender draws render items as an HTML fragment.
//
// Only policy-approved constructs produce active markup: an
// interactive link becomes an <a> element (marked data-confirm="true"
// when the user must confirm before navigating), and an image becomes
// an <img> only under the allow mode. Tap-to-load images become a
// button carrying the source in data-src for the page to load on
// click. Everything else, including non-interactive link labels and
// blocked image alt text, is escaped text.
package htmlrender

import (
	"strconv"
	"strings"

	"github.com/yuin/goldmark/util"

	"github.com/bureau-foundation/chatmark/lib/markdown"
	"github.com/bureau-foundation/chatmark/lib/styledtext"
	"github.com/bureau-foundation/chatmark/lib/urlpolicy"
)

// Options configures rendering.
type Options struct {
	// Compiler decides which links are interactive and which need
	// confirmation.
	Compiler styledtext.Compiler
	// Images decides how images appear.
	Images urlpolicy.ImagePolicy
}

// Render returns the HTML fragment for items, one top-level element
// per line.
func Render(items []markdown.RenderItem, options Options) string {
	writer := htmlWriter{options: options}
	for _, item := range items {
		switch item := item.(type) {
		case markdown.TextGroup:
			for _, paragraph := range options.Compiler.CompileGroup(item) {
				writer.block(paragraph.Hint, paragraph.Runs, nil)
			}
		case markdown.InlineText:
			writer.block(item.Hint, options.Compiler.CompileInline(item).Runs, markdown.Images(item.Tokens))
		case markdown.CodeBlock:
			writer.codeBlock(item)
		case markdown.Table:
			writer.table(item)
		}
	}
	return writer.output.String()
}

type htmlWriter struct {
	options Options
	output  strings.Builder
}

func (writer *htmlWriter) escaped(text string) {
	writer.output.Write(util.EscapeHTML([]byte(text)))
}

// attribute writes ` name="value"` with value HTML-escaped.
func (writer *htmlWriter) attribute(name, value string) {
	writer.output.WriteString(" " + name + `="`)
	writer.escaped(value)
	writer.output.WriteString(`"`)
}

func (writer *htmlWriter) url(attribute, raw string) {
	writer.attribute(attribute, string(util.URLEscape([]byte(raw), false)))
}

func blockTag(hint markdown.StyleHint) string {
	if hint.IsHeading() {
		return "h" + strconv.Itoa(hint.Level())
	}
	return "p"
}

func (writer *htmlWriter) block(hint markdown.StyleHint, runs []styledtext.Run, images []markdown.Image) {
	tag := blockTag(hint)
	writer.output.WriteString("<" + tag + ">")
	writer.runs(runs)
	writer.images(runs, images)
	writer.output.WriteString("</" + tag + ">\n")
}

func (writer *htmlWriter) runs(runs []styledtext.Run) {
	for _, run := range runs {
		writer.run(run)
	}
}

func (writer *htmlWriter) run(run styledtext.Run) {
	var closing []string
	if run.Link != nil {
		writer.output.WriteString("<a")
		writer.url("href", run.Link.URL)
		writer.attribute("rel", "nofollow noopener noreferrer")
		if run.Link.RequiresConfirmation {
			writer.attribute("data-confirm", "true")
		}
		writer.output.WriteString(">")
		closing = append(closing, "</a>")
	}
	if run.Style.Bold {
		writer.output.WriteString("<strong>")
		closing = append(closing, "</strong>")
	}
	if run.Style.Code {
		writer.output.WriteString("<code>")
		closing = append(closing, "</code>")
	}

	lines := strings.Split(run.Text, "\n")
	for index, line := range lines {
		if index > 0 {
			writer.output.WriteString("<br>\n")
		}
		writer.escaped(line)
	}

	for index := len(closing) - 1; index >= 0; index-- {
		writer.output.WriteString(closing[index])
	}
}

// images writes images after the text of their block, separated from
// it and from each other by a single space.
func (writer *htmlWriter) images(runs []styledtext.Run, images []markdown.Image) {
	spaced := len(runs) == 0 || strings.HasSuffix(runs[len(runs)-1].Text, " ")
	for _, image := range images {
		if !spaced {
			writer.output.WriteString(" ")
		}
		writer.image(image)
		spaced = false
	}
}

func (writer *htmlWriter) image(image markdown.Image) {
	switch writer.options.Images.Decide(image.URL) {
	case urlpolicy.ImageFetch:
		writer.output.WriteString("<img")
		writer.url("src", image.URL)
		writer.attribute("alt", image.Alt)
		writer.attribute("loading", "lazy")
		writer.output.WriteString(">")
	case urlpolicy.ImageAwaitTap:
		label := image.Alt
		if label == "" {
			label = "image"
		}
		writer.output.WriteString(`<button type="button" class="chatmark-image"`)
		writer.url("data-src", image.URL)
		writer.attribute("data-alt", image.Alt)
		writer.output.WriteString(">Load image: ")
		writer.escaped(label)
		writer.output.WriteString("</button>")
	default:
		writer.escaped(image.Alt)
	}
}

func (writer *htmlWriter) codeBlock(block markdown.CodeBlock) {
	writer.output.WriteString("<pre><code")
	if block.Language != "" {
		writer.attribute("class", "language-"+block.Language)
	}
	writer.output.WriteString(">")
	writer.escaped(block.Code)
	writer.output.WriteString("</code></pre>\n")
}

// table writes every row padded to the table's column count.
func (writer *htmlWriter) table(table markdown.Table) {
	columnCount := table.ColumnCount()
	writer.output.WriteString("<table>\n<thead>\n<tr>")
	for column := range columnCount {
		writer.cell("th", table.Header(column))
	}
	writer.output.WriteString("</tr>\n</thead>\n")
	if len(table.Rows) > 0 {
		writer.output.WriteString("<tbody>\n")
		for row := range table.Rows {
			writer.output.WriteString("<tr>")
			for column := range columnCount {
				writer.cell("td", table.Cell(row, column))
			}
			writer.output.WriteString("</tr>\n")
		}
		writer.output.WriteString("</tbody>\n")
	}
	writer.output.WriteString("</table>\n")
}

func (writer *htmlWriter) cell(tag, content string) {
	tokens := markdown.Tokenize(content)
	writer.output.WriteString("<" + tag + ">")
	runs := writer.options.Compiler.Compile(tokens, styledtext.Style{})
	writer.runs(runs)
	writer.images(runs, markdown.Images(tokens))
	writer.output.WriteString("</" + tag + ">")
}
