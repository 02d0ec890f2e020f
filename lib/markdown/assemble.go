// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package markdown

// Parse runs the whole pipeline: block scan, inline tokenization, and
// grouping into render items.
func Parse(text string) []RenderItem {
	return Assemble(ParseBlocks(text))
}

// Assemble groups blocks into render items. Consecutive paragraphs and
// headings without images merge into one [TextGroup]. A paragraph or
// heading containing an image stands alone as [InlineText]. Code
// blocks and tables always stand alone. Source order is preserved.
func Assemble(blocks []Block) []RenderItem {
	var assembler itemAssembler
	for _, block := range blocks {
		switch block := block.(type) {
		case Paragraph:
			assembler.text(Tokenize(block.Text), Body)
		case Heading:
			assembler.text(Tokenize(block.Text), HeadingHint(block.Level))
		case CodeBlock:
			assembler.isolated(block)
		case Table:
			assembler.isolated(block)
		}
	}
	assembler.flush()
	return assembler.items
}

type itemAssembler struct {
	items   []RenderItem
	pending []TextBlock
}

func (assembler *itemAssembler) text(tokens []InlineToken, hint StyleHint) {
	if ContainsImage(tokens) {
		assembler.isolated(InlineText{Tokens: tokens, Hint: hint})
		return
	}
	assembler.pending = append(assembler.pending, TextBlock{Tokens: tokens, Hint: hint})
}

func (assembler *itemAssembler) isolated(item RenderItem) {
	assembler.flush()
	assembler.items = append(assembler.items, item)
}

func (assembler *itemAssembler) flush() {
	if len(assembler.pending) == 0 {
		return
	}
	assembler.items = append(assembler.items, TextGroup{Blocks: assembler.pending})
	assembler.pending = nil
}

// CollectImages returns every image in items in document order.
func CollectImages(items []RenderItem) []Image {
	var images []Image
	for _, item := range items {
		switch item := item.(type) {
		case InlineText:
			images = append(images, Images(item.Tokens)...)
		case TextGroup:
			for _, block := range item.Blocks {
				images = append(images, Images(block.Tokens)...)
			}
		}
	}
	return images
}
