// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package markdown

import "strings"

// fence opens and closes a code block.
const fence = "```"

// ParseBlocks splits text into blocks in source order. Line endings
// are normalized first, so "\r\n" and lone "\r" behave like "\n".
//
// Recognition, per line:
//
//   - blank: ends the pending paragraph
//   - leading '#' run: a [Heading] if anything remains after trimming,
//     otherwise the line is dropped
//   - leading fence: a [CodeBlock] running to the closing fence or to
//     end of input
//   - contains '|' and the next line is a separator row with the same
//     cell count: a [Table] whose body continues while lines contain '|'
//   - anything else: appended to the pending paragraph
func ParseBlocks(text string) []Block {
	scanner := blockScanner{lines: splitLines(text)}
	return scanner.scan()
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}

// blockScanner walks lines with an explicit cursor. The only state
// besides the cursor is the output and the lines of the paragraph
// currently being accumulated.
type blockScanner struct {
	lines     []string
	position  int
	blocks    []Block
	paragraph []string
}

func (scanner *blockScanner) scan() []Block {
	for scanner.position < len(scanner.lines) {
		line := scanner.lines[scanner.position]
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			scanner.flushParagraph()
			scanner.position++

		case strings.HasPrefix(trimmed, "#"):
			scanner.flushParagraph()
			scanner.heading(trimmed)
			scanner.position++

		case strings.HasPrefix(trimmed, fence):
			scanner.flushParagraph()
			scanner.codeBlock(trimmed)

		case strings.Contains(line, "|") && scanner.separatorFollows(line):
			scanner.flushParagraph()
			scanner.table(line)

		default:
			scanner.paragraph = append(scanner.paragraph, line)
			scanner.position++
		}
	}
	scanner.flushParagraph()
	return scanner.blocks
}

func (scanner *blockScanner) flushParagraph() {
	if len(scanner.paragraph) == 0 {
		return
	}
	text := strings.TrimSpace(strings.Join(scanner.paragraph, "\n"))
	scanner.paragraph = scanner.paragraph[:0]
	if text != "" {
		scanner.blocks = append(scanner.blocks, Paragraph{Text: text})
	}
}

// heading emits a Heading for a line already known to start with '#'.
// A line of nothing but '#' characters produces no block at all.
func (scanner *blockScanner) heading(trimmed string) {
	level := 0
	for level < len(trimmed) && trimmed[level] == '#' {
		level++
	}
	content := strings.TrimSpace(trimmed[level:])
	if content == "" {
		return
	}
	if level > 6 {
		level = 6
	}
	scanner.blocks = append(scanner.blocks, Heading{Level: level, Text: content})
}

// codeBlock consumes the opening fence line, the body, and the closing
// fence if there is one. The cursor ends past the last consumed line.
func (scanner *blockScanner) codeBlock(opening string) {
	language := strings.TrimSpace(strings.TrimPrefix(opening, fence))
	scanner.position++

	var body []string
	for scanner.position < len(scanner.lines) {
		line := scanner.lines[scanner.position]
		scanner.position++
		if strings.TrimSpace(line) == fence {
			break
		}
		body = append(body, line)
	}

	scanner.blocks = append(scanner.blocks, CodeBlock{
		Language: language,
		Code:     strings.Join(body, "\n"),
	})
}

// separatorFollows reports whether the line after the cursor is a
// separator row whose cell count matches the candidate header line.
func (scanner *blockScanner) separatorFollows(header string) bool {
	next := scanner.position + 1
	if next >= len(scanner.lines) {
		return false
	}
	return isSeparatorRow(scanner.lines[next], len(splitCells(header)))
}

// table consumes the header, the separator, and every following line
// that looks like a table row.
func (scanner *blockScanner) table(header string) {
	table := Table{Headers: splitCells(header)}
	scanner.position += 2

	for scanner.position < len(scanner.lines) {
		line := scanner.lines[scanner.position]
		if !isTableRow(line) {
			break
		}
		table.Rows = append(table.Rows, splitCells(line))
		scanner.position++
	}

	scanner.blocks = append(scanner.blocks, table)
}

func isTableRow(line string) bool {
	return strings.TrimSpace(line) != "" && strings.Contains(line, "|")
}

// isSeparatorRow reports whether every cell of line is made only of
// '-' and ':' and the cell count equals want.
func isSeparatorRow(line string, want int) bool {
	cells := splitCells(line)
	if len(cells) == 0 || len(cells) != want {
		return false
	}
	for _, cell := range cells {
		if cell == "" {
			return false
		}
		for index := 0; index < len(cell); index++ {
			if cell[index] != '-' && cell[index] != ':' {
				return false
			}
		}
	}
	return true
}

// splitCells splits a table row on '|', drops the empty cell produced
// by a leading or trailing delimiter, and trims each cell. "| a | b |"
// and "a | b" both yield ["a", "b"].
func splitCells(line string) []string {
	trimmed := strings.TrimSpace(line)
	parts := strings.Split(trimmed, "|")
	if strings.HasPrefix(trimmed, "|") {
		parts = parts[1:]
	}
	if strings.HasSuffix(trimmed, "|") && len(parts) > 0 {
		parts = parts[:len(parts)-1]
	}
	cells := make([]string, len(parts))
	for index, part := range parts {
		cells[index] = strings.TrimSpace(part)
	}
	return cells
}
