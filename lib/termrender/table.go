// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package termrender

import (
	"math"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/bureau-foundation/chatmark/lib/markdown"
	"github.com/bureau-foundation/chatmark/lib/styledtext"
	"github.com/bureau-foundation/chatmark/lib/tablewidth"
)

const (
	columnSeparator = "  "
	minColumnWidth  = 3
)

// renderTable lays out a table. Every cell is compiled and measured,
// the measurements go through resolver until a pass grows no column,
// and the resulting widths are shrunk to fit the terminal for display.
// The resolver keeps the unshrunk widths.
func (renderer *Renderer) renderTable(resolver *tablewidth.Resolver, table markdown.Table) string {
	columnCount := table.ColumnCount()
	if columnCount == 0 {
		return ""
	}

	// Row 0 is the header.
	cells := make([][]string, len(table.Rows)+1)
	cells[0] = make([]string, columnCount)
	for column := range columnCount {
		cells[0][column] = renderer.renderCell(table.Header(column), styledtext.Style{Bold: true})
	}
	for row := range table.Rows {
		cells[row+1] = make([]string, columnCount)
		for column := range columnCount {
			cells[row+1][column] = renderer.renderCell(table.Cell(row, column), styledtext.Style{})
		}
	}

	measure := tablewidth.LayoutFunc(func(widths []float64, reporter tablewidth.MeasurementReporter) {
		for row, rowCells := range cells {
			for column, cell := range rowCells {
				reporter.ReportCellWidth(row, column, float64(ansi.StringWidth(cell)))
			}
		}
	})
	resolved, _, _ := tablewidth.Resolve(resolver, measure, 0)

	columnWidths := make([]int, columnCount)
	for column := range columnWidths {
		if column < len(resolved) {
			columnWidths[column] = int(math.Ceil(resolved[column]))
		}
		if columnWidths[column] < 1 {
			columnWidths[column] = 1
		}
	}
	fitColumns(columnWidths, renderer.currentWidth(), ansi.StringWidth(columnSeparator))

	lines := []string{formatTableRow(cells[0], columnWidths)}

	var ruleParts []string
	for _, width := range columnWidths {
		ruleParts = append(ruleParts, strings.Repeat("─", width))
	}
	borderStyle := renderer.newStyle().Foreground(renderer.options.Theme.BorderColor)
	lines = append(lines, borderStyle.Render(strings.Join(ruleParts, columnSeparator)))

	for _, rowCells := range cells[1:] {
		lines = append(lines, formatTableRow(rowCells, columnWidths))
	}
	return strings.Join(lines, "\n")
}

// renderCell compiles one cell. Images in cells have no room for a
// placeholder line and show as their bracketed alt text.
func (renderer *Renderer) renderCell(cell string, base styledtext.Style) string {
	tokens := imagesAsText(markdown.Tokenize(cell))
	return renderer.renderRuns(renderer.options.Compiler.Compile(tokens, base))
}

func imagesAsText(tokens []markdown.InlineToken) []markdown.InlineToken {
	converted := make([]markdown.InlineToken, len(tokens))
	for index, token := range tokens {
		switch token := token.(type) {
		case markdown.Image:
			converted[index] = markdown.Text{Value: "[" + token.Alt + "]"}
		case markdown.Strong:
			converted[index] = markdown.Strong{Children: imagesAsText(token.Children)}
		default:
			converted[index] = token
		}
	}
	return converted
}

// fitColumns shrinks widths in place so that the columns plus their
// separators fit in available. Shrinking is proportional with a floor
// of minColumnWidth; whatever rounding and the floor leave over is
// taken from the widest columns.
func fitColumns(widths []int, available, separatorWidth int) {
	if len(widths) == 0 {
		return
	}
	content := 0
	for _, width := range widths {
		content += width
	}
	separators := separatorWidth * (len(widths) - 1)
	if content+separators <= available {
		return
	}

	usable := available - separators
	if usable < len(widths)*minColumnWidth {
		usable = len(widths) * minColumnWidth
	}
	total := 0
	for index, width := range widths {
		widths[index] = width * usable / content
		if widths[index] < minColumnWidth {
			widths[index] = minColumnWidth
		}
		total += widths[index]
	}

	for total > usable {
		widest := 0
		for index := range widths {
			if widths[index] > widths[widest] {
				widest = index
			}
		}
		if widths[widest] <= minColumnWidth {
			return
		}
		widths[widest]--
		total--
	}
}

// formatTableRow pads or truncates each cell to its column width.
// Rows carry no trailing spaces.
func formatTableRow(cells []string, columnWidths []int) string {
	parts := make([]string, len(columnWidths))
	for index, width := range columnWidths {
		var cell string
		if index < len(cells) {
			cell = cells[index]
		}
		visibleWidth := ansi.StringWidth(cell)
		if visibleWidth > width {
			cell = ansi.Truncate(cell, width, "…")
			visibleWidth = ansi.StringWidth(cell)
		}
		padding := width - visibleWidth
		if padding < 0 {
			padding = 0
		}
		parts[index] = cell + strings.Repeat(" ", padding)
	}
	return strings.TrimRight(strings.Join(parts, columnSeparator), " ")
}
