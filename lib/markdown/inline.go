// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package markdown

import "strings"

// Tokenize splits the text of one paragraph, heading, or table cell
// into inline tokens in a single left-to-right pass.
//
// Literal text between recognized constructs always forms a contiguous
// span of the input, so the pending-text accumulator is just the
// offset where the current span began. It is flushed into a [Text]
// token whenever a construct is recognized and at the end of input.
//
// Constructs that fail to close (a lone backtick, "[label]" with no
// "(url)", "**" with no partner) contribute their opening characters
// to the literal text and scanning resumes at the next character.
func Tokenize(text string) []InlineToken {
	scanner := newInlineScanner(text)
	var tokens []InlineToken
	textStart := 0
	position := 0

	for position < len(text) {
		token, next, matched := scanner.match(position)
		if !matched {
			position++
			continue
		}
		tokens = appendText(tokens, text[textStart:position])
		tokens = append(tokens, token)
		position = next
		textStart = next
	}

	return appendText(tokens, text[textStart:])
}

func appendText(tokens []InlineToken, value string) []InlineToken {
	if value == "" {
		return tokens
	}
	return append(tokens, Text{Value: value})
}

// delimiterFinder finds the first occurrence of a closing delimiter at
// or after a position. Tokenize only ever asks about positions that
// move forward, so a remembered answer stays correct until the
// position passes it, and each byte is scanned at most once per
// delimiter. Without this a run of unclosed openers rescans the rest
// of the input once per opener.
type delimiterFinder struct {
	delimiter string
	searched  bool
	// found is the last answer, or -1 when the delimiter does not
	// occur after the last position asked about.
	found int
}

func (finder *delimiterFinder) from(text string, position int) int {
	if finder.searched && (finder.found < 0 || finder.found >= position) {
		return finder.found
	}
	finder.searched = true
	finder.found = strings.Index(text[position:], finder.delimiter)
	if finder.found >= 0 {
		finder.found += position
	}
	return finder.found
}

// inlineScanner holds the input of one Tokenize call and the closing
// delimiter finders shared by every construct in it.
type inlineScanner struct {
	text             string
	closeBracket     delimiterFinder
	closeParen       delimiterFinder
	closeBacktick    delimiterFinder
	closeStars       delimiterFinder
	closeUnderscores delimiterFinder
}

func newInlineScanner(text string) *inlineScanner {
	return &inlineScanner{
		text:             text,
		closeBracket:     delimiterFinder{delimiter: "]"},
		closeParen:       delimiterFinder{delimiter: ")"},
		closeBacktick:    delimiterFinder{delimiter: "`"},
		closeStars:       delimiterFinder{delimiter: "**"},
		closeUnderscores: delimiterFinder{delimiter: "__"},
	}
}

// match tries every construct that can begin at position. On success
// it returns the token and the offset just past it.
func (scanner *inlineScanner) match(position int) (InlineToken, int, bool) {
	text := scanner.text
	switch text[position] {
	case '`':
		return scanner.matchCode(position)

	case '!':
		if position+1 < len(text) && text[position+1] == '[' {
			alt, url, next, ok := scanner.matchBracketPair(position + 1)
			if ok {
				return Image{Alt: alt, URL: url}, next, true
			}
		}

	case '[':
		label, url, next, ok := scanner.matchBracketPair(position)
		if ok {
			return Link{Label: label, URL: url}, next, true
		}

	case '*':
		return scanner.matchStrong(position, &scanner.closeStars)

	case '_':
		return scanner.matchStrong(position, &scanner.closeUnderscores)
	}
	return nil, position, false
}

func (scanner *inlineScanner) matchCode(position int) (InlineToken, int, bool) {
	closing := scanner.closeBacktick.from(scanner.text, position+1)
	if closing < 0 {
		return nil, position, false
	}
	return InlineCode{Code: scanner.text[position+1 : closing]}, closing + 1, true
}

// matchBracketPair parses "[label](url)" starting at the '[' at open.
// Both halves must close; there is no partial match.
func (scanner *inlineScanner) matchBracketPair(open int) (label, url string, next int, ok bool) {
	text := scanner.text
	closeBracket := scanner.closeBracket.from(text, open+1)
	if closeBracket < 0 {
		return "", "", open, false
	}
	if closeBracket+1 >= len(text) || text[closeBracket+1] != '(' {
		return "", "", open, false
	}
	closeParen := scanner.closeParen.from(text, closeBracket+2)
	if closeParen < 0 {
		return "", "", open, false
	}
	label = text[open+1 : closeBracket]
	url = strings.TrimSpace(text[closeBracket+2 : closeParen])
	return label, url, closeParen + 1, true
}

// matchStrong parses "**content**" or "__content__". The content is
// tokenized recursively, so code, links, images, and the other marker
// style may appear inside. Empty content is not a match: a Strong
// token always has children.
func (scanner *inlineScanner) matchStrong(position int, closing *delimiterFinder) (InlineToken, int, bool) {
	text := scanner.text
	if position+1 >= len(text) || text[position+1] != text[position] {
		return nil, position, false
	}
	contentStart := position + 2
	end := closing.from(text, contentStart)
	if end <= contentStart {
		return nil, position, false
	}
	children := Tokenize(text[contentStart:end])
	return Strong{Children: children}, end + 2, true
}

// ContainsImage reports whether tokens include an [Image] at any
// depth.
func ContainsImage(tokens []InlineToken) bool {
	for _, token := range tokens {
		switch token := token.(type) {
		case Image:
			return true
		case Strong:
			if ContainsImage(token.Children) {
				return true
			}
		}
	}
	return false
}

// Images returns every [Image] in tokens, depth first, in source
// order.
func Images(tokens []InlineToken) []Image {
	var images []Image
	for _, token := range tokens {
		switch token := token.(type) {
		case Image:
			images = append(images, token)
		case Strong:
			images = append(images, Images(token.Children)...)
		}
	}
	return images
}

// PlainText returns the visible text of tokens with all markup
// removed. Links contribute their label (or URL when the label is
// empty) and images their alt text.
func PlainText(tokens []InlineToken) string {
	var builder strings.Builder
	writePlainText(&builder, tokens)
	return builder.String()
}

func writePlainText(builder *strings.Builder, tokens []InlineToken) {
	for _, token := range tokens {
		switch token := token.(type) {
		case Text:
			builder.WriteString(token.Value)
		case InlineCode:
			builder.WriteString(token.Code)
		case Link:
			if token.Label != "" {
				builder.WriteString(token.Label)
			} else {
				builder.WriteString(token.URL)
			}
		case Image:
			builder.WriteString(token.Alt)
		case Strong:
			writePlainText(builder, token.Children)
		}
	}
}
