// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package treedump

import (
	"encoding/json"
	"fmt"

	"github.com/bureau-foundation/chatmark/lib/codec"
	"github.com/bureau-foundation/chatmark/lib/markdown"
)

// Node kinds.
const (
	KindTextGroup  = "text_group"
	KindInlineText = "inline_text"
	KindParagraph  = "paragraph"
	KindHeading    = "heading"
	KindCodeBlock  = "code_block"
	KindTable      = "table"
	KindText       = "text"
	KindCode       = "code"
	KindLink       = "link"
	KindImage      = "image"
	KindStrong     = "strong"
)

// Node is one element of the dumped tree. Which fields are set
// depends on Kind.
type Node struct {
	Kind string `json:"kind" cbor:"kind"`
	// Text holds literal text, inline code, a link label, an image
	// alt text, or a code block body.
	Text     string     `json:"text,omitempty" cbor:"text,omitempty"`
	URL      string     `json:"url,omitempty" cbor:"url,omitempty"`
	Language string     `json:"language,omitempty" cbor:"language,omitempty"`
	Level    int        `json:"level,omitempty" cbor:"level,omitempty"`
	Children []Node     `json:"children,omitempty" cbor:"children,omitempty"`
	Headers  []string   `json:"headers,omitempty" cbor:"headers,omitempty"`
	Rows     [][]string `json:"rows,omitempty" cbor:"rows,omitempty"`
}

// FromItems converts render items to nodes in order.
func FromItems(items []markdown.RenderItem) []Node {
	nodes := make([]Node, 0, len(items))
	for _, item := range items {
		nodes = append(nodes, fromItem(item))
	}
	return nodes
}

func fromItem(item markdown.RenderItem) Node {
	switch item := item.(type) {
	case markdown.TextGroup:
		node := Node{Kind: KindTextGroup}
		for _, block := range item.Blocks {
			node.Children = append(node.Children, fromTextBlock(block.Tokens, block.Hint))
		}
		return node
	case markdown.InlineText:
		return Node{Kind: KindInlineText, Level: item.Hint.Level(), Children: FromTokens(item.Tokens)}
	case markdown.CodeBlock:
		return Node{Kind: KindCodeBlock, Language: item.Language, Text: item.Code}
	case markdown.Table:
		return Node{Kind: KindTable, Headers: item.Headers, Rows: item.Rows}
	default:
		panic(fmt.Sprintf("treedump: unknown render item %T", item))
	}
}

func fromTextBlock(tokens []markdown.InlineToken, hint markdown.StyleHint) Node {
	if hint.IsHeading() {
		return Node{Kind: KindHeading, Level: hint.Level(), Children: FromTokens(tokens)}
	}
	return Node{Kind: KindParagraph, Children: FromTokens(tokens)}
}

// FromTokens converts inline tokens to nodes in order.
func FromTokens(tokens []markdown.InlineToken) []Node {
	if len(tokens) == 0 {
		return nil
	}
	nodes := make([]Node, 0, len(tokens))
	for _, token := range tokens {
		switch token := token.(type) {
		case markdown.Text:
			nodes = append(nodes, Node{Kind: KindText, Text: token.Value})
		case markdown.InlineCode:
			nodes = append(nodes, Node{Kind: KindCode, Text: token.Code})
		case markdown.Link:
			nodes = append(nodes, Node{Kind: KindLink, Text: token.Label, URL: token.URL})
		case markdown.Image:
			nodes = append(nodes, Node{Kind: KindImage, Text: token.Alt, URL: token.URL})
		case markdown.Strong:
			nodes = append(nodes, Node{Kind: KindStrong, Children: FromTokens(token.Children)})
		default:
			panic(fmt.Sprintf("treedump: unknown inline token %T", token))
		}
	}
	return nodes
}

// JSON returns the indented JSON dump of items.
func JSON(items []markdown.RenderItem) ([]byte, error) {
	data, err := json.MarshalIndent(FromItems(items), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding tree as JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// CBOR returns the deterministic CBOR dump of items.
func CBOR(items []markdown.RenderItem) ([]byte, error) {
	data, err := codec.Marshal(FromItems(items))
	if err != nil {
		return nil, fmt.Errorf("encoding tree as CBOR: %w", err)
	}
	return data, nil
}

// DecodeCBOR reads a dump produced by [CBOR].
func DecodeCBOR(data []byte) ([]Node, error) {
	var nodes []Node
	if err := codec.Unmarshal(data, &nodes); err != nil {
		return nil, fmt.Errorf("decoding CBOR tree: %w", err)
	}
	return nodes, nil
}
