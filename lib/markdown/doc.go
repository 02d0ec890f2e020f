// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package markdown parses the small, permissive markdown dialect that
// models produce in chat responses into a tree ready for display.
//
// The dialect covers paragraphs, ATX-style headings, fenced code
// blocks, pipe tables, and the inline forms `code`, [label](url),
// ![alt](url), and **strong** / __strong__. It is not CommonMark:
// input is untrusted and frequently a partial, still-streaming
// response, so nothing here ever fails. Malformed constructs degrade
// to literal text, and an unterminated code fence simply runs to the
// end of the input.
//
// The pipeline has three stages, each a pure function of its input:
//
//	text --[ParseBlocks]--> []Block --[Assemble + Tokenize]--> []RenderItem
//
// [Parse] runs the whole pipeline. The tree is recomputed from scratch
// on every content change; no identity survives between calls, so
// callers may hold on to results freely but must not expect two trees
// to share values.
//
// URLs are carried through verbatim. Whether a link becomes
// interactive or an image is fetched is decided by the host with
// [github.com/bureau-foundation/chatmark/lib/urlpolicy].
//
// This package depends on no other chatmark packages.
package markdown
