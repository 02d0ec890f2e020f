// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package treedump converts render items into a plain tree of [Node]
// values for inspection and golden snapshots.
//
// Every sealed variant of [markdown.RenderItem] and
// [markdown.InlineToken] maps to a Node with a fixed Kind string, so
// the output can be compared byte for byte across runs. [JSON] is for
// people and [CBOR] uses Core Deterministic Encoding through
// lib/codec: equal trees always produce identical bytes.
package treedump
