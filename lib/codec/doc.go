// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides chatmark's CBOR encoding configuration.
//
// Render-tree snapshots are written in two formats: JSON for people
// and tooling, CBOR for compact fixtures and for comparing trees
// byte-for-byte. The encoder uses Core Deterministic Encoding
// (RFC 8949 §4.2): sorted map keys, smallest integer encoding, no
// indefinite-length items. The same tree always produces the same
// bytes, which is what makes a CBOR snapshot usable as a determinism
// check.
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//	text, err := codec.Diagnose(data) // RFC 8949 diagnostic notation
//
// fxamacker/cbor falls back to `json` tags when a field has no `cbor`
// tag.
package codec
