// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package urlpolicy decides what a renderer may do with URLs that come
// from untrusted markdown.
//
// Three independent questions are answered here:
//
//   - [LinkPolicy]: may this link be interactive at all?
//   - [ImagePolicy]: may this image be fetched, and does fetching wait
//     for an explicit user action?
//   - [LinkSafetyPolicy]: does navigating an otherwise-allowed link
//     need the user to confirm first?
//
// The first two share one primitive, [IsAllowed]: the scheme must be
// allow-listed and, when a host allow-list is configured, the host
// must be on it exactly. The safety policy additionally accepts host
// suffixes on a dot boundary.
//
// Nothing here returns an error. A URL that does not parse is simply
// not allowed and not safe; callers degrade to plain text or a
// placeholder.
package urlpolicy
