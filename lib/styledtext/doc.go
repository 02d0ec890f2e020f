// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package styledtext compiles inline markdown tokens into
// style-annotated runs that a host renderer turns into displayed text.
//
// A [Compiler] carries the active [urlpolicy.LinkPolicy] and
// [urlpolicy.LinkSafetyPolicy]. Links the link policy rejects become
// plain runs: the label is still shown, nothing is interactive, and
// no error is reported. Images never become runs; hosts render them
// out of band under the image policy.
//
// Compiling a whole [markdown.TextGroup] yields one [Paragraph] per
// block, each carrying [Spacing] so the host can apply vertical
// rhythm without looking at neighbouring blocks.
package styledtext
