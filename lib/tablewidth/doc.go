// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package tablewidth resolves table column widths from measurements
// reported by a host layout pass.
//
// The host lays out every cell, reports each measured width through
// [MeasurementReporter], and lays out again with the republished
// widths. A [Resolver] only ever grows a column, and only when the new
// measurement beats the current width by more than epsilon, so
// floating-point jitter between passes cannot make it oscillate. A
// pass that grows nothing ends the generation: the widths are final
// until [Resolver.Reset] starts a new one (new content, new container
// size).
//
// [Resolve] drives the passes for a host that can lay out
// synchronously: it reports through the resolver until a pass grows no
// column or the pass cap is reached.
package tablewidth
