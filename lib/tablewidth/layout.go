// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tablewidth

// DefaultMaxPasses bounds [Resolve] when the caller passes zero.
const DefaultMaxPasses = 8

// Layout is a host layout step: given the current column widths, it
// lays out every cell and reports what it measured.
type Layout interface {
	LayoutCells(widths []float64, reporter MeasurementReporter)
}

// LayoutFunc adapts a function to [Layout].
type LayoutFunc func(widths []float64, reporter MeasurementReporter)

// LayoutCells calls function(widths, reporter).
func (function LayoutFunc) LayoutCells(widths []float64, reporter MeasurementReporter) {
	function(widths, reporter)
}

// Resolve drives layout passes until one grows no column or maxPasses
// passes have run. It returns the final widths, the number of passes,
// and whether the generation converged. Calling it again on a
// converged resolver runs a single pass and changes nothing unless
// the layout now measures wider cells.
func Resolve(resolver *Resolver, layout Layout, maxPasses int) (widths []float64, passes int, converged bool) {
	if maxPasses <= 0 {
		maxPasses = DefaultMaxPasses
	}
	for passes < maxPasses {
		resolver.BeginPass()
		layout.LayoutCells(resolver.Widths(), resolver)
		passes++
		if resolver.EndPass() {
			return resolver.Widths(), passes, true
		}
	}
	return resolver.Widths(), passes, false
}
