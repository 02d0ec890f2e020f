// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tablewidth

import (
	"math"
	"sync"
)

// DefaultEpsilon is the growth threshold used when none is given.
const DefaultEpsilon = 0.5

// MeasurementReporter receives the width a layout pass measured for a
// cell.
type MeasurementReporter interface {
	ReportCellWidth(row, column int, width float64)
}

// Resolver tracks the widest measurement per column. It is safe for
// concurrent use; a host may report from whatever goroutine runs its
// layout.
type Resolver struct {
	epsilon float64
	publish func(widths []float64)

	mu         sync.Mutex
	widths     map[int]float64
	columns    int
	grewInPass bool
	generation int
	converged  bool
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithPublisher registers a function called with the full width list
// at the end of every pass that grew a column. It runs without the
// resolver's lock held and may call back into the resolver.
func WithPublisher(publish func(widths []float64)) Option {
	return func(resolver *Resolver) {
		resolver.publish = publish
	}
}

// NewResolver creates a resolver. A non-positive or NaN epsilon is
// replaced by [DefaultEpsilon].
func NewResolver(epsilon float64, options ...Option) *Resolver {
	if !(epsilon > 0) {
		epsilon = DefaultEpsilon
	}
	resolver := &Resolver{
		epsilon: epsilon,
		widths:  make(map[int]float64),
	}
	for _, option := range options {
		option(resolver)
	}
	return resolver
}

// ReportCellWidth implements [MeasurementReporter]. The row is not
// needed for the width decision; it is accepted so hosts can report
// exactly what they measured.
func (resolver *Resolver) ReportCellWidth(row, column int, width float64) {
	resolver.Report(column, width)
}

// Report records a measurement for column and reports whether the
// column's width grew. Negative columns, NaN, and infinite widths are
// ignored; negative widths count as zero.
func (resolver *Resolver) Report(column int, width float64) bool {
	if column < 0 || math.IsNaN(width) || math.IsInf(width, 0) {
		return false
	}
	if width < 0 {
		width = 0
	}

	resolver.mu.Lock()
	defer resolver.mu.Unlock()

	current, known := resolver.widths[column]
	if known && width <= current+resolver.epsilon {
		return false
	}
	resolver.widths[column] = width
	if column+1 > resolver.columns {
		resolver.columns = column + 1
	}
	resolver.grewInPass = true
	resolver.converged = false
	return true
}

// BeginPass marks the start of a layout pass.
func (resolver *Resolver) BeginPass() {
	resolver.mu.Lock()
	resolver.grewInPass = false
	resolver.mu.Unlock()
}

// EndPass marks the end of a layout pass and reports whether the
// generation has converged, meaning the pass grew no column. When the
// pass did grow a column the publisher, if any, receives the new
// widths.
func (resolver *Resolver) EndPass() bool {
	resolver.mu.Lock()
	grew := resolver.grewInPass
	resolver.grewInPass = false
	if !grew {
		resolver.converged = true
	}
	widths := resolver.widthsLocked()
	publish := resolver.publish
	resolver.mu.Unlock()

	if grew && publish != nil {
		publish(widths)
	}
	return !grew
}

// Converged reports whether the last completed pass grew nothing.
func (resolver *Resolver) Converged() bool {
	resolver.mu.Lock()
	defer resolver.mu.Unlock()
	return resolver.converged
}

// Width returns the current width of column, or 0 if nothing was
// reported for it.
func (resolver *Resolver) Width(column int) float64 {
	resolver.mu.Lock()
	defer resolver.mu.Unlock()
	return resolver.widths[column]
}

// Widths returns the current widths of columns 0..n-1 where n is one
// past the highest column reported. Unreported columns are 0.
func (resolver *Resolver) Widths() []float64 {
	resolver.mu.Lock()
	defer resolver.mu.Unlock()
	return resolver.widthsLocked()
}

func (resolver *Resolver) widthsLocked() []float64 {
	widths := make([]float64, resolver.columns)
	for column, width := range resolver.widths {
		widths[column] = width
	}
	return widths
}

// Generation counts calls to Reset.
func (resolver *Resolver) Generation() int {
	resolver.mu.Lock()
	defer resolver.mu.Unlock()
	return resolver.generation
}

// Reset discards every width and starts a new generation. Hosts call
// it when the content or the container size changes; within a
// generation widths never shrink.
func (resolver *Resolver) Reset() {
	resolver.mu.Lock()
	defer resolver.mu.Unlock()
	resolver.widths = make(map[int]float64)
	resolver.columns = 0
	resolver.grewInPass = false
	resolver.converged = false
	resolver.generation++
}
