// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tablewidth

import (
	"math"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestReportNeverShrinks(t *testing.T) {
	resolver := NewResolver(0.5)
	resolver.ReportCellWidth(0, 0, 50)
	resolver.ReportCellWidth(0, 0, 40)
	if width := resolver.Width(0); width != 50 {
		t.Errorf("expected width 50, got %v", width)
	}
}

func TestReportEpsilonGate(t *testing.T) {
	resolver := NewResolver(0.5)
	if !resolver.Report(1, 10) {
		t.Error("expected first report to grow the column")
	}
	if resolver.Report(1, 10.4) {
		t.Error("expected growth within epsilon to be ignored")
	}
	if resolver.Report(1, 10.5) {
		t.Error("expected growth equal to epsilon to be ignored")
	}
	if !resolver.Report(1, 10.6) {
		t.Error("expected growth beyond epsilon to be recorded")
	}
	if width := resolver.Width(1); width != 10.6 {
		t.Errorf("expected width 10.6, got %v", width)
	}
}

func TestReportIgnoresGarbage(t *testing.T) {
	resolver := NewResolver(1)
	resolver.Report(-1, 5)
	resolver.Report(0, math.NaN())
	resolver.Report(0, math.Inf(1))
	if widths := resolver.Widths(); len(widths) != 0 {
		t.Errorf("expected no columns, got %v", widths)
	}
	resolver.Report(2, -3)
	if diff := cmp.Diff([]float64{0, 0, 0}, resolver.Widths()); diff != "" {
		t.Errorf("Widths mismatch (-want +got):\n%s", diff)
	}
}

func TestNewResolverDefaultsEpsilon(t *testing.T) {
	resolver := NewResolver(math.NaN())
	resolver.Report(0, 10)
	if resolver.Report(0, 10+DefaultEpsilon/2) {
		t.Error("expected default epsilon to apply")
	}
}

func TestPassConvergence(t *testing.T) {
	var published [][]float64
	resolver := NewResolver(0.5, WithPublisher(func(widths []float64) {
		published = append(published, widths)
	}))

	resolver.BeginPass()
	resolver.ReportCellWidth(0, 0, 12)
	resolver.ReportCellWidth(0, 1, 7)
	resolver.ReportCellWidth(1, 0, 9)
	if resolver.EndPass() {
		t.Error("expected first pass not to converge")
	}

	resolver.BeginPass()
	resolver.ReportCellWidth(0, 0, 12.2)
	resolver.ReportCellWidth(0, 1, 7)
	resolver.ReportCellWidth(1, 0, 9)
	if !resolver.EndPass() {
		t.Error("expected jitter-only pass to converge")
	}
	if !resolver.Converged() {
		t.Error("expected Converged to report true")
	}

	want := [][]float64{{12, 7}}
	if diff := cmp.Diff(want, published); diff != "" {
		t.Errorf("published mismatch (-want +got):\n%s", diff)
	}
}

func TestResetStartsNewGeneration(t *testing.T) {
	resolver := NewResolver(0.5)
	resolver.Report(0, 80)
	resolver.Reset()
	if generation := resolver.Generation(); generation != 1 {
		t.Errorf("expected generation 1, got %d", generation)
	}
	resolver.Report(0, 40)
	if width := resolver.Width(0); width != 40 {
		t.Errorf("expected width 40 after reset, got %v", width)
	}
}

// growingLayout measures each cell as its content width, but a cell
// that wraps grows to fill its column once the column widens, plus a
// little jitter. The fixed point is reached when no column grows.
func growingLayout(content [][]float64, jitter float64) LayoutFunc {
	pass := 0
	return func(widths []float64, reporter MeasurementReporter) {
		pass++
		noise := jitter
		if pass%2 == 0 {
			noise = -jitter
		}
		for row, cells := range content {
			for column, width := range cells {
				measured := width
				if column < len(widths) && widths[column] > measured {
					measured = widths[column]
				}
				reporter.ReportCellWidth(row, column, measured+noise)
			}
		}
	}
}

func TestResolveConverges(t *testing.T) {
	resolver := NewResolver(0.5)
	content := [][]float64{
		{4, 10, 3},
		{8, 2},
		{1, 1, 1, 6},
	}
	widths, passes, converged := Resolve(resolver, growingLayout(content, 0.1), 0)
	if !converged {
		t.Fatalf("expected convergence, ran %d passes", passes)
	}
	if passes > 3 {
		t.Errorf("expected convergence within 3 passes, took %d", passes)
	}
	want := []float64{8.1, 10.1, 3.1, 6.1}
	if diff := cmp.Diff(want, widths, cmpApprox); diff != "" {
		t.Errorf("widths mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	resolver := NewResolver(0.5)
	layout := growingLayout([][]float64{{5, 9}}, 0.2)
	first, _, _ := Resolve(resolver, layout, 0)
	for attempt := 0; attempt < 5; attempt++ {
		again, passes, converged := Resolve(resolver, layout, 0)
		if !converged || passes != 1 {
			t.Errorf("attempt %d: expected single converged pass, got passes=%d converged=%v", attempt, passes, converged)
		}
		if diff := cmp.Diff(first, again); diff != "" {
			t.Errorf("attempt %d: widths drifted (-first +again):\n%s", attempt, diff)
		}
	}
}

func TestResolveStopsAtMaxPasses(t *testing.T) {
	resolver := NewResolver(0.5)
	pass := 0.0
	endless := LayoutFunc(func(widths []float64, reporter MeasurementReporter) {
		pass++
		reporter.ReportCellWidth(0, 0, pass*10)
	})
	_, passes, converged := Resolve(resolver, endless, 3)
	if converged {
		t.Error("expected no convergence for ever-growing layout")
	}
	if passes != 3 {
		t.Errorf("expected 3 passes, got %d", passes)
	}
}

func TestConcurrentReports(t *testing.T) {
	resolver := NewResolver(0.5)
	var group sync.WaitGroup
	for worker := 0; worker < 8; worker++ {
		group.Add(1)
		go func(worker int) {
			defer group.Done()
			for step := 0; step < 100; step++ {
				resolver.ReportCellWidth(step, step%4, float64(worker*100+step))
			}
		}(worker)
	}
	group.Wait()
	if width := resolver.Width(3); width != 799 {
		t.Errorf("expected column 3 width 799, got %v", width)
	}
}

var cmpApprox = cmp.Comparer(func(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
})
