// Package testutil provides assertion helpers shared by the sim/ and
// sim/sector/ test packages.
package testutil

import (
	"math"
	"testing"
)

// LedgerTolerance is the absolute tolerance for balance-sheet identities
// after a chain of in-place float updates on unit-sized banks.
const LedgerTolerance = 1e-9

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

// AssertFinite fails the test if v is NaN or infinite.
func AssertFinite(t *testing.T, name string, v float64) {
	t.Helper()
	if math.IsNaN(v) || math.IsInf(v, 0) {
		t.Errorf("%s: got %v, want a finite value", name, v)
	}
}
