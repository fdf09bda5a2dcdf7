// Package lookup implements piecewise-linear lookup tables, the standard
// way to express empirical nonlinear relationships inside calculation
// functions. The engine itself never consults a table; user formulas do.
package lookup

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrLength       = errors.New("lookup: x and y must have the same length")
	ErrTooFewPoints = errors.New("lookup: need at least two points")
	ErrNotMonotonic = errors.New("lookup: x values must be monotonically increasing")
)

// Table interpolates linearly between data points and clamps outside the
// defined range.
type Table struct {
	xs []float64
	ys []float64
}

func NewTable(xs, ys []float64) (*Table, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("%w: %d vs %d", ErrLength, len(xs), len(ys))
	}
	if len(xs) < 2 {
		return nil, ErrTooFewPoints
	}
	for i := 1; i < len(xs); i++ {
		if xs[i] <= xs[i-1] {
			return nil, fmt.Errorf("%w: x[%d]=%g, x[%d]=%g", ErrNotMonotonic, i-1, xs[i-1], i, xs[i])
		}
	}
	return &Table{
		xs: append([]float64(nil), xs...),
		ys: append([]float64(nil), ys...),
	}, nil
}

// MustTable is NewTable for statically known points; it panics on error.
func MustTable(xs, ys []float64) *Table {
	t, err := NewTable(xs, ys)
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup returns the interpolated y for x, clamped to the first and last
// points outside the table's range.
func (t *Table) Lookup(x float64) float64 {
	if x <= t.xs[0] {
		return t.ys[0]
	}
	n := len(t.xs)
	if x >= t.xs[n-1] {
		return t.ys[n-1]
	}
	// First index with xs[i] > x; the segment is [i-1, i].
	i := sort.SearchFloat64s(t.xs, x)
	if t.xs[i] == x {
		return t.ys[i]
	}
	x0, x1 := t.xs[i-1], t.xs[i]
	y0, y1 := t.ys[i-1], t.ys[i]
	return y0 + (y1-y0)*(x-x0)/(x1-x0)
}

// Len returns the number of defined points.
func (t *Table) Len() int { return len(t.xs) }
