package lookup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableValidation(t *testing.T) {
	_, err := NewTable([]float64{0, 1}, []float64{0})
	assert.ErrorIs(t, err, ErrLength)

	_, err = NewTable([]float64{0}, []float64{0})
	assert.ErrorIs(t, err, ErrTooFewPoints)

	_, err = NewTable([]float64{0, 2, 1}, []float64{0, 1, 2})
	assert.ErrorIs(t, err, ErrNotMonotonic)

	_, err = NewTable([]float64{0, 0, 1}, []float64{0, 1, 2})
	assert.ErrorIs(t, err, ErrNotMonotonic, "duplicate x values are rejected")
}

func TestTableInterpolation(t *testing.T) {
	tbl, err := NewTable([]float64{0, 1, 3}, []float64{0, 10, 30})
	require.NoError(t, err)

	assert.Equal(t, 0.0, tbl.Lookup(0))
	assert.Equal(t, 10.0, tbl.Lookup(1))
	assert.Equal(t, 5.0, tbl.Lookup(0.5))
	assert.Equal(t, 20.0, tbl.Lookup(2))
	assert.Equal(t, 30.0, tbl.Lookup(3))
}

func TestTableClampsOutsideRange(t *testing.T) {
	tbl := MustTable([]float64{1, 2}, []float64{5, 7})
	assert.Equal(t, 5.0, tbl.Lookup(-100))
	assert.Equal(t, 7.0, tbl.Lookup(100))
}

func TestMustTablePanics(t *testing.T) {
	assert.Panics(t, func() { MustTable([]float64{1}, []float64{1}) })
}
