package delays

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/sysdyn/internal/units"
)

var (
	day    = units.Dimension{"day": 1}
	widget = units.Dimension{"widget": 1}
	perDay = units.Dimension{"widget": 1, "day": -1}
)

func TestMaterialSteadyState(t *testing.T) {
	d, err := NewMaterial("shipping", units.New(5, day), units.New(10, perDay), 3)
	require.NoError(t, err)

	// Constant inflow equal to the seeded outflow stays in equilibrium.
	for i := 0; i < 50; i++ {
		out, err := d.Update(units.New(10, perDay), units.New(0.25, day))
		require.NoError(t, err)
		assert.InDelta(t, 10, out.Magnitude(), 1e-9, "update %d", i)
	}
	assert.InDelta(t, 50, d.InTransit().Magnitude(), 1e-9)
	assert.True(t, d.InTransit().Dim().Equal(widget))
}

func TestMaterialConvergesToNewInflow(t *testing.T) {
	d, err := NewMaterial("shipping", units.New(2, day), units.New(0, perDay), 3)
	require.NoError(t, err)

	var out units.Quantity
	for i := 0; i < 2000; i++ {
		var err error
		out, err = d.Update(units.New(7, perDay), units.New(0.01, day))
		require.NoError(t, err)
	}
	assert.InDelta(t, 7, out.Magnitude(), 1e-3)
}

func TestMaterialRejectsMismatchedInflow(t *testing.T) {
	d, err := NewMaterial("shipping", units.New(5, day), units.New(10, perDay), 3)
	require.NoError(t, err)

	_, err = d.Update(units.New(10, widget), units.New(0.25, day))
	assert.ErrorIs(t, err, ErrSignalMismatch)

	_, err = d.Update(units.New(10, perDay), units.New(0.25, widget))
	assert.ErrorIs(t, err, units.ErrDimensionMismatch)
}

func TestDelayTimeValidation(t *testing.T) {
	_, err := NewMaterial("x", units.New(0, day), units.New(1, perDay), 1)
	assert.ErrorIs(t, err, ErrDelayTime)

	_, err = NewInformation("x", units.Dimensionless(5), units.New(1, perDay), 1)
	assert.ErrorIs(t, err, ErrDelayTime)

	_, err = NewFixed("x", units.New(-1, day), units.New(1, perDay), units.New(1, day))
	assert.ErrorIs(t, err, ErrDelayTime)
}

func TestOrderClamping(t *testing.T) {
	m, err := NewMaterial("x", units.New(5, day), units.New(0, perDay), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, m.Order())

	i, err := NewInformation("x", units.New(5, day), units.New(0, perDay), -2)
	require.NoError(t, err)
	assert.Equal(t, 1, i.Order())
}

func TestInformationFirstOrderSmoothing(t *testing.T) {
	d, err := NewInformation("perceived demand", units.New(4, day), units.New(0, perDay), 1)
	require.NoError(t, err)

	// One first-order step: output moves dt/delay of the gap.
	out, err := d.Update(units.New(8, perDay), units.New(1, day))
	require.NoError(t, err)
	assert.InDelta(t, 2, out.Magnitude(), 1e-12)

	out, err = d.Update(units.New(8, perDay), units.New(1, day))
	require.NoError(t, err)
	assert.InDelta(t, 3.5, out.Magnitude(), 1e-12)
}

func TestInformationConverges(t *testing.T) {
	d, err := NewInformation("perceived", units.New(2, day), units.New(0, perDay), 3)
	require.NoError(t, err)

	var out units.Quantity
	for i := 0; i < 5000; i++ {
		var err error
		out, err = d.Update(units.New(4, perDay), units.New(0.01, day))
		require.NoError(t, err)
	}
	assert.InDelta(t, 4, out.Magnitude(), 1e-3)
	assert.Len(t, d.History(), 5001)
}

func TestFixedReproducesInputAfterLag(t *testing.T) {
	d, err := NewFixed("pipeline", units.New(3, day), units.New(0, perDay), units.New(1, day))
	require.NoError(t, err)

	inputs := []float64{1, 2, 3, 4, 5, 6}
	var got []float64
	for _, v := range inputs {
		out, err := d.Update(units.New(v, perDay))
		require.NoError(t, err)
		got = append(got, out.Magnitude())
	}
	// Three steps of pre-filled zeros, then the inputs in order.
	assert.Equal(t, []float64{0, 0, 0, 1, 2, 3}, got)
	assert.True(t, d.Output().Dim().Equal(perDay))
}

func TestFixedSubDayTimestep(t *testing.T) {
	d, err := NewFixed("pipeline", units.New(1, day), units.New(9, perDay), units.New(0.5, day))
	require.NoError(t, err)

	out, err := d.Update(units.New(1, perDay))
	require.NoError(t, err)
	assert.Equal(t, 9.0, out.Magnitude())

	out, err = d.Update(units.New(2, perDay))
	require.NoError(t, err)
	assert.Equal(t, 9.0, out.Magnitude())

	out, err = d.Update(units.New(3, perDay))
	require.NoError(t, err)
	assert.Equal(t, 1.0, out.Magnitude())
}
