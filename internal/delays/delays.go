// Package delays provides the classic delay structures used in
// stock-and-flow models: nth-order material delays, which conserve
// whatever flows through them, nth-order information delays, which
// smooth a signal, and fixed pipeline delays, which reproduce their
// input verbatim after a constant lag.
package delays

import (
	"errors"
	"fmt"

	"github.com/san-kum/sysdyn/internal/units"
)

var (
	// ErrDelayTime reports a non-positive or dimensionless delay time.
	ErrDelayTime = errors.New("delays: delay time must be positive and carry a time dimension")

	// ErrSignalMismatch reports an input whose dimension differs from
	// the delay's declared signal dimension.
	ErrSignalMismatch = errors.New("delays: input dimension differs from declared signal")
)

func checkDelayTime(dt units.Quantity) error {
	if dt.Magnitude() <= 0 || dt.Dim().IsDimensionless() {
		return fmt.Errorf("%w, got %s", ErrDelayTime, dt)
	}
	return nil
}

// Material is an nth-order conserving delay: material entering the
// chain eventually leaves it, spread over time. Higher orders sharpen
// the response toward a fixed pipeline delay.
type Material struct {
	name      string
	delayTime units.Quantity
	order     int
	signal    units.Dimension // dimension of the in/out rate
	stages    []float64       // material in transit per stage
	outflow   units.Quantity
	history   []units.Quantity
}

// NewMaterial builds a material delay whose initial outflow rate is
// initial. Orders below 1 are clamped to 1.
func NewMaterial(name string, delayTime, initial units.Quantity, order int) (*Material, error) {
	if err := checkDelayTime(delayTime); err != nil {
		return nil, err
	}
	if order < 1 {
		order = 1
	}
	d := &Material{
		name:      name,
		delayTime: delayTime,
		order:     order,
		signal:    initial.Dim(),
		stages:    make([]float64, order),
		outflow:   initial,
	}
	// Seed the chain in steady state: outflow == initial requires each
	// stage to hold rate * delayTime / order.
	perStage := initial.Magnitude() * delayTime.Magnitude() / float64(order)
	for i := range d.stages {
		d.stages[i] = perStage
	}
	d.history = append(d.history, d.outflow)
	return d, nil
}

// Update advances the chain by one timestep and returns the new
// outflow rate.
func (d *Material) Update(inflow, timestep units.Quantity) (units.Quantity, error) {
	in, err := units.Coerce(inflow, d.signal)
	if err != nil {
		return units.Quantity{}, fmt.Errorf("%w: %v", ErrSignalMismatch, err)
	}
	step, err := units.Coerce(timestep, d.delayTime.Dim())
	if err != nil {
		return units.Quantity{}, fmt.Errorf("delays: %w", err)
	}

	transit := float64(d.order) / d.delayTime.Magnitude()
	dt := step.Magnitude()
	for i := range d.stages {
		src := in.Magnitude()
		if i > 0 {
			src = transit * d.stages[i-1]
		}
		d.stages[i] += (src - transit*d.stages[i]) * dt
	}
	d.outflow = units.New(transit*d.stages[d.order-1], d.signal)
	d.history = append(d.history, d.outflow)
	return d.outflow, nil
}

func (d *Material) Name() string            { return d.name }
func (d *Material) Order() int              { return d.order }
func (d *Material) Outflow() units.Quantity { return d.outflow }
func (d *Material) History() []units.Quantity {
	return append([]units.Quantity(nil), d.history...)
}

// InTransit returns the total material currently inside the chain.
// Conservation means inflow accumulates here until it leaves.
func (d *Material) InTransit() units.Quantity {
	var total float64
	for _, s := range d.stages {
		total += s
	}
	return units.New(total, d.signal.Mul(d.delayTime.Dim()))
}

// Information is an nth-order smoothing delay: each stage exponentially
// adjusts toward the previous one, so the output tracks the input with
// a lag but without conserving anything.
type Information struct {
	name      string
	delayTime units.Quantity
	order     int
	signal    units.Dimension
	stages    []float64
	output    units.Quantity
	history   []units.Quantity
}

// NewInformation builds an information delay whose initial output is
// initial. Orders below 1 are clamped to 1.
func NewInformation(name string, delayTime, initial units.Quantity, order int) (*Information, error) {
	if err := checkDelayTime(delayTime); err != nil {
		return nil, err
	}
	if order < 1 {
		order = 1
	}
	d := &Information{
		name:      name,
		delayTime: delayTime,
		order:     order,
		signal:    initial.Dim(),
		stages:    make([]float64, order),
		output:    initial,
	}
	for i := range d.stages {
		d.stages[i] = initial.Magnitude()
	}
	d.history = append(d.history, d.output)
	return d, nil
}

// Update advances the smoothing chain by one timestep and returns the
// new output.
func (d *Information) Update(input, timestep units.Quantity) (units.Quantity, error) {
	in, err := units.Coerce(input, d.signal)
	if err != nil {
		return units.Quantity{}, fmt.Errorf("%w: %v", ErrSignalMismatch, err)
	}
	step, err := units.Coerce(timestep, d.delayTime.Dim())
	if err != nil {
		return units.Quantity{}, fmt.Errorf("delays: %w", err)
	}

	adjust := float64(d.order) / d.delayTime.Magnitude()
	dt := step.Magnitude()
	for i := range d.stages {
		goal := in.Magnitude()
		if i > 0 {
			goal = d.stages[i-1]
		}
		d.stages[i] += (goal - d.stages[i]) * adjust * dt
	}
	d.output = units.New(d.stages[d.order-1], d.signal)
	d.history = append(d.history, d.output)
	return d.output, nil
}

func (d *Information) Name() string           { return d.name }
func (d *Information) Order() int             { return d.order }
func (d *Information) Output() units.Quantity { return d.output }
func (d *Information) History() []units.Quantity {
	return append([]units.Quantity(nil), d.history...)
}

// Fixed is a pipeline delay: the output at time t is exactly the input
// at time t - delayTime. The internal ring is sized from the timestep
// the model will run at, so the lag is exact only when Update is called
// with that same timestep.
type Fixed struct {
	name      string
	delayTime units.Quantity
	signal    units.Dimension
	ring      []float64
	head      int
	output    units.Quantity
	history   []units.Quantity
}

// NewFixed builds a fixed delay pre-filled with initial, sized for the
// given simulation timestep.
func NewFixed(name string, delayTime, initial, timestep units.Quantity) (*Fixed, error) {
	if err := checkDelayTime(delayTime); err != nil {
		return nil, err
	}
	step, err := units.Coerce(timestep, delayTime.Dim())
	if err != nil {
		return nil, fmt.Errorf("delays: %w", err)
	}
	if step.Magnitude() <= 0 {
		return nil, fmt.Errorf("delays: timestep must be positive, got %s", timestep)
	}

	// One ring slot per step of lag: the value written now is read
	// back exactly len(ring) updates later.
	size := int(delayTime.Magnitude() / step.Magnitude())
	if size < 1 {
		size = 1
	}
	d := &Fixed{
		name:      name,
		delayTime: delayTime,
		signal:    initial.Dim(),
		ring:      make([]float64, size),
		output:    initial,
	}
	for i := range d.ring {
		d.ring[i] = initial.Magnitude()
	}
	d.history = append(d.history, d.output)
	return d, nil
}

// Update pushes one input into the pipeline and returns the value that
// falls out the far end.
func (d *Fixed) Update(input units.Quantity) (units.Quantity, error) {
	in, err := units.Coerce(input, d.signal)
	if err != nil {
		return units.Quantity{}, fmt.Errorf("%w: %v", ErrSignalMismatch, err)
	}
	out := d.ring[d.head]
	d.ring[d.head] = in.Magnitude()
	d.head = (d.head + 1) % len(d.ring)

	d.output = units.New(out, d.signal)
	d.history = append(d.history, d.output)
	return d.output, nil
}

func (d *Fixed) Name() string           { return d.name }
func (d *Fixed) Output() units.Quantity { return d.output }
func (d *Fixed) History() []units.Quantity {
	return append([]units.Quantity(nil), d.history...)
}
