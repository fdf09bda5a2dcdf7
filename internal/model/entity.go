// Package model defines the entities of a stock-and-flow model and the
// machinery to evaluate them: stocks accumulate, flows move quantity
// between stocks, auxiliaries are recomputed every step from user-supplied
// functions, and parameters are constants. A System bundles the entities,
// wires flows to stocks, and owns the auxiliary evaluation order.
package model

import "github.com/san-kum/sysdyn/internal/units"

// CalcFunc computes an auxiliary value or a flow rate from a read-only
// view of the system. It may return a tagged Quantity or units.Raw for a
// bare number; either way the engine coerces and checks the result against
// the entity's declared unit.
type CalcFunc func(s *State) units.Quantity

// Stock is a level variable with memory across steps. Flow membership is
// kept as names, not pointers, so a System deep-copies cleanly; the System
// fills inflows/outflows during attach, the Stock never registers itself.
type Stock struct {
	name     string
	unit     units.Dimension
	initial  units.Quantity
	value    units.Quantity
	inflows  []string
	outflows []string
}

func NewStock(name string, initial float64, unit units.Dimension) *Stock {
	q := units.New(initial, unit)
	return &Stock{name: name, unit: unit.Clone(), initial: q, value: q}
}

func (s *Stock) Name() string            { return s.name }
func (s *Stock) Unit() units.Dimension   { return s.unit.Clone() }
func (s *Stock) Value() units.Quantity   { return s.value }
func (s *Stock) Initial() units.Quantity { return s.initial }
func (s *Stock) Inflows() []string       { return append([]string(nil), s.inflows...) }
func (s *Stock) Outflows() []string      { return append([]string(nil), s.outflows...) }

func (s *Stock) clone() *Stock {
	c := *s
	c.unit = s.unit.Clone()
	c.inflows = append([]string(nil), s.inflows...)
	c.outflows = append([]string(nil), s.outflows...)
	return &c
}

// Flow is a rate variable. Source and Target name the stocks it drains
// and fills; either may be empty, denoting a source or sink outside the
// model boundary.
type Flow struct {
	name   string
	source string
	target string
	unit   units.Dimension
	inputs []string
	fn     CalcFunc
	rate   units.Quantity
}

// FlowSpec describes a flow to be built. Inputs list the names of the
// entities the rate function reads; they drive graph construction only
// and are not enforced at call time.
type FlowSpec struct {
	Name   string
	Source string
	Target string
	Unit   units.Dimension
	Inputs []string
	Rate   CalcFunc
}

func NewFlow(spec FlowSpec) *Flow {
	return &Flow{
		name:   spec.Name,
		source: spec.Source,
		target: spec.Target,
		unit:   spec.Unit.Clone(),
		inputs: append([]string(nil), spec.Inputs...),
		fn:     spec.Rate,
		rate:   units.Dimensionless(0),
	}
}

func (f *Flow) Name() string          { return f.name }
func (f *Flow) Source() string        { return f.source }
func (f *Flow) Target() string        { return f.target }
func (f *Flow) Unit() units.Dimension { return f.unit.Clone() }
func (f *Flow) Inputs() []string      { return append([]string(nil), f.inputs...) }
func (f *Flow) Rate() units.Quantity  { return f.rate }

func (f *Flow) clone() *Flow {
	c := *f
	c.unit = f.unit.Clone()
	c.inputs = append([]string(nil), f.inputs...)
	return &c
}

// Auxiliary is a derived variable with no memory, recomputed from its
// calculation function on every step.
type Auxiliary struct {
	name   string
	unit   units.Dimension
	inputs []string
	fn     CalcFunc
	value  units.Quantity
}

type AuxSpec struct {
	Name   string
	Unit   units.Dimension
	Inputs []string
	Calc   CalcFunc
}

func NewAuxiliary(spec AuxSpec) *Auxiliary {
	return &Auxiliary{
		name:   spec.Name,
		unit:   spec.Unit.Clone(),
		inputs: append([]string(nil), spec.Inputs...),
		fn:     spec.Calc,
		value:  units.Dimensionless(0),
	}
}

func (a *Auxiliary) Name() string          { return a.name }
func (a *Auxiliary) Unit() units.Dimension { return a.unit.Clone() }
func (a *Auxiliary) Inputs() []string      { return append([]string(nil), a.inputs...) }
func (a *Auxiliary) Value() units.Quantity { return a.value }

func (a *Auxiliary) clone() *Auxiliary {
	c := *a
	c.unit = a.unit.Clone()
	c.inputs = append([]string(nil), a.inputs...)
	return &c
}

// Parameter is a constant for the duration of a run. Sensitivity sweeps
// swap parameters between runs, never during one.
type Parameter struct {
	name        string
	value       units.Quantity
	description string
}

func NewParameter(name string, value float64, unit units.Dimension) *Parameter {
	return &Parameter{name: name, value: units.New(value, unit)}
}

func NewParameterDesc(name string, value float64, unit units.Dimension, description string) *Parameter {
	p := NewParameter(name, value, unit)
	p.description = description
	return p
}

func (p *Parameter) Name() string          { return p.name }
func (p *Parameter) Value() units.Quantity { return p.value }
func (p *Parameter) Description() string   { return p.description }

func (p *Parameter) clone() *Parameter {
	c := *p
	return &c
}
