package model

import (
	"fmt"

	"github.com/san-kum/sysdyn/internal/units"
)

// StateAt builds the read-only view for calculation functions at the
// given simulated time.
func (sys *System) StateAt(t units.Quantity) *State {
	return &State{sys: sys, time: t}
}

// EvalAuxiliaries runs every auxiliary's calculation function in
// dependency order, coercing and unit-checking each result. skip names an
// entity whose value was set manually and must not be recomputed; pass ""
// during normal stepping.
func (sys *System) EvalAuxiliaries(state *State, skip string) error {
	for _, name := range sys.evalOrder {
		if name == skip {
			continue
		}
		a := sys.auxes[name]
		raw := a.fn(state)
		if missing := state.takeMissing(); len(missing) > 0 {
			return &MissingError{Entity: name, Names: missing}
		}
		val, err := units.Coerce(raw, a.unit)
		if err != nil {
			return &UnitError{Entity: name, Err: err}
		}
		a.value = val
	}
	return nil
}

// EvalFlows recomputes every flow rate. Flows are independent of each
// other within a step, so iteration order is only fixed for determinism.
func (sys *System) EvalFlows(state *State, skip string) error {
	for _, name := range sys.flowNames {
		if name == skip {
			continue
		}
		f := sys.flows[name]
		raw := f.fn(state)
		if missing := state.takeMissing(); len(missing) > 0 {
			return &MissingError{Entity: name, Names: missing}
		}
		rate, err := units.Coerce(raw, f.unit)
		if err != nil {
			return &UnitError{Entity: name, Err: err}
		}
		f.rate = rate
	}
	return nil
}

// UpdateStocks applies one synchronous Euler update: for every stock,
// value += (sum of inflow rates - sum of outflow rates) * dt. All rates
// were computed before any stock moves, so no update can observe another
// stock's new level within the same step.
func (sys *System) UpdateStocks(dt units.Quantity) error {
	for _, name := range sys.stockNames {
		st := sys.stocks[name]
		if len(st.inflows) == 0 && len(st.outflows) == 0 {
			continue
		}
		// Zero net flow carries the stock-per-time dimension, so every
		// registered rate is checked against it as it accumulates.
		net := units.New(0, st.unit.Div(dt.Dim()))
		var err error
		for _, fn := range st.inflows {
			net, err = net.Add(sys.flows[fn].rate)
			if err != nil {
				return &UnitError{Entity: name, Err: fmt.Errorf("inflow %q: %w", fn, err)}
			}
		}
		for _, fn := range st.outflows {
			net, err = net.Sub(sys.flows[fn].rate)
			if err != nil {
				return &UnitError{Entity: name, Err: fmt.Errorf("outflow %q: %w", fn, err)}
			}
		}
		next, err := st.value.Add(net.Mul(dt))
		if err != nil {
			return &UnitError{Entity: name, Err: err}
		}
		st.value = next
	}
	return nil
}

// EvalPass recomputes auxiliaries then flows against a fresh state view,
// skipping the named entity. This is one full propagation of current
// stock and parameter values through the computed layer.
func (sys *System) EvalPass(t units.Quantity, skip string) error {
	state := sys.StateAt(t)
	if err := sys.EvalAuxiliaries(state, skip); err != nil {
		return err
	}
	return sys.EvalFlows(state, skip)
}
