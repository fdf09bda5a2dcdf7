package model

import "github.com/san-kum/sysdyn/internal/units"

// State is the read-only view handed to user calculation functions. All
// lookups are by name; a lookup that misses returns a dimensionless zero
// and is recorded, so terse user functions stay possible while the engine
// still surfaces MissingVariable after the call.
type State struct {
	sys     *System
	time    units.Quantity
	missing []string
}

func (s *State) Time() units.Quantity { return s.time }

// Stock returns the current level of the named stock.
func (s *State) Stock(name string) units.Quantity {
	if st, ok := s.sys.stocks[name]; ok {
		return st.value
	}
	return s.miss(name)
}

// Aux returns the named auxiliary's value as of the current evaluation
// pass. Evaluation order guarantees declared inputs are fresh.
func (s *State) Aux(name string) units.Quantity {
	if a, ok := s.sys.auxes[name]; ok {
		return a.value
	}
	return s.miss(name)
}

// Flow returns the named flow's most recently computed rate. Flows must
// not read each other within a step; this accessor exists for the
// analyzer and for observers.
func (s *State) Flow(name string) units.Quantity {
	if f, ok := s.sys.flows[name]; ok {
		return f.rate
	}
	return s.miss(name)
}

// Param returns the named parameter's value.
func (s *State) Param(name string) units.Quantity {
	if p, ok := s.sys.params[name]; ok {
		return p.value
	}
	return s.miss(name)
}

// Lookup resolves a name across every category, in the same precedence
// the analyzer uses: stocks, auxiliaries, parameters, flows.
func (s *State) Lookup(name string) (units.Quantity, bool) {
	if st, ok := s.sys.stocks[name]; ok {
		return st.value, true
	}
	if a, ok := s.sys.auxes[name]; ok {
		return a.value, true
	}
	if p, ok := s.sys.params[name]; ok {
		return p.value, true
	}
	if f, ok := s.sys.flows[name]; ok {
		return f.rate, true
	}
	return units.Quantity{}, false
}

func (s *State) miss(name string) units.Quantity {
	s.missing = append(s.missing, name)
	return units.Dimensionless(0)
}

// takeMissing returns and clears the recorded failed lookups.
func (s *State) takeMissing() []string {
	m := s.missing
	s.missing = nil
	return m
}
