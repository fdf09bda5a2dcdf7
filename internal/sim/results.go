package sim

import "github.com/san-kum/sysdyn/internal/units"

// Snapshot is one recorded step: the simulated time and every entity's
// value at that time. Maps are never shared with live state.
type Snapshot struct {
	Time   units.Quantity
	Stocks map[string]units.Quantity
	Flows  map[string]units.Quantity
	Auxes  map[string]units.Quantity
}

// History returns the recorded snapshots, oldest first. The returned
// slice shares the snapshots themselves, which are immutable.
func (s *Simulation) History() []Snapshot {
	return append([]Snapshot(nil), s.history...)
}

// Results is the run history pivoted into a table keyed by time, one
// column per stock, flow and auxiliary.
type Results struct {
	Times   []units.Quantity
	Columns []string
	Values  map[string][]units.Quantity
}

// Results builds the table from the current history. Column order is
// stocks, then flows, then auxiliaries, each sorted by name.
func (s *Simulation) Results() *Results {
	cols := append(s.sys.StockNames(), s.sys.FlowNames()...)
	cols = append(cols, s.sys.AuxNames()...)

	res := &Results{
		Times:   make([]units.Quantity, 0, len(s.history)),
		Columns: cols,
		Values:  make(map[string][]units.Quantity, len(cols)),
	}
	for _, snap := range s.history {
		res.Times = append(res.Times, snap.Time)
		for _, n := range s.sys.StockNames() {
			res.Values[n] = append(res.Values[n], snap.Stocks[n])
		}
		for _, n := range s.sys.FlowNames() {
			res.Values[n] = append(res.Values[n], snap.Flows[n])
		}
		for _, n := range s.sys.AuxNames() {
			res.Values[n] = append(res.Values[n], snap.Auxes[n])
		}
	}
	return res
}

// Column returns one named series, or nil if the entity does not exist.
func (r *Results) Column(name string) []units.Quantity {
	return r.Values[name]
}

// Magnitudes strips units from one column, for plotting and export.
func (r *Results) Magnitudes(name string) []float64 {
	col := r.Values[name]
	out := make([]float64, len(col))
	for i, q := range col {
		out[i] = q.Magnitude()
	}
	return out
}

// TimeMagnitudes strips units from the time index.
func (r *Results) TimeMagnitudes() []float64 {
	out := make([]float64, len(r.Times))
	for i, q := range r.Times {
		out[i] = q.Magnitude()
	}
	return out
}

func (r *Results) Len() int { return len(r.Times) }
