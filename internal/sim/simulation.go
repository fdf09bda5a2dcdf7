// Package sim orchestrates stock-and-flow simulation runs: construction
// validates the model and captures its feedback structure, Step advances
// the clock by one synchronous Euler update, and Run drives a bounded
// number of steps while recording history.
package sim

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/sysdyn/internal/analysis"
	"github.com/san-kum/sysdyn/internal/model"
	"github.com/san-kum/sysdyn/internal/units"
)

// Config carries run-independent settings for a Simulation.
type Config struct {
	// Timestep is the integration step; its dimension defines the
	// model's time dimension.
	Timestep units.Quantity

	// Analysis tunes the structural analyzer.
	Analysis analysis.Options

	// SkipAnalysis disables loop detection entirely. Simulation
	// correctness never depends on it.
	SkipAnalysis bool
}

// Simulation owns one model instance, its clock and its history. It is
// not safe for concurrent use; Step mutates the live system state and
// nothing else does.
type Simulation struct {
	sys       *model.System
	timestep  units.Quantity
	time      units.Quantity
	history   []Snapshot
	structure *analysis.Result
	steps     int
}

// New validates the model and returns a runnable Simulation. Validation
// is deliberately front-loaded: unit declarations are checked against
// stock-per-time, and a full evaluation pass runs at t=0, so a broken
// calculation function fails here and not mid-run. Structural analysis
// happens once, against the initial condition.
func New(sys *model.System, cfg Config) (*Simulation, error) {
	if cfg.Timestep.Magnitude() <= 0 {
		return nil, fmt.Errorf("sim: timestep must be positive, got %s", cfg.Timestep)
	}
	if cfg.Timestep.Dim().IsDimensionless() {
		return nil, fmt.Errorf("sim: timestep must carry a time dimension")
	}

	s := &Simulation{
		sys:      sys,
		timestep: cfg.Timestep,
		time:     units.New(0, cfg.Timestep.Dim()),
	}

	if err := s.checkUnits(); err != nil {
		return nil, err
	}
	// First evaluation: surfaces unit mismatches and missing variables
	// in user formulas immediately.
	if err := sys.EvalPass(s.time, ""); err != nil {
		return nil, err
	}

	if cfg.SkipAnalysis {
		s.structure = &analysis.Result{Skipped: true, Links: map[analysis.Edge]analysis.LinkSign{}}
	} else {
		s.structure = analysis.Analyze(sys, s.time, cfg.Analysis)
	}
	return s, nil
}

// checkUnits verifies every flow's declared unit against the stocks it
// moves: a flow attached to a stock must be stock-per-time.
func (s *Simulation) checkUnits() error {
	timeDim := s.timestep.Dim()
	for _, name := range s.sys.FlowNames() {
		f, _ := s.sys.Flow(name)
		for _, stockName := range []string{f.Source(), f.Target()} {
			if stockName == "" {
				continue
			}
			st, ok := s.sys.Stock(stockName)
			if !ok {
				continue
			}
			want := st.Unit().Div(timeDim)
			if !f.Unit().Equal(want) {
				return &model.UnitError{
					Entity: name,
					Err: fmt.Errorf("flow unit %s incompatible with stock %q per %s",
						f.Unit(), stockName, timeDim),
				}
			}
		}
	}
	return nil
}

// Step performs one evaluation and integration pass: auxiliaries in
// dependency order, then flows, then the synchronous stock update, then
// a history snapshot, then the clock advance.
func (s *Simulation) Step() error {
	state := s.sys.StateAt(s.time)
	if err := s.sys.EvalAuxiliaries(state, ""); err != nil {
		return err
	}
	if err := s.sys.EvalFlows(state, ""); err != nil {
		return err
	}
	if err := s.sys.UpdateStocks(s.timestep); err != nil {
		return err
	}
	s.history = append(s.history, s.snapshot())

	t, err := s.time.Add(s.timestep)
	if err != nil {
		return err
	}
	s.time = t
	s.steps++
	return nil
}

// Run advances the simulation by floor(duration/timestep) steps. A raw
// duration adopts the timestep's dimension; a tagged one must match it.
func (s *Simulation) Run(duration units.Quantity) error {
	d, err := units.Coerce(duration, s.timestep.Dim())
	if err != nil {
		return &model.UnitError{Entity: "duration", Err: err}
	}
	// The nudge keeps 30/0.1 from flooring to 299.
	steps := int(math.Floor(d.Magnitude()/s.timestep.Magnitude() + 1e-9))
	logrus.Debugf("sim: running %d steps of %s", steps, s.timestep)
	for i := 0; i < steps; i++ {
		if err := s.Step(); err != nil {
			return fmt.Errorf("step %d: %w", s.steps+1, err)
		}
	}
	return nil
}

func (s *Simulation) snapshot() Snapshot {
	snap := Snapshot{
		Time:   s.time,
		Stocks: make(map[string]units.Quantity, len(s.sys.StockNames())),
		Flows:  make(map[string]units.Quantity, len(s.sys.FlowNames())),
		Auxes:  make(map[string]units.Quantity, len(s.sys.AuxNames())),
	}
	for _, n := range s.sys.StockNames() {
		st, _ := s.sys.Stock(n)
		snap.Stocks[n] = st.Value()
	}
	for _, n := range s.sys.FlowNames() {
		f, _ := s.sys.Flow(n)
		snap.Flows[n] = f.Rate()
	}
	for _, n := range s.sys.AuxNames() {
		a, _ := s.sys.Aux(n)
		snap.Auxes[n] = a.Value()
	}
	return snap
}

// System exposes the underlying model, mainly for observers and tests.
// Mutating it outside Step voids the history's meaning.
func (s *Simulation) System() *model.System { return s.sys }

func (s *Simulation) Time() units.Quantity     { return s.time }
func (s *Simulation) Timestep() units.Quantity { return s.timestep }

// Stepped reports whether the simulation has left its initial state.
func (s *Simulation) Stepped() bool { return s.steps > 0 }
func (s *Simulation) Steps() int    { return s.steps }

// Loops returns the classified feedback loops found at the initial
// condition.
func (s *Simulation) Loops() []analysis.Loop { return s.structure.Loops }

// LinkPolarities returns the raw estimated sign of every influence edge.
func (s *Simulation) LinkPolarities() map[analysis.Edge]analysis.LinkSign {
	return s.structure.Links
}

// Structure returns the full structural-analysis result.
func (s *Simulation) Structure() *analysis.Result { return s.structure }
