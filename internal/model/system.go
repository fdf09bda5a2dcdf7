package model

import (
	"fmt"
	"sort"

	"github.com/san-kum/sysdyn/internal/graph"
	"github.com/san-kum/sysdyn/internal/units"
)

// System owns the entities of one model and their evaluation order.
// Construction performs the whole structural setup: name uniqueness,
// flow-to-stock attachment, and the topological sort of auxiliary
// dependencies. A cyclic model never yields a System.
type System struct {
	stocks map[string]*Stock
	flows  map[string]*Flow
	auxes  map[string]*Auxiliary
	params map[string]*Parameter

	stockNames []string
	flowNames  []string
	auxNames   []string
	paramNames []string

	// evalOrder holds auxiliary names, dependencies first.
	evalOrder []string
}

func NewSystem(stocks []*Stock, flows []*Flow, auxes []*Auxiliary, params []*Parameter) (*System, error) {
	sys := &System{
		stocks: make(map[string]*Stock, len(stocks)),
		flows:  make(map[string]*Flow, len(flows)),
		auxes:  make(map[string]*Auxiliary, len(auxes)),
		params: make(map[string]*Parameter, len(params)),
	}

	for _, s := range stocks {
		if _, dup := sys.stocks[s.name]; dup {
			return nil, fmt.Errorf("%w: stock %q", ErrDuplicateName, s.name)
		}
		sys.stocks[s.name] = s
		sys.stockNames = append(sys.stockNames, s.name)
	}
	for _, f := range flows {
		if _, dup := sys.flows[f.name]; dup {
			return nil, fmt.Errorf("%w: flow %q", ErrDuplicateName, f.name)
		}
		sys.flows[f.name] = f
		sys.flowNames = append(sys.flowNames, f.name)
	}
	for _, a := range auxes {
		if _, dup := sys.auxes[a.name]; dup {
			return nil, fmt.Errorf("%w: auxiliary %q", ErrDuplicateName, a.name)
		}
		sys.auxes[a.name] = a
		sys.auxNames = append(sys.auxNames, a.name)
	}
	for _, p := range params {
		if _, dup := sys.params[p.name]; dup {
			return nil, fmt.Errorf("%w: parameter %q", ErrDuplicateName, p.name)
		}
		sys.params[p.name] = p
		sys.paramNames = append(sys.paramNames, p.name)
	}
	sort.Strings(sys.stockNames)
	sort.Strings(sys.flowNames)
	sort.Strings(sys.auxNames)
	sort.Strings(sys.paramNames)

	if err := sys.attachFlows(); err != nil {
		return nil, err
	}
	order, err := sys.auxiliaryOrder()
	if err != nil {
		return nil, err
	}
	sys.evalOrder = order
	return sys, nil
}

// attachFlows registers every flow with its source and target stocks.
// Registration is owned here, after all entities exist, rather than as a
// constructor side effect on partially built objects.
func (sys *System) attachFlows() error {
	for _, name := range sys.flowNames {
		f := sys.flows[name]
		if f.source != "" {
			st, ok := sys.stocks[f.source]
			if !ok {
				return fmt.Errorf("%w: flow %q source %q", ErrUnknownStock, f.name, f.source)
			}
			st.outflows = append(st.outflows, f.name)
		}
		if f.target != "" {
			st, ok := sys.stocks[f.target]
			if !ok {
				return fmt.Errorf("%w: flow %q target %q", ErrUnknownStock, f.name, f.target)
			}
			st.inflows = append(st.inflows, f.name)
		}
	}
	return nil
}

// auxiliaryOrder topologically sorts the auxiliary-to-auxiliary subgraph.
// Only auxiliary inputs order evaluation; stocks and parameters are fixed
// during a pass and flows may not feed auxiliaries within a step.
func (sys *System) auxiliaryOrder() ([]string, error) {
	g := graph.New()
	for _, name := range sys.auxNames {
		g.AddNode(name)
		for _, in := range sys.auxes[name].inputs {
			if _, isAux := sys.auxes[in]; isAux {
				g.AddEdge(in, name)
			}
		}
	}
	order, err := g.TopoSort()
	if err != nil {
		return nil, &CycleError{Cycles: g.SimpleCycles()}
	}
	return order, nil
}

func (sys *System) StockNames() []string { return append([]string(nil), sys.stockNames...) }
func (sys *System) FlowNames() []string  { return append([]string(nil), sys.flowNames...) }
func (sys *System) AuxNames() []string   { return append([]string(nil), sys.auxNames...) }
func (sys *System) ParamNames() []string { return append([]string(nil), sys.paramNames...) }

// EvalOrder returns the auxiliary evaluation order, dependencies first.
func (sys *System) EvalOrder() []string { return append([]string(nil), sys.evalOrder...) }

func (sys *System) Stock(name string) (*Stock, bool) {
	s, ok := sys.stocks[name]
	return s, ok
}

func (sys *System) Flow(name string) (*Flow, bool) {
	f, ok := sys.flows[name]
	return f, ok
}

func (sys *System) Aux(name string) (*Auxiliary, bool) {
	a, ok := sys.auxes[name]
	return a, ok
}

func (sys *System) Param(name string) (*Parameter, bool) {
	p, ok := sys.params[name]
	return p, ok
}

// Value resolves any entity's current value by name: stock level,
// auxiliary value, parameter value, or flow rate.
func (sys *System) Value(name string) (units.Quantity, bool) {
	if s, ok := sys.stocks[name]; ok {
		return s.value, true
	}
	if a, ok := sys.auxes[name]; ok {
		return a.value, true
	}
	if p, ok := sys.params[name]; ok {
		return p.value, true
	}
	if f, ok := sys.flows[name]; ok {
		return f.rate, true
	}
	return units.Quantity{}, false
}

// SetValue overwrites an entity's current value by name. The structural
// analyzer uses this on cloned systems to inject perturbations; live
// simulation state is only ever mutated by the stepper.
func (sys *System) SetValue(name string, q units.Quantity) bool {
	if s, ok := sys.stocks[name]; ok {
		s.value = q
		return true
	}
	if a, ok := sys.auxes[name]; ok {
		a.value = q
		return true
	}
	if p, ok := sys.params[name]; ok {
		p.value = q
		return true
	}
	if f, ok := sys.flows[name]; ok {
		f.rate = q
		return true
	}
	return false
}

// Clone deep-copies the system. Calculation functions are shared (they
// are pure); every value, dimension and membership list is copied, so a
// clone can be perturbed and re-evaluated without touching the original.
func (sys *System) Clone() *System {
	c := &System{
		stocks:     make(map[string]*Stock, len(sys.stocks)),
		flows:      make(map[string]*Flow, len(sys.flows)),
		auxes:      make(map[string]*Auxiliary, len(sys.auxes)),
		params:     make(map[string]*Parameter, len(sys.params)),
		stockNames: append([]string(nil), sys.stockNames...),
		flowNames:  append([]string(nil), sys.flowNames...),
		auxNames:   append([]string(nil), sys.auxNames...),
		paramNames: append([]string(nil), sys.paramNames...),
		evalOrder:  append([]string(nil), sys.evalOrder...),
	}
	for n, s := range sys.stocks {
		c.stocks[n] = s.clone()
	}
	for n, f := range sys.flows {
		c.flows[n] = f.clone()
	}
	for n, a := range sys.auxes {
		c.auxes[n] = a.clone()
	}
	for n, p := range sys.params {
		c.params[n] = p.clone()
	}
	return c
}
