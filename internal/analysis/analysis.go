// Package analysis infers the feedback-loop structure of a model by
// numerical perturbation. It builds the influence graph from declared
// inputs plus the definitional flow-to-stock edges, estimates every
// link's sign by symmetric finite differences on deep copies of the
// initial state, enumerates simple cycles, and classifies each loop.
//
// The classification is a point-in-time property of the initial
// condition, not a guarantee about other operating points. Analysis is
// best-effort: failures degrade to a recorded diagnostic and never
// prevent simulation.
package analysis

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/sysdyn/internal/graph"
	"github.com/san-kum/sysdyn/internal/model"
	"github.com/san-kum/sysdyn/internal/units"
)

// Polarity classifies a feedback loop by the product of its edge signs.
type Polarity string

const (
	Reinforcing Polarity = "R"
	Balancing   Polarity = "B"
	Neutral     Polarity = "N"
	Ambiguous   Polarity = "?"
)

// Edge is a directed influence link between two named entities.
type Edge struct {
	From string
	To   string
}

// LinkSign is the estimated sign of one influence edge. Definitional
// flow-to-stock edges carry their sign by construction; every other edge
// is estimated by perturbation. Known is false when estimation itself
// failed, which taints any loop through the edge as Ambiguous.
type LinkSign struct {
	Sign         int
	Known        bool
	Definitional bool
}

// Loop is one simple cycle of the influence graph with its polarity.
type Loop struct {
	Polarity Polarity
	Nodes    []string
	Note     string
}

func (l Loop) String() string {
	if len(l.Nodes) == 0 {
		return fmt.Sprintf("[%s] %s", l.Polarity, l.Note)
	}
	path := append(append([]string(nil), l.Nodes...), l.Nodes[0])
	return fmt.Sprintf("[%s] %s", l.Polarity, strings.Join(path, " -> "))
}

// Options tunes the perturbation estimator. Epsilon and Threshold are
// absolute: neither scales with the magnitude of the perturbed variable,
// so models operating at extreme magnitudes may need overrides to avoid
// false zeros or false signals. Whether the estimator should scale them
// automatically is an open question of the method.
type Options struct {
	// Epsilon is the size of the symmetric perturbation.
	Epsilon float64
	// Threshold is the minimum output change that counts as influence.
	Threshold float64
	// Workers bounds the perturbation worker pool; <=0 picks a default.
	Workers int
}

const (
	defaultEpsilon   = 1e-6
	defaultThreshold = 1e-12
)

func DefaultOptions() Options {
	return Options{Epsilon: defaultEpsilon, Threshold: defaultThreshold}
}

// Result is the full structural classification of one model.
type Result struct {
	Links   map[Edge]LinkSign
	Loops   []Loop
	Skipped bool
}

// Analyze classifies the feedback structure of sys at time t, which the
// caller takes to be the initial condition. sys itself is never mutated;
// every evaluation happens on clones.
func Analyze(sys *model.System, t units.Quantity, opts Options) *Result {
	if opts.Epsilon <= 0 {
		opts.Epsilon = defaultEpsilon
	}
	if opts.Threshold <= 0 {
		opts.Threshold = defaultThreshold
	}

	base := sys.Clone()
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic in calculation function: %v", r)
			}
		}()
		return base.EvalPass(t, "")
	}()
	if err != nil {
		logrus.Warnf("structural analysis skipped: initial evaluation failed: %v", err)
		return &Result{
			Skipped: true,
			Links:   map[Edge]LinkSign{},
			Loops: []Loop{{
				Polarity: Ambiguous,
				Note:     fmt.Sprintf("analysis skipped: initial state evaluation failed: %v", err),
			}},
		}
	}

	g, links := influenceGraph(base)
	estimateLinkSigns(base, t, links, opts)

	res := &Result{Links: links}
	for _, cycle := range g.SimpleCycles() {
		res.Loops = append(res.Loops, classify(cycle, links))
	}
	return res
}

// influenceGraph wires input -> consumer edges for every flow and
// auxiliary, plus the definitional edges: a flow raises its target stock
// (+1) and drains its source stock (-1).
func influenceGraph(sys *model.System) (*graph.Digraph, map[Edge]LinkSign) {
	g := graph.New()
	links := make(map[Edge]LinkSign)

	addInputs := func(name string, inputs []string) {
		for _, in := range inputs {
			g.AddEdge(in, name)
			links[Edge{From: in, To: name}] = LinkSign{}
		}
	}
	for _, name := range sys.AuxNames() {
		a, _ := sys.Aux(name)
		addInputs(name, a.Inputs())
	}
	for _, name := range sys.FlowNames() {
		f, _ := sys.Flow(name)
		addInputs(name, f.Inputs())
		if tgt := f.Target(); tgt != "" {
			g.AddEdge(name, tgt)
			links[Edge{From: name, To: tgt}] = LinkSign{Sign: 1, Known: true, Definitional: true}
		}
		if src := f.Source(); src != "" {
			g.AddEdge(name, src)
			links[Edge{From: name, To: src}] = LinkSign{Sign: -1, Known: true, Definitional: true}
		}
	}
	return g, links
}

func classify(cycle []string, links map[Edge]LinkSign) Loop {
	product := 1
	ambiguous := false
	for i := range cycle {
		e := Edge{From: cycle[i], To: cycle[(i+1)%len(cycle)]}
		ls, ok := links[e]
		if !ok || !ls.Known {
			ambiguous = true
			break
		}
		product *= ls.Sign
	}
	switch {
	case ambiguous:
		return Loop{Polarity: Ambiguous, Nodes: cycle}
	case product > 0:
		return Loop{Polarity: Reinforcing, Nodes: cycle}
	case product < 0:
		return Loop{Polarity: Balancing, Nodes: cycle}
	default:
		return Loop{Polarity: Neutral, Nodes: cycle}
	}
}
