// Package graph implements the small directed-graph algorithms the engine
// needs: topological ordering for auxiliary evaluation and simple-cycle
// enumeration for feedback-loop detection. Nodes are entity names.
package graph

import (
	"errors"
	"sort"
)

// ErrCyclic indicates a topological sort was attempted on a cyclic graph.
var ErrCyclic = errors.New("graph: cycle detected")

// Digraph is a directed graph over string nodes. The zero value is not
// usable; construct with New.
type Digraph struct {
	succ map[string]map[string]struct{}
}

func New() *Digraph {
	return &Digraph{succ: make(map[string]map[string]struct{})}
}

func (g *Digraph) AddNode(n string) {
	if _, ok := g.succ[n]; !ok {
		g.succ[n] = make(map[string]struct{})
	}
}

// AddEdge adds u -> v, creating either node as needed.
func (g *Digraph) AddEdge(u, v string) {
	g.AddNode(u)
	g.AddNode(v)
	g.succ[u][v] = struct{}{}
}

func (g *Digraph) Len() int { return len(g.succ) }

// Nodes returns all nodes in sorted order.
func (g *Digraph) Nodes() []string {
	nodes := make([]string, 0, len(g.succ))
	for n := range g.succ {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)
	return nodes
}

// Successors returns the targets of n's outgoing edges in sorted order.
func (g *Digraph) Successors(n string) []string {
	out := make([]string, 0, len(g.succ[n]))
	for v := range g.succ[n] {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// TopoSort returns a topological order via Kahn's algorithm, breaking
// ties lexicographically so the order is deterministic. Returns ErrCyclic
// if the graph has a cycle; callers enumerate the cycles separately.
func (g *Digraph) TopoSort() ([]string, error) {
	indeg := make(map[string]int, len(g.succ))
	for n := range g.succ {
		indeg[n] = 0
	}
	for _, next := range g.succ {
		for v := range next {
			indeg[v]++
		}
	}

	var ready []string
	for n, d := range indeg {
		if d == 0 {
			ready = append(ready, n)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(g.succ))
	for len(ready) > 0 {
		n := ready[0]
		ready = ready[1:]
		order = append(order, n)
		var unlocked []string
		for _, v := range g.Successors(n) {
			indeg[v]--
			if indeg[v] == 0 {
				unlocked = append(unlocked, v)
			}
		}
		if len(unlocked) > 0 {
			ready = append(ready, unlocked...)
			sort.Strings(ready)
		}
	}

	if len(order) != len(g.succ) {
		return nil, ErrCyclic
	}
	return order, nil
}
