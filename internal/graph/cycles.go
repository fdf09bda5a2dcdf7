package graph

import "sort"

// SimpleCycles enumerates every elementary cycle in the graph using
// Johnson's algorithm. Each cycle is reported once, starting from its
// lexicographically smallest node, and the result is sorted for
// deterministic output.
func (g *Digraph) SimpleCycles() [][]string {
	nodes := g.Nodes()
	idx := make(map[string]int, len(nodes))
	for i, n := range nodes {
		idx[n] = i
	}
	adj := make([][]int, len(nodes))
	for i, n := range nodes {
		for _, v := range g.Successors(n) {
			adj[i] = append(adj[i], idx[v])
		}
		sort.Ints(adj[i])
	}

	n := len(nodes)
	blocked := make([]bool, n)
	bSets := make([]map[int]struct{}, n)
	var stack []int
	var cycles [][]string
	var start int

	var unblock func(v int)
	unblock = func(v int) {
		blocked[v] = false
		for w := range bSets[v] {
			delete(bSets[v], w)
			if blocked[w] {
				unblock(w)
			}
		}
	}

	// circuit explores the subgraph induced by nodes >= start, which
	// guarantees each cycle is found exactly once, rooted at its
	// smallest node.
	var circuit func(v int) bool
	circuit = func(v int) bool {
		found := false
		stack = append(stack, v)
		blocked[v] = true
		for _, w := range adj[v] {
			if w < start {
				continue
			}
			if w == start {
				cycle := make([]string, len(stack))
				for i, u := range stack {
					cycle[i] = nodes[u]
				}
				cycles = append(cycles, cycle)
				found = true
			} else if !blocked[w] {
				if circuit(w) {
					found = true
				}
			}
		}
		if found {
			unblock(v)
		} else {
			for _, w := range adj[v] {
				if w < start {
					continue
				}
				if bSets[w] == nil {
					bSets[w] = make(map[int]struct{})
				}
				bSets[w][v] = struct{}{}
			}
		}
		stack = stack[:len(stack)-1]
		return found
	}

	for start = 0; start < n; start++ {
		for i := range blocked {
			blocked[i] = false
			bSets[i] = nil
		}
		stack = stack[:0]
		circuit(start)
	}

	sort.Slice(cycles, func(i, j int) bool {
		a, b := cycles[i], cycles[j]
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		for k := range a {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return false
	})
	return cycles
}
