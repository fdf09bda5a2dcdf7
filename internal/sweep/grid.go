// Package sweep runs a model across a grid of parameter values, the
// basic tool for calibration and sensitivity work: build a fresh
// simulation per cell, run it, score the results, keep the best cell.
package sweep

import (
	"context"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/sysdyn/internal/sim"
	"github.com/san-kum/sysdyn/internal/units"
)

// Builder constructs a fresh simulation for one grid cell. It must not
// share mutable state between calls; every cell gets its own model.
type Builder func(params map[string]float64) (*sim.Simulation, error)

// Objective scores a finished run; lower is better.
type Objective func(*sim.Results) float64

type Grid struct {
	paramNames []string
	ranges     [][]float64
}

// New builds a grid over the given parameters; ranges[i] lists the
// values tried for paramNames[i].
func New(params []string, ranges [][]float64) *Grid {
	return &Grid{paramNames: params, ranges: ranges}
}

// Search runs every cell of the grid and returns the best-scoring
// parameter set with its score. Cells that fail to build or run are
// logged and skipped; the error return is reserved for ctx
// cancellation.
func (g *Grid) Search(
	ctx context.Context,
	build Builder,
	duration units.Quantity,
	objective Objective,
) (map[string]float64, float64, error) {
	best := math.Inf(1)
	var bestParams map[string]float64

	err := g.searchRecursive(ctx, 0, make(map[string]float64), build, duration, objective, &best, &bestParams)
	return bestParams, best, err
}

func (g *Grid) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	build Builder,
	duration units.Quantity,
	objective Objective,
	best *float64,
	bestParams *map[string]float64,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		simn, err := build(current)
		if err != nil {
			logrus.Warnf("sweep: cell %v failed to build: %v", current, err)
			return nil
		}
		if err := simn.Run(duration); err != nil {
			logrus.Warnf("sweep: cell %v failed to run: %v", current, err)
			return nil
		}

		val := objective(simn.Results())
		if val < *best {
			*best = val
			*bestParams = make(map[string]float64, len(current))
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return nil
	}

	name := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		next := make(map[string]float64, len(current)+1)
		for k, v := range current {
			next[k] = v
		}
		next[name] = val
		if err := g.searchRecursive(ctx, depth+1, next, build, duration, objective, best, bestParams); err != nil {
			return err
		}
	}
	return nil
}

// Span is a convenience for evenly spaced ranges, inclusive of both
// ends.
func Span(from, to float64, steps int) []float64 {
	if steps < 2 {
		return []float64{from}
	}
	out := make([]float64, steps)
	for i := range out {
		out[i] = from + (to-from)*float64(i)/float64(steps-1)
	}
	return out
}
