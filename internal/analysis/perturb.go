package analysis

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/sysdyn/internal/model"
	"github.com/san-kum/sysdyn/internal/units"
)

// estimateLinkSigns fills in every non-definitional link by symmetric
// perturbation. Each estimation owns a fresh clone of the base system, so
// the edges are independent and run on a bounded worker pool. Workers
// write to disjoint slice slots; no locking is needed.
func estimateLinkSigns(base *model.System, t units.Quantity, links map[Edge]LinkSign, opts Options) {
	todo := make([]Edge, 0, len(links))
	for e, ls := range links {
		if !ls.Definitional {
			todo = append(todo, e)
		}
	}
	sort.Slice(todo, func(i, j int) bool {
		if todo[i].From != todo[j].From {
			return todo[i].From < todo[j].From
		}
		return todo[i].To < todo[j].To
	})

	results := make([]LinkSign, len(todo))
	parallelFor(len(todo), opts.Workers, func(start, end int) {
		for i := start; i < end; i++ {
			results[i] = estimateSign(base, t, todo[i], opts)
		}
	})
	for i, e := range todo {
		links[e] = results[i]
	}
}

// estimateSign perturbs e.From by +/-epsilon on clones of the base state,
// re-propagates, and reads e.To. The perturbed entity itself is excluded
// from recomputation, otherwise its own formula would immediately undo
// the injected change.
func estimateSign(base *model.System, t units.Quantity, e Edge, opts Options) (ls LinkSign) {
	defer func() {
		if r := recover(); r != nil {
			logrus.Warnf("link %s -> %s: perturbation panicked: %v", e.From, e.To, r)
			ls = LinkSign{}
		}
	}()

	orig, ok := base.Value(e.From)
	if !ok {
		// Undeclared name: best-effort analysis records no influence.
		return LinkSign{Sign: 0, Known: true}
	}

	skip := ""
	if _, isAux := base.Aux(e.From); isAux {
		skip = e.From
	} else if _, isFlow := base.Flow(e.From); isFlow {
		skip = e.From
	}

	plus, okPlus := perturbedOutput(base, t, e, units.New(orig.Magnitude()+opts.Epsilon, orig.Dim()), skip)
	minus, okMinus := perturbedOutput(base, t, e, units.New(orig.Magnitude()-opts.Epsilon, orig.Dim()), skip)
	if !okPlus || !okMinus {
		return LinkSign{Sign: 0, Known: true}
	}
	if !plus.SameDim(minus) {
		logrus.Warnf("link %s -> %s: incompatible dimensions after perturbation (%s vs %s)",
			e.From, e.To, plus.Dim(), minus.Dim())
		return LinkSign{Sign: 0, Known: true}
	}

	diff := plus.Magnitude() - minus.Magnitude()
	switch {
	case diff > opts.Threshold:
		return LinkSign{Sign: 1, Known: true}
	case diff < -opts.Threshold:
		return LinkSign{Sign: -1, Known: true}
	default:
		return LinkSign{Sign: 0, Known: true}
	}
}

func perturbedOutput(base *model.System, t units.Quantity, e Edge, v units.Quantity, skip string) (units.Quantity, bool) {
	sys := base.Clone()
	sys.SetValue(e.From, v)
	if err := sys.EvalPass(t, skip); err != nil {
		logrus.Warnf("link %s -> %s: perturbed evaluation failed: %v", e.From, e.To, err)
		return units.Quantity{}, false
	}
	out, ok := sys.Value(e.To)
	if !ok {
		return units.Quantity{}, false
	}
	return out, true
}
