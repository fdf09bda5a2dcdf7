// Package behavior labels simulated trajectories with the classic
// system-dynamics behavior modes: equilibrium, exponential growth and
// decay, goal seeking, S-shaped growth, oscillation, and overshoot and
// collapse.
package behavior

import (
	"fmt"
	"math"
)

// Mode is a recognized trajectory shape.
type Mode string

const (
	Equilibrium          Mode = "equilibrium"
	ExponentialGrowth    Mode = "exponential growth"
	LinearGrowth         Mode = "linear growth"
	ExponentialDecay     Mode = "exponential decay"
	LinearDecline        Mode = "linear decline"
	GoalSeeking          Mode = "goal seeking"
	SShapedGrowth        Mode = "s-shaped growth"
	Oscillation          Mode = "oscillation"
	OvershootAndCollapse Mode = "overshoot and collapse"
	Unclassified         Mode = "unclassified"
)

// Options tunes the classifier. Zero values select the defaults.
type Options struct {
	// FlatTolerance is the relative range below which a series counts
	// as equilibrium. Default 1e-6.
	FlatTolerance float64

	// Prominence is the fraction of the series range an interior
	// extremum must stand out by to count as a turning point.
	// Default 0.02.
	Prominence float64
}

func (o Options) withDefaults() Options {
	if o.FlatTolerance <= 0 {
		o.FlatTolerance = 1e-6
	}
	if o.Prominence <= 0 {
		o.Prominence = 0.02
	}
	return o
}

// Classify labels one series. It needs at least four samples to commit
// to anything beyond equilibrium.
func Classify(series []float64, opts Options) Mode {
	o := opts.withDefaults()
	if len(series) < 2 {
		return Unclassified
	}

	lo, hi := series[0], series[0]
	for _, v := range series {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	span := hi - lo
	scale := math.Max(math.Max(math.Abs(hi), math.Abs(lo)), 1e-12)
	if span/scale < o.FlatTolerance {
		return Equilibrium
	}
	if len(series) < 4 {
		return Unclassified
	}

	turns := turningPoints(series, o.Prominence*span)
	switch {
	case len(turns) >= 2:
		return Oscillation
	case len(turns) == 1:
		peak := series[turns[0]]
		last := series[len(series)-1]
		if peak > series[0] && peak-last > 0.5*span {
			return OvershootAndCollapse
		}
		return Oscillation
	}

	// Monotone from here on. Compare early and late step sizes to tell
	// accelerating, linear and saturating shapes apart.
	steps := diffs(series)
	early := meanAbs(steps[:len(steps)/3+1])
	late := meanAbs(steps[len(steps)-len(steps)/3-1:])
	rising := series[len(series)-1] > series[0]

	if rising {
		// S-shaped growth is symmetric, so the early/late ratio alone
		// cannot see it; the tell is a step peak in the interior.
		if largestStepInInterior(steps) && maxAbs(steps) > 2*early && maxAbs(steps) > 2*late {
			return SShapedGrowth
		}
		switch {
		case early == 0 || late/early > 1.25:
			return ExponentialGrowth
		case late/early < 0.8:
			return GoalSeeking
		default:
			return LinearGrowth
		}
	}
	switch {
	case late == 0 || (early > 0 && late/early < 0.8):
		return ExponentialDecay
	case early > 0 && late/early > 1.25:
		return Unclassified
	default:
		return LinearDecline
	}
}

// turningPoints returns the indices of interior extrema, confirmed only
// once the series has reversed by at least prominence past them, so
// numerical wiggle never registers as a turn.
func turningPoints(series []float64, prominence float64) []int {
	var turns []int
	dir := 0
	ext := 0
	for i := 1; i < len(series); i++ {
		v := series[i]
		switch dir {
		case 0:
			if v > series[ext]+prominence {
				dir, ext = 1, i
			} else if v < series[ext]-prominence {
				dir, ext = -1, i
			}
		case 1:
			if v > series[ext] {
				ext = i
			} else if v < series[ext]-prominence {
				turns = append(turns, ext)
				dir, ext = -1, i
			}
		case -1:
			if v < series[ext] {
				ext = i
			} else if v > series[ext]+prominence {
				turns = append(turns, ext)
				dir, ext = 1, i
			}
		}
	}
	return turns
}

func diffs(series []float64) []float64 {
	out := make([]float64, len(series)-1)
	for i := range out {
		out[i] = series[i+1] - series[i]
	}
	return out
}

func meanAbs(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += math.Abs(x)
	}
	return sum / float64(len(xs))
}

func maxAbs(xs []float64) float64 {
	var m float64
	for _, x := range xs {
		m = math.Max(m, math.Abs(x))
	}
	return m
}

func largestStepInInterior(steps []float64) bool {
	if len(steps) < 4 {
		return false
	}
	maxAt := 0
	for i, s := range steps {
		if math.Abs(s) > math.Abs(steps[maxAt]) {
			maxAt = i
		}
	}
	q := len(steps) / 4
	return maxAt >= q && maxAt < len(steps)-q
}

// Descriptor attaches a behavior label to a named series, the way loop
// descriptors attach polarity to a cycle. Period is the dominant
// oscillation period in the same unit as the sampling interval, zero
// when the series does not cycle (or no frequency clearly dominates).
type Descriptor struct {
	Name        string
	Mode        Mode
	Period      float64
	Description string
}

// Describe classifies a series and, for oscillating ones, estimates
// the dominant period from the power spectrum.
func Describe(name string, series []float64, dt float64, opts Options) Descriptor {
	d := Descriptor{Name: name, Mode: Classify(series, opts)}
	d.Description = string(d.Mode)
	if d.Mode == Oscillation {
		if p, ok := DominantPeriod(series, dt); ok {
			d.Period = p
			d.Description = fmt.Sprintf("%s, period ~%.3g", d.Mode, p)
		}
	}
	return d
}
