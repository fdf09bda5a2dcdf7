// Package viz renders simulation output for the terminal: ascii
// trajectory charts and styled reports of the feedback structure.
package viz

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/sysdyn/internal/sim"
)

// ChartOptions sizes trajectory plots. Zero values pick the defaults.
type ChartOptions struct {
	Width  int
	Height int
}

func (o ChartOptions) withDefaults() ChartOptions {
	if o.Width <= 0 {
		o.Width = 80
	}
	if o.Height <= 0 {
		o.Height = 10
	}
	return o
}

// PlotColumn renders one named series from a results table. Unknown
// names render as an apologetic one-liner rather than an error, so a
// report can keep going.
func PlotColumn(res *sim.Results, name string, opts ChartOptions) string {
	o := opts.withDefaults()
	series := res.Column(name)
	if len(series) == 0 {
		return Subtle.Render(fmt.Sprintf("no data for %q", name))
	}

	caption := fmt.Sprintf("%s (%s)", name, series[0].Dim())
	return asciigraph.Plot(res.Magnitudes(name),
		asciigraph.Height(o.Height),
		asciigraph.Width(o.Width),
		asciigraph.Caption(caption),
	)
}

// PlotColumns renders several series stacked vertically.
func PlotColumns(res *sim.Results, names []string, opts ChartOptions) string {
	if len(names) == 0 {
		names = res.Columns
	}
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, PlotColumn(res, name, opts))
	}
	return strings.Join(parts, "\n\n")
}

// PlotSeries renders raw magnitudes, for data read back from storage.
func PlotSeries(values []float64, caption string, opts ChartOptions) string {
	o := opts.withDefaults()
	if len(values) == 0 {
		return Subtle.Render(fmt.Sprintf("no data for %q", caption))
	}
	return asciigraph.Plot(values,
		asciigraph.Height(o.Height),
		asciigraph.Width(o.Width),
		asciigraph.Caption(caption),
	)
}
