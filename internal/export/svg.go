// Package export renders simulation results as standalone SVG charts,
// one polyline per series with a small legend, for reports and docs.
package export

import (
	"fmt"
	"os"
	"strings"

	"github.com/san-kum/sysdyn/internal/sim"
)

var palette = []string{
	"#00ff88", "#00ccff", "#ff4444", "#ffcc00", "#ff00ff",
	"#88ff00", "#ff8800", "#8888ff",
}

// ChartSVG renders the named columns of a results table as one chart.
// Empty names selects every column. Each series is normalized to its
// own vertical range, so stocks and flows of different magnitudes stay
// readable side by side.
func ChartSVG(res *sim.Results, names []string, width, height int) string {
	if len(names) == 0 {
		names = res.Columns
	}
	if width <= 0 {
		width = 800
	}
	if height <= 0 {
		height = 400
	}

	times := res.TimeMagnitudes()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	legendY := 20
	for i, name := range names {
		series := res.Magnitudes(name)
		color := palette[i%len(palette)]
		sb.WriteString(seriesPath(times, series, width, height, color))
		sb.WriteString(fmt.Sprintf(`<text x="10" y="%d" fill="%s" font-family="monospace" font-size="12">%s</text>
`, legendY, color, name))
		legendY += 16
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func seriesPath(times, values []float64, width, height int, color string) string {
	if len(values) < 2 || len(times) != len(values) {
		return ""
	}

	minX, maxX := times[0], times[len(times)-1]
	minY, maxY := values[0], values[0]
	for _, v := range values {
		if v < minY {
			minY = v
		}
		if v > maxY {
			maxY = v
		}
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.05
	maxY += rangeY * 0.05
	rangeY = maxY - minY

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, color))
	for i := range values {
		x := (times[i] - minX) / rangeX * float64(width)
		y := float64(height) - (values[i]-minY)/rangeY*float64(height)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}
	sb.WriteString("\"/>\n")
	return sb.String()
}

// WriteChart renders and writes a chart in one call.
func WriteChart(path string, res *sim.Results, names []string, width, height int) error {
	return os.WriteFile(path, []byte(ChartSVG(res, names, width, height)), 0644)
}
