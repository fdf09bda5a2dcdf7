package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/sysdyn/internal/models"
	"github.com/san-kum/sysdyn/internal/sim"
	"github.com/san-kum/sysdyn/internal/units"
)

func sirResults(t *testing.T) *sim.Results {
	t.Helper()
	m, err := models.SIR()
	require.NoError(t, err)
	s, err := sim.New(m.System, sim.Config{Timestep: m.Timestep, SkipAnalysis: true})
	require.NoError(t, err)
	require.NoError(t, s.Run(units.Raw(10)))
	return s.Results()
}

func TestChartSVGContainsEverySeries(t *testing.T) {
	res := sirResults(t)
	svg := ChartSVG(res, nil, 800, 400)

	assert.True(t, strings.HasPrefix(svg, `<?xml version="1.0"`))
	assert.True(t, strings.HasSuffix(svg, "</svg>"))
	for _, col := range res.Columns {
		assert.Contains(t, svg, ">"+col+"</text>")
	}
	assert.Equal(t, len(res.Columns), strings.Count(svg, "<path"))
}

func TestChartSVGSelectedColumns(t *testing.T) {
	res := sirResults(t)
	svg := ChartSVG(res, []string{"Infected"}, 0, 0)
	assert.Contains(t, svg, ">Infected</text>")
	assert.NotContains(t, svg, ">Recovered</text>")
	assert.Equal(t, 1, strings.Count(svg, "<path"))
}

func TestWriteChart(t *testing.T) {
	res := sirResults(t)
	path := filepath.Join(t.TempDir(), "chart.svg")
	require.NoError(t, WriteChart(path, res, []string{"Susceptible", "Infected"}, 640, 320))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "</svg>")
}
