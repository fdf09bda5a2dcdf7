// Package tui provides a live terminal view of a running simulation:
// trajectory charts that grow as the stepper advances, current values
// with their units, and the model's feedback loops.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/sysdyn/internal/sim"
	"github.com/san-kum/sysdyn/internal/viz"
)

// Builder rebuilds the simulation from scratch, used by the reset key.
type Builder func() (*sim.Simulation, error)

type TickMsg time.Time

const stepsPerTick = 2

// Model is the bubbletea model for a live run.
type Model struct {
	name    string
	build   Builder
	simn    *sim.Simulation
	columns []string
	focus   int
	running bool
	err     error
	width   int
	height  int
}

func NewModel(name string, build Builder) (Model, error) {
	simn, err := build()
	if err != nil {
		return Model{}, err
	}
	return Model{
		name:    name,
		build:   build,
		simn:    simn,
		columns: simn.Results().Columns,
		running: true,
		width:   80,
		height:  24,
	}, nil
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "tab", "right", "l":
			if len(m.columns) > 0 {
				m.focus = (m.focus + 1) % len(m.columns)
			}
		case "left", "h":
			if len(m.columns) > 0 {
				m.focus = (m.focus + len(m.columns) - 1) % len(m.columns)
			}
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case TickMsg:
		if m.running && m.err == nil {
			for i := 0; i < stepsPerTick; i++ {
				if err := m.simn.Step(); err != nil {
					m.err = err
					break
				}
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) reset() {
	simn, err := m.build()
	if err != nil {
		m.err = err
		return
	}
	m.simn = simn
	m.err = nil
	m.running = true
}

func (m Model) View() string {
	var b strings.Builder

	status := viz.Subtle.Render("paused")
	if m.running {
		status = viz.MetricValue.Render("running")
	}
	fmt.Fprintf(&b, "%s  %s  %s\n\n",
		viz.Title.Render(m.name),
		viz.MetricLabel.Render(fmt.Sprintf("t=%s", m.simn.Time())),
		status)

	if len(m.columns) > 0 {
		col := m.columns[m.focus]
		chartW := m.width - 12
		if chartW < 20 {
			chartW = 20
		}
		chartH := m.height - 14
		if chartH < 4 {
			chartH = 4
		}
		b.WriteString(viz.PlotColumn(m.simn.Results(), col, viz.ChartOptions{
			Width:  chartW,
			Height: chartH,
		}))
		b.WriteString("\n\n")
	}

	sepW := m.width - 4
	if sepW < 20 {
		sepW = 20
	}
	b.WriteString("  " + viz.Separator(sepW) + "\n")

	var vals []string
	for _, col := range m.columns {
		if v, ok := m.simn.System().Value(col); ok {
			label := col
			if col == m.columns[m.focus] {
				label = viz.MetricValue.Render(col)
			}
			vals = append(vals, fmt.Sprintf("%s=%.4g", label, v.Magnitude()))
		}
	}
	b.WriteString("  " + strings.Join(vals, "  ") + "\n")

	if m.err != nil {
		fmt.Fprintf(&b, "\n  %s\n", viz.BadgeAmbiguous.Render("error: "+m.err.Error()))
	}

	b.WriteString("\n" + viz.KeyHint.Render("  space pause  r reset  tab/←/→ focus  q quit") + "\n")
	return b.String()
}

// Run starts the live view and blocks until the user quits.
func Run(name string, build Builder) error {
	m, err := NewModel(name, build)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
