package storage

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/sysdyn/internal/behavior"
	"github.com/san-kum/sysdyn/internal/model"
	"github.com/san-kum/sysdyn/internal/models"
	"github.com/san-kum/sysdyn/internal/sim"
	"github.com/san-kum/sysdyn/internal/units"
)

func runSIR(t *testing.T) *sim.Simulation {
	t.Helper()
	m, err := models.SIR()
	if err != nil {
		t.Fatal(err)
	}
	s, err := sim.New(m.System, sim.Config{Timestep: m.Timestep})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Run(units.Raw(5)); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	simn := runSIR(t)
	runID, err := st.Save("sir", simn)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Model != "sir" {
		t.Errorf("expected model sir, got %q", meta.Model)
	}
	if meta.Steps != 50 {
		t.Errorf("expected 50 steps, got %d", meta.Steps)
	}
	if meta.TimeUnit != "day" {
		t.Errorf("expected time unit day, got %q", meta.TimeUnit)
	}
	if len(meta.Loops) != 3 {
		t.Errorf("expected 3 loops in metadata, got %d", len(meta.Loops))
	}
	if len(meta.Behavior) == 0 {
		t.Error("expected behavior labels in metadata")
	}
	if len(meta.Periods) != 0 {
		t.Errorf("expected no oscillation periods for an epidemic run, got %v", meta.Periods)
	}
}

// runSpring builds an undamped spring: displacement and velocity feed
// each other, giving a clean cycle with period 2*pi/sqrt(stiffness).
// The numbers put exactly eight cycles into the 1024 recorded steps so
// the spectral peak lands on a single bin.
func runSpring(t *testing.T) *sim.Simulation {
	t.Helper()
	reg := units.NewRegistry()
	meter := reg.Define("m")
	day := reg.Define("day")
	velDim := meter.Div(day)
	accelDim := velDim.Div(day)

	displacement := model.NewStock("displacement", 1, meter)
	velocity := model.NewStock("velocity", 0, velDim)
	omega := 2 * math.Pi / 12.8
	stiffness := model.NewParameter("stiffness", omega*omega, units.Dimension{"day": -2})

	motion := model.NewFlow(model.FlowSpec{
		Name:   "motion",
		Target: "displacement",
		Unit:   velDim,
		Inputs: []string{"velocity"},
		Rate: func(s *model.State) units.Quantity {
			return s.Stock("velocity")
		},
	})
	restoring := model.NewFlow(model.FlowSpec{
		Name:   "restoring force",
		Target: "velocity",
		Unit:   accelDim,
		Inputs: []string{"displacement", "stiffness"},
		Rate: func(s *model.State) units.Quantity {
			return s.Stock("displacement").Mul(s.Param("stiffness")).Scale(-1)
		},
	})

	sys, err := model.NewSystem(
		[]*model.Stock{displacement, velocity},
		[]*model.Flow{motion, restoring},
		nil,
		[]*model.Parameter{stiffness},
	)
	if err != nil {
		t.Fatal(err)
	}
	s, err := sim.New(sys, sim.Config{Timestep: units.New(0.1, day), SkipAnalysis: true})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Run(units.Raw(102.4)); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestSaveRecordsOscillationPeriod(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	runID, err := st.Save("spring", runSpring(t))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if meta.Behavior["displacement"] != behavior.Oscillation {
		t.Fatalf("expected oscillation for displacement, got %q", meta.Behavior["displacement"])
	}
	period, ok := meta.Periods["displacement"]
	if !ok {
		t.Fatal("expected a dominant period for displacement")
	}
	if math.Abs(period-12.8) > 0.5 {
		t.Errorf("expected period near 12.8 days, got %v", period)
	}
}

func TestLoadResultsRoundTrip(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	simn := runSIR(t)
	runID, err := st.Save("sir", simn)
	if err != nil {
		t.Fatal(err)
	}

	times, series, err := st.LoadResults(runID)
	if err != nil {
		t.Fatalf("load results failed: %v", err)
	}
	if len(times) != 50 {
		t.Errorf("expected 50 rows, got %d", len(times))
	}

	want := simn.Results()
	if len(series) != len(want.Columns) {
		t.Fatalf("expected %d columns, got %d", len(want.Columns), len(series))
	}
	for i, col := range want.Columns {
		if series[i].Name != col {
			t.Errorf("column %d: expected %q, got %q", i, col, series[i].Name)
		}
		if len(series[i].Values) != 50 {
			t.Errorf("column %q: expected 50 values, got %d", col, len(series[i].Values))
		}
	}

	var susceptible Series
	for _, sr := range series {
		if sr.Name == "Susceptible" {
			susceptible = sr
		}
	}
	if susceptible.Unit != "person" {
		t.Errorf("expected person unit, got %q", susceptible.Unit)
	}
	got := susceptible.Values[len(susceptible.Values)-1]
	expected := want.Magnitudes("Susceptible")[49]
	if got != expected {
		t.Errorf("expected %v, got %v", expected, got)
	}
}

func TestListSkipsForeignEntries(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}

	simn := runSIR(t)
	if _, err := st.Save("sir", simn); err != nil {
		t.Fatal(err)
	}
	// Clutter that List must ignore.
	if err := os.MkdirAll(filepath.Join(dir, "not-a-run"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "stray.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Errorf("expected 1 run, got %d", len(runs))
	}
}

func TestListMissingBaseDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "never-created"))
	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestExportJSON(t *testing.T) {
	simn := runSIR(t)
	path := filepath.Join(t.TempDir(), "run.json")
	if err := ExportJSON(path, "sir", simn); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Error("expected non-empty export")
	}
}

func TestSplitHeader(t *testing.T) {
	name, unit := splitHeader("Susceptible (person)")
	if name != "Susceptible" || unit != "person" {
		t.Errorf("got %q %q", name, unit)
	}
	name, unit = splitHeader("force of infection (1/day)")
	if name != "force of infection" || unit != "1/day" {
		t.Errorf("got %q %q", name, unit)
	}
	name, unit = splitHeader("bare")
	if name != "bare" || unit != "" {
		t.Errorf("got %q %q", name, unit)
	}
}
