// Package storage persists simulation runs to disk. A run becomes a
// directory holding metadata.json and results.csv, with one named
// column per stock, flow and auxiliary and the column's unit recorded
// in the header.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/sysdyn/internal/behavior"
	"github.com/san-kum/sysdyn/internal/sim"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// LoopRecord is the serializable form of a classified feedback loop.
type LoopRecord struct {
	Polarity string   `json:"polarity"`
	Nodes    []string `json:"nodes"`
	Note     string   `json:"note,omitempty"`
}

type RunMetadata struct {
	ID        string                   `json:"id"`
	Model     string                   `json:"model"`
	Timestamp time.Time                `json:"timestamp"`
	Dt        float64                  `json:"dt"`
	TimeUnit  string                   `json:"time_unit"`
	Steps     int                      `json:"steps"`
	Loops     []LoopRecord             `json:"loops,omitempty"`
	Behavior  map[string]behavior.Mode `json:"behavior,omitempty"`

	// Periods records the dominant oscillation period per oscillating
	// column, in the run's time unit.
	Periods map[string]float64 `json:"periods,omitempty"`
}

// Save writes one finished simulation into a fresh run directory and
// returns its id. Trajectories are classified on the way out so List
// can show behavior modes without re-reading every CSV.
func (s *Store) Save(model string, simn *sim.Simulation) (string, error) {
	runID := fmt.Sprintf("%s_%d", model, time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	res := simn.Results()

	meta := RunMetadata{
		ID:        runID,
		Model:     model,
		Timestamp: time.Now(),
		Dt:        simn.Timestep().Magnitude(),
		TimeUnit:  simn.Timestep().Dim().String(),
		Steps:     simn.Steps(),
	}
	for _, l := range simn.Loops() {
		meta.Loops = append(meta.Loops, LoopRecord{
			Polarity: string(l.Polarity),
			Nodes:    append([]string(nil), l.Nodes...),
			Note:     l.Note,
		})
	}
	if res.Len() > 0 {
		meta.Behavior = make(map[string]behavior.Mode, len(res.Columns))
		for _, col := range res.Columns {
			d := behavior.Describe(col, res.Magnitudes(col), meta.Dt, behavior.Options{})
			meta.Behavior[col] = d.Mode
			if d.Period > 0 {
				if meta.Periods == nil {
					meta.Periods = make(map[string]float64)
				}
				meta.Periods[col] = d.Period
			}
		}
	}

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := writeResultsCSV(filepath.Join(runDir, "results.csv"), simn, res); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeResultsCSV(path string, simn *sim.Simulation, res *sim.Results) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{fmt.Sprintf("time (%s)", simn.Timestep().Dim())}
	for _, col := range res.Columns {
		series := res.Column(col)
		unit := "dimensionless"
		if len(series) > 0 {
			unit = series[0].Dim().String()
		}
		header = append(header, fmt.Sprintf("%s (%s)", col, unit))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i, t := range res.TimeMagnitudes() {
		row := make([]string, 0, len(header))
		row = append(row, strconv.FormatFloat(t, 'g', -1, 64))
		for _, col := range res.Columns {
			row = append(row, strconv.FormatFloat(res.Column(col)[i].Magnitude(), 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// List returns the metadata of every readable run, skipping entries
// that are not runs.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// Series is one column read back from a run: the bare name, the unit
// string it was written with, and the magnitudes.
type Series struct {
	Name   string
	Unit   string
	Values []float64
}

// LoadResults reads a run's CSV back into named series. The first
// returned slice is the time index.
func (s *Store) LoadResults(runID string) ([]float64, []Series, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "results.csv"))
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 1 {
		return nil, nil, fmt.Errorf("storage: run %s has an empty results file", runID)
	}

	header := records[0]
	series := make([]Series, len(header)-1)
	for i, h := range header[1:] {
		name, unit := splitHeader(h)
		series[i] = Series{Name: name, Unit: unit}
	}

	times := make([]float64, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) != len(header) {
			continue
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}
		times = append(times, t)
		for i, cell := range record[1:] {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				v = 0
			}
			series[i].Values = append(series[i].Values, v)
		}
	}
	return times, series, nil
}

// splitHeader undoes the "name (unit)" form used by writeResultsCSV.
func splitHeader(h string) (name, unit string) {
	open := strings.LastIndex(h, " (")
	if open < 0 || !strings.HasSuffix(h, ")") {
		return h, ""
	}
	return h[:open], h[open+2 : len(h)-1]
}

// ExportJSON writes a full run, history included, as one JSON document
// for consumption outside the tool.
func ExportJSON(path string, model string, simn *sim.Simulation) error {
	res := simn.Results()
	doc := struct {
		Model    string               `json:"model"`
		Dt       float64              `json:"dt"`
		TimeUnit string               `json:"time_unit"`
		Steps    int                  `json:"steps"`
		Times    []float64            `json:"times"`
		Columns  []string             `json:"columns"`
		Values   map[string][]float64 `json:"values"`
		Loops    []LoopRecord         `json:"loops,omitempty"`
	}{
		Model:    model,
		Dt:       simn.Timestep().Magnitude(),
		TimeUnit: simn.Timestep().Dim().String(),
		Steps:    simn.Steps(),
		Times:    res.TimeMagnitudes(),
		Columns:  res.Columns,
		Values:   make(map[string][]float64, len(res.Columns)),
	}
	for _, col := range res.Columns {
		doc.Values[col] = res.Magnitudes(col)
	}
	for _, l := range simn.Loops() {
		doc.Loops = append(doc.Loops, LoopRecord{
			Polarity: string(l.Polarity),
			Nodes:    append([]string(nil), l.Nodes...),
			Note:     l.Note,
		})
	}
	return writeJSON(path, doc)
}
