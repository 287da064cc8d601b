package testkit

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"strconv"

	"github.com/xuri/excelize/v2"

	"gowelch/adapters/excel"
)

// GroupSpec describes the normal population one synthetic group is drawn from.
type GroupSpec struct {
	Label string  `json:"label"`
	Mean  float64 `json:"mean"`
	SD    float64 `json:"sd"`
	N     int     `json:"n"`
}

// SampleGeneratorConfig configures the two-group sample generator
type SampleGeneratorConfig struct {
	Groups [2]GroupSpec `json:"groups"`
	Seed   int64        `json:"seed"`
}

// DefaultSampleConfig returns two equal-variance groups one unit apart.
func DefaultSampleConfig() SampleGeneratorConfig {
	return SampleGeneratorConfig{
		Groups: [2]GroupSpec{
			{Label: "control", Mean: 10, SD: 3, N: 30},
			{Label: "treatment", Mean: 11, SD: 3, N: 30},
		},
		Seed: 42,
	}
}

// SampleGenerator draws reproducible normal observations for two groups.
type SampleGenerator struct {
	config SampleGeneratorConfig
	rng    *rand.Rand
}

// NewSampleGenerator creates a generator; equal seeds give equal draws.
func NewSampleGenerator(config SampleGeneratorConfig) *SampleGenerator {
	return &SampleGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate draws one set of observations for both groups.
func (g *SampleGenerator) Generate() [2]excel.GroupSamples {
	var out [2]excel.GroupSamples
	for i, spec := range g.config.Groups {
		values := make([]float64, spec.N)
		for j := range values {
			values[j] = spec.Mean + g.rng.NormFloat64()*spec.SD
		}
		out[i] = excel.GroupSamples{Label: spec.Label, Values: values}
	}
	return out
}

// long layout rows: header then one (group, value) row per observation
func longRows(groups [2]excel.GroupSamples) [][]string {
	rows := [][]string{{"group", "value"}}
	for _, g := range groups {
		for _, v := range g.Values {
			rows = append(rows, []string{g.Label, strconv.FormatFloat(v, 'g', -1, 64)})
		}
	}
	return rows
}

// WriteCSV writes groups in long layout with "group" and "value" columns.
func WriteCSV(w io.Writer, groups [2]excel.GroupSamples) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(longRows(groups)); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

// WriteWorkbook saves groups in long layout to an xlsx file on the given sheet.
func WriteWorkbook(path, sheet string, groups [2]excel.GroupSamples) error {
	f := excelize.NewFile()
	defer f.Close()

	if sheet != "" && sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			return err
		}
	} else {
		sheet = "Sheet1"
	}

	for i, row := range longRows(groups) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}
	return f.SaveAs(path)
}
