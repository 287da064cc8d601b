package summary

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gowelch/domain/core"
)

func TestSummarize(t *testing.T) {
	g, err := Summarize("control", []float64{2, 4, 4, 4, 5, 5, 7, 9})
	require.NoError(t, err)

	assert.Equal(t, "control", g.Label)
	assert.Equal(t, 8, g.SampleSize)
	assert.InDelta(t, 5.0, g.Mean, 1e-12)
	// population SD is 2; the sample SD uses n-1
	assert.InDelta(t, math.Sqrt(32.0/7.0), g.StandardDeviation, 1e-12)
}

func TestSummarize_DoesNotReorderInput(t *testing.T) {
	in := []float64{3, 1, 2}
	_, err := Describe("", in)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 1, 2}, in)
}

func TestSummarize_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		samples []float64
	}{
		{"empty", nil},
		{"single", []float64{1}},
		{"nan", []float64{1, math.NaN()}},
		{"inf", []float64{1, math.Inf(1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Summarize("g", tt.samples)
			assert.ErrorIs(t, err, core.ErrInvalidInput)
		})
	}
}

func TestDescribe(t *testing.T) {
	p, err := Describe("treatment", []float64{9, 1, 5, 3, 7})
	require.NoError(t, err)

	assert.Equal(t, 1.0, p.Min)
	assert.Equal(t, 9.0, p.Max)
	assert.Equal(t, 5.0, p.Median)
	assert.LessOrEqual(t, p.Q25, p.Median)
	assert.GreaterOrEqual(t, p.Q75, p.Median)
	assert.Equal(t, 5, p.Group.SampleSize)
}
