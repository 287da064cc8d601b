package stats

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gowelch/domain/core"
)

func TestNormalizeLevels_DedupesAndSorts(t *testing.T) {
	in := []ConfidenceLevel{0.95, 0.5, 0.8, 0.95, 0.5}

	got, err := NormalizeLevels(in)
	require.NoError(t, err)
	assert.Equal(t, []ConfidenceLevel{0.5, 0.8, 0.95}, got)
	assert.Equal(t, ConfidenceLevel(0.95), in[0], "input must not be reordered")
}

func TestNormalizeLevels_RejectsBoundaries(t *testing.T) {
	for _, bad := range []ConfidenceLevel{0, 1, -0.2, 1.5} {
		_, err := NormalizeLevels([]ConfidenceLevel{0.5, bad})
		require.Error(t, err, "level %v", bad)
		assert.ErrorIs(t, err, core.ErrDomain)
	}
}

func TestParseLevels(t *testing.T) {
	got, err := ParseLevels("95%, 0.5,80, 0.5")
	require.NoError(t, err)
	assert.Equal(t, []ConfidenceLevel{0.5, 0.8, 0.95}, got)

	_, err = ParseLevels("0.9,abc")
	assert.Error(t, err)

	_, err = ParseLevels("100")
	assert.ErrorIs(t, err, core.ErrDomain)
}

func TestConfidenceLevelPercent(t *testing.T) {
	assert.Equal(t, "95%", ConfidenceLevel(0.95).Percent())
	assert.Equal(t, "50%", ConfidenceLevel(0.5).Percent())
}

func TestIntervalSetJSONKeys(t *testing.T) {
	set := IntervalSet{
		Levels:     []ConfidenceLevel{0.95},
		Difference: map[ConfidenceLevel]IntervalBound{0.95: {Lower: -1, Upper: 2}},
	}

	b, err := json.Marshal(set)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"levels":[0.95]`)
	assert.Contains(t, string(b), `"0.95":{"lower":-1,"upper":2}`)

	var back IntervalSet
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, set.Difference, back.Difference)
}

func TestTestHypothesisDefaults(t *testing.T) {
	var h TestHypothesis
	assert.Equal(t, DefaultReportingLevel, h.Level())
	assert.InDelta(t, 0.05, h.Alpha(), 1e-12)

	h.ReportingLevel = 0.9
	assert.InDelta(t, 0.1, h.Alpha(), 1e-12)
}

func TestIntervalBoundContains(t *testing.T) {
	wide := IntervalBound{Lower: -2, Upper: 2}
	narrow := IntervalBound{Lower: -1, Upper: 1}

	assert.True(t, wide.Contains(narrow))
	assert.False(t, narrow.Contains(wide))
	assert.Equal(t, 4.0, wide.Width())
}
