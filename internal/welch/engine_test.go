package welch

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gowelch/domain/core"
	"gowelch/domain/stats"
)

func TestRun_EqualVarianceKnownCase(t *testing.T) {
	g1 := stats.GroupSummary{Mean: 100, StandardDeviation: 15, SampleSize: 30}
	g2 := stats.GroupSummary{Mean: 95, StandardDeviation: 15, SampleSize: 30}

	r, err := Run(g1, g2, stats.TestHypothesis{})
	require.NoError(t, err)

	assert.InDelta(t, math.Sqrt(15), r.StandardError, 1e-12)
	assert.InDelta(t, 3.873, r.StandardError, 1e-3)
	assert.InDelta(t, 1.291, r.TStatistic, 1e-3)
	assert.InDelta(t, 58, r.DegreesOfFreedom, 1e-9)
	assert.InDelta(t, 1.0/3.0, r.CohensD, 1e-12)
	assert.InDelta(t, 0.25233, r.Power, 1e-4)
	assert.Equal(t, 5.0, r.MeanDifference)
}

func TestRun_UnequalVariance(t *testing.T) {
	g1 := stats.GroupSummary{Mean: 20, StandardDeviation: 4, SampleSize: 10}
	g2 := stats.GroupSummary{Mean: 17, StandardDeviation: 1, SampleSize: 40}

	r, err := Run(g1, g2, stats.TestHypothesis{})
	require.NoError(t, err)

	se1, se2 := 16.0/10, 1.0/40
	wantDF := math.Pow(se1+se2, 2) / (se1*se1/9 + se2*se2/39)
	assert.InDelta(t, wantDF, r.DegreesOfFreedom, 1e-9)
	assert.InDelta(t, 3/math.Sqrt(se1+se2), r.TStatistic, 1e-12)
	assert.Less(t, r.DegreesOfFreedom, 48.0)
	assert.Greater(t, r.DegreesOfFreedom, 9.0)
}

func TestRun_NullDifferenceShiftsStatistic(t *testing.T) {
	g1 := stats.GroupSummary{Mean: 100, StandardDeviation: 15, SampleSize: 30}
	g2 := stats.GroupSummary{Mean: 95, StandardDeviation: 15, SampleSize: 30}

	r, err := Run(g1, g2, stats.TestHypothesis{NullDifference: 5})
	require.NoError(t, err)
	assert.Equal(t, 0.0, r.TStatistic)
	assert.Equal(t, 5.0, r.MeanDifference)
}

func TestRun_SwapSymmetry(t *testing.T) {
	g1 := stats.GroupSummary{Mean: 12.5, StandardDeviation: 3.1, SampleSize: 17}
	g2 := stats.GroupSummary{Mean: 9.75, StandardDeviation: 5.2, SampleSize: 23}
	h := stats.TestHypothesis{ReportingLevel: 0.9}

	a, err := Run(g1, g2, h)
	require.NoError(t, err)
	b, err := Run(g2, g1, h)
	require.NoError(t, err)

	assert.Equal(t, -a.TStatistic, b.TStatistic)
	assert.Equal(t, -a.MeanDifference, b.MeanDifference)
	assert.Equal(t, a.DegreesOfFreedom, b.DegreesOfFreedom)
	assert.Equal(t, a.StandardError, b.StandardError)
	assert.Equal(t, a.CohensD, b.CohensD)
	assert.Equal(t, a.Power, b.Power)
}

func TestRun_Deterministic(t *testing.T) {
	g1 := stats.GroupSummary{Mean: 1.1, StandardDeviation: 0.3, SampleSize: 8}
	g2 := stats.GroupSummary{Mean: 0.7, StandardDeviation: 0.9, SampleSize: 5}

	a, err := Run(g1, g2, stats.TestHypothesis{NullDifference: 0.1})
	require.NoError(t, err)
	b, err := Run(g1, g2, stats.TestHypothesis{NullDifference: 0.1})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRun_ReportingLevelChangesPowerOnly(t *testing.T) {
	g1 := stats.GroupSummary{Mean: 100, StandardDeviation: 15, SampleSize: 30}
	g2 := stats.GroupSummary{Mean: 95, StandardDeviation: 15, SampleSize: 30}

	loose, err := Run(g1, g2, stats.TestHypothesis{ReportingLevel: 0.9})
	require.NoError(t, err)
	strict, err := Run(g1, g2, stats.TestHypothesis{ReportingLevel: 0.99})
	require.NoError(t, err)

	assert.Equal(t, loose.TStatistic, strict.TStatistic)
	assert.Greater(t, loose.Power, strict.Power)
}

func TestRun_InvalidReportingLevel(t *testing.T) {
	g := stats.GroupSummary{Mean: 1, StandardDeviation: 1, SampleSize: 5}
	_, err := Run(g, g, stats.TestHypothesis{ReportingLevel: 1})
	assert.ErrorIs(t, err, core.ErrDomain)
}

func TestPValue(t *testing.T) {
	assert.Equal(t, 1.0, PValue(0))
	assert.InDelta(t, 0.05, PValue(1.959963985), 1e-6)
	assert.Equal(t, PValue(2.3), PValue(-2.3))
	assert.InDelta(t, 0.19671, PValue(1.2909944487358056), 1e-4)
}

func TestPValueWithMode(t *testing.T) {
	normal, err := PValueWithMode(2.5, 4, stats.PValueNormal)
	require.NoError(t, err)
	exact, err := PValueWithMode(2.5, 4, stats.PValueStudentT)
	require.NoError(t, err)
	assert.Greater(t, exact, normal, "t tails are heavier at small df")
	assert.InDelta(t, 0.06676, exact, 1e-4)

	def, err := PValueWithMode(2.5, 4, "")
	require.NoError(t, err)
	assert.Equal(t, normal, def)

	large, err := PValueWithMode(2.5, 1e6, stats.PValueStudentT)
	require.NoError(t, err)
	assert.InDelta(t, normal, large, 1e-5)

	_, err = PValueWithMode(2.5, 4, "bayes")
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestCriticalValue(t *testing.T) {
	c, err := CriticalValue(0.95, 58)
	require.NoError(t, err)
	assert.InDelta(t, 2.0017, c, 1e-4)

	_, err = CriticalValue(0, 58)
	assert.ErrorIs(t, err, core.ErrDomain)
}
