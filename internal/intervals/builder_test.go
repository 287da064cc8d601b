package intervals

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gowelch/domain/core"
	"gowelch/domain/stats"
	"gowelch/internal/welch"
)

func knownCase(t *testing.T) (stats.GroupSummary, stats.GroupSummary, stats.WelchResult) {
	t.Helper()
	g1 := stats.GroupSummary{Mean: 100, StandardDeviation: 15, SampleSize: 30}
	g2 := stats.GroupSummary{Mean: 95, StandardDeviation: 15, SampleSize: 30}
	r, err := welch.Run(g1, g2, stats.TestHypothesis{})
	require.NoError(t, err)
	return g1, g2, r
}

func TestBuild_KnownDifferenceInterval(t *testing.T) {
	g1, g2, r := knownCase(t)

	set, err := Build(g1, g2, r, []stats.ConfidenceLevel{0.95})
	require.NoError(t, err)

	b, ok := set.Bound(stats.SubjectDifference, 0.95)
	require.True(t, ok)
	margin := 2.0017042448 * math.Sqrt(15)
	assert.InDelta(t, 5-margin, b.Lower, 1e-3)
	assert.InDelta(t, 5+margin, b.Upper, 1e-3)

	g, ok := set.Bound(stats.SubjectGroup1, 0.95)
	require.True(t, ok)
	assert.InDelta(t, 100, (g.Lower+g.Upper)/2, 1e-12)
	assert.InDelta(t, 2*2.0017042448*15/math.Sqrt(30), g.Width(), 1e-3)
}

func TestBuild_Nesting(t *testing.T) {
	g1, g2, r := knownCase(t)

	set, err := Build(g1, g2, r, []stats.ConfidenceLevel{0.95, 0.5, 0.8})
	require.NoError(t, err)
	assert.Equal(t, []stats.ConfidenceLevel{0.5, 0.8, 0.95}, set.Levels)

	for _, subject := range []stats.Subject{stats.SubjectGroup1, stats.SubjectGroup2, stats.SubjectDifference} {
		for i := 1; i < len(set.Levels); i++ {
			inner, ok := set.Bound(subject, set.Levels[i-1])
			require.True(t, ok)
			outer, ok := set.Bound(subject, set.Levels[i])
			require.True(t, ok)
			assert.True(t, outer.Contains(inner), "%s: %v should contain %v", subject, set.Levels[i], set.Levels[i-1])
			assert.Greater(t, outer.Width(), inner.Width())
		}
	}
}

func TestBuild_DeduplicatesLevels(t *testing.T) {
	g1, g2, r := knownCase(t)

	set, err := Build(g1, g2, r, []stats.ConfidenceLevel{0.9, 0.9, 0.5})
	require.NoError(t, err)
	assert.Equal(t, []stats.ConfidenceLevel{0.5, 0.9}, set.Levels)
	assert.Len(t, set.Difference, 2)
}

func TestBuild_RejectsBoundaryLevels(t *testing.T) {
	g1, g2, r := knownCase(t)

	for _, level := range []stats.ConfidenceLevel{0, 1, -0.5, 1.5} {
		_, err := Build(g1, g2, r, []stats.ConfidenceLevel{0.5, level})
		assert.ErrorIs(t, err, core.ErrDomain, "level %v", level)
	}
}

func TestBuild_EmptyLevels(t *testing.T) {
	g1, g2, r := knownCase(t)

	set, err := Build(g1, g2, r, nil)
	require.NoError(t, err)
	assert.Empty(t, set.Levels)
	assert.Empty(t, set.Difference)
}

func TestBuild_DifferenceSignFollowsGroupOrder(t *testing.T) {
	g1, g2, r := knownCase(t)
	swapped, err := welch.Run(g2, g1, stats.TestHypothesis{})
	require.NoError(t, err)

	a, err := Build(g1, g2, r, []stats.ConfidenceLevel{0.8})
	require.NoError(t, err)
	b, err := Build(g2, g1, swapped, []stats.ConfidenceLevel{0.8})
	require.NoError(t, err)

	assert.InDelta(t, a.Difference[0.8].Lower, -b.Difference[0.8].Upper, 1e-12)
	assert.InDelta(t, a.Difference[0.8].Upper, -b.Difference[0.8].Lower, 1e-12)
}
