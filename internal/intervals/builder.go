// Package intervals builds nested confidence intervals for two group means
// and their difference at any number of confidence levels.
package intervals

import (
	"math"

	"gowelch/domain/stats"
	"gowelch/internal/distribution"
)

// Build returns intervals for both groups and the mean difference at every
// level. Levels are validated, deduplicated and sorted ascending; a level of
// 0 or 1 fails the whole call with a DomainError.
//
// All intervals share the Welch degrees of freedom carried by result, and the
// difference interval uses result.StandardError.
func Build(g1, g2 stats.GroupSummary, result stats.WelchResult, levels []stats.ConfidenceLevel) (stats.IntervalSet, error) {
	normalized, err := stats.NormalizeLevels(levels)
	if err != nil {
		return stats.IntervalSet{}, err
	}

	set := stats.IntervalSet{
		Levels: normalized,
		PerGroup: map[stats.Subject]map[stats.ConfidenceLevel]stats.IntervalBound{
			stats.SubjectGroup1: make(map[stats.ConfidenceLevel]stats.IntervalBound, len(normalized)),
			stats.SubjectGroup2: make(map[stats.ConfidenceLevel]stats.IntervalBound, len(normalized)),
		},
		Difference: make(map[stats.ConfidenceLevel]stats.IntervalBound, len(normalized)),
	}

	diff := g1.Mean - g2.Mean
	for _, level := range normalized {
		critical, err := distribution.StudentTCriticalValue(1-level.Alpha()/2, result.DegreesOfFreedom)
		if err != nil {
			return stats.IntervalSet{}, err
		}
		set.PerGroup[stats.SubjectGroup1][level] = around(g1.Mean, critical*g1.StandardErrorOfMean())
		set.PerGroup[stats.SubjectGroup2][level] = around(g2.Mean, critical*g2.StandardErrorOfMean())
		set.Difference[level] = around(diff, critical*result.StandardError)
	}
	return set, nil
}

// around returns center ± margin, keeping Lower <= Upper for any sign of margin.
func around(center, margin float64) stats.IntervalBound {
	margin = math.Abs(margin)
	return stats.IntervalBound{Lower: center - margin, Upper: center + margin}
}
