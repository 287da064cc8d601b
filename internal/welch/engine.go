// Package welch implements the two-sample Welch (unequal variance) t-test on
// descriptive group statistics.
package welch

import (
	"math"

	"gowelch/domain/core"
	"gowelch/domain/stats"
	"gowelch/internal/distribution"
	"gowelch/internal/effectsize"
)

// Run computes the Welch test statistic, Welch-Satterthwaite degrees of
// freedom, standard error, Cohen's d and power for two group summaries.
//
// Inputs are not re-validated: callers guarantee StandardDeviation > 0 and
// SampleSize >= 2 for both groups. Power uses alpha = 1 - h.Level().
func Run(g1, g2 stats.GroupSummary, h stats.TestHypothesis) (stats.WelchResult, error) {
	if err := h.Level().Validate(); err != nil {
		return stats.WelchResult{}, err
	}

	n1 := float64(g1.SampleSize)
	n2 := float64(g2.SampleSize)

	se1 := g1.StandardDeviation * g1.StandardDeviation / n1
	se2 := g2.StandardDeviation * g2.StandardDeviation / n2
	se := math.Sqrt(se1 + se2)

	diff := g1.Mean - g2.Mean
	t := (diff - h.NullDifference) / se
	df := (se1 + se2) * (se1 + se2) / (se1*se1/(n1-1) + se2*se2/(n2-1))

	d := effectsize.CohensD(g1, g2)
	power, err := effectsize.Power(d, g1.SampleSize, g2.SampleSize, h.Alpha())
	if err != nil {
		return stats.WelchResult{}, err
	}

	return stats.WelchResult{
		TStatistic:       t,
		DegreesOfFreedom: df,
		StandardError:    se,
		CohensD:          d,
		Power:            power,
		MeanDifference:   diff,
	}, nil
}

// PValue returns the two-sided p-value 2*(1 - Phi(|t|)).
//
// This uses the standard normal CDF rather than Student's t even though the
// Welch degrees of freedom are available; the calculator has always reported
// this value. See PValueWithMode for the exact alternative.
func PValue(t float64) float64 {
	return 2 * (1 - distribution.StandardNormalCDF(math.Abs(t)))
}

// PValueWithMode returns the two-sided p-value under the selected mode.
// An empty mode means stats.PValueNormal.
func PValueWithMode(t, df float64, mode stats.PValueMode) (float64, error) {
	switch mode {
	case "", stats.PValueNormal:
		return PValue(t), nil
	case stats.PValueStudentT:
		return 2 * (1 - distribution.StudentTCDF(math.Abs(t), df)), nil
	default:
		return 0, core.NewValidationError("p_value_mode", "unknown mode "+string(mode))
	}
}

// CriticalValue returns the two-sided critical t value at the given level.
func CriticalValue(level stats.ConfidenceLevel, df float64) (float64, error) {
	if err := level.Validate(); err != nil {
		return 0, err
	}
	return distribution.StudentTCriticalValue(1-level.Alpha()/2, df)
}
