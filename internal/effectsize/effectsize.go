// Package effectsize computes Cohen's d and the approximate power of a
// two-sided two-sample test.
package effectsize

import (
	"math"
	"strings"

	"gowelch/domain/core"
	"gowelch/domain/stats"
	"gowelch/internal/distribution"
)

// Magnitude is an advisory label for a Cohen's d value.
type Magnitude string

const (
	VerySmall Magnitude = "very small"
	Small     Magnitude = "small"
	Medium    Magnitude = "medium"
	Large     Magnitude = "large"
)

// Fixed interpretation thresholds for |d|.
const (
	smallThreshold  = 0.2
	mediumThreshold = 0.5
	largeThreshold  = 0.8
)

// PooledStandardDeviation combines both groups' variances weighted by n-1.
func PooledStandardDeviation(g1, g2 stats.GroupSummary) float64 {
	n1 := float64(g1.SampleSize)
	n2 := float64(g2.SampleSize)
	v1 := g1.StandardDeviation * g1.StandardDeviation
	v2 := g2.StandardDeviation * g2.StandardDeviation
	return math.Sqrt(((n1-1)*v1 + (n2-1)*v2) / (n1 + n2 - 2))
}

// CohensD returns |mean1 - mean2| divided by the pooled standard deviation.
//
// When both groups have zero variance the pooled SD is 0 and the result is
// +Inf for differing means (NaN for equal means). Callers guarantee
// SampleSize >= 2 for both groups.
func CohensD(g1, g2 stats.GroupSummary) float64 {
	return math.Abs(g1.Mean-g2.Mean) / PooledStandardDeviation(g1, g2)
}

// Label returns the display form, e.g. "Very small effect size".
func (m Magnitude) Label() string {
	if m == "" {
		return ""
	}
	return strings.ToUpper(string(m[:1])) + string(m[1:]) + " effect size"
}

// Interpret maps d onto the conventional magnitude bands.
func Interpret(d float64) Magnitude {
	switch {
	case d < smallThreshold:
		return VerySmall
	case d < mediumThreshold:
		return Small
	case d < largeThreshold:
		return Medium
	default:
		return Large
	}
}

// Power approximates the power of a two-sided test at significance alpha,
// modelling the alternative as a normal distribution centred on the
// non-centrality parameter d*sqrt(n1*n2/(n1+n2)).
func Power(d float64, n1, n2 int, alpha float64) (float64, error) {
	if math.IsNaN(alpha) || alpha <= 0 || alpha >= 1 {
		return 0, core.NewDomainError("Power", alpha)
	}
	zHalf, err := distribution.StandardNormalInverse(alpha / 2)
	if err != nil {
		return 0, err
	}

	fn1, fn2 := float64(n1), float64(n2)
	ncp := d * math.Sqrt(fn1*fn2/(fn1+fn2))
	zc := math.Abs(zHalf)
	return 1 - distribution.StandardNormalCDF(zc-ncp) + distribution.StandardNormalCDF(-zc-ncp), nil
}
