package distribution

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// StudentTCriticalValue approximates the Student's t quantile at probability
// with df degrees of freedom. It applies a Cornish-Fisher expansion to the
// normal quantile. For a non-finite or non-positive df it returns the normal
// quantile unchanged. This is an approximation, not the exact t quantile.
func StudentTCriticalValue(probability, df float64) (float64, error) {
	z, err := StandardNormalInverse(probability)
	if err != nil {
		return 0, err
	}
	if math.IsInf(df, 0) || math.IsNaN(df) || df <= 0 {
		return z, nil
	}

	z3 := z * z * z
	z5 := z3 * z * z
	g1 := (z3 + z) / (4 * df)
	g2 := (5*z5 + 16*z3 + 3*z) / (96 * df * df)
	return z + g1 + g2, nil
}

// StudentTCDF returns the exact Student's t CDF at t with df degrees of freedom.
// A non-finite or non-positive df falls back to the standard normal approximation.
func StudentTCDF(t, df float64) float64 {
	if math.IsInf(df, 0) || math.IsNaN(df) || df <= 0 {
		return StandardNormalCDF(t)
	}
	return distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}.CDF(t)
}
