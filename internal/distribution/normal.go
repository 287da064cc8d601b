// Package distribution provides closed-form approximations to the standard
// normal and Student's t distributions that need no statistical tables.
package distribution

import (
	"math"

	"gowelch/domain/core"
)

// Abramowitz and Stegun 7.1.26; maximum absolute error of erf is about 1.5e-7.
const (
	erfP  = 0.3275911
	erfA1 = 0.254829592
	erfA2 = -0.284496736
	erfA3 = 1.421413741
	erfA4 = -1.453152027
	erfA5 = 1.061405429
)

// Acklam's rational approximation of the normal quantile, relative error below 1.15e-9.
var (
	invA = [6]float64{
		-3.969683028665376e+01,
		2.209460984245205e+02,
		-2.759285104469687e+02,
		1.383577518672690e+02,
		-3.066479806614716e+01,
		2.506628277459239e+00,
	}
	invB = [5]float64{
		-5.447609879822406e+01,
		1.615858368580409e+02,
		-1.556989798598866e+02,
		6.680131188771972e+01,
		-1.328068155288572e+01,
	}
	invC = [6]float64{
		-7.784894002430293e-03,
		-3.223964580411365e-01,
		-2.400758277161838e+00,
		-2.549732539343734e+00,
		4.374664141464968e+00,
		2.938163982698783e+00,
	}
	invD = [4]float64{
		7.784695709041462e-03,
		3.224671290700398e-01,
		2.445134137142996e+00,
		3.754408661907416e+00,
	}
)

const (
	invLow  = 0.02425
	invHigh = 1 - invLow
)

// erf approximates the error function. erf(0) is exactly 0 and erf(-x) = -erf(x).
func erf(x float64) float64 {
	if x == 0 {
		return 0
	}
	sign := 1.0
	if x < 0 {
		sign = -1
		x = -x
	}
	t := 1 / (1 + erfP*x)
	y := 1 - (((((erfA5*t+erfA4)*t)+erfA3)*t+erfA2)*t+erfA1)*t*math.Exp(-x*x)
	return sign * y
}

// StandardNormalCDF returns P(Z <= x) for a standard normal Z.
func StandardNormalCDF(x float64) float64 {
	return 0.5 * (1 + erf(x/math.Sqrt2))
}

// StandardNormalInverse returns z such that StandardNormalCDF(z) is p.
// It fails with a DomainError unless 0 < p < 1.
func StandardNormalInverse(p float64) (float64, error) {
	if math.IsNaN(p) || p <= 0 || p >= 1 {
		return 0, core.NewDomainError("StandardNormalInverse", p)
	}

	switch {
	case p < invLow:
		return lowerTail(math.Sqrt(-2 * math.Log(p))), nil
	case p > invHigh:
		return -lowerTail(math.Sqrt(-2 * math.Log(1-p))), nil
	}

	q := p - 0.5
	r := q * q
	num := (((((invA[0]*r+invA[1])*r+invA[2])*r+invA[3])*r+invA[4])*r + invA[5]) * q
	den := ((((invB[0]*r+invB[1])*r+invB[2])*r+invB[3])*r+invB[4])*r + 1
	return num / den, nil
}

func lowerTail(q float64) float64 {
	num := ((((invC[0]*q+invC[1])*q+invC[2])*q+invC[3])*q+invC[4])*q + invC[5]
	den := (((invD[0]*q+invD[1])*q+invD[2])*q+invD[3])*q + 1
	return num / den
}
