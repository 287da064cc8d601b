// Package summary reduces raw observations to the descriptive statistics the
// Welch engine consumes.
package summary

import (
	"fmt"
	"math"

	mstats "github.com/montanaflynn/stats"

	"gowelch/domain/core"
	"gowelch/domain/stats"
)

// Profile describes the shape of one group's raw sample.
type Profile struct {
	Group  stats.GroupSummary `json:"group"`
	Min    float64            `json:"min"`
	Max    float64            `json:"max"`
	Median float64            `json:"median"`
	Q25    float64            `json:"q25"`
	Q75    float64            `json:"q75"`
}

// Summarize returns the mean, sample standard deviation (n-1 denominator) and
// size of samples. At least two finite observations are required.
func Summarize(label string, samples []float64) (stats.GroupSummary, error) {
	if err := checkSamples(label, samples); err != nil {
		return stats.GroupSummary{}, err
	}

	mean, err := mstats.Mean(samples)
	if err != nil {
		return stats.GroupSummary{}, fmt.Errorf("mean of %s: %w", label, err)
	}
	sd, err := mstats.StandardDeviationSample(samples)
	if err != nil {
		return stats.GroupSummary{}, fmt.Errorf("standard deviation of %s: %w", label, err)
	}

	return stats.GroupSummary{
		Mean:              mean,
		StandardDeviation: sd,
		SampleSize:        len(samples),
		Label:             label,
	}, nil
}

// Describe extends Summarize with order statistics.
func Describe(label string, samples []float64) (Profile, error) {
	group, err := Summarize(label, samples)
	if err != nil {
		return Profile{}, err
	}

	p := Profile{Group: group}
	if p.Min, err = mstats.Min(samples); err != nil {
		return Profile{}, err
	}
	if p.Max, err = mstats.Max(samples); err != nil {
		return Profile{}, err
	}
	if p.Median, err = mstats.Median(samples); err != nil {
		return Profile{}, err
	}
	if p.Q25, err = mstats.Percentile(samples, 25); err != nil {
		return Profile{}, err
	}
	if p.Q75, err = mstats.Percentile(samples, 75); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func checkSamples(label string, samples []float64) error {
	field := "samples"
	if label != "" {
		field = label
	}
	if len(samples) < 2 {
		return core.NewValidationError(field, fmt.Sprintf("need at least 2 observations, got %d", len(samples)))
	}
	for i, v := range samples {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return core.NewValidationError(field, fmt.Sprintf("observation %d is not finite", i))
		}
	}
	return nil
}
