package stats

import "math"

// DefaultReportingLevel is used when a hypothesis does not name a reporting level.
const DefaultReportingLevel ConfidenceLevel = 0.95

// GroupSummary holds one observed group's descriptive statistics.
// Label is carried for display only and is never read by the numeric core.
type GroupSummary struct {
	Mean              float64 `json:"mean"`
	StandardDeviation float64 `json:"standard_deviation"`
	SampleSize        int     `json:"sample_size"`
	Label             string  `json:"label,omitempty"`
}

// StandardErrorOfMean returns sd/sqrt(n).
func (g GroupSummary) StandardErrorOfMean() float64 {
	return g.StandardDeviation / math.Sqrt(float64(g.SampleSize))
}

// DisplayName returns the label, or fallback when no label was given.
func (g GroupSummary) DisplayName(fallback string) string {
	if g.Label != "" {
		return g.Label
	}
	return fallback
}

// TestHypothesis is the null hypothesis under test plus the level results are reported at.
type TestHypothesis struct {
	NullDifference float64         `json:"null_difference"`
	ReportingLevel ConfidenceLevel `json:"reporting_level,omitempty"`
}

// Level returns the reporting level, substituting DefaultReportingLevel for the zero value.
func (h TestHypothesis) Level() ConfidenceLevel {
	if h.ReportingLevel == 0 {
		return DefaultReportingLevel
	}
	return h.ReportingLevel
}

// Alpha returns the significance threshold implied by the reporting level.
func (h TestHypothesis) Alpha() float64 {
	return 1 - float64(h.Level())
}

// WelchResult is the single authoritative output of one test invocation.
type WelchResult struct {
	TStatistic       float64 `json:"t_statistic"`
	DegreesOfFreedom float64 `json:"degrees_of_freedom"`
	StandardError    float64 `json:"standard_error"`
	CohensD          float64 `json:"cohens_d"`
	Power            float64 `json:"power"`
	MeanDifference   float64 `json:"mean_difference"`
}

// IntervalBound is a closed interval with Lower <= Upper.
type IntervalBound struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Width returns Upper - Lower.
func (b IntervalBound) Width() float64 { return b.Upper - b.Lower }

// Contains reports whether other lies entirely inside b.
func (b IntervalBound) Contains(other IntervalBound) bool {
	return b.Lower <= other.Lower && other.Upper <= b.Upper
}

// Subject names the quantity an interval is built around.
type Subject string

const (
	SubjectGroup1     Subject = "group1"
	SubjectGroup2     Subject = "group2"
	SubjectDifference Subject = "difference"
)

// IntervalSet holds per-level intervals for both group means and the mean difference.
// Levels is sorted ascending, so callers drawing nested bands can iterate it in order.
type IntervalSet struct {
	Levels     []ConfidenceLevel                             `json:"levels"`
	PerGroup   map[Subject]map[ConfidenceLevel]IntervalBound `json:"per_group"`
	Difference map[ConfidenceLevel]IntervalBound             `json:"difference"`
}

// Bound returns the interval for a subject at a level.
func (s IntervalSet) Bound(subject Subject, level ConfidenceLevel) (IntervalBound, bool) {
	if subject == SubjectDifference {
		b, ok := s.Difference[level]
		return b, ok
	}
	byLevel, ok := s.PerGroup[subject]
	if !ok {
		return IntervalBound{}, false
	}
	b, ok := byLevel[level]
	return b, ok
}

// PValueMode selects how the two-sided p-value is computed from the t statistic.
type PValueMode string

const (
	// PValueNormal uses the standard normal CDF, matching the calculator's historical output.
	PValueNormal PValueMode = "normal"
	// PValueStudentT uses the exact Student's t CDF at the Welch degrees of freedom.
	PValueStudentT PValueMode = "student_t"
)

// Valid reports whether m is a known mode.
func (m PValueMode) Valid() bool {
	return m == PValueNormal || m == PValueStudentT
}
