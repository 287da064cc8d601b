// Package analysis defines a completed Welch analysis as it is returned to
// clients and persisted.
package analysis

import (
	"gowelch/domain/core"
	"gowelch/domain/stats"
)

// Analysis is one evaluated two-group comparison.
type Analysis struct {
	ID          core.AnalysisID      `json:"id,omitempty"`
	InputHash   core.InputHash       `json:"input_hash"`
	Group1      stats.GroupSummary   `json:"group1"`
	Group2      stats.GroupSummary   `json:"group2"`
	Hypothesis  stats.TestHypothesis `json:"hypothesis"`
	Result      stats.WelchResult    `json:"result"`
	PValue      float64              `json:"p_value"`
	PValueMode  stats.PValueMode     `json:"p_value_mode"`
	Significant bool                 `json:"significant"`
	EffectSize  string               `json:"effect_size"`
	Intervals   stats.IntervalSet    `json:"intervals"`
	Narrative   string               `json:"narrative,omitempty"`
	CreatedAt   core.Timestamp       `json:"created_at"`
}

// Fingerprint hashes the numeric inputs that determine the result. Labels
// and requested fan levels do not participate.
func Fingerprint(g1, g2 stats.GroupSummary, h stats.TestHypothesis, mode stats.PValueMode) core.InputHash {
	modeFlag := 0.0
	if mode == stats.PValueStudentT {
		modeFlag = 1
	}
	return core.ComputeInputHash(
		g1.Mean, g1.StandardDeviation, float64(g1.SampleSize),
		g2.Mean, g2.StandardDeviation, float64(g2.SampleSize),
		h.NullDifference, float64(h.Level()), modeFlag,
	)
}

// Summary is the list view of a saved analysis.
type Summary struct {
	ID          core.AnalysisID `json:"id"`
	Group1Label string          `json:"group1_label"`
	Group2Label string          `json:"group2_label"`
	TStatistic  float64         `json:"t_statistic"`
	PValue      float64         `json:"p_value"`
	Significant bool            `json:"significant"`
	CreatedAt   core.Timestamp  `json:"created_at"`
}

// Summarize returns the list view of a.
func (a *Analysis) Summarize() Summary {
	return Summary{
		ID:          a.ID,
		Group1Label: a.Group1.DisplayName("Group 1"),
		Group2Label: a.Group2.DisplayName("Group 2"),
		TStatistic:  a.Result.TStatistic,
		PValue:      a.PValue,
		Significant: a.Significant,
		CreatedAt:   a.CreatedAt,
	}
}
