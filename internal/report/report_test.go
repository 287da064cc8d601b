package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gowelch/domain/stats"
	"gowelch/internal/intervals"
	"gowelch/internal/welch"
)

func buildInput(t *testing.T, g1, g2 stats.GroupSummary, h stats.TestHypothesis) Input {
	t.Helper()
	r, err := welch.Run(g1, g2, h)
	require.NoError(t, err)
	set, err := intervals.Build(g1, g2, r, []stats.ConfidenceLevel{0.5, 0.8, h.Level()})
	require.NoError(t, err)
	return Input{
		Group1:     g1,
		Group2:     g2,
		Hypothesis: h,
		Result:     r,
		PValue:     welch.PValue(r.TStatistic),
		PValueMode: stats.PValueNormal,
		Intervals:  set,
	}
}

func TestMarkdown_NotSignificant(t *testing.T) {
	in := buildInput(t,
		stats.GroupSummary{Mean: 100, StandardDeviation: 15, SampleSize: 30},
		stats.GroupSummary{Mean: 95, StandardDeviation: 15, SampleSize: 30},
		stats.TestHypothesis{})

	md := Markdown(in)

	assert.False(t, in.Significant())
	assert.Contains(t, md, "t = 1.291 (df = 58.0)")
	assert.Contains(t, md, "**P-value:** 0.1967 (normal approximation)")
	assert.Contains(t, md, "**95% Confidence Interval:**")
	assert.Contains(t, md, "We fail to reject the null hypothesis that the true difference equals 0.")
	assert.Contains(t, md, "at the 0.05 significance level")
	assert.Contains(t, md, "Small effect size")
	assert.Contains(t, md, "small but might be meaningful in some contexts")
	assert.Contains(t, md, "might be underpowered")
	assert.Contains(t, md, "| Group 1 | 100.000 | 15.000 | 30 |")
	assert.Contains(t, md, "| 50% |")
}

func TestMarkdown_Significant(t *testing.T) {
	in := buildInput(t,
		stats.GroupSummary{Mean: 12, StandardDeviation: 2, SampleSize: 40, Label: "Treatment"},
		stats.GroupSummary{Mean: 10, StandardDeviation: 2, SampleSize: 40, Label: "Control"},
		stats.TestHypothesis{ReportingLevel: 0.99})

	md := Markdown(in)

	assert.True(t, in.Significant())
	assert.Contains(t, md, "We reject the null hypothesis")
	assert.Contains(t, md, "The data provides sufficient evidence")
	assert.Contains(t, md, "at the 0.01 significance level")
	assert.Contains(t, md, "**99% Confidence Interval:**")
	assert.Contains(t, md, "large and practically significant")
	assert.Contains(t, md, "exceeds the conventional 80% threshold")
	assert.Contains(t, md, "| Treatment | Control | Difference |")
}

func TestMarkdown_StudentTModeIsLabelled(t *testing.T) {
	in := buildInput(t,
		stats.GroupSummary{Mean: 5, StandardDeviation: 1, SampleSize: 5},
		stats.GroupSummary{Mean: 4, StandardDeviation: 1, SampleSize: 5},
		stats.TestHypothesis{NullDifference: 0.5})
	in.PValueMode = stats.PValueStudentT

	md := Markdown(in)
	assert.Contains(t, md, "(exact Student's t)")
	assert.Contains(t, md, "true difference equals 0.5")
}

func TestHTML(t *testing.T) {
	in := buildInput(t,
		stats.GroupSummary{Mean: 100, StandardDeviation: 15, SampleSize: 30},
		stats.GroupSummary{Mean: 95, StandardDeviation: 15, SampleSize: 30},
		stats.TestHypothesis{})

	out := HTML(in)
	assert.Contains(t, out, "<h2")
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<strong>Statistical Power:</strong>")
	assert.Contains(t, out, "<blockquote>")
}

func TestHTML_LabelsRenderAsText(t *testing.T) {
	in := buildInput(t,
		stats.GroupSummary{Mean: 12, StandardDeviation: 2, SampleSize: 40, Label: "<script>alert(1)</script> | x"},
		stats.GroupSummary{Mean: 10, StandardDeviation: 2, SampleSize: 40, Label: "*bold* [link](javascript:alert(1))"},
		stats.TestHypothesis{})

	out := HTML(in)
	assert.NotContains(t, out, "<script")
	assert.Contains(t, out, "&lt;script&gt;alert(1)&lt;/script&gt; | x")
	assert.NotContains(t, out, "<em>bold</em>")
	assert.NotContains(t, out, `href="javascript`)
	assert.Contains(t, out, "*bold*")
}

func TestMarkdown_EscapesLabelMarkup(t *testing.T) {
	in := buildInput(t,
		stats.GroupSummary{Mean: 12, StandardDeviation: 2, SampleSize: 40, Label: "a|b\nc"},
		stats.GroupSummary{Mean: 10, StandardDeviation: 2, SampleSize: 40, Label: "<b>"},
		stats.TestHypothesis{})

	md := Markdown(in)
	assert.Contains(t, md, `| a\|b c | 12.000 |`)
	assert.Contains(t, md, `| \<b\> | 10.000 |`)
}

func TestFormatAlpha(t *testing.T) {
	assert.Equal(t, "0.05", formatAlpha(1-0.95))
	assert.Equal(t, "0.2", formatAlpha(1-0.8))
}
