// Package report renders a Welch test result as a readable narrative, in
// markdown or HTML.
package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"gowelch/domain/stats"
	"gowelch/internal/effectsize"
)

// AdequatePower is the conventional power threshold the narrative checks against.
const AdequatePower = 0.8

// Input is everything the narrative mentions. Intervals must include the
// hypothesis reporting level.
type Input struct {
	Group1     stats.GroupSummary
	Group2     stats.GroupSummary
	Hypothesis stats.TestHypothesis
	Result     stats.WelchResult
	PValue     float64
	PValueMode stats.PValueMode
	Intervals  stats.IntervalSet
}

// Significant reports whether the p-value falls below alpha.
func (in Input) Significant() bool {
	return in.PValue < in.Hypothesis.Alpha()
}

var practical = map[effectsize.Magnitude]string{
	effectsize.VerySmall: "very small and might not be practically meaningful",
	effectsize.Small:     "small but might be meaningful in some contexts",
	effectsize.Medium:    "moderate and likely practically meaningful",
	effectsize.Large:     "large and practically significant",
}

// Markdown renders the full narrative.
func Markdown(in Input) string {
	var b strings.Builder
	level := in.Hypothesis.Level()
	alpha := formatAlpha(in.Hypothesis.Alpha())
	magnitude := effectsize.Interpret(in.Result.CohensD)
	name1 := escapeLabel(in.Group1.DisplayName("Group 1"))
	name2 := escapeLabel(in.Group2.DisplayName("Group 2"))

	b.WriteString("## Statistical Results\n\n")
	b.WriteString("| Group | Mean | SD | n |\n|---|---|---|---|\n")
	fmt.Fprintf(&b, "| %s | %.3f | %.3f | %d |\n", name1, in.Group1.Mean, in.Group1.StandardDeviation, in.Group1.SampleSize)
	fmt.Fprintf(&b, "| %s | %.3f | %.3f | %d |\n\n", name2, in.Group2.Mean, in.Group2.StandardDeviation, in.Group2.SampleSize)

	b.WriteString("### Primary Test Statistics\n\n")
	fmt.Fprintf(&b, "- **Test Statistic:** t = %.3f (df = %.1f)\n", in.Result.TStatistic, in.Result.DegreesOfFreedom)
	fmt.Fprintf(&b, "- **P-value:** %.4f%s\n", in.PValue, modeNote(in.PValueMode))
	if ci, ok := in.Intervals.Bound(stats.SubjectDifference, level); ok {
		fmt.Fprintf(&b, "- **%s Confidence Interval:** (%.3f, %.3f)\n", level.Percent(), ci.Lower, ci.Upper)
	}
	b.WriteString("\n### Effect Size Analysis\n\n")
	fmt.Fprintf(&b, "- **Cohen's d:** %.3f\n", in.Result.CohensD)
	fmt.Fprintf(&b, "- **Interpretation:** %s\n", magnitude.Label())
	fmt.Fprintf(&b, "- **Statistical Power:** %.1f%%\n\n", in.Result.Power*100)

	b.WriteString("## Detailed Interpretation\n\n### Statistical Significance\n\n")
	delta0 := strconv.FormatFloat(in.Hypothesis.NullDifference, 'f', -1, 64)
	if in.Significant() {
		fmt.Fprintf(&b, "We reject the null hypothesis that the true difference equals %s. ", delta0)
		fmt.Fprintf(&b, "The data provides sufficient evidence of a difference from the hypothesized value at the %s significance level.\n\n", alpha)
	} else {
		fmt.Fprintf(&b, "We fail to reject the null hypothesis that the true difference equals %s. ", delta0)
		fmt.Fprintf(&b, "The data does not provide sufficient evidence of a difference from the hypothesized value at the %s significance level.\n\n", alpha)
	}

	b.WriteString("### Practical Significance\n\n")
	fmt.Fprintf(&b, "The effect size (Cohen's d = %.3f) indicates %s. This means the difference between the groups is %s.\n\n",
		in.Result.CohensD, strings.ToLower(magnitude.Label()), practical[magnitude])

	b.WriteString("### Statistical Power\n\n")
	fmt.Fprintf(&b, "The test has %.1f%% power to detect the observed effect size. ", in.Result.Power*100)
	if in.Result.Power < AdequatePower {
		b.WriteString("This is below the conventional 80% threshold, suggesting the test might be underpowered. Consider increasing sample sizes.\n\n")
	} else {
		b.WriteString("This exceeds the conventional 80% threshold, indicating adequate power to detect the observed effect.\n\n")
	}

	if len(in.Intervals.Levels) > 0 {
		writeIntervalTable(&b, in, name1, name2)
	}

	b.WriteString("> **Learning Note:** statistical significance (p-value) and practical significance (effect size) tell different stories.\n")
	b.WriteString(">\n")
	b.WriteString("> - P-value tells us how likely we would observe such results under the null hypothesis\n")
	b.WriteString("> - Effect size tells us about the magnitude of the difference, regardless of sample size\n")
	b.WriteString("> - Power tells us about our ability to detect true effects when they exist\n")
	return b.String()
}

// HTML renders the markdown narrative to an HTML fragment. Raw HTML in the
// markdown source is dropped.
func HTML(in Input) string {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.SkipHTML})
	return string(markdown.ToHTML([]byte(Markdown(in)), p, renderer))
}

func writeIntervalTable(b *strings.Builder, in Input, name1, name2 string) {
	b.WriteString("### Confidence Intervals\n\n")
	fmt.Fprintf(b, "| Level | %s | %s | Difference |\n|---|---|---|---|\n", name1, name2)
	for _, level := range in.Intervals.Levels {
		g1, _ := in.Intervals.Bound(stats.SubjectGroup1, level)
		g2, _ := in.Intervals.Bound(stats.SubjectGroup2, level)
		d, _ := in.Intervals.Bound(stats.SubjectDifference, level)
		fmt.Fprintf(b, "| %s | %s | %s | %s |\n", level.Percent(), formatBound(g1), formatBound(g2), formatBound(d))
	}
	b.WriteString("\n")
}

// markdownEscaper backslash-escapes the characters that start inline markup,
// raw HTML, entities or table cells.
var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`, "[", `\[`, "]", `\]`,
	"|", `\|`, "&", `\&`, "<", `\<`, ">", `\>`, "~", `\~`, "^", `\^`,
	"$", `\$`, "#", `\#`, "\n", " ", "\r", " ",
)

// escapeLabel makes a user supplied group label render as plain text.
func escapeLabel(s string) string {
	return markdownEscaper.Replace(s)
}

func formatBound(b stats.IntervalBound) string {
	return fmt.Sprintf("(%.3f, %.3f)", b.Lower, b.Upper)
}

// formatAlpha strips float noise such as 1-0.95 = 0.050000000000000044.
func formatAlpha(alpha float64) string {
	return strconv.FormatFloat(math.Round(alpha*1e10)/1e10, 'f', -1, 64)
}

func modeNote(mode stats.PValueMode) string {
	if mode == stats.PValueStudentT {
		return " (exact Student's t)"
	}
	return " (normal approximation)"
}
