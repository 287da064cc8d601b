// Package chart draws fan charts of nested confidence intervals: one panel
// for the two group means and one for their difference.
package chart

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"math"
	"strconv"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"gowelch/domain/core"
	"gowelch/domain/stats"
)

// Panel selects which half of the figure to draw.
type Panel string

const (
	PanelGroups     Panel = "groups"
	PanelDifference Panel = "difference"
)

// Format is an output image encoding.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/svg+xml"
}

// ParsePanel accepts "groups" or "difference"; empty means groups.
func ParsePanel(s string) (Panel, error) {
	switch Panel(strings.ToLower(s)) {
	case "", PanelGroups:
		return PanelGroups, nil
	case PanelDifference:
		return PanelDifference, nil
	}
	return "", core.NewValidationError("panel", fmt.Sprintf("unknown panel %q", s))
}

// ParseFormat accepts "svg" or "png"; empty means svg.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case "", FormatSVG:
		return FormatSVG, nil
	case FormatPNG:
		return FormatPNG, nil
	}
	return "", core.NewValidationError("format", fmt.Sprintf("unknown format %q", s))
}

// Input carries the summaries and intervals a chart is drawn from.
type Input struct {
	Group1         stats.GroupSummary
	Group2         stats.GroupSummary
	NullDifference float64
	Intervals      stats.IntervalSet
	Width          int
	Height         int
}

const (
	defaultWidth  = 800
	defaultHeight = 320
	maxStroke     = 18.0
	minStroke     = 4.0
)

// Render writes one panel to w.
func Render(w io.Writer, in Input, panel Panel, format Format) error {
	if len(in.Intervals.Levels) == 0 {
		return core.NewValidationError("levels", "at least one confidence level is required to draw a chart")
	}

	// the SVG renderer writes text nodes verbatim
	if format != FormatPNG {
		in.Group1.Label = html.EscapeString(in.Group1.Label)
		in.Group2.Label = html.EscapeString(in.Group2.Label)
	}

	var ch gochart.Chart
	switch panel {
	case PanelDifference:
		ch = differenceChart(in)
	default:
		ch = groupsChart(in)
	}

	provider := gochart.SVG
	if format == FormatPNG {
		provider = gochart.PNG
	}
	var buf bytes.Buffer
	if err := ch.Render(provider, &buf); err != nil {
		return fmt.Errorf("render %s chart: %w", panel, err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func groupsChart(in Input) gochart.Chart {
	rows := []struct {
		y     float64
		group stats.GroupSummary
		sub   stats.Subject
		color drawing.Color
		name  string
	}{
		{2, in.Group1, stats.SubjectGroup1, gochart.ColorBlue, in.Group1.DisplayName("Group 1")},
		{1, in.Group2, stats.SubjectGroup2, gochart.ColorGreen, in.Group2.DisplayName("Group 2")},
	}

	var series []gochart.Series
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, row := range rows {
		bands, l, h := fan(in.Intervals, row.sub, row.y, row.color)
		series = append(series, bands...)
		series = append(series, meanMarker(row.name, row.group.Mean, row.y))
		lo, hi = math.Min(lo, l), math.Max(hi, h)
	}
	ticks := []gochart.Tick{
		{Value: 0.5, Label: ""},
		{Value: rows[1].y, Label: rows[1].name},
		{Value: rows[0].y, Label: rows[0].name},
		{Value: 2.5, Label: ""},
	}

	return frame("Group means", "Mean", series, lo, hi, ticks, in)
}

func differenceChart(in Input) gochart.Chart {
	bands, lo, hi := fan(in.Intervals, stats.SubjectDifference, 1, gochart.ColorRed)
	diff := in.Group1.Mean - in.Group2.Mean
	lo = math.Min(lo, in.NullDifference)
	hi = math.Max(hi, in.NullDifference)

	series := append(bands,
		meanMarker("Difference", diff, 1),
		gochart.ContinuousSeries{
			Name:    "Null difference",
			XValues: []float64{in.NullDifference, in.NullDifference},
			YValues: []float64{0.5, 1.5},
			Style: gochart.Style{
				StrokeWidth:     1.5,
				StrokeColor:     gochart.ColorAlternateGray,
				StrokeDashArray: []float64{5, 5},
			},
		},
	)
	ticks := []gochart.Tick{{Value: 0.5, Label: ""}, {Value: 1, Label: "Difference"}, {Value: 1.5, Label: ""}}
	return frame("Mean difference (null = "+strconv.FormatFloat(in.NullDifference, 'g', 6, 64)+")",
		"Difference", series, lo, hi, ticks, in)
}

// fan returns one horizontal band per level, widest first so narrower bands
// paint on top with a heavier stroke.
func fan(set stats.IntervalSet, subject stats.Subject, y float64, color drawing.Color) ([]gochart.Series, float64, float64) {
	n := len(set.Levels)
	series := make([]gochart.Series, 0, n)
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := n - 1; i >= 0; i-- {
		level := set.Levels[i]
		b, ok := set.Bound(subject, level)
		if !ok {
			continue
		}
		lo, hi = math.Min(lo, b.Lower), math.Max(hi, b.Upper)

		// i == 0 is the narrowest level
		frac := 1.0
		if n > 1 {
			frac = float64(n-1-i) / float64(n-1)
		}
		stroke := minStroke + (maxStroke-minStroke)*frac
		alpha := uint8(90 + 120*frac)
		series = append(series, gochart.ContinuousSeries{
			Name:    string(subject) + " " + level.Percent(),
			XValues: []float64{b.Lower, b.Upper},
			YValues: []float64{y, y},
			Style: gochart.Style{
				StrokeWidth: stroke,
				StrokeColor: color.WithAlpha(alpha),
			},
		})
	}
	return series, lo, hi
}

func meanMarker(name string, x, y float64) gochart.Series {
	return gochart.ContinuousSeries{
		Name:    name + " mean",
		XValues: []float64{x, x},
		YValues: []float64{y, y},
		Style: gochart.Style{
			StrokeWidth: 0,
			DotWidth:    5,
			DotColor:    gochart.ColorBlack,
		},
	}
}

func frame(title, xName string, series []gochart.Series, lo, hi float64, yTicks []gochart.Tick, in Input) gochart.Chart {
	pad := (hi - lo) * 0.1
	if pad == 0 || math.IsNaN(pad) {
		pad = 1
	}
	xRange := &gochart.ContinuousRange{Min: lo - pad, Max: hi + pad}

	width, height := in.Width, in.Height
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}

	return gochart.Chart{
		Title:      title,
		Width:      width,
		Height:     height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 24, Bottom: 16}},
		XAxis:      gochart.XAxis{Name: xName, Range: xRange, ValueFormatter: formatTick},
		YAxis: gochart.YAxis{
			Range: &gochart.ContinuousRange{Min: yTicks[0].Value, Max: yTicks[len(yTicks)-1].Value},
			Ticks: yTicks,
		},
		Series: series,
	}
}

func formatTick(v interface{}) string {
	if f, ok := v.(float64); ok {
		return strconv.FormatFloat(f, 'f', 2, 64)
	}
	return ""
}
