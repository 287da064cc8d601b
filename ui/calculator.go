package ui

import (
	"bytes"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"gowelch/app"
	"gowelch/domain/analysis"
	"gowelch/domain/core"
	"gowelch/domain/stats"
	"gowelch/internal/chart"
	"gowelch/internal/config"
)

// calculatorForm mirrors the page inputs so they can be re-rendered as typed.
type calculatorForm struct {
	Mean1, SD1, N1    string
	Mean2, SD2, N2    string
	Label1, Label2    string
	NullDifference    string
	ReportingLevel    string
	PValueMode        string
	ExactModeSelected bool
}

type indexPage struct {
	Form      calculatorForm
	Error     string
	Analysis  *analysis.Analysis
	Report    template.HTML
	GroupsSVG template.HTML
	DiffSVG   template.HTML
	Submitted bool
}

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := indexPage{Form: formFromQuery(q, a.defaults)}
	status := http.StatusOK

	if q.Get("m1") != "" {
		page.Submitted = true
		req, err := parseCalculatorForm(page.Form)
		if err == nil {
			var result *analysis.Analysis
			result, err = a.service.Analyze(r.Context(), req)
			if err == nil {
				page.Analysis = result
				page.Report = template.HTML(app.ReportHTML(result))
				page.GroupsSVG = a.renderSVG(result, chart.PanelGroups)
				page.DiffSVG = a.renderSVG(result, chart.PanelDifference)
			}
		}
		if err != nil {
			page.Error = err.Error()
			status = http.StatusBadRequest
		}
	}

	a.renderTemplate(w, status, "index.html", page)
}

func (a *App) renderSVG(result *analysis.Analysis, panel chart.Panel) template.HTML {
	var buf bytes.Buffer
	if err := a.service.RenderChart(&buf, result, panel, chart.FormatSVG); err != nil {
		a.logger.Warn("chart %s: %v", panel, err)
		return ""
	}
	return template.HTML(buf.String())
}

func formFromQuery(q url.Values, defaults config.AnalysisConfig) calculatorForm {
	get := func(key, fallback string) string {
		if v := q.Get(key); v != "" {
			return v
		}
		return fallback
	}
	level := defaults.ReportingLevel
	if level == 0 {
		level = stats.DefaultReportingLevel
	}
	mode := get("mode", string(defaults.PValueMode))
	return calculatorForm{
		Mean1:             get("m1", "100"),
		SD1:               get("s1", "15"),
		N1:                get("n1", "30"),
		Mean2:             get("m2", "95"),
		SD2:               get("s2", "15"),
		N2:                get("n2", "30"),
		Label1:            q.Get("l1"),
		Label2:            q.Get("l2"),
		NullDifference:    get("delta0", "0"),
		ReportingLevel:    get("level", level.String()),
		PValueMode:        mode,
		ExactModeSelected: mode == string(stats.PValueStudentT),
	}
}

func parseCalculatorForm(f calculatorForm) (app.AnalysisRequest, error) {
	var req app.AnalysisRequest
	p := &formParser{}

	req.Group1 = stats.GroupSummary{
		Mean:              p.float("m1", f.Mean1),
		StandardDeviation: p.float("s1", f.SD1),
		SampleSize:        p.int("n1", f.N1),
		Label:             f.Label1,
	}
	req.Group2 = stats.GroupSummary{
		Mean:              p.float("m2", f.Mean2),
		StandardDeviation: p.float("s2", f.SD2),
		SampleSize:        p.int("n2", f.N2),
		Label:             f.Label2,
	}
	req.NullDifference = p.float("delta0", f.NullDifference)
	levels, lerr := stats.ParseLevels(f.ReportingLevel)
	if lerr != nil || len(levels) != 1 {
		p.fail("level", "must be a single confidence level such as 0.95 or 95")
	} else {
		req.ReportingLevel = levels[0]
	}
	req.PValueMode = stats.PValueMode(f.PValueMode)

	return req, p.err
}

type formParser struct {
	err error
}

func (p *formParser) fail(field, reason string) {
	if p.err == nil {
		p.err = core.NewValidationError(field, reason)
	}
}

func (p *formParser) float(field, s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		p.fail(field, "must be a number")
	}
	return v
}

func (p *formParser) int(field, s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		p.fail(field, "must be a whole number")
	}
	return v
}
