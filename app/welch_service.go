package app

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"math"

	"gowelch/adapters/excel"
	"gowelch/domain/analysis"
	"gowelch/domain/core"
	"gowelch/domain/stats"
	"gowelch/internal"
	"gowelch/internal/batch"
	"gowelch/internal/chart"
	"gowelch/internal/config"
	"gowelch/internal/effectsize"
	"gowelch/internal/errors"
	"gowelch/internal/intervals"
	"gowelch/internal/report"
	"gowelch/internal/summary"
	"gowelch/internal/welch"
	"gowelch/ports"
)

// AnalysisRequest is one two-group comparison. Zero-valued options fall back
// to the service defaults.
type AnalysisRequest struct {
	Group1         stats.GroupSummary      `json:"group1"`
	Group2         stats.GroupSummary      `json:"group2"`
	NullDifference float64                 `json:"null_difference"`
	ReportingLevel stats.ConfidenceLevel   `json:"reporting_level,omitempty"`
	FanLevels      []stats.ConfidenceLevel `json:"fan_levels,omitempty"`
	PValueMode     stats.PValueMode        `json:"p_value_mode,omitempty"`
	Save           bool                    `json:"save,omitempty"`
}

// BatchItem is one entry of a batch response, in request order.
type BatchItem struct {
	Index    int                `json:"index"`
	Analysis *analysis.Analysis `json:"analysis,omitempty"`
	Error    string             `json:"error,omitempty"`
	Code     string             `json:"code,omitempty"`
}

type engineFunc func(g1, g2 stats.GroupSummary, h stats.TestHypothesis) (stats.WelchResult, error)

// WelchService validates requests, runs the test and assembles analyses.
type WelchService struct {
	repo     ports.AnalysisRepository
	defaults config.AnalysisConfig
	executor *batch.Executor
	engine   engineFunc
	logger   *internal.Logger
}

// NewWelchService creates a service. repo may be nil when nothing is ever saved.
func NewWelchService(repo ports.AnalysisRepository, defaults config.AnalysisConfig, executor *batch.Executor) *WelchService {
	if executor == nil {
		executor = batch.NewExecutor(1)
	}
	return &WelchService{
		repo:     repo,
		defaults: defaults,
		executor: executor,
		engine:   welch.Run,
		logger:   internal.DefaultLogger.Named("WelchService"),
	}
}

// Validate checks the preconditions the numeric core relies on: finite
// means, positive finite standard deviations whose squared standard error
// is representable, and at least two observations per group. All violations
// are reported together.
func Validate(g1, g2 stats.GroupSummary) error {
	var errs []error
	for _, g := range []struct {
		name string
		s    stats.GroupSummary
	}{{"group1", g1}, {"group2", g2}} {
		if !finite(g.s.Mean) {
			errs = append(errs, core.NewValidationError(g.name+".mean", "must be a finite number"))
		}
		sd, n := g.s.StandardDeviation, g.s.SampleSize
		sdOK := finite(sd) && sd > 0
		if !sdOK {
			errs = append(errs, core.NewValidationError(g.name+".standard_deviation", "must be positive"))
		}
		if n < 2 {
			errs = append(errs, core.NewValidationError(g.name+".sample_size", "must be at least 2"))
		}
		if sdOK && n >= 2 {
			if v := sd * sd / float64(n); v == 0 || !finite(v) {
				errs = append(errs, core.NewValidationError(g.name+".standard_deviation", "sd^2/n underflows or overflows"))
			}
		}
	}
	return stderrors.Join(errs...)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Analyze evaluates one request and saves it when requested.
func (s *WelchService) Analyze(ctx context.Context, req AnalysisRequest) (*analysis.Analysis, error) {
	a, err := s.evaluate(req)
	if err != nil {
		return nil, err
	}
	if req.Save {
		if err := s.save(ctx, a); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// SampleAnalysis is an analysis of raw observations together with the order
// statistics of each group.
type SampleAnalysis struct {
	*analysis.Analysis
	Profiles [2]summary.Profile `json:"profiles"`
}

// AnalyzeSamples summarizes raw observations and analyzes them. The request's
// group summaries are replaced; its options are kept.
func (s *WelchService) AnalyzeSamples(ctx context.Context, groups [2]excel.GroupSamples, req AnalysisRequest) (*SampleAnalysis, error) {
	var profiles [2]summary.Profile
	for i, g := range groups {
		p, err := summary.Describe(g.Label, g.Values)
		if err != nil {
			return nil, errors.Wrapf(err, "summarize group %d", i+1)
		}
		profiles[i] = p
	}
	req.Group1, req.Group2 = profiles[0].Group, profiles[1].Group

	a, err := s.Analyze(ctx, req)
	if err != nil {
		return nil, err
	}
	return &SampleAnalysis{Analysis: a, Profiles: profiles}, nil
}

// AnalyzeBatch evaluates every request concurrently. Per-item failures are
// reported in the item; the error return is reserved for cancellation.
func (s *WelchService) AnalyzeBatch(ctx context.Context, reqs []AnalysisRequest) ([]BatchItem, error) {
	s.logger.Debug("analyzing batch of %d requests, %d at a time", len(reqs), s.executor.Limit())
	results, err := batch.Run(ctx, s.executor, reqs, s.Analyze)

	items := make([]BatchItem, len(results))
	for i, r := range results {
		items[i] = BatchItem{Index: r.Index, Analysis: r.Value}
		if r.Err != nil {
			items[i].Analysis = nil
			items[i].Error = r.Err.Error()
			items[i].Code = errors.GetCode(r.Err)
		}
	}
	if err != nil {
		return items, errors.Wrap(err, "batch analysis")
	}
	return items, nil
}

// Get loads a saved analysis by its string ID.
func (s *WelchService) Get(ctx context.Context, rawID string) (*analysis.Analysis, error) {
	id, err := core.ParseAnalysisID(rawID)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}
	if s.repo == nil {
		return nil, errors.NotFound("analysis")
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.Wrapf(err, "load analysis %s", id)
	}
	return a, nil
}

// List returns recent saved analyses.
func (s *WelchService) List(ctx context.Context, limit int) ([]analysis.Summary, error) {
	if s.repo == nil {
		return []analysis.Summary{}, nil
	}
	out, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, err)
	}
	return out, nil
}

// Duplicates returns other saved analyses computed from the same inputs as
// the analysis with the given ID, newest first.
func (s *WelchService) Duplicates(ctx context.Context, rawID string) ([]analysis.Summary, error) {
	a, err := s.Get(ctx, rawID)
	if err != nil {
		return nil, err
	}
	matches, err := s.repo.FindByInputHash(ctx, a.InputHash)
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, err)
	}
	out := make([]analysis.Summary, 0, len(matches))
	for _, m := range matches {
		if m.ID != a.ID {
			out = append(out, m)
		}
	}
	return out, nil
}

// RenderChart draws one fan chart panel for a.
func (s *WelchService) RenderChart(w io.Writer, a *analysis.Analysis, panel chart.Panel, format chart.Format) error {
	return chart.Render(w, chart.Input{
		Group1:         a.Group1,
		Group2:         a.Group2,
		NullDifference: a.Hypothesis.NullDifference,
		Intervals:      a.Intervals,
	}, panel, format)
}

// ReportHTML renders the narrative for a as an HTML fragment.
func ReportHTML(a *analysis.Analysis) string {
	return report.HTML(reportInput(a))
}

func reportInput(a *analysis.Analysis) report.Input {
	return report.Input{
		Group1:     a.Group1,
		Group2:     a.Group2,
		Hypothesis: a.Hypothesis,
		Result:     a.Result,
		PValue:     a.PValue,
		PValueMode: a.PValueMode,
		Intervals:  a.Intervals,
	}
}

func (s *WelchService) evaluate(req AnalysisRequest) (*analysis.Analysis, error) {
	if err := Validate(req.Group1, req.Group2); err != nil {
		return nil, errors.Wrap(err, "invalid group statistics")
	}
	if !finite(req.NullDifference) {
		return nil, errors.Wrap(core.NewValidationError("null_difference", "must be a finite number"), "invalid hypothesis")
	}

	mode := req.PValueMode
	if mode == "" {
		mode = s.defaults.PValueMode
	}
	if mode == "" {
		mode = stats.PValueNormal
	}
	if !mode.Valid() {
		return nil, errors.Wrap(core.NewValidationError("p_value_mode", fmt.Sprintf("unknown mode %q", mode)), "invalid options")
	}

	h := stats.TestHypothesis{NullDifference: req.NullDifference, ReportingLevel: req.ReportingLevel}
	if h.ReportingLevel == 0 {
		h.ReportingLevel = s.defaults.ReportingLevel
	}
	h.ReportingLevel = h.Level()

	result, err := s.engine(req.Group1, req.Group2, h)
	if err != nil {
		return nil, errors.Wrap(err, "welch test")
	}

	p, err := welch.PValueWithMode(result.TStatistic, result.DegreesOfFreedom, mode)
	if err != nil {
		return nil, errors.Wrap(err, "p-value")
	}

	fan := req.FanLevels
	if len(fan) == 0 {
		fan = s.defaults.FanLevels
	}
	levels := append(append([]stats.ConfidenceLevel{}, fan...), h.ReportingLevel)
	set, err := intervals.Build(req.Group1, req.Group2, result, levels)
	if err != nil {
		return nil, errors.Wrap(err, "confidence intervals")
	}

	if err := checkFinite(result, p, set); err != nil {
		return nil, errors.Wrap(err, "invalid group statistics")
	}

	a := &analysis.Analysis{
		InputHash:   analysis.Fingerprint(req.Group1, req.Group2, h, mode),
		Group1:      req.Group1,
		Group2:      req.Group2,
		Hypothesis:  h,
		Result:      result,
		PValue:      p,
		PValueMode:  mode,
		Significant: p < h.Alpha(),
		EffectSize:  string(effectsize.Interpret(result.CohensD)),
		Intervals:   set,
		CreatedAt:   core.Now(),
	}
	a.Narrative = report.Markdown(reportInput(a))

	s.logger.Debug("t=%.4f df=%.2f p=%.4g significant=%t", result.TStatistic, result.DegreesOfFreedom, p, a.Significant)
	return a, nil
}

// checkFinite rejects results that overflowed or underflowed; they cannot be
// reported or encoded as JSON.
func checkFinite(r stats.WelchResult, p float64, set stats.IntervalSet) error {
	values := []float64{r.TStatistic, r.DegreesOfFreedom, r.StandardError, r.CohensD, r.Power, r.MeanDifference, p}
	for _, level := range set.Levels {
		for _, sub := range []stats.Subject{stats.SubjectGroup1, stats.SubjectGroup2, stats.SubjectDifference} {
			if b, ok := set.Bound(sub, level); ok {
				values = append(values, b.Lower, b.Upper)
			}
		}
	}
	for _, v := range values {
		if !finite(v) {
			return core.NewValidationError("groups", "statistics are outside the representable range")
		}
	}
	return nil
}

func (s *WelchService) save(ctx context.Context, a *analysis.Analysis) error {
	if s.repo == nil {
		return errors.InternalError("no analysis repository configured")
	}
	if err := s.repo.Save(ctx, a); err != nil {
		s.logger.Error("failed to save analysis: %v", err)
		return errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "save analysis"))
	}
	s.logger.Info("saved analysis %s", a.ID)
	return nil
}
