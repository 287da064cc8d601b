package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"gowelch/adapters/excel"
	"gowelch/adapters/memory"
	"gowelch/app"
	"gowelch/domain/analysis"
	"gowelch/domain/stats"
	"gowelch/internal/batch"
	"gowelch/internal/chart"
	"gowelch/internal/config"
	"gowelch/internal/summary"
)

// options shared by every analysis command
type analysisFlags struct {
	nullDifference float64
	level          float64
	fanLevels      string
	mode           string
	format         string
}

func (f *analysisFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.nullDifference, "delta0", 0, "Hypothesized mean difference under the null")
	cmd.Flags().Float64Var(&f.level, "level", 0, "Reporting confidence level, e.g. 0.95 (default from REPORTING_LEVEL)")
	cmd.Flags().StringVar(&f.fanLevels, "fan-levels", "", "Comma separated interval levels, e.g. 0.5,0.8,0.95")
	cmd.Flags().StringVar(&f.mode, "mode", "", "P-value mode: normal|student_t")
	cmd.Flags().StringVar(&f.format, "format", "markdown", "Output format: markdown|json|text")
}

func (f *analysisFlags) request() (app.AnalysisRequest, error) {
	req := app.AnalysisRequest{
		NullDifference: f.nullDifference,
		ReportingLevel: stats.ConfidenceLevel(f.level),
		PValueMode:     stats.PValueMode(f.mode),
	}
	if f.fanLevels != "" {
		levels, err := stats.ParseLevels(f.fanLevels)
		if err != nil {
			return req, err
		}
		req.FanLevels = levels
	}
	return req, nil
}

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "welch",
		Short:         "Welch two-sample t-test calculator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newTestCmd(),
		newFileCmd(),
		newChartCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newService() (*app.WelchService, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return app.NewWelchService(memory.NewAnalysisRepository(), cfg.Analysis, batch.NewExecutor(cfg.Batch.Concurrency)), nil
}

type groupFlags struct {
	mean, sd float64
	n        int
	label    string
}

func registerGroup(cmd *cobra.Command, g *groupFlags, idx int) {
	p := fmt.Sprintf("%d", idx)
	cmd.Flags().Float64Var(&g.mean, "m"+p, 0, "Mean of group "+p)
	cmd.Flags().Float64Var(&g.sd, "s"+p, 0, "Standard deviation of group "+p)
	cmd.Flags().IntVar(&g.n, "n"+p, 0, "Sample size of group "+p)
	cmd.Flags().StringVar(&g.label, "label"+p, "", "Display label for group "+p)
	_ = cmd.MarkFlagRequired("m" + p)
	_ = cmd.MarkFlagRequired("s" + p)
	_ = cmd.MarkFlagRequired("n" + p)
}

func (g groupFlags) summary() stats.GroupSummary {
	return stats.GroupSummary{Mean: g.mean, StandardDeviation: g.sd, SampleSize: g.n, Label: g.label}
}

func newTestCmd() *cobra.Command {
	var g1, g2 groupFlags
	var opts analysisFlags

	cmd := &cobra.Command{
		Use:   "test",
		Short: "Run a Welch t-test from summary statistics",
		Long: `Run a Welch two-sample t-test from each group's mean, standard deviation and size.

Example: welch test --m1 10 --s1 3 --n1 30 --m2 11 --s2 3 --n2 30 --level 0.95 --mode student_t`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := opts.request()
			if err != nil {
				return err
			}
			req.Group1, req.Group2 = g1.summary(), g2.summary()

			svc, err := newService()
			if err != nil {
				return err
			}
			a, err := svc.Analyze(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printAnalysis(cmd.OutOrStdout(), &app.SampleAnalysis{Analysis: a}, opts.format)
		},
	}

	registerGroup(cmd, &g1, 1)
	registerGroup(cmd, &g2, 2)
	opts.register(cmd)
	return cmd
}

type sheetFlags struct {
	groupColumn string
	valueColumn string
	columns     []string
	sheet       string
}

func (f *sheetFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.groupColumn, "group-column", "", "Column holding the group label (long layout)")
	cmd.Flags().StringVar(&f.valueColumn, "value-column", "", "Column holding the observation (long layout)")
	cmd.Flags().StringSliceVar(&f.columns, "columns", nil, "Two value columns, one per group (wide layout)")
	cmd.Flags().StringVar(&f.sheet, "sheet", "", "Worksheet name (xlsx only; default first sheet)")
}

func (f *sheetFlags) spec() excel.ColumnSpec {
	return excel.ColumnSpec{
		GroupColumn: f.groupColumn,
		ValueColumn: f.valueColumn,
		Columns:     f.columns,
		Sheet:       f.sheet,
	}
}

func analyzeFile(ctx context.Context, path string, sheet sheetFlags, opts analysisFlags) (*app.SampleAnalysis, error) {
	req, err := opts.request()
	if err != nil {
		return nil, err
	}
	spec := sheet.spec()
	groups, err := excel.NewDataReader(path).ReadGroups(spec)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	svc, err := newService()
	if err != nil {
		return nil, err
	}
	return svc.AnalyzeSamples(ctx, groups, req)
}

func newFileCmd() *cobra.Command {
	var sheet sheetFlags
	var opts analysisFlags

	cmd := &cobra.Command{
		Use:   "file [path]",
		Short: "Run a Welch t-test on raw observations from an xlsx or csv file",
		Long: `Summarize two groups of raw observations from a spreadsheet and test them.

Long layout:  welch file data.xlsx --group-column arm --value-column score
Wide layout:  welch file data.csv --columns control,treatment`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sa, err := analyzeFile(cmd.Context(), args[0], sheet, opts)
			if err != nil {
				return err
			}
			return printAnalysis(cmd.OutOrStdout(), sa, opts.format)
		},
	}

	sheet.register(cmd)
	opts.register(cmd)
	return cmd
}

func newChartCmd() *cobra.Command {
	var sheet sheetFlags
	var opts analysisFlags
	var out, panel string

	cmd := &cobra.Command{
		Use:   "chart [path]",
		Short: "Render the interval fan chart for a spreadsheet analysis",
		Long: `Analyze a spreadsheet like "file" and write the fan chart to --out.
The image format follows the output extension (.svg or .png).

Example: welch chart data.xlsx --group-column arm --value-column score --out fan.png --panel difference`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := chart.ParseFormat(strings.TrimPrefix(filepath.Ext(out), "."))
			if err != nil {
				return err
			}
			p, err := chart.ParsePanel(panel)
			if err != nil {
				return err
			}
			sa, err := analyzeFile(cmd.Context(), args[0], sheet, opts)
			if err != nil {
				return err
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", out, err)
			}
			defer f.Close()

			svc, err := newService()
			if err != nil {
				return err
			}
			if err := svc.RenderChart(f, sa.Analysis, p, format); err != nil {
				return err
			}
			_, _ = color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Wrote %s chart to %s\n", p, out)
			return nil
		},
	}

	sheet.register(cmd)
	opts.register(cmd)
	cmd.Flags().StringVar(&out, "out", "welch.svg", "Output image path (.svg or .png)")
	cmd.Flags().StringVar(&panel, "panel", "groups", "Chart panel: groups|difference")
	return cmd
}

// printAnalysis writes sa in the requested format. Profiles are only present
// for analyses of raw observations.
func printAnalysis(w io.Writer, sa *app.SampleAnalysis, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if sa.Profiles[0].Group.SampleSize == 0 {
			return enc.Encode(sa.Analysis)
		}
		return enc.Encode(sa)
	case "markdown", "":
		_, err := fmt.Fprintln(w, sa.Narrative)
		return err
	case "text":
		printText(w, sa.Analysis)
		if sa.Profiles[0].Group.SampleSize > 0 {
			printProfiles(w, sa.Profiles)
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q (use markdown, json or text)", format)
	}
}

// printText writes a compact terminal summary of a.
func printText(w io.Writer, a *analysis.Analysis) {
	cyan := color.New(color.FgCyan)
	dim := color.New(color.Faint)
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)

	r := a.Result
	level := a.Hypothesis.Level()
	_, _ = cyan.Fprintf(w, "%s vs %s\n", a.Group1.DisplayName("Group 1"), a.Group2.DisplayName("Group 2"))
	_, _ = dim.Fprintf(w, "null difference %g, reporting level %s, p-value mode %s\n\n",
		a.Hypothesis.NullDifference, level.Percent(), a.PValueMode)

	fmt.Fprintf(w, "  t      %.4f\n", r.TStatistic)
	fmt.Fprintf(w, "  df     %.2f\n", r.DegreesOfFreedom)
	fmt.Fprintf(w, "  p      %.4f\n", a.PValue)
	if b, ok := a.Intervals.Bound(stats.SubjectDifference, level); ok {
		fmt.Fprintf(w, "  CI     [%.4f, %.4f] (%s)\n", b.Lower, b.Upper, level.Percent())
	}
	fmt.Fprintf(w, "  d      %.4f (%s)\n", r.CohensD, a.EffectSize)
	fmt.Fprintf(w, "  power  %.1f%%\n\n", r.Power*100)

	if a.Significant {
		_, _ = green.Fprintf(w, "Reject the null hypothesis at alpha = %g\n", a.Hypothesis.Alpha())
	} else {
		_, _ = red.Fprintf(w, "Fail to reject the null hypothesis at alpha = %g\n", a.Hypothesis.Alpha())
	}
}

func printProfiles(w io.Writer, profiles [2]summary.Profile) {
	_, _ = color.New(color.FgCyan).Fprintln(w, "\nSample profile")
	fmt.Fprintf(w, "  %-16s %6s %10s %10s %10s %10s %10s\n", "group", "n", "min", "q25", "median", "q75", "max")
	for i, p := range profiles {
		name := p.Group.DisplayName(fmt.Sprintf("Group %d", i+1))
		fmt.Fprintf(w, "  %-16s %6d %10.4g %10.4g %10.4g %10.4g %10.4g\n",
			name, p.Group.SampleSize, p.Min, p.Q25, p.Median, p.Q75, p.Max)
	}
}
