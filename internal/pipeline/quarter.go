package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/sells-group/busfactor-cli/internal/edgar"
	"github.com/sells-group/busfactor-cli/internal/fetcher"
	"github.com/sells-group/busfactor-cli/internal/inference"
	"github.com/sells-group/busfactor-cli/internal/model"
	"github.com/sells-group/busfactor-cli/internal/tabular"
)

// QuarterOptions configures one quarter-inference run.
type QuarterOptions struct {
	OutPrefix string
	Rate      time.Duration // pause between per-document fetches
}

// QuarterRunner executes the cascading quarter pipeline: submission map,
// structured FYE APIs, document probing, then the quarter computation.
type QuarterRunner struct {
	fetch  *fetcher.HTTPFetcher
	edgar  *edgar.Client
	engine *inference.Engine
	opts   QuarterOptions
}

// NewQuarterRunner assembles a runner from its stage clients.
func NewQuarterRunner(f *fetcher.HTTPFetcher, e *edgar.Client, eng *inference.Engine, opts QuarterOptions) *QuarterRunner {
	return &QuarterRunner{fetch: f, edgar: e, engine: eng, opts: opts}
}

// Outputs lists the files a run writes, in write order.
func (r *QuarterRunner) Outputs() []string {
	p := r.opts.OutPrefix
	return []string{
		p + ".step1_sub.csv",
		p + ".step2_fye_api.csv",
		p + ".FYE_by_company_year.csv",
		p + ".step3_html.csv",
		p + ".step4_compute.csv",
		p + ".final.csv",
	}
}

// Run executes all stages over the filings table at inputPath, using the
// financial-statement submission map at submapPath for the first stage.
func (r *QuarterRunner) Run(ctx context.Context, inputPath, submapPath string) error {
	original, err := tabular.ReadFile(ctx, inputPath)
	if err != nil {
		return eris.Wrap(err, "pipeline: read filings table")
	}
	work := original.Clone()
	filings, err := ParseFilings(work)
	if err != nil {
		return err
	}
	counts := inference.StageCounts{}

	if err := r.stepSubmissionMap(ctx, filings, submapPath, counts); err != nil {
		return err
	}
	syncDerived(work, filings)
	if err := r.writeStep(work, filings, ".step1_sub.csv", countFilledQuarter(filings)); err != nil {
		return err
	}

	if err := r.stepFYEAPI(ctx, filings); err != nil {
		return err
	}
	syncDerived(work, filings)
	if err := r.writeStep(work, filings, ".step2_fye_api.csv", countFilledQuarter(filings)); err != nil {
		return err
	}

	r.stepDocumentProbe(ctx, filings, counts)
	syncDerived(work, filings)
	if err := r.writeStep(work, filings, ".step3_html.csv", countFilledQuarter(filings)); err != nil {
		return err
	}

	filled4, chosen := stepComputeQuarter(filings, counts)
	syncDerived(work, filings)
	syncComputed(work, filings, chosen)
	if err := r.writeStep(work, filings, ".step4_compute.csv", filled4); err != nil {
		return err
	}

	if err := finalize(original, filings, chosen, r.opts.OutPrefix+".final.csv"); err != nil {
		return err
	}

	fields := make([]zap.Field, 0, len(counts))
	for stage, n := range counts {
		fields = append(fields, zap.Int(string(stage), n))
	}
	zap.L().Info("quarter pipeline finished", fields...)
	return nil
}

func (r *QuarterRunner) writeStep(work *tabular.Table, filings []*model.Filing, suffix string, filled int) error {
	out := work.Clone()
	out.AppendStatsRow(colQuarter, filled, countEmptyQuarter(filings))
	path := r.opts.OutPrefix + suffix
	if err := out.WriteFile(path); err != nil {
		return eris.Wrapf(err, "pipeline: write %s", path)
	}
	return nil
}

// stepSubmissionMap resolves quarters and period ends from the quarterly
// financial-statement submission table.
func (r *QuarterRunner) stepSubmissionMap(ctx context.Context, filings []*model.Filing, submapPath string, counts inference.StageCounts) error {
	subMap, err := edgar.LoadSubmissionMap(ctx, submapPath)
	if err != nil {
		return err
	}
	for _, f := range filings {
		entry, ok := subMap.Lookup(f.Accession)
		if !ok {
			continue
		}
		f.PeriodEndSub = entry.PeriodEnd
		if f.Quarter == "" {
			if q, ok := edgar.QuarterFromFP(entry.FP); ok {
				f.Quarter = q
				f.QuarterStage = string(inference.StageSubmission)
				counts.Add(inference.StageSubmission)
			}
		}
	}
	return nil
}

// stepFYEAPI merges structured fiscal-year-end facts into the filings and
// writes the per-company reference table with its HTTP status audit row.
func (r *QuarterRunner) stepFYEAPI(ctx context.Context, filings []*model.Filing) error {
	seen := make(map[edgar.CIKYear]bool)
	var pairs []edgar.CIKYear
	for _, f := range filings {
		key := edgar.CIKYear{CIK10: edgar.PadCIK(f.CIK), FYear: atoiSafe(f.FYear)}
		if key.CIK10 == "" || key.FYear == 0 || seen[key] {
			continue
		}
		seen[key] = true
		pairs = append(pairs, key)
	}

	fyeMap, err := r.edgar.BuildFYEMap(ctx, pairs)
	if err != nil {
		return err
	}

	for _, f := range filings {
		key := edgar.CIKYear{CIK10: edgar.PadCIK(f.CIK), FYear: atoiSafe(f.FYear)}
		if fye, ok := fyeMap[key]; ok {
			f.FYEMonthAPI = fye.Month
			f.FYEDateAPI = fye.Date
		}
	}

	summary := r.fetch.Counter().Summary(true)
	zap.L().Info("fye api http status summary", zap.String("statuses", summary))

	ref := &tabular.Table{
		Header: append([]string(nil), edgar.FYETableHeader...),
		Rows:   edgar.MarshalFYETable(fyeMap),
	}
	statusRow := make([]string, len(ref.Header))
	statusRow[0] = "__HTTP_STATUS__"
	statusRow[len(statusRow)-1] = summary
	ref.Rows = append(ref.Rows, statusRow)

	path := r.opts.OutPrefix + ".FYE_by_company_year.csv"
	if err := ref.WriteFile(path); err != nil {
		return eris.Wrapf(err, "pipeline: write %s", path)
	}
	return nil
}

// stepDocumentProbe fetches filing documents for rows still missing a
// quarter, a period end, or any FYE month, and runs the text detectors.
func (r *QuarterRunner) stepDocumentProbe(ctx context.Context, filings []*model.Filing, counts inference.StageCounts) {
	var pending []*model.Filing
	for _, f := range filings {
		quarterMissing := f.Quarter == ""
		periodMissing := f.PeriodEndSub.IsZero() && f.PeriodEndDoc.IsZero()
		fyeMissing := f.FYEMonthDoc == 0 && f.FYEMonthAPI == 0
		if quarterMissing || periodMissing || fyeMissing {
			pending = append(pending, f)
		}
	}
	zap.L().Info("probing filing documents", zap.Int("rows", len(pending)))

	for _, f := range pending {
		if ctx.Err() != nil {
			return
		}
		r.engine.Resolve(ctx, f, counts)
		r.pause(ctx)
	}
}

func (r *QuarterRunner) pause(ctx context.Context) {
	if r.opts.Rate <= 0 {
		return
	}
	t := time.NewTimer(r.opts.Rate)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// stepComputeQuarter fills remaining quarters from the chosen FYE month
// and the effective period month. Returns the number filled and the
// chosen month per row for the audit columns.
func stepComputeQuarter(filings []*model.Filing, counts inference.StageCounts) (int, []int) {
	chosen := make([]int, len(filings))
	filled := 0
	for i, f := range filings {
		pe := f.PeriodEnd()
		pm := 0
		if !pe.IsZero() {
			pm = int(pe.Month())
		}
		chosen[i] = inference.ChooseFYEMonth(pm, f.FYEMonthDoc, f.FYEMonthAPI)

		if f.Quarter != "" || pe.IsZero() || chosen[i] == 0 {
			continue
		}
		q, ok := inference.QuarterFromMonths(inference.EffectivePeriodMonth(pe), chosen[i])
		if !ok {
			continue
		}
		f.Quarter = q
		stage := inference.StageAPI
		if f.FYEMonthDoc != 0 && chosen[i] == f.FYEMonthDoc && !(pm != 0 && f.FYEMonthDoc == pm) {
			stage = inference.Stage(f.FYEStage)
		}
		f.QuarterStage = string(stage)
		counts.Add(stage)
		filled++
	}
	return filled, chosen
}

// finalize writes the delivery CSV: the original columns plus quarter,
// periodOfReport, fye, and quarter_source, ordered by company then year.
func finalize(original *tabular.Table, filings []*model.Filing, chosen []int, path string) error {
	final := original.Clone()
	final.EnsureCol(colQuarter)
	final.EnsureCol(colPeriodOut)
	final.EnsureCol(colFYEOut)
	final.EnsureCol(colQuarterSource)

	for i, f := range filings {
		final.Set(f.Row, final.Col(colQuarter), string(f.Quarter))
		final.Set(f.Row, final.Col(colPeriodOut), formatDate(f.PeriodEnd()))
		final.Set(f.Row, final.Col(colFYEOut), formatFYE(f.FYEDateAPI, chosen[i]))
		final.Set(f.Row, final.Col(colQuarterSource), f.QuarterStage)
	}

	sortFinal(final)

	if err := final.WriteFile(path); err != nil {
		return eris.Wrapf(err, "pipeline: write %s", path)
	}
	return nil
}

// formatFYE prefers the full month/day from the structured APIs over the
// bare month number.
func formatFYE(apiDate time.Time, month int) string {
	if !apiDate.IsZero() {
		return apiDate.Format("01/02")
	}
	if month >= 1 && month <= 12 {
		return fmt.Sprintf("%02d", month)
	}
	return ""
}

// sortFinal orders rows by the company column (case-insensitive collation)
// then fiscal year. Tables without a recognizable company column keep
// their input order.
func sortFinal(t *tabular.Table) {
	sortCol := t.DetectSortColumn()
	if sortCol < 0 {
		return
	}
	fyearCol := t.Col(colFYear)
	coll := collate.New(language.English, collate.IgnoreCase)

	sort.SliceStable(t.Rows, func(a, b int) bool {
		if cmp := coll.CompareString(t.Get(a, sortCol), t.Get(b, sortCol)); cmp != 0 {
			return cmp < 0
		}
		if fyearCol >= 0 {
			return atoiSafe(t.Get(a, fyearCol)) < atoiSafe(t.Get(b, fyearCol))
		}
		return false
	})
}

func atoiSafe(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
