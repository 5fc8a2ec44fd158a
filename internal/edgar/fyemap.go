package edgar

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/busfactor-cli/internal/fetcher"
)

// CIKYear keys the fiscal-year-end map: one entry per company per fiscal year.
type CIKYear struct {
	CIK10 string
	FYear int
}

// FYE is a company's fiscal-year-end fact for one fiscal year, with the
// structured source that reported it.
type FYE struct {
	Month  int
	Date   time.Time
	Form   string
	Accn   string
	Source string // "companyfacts", "submissions", or "cache"
}

// FYECache stores resolved FYE facts between runs. Implementations must be
// safe for sequential use from the build loop.
type FYECache interface {
	Get(cikYear CIKYear) (FYE, bool, error)
	Put(cikYear CIKYear, fye FYE) error
}

// Client queries the SEC structured APIs for fiscal-year-end reference data.
type Client struct {
	fetcher *fetcher.HTTPFetcher
	sleep   time.Duration
	cache   FYECache
}

// NewClient creates an EDGAR API client. cache may be nil.
func NewClient(f *fetcher.HTTPFetcher, sleep time.Duration, cache FYECache) *Client {
	return &Client{fetcher: f, sleep: sleep, cache: cache}
}

// companyFacts is the subset of the company facts payload the FYE map needs:
// the DEI DocumentPeriodEndDate fact values.
type companyFacts struct {
	Facts struct {
		DEI struct {
			DocumentPeriodEndDate struct {
				Units map[string][]factValue `json:"units"`
			} `json:"DocumentPeriodEndDate"`
		} `json:"dei"`
	} `json:"facts"`
}

type factValue struct {
	End   string `json:"end"`
	Accn  string `json:"accn"`
	FY    *int   `json:"fy"`
	FP    string `json:"fp"`
	Form  string `json:"form"`
	Filed string `json:"filed"`
}

// submissionsPayload is the subset of a submissions JSON page used for the
// fallback path.
type submissionsPayload struct {
	Filings struct {
		Recent submissionColumns `json:"recent"`
		Files  []struct {
			Name string `json:"name"`
		} `json:"files"`
	} `json:"filings"`
}

type submissionColumns struct {
	AccessionNumber []string `json:"accessionNumber"`
	FilingDate      []string `json:"filingDate"`
	Form            []string `json:"form"`
	ReportDate      []string `json:"reportDate"`
}

// BuildFYEMap resolves the fiscal-year-end month and date for every
// (company, fiscal year) pair, preferring company facts and falling back to
// the submissions feed. Pairs are resolved company by company so one fetch
// covers all of a company's years.
func (c *Client) BuildFYEMap(ctx context.Context, pairs []CIKYear) (map[CIKYear]FYE, error) {
	out := make(map[CIKYear]FYE, len(pairs))

	need := make(map[string][]int)
	for _, p := range pairs {
		if p.CIK10 == "" || p.FYear == 0 {
			continue
		}
		if c.cache != nil {
			if fye, ok, err := c.cache.Get(p); err == nil && ok {
				fye.Source = "cache"
				out[p] = fye
				continue
			}
		}
		need[p.CIK10] = append(need[p.CIK10], p.FYear)
	}

	ciks := make([]string, 0, len(need))
	for cik := range need {
		ciks = append(ciks, cik)
	}
	sort.Strings(ciks)

	for _, cik10 := range ciks {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		byYear := c.fyeFromCompanyFacts(ctx, cik10)
		if len(byYear) == 0 {
			byYear = c.fyeFromSubmissions(ctx, cik10)
		}

		for _, fyear := range need[cik10] {
			fye, ok := byYear[fyear]
			if !ok {
				continue
			}
			key := CIKYear{CIK10: cik10, FYear: fyear}
			out[key] = fye
			if c.cache != nil {
				if err := c.cache.Put(key, fye); err != nil {
					zap.L().Warn("edgar: fye cache write failed",
						zap.String("cik", cik10),
						zap.Int("fyear", fyear),
						zap.Error(err),
					)
				}
			}
		}

		c.pause(ctx)
	}

	return out, nil
}

// fyeFromCompanyFacts extracts one FY-period end date per fiscal year from
// the company facts API, keeping the latest-filed annual form.
func (c *Client) fyeFromCompanyFacts(ctx context.Context, cik10 string) map[int]FYE {
	var facts companyFacts
	url := fmt.Sprintf("https://data.sec.gov/api/xbrl/companyfacts/CIK%s.json", cik10)
	if err := c.fetcher.GetJSON(ctx, url, &facts); err != nil {
		zap.L().Debug("edgar: company facts unavailable",
			zap.String("cik", cik10), zap.Error(err))
		return nil
	}

	type dated struct {
		fye   FYE
		filed string
	}
	best := make(map[int]dated)
	for _, values := range facts.Facts.DEI.DocumentPeriodEndDate.Units {
		for _, v := range values {
			if v.FP != "FY" || v.FY == nil || v.End == "" || !IsAnnualForm(v.Form) {
				continue
			}
			end, err := time.Parse("2006-01-02", v.End)
			if err != nil {
				continue
			}
			cur, seen := best[*v.FY]
			if seen && v.Filed <= cur.filed {
				continue
			}
			best[*v.FY] = dated{
				fye: FYE{
					Month:  int(end.Month()),
					Date:   end,
					Form:   v.Form,
					Accn:   v.Accn,
					Source: "companyfacts",
				},
				filed: v.Filed,
			}
		}
	}

	out := make(map[int]FYE, len(best))
	for fy, d := range best {
		out[fy] = d.fye
	}
	return out
}

// fyeFromSubmissions walks the submissions feed (recent page plus any older
// pages) for annual forms, deriving the fiscal year from the report date.
func (c *Client) fyeFromSubmissions(ctx context.Context, cik10 string) map[int]FYE {
	var base submissionsPayload
	url := fmt.Sprintf("https://data.sec.gov/submissions/CIK%s.json", cik10)
	if err := c.fetcher.GetJSON(ctx, url, &base); err != nil {
		zap.L().Debug("edgar: submissions unavailable",
			zap.String("cik", cik10), zap.Error(err))
		return nil
	}

	type dated struct {
		fye   FYE
		filed string
	}
	best := make(map[int]dated)

	collect := func(cols submissionColumns) {
		for i, form := range cols.Form {
			if !IsAnnualForm(form) {
				continue
			}
			var report, filed, accn string
			if i < len(cols.ReportDate) {
				report = cols.ReportDate[i]
			}
			if i < len(cols.FilingDate) {
				filed = cols.FilingDate[i]
			}
			if i < len(cols.AccessionNumber) {
				accn = cols.AccessionNumber[i]
			}
			if len(report) < 4 {
				continue
			}
			fyear, err := strconv.Atoi(report[:4])
			if err != nil {
				continue
			}
			end, err := time.Parse("2006-01-02", report)
			if err != nil {
				continue
			}
			cur, seen := best[fyear]
			if seen && filed <= cur.filed {
				continue
			}
			best[fyear] = dated{
				fye: FYE{
					Month:  int(end.Month()),
					Date:   end,
					Form:   form,
					Accn:   accn,
					Source: "submissions",
				},
				filed: filed,
			}
		}
	}

	collect(base.Filings.Recent)
	for _, older := range base.Filings.Files {
		if older.Name == "" {
			continue
		}
		var page struct {
			Filings struct {
				Recent submissionColumns `json:"recent"`
			} `json:"filings"`
		}
		pageURL := "https://data.sec.gov/submissions/" + older.Name
		if err := c.fetcher.GetJSON(ctx, pageURL, &page); err != nil {
			continue
		}
		collect(page.Filings.Recent)
		c.pause(ctx)
	}

	out := make(map[int]FYE, len(best))
	for fy, d := range best {
		out[fy] = d.fye
	}
	return out
}

func (c *Client) pause(ctx context.Context) {
	if c.sleep <= 0 {
		return
	}
	t := time.NewTimer(c.sleep)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// MarshalFYETable renders the FYE map as table rows for the
// FYE_by_company_year reference output, sorted by CIK then fiscal year.
func MarshalFYETable(m map[CIKYear]FYE) [][]string {
	keys := make([]CIKYear, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].CIK10 != keys[j].CIK10 {
			return keys[i].CIK10 < keys[j].CIK10
		}
		return keys[i].FYear < keys[j].FYear
	})

	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		fye := m[k]
		var date string
		if !fye.Date.IsZero() {
			date = fye.Date.Format("2006-01-02")
		}
		var month string
		if fye.Month >= 1 && fye.Month <= 12 {
			month = strconv.Itoa(fye.Month)
		}
		rows = append(rows, []string{
			k.CIK10,
			strconv.Itoa(k.FYear),
			date,
			fye.Form,
			fye.Accn,
			fye.Source,
			month,
		})
	}
	return rows
}

// FYETableHeader is the header for MarshalFYETable output.
var FYETableHeader = []string{"cik10", "fyear", "fye_date", "form", "accn", "source", "fye_month_api"}
