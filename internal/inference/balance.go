package inference

import (
	"regexp"
	"sort"
	"strings"
	"time"
)

// parenOpt tolerates parenthetical fragments such as "(unaudited)" or
// "(in thousands)" between a heading and its dates.
const parenOpt = `(?:\s*\([^)]{0,80}\))?`

// Statement heading bodies, upper and title case. Condensed/consolidated
// prefixes are applied in both orders when building the pattern lists.
var (
	upperBodies = []string{
		`BALANCE\s+SHEETS?`,
		`STATEMENTS?\s+OF\s+FINANCIAL\s+POSITION`,
		`STATEMENTS?\s+OF\s+(?:FINANCIAL\s+)?CONDITION`,
		`STATEMENTS?\s+OF\s+ASSETS?\s+(?:AND|&)\s+LIABILITIES`,
	}
	titleBodies = []string{
		`Balance\s+Sheets?`,
		`Statements?\s+of\s+Financial\s+Position`,
		`Statements?\s+of\s+(?:Financial\s+)?Condition`,
		`Statements?\s+of\s+Assets?\s+(?:and|&)\s+Liabilities`,
	}
	upperPrefixes = []string{
		`CONDENSED\s+CONSOLIDATED\s+`,
		`CONSOLIDATED\s+CONDENSED\s+`,
		`CONSOLIDATED\s+`,
		`CONDENSED\s+`,
		``,
	}
	titlePrefixes = []string{
		`Condensed\s+Consolidated\s+`,
		`Consolidated\s+Condensed\s+`,
		`Consolidated\s+`,
		`Condensed\s+`,
		``,
	}
)

func buildHeadPatterns(prefixes, bodies []string) []*regexp.Regexp {
	var out []*regexp.Regexp
	for _, body := range bodies {
		for _, prefix := range prefixes {
			out = append(out, regexp.MustCompile(`\b`+prefix+body+`\b`))
		}
	}
	return out
}

var (
	upperHeadPatterns = buildHeadPatterns(upperPrefixes, upperBodies)
	titleHeadPatterns = buildHeadPatterns(titlePrefixes, titleBodies)

	// Anchored forms: a condensed/consolidated marker within a short span of
	// the statement name, for headings broken across layout artifacts.
	anchorHeadPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?s)\b(?:CONSOLIDATED|CONDENSED)\b.{0,100}\bBALANCE\s+SHEETS?\b`),
		regexp.MustCompile(`(?s)\b(?:CONSOLIDATED|CONDENSED)\b.{0,100}\bSTATEMENTS?\s+OF\s+FINANCIAL\s+POSITION\b`),
		regexp.MustCompile(`(?s)\b(?:CONSOLIDATED|CONDENSED)\b.{0,100}\bSTATEMENTS?\s+OF\s+(?:FINANCIAL\s+)?CONDITION\b`),
	}

	genericHeadPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:condensed\s+)?(?:consolidated\s+)?balance\s+sheets?\b`),
		regexp.MustCompile(`(?i)\b(?:condensed\s+)?(?:consolidated\s+)?statements?\s+of\s+financial\s+position\b`),
		regexp.MustCompile(`(?i)\b(?:condensed\s+)?(?:consolidated\s+)?statements?\s+of\s+(?:financial\s+)?condition\b`),
		regexp.MustCompile(`(?i)\b(?:condensed\s+)?(?:consolidated\s+)?statements?\s+of\s+assets?\s+(?:and|&)\s+liabilities\b`),
	}
)

var headingTokens = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bCONSOLIDATED\b`),
	regexp.MustCompile(`(?i)\bCONDENSED\b`),
	regexp.MustCompile(`(?i)\bBALANCE\b`),
	regexp.MustCompile(`(?i)\bSHEETS\b`),
	regexp.MustCompile(`(?i)\bSTATEMENTS\b`),
	regexp.MustCompile(`(?i)\bFINANCIAL\b`),
	regexp.MustCompile(`(?i)\bPOSITION\b`),
	regexp.MustCompile(`(?i)\bCONDITION\b`),
	regexp.MustCompile(`(?i)\bASSETS\b`),
	regexp.MustCompile(`(?i)\bLIABILITIES\b`),
}

func headingScore(slice string, base float64) float64 {
	score := base
	for _, tok := range headingTokens {
		if tok.MatchString(slice) {
			score++
		}
	}
	return score + 0.001*float64(len(slice))
}

type headingMatch struct {
	score      float64
	start, end int
}

// balanceHeadings locates candidate statement headings, most heading-like
// first: upper-case beats anchored beats title case, with generic
// case-insensitive forms only as a last resort.
func balanceHeadings(text string) []headingMatch {
	var out []headingMatch
	add := func(patterns []*regexp.Regexp, base float64) {
		for _, p := range patterns {
			for _, loc := range p.FindAllStringIndex(text, -1) {
				out = append(out, headingMatch{
					score: headingScore(text[loc[0]:loc[1]], base),
					start: loc[0],
					end:   loc[1],
				})
			}
		}
	}

	add(upperHeadPatterns, 30)
	add(anchorHeadPatterns, 25)
	add(titleHeadPatterns, 20)
	if len(out) == 0 {
		add(genericHeadPatterns, 15)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		return out[i].start < out[j].start
	})
	return out
}

// asOfPatterns match "<heading> [ (unaudited) ] as of <d1> and <d2>" for the
// four statement heading families.
var asOfPatterns = func() []*regexp.Regexp {
	headings := []string{
		`balance\s+sheets?`,
		`statements?\s+of\s+financial\s+position`,
		`statements?\s+of\s+(?:financial\s+)?condition`,
		`statements?\s+of\s+assets?\s+(?:and|&)\s+liabilities`,
	}
	out := make([]*regexp.Regexp, 0, len(headings))
	for _, h := range headings {
		out = append(out, regexp.MustCompile(
			`(?i)\b(?:condensed\s+)?(?:consolidated\s+)?`+h+
				parenOpt+`\s*`+
				`as\s+(?:of|at)\s+`+
				`(?P<d1>`+dateAny+`)`+
				parenOpt+`\s*`+
				`(?:,)?\s*(?:and|,?\s*and)\s*`+
				`(?P<d2>`+dateAny+`)`+
				parenOpt+`?`))
	}
	return out
}()

// assetsNearRe gates heading windows: a real statement has its Assets line
// nearby, a table-of-contents entry does not.
var assetsNearRe = regexp.MustCompile(`(?i)\b(?:total\s+)?assets\b[:\s]?`)

// stopHeadPatterns end a balance-sheet window at the next statement heading.
var stopHeadPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:CONSOLIDATED\s+)?STATEMENTS?\s+OF\s+OPERATIONS\b`),
	regexp.MustCompile(`(?i)\b(?:CONSOLIDATED\s+)?STATEMENTS?\s+OF\s+INCOME\b`),
	regexp.MustCompile(`(?i)\b(?:CONSOLIDATED\s+)?STATEMENTS?\s+OF\s+CASH\s+FLOWS\b`),
	regexp.MustCompile(`(?i)\b(?:CONSOLIDATED\s+)?STATEMENTS?\s+OF\s+(?:SHAREHOLDERS'|STOCKHOLDERS')?\s*EQUITY\b`),
	regexp.MustCompile(`(?i)\b(?:CONSOLIDATED\s+)?STATEMENTS?\s+OF\s+CHANGES\s+IN\s+(?:EQUITY|SHAREHOLDERS'|STOCKHOLDERS')\b`),
	regexp.MustCompile(`(?i)\bNOTES\s+TO\s+(?:CONDENSED\s+)?(?:CONSOLIDATED\s+)?FINANCIAL\s+STATEMENTS\b`),
}

func truncateAtNextSection(block string) string {
	cut := len(block)
	for _, p := range stopHeadPatterns {
		if loc := p.FindStringIndex(block); loc != nil && loc[0] < cut {
			cut = loc[0]
		}
	}
	return block[:cut]
}

// splitDateRe re-merges "Month DD ... YYYY" dates broken apart by inserted
// parentheticals such as "(Unaudited)".
var splitDateRe = regexp.MustCompile(`(?is)\b(?P<mon>` + monthWordCap[1:len(monthWordCap)-1] + `)\s+(?P<day>\d{1,2})\s*,?\s*` +
	`(?:\([^)]{0,60}\)\s*){0,2}(?:,?\s*)?` +
	`(?P<year>\d{4})\b`)

var (
	monthDayNoYearRe = regexp.MustCompile(`(?i)\b` + monthWordCap + `\s+\d{1,2}(?:,)?\b`)
	monthOnlyRe      = regexp.MustCompile(`(?i)\b` + monthWordCap + `\b`)
)

// fyContextRe marks fiscal-year language near a candidate date.
var fyContextRe = regexp.MustCompile(`(?i)\b(fiscal\s+year|year[-\s]*end(?:ed)?)\b`)

// dateCandidate is one date found inside a heading window.
type dateCandidate struct {
	raw        string
	date       time.Time // zero when only a month is known
	month      int
	start, end int
}

// extractSplitDates finds re-merged split dates in a block, deduplicated on
// their rendered form.
func extractSplitDates(block string, limit int) []dateCandidate {
	var out []dateCandidate
	seen := make(map[string]bool)
	monIdx := splitDateRe.SubexpIndex("mon")
	dayIdx := splitDateRe.SubexpIndex("day")
	yearIdx := splitDateRe.SubexpIndex("year")

	for _, m := range splitDateRe.FindAllStringSubmatchIndex(block, -1) {
		mon := block[m[2*monIdx]:m[2*monIdx+1]]
		day := block[m[2*dayIdx]:m[2*dayIdx+1]]
		year := block[m[2*yearIdx]:m[2*yearIdx+1]]
		rendered := mon + " " + day + ", " + year
		if seen[rendered] {
			continue
		}
		seen[rendered] = true
		dt, ok := ParseAnyDate(rendered)
		if !ok {
			continue
		}
		out = append(out, dateCandidate{
			raw:   rendered,
			date:  dt,
			month: int(dt.Month()),
			start: m[0],
			end:   m[1],
		})
		if len(out) >= limit {
			break
		}
	}
	return out
}

// extractBlockDates returns all date candidates in a window: merged split
// dates first, then plain dates and --MM-DD forms that do not overlap them.
func extractBlockDates(block string, limit int) []dateCandidate {
	out := extractSplitDates(block, limit)

	overlaps := func(s, e int) bool {
		for _, c := range out {
			if !(e <= c.start || s >= c.end) {
				return true
			}
		}
		return false
	}

	for _, loc := range dateAnyOrMDRe.FindAllStringIndex(block, -1) {
		if len(out) >= limit {
			break
		}
		if overlaps(loc[0], loc[1]) {
			continue
		}
		raw := strings.TrimSpace(block[loc[0]:loc[1]])
		if mm := monthFromDashMD(raw); mm != 0 {
			out = append(out, dateCandidate{raw: raw, month: mm, start: loc[0], end: loc[1]})
			continue
		}
		if dt, ok := ParseAnyDate(raw); ok {
			out = append(out, dateCandidate{
				raw:   raw,
				date:  dt,
				month: int(dt.Month()),
				start: loc[0],
				end:   loc[1],
			})
		}
	}
	return out
}

// scoreCandidate ranks a dated FYE candidate: quarter-shaped month distances
// (3, 6, 9) score highest, month-end days and fiscal-year context add more.
func scoreCandidate(c dateCandidate, periodMonth int, ctx string) float64 {
	score := 0.0
	if periodMonth != 0 {
		dist := monthDistance(periodMonth, c.month)
		switch {
		case dist == 3 || dist == 6 || dist == 9:
			score += 6
		case dist >= 2:
			score += 3
		}
		if dist != 0 && dist != 1 && dist != 11 {
			score += 2
		}
	}
	if !c.date.IsZero() && c.date.Day() >= 28 {
		score++
	}
	if fyContextRe.MatchString(ctx) {
		score += 4
	}
	return score
}

// scoreMonthOnly ranks a month-only candidate with the same distance and
// context heuristics, minus the month-end bonus a full date would earn.
func scoreMonthOnly(month, periodMonth int, ctx string) float64 {
	score := 0.0
	if periodMonth != 0 {
		dist := monthDistance(periodMonth, month)
		switch {
		case dist == 3 || dist == 6 || dist == 9:
			score += 6
		case dist >= 2:
			score += 3
		}
		if dist != 0 && dist != 1 && dist != 11 {
			score += 2
		}
	}
	if fyContextRe.MatchString(ctx) {
		score += 4
	}
	return score
}

func contextAround(block string, start, end int) string {
	lo := start - 60
	if lo < 0 {
		lo = 0
	}
	hi := end + 60
	if hi > len(block) {
		hi = len(block)
	}
	return block[lo:hi]
}

// ProbeFYEFromBalanceAsOf scans the whole text for "as of <d1> and <d2>"
// statement sentences, returning the first month outside the ±1-month
// exclusion around the known period month. The second date is preferred: it
// is the prior fiscal-year-end comparative and carries the FYE month.
func ProbeFYEFromBalanceAsOf(text string, periodMonth int) (int, bool) {
	bad := nearMonths(periodMonth)
	for _, p := range asOfPatterns {
		d1Idx := p.SubexpIndex("d1")
		d2Idx := p.SubexpIndex("d2")
		for _, m := range p.FindAllStringSubmatchIndex(text, -1) {
			for _, gi := range []int{d2Idx, d1Idx} {
				raw := text[m[2*gi]:m[2*gi+1]]
				dt, ok := ParseAnyDate(raw)
				if !ok {
					continue
				}
				mm := int(dt.Month())
				if !bad[mm] {
					return mm, true
				}
			}
		}
	}
	return 0, false
}

// ProbeFYEFromBalanceWindow scans bounded windows after each balance-sheet
// heading. Within a window the as-of sentence is tried first, then all date
// candidates are scored; ties break to the earlier position.
func ProbeFYEFromBalanceWindow(text string, periodMonth, windowLo, windowHi int) (int, bool) {
	bad := nearMonths(periodMonth)

	for _, head := range balanceHeadings(text) {
		start := head.end

		gateLen := windowLo
		if gateLen < 800 {
			gateLen = 800
		}
		gate := sliceFrom(text, start, gateLen)
		if !assetsNearRe.MatchString(gate) {
			continue // table-of-contents hit
		}

		block := truncateAtNextSection(sliceFrom(text, start, windowHi))

		if mm, ok := asOfInBlock(block, periodMonth, bad); ok {
			return mm, true
		}

		type scored struct {
			score float64
			pos   int
			month int
		}
		var cands []scored
		for _, c := range extractBlockDates(block, 16) {
			if c.month == 0 || bad[c.month] {
				continue
			}
			ctx := contextAround(block, c.start, c.end)
			cands = append(cands, scored{
				score: scoreCandidate(c, periodMonth, ctx),
				pos:   c.start,
				month: c.month,
			})
		}
		if len(cands) > 0 {
			sort.SliceStable(cands, func(i, j int) bool {
				if cands[i].score != cands[j].score {
					return cands[i].score > cands[j].score
				}
				return cands[i].pos < cands[j].pos
			})
			return cands[0].month, true
		}
	}
	return 0, false
}

// asOfInBlock applies the as-of sentence patterns within one heading window.
// When both dates survive the exclusion the better-scoring one wins.
func asOfInBlock(block string, periodMonth int, bad map[int]bool) (int, bool) {
	for _, p := range asOfPatterns {
		m := p.FindStringSubmatchIndex(block)
		if m == nil {
			continue
		}
		d1Idx := p.SubexpIndex("d1")
		d2Idx := p.SubexpIndex("d2")

		var cands []dateCandidate
		for _, gi := range []int{d1Idx, d2Idx} {
			raw := block[m[2*gi]:m[2*gi+1]]
			dt, ok := ParseAnyDate(raw)
			if !ok {
				continue
			}
			mm := int(dt.Month())
			if bad[mm] {
				continue
			}
			cands = append(cands, dateCandidate{
				raw:   raw,
				date:  dt,
				month: mm,
				start: m[2*gi],
				end:   m[2*gi+1],
			})
		}
		switch len(cands) {
		case 1:
			return cands[0].month, true
		case 2:
			s0 := scoreCandidate(cands[0], periodMonth, block)
			s1 := scoreCandidate(cands[1], periodMonth, block)
			if s1 > s0 {
				return cands[1].month, true
			}
			return cands[0].month, true
		}
		return 0, false
	}
	return 0, false
}

// ProbeFYEMonthOnly is the last balance-sheet resort for filings whose
// heading window shows a month but no usable year (split across table
// cells). "Month DD" candidates are preferred; bare month names score one
// point lower. Per month only the best-scoring, earliest hit is kept;
// highest score wins, ties to the earlier position.
func ProbeFYEMonthOnly(text string, periodMonth, windowLo, windowHi int) (int, bool) {
	bad := nearMonths(periodMonth)

	for _, head := range balanceHeadings(text) {
		start := head.end

		gateLen := windowLo
		if gateLen < 800 {
			gateLen = 800
		}
		if !assetsNearRe.MatchString(sliceFrom(text, start, gateLen)) {
			continue
		}

		block := sliceFrom(text, start, windowHi)

		type scored struct {
			score float64
			pos   int
			month int
		}
		var cands []scored

		collect := func(re *regexp.Regexp, penalty float64) {
			for _, m := range re.FindAllStringSubmatchIndex(block, -1) {
				mm := MonthFromWord(block[m[2]:m[3]])
				if mm == 0 || bad[mm] {
					continue
				}
				ctx := contextAround(block, m[0], m[1])
				cands = append(cands, scored{
					score: scoreMonthOnly(mm, periodMonth, ctx) - penalty,
					pos:   m[0],
					month: mm,
				})
			}
		}

		collect(monthDayNoYearRe, 0)
		if len(cands) == 0 {
			collect(monthOnlyRe, 1)
		}
		if len(cands) == 0 {
			continue
		}

		best := make(map[int]scored)
		for _, c := range cands {
			cur, seen := best[c.month]
			if !seen || c.score > cur.score || (c.score == cur.score && c.pos < cur.pos) {
				best[c.month] = c
			}
		}
		final := make([]scored, 0, len(best))
		for _, c := range best {
			final = append(final, c)
		}
		sort.SliceStable(final, func(i, j int) bool {
			if final[i].score != final[j].score {
				return final[i].score > final[j].score
			}
			return final[i].pos < final[j].pos
		})
		return final[0].month, true
	}
	return 0, false
}

func sliceFrom(text string, start, length int) string {
	if start >= len(text) {
		return ""
	}
	end := start + length
	if end > len(text) {
		end = len(text)
	}
	return text[start:end]
}
