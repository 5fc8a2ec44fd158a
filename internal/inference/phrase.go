package inference

import "regexp"

// fyePhrasePatterns match explicit fiscal-year-end language anywhere in the
// document. This is the lowest-precision detector and runs last.
var fyePhrasePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bfiscal\s+year[-\s]*end(?:ed)?\s*(?:is|:|on|to|at)?\s*` + monthWordCap + `(?:\s+\d{1,2})?(?:,\s*\d{4})?`),
	regexp.MustCompile(`(?i)\bfor\s+the\s+fiscal\s+year\s+ended\s+` + monthWordCap + `\s+\d{1,2}(?:,\s*\d{4})?`),
	regexp.MustCompile(`(?i)\byear\s+ended\s+` + monthWordCap + `\s+\d{1,2}(?:,\s*\d{4})?`),
	regexp.MustCompile(`(?i)` + monthWordCap + `\s+\d{1,2}\s+fiscal\s+year\s+end`),
}

// ProbeFYEFromText scans for "fiscal year ending <month>" phrasing,
// rejecting months within one month of the known period end.
func ProbeFYEFromText(text string, periodMonth int) (int, bool) {
	bad := nearMonths(periodMonth)
	for _, p := range fyePhrasePatterns {
		for _, m := range p.FindAllStringSubmatch(text, -1) {
			month := MonthFromWord(m[1])
			if month == 0 {
				continue
			}
			if periodMonth == 0 || !bad[month] {
				return month, true
			}
		}
	}
	return 0, false
}
