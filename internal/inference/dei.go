package inference

import (
	"regexp"
	"strings"
	"time"
)

// Inline XBRL tags carry the machine-readable document facts. The tag name
// appears in either case in the wild.
const ixTag = `ix:(?:nonNumeric|nonnumeric)`

var (
	deiPFRe = regexp.MustCompile(`(?is)<` + ixTag + `[^>]*\bname\s*=\s*['"]dei:DocumentFiscalPeriodFocus['"][^>]*>\s*(Q[1-4]|FY)\s*</` + ixTag + `>`)
	deiYFRe = regexp.MustCompile(`(?is)<` + ixTag + `[^>]*\bname\s*=\s*['"]dei:DocumentFiscalYearFocus['"][^>]*>\s*(\d{4})\s*</` + ixTag + `>`)
	// fiscal year end appears as 12/31 or as the XBRL --12-31 form
	deiFYERe = regexp.MustCompile(`(?is)<` + ixTag + `[^>]*\bname\s*=\s*['"]dei:CurrentFiscalYearEndDate['"][^>]*>\s*(\d{1,2}/\d{1,2}|--?\d{2}-\d{2})\s*</` + ixTag + `>`)
	deiDPERe = regexp.MustCompile(`(?is)<` + ixTag + `[^>]*\bname\s*=\s*['"]dei:DocumentPeriodEndDate['"][^>]*>\s*(\d{4}-\d{2}-\d{2}|\d{1,2}/\d{1,2}/\d{2,4})\s*</` + ixTag + `>`)

	fyeMonthDayRe = regexp.MustCompile(`^\s*(\d{1,2})/\d{1,2}\s*$`)
)

// DEI holds the structured metadata facts extracted from an inline-XBRL
// filing. Zero values mean the fact was absent.
type DEI struct {
	PeriodFocus string // Q1..Q4 or FY
	YearFocus   int
	FYEMonth    int
	PeriodEnd   time.Time
}

// ExtractDEI scans raw document HTML for the inline-XBRL document facts.
// This is the highest-precision detector and runs on the unstripped source,
// since the facts live in tag attributes the text normalizer discards.
func ExtractDEI(doc string) DEI {
	var out DEI
	if doc == "" {
		return out
	}
	if m := deiPFRe.FindStringSubmatch(doc); m != nil {
		out.PeriodFocus = strings.ToUpper(m[1])
	}
	if m := deiYFRe.FindStringSubmatch(doc); m != nil {
		out.YearFocus = atoi(m[1])
	}
	if m := deiFYERe.FindStringSubmatch(doc); m != nil {
		out.FYEMonth = parseFYEMonthText(m[1])
	}
	if m := deiDPERe.FindStringSubmatch(doc); m != nil {
		if dt, ok := ParseAnyDate(m[1]); ok {
			out.PeriodEnd = dt
		}
	}
	return out
}

// parseFYEMonthText reads the month out of "12/31" or "--12-31" style
// fiscal-year-end values.
func parseFYEMonthText(s string) int {
	if m := fyeMonthDayRe.FindStringSubmatch(s); m != nil {
		mm := atoi(m[1])
		if mm >= 1 && mm <= 12 {
			return mm
		}
		return 0
	}
	return monthFromDashMD(s)
}
