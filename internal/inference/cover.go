package inference

import (
	"regexp"
	"time"
)

// coverRe matches the cover-page assertion "for the quarterly period ended
// <date>" and its three-month / thirteen-week variants.
var coverRe = regexp.MustCompile(`(?i)\bfor\s+the\s+` +
	`(?:` +
	`(?:fiscal\s+)?quarter(?:ly)?(?:\s+(?:report\s+for\s+the\s+)?period)?` +
	`|` +
	`(?:(?:three|3|thirteen|13)\s+(?:months?|weeks?))` +
	`)` +
	`\s+ended` +
	"\\s*[:\\-–—]?\\s*" +
	`(` + dateAny + `)`)

// periodHeaderRe matches the SGML header line of a filing's plain-text
// rendering.
var periodHeaderRe = regexp.MustCompile(`(?i)CONFORMED PERIOD OF REPORT:\s*(\d{8})`)

// ProbePeriod scans normalized document text for the cover-page period-end
// date.
func ProbePeriod(text string) (time.Time, bool) {
	m := coverRe.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}
	return ParseAnyDate(m[1])
}

// ParsePeriodHeader reads the period-of-report date from a plain-text filing
// header.
func ParsePeriodHeader(txt string) (time.Time, bool) {
	m := periodHeaderRe.FindStringSubmatch(txt)
	if m == nil {
		return time.Time{}, false
	}
	dt, err := time.Parse("20060102", m[1])
	if err != nil {
		return time.Time{}, false
	}
	return dt, true
}
