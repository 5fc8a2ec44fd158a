// Package inference recovers fiscal-period facts (period-end date, fiscal
// year-end month, quarter) from filing documents through an ordered waterfall
// of detectors.
package inference

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// monthWord matches a written month name, abbreviated or full, with an
// optional trailing period.
const monthWord = `(?:Jan(?:\.|uary)?|Feb(?:\.|ruary)?|Mar(?:\.|ch)?|Apr(?:\.|il)?|May|Jun(?:\.|e)?|` +
	`Jul(?:\.|y)?|Aug(?:\.|ust)?|Sep(?:\.|t\.|tember)?|Oct(?:\.|ober)?|Nov(?:\.|ember)?|` +
	`Dec(?:\.|ember)?)`

// monthWordCap is the capturing variant.
const monthWordCap = `(Jan(?:\.|uary)?|Feb(?:\.|ruary)?|Mar(?:\.|ch)?|Apr(?:\.|il)?|May|Jun(?:\.|e)?|` +
	`Jul(?:\.|y)?|Aug(?:\.|ust)?|Sep(?:\.|t\.|tember)?|Oct(?:\.|ober)?|Nov(?:\.|ember)?|` +
	`Dec(?:\.|ember)?)`

// Date forms accepted on cover pages and statement headings.
const (
	dateWord = monthWord + `\s+\d{1,2},\s*\d{4}`
	dateNum  = `\d{1,2}/\d{1,2}/\d{2,4}`
	dateISO  = `\d{4}-\d{2}-\d{2}`
	dateAny  = `(?:` + dateWord + `|` + dateNum + `|` + dateISO + `)`

	// dashMD matches the XBRL fiscal-year-end form --MM-DD (or -MM-DD).
	dashMD      = `--?\d{2}-\d{2}`
	dateAnyOrMD = `(?:` + dateAny + `|` + dashMD + `)`
)

var (
	dateWordRe    = regexp.MustCompile(`(?i)` + monthWordCap + `\s+(\d{1,2}),\s*(\d{4})`)
	dateNumRe     = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2,4})$`)
	dateISORe     = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	dashMDFullRe  = regexp.MustCompile(`^-{1,2}(\d{2})-(\d{2})$`)
	dateAnyOrMDRe = regexp.MustCompile(`(?i)` + dateAnyOrMD)
)

var monthNumbers = map[string]int{
	"jan": 1, "january": 1,
	"feb": 2, "february": 2,
	"mar": 3, "march": 3,
	"apr": 4, "april": 4,
	"may": 5,
	"jun": 6, "june": 6,
	"jul": 7, "july": 7,
	"aug": 8, "august": 8,
	"sep": 9, "sept": 9, "september": 9,
	"oct": 10, "october": 10,
	"nov": 11, "november": 11,
	"dec": 12, "december": 12,
}

// MonthFromWord converts a written month name to its number, or 0.
func MonthFromWord(word string) int {
	key := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(word)), ".")
	return monthNumbers[key]
}

// ParseAnyDate parses the word, numeric, and ISO date forms accepted by the
// detectors. Two-digit years pivot at 70.
func ParseAnyDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if m := dateISORe.FindStringSubmatch(s); m != nil {
		return buildDate(atoi(m[1]), atoi(m[2]), atoi(m[3]))
	}
	if m := dateNumRe.FindStringSubmatch(s); m != nil {
		year := atoi(m[3])
		if year < 100 {
			if year < 70 {
				year += 2000
			} else {
				year += 1900
			}
		}
		return buildDate(year, atoi(m[1]), atoi(m[2]))
	}
	if m := dateWordRe.FindStringSubmatch(s); m != nil {
		month := MonthFromWord(m[1])
		if month == 0 {
			return time.Time{}, false
		}
		return buildDate(atoi(m[3]), month, atoi(m[2]))
	}
	return time.Time{}, false
}

func buildDate(year, month, day int) (time.Time, bool) {
	if year < 1000 || month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	dt := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// Reject normalized overflow such as February 30.
	if int(dt.Month()) != month || dt.Day() != day {
		return time.Time{}, false
	}
	return dt, true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// monthFromDashMD extracts the month from the --MM-DD fiscal-year-end form.
func monthFromDashMD(s string) int {
	m := dashMDFullRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0
	}
	mm := atoi(m[1])
	if mm < 1 || mm > 12 {
		return 0
	}
	return mm
}

func wrapMonth(m int) int {
	return ((m-1)%12+12)%12 + 1
}

// nearMonths returns the set {pm−1, pm, pm+1} on the 12-month ring. A
// candidate FYE month inside this set is almost certainly the comparative
// prior-period date rather than the fiscal-year end.
func nearMonths(periodMonth int) map[int]bool {
	if periodMonth == 0 {
		return nil
	}
	return map[int]bool{
		wrapMonth(periodMonth - 1): true,
		wrapMonth(periodMonth):     true,
		wrapMonth(periodMonth + 1): true,
	}
}

// monthDistance is the forward ring distance from pm to m, 0..11.
func monthDistance(pm, m int) int {
	return ((m-pm)%12 + 12) % 12
}
