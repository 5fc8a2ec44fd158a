// Package edgar resolves filing identifiers and reference data from EDGAR
// URLs, the submission map, and the SEC structured APIs.
package edgar

import (
	"fmt"
	"regexp"
	"strings"
)

// AccessionFolderRe matches the CIK and accession segments of an EDGAR
// archive URL. The accession appears either as 18 digits or in its dashed
// form.
var AccessionFolderRe = regexp.MustCompile(`(?i)/Archives/edgar/data/(\d+)/(\d{18}|\d{10}-\d{2}-\d{6})/`)

var ixDocPrefixRe = regexp.MustCompile(`(?i)^https?://www\.sec\.gov/ix\?doc=`)

// AccessionFromURL extracts the no-dash accession identifier embedded in a
// filing URL, or "" when the URL carries none.
func AccessionFromURL(rawURL string) string {
	m := AccessionFolderRe.FindStringSubmatch(rawURL)
	if m == nil {
		return ""
	}
	return strings.ReplaceAll(m[2], "-", "")
}

// CanonicalURL normalizes a filing URL: trims whitespace and non-breaking
// spaces, drops placeholder values, and unwraps the inline-XBRL viewer
// prefix so the raw document is fetched.
func CanonicalURL(rawURL string) string {
	v := strings.TrimSpace(rawURL)
	if v == "" || strings.EqualFold(v, "nan") {
		return ""
	}
	v = strings.ReplaceAll(v, " ", " ")
	v = strings.ReplaceAll(v, "&nbsp;", " ")
	v = ixDocPrefixRe.ReplaceAllString(v, "https://www.sec.gov")
	return v
}

// PadCIK zero-pads a CIK to the ten digits the structured APIs expect,
// discarding any non-digit characters first.
func PadCIK(cik string) string {
	var digits strings.Builder
	for _, r := range cik {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if len(d) >= 10 {
		return d
	}
	return strings.Repeat("0", 10-len(d)) + d
}

// TxtCandidates returns the candidate plain-text rendering URLs for the
// filing, derived from the accession folder. Both the dashed and no-dash
// file names occur in the archive.
func TxtCandidates(rawURL string) []string {
	m := AccessionFolderRe.FindStringSubmatch(rawURL)
	if m == nil {
		return nil
	}
	cik := m[1]
	acc := m[2]
	var dashed, nodash string
	if strings.Contains(acc, "-") {
		dashed = acc
		nodash = strings.ReplaceAll(acc, "-", "")
	} else {
		nodash = acc
		dashed = fmt.Sprintf("%s-%s-%s", acc[:10], acc[10:12], acc[12:])
	}
	return []string{
		fmt.Sprintf("https://www.sec.gov/Archives/edgar/data/%s/%s/%s.txt", cik, nodash, dashed),
		fmt.Sprintf("https://www.sec.gov/Archives/edgar/data/%s/%s/%s.txt", cik, nodash, nodash),
	}
}

// annualForms lists the form types whose period-of-report marks a fiscal
// year end, normalized with dashes removed.
var annualForms = map[string]bool{
	"10K": true, "10KT": true, "10K/A": true, "10KT/A": true,
	"10KSB": true, "10KSB40": true, "10K405": true, "10K405/A": true,
	"10KSB/A": true, "10KSB40/A": true,
	"20F": true, "20F/A": true,
	"40F": true, "40F/A": true,
}

// NormForm normalizes a form type for comparison: dashes removed, upper case.
func NormForm(form string) string {
	return strings.ToUpper(strings.ReplaceAll(form, "-", ""))
}

// IsAnnualForm reports whether the form type is an annual report variant.
func IsAnnualForm(form string) bool {
	return annualForms[NormForm(form)]
}
