package section

import (
	"regexp"
	"strings"
)

var (
	itemHeaderRe = regexp.MustCompile(`(?i)\bitem\s+1a\b[^A-Za-z0-9]{0,40}`)
	// Headings that end an Item 1A body.
	itemBoundaryRe = regexp.MustCompile(`(?i)\bitem\s+(?:1b|2a|7a|[2-9])\b`)
	riskPhraseRe   = regexp.MustCompile(`(?i)risk\s+factor`)

	trailingSectionRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bPART\s+I\.\s+FINANCIAL\s+INFORMATION\b`),
		regexp.MustCompile(`(?i)\bPART\s+II\.\s+OTHER\s+INFORMATION\b`),
	}
)

type sectionCandidate struct {
	header string
	body   string
}

// ExtractItem1A locates the Item 1A body within filing text. Filings
// often repeat the heading (table of contents, cross references), so
// every occurrence is scored and the best-looking body wins: a risk
// factor phrase near the heading beats a bare heading, a heading free
// of list punctuation beats one inside a sentence, and longer bodies
// beat shorter ones. Returns "" when no usable section is found.
func ExtractItem1A(text string) string {
	if text == "" {
		return ""
	}
	norm := normalizeSpaces(text)

	var cands []sectionCandidate
	pos := 0
	for pos < len(norm) {
		loc := itemHeaderRe.FindStringIndex(norm[pos:])
		if loc == nil {
			break
		}
		headerStart := pos + loc[0]
		headerEnd := pos + loc[1]

		bodyEnd := len(norm)
		if b := itemBoundaryRe.FindStringIndex(norm[headerEnd:]); b != nil {
			bodyEnd = headerEnd + b[0]
		}
		cands = append(cands, sectionCandidate{
			header: strings.TrimSpace(norm[headerStart:headerEnd]),
			body:   strings.TrimSpace(norm[headerEnd:bodyEnd]),
		})
		pos = bodyEnd
	}

	best := ""
	bestScore := [3]int{-1, -1, -1}
	for _, c := range cands {
		if c.body == "" {
			continue
		}
		score := scoreCandidateSection(c)
		if scoreGreater(score, bestScore) {
			bestScore = score
			best = c.body
		}
	}
	if best == "" {
		return ""
	}
	return trimTrailingSections(best)
}

func scoreCandidateSection(c sectionCandidate) [3]int {
	head := c.body
	if len(head) > 512 {
		head = head[:512]
	}
	hasRisk := 0
	if riskPhraseRe.MatchString(c.header) || riskPhraseRe.MatchString(head) {
		hasRisk = 1
	}
	cleanHeader := 1
	if strings.ContainsAny(c.header, ",()") {
		cleanHeader = 0
	}
	return [3]int{hasRisk, cleanHeader, len(c.body)}
}

// scoreGreater compares lexicographically; ties keep the earlier candidate.
func scoreGreater(a, b [3]int) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] > b[i]
		}
	}
	return false
}

// trimTrailingSections cuts off a following 10-Q part heading that
// leaked into the body. Matches within the first 100 characters are
// ignored since they usually belong to the section's own preamble.
func trimTrailingSections(body string) string {
	cutoff := len(body)
	for _, re := range trailingSectionRes {
		if loc := re.FindStringIndex(body); loc != nil && loc[0] > 100 {
			if loc[0] < cutoff {
				cutoff = loc[0]
			}
		}
	}
	if cutoff != len(body) {
		body = strings.TrimRight(body[:cutoff], " \t\n")
	}
	return body
}
