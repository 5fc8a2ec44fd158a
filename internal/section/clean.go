// Package section locates the Item 1A risk-factor section of an SEC
// filing and derives keyword counts from it. The section text comes
// from the sec-api.io Extractor API when a key is configured, with a
// direct fetch-and-parse fallback.
package section

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	pageTokenRe       = regexp.MustCompile(`(?i)(?:<PAGE>|##PAGE|Page\s*\d+(?:\s*of\s*\d+)?|\d+\s*PAGE)`)
	tableOfContentsRe = regexp.MustCompile(`(?i)\b\d*\s*Table of Contents\b`)
	trailingNumberRe  = regexp.MustCompile(`\s\d+$`)
	multiSpaceRe      = regexp.MustCompile(`\s+`)
	tagRe             = regexp.MustCompile(`<[^>]+>`)
)

func replaceNBSP(s string) string {
	return strings.ReplaceAll(s, " ", " ")
}

// HTMLText renders an HTML document to plain text. Script and style
// elements and comments are dropped; remaining text nodes are joined
// with single spaces.
func HTMLText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}
	doc.Find("script, style").Remove()

	var parts []string
	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		s.Contents().Each(func(_ int, c *goquery.Selection) {
			if goquery.NodeName(c) == "#text" {
				if t := strings.TrimSpace(c.Text()); t != "" {
					parts = append(parts, t)
				}
			}
		})
	})
	text := strings.Join(parts, " ")
	return multiSpaceRe.ReplaceAllString(text, " "), nil
}

// normalizeSpaces strips residual markup and collapses runs of
// whitespace to single spaces.
func normalizeSpaces(text string) string {
	text = replaceNBSP(text)
	text = tagRe.ReplaceAllString(text, " ")
	text = multiSpaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// CleanText normalizes an extracted section: non-breaking spaces, page
// markers, table-of-contents references, and a trailing page number are
// removed and whitespace is collapsed. Returns "" when nothing remains.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	cleaned := replaceNBSP(text)
	cleaned = pageTokenRe.ReplaceAllString(cleaned, " ")
	cleaned = tableOfContentsRe.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(multiSpaceRe.ReplaceAllString(cleaned, " "))
	cleaned = strings.TrimSpace(trailingNumberRe.ReplaceAllString(cleaned, ""))
	return cleaned
}
