package inference

import (
	"html"
	"regexp"
	"strings"
)

var (
	commentRe   = regexp.MustCompile(`(?s)<!--.*?-->`)
	scriptRe    = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`)
	styleRe     = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style>`)
	tagRe       = regexp.MustCompile(`<[^>]+>`)
	spaceRe     = regexp.MustCompile(`\s+`)
	pageTokenRe = regexp.MustCompile(`(?i)(?:<PAGE>|##PAGE|Page\s*\d+(?:\s*of\s*\d+)?|\d+\s*PAGE)`)
)

// HTMLToText strips markup from a filing document for pattern probing:
// entities unescaped, comments and script/style blocks dropped, tags
// replaced by spaces, page tokens removed, whitespace collapsed. Heavier
// DOM-based cleaning lives in the section package; this flattening is enough
// for the date and heading detectors.
func HTMLToText(doc string) string {
	text := strings.ReplaceAll(html.UnescapeString(doc), " ", " ")
	text = commentRe.ReplaceAllString(text, " ")
	text = scriptRe.ReplaceAllString(text, " ")
	text = styleRe.ReplaceAllString(text, " ")
	text = tagRe.ReplaceAllString(text, " ")
	text = pageTokenRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
}
