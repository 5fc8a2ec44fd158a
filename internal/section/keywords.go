package section

import (
	"regexp"
	"strings"
)

// KeywordGroupNames lists the strategy dimensions in output column order.
var KeywordGroupNames = []string{
	"Differentiation strategy",
	"Product",
	"Market",
	"Operational efficiency",
	"Human resource",
	"Cost strategy",
	"Cost control",
	"Customer",
}

var keywordGroups = map[string][]*regexp.Regexp{
	"Differentiation strategy": compileGroup(
		`differenti\w*`,
		`unique\w*`,
		`superior\w*`,
		`premium\w*`,
		`high\w*\s+pric\w*`,
		`high\w*\s+margin\w*`,
		`high\w*\s+end\w*`,
		`inelasticity`,
		`excellen\w*`,
		`leading\s+edge`,
		`upscale`,
	),
	"Product": compileGroup(
		`innovate\w*`,
		`creativ\w*`,
		`research and development`,
		`\bR&D\b`,
		`techni\w*`,
		`technology\w*`,
		`patent\w*`,
		`proprietar\w*`,
		`new\w*\s+product\w*`,
	),
	"Market": compileGroup(
		`marketing\w*`,
		`advertis\w*`,
		`brand\w*`,
		`reputation\w*`,
		`trademark\w*`,
	),
	"Operational efficiency": compileGroup(
		`efficien\w*`,
		`high\w*\s+yield\w*`,
		`process\w*\s+improvement\w*`,
		`asset\w*\s+utilization\w*`,
		`capacity\w*\s+utilization\w*`,
	),
	"Human resource": compileGroup(
		`talent\w*`,
		`train\w*`,
		`skill\w*`,
		`intellectual\w*\s+propert\w*`,
		`human\s+capital\w*`,
	),
	"Cost strategy": compileGroup(
		`cost\s+leader\w*`,
		`low\w*\s+pric\w*`,
		`low\w*\s+cost\w*`,
		`cost\s+advantage\w*`,
		`competitive\s+pric\w*`,
		`aggressive\s+pric\w*`,
	),
	"Cost control": compileGroup(
		`control\w*\s+(?:cost|expense|overhead)\w*`,
		`minimiz\w*\s+(?:cost|expense|overhead)\w*`,
		`reduce\w*\s+(?:cost|expens|overhead)\w*`,
		`cut\w*\s+(?:cost|expens|overhead)\w*`,
		`decreas\w*\s+(?:cost|expens|overhead)\w*`,
		`monitor\w*\s+(?:cost|expens|overhead)\w*`,
		`sav\w*\s+(?:cost|expens|overhead)\w*`,
		`improve\w*\s+cost\w*`,
		`cost\w*\s+(?:control|improvement|minimization|reduction|saving)\w*`,
		`expense\w*\s+(?:control|improvement|minimization|reduction|saving)\w*`,
		`overhead\w*\s+(?:control|improvement|minimization|reduction|saving)\w*`,
	),
	"Customer": compileGroup(
		`customer\w*\s+service\w*`,
		`consumer\w*\s+service\w*`,
		`customer\w*\s+need\w*`,
		`sales\s+support\w*`,
		`post[-\s]*purchase\s+service\w*`,
		`customer\w*\s+preference\w*`,
		`consumer\w*\s+preference\w*`,
		`consumer\w*\s+(?:relation\w*|experience\w*|support\w*)`,
		`loyalty\w*`,
		`customiz\w*`,
		`tailor\w*`,
		`personaliz\w*`,
	),
}

func compileGroup(patterns ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		res = append(res, regexp.MustCompile(`(?i)`+p))
	}
	return res
}

// CountKeywords counts pattern hits per strategy dimension. Every group
// is present in the result, zeroed when text is empty.
func CountKeywords(text string) map[string]int {
	counts := make(map[string]int, len(keywordGroups))
	for name := range keywordGroups {
		counts[name] = 0
	}
	if text == "" {
		return counts
	}
	for name, patterns := range keywordGroups {
		total := 0
		for _, re := range patterns {
			total += len(re.FindAllStringIndex(text, -1))
		}
		counts[name] = total
	}
	return counts
}

// CountWords reports the number of whitespace-delimited tokens.
func CountWords(text string) int {
	return len(strings.Fields(text))
}
