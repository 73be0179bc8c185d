// Package ocr turns recognized receipt text into a bill title and total.
//
// Recognition itself is delegated to a Recognizer (tesseract for images, the PDF text
// layer for digital bills). Everything after that is pure text processing: Normalize
// repairs common misrecognitions, ExtractAmount finds the payable total by keyword
// priority, and ExtractDescription derives a merchant title.
package ocr

import (
	"regexp"
	"strings"
)

// keywordRepairs are the exact misspellings tesseract produces for the keywords the
// amount search depends on. Only these are repaired; there is no fuzzy matching.
var keywordRepairs = []struct {
	pattern *regexp.Regexp
	repl    string
}{
	{regexp.MustCompile(`t0ta[tl1i]`), "total"},
	{regexp.MustCompile(`tota[1i]`), "total"},
	{regexp.MustCompile(`to[a1]al`), "total"},
	{regexp.MustCompile(`gr[a4]nd`), "grand"},
	{regexp.MustCompile(`pay[a4]ble`), "payable"},
}

var (
	// mergeTrigger marks lines that talk about money. "rs" must be a token of its own
	// (or directly precede a digit) so that words such as "hours" do not qualify.
	mergeTrigger = regexp.MustCompile(`total|₹|\brs(?:\b|\d)`)

	// brokenDigits matches two or more single digits separated by blanks: "1 9 2 1".
	// A multi-digit token ends the run, so "2 1830" is left alone.
	brokenDigits = regexp.MustCompile(`\b\d\b(?:[ \t]+\d\b)+`)
	blanks       = regexp.MustCompile(`[ \t]+`)

	rupeePrefix = regexp.MustCompile(`\brs\.?[ \t]*(\d)`)
	rupeeSpace  = regexp.MustCompile(`₹[ \t]+`)
)

// Normalize cleans recognized text before amount extraction. It lower-cases the text,
// repairs corrupted keywords, merges digit runs split by blanks on money lines and
// rewrites "rs."/"rs " prefixes and spaced rupee signs as a bare "₹".
//
// Normalize is idempotent. The caller keeps the raw text for the description.
func Normalize(text string) string {
	normalized := strings.ToLower(text)

	for _, r := range keywordRepairs {
		normalized = r.pattern.ReplaceAllString(normalized, r.repl)
	}

	lines := strings.Split(normalized, "\n")
	for i, line := range lines {
		lines[i] = mergeBrokenDigits(line)
	}
	normalized = strings.Join(lines, "\n")

	normalized = rupeePrefix.ReplaceAllString(normalized, "₹$1")
	normalized = rupeeSpace.ReplaceAllString(normalized, "₹")

	return normalized
}

// mergeBrokenDigits joins "1 9 2 1" into "1921", but only on a line that mentions a
// total or a currency. Merging never crosses a line break. An "rs" prefix becomes "₹"
// first so that a digit glued to it ("rs9 9") can start a run.
func mergeBrokenDigits(line string) string {
	if !mergeTrigger.MatchString(line) {
		return line
	}
	line = rupeePrefix.ReplaceAllString(line, "₹$1")
	return brokenDigits.ReplaceAllStringFunc(line, func(run string) string {
		return blanks.ReplaceAllString(run, "")
	})
}
