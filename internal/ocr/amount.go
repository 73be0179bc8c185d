package ocr

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Accepted bill totals, inclusive. Anything outside is treated as a misread.
var (
	MinAmount = decimal.NewFromInt(50)
	MaxAmount = decimal.NewFromInt(100000)
)

// numberPattern matches one amount: digits, optional comma groups (western or Indian
// grouping, or a decimal comma) and an optional fraction of up to two digits.
var numberPattern = regexp.MustCompile(`\d+(?:,\d{2,3})*(?:\.\d{1,2})?`)

// rupeeAmount matches a currency-prefixed amount in normalized text.
var rupeeAmount = regexp.MustCompile(`₹(\d+(?:,\d{2,3})*(?:\.\d{1,2})?)`)

// keywordRule is one level of the total search.
type keywordRule struct {
	name    string
	keyword *regexp.Regexp
	exclude *regexp.Regexp
}

// totalRules are tried in order; a level is consulted only when every earlier one found
// nothing in range.
var totalRules = []keywordRule{
	{name: "grand total", keyword: regexp.MustCompile(`grand\s*total`)},
	{name: "total", keyword: regexp.MustCompile(`\btotal\b`), exclude: regexp.MustCompile(`sub`)},
	{name: "food total", keyword: regexp.MustCompile(`food\s*total`)},
}

// ExtractAmount returns the bill total found in normalized, or nil when nothing
// qualifies. It never guesses.
//
// Keyword levels run in the order grand total, total (ignoring any line that mentions
// "sub"), food total. On every matching line the rightmost number is that line's
// candidate. Candidates outside [MinAmount, MaxAmount] are dropped and the last
// remaining candidate wins. When the text carries no "total" at all, the largest
// rupee-prefixed amount is used instead.
//
// The search runs on normalized text. When normalized is empty it is derived from raw.
func ExtractAmount(raw, normalized string) *decimal.Decimal {
	if normalized == "" {
		normalized = Normalize(raw)
	}

	for _, rule := range totalRules {
		if amount, ok := findByKeyword(normalized, rule); ok {
			return &amount
		}
	}

	// A receipt that names a total (even only a subtotal) but whose total could not
	// be read must not fall back to an arbitrary price.
	if strings.Contains(normalized, "total") {
		return nil
	}

	if amount, ok := findByCurrency(normalized); ok {
		return &amount
	}
	return nil
}

// findByKeyword applies one keyword level: the last in-range candidate wins.
func findByKeyword(text string, rule keywordRule) (decimal.Decimal, bool) {
	var (
		found  decimal.Decimal
		exists bool
	)
	for _, line := range strings.Split(text, "\n") {
		if rule.exclude != nil && rule.exclude.MatchString(line) {
			continue
		}
		if !rule.keyword.MatchString(line) {
			continue
		}

		numbers := numberPattern.FindAllString(line, -1)
		if len(numbers) == 0 {
			continue
		}
		amount, ok := parseAmount(numbers[len(numbers)-1])
		if !ok || !inRange(amount) {
			continue
		}
		found, exists = amount, true
	}
	return found, exists
}

// findByCurrency returns the largest in-range rupee-prefixed amount.
func findByCurrency(text string) (decimal.Decimal, bool) {
	var (
		best   decimal.Decimal
		exists bool
	)
	for _, m := range rupeeAmount.FindAllStringSubmatch(text, -1) {
		amount, ok := parseAmount(m[1])
		if !ok || !inRange(amount) {
			continue
		}
		if !exists || amount.GreaterThan(best) {
			best, exists = amount, true
		}
	}
	return best, exists
}

func inRange(d decimal.Decimal) bool {
	return d.GreaterThanOrEqual(MinAmount) && d.LessThanOrEqual(MaxAmount)
}

// parseAmount converts a matched number to a decimal. Without a period, a final comma
// followed by exactly two digits is a decimal comma ("12,50"); every other comma is a
// thousands or lakh separator ("1,921", "1,00,000").
func parseAmount(s string) (decimal.Decimal, bool) {
	if !strings.Contains(s, ".") {
		if i := strings.LastIndex(s, ","); i >= 0 && len(s)-i-1 == 2 {
			s = s[:i] + "." + s[i+1:]
		}
	}
	s = strings.ReplaceAll(s, ",", "")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
