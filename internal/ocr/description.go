package ocr

import (
	"regexp"
	"strings"
)

// DefaultDescription is used when the receipt header yields nothing readable.
const DefaultDescription = "Expense"

const maxDescriptionRunes = 100

var (
	phoneNumber = regexp.MustCompile(`\d{10,}`)
	titleNoise  = regexp.MustCompile(`[^\p{L}\p{M}\p{N}_\s\-&]`)
)

// ExtractDescription derives a merchant title from the first non-empty line of raw
// text. Phone numbers and punctuation are removed and the result is capped at 100
// characters. It returns DefaultDescription when two characters or fewer remain.
func ExtractDescription(raw string) string {
	var first string
	for _, line := range strings.Split(raw, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			first = line
			break
		}
	}
	if first == "" {
		return DefaultDescription
	}

	title := phoneNumber.ReplaceAllString(first, "")
	title = titleNoise.ReplaceAllString(title, "")
	title = strings.TrimSpace(title)
	if runes := []rune(title); len(runes) > maxDescriptionRunes {
		title = strings.TrimSpace(string(runes[:maxDescriptionRunes]))
	}

	if len([]rune(title)) <= 2 {
		return DefaultDescription
	}
	return title
}
