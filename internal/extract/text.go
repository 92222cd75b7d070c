package extract

import (
	"strings"
	"unicode"
)

// title separators, in no particular order; the earliest one in the text wins
var nameSeparators = []string{" - ", " | ", " \u2013 ", " \u2014 ", " \u00b7 "}

const maxNameWords = 4

// CleanText collapses whitespace (including nbsp) to single spaces.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

// Name guesses a display name from a result title such as
// "Jane Doe - Realtor - Acme | LinkedIn". The segment before the first
// separator is used when it has no digits and 1-4 words.
func Name(title string) string {
	title = CleanText(title)

	cut := -1
	for _, sep := range nameSeparators {
		if i := strings.Index(title, sep); i >= 0 && (cut == -1 || i < cut) {
			cut = i
		}
	}
	if cut <= 0 {
		return ""
	}

	cand := strings.TrimSpace(title[:cut])
	if !plausibleName(cand) {
		return ""
	}
	return cand
}

func plausibleName(s string) bool {
	words := strings.Fields(s)
	if len(words) == 0 || len(words) > maxNameWords {
		return false
	}
	if strings.ContainsAny(s, "@:/") {
		return false
	}
	if strings.Contains(strings.ToLower(s), "linkedin") {
		return false
	}
	for _, r := range s {
		if unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
