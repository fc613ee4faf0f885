package convert

import (
	"strings"
	"unicode"
)

// ExtractTitle returns the text of the first top-level heading, or "".
func ExtractTitle(markdown string) string {
	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}

// CountWords counts whitespace-delimited words.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

var commonEnglish = map[string]bool{
	"the": true, "and": true, "of": true, "to": true, "in": true,
	"a": true, "is": true, "that": true, "for": true, "it": true,
	"with": true, "as": true, "on": true, "was": true, "are": true,
}

// GuessLanguage is a cheap heuristic: ASCII text with enough common
// English stopwords is "en", anything else is "unknown".
func GuessLanguage(text string) string {
	sample := text
	if len(sample) > 2000 {
		sample = sample[:2000]
	}
	nonASCII := 0
	for _, r := range sample {
		if r > unicode.MaxASCII {
			nonASCII++
		}
	}
	if nonASCII*10 > len(sample) {
		return "unknown"
	}
	hits := 0
	for _, w := range strings.Fields(strings.ToLower(sample)) {
		if commonEnglish[strings.Trim(w, ".,;:!?\"'()")] {
			hits++
			if hits >= 3 {
				return "en"
			}
		}
	}
	return "unknown"
}
