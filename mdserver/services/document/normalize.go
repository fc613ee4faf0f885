package document

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	reTrailingWhitespace = regexp.MustCompile(`[ \t]+\n`)
	reMultipleNewlines   = regexp.MustCompile(`\n{3,}`)
	reCRLF               = regexp.MustCompile(`\r\n?`)
)

// normalizeMarkdown post-processes converter output: LF line endings,
// no trailing whitespace, at most one blank line in a row, no control
// characters, valid UTF-8.
func normalizeMarkdown(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}

	s = reCRLF.ReplaceAllString(s, "\n")

	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)

	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	s = reTrailingWhitespace.ReplaceAllString(s, "\n")
	s = reMultipleNewlines.ReplaceAllString(s, "\n\n")

	return strings.TrimSpace(s)
}
