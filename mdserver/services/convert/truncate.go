package convert

import (
	"strings"

	"mdserver/mdserver/utils/tokens"
	"mdserver/mdserver/utils/types"
)

const (
	charCapIndicator  = "..."
	tokenCapIndicator = "\n\n[truncated to fit token limit]"
	modeIndicator     = "\n\n[truncated...]"
)

// TruncationOutcome is what ApplyTruncation reports back for metadata.
type TruncationOutcome struct {
	Markdown       string
	WasTruncated   bool
	OriginalLength int
	OriginalTokens int
	Mode           string
}

// ApplyTruncation enforces the hard caps (max_length, max_tokens) and
// the structured truncate_mode. The caps and the mode are evaluated
// independently against the full text and the most restrictive result
// wins, so a cap can never be escaped by also passing a generous mode.
func ApplyTruncation(markdown string, opts types.ConversionOptions) TruncationOutcome {
	out := TruncationOutcome{
		Markdown:       markdown,
		OriginalLength: len([]rune(markdown)),
	}
	if opts.MaxLength == nil && opts.MaxTokens == nil && opts.TruncateMode == "" {
		return out
	}

	capBody, capIndicator, capMode := applyCaps(markdown, opts)
	capCut := capMode != ""

	modeBody, modeCut := markdown, false
	if opts.TruncateMode != "" {
		modeBody, modeCut = truncateByMode(markdown, opts.TruncateMode, opts.TruncateLimit)
	}

	if !capCut && !modeCut {
		return out
	}

	// most restrictive wins; compare the kept content, not the
	// indicator-padded output
	body, indicator, mode := capBody, capIndicator, capMode
	if modeCut && (!capCut || len([]rune(modeBody)) < len([]rune(capBody))) {
		body, indicator, mode = modeBody, modeIndicator, opts.TruncateMode
	}

	out.Markdown = body + indicator
	out.WasTruncated = true
	out.OriginalTokens = tokens.Count(markdown)
	out.Mode = mode
	return out
}

// applyCaps runs max_length then max_tokens in sequence and reports
// the kept content, the indicator for the binding cap, and which cap
// ended up binding.
func applyCaps(markdown string, opts types.ConversionOptions) (string, string, string) {
	s, indicator, mode := markdown, "", ""
	if opts.MaxLength != nil {
		runes := []rune(s)
		if len(runes) > *opts.MaxLength {
			s = string(runes[:*opts.MaxLength])
			indicator, mode = charCapIndicator, "max_length"
		}
	}
	if opts.MaxTokens != nil {
		if cut, wasCut := tokens.Truncate(s+indicator, *opts.MaxTokens); wasCut {
			s, indicator, mode = cut, tokenCapIndicator, "max_tokens"
		}
	}
	return s, indicator, mode
}

func truncateByMode(markdown, mode string, limit int) (string, bool) {
	switch mode {
	case "chars":
		runes := []rune(markdown)
		if len(runes) <= limit {
			return markdown, false
		}
		return string(runes[:limit]), true
	case "tokens":
		return tokens.Truncate(markdown, limit)
	case "sections":
		return truncateSections(markdown, limit)
	case "paragraphs":
		return truncateParagraphs(markdown, limit)
	}
	return markdown, false
}

// truncateSections keeps the first limit `##` sections. Anything
// before the first section heading is preamble and rides along free.
func truncateSections(markdown string, limit int) (string, bool) {
	lines := strings.Split(markdown, "\n")
	sections := 0
	for i, line := range lines {
		if isSectionHeading(line) {
			if sections == limit {
				return strings.TrimRight(strings.Join(lines[:i], "\n"), "\n"), true
			}
			sections++
		}
	}
	return markdown, false
}

// isSectionHeading matches a level-two heading line: "##" followed by
// a space or tab. "###" and deeper do not count.
func isSectionHeading(line string) bool {
	if !strings.HasPrefix(line, "##") {
		return false
	}
	rest := line[2:]
	return rest != "" && (rest[0] == ' ' || rest[0] == '\t')
}

func truncateParagraphs(markdown string, limit int) (string, bool) {
	paragraphs := strings.Split(markdown, "\n\n")
	if len(paragraphs) <= limit {
		return markdown, false
	}
	return strings.Join(paragraphs[:limit], "\n\n"), true
}
