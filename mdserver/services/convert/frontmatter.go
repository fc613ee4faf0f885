package convert

import (
	"strings"

	"gopkg.in/yaml.v3"

	"mdserver/mdserver/utils/tokens"
)

type frontmatter struct {
	Title           string `yaml:"title,omitempty"`
	Source          string `yaml:"source,omitempty"`
	SourceType      string `yaml:"source_type"`
	WordCount       int    `yaml:"word_count"`
	EstimatedTokens int    `yaml:"estimated_tokens"`
	Language        string `yaml:"language,omitempty"`
}

// PrependFrontmatter adds a YAML frontmatter block describing the
// document. It runs after truncation so the counts describe what the
// caller actually receives.
func PrependFrontmatter(markdown, title, source, sourceType string) string {
	fm := frontmatter{
		Title:           title,
		Source:          source,
		SourceType:      sourceType,
		WordCount:       CountWords(markdown),
		EstimatedTokens: tokens.Count(markdown),
		Language:        GuessLanguage(markdown),
	}
	encoded, err := yaml.Marshal(fm)
	if err != nil {
		return markdown
	}
	var b strings.Builder
	b.WriteString("---\n")
	b.Write(encoded)
	b.WriteString("---\n\n")
	b.WriteString(markdown)
	return b.String()
}
