package document

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
)

// feedConverter renders RSS and Atom feeds. It also claims generic XML
// so feeds served as text/xml still parse; non-feed XML falls through
// to the text converter.
type feedConverter struct{}

func (c *feedConverter) Accepts(info StreamInfo) bool {
	switch info.Extension {
	case ".rss", ".atom", ".xml":
		return true
	}
	mime := strings.ToLower(info.MIMEType)
	switch {
	case strings.HasPrefix(mime, "application/rss"),
		strings.HasPrefix(mime, "application/atom"),
		strings.HasPrefix(mime, "text/xml"),
		strings.HasPrefix(mime, "application/xml"):
		return true
	}
	return false
}

func (c *feedConverter) Convert(data []byte, info StreamInfo) (*result, error) {
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		// not a feed: emit the XML as a fenced block instead of failing
		return &result{Markdown: "```xml\n" + decodeToUTF8(data) + "\n```"}, nil
	}

	var b strings.Builder
	if feed.Title != "" {
		fmt.Fprintf(&b, "# %s\n", feed.Title)
	}
	if feed.Description != "" {
		fmt.Fprintf(&b, "%s\n", feed.Description)
	}
	b.WriteString("\n")

	for _, item := range feed.Items {
		if item.Title != "" {
			fmt.Fprintf(&b, "## %s\n", item.Title)
		}
		if item.Published != "" {
			fmt.Fprintf(&b, "Published: %s\n\n", item.Published)
		} else if item.Updated != "" {
			fmt.Fprintf(&b, "Updated: %s\n\n", item.Updated)
		}
		content := item.Content
		if content == "" {
			content = item.Description
		}
		if content != "" {
			if strings.Contains(content, "<") && strings.Contains(content, ">") {
				if md, err := htmlToMarkdown(content); err == nil {
					content = md
				}
			}
			b.WriteString(content)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	return &result{Markdown: b.String(), Title: feed.Title}, nil
}
