package document

import (
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"golang.org/x/net/html"
)

type htmlConverter struct{}

func (c *htmlConverter) Accepts(info StreamInfo) bool {
	switch info.Extension {
	case ".html", ".htm":
		return true
	}
	mime := strings.ToLower(info.MIMEType)
	return strings.HasPrefix(mime, "text/html") || strings.HasPrefix(mime, "application/xhtml")
}

func (c *htmlConverter) Convert(data []byte, info StreamInfo) (*result, error) {
	htmlStr := string(data)
	title := htmlTitle(htmlStr)

	htmlStr = stripNonContent(htmlStr)

	md, err := htmlToMarkdown(htmlStr)
	if err != nil {
		return nil, &ParseError{Format: "html", Err: err}
	}
	md = shortenDataURIs(md)

	return &result{Markdown: md, Title: title}, nil
}

func htmlToMarkdown(htmlStr string) (string, error) {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(
				commonmark.WithHeadingStyle("atx"),
			),
			table.NewTablePlugin(),
		),
	)
	return conv.ConvertString(htmlStr)
}

var (
	reScript  = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`)
	reStyle   = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style>`)
	reDataURI = regexp.MustCompile(`(data:[a-zA-Z0-9/+.-]+;base64,)[A-Za-z0-9+/=]{64,}`)
)

func stripNonContent(htmlStr string) string {
	htmlStr = reScript.ReplaceAllString(htmlStr, "")
	return reStyle.ReplaceAllString(htmlStr, "")
}

// shortenDataURIs truncates inline base64 payloads so one embedded
// image cannot dominate the output.
func shortenDataURIs(md string) string {
	return reDataURI.ReplaceAllString(md, "${1}...")
}

func htmlTitle(htmlStr string) string {
	doc, err := html.Parse(strings.NewReader(htmlStr))
	if err != nil {
		return ""
	}
	var title string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "title" {
			if n.FirstChild != nil {
				title = n.FirstChild.Data
			}
			return
		}
		for c := n.FirstChild; c != nil && title == ""; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return strings.TrimSpace(title)
}
