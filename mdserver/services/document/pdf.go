package document

import (
	"bytes"
	"strings"

	"github.com/ledongthuc/pdf"
)

type pdfConverter struct{}

func (c *pdfConverter) Accepts(info StreamInfo) bool {
	if info.Extension == ".pdf" {
		return true
	}
	return strings.HasPrefix(strings.ToLower(info.MIMEType), "application/pdf")
}

func (c *pdfConverter) Convert(data []byte, info StreamInfo) (*result, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &ParseError{Format: "pdf", Err: err}
	}

	var md strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text := extractPageText(page)
		if text == "" {
			continue
		}
		md.WriteString(text)
		md.WriteString("\n\n")
	}

	if strings.TrimSpace(md.String()) == "" {
		return nil, ErrEmptyDocument
	}
	return &result{Markdown: md.String()}, nil
}

// extractPageText uses row extraction, joining words on the empty-string
// separators the library emits between them.
func extractPageText(page pdf.Page) string {
	rows, err := page.GetTextByRow()
	if err != nil || len(rows) == 0 {
		return ""
	}
	var b strings.Builder
	for _, row := range rows {
		var line strings.Builder
		sawGap := false
		for _, word := range row.Content {
			if word.S == "" {
				sawGap = true
				continue
			}
			if line.Len() > 0 && sawGap {
				line.WriteString(" ")
			}
			line.WriteString(word.S)
			sawGap = false
		}
		if text := strings.TrimSpace(line.String()); text != "" {
			b.WriteString(text)
			b.WriteString("\n")
		}
	}
	return strings.TrimSpace(b.String())
}
