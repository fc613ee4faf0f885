package document

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

type xlsxConverter struct{}

func (c *xlsxConverter) Accepts(info StreamInfo) bool {
	if info.Extension == ".xlsx" {
		return true
	}
	return strings.HasPrefix(strings.ToLower(info.MIMEType),
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
}

func (c *xlsxConverter) Convert(data []byte, info StreamInfo) (*result, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{Format: "xlsx", Err: err}
	}
	defer f.Close()

	var md strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) == 0 {
			continue
		}
		fmt.Fprintf(&md, "## %s\n", sheet)
		md.WriteString(markdownTable(rows))
		md.WriteString("\n")
	}
	return &result{Markdown: md.String()}, nil
}
