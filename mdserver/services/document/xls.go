package document

import (
	"fmt"
	"os"
	"strings"

	"github.com/extrame/xls"
)

type xlsConverter struct{}

func (c *xlsConverter) Accepts(info StreamInfo) bool {
	if info.Extension == ".xls" {
		return true
	}
	return strings.HasPrefix(strings.ToLower(info.MIMEType), "application/vnd.ms-excel")
}

func (c *xlsConverter) Convert(data []byte, info StreamInfo) (*result, error) {
	// the xls library only opens paths, so spill to a temp file
	tmp, err := os.CreateTemp("", "mdserver-*.xls")
	if err != nil {
		return nil, &ParseError{Format: "xls", Err: err}
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, &ParseError{Format: "xls", Err: err}
	}
	tmp.Close()

	wb, err := xls.Open(tmpPath, "utf-8")
	if err != nil {
		return nil, &ParseError{Format: "xls", Err: err}
	}

	var md strings.Builder
	for i := 0; i < wb.NumSheets(); i++ {
		sheet := wb.GetSheet(i)
		if sheet == nil {
			continue
		}
		name := sheet.Name
		if name == "" {
			name = fmt.Sprintf("Sheet%d", i+1)
		}

		var rows [][]string
		for rowIdx := 0; rowIdx <= int(sheet.MaxRow); rowIdx++ {
			row := sheet.Row(rowIdx)
			if row == nil {
				continue
			}
			var cells []string
			for colIdx := 0; colIdx < row.LastCol(); colIdx++ {
				cells = append(cells, row.Col(colIdx))
			}
			rows = append(rows, cells)
		}
		if len(rows) == 0 {
			continue
		}

		fmt.Fprintf(&md, "## %s\n", name)
		md.WriteString(markdownTable(rows))
		md.WriteString("\n")
	}
	return &result{Markdown: md.String()}, nil
}
