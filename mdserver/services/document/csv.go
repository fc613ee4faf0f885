package document

import (
	"encoding/csv"
	"strings"
)

type csvConverter struct{}

func (c *csvConverter) Accepts(info StreamInfo) bool {
	if info.Extension == ".csv" {
		return true
	}
	mime := strings.ToLower(info.MIMEType)
	return strings.HasPrefix(mime, "text/csv") || strings.HasPrefix(mime, "application/csv")
}

func (c *csvConverter) Convert(data []byte, info StreamInfo) (*result, error) {
	r := csv.NewReader(strings.NewReader(decodeToUTF8(data)))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, &ParseError{Format: "csv", Err: err}
	}
	if len(records) == 0 {
		return &result{}, nil
	}
	return &result{Markdown: markdownTable(records)}, nil
}

// markdownTable renders records as a pipe table; the first row is the
// header. Ragged rows are padded against the header width.
func markdownTable(records [][]string) string {
	if len(records) == 0 {
		return ""
	}
	numCols := len(records[0])

	var b strings.Builder
	writeRow := func(row []string) {
		b.WriteString("|")
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(row) {
				cell = strings.ReplaceAll(row[i], "|", "\\|")
			}
			b.WriteString(" ")
			b.WriteString(cell)
			b.WriteString(" |")
		}
		b.WriteString("\n")
	}

	writeRow(records[0])
	b.WriteString("|")
	for i := 0; i < numCols; i++ {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")
	for _, row := range records[1:] {
		writeRow(row)
	}
	return b.String()
}
