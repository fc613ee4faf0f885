package document

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"mdserver/mdserver/config"
	"mdserver/mdserver/utils/types"
)

func testConfig() config.Config {
	return config.Config{
		MaxFileSize:            10 * 1024 * 1024,
		URLFetchTimeoutSeconds: 5,
		AllowLocalhost:         true,
	}
}

func convertBytes(t *testing.T, data []byte, filename, mimeHint string) *types.BackendResult {
	t.Helper()
	res, err := NewBackend(testConfig()).ConvertBytes(context.Background(), data, filename, mimeHint, types.ConversionOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return res
}

func TestConvertBytesHTML(t *testing.T) {
	html := `<html><head><title>Greeting</title></head><body><h1>Hi</h1><p>text</p></body></html>`
	res := convertBytes(t, []byte(html), "", "text/html")

	if !strings.Contains(res.Markdown, "# Hi") {
		t.Errorf("expected atx heading, got %q", res.Markdown)
	}
	if res.Title != "Greeting" {
		t.Errorf("expected title from <title>, got %q", res.Title)
	}
	if res.MIMEType != "text/html" {
		t.Errorf("unexpected mime %q", res.MIMEType)
	}
}

func TestConvertBytesHTMLStripsScript(t *testing.T) {
	html := `<html><body><p>keep</p><script>alert("drop")</script></body></html>`
	res := convertBytes(t, []byte(html), "", "text/html")
	if strings.Contains(res.Markdown, "alert") {
		t.Errorf("script content leaked into markdown: %q", res.Markdown)
	}
}

func TestConvertBytesMarkdownPassthrough(t *testing.T) {
	res := convertBytes(t, []byte("# Title\n\nbody"), "notes.md", "")
	if !strings.Contains(res.Markdown, "# Title") {
		t.Errorf("markdown altered: %q", res.Markdown)
	}
	if res.MIMEType != "text/markdown" {
		t.Errorf("unexpected mime %q", res.MIMEType)
	}
}

func TestConvertBytesCSV(t *testing.T) {
	res := convertBytes(t, []byte("name,age\nalice,30\nbob,25\n"), "people.csv", "")
	if !strings.Contains(res.Markdown, "| name | age |") {
		t.Errorf("expected table header, got %q", res.Markdown)
	}
	if !strings.Contains(res.Markdown, "| --- | --- |") {
		t.Errorf("expected separator row, got %q", res.Markdown)
	}
	if !strings.Contains(res.Markdown, "| alice | 30 |") {
		t.Errorf("expected data row, got %q", res.Markdown)
	}
}

func TestConvertBytesJSON(t *testing.T) {
	res := convertBytes(t, []byte(`{"b":1,"a":[2,3]}`), "data.json", "")
	if !strings.HasPrefix(res.Markdown, "```json") {
		t.Errorf("expected fenced json, got %q", res.Markdown)
	}
}

func TestConvertBytesXLSX(t *testing.T) {
	f := excelize.NewFile()
	f.SetCellValue("Sheet1", "A1", "name")
	f.SetCellValue("Sheet1", "B1", "age")
	f.SetCellValue("Sheet1", "A2", "alice")
	f.SetCellValue("Sheet1", "B2", 30)
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("building workbook: %v", err)
	}

	res := convertBytes(t, buf.Bytes(), "report.xlsx", "")
	if !strings.Contains(res.Markdown, "## Sheet1") {
		t.Errorf("expected sheet heading, got %q", res.Markdown)
	}
	if !strings.Contains(res.Markdown, "| name | age |") {
		t.Errorf("expected header row, got %q", res.Markdown)
	}
	if !strings.Contains(res.Markdown, "| alice | 30 |") {
		t.Errorf("expected data row, got %q", res.Markdown)
	}

	// a MIME hint alone must also rescue the zip-sniffed workbook
	res = convertBytes(t, buf.Bytes(), "",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if !strings.Contains(res.Markdown, "| alice | 30 |") {
		t.Errorf("hint-only workbook not converted: %q", res.Markdown)
	}
}

func TestConvertBytesUnsupportedImage(t *testing.T) {
	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)
	_, err := NewBackend(testConfig()).ConvertBytes(context.Background(), png, "pic.png", "", types.ConversionOptions{})
	var unsupported *UnsupportedFormatError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedFormatError, got %v", err)
	}
	if unsupported.MIMEType != "image/png" {
		t.Errorf("unexpected mime %q", unsupported.MIMEType)
	}
}

func TestConvertBytesEmpty(t *testing.T) {
	_, err := NewBackend(testConfig()).ConvertBytes(context.Background(), nil, "", "", types.ConversionOptions{})
	if !errors.Is(err, ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}
}

func TestConvertBytesMagicBeatsHint(t *testing.T) {
	// PDF bytes with a text/plain hint must not reach the text converter
	_, err := NewBackend(testConfig()).ConvertBytes(context.Background(), []byte("%PDF-1.4 broken"), "", "text/plain", types.ConversionOptions{})
	if err == nil {
		t.Fatal("expected pdf parse failure, got success")
	}
	var parse *ParseError
	if !errors.As(err, &parse) || parse.Format != "pdf" {
		t.Errorf("expected pdf ParseError, got %v", err)
	}
}

func TestConvertURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><title>Remote</title></head><body><h1>Hi</h1></body></html>`))
	}))
	defer srv.Close()

	res, err := NewBackend(testConfig()).ConvertURL(context.Background(), srv.URL, types.ConversionOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(res.Markdown, "# Hi") {
		t.Errorf("unexpected markdown %q", res.Markdown)
	}
	if res.Title != "Remote" {
		t.Errorf("unexpected title %q", res.Title)
	}
}

func TestConvertURLStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := NewBackend(testConfig()).ConvertURL(context.Background(), srv.URL+"/missing", types.ConversionOptions{})
	var status *HTTPStatusError
	if !errors.As(err, &status) || status.StatusCode != 404 {
		t.Fatalf("expected 404 HTTPStatusError, got %v", err)
	}
}

func TestNormalizeMarkdown(t *testing.T) {
	in := "line one  \r\nline two\r\n\n\n\n\nline three\x00\x01\n"
	out := normalizeMarkdown(in)
	if strings.Contains(out, "\r") {
		t.Error("CRLF not normalized")
	}
	if strings.Contains(out, "\n\n\n") {
		t.Error("blank lines not collapsed")
	}
	if strings.Contains(out, "\x00") || strings.Contains(out, "\x01") {
		t.Error("control characters not stripped")
	}
	if strings.Contains(out, "one  \n") {
		t.Error("trailing whitespace not stripped")
	}
}

func TestFilenameFromURL(t *testing.T) {
	if got := filenameFromURL("https://example.com/docs/report.pdf?v=2"); got != "report.pdf" {
		t.Errorf("expected report.pdf, got %q", got)
	}
	if got := filenameFromURL("https://example.com/docs/"); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
}
