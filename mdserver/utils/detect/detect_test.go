package detect

import "testing"

func TestDetectMagicBytes(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want string
	}{
		{"pdf", []byte("%PDF-1.7 rest"), "application/pdf"},
		{"zip", []byte("PK\x03\x04more"), "application/zip"},
		{"png", []byte("\x89PNG\r\n\x1a\nxxxx"), "image/png"},
		{"jpeg", []byte("\xff\xd8\xffdata"), "image/jpeg"},
		{"gif", []byte("GIF89aXYZ"), "image/gif"},
		{"html", []byte("  <html><body>hi</body></html>"), "text/html"},
		{"doctype", []byte("<!DOCTYPE html><html></html>"), "text/html"},
		{"xml", []byte("<?xml version=\"1.0\"?><root/>"), "text/xml"},
		{"markdown heading", []byte("# Title\n\nbody"), "text/markdown"},
		{"plain", []byte("just some words"), "text/plain"},
		{"empty", nil, "text/plain"},
		{"nul byte", []byte("ab\x00cd"), "application/octet-stream"},
	}
	for _, tc := range cases {
		if got := DetectMagicBytes(tc.data); got != tc.want {
			t.Errorf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestDetectMagicBytesNonPrintable(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 'a', 'b'}
	if got := DetectMagicBytes(data); got != "application/octet-stream" {
		t.Errorf("expected octet-stream for mostly non-printable data, got %q", got)
	}
}

func TestMIMEFromFilename(t *testing.T) {
	if got := MIMEFromFilename("report.PDF"); got != "application/pdf" {
		t.Errorf("expected application/pdf, got %q", got)
	}
	if got := MIMEFromFilename("noext"); got != "" {
		t.Errorf("expected empty for extensionless name, got %q", got)
	}
	if got := MIMEFromFilename("data.unknownext"); got != "" {
		t.Errorf("expected empty for unknown extension, got %q", got)
	}
}

func TestDetectContentExtensionDoesNotOverrideMagic(t *testing.T) {
	// PDF bytes with an html filename must stay a PDF
	if got := DetectContent([]byte("%PDF-1.4"), "page.html"); got != "application/pdf" {
		t.Errorf("expected application/pdf, got %q", got)
	}
}

func TestDetectContentZipContainerExtension(t *testing.T) {
	zip := []byte("PK\x03\x04not a real archive")
	want := "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	if got := DetectContent(zip, "report.xlsx"); got != want {
		t.Errorf("expected xlsx container, got %q", got)
	}
	if got := DetectContent(zip, "archive.bin"); got != "application/zip" {
		t.Errorf("expected bare zip without container extension, got %q", got)
	}
}

func TestDetectContentUsesExtensionForPlainText(t *testing.T) {
	if got := DetectContent([]byte("a,b,c\n1,2,3\n"), "table.csv"); got != "text/csv" {
		t.Errorf("expected text/csv, got %q", got)
	}
}

func TestSourceTypeFor(t *testing.T) {
	cases := map[string]string{
		"application/pdf":          "pdf",
		"text/html; charset=utf-8": "html",
		"text/csv":                 "csv",
		"application/json":         "json",
		"application/x-mystery":    "unknown",
	}
	for mime, want := range cases {
		if got := SourceTypeFor(mime); got != want {
			t.Errorf("%s: expected %q, got %q", mime, want, got)
		}
	}
}

func TestConvertible(t *testing.T) {
	if !Convertible("text/html") {
		t.Error("expected text/html to be convertible")
	}
	if Convertible("image/png") {
		t.Error("expected image/png to not be convertible")
	}
	if Convertible("audio/wav") {
		t.Error("expected audio/wav to not be convertible")
	}
}
