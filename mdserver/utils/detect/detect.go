// Package detect sniffs MIME types from raw bytes, filenames, and
// caller hints, and owns the table of formats the server can convert.
package detect

import (
	"bytes"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

type signature struct {
	prefix []byte
	mime   string
}

// Ordered: longer and more specific prefixes first. Checked before any
// library-based sniffing so disguised binaries cannot masquerade as text.
var signatures = []signature{
	{[]byte("%PDF-"), "application/pdf"},
	{[]byte("PK\x03\x04"), "application/zip"},
	{[]byte("\x89PNG\r\n\x1a\n"), "image/png"},
	{[]byte("\xff\xd8\xff"), "image/jpeg"},
	{[]byte("GIF87a"), "image/gif"},
	{[]byte("GIF89a"), "image/gif"},
	{[]byte("RIFF"), "audio/wav"},
	{[]byte("ID3"), "audio/mpeg"},
	{[]byte("\xd0\xcf\x11\xe0\xa1\xb1\x1a\xe1"), "application/vnd.ms-excel"},
}

var extensionMIME = map[string]string{
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".xls":  "application/vnd.ms-excel",
	".html": "text/html",
	".htm":  "text/html",
	".md":   "text/markdown",
	".txt":  "text/plain",
	".csv":  "text/csv",
	".json": "application/json",
	".xml":  "text/xml",
	".rss":  "application/rss+xml",
	".atom": "application/atom+xml",
	".epub": "application/epub+zip",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".wav":  "audio/wav",
	".mp3":  "audio/mpeg",
}

// DetectMagicBytes classifies raw bytes without trusting any caller
// hint. Empty input is treated as empty text, not an error.
func DetectMagicBytes(data []byte) string {
	if len(data) == 0 {
		return "text/plain"
	}
	for _, sig := range signatures {
		if bytes.HasPrefix(data, sig.prefix) {
			return sig.mime
		}
	}

	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	trimmed := bytes.TrimLeft(head, " \t\r\n")
	lower := bytes.ToLower(trimmed)
	if bytes.HasPrefix(lower, []byte("<html")) || bytes.HasPrefix(lower, []byte("<!doctype html")) {
		return "text/html"
	}
	if bytes.HasPrefix(lower, []byte("<?xml")) {
		return "text/xml"
	}

	if looksBinary(head) {
		return "application/octet-stream"
	}
	if bytes.HasPrefix(trimmed, []byte("#")) || bytes.HasPrefix(trimmed, []byte("* ")) {
		return "text/markdown"
	}
	return "text/plain"
}

// looksBinary reports whether a sample contains a NUL byte or is more
// than 30% non-printable.
func looksBinary(sample []byte) bool {
	if bytes.IndexByte(sample, 0) >= 0 {
		return true
	}
	nonPrintable := 0
	for _, b := range sample {
		if b < 0x20 && b != '\t' && b != '\n' && b != '\r' {
			nonPrintable++
		}
	}
	return nonPrintable*10 > len(sample)*3
}

// zipContainerMIME lists the zip containers that hold a document the
// detector knows about. A sniffed application/zip may be narrowed to
// one of these by deeper sniffing, a filename extension, or a hint.
var zipContainerMIME = map[string]bool{
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   true,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": true,
	"application/epub+zip": true,
}

// IsZipContainer reports whether a MIME type is a known zip-based
// document container.
func IsZipContainer(mime string) bool {
	return zipContainerMIME[mime]
}

// DetectContent resolves the effective MIME type for a payload:
// magic bytes win, then library sniffing for anything the signature
// table calls octet-stream or a bare zip, then the filename extension.
func DetectContent(data []byte, filename string) string {
	mime := DetectMagicBytes(data)
	if mime == "application/octet-stream" || mime == "application/zip" {
		if detected := mimetype.Detect(data); detected != nil {
			m := strings.Split(detected.String(), ";")[0]
			if m != "application/octet-stream" && m != "application/zip" {
				mime = m
			}
		}
	}
	// a bare zip with a container extension is that container; xlsx
	// and friends are zip archives first
	if mime == "application/zip" {
		if byExt := MIMEFromFilename(filename); zipContainerMIME[byExt] {
			mime = byExt
		}
	}
	if mime == "text/plain" || mime == "application/octet-stream" {
		if byExt := MIMEFromFilename(filename); byExt != "" {
			// never let an extension upgrade sniffed text to a binary type
			if mime == "application/octet-stream" || strings.HasPrefix(byExt, "text/") || byExt == "application/json" {
				mime = byExt
			}
		}
	}
	return mime
}

// MIMEFromFilename maps a filename extension to a MIME type, or ""
// when the extension is unknown.
func MIMEFromFilename(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return ""
	}
	return extensionMIME[strings.ToLower(filename[idx:])]
}

// HasKnownExtension reports whether a filename carries an extension
// the server recognizes at all.
func HasKnownExtension(filename string) bool {
	return MIMEFromFilename(filename) != ""
}

var sourceTypes = map[string]string{
	"application/pdf": "pdf",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   "docx",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": "pptx",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         "xlsx",
	"application/vnd.ms-excel": "xls",
	"text/html":                "html",
	"text/markdown":            "markdown",
	"text/plain":               "text",
	"text/csv":                 "csv",
	"application/json":         "json",
	"text/xml":                 "xml",
	"application/xml":          "xml",
	"application/rss+xml":      "rss",
	"application/atom+xml":     "rss",
	"application/epub+zip":     "epub",
	"image/png":                "image",
	"image/jpeg":               "image",
	"image/gif":                "image",
	"audio/wav":                "audio",
	"audio/mpeg":               "audio",
}

// SourceTypeFor returns the short format label used in response
// metadata ("pdf", "html", ...), or "unknown".
func SourceTypeFor(mime string) string {
	mime = strings.Split(mime, ";")[0]
	if t, ok := sourceTypes[strings.TrimSpace(mime)]; ok {
		return t
	}
	return "unknown"
}

// Convertible reports whether the server has a conversion path for the
// MIME type. Image and audio types are recognized but not convertible
// (no OCR or transcription backend is wired in).
func Convertible(mime string) bool {
	switch SourceTypeFor(mime) {
	case "pdf", "xlsx", "xls", "html", "markdown", "text", "csv", "json", "xml", "rss":
		return true
	}
	return false
}

// SupportedFormats is the capability map served by GET /formats.
// Keys are the short format labels; MaxSizeMB comes from config and is
// filled in by the controller.
func SupportedFormats() map[string][]string {
	return map[string][]string{
		"pdf":      {"application/pdf"},
		"xlsx":     {"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
		"xls":      {"application/vnd.ms-excel"},
		"html":     {"text/html"},
		"markdown": {"text/markdown"},
		"text":     {"text/plain"},
		"csv":      {"text/csv"},
		"json":     {"application/json"},
		"xml":      {"text/xml", "application/xml"},
		"rss":      {"application/rss+xml", "application/atom+xml"},
	}
}

// FormatExtensions lists the filename extensions advertised for a
// format label in GET /formats.
func FormatExtensions(format string) []string {
	out := []string{}
	for ext, mime := range extensionMIME {
		if SourceTypeFor(mime) == format {
			out = append(out, ext)
		}
	}
	return out
}
