package convert

import (
	"bytes"
	"encoding/base64"
	"mime/multipart"
	"testing"

	"mdserver/mdserver/utils/types"
)

func TestClassifyJSONURL(t *testing.T) {
	req, _, err := Classify("application/json", []byte(`{"url": "https://example.com/doc"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Kind != types.KindURL {
		t.Errorf("expected kind url, got %q", req.Kind)
	}
	if req.URL != "https://example.com/doc" {
		t.Errorf("unexpected url %q", req.URL)
	}
}

func TestClassifyJSONText(t *testing.T) {
	req, opts, err := Classify("application/json",
		[]byte(`{"text": "# Hello", "mime_type": "text/markdown", "options": {"max_length": 10}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Kind != types.KindText {
		t.Errorf("expected kind text, got %q", req.Kind)
	}
	if req.Text != "# Hello" {
		t.Errorf("unexpected text %q", req.Text)
	}
	if req.MIMEHint != "text/markdown" {
		t.Errorf("unexpected mime hint %q", req.MIMEHint)
	}
	if opts == nil || opts.MaxLength == nil || *opts.MaxLength != 10 {
		t.Error("expected options.max_length to survive classification")
	}
}

func TestClassifyJSONContent(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 data"))
	req, _, err := Classify("application/json",
		[]byte(`{"content": "`+encoded+`", "filename": "doc.pdf"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Kind != types.KindFile {
		t.Errorf("expected kind file, got %q", req.Kind)
	}
	if string(req.Payload) != "%PDF-1.4 data" {
		t.Errorf("payload not decoded: %q", req.Payload)
	}
	if req.Filename != "doc.pdf" {
		t.Errorf("unexpected filename %q", req.Filename)
	}
}

func TestClassifyJSONMultipleInputs(t *testing.T) {
	_, _, err := Classify("application/json",
		[]byte(`{"url": "https://example.com", "text": "hi"}`))
	ce, ok := AsError(err)
	if !ok || ce.Code != CodeInvalidInput {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
	if ce.Details["fields"] == nil {
		t.Error("expected offending fields in details")
	}
}

func TestClassifyJSONNoInput(t *testing.T) {
	_, _, err := Classify("application/json", []byte(`{"filename": "a.txt"}`))
	if ce, ok := AsError(err); !ok || ce.Code != CodeInvalidInput {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}

func TestClassifyJSONEmptyText(t *testing.T) {
	_, _, err := Classify("application/json", []byte(`{"text": ""}`))
	if ce, ok := AsError(err); !ok || ce.Code != CodeContentEmpty {
		t.Fatalf("expected CONTENT_EMPTY, got %v", err)
	}
}

func TestClassifyJSONBadBase64(t *testing.T) {
	_, _, err := Classify("application/json", []byte(`{"content": "!!!not-base64!!!"}`))
	if ce, ok := AsError(err); !ok || ce.Code != CodeInvalidInput {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}

func TestClassifyMultipart(t *testing.T) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", "notes.md")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte("# Notes\n\nbody"))
	w.WriteField("options", `{"include_frontmatter": true}`)
	w.Close()

	req, opts, err := Classify(w.FormDataContentType(), buf.Bytes())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Kind != types.KindFile {
		t.Errorf("expected kind file, got %q", req.Kind)
	}
	if req.Filename != "notes.md" {
		t.Errorf("unexpected filename %q", req.Filename)
	}
	if opts == nil || opts.IncludeFrontmatter == nil || !*opts.IncludeFrontmatter {
		t.Error("expected include_frontmatter option from form field")
	}
}

func TestClassifyMultipartNoFile(t *testing.T) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	w.WriteField("options", `{}`)
	w.Close()

	_, _, err := Classify(w.FormDataContentType(), buf.Bytes())
	if ce, ok := AsError(err); !ok || ce.Code != CodeInvalidInput {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}

func TestClassifyBinaryFallback(t *testing.T) {
	req, _, err := Classify("application/pdf", []byte("%PDF-1.4 raw"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Kind != types.KindFile {
		t.Errorf("expected kind file, got %q", req.Kind)
	}
	if req.MIMEHint != "application/pdf" {
		t.Errorf("unexpected mime hint %q", req.MIMEHint)
	}
}

func TestClassifyEmptyBody(t *testing.T) {
	_, _, err := Classify("text/plain", nil)
	if ce, ok := AsError(err); !ok || ce.Code != CodeInvalidInput {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}
