package convert

import (
	"context"
	"errors"
	"strings"
	"testing"

	"mdserver/mdserver/services/document"
	"mdserver/mdserver/utils/logging"
	"mdserver/mdserver/utils/types"
)

func init() {
	logging.InitTestLogger()
}

type stubDocument struct {
	bytesResult *types.BackendResult
	urlResult   *types.BackendResult
	err         error
	lastMIME    string
}

func (s *stubDocument) ConvertBytes(ctx context.Context, data []byte, filename, mimeHint string, opts types.ConversionOptions) (*types.BackendResult, error) {
	s.lastMIME = mimeHint
	if s.err != nil {
		return nil, s.err
	}
	return s.bytesResult, nil
}

func (s *stubDocument) ConvertURL(ctx context.Context, rawURL string, opts types.ConversionOptions) (*types.BackendResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.urlResult, nil
}

type stubBrowser struct {
	available bool
	html      string
	err       error
	called    bool
}

func (s *stubBrowser) Available() bool { return s.available }

func (s *stubBrowser) Render(ctx context.Context, rawURL string) (string, error) {
	s.called = true
	return s.html, s.err
}

func newTestService(doc *stubDocument, br *stubBrowser) *Service {
	return NewService(testConfig(), doc, br)
}

func defaultOptions(t *testing.T) types.ConversionOptions {
	t.Helper()
	opts, err := NormalizeOptions(nil, testConfig())
	if err != nil {
		t.Fatal(err)
	}
	return opts
}

func TestConvertText(t *testing.T) {
	doc := &stubDocument{bytesResult: &types.BackendResult{
		Markdown: "# Hi", MIMEType: "text/markdown", SourceSize: 4,
	}}
	svc := newTestService(doc, &stubBrowser{})

	res, err := svc.Convert(context.Background(), &types.ConversionRequest{
		Kind:    types.KindText,
		Text:    "# Hi",
		Options: defaultOptions(t),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Markdown != "# Hi" {
		t.Errorf("unexpected markdown %q", res.Markdown)
	}
	if res.Title != "Hi" {
		t.Errorf("expected extracted title, got %q", res.Title)
	}
	if res.Metadata.SourceType != "markdown" {
		t.Errorf("unexpected source type %q", res.Metadata.SourceType)
	}
}

func TestConvertBlockedURL(t *testing.T) {
	cfg := testConfig()
	cfg.AllowPrivateNetworks = false
	svc := NewService(cfg, &stubDocument{}, &stubBrowser{})

	_, err := svc.Convert(context.Background(), &types.ConversionRequest{
		Kind:    types.KindURL,
		URL:     "http://169.254.169.254/latest/meta-data/",
		Options: defaultOptions(t),
	})
	ce, ok := AsError(err)
	if !ok || ce.Code != CodeSSRFBlocked {
		t.Fatalf("expected SSRF_BLOCKED, got %v", err)
	}
}

func TestConvertInvalidURL(t *testing.T) {
	svc := newTestService(&stubDocument{}, &stubBrowser{})
	_, err := svc.Convert(context.Background(), &types.ConversionRequest{
		Kind:    types.KindURL,
		URL:     "ftp://example.com/file",
		Options: defaultOptions(t),
	})
	if ce, ok := AsError(err); !ok || ce.Code != CodeInvalidURL {
		t.Fatalf("expected INVALID_URL, got %v", err)
	}
}

func TestConvertURLWithBrowser(t *testing.T) {
	doc := &stubDocument{bytesResult: &types.BackendResult{
		Markdown: "rendered", MIMEType: "text/html", SourceSize: 20,
	}}
	br := &stubBrowser{available: true, html: "<html><body>rendered</body></html>"}
	svc := newTestService(doc, br)

	opts := defaultOptions(t)
	opts.JSRendering = true
	res, err := svc.Convert(context.Background(), &types.ConversionRequest{
		Kind:    types.KindURL,
		URL:     "https://example.com/app",
		Options: opts,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !br.called {
		t.Error("expected browser backend to be used")
	}
	if doc.lastMIME != "text/html" {
		t.Errorf("rendered html should be converted as text/html, got %q", doc.lastMIME)
	}
	if res.Metadata.SourceType != "html" {
		t.Errorf("unexpected source type %q", res.Metadata.SourceType)
	}
}

func TestConvertURLBrowserUnavailableFallsBack(t *testing.T) {
	doc := &stubDocument{urlResult: &types.BackendResult{
		Markdown: "plain fetch", MIMEType: "text/html", SourceSize: 11,
	}}
	br := &stubBrowser{available: false}
	svc := newTestService(doc, br)

	opts := defaultOptions(t)
	opts.JSRendering = true
	res, err := svc.Convert(context.Background(), &types.ConversionRequest{
		Kind:    types.KindURL,
		URL:     "https://example.com/app",
		Options: opts,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if br.called {
		t.Error("unavailable browser must not be called")
	}
	if len(res.Metadata.Warnings) == 0 {
		t.Error("expected a fallback warning in metadata")
	}
}

func TestConvertUnknownExtension(t *testing.T) {
	svc := newTestService(&stubDocument{}, &stubBrowser{})
	_, err := svc.Convert(context.Background(), &types.ConversionRequest{
		Kind:     types.KindFile,
		Payload:  []byte("hello"),
		Filename: "data.unknownext",
		Options:  defaultOptions(t),
	})
	ce, ok := AsError(err)
	if !ok || ce.Code != CodeUnsupportedFormat {
		t.Fatalf("expected UNSUPPORTED_FORMAT, got %v", err)
	}
	if ce.Details["extension"] != ".unknownext" {
		t.Errorf("expected extension in details, got %v", ce.Details)
	}
}

func TestConvertErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"unsupported", &document.UnsupportedFormatError{MIMEType: "image/png"}, CodeUnsupportedFormat},
		{"not found", &document.HTTPStatusError{URL: "https://e.com", StatusCode: 404}, CodeNotFound},
		{"forbidden", &document.HTTPStatusError{URL: "https://e.com", StatusCode: 403}, CodeAccessDenied},
		{"server error", &document.HTTPStatusError{URL: "https://e.com", StatusCode: 500}, CodeFetchFailed},
		{"empty", document.ErrEmptyDocument, CodeContentEmpty},
		{"parse", &document.ParseError{Format: "pdf", Err: errors.New("broken")}, CodeConversionFailed},
		{"opaque", errors.New("mystery"), CodeConversionFailed},
	}
	for _, tc := range cases {
		doc := &stubDocument{err: tc.err}
		svc := newTestService(doc, &stubBrowser{})
		_, err := svc.Convert(context.Background(), &types.ConversionRequest{
			Kind:    types.KindText,
			Text:    "x",
			Options: defaultOptions(t),
		})
		ce, ok := AsError(err)
		if !ok || ce.Code != tc.want {
			t.Errorf("%s: expected %s, got %v", tc.name, tc.want, err)
		}
	}
}

func TestConvertEmptyResult(t *testing.T) {
	doc := &stubDocument{bytesResult: &types.BackendResult{Markdown: "   \n", MIMEType: "text/plain"}}
	svc := newTestService(doc, &stubBrowser{})
	_, err := svc.Convert(context.Background(), &types.ConversionRequest{
		Kind:    types.KindText,
		Text:    "x",
		Options: defaultOptions(t),
	})
	if ce, ok := AsError(err); !ok || ce.Code != CodeContentEmpty {
		t.Fatalf("expected CONTENT_EMPTY, got %v", err)
	}
}

func TestConvertAppliesTruncation(t *testing.T) {
	long := strings.Repeat("word ", 100)
	doc := &stubDocument{bytesResult: &types.BackendResult{Markdown: long, MIMEType: "text/plain", SourceSize: len(long)}}
	svc := newTestService(doc, &stubBrowser{})

	opts := defaultOptions(t)
	opts.MaxLength = intPtr(20)
	res, err := svc.Convert(context.Background(), &types.ConversionRequest{
		Kind:    types.KindText,
		Text:    long,
		Options: opts,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Metadata.WasTruncated {
		t.Fatal("expected truncation metadata")
	}
	if res.Metadata.OriginalLength == nil || *res.Metadata.OriginalLength == 0 {
		t.Error("expected original_length to be recorded")
	}
	if res.Metadata.TruncationMode != "max_length" {
		t.Errorf("unexpected truncation mode %q", res.Metadata.TruncationMode)
	}
	if !strings.HasSuffix(res.Markdown, "...") {
		t.Errorf("expected char cap indicator, got %q", res.Markdown)
	}
}

func TestNeedsRendering(t *testing.T) {
	if !needsRendering("https://twitter.com/some/status") {
		t.Error("expected twitter to need rendering")
	}
	if !needsRendering("https://www.instagram.com/p/abc/") {
		t.Error("expected instagram to need rendering")
	}
	if needsRendering("https://example.com/blog") {
		t.Error("expected plain site to not need rendering")
	}
}
