package convert

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"go.uber.org/zap"

	"mdserver/mdserver/config"
	"mdserver/mdserver/services/document"
	"mdserver/mdserver/utils/detect"
	"mdserver/mdserver/utils/logging"
	"mdserver/mdserver/utils/types"
	"mdserver/mdserver/utils/urlguard"
)

// DocumentBackend converts raw bytes or fetched URLs to markdown.
type DocumentBackend interface {
	ConvertBytes(ctx context.Context, data []byte, filename, mimeHint string, opts types.ConversionOptions) (*types.BackendResult, error)
	ConvertURL(ctx context.Context, rawURL string, opts types.ConversionOptions) (*types.BackendResult, error)
}

// BrowserBackend renders a page with a real browser and returns its HTML.
type BrowserBackend interface {
	Available() bool
	Render(ctx context.Context, rawURL string) (string, error)
}

// Service routes classified requests to the right backend, bounds
// concurrency, enforces timeouts, and shapes results.
type Service struct {
	cfg      config.Config
	document DocumentBackend
	browser  BrowserBackend
	sem      chan struct{}
}

func NewService(cfg config.Config, doc DocumentBackend, browser BrowserBackend) *Service {
	workers := cfg.MaxWorkers
	if workers < 1 {
		workers = 1
	}
	return &Service{
		cfg:      cfg,
		document: doc,
		browser:  browser,
		sem:      make(chan struct{}, workers),
	}
}

// Domains that serve empty shells without JavaScript. URL requests to
// these get routed through the browser backend even when the caller
// did not ask for rendering.
var renderDomains = []string{
	"twitter.com",
	"x.com",
	"instagram.com",
	"facebook.com",
	"linkedin.com",
	"medium.com",
}

// Convert runs one conversion end to end. Always returns either a
// result or an *Error.
func (s *Service) Convert(ctx context.Context, req *types.ConversionRequest) (*types.ConversionResult, error) {
	defer logging.LogDuration(ctx, "Service.Convert")()

	timeout := s.effectiveTimeout(req)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// bounded worker pool; waiting counts against the deadline
	select {
	case s.sem <- struct{}{}:
		defer func() { <-s.sem }()
	case <-ctx.Done():
		return nil, NewError(CodeTimeout, "server is busy and the request timed out waiting for a worker")
	}

	start := time.Now()
	res, warnings, err := s.dispatch(ctx, req)
	if err != nil {
		return nil, s.classifyFailure(ctx, req, err)
	}
	if strings.TrimSpace(res.Markdown) == "" {
		return nil, NewError(CodeContentEmpty, "conversion produced no content")
	}

	outcome := ApplyTruncation(res.Markdown, req.Options)

	title := res.Title
	if title == "" {
		title = ExtractTitle(outcome.Markdown)
	}

	markdown := outcome.Markdown
	if req.Options.IncludeFrontmatter {
		markdown = PrependFrontmatter(markdown, title, req.URL, detect.SourceTypeFor(res.MIMEType))
	}

	meta := types.ConversionMetadata{
		SourceType:       detect.SourceTypeFor(res.MIMEType),
		SourceSize:       res.SourceSize,
		MarkdownSize:     len(markdown),
		ConversionTimeMs: time.Since(start).Milliseconds(),
		DetectedFormat:   res.MIMEType,
		Warnings:         warnings,
		WasTruncated:     outcome.WasTruncated,
	}
	if outcome.WasTruncated {
		origLen, origTok := outcome.OriginalLength, outcome.OriginalTokens
		meta.OriginalLength = &origLen
		meta.OriginalTokens = &origTok
		meta.TruncationMode = outcome.Mode
	}

	return &types.ConversionResult{
		Markdown: markdown,
		Title:    title,
		Metadata: meta,
	}, nil
}

func (s *Service) effectiveTimeout(req *types.ConversionRequest) time.Duration {
	seconds := req.Options.TimeoutSeconds
	if req.Kind == types.KindURL && s.wantsBrowser(req) && seconds < s.cfg.BrowserTimeoutSeconds {
		seconds = s.cfg.BrowserTimeoutSeconds
	}
	if req.Options.OCREnabled && seconds < s.cfg.OCRTimeoutSeconds {
		seconds = s.cfg.OCRTimeoutSeconds
	}
	return time.Duration(seconds) * time.Second
}

func (s *Service) wantsBrowser(req *types.ConversionRequest) bool {
	if req.Options.JSRendering {
		return true
	}
	return needsRendering(req.URL)
}

func needsRendering(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, domain := range renderDomains {
		if strings.Contains(lower, "//"+domain+"/") || strings.Contains(lower, "."+domain+"/") ||
			strings.HasSuffix(lower, "//"+domain) || strings.HasSuffix(lower, "."+domain) {
			return true
		}
	}
	return false
}

func (s *Service) dispatch(ctx context.Context, req *types.ConversionRequest) (*types.BackendResult, []string, error) {
	switch req.Kind {
	case types.KindURL:
		return s.convertURL(ctx, req)
	case types.KindFile:
		res, err := s.convertFile(ctx, req)
		return res, nil, err
	case types.KindText:
		res, err := s.document.ConvertBytes(ctx, []byte(req.Text), req.Filename, req.MIMEHint, req.Options)
		return res, nil, err
	}
	return nil, nil, NewError(CodeInvalidInput, fmt.Sprintf("unknown input kind %q", req.Kind))
}

func (s *Service) convertURL(ctx context.Context, req *types.ConversionRequest) (*types.BackendResult, []string, error) {
	policy := urlguard.Policy{
		AllowLocalhost:       s.cfg.AllowLocalhost,
		AllowPrivateNetworks: s.cfg.AllowPrivateNetworks,
	}
	if err := urlguard.ValidateURL(req.URL, policy); err != nil {
		return nil, nil, err
	}

	var warnings []string
	if s.wantsBrowser(req) {
		if s.browser != nil && s.browser.Available() {
			html, err := s.browser.Render(ctx, req.URL)
			if err != nil {
				return nil, nil, err
			}
			res, err := s.document.ConvertBytes(ctx, []byte(html), "", "text/html", req.Options)
			return res, nil, err
		}
		warnings = append(warnings, "js_rendering unavailable, fetched without a browser")
		logging.AppLogger.Warn("browser backend unavailable, falling back to plain fetch",
			zap.String("url", req.URL))
	}

	res, err := s.document.ConvertURL(ctx, req.URL, req.Options)
	return res, warnings, err
}

func (s *Service) convertFile(ctx context.Context, req *types.ConversionRequest) (*types.BackendResult, error) {
	// a filename with an extension nothing recognizes is rejected up
	// front rather than silently converted as plain text
	if req.Filename != "" && strings.Contains(req.Filename, ".") && !detect.HasKnownExtension(req.Filename) {
		if req.MIMEHint == "" || req.MIMEHint == "application/octet-stream" {
			idx := strings.LastIndex(req.Filename, ".")
			return nil, NewErrorWithDetails(CodeUnsupportedFormat,
				"file extension is not supported",
				map[string]any{"extension": req.Filename[idx:], "filename": req.Filename})
		}
	}
	return s.document.ConvertBytes(ctx, req.Payload, req.Filename, req.MIMEHint, req.Options)
}

// classifyFailure folds every backend failure into the error taxonomy.
func (s *Service) classifyFailure(ctx context.Context, req *types.ConversionRequest, err error) error {
	if ce, ok := AsError(err); ok {
		return ce
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return NewErrorWithDetails(CodeTimeout, "conversion timed out",
			map[string]any{"timeout_seconds": req.Options.TimeoutSeconds})
	}
	if errors.Is(err, urlguard.ErrBlocked) {
		return WrapError(CodeSSRFBlocked, "url resolves to a blocked network range", err)
	}
	if errors.Is(err, urlguard.ErrInvalidURL) {
		return WrapError(CodeInvalidURL, "url is not valid", err)
	}
	if errors.Is(err, document.ErrEmptyDocument) {
		return WrapError(CodeContentEmpty, "document contains no convertible content", err)
	}

	var unsupported *document.UnsupportedFormatError
	if errors.As(err, &unsupported) {
		return NewErrorWithDetails(CodeUnsupportedFormat, "no converter accepts this format",
			map[string]any{"mime_type": unsupported.MIMEType, "extension": unsupported.Extension})
	}
	var status *document.HTTPStatusError
	if errors.As(err, &status) {
		details := map[string]any{"url": status.URL, "status": status.StatusCode}
		switch {
		case status.StatusCode == 404:
			return NewErrorWithDetails(CodeNotFound, "remote server returned 404", details)
		case status.StatusCode == 401 || status.StatusCode == 403:
			return NewErrorWithDetails(CodeAccessDenied, "remote server denied access", details)
		default:
			return NewErrorWithDetails(CodeFetchFailed,
				fmt.Sprintf("remote server returned status %d", status.StatusCode), details)
		}
	}
	var fetch *document.FetchError
	if errors.As(err, &fetch) {
		var netErr net.Error
		if errors.As(fetch.Err, &netErr) && netErr.Timeout() {
			return WrapError(CodeTimeout, "fetching the url timed out", err)
		}
		var opErr *net.OpError
		if errors.As(fetch.Err, &opErr) {
			return WrapError(CodeConnectionFailed, "could not connect to the remote server", err)
		}
		return WrapError(CodeFetchFailed, "failed to fetch the url", err)
	}
	var parse *document.ParseError
	if errors.As(err, &parse) {
		return NewErrorWithDetails(CodeConversionFailed,
			fmt.Sprintf("failed to parse %s document", parse.Format),
			map[string]any{"format": parse.Format})
	}

	logging.ErrorLogger.Error("unclassified conversion failure", zap.Error(err))
	return WrapError(CodeConversionFailed, "conversion failed", err)
}
