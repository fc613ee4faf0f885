// Package document converts raw document bytes and fetched URLs into
// markdown. Converters register against MIME types and extensions; the
// first one that accepts the stream wins.
package document

import (
	"context"
	"strings"

	"mdserver/mdserver/config"
	"mdserver/mdserver/utils/detect"
	"mdserver/mdserver/utils/types"
)

// StreamInfo describes the input a converter is offered.
type StreamInfo struct {
	MIMEType  string
	Extension string
	Filename  string
	URL       string
}

type result struct {
	Markdown string
	Title    string
}

// Converter is implemented by each format handler.
type Converter interface {
	Accepts(info StreamInfo) bool
	Convert(data []byte, info StreamInfo) (*result, error)
}

// Backend is the non-browser conversion path.
type Backend struct {
	cfg        config.Config
	converters []Converter
	fetcher    *fetcher
}

func NewBackend(cfg config.Config) *Backend {
	return &Backend{
		cfg: cfg,
		// ordered most-specific first; text is the catch-all
		converters: []Converter{
			&htmlConverter{},
			&pdfConverter{},
			&xlsxConverter{},
			&xlsConverter{},
			&csvConverter{},
			&feedConverter{},
			&textConverter{},
		},
		fetcher: newFetcher(cfg),
	}
}

// ConvertBytes sniffs the payload and runs it through the registry.
func (b *Backend) ConvertBytes(ctx context.Context, data []byte, filename, mimeHint string, opts types.ConversionOptions) (*types.BackendResult, error) {
	if len(data) == 0 {
		return nil, ErrEmptyDocument
	}

	mime := resolveMIME(data, filename, mimeHint)
	info := StreamInfo{
		MIMEType:  mime,
		Extension: extensionOf(filename),
		Filename:  filename,
	}

	if !detect.Convertible(mime) {
		return nil, &UnsupportedFormatError{MIMEType: mime, Extension: info.Extension}
	}

	for _, c := range b.converters {
		if !c.Accepts(info) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := c.Convert(data, info)
		if err != nil {
			return nil, err
		}
		return &types.BackendResult{
			Markdown:   normalizeMarkdown(res.Markdown),
			Title:      res.Title,
			MIMEType:   mime,
			SourceSize: len(data),
		}, nil
	}
	return nil, &UnsupportedFormatError{MIMEType: mime, Extension: info.Extension}
}

// ConvertURL fetches the target and converts the response body. The
// fetcher re-validates every redirect hop against the network policy.
func (b *Backend) ConvertURL(ctx context.Context, rawURL string, opts types.ConversionOptions) (*types.BackendResult, error) {
	data, contentType, err := b.fetcher.fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	res, err := b.ConvertBytes(ctx, data, filenameFromURL(rawURL), contentType, opts)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// resolveMIME reconciles sniffed bytes with the caller's hint. Magic
// bytes always win over the hint so a mislabelled binary cannot be fed
// to a text converter.
func resolveMIME(data []byte, filename, mimeHint string) string {
	sniffed := detect.DetectContent(data, filename)
	hint := strings.TrimSpace(strings.Split(mimeHint, ";")[0])
	if hint == "" || hint == "application/octet-stream" {
		return sniffed
	}
	// an explicit hint refines generic text or a bare zip, nothing else
	if sniffed == "text/plain" || sniffed == "text/markdown" {
		if detect.SourceTypeFor(hint) != "unknown" {
			return hint
		}
	}
	if sniffed == "application/zip" && detect.IsZipContainer(hint) {
		return hint
	}
	return sniffed
}

func extensionOf(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return ""
	}
	return strings.ToLower(filename[idx:])
}

func filenameFromURL(rawURL string) string {
	trimmed := strings.TrimRight(rawURL, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 {
		return ""
	}
	name := trimmed[idx+1:]
	if q := strings.IndexAny(name, "?#"); q >= 0 {
		name = name[:q]
	}
	if strings.Contains(name, ".") {
		return name
	}
	return ""
}
