package convert

import (
	"fmt"

	"mdserver/mdserver/config"
	"mdserver/mdserver/utils/types"
)

const (
	minTimeoutSeconds = 1
	maxTimeoutSeconds = 120
)

var validTruncateModes = map[string]bool{
	"chars":      true,
	"tokens":     true,
	"sections":   true,
	"paragraphs": true,
}

var validOutputFormats = map[string]bool{
	"json":     true,
	"markdown": true,
}

// NormalizeOptions fills config defaults into the caller-supplied
// overrides and rejects out-of-range values. Unknown option keys were
// already dropped by JSON decoding.
func NormalizeOptions(p *types.OptionsPayload, cfg config.Config) (types.ConversionOptions, error) {
	opts := types.ConversionOptions{
		TimeoutSeconds:     cfg.TimeoutSeconds,
		PreserveFormatting: true,
		OutputFormat:       "json",
	}
	if p == nil {
		return opts, nil
	}

	if p.JSRendering != nil {
		opts.JSRendering = *p.JSRendering
	}
	if p.ExtractImages != nil {
		opts.ExtractImages = *p.ExtractImages
	}
	if p.PreserveFormatting != nil {
		opts.PreserveFormatting = *p.PreserveFormatting
	}
	if p.OCREnabled != nil {
		opts.OCREnabled = *p.OCREnabled
	}
	if p.IncludeFrontmatter != nil {
		opts.IncludeFrontmatter = *p.IncludeFrontmatter
	}

	if p.TimeoutSeconds != nil {
		t := *p.TimeoutSeconds
		if t < minTimeoutSeconds || t > maxTimeoutSeconds {
			return opts, NewErrorWithDetails(CodeInvalidInput,
				fmt.Sprintf("timeout_seconds must be between %d and %d", minTimeoutSeconds, maxTimeoutSeconds),
				map[string]any{"timeout_seconds": t})
		}
		opts.TimeoutSeconds = t
	}

	if p.MaxLength != nil {
		if *p.MaxLength <= 0 {
			return opts, NewError(CodeInvalidInput, "max_length must be positive")
		}
		v := *p.MaxLength
		opts.MaxLength = &v
	}
	if p.MaxTokens != nil {
		if *p.MaxTokens <= 0 {
			return opts, NewError(CodeInvalidInput, "max_tokens must be positive")
		}
		v := *p.MaxTokens
		opts.MaxTokens = &v
	}

	if p.TruncateMode != nil {
		mode := *p.TruncateMode
		if !validTruncateModes[mode] {
			return opts, NewErrorWithDetails(CodeInvalidInput,
				"truncate_mode must be one of chars, tokens, sections, paragraphs",
				map[string]any{"truncate_mode": mode})
		}
		if p.TruncateLimit == nil || *p.TruncateLimit <= 0 {
			return opts, NewError(CodeInvalidInput, "truncate_mode requires a positive truncate_limit")
		}
		opts.TruncateMode = mode
		opts.TruncateLimit = *p.TruncateLimit
	} else if p.TruncateLimit != nil {
		return opts, NewError(CodeInvalidInput, "truncate_limit requires truncate_mode")
	}

	if p.OutputFormat != nil {
		f := *p.OutputFormat
		if !validOutputFormats[f] {
			return opts, NewErrorWithDetails(CodeInvalidInput,
				"output_format must be json or markdown",
				map[string]any{"output_format": f})
		}
		opts.OutputFormat = f
	}

	return opts, nil
}
