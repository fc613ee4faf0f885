// mdserver/utils/types/convert.go
package types

// InputKind tells the dispatcher which conversion path a request takes.
type InputKind string

const (
	KindURL  InputKind = "url"
	KindFile InputKind = "file"
	KindText InputKind = "text"
)

// ConvertPayload is the JSON body accepted by POST /convert.
// Exactly one of URL/Content/Text must be set; the classifier enforces this.
type ConvertPayload struct {
	URL          *string         `json:"url,omitempty"`
	Content      *string         `json:"content,omitempty"` // base64
	Text         *string         `json:"text,omitempty"`
	Filename     string          `json:"filename,omitempty"`
	MIMEType     string          `json:"mime_type,omitempty"`
	SourceFormat string          `json:"source_format,omitempty"`
	Options      *OptionsPayload `json:"options,omitempty"`
}

// OptionsPayload holds caller-supplied option overrides. Pointer fields
// distinguish "not sent" from zero values; unknown keys are ignored.
type OptionsPayload struct {
	JSRendering        *bool   `json:"js_rendering,omitempty"`
	TimeoutSeconds     *int    `json:"timeout_seconds,omitempty"`
	ExtractImages      *bool   `json:"extract_images,omitempty"`
	PreserveFormatting *bool   `json:"preserve_formatting,omitempty"`
	OCREnabled         *bool   `json:"ocr_enabled,omitempty"`
	MaxLength          *int    `json:"max_length,omitempty"`
	MaxTokens          *int    `json:"max_tokens,omitempty"`
	TruncateMode       *string `json:"truncate_mode,omitempty"`
	TruncateLimit      *int    `json:"truncate_limit,omitempty"`
	IncludeFrontmatter *bool   `json:"include_frontmatter,omitempty"`
	OutputFormat       *string `json:"output_format,omitempty"`
}

// ConversionOptions is the fully-populated, validated option set.
type ConversionOptions struct {
	JSRendering        bool
	TimeoutSeconds     int
	ExtractImages      bool
	PreserveFormatting bool
	OCREnabled         bool
	MaxLength          *int
	MaxTokens          *int
	TruncateMode       string
	TruncateLimit      int
	IncludeFrontmatter bool
	OutputFormat       string
}

// ConversionRequest is the normalized input produced by the classifier.
type ConversionRequest struct {
	Kind     InputKind
	URL      string
	Payload  []byte
	Text     string
	Filename string
	MIMEHint string
	Options  ConversionOptions
}

// BackendResult is what a conversion backend hands back to the dispatcher.
type BackendResult struct {
	Markdown   string
	Title      string
	MIMEType   string
	SourceSize int
}

// ConversionMetadata describes how a conversion went.
type ConversionMetadata struct {
	SourceType       string   `json:"source_type"`
	SourceSize       int      `json:"source_size"`
	MarkdownSize     int      `json:"markdown_size"`
	ConversionTimeMs int64    `json:"conversion_time_ms"`
	DetectedFormat   string   `json:"detected_format"`
	Warnings         []string `json:"warnings,omitempty"`
	WasTruncated     bool     `json:"was_truncated"`
	OriginalLength   *int     `json:"original_length,omitempty"`
	OriginalTokens   *int     `json:"original_tokens,omitempty"`
	TruncationMode   string   `json:"truncation_mode,omitempty"`
}

// ConversionResult is immutable once truncation has been applied.
type ConversionResult struct {
	Markdown string
	Title    string
	Metadata ConversionMetadata
}

// ErrorBody is the error half of the response envelope.
type ErrorBody struct {
	Code        string         `json:"code"`
	Message     string         `json:"message"`
	Details     map[string]any `json:"details,omitempty"`
	Suggestions []string       `json:"suggestions,omitempty"`
}

// ConvertResponse is the JSON envelope for POST /convert.
type ConvertResponse struct {
	Success   bool                `json:"success"`
	Markdown  string              `json:"markdown,omitempty"`
	Metadata  *ConversionMetadata `json:"metadata,omitempty"`
	Error     *ErrorBody          `json:"error,omitempty"`
	RequestID string              `json:"request_id"`
}

// HealthResponse is the GET /health body.
type HealthResponse struct {
	Status              string `json:"status"`
	Version             string `json:"version"`
	UptimeSeconds       int64  `json:"uptime_seconds"`
	ConversionsLastHour int    `json:"conversions_last_hour"`
}

// FormatInfo describes one supported format for GET /formats.
type FormatInfo struct {
	MimeTypes  []string `json:"mime_types"`
	Extensions []string `json:"extensions"`
	Features   []string `json:"features"`
	MaxSizeMB  int      `json:"max_size_mb"`
}
