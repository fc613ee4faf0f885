package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mdserver/mdserver/config"
	"mdserver/mdserver/services/convert"
	"mdserver/mdserver/utils/logging"
	"mdserver/mdserver/utils/types"
)

type ConvertController struct {
	cfg   config.Config
	svc   *convert.Service
	stats *Stats
}

func NewConvertController(cfg config.Config, svc *convert.Service, stats *Stats) *ConvertController {
	return &ConvertController{cfg: cfg, svc: svc, stats: stats}
}

// Convert is the POST /convert handler. Success responses honor
// content negotiation; error responses are always the JSON envelope.
func (c *ConvertController) Convert(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	ctx := context.WithValue(r.Context(), "request_id", requestID)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, c.cfg.MaxFileSize))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.writeError(w, requestID, convert.NewErrorWithDetails(convert.CodeFileTooLarge,
				"request body exceeds the size limit",
				map[string]any{"max_bytes": c.cfg.MaxFileSize}))
			return
		}
		c.writeError(w, requestID, convert.WrapError(convert.CodeInvalidInput, "failed to read request body", err))
		return
	}

	req, optsPayload, err := convert.Classify(r.Header.Get("Content-Type"), body)
	if err != nil {
		c.writeError(w, requestID, err)
		return
	}
	opts, err := convert.NormalizeOptions(optsPayload, c.cfg)
	if err != nil {
		c.writeError(w, requestID, err)
		return
	}
	req.Options = opts

	result, err := c.svc.Convert(ctx, req)
	if err != nil {
		c.writeError(w, requestID, err)
		return
	}
	c.stats.Record()

	logging.RequestLogger.Info("conversion complete",
		zap.String("request_id", requestID),
		zap.String("kind", string(req.Kind)),
		zap.String("source_type", result.Metadata.SourceType),
		zap.Int64("conversion_time_ms", result.Metadata.ConversionTimeMs),
		zap.Bool("was_truncated", result.Metadata.WasTruncated),
	)

	if opts.OutputFormat == "markdown" || wantsRawMarkdown(r) {
		c.writeMarkdown(w, requestID, result)
		return
	}
	c.writeJSON(w, http.StatusOK, types.ConvertResponse{
		Success:   true,
		Markdown:  result.Markdown,
		Metadata:  &result.Metadata,
		RequestID: requestID,
	})
}

func wantsRawMarkdown(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/markdown")
}

// writeMarkdown sends the raw document with metadata in headers.
func (c *ConvertController) writeMarkdown(w http.ResponseWriter, requestID string, result *types.ConversionResult) {
	h := w.Header()
	h.Set("Content-Type", "text/markdown; charset=utf-8")
	h.Set("X-Request-Id", requestID)
	h.Set("X-Source-Type", result.Metadata.SourceType)
	h.Set("X-Detected-Format", result.Metadata.DetectedFormat)
	h.Set("X-Conversion-Time-Ms", fmt.Sprintf("%d", result.Metadata.ConversionTimeMs))
	h.Set("X-Was-Truncated", fmt.Sprintf("%t", result.Metadata.WasTruncated))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(result.Markdown))
}

func (c *ConvertController) writeError(w http.ResponseWriter, requestID string, err error) {
	ce, ok := convert.AsError(err)
	if !ok {
		ce = convert.WrapError(convert.CodeConversionFailed, "conversion failed", err)
	}
	logging.ErrorLogger.Error("conversion failed",
		zap.String("request_id", requestID),
		zap.String("code", string(ce.Code)),
		zap.Error(ce),
	)
	c.writeJSON(w, ce.HTTPStatus(), types.ConvertResponse{
		Success: false,
		Error: &types.ErrorBody{
			Code:        string(ce.Code),
			Message:     ce.Message,
			Details:     ce.Details,
			Suggestions: ce.Suggestions(),
		},
		RequestID: requestID,
	})
}

func (c *ConvertController) writeJSON(w http.ResponseWriter, status int, body types.ConvertResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Request-Id", body.RequestID)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
