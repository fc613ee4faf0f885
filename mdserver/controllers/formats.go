package controllers

import (
	"net/http"
	"sort"

	"mdserver/mdserver/config"
	"mdserver/mdserver/utils/detect"
	"mdserver/mdserver/utils/types"
)

var formatFeatures = map[string][]string{
	"pdf":      {"text_extraction"},
	"xlsx":     {"tables", "multi_sheet"},
	"xls":      {"tables", "multi_sheet"},
	"html":     {"title_extraction", "tables", "js_rendering"},
	"markdown": {"passthrough"},
	"text":     {"charset_detection"},
	"csv":      {"tables"},
	"json":     {"pretty_print"},
	"xml":      {"passthrough"},
	"rss":      {"feed_items", "title_extraction"},
}

type FormatsController struct {
	cfg config.Config
}

func NewFormatsController(cfg config.Config) *FormatsController {
	return &FormatsController{cfg: cfg}
}

// ListFormats reports the server's conversion capabilities.
func (f *FormatsController) ListFormats(r *http.Request) (any, int, error) {
	maxMB := int(f.cfg.MaxFileSize / (1024 * 1024))
	out := map[string]types.FormatInfo{}
	for format, mimes := range detect.SupportedFormats() {
		exts := detect.FormatExtensions(format)
		sort.Strings(exts)
		out[format] = types.FormatInfo{
			MimeTypes:  mimes,
			Extensions: exts,
			Features:   formatFeatures[format],
			MaxSizeMB:  maxMB,
		}
	}
	return map[string]any{"formats": out}, http.StatusOK, nil
}
