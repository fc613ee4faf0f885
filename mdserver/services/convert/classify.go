package convert

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"strings"

	"mdserver/mdserver/utils/types"
)

// Classify turns a raw HTTP body into a normalized ConversionRequest.
// The branch is chosen by Content-Type alone: multipart uploads, JSON
// envelopes, and everything else as a raw binary document.
func Classify(contentType string, body []byte) (*types.ConversionRequest, *types.OptionsPayload, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil && contentType != "" {
		mediaType = strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	}

	switch {
	case mediaType == "multipart/form-data":
		return classifyMultipart(body, params["boundary"])
	case mediaType == "application/json":
		return classifyJSON(body)
	default:
		return classifyBinary(body, mediaType)
	}
}

func classifyMultipart(body []byte, boundary string) (*types.ConversionRequest, *types.OptionsPayload, error) {
	if boundary == "" {
		return nil, nil, NewError(CodeInvalidInput, "multipart body is missing a boundary")
	}
	mr := multipart.NewReader(bytes.NewReader(body), boundary)

	var (
		req  *types.ConversionRequest
		opts *types.OptionsPayload
	)
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, WrapError(CodeInvalidInput, "malformed multipart body", err)
		}
		data, err := io.ReadAll(part)
		part.Close()
		if err != nil {
			return nil, nil, WrapError(CodeInvalidInput, "failed to read multipart part", err)
		}

		if part.FileName() != "" {
			// first file part wins; extra files are ignored
			if req == nil {
				req = &types.ConversionRequest{
					Kind:     types.KindFile,
					Payload:  data,
					Filename: part.FileName(),
					MIMEHint: strings.Split(part.Header.Get("Content-Type"), ";")[0],
				}
			}
			continue
		}
		if part.FormName() == "options" && len(data) > 0 {
			var o types.OptionsPayload
			if err := json.Unmarshal(data, &o); err != nil {
				return nil, nil, WrapError(CodeInvalidInput, "options field is not valid JSON", err)
			}
			opts = &o
		}
	}
	if req == nil {
		return nil, nil, NewError(CodeInvalidInput, "multipart body contains no file")
	}
	if len(req.Payload) == 0 {
		return nil, nil, NewError(CodeContentEmpty, "uploaded file is empty")
	}
	return req, opts, nil
}

func classifyJSON(body []byte) (*types.ConversionRequest, *types.OptionsPayload, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil, NewError(CodeInvalidInput, "request body is empty")
	}

	// key presence check first, so `"text": ""` still counts as the
	// text branch rather than a missing input
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(body, &keys); err != nil {
		return nil, nil, WrapError(CodeInvalidInput, "request body is not valid JSON", err)
	}
	present := []string{}
	for _, k := range []string{"url", "content", "text"} {
		if _, ok := keys[k]; ok {
			present = append(present, k)
		}
	}
	if len(present) == 0 {
		return nil, nil, NewError(CodeInvalidInput, "one of url, content, or text is required")
	}
	if len(present) > 1 {
		return nil, nil, NewErrorWithDetails(CodeInvalidInput,
			"url, content, and text are mutually exclusive",
			map[string]any{"fields": present})
	}

	var payload types.ConvertPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, nil, WrapError(CodeInvalidInput, "request body does not match the expected schema", err)
	}

	switch present[0] {
	case "url":
		u := ""
		if payload.URL != nil {
			u = strings.TrimSpace(*payload.URL)
		}
		if u == "" {
			return nil, nil, NewError(CodeInvalidURL, "url must not be empty")
		}
		return &types.ConversionRequest{Kind: types.KindURL, URL: u}, payload.Options, nil

	case "content":
		encoded := ""
		if payload.Content != nil {
			encoded = *payload.Content
		}
		data, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, nil, WrapError(CodeInvalidInput, "content is not valid base64", err)
		}
		if len(data) == 0 {
			return nil, nil, NewError(CodeContentEmpty, "decoded content is empty")
		}
		return &types.ConversionRequest{
			Kind:     types.KindFile,
			Payload:  data,
			Filename: payload.Filename,
			MIMEHint: payload.MIMEType,
		}, payload.Options, nil

	default: // text
		text := ""
		if payload.Text != nil {
			text = *payload.Text
		}
		if text == "" {
			return nil, nil, NewError(CodeContentEmpty, "text must not be empty")
		}
		return &types.ConversionRequest{
			Kind:     types.KindText,
			Text:     text,
			Filename: payload.Filename,
			MIMEHint: payload.MIMEType,
		}, payload.Options, nil
	}
}

func classifyBinary(body []byte, mediaType string) (*types.ConversionRequest, *types.OptionsPayload, error) {
	if len(body) == 0 {
		return nil, nil, NewError(CodeInvalidInput, "request body is empty")
	}
	return &types.ConversionRequest{
		Kind:     types.KindFile,
		Payload:  body,
		MIMEHint: mediaType,
	}, nil, nil
}
