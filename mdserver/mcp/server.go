// Package mcpserver exposes the conversion pipeline as an MCP tool so
// editor agents can call it over stdio without the HTTP surface.
package mcpserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"mdserver/mdserver/config"
	"mdserver/mdserver/services/convert"
	"mdserver/mdserver/utils/types"
)

// ConvertArgs is the input schema for the convert_to_markdown tool.
// Exactly one of URL or FileContent must be provided.
type ConvertArgs struct {
	URL                string `json:"url,omitempty" jsonschema:"URL to fetch and convert"`
	FileContent        string `json:"file_content,omitempty" jsonschema:"base64-encoded document bytes"`
	Filename           string `json:"filename,omitempty" jsonschema:"filename hint for format detection"`
	RenderJS           bool   `json:"render_js,omitempty" jsonschema:"render the page in a headless browser first"`
	IncludeFrontmatter bool   `json:"include_frontmatter,omitempty" jsonschema:"prepend YAML frontmatter"`
	MaxLength          int    `json:"max_length,omitempty" jsonschema:"truncate output to this many characters"`
	TimeoutSeconds     int    `json:"timeout_seconds,omitempty" jsonschema:"conversion timeout in seconds"`
	OutputFormat       string `json:"output_format,omitempty" jsonschema:"markdown or json, default markdown"`
}

// ConvertOutput is the structured half of a successful tool result.
type ConvertOutput struct {
	Markdown string                   `json:"markdown"`
	Title    string                   `json:"title,omitempty"`
	Metadata types.ConversionMetadata `json:"metadata"`
}

// NewServer builds the MCP server with the convert_to_markdown tool
// registered against the shared conversion service.
func NewServer(cfg config.Config, svc *convert.Service) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "mdserver",
		Version: cfg.Version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "convert_to_markdown",
		Description: "Convert a URL or an uploaded document to markdown",
	}, convertHandler(cfg, svc))

	return server
}

// Run serves MCP over stdio until the context is cancelled.
func Run(ctx context.Context, cfg config.Config, svc *convert.Service) error {
	return NewServer(cfg, svc).Run(ctx, &mcp.StdioTransport{})
}

func convertHandler(cfg config.Config, svc *convert.Service) func(context.Context, *mcp.CallToolRequest, ConvertArgs) (*mcp.CallToolResult, ConvertOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, args ConvertArgs) (*mcp.CallToolResult, ConvertOutput, error) {
		creq, err := buildRequest(cfg, args)
		if err != nil {
			return errorResult(err), ConvertOutput{}, nil
		}

		result, err := svc.Convert(ctx, creq)
		if err != nil {
			return errorResult(err), ConvertOutput{}, nil
		}

		out := ConvertOutput{
			Markdown: result.Markdown,
			Title:    result.Title,
			Metadata: result.Metadata,
		}
		text := result.Markdown
		if creq.Options.OutputFormat == "json" {
			if body, jsonErr := json.Marshal(out); jsonErr == nil {
				text = string(body)
			}
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: text}},
		}, out, nil
	}
}

func buildRequest(cfg config.Config, args ConvertArgs) (*types.ConversionRequest, error) {
	if (args.URL == "") == (args.FileContent == "") {
		return nil, convert.NewError(convert.CodeInvalidInput,
			"provide exactly one of url or file_content")
	}

	payload := &types.OptionsPayload{}
	if args.RenderJS {
		payload.JSRendering = &args.RenderJS
	}
	if args.IncludeFrontmatter {
		payload.IncludeFrontmatter = &args.IncludeFrontmatter
	}
	if args.MaxLength > 0 {
		payload.MaxLength = &args.MaxLength
	}
	if args.TimeoutSeconds > 0 {
		payload.TimeoutSeconds = &args.TimeoutSeconds
	}
	// the tool defaults to raw markdown, unlike the HTTP surface
	format := args.OutputFormat
	if format == "" {
		format = "markdown"
	}
	payload.OutputFormat = &format
	opts, err := convert.NormalizeOptions(payload, cfg)
	if err != nil {
		return nil, err
	}

	if args.URL != "" {
		return &types.ConversionRequest{
			Kind:    types.KindURL,
			URL:     args.URL,
			Options: opts,
		}, nil
	}

	data, err := base64.StdEncoding.DecodeString(args.FileContent)
	if err != nil {
		return nil, convert.WrapError(convert.CodeInvalidInput, "file_content is not valid base64", err)
	}
	return &types.ConversionRequest{
		Kind:     types.KindFile,
		Payload:  data,
		Filename: args.Filename,
		Options:  opts,
	}, nil
}

// errorResult shapes pipeline failures as tool errors instead of
// protocol errors so agents see the code and suggestions.
func errorResult(err error) *mcp.CallToolResult {
	ce, ok := convert.AsError(err)
	if !ok {
		ce = convert.WrapError(convert.CodeConversionFailed, "conversion failed", err)
	}
	text := fmt.Sprintf("%s: %s", ce.Code, ce.Message)
	for _, s := range ce.Suggestions() {
		text += "\n- " + s
	}
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}
