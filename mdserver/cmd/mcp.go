// Stdio MCP entrypoint. Start with:
//
//	go run ./mdserver/cmd
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"mdserver/mdserver/config"
	mcpserver "mdserver/mdserver/mcp"
	"mdserver/mdserver/services/browser"
	"mdserver/mdserver/services/convert"
	"mdserver/mdserver/services/document"
	"mdserver/mdserver/utils/logging"
)

func main() {
	logging.InitLogger()
	cfg := config.LoadConfig()

	docBackend := document.NewBackend(cfg)
	browserBackend := browser.New(cfg)
	defer browserBackend.Close()

	svc := convert.NewService(cfg, docBackend, browserBackend)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := mcpserver.Run(ctx, cfg, svc); err != nil {
		logging.ErrorLogger.Error("mcp server exited", zap.Error(err))
		os.Exit(1)
	}
}
