package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"mdserver/mdserver/config"
	"mdserver/mdserver/controllers"
	"mdserver/mdserver/routes"
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
	stats := controllers.NewStats()

	convertCtrl := controllers.NewConvertController(cfg, svc, stats)
	formatsCtrl := controllers.NewFormatsController(cfg)
	healthCtrl := controllers.NewHealthController(cfg, stats)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Mount("/convert", routes.ConvertRoutes(convertCtrl, cfg))
	r.Mount("/formats", routes.FormatsRoutes(formatsCtrl, cfg))
	r.Mount("/health", routes.HealthRoutes(healthCtrl))

	srv := &http.Server{
		Addr:    net.JoinHostPort(cfg.Host, cfg.Port),
		Handler: r,
	}
	go func() {
		logging.AppLogger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.ErrorLogger.Error("server listen error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.ErrorLogger.Error("server shutdown error", zap.Error(err))
	}
	logging.AppLogger.Info("server shutdown complete")
}
