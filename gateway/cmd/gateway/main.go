package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/socialmesh/platform/gateway/internal/config"
	"github.com/socialmesh/platform/gateway/internal/httpserver"
	"github.com/socialmesh/platform/pkg/logging"
	"github.com/socialmesh/platform/pkg/ratelimit"
	"github.com/socialmesh/platform/pkg/redisx"
)

func main() {
	cfg := config.Load()
	logger := logging.New("gateway", cfg.LogLevel)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	rdb, err := redisx.Open(initCtx, cfg.RedisAddr)
	cancel()
	if err != nil {
		log.Fatalf("redis init: %v", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	if err := httpserver.Register(e, &httpserver.Deps{
		IdentityURL:      cfg.IdentityURL,
		PostURL:          cfg.PostURL,
		MediaURL:         cfg.MediaURL,
		JWTSecret:        cfg.JWTSecret,
		GlobalLimiter:    ratelimit.New(rdb, ratelimit.GlobalPolicy()),
		SensitiveLimiter: ratelimit.New(rdb, ratelimit.SensitivePolicy("auth_proxy", 100, 15*time.Minute)),
		RequestLogger:    logging.RequestLogger(logger),
	}); err != nil {
		log.Fatal(err)
	}

	go func() {
		if err := e.Start(cfg.ListenAddr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("start: %v", err)
		}
	}()
	logger.Info("gateway started", "addr", cfg.ListenAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
	if err := rdb.Close(); err != nil {
		logger.Error("redis close", "error", err)
	}
}
