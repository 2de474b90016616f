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

	"github.com/socialmesh/platform/pkg/db"
	"github.com/socialmesh/platform/pkg/logging"
	"github.com/socialmesh/platform/pkg/ratelimit"
	"github.com/socialmesh/platform/pkg/redisx"
	"github.com/socialmesh/platform/services/identity/internal/config"
	"github.com/socialmesh/platform/services/identity/internal/httpserver"
	"github.com/socialmesh/platform/services/identity/internal/models"
	"github.com/socialmesh/platform/services/identity/internal/repo"
	"github.com/socialmesh/platform/services/identity/internal/service"
)

func main() {
	cfg := config.Load()
	logger := logging.New("identity", cfg.LogLevel)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(initCtx, cfg.DatabaseURL)
	if err != nil {
		cancel()
		log.Fatalf("db init: %v", err)
	}
	if err := gdb.AutoMigrate(&models.User{}, &models.RefreshToken{}); err != nil {
		cancel()
		log.Fatalf("db migrate: %v", err)
	}

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

	authSvc := &service.AuthService{
		Repo:      repo.GormRepo{DB: gdb},
		JWTSecret: cfg.JWTSecret,
	}

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler:      httpserver.NewAuthHTTP(authSvc),
		GlobalLimiter:    ratelimit.New(rdb, ratelimit.GlobalPolicy()),
		SensitiveLimiter: ratelimit.New(rdb, ratelimit.SensitivePolicy("register", 50, 15*time.Minute)),
		RequestLogger:    logging.RequestLogger(logger),
	})

	go func() {
		if err := e.Start(cfg.ListenAddr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("start: %v", err)
		}
	}()
	logger.Info("identity service started", "addr", cfg.ListenAddr)

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
	if err := db.Close(gdb); err != nil {
		logger.Error("db close", "error", err)
	}
}
