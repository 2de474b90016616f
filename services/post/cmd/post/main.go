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

	"github.com/socialmesh/platform/pkg/cache"
	"github.com/socialmesh/platform/pkg/db"
	"github.com/socialmesh/platform/pkg/events"
	"github.com/socialmesh/platform/pkg/logging"
	"github.com/socialmesh/platform/pkg/redisx"
	"github.com/socialmesh/platform/services/post/internal/config"
	"github.com/socialmesh/platform/services/post/internal/httpserver"
	"github.com/socialmesh/platform/services/post/internal/models"
	"github.com/socialmesh/platform/services/post/internal/repo"
	"github.com/socialmesh/platform/services/post/internal/search"
	"github.com/socialmesh/platform/services/post/internal/service"
)

func main() {
	cfg := config.Load()
	logger := logging.New("post", cfg.LogLevel)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(initCtx, cfg.DatabaseURL)
	if err != nil {
		cancel()
		log.Fatalf("db init: %v", err)
	}
	if err := gdb.AutoMigrate(&models.Post{}); err != nil {
		cancel()
		log.Fatalf("db migrate: %v", err)
	}

	rdb, err := redisx.Open(initCtx, cfg.RedisAddr)
	cancel()
	if err != nil {
		log.Fatalf("redis init: %v", err)
	}

	svc := &service.PostService{
		Repo:  &repo.GormRepo{DB: gdb},
		Cache: cache.New(rdb),
	}

	if len(cfg.KafkaBrokers) > 0 {
		svc.Producer = events.NewProducer(cfg.KafkaBrokers, events.TopicPostEvents)
	}
	if cfg.ESURL != "" {
		es, err := search.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			log.Fatalf("elasticsearch init: %v", err)
		}
		svc.Search = &search.Index{ES: es, Name: cfg.ESIndex}
	}

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	httpserver.Register(e, &httpserver.Deps{
		PostHandler:   httpserver.NewPostHTTP(svc),
		RequestLogger: logging.RequestLogger(logger),
	})

	go func() {
		if err := e.Start(cfg.ListenAddr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("start: %v", err)
		}
	}()
	logger.Info("post service started", "addr", cfg.ListenAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
	if svc.Producer != nil {
		if err := svc.Producer.Close(); err != nil {
			logger.Error("kafka close", "error", err)
		}
	}
	if err := rdb.Close(); err != nil {
		logger.Error("redis close", "error", err)
	}
	if err := db.Close(gdb); err != nil {
		logger.Error("db close", "error", err)
	}
}
