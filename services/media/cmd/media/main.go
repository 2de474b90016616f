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
	"github.com/socialmesh/platform/pkg/events"
	"github.com/socialmesh/platform/pkg/logging"
	"github.com/socialmesh/platform/services/media/internal/config"
	"github.com/socialmesh/platform/services/media/internal/httpserver"
	"github.com/socialmesh/platform/services/media/internal/models"
	"github.com/socialmesh/platform/services/media/internal/repo"
	"github.com/socialmesh/platform/services/media/internal/service"
	"github.com/socialmesh/platform/services/media/internal/storage"
)

func main() {
	cfg := config.Load()
	logger := logging.New("media", cfg.LogLevel)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(initCtx, cfg.DatabaseURL)
	if err != nil {
		cancel()
		log.Fatalf("db init: %v", err)
	}
	if err := gdb.AutoMigrate(&models.Media{}); err != nil {
		cancel()
		log.Fatalf("db migrate: %v", err)
	}

	store, err := storage.New(initCtx, storage.Config{
		Region:       cfg.S3Region,
		BaseEndpoint: cfg.S3BaseEndpoint,
		AccessKey:    cfg.S3AccessKey,
		SecretKey:    cfg.S3SecretKey,
		Bucket:       cfg.S3Bucket,
		PublicURL:    cfg.S3PublicURL,
	})
	cancel()
	if err != nil {
		log.Fatalf("storage init: %v", err)
	}

	svc := &service.MediaService{
		Repo:  &repo.GormRepo{DB: gdb},
		Store: store,
	}

	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	defer stopConsumer()

	var consumer *events.Consumer
	if len(cfg.KafkaBrokers) > 0 {
		consumer = events.NewConsumer(cfg.KafkaBrokers, events.TopicPostEvents, "media-service")
		go func() {
			err := consumer.Run(consumerCtx, logger, func(ctx context.Context, ev events.PostEvent) error {
				if ev.Type != events.TypePostDeleted {
					return nil
				}
				return svc.RemoveByIDs(logging.IntoContext(ctx, logger), ev.MediaIDs)
			})
			if err != nil {
				logger.Error("event consumer stopped", "error", err)
			}
		}()
	}

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 30 * time.Second
	e.Server.WriteTimeout = 30 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	httpserver.Register(e, &httpserver.Deps{
		MediaHandler:  &httpserver.MediaHTTP{Svc: svc},
		RequestLogger: logging.RequestLogger(logger),
	})

	go func() {
		if err := e.Start(cfg.ListenAddr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("start: %v", err)
		}
	}()
	logger.Info("media service started", "addr", cfg.ListenAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	stopConsumer()
	if consumer != nil {
		if err := consumer.Close(); err != nil {
			logger.Error("consumer close", "error", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
	if err := db.Close(gdb); err != nil {
		logger.Error("db close", "error", err)
	}
}
