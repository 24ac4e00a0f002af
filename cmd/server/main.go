package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/velsland/portfolio-api/internal/config"
	"github.com/velsland/portfolio-api/internal/db"
	"github.com/velsland/portfolio-api/internal/events"
	"github.com/velsland/portfolio-api/internal/httpserver"
	"github.com/velsland/portfolio-api/internal/logging"
	mw "github.com/velsland/portfolio-api/internal/middleware"
	"github.com/velsland/portfolio-api/internal/models"
	"github.com/velsland/portfolio-api/internal/ratelimit"
	"github.com/velsland/portfolio-api/internal/repo"
	"github.com/velsland/portfolio-api/internal/search"
	"github.com/velsland/portfolio-api/internal/service"
)

func main() {
	cfg := config.Load()
	cfg.MustValidate()

	logger := logging.New(cfg.LogLevel)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gormDB, err := db.Open(initCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	if err := gormDB.AutoMigrate(models.All()...); err != nil {
		log.Fatalf("db migrate error: %v", err)
	}

	var limiter ratelimit.Counter = ratelimit.NewMemoryCounter()
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Fatalf("redis init error: %v", err)
		}
		limiter = ratelimit.NewRedisCounter(rdb)
	}

	var searchSvc *search.Service
	if cfg.ESURL != "" {
		esClient, err := search.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			log.Fatalf("elasticsearch init error: %v", err)
		}
		searchSvc = search.NewService(esClient, cfg.ESIndex)
	}

	producer := events.NewProducer(cfg.KafkaBrokers)
	defer producer.Close()

	gormRepo := repo.New(gormDB)

	authSvc := &service.AuthService{
		Repo:       gormRepo,
		Limiter:    limiter,
		Events:     producer,
		Secret:     cfg.JWTSecret,
		AccessTTL:  cfg.AccessTTL,
		RefreshTTL: cfg.RefreshTTL,
		RateWindow: cfg.RateLimitWindow,
		RateMax:    cfg.RateLimitMax,
	}

	contentSvc := &service.ContentService{
		Repo:   gormRepo,
		Search: searchSvc,
		Events: producer,
	}

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := authSvc.SeedAdmin(context.Background(), cfg.AdminEmail, cfg.AdminPassword, cfg.AdminName); err != nil {
			log.Fatalf("admin seed error: %v", err)
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	httpserver.Register(e, &httpserver.Deps{
		Auth:    &httpserver.AuthHTTP{Svc: authSvc},
		Content: &httpserver.ContentHTTP{Svc: contentSvc},
		AuthMW:  mw.NewAuth(authSvc),
		Logger:  logger,
	})

	go func() {
		addr := fmt.Sprintf(":%d", cfg.ServerPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("echo start: %v", err)
		}
	}()
	logger.Info("server started", "port", cfg.ServerPort, "service", cfg.ServiceName)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("echo shutdown: %v", err)
	}
}
