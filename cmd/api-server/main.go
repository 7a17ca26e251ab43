package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"

	"comichub/database"
	"comichub/internal/cache"
	"comichub/internal/config"
	"comichub/internal/http-api/handler"
	"comichub/internal/http-api/middleware"
	"comichub/internal/http-api/repository"
	"comichub/internal/http-api/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slogLevel(cfg.LogLevel),
	}))

	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		log.Fatalf("could not connect to database: %v", err)
	}

	// cache is optional; without Redis every read hits the database
	listCache, err := cache.New(cfg.RedisAddr, cfg.RedisPassword, cfg.CacheTTL)
	if err != nil {
		logger.Warn("redis unavailable, running without cache", "error", err)
		listCache = nil
	}

	// repositories
	comicRepo := repository.NewComicRepository(db)
	tagRepo := repository.NewTagRepository(db)
	userRepo := repository.NewUserRepository(db)
	inviteRepo := repository.NewInviteCodeRepository(db)

	// services
	storageSvc := service.NewStorageService(cfg.UploadDir)
	tagSvc := service.NewTagService(tagRepo)
	comicSvc := service.NewComicService(comicRepo, tagSvc, storageSvc, listCache)
	authSvc := service.NewAuthService(userRepo, inviteRepo, cfg)
	userSvc := service.NewUserService(userRepo, storageSvc)

	r := gin.Default()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))

	authMW := middleware.AuthMiddleware(authSvc)

	api := r.Group("/api")
	handler.NewAuthHandler(authSvc).RegisterRoutes(api.Group("/auth"))
	handler.NewComicHandler(comicSvc).RegisterRoutes(api.Group("/comics"), authMW)
	handler.NewTagHandler(tagSvc).RegisterRoutes(api.Group("/tags"))
	handler.NewUserHandler(userSvc, comicSvc).RegisterRoutes(api.Group("/users"), authMW)

	// stored paths returned by the storage service resolve under /static
	r.Static("/static", cfg.UploadDir)

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	logger.Info("API server listening", "addr", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func slogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
