package main

import (
	"context"
	"log"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/turnuplagos/turnup-backend/config"
	"github.com/turnuplagos/turnup-backend/internal/api/handlers"
	"github.com/turnuplagos/turnup-backend/internal/api/middleware"
	"github.com/turnuplagos/turnup-backend/internal/api/routes"
	"github.com/turnuplagos/turnup-backend/internal/cache"
	"github.com/turnuplagos/turnup-backend/internal/logger"
	"github.com/turnuplagos/turnup-backend/internal/providers/llm"
	pgrepo "github.com/turnuplagos/turnup-backend/internal/repositories/postgres"
	"github.com/turnuplagos/turnup-backend/internal/services"
)

func main() {
	_ = godotenv.Load()

	l := logger.New()

	if err := config.InitPostgres(); err != nil {
		log.Fatalf("PostgreSQL init error: %v", err)
	}
	l.Info("PostgreSQL connected")

	var toolCache cache.Cache
	if err := config.InitRedis(); err != nil {
		l.WithField("error", err.Error()).Warn("Redis unavailable, tool cache disabled")
	} else {
		toolCache = cache.NewRedisCache(config.RedisClient)
		l.Info("Redis connected")
	}

	provider, err := llm.NewOpenAI(os.Getenv("OPENAI_API_KEY"), os.Getenv("CHAT_MODEL"))
	if err != nil {
		log.Fatalf("OpenAI init error: %v", err)
	}

	db := config.PostgresDB
	docRepo := pgrepo.NewDocumentRepo(db)
	sessionRepo := pgrepo.NewSessionRepo(db)
	eventRepo := pgrepo.NewEventRepo(db)

	retrieval := services.NewRetrievalService(provider, docRepo)
	tools := services.NewToolRegistry(eventRepo, toolCache)
	chat := services.NewChatService(provider, retrieval, tools)
	sessions := services.NewSessionService(sessionRepo)

	// Nightly retention sweep; the admin cleanup route drives the same path.
	retentionDays := 30
	if s := os.Getenv("CHAT_SESSION_RETENTION_DAYS"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			retentionDays = n
		}
	}
	c := cron.New()
	_, err = c.AddFunc("0 3 * * *", func() {
		deleted, err := sessions.CleanupOlderThan(context.Background(), retentionDays)
		if err != nil {
			l.WithField("error", err.Error()).Error("session cleanup failed")
			return
		}
		l.WithField("deleted", deleted).Info("session cleanup done")
	})
	if err != nil {
		log.Fatalf("cron init error: %v", err)
	}
	c.Start()
	defer c.Stop()

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(l))

	routes.RegisterRoutes(r, routes.Deps{
		Chat:  handlers.NewChatHandler(chat, sessions, l),
		Admin: handlers.NewAdminHandler(sessions),
		WS:    handlers.NewWSHandler(chat, sessions, l),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
