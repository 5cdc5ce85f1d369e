package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/turnuplagos/turnup-backend/internal/api/handlers"
	"github.com/turnuplagos/turnup-backend/internal/api/middleware"
)

type Deps struct {
	Chat  *handlers.ChatHandler
	Admin *handlers.AdminHandler
	WS    *handlers.WSHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	ai := r.Group("/ai")

	// Anonymous chat widget
	ai.POST("/session/start", d.Chat.StartSession)
	ai.POST("/chat/public", d.Chat.ChatPublic)
	ai.DELETE("/session/:session_id", d.Chat.ClearSession)
	ai.GET("/health", d.Chat.Health)

	// Authenticated chat (identity threaded into tools)
	auth := ai.Group("/")
	auth.Use(middleware.JWTAuth())
	auth.POST("/session/start/me", d.Chat.StartUserSession)
	auth.POST("/chat", d.Chat.Chat)

	// Admin review and retention
	admin := ai.Group("/admin")
	admin.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	admin.GET("/sessions", d.Admin.ListSessions)
	admin.GET("/sessions/:session_id/messages", d.Admin.GetTranscript)
	admin.DELETE("/sessions/:session_id", d.Admin.DeleteSession)
	admin.DELETE("/cleanup", d.Admin.Cleanup)

	// WebSocket live chat
	r.GET("/ws/ai/chat/:session_id", d.WS.ChatWS)
}
