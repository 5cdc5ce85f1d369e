package handlers

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/turnuplagos/turnup-backend/internal/models"
	"github.com/turnuplagos/turnup-backend/internal/services"
	"github.com/turnuplagos/turnup-backend/internal/utils"
)

const historyLimit = 20

type ChatHandler struct {
	chat     services.ChatService
	sessions services.SessionService
	log      *logrus.Logger
}

func NewChatHandler(chat services.ChatService, sessions services.SessionService, log *logrus.Logger) *ChatHandler {
	return &ChatHandler{chat: chat, sessions: sessions, log: log}
}

type SessionResponse struct {
	SessionID string `json:"session_id"`
}

type ChatRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Message   string `json:"message" binding:"required"`
}

type ChatResponse struct {
	Reply     string `json:"reply"`
	SessionID string `json:"session_id"`
	Error     string `json:"error,omitempty"`
}

// StartSession opens an anonymous session. The frontend only stores and
// replays the returned id.
func (h *ChatHandler) StartSession(c *gin.Context) {
	id, err := h.sessions.Create(c.Request.Context(), nil)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, SessionResponse{SessionID: id})
}

// StartUserSession opens a session owned by the authenticated caller.
func (h *ChatHandler) StartUserSession(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, err := h.sessions.Create(c.Request.Context(), &user.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, SessionResponse{SessionID: id})
}

// ChatPublic handles one anonymous chat turn.
func (h *ChatHandler) ChatPublic(c *gin.Context) {
	h.handleChat(c, nil)
}

// Chat handles one authenticated chat turn; the caller identity is threaded
// into tool execution.
func (h *ChatHandler) Chat(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	h.handleChat(c, user)
}

func (h *ChatHandler) handleChat(c *gin.Context, caller *models.AuthenticatedUser) {
	const op = "ChatHandler.handleChat"

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "invalid request body", err))
		return
	}

	ctx := c.Request.Context()

	exists, err := h.sessions.Exists(ctx, req.SessionID)
	if err != nil {
		writeError(c, err)
		return
	}
	if !exists {
		writeError(c, utils.E(utils.CodeNotFound, op, "Session not found or expired. Please start a new chat.", nil))
		return
	}

	history, err := h.sessions.History(ctx, req.SessionID, historyLimit)
	if err != nil {
		writeError(c, err)
		return
	}

	// The user turn is committed before the model runs, so a provider
	// timeout still leaves a valid reply-less history.
	if err := h.sessions.Append(ctx, req.SessionID, models.RoleUser, req.Message, nil); err != nil {
		writeError(c, err)
		return
	}

	outcome := h.chat.Respond(ctx, req.Message, history, caller)
	if outcome.Err != nil {
		h.log.WithFields(logrus.Fields{
			"session_id": req.SessionID,
			"error":      outcome.Err.Error(),
		}).Error("chat turn failed")
	}

	if err := h.sessions.Append(ctx, req.SessionID, models.RoleAssistant, outcome.Reply, outcome.Metadata()); err != nil {
		writeError(c, err)
		return
	}

	resp := ChatResponse{Reply: outcome.Reply, SessionID: req.SessionID}
	if outcome.Err != nil {
		resp.Error = "assistant temporarily unavailable"
	}
	c.JSON(http.StatusOK, resp)
}

// ClearSession wipes a session's messages but keeps the session alive.
// This backs the frontend's "New Chat" button.
func (h *ChatHandler) ClearSession(c *gin.Context) {
	sessionID := c.Param("session_id")
	if err := h.sessions.Clear(c.Request.Context(), sessionID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Chat cleared."})
}

// Health reports whether the model credential is configured.
func (h *ChatHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"openai_api_key_configured": os.Getenv("OPENAI_API_KEY") != "",
		"service_status":            "healthy",
	})
}
