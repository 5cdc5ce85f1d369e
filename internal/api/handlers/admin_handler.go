package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/turnuplagos/turnup-backend/internal/services"
	"github.com/turnuplagos/turnup-backend/internal/utils"
)

// AdminHandler exposes session review and retention operations. Routes are
// mounted behind JWTAuth + RequireAdmin.
type AdminHandler struct {
	sessions services.SessionService
}

func NewAdminHandler(sessions services.SessionService) *AdminHandler {
	return &AdminHandler{sessions: sessions}
}

// ListSessions pages through sessions with message counts, newest first.
// Reviewing what users ask surfaces gaps in the knowledge base.
func (h *AdminHandler) ListSessions(c *gin.Context) {
	limit := intQuery(c, "limit", 50, 500)
	offset := intQuery(c, "offset", 0, 1<<30)

	rows, err := h.sessions.ListSessions(c.Request.Context(), limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": rows})
}

// GetTranscript returns the full conversation of one session.
func (h *AdminHandler) GetTranscript(c *gin.Context) {
	sessionID := c.Param("session_id")

	exists, err := h.sessions.Exists(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err)
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, APIError{Code: utils.CodeNotFound, Message: "Session not found."})
		return
	}

	rows, err := h.sessions.Transcript(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session_id": sessionID, "messages": rows})
}

// DeleteSession hard-deletes a session; its messages cascade away.
func (h *AdminHandler) DeleteSession(c *gin.Context) {
	sessionID := c.Param("session_id")
	if err := h.sessions.Delete(c.Request.Context(), sessionID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session " + sessionID + " deleted."})
}

// Cleanup bulk-deletes sessions older than ?days (default 30). The nightly
// cron calls the same service method.
func (h *AdminHandler) Cleanup(c *gin.Context) {
	days := intQuery(c, "days", 30, 3650)

	deleted, err := h.sessions.CleanupOlderThan(c.Request.Context(), days)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted, "older_than_days": days})
}

func intQuery(c *gin.Context, key string, def, max int) int {
	if s := c.Query(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= max {
			return n
		}
	}
	return def
}
