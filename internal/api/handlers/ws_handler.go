package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/turnuplagos/turnup-backend/internal/models"
	"github.com/turnuplagos/turnup-backend/internal/services"
	"github.com/turnuplagos/turnup-backend/internal/utils"
)

// WSHandler serves live chat over a websocket. Each inbound frame is one
// user turn and runs through the same orchestration path as the POST routes.
type WSHandler struct {
	chat     services.ChatService
	sessions services.SessionService
	log      *logrus.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(chat services.ChatService, sessions services.SessionService, log *logrus.Logger) *WSHandler {
	return &WSHandler{
		chat:     chat,
		sessions: sessions,
		log:      log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true }, // TODO: restrict origin in prod
		},
	}
}

type wsClientMsg struct {
	Message string `json:"message"`
}

type wsServerMsg struct {
	Reply     string `json:"reply"`
	SessionID string `json:"session_id"`
	Error     string `json:"error,omitempty"`
}

type wsConn struct {
	c  *websocket.Conn
	mu sync.Mutex
}

func (w *wsConn) writeJSON(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.c.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return w.c.WriteJSON(v)
}

func (h *WSHandler) ChatWS(c *gin.Context) {
	sessionID := c.Param("session_id")
	if sessionID == "" {
		writeError(c, utils.E(utils.CodeInvalidArgument, "WSHandler.ChatWS", "missing session_id", nil))
		return
	}

	ctx := c.Request.Context()
	exists, err := h.sessions.Exists(ctx, sessionID)
	if err != nil {
		writeError(c, err)
		return
	}
	if !exists {
		writeError(c, utils.E(utils.CodeNotFound, "WSHandler.ChatWS", "session not found", nil))
		return
	}

	var caller *models.AuthenticatedUser
	if u, ok := c.Get("user_id"); ok {
		if id, ok := u.(int64); ok && id > 0 {
			caller = &models.AuthenticatedUser{ID: id}
		}
	}

	raw, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	conn := &wsConn{c: raw}
	defer raw.Close()

	for {
		var in wsClientMsg
		if err := raw.ReadJSON(&in); err != nil {
			return
		}
		if in.Message == "" {
			_ = conn.writeJSON(wsServerMsg{SessionID: sessionID, Error: "message is required"})
			continue
		}

		history, err := h.sessions.History(ctx, sessionID, historyLimit)
		if err != nil {
			_ = conn.writeJSON(wsServerMsg{SessionID: sessionID, Error: "failed to load history"})
			continue
		}
		if err := h.sessions.Append(ctx, sessionID, models.RoleUser, in.Message, nil); err != nil {
			_ = conn.writeJSON(wsServerMsg{SessionID: sessionID, Error: "session no longer exists"})
			return
		}

		outcome := h.chat.Respond(ctx, in.Message, history, caller)
		if outcome.Err != nil {
			h.log.WithFields(logrus.Fields{
				"session_id": sessionID,
				"error":      outcome.Err.Error(),
			}).Error("ws chat turn failed")
		}

		if err := h.sessions.Append(ctx, sessionID, models.RoleAssistant, outcome.Reply, outcome.Metadata()); err != nil {
			_ = conn.writeJSON(wsServerMsg{SessionID: sessionID, Error: "failed to persist reply"})
			return
		}

		out := wsServerMsg{Reply: outcome.Reply, SessionID: sessionID}
		if outcome.Err != nil {
			out.Error = "assistant temporarily unavailable"
		}
		if err := conn.writeJSON(out); err != nil {
			return
		}
	}
}
