// README: Web chat handlers; one session per browser tab or client id.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"yourhelpa/internal/modules/chat"
)

type ChatHandler struct {
	chat *chat.Service
}

func NewChatHandler(svc *chat.Service) *ChatHandler {
	return &ChatHandler{chat: svc}
}

type chatReq struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
}

// Send handles POST /api/chat.
func (h *ChatHandler) Send(c *gin.Context) {
	var req chatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	// A blank message is a valid turn and gets the fallback examples.
	if strings.TrimSpace(req.SessionID) == "" {
		writeError(c, http.StatusBadRequest, "missing session_id")
		return
	}
	turn, err := h.chat.Handle(c.Request.Context(), chat.Inbound{
		SessionID: req.SessionID,
		Message:   req.Message,
		Channel:   "web",
		Name:      req.Name,
		Phone:     req.Phone,
		Email:     req.Email,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, turn)
}

type selectReq struct {
	ProviderID string `json:"provider_id"`
}

// Select handles POST /api/chat/:session/select.
func (h *ChatHandler) Select(c *gin.Context) {
	var req selectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	turn, err := h.chat.SelectProvider(c.Request.Context(), c.Param("session"), req.ProviderID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, turn)
}

type locationReq struct {
	Location string `json:"location"`
}

// SetLocation handles PUT /api/chat/:session/location.
func (h *ChatHandler) SetLocation(c *gin.Context) {
	var req locationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.chat.SetLocation(c.Request.Context(), c.Param("session"), req.Location); err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"status": "ok"})
}

// History handles GET /api/chat/:session/history.
func (h *ChatHandler) History(c *gin.Context) {
	msgs, err := h.chat.History(c.Request.Context(), c.Param("session"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"messages": msgs})
}

// Reset handles DELETE /api/chat/:session.
func (h *ChatHandler) Reset(c *gin.Context) {
	if err := h.chat.Reset(c.Request.Context(), c.Param("session")); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
