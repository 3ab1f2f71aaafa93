package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"yourhelpa/internal/http/middleware"
	"yourhelpa/internal/modules/mail"
)

type MailHandler struct {
	mail *mail.Service
}

func NewMailHandler(svc *mail.Service) *MailHandler {
	return &MailHandler{mail: svc}
}

type welcomeReq struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// SendWelcome handles POST /api/send-welcome.
func (h *MailHandler) SendWelcome(c *gin.Context) {
	var req welcomeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	err := h.mail.SendWelcome(c.Request.Context(), mail.WelcomeCommand{
		CallerEmail: middleware.CallerEmail(c),
		Email:       req.Email,
		Name:        req.Name,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"success": true})
}
