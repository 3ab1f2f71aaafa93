package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"yourhelpa/internal/http/middleware"
	"yourhelpa/internal/modules/dashboard"
)

type DashboardHandler struct {
	dashboard *dashboard.Service
}

func NewDashboardHandler(svc *dashboard.Service) *DashboardHandler {
	return &DashboardHandler{dashboard: svc}
}

// Overview handles GET /api/dashboard/:uid. Users see only their own
// dashboard unless they are admins.
func (h *DashboardHandler) Overview(c *gin.Context) {
	uid := c.Param("uid")
	if !isValidRef(uid) {
		writeError(c, http.StatusBadRequest, "invalid uid")
		return
	}
	if middleware.CallerUID(c) != uid && middleware.CallerRole(c) != "admin" {
		writeError(c, http.StatusForbidden, "forbidden: uid does not match authenticated user")
		return
	}
	out, err := h.dashboard.Overview(c.Request.Context(), uid)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, out)
}
