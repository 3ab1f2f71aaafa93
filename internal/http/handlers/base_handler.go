// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"yourhelpa/internal/modules/booking"
	"yourhelpa/internal/modules/chat"
	"yourhelpa/internal/modules/dashboard"
	"yourhelpa/internal/modules/mail"
	"yourhelpa/internal/modules/payment"
	"yourhelpa/internal/modules/provider"
)

type errorResponse struct {
	Error string `json:"error"`
}

// isValidRef accepts ids and payment references: letters, digits, '-' and '_'.
func isValidRef(v string) bool {
	if v == "" || len(v) > 128 {
		return false
	}
	for _, c := range v {
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '-' || c == '_' {
			continue
		}
		return false
	}
	return true
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writeServiceError maps module sentinel errors to status codes.
func writeServiceError(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, chat.ErrBadRequest),
		errors.Is(err, provider.ErrBadRequest),
		errors.Is(err, booking.ErrBadRequest),
		errors.Is(err, payment.ErrBadRequest),
		errors.Is(err, mail.ErrBadRequest):
		writeError(c, http.StatusBadRequest, "bad request")
	case errors.Is(err, provider.ErrNotFound),
		errors.Is(err, payment.ErrNotFound),
		errors.Is(err, dashboard.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, payment.ErrForbidden),
		errors.Is(err, mail.ErrForbidden):
		writeError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, payment.ErrInvalidState),
		errors.Is(err, payment.ErrConflict):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, payment.ErrGateway):
		writeError(c, http.StatusBadGateway, "payment gateway unavailable")
	case errors.Is(err, mail.ErrNotConfigured):
		writeError(c, http.StatusServiceUnavailable, "mail is not configured")
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
