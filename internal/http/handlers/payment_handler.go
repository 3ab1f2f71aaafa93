// README: Escrow payment handlers; every route requires an authenticated caller.
package handlers

import (
	"context"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"yourhelpa/internal/http/middleware"
	"yourhelpa/internal/modules/payment"
	"yourhelpa/internal/types"
)

type PaymentHandler struct {
	payments *payment.Service
}

func NewPaymentHandler(svc *payment.Service) *PaymentHandler {
	return &PaymentHandler{payments: svc}
}

type initiateReq struct {
	BookingID   string  `json:"booking_id"`
	HelpaID     string  `json:"helpa_id"`
	Amount      float64 `json:"amount"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Description string  `json:"description"`
}

// Initiate handles POST /api/payments. Amount is in naira.
func (h *PaymentHandler) Initiate(c *gin.Context) {
	var req initiateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Amount <= 0 || math.IsInf(req.Amount, 0) || math.IsNaN(req.Amount) {
		writeError(c, http.StatusBadRequest, "amount must be positive")
		return
	}
	email := req.Email
	if email == "" {
		email = middleware.CallerEmail(c)
	}
	tx, err := h.payments.Initiate(c.Request.Context(), payment.InitiateCommand{
		BookingID:     req.BookingID,
		CustomerID:    middleware.CallerUID(c),
		HelpaID:       req.HelpaID,
		Amount:        types.Money{Amount: int64(math.Round(req.Amount * 100)), Currency: types.CurrencyNGN},
		CustomerName:  req.Name,
		CustomerEmail: email,
		Description:   req.Description,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, tx)
}

// Get handles GET /api/payments/:ref.
func (h *PaymentHandler) Get(c *gin.Context) {
	ref := c.Param("ref")
	if !isValidRef(ref) {
		writeError(c, http.StatusBadRequest, "invalid reference")
		return
	}
	tx, err := h.payments.Get(c.Request.Context(), ref)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if tx.CustomerID != middleware.CallerUID(c) && middleware.CallerRole(c) != "admin" {
		writeError(c, http.StatusForbidden, "forbidden")
		return
	}
	writeJSON(c, http.StatusOK, tx)
}

// Verify handles POST /api/payments/:ref/verify.
func (h *PaymentHandler) Verify(c *gin.Context) {
	ref := c.Param("ref")
	if !isValidRef(ref) {
		writeError(c, http.StatusBadRequest, "invalid reference")
		return
	}
	tx, err := h.payments.Verify(c.Request.Context(), ref)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, tx)
}

// Release handles POST /api/payments/:ref/release.
func (h *PaymentHandler) Release(c *gin.Context) {
	h.act(c, h.payments.Release)
}

// Cancel handles POST /api/payments/:ref/cancel.
func (h *PaymentHandler) Cancel(c *gin.Context) {
	h.act(c, h.payments.Cancel)
}

// Refund handles POST /api/payments/:ref/refund.
func (h *PaymentHandler) Refund(c *gin.Context) {
	h.act(c, h.payments.Refund)
}

func (h *PaymentHandler) act(c *gin.Context, fn func(ctx context.Context, cmd payment.ActorCommand) (*payment.Transaction, error)) {
	ref := c.Param("ref")
	if !isValidRef(ref) {
		writeError(c, http.StatusBadRequest, "invalid reference")
		return
	}
	tx, err := fn(c.Request.Context(), payment.ActorCommand{
		Reference: ref,
		ActorID:   middleware.CallerUID(c),
		ActorRole: middleware.CallerRole(c),
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, tx)
}
