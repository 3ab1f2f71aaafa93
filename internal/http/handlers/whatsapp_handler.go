// README: Twilio WhatsApp webhook; the sender's phone number is the chat session id.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"yourhelpa/internal/logger"
	"yourhelpa/internal/modules/chat"
	"yourhelpa/internal/modules/provider"
	"yourhelpa/internal/whatsapp"
)

const (
	whatsappApology       = "😔 Sorry, something went wrong on our side. Please send your message again in a moment."
	whatsappLocationSaved = "📍 Got your location. I'll show the nearest Helpas first."
)

// MessageSender delivers outbound WhatsApp text.
type MessageSender interface {
	SendMessage(ctx context.Context, to, body string) error
}

type WhatsAppHandler struct {
	chat   *chat.Service
	sender MessageSender

	// authToken enables X-Twilio-Signature checks when set. webhookURL is the
	// public URL Twilio posts to; behind a proxy it differs from the request URL.
	authToken  string
	webhookURL string
	log        *zap.Logger
}

func NewWhatsAppHandler(svc *chat.Service, sender MessageSender, authToken, webhookURL string, log *zap.Logger) *WhatsAppHandler {
	return &WhatsAppHandler{
		chat:       svc,
		sender:     sender,
		authToken:  authToken,
		webhookURL: webhookURL,
		log:        logger.OrNop(log),
	}
}

// Webhook handles POST /api/whatsapp/webhook. Twilio retries on non-2xx, so
// chat failures are answered with an apology and a 200.
func (h *WhatsAppHandler) Webhook(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		writeError(c, http.StatusBadRequest, "invalid form")
		return
	}
	form := c.Request.PostForm
	if h.authToken != "" && !whatsapp.ValidateSignature(h.authToken, h.callbackURL(c), form, c.GetHeader("X-Twilio-Signature")) {
		writeError(c, http.StatusForbidden, "invalid signature")
		return
	}

	from := whatsapp.PhoneFromAddress(form.Get("From"))
	if from == "" {
		writeError(c, http.StatusBadRequest, "missing From")
		return
	}
	ctx := c.Request.Context()
	body := strings.TrimSpace(form.Get("Body"))

	var reply string
	switch {
	case form.Get("Latitude") != "" && form.Get("Longitude") != "":
		reply = whatsappLocationSaved
		if err := h.chat.SetLocation(ctx, from, form.Get("Latitude")+","+form.Get("Longitude")); err != nil {
			h.log.Error("whatsapp set location", zap.String("from", from), zap.Error(err))
			reply = whatsappApology
		}
	case body == "":
		// Media without a caption; nothing to answer.
		h.ack(c)
		return
	default:
		reply = h.converse(ctx, from, body, form.Get("ProfileName"))
	}

	if err := h.sender.SendMessage(ctx, from, reply); err != nil {
		h.log.Error("whatsapp send", zap.String("to", from), zap.Error(err))
	}
	h.ack(c)
}

func (h *WhatsAppHandler) converse(ctx context.Context, from, body, profileName string) string {
	var (
		turn *chat.Turn
		err  error
	)
	if providerID, ok := whatsapp.ParseBookCommand(body); ok {
		turn, err = h.chat.SelectProvider(ctx, from, providerID)
		// "book plumber" names a service, not a provider id.
		if errors.Is(err, provider.ErrNotFound) || errors.Is(err, provider.ErrBadRequest) {
			turn, err = nil, nil
		}
	}
	if turn == nil && err == nil {
		turn, err = h.chat.Handle(ctx, chat.Inbound{
			SessionID: from,
			Message:   body,
			Channel:   "whatsapp",
			Name:      profileName,
			Phone:     from,
		})
	}
	if err != nil {
		h.log.Error("whatsapp chat turn", zap.String("from", from), zap.Error(err))
		return whatsappApology
	}
	return whatsapp.Render(turn)
}

func (h *WhatsAppHandler) callbackURL(c *gin.Context) string {
	if h.webhookURL != "" {
		return h.webhookURL
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if p := c.GetHeader("X-Forwarded-Proto"); p != "" {
		scheme = p
	}
	return scheme + "://" + c.Request.Host + c.Request.URL.RequestURI()
}

// ack answers with an empty TwiML document; replies go out via the REST API.
func (h *WhatsAppHandler) ack(c *gin.Context) {
	c.Data(http.StatusOK, "text/xml; charset=utf-8", []byte("<Response></Response>"))
}
