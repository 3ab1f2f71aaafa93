// README: API gateway; registers HTTP routes and delegates to module services.
package http

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"yourhelpa/internal/http/handlers"
	"yourhelpa/internal/http/middleware"
	"yourhelpa/internal/infra"
	"yourhelpa/internal/logger"
	"yourhelpa/internal/modules/booking"
	"yourhelpa/internal/modules/chat"
	"yourhelpa/internal/modules/dashboard"
	"yourhelpa/internal/modules/mail"
	"yourhelpa/internal/modules/payment"
	"yourhelpa/internal/modules/provider"
	"yourhelpa/internal/modules/recipe"
)

// ServerDeps lists the services behind the API. Payments, Dashboard, Mail
// and WhatsApp are optional; their routes are only mounted when set.
// Authenticated routes also need Verifier.
type ServerDeps struct {
	Chat      *chat.Service
	Providers *provider.Service
	Bookings  *booking.Service
	Recipes   *recipe.Catalog
	Payments  *payment.Service
	Dashboard *dashboard.Service
	Mail      *mail.Service
	WhatsApp  handlers.MessageSender
	Verifier  infra.TokenVerifier

	// AllowedOrigins enables CORS for the dashboard site. Empty disables it.
	AllowedOrigins []string

	TwilioAuthToken  string
	TwilioWebhookURL string
	Log              *zap.Logger
}

type Server struct {
	deps ServerDeps
	log  *zap.Logger
}

func NewServer(deps ServerDeps) *Server {
	return &Server{deps: deps, log: logger.OrNop(deps.Log)}
}

func (s *Server) Routes() http.Handler {
	r := gin.New()
	r.Use(middleware.Recovery(s.log), middleware.Logging(s.log))
	if len(s.deps.AllowedOrigins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = s.deps.AllowedOrigins
		corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
		corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
		r.Use(cors.New(corsConfig))
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	chatHandler := handlers.NewChatHandler(s.deps.Chat)
	api.POST("/chat", chatHandler.Send)
	api.POST("/chat/:session/select", chatHandler.Select)
	api.PUT("/chat/:session/location", chatHandler.SetLocation)
	api.GET("/chat/:session/history", chatHandler.History)
	api.DELETE("/chat/:session", chatHandler.Reset)

	providerHandler := handlers.NewProviderHandler(s.deps.Providers, s.deps.Bookings, s.deps.Recipes)
	api.GET("/providers", providerHandler.List)
	api.GET("/providers/:id", providerHandler.Get)
	api.POST("/providers/register", providerHandler.Register)
	api.POST("/bookings", providerHandler.CreateBooking)
	api.GET("/recipes", providerHandler.Recipes)

	if s.deps.WhatsApp != nil {
		wa := handlers.NewWhatsAppHandler(s.deps.Chat, s.deps.WhatsApp, s.deps.TwilioAuthToken, s.deps.TwilioWebhookURL, s.log)
		api.POST("/whatsapp/webhook", wa.Webhook)
	}

	if s.deps.Verifier == nil {
		s.log.Warn("no token verifier configured; authenticated routes disabled")
		return r
	}
	authed := api.Group("", middleware.Auth(s.deps.Verifier))

	if s.deps.Payments != nil {
		ph := handlers.NewPaymentHandler(s.deps.Payments)
		authed.POST("/payments", ph.Initiate)
		authed.GET("/payments/:ref", ph.Get)
		authed.POST("/payments/:ref/verify", ph.Verify)
		authed.POST("/payments/:ref/release", ph.Release)
		authed.POST("/payments/:ref/cancel", ph.Cancel)
		authed.POST("/payments/:ref/refund", ph.Refund)
	}
	if s.deps.Dashboard != nil {
		authed.GET("/dashboard/:uid", handlers.NewDashboardHandler(s.deps.Dashboard).Overview)
	}
	if s.deps.Mail != nil {
		authed.POST("/send-welcome", handlers.NewMailHandler(s.deps.Mail).SendWelcome)
	}
	return r
}
