// README: Entry point; loads config, wires services and serves the HTTP API until interrupted.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"yourhelpa/internal/ai"
	"yourhelpa/internal/config"
	httptransport "yourhelpa/internal/http"
	"yourhelpa/internal/infra"
	"yourhelpa/internal/logger"
	"yourhelpa/internal/maps"
	"yourhelpa/internal/modules/action"
	"yourhelpa/internal/modules/aiusage"
	"yourhelpa/internal/modules/booking"
	"yourhelpa/internal/modules/chat"
	"yourhelpa/internal/modules/dashboard"
	"yourhelpa/internal/modules/intent"
	"yourhelpa/internal/modules/mail"
	"yourhelpa/internal/modules/payment"
	"yourhelpa/internal/modules/provider"
	"yourhelpa/internal/modules/recipe"
	"yourhelpa/internal/monnify"
	"yourhelpa/internal/whatsapp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = log.Sync() }()
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal("connect database", zap.Error(err))
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)
	defer redisClient.Close()

	script := infra.NewAppScript(cfg.Sheets.URL, cfg.Sheets.Timeout, log)
	if cfg.Sheets.URL == "" {
		log.Warn("HELPA_SHEETS_URL not set; provider and booking calls will fail")
	}

	providerSvc := provider.NewService(provider.NewScriptStore(script))
	bookingSvc := booking.NewService(booking.NewScriptStore(script))
	recipes := recipe.NewCatalog(nil)

	var processorOpts []action.Option
	if cfg.Maps.APIKey != "" {
		distances, err := maps.NewDistanceService(cfg.Maps.APIKey)
		if err != nil {
			log.Fatal("maps client", zap.Error(err))
		}
		processorOpts = append(processorOpts, action.WithDistances(distances))
	}
	processor := action.NewProcessor(providerSvc, recipes, bookingSvc, log, processorOpts...)

	matcher := intent.NewMatcher(intent.DefaultCategories, intent.MatcherConfig{
		ExactPoints:   cfg.Matcher.ExactPoints,
		PartialPoints: cfg.Matcher.PartialPoints,
		Divisor:       cfg.Matcher.Divisor,
		Threshold:     cfg.Matcher.Threshold,
	})
	dispatcher := intent.NewDispatcher(matcher)

	var chatOpts []chat.Option
	if cfg.AI.GeminiKey != "" {
		gemini, err := ai.NewGeminiProvider(ctx, cfg.AI.GeminiKey)
		if err != nil {
			log.Fatal("gemini client", zap.Error(err))
		}
		defer gemini.Close()
		quota := aiusage.NewService(aiusage.NewStore(dbPool), cfg.AI.MonthlyReplies, log)
		chatOpts = append(chatOpts, chat.WithResponder(gemini, quota))
	}
	sessions := chat.NewRedisStore(redisClient, cfg.Session.TTL, cfg.Session.HistoryCap)
	chatSvc := chat.NewService(sessions, dispatcher, processor, providerSvc, log, chatOpts...)

	gateway := monnify.NewClient(monnify.Config{
		BaseURL:      cfg.Monnify.BaseURL,
		APIKey:       cfg.Monnify.APIKey,
		SecretKey:    cfg.Monnify.SecretKey,
		ContractCode: cfg.Monnify.ContractCode,
		RedirectURL:  cfg.Monnify.RedirectURL,
	}, log)
	paymentSvc := payment.NewService(payment.NewStore(dbPool), gateway, log)
	if cfg.Monnify.APIKey != "" && cfg.Monnify.ReconcileEvery > 0 {
		go paymentSvc.RunReconciler(ctx, cfg.Monnify.ReconcileEvery, cfg.Monnify.ReconcileAfter)
	}
	dashboardSvc := dashboard.NewService(dashboard.NewStore(dbPool))

	deps := httptransport.ServerDeps{
		Chat:      chatSvc,
		Providers: providerSvc,
		Bookings:  bookingSvc,
		Recipes:   recipes,
		Payments:  paymentSvc,
		Dashboard: dashboardSvc,
		Log:       log,

		AllowedOrigins: cfg.HTTP.AllowedOrigins,
	}

	mailProvider, err := mail.NewProvider(mail.Config{
		Provider:       cfg.Mail.Provider,
		FromEmail:      cfg.Mail.FromEmail,
		FromName:       cfg.Mail.FromName,
		SendGridAPIKey: cfg.Mail.SendGridKey,
		SMTPHost:       cfg.Mail.SMTPHost,
		SMTPPort:       cfg.Mail.SMTPPort,
		SMTPUsername:   cfg.Mail.SMTPUser,
		SMTPPassword:   cfg.Mail.SMTPPassword,
		SMTPUseTLS:     cfg.Mail.SMTPUseTLS,
	})
	if err != nil {
		log.Warn("welcome mail disabled", zap.Error(err))
	} else {
		deps.Mail = mail.NewService(mailProvider, cfg.Mail.DashboardURL, log)
	}

	if cfg.Supabase.JWTSecret != "" {
		verifier, err := infra.NewSupabaseVerifier(cfg.Supabase.JWTSecret)
		if err != nil {
			log.Fatal("supabase verifier", zap.Error(err))
		}
		deps.Verifier = verifier
	}

	if sender, err := whatsapp.NewTwilioProvider(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.FromPhone, ""); err == nil {
		deps.WhatsApp = sender
		deps.TwilioAuthToken = cfg.Twilio.AuthToken
		deps.TwilioWebhookURL = cfg.Twilio.WebhookURL
	} else {
		log.Info("whatsapp channel disabled", zap.Error(err))
	}

	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           httptransport.NewServer(deps).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("http shutdown", zap.Error(err))
		}
	}()

	log.Info("http server listening", zap.String("addr", cfg.HTTP.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("http server", zap.Error(err))
	}
	log.Info("http server stopped")
}
