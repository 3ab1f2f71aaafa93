// README: Welcome mail sent to newly signed-up users.
package mail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	netmail "net/mail"
	"strings"

	"go.uber.org/zap"

	"yourhelpa/internal/logger"
)

var (
	ErrBadRequest    = errors.New("bad request")
	ErrForbidden     = errors.New("token email does not match recipient")
	ErrNotConfigured = errors.New("mail provider not configured")
)

const welcomeSubject = "Welcome to YourHelpa 🎉"

var welcomeTemplate = template.Must(template.New("welcome").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #1f2937;">
  <h2>Welcome to YourHelpa, {{.Name}}!</h2>
  <p>Your account is ready. You can now find verified Helpas for cleaning, plumbing, repairs, catering and more, right from WhatsApp or the web.</p>
  <p>Every payment is held safely in escrow until you confirm the job is done.</p>
  {{if .DashboardURL}}<p><a href="{{.DashboardURL}}">Open your dashboard</a></p>{{end}}
  <p>Need a hand? Just reply to this email or message us on WhatsApp.</p>
  <p>The YourHelpa Team</p>
</body>
</html>`))

type Config struct {
	// Provider type: "sendgrid" or "smtp"
	Provider  string
	FromEmail string
	FromName  string

	SendGridAPIKey string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPUseTLS   bool

	DashboardURL string
}

// NewProvider builds the provider named by cfg.Provider.
func NewProvider(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "sendgrid":
		if cfg.SendGridAPIKey == "" {
			return nil, fmt.Errorf("%w: sendgrid api key is required", ErrNotConfigured)
		}
		return NewSendGridProvider(cfg.SendGridAPIKey, cfg.FromEmail, cfg.FromName), nil
	case "smtp", "":
		if cfg.SMTPHost == "" {
			return nil, fmt.Errorf("%w: smtp host is required", ErrNotConfigured)
		}
		return NewSMTPProvider(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.FromEmail, cfg.FromName, cfg.SMTPUseTLS), nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.Provider)
	}
}

type Service struct {
	provider     Provider
	dashboardURL string
	log          *zap.Logger
}

func NewService(provider Provider, dashboardURL string, log *zap.Logger) *Service {
	return &Service{provider: provider, dashboardURL: dashboardURL, log: logger.OrNop(log)}
}

type WelcomeCommand struct {
	// CallerEmail is the email on the verified access token.
	CallerEmail string
	Email       string
	Name        string
}

// SendWelcome mails the welcome message. Callers may only send to their own
// address.
func (s *Service) SendWelcome(ctx context.Context, cmd WelcomeCommand) error {
	addr, err := netmail.ParseAddress(strings.TrimSpace(cmd.Email))
	if err != nil {
		return ErrBadRequest
	}
	if !strings.EqualFold(addr.Address, strings.TrimSpace(cmd.CallerEmail)) {
		return ErrForbidden
	}
	if s.provider == nil {
		return ErrNotConfigured
	}

	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		name = "there"
	}
	var body bytes.Buffer
	if err := welcomeTemplate.Execute(&body, map[string]string{"Name": name, "DashboardURL": s.dashboardURL}); err != nil {
		return fmt.Errorf("render welcome: %w", err)
	}
	if err := s.provider.Send(ctx, addr.Address, welcomeSubject, body.String()); err != nil {
		s.log.Error("send welcome mail", zap.String("to", addr.Address), zap.Error(err))
		return err
	}
	s.log.Info("welcome mail sent", zap.String("to", addr.Address))
	return nil
}
