package email

import (
	"context"
	"fmt"
	"time"

	"rigtally/internal/config"
	"rigtally/internal/logger"
	"rigtally/internal/models"

	"github.com/mailgun/mailgun-go/v5"
)

type Service struct {
	client      mailgun.Mailgun
	domain      string
	senderEmail string
	senderName  string
	enabled     bool
}

func NewService(cfg *config.Config) *Service {
	enabled := cfg.MailgunDomain != "" && cfg.MailgunAPIKey != ""

	var client mailgun.Mailgun
	if enabled {
		client = mailgun.NewMailgun(cfg.MailgunAPIKey)
	}

	return &Service{
		client:      client,
		domain:      cfg.MailgunDomain,
		senderEmail: cfg.MailgunSenderEmail,
		senderName:  cfg.MailgunSenderName,
		enabled:     enabled,
	}
}

func (s *Service) IsEnabled() bool {
	return s.enabled
}

// SendWelcomeEmail sends the post-registration welcome message. The
// recipient address is whatever the caller collected; registration does
// not require one, so callers skip this when it is empty.
func (s *Service) SendWelcomeEmail(user *models.User, recipient string) error {
	if !s.enabled {
		return fmt.Errorf("email service is not configured")
	}

	subject := fmt.Sprintf("Welcome to Rigtally, %s!", user.Username)
	textBody := s.generateWelcomeText(user)

	message := mailgun.NewMessage(
		s.domain,
		fmt.Sprintf("%s <%s>", s.senderName, s.senderEmail),
		subject,
		textBody,
		recipient,
	)
	message.SetHTML(s.generateWelcomeHTML(user))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resp, err := s.client.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}

	logger.Info("Welcome email sent", "user_id", user.ID, "message_id", resp)
	return nil
}

func (s *Service) generateWelcomeText(user *models.User) string {
	return fmt.Sprintf(`Hi %s,

Your Rigtally account is ready. Log in to start tracking your PC part
prices and save your first setup.

The Rigtally team`, user.Username)
}

func (s *Service) generateWelcomeHTML(user *models.User) string {
	return fmt.Sprintf(`<html>
<body style="font-family: sans-serif; color: #1f2937;">
	<h2>Welcome to Rigtally, %s!</h2>
	<p>Your account is ready. Log in to start tracking your PC part prices
	and save your first setup.</p>
	<p>The Rigtally team</p>
</body>
</html>`, user.Username)
}
