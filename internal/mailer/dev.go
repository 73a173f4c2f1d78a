package mailer

import (
	"github.com/venuetix/bookings/pkg/logger"
)

// DevMailer prints mail to the logs instead of sending it.
type DevMailer struct{}

func NewDevMailer() *DevMailer {
	return &DevMailer{}
}

func (d *DevMailer) Send(toEmail, toName, subject, text, html string) (string, error) {
	logger.Info("📧 [DEV MAIL]",
		"to", toEmail,
		"name", toName,
		"subject", subject,
		"text", text,
	)
	return "dev-message-id", nil
}

func (d *DevMailer) SendContactMessage(fromName, fromEmail, message string) error {
	logger.Info("📧 [DEV MAIL] Contact form message",
		"from_name", fromName,
		"from_email", fromEmail,
		"message", message,
	)
	return nil
}
