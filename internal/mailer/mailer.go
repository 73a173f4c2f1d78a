package mailer

// Service relays application mail through an external provider.
type Service interface {
	Send(toEmail, toName, subject, text, html string) (string, error)
	SendContactMessage(fromName, fromEmail, message string) error
}
