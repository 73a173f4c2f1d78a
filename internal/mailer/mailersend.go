package mailer

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"strings"
	"time"

	"github.com/mailersend/mailersend-go"
)

type MailerSend struct {
	client       *mailersend.Mailersend
	from         mailersend.From
	contactInbox string
	Enabled      bool
}

func NewMailerSend(apiKey, fromName, fromEmail, contactInbox string) *MailerSend {
	m := &MailerSend{
		Enabled:      apiKey != "" && fromEmail != "",
		contactInbox: contactInbox,
		from: mailersend.From{
			Name:  fromName,
			Email: fromEmail,
		},
	}
	if m.Enabled {
		m.client = mailersend.NewMailersend(apiKey)
	}
	return m
}

func (m *MailerSend) Send(toEmail, toName, subject, text, htmlBody string) (string, error) {
	if !m.Enabled {
		return "", errors.New("mailer disabled (missing MAILERSEND_API_KEY or MAIL_FROM_EMAIL)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	msg := m.client.Email.NewMessage()
	msg.SetFrom(m.from)
	msg.SetRecipients([]mailersend.Recipient{{Name: toName, Email: toEmail}})
	msg.SetSubject(subject)
	if strings.TrimSpace(text) != "" {
		msg.SetText(text)
	}
	if strings.TrimSpace(htmlBody) != "" {
		msg.SetHTML(htmlBody)
	}

	res, err := m.client.Email.Send(ctx, msg)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(res.Body)
		return "", fmt.Errorf("mailersend error: status=%d body=%s", res.StatusCode, strings.TrimSpace(string(body)))
	}
	// MailerSend uses X-Message-Id
	return res.Header.Get("X-Message-Id"), nil
}

func (m *MailerSend) SendContactMessage(fromName, fromEmail, message string) error {
	subject := fmt.Sprintf("Contact form: message from %s", fromName)
	text := fmt.Sprintf("From: %s <%s>\n\n%s", fromName, fromEmail, message)
	htmlBody := fmt.Sprintf("<p>From: %s &lt;%s&gt;</p><p>%s</p>",
		html.EscapeString(fromName), html.EscapeString(fromEmail), html.EscapeString(message))
	_, err := m.Send(m.contactInbox, "", subject, text, htmlBody)
	return err
}
