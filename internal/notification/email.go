package notification

import (
	"fmt"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// EmailSender mirrors the SMS body to the user's inbox.
type EmailSender interface {
	Send(toEmail, toName, subject, body string) error
}

// SendGridSender sends plain-text email through SendGrid.
type SendGridSender struct {
	apiKey   string
	fromName string
	fromAddr string
}

// NewSendGridSender returns a nil EmailSender when the API key or sender
// address is missing; email then quietly stays off.
func NewSendGridSender(apiKey, fromAddr, fromName string) EmailSender {
	if apiKey == "" || fromAddr == "" {
		return nil
	}
	if fromName == "" {
		fromName = "K-Park"
	}
	return &SendGridSender{apiKey: apiKey, fromAddr: fromAddr, fromName: fromName}
}

func (s *SendGridSender) Send(toEmail, toName, subject, body string) error {
	from := mail.NewEmail(s.fromName, s.fromAddr)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, body, "")

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email via SendGrid: %w", err)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return fmt.Errorf("SendGrid returned status %d: %s", response.StatusCode, response.Body)
	}
	return nil
}

// Subject derives an email subject from the first line of an SMS body.
func Subject(body string) string {
	if i := strings.IndexByte(body, '\n'); i > 0 {
		return body[:i]
	}
	return body
}
