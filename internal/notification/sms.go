package notification

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// SMSSender delivers one message and returns a provider id for the log.
type SMSSender interface {
	Send(to, body string) (sid string, err error)
}

// TwilioSender sends plain SMS through the Twilio REST API.
type TwilioSender struct {
	client *twilio.RestClient
	from   string
}

// NewTwilioSender returns a nil SMSSender when credentials are missing; the
// queue logs such deliveries as skipped instead of failing bookings.
func NewTwilioSender(accountSID, authToken, from string) SMSSender {
	if accountSID == "" || authToken == "" || from == "" {
		return nil
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username:   accountSID,
		Password:   authToken,
		AccountSid: accountSID,
	})
	return &TwilioSender{client: client, from: from}
}

func (s *TwilioSender) Send(to, body string) (string, error) {
	params := &openapi.CreateMessageParams{}
	params.SetTo(ToE164(to))
	params.SetFrom(s.from)
	params.SetBody(body)

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("failed to send SMS: %w", err)
	}
	if resp != nil && resp.Sid != nil {
		return *resp.Sid, nil
	}
	return "", nil
}

// ToE164 normalizes a phone number to E.164, defaulting to the +91 country
// code for bare 10-digit numbers.
func ToE164(phone string) string {
	var digits strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	switch {
	case strings.HasPrefix(d, "91") && len(d) == 12:
		return "+" + d
	case len(d) == 10:
		return "+91" + d
	case strings.HasPrefix(d, "0") && len(d) == 11:
		return "+91" + d[1:]
	default:
		return "+" + d
	}
}
