package notify

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"lead-intake/internal/common/logger"
)

const sendGridEndpoint = "/v3/mail/send"

// SendGridSender sends via the SendGrid v3 API.
type SendGridSender struct {
	apiKey string
	host   string
	from   Sender
	logger logger.Logger
}

func NewSendGridSender(apiKey string, from Sender, log logger.Logger) *SendGridSender {
	return &SendGridSender{
		apiKey: apiKey,
		from:   from,
		logger: log.WithFields(map[string]interface{}{"provider": "sendgrid"}),
	}
}

func (s *SendGridSender) Provider() string { return "sendgrid" }

// Send builds a fresh client per message; the SendGrid client stores the
// request body on itself and is not safe for concurrent sends.
func (s *SendGridSender) Send(ctx context.Context, msg EmailMessage) (string, error) {
	client := sendgrid.NewSendClient(s.apiKey)
	if s.host != "" {
		client.BaseURL = s.host + sendGridEndpoint
	}

	from := mail.NewEmail(s.from.Name, s.from.Email)
	to := mail.NewEmail(msg.ToName, msg.To)
	text := msg.Text
	if text == "" {
		text = msg.Subject
	}
	var message *mail.SGMailV3
	if msg.HTML != "" {
		message = mail.NewSingleEmail(from, msg.Subject, to, text, msg.HTML)
	} else {
		message = mail.NewV3MailInit(from, msg.Subject, to, mail.NewContent("text/plain", text))
	}
	if msg.ReplyTo != "" {
		message.SetReplyTo(mail.NewEmail("", msg.ReplyTo))
	}

	response, err := client.SendWithContext(ctx, message)
	if err != nil {
		return "", fmt.Errorf("notify: sendgrid send failed: %w", err)
	}
	if response.StatusCode >= 400 {
		s.logger.Warn("sendgrid returned error status", map[string]interface{}{
			"status": response.StatusCode,
			"body":   response.Body,
			"to":     msg.To,
		})
		return "", fmt.Errorf("notify: sendgrid returned status %d", response.StatusCode)
	}

	var id string
	if ids := response.Headers["X-Message-Id"]; len(ids) > 0 {
		id = ids[0]
	}
	s.logger.Debug("email sent", map[string]interface{}{"to": msg.To, "messageId": id})
	return id, nil
}
